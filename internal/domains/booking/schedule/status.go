package schedule

import (
	"fmt"
	"slices"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown booking status %q", value)
	}

	return status, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Deletable reports whether a booking in this status may be removed by its owner or an admin.
func (s Status) Deletable() bool {
	return s == StatusPending
}

// Transition validates the move to next and returns InvalidState when it is not allowed.
func (s Status) Transition(next Status) error {
	if !s.CanTransitionTo(next) {
		return InvalidState(s, "cannot move booking from "+s.String()+" to "+next.String())
	}

	return nil
}
