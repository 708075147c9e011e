package router

import (
	"roombook/internal/handlers/auth"
	"roombook/internal/handlers/booking"
	"roombook/internal/handlers/room"

	"github.com/go-chi/chi/v5"
)

const apiVersion = "/v1"

// DomainHandlers is filled by wire, one field per domain.
type DomainHandlers struct {
	Auth    auth.Handler
	Room    room.Handler
	Booking booking.Handler
}

type registrar interface {
	Router(router chi.Router)
}

type Router struct {
	registrars []registrar
}

func New(handlers DomainHandlers) Router {
	return Router{
		registrars: []registrar{&handlers.Auth, &handlers.Room, &handlers.Booking},
	}
}

// SetupRoutes mounts every domain under the versioned prefix.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Route(apiVersion, func(v1 chi.Router) {
		for _, reg := range r.registrars {
			reg.Router(v1)
		}
	})
}
