package timezone

import (
	"fmt"
	"sync/atomic"
	"time"

	"roombook/config"

	"github.com/rs/zerolog/log"
)

const defaultLocation = "UTC"

var appLocation atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = defaultLocation
	}

	if err := SetLocation(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")

		appLocation.Store(time.UTC)

		return
	}

	log.Info().Str("timezone", name).Msg("Application timezone initialized")
}

// SetLocation switches the application timezone to the named IANA location.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}

	appLocation.Store(loc)

	return nil
}

// Location returns the application timezone, UTC until one is loaded.
func Location() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now is the wall clock in the application timezone. Past-date checks compare calendar days of this value.
func Now() time.Time {
	return time.Now().In(Location())
}

func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
