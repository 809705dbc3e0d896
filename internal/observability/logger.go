package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentLogger derives a logger from the global one tagged with app and
// component fields.
func ComponentLogger(app, component string) zerolog.Logger {
	ctx := log.Logger.With().Str("app", app)
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return ctx.Logger()
}
