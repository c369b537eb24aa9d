package hashtable

import (
	"log/slog"

	"github.com/theflywheel/hashtable/internal/logger"
)

var voidLogger = logger.VoidLogger()

type config struct {
	bounds  LoadFactorBounds
	planner Planner
	log     logger.Logger
}

func defaultConfig() *config {
	return &config{
		bounds:  DefaultLoadFactorBounds,
		planner: OptimalCapacity,
		log:     voidLogger,
	}
}

// Option configures a Table at construction.
type Option func(c *config)

// WithLoadFactorBounds replaces DefaultLoadFactorBounds. New rejects bounds
// that fail LoadFactorBounds.Validate.
func WithLoadFactorBounds(b LoadFactorBounds) Option {
	return func(c *config) {
		c.bounds = b
	}
}

// WithPlanner replaces OptimalCapacity as the capacity planner.
func WithPlanner(p Planner) Option {
	return func(c *config) {
		if p != nil {
			c.planner = p
		}
	}
}

// WithLogger sends resize and failure diagnostics to l. Tables are silent
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = logger.FromSlog(l)
		}
	}
}
