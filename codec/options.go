package codec

import "go.uber.org/zap"

// Option configures a Codec.
type Option func(*Codec)

// WithLogger overrides the package logger for one codec.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		c.log = l
	}
}

// WithStrict makes a cache direction conflict an error.
func WithStrict(strict bool) Option {
	return func(c *Codec) {
		c.strict = strict
	}
}

// WithObserver reports cache events and operation outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Codec) {
		c.observer = o
	}
}
