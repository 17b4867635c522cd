package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/variant/container"
	"github.com/wippyai/variant/errors"
)

// Store keeps containers by key. A container is the only value a store
// understands; everything it writes passes container.Inspect first.
type Store interface {
	Put(ctx context.Context, key string, c container.Container) error
	// Get returns an errors.ErrNotFound error for a missing key.
	Get(ctx context.Context, key string) (container.Container, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Recorder receives store events; *metrics.Collector implements it.
type Recorder interface {
	StoreOperation(backend, op string, err error)
	ContainerWritten(n int)
}

// Option configures a store.
type Option func(*options)

type options struct {
	recorder Recorder
	log      *zap.Logger
	compress bool
}

// WithCompression stores containers snappy-compressed.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.compress = enabled
	}
}

// WithMetrics reports every operation to r.
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = Logger()
	}
	return o
}

func (o *options) observe(backend, op string, err error) {
	if o.recorder != nil {
		o.recorder.StoreOperation(backend, op, err)
	}
}

func (o *options) written(n int) {
	if o.recorder != nil {
		o.recorder.ContainerWritten(n)
	}
}

func checkKey(key string) error {
	if key == "" {
		return errors.InvalidInput(errors.PhaseStore, "key must not be empty")
	}
	return nil
}

func checkContainer(c container.Container) error {
	if _, err := container.Inspect(c); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindMalformed, err, "refusing to store malformed container")
	}
	return nil
}

func notFound(key string) error {
	return errors.NotFound(errors.PhaseStore, "key", key)
}

func backendError(backend, op string, err error) error {
	return errors.New(errors.PhaseStore, errors.KindBackend).
		Detail("%s %s failed", backend, op).
		Cause(err).
		Build()
}
