package sharedcell

import "github.com/rs/zerolog"

// Option configures the pair created by New. Clones and assignees share the
// pair, so they share its options too.
type Option func(*options)

type options struct {
	onRelease any // func(T), checked against the cell type in New
	tracker   *Tracker
	logger    zerolog.Logger
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithReleaseHook registers fn to be called with the final value when the
// pair is released. It runs at most once per pair. New rejects a hook whose
// parameter type differs from the cell's value type.
func WithReleaseHook[T any](fn func(T)) Option {
	return func(o *options) {
		if fn != nil {
			o.onRelease = fn
		}
	}
}

// WithTracker records the pair's lifecycle events in t.
func WithTracker(t *Tracker) Option {
	return func(o *options) { o.tracker = t }
}

// WithLogger sets the logger used for debug events. The default discards
// everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}
