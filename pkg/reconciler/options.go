package reconciler

import (
	"github.com/agentstation/rollcall/pkg/canonical"
	"github.com/agentstation/rollcall/pkg/errors"
)

// KeyBuilder builds a join key from the name and region parts of a record.
// *canonical.Canonicalizer implements it.
type KeyBuilder interface {
	KeyOf(name, region string) (key string, byeElection bool)
}

type options struct {
	strategy    Strategy
	keys        KeyBuilder
	tracking    bool
	concurrency int
}

func defaultOptions() *options {
	return &options{
		strategy: NewRePrefixStrategy(),
		tracking: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if options.keys == nil {
		c, err := canonical.New(canonical.DefaultConfig())
		if err != nil {
			return nil, err
		}
		options.keys = c
	}
	return options, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithStrategy sets the field-collision strategy.
func WithStrategy(strategy Strategy) Option {
	return func(r *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		r.strategy = strategy
		return nil
	}
}

// WithKeyBuilder sets how join keys are built. The default is a
// canonicalizer with the built-in alias table.
func WithKeyBuilder(keys KeyBuilder) Option {
	return func(r *options) error {
		if keys == nil {
			return &errors.ValidationError{
				Field:   "keys",
				Message: "cannot be nil",
			}
		}
		r.keys = keys
		return nil
	}
}

// WithProvenance enables field-level tracking.
func WithProvenance(enabled bool) Option {
	return func(r *options) error {
		r.tracking = enabled
		return nil
	}
}

// WithConcurrency caps how many sources are loaded at once. Zero means no limit.
func WithConcurrency(n int) Option {
	return func(r *options) error {
		if n < 0 {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: "cannot be negative",
			}
		}
		r.concurrency = n
		return nil
	}
}
