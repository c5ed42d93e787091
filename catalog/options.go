package catalog

import "github.com/s0up4200/automater-sync/filter"

// DefaultConcurrency is the number of parallel stock lookups
const DefaultConcurrency = 5

// Option configures an Importer or a StockUpdater
type Option func(*options)

type options struct {
	filter      *filter.Filter
	concurrency int
	dryRun      bool
}

func defaultOptions() options {
	return options{concurrency: DefaultConcurrency}
}

// WithFilter limits imports to Automater products matching f
func WithFilter(f *filter.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithConcurrency sets the number of parallel stock lookups
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithDryRun logs changes instead of writing them to the store
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}
