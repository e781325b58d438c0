package section

import (
	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
)

const defaultConcurrency = 4

type options struct {
	rules       errors.Rules
	sink        report.Sink
	concurrency int
}

// Option configures a Store.
type Option func(*options)

// WithRules adds failure rules tried before the backend's and FileRules.
func WithRules(rules ...errors.Rule) Option {
	return func(o *options) {
		o.rules = append(o.rules, rules...)
	}
}

// WithSink sets the diagnostics sink every translated failure is reported to.
func WithSink(sink report.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithConcurrency bounds the number of concurrent backend reads performed by
// RetrieveSections. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
