package device

import (
	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
)

const defaultReadSize = 4096

type options struct {
	rules    errors.Rules
	sink     report.Sink
	readSize int
}

// Option configures a Port.
type Option func(*options)

// WithRules adds failure rules tried before the driver's and Rules.
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

// WithReadSize sets the maximum number of bytes a single Receive returns.
// Values below one are ignored.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}
