package device

import (
	"context"
	"sort"
	"strings"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/jmgilman/go/boundary/scope"
	"github.com/jmgilman/go/boundary/special"
)

// Port is the translation boundary for one device address.
//
// A Port holds only immutable configuration and is safe for concurrent use.
// Sessions are per call; serializing access to a shared device is the
// driver's responsibility.
type Port struct {
	driver     Driver
	address    string
	translator *errors.Translator
	sink       report.Sink
	readSize   int
}

// NewPort creates a Port for the device at address.
//
// Failures are translated with, in order: rules passed through WithRules,
// the driver's own Rules if it implements Classifier, and Rules.
func NewPort(driver Driver, address string, opts ...Option) *Port {
	o := &options{readSize: defaultReadSize}
	for _, opt := range opts {
		opt(o)
	}

	rules := make(errors.Rules, 0, len(o.rules)+len(Rules))
	rules = append(rules, o.rules...)
	if c, ok := driver.(Classifier); ok {
		rules = append(rules, c.Rules()...)
	}
	rules = append(rules, Rules...)

	return &Port{
		driver:     driver,
		address:    address,
		translator: errors.NewTranslator(rules...),
		sink:       report.Or(o.sink),
		readSize:   o.readSize,
	}
}

// Address returns the device address the port opens.
func (p *Port) Address() string {
	return p.address
}

// Open connects to the device and returns a session.
// An empty address fails with KindInvalidArgument without calling the driver.
func (p *Port) Open(ctx context.Context) (*Session, error) {
	s, err := p.open(ctx, OpOpen)
	if err != nil {
		return nil, p.fail(ctx, OpOpen, err)
	}
	return s, nil
}

// Exchange opens a session, sends request, receives one response, and closes
// the session. The session is closed on every path; a close failure is
// returned only if the exchange itself succeeded.
func (p *Port) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	if len(request) == 0 {
		return nil, p.fail(ctx, OpExchange, errors.New(errors.KindInvalidArgument, OpExchange, "request is empty"))
	}

	resp, err := scope.UseValue(func() (exchange, error) {
		s, err := p.open(ctx, OpExchange)
		return exchange{s}, err
	}, func(s exchange) ([]byte, error) {
		if err := s.send(ctx, OpExchange, request); err != nil {
			return nil, err
		}
		return s.receive(ctx)
	})
	if err != nil {
		return nil, p.fail(ctx, OpExchange, err)
	}
	return resp, nil
}

// Discover returns the sorted addresses of reachable devices. No devices is
// a valid outcome and yields an empty slice.
func (p *Port) Discover(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, p.fail(ctx, OpDiscover, err)
	}

	addrs, err := p.driver.Discover(ctx)
	if err != nil {
		return nil, p.fail(ctx, OpDiscover, err)
	}

	addrs = special.Slice(addrs)
	sort.Strings(addrs)
	return addrs, nil
}

func (p *Port) open(ctx context.Context, op string) (*Session, error) {
	if strings.TrimSpace(p.address) == "" {
		return nil, errors.New(errors.KindInvalidArgument, op, "device address is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := p.driver.Open(ctx, p.address)
	if err != nil {
		return nil, err
	}
	return &Session{port: p, conn: conn}, nil
}

// fail translates err, attaches the device address, and reports it.
func (p *Port) fail(ctx context.Context, op string, err error) errors.TranslatedError {
	translated := p.translator.Translate(op, err)
	if p.address != "" {
		translated = errors.WithContext(translated, "address", p.address)
	}
	p.sink.Report(ctx, translated)
	return translated
}

// exchange closes its session without translating, so Exchange reports a
// close failure once under its own operation.
type exchange struct {
	*Session
}

func (e exchange) Close() error {
	return e.close()
}
