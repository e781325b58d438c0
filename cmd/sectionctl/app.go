package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jmgilman/go/boundary/config"
	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/jmgilman/go/boundary/retry"
	"github.com/spf13/cobra"
)

const (
	opCommand     = "sectionctl"
	defaultConfig = "sectionctl.yaml"
	configEnv     = "SECTIONCTL_CONFIG"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath    string
	logLevel      string
	logFormat     string
	secretsRegion string

	cfg    *config.Config
	logger *slog.Logger
	sink   *trackingSink
	policy retry.Policy
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	logger := slog.New(slog.NewTextHandler(stderr, nil))
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		sink:   newTrackingSink(report.NewLogSink(logger)),
		policy: retry.DefaultPolicy(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sectionctl",
		Short:         "Read and write sections and exchange requests with devices",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Newf(errors.KindInvalidArgument, opCommand, "unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.HasParent() || cmd.Name() == "help" {
				return nil
			}
			return a.load(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(err, errors.KindInvalidArgument, opCommand, "invalid flags")
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (default $"+configEnv+" or "+defaultConfig+")")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	flags.StringVar(&a.logFormat, "log-format", "", "override the configured log format (text or json)")
	flags.StringVar(&a.secretsRegion, "secrets-region", "", "AWS region for @secret attributes (default from the AWS configuration)")

	root.AddCommand(
		a.listCommand(),
		a.getCommand(),
		a.putCommand(),
		a.rmCommand(),
		a.exchangeCommand(),
		a.discoverCommand(),
	)
	return root
}

// load reads the configuration and rebuilds the logger, sink, and retry policy.
func (a *app) load(ctx context.Context) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		path = defaultConfig
	}

	cfg, err := config.LoadFile(ctx, path, config.WithSecrets(config.NewAWSSecrets(a.secretsRegion)))
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	policy, err := cfg.Retry.Policy()
	if err != nil {
		return errors.Wrap(err, errors.KindInvalidArgument, config.OpLoadConfig, "invalid retry settings")
	}

	a.cfg = cfg
	a.logger = slog.New(cfg.Log.Handler(a.stderr))
	a.sink.setNext(report.NewLogSink(a.logger))

	logger := a.logger
	policy.Notify = func(err error, next time.Duration) {
		logger.Debug("retrying",
			slog.String("kind", string(errors.GetKind(err))),
			slog.String("operation", errors.GetOperation(err)),
			slog.Duration("backoff", next),
		)
	}
	a.policy = policy
	return nil
}

// finish reports a failure the boundaries did not already report, prints it,
// and picks the exit status.
func (a *app) finish(ctx context.Context, err error) int {
	if err == nil {
		return exitOK
	}

	translated := errors.Translate(opCommand, err)
	if !a.sink.reported(translated) {
		a.sink.Report(ctx, translated)
	}
	fmt.Fprintf(a.stderr, "sectionctl: %v\n", translated)
	return exitCode(translated.Kind())
}

// trackingSink forwards to another sink and remembers what it forwarded.
// While held, reports are buffered instead; release forwards only the one
// that became the operation's result.
type trackingSink struct {
	mu      sync.Mutex
	next    report.Sink
	seen    map[errors.TranslatedError]struct{}
	held    bool
	pending []errors.TranslatedError
}

func newTrackingSink(next report.Sink) *trackingSink {
	return &trackingSink{next: next, seen: make(map[errors.TranslatedError]struct{})}
}

func (s *trackingSink) Report(ctx context.Context, err errors.TranslatedError) {
	s.mu.Lock()
	if s.held {
		s.pending = append(s.pending, err)
		s.mu.Unlock()
		return
	}
	s.seen[err] = struct{}{}
	next := s.next
	s.mu.Unlock()

	next.Report(ctx, err)
}

func (s *trackingSink) setNext(next report.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = next
}

func (s *trackingSink) reported(err errors.TranslatedError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[err]
	return ok
}

// hold starts buffering reports.
func (s *trackingSink) hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
	s.pending = nil
}

// release stops buffering and forwards the buffered report for result, if
// any. Reports of attempts that were retried are dropped.
func (s *trackingSink) release(ctx context.Context, result error) {
	s.mu.Lock()
	pending := s.pending
	s.held = false
	s.pending = nil
	s.mu.Unlock()

	var final errors.TranslatedError
	if !errors.As(result, &final) {
		return
	}
	for _, err := range pending {
		if err == final {
			s.Report(ctx, err)
			return
		}
	}
}

// retrying runs fn under the retry policy and reports its final failure once.
func retrying[T any](ctx context.Context, a *app, fn func(ctx context.Context) (T, error)) (T, error) {
	a.sink.hold()
	v, err := retry.DoValue(ctx, a.policy, fn)
	a.sink.release(ctx, err)
	return v, err
}
