package section

import (
	"context"
	stderrors "errors"
	"io"
	"sort"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/jmgilman/go/boundary/scope"
	"github.com/jmgilman/go/boundary/special"
	"golang.org/x/sync/errgroup"
)

// Store is the translation boundary over a section Backend.
//
// A Store holds only immutable configuration and is safe for concurrent use.
type Store struct {
	backend     Backend
	translator  *errors.Translator
	sink        report.Sink
	concurrency int
}

// New creates a Store over backend.
//
// Failures are translated with, in order: rules passed through WithRules,
// the backend's own Rules if it implements Classifier, and FileRules.
func New(backend Backend, opts ...Option) *Store {
	o := &options{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(o)
	}

	rules := make(errors.Rules, 0, len(o.rules)+len(FileRules))
	rules = append(rules, o.rules...)
	if c, ok := backend.(Classifier); ok {
		rules = append(rules, c.Rules()...)
	}
	rules = append(rules, FileRules...)

	return &Store{
		backend:     backend,
		translator:  errors.NewTranslator(rules...),
		sink:        report.Or(o.sink),
		concurrency: o.concurrency,
	}
}

// RetrieveSection returns the named section.
//
// Retrieval expects the section to exist: a missing section fails with
// KindNotFound. The backend handle is released on every path.
func (s *Store) RetrieveSection(ctx context.Context, name string) (Section, error) {
	if err := ValidateName(OpRetrieveSection, name); err != nil {
		return Section{}, s.fail(ctx, OpRetrieveSection, name, err)
	}

	sec, err := s.retrieve(ctx, name)
	if err != nil {
		return Section{}, s.fail(ctx, OpRetrieveSection, name, err)
	}
	return sec, nil
}

// RetrieveSections returns the named sections in the order requested.
//
// Every name is validated before any backend call. Reads run concurrently,
// bounded by WithConcurrency; the first failure cancels the rest and is
// returned. No names yields an empty slice.
func (s *Store) RetrieveSections(ctx context.Context, names ...string) ([]Section, error) {
	for _, name := range names {
		if err := ValidateName(OpRetrieveSections, name); err != nil {
			return nil, s.fail(ctx, OpRetrieveSections, name, err)
		}
	}
	if len(names) == 0 {
		return special.Empty[Section](), nil
	}

	results := make([]Section, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			sec, err := s.retrieve(gctx, name)
			if err != nil {
				translated := s.translator.Translate(OpRetrieveSections, err)
				return errors.WithContext(translated, "section", name)
			}
			results[i] = sec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, OpRetrieveSections, "", err)
	}
	return results, nil
}

// ListSections returns the sorted names of every section in the store.
//
// A store that holds nothing, or whose backend reports ErrNoSections, lists
// as a non-nil empty slice. Every other backend failure is translated and
// reported.
func (s *Store) ListSections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, OpListSections, "", err)
	}

	names, err := s.backend.List(ctx)
	if stderrors.Is(err, ErrNoSections) {
		return special.Empty[string](), nil
	}
	if err != nil {
		return nil, s.fail(ctx, OpListSections, "", err)
	}

	names = special.Slice(names)
	sort.Strings(names)
	return names, nil
}

// StoreSection writes sec to the store, replacing any existing content.
// Read-only backends fail with KindPermissionDenied.
func (s *Store) StoreSection(ctx context.Context, sec Section) error {
	if err := ValidateName(OpStoreSection, sec.Name); err != nil {
		return s.fail(ctx, OpStoreSection, sec.Name, err)
	}

	w, err := s.writer()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = w.Write(ctx, sec.Name, special.Slice(sec.Content))
	}
	if err != nil {
		return s.fail(ctx, OpStoreSection, sec.Name, err)
	}
	return nil
}

// RemoveSection deletes the named section.
// Removing a section that does not exist fails with KindNotFound.
func (s *Store) RemoveSection(ctx context.Context, name string) error {
	if err := ValidateName(OpRemoveSection, name); err != nil {
		return s.fail(ctx, OpRemoveSection, name, err)
	}

	w, err := s.writer()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = w.Remove(ctx, name)
	}
	if err != nil {
		return s.fail(ctx, OpRemoveSection, name, err)
	}
	return nil
}

// Rules returns the failure table the store translates with.
func (s *Store) Rules() errors.Rules {
	return s.translator.Rules()
}

func (s *Store) retrieve(ctx context.Context, name string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}

	data, err := scope.UseValue(func() (io.ReadCloser, error) {
		return s.backend.Open(ctx, name)
	}, func(r io.ReadCloser) ([]byte, error) {
		return io.ReadAll(r)
	})
	if err != nil {
		return Section{}, err
	}

	return Section{Name: name, Content: special.Slice(data)}, nil
}

func (s *Store) writer() (Writer, error) {
	w, ok := s.backend.(Writer)
	if !ok {
		return nil, ErrReadOnly
	}
	return w, nil
}

// fail translates err, attaches the section name, and reports it.
func (s *Store) fail(ctx context.Context, op, name string, err error) errors.TranslatedError {
	translated := s.translator.Translate(op, err)
	if name != "" {
		translated = errors.WithContext(translated, "section", name)
	}
	return s.report(ctx, translated)
}

func (s *Store) report(ctx context.Context, err errors.TranslatedError) errors.TranslatedError {
	s.sink.Report(ctx, err)
	return err
}
