package document

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tarificateur/go_backend/internal/domain/quote"
)

var ErrNotStored = errors.New("document not stored")

// Store keeps generated documents by file name. DeleteMatching removes the
// documents whose name starts with prefix and satisfies match.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	DeleteMatching(ctx context.Context, prefix string, match func(name string) bool) error
}

type Service struct {
	store      Store
	generators map[Kind]Generator
	log        *zap.Logger
}

func NewService(store Store, docx, pdf Generator, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		generators: map[Kind]Generator{KindDOCX: docx, KindPDF: pdf},
		log:        log,
	}
}

// Regenerate drops every stored document of the quote's opportunity number
// (and of the stale numbers given, after a renumbering) and renders both
// documents again.
func (s *Service) Regenerate(ctx context.Context, q quote.Quote, stale ...string) error {
	numbers := append([]string{q.OpportunityNumber}, stale...)
	for _, n := range numbers {
		owned := func(name string) bool { return Owns(n, name) }
		if err := s.store.DeleteMatching(ctx, Prefix(n), owned); err != nil {
			return fmt.Errorf("cleanup %s: %w", n, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range []Kind{KindDOCX, KindPDF} {
		kind := kind
		g.Go(func() error {
			_, err := s.render(ctx, q, kind)
			return err
		})
	}
	return g.Wait()
}

// Fetch returns the stored document, rendering it first when missing.
func (s *Service) Fetch(ctx context.Context, q quote.Quote, kind Kind) (string, []byte, error) {
	name := Filename(q, kind)
	data, err := s.store.Get(ctx, name)
	if err == nil {
		return name, data, nil
	}
	if !errors.Is(err, ErrNotStored) {
		return "", nil, fmt.Errorf("load %s: %w", name, err)
	}
	data, err = s.render(ctx, q, kind)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

func (s *Service) render(ctx context.Context, q quote.Quote, kind Kind) ([]byte, error) {
	gen, ok := s.generators[kind]
	if !ok || gen == nil {
		return nil, fmt.Errorf("no %s generator", kind)
	}
	name := Filename(q, kind)
	data, err := gen.Generate(q)
	if err != nil {
		s.log.Error("document generation failed", zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	if err := s.store.Put(ctx, name, data); err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	s.log.Info("document generated", zap.String("file", name), zap.Int("bytes", len(data)))
	return data, nil
}
