package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/app/config"
	apphttp "tarificateur/go_backend/internal/app/http"
	"tarificateur/go_backend/internal/app/http/handlers"
	"tarificateur/go_backend/internal/client"
	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
	"tarificateur/go_backend/internal/domain/quote/document/docx"
	pdfgen "tarificateur/go_backend/internal/domain/quote/document/gofpdf"
	"tarificateur/go_backend/internal/infra/db/postgres"
	"tarificateur/go_backend/internal/infra/db/sqlite"
	"tarificateur/go_backend/internal/infra/docstore"
	"tarificateur/go_backend/internal/web"
)

// Store is a quote repository that can create its own schema.
type Store interface {
	quote.Repository
	Migrate(ctx context.Context) error
}

// OpenStore connects to PostgreSQL for postgres:// URLs and opens a SQLite
// file otherwise.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.Postgres() {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return db, nil
	}
	repo, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("sqlite %s: %w", cfg.DatabaseURL, err)
	}
	return repo, nil
}

func openDocStore(ctx context.Context, cfg config.Config, log *zap.Logger) (document.Store, func(), error) {
	if cfg.RedisAddr != "" {
		rs, err := docstore.NewRedis(ctx, cfg.RedisAddr, cfg.DocTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("documents stored in redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.DocTTL))
		return rs, func() { rs.Close() }, nil
	}
	dir, err := docstore.NewDir(cfg.DocDir)
	if err != nil {
		return nil, nil, err
	}
	log.Info("documents stored on disk", zap.String("dir", cfg.DocDir))
	return dir, func() {}, nil
}

// RunAPI serves the quote API until ctx is cancelled.
func RunAPI(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	docStore, closeDocs, err := openDocStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	docs := document.NewService(docStore,
		docx.New(cfg.TemplateDir, log.Named("docx")),
		pdfgen.New(cfg.FontDir, log.Named("pdf")),
		log.Named("documents"))
	h := handlers.New(store, docs, log.Named("api"))

	return serve(ctx, "api", cfg.HTTPAddr, apphttp.NewRouter(cfg, h, log.Named("http")), log)
}

// RunWeb serves the front-end until ctx is cancelled.
func RunWeb(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	api := client.New(cfg.APIBaseURL, cfg.APIToken)
	router, err := web.NewRouter(api, log.Named("web"))
	if err != nil {
		return err
	}
	return serve(ctx, "web", cfg.WebAddr, router, log)
}

func serve(ctx context.Context, name, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("server", name), zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("stopped", zap.String("server", name))
	return nil
}
