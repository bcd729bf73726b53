package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mandalnilabja/scenesculpt/internal/app"
	"github.com/mandalnilabja/scenesculpt/internal/config"
	"github.com/mandalnilabja/scenesculpt/internal/export"
	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/provider"
	"github.com/mandalnilabja/scenesculpt/internal/provider/stability"
	"github.com/mandalnilabja/scenesculpt/internal/secret"
	"github.com/mandalnilabja/scenesculpt/internal/session"
	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/tokenizer"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/studio"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/middleware"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/scenesculpt/internal/viewport"
)

// credentialCacheTTL bounds how long a stored key is reused without a lookup.
const credentialCacheTTL = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scenesculpt: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.EnsureConfigFile(); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := storage.NewSQLiteStorage(config.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	if err := ensureAdminPassword(store); err != nil {
		return err
	}
	if err := seedCredential(store, logger); err != nil {
		return err
	}

	// 3. Generation client
	keys, resolver, err := newKeySource(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	if resolver != nil {
		defer resolver.Close()
	}

	client, err := stability.New(stability.Options{
		BaseURL:  cfg.BaseURL,
		EngineID: cfg.EngineID,
		Keys:     keys,
		DumpDir:  cfg.DebugDumpDir,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	// 4. Session
	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sess, err := session.New(session.Options{
		Provider:       client,
		Views:          viewport.NewFileService(cfg.Views),
		Exporter:       exporter,
		History:        store,
		Tokens:         newTokenCounter(tokenizer.New(), tokenizerLoadTimeout, logger),
		EngineID:       cfg.EngineID,
		ImportSize:     cfg.ImportSize,
		CropAnchor:     imaging.Anchor(cfg.CropAnchor),
		BackgroundsDir: config.BackgroundsDir(),
		RequestID:      middleware.GetRequestID,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	// 5. HTTP
	authCache, err := auth.NewVerifiedCache()
	if err != nil {
		return fmt.Errorf("failed to create auth cache: %w", err)
	}
	defer authCache.Close()

	repoOpts := handler.RepoOptions{
		EngineID: cfg.EngineID,
		Defaults: cfg.Defaults,
		Logger:   logger,
	}
	if resolver != nil {
		repoOpts.Keys = resolver
	}
	repo := handler.NewRepo(store, sess, repoOpts)

	router := app.NewRouter(repo, &app.RouterOptions{
		Logger:    logger,
		Passwords: store,
		AuthCache: authCache,
	})
	srv := app.NewServer(cfg, router, logger)

	printStartupBanner(cfg, studio.DefaultMaxUpload)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newKeySource picks where the API key comes from. The resolver is non-nil
// only for the store source, where credential writes must invalidate it.
func newKeySource(ctx context.Context, cfg *config.Config, store storage.Storage, logger *slog.Logger) (provider.KeySource, *provider.CredentialResolver, error) {
	switch cfg.APIKeySource {
	case config.KeySourceEnv:
		return provider.NewEnvKeySource(provider.EnvAPIKey), nil, nil

	case config.KeySourceSSM:
		client, err := secret.NewSSMClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SSM client: %w", err)
		}
		return &secret.SSMKeySource{Client: client, Name: cfg.SSMParameter, Logger: logger}, nil, nil
	}

	resolver, err := provider.NewCredentialResolver(store, cfg.CredentialName, credentialCacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create credential resolver: %w", err)
	}
	return resolver, resolver, nil
}

func newExporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (export.Uploader, error) {
	if cfg.ExportBucket == "" {
		return &export.FileUploader{Dir: cfg.ExportDir, Logger: logger}, nil
	}

	client, err := export.NewS3Client(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &export.S3Uploader{Client: client, Bucket: cfg.ExportBucket, Prefix: cfg.ExportPrefix, Logger: logger}, nil
}
