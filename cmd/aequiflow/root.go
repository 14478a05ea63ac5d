package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/aequiflow/internal/api"
	"github.com/hyperengineering/aequiflow/internal/config"
	"github.com/hyperengineering/aequiflow/internal/embedding"
	"github.com/hyperengineering/aequiflow/internal/session"
	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/triage"
	"github.com/hyperengineering/aequiflow/internal/wizard"
	"github.com/hyperengineering/aequiflow/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "aequiflow",
	Short:        "AequiFlow - civic infrastructure transparency service",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(referenceCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	data, err := store.LoadSQLite(ctx, cfg.Dataset.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized",
		"path", cfg.Dataset.Path,
		"projects", len(data.Projects()),
		"reports", len(data.Reports()),
	)

	var matcher *triage.Matcher
	if cfg.Embedding.Enabled() {
		embedder := embedding.NewOpenAI(cfg.Embedding.APIKey, cfg.Embedding.Model)
		matcher = triage.NewMatcher(embedder, data.Reports(),
			float32(cfg.Embedding.SimilarityThreshold), cfg.Embedding.MaxHints)
		slog.Info("embedder initialized", "model", embedder.ModelName())
	} else {
		slog.Info("similar-report hints disabled", "reason", "no_api_key")
	}

	sessions := session.NewManager(data.ValidationItems(), session.Options{
		IdleTTL: cfg.Session.IdleTTL.Std(),
		Wizard: wizard.Options{
			DetectionDelay:   cfg.Wizard.LocationDelay.Std(),
			DetectedLocation: cfg.Wizard.DetectedLocation,
		},
	})
	defer sessions.Close()

	secret, err := sessionSecret(cfg)
	if err != nil {
		return err
	}

	handler := api.NewHandler(api.HandlerOptions{
		Store:    data,
		Sessions: sessions,
		Matcher:  matcher,
		Cookies: api.NewCookieStore(api.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secret: secret,
			MaxAge: cfg.Session.MaxAge.Std(),
			Secure: cfg.Session.CookieSecure,
		}),
		CookieName: cfg.Session.CookieName,
		Version:    Version,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	var wg sync.WaitGroup
	sweeper := worker.NewSessionSweepWorker(sessions, cfg.Session.SweepInterval.Std())
	startWorker(ctx, &wg, "session-sweep", sweeper.Run)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called.
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown initiated")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			cfg.Server.ShutdownTimeout.Std())
		defer shutdownCancel()

		// Drains in-flight requests
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	// A failed server must still stop the workers.
	cancel()
	wg.Wait()

	if err != nil {
		slog.Error("server error", "error", err)
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

// sessionSecret returns the cookie signing key. In dev mode an unset secret
// is replaced by a random key, so cookies do not survive a restart.
func sessionSecret(cfg *config.Config) ([]byte, error) {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret), nil
	}
	if !cfg.DevMode {
		return nil, errors.New("session secret is required")
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, errors.New("generate session secret")
	}
	slog.Warn("using ephemeral session secret", "reason", "dev_mode")
	return key, nil
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
