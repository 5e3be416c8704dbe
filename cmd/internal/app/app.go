// Package app wires the jobchat runtime: config, logging, the chat client,
// its credential source, and the local diagnostics HTTP server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jobchat/cmd/internal/chat"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the jobchat runtime. It owns the chat client, the lifecycle
// bridge, the marketplace backend client, and the diagnostics HTTP server.
type App struct {
	cfg Config
	log Logger

	registry *prometheus.Registry

	dbPool    *pgxpool.Pool
	dbEnabled bool

	client  *chat.Client
	backend *chat.Backend

	phases *chat.ChannelLifecycleSource
	bridge *chat.LifecycleBridge
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogPretty)
	}

	var (
		dbPool    *pgxpool.Pool
		dbEnabled bool
	)
	if cfg.DatabaseURL != "" {
		pool, err := NewDBPool(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		dbPool = pool
		dbEnabled = true
		log.Info("db.enabled")
	} else {
		log.Info("db.disabled")
	}

	creds, err := newCredentialSource(cfg, log, dbPool)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := chat.NewMetrics(registry)

	client := chat.New(log, chat.Config{
		ServerURL:            cfg.ServerURL,
		ConnectTimeout:       cfg.ConnectTimeout,
		WriteTimeout:         cfg.SocketWriteTimeout,
		JoinTimeout:          cfg.JoinTimeout,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	}, nil, creds, metrics)

	phases := chat.NewChannelLifecycleSource()

	return &App{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		client:    client,
		backend:   chat.NewBackend(cfg.BackendBaseURL, creds, nil),
		phases:    phases,
		bridge:    chat.NewLifecycleBridge(log, client, phases),
	}, nil
}

// Client exposes the chat client to embedding hosts.
func (a *App) Client() *chat.Client { return a.client }

// Backend exposes the marketplace REST client to embedding hosts.
func (a *App) Backend() *chat.Backend { return a.backend }

// NotifyForeground reports that the host process returned to foreground.
func (a *App) NotifyForeground() { a.phases.Notify(chat.PhaseForeground) }

// NotifyBackground reports that the host process moved to background.
func (a *App) NotifyBackground() { a.phases.Notify(chat.PhaseBackground) }

// Run connects the chat client, starts the diagnostics HTTP server, and
// blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.client, a.registry)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("app.start",
		"addr", a.cfg.HTTPAddr,
		"server_url", a.cfg.ServerURL,
		"db_enabled", a.dbEnabled,
	)

	a.client.Initialize()
	go a.bridge.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("app.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("app.http.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("app.shutdown.fail", "err", err)
		return err
	}

	a.client.Destroy()
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("app.stopped")
	return nil
}

// newCredentialSource picks where the bearer token comes from. A
// configured static token wins; a database-backed source needs both a pool
// and a user id; the fallback is an empty static source (anonymous until
// login updates it).
func newCredentialSource(cfg Config, log Logger, pool *pgxpool.Pool) (chat.CredentialSource, error) {
	if cfg.Token != "" {
		return chat.NewStaticCredentialSource(cfg.Token), nil
	}
	if pool != nil && cfg.CredentialUserID != "" {
		src, err := chat.NewPostgresCredentialSource(pool, cfg.CredentialUserID)
		if err != nil {
			return nil, err
		}
		log.Info("credential.postgres", "user_id", cfg.CredentialUserID)
		return src, nil
	}
	log.Info("credential.static.empty")
	return chat.NewStaticCredentialSource(""), nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
