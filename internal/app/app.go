package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"feedctl/config"
	"feedctl/internal/adapter/out/api/rest"
	sessionfile "feedctl/internal/adapter/out/session/file"
	sessionmem "feedctl/internal/adapter/out/session/inmemory"
	"feedctl/internal/adapter/out/session/redisstore"
	"feedctl/internal/adapter/out/storage/inmemory"
	"feedctl/internal/service"
	"feedctl/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the pieces supplied by the front end.
type Options struct {
	Renderer service.Renderer
	Notifier service.Notifier

	// TokenStore replaces the store selected by session.store.
	TokenStore service.TokenStore
	// Transport is the base round tripper of the API client.
	Transport http.RoundTripper
}

type App struct {
	cfg config.Config

	Feed   *service.FeedService
	Auth   *service.AuthService
	Tokens service.TokenStore

	registry *prometheus.Registry
	closers  []func() error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	log := logger.FromContext(ctx)

	if opts.Renderer == nil || opts.Notifier == nil {
		return nil, errors.New("app: renderer and notifier are required")
	}

	a := &App{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tokens := opts.TokenStore
	if tokens == nil {
		var err error
		tokens, err = a.newTokenStore(cfg.Session)
		if err != nil {
			return nil, err
		}
	}
	a.Tokens = tokens

	client, err := rest.New(rest.Options{
		BaseURL:      cfg.API.BaseURL,
		PostsPath:    cfg.API.PostsPath,
		LoginPath:    cfg.API.LoginPath,
		RegisterPath: cfg.API.RegisterPath,
		APIKey:       cfg.API.APIKey,
		HTTPClient: &http.Client{
			Timeout:   cfg.API.Timeout,
			Transport: rest.InstrumentTransport(opts.Transport, a.registry),
		},
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("api client: %w", err)
	}

	a.Feed = service.NewFeedService(client, tokens, inmemory.NewPostStorage(), opts.Renderer, opts.Notifier)
	a.Auth = service.NewAuthService(client, tokens)

	log.Debug("app initialized", "api", cfg.API.BaseURL, "session_store", cfg.Session.Store)
	return a, nil
}

func (a *App) newTokenStore(cfg config.SessionConfig) (service.TokenStore, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		return redisstore.New(client, cfg.Redis.Key), nil
	case config.SessionStoreMemory:
		return sessionmem.New(), nil
	case config.SessionStoreFile, "":
		return sessionfile.New(cfg.File), nil
	default:
		return nil, fmt.Errorf("%w: unknown session store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// MetricsHandler exposes the API client metrics in the Prometheus format.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry})
}

// ServeMetrics serves /metrics on metrics.addr until ctx is done. It returns
// at once when no address is configured.
func (a *App) ServeMetrics(ctx context.Context) error {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return nil
	}
	log := logger.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
