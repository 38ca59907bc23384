package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"recipebox"
	"recipebox/api"
	"recipebox/catalog"
	"recipebox/forms"
	"recipebox/mealdb"
	"recipebox/slack"
	"recipebox/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SETUP: Failed to read .env", "error", err)
	}

	var catalogConfig recipebox.CatalogConfig
	if err := envdecode.Decode(&catalogConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var storeConfig recipebox.StoreConfig
	if err := envdecode.Decode(&storeConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var serverConfig recipebox.ServerConfig
	if err := envdecode.Decode(&serverConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	telemetry := recipebox.NoopTelemetry()
	if serverConfig.TelemetryEnabled {
		var err error
		telemetry, err = recipebox.InitOtel(ctx, recipebox.TracerNameServer)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return
		}
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	client, err := mealdb.NewClient(mealdb.ClientOpts{
		BaseURL:    catalogConfig.MealDBBaseURL,
		HTTPClient: &http.Client{Timeout: catalogConfig.RequestTimeout},
		Tracer:     telemetry.Tracer(recipebox.TracerNameMealDB),
	})
	if err != nil {
		slog.Error("SETUP: Failed to create recipe API client", "error", err)
		return
	}

	filterLogger, flush, err := newFilterLogger(catalogConfig.FilterLogPath)
	if err != nil {
		slog.Error("SETUP: Failed to create filter logger", "error", err)
		return
	}
	defer func() {
		if err := flush(); err != nil {
			slog.Error("SETUP: Failed to flush filter log", "error", err)
		}
	}()

	engine := catalog.NewEngine(client, catalog.Options{
		Areas:             catalogConfig.BaselineAreas,
		DetailConcurrency: catalogConfig.DetailConcurrency,
		Logger:            filterLogger,
		Tracer:            telemetry.Tracer(recipebox.TracerNameCatalog),
		Meter:             telemetry.Meter(recipebox.TracerNameCatalog),
	})
	if err := engine.LoadBaseline(ctx); err != nil {
		// the catalog opens with an error banner; a reset or an unfiltered listing fetches again
		slog.Error("SETUP: Failed to load catalog baseline", "error", err)
	}

	backend, closeBackend, err := newBackend(ctx, storeConfig)
	if err != nil {
		slog.Error("SETUP: Failed to open store backend", "backend", storeConfig.Backend, "error", err)
		return
	}
	defer func() {
		if err := closeBackend(); err != nil {
			slog.Error("SETUP: Failed to close store backend", "error", err)
		}
	}()

	var scheme store.PasswordScheme = store.Plaintext{}
	if storeConfig.HashPasswords {
		scheme = store.Argon2id{}
	}

	cart := store.NewCart(backend.State(store.KeyCart), storeConfig.UnitPriceCents)
	wishlist := store.NewWishlist(backend.State(store.KeyWishlist))
	auth := store.NewAuth(backend.State(store.KeyUser), backend.State(store.KeyUsers), scheme)
	for name, load := range map[string]func(context.Context) error{
		store.KeyCart:     cart.Load,
		store.KeyWishlist: wishlist.Load,
		"auth":            auth.Load,
	} {
		if err := load(ctx); err != nil {
			slog.Error("SETUP: Failed to load store", "store", name, "error", err)
			return
		}
	}
	slog.Info("SETUP: Stores loaded", "backend", storeConfig.Backend)

	if serverConfig.DebugDump {
		recipebox.Dump(os.Stderr, "config", catalogConfig, storeConfig, serverConfig)
		recipebox.Dump(os.Stderr, "cart", cart.State())
	}

	var sink forms.Sink = forms.LogSink{}
	if serverConfig.SlackWebhookURL != "" {
		sink = forms.SlackSink{
			Client:  slack.NewClient(serverConfig.SlackWebhookURL, &http.Client{Timeout: 10 * time.Second}),
			Channel: serverConfig.SlackChannel,
		}
		slog.Info("SETUP: Submissions will be posted to Slack", "channel", serverConfig.SlackChannel)
	}

	handler, err := api.NewHandler(api.HandlerOpts{
		View:             catalog.NewView(engine, catalogConfig.PageSize),
		Engine:           engine,
		Cart:             cart,
		Wishlist:         wishlist,
		Auth:             auth,
		Sink:             sink,
		WishlistPageSize: catalogConfig.WishlistPageSize,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create handler", "error", err)
		return
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: serverConfig.Addr,
		Handler: api.NewRouter(handler, api.RouterConfig{
			AllowedOrigins: serverConfig.AllowedOrigins,
			Tracer:         telemetry.Tracer(recipebox.TracerNameServer),
			Meter:          telemetry.Meter(recipebox.TracerNameServer),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("SERVER: Listening", "addr", serverConfig.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("SERVER: Stopped", "error", err)
		}
	case <-ctx.Done():
		slog.Info("SERVER: Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("SERVER: Graceful shutdown failed", "error", err)
		}
	}
}

// newFilterLogger writes filter runs to a timestamped file under dir, or discards them when dir is empty.
func newFilterLogger(dir string) (recipebox.FilterLogger, func() error, error) {
	if dir == "" {
		return recipebox.NewNoOpFilterLogger(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	logFile, err := os.OpenFile(recipebox.NewFilterLogFilePath(dir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := recipebox.NewFileFilterLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
