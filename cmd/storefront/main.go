package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/api"
	"github.com/nikolayk812/storefront-cart/internal/banner"
	"github.com/nikolayk812/storefront-cart/internal/cartstore"
	"github.com/nikolayk812/storefront-cart/internal/checkout"
	"github.com/nikolayk812/storefront-cart/internal/client"
	"github.com/nikolayk812/storefront-cart/internal/config"
	"github.com/nikolayk812/storefront-cart/internal/events"
	"github.com/nikolayk812/storefront-cart/internal/logger"
	"github.com/nikolayk812/storefront-cart/internal/metrics"
	"github.com/nikolayk812/storefront-cart/internal/repository"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.Env,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	repo, closeRepo, err := repository.Open(ctx, repository.Backend{
		Kind:          cfg.StoreBackend,
		PostgresDSN:   cfg.PostgresDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisTTL:      cfg.RedisTTL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		return fmt.Errorf("repository.Open: %w", err)
	}
	defer func() {
		if err := closeRepo(context.Background()); err != nil {
			log.Error("failed to close cart backend", "error", err)
		}
	}()

	recorder := metrics.NewRecorder()

	store := cartstore.New(repo, log,
		cartstore.WithSaveTimeout(cfg.StoreSaveTimeout),
		cartstore.WithSaveHook(recorder.CartSaved),
	)

	if _, err := store.SwitchIdentity(ctx, ""); err != nil {
		store.Close()
		return fmt.Errorf("store.SwitchIdentity: %w", err)
	}

	backend, err := client.New(client.Config{
		BaseURL:         cfg.APIBaseURL,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	}, &http.Client{}, log)
	if err != nil {
		store.Close()
		return fmt.Errorf("client.New: %w", err)
	}

	observers := []checkout.Observer{recorder}

	var publisher *events.Publisher
	if cfg.KafkaEnabled() {
		publisher = events.NewPublisher(events.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic), log)
		observers = append(observers, publisher)
	}

	board := banner.NewBoard()

	policy := checkout.DefaultPolicy()
	policy.FallbackAfter = cfg.FallbackAfter
	policy.DismissAfter = cfg.DismissAfter

	flow := checkout.NewFlow(backend, store, board, policy, log, observers...)

	handler := api.NewHandler(store, flow, board, backend, backend, backend, log)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(handler, api.RouterConfig{
			Timeout: cfg.HandlerTimeout,
			Metrics: recorder.Handler(),
			Observe: recorder,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HandlerTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", "addr", cfg.HTTPAddr, "backend", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	wg.Wait()

	// discarded late results are still published
	flow.Wait()
	store.Close()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close event publisher", "error", err)
		}
	}

	log.Info("bye")
	return nil
}
