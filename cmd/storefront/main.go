// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/obs"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
)

func main() {
	cfg := config.Load()
	log := obs.NewLogger()
	log.Info("service_starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("pgxpool_new_error", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	dispatcher := notify.NewDispatcher(log, cfg.NotifyEndpoint, cfg.NotifyBuffer)
	dispatcher.Start(ctx)

	checkout := service.NewCheckout(pool, dispatcher, log)

	handler := httpapi.NewHandler(log, checkout,
		repository.NewOrder(pool),
		repository.NewProduct(pool),
		repository.NewCart(pool),
		repository.NewCustomer(pool),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		log.Error("http_shutdown_error", "err", err)
	}

	// Stop the dispatcher after the server so in-flight placements can
	// still enqueue, then let it drain.
	cancel()
	dispatcher.Wait()

	log.Info("service_stopped")
}
