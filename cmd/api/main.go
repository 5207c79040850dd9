package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pizzashack/internal/config"
	"pizzashack/internal/gateway/email"
	"pizzashack/internal/gateway/payment"
	"pizzashack/internal/httpserver"
	basketrepo "pizzashack/internal/repository/basket"
	customerrepo "pizzashack/internal/repository/customer"
	tokenrepo "pizzashack/internal/repository/token"
	basketsvc "pizzashack/internal/service/basket"
	customersvc "pizzashack/internal/service/customer"
	menusvc "pizzashack/internal/service/menu"
	"pizzashack/internal/store"
	"pizzashack/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}

	menuService, err := menusvc.Load(cfg.MenuPath)
	if err != nil {
		logger.Fatalf("load menu: %v", err)
	}

	basketRepo := basketrepo.NewFile(st)
	customerRepo := customerrepo.NewFile(st)
	tokenRepo := tokenrepo.NewFile(st)

	customerService := customersvc.New(customerRepo, tokenRepo, cfg.TokenTTL)
	paymentClient := payment.NewClient(cfg.PaymentURL, cfg.PaymentKey, cfg.GatewayTimeout)
	emailClient := email.NewClient(cfg.EmailURL, cfg.EmailDomain, cfg.EmailKey, cfg.EmailSender, cfg.GatewayTimeout)
	basketService := basketsvc.New(basketRepo, customerRepo, customerService, paymentClient, emailClient)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, st, httpserver.Deps{
		CustomerSvc: customerService,
		BasketSvc:   basketService,
		MenuSvc:     menuService,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	purger := worker.NewPurger(tokenRepo, basketRepo, cfg.PurgeInterval, logger)
	go purger.Run(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopWorker()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
