package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/app"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	"github.com/ariefcatur/go-storefront/internal/logger"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Must(logger.Config{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.LogEncoding,
		Level:         cfg.LogLevel,
	}).With(zap.String("service", cfg.ServiceName))
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open app", zap.Error(err))
	}
	defer a.Close()

	if a.Relay != nil {
		go func() {
			if err := a.Relay.Run(ctx, nil); err != nil {
				log.Error("relay stopped", zap.Error(err))
			}
		}()
	}
	a.Bus.Subscribe(notify.TopicCartUpdated, func(t notify.Topic) { log.Debug("notification", zap.String("topic", string(t))) })
	a.Bus.Subscribe(notify.TopicCurrencyChanged, func(t notify.Topic) { log.Debug("notification", zap.String("topic", string(t))) })

	router := httpx.NewRouter(log.Named("http"))
	h := &httpx.StorefrontHandler{
		Catalog:  a.Catalog,
		Stock:    a.Stock,
		Cart:     a.Cart,
		Checkout: a.Checkout,
		Orders:   a.Orders,
		Currency: a.Currency,
		Log:      log.Named("http"),
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	a.Close() // flush event sink before the loop context goes away
	cancel()
}
