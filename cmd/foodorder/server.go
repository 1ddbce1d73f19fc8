package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonminaichev/foodorder/internal/broker/rabbitmq"
	"github.com/antonminaichev/foodorder/internal/events"
	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/menu"
	"github.com/antonminaichev/foodorder/internal/order"
	"github.com/antonminaichev/foodorder/internal/payment"
	"github.com/antonminaichev/foodorder/internal/router"
	"github.com/antonminaichev/foodorder/internal/storage"
	pgstorage "github.com/antonminaichev/foodorder/internal/storage/postgres"
	redisstore "github.com/antonminaichev/foodorder/internal/storage/redis"
	"github.com/antonminaichev/foodorder/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Storage
	store, err = pgstorage.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("initialize postgres storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	rdb := redisstore.NewClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()

	if err := pingDependencies(ctx, 5*time.Second,
		dependency{name: "database", ping: store.Ping},
		dependency{name: "redis " + cfg.RedisAddress, ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	); err != nil {
		return err
	}
	cache := redisstore.NewStore(rdb, cfg.MenuCacheTTL, cfg.CartTTL)

	var pub events.Publisher = events.LogPublisher{}
	if cfg.RabbitURL != "" {
		rp, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			return err
		}
		defer rp.Close()
		pub = rp
	}
	dispatcher := events.NewDispatcher(pub, cfg.EventWorkers, cfg.EventBuffer)

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL, cfg.AdminLogins...)
	menuSvc := menu.NewService(store, cache)
	orderSvc := order.NewService(store, menuSvc, cache, dispatcher, order.Config{
		Policy:  order.Policy{TaxRate: cfg.TaxRate, TakeawayFee: cfg.TakeawayFee},
		ReadyIn: time.Duration(cfg.ReadyMinutes) * time.Minute,
	})
	gateway := payment.NewHTTPGateway(cfg.GatewayAddress, cfg.GatewayKeyID, cfg.GatewayKeySecret)
	paymentSvc := payment.NewService(store, gateway, payment.NewVerifier(cfg.GatewayKeySecret), dispatcher,
		payment.Config{KeyID: cfg.GatewayKeyID, Currency: cfg.Currency})

	r := router.NewRouter(router.Handlers{
		User:    user.NewHandler(userSvc),
		Menu:    menu.NewHandler(menuSvc),
		Order:   order.NewHandler(orderSvc),
		Payment: payment.NewHandler(paymentSvc),
	}, []byte(cfg.JWTSecret), cfg.GatewayWebhookSecret, store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Log.Info("starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Log.Info("server stopped gracefully")
	return nil
}

type dependency struct {
	name string
	ping func(ctx context.Context) error
}

// pingDependencies checks each dependency in order within one shared timeout.
func pingDependencies(ctx context.Context, timeout time.Duration, deps ...dependency) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for _, d := range deps {
		if err := d.ping(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", d.name, err)
		}
	}
	return nil
}
