package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safar/marketplace/internal/account"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/cache"
	"github.com/safar/marketplace/internal/catalog"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/coupon"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/events"
	"github.com/safar/marketplace/internal/graph"
	"github.com/safar/marketplace/internal/httpx"
	"github.com/safar/marketplace/internal/logger"
	"github.com/safar/marketplace/internal/metrics"
	"github.com/safar/marketplace/internal/order"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marketplace: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	log.Info("connected to database")

	txOpts := database.DefaultTxOptions()
	txOpts.MaxRetries = cfg.Database.TxMaxRetries

	reg := metrics.NewRegistry()
	domainMetrics := metrics.NewDomain(reg)

	orderOpts := []order.Option{
		order.WithMetrics(domainMetrics),
		order.WithTxOptions(txOpts),
		order.WithStrictTransitions(cfg.Orders.StrictTransitions),
		order.WithTopic(cfg.Kafka.Topic),
	}

	if cfg.Redis.Addr != "" {
		rdb := cache.NewClient(cfg.Redis)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unreachable, order cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			orderOpts = append(orderOpts, order.WithCache(cache.NewOrders(rdb, cfg.Redis.OrderTTL)))
			log.Info("order cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	tokens := auth.NewTokens(cfg.Auth)
	resolver := graph.NewResolver(
		account.NewService(db, tokens, log, account.WithTxOptions(txOpts)),
		catalog.NewService(db, log, catalog.WithTxOptions(txOpts)),
		coupon.NewService(db, log),
		order.NewService(db, log, orderOpts...),
		log,
	)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer pub.Close()

		relay := events.NewRelay(db, pub, log.Named("outbox"),
			events.WithInterval(cfg.Kafka.RelayInterval),
			events.WithBatch(cfg.Kafka.RelayBatch),
			events.WithPublishedHook(domainMetrics.OutboxPublished),
		)
		g.Go(func() error {
			relay.Run(gctx)
			return nil
		})
		log.Info("outbox relay started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		log.Info("no kafka brokers configured, outbox relay disabled")
	}

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: httpx.NewRouter(httpx.Options{
			Schema:         schema,
			Tokens:         tokens,
			DB:             db,
			Registry:       reg,
			Metrics:        metrics.NewHTTP(reg),
			Log:            log,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
