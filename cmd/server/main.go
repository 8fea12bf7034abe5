package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/controllers/gql"
	"restaurant-orders/internal/controllers/http"
	"restaurant-orders/internal/images"
	"restaurant-orders/internal/infra"
	"restaurant-orders/internal/infra/blob"
	mmysql "restaurant-orders/internal/infra/mysql"
	"restaurant-orders/internal/infra/pubsub"
	"restaurant-orders/internal/infra/rabbitmq"
	redisinfra "restaurant-orders/internal/infra/redis"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/notify"
	"restaurant-orders/internal/repository"
	mysqlrepo "restaurant-orders/internal/repository/mysql"
	"restaurant-orders/internal/repository/softdelete"
	"restaurant-orders/internal/services"
)

const subscriberBuffer = 16

func main() {
	log := logger.NewLogger()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", "no .env file, using process environment")
	}
	cfg := config.Load()
	log.SetDebug(cfg.App.Debug)

	err := run(cfg, log)
	if err != nil {
		log.Error("SERVER", err.Error())
	}
	log.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run wires every component and serves until a signal arrives or the
// listener fails. Resources are released before it returns.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.NewMySQL(cfg.MySQL, cfg.App.Debug)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	log.LogDatabase("CONNECTED", cfg.MySQL.Database, cfg.MySQL.Host+":"+cfg.MySQL.Port)
	repo := repository.NewOrderRepository(softdelete.New(mysqlrepo.NewStore(db)))

	blobs, err := blob.NewDiskStore(cfg.Uploads.Path, cfg.PublicURL())
	if err != nil {
		return fmt.Errorf("uploads: %w", err)
	}
	resolver := images.NewResolver(images.NewSVGMinifier(), blobs, cfg.Images.Workers)

	var bus notify.Bus = pubsub.NewMemoryBus(subscriberBuffer)
	var cache *redisinfra.OrderCache
	if cfg.Redis.Enabled() {
		client, err := redisinfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		log.LogBroker("CONNECTED", cfg.Redis.Addr, "redis")

		cache = redisinfra.NewOrderCache(client, cfg.Redis.CacheTTL)
		if cfg.PubSub.Driver == "redis" {
			bus = redisinfra.NewBus(client, subscriberBuffer)
		}
	} else if cfg.PubSub.Driver == "redis" {
		return errors.New("pubsub: PUBSUB_DRIVER=redis requires REDIS_ADDR")
	}

	publisher := notify.NewPublisher(bus, log)
	dispatcher := notify.NewDispatcher(log)
	if cache != nil {
		dispatcher.Register(cache)
	}
	dispatcher.Register(publisher)
	if cfg.RabbitMQ.Enabled() {
		broker, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return fmt.Errorf("broker: %w", err)
		}
		defer broker.Close()
		dispatcher.Register(rabbitmq.NewChangeHook(broker))
	}

	var printer infra.PrintClientInterface
	if cfg.Printer.URI != "" {
		printer = infra.NewPrintClient(cfg.Printer.URI, cfg.Printer.Timeout)
	} else {
		log.Warn("PRINT", "APP_PRINT_API_URI not set, newPrintOrder is disabled")
	}

	svc := services.NewOrderService(repo, resolver, dispatcher, publisher, printer, log)
	svc.AllowTableReassignment(cfg.App.AllowTableReassign)
	if cache != nil {
		svc.SetOrderCache(cache)
	}

	schema, err := gql.NewSchema(gql.NewResolver(svc, log))
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	srv := &nethttp.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: http.NewRouter(http.NewHandler(schema, cfg, log)),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.LogProcess("SERVER", fmt.Sprintf("listening on :%s%s/graphql", cfg.App.Port, cfg.App.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.LogProcess("SERVER", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
