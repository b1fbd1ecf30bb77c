package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orderflow/cmd"
	amqpout "orderflow/internal/adapters/out/amqp"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/rpc"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/rabbit"

	gommonlog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := cmd.LoadConfig(".env")
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.Log.ServiceName,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := openDatabase(ctx, cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sqlDB.Close()) }()

	clients, closeClients, err := dialClients(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeClients()) }()

	app := cmd.NewCompositionRoot(cfg, gormDB, clients, log)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	consumerDone := make(chan error, 1)
	consumer := app.CreateConsumer(rabbit.NewDialer(cfg.RabbitMQ.URL, app.RabbitRetryPolicy(), log))
	go func() { consumerDone <- consumer.Run(ctx) }()

	e := app.CreateHTTPServer().NewEcho()
	e.Logger.SetLevel(gommonlog.ERROR)

	serverDone := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "port", cfg.HTTP.Port), "http server is listening")
		if startErr := e.Start(":" + cfg.HTTP.Port); !errors.Is(startErr, http.ErrServerClosed) {
			serverDone <- startErr
			return
		}
		serverDone <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutdown signal received")
	case consumerErr := <-consumerDone:
		if consumerErr != nil {
			runErr = fmt.Errorf("consumer stopped: %w", consumerErr)
		}
	case serverErr := <-serverDone:
		if serverErr != nil {
			runErr = fmt.Errorf("http server stopped: %w", serverErr)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return multierr.Combine(runErr, e.Shutdown(shutdownCtx))
}

func openDatabase(ctx context.Context, cfg cmd.DBConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormpostgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err = postgres.Migrate(ctx, gormDB); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate database: %w", err), sqlDB.Close())
	}
	return gormDB, nil
}

// dialClients connects the remote services, the publisher and the attempt
// counter. The returned func closes whatever was opened.
func dialClients(ctx context.Context, cfg cmd.Config, log *logger.Logger) (cmd.Clients, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		return err
	}

	opts := rpc.Options{ConnectTimeout: cfg.RPC.ConnectTimeout, CallTimeout: cfg.RPC.CallTimeout}
	conns := map[string]*rpc.Conn{}
	for _, target := range []string{cfg.RPC.CalculatorURL, cfg.RPC.APIURL, cfg.RPC.AuthURL, cfg.RPC.FileURL} {
		if _, ok := conns[target]; ok {
			continue
		}
		conn, err := rpc.Dial(ctx, target, opts)
		if err != nil {
			return cmd.Clients{}, nil, multierr.Append(err, closeAll())
		}
		log.Info(log.WithField(ctx, "target", target), "connected to remote service")
		conns[target] = conn
		closers = append(closers, conn.Close)
	}

	broker := amqpout.NewBrokerChannels(rabbit.NewDialer(cfg.RabbitMQ.URL, cmd.RabbitRetryPolicy(cfg.RabbitMQ), log), cfg.RabbitMQ.ExchangeName)
	if err := broker.Connect(ctx); err != nil {
		return cmd.Clients{}, nil, multierr.Append(fmt.Errorf("connect publisher: %w", err), closeAll())
	}
	publisher := amqpout.NewPublisher(cfg.RabbitMQ.ExchangeName, broker, log)
	closers = append(closers, publisher.Close)

	clients := cmd.Clients{
		Calculator: rpc.NewCalculatorClient(conns[cfg.RPC.CalculatorURL]),
		Details:    rpc.NewDetailsClient(conns[cfg.RPC.APIURL]),
		Lots:       rpc.NewLotClient(conns[cfg.RPC.APIURL]),
		Identity:   rpc.NewIdentityClient(conns[cfg.RPC.AuthURL]),
		Files:      rpc.NewFileClient(conns[cfg.RPC.FileURL]),
		Publisher:  publisher,
	}

	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return cmd.Clients{}, nil, multierr.Append(fmt.Errorf("parse redis url: %w", err), closeAll())
		}
		client := redis.NewClient(redisOpts)
		if err = client.Ping(ctx).Err(); err != nil {
			log.Warn(log.WithField(ctx, "error", err.Error()), "redis unavailable, attempt counter disabled")
			_ = client.Close()
		} else {
			clients.Attempts = client
			closers = append(closers, client.Close)
		}
	}

	return clients, closeAll, nil
}
