package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/grocery-till/config"
	"github.com/rl1809/grocery-till/internal/adapter/handler"
	"github.com/rl1809/grocery-till/internal/adapter/storage"
	"github.com/rl1809/grocery-till/internal/core/service"
	"github.com/rl1809/grocery-till/internal/port"
)

type repositories struct {
	catalog port.CatalogRepository
	stock   port.StockRepository
	sales   port.SalesRepository
	close   func()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := cfg.Logger.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Unblock the pending stdin read on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	checkout := service.NewCheckoutService(repos.catalog, repos.stock, repos.sales, logger)
	console := handler.NewConsole(checkout, os.Stdin, os.Stdout, logger)

	if err := console.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	products := cfg.Products()

	switch cfg.Store.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

		redisAdapter := storage.NewRedisAdapter(rdb)
		if err := redisAdapter.SeedStock(ctx, products); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to set initial stock: %w", err)
		}

		memory := storage.NewMemoryAdapter(products)
		return &repositories{
			catalog: memory,
			stock:   redisAdapter,
			sales:   memory,
			close:   func() { rdb.Close() },
		}, nil

	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		logger.Info("connected to mysql")

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		if err := mysqlAdapter.SeedProducts(ctx, products); err != nil {
			db.Close()
			return nil, err
		}

		return &repositories{
			catalog: mysqlAdapter,
			stock:   mysqlAdapter,
			sales:   mysqlAdapter,
			close:   func() { db.Close() },
		}, nil
	}

	memory := storage.NewMemoryAdapter(products)
	logger.Debug("using in-memory store", zap.Int("products", len(products)))
	return &repositories{
		catalog: memory,
		stock:   memory,
		sales:   memory,
		close:   func() {},
	}, nil
}
