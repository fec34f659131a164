package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/sizetable/internal/config"
	"github.com/JonMunkholm/sizetable/internal/glossary"
)

// Connect opens the optional Postgres pool and Redis client named in cfg.
// The returned close func releases whatever was opened. A configured backend
// that cannot be reached is an error.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Deps, func(), error) {
	deps := Deps{Logger: logger}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return Deps{}, func() {}, err
		}
		closers = append(closers, pool.Close)

		if err := glossary.NewPGStore(pool).EnsureSchema(ctx); err != nil {
			closeAll()
			return Deps{}, func() {}, err
		}
		deps.Pool = pool

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}
	}

	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			closeAll()
			return Deps{}, func() {}, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		deps.Redis = client
		logger.Info("connected to redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.GlossaryKey)
	}

	return deps, closeAll, nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
