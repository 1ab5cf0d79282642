package main

import (
	"context"
	"fmt"

	"asana-ticket-numbering/config"
	"asana-ticket-numbering/internal/ticket/repository"
	pgRepo "asana-ticket-numbering/internal/ticket/repository/postgres"
	sqliteRepo "asana-ticket-numbering/internal/ticket/repository/sqlite"
	upstashRepo "asana-ticket-numbering/internal/ticket/repository/upstash"
	"asana-ticket-numbering/pkg/log"
	"asana-ticket-numbering/pkg/upstash"
)

// store bundles the subscription repository with the lifecycle of its backend.
type store struct {
	repo  repository.SubscriptionRepository
	ping  func(ctx context.Context) error
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, l log.Logger) (store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverUpstash:
		client := upstash.NewClient(cfg.Upstash.URL, cfg.Upstash.Token, cfg.Upstash.Timeout)
		return store{
			repo:  upstashRepo.New(client, l),
			ping:  client.Ping,
			close: func() {},
		}, nil

	case config.StoreDriverPostgres:
		if err := pgRepo.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return store{}, err
		}
		pool, err := pgRepo.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return store{}, err
		}
		l.Info(ctx, "PostgreSQL store ready")
		return store{
			repo:  pgRepo.New(pool, l),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	case config.StoreDriverSQLite:
		db, err := sqliteRepo.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return store{}, err
		}
		l.Infof(ctx, "SQLite store ready at %s", cfg.SQLite.Path)
		return store{
			repo:  sqliteRepo.New(db, l),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}
	return store{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
