package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdssp/planet-crs-registry/config"
	"github.com/pdssp/planet-crs-registry/internal/wkts/repository"
)

type DBOptions struct {
	DSN       string
	ConnectTO time.Duration
	PingTO    time.Duration
}

func OpenDB(ctx context.Context, opt DBOptions) (*pgxpool.Pool, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	pool, err := pgxpool.New(cctx, opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}

func PostgresDSN(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		db.User, db.Password, db.Host, db.Port, db.Name)
}

// OpenStore opens the record store selected by DB_DRIVER.
func OpenStore(ctx context.Context, db config.DatabaseConfig) (repository.RecordStore, error) {
	switch db.Driver {
	case "postgres":
		pool, err := OpenDB(ctx, DBOptions{DSN: PostgresDSN(db)})
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(ctx, pool)
	case "sqlite":
		return repository.NewSqliteStore(db.SqlitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}
}
