package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"quillhouse/internal/domain/repositories"
)

// RepositoryConfig carries what every workspace repository needs.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names (dev_projects, prod_files).
type TableNames struct {
	Projects string
	Folders  string
	Files    string
	Messages string
}

func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Projects: prefix + "projects",
		Folders:  prefix + "folders",
		Files:    prefix + "files",
		Messages: prefix + "messages",
	}
}

// PoolOptions sizes the connection pool. Zero values fall back to 25 max, 5 min.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// CreateConnectionPool opens a pgx pool and pings the database.
//
// Supabase serves its transaction pooler on port 6543, where prepared statements do
// not survive between transactions. Unless the URL already chose
// default_query_exec_mode, the pool switches to QueryExecModeCacheDescribe there.
func CreateConnectionPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	cfg.MaxConns = 25
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = min(5, cfg.MaxConns)
	if opts.MinConns > 0 {
		cfg.MinConns = min(opts.MinConns, cfg.MaxConns)
	}

	conn := cfg.ConnConfig
	if conn.Port == 6543 && conn.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("transaction pooler detected, using describe cache", "host", conn.Host)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database pool ready", "max_conns", cfg.MaxConns, "min_conns", cfg.MinConns)
	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.TxFrom(ctx); tx != nil {
		return tx
	}
	return pool
}
