package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/apper-canvas/employee-registry-backend/library/yamlenv"
)

type PostgresConfig struct {
	Conn           *yamlenv.Env[string]        `yaml:"conn"`
	MaxConns       *yamlenv.Env[int32]         `yaml:"max_conns"`
	ConnectTimeout *yamlenv.Env[time.Duration] `yaml:"connect_timeout"`
}

type PG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPG(ctx context.Context, conn string, log zerolog.Logger) (*PG, error) {
	return NewPGWithConfig(ctx, PostgresConfig{Conn: yamlenv.New(conn)}, log)
}

func NewPGWithConfig(ctx context.Context, cfg PostgresConfig, log zerolog.Logger) (*PG, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Conn.Get())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	if n := cfg.MaxConns.Get(); n > 0 {
		poolCfg.MaxConns = n
	}

	timeout := cfg.ConnectTimeout.Get()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	log.Info().Str("host", poolCfg.ConnConfig.Host).Msg("postgres connected")

	return &PG{pool: pool, log: log}, nil
}

func (p *PG) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PG) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}
