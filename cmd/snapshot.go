package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/apper-canvas/employee-registry-backend/internal/config"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/snapshot"
	"github.com/apper-canvas/employee-registry-backend/library/pg"
)

const (
	driverFile     = "file"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
	driverRedis    = "redis"
	driverS3       = "s3"
	driverMemory   = "memory"

	defaultSnapshotName = "hr_employees"
)

// initSnapshotter opens the configured snapshot backend. The returned func
// releases whatever the backend holds open.
func initSnapshotter(ctx context.Context, cfg *config.Config, pgClient *pg.PG) (snapshot.Snapshotter, func(), error) {
	name := cfg.Snapshot.Name.Get()
	if name == "" {
		name = defaultSnapshotName
	}
	noop := func() {}

	switch driver := cfg.Snapshot.Driver.Get(); driver {
	case driverFile:
		f, err := snapshot.NewFile(cfg.Snapshot.File.Dir.Get(), name)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("path", f.Path()).Msg("file snapshot")
		return f, noop, nil

	case driverSQLite, "":
		s, err := snapshot.NewSQLite(cfg.Snapshot.SQLite.Path.Get(), name)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case driverPostgres:
		p := snapshot.NewPostgres(pgClient.Pool(), name)
		if err := p.EnsureSchema(ctx); err != nil {
			return nil, noop, err
		}
		return p, noop, nil

	case driverRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL.Get())
		if err != nil {
			return nil, noop, fmt.Errorf("redis.ParseURL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return snapshot.NewRedis(client, name), func() { _ = client.Close() }, nil

	case driverS3:
		s3cfg := cfg.Snapshot.S3
		s, err := snapshot.OpenS3(ctx, snapshot.S3Config{
			Bucket:    s3cfg.Bucket.Get(),
			Region:    s3cfg.Region.Get(),
			Endpoint:  s3cfg.Endpoint.Get(),
			PathStyle: s3cfg.PathStyle.Get(),
			Prefix:    s3cfg.Prefix.Get(),
			AccessKey: s3cfg.AccessKey.Get(),
			SecretKey: s3cfg.SecretKey.Get(),
		}, name)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("key", s.Key()).Msg("s3 snapshot")
		return s, noop, nil

	case driverMemory:
		log.Warn().Msg("memory snapshot: records are lost on restart")
		return snapshot.NewMemory(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown snapshot driver %q", driver)
	}
}
