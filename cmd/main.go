package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/apper-canvas/employee-registry-backend/internal/api"
	"github.com/apper-canvas/employee-registry-backend/internal/config"
	"github.com/apper-canvas/employee-registry-backend/internal/exchange/consumer"
	"github.com/apper-canvas/employee-registry-backend/internal/exchange/producer"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/employee"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/events"
	"github.com/apper-canvas/employee-registry-backend/internal/submission"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
	"github.com/apper-canvas/employee-registry-backend/library/pg"
	"github.com/apper-canvas/employee-registry-backend/library/yamlreader"
)

const shutdownFlushTimeout = 10 * time.Second

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	cfg := MustNewConfig(parseFlags())
	setupLogger(cfg.Log.Level.Get())

	log.Info().
		Str("snapshot_driver", cfg.Snapshot.Driver.Get()).
		Bool("kafka", cfg.Kafka.Enabled.Get()).
		Msg("configuration loaded")

	var pgClient *pg.PG
	if cfg.Snapshot.Driver.Get() == driverPostgres || cfg.Kafka.Enabled.Get() {
		var err error
		pgClient, err = pg.NewPGWithConfig(rootCtx, cfg.Postgres, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres init failed")
		}
		defer pgClient.Close()
	}

	snap, closeSnap, err := initSnapshotter(rootCtx, cfg, pgClient)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Snapshot.Driver.Get()).Msg("snapshot init failed")
	}
	defer closeSnap()

	storeOpts := []employee.Option{
		employee.WithFlushTimeout(cfg.Store.FlushTimeout.Get()),
		employee.WithLogger(log.Logger),
	}
	if cfg.Store.Seed.Get() {
		seed, err := employee.Seed()
		if err != nil {
			log.Fatal().Err(err).Msg("bundled seed is unreadable")
		}
		storeOpts = append(storeOpts, employee.WithSeed(seed))
	}
	store := employee.NewStore(snap, storeOpts...)
	store.Init(rootCtx)

	validator := validation.New(validation.WithLocation(mustLocation(cfg.Store.Timezone.Get())))
	coordinator := submission.NewCoordinator(store, log.Logger)

	deps := api.ServiceDeps{
		Port:        cfg.UserAPI.Port.Get(),
		FormIdleTTL: cfg.UserAPI.FormIdleTTL.Get(),
		MaxForms:    cfg.UserAPI.MaxForms.Get(),
		Store:       store,
		Submitter:   coordinator,
		Validator:   validator,
		Log:         log.Logger,
	}

	group, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled.Get() {
		eventsRepo := events.NewRepository(pgClient.Pool())
		if err := eventsRepo.EnsureSchema(rootCtx); err != nil {
			log.Fatal().Err(err).Msg("events schema init failed")
		}

		employeeProducer, err := initEmployeeProducer(cfg.Kafka)
		if err != nil {
			log.Fatal().Err(err).Msg("kafka producer init failed")
		}
		defer func() { _ = employeeProducer.Close() }()

		deps.EventsRepo = eventsRepo
		deps.Producer = employeeProducer

		onboarding := consumer.NewOnboardingRunner(
			cfg.Kafka.Bootstrap.Get(),
			cfg.Kafka.Topics.Onboarding.Get(),
			cfg.Kafka.ConsumerGroup.Get(),
			eventsRepo,
			coordinator,
			func() *form.Form { return form.New(validator) },
			employeeProducer,
			log.Logger,
		)

		group.Go(func() error {
			log.Info().Msg("starting onboarding consumer")
			if err := onboarding.Start(gctx); err != nil {
				log.Error().Err(err).Msg("onboarding consumer failed")
				return err
			}

			log.Info().Msg("onboarding consumer stopped")
			return nil
		})
	}

	apiService := api.NewService(deps)

	group.Go(func() error {
		log.Info().Msg("starting HTTP API")
		if err := apiService.Start(gctx); err != nil {
			log.Error().Err(err).Msg("HTTP API failed")
			return err
		}

		log.Info().Msg("HTTP API stopped")
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = group.Wait()
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("signal received, graceful shutdown...")
		<-done
	case <-done:
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer flushCancel()
	if err := store.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("final snapshot flush failed")
	}

	log.Info().Msg("all services stopped")
}

func initEmployeeProducer(kafkaConfig config.KafkaConfig) (*producer.EmployeeProducer, error) {
	sCfg := sarama.NewConfig()
	sCfg.Version = sarama.V3_3_2_0
	sCfg.ClientID = kafkaConfig.ProducerClientID.Get()
	sCfg.Producer.Return.Successes = true
	sCfg.Producer.RequiredAcks = sarama.WaitForAll
	sCfg.Producer.Idempotent = true
	sCfg.Net.MaxOpenRequests = 1
	sCfg.Producer.Retry.Max = 5
	sCfg.Producer.Retry.Backoff = 200 * time.Millisecond

	sp, err := sarama.NewSyncProducer([]string{kafkaConfig.Bootstrap.Get()}, sCfg)
	if err != nil {
		return nil, err
	}

	return producer.NewEmployeeProducer(
		sp,
		producer.Config{
			TopicLifecycle: kafkaConfig.Topics.Lifecycle.Get(),
			Source:         "employee-registry",
		},
		log.Logger,
	), nil
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// mustLocation resolves the zone used for "today" in the joining-date rule.
func mustLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", name).Msg("unknown timezone")
	}
	return loc
}

func MustNewConfig(path string) *config.Config {
	cfg, err := yamlreader.NewConfig[config.Config](path)
	if err != nil {
		log.Fatal().Str("path", path).Err(err).Msg("failed to read application config")
		return nil
	}

	return cfg
}

func parseFlags() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	_ = godotenv.Load(".env")

	if configPath == "" {
		configPath = "config/application-local.yaml"
	}
	return configPath
}
