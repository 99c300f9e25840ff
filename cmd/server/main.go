package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/nandanugg/geotrack/config"
	"github.com/nandanugg/geotrack/module/core"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := core.Options{MQTTTopic: cfg.MQTTTopic}
	if cfg.IngestRate > 0 {
		opts.IngestLimiter = rate.NewLimiter(rate.Limit(cfg.IngestRate), cfg.IngestBurst)
	}

	switch cfg.StoreDriver {
	case config.StoreBadger:
		bdb, err := config.NewBadger(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("badger")
		}
		defer config.CloseBadger(bdb)
		opts.Badger = bdb
	case config.StorePostgres:
		db, err := config.NewPostgres(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres")
		}
		defer func() { _ = db.Close() }()
		if cfg.MigrationsEnabled {
			if err := config.MigrateUp(db); err != nil {
				log.Fatal().Err(err).Msg("migrate")
			}
		}
		opts.Postgres = db
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	}

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, crossing fanout limited to websocket")
	} else {
		defer func() { _ = amqpConn.Close() }()
		opts.AMQP = amqpConn
	}

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("mqtt unavailable, accepting locations over http only")
	} else {
		defer mqttClient.Disconnect(250)
		opts.MQTT = mqttClient
	}

	coreModule, err := core.Build(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("core module")
	}
	defer func() { _ = coreModule.Close() }()

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("seed")
		}
		if err := coreModule.ApplySeed(ctx, seed.Geofences, seed.Assets); err != nil {
			log.Fatal().Err(err).Msg("apply seed")
		}
	}

	if err := coreModule.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("start subscribers")
	}

	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(cfg.StoreDriver, coreModule.Ping, opts.AMQP, opts.MQTT)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
