package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/config"
)

const (
	exchangeName = "geotrack.events"
	queueName    = "geofence_crossings"
)

type crossing struct {
	EventID    string `json:"event_id"`
	AssetID    string `json:"asset_id"`
	GeofenceID string `json:"geofence_id"`
	Event      string `json:"event"`
	Location   struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Timestamp int64 `json:"timestamp"`
}

func main() {
	cfg := config.Load()
	cfg.MQTTClientID = "geotrack-event-listener"
	config.SetupLogger(cfg)

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		log.Fatal().Err(err).Msg("declare exchange")
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Fatal().Err(err).Msg("declare queue")
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		log.Fatal().Err(err).Msg("bind queue")
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("consume")
	}

	log.Info().Str("queue", queueName).Msg("waiting for geofence crossings")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for msg := range msgs {
			handle(msg)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

func handle(msg amqp.Delivery) {
	var c crossing
	if err := json.Unmarshal(msg.Body, &c); err != nil {
		log.Warn().Err(err).Msg("discarding malformed crossing")
		_ = msg.Nack(false, false)
		return
	}

	log.Info().
		Str("event_id", c.EventID).
		Str("asset_id", c.AssetID).
		Str("geofence_id", c.GeofenceID).
		Str("event", c.Event).
		Float64("latitude", c.Location.Latitude).
		Float64("longitude", c.Location.Longitude).
		Int64("timestamp", c.Timestamp).
		Msg("geofence crossing")
	_ = msg.Ack(false)
}
