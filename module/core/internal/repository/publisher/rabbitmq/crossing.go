package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*CrossingPublisher)(nil)

const (
	ExchangeName = "geotrack.events"
	QueueName    = "geofence_crossings"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type CrossingPublisher struct {
	ch channel
}

// Declare sets up the fanout exchange and the durable crossing queue bound
// to it.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func NewCrossingPublisher(conn *amqp.Connection) (*CrossingPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := Declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &CrossingPublisher{ch: ch}, nil
}

// CrossingMessage is the wire format on the crossing exchange.
type CrossingMessage struct {
	EventID    string           `json:"event_id"`
	AssetID    string           `json:"asset_id"`
	GeofenceID string           `json:"geofence_id"`
	Event      domain.EventType `json:"event"`
	Location   messageLocation  `json:"location"`
	Timestamp  int64            `json:"timestamp"`
}

type messageLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *CrossingPublisher) PublishEvent(ctx context.Context, e *domain.CrossingEvent) error {
	msg := CrossingMessage{
		EventID:    e.ID,
		AssetID:    e.AssetID,
		GeofenceID: e.GeofenceID,
		Event:      e.Type,
		Location: messageLocation{
			Latitude:  e.Position.Lat,
			Longitude: e.Position.Lon,
		},
		Timestamp: e.OccurredAt.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal crossing: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
}
