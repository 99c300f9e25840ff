package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type mockChannel struct {
	publishFn func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.publishFn(ctx, exchange, key, mandatory, immediate, msg)
}

func TestPublishEvent(t *testing.T) {
	var (
		gotExchange string
		gotMsg      amqp.Publishing
	)
	ch := &mockChannel{
		publishFn: func(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
			gotExchange = exchange
			gotMsg = msg
			return nil
		},
	}

	e := &domain.CrossingEvent{
		ID:         "e1",
		AssetID:    "truck-7",
		GeofenceID: "gf-depot",
		Type:       domain.EventExit,
		Position:   domain.Coordinate{Lat: -6.2088, Lon: 106.8456},
		OccurredAt: time.Unix(1715003456, 0),
	}

	if err := (&CrossingPublisher{ch: ch}).PublishEvent(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotExchange != ExchangeName {
		t.Errorf("expected exchange %s, got %s", ExchangeName, gotExchange)
	}
	if gotMsg.MessageId != "e1" || gotMsg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected publishing: %+v", gotMsg)
	}

	var body CrossingMessage
	if err := json.Unmarshal(gotMsg.Body, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Event != domain.EventExit || body.AssetID != "truck-7" || body.GeofenceID != "gf-depot" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Location.Latitude != -6.2088 || body.Timestamp != 1715003456 {
		t.Errorf("unexpected location/timestamp: %+v", body)
	}
}

func TestPublishEvent_ChannelError(t *testing.T) {
	ch := &mockChannel{
		publishFn: func(context.Context, string, string, bool, bool, amqp.Publishing) error {
			return errors.New("channel closed")
		},
	}

	err := (&CrossingPublisher{ch: ch}).PublishEvent(context.Background(), &domain.CrossingEvent{ID: "e1"})
	if err == nil {
		t.Fatal("expected error")
	}
}
