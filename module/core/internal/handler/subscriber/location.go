package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/module/core/domain"
)

const DefaultTopic = "/fleet/asset/+/location"

// evaluateTimeout bounds the storage work done for one message so a stuck
// backend cannot pin the MQTT callback forever.
const evaluateTimeout = 10 * time.Second

type trackingService interface {
	Evaluate(ctx context.Context, assetID string, point domain.Coordinate, ts time.Time) (*domain.Evaluation, error)
}

type locationMessage struct {
	AssetID   string  `json:"asset_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type LocationSubscriber struct {
	client      mqtt.Client
	topic       string
	trackingSvc trackingService
}

func NewLocationSubscriber(client mqtt.Client, topic string, trackingSvc trackingService) *LocationSubscriber {
	if topic == "" {
		topic = DefaultTopic
	}
	return &LocationSubscriber{
		client:      client,
		topic:       topic,
		trackingSvc: trackingSvc,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) Stop() error {
	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("invalid location message")
		return
	}

	if topicID := assetIDFromTopic(msg.Topic()); topicID != "" {
		if raw.AssetID == "" {
			raw.AssetID = topicID
		} else if raw.AssetID != topicID {
			log.Warn().Str("topic", msg.Topic()).Str("asset_id", raw.AssetID).Msg("asset_id does not match topic")
			return
		}
	}

	if err := validateLocationMessage(&raw); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("validation error")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
	defer cancel()

	point := domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude}
	ev, err := s.trackingSvc.Evaluate(ctx, raw.AssetID, point, time.Unix(raw.Timestamp, 0))
	switch {
	case errors.Is(err, domain.ErrStaleSample):
		log.Debug().Err(err).Str("asset_id", raw.AssetID).Msg("dropping stale sample")
		return
	case errors.Is(err, domain.ErrNotFound) && ev == nil:
		log.Warn().Str("asset_id", raw.AssetID).Msg("location for unknown asset")
		return
	case err != nil:
		log.Error().Err(err).Str("asset_id", raw.AssetID).Msg("evaluate location")
		return
	}
	if len(ev.Emitted) > 0 {
		log.Debug().Str("asset_id", raw.AssetID).Int("emitted", len(ev.Emitted)).Msg("location evaluated")
	}
}

// assetIDFromTopic extracts <id> from /fleet/asset/<id>/location.
func assetIDFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[1] != "asset" || parts[3] != "location" {
		return ""
	}
	return parts[2]
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.AssetID == "" {
		return fmt.Errorf("asset_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
