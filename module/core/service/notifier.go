package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/publisher"
)

type notifiedMarker interface {
	MarkNotified(ctx context.Context, id string) error
}

// Notifier delivers alertable crossings to every configured publisher and
// marks an event notified once at least one of them accepted it.
type Notifier struct {
	publishers []publisher.EventPublisher
	events     notifiedMarker
}

func NewNotifier(events notifiedMarker, publishers ...publisher.EventPublisher) *Notifier {
	return &Notifier{publishers: publishers, events: events}
}

func (n *Notifier) Notify(ctx context.Context, events []domain.CrossingEvent) {
	for i := range events {
		e := &events[i]
		delivered := false
		for _, p := range n.publishers {
			if err := p.PublishEvent(ctx, e); err != nil {
				if errors.Is(err, publisher.ErrNoSubscribers) {
					continue
				}
				log.Error().Err(err).Str("event_id", e.ID).Msg("failed to publish crossing event")
				continue
			}
			delivered = true
		}
		if !delivered {
			continue
		}
		if err := n.events.MarkNotified(ctx, e.ID); err != nil {
			log.Error().Err(err).Str("event_id", e.ID).Msg("failed to mark event notified")
			continue
		}
		e.Notified = true
	}
}
