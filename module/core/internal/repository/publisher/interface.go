package publisher

import (
	"context"
	"errors"

	"github.com/nandanugg/geotrack/module/core/domain"
)

// ErrNoSubscribers is returned when a publisher had nobody to deliver to.
var ErrNoSubscribers = errors.New("no subscribers")

type EventPublisher interface {
	PublishEvent(ctx context.Context, event *domain.CrossingEvent) error
}
