package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/nandanugg/geotrack/module/core/domain"
	handler "github.com/nandanugg/geotrack/module/core/internal/handler/http"
	"github.com/nandanugg/geotrack/module/core/internal/handler/subscriber"
	"github.com/nandanugg/geotrack/module/core/internal/handler/ws"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database/badgerdb"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/geotrack/module/core/internal/repository/publisher"
	"github.com/nandanugg/geotrack/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/geotrack/module/core/service"
)

// Options selects the backends the module is built on. Exactly one of
// Postgres and Badger must be set. AMQP and MQTT are optional.
type Options struct {
	Postgres      *sql.DB
	Badger        *badger.DB
	AMQP          *amqp.Connection
	MQTT          mqtt.Client
	MQTTTopic     string
	IngestLimiter *rate.Limiter
}

type Module struct {
	AssetSvc    *service.AssetService
	GeofenceSvc *service.GeofenceService
	LocationSvc *service.LocationService
	EventSvc    *service.EventService
	TrackingSvc *service.TrackingService

	store      *database.Store
	badgerDB   *badgerdb.DB
	hub        *ws.Hub
	handlers   []interface{ Register(r *gin.RouterGroup) }
	subscriber *subscriber.LocationSubscriber
}

func Build(opts Options) (*Module, error) {
	m := &Module{hub: ws.NewHub()}

	switch {
	case opts.Postgres != nil && opts.Badger != nil:
		return nil, errors.New("both postgres and badger stores configured")
	case opts.Postgres != nil:
		m.store = postgres.NewStore(opts.Postgres)
	case opts.Badger != nil:
		bdb, err := badgerdb.Open(opts.Badger)
		if err != nil {
			return nil, fmt.Errorf("badger store: %w", err)
		}
		m.badgerDB = bdb
		m.store = bdb.Store()
	default:
		return nil, errors.New("no store configured")
	}

	publishers := []publisher.EventPublisher{m.hub}
	if opts.AMQP != nil {
		crossingPub, err := rabbitmq.NewCrossingPublisher(opts.AMQP)
		if err != nil {
			return nil, fmt.Errorf("crossing publisher: %w", err)
		}
		publishers = append(publishers, crossingPub)
	}

	m.AssetSvc = service.NewAssetService(m.store.Assets)
	m.GeofenceSvc = service.NewGeofenceService(m.store.Geofences)
	m.LocationSvc = service.NewLocationService(m.store.Locations)
	m.EventSvc = service.NewEventService(m.store.Events)
	m.TrackingSvc = service.NewTrackingService(
		m.store.Assets,
		m.GeofenceSvc,
		m.LocationSvc,
		service.NewEngine(m.store.Events),
		service.NewNotifier(m.store.Events, publishers...),
	)

	m.handlers = []interface{ Register(r *gin.RouterGroup) }{
		handler.NewAssetHandler(m.AssetSvc, m.LocationSvc, m.EventSvc),
		handler.NewGeofenceHandler(m.GeofenceSvc),
		handler.NewLocationHandler(m.TrackingSvc, opts.IngestLimiter),
		handler.NewEventHandler(m.EventSvc),
		ws.NewHandler(m.hub),
	}

	if opts.MQTT != nil {
		m.subscriber = subscriber.NewLocationSubscriber(opts.MQTT, opts.MQTTTopic, m.TrackingSvc)
	}
	return m, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	for _, h := range m.handlers {
		h.Register(r)
	}
}

// Run starts the broadcast hub and the MQTT subscriber. The hub stops when
// ctx is done.
func (m *Module) Run(ctx context.Context) error {
	go m.hub.Run(ctx)

	if m.subscriber == nil {
		return nil
	}
	return m.subscriber.Start()
}

func (m *Module) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// ApplySeed creates the given geofences and assets unless an entry with the
// same id already exists.
func (m *Module) ApplySeed(ctx context.Context, geofences []domain.Geofence, assets []domain.Asset) error {
	for i := range geofences {
		g := geofences[i]
		if g.ID != "" {
			if _, err := m.GeofenceSvc.Get(ctx, g.ID); err == nil {
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("seed geofence %s: %w", g.ID, err)
			}
		}
		if err := m.GeofenceSvc.Create(ctx, &g); err != nil {
			return fmt.Errorf("seed geofence %s: %w", g.Name, err)
		}
		log.Info().Str("geofence_id", g.ID).Str("name", g.Name).Msg("seeded geofence")
	}

	for i := range assets {
		a := assets[i]
		if a.ID != "" {
			if _, err := m.AssetSvc.Get(ctx, a.ID); err == nil {
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("seed asset %s: %w", a.ID, err)
			}
		}
		if err := m.AssetSvc.Create(ctx, &a); err != nil {
			return fmt.Errorf("seed asset %s: %w", a.Name, err)
		}
		log.Info().Str("asset_id", a.ID).Str("name", a.Name).Msg("seeded asset")
	}
	return nil
}

// Close stops the subscriber and releases store resources owned by the
// module. The underlying connections belong to the caller.
func (m *Module) Close() error {
	var errs []error
	if m.subscriber != nil {
		errs = append(errs, m.subscriber.Stop())
	}
	if m.badgerDB != nil {
		errs = append(errs, m.badgerDB.Close())
	}
	return errors.Join(errs...)
}
