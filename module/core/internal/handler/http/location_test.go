package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/service"
)

type mockTrackingService struct {
	evaluateFn      func(ctx context.Context, assetID string, point domain.Coordinate, ts time.Time) (*domain.Evaluation, error)
	evaluateBatchFn func(ctx context.Context, samples []domain.LocationSample) []service.BatchResult
}

func (m *mockTrackingService) Evaluate(ctx context.Context, assetID string, point domain.Coordinate, ts time.Time) (*domain.Evaluation, error) {
	return m.evaluateFn(ctx, assetID, point, ts)
}

func (m *mockTrackingService) EvaluateBatch(ctx context.Context, samples []domain.LocationSample) []service.BatchResult {
	return m.evaluateBatchFn(ctx, samples)
}

func setupLocationRouter(svc trackingService, limiter *rate.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewLocationHandler(svc, limiter).Register(r.Group(""))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestIngest_Success(t *testing.T) {
	svc := &mockTrackingService{
		evaluateFn: func(_ context.Context, assetID string, p domain.Coordinate, ts time.Time) (*domain.Evaluation, error) {
			if assetID != "truck-7" || p.Lat != 37.7749 || p.Lon != -122.4194 {
				t.Fatalf("unexpected sample: %s %+v", assetID, p)
			}
			if ts.Unix() != 1715003456 {
				t.Fatalf("unexpected timestamp: %v", ts)
			}
			e := domain.CrossingEvent{ID: "e1", AssetID: assetID, GeofenceID: "g1", Type: domain.EventEnter, Alerted: true}
			return &domain.Evaluation{AssetID: assetID, Timestamp: ts, Recorded: []domain.CrossingEvent{e}, Emitted: []domain.CrossingEvent{e}}, nil
		},
	}

	w := postJSON(setupLocationRouter(svc, nil), "/locations",
		`{"asset_id":"truck-7","latitude":37.7749,"longitude":-122.4194,"timestamp":1715003456}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp domain.Evaluation
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Emitted) != 1 || resp.Emitted[0].Type != domain.EventEnter {
		t.Errorf("expected one ENTER, got %+v", resp.Emitted)
	}
}

func TestIngest_MissingLatitude(t *testing.T) {
	svc := &mockTrackingService{}

	w := postJSON(setupLocationRouter(svc, nil), "/locations", `{"asset_id":"truck-7","longitude":10}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestIngest_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		ev   *domain.Evaluation
		err  error
		want int
	}{
		{"invalid coordinate", nil, fmt.Errorf("%w: latitude", domain.ErrInvalidCoordinate), http.StatusBadRequest},
		{"unknown asset", nil, fmt.Errorf("get asset x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"stale", nil, domain.ErrStaleSample, http.StatusConflict},
		{"partial storage failure", &domain.Evaluation{AssetID: "x"}, errors.New("geofence g1: timeout"), http.StatusServiceUnavailable},
		{"position write failure", nil, errors.New("update position: db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTrackingService{
				evaluateFn: func(context.Context, string, domain.Coordinate, time.Time) (*domain.Evaluation, error) {
					return tt.ev, tt.err
				},
			}
			w := postJSON(setupLocationRouter(svc, nil), "/locations", `{"asset_id":"x","latitude":1,"longitude":2}`)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestIngest_RateLimited(t *testing.T) {
	svc := &mockTrackingService{
		evaluateFn: func(_ context.Context, assetID string, _ domain.Coordinate, ts time.Time) (*domain.Evaluation, error) {
			return &domain.Evaluation{AssetID: assetID, Timestamp: ts}, nil
		},
	}
	r := setupLocationRouter(svc, rate.NewLimiter(rate.Every(time.Hour), 1))

	body := `{"asset_id":"x","latitude":1,"longitude":2}`
	if w := postJSON(r, "/locations", body); w.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}
	if w := postJSON(r, "/locations", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestIngestBatch(t *testing.T) {
	svc := &mockTrackingService{
		evaluateBatchFn: func(_ context.Context, samples []domain.LocationSample) []service.BatchResult {
			if len(samples) != 2 {
				t.Fatalf("expected 2 samples, got %d", len(samples))
			}
			return []service.BatchResult{
				{Sample: samples[0], Evaluation: &domain.Evaluation{AssetID: samples[0].AssetID}},
				{Sample: samples[1], Err: domain.ErrStaleSample},
			}
		},
	}

	w := postJSON(setupLocationRouter(svc, nil), "/locations/batch",
		`[{"asset_id":"a1","latitude":1,"longitude":2,"timestamp":10},{"asset_id":"a2","latitude":3,"longitude":4,"timestamp":5}]`)

	if w.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d: %s", w.Code, w.Body.String())
	}
	var items []batchItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if items[0].Status != http.StatusOK || items[1].Status != http.StatusConflict {
		t.Errorf("unexpected statuses: %d, %d", items[0].Status, items[1].Status)
	}
	if items[1].Error == "" {
		t.Error("expected error message on stale sample")
	}
}
