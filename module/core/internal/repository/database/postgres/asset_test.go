package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nandanugg/geotrack/module/core/domain"
)

var assetCols = []string{"id", "name", "type", "description", "current_latitude", "current_longitude", "last_update", "active", "created_at", "updated_at"}

func TestAssetCreate_AssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO assets`).
		WithArgs(sqlmock.AnyArg(), "Van 1", "VEHICLE", "", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAssetRepo(db)
	a := &domain.Asset{Name: "Van 1", Type: domain.AssetVehicle, Active: true}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAssetGet_WithPosition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(assetCols).
		AddRow("asset-1", "Van 1", "VEHICLE", "", -6.2, 106.8, ts, true, ts, ts)
	mock.ExpectQuery(`SELECT (.+) FROM assets WHERE id = (.+)`).
		WithArgs("asset-1").
		WillReturnRows(rows)

	repo := NewAssetRepo(db)
	a, err := repo.Get(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Position == nil || a.Position.Lat != -6.2 {
		t.Errorf("unexpected position %+v", a.Position)
	}
	if !a.LastUpdate.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, a.LastUpdate)
	}
}

func TestAssetGet_NeverReported(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(assetCols).
		AddRow("asset-1", "Van 1", "VEHICLE", "", nil, nil, nil, true, ts, ts)
	mock.ExpectQuery(`SELECT (.+) FROM assets`).WillReturnRows(rows)

	repo := NewAssetRepo(db)
	a, err := repo.Get(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Position != nil {
		t.Errorf("expected no position, got %+v", a.Position)
	}
	if !a.LastUpdate.IsZero() {
		t.Errorf("expected zero last update, got %v", a.LastUpdate)
	}
}

func TestAssetGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM assets`).WillReturnRows(sqlmock.NewRows(assetCols))

	repo := NewAssetRepo(db)
	_, err = repo.Get(context.Background(), "UNKNOWN")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssetUpdatePosition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`UPDATE assets SET current_latitude`).
		WithArgs("asset-1", 37.0, -122.0, ts, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE assets SET current_latitude`).
		WithArgs("UNKNOWN", 37.0, -122.0, ts, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAssetRepo(db)
	pos := domain.Coordinate{Lat: 37, Lon: -122}
	if err := repo.UpdatePosition(context.Background(), "asset-1", pos, ts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdatePosition(context.Background(), "UNKNOWN", pos, ts); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAssetList_ActiveOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(assetCols).
		AddRow("a", "Van 1", "VEHICLE", "", nil, nil, nil, true, ts, ts).
		AddRow("b", "Parcel", "PACKAGE", "", nil, nil, nil, true, ts, ts)
	mock.ExpectQuery(`SELECT (.+) FROM assets WHERE active = TRUE ORDER BY id`).WillReturnRows(rows)

	repo := NewAssetRepo(db)
	results, err := repo.List(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[1].Type != domain.AssetPackage {
		t.Errorf("unexpected results %+v", results)
	}
}
