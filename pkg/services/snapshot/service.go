// Package snapshot turns a named source profile into a loaded, validated
// snapshot of the five reporting relations.
package snapshot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	csvstore "github.com/de-tools/sales-atlas/pkg/store/csv"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	duckdbsnapshot "github.com/de-tools/sales-atlas/pkg/store/duckdb/snapshot"
	"github.com/de-tools/sales-atlas/pkg/store/warehouse"
)

type Service struct {
	registry config.Registry
}

func NewService(registry config.Registry) *Service {
	return &Service{registry: registry}
}

// Load resolves the profile, loads the snapshot from its source and verifies
// the result is structurally usable. Nothing is cached: callers own the
// returned snapshot and every call observes the source as it is now.
func (s *Service) Load(ctx context.Context, profile string) (*store.Snapshot, error) {
	src, err := s.registry.GetProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("profile", src.Name).
		Str("kind", string(src.Kind)).
		Msg("loading snapshot")

	var snap *store.Snapshot
	switch src.Kind {
	case config.SourceCSV:
		snap, err = csvstore.NewLoader(src.Location).Load()
	case config.SourceDuckDB:
		snap, err = s.loadDuckDB(ctx, src.Location)
	case config.SourceWarehouse:
		snap, err = s.loadWarehouse(ctx, src.Location)
	default:
		return nil, fmt.Errorf("profile %s: unsupported source kind %q", src.Name, src.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot from profile %s: %w", profile, err)
	}

	logger.Info().
		Str("profile", src.Name).
		Int("customers", len(snap.Customers)).
		Int("products", len(snap.Products)).
		Int("orders", len(snap.Orders)).
		Int("order_items", len(snap.OrderItems)).
		Int("sessions", len(snap.Sessions)).
		Msg("snapshot loaded")

	return snap, nil
}

func (s *Service) loadDuckDB(ctx context.Context, path string) (*store.Snapshot, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
	if err != nil {
		return nil, fmt.Errorf("open duckdb at %s: %w", path, err)
	}
	defer db.Close()

	st, err := duckdbsnapshot.NewStore(db)
	if err != nil {
		return nil, err
	}
	return st.Load(ctx)
}

func (s *Service) loadWarehouse(ctx context.Context, profilePath string) (*store.Snapshot, error) {
	profile, err := warehouse.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	db, err := warehouse.Open(profile)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	st, err := warehouse.NewStore(db)
	if err != nil {
		return nil, err
	}
	return st.Load(ctx)
}
