package search

import (
	"context"
	"fmt"

	"drake-homes/internal/models"
)

// Source is the read side of the database used to rebuild the indexes
type Source interface {
	ListProperties(ctx context.Context) ([]models.Property, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error)
	ListLots(ctx context.Context) ([]models.Lot, error)
}

// ReindexAll loads every listing and replaces the index contents
func ReindexAll(ctx context.Context, src Source, engine Engine) error {
	properties, err := src.ListProperties(ctx)
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}
	plans, err := src.ListPlans(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load plans: %w", err)
	}
	lots, err := src.ListLots(ctx)
	if err != nil {
		return fmt.Errorf("failed to load lots: %w", err)
	}
	return engine.Reindex(properties, plans, lots)
}

// Upsert pushes the current state of one entity into its index
func Upsert(ctx context.Context, src Loader, engine Engine, kind Kind, id uint) error {
	switch kind {
	case KindProperties:
		p, err := src.GetProperty(ctx, id)
		if err != nil {
			return err
		}
		return engine.IndexProperty(p)
	case KindPlans:
		p, err := src.GetPlan(ctx, id)
		if err != nil {
			return err
		}
		return engine.IndexPlan(p)
	case KindLots:
		l, err := src.GetLot(ctx, id)
		if err != nil {
			return err
		}
		return engine.IndexLot(l)
	}
	return fmt.Errorf("unknown search type %q", kind)
}

// Loader fetches single listings for Upsert
type Loader interface {
	GetProperty(ctx context.Context, id uint) (*models.Property, error)
	GetPlan(ctx context.Context, id uint) (*models.Plan, error)
	GetLot(ctx context.Context, id uint) (*models.Lot, error)
}
