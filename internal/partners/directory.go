package partners

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type lister interface {
	List(ctx context.Context) ([]models.PartnerLocation, error)
}

// Directory holds an in-memory snapshot of the partner locations. Context
// resolution is gated on the snapshot being loaded; lookups never hit the
// database directly.
type Directory struct {
	repo lister
	logg *logger.Logger

	mu       sync.RWMutex
	loaded   bool
	loadedAt time.Time
	byID     map[uuid.UUID]models.PartnerLocation
	bySlug   map[string]models.PartnerLocation
	ordered  []models.PartnerLocation
}

// NewDirectory builds an unloaded directory; call Refresh before resolving.
func NewDirectory(repo lister, logg *logger.Logger) *Directory {
	return &Directory{
		repo:   repo,
		logg:   logg,
		byID:   map[uuid.UUID]models.PartnerLocation{},
		bySlug: map[string]models.PartnerLocation{},
	}
}

// Refresh replaces the snapshot with the current repository contents. A failed
// refresh keeps the previous snapshot so resolution can keep serving.
func (d *Directory) Refresh(ctx context.Context) error {
	locations, err := d.repo.List(ctx)
	if err != nil {
		if d.logg != nil {
			d.logg.Error(ctx, "partner directory refresh failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner directory")
	}

	byID := make(map[uuid.UUID]models.PartnerLocation, len(locations))
	bySlug := make(map[string]models.PartnerLocation)
	for _, loc := range locations {
		byID[loc.ID] = loc
		if loc.Slug != nil && *loc.Slug != "" {
			bySlug[strings.ToLower(*loc.Slug)] = loc
		}
	}

	d.mu.Lock()
	d.loaded = true
	d.loadedAt = time.Now()
	d.byID = byID
	d.bySlug = bySlug
	d.ordered = locations
	d.mu.Unlock()

	if d.logg != nil {
		ctx = d.logg.WithField(ctx, "partner_count", len(locations))
		d.logg.Info(ctx, "partner directory refreshed")
	}
	return nil
}

// Loaded reports whether at least one refresh has completed.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// LoadedAt returns the time of the last successful refresh.
func (d *Directory) LoadedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadedAt
}

// All returns the snapshot in name order.
func (d *Directory) All() []models.PartnerLocation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.PartnerLocation, len(d.ordered))
	copy(out, d.ordered)
	return out
}

// ByID looks up a partner by identifier in the snapshot.
func (d *Directory) ByID(id uuid.UUID) (models.PartnerLocation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	loc, ok := d.byID[id]
	return loc, ok
}

// BySlug looks up a partner by slug, case-insensitive.
func (d *Directory) BySlug(slug string) (models.PartnerLocation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	loc, ok := d.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return loc, ok
}

// Headquarters returns the delivery origin, when one is flagged.
func (d *Directory) Headquarters() (models.PartnerLocation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, loc := range d.ordered {
		if loc.IsHeadquarters {
			return loc, true
		}
	}
	return models.PartnerLocation{}, false
}
