package partners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pousadahub/ordering-backend/pkg/db/models"
)

// Repository reads partner locations. The back office owns writes; the
// ordering core never mutates this table.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to partner lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every partner location ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.PartnerLocation, error) {
	var locations []models.PartnerLocation
	if err := r.db.WithContext(ctx).Order("name asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// FindByID loads one partner by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerLocation, error) {
	var location models.PartnerLocation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// FindBySlug loads one partner by its URL-safe slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.PartnerLocation, error) {
	var location models.PartnerLocation
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}
