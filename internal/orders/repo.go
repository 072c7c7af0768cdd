package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pousadahub/ordering-backend/pkg/db"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
)

// Repository persists submitted orders.
type Repository struct {
	client *db.Client
}

func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

// Create writes the order and its lines in one transaction.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

// FindByID loads an order with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	var order models.Order
	err := r.client.DB().WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return models.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListByGuest returns the guest's orders, newest first.
func (r *Repository) ListByGuest(ctx context.Context, guestID string) ([]models.Order, error) {
	var out []models.Order
	err := r.client.DB().WithContext(ctx).
		Preload("Lines").
		Where("guest_id = ?", guestID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return out, nil
}
