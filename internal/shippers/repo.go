package shippers

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository lists the carriers shown on the tracking page.
type Repository struct {
	repo.Base
}

// NewRepository constructs a shippers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a shipper, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, shipper *models.Shipper) (*models.Shipper, error) {
	if shipper.ID == uuid.Nil {
		shipper.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(shipper).Error; err != nil {
		return nil, err
	}
	return shipper, nil
}

// List returns every shipper ordered by company name.
func (r *Repository) List(ctx context.Context) ([]models.Shipper, error) {
	var shippers []models.Shipper
	if err := r.DB(ctx).Order("company_name ASC").Find(&shippers).Error; err != nil {
		return nil, err
	}
	return shippers, nil
}
