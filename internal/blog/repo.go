package blog

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists blog entries and their responses.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListTop returns the newest entries without their responses.
func (r *Repository) ListTop(ctx context.Context, limit int) ([]models.BlogEntry, error) {
	var entries []models.BlogEntry
	err := r.DB(ctx).
		Order("posted_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindEntry loads an entry with its responses, oldest response first.
func (r *Repository) FindEntry(ctx context.Context, id uuid.UUID) (*models.BlogEntry, error) {
	var entry models.BlogEntry
	err := r.DB(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responded_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) CreateEntry(ctx context.Context, entry *models.BlogEntry) (*models.BlogEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.DB(ctx).Omit("Responses").Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) CreateResponse(ctx context.Context, response *models.BlogResponse) (*models.BlogResponse, error) {
	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(response).Error; err != nil {
		return nil, err
	}
	return response, nil
}

// EntryExists reports whether an entry with id is stored.
func (r *Repository) EntryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.BlogEntry{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
