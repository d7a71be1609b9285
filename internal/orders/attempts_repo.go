package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attemptRepository struct {
	repo.Base
}

// NewAttemptRepository builds a checkout attempt repository bound to the provided DB.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{Base: repo.NewBase(db)}
}

func (r *attemptRepository) WithTx(tx *gorm.DB) AttemptRepository {
	if tx == nil {
		return r
	}
	return &attemptRepository{Base: r.Bind(tx)}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.CheckoutAttempt) (bool, error) {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.Status == "" {
		attempt.Status = enums.CheckoutAttemptAwaitingPayment
	}
	res := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(attempt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepository) FindByGatewaySessionID(ctx context.Context, gatewaySessionID string) (*models.CheckoutAttempt, error) {
	if gatewaySessionID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var attempt models.CheckoutAttempt
	if err := r.DB(ctx).Where("gateway_session_id = ?", gatewaySessionID).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	if err := r.DB(ctx).Where("idempotency_key = ?", key).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindOpenByFingerprint returns the newest unexpired attempt still awaiting payment.
func (r *attemptRepository) FindOpenByFingerprint(ctx context.Context, fingerprint string, now time.Time) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := r.DB(ctx).
		Where("fingerprint = ? AND status = ? AND expires_at > ?", fingerprint, enums.CheckoutAttemptAwaitingPayment, now).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindPendingByFingerprint returns the newest attempt reserved but not yet
// attached to a gateway session.
func (r *attemptRepository) FindPendingByFingerprint(ctx context.Context, fingerprint string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := r.DB(ctx).
		Where("fingerprint = ? AND status = ?", fingerprint, enums.CheckoutAttemptPending).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// AttachGatewaySession moves a pending attempt to awaiting payment. It
// reports false when the attempt already left pending.
func (r *attemptRepository) AttachGatewaySession(ctx context.Context, id uuid.UUID, gatewaySessionID, redirectURL string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("id = ? AND status = ?", id, enums.CheckoutAttemptPending).
		Updates(map[string]any{
			"status":             enums.CheckoutAttemptAwaitingPayment,
			"gateway_session_id": gatewaySessionID,
			"redirect_url":       redirectURL,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepository) CountByFingerprint(ctx context.Context, fingerprint string) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("fingerprint = ?", fingerprint).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   enums.CheckoutAttemptConfirmed,
			"order_id": orderID,
		}).Error
}

// TransitionStatus moves the attempt only when it is still in from.
func (r *attemptRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.CheckoutAttemptStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListAwaitingForSession returns the web session's attempts that still hold
// a payable gateway session.
func (r *attemptRepository) ListAwaitingForSession(ctx context.Context, webSessionID string) ([]models.CheckoutAttempt, error) {
	var attempts []models.CheckoutAttempt
	err := r.DB(ctx).
		Where("web_session_id = ? AND status = ?", webSessionID, enums.CheckoutAttemptAwaitingPayment).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListStaleAwaiting returns pending and awaiting attempts whose deadline
// passed, oldest first.
func (r *attemptRepository) ListStaleAwaiting(ctx context.Context, now time.Time, limit int) ([]models.CheckoutAttempt, error) {
	var attempts []models.CheckoutAttempt
	q := r.DB(ctx).
		Where("status IN ? AND expires_at <= ?", []enums.CheckoutAttemptStatus{enums.CheckoutAttemptPending, enums.CheckoutAttemptAwaitingPayment}, now).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
