package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mocklyai/mockly/internal/models"
)

type DeliveryRepository interface {
	Enqueue(ctx context.Context, d *models.WebhookDelivery) error
	// ClaimDue returns pending deliveries whose next attempt is due and
	// pushes their next_attempt_at forward so concurrent dispatcher ticks
	// do not pick up the same rows.
	ClaimDue(ctx context.Context, limit int, holdFor time.Duration) ([]models.WebhookDelivery, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, attempts int, nextAt time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
}

type deliveryRepo struct {
	db *gorm.DB
}

func NewDeliveryRepo(db *gorm.DB) DeliveryRepository {
	return &deliveryRepo{db: db}
}

func (r *deliveryRepo) Enqueue(ctx context.Context, d *models.WebhookDelivery) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = models.DeliveryStatusPending
	}
	if d.NextAttemptAt.IsZero() {
		d.NextAttemptAt = now
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deliveryRepo) ClaimDue(ctx context.Context, limit int, holdFor time.Duration) ([]models.WebhookDelivery, error) {
	if limit <= 0 {
		limit = 10
	}
	now := time.Now().UTC()

	var rows []models.WebhookDelivery
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND next_attempt_at <= ?", models.DeliveryStatusPending, now).
			Order("next_attempt_at ASC").
			Limit(limit).
			Clauses(lockForUpdateSkipLocked()).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]string, 0, len(rows))
		for _, d := range rows {
			ids = append(ids, d.ID)
		}
		return tx.Model(&models.WebhookDelivery{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"next_attempt_at": now.Add(holdFor),
				"updated_at":      now,
			}).Error
	})
	return rows, err
}

func (r *deliveryRepo) MarkDelivered(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.DeliveryStatusDelivered,
			"last_error": "",
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *deliveryRepo) MarkRetry(ctx context.Context, id string, attempts int, nextAt time.Time, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":        attempts,
			"next_attempt_at": nextAt.UTC(),
			"last_error":      lastErr,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *deliveryRepo) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.DeliveryStatusFailed,
			"attempts":   attempts,
			"last_error": lastErr,
			"updated_at": time.Now().UTC(),
		}).Error
}
