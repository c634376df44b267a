package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mocklyai/mockly/internal/models"
	"github.com/mocklyai/mockly/internal/utils"
)

// SessionPatch carries the fields a workflow callback may set. Nil fields
// are left untouched, so partial callbacks merge instead of overwrite.
type SessionPatch struct {
	AgentID         *string
	InterviewPlan   *string
	InterviewPrompt *string
	FeedbackPrompt  *string
	Feedback        []byte
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	SetStatus(ctx context.Context, id, status string) error
	ApplyPatch(ctx context.Context, id string, p SessionPatch) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	var rows []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *sessionRepo) SetStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) ApplyPatch(ctx context.Context, id string, p SessionPatch) error {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if p.AgentID != nil {
		updates["agent_id"] = *p.AgentID
	}
	if p.InterviewPlan != nil {
		updates["interview_plan"] = *p.InterviewPlan
	}
	if p.InterviewPrompt != nil {
		updates["interview_prompt"] = *p.InterviewPrompt
	}
	if p.FeedbackPrompt != nil {
		updates["feedback_prompt"] = *p.FeedbackPrompt
	}
	if len(p.Feedback) > 0 {
		updates["feedback"] = p.Feedback
	}

	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
