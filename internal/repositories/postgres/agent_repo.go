package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mocklyai/mockly/internal/models"
	"github.com/mocklyai/mockly/internal/utils"
)

type AgentRepository interface {
	Create(ctx context.Context, a *models.Agent) error
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	// FirstByUser returns the oldest agent owned by the user. The schema
	// does not enforce one agent per user; callers rely on first match wins.
	FirstByUser(ctx context.Context, userID string) (*models.Agent, error)
}

type agentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepository {
	return &agentRepo{db: db}
}

func (r *agentRepo) Create(ctx context.Context, a *models.Agent) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *agentRepo) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	var a models.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *agentRepo) FirstByUser(ctx context.Context, userID string) (*models.Agent, error) {
	var a models.Agent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}
