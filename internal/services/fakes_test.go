package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/utils"
)

// In-memory repository fakes. They implement only what the services call;
// behavior mirrors the postgres implementations closely enough for unit
// tests (not-found sentinels, ordering, merge-on-patch).

type fakeSessionRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Session

	failCreate error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, s := range r.rows {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) SetStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeSessionRepo) ApplyPatch(_ context.Context, id string, p pgrepo.SessionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	if p.AgentID != nil {
		s.AgentID = p.AgentID
	}
	if p.InterviewPlan != nil {
		s.InterviewPlan = p.InterviewPlan
	}
	if p.InterviewPrompt != nil {
		s.InterviewPrompt = p.InterviewPrompt
	}
	if p.FeedbackPrompt != nil {
		s.FeedbackPrompt = p.FeedbackPrompt
	}
	if len(p.Feedback) > 0 {
		s.Feedback = p.Feedback
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeAgentRepo struct {
	mu   sync.Mutex
	rows []*models.Agent
}

func newFakeAgentRepo() *fakeAgentRepo { return &fakeAgentRepo{} }

func (r *fakeAgentRepo) Create(_ context.Context, a *models.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id string) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeAgentRepo) FirstByUser(_ context.Context, userID string) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *models.Agent
	for _, a := range r.rows {
		if a.UserID != userID {
			continue
		}
		if first == nil || a.CreatedAt.Before(first.CreatedAt) {
			first = a
		}
	}
	if first == nil {
		return nil, utils.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

type fakeDeliveryRepo struct {
	mu   sync.Mutex
	rows []*models.WebhookDelivery

	failEnqueue error
}

func newFakeDeliveryRepo() *fakeDeliveryRepo { return &fakeDeliveryRepo{} }

func (r *fakeDeliveryRepo) Enqueue(_ context.Context, d *models.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEnqueue != nil {
		return r.failEnqueue
	}
	if d.Status == "" {
		d.Status = models.DeliveryStatusPending
	}
	cp := *d
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeDeliveryRepo) ClaimDue(_ context.Context, limit int, _ time.Duration) ([]models.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var out []models.WebhookDelivery
	for _, d := range r.rows {
		if d.Status == models.DeliveryStatusPending && !d.NextAttemptAt.After(now) {
			d.NextAttemptAt = now.Add(time.Minute)
			out = append(out, *d)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeDeliveryRepo) MarkDelivered(_ context.Context, id string) error {
	return r.update(id, func(d *models.WebhookDelivery) {
		d.Status = models.DeliveryStatusDelivered
		d.LastError = ""
	})
}

func (r *fakeDeliveryRepo) MarkRetry(_ context.Context, id string, attempts int, nextAt time.Time, lastErr string) error {
	return r.update(id, func(d *models.WebhookDelivery) {
		d.Attempts = attempts
		d.NextAttemptAt = nextAt
		d.LastError = lastErr
	})
}

func (r *fakeDeliveryRepo) MarkFailed(_ context.Context, id string, attempts int, lastErr string) error {
	return r.update(id, func(d *models.WebhookDelivery) {
		d.Status = models.DeliveryStatusFailed
		d.Attempts = attempts
		d.LastError = lastErr
	})
}

func (r *fakeDeliveryRepo) update(id string, fn func(*models.WebhookDelivery)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.rows {
		if d.ID == id {
			fn(d)
			return nil
		}
	}
	return utils.ErrNotFound
}

func (r *fakeDeliveryRepo) all() []models.WebhookDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.WebhookDelivery, 0, len(r.rows))
	for _, d := range r.rows {
		out = append(out, *d)
	}
	return out
}

// fakeCache keeps entries until deleted; TTL expiry is not simulated.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, nil
	}
	c.hits++
	return true, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}
