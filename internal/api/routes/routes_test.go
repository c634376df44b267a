package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocklyai/mockly/internal/api/handlers"
	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/services"
	"github.com/mocklyai/mockly/internal/utils"
)

const (
	testJWTSecret      = "routes-test-jwt"
	testCallbackSecret = "routes-test-callback"
)

// memStore backs all repositories for the API-level tests.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	sessions   map[string]*models.Session
	agents     map[string]*models.Agent
	deliveries map[string]*models.WebhookDelivery
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		sessions:   map[string]*models.Session{},
		agents:     map[string]*models.Agent{},
		deliveries: map[string]*models.WebhookDelivery{},
	}
}

func (s *memStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (s *memStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

type memSessions struct{ s *memStore }

func (m memSessions) Create(_ context.Context, row *models.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *row
	m.s.sessions[row.ID] = &cp
	return nil
}

func (m memSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if row, ok := m.s.sessions[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (m memSessions) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Session
	for _, row := range m.s.sessions {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m memSessions) SetStatus(_ context.Context, id, status string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	row, ok := m.s.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	row.Status = status
	return nil
}

func (m memSessions) ApplyPatch(_ context.Context, id string, p pgrepo.SessionPatch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	row, ok := m.s.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	if p.AgentID != nil {
		row.AgentID = p.AgentID
	}
	if p.InterviewPlan != nil {
		row.InterviewPlan = p.InterviewPlan
	}
	if p.InterviewPrompt != nil {
		row.InterviewPrompt = p.InterviewPrompt
	}
	if p.FeedbackPrompt != nil {
		row.FeedbackPrompt = p.FeedbackPrompt
	}
	if len(p.Feedback) > 0 {
		row.Feedback = p.Feedback
	}
	return nil
}

type memAgents struct{ s *memStore }

func (m memAgents) Create(_ context.Context, a *models.Agent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *a
	m.s.agents[a.ID] = &cp
	return nil
}

func (m memAgents) GetByID(_ context.Context, id string) (*models.Agent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a, ok := m.s.agents[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, utils.ErrNotFound
}

func (m memAgents) FirstByUser(_ context.Context, userID string) (*models.Agent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var first *models.Agent
	for _, a := range m.s.agents {
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

type memDeliveries struct{ s *memStore }

func (m memDeliveries) Enqueue(_ context.Context, d *models.WebhookDelivery) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if d.Status == "" {
		d.Status = models.DeliveryStatusPending
	}
	cp := *d
	m.s.deliveries[d.ID] = &cp
	return nil
}

func (m memDeliveries) ClaimDue(context.Context, int, time.Duration) ([]models.WebhookDelivery, error) {
	return nil, nil
}

func (m memDeliveries) MarkDelivered(context.Context, string) error { return nil }

func (m memDeliveries) MarkRetry(context.Context, string, int, time.Time, string) error { return nil }

func (m memDeliveries) MarkFailed(context.Context, string, int, string) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	authSvc := services.NewAuthService(store, testJWTSecret, time.Hour)
	sessionSvc := services.NewSessionService(services.SessionServiceDeps{
		Sessions:       memSessions{store},
		Agents:         memAgents{store},
		Deliveries:     memDeliveries{store},
		Logger:         logger,
		WebhookURL:     "http://workflow.local/webhook",
		CallbackSecret: testCallbackSecret,
	})
	userSvc := services.NewUserService(store)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Auth:           handlers.NewAuthHandler(authSvc),
		Session:        handlers.NewSessionHandler(sessionSvc),
		User:           handlers.NewUserHandler(userSvc, sessionSvc),
		JWTSecret:      testJWTSecret,
		CallbackSecret: testCallbackSecret,
	})
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": email, "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createSession(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/interview/session", token, map[string]any{
		"session": map[string]any{"interview_mode": "behavioral", "duration_min": 30, "language": "en"},
		"target":  map[string]any{"company_preset": "big_tech", "role_title": "SWE", "seniority": "mid"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionRoutesRequireJWT(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/interview/session", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/interview/session/abc", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	r, store := newTestRouter(t)
	token := registerUser(t, r, "ada@example.com")
	sessionID := createSession(t, r, token)

	// The webhook payload was queued, not sent inline.
	store.mu.Lock()
	require.Len(t, store.deliveries, 1)
	store.mu.Unlock()

	w := doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Status string `json:"status"`
		Ready  bool   `json:"ready"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "active", st.Status)
	assert.False(t, st.Ready)

	w = doJSON(t, r, http.MethodPost, "/api/interview/session/"+sessionID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "cancelled", st.Status)
}

func TestForeignSessionLooksMissing(t *testing.T) {
	r, _ := newTestRouter(t)
	owner := registerUser(t, r, "owner@example.com")
	other := registerUser(t, r, "other@example.com")
	sessionID := createSession(t, r, owner)

	w := doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/interview/session/"+sessionID+"/cancel", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallbackAuthentication(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerUser(t, r, "ada@example.com")
	sessionID := createSession(t, r, token)

	payload := map[string]any{"interview_plan": "plan", "interview_prompt": "p", "feedback_prompt": "f", "agent_id": "agent-1"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	// No token.
	req := httptest.NewRequest(http.MethodPost, "/api/interview/session/"+sessionID+"/callback", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token minted for a different session.
	req = httptest.NewRequest(http.MethodPost, "/api/interview/session/"+sessionID+"/callback", bytes.NewReader(body))
	req.Header.Set("X-Callback-Token", utils.CallbackToken(testCallbackSecret, "other-session"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The real token.
	req = httptest.NewRequest(http.MethodPost, "/api/interview/session/"+sessionID+"/callback", bytes.NewReader(body))
	req.Header.Set("X-Callback-Token", utils.CallbackToken(testCallbackSecret, sessionID))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The session is now ready for the poller.
	w2 := doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	var st struct {
		Ready bool `json:"ready"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &st))
	assert.True(t, st.Ready)
}

func TestFeedbackRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerUser(t, r, "ada@example.com")
	sessionID := createSession(t, r, token)

	w := doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID+"/feedback", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/interview/session/"+sessionID+"/callback",
		bytes.NewReader([]byte(`{"feedback":{"overall_score":88,"dimension_scores":[{"dimension":"clarity","score":4.5}],"summary":"well done"}}`)))
	req.Header.Set("X-Callback-Token", utils.CallbackToken(testCallbackSecret, sessionID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/interview/session/"+sessionID+"/feedback", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rep struct {
		Overall    float64 `json:"overall"`
		Dimensions []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"dimensions"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.InDelta(t, 88, rep.Overall, 0.001)
	require.Len(t, rep.Dimensions, 1)
	assert.InDelta(t, 90, rep.Dimensions[0].Score, 0.001)
	assert.Equal(t, "well done", rep.Summary)
}

func TestUserProfileAndSessions(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerUser(t, r, "ada@example.com")
	sessionID := createSession(t, r, token)

	w := doJSON(t, r, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "ada@example.com", profile.Email)

	w = doJSON(t, r, http.MethodGet, "/api/user/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sessionID)
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	registerUser(t, r, "dup@example.com")
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Dup", "email": "dup@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
