package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mocklyai/mockly/internal/cache"
	"github.com/mocklyai/mockly/internal/catalog"
	"github.com/mocklyai/mockly/internal/feedback"
	"github.com/mocklyai/mockly/internal/metrics"
	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/utils"
)

// InterviewConfig is the configuration the setup wizard submits. It is
// forwarded to the workflow engine almost verbatim, enriched with the agent
// id, the company profile and the role rubric.
type InterviewConfig struct {
	Session struct {
		InterviewMode string `json:"interview_mode"`
		DurationMin   int    `json:"duration_min"`
		Language      string `json:"language"`
	} `json:"session"`
	Target struct {
		CompanyPreset      string   `json:"company_preset"`
		RoleTitle          string   `json:"role_title"`
		Seniority          string   `json:"seniority"`
		FocusAreas         []string `json:"focus_areas"`
		PreferredLanguages []string `json:"preferred_languages"`
		JobDescriptionText string   `json:"job_description_text"`
		JobURL             string   `json:"job_url"`
	} `json:"target"`
	Candidate json.RawMessage `json:"candidate"`
}

// CallbackPayload is what the workflow engine posts back. Older workflow
// versions used interview_primpot and feedback_prompt; both are honored.
type CallbackPayload struct {
	AgentID             *string         `json:"agent_id"`
	InterviewPlan       *string         `json:"interview_plan"`
	InterviewPrompt     *string         `json:"interview_prompt"`
	InterviewPrimpot    *string         `json:"interview_primpot"`
	FeedbackPrompt      *string         `json:"feedback_prompt"`
	FeedbackPromptFinal *string         `json:"feedback_prompt_final"`
	Feedback            json.RawMessage `json:"feedback"`
}

// SessionStatus is the polling shape: the row plus the derived ready flag.
type SessionStatus struct {
	models.Session
	Ready bool `json:"ready"`
}

type SessionService interface {
	Create(ctx context.Context, userID string, cfg InterviewConfig) (*models.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*SessionStatus, error)
	Cancel(ctx context.Context, userID, sessionID string) error
	ApplyCallback(ctx context.Context, sessionID string, cb CallbackPayload) error
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	FeedbackReport(ctx context.Context, userID, sessionID string) (feedback.Report, error)
}

// SessionServiceDeps wires the relay. Cache and Metrics may be nil.
type SessionServiceDeps struct {
	Sessions   pgrepo.SessionRepository
	Agents     pgrepo.AgentRepository
	Deliveries pgrepo.DeliveryRepository
	Cache      cache.Cache
	Metrics    *metrics.Collector
	Logger     *logrus.Logger

	WebhookURL     string
	CallbackSecret string
}

type sessionService struct {
	SessionServiceDeps
}

const statusCacheTTL = 2 * time.Second

func NewSessionService(deps SessionServiceDeps) SessionService {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &sessionService{SessionServiceDeps: deps}
}

func (s *sessionService) Create(ctx context.Context, userID string, cfg InterviewConfig) (*models.Session, error) {
	const op = "SessionService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if cfg.Session.InterviewMode == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session.interview_mode is required", nil)
	}

	// First match wins; a user may have accumulated several agents and the
	// oldest is the one the workflow already knows about.
	var agentID *string
	agent, err := s.Agents.FirstByUser(ctx, userID)
	switch {
	case err == nil:
		agentID = &agent.ID
	case errors.Is(err, utils.ErrNotFound):
		// webhook will ask the voice platform to create one
	default:
		return nil, utils.E(utils.CodeInternal, op, "failed to look up agent", err)
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		AgentID:       agentID,
		Status:        models.SessionStatusActive,
		Mode:          cfg.Session.InterviewMode,
		CompanyPreset: cfg.Target.CompanyPreset,
		RoleTitle:     cfg.Target.RoleTitle,
		Seniority:     cfg.Target.Seniority,
		FocusAreas:    cfg.Target.FocusAreas,
		CreatedAt:     now,
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	payload, err := s.buildWebhookPayload(session, cfg, agentID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build webhook payload", err)
	}

	// Fire-and-forget from the caller's point of view: the delivery row is
	// the only thing created synchronously, the dispatcher does the rest.
	// An enqueue failure is logged, not surfaced; the session row stays.
	delivery := &models.WebhookDelivery{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		URL:       s.WebhookURL,
		Payload:   datatypes.JSON(payload),
	}
	if err := s.Deliveries.Enqueue(ctx, delivery); err != nil {
		s.Logger.WithError(err).WithField("session_id", session.ID).
			Error("failed to enqueue webhook delivery")
	}

	if s.Metrics != nil {
		s.Metrics.SessionCreated()
	}
	return session, nil
}

func (s *sessionService) buildWebhookPayload(session *models.Session, cfg InterviewConfig, agentID *string) ([]byte, error) {
	out := map[string]any{
		"session":        cfg.Session,
		"target":         cfg.Target,
		"candidate":      cfg.Candidate,
		"user_id":        session.UserID,
		"session_id":     session.ID,
		"agent_id":       agentID,
		"callback_token": utils.CallbackToken(s.CallbackSecret, session.ID),
	}
	if profile, ok := catalog.Company(cfg.Target.CompanyPreset); ok {
		out["company_profile"] = profile
	}
	if rubric, ok := catalog.Rubric(cfg.Session.InterviewMode, cfg.Target.Seniority); ok {
		out["role_rubric"] = rubric
	} else {
		s.Logger.WithFields(logrus.Fields{
			"mode":      cfg.Session.InterviewMode,
			"seniority": cfg.Target.Seniority,
		}).Warn("role rubric not found")
	}
	return json.Marshal(out)
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*SessionStatus, error) {
	const op = "SessionService.Get"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}

	if s.Cache != nil {
		var cached SessionStatus
		if hit, _ := s.Cache.GetJSON(ctx, statusKey(sessionID), &cached); hit {
			if cached.UserID != userID {
				return nil, utils.E(utils.CodeNotFound, op, "session not found", nil)
			}
			return &cached, nil
		}
	}

	session, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}

	status := &SessionStatus{Session: *session, Ready: session.Ready()}
	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, statusKey(sessionID), status, statusCacheTTL)
	}

	// Foreign sessions are indistinguishable from missing ones.
	if session.UserID != userID {
		return nil, utils.E(utils.CodeNotFound, op, "session not found", nil)
	}
	return status, nil
}

func (s *sessionService) Cancel(ctx context.Context, userID, sessionID string) error {
	const op = "SessionService.Cancel"

	st, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if st.Status == models.SessionStatusCancelled {
		return nil
	}

	if err := s.Sessions.SetStatus(ctx, sessionID, models.SessionStatusCancelled); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to cancel session", err)
	}
	s.invalidate(ctx, sessionID)

	if s.Metrics != nil {
		s.Metrics.SessionCancelled()
	}
	return nil
}

func (s *sessionService) ApplyCallback(ctx context.Context, sessionID string, cb CallbackPayload) error {
	const op = "SessionService.ApplyCallback"

	if sessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	patch := pgrepo.SessionPatch{
		AgentID:         cb.AgentID,
		InterviewPlan:   cb.InterviewPlan,
		InterviewPrompt: firstNonNil(cb.InterviewPrompt, cb.InterviewPrimpot),
		FeedbackPrompt:  firstNonNil(cb.FeedbackPromptFinal, cb.FeedbackPrompt),
	}
	if len(cb.Feedback) > 0 && string(cb.Feedback) != "null" {
		patch.Feedback = cb.Feedback
	}

	if err := s.Sessions.ApplyPatch(ctx, sessionID, patch); err != nil {
		if s.Metrics != nil {
			s.Metrics.CallbackReceived("error")
		}
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	s.invalidate(ctx, sessionID)

	if cb.AgentID != nil && *cb.AgentID != "" {
		if err := s.adoptAgent(ctx, sessionID, *cb.AgentID); err != nil {
			// agent bookkeeping failing should not fail the callback
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"session_id": sessionID,
				"agent_id":   *cb.AgentID,
			}).Error("failed to record agent from callback")
		}
	}

	if s.Metrics != nil {
		s.Metrics.CallbackReceived("ok")
	}
	return nil
}

// adoptAgent records an agent id the workflow created, owned by the
// session's user. Already-known agents are left alone.
func (s *sessionService) adoptAgent(ctx context.Context, sessionID, agentID string) error {
	_, err := s.Agents.GetByID(ctx, agentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return err
	}

	session, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Agents.Create(ctx, &models.Agent{
		ID:        agentID,
		UserID:    session.UserID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *sessionService) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const op = "SessionService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return rows, nil
}

func (s *sessionService) FeedbackReport(ctx context.Context, userID, sessionID string) (feedback.Report, error) {
	const op = "SessionService.FeedbackReport"

	st, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return feedback.Report{}, err
	}
	if !st.HasFeedback() {
		return feedback.Report{}, utils.E(utils.CodeConflict, op, "feedback has not arrived yet", nil)
	}

	rep, ok := feedback.Normalize(st.Feedback)
	if !ok {
		return feedback.Report{}, utils.E(utils.CodeConflict, op, "no usable feedback", nil)
	}
	return rep, nil
}

func (s *sessionService) invalidate(ctx context.Context, sessionID string) {
	if s.Cache != nil {
		_ = s.Cache.Del(ctx, statusKey(sessionID))
	}
}

func statusKey(sessionID string) string {
	return "session:" + sessionID + ":status"
}

func firstNonNil(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
