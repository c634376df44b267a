package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCancelled = "cancelled"
)

// Session is one mock-interview attempt. The four priming fields (agent id,
// plan, the two prompts) start null and are filled by the workflow callback;
// feedback arrives later still. Rows are never hard-deleted.
type Session struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	AgentID         *string `gorm:"column:agent_id;type:text" json:"agent_id"`
	InterviewPlan   *string `gorm:"column:interview_plan;type:text" json:"interview_plan"`
	InterviewPrompt *string `gorm:"column:interview_prompt;type:text" json:"interview_prompt"`
	FeedbackPrompt  *string `gorm:"column:feedback_prompt;type:text" json:"feedback_prompt"`

	// Opaque blob owned by the workflow producer; stored as received.
	Feedback datatypes.JSON `gorm:"column:feedback;type:jsonb" json:"feedback"`

	Status string `gorm:"column:status;type:text" json:"status"`

	Mode          string         `gorm:"column:mode;type:text" json:"mode"`
	CompanyPreset string         `gorm:"column:company_preset;type:text" json:"company_preset"`
	RoleTitle     string         `gorm:"column:role_title;type:text" json:"role_title"`
	Seniority     string         `gorm:"column:seniority;type:text" json:"seniority"`
	FocusAreas    pq.StringArray `gorm:"column:focus_areas;type:text[]" json:"focus_areas"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

// Ready reports whether the interactive interview screen can start: the
// agent and all three prompt fields must have arrived. Feedback is not part
// of readiness; it lands after the interview.
func (s *Session) Ready() bool {
	return s.AgentID != nil && *s.AgentID != "" &&
		s.InterviewPlan != nil &&
		s.InterviewPrompt != nil &&
		s.FeedbackPrompt != nil
}

func (s *Session) HasFeedback() bool {
	return len(s.Feedback) > 0 && string(s.Feedback) != "null"
}
