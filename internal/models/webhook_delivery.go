package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// WebhookDelivery is an outbox row: the interview configuration that must
// reach the workflow engine. Creating a session and enqueueing the delivery
// happen in the same request; a background dispatcher owns the actual HTTP
// call, so webhook latency or downtime never blocks the session response.
type WebhookDelivery struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string         `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	URL       string         `gorm:"column:url;type:text" json:"url"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`

	Status        string    `gorm:"column:status;type:text;index" json:"status"`
	Attempts      int       `gorm:"column:attempts;type:integer" json:"attempts"`
	NextAttemptAt time.Time `gorm:"column:next_attempt_at;type:timestamptz;index" json:"next_attempt_at"`
	LastError     string    `gorm:"column:last_error;type:text" json:"last_error"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (WebhookDelivery) TableName() string { return "webhook_deliveries" }
