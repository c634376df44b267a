package models

import "time"

// Agent records a voice-agent id handed back by the workflow engine. The id
// is the external identifier, not one we mint. A user may end up with more
// than one row; lookups take the oldest match.
type Agent struct {
	ID        string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Agent) TableName() string { return "agents" }
