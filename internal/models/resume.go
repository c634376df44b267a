package models

import "time"

// Resume is the stored metadata for an uploaded CV. The file itself lives in
// object storage under ObjectKey.
type Resume struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	FileName  string    `gorm:"column:file_name;type:text" json:"file_name"`
	ObjectKey string    `gorm:"column:object_key;type:text" json:"object_key"`
	FileSize  int       `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType  string    `gorm:"column:mime_type;type:text" json:"mime_type"`
	UploadAt  time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (Resume) TableName() string { return "resumes" }
