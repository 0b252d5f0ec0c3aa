package entity

import (
	"time"
)

// StageStatus machine: NOT_STARTED → IN_PROGRESS → {COMPLETED | BLOCKED};
// BLOCKED → IN_PROGRESS re-starts without resuming elapsed time.
const (
	StageStatusNotStarted = "NOT_STARTED"
	StageStatusInProgress = "IN_PROGRESS"
	StageStatusCompleted  = "COMPLETED"
	StageStatusBlocked    = "BLOCKED"
)

// ProductionStage is one build step of a project (hull, interior, rigging...).
type ProductionStage struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID       string     `json:"project_id" gorm:"size:32;not null;index"`
	Name            string     `json:"name" gorm:"size:128;not null"`
	Status          string     `json:"status" gorm:"size:16;not null;default:NOT_STARTED"`
	ProgressPercent int        `json:"progress_percent" gorm:"not null;default:0"`
	Sequence        int        `json:"sequence" gorm:"not null;default:0"`
	PlannedStart    *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedEnd      *time.Time `json:"planned_end" gorm:"type:date"`
	ActualStart     *time.Time `json:"actual_start" gorm:"type:date"`
	ActualEnd       *time.Time `json:"actual_end" gorm:"type:date"`
	BlockedReason   string     `json:"blocked_reason" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Project  *Project       `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Comments []StageComment `json:"comments,omitempty" gorm:"foreignKey:StageID"`
	Photos   []StagePhoto   `json:"photos,omitempty" gorm:"foreignKey:StageID"`
}

func (ProductionStage) TableName() string {
	return "production_stages"
}

// StageComment is a shop-floor note on a stage.
type StageComment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	StageID   string    `json:"stage_id" gorm:"size:32;not null;index"`
	AuthorID  string    `json:"author_id" gorm:"size:32;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (StageComment) TableName() string {
	return "stage_comments"
}

// StagePhoto is a progress photo stored in object storage.
type StagePhoto struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	StageID    string    `json:"stage_id" gorm:"size:32;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:256;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type" gorm:"size:128"`
	Caption    string    `json:"caption" gorm:"size:256"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:32;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StagePhoto) TableName() string {
	return "stage_photos"
}
