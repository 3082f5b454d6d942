package models

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending           SubmissionStatus = "pending"
	SubmissionStatusAccepted          SubmissionStatus = "accepted"
	SubmissionStatusRejected          SubmissionStatus = "rejected"
	SubmissionStatusRevisionRequested SubmissionStatus = "revision_requested"
)

// SubmissionFile describes the stored deliverable archive.
type SubmissionFile struct {
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	URL      string `gorm:"type:varchar(500);not null" json:"url"`
	Size     int64  `gorm:"not null" json:"size"`
	MimeType string `gorm:"type:varchar(100);not null" json:"mime_type"`
}

type Submission struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	TaskID       uint64           `gorm:"not null;index" json:"task_id"`
	ProjectID    uint64           `gorm:"not null;index" json:"project_id"`
	SolverID     uint64           `gorm:"not null;index" json:"solver_id"`
	File         SubmissionFile   `gorm:"embedded;embeddedPrefix:file_" json:"file"`
	Description  string           `gorm:"type:text" json:"description"`
	Status       SubmissionStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	ReviewedByID *uint64          `json:"reviewed_by_id"`
	ReviewedAt   *time.Time       `json:"reviewed_at"`
	Feedback     string           `gorm:"type:text" json:"feedback,omitempty"`
	Version      int              `gorm:"not null" json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	SoftDelete

	// Relations
	Task   Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Solver User `gorm:"foreignKey:SolverID" json:"solver,omitempty"`
}
