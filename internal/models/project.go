package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusAssigned   ProjectStatus = "assigned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Budget is the price range a buyer is willing to pay. Max >= Min.
type Budget struct {
	Min      float64 `gorm:"not null" json:"min"`
	Max      float64 `gorm:"not null" json:"max"`
	Currency string  `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
}

type ProjectTimeline struct {
	StartDate             *time.Time `json:"start_date"`
	Deadline              time.Time  `gorm:"not null" json:"deadline"`
	EstimatedDurationDays *int       `json:"estimated_duration_days"`
}

type Project struct {
	ID              uint64                      `gorm:"primarykey" json:"id"`
	Title           string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	BuyerID         uint64                      `gorm:"not null;index" json:"buyer_id"`
	AssignedToID    *uint64                     `gorm:"index" json:"assigned_to_id"`
	Status          ProjectStatus               `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Category        string                      `gorm:"type:varchar(100);not null;index" json:"category"`
	Priority        Priority                    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Budget          Budget                      `gorm:"embedded;embeddedPrefix:budget_" json:"budget"`
	Timeline        ProjectTimeline             `gorm:"embedded;embeddedPrefix:timeline_" json:"timeline"`
	Requirements    datatypes.JSONSlice[string] `json:"requirements"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	ApplicantsCount int                         `gorm:"not null;default:0" json:"applicants_count"`
	CompletedAt     *time.Time                  `json:"completed_at"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	SoftDelete

	// Relations
	Buyer      User  `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// IsAssignedTo reports whether userID is the project's assigned solver.
func (p Project) IsAssignedTo(userID uint64) bool {
	return p.AssignedToID != nil && *p.AssignedToID == userID
}
