package models

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusWithdrawn RequestStatus = "withdrawn"
)

// Request is a problem solver's application to an open project.
type Request struct {
	ID                   uint64        `gorm:"primarykey" json:"id"`
	ProjectID            uint64        `gorm:"not null;index" json:"project_id"`
	SolverID             uint64        `gorm:"not null;index" json:"solver_id"`
	CoverLetter          string        `gorm:"type:text;not null" json:"cover_letter"`
	ProposedBudget       *float64      `json:"proposed_budget"`
	ProposedTimelineDays *int          `json:"proposed_timeline_days"`
	Status               RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason      string        `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	RespondedAt          *time.Time    `json:"responded_at"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	SoftDelete

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Solver  User    `gorm:"foreignKey:SolverID" json:"solver,omitempty"`
}
