package models

import "time"

// Conversation is the chat thread of an assigned project, one per project.
type Conversation struct {
	ID            uint64     `gorm:"primarykey" json:"id"`
	ProjectID     uint64     `gorm:"not null;uniqueIndex" json:"project_id"`
	BuyerID       uint64     `gorm:"not null;index" json:"buyer_id"`
	SolverID      uint64     `gorm:"not null;index" json:"solver_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SoftDelete

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// HasParticipant reports whether userID is the buyer or the project's current
// assignee. Project must be loaded.
func (c Conversation) HasParticipant(userID uint64) bool {
	return c.BuyerID == userID || c.Project.IsAssignedTo(userID)
}

type Message struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	ConversationID uint64     `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint64     `gorm:"not null;index" json:"sender_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	SoftDelete

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
