package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// ConversationDTO represents a project conversation in API responses
type ConversationDTO struct {
	ID            uint64             `json:"id"`
	ProjectID     uint64             `json:"project_id"`
	BuyerID       uint64             `json:"buyer_id"`
	SolverID      uint64             `json:"solver_id"`
	LastMessageAt *time.Time         `json:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at"`
	Project       *ProjectSummaryDTO `json:"project,omitempty"`
}

// MessageDTO represents a chat message in API responses
type MessageDTO struct {
	ID             uint64          `json:"id"`
	ConversationID uint64          `json:"conversation_id"`
	SenderID       uint64          `json:"sender_id"`
	Content        string          `json:"content"`
	ReadAt         *time.Time      `json:"read_at"`
	CreatedAt      time.Time       `json:"created_at"`
	Sender         *UserSummaryDTO `json:"sender,omitempty"`
}

// ActivityDTO represents an audit trail entry in API responses
type ActivityDTO struct {
	ID         uint64            `json:"id"`
	EntityType models.EntityType `json:"entity_type"`
	EntityID   uint64            `json:"entity_id"`
	ActorID    uint64            `json:"actor_id"`
	Action     string            `json:"action"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ToConversationDTO converts a Conversation model to ConversationDTO
func ToConversationDTO(conversation models.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:            conversation.ID,
		ProjectID:     conversation.ProjectID,
		BuyerID:       conversation.BuyerID,
		SolverID:      conversation.SolverID,
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
		Project:       toProjectSummary(conversation.Project),
	}
}

// ToConversationDTOs converts a slice of conversations
func ToConversationDTOs(conversations []models.Conversation) []ConversationDTO {
	return mapSlice(conversations, ToConversationDTO)
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	return MessageDTO{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		ReadAt:         message.ReadAt,
		CreatedAt:      message.CreatedAt,
		Sender:         toUserSummary(&message.Sender),
	}
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	return mapSlice(messages, ToMessageDTO)
}

// ToActivityDTO converts an ActivityEvent model to ActivityDTO
func ToActivityDTO(event models.ActivityEvent) ActivityDTO {
	return ActivityDTO{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		ActorID:    event.ActorID,
		Action:     event.Action,
		Payload:    json.RawMessage(event.Payload),
		CreatedAt:  event.CreatedAt,
	}
}

// ToActivityDTOs converts a slice of activity events
func ToActivityDTOs(events []models.ActivityEvent) []ActivityDTO {
	return mapSlice(events, ToActivityDTO)
}
