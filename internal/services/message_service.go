package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = newError(KindNotFound, "conversation not found")
	ErrNotParticipant       = newError(KindForbidden, "you are not a participant of this conversation")
	ErrMessageLength        = newError(KindBadRequest, fmt.Sprintf("message must be between 1 and %d characters", constants.MaxMessageLength))
)

// MessageService handles the per-project conversation between buyer and solver
type MessageService struct {
	messageRepo repository.MessageRepository
	projects    *ProjectService
}

// NewMessageService creates a new MessageService
func NewMessageService(messageRepo repository.MessageRepository, projects *ProjectService) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		projects:    projects,
	}
}

// GetOrCreateConversation returns the conversation of an assigned project,
// creating it on first use
func (s *MessageService) GetOrCreateConversation(actor Actor, projectID uint64) (*models.Conversation, error) {
	project, err := s.projects.find(projectID)
	if err != nil {
		return nil, err
	}
	if project.AssignedToID == nil {
		return nil, ErrAssigneeRequired
	}
	if !isProjectParticipant(project, actor) {
		return nil, ErrNotProjectParticipant
	}

	conversation, err := s.messageRepo.FindConversationByProject(project.ID)
	switch {
	case err == nil:
		// Follow reassignment so the current solver takes part.
		if conversation.SolverID != *project.AssignedToID {
			conversation.SolverID = *project.AssignedToID
			if err := s.messageRepo.UpdateConversation(conversation); err != nil {
				return nil, fmt.Errorf("failed to update conversation: %w", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		conversation = &models.Conversation{
			ProjectID: project.ID,
			BuyerID:   project.BuyerID,
			SolverID:  *project.AssignedToID,
		}
		if err := s.messageRepo.CreateConversation(conversation); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	return s.findConversation(conversation.ID)
}

// ListConversations returns the actor's conversations, most recent first
func (s *MessageService) ListConversations(actor Actor) ([]models.Conversation, error) {
	conversations, err := s.messageRepo.ListConversations(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// ListMessages returns a page of messages, oldest first
func (s *MessageService) ListMessages(actor Actor, conversationID uint64, page, pageSize int) ([]models.Message, int64, error) {
	conversation, err := s.findConversation(conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conversation.HasParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, 0, ErrNotParticipant
	}

	messages, total, err := s.messageRepo.ListMessages(conversation.ID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

// Send posts a message to a conversation the actor takes part in
func (s *MessageService) Send(actor Actor, conversationID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > constants.MaxMessageLength {
		return nil, ErrMessageLength
	}

	conversation, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       actor.ID,
		Content:        content,
	}
	if err := s.messageRepo.CreateMessage(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if err := s.messageRepo.TouchConversation(conversation.ID, message.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	return message, nil
}

// MarkRead marks the other party's messages as read and returns how many changed
func (s *MessageService) MarkRead(actor Actor, conversationID uint64) (int64, error) {
	conversation, err := s.findConversation(conversationID)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(actor.ID) {
		return 0, ErrNotParticipant
	}

	marked, err := s.messageRepo.MarkRead(conversation.ID, actor.ID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return marked, nil
}

// UnreadCount counts the messages waiting for the actor
func (s *MessageService) UnreadCount(actor Actor) (int64, error) {
	count, err := s.messageRepo.CountUnread(actor.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// findConversation loads a conversation with its project and aligns the stored
// solver with the project's current assignee.
func (s *MessageService) findConversation(id uint64) (*models.Conversation, error) {
	conversation, err := s.messageRepo.FindConversationByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	assignee := conversation.Project.AssignedToID
	if assignee != nil && *assignee != conversation.SolverID {
		conversation.SolverID = *assignee
		if err := s.messageRepo.UpdateConversation(conversation); err != nil {
			return nil, fmt.Errorf("failed to update conversation: %w", err)
		}
	}
	return conversation, nil
}
