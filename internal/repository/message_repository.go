package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// CreateConversation creates a new conversation
func (r *GormMessageRepository) CreateConversation(conversation *models.Conversation) error {
	return r.db.Omit(clause.Associations).Create(conversation).Error
}

// FindConversationByID finds a conversation by ID
func (r *GormMessageRepository) FindConversationByID(id uint64) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.Scopes(database.NotDeleted).
		Preload("Project").
		First(&conversation, id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindConversationByProject finds the conversation of a project
func (r *GormMessageRepository) FindConversationByProject(projectID uint64) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.Scopes(database.NotDeleted).
		Where("project_id = ?", projectID).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// UpdateConversation updates a conversation
func (r *GormMessageRepository) UpdateConversation(conversation *models.Conversation) error {
	return r.db.Omit(clause.Associations).Save(conversation).Error
}

// assignedProjects selects the IDs of the projects currently assigned to a user.
func (r *GormMessageRepository) assignedProjects(userID uint64) *gorm.DB {
	return r.db.Model(&models.Project{}).Select("id").Where("assigned_to_id = ?", userID)
}

// ListConversations lists the conversations a user takes part in. The solver
// side is the project's current assignee.
func (r *GormMessageRepository) ListConversations(userID uint64) ([]models.Conversation, error) {
	conversations := []models.Conversation{}
	err := r.db.Scopes(database.NotDeleted).
		Where("(buyer_id = ? OR project_id IN (?))", userID, r.assignedProjects(userID)).
		Order("CASE WHEN last_message_at IS NULL THEN 1 ELSE 0 END, last_message_at DESC").
		Order("id DESC").
		Preload("Project").
		Find(&conversations).Error
	return conversations, err
}

// TouchConversation records the time of the latest message
func (r *GormMessageRepository) TouchConversation(id uint64, at time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("last_message_at", at).Error
}

// CreateMessage creates a new message
func (r *GormMessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Omit(clause.Associations).Create(message).Error
}

// ListMessages lists the messages of a conversation, oldest first
func (r *GormMessageRepository) ListMessages(conversationID uint64, page, pageSize int) ([]models.Message, int64, error) {
	var messages []models.Message

	query := r.db.Model(&models.Message{}).
		Scopes(database.NotDeleted).
		Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").
		Order("id ASC").
		Scopes(pageScope(page, pageSize)).
		Preload("Sender").
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkRead marks the conversation's unread messages from the other party as read
func (r *GormMessageRepository) MarkRead(conversationID, readerID uint64, at time.Time) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Scopes(database.NotDeleted).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		UpdateColumn("read_at", at)
	return result.RowsAffected, result.Error
}

// CountUnread counts unread messages addressed to a user
func (r *GormMessageRepository) CountUnread(userID uint64) (int64, error) {
	var count int64
	conversations := r.db.Model(&models.Conversation{}).
		Select("id").
		Where("is_deleted = ?", false).
		Where("(buyer_id = ? OR project_id IN (?))", userID, r.assignedProjects(userID))

	err := r.db.Model(&models.Message{}).
		Scopes(database.NotDeleted).
		Where("conversation_id IN (?)", conversations).
		Where("sender_id <> ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
