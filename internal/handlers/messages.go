package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/dto"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/utils"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListConversations returns the current user's conversations, most recent first
func (h *MessageHandler) ListConversations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.ListConversations(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Conversations retrieved", dto.ToConversationDTOs(conversations))
}

// GetProjectConversation returns the conversation of a project, creating it on first use
func (h *MessageHandler) GetProjectConversation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	conversation, err := h.messageService.GetOrCreateConversation(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Conversation retrieved", dto.ToConversationDTO(*conversation))
}

// ListMessages returns a page of messages, oldest first
func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	messages, total, err := h.messageService.ListMessages(actor, middleware.GetIDParam(c, "id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Messages retrieved", dto.ToMessageDTOs(messages), params, total)
}

// SendMessage posts a message to a conversation
func (h *MessageHandler) SendMessage(c *gin.Context) {
	type SendMessageRequest struct {
		Content string `json:"content" binding:"required"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(actor, middleware.GetIDParam(c, "id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Message sent", dto.ToMessageDTO(*message))
}

// MarkRead marks the other party's messages in a conversation as read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	marked, err := h.messageService.MarkRead(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Messages marked as read", gin.H{"marked": marked})
}

// UnreadCount returns how many messages wait for the current user
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Unread count retrieved", gin.H{"unread": count})
}
