package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/dto"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask adds a task to the board of an assigned project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID      uint64          `json:"project_id" binding:"required"`
		Title          string          `json:"title" binding:"required,max=200"`
		Description    string          `json:"description" binding:"max=5000"`
		Priority       models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		StartDate      *time.Time      `json:"start_date"`
		DueDate        *time.Time      `json:"due_date" binding:"required"`
		EstimatedHours *float64        `json:"estimated_hours" binding:"omitempty,gt=0"`
		Order          *int            `json:"order" binding:"omitempty,min=0"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		DueDate:        *req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Order:          req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", dto.ToTaskDTO(*task))
}

// ListProjectTasks returns a project's tasks in display order
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var status *models.TaskStatus
	if value := c.Query("status"); value != "" {
		s := models.TaskStatus(value)
		status = &s
	}

	tasks, err := h.taskService.ListForProject(actor, middleware.GetIDParam(c, "id"), status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks retrieved", dto.ToTaskDTOs(tasks))
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task retrieved", dto.ToTaskDTO(*task))
}

// UpdateTask edits a task's details
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title          *string          `json:"title" binding:"omitempty,min=1,max=200"`
		Description    *string          `json:"description" binding:"omitempty,max=5000"`
		Priority       *models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		StartDate      *time.Time       `json:"start_date"`
		DueDate        *time.Time       `json:"due_date"`
		EstimatedHours *float64         `json:"estimated_hours" binding:"omitempty,gt=0"`
		ActualHours    *float64         `json:"actual_hours" binding:"omitempty,gte=0"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(actor, middleware.GetIDParam(c, "id"), services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", dto.ToTaskDTO(*task))
}

// UpdateTaskStatus moves a task along the board
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(actor, middleware.GetIDParam(c, "id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task status updated", dto.ToTaskDTO(*task))
}

// ReorderTasks sets the display order of a project's tasks
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	type ReorderItem struct {
		TaskID uint64 `json:"task_id" binding:"required"`
		Order  *int   `json:"order" binding:"required,min=0"`
	}
	type ReorderRequest struct {
		Tasks []ReorderItem `json:"tasks" binding:"required,min=1,dive"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]services.ReorderItem, len(req.Tasks))
	for i, item := range req.Tasks {
		items[i] = services.ReorderItem{TaskID: item.TaskID, Order: *item.Order}
	}

	tasks, err := h.taskService.Reorder(actor, middleware.GetIDParam(c, "id"), items)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks reordered", dto.ToTaskDTOs(tasks))
}

// DeleteTask soft deletes a task without accepted work
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(actor, middleware.GetIDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// SuggestTasks asks the AI service for a task breakdown of a project
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	suggestions, err := h.taskService.Suggest(c.Request.Context(), actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task suggestions generated", suggestions)
}
