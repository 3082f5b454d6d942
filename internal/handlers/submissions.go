package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/dto"
	apierrors "github.com/yukikurage/task-colab-api/internal/errors"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/utils"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

func submissionListInput(c *gin.Context, params utils.PaginationParams) services.ListSubmissionsInput {
	input := services.ListSubmissionsInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		input.Status = &s
	}
	return input
}

// CreateSubmission uploads a ZIP deliverable for a task (multipart form)
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	type CreateSubmissionForm struct {
		TaskID      uint64 `form:"task_id" binding:"required"`
		Description string `form:"description" binding:"max=2000"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var form CreateSubmissionForm
	if err := c.ShouldBind(&form); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequestWithSources(c, "A ZIP file is required", []apierrors.ErrorSource{{
			Path:    "file",
			Message: "file is required",
		}})
		return
	}

	submission, err := h.submissionService.Create(actor, services.CreateSubmissionInput{
		TaskID:      form.TaskID,
		Description: form.Description,
		File:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Submission uploaded successfully", dto.ToSubmissionDTO(*submission))
}

// ReviewSubmission accepts, rejects or asks for a revision of a pending submission
func (h *SubmissionHandler) ReviewSubmission(c *gin.Context) {
	type ReviewRequest struct {
		Status   models.SubmissionStatus `json:"status" binding:"required,oneof=accepted rejected revision_requested"`
		Feedback string                  `json:"feedback" binding:"max=2000"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Review(actor, middleware.GetIDParam(c, "id"), services.ReviewSubmissionInput{
		Status:   req.Status,
		Feedback: req.Feedback,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Submission reviewed", dto.ToSubmissionDTO(*submission))
}

// GetSubmission returns a single submission
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Submission retrieved", dto.ToSubmissionDTO(*submission))
}

// ListTaskSubmissions returns every version submitted for a task
func (h *SubmissionHandler) ListTaskSubmissions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	submissions, total, err := h.submissionService.ListForTask(actor, middleware.GetIDParam(c, "id"), submissionListInput(c, params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Submissions retrieved", dto.ToSubmissionDTOs(submissions), params, total)
}

// ListProjectSubmissions returns the submissions of a project
func (h *SubmissionHandler) ListProjectSubmissions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	submissions, total, err := h.submissionService.ListForProject(actor, middleware.GetIDParam(c, "id"), submissionListInput(c, params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Submissions retrieved", dto.ToSubmissionDTOs(submissions), params, total)
}

// ListMySubmissions returns the current solver's submissions
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	submissions, total, err := h.submissionService.ListMine(actor, submissionListInput(c, params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Submissions retrieved", dto.ToSubmissionDTOs(submissions), params, total)
}

// DeleteSubmission withdraws a pending submission
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.submissionService.Delete(actor, middleware.GetIDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Submission deleted successfully", nil)
}
