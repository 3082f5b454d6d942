package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/dto"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func requestListInput(c *gin.Context, params utils.PaginationParams) services.ListRequestsInput {
	input := services.ListRequestsInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if status := c.Query("status"); status != "" {
		s := models.RequestStatus(status)
		input.Status = &s
	}
	return input
}

// CreateRequest applies to an open project
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	type CreateRequestRequest struct {
		ProjectID            uint64   `json:"project_id" binding:"required"`
		CoverLetter          string   `json:"cover_letter" binding:"required"`
		ProposedBudget       *float64 `json:"proposed_budget" binding:"omitempty,gte=0"`
		ProposedTimelineDays *int     `json:"proposed_timeline_days" binding:"omitempty,min=1"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(actor, services.CreateRequestInput{
		ProjectID:            req.ProjectID,
		CoverLetter:          req.CoverLetter,
		ProposedBudget:       req.ProposedBudget,
		ProposedTimelineDays: req.ProposedTimelineDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Request submitted successfully", dto.ToRequestDTO(*request))
}

// GetRequest returns a request visible to the applicant, the buyer or an admin
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	request, err := h.requestService.Get(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Request retrieved", dto.ToRequestDTO(*request))
}

// ListProjectRequests returns the requests of a project (buyer or admin)
func (h *RequestHandler) ListProjectRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	requests, total, err := h.requestService.ListForProject(actor, middleware.GetIDParam(c, "id"), requestListInput(c, params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Requests retrieved", dto.ToRequestDTOs(requests), params, total)
}

// ListMyRequests returns the current solver's requests
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	requests, total, err := h.requestService.ListMine(actor, requestListInput(c, params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Requests retrieved", dto.ToRequestDTOs(requests), params, total)
}

// AcceptRequest accepts a pending request and assigns the project to its solver
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	request, err := h.requestService.Accept(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Request accepted and project assigned", dto.ToRequestDTO(*request))
}

// RejectRequest declines a pending request
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	type RejectRequest struct {
		Reason string `json:"reason" binding:"max=500"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req RejectRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Reject(actor, middleware.GetIDParam(c, "id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Request rejected", dto.ToRequestDTO(*request))
}

// WithdrawRequest lets the applicant take back a pending request
func (h *RequestHandler) WithdrawRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	request, err := h.requestService.Withdraw(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Request withdrawn", dto.ToRequestDTO(*request))
}
