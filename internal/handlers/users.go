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

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUser returns a user's profile
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetProfile(middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "User retrieved", dto.ToUserDTO(*user))
}

// UpdateProfile edits the current user's own profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	type UpdateProfileRequest struct {
		Name      *string  `json:"name" binding:"omitempty,min=1,max=100"`
		Bio       *string  `json:"bio" binding:"omitempty,max=1000"`
		Skills    []string `json:"skills" binding:"omitempty,max=50"`
		AvatarURL *string  `json:"avatar_url" binding:"omitempty,max=500"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(actor, services.UpdateProfileInput{
		Name:      req.Name,
		Bio:       req.Bio,
		Skills:    req.Skills,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated", dto.ToUserDTO(*user))
}

// ListUsers returns every user matching the filters (admin only)
func (h *UserHandler) ListUsers(c *gin.Context) {
	type ListUsersQuery struct {
		Role   string `form:"role" binding:"omitempty,oneof=admin buyer problem_solver"`
		Status string `form:"status" binding:"omitempty,oneof=active blocked"`
		Search string `form:"search"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var query ListUsersQuery
	if !bindQuery(c, &query) {
		return
	}
	params := utils.GetPaginationParams(c)

	input := services.ListUsersInput{
		Search:   query.Search,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		input.Role = &role
	}
	if query.Status != "" {
		status := models.UserStatus(query.Status)
		input.Status = &status
	}

	users, total, err := h.userService.List(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Users retrieved", dto.ToUserDTOs(users), params, total)
}

// ListSolvers returns active problem solvers
func (h *UserHandler) ListSolvers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListSolvers(c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Problem solvers retrieved", dto.ToUserDTOs(users), params, total)
}

// UpdateUserStatus blocks or unblocks a user (admin only)
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status models.UserStatus `json:"status" binding:"required,oneof=active blocked"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateStatus(actor, middleware.GetIDParam(c, "id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "User status updated", dto.ToUserDTO(*user))
}

// DeleteUser soft deletes a user (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(actor, middleware.GetIDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "User deleted", nil)
}
