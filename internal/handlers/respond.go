package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-colab-api/internal/errors"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/utils"
)

// Response is the success envelope of every endpoint
type Response struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Data    interface{}               `json:"data"`
	Meta    *utils.PaginationResponse `json:"meta,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondPage(c *gin.Context, message string, data interface{}, params utils.PaginationParams, total int64) {
	meta := utils.NewPaginationResponse(params, total)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &meta,
	})
}

// respondError maps a service error to its HTTP status.
func respondError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindBadRequest:
		apierrors.BadRequest(c, err.Error())
	case services.KindUnauthorized:
		apierrors.Unauthorized(c, err.Error())
	case services.KindForbidden:
		apierrors.Forbidden(c, err.Error())
	case services.KindNotFound:
		apierrors.NotFound(c, err.Error())
	case services.KindConflict:
		apierrors.Conflict(c, err.Error())
	case services.KindUnavailable:
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		log.Printf("request %s %s failed (request_id=%s): %v", c.Request.Method, c.FullPath(), middleware.GetRequestID(c), err)
		apierrors.InternalError(c, "")
	}
}

// currentActor returns the authenticated actor or writes a 401.
func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BindingError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		apierrors.BindingError(c, err)
		return false
	}
	return true
}
