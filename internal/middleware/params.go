package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-colab-api/internal/errors"
)

func paramKey(name string) string {
	return "param:" + name
}

// RequireIDParams parses the named path parameters as positive IDs and aborts
// with 400 when one is malformed.
func RequireIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			id, err := strconv.ParseUint(c.Param(name), 10, 64)
			if err != nil || id == 0 {
				apierrors.BadRequestWithSources(c, fmt.Sprintf("Invalid %s", name), []apierrors.ErrorSource{{
					Path:    name,
					Message: "must be a positive integer",
				}})
				return
			}
			c.Set(paramKey(name), id)
		}
		c.Next()
	}
}

// GetIDParam returns a path ID parsed by RequireIDParams.
func GetIDParam(c *gin.Context, name string) uint64 {
	return c.GetUint64(paramKey(name))
}
