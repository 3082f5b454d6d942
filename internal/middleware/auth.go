package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/constants"
	apierrors "github.com/yukikurage/task-colab-api/internal/errors"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
)

// RequireAuth authenticates the request with a bearer token, falling back to
// the session cookie. Deleted accounts get 401 and blocked accounts 403.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user *models.User
			err  error
		)

		if token, ok := bearerToken(c); ok {
			user, err = authService.Authenticate(token)
		} else {
			userID, ok := sessionUserID(sessions.Default(c))
			if !ok {
				apierrors.Unauthorized(c, "")
				return
			}
			user, err = authService.ActiveUser(userID)
		}

		if err != nil {
			if services.KindOf(err) == services.KindForbidden {
				apierrors.Forbidden(c, err.Error())
				return
			}
			if services.KindOf(err) == 0 {
				apierrors.InternalError(c, "")
				return
			}
			apierrors.Unauthorized(c, err.Error())
			return
		}

		// Store user ID and actor in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyActor, services.ActorFromUser(user))
		c.Next()
	}
}

// RequireRole allows only users with one of the given roles. It must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "Insufficient role")
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// GetActor retrieves the authenticated actor from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionUserID(session sessions.Session) (uint64, bool) {
	userID := session.Get(constants.ContextKeyUserID)
	if userID == nil {
		return 0, false
	}
	return toUserID(userID)
}

func toUserID(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
