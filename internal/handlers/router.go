package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
)

// Services bundles the business services the API routes call.
type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Projects    *services.ProjectService
	Requests    *services.RequestService
	Tasks       *services.TaskService
	Submissions *services.SubmissionService
	Messages    *services.MessageService
}

// RegisterRoutes mounts every /api route on r. Session middleware must already be installed.
func RegisterRoutes(r gin.IRouter, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	projectHandler := NewProjectHandler(svc.Projects)
	requestHandler := NewRequestHandler(svc.Requests)
	taskHandler := NewTaskHandler(svc.Tasks)
	submissionHandler := NewSubmissionHandler(svc.Submissions)
	messageHandler := NewMessageHandler(svc.Messages)

	requireAuth := middleware.RequireAuth(svc.Auth)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	withID := middleware.RequireIDParams("id")

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PUT("/change-password", requireAuth, authHandler.ChangePassword)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", requireAdmin, userHandler.ListUsers)
			users.GET("/solvers", middleware.RequireRole(models.RoleBuyer, models.RoleAdmin), userHandler.ListSolvers)
			users.PATCH("/me", userHandler.UpdateProfile)
			users.GET("/:id", withID, userHandler.GetUser)
			users.PATCH("/:id/status", requireAdmin, withID, userHandler.UpdateUserStatus)
			users.DELETE("/:id", requireAdmin, withID, userHandler.DeleteUser)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/open", projectHandler.ListOpenProjects)
			projects.GET("/mine", projectHandler.ListMyProjects)
			projects.POST("", middleware.RequireRole(models.RoleBuyer, models.RoleAdmin), projectHandler.CreateProject)
			projects.GET("/:id", withID, projectHandler.GetProject)
			projects.PATCH("/:id", withID, projectHandler.UpdateProject)
			projects.PATCH("/:id/status", withID, projectHandler.UpdateProjectStatus)
			projects.POST("/:id/assign", withID, projectHandler.AssignProject)
			projects.POST("/:id/unassign", withID, projectHandler.UnassignProject)
			projects.DELETE("/:id", withID, projectHandler.DeleteProject)
			projects.GET("/:id/progress", withID, projectHandler.GetProjectProgress)
			projects.GET("/:id/activity", withID, projectHandler.ListProjectActivity)
		}

		requests := api.Group("/requests")
		requests.Use(requireAuth)
		{
			requests.POST("", middleware.RequireRole(models.RoleProblemSolver), requestHandler.CreateRequest)
			requests.GET("/mine", requestHandler.ListMyRequests)
			requests.GET("/project/:id", withID, requestHandler.ListProjectRequests)
			requests.GET("/:id", withID, requestHandler.GetRequest)
			requests.POST("/:id/accept", withID, requestHandler.AcceptRequest)
			requests.POST("/:id/reject", withID, requestHandler.RejectRequest)
			requests.POST("/:id/withdraw", withID, requestHandler.WithdrawRequest)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/project/:id", withID, taskHandler.ListProjectTasks)
			tasks.POST("/project/:id/reorder", withID, taskHandler.ReorderTasks)
			tasks.POST("/project/:id/suggest", withID, taskHandler.SuggestTasks)
			tasks.GET("/:id", withID, taskHandler.GetTask)
			tasks.PATCH("/:id", withID, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", withID, taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", withID, taskHandler.DeleteTask)
		}

		submissions := api.Group("/submissions")
		submissions.Use(requireAuth)
		{
			submissions.POST("", submissionHandler.CreateSubmission)
			submissions.GET("/mine", submissionHandler.ListMySubmissions)
			submissions.GET("/task/:id", withID, submissionHandler.ListTaskSubmissions)
			submissions.GET("/project/:id", withID, submissionHandler.ListProjectSubmissions)
			submissions.GET("/:id", withID, submissionHandler.GetSubmission)
			submissions.POST("/:id/review", withID, submissionHandler.ReviewSubmission)
			submissions.DELETE("/:id", withID, submissionHandler.DeleteSubmission)
		}

		messages := api.Group("/messages")
		messages.Use(requireAuth)
		{
			messages.GET("/conversations", messageHandler.ListConversations)
			messages.GET("/unread-count", messageHandler.UnreadCount)
			messages.GET("/project/:id", withID, messageHandler.GetProjectConversation)
			messages.GET("/conversations/:id/messages", withID, messageHandler.ListMessages)
			messages.POST("/conversations/:id/messages", withID, messageHandler.SendMessage)
			messages.PATCH("/conversations/:id/read", withID, messageHandler.MarkRead)
		}
	}
}
