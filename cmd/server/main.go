package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/yukikurage/task-colab-api/internal/auth"
	"github.com/yukikurage/task-colab-api/internal/config"
	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/handlers"
	"github.com/yukikurage/task-colab-api/internal/metrics"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	metrics.Register()

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.Metrics())

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize AI service; the interface stays nil without a key
	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Println("OPENAI_API_KEY not set, task suggestions are disabled")
	}

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	activity := services.NewActivityService(repository.NewActivityRepository(db))
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	projectService := services.NewProjectService(projectRepo, userRepo, taskRepo, requestRepo, activity)
	taskService := services.NewTaskService(taskRepo, submissionRepo, projectService, activity, suggester)
	fileStore := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Colab API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(storage.URLPrefix, cfg.UploadDir)

	// API routes
	handlers.RegisterRoutes(r, handlers.Services{
		Auth:        services.NewAuthService(userRepo, tokens),
		Users:       services.NewUserService(userRepo),
		Projects:    projectService,
		Requests:    services.NewRequestService(requestRepo, projectRepo, activity),
		Tasks:       taskService,
		Submissions: services.NewSubmissionService(submissionRepo, taskService, projectService, fileStore, activity),
		Messages:    services.NewMessageService(repository.NewMessageRepository(db), projectService),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", constants.HeaderRequestID},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = s
		log.Printf("Using Redis session store at %s", redisAddr)
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
		log.Println("REDIS_HOST not set, using cookie session store")
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
