package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a non-deleted user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a non-deleted user by email
	FindByEmail(email string) (*models.User, error)

	// EmailExists reports whether any user row, deleted or not, holds the email
	EmailExists(email string) (bool, error)

	// Update saves all user fields
	Update(user *models.User) error

	// List retrieves users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// SoftDelete marks a user as deleted
	SoftDelete(id uint64, at time.Time) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role     *models.UserRole
	Status   *models.UserStatus
	Search   string
	Page     int
	PageSize int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a non-deleted project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update saves all project fields
	Update(project *models.Project) error

	// AdjustApplicants adds delta to the applicants counter, never going below zero
	AdjustApplicants(id uint64, delta int) error

	// SoftDelete marks a project as deleted
	SoftDelete(id uint64, at time.Time) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Statuses     []models.ProjectStatus
	Category     string
	Priority     *models.Priority
	BuyerID      *uint64
	AssignedToID *uint64
	Search       string
	MinBudget    *float64
	MaxBudget    *float64
	SortBy       string
	SortAsc      bool
	Page         int
	PageSize     int
}

// RequestRepository defines the interface for request data access
type RequestRepository interface {
	// Create creates a new request
	Create(request *models.Request) error

	// FindByID finds a non-deleted request by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Request, error)

	// ExistsActive reports whether the solver has a non-withdrawn request for the project
	ExistsActive(projectID, solverID uint64) (bool, error)

	// List retrieves requests with filtering and pagination
	List(filter RequestFilter) ([]models.Request, int64, error)

	// Update saves all request fields
	Update(request *models.Request) error

	// RejectPendingExcept rejects every other pending request of the project
	RejectPendingExcept(projectID, exceptID uint64, reason string, at time.Time) (int64, error)

	// ReleaseAccepted moves the project's accepted requests to withdrawn
	ReleaseAccepted(projectID uint64, reason string, at time.Time) (int64, error)
}

// RequestFilter holds filtering options for listing requests
type RequestFilter struct {
	ProjectID *uint64
	SolverID  *uint64
	Status    *models.RequestStatus
	Page      int
	PageSize  int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a non-deleted task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDs finds the non-deleted tasks with the given IDs
	FindByIDs(ids []uint64) ([]models.Task, error)

	// ListByProject lists the tasks of a project ordered by their order value
	ListByProject(projectID uint64, status *models.TaskStatus) ([]models.Task, error)

	// Update saves all task fields
	Update(task *models.Task) error

	// MaxOrder returns the highest order value in a project, 0 when there are no tasks
	MaxOrder(projectID uint64) (int, error)

	// CountByStatus counts the tasks of a project per status
	CountByStatus(projectID uint64) (map[models.TaskStatus]int64, error)

	// UpdateOrders sets the order of several tasks at once
	UpdateOrders(orders map[uint64]int) error

	// SoftDelete marks a task as deleted
	SoftDelete(id uint64, at time.Time) error
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// Create creates a new submission
	Create(submission *models.Submission) error

	// FindByID finds a non-deleted submission by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Submission, error)

	// List retrieves submissions with filtering and pagination, newest version first
	List(filter SubmissionFilter) ([]models.Submission, int64, error)

	// Update saves all submission fields
	Update(submission *models.Submission) error

	// MaxVersion returns the highest version of a task's submissions, deleted ones included
	MaxVersion(taskID uint64) (int, error)

	// CountForTask counts the non-deleted submissions of a task in a status, excluding one ID
	CountForTask(taskID uint64, status models.SubmissionStatus, excludeID uint64) (int64, error)

	// ResolvePending records a review outcome on every pending submission of a task
	ResolvePending(taskID uint64, status models.SubmissionStatus, reviewerID uint64, at time.Time) (int64, error)

	// SoftDelete marks a submission as deleted
	SoftDelete(id uint64, at time.Time) error
}

// SubmissionFilter holds filtering options for listing submissions
type SubmissionFilter struct {
	TaskID    *uint64
	ProjectID *uint64
	SolverID  *uint64
	Status    *models.SubmissionStatus
	Page      int
	PageSize  int
}

// MessageRepository defines the interface for conversation and message data access
type MessageRepository interface {
	// CreateConversation creates a new conversation
	CreateConversation(conversation *models.Conversation) error

	// FindConversationByID finds a non-deleted conversation by ID
	FindConversationByID(id uint64) (*models.Conversation, error)

	// FindConversationByProject finds the conversation of a project
	FindConversationByProject(projectID uint64) (*models.Conversation, error)

	// UpdateConversation saves all conversation fields
	UpdateConversation(conversation *models.Conversation) error

	// ListConversations lists the conversations a user takes part in, most recent first
	ListConversations(userID uint64) ([]models.Conversation, error)

	// TouchConversation records the time of the latest message
	TouchConversation(id uint64, at time.Time) error

	// CreateMessage creates a new message
	CreateMessage(message *models.Message) error

	// ListMessages lists the messages of a conversation, oldest first
	ListMessages(conversationID uint64, page, pageSize int) ([]models.Message, int64, error)

	// MarkRead marks the conversation's messages not sent by readerID as read
	MarkRead(conversationID, readerID uint64, at time.Time) (int64, error)

	// CountUnread counts unread messages addressed to a user across conversations
	CountUnread(userID uint64) (int64, error)
}

// ActivityRepository defines the interface for activity log data access
type ActivityRepository interface {
	// Create appends an event
	Create(event *models.ActivityEvent) error

	// ListByProject lists the events of a project, newest first
	ListByProject(projectID uint64, page, pageSize int) ([]models.ActivityEvent, int64, error)
}
