package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyActor is the gin context key holding the authenticated services.Actor.
	ContextKeyActor = "actor"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "task_colab_session"
	HeaderRequestID   = "X-Request-ID"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MinCoverLetterLength = 20
	MaxCoverLetterLength = 2000
	MaxMessageLength     = 5000

	// MaxSubmissionFileSize is the upper bound for a submission archive (50MB).
	MaxSubmissionFileSize = 50 * 1024 * 1024

	MaxAIGeneratedTasks = 20

	DefaultCurrency = "USD"

	// AutoRejectionReason is stored on sibling requests rejected by an acceptance.
	AutoRejectionReason = "Another problem solver was selected"
	// ReopenedReason is stored on the accepted request released when its project reopens.
	ReopenedReason = "The project was reopened"
)
