package constants

// Session and context keys
const (
	SessionCookieName   = "xp_task_session"
	SessionKeyUserID    = "uid"
	ContextKeyUserID    = "user_id"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength    = 8
	MinTaskNameLength    = 3
	MaxTaskNameLength    = 255
	MaxDescriptionLength = 500
	MaxTaskXP            = 100
	MaxDaysOffPerWeek    = 2
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI
const (
	MaxAIGeneratedTasks = 10
)
