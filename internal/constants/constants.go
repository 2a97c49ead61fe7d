package constants

// Session and context keys
const (
	SessionCookieName  = "task_session"
	ContextKeyUserID   = "user_id"
	ContextKeySession  = "session"
	ContextKeyTaskID   = "task_id"
	SessionMaxAgeHours = 24 * 7
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)
