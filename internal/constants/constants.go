package constants

// Context keys set by the auth middleware
const (
	ContextKeyUserID = "user_id"
	ContextKeyRoles  = "user_roles"
)

// Pagination
const (
	MinPage                = 1
	DefaultProjectPageSize = 10
	DefaultTaskPageSize    = 20
	MaxPageSize            = 100
)

// Validation bounds
const (
	MinUserNameLength    = 2
	MaxUserNameLength    = 50
	MinPasswordLength    = 6
	MaxProjectNameLength = 100
	MaxTaskTitleLength   = 200
	MaxDescriptionLength = 1000
	MaxProgress          = 100
)
