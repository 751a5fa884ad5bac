package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	ErrConfigInvalid = "CONFIG_INVALID"
	ErrStateInvalid  = "STATE_INVALID"

	// Engine and session errors
	ErrSessionFailed = "SESSION_FAILED"
	ErrCommandFailed = "COMMAND_FAILED"

	ErrFileNotFound   = "FILE_NOT_FOUND"
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	ErrHistoryError = "HISTORY_ERROR"

	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes.
const (
	WarnItemError = "ITEM_ERROR"
	WarnNoCells   = "NO_CELLS"
)
