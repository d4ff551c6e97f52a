package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldPromptID  = "prompt_id"

	// Process fields
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldStep      = "step"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Telemetry fields
	FieldKey        = "key"
	FieldKeystrokes = "keystrokes"
	FieldCursor     = "cursor"

	// Network fields
	FieldBaseURL = "base_url"
	FieldStatus  = "status"
	FieldPath    = "path"
)
