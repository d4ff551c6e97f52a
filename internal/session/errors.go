package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotStarted = errors.New("session not started")
	ErrSessionCompleted  = errors.New("session already completed")
	ErrStale             = errors.New("stale session result")
)

// Finish steps, in the order they run.
const (
	StepUploadKeystrokes = "upload_keystrokes"
	StepUploadInput      = "upload_input"
	StepEnd              = "end"
	StepSummary          = "summary"
)

// FinishError reports the step at which a finish sequence stopped.
type FinishError struct {
	Step string
	Err  error
}

func (e *FinishError) Error() string {
	return fmt.Sprintf("finish session: %s: %v", e.Step, e.Err)
}

func (e *FinishError) Unwrap() error {
	return e.Err
}
