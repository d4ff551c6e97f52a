package session

import (
	"context"

	"github.com/Zuo-Peng/typetrace/internal/keystroke"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

// StartJob opens a session on the service. Run may be called from any
// goroutine; its result goes back through Controller.ApplyStart.
type StartJob struct {
	svc    Service
	target string
	gen    uint64
}

type StartResult struct {
	gen uint64
	ID  ID
	Err error
}

func (j *StartJob) Run(ctx context.Context) StartResult {
	id, err := j.svc.Start(ctx, j.target)
	return StartResult{gen: j.gen, ID: id, Err: err}
}

// FinishJob carries the snapshots taken when the finish began. Run may be
// called from any goroutine; its result goes back through
// Controller.ApplyFinish.
type FinishJob struct {
	svc        Service
	id         ID
	keystrokes []keystroke.Event
	input      string
	gen        uint64
}

type FinishResult struct {
	gen     uint64
	Summary *sessionapi.Summary
	Err     error
}

// Keystrokes returns the buffer snapshot this job uploads.
func (j *FinishJob) Keystrokes() []keystroke.Event { return j.keystrokes }

// Input returns the final input this job uploads.
func (j *FinishJob) Input() string { return j.input }

// Run performs the four finish calls strictly in order and stops at the
// first failure.
func (j *FinishJob) Run(ctx context.Context) FinishResult {
	res := FinishResult{gen: j.gen}
	if err := j.svc.UploadKeystrokes(ctx, j.id, j.keystrokes); err != nil {
		res.Err = &FinishError{Step: StepUploadKeystrokes, Err: err}
		return res
	}
	if err := j.svc.UploadInput(ctx, j.id, j.input); err != nil {
		res.Err = &FinishError{Step: StepUploadInput, Err: err}
		return res
	}
	if err := j.svc.End(ctx, j.id); err != nil {
		res.Err = &FinishError{Step: StepEnd, Err: err}
		return res
	}
	sum, err := j.svc.Summary(ctx, j.id)
	if err != nil {
		res.Err = &FinishError{Step: StepSummary, Err: err}
		return res
	}
	res.Summary = sum
	return res
}
