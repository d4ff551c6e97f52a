// Package session drives one typing session from start to scored summary.
//
// A Controller is confined to a single goroutine (the event loop). Network
// work is split out into StartJob and FinishJob values whose Run methods
// may execute elsewhere; their results are applied back on the loop.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/typetrace/internal/completion"
	"github.com/Zuo-Peng/typetrace/internal/keystroke"
	xlog "github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/progress"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

// ID identifies a session on the service.
type ID = int64

// Service is the remote side of a session.
type Service interface {
	Start(ctx context.Context, target string) (ID, error)
	UploadKeystrokes(ctx context.Context, id ID, events []keystroke.Event) error
	UploadInput(ctx context.Context, id ID, text string) error
	End(ctx context.Context, id ID) error
	Summary(ctx context.Context, id ID) (*sessionapi.Summary, error)
}

type options struct {
	log     zerolog.Logger
	recOpts []keystroke.Option
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the timestamp source for recorded keystrokes, in seconds.
func WithClock(now func() float64) Option {
	return func(o *options) { o.recOpts = append(o.recOpts, keystroke.WithClock(now)) }
}

// WithCorrectionKeys adds key labels to the correction class.
func WithCorrectionKeys(keys ...string) Option {
	return func(o *options) { o.recOpts = append(o.recOpts, keystroke.WithCorrectionKeys(keys...)) }
}

// Update is the outcome of an input change.
type Update struct {
	Snapshot progress.Snapshot
	// Finish is set when the input completed the target and a finish
	// sequence began. The caller must Run it and apply the result.
	Finish *FinishJob
}

// Controller owns the keystroke buffer, the input mirror, and the session
// lifecycle for one target.
type Controller struct {
	svc      Service
	log      zerolog.Logger
	recorder *keystroke.Recorder
	tracker  *progress.Tracker
	detector completion.Detector

	state    State
	id       ID
	summary  *sessionapi.Summary
	gen      uint64
	starting bool
	closed   bool
}

func New(svc Service, target string, opts ...Option) *Controller {
	o := options{log: xlog.WithComponent("session")}
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller{
		svc:      svc,
		log:      o.log,
		recorder: keystroke.NewRecorder(target, o.recOpts...),
		tracker:  progress.NewTracker(target),
	}
}

func (c *Controller) State() State                  { return c.state }
func (c *Controller) ID() ID                        { return c.id }
func (c *Controller) Target() string                { return c.tracker.Target() }
func (c *Controller) Input() string                 { return c.tracker.Input() }
func (c *Controller) Summary() *sessionapi.Summary  { return c.summary }
func (c *Controller) Snapshot() progress.Snapshot   { return c.tracker.Snapshot() }
func (c *Controller) Keystrokes() []keystroke.Event { return c.recorder.Snapshot() }
func (c *Controller) Recorded() int                 { return c.recorder.Len() }
func (c *Controller) Closed() bool                  { return c.closed }
func (c *Controller) Starting() bool                { return c.starting }

// BeginStart returns a job that opens the session, or nil when the session
// is not Idle or a start is already in flight.
func (c *Controller) BeginStart() *StartJob {
	if c.closed || c.state != Idle || c.starting {
		return nil
	}
	c.starting = true
	c.gen++
	return &StartJob{svc: c.svc, target: c.Target(), gen: c.gen}
}

// ApplyStart moves the session to Active on success. On failure it stays
// Idle so the caller can retry.
func (c *Controller) ApplyStart(res StartResult) error {
	if c.closed || res.gen != c.gen || !c.starting {
		return ErrStale
	}
	c.starting = false
	if res.Err != nil {
		c.log.Error().Err(res.Err).Msg("session start failed")
		return fmt.Errorf("start session: %w", res.Err)
	}
	c.id = res.ID
	c.log = c.log.With().Int64(xlog.FieldSessionID, res.ID).Logger()
	c.transition(Active)
	return nil
}

// Press records a key press against the current cursor. Presses outside
// Active are discarded.
func (c *Controller) Press(key string) (keystroke.Event, bool) {
	if c.closed || c.state != Active {
		c.log.Debug().Str(xlog.FieldKey, key).Stringer("state", c.state).Msg("press discarded")
		return keystroke.Event{}, false
	}
	return c.recorder.Press(key, c.tracker.Cursor()), true
}

// Release closes the matching open press. It still applies while a finish
// is in flight so that a retry uploads the closed event.
func (c *Controller) Release(key string) bool {
	if c.closed || (c.state != Active && c.state != Finishing) {
		return false
	}
	if !c.recorder.Release(key) {
		c.log.Debug().Str(xlog.FieldKey, key).Msg("unmatched release dropped")
		return false
	}
	return true
}

// SetInput mirrors the current input, recomputes progress, and checks for
// completion. Input changes outside Active are ignored.
func (c *Controller) SetInput(text string) Update {
	if c.closed || c.state != Active {
		return Update{Snapshot: c.tracker.Snapshot()}
	}
	up := Update{Snapshot: c.tracker.Apply(text)}
	if c.detector.Evaluate(text, c.Target()) {
		c.log.Info().Int(xlog.FieldCursor, up.Snapshot.Cursor).Msg("target completed")
		job, err := c.BeginFinish()
		if err == nil {
			up.Finish = job
		}
	}
	return up
}

// BeginFinish snapshots the buffer and input and moves to Finishing. It
// returns (nil, nil) when a finish is already in flight.
func (c *Controller) BeginFinish() (*FinishJob, error) {
	if c.closed {
		return nil, ErrStale
	}
	switch c.state {
	case Idle:
		c.log.Warn().Msg("finish requested before session start")
		return nil, ErrSessionNotStarted
	case Finishing:
		return nil, nil
	case Completed:
		return nil, ErrSessionCompleted
	}

	c.detector.Suspend()
	c.gen++
	job := &FinishJob{
		svc:        c.svc,
		id:         c.id,
		keystrokes: c.recorder.Snapshot(),
		input:      c.tracker.Input(),
		gen:        c.gen,
	}
	c.log.Debug().Int(xlog.FieldKeystrokes, len(job.keystrokes)).Msg("finish snapshot taken")
	c.transition(Finishing)
	return job, nil
}

// ApplyFinish completes the session on success. On failure it returns to
// Active so a fresh BeginFinish can retry.
func (c *Controller) ApplyFinish(res FinishResult) (*sessionapi.Summary, error) {
	if c.closed || res.gen != c.gen || c.state != Finishing {
		return nil, ErrStale
	}
	if res.Err != nil {
		ev := c.log.Error().Err(res.Err)
		var fe *FinishError
		if errors.As(res.Err, &fe) {
			ev = ev.Str(xlog.FieldStep, fe.Step)
		}
		ev.Msg("session finish failed")
		c.transition(Active)
		c.detector.Resume()
		return nil, res.Err
	}
	c.summary = res.Summary
	c.transition(Completed)
	return res.Summary, nil
}

// Start opens the session and blocks until the service answers.
func (c *Controller) Start(ctx context.Context) error {
	job := c.BeginStart()
	if job == nil {
		return nil
	}
	return c.ApplyStart(job.Run(ctx))
}

// Finish runs a full finish sequence and blocks until it ends.
func (c *Controller) Finish(ctx context.Context) (*sessionapi.Summary, error) {
	job, err := c.BeginFinish()
	if err != nil || job == nil {
		return nil, err
	}
	return c.ApplyFinish(job.Run(ctx))
}

// Close tears the controller down. Results of jobs still running are
// rejected with ErrStale when applied.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.log.Debug().Stringer("state", c.state).Msg("session controller closed")
}

func (c *Controller) transition(next State) {
	prev := c.state
	c.state = next
	c.log.Info().
		Stringer(xlog.FieldOldState, prev).
		Stringer(xlog.FieldNewState, next).
		Msg("session state changed")
}
