package script

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/progress"
	"github.com/Zuo-Peng/typetrace/internal/session"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

var ErrNotCompleted = errors.New("script ended before the target was completed")

// Player drives a controller headlessly. Its Now method is the controller's
// clock: build the controller with session.WithClock(p.Now).
type Player struct {
	// Force finishes the session after the last record when typing never
	// completed the target.
	Force bool
	Log   zerolog.Logger

	now float64
}

func NewPlayer(force bool) *Player {
	return &Player{Force: force, Log: log.WithComponent("replay")}
}

// Now returns the timestamp of the record being replayed.
func (p *Player) Now() float64 { return p.now }

// Replay starts the session, feeds every record through the controller,
// and returns the summary of the finish that follows.
func (p *Player) Replay(ctx context.Context, ctrl *session.Controller, recs []Record) (*sessionapi.Summary, error) {
	if err := ctrl.Start(ctx); err != nil {
		return nil, err
	}

	var pending *session.FinishJob
	for _, rec := range recs {
		p.now = rec.At
		switch rec.Type {
		case TypePress:
			if _, ok := ctrl.Press(rec.Key); !ok {
				continue
			}
			input, changed := progress.Edit(ctrl.Input(), rec.Key)
			if !changed {
				continue
			}
			if up := ctrl.SetInput(input); up.Finish != nil {
				pending = up.Finish
			}
		case TypeRelease:
			ctrl.Release(rec.Key)
		}
	}

	if pending != nil {
		p.Log.Debug().Int64(log.FieldSessionID, ctrl.ID()).Msg("target completed, finishing")
		return ctrl.ApplyFinish(pending.Run(ctx))
	}
	if !p.Force {
		return nil, ErrNotCompleted
	}
	p.Log.Debug().Int64(log.FieldSessionID, ctrl.ID()).Msg("forcing finish")
	return ctrl.Finish(ctx)
}
