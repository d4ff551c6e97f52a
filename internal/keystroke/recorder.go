package keystroke

import (
	"math"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Zuo-Peng/typetrace/internal/progress"
)

// DefaultCorrectionKeys are the key labels that always count as corrections:
// every key that removes input text, plus forward delete.
var DefaultCorrectionKeys = append([]string{"delete"}, progress.DeleteKeys()...)

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the source of monotonic seconds.
func WithClock(now func() float64) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCorrectionKeys adds key labels to the correction class. The default
// labels stay corrections.
func WithCorrectionKeys(keys ...string) Option {
	return func(r *Recorder) {
		for _, k := range keys {
			r.corrections[k] = struct{}{}
		}
	}
}

// Recorder buffers keystroke events for one session. It is not safe for
// concurrent use.
type Recorder struct {
	target      []rune
	now         func() float64
	corrections map[string]struct{}

	events []Event
	// pending maps a key label to the buffer index of its open event.
	pending map[string]int
}

// NewRecorder returns a recorder classifying presses against target.
func NewRecorder(target string, opts ...Option) *Recorder {
	start := time.Now()
	r := &Recorder{
		target:      []rune(target),
		now:         func() float64 { return time.Since(start).Seconds() },
		pending:     make(map[string]int),
		corrections: make(map[string]struct{}, len(DefaultCorrectionKeys)),
	}
	WithCorrectionKeys(DefaultCorrectionKeys...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeKey maps terminal key names onto the labels the recorder
// classifies. Space is reported as "space" but is a printable character.
func NormalizeKey(key string) string {
	if key == "space" {
		return " "
	}
	return key
}

// Press appends an open event for key at the given cursor position. A key
// label has at most one open event: pressing a label that is still open
// (auto-repeat, or a release the terminal never reported) closes the earlier
// event at this press's timestamp.
func (r *Recorder) Press(key string, cursor int) Event {
	key = NormalizeKey(key)
	ts := r.now()
	if idx, ok := r.pending[key]; ok {
		r.close(idx, ts)
	}
	ev := Event{
		Key:            key,
		DownTS:         ts,
		UpTS:           ts,
		PositionInText: cursor,
	}
	if cursor >= 0 && cursor < len(r.target) {
		c := r.target[cursor]
		ev.TargetChar = &c
	}
	ev.Classification = r.classify(key, ev.TargetChar)

	r.pending[key] = len(r.events)
	r.events = append(r.events, ev)
	return ev
}

// Release closes the most recent open event for key. It reports false when
// no such event exists; the release is then dropped.
func (r *Recorder) Release(key string) bool {
	key = NormalizeKey(key)
	idx, ok := r.pending[key]
	if !ok {
		return false
	}
	r.close(idx, r.now())
	return true
}

func (r *Recorder) close(idx int, ts float64) {
	ev := &r.events[idx]
	if ts <= ev.DownTS {
		// an equal timestamp would read as still open
		ts = math.Nextafter(ev.DownTS, math.Inf(1))
	}
	ev.UpTS = ts
	delete(r.pending, ev.Key)
}

func (r *Recorder) classify(key string, target *rune) Classification {
	if _, ok := r.corrections[key]; ok {
		return Correction
	}
	ch, ok := printable(key)
	if !ok {
		return None
	}
	if target == nil {
		return Insertion
	}
	if ch != *target {
		return Substitution
	}
	return None
}

// printable reports whether key is a single printable character.
func printable(key string) (rune, bool) {
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	ch, _ := utf8.DecodeRuneInString(key)
	if ch == utf8.RuneError || !unicode.IsPrint(ch) {
		return 0, false
	}
	return ch, true
}

// Snapshot returns a copy of the buffer that later presses and releases
// do not affect.
func (r *Recorder) Snapshot() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	for i := range out {
		if out[i].TargetChar != nil {
			c := *out[i].TargetChar
			out[i].TargetChar = &c
		}
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int { return len(r.events) }

// Open returns the number of events still waiting for a release.
func (r *Recorder) Open() int { return len(r.pending) }

// Reset discards all events.
func (r *Recorder) Reset() {
	r.events = nil
	r.pending = make(map[string]int)
}
