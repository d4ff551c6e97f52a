// Package keystroke records timed press/release pairs with a per-press
// error classification against a fixed target text.
package keystroke

import (
	"encoding/json"
	"fmt"
)

// Classification is assigned once, when a key is pressed.
type Classification int

const (
	None Classification = iota
	Correction
	Substitution
	Insertion
)

func (c Classification) String() string {
	switch c {
	case Correction:
		return "correction"
	case Substitution:
		return "substitution"
	case Insertion:
		return "insertion"
	default:
		return "none"
	}
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*c = None
	case "correction":
		*c = Correction
	case "substitution":
		*c = Substitution
	case "insertion":
		*c = Insertion
	default:
		return fmt.Errorf("unknown classification %q", b)
	}
	return nil
}

// Event is a single keystroke record. DownTS and UpTS are monotonic seconds;
// an event is open while DownTS == UpTS.
type Event struct {
	Key            string
	DownTS         float64
	UpTS           float64
	TargetChar     *rune // nil when the press was past the end of the target
	PositionInText int
	Classification Classification
}

// Closed reports whether a release has been paired with this press.
func (e Event) Closed() bool {
	return e.UpTS != e.DownTS
}

// Dwell returns the hold time in seconds.
func (e Event) Dwell() float64 {
	return e.UpTS - e.DownTS
}

// wireEvent is the upload shape. is_correction / is_error mirror the fields
// the scoring backend historically accepted.
type wireEvent struct {
	Key            string         `json:"key"`
	DownTS         float64        `json:"down_ts"`
	UpTS           float64        `json:"up_ts"`
	TargetChar     *string        `json:"target_char,omitempty"`
	PositionInText int            `json:"position_in_text"`
	Classification Classification `json:"classification"`
	IsCorrection   string         `json:"is_correction"`
	IsError        string         `json:"is_error,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		Key:            e.Key,
		DownTS:         e.DownTS,
		UpTS:           e.UpTS,
		PositionInText: e.PositionInText,
		Classification: e.Classification,
		IsCorrection:   "false",
	}
	if e.TargetChar != nil {
		s := string(*e.TargetChar)
		w.TargetChar = &s
	}
	switch e.Classification {
	case Correction:
		w.IsCorrection = "true"
	case Substitution, Insertion:
		w.IsError = e.Classification.String()
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Event{
		Key:            w.Key,
		DownTS:         w.DownTS,
		UpTS:           w.UpTS,
		PositionInText: w.PositionInText,
		Classification: w.Classification,
	}
	if w.TargetChar != nil {
		r := []rune(*w.TargetChar)
		if len(r) > 0 {
			e.TargetChar = &r[0]
		}
	}
	return nil
}
