package sessionapi

import "encoding/json"

// ErrorDetail is one positional typing error reported by the scorer.
type ErrorDetail struct {
	Position int    `json:"position"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ErrorAnalysis breaks errors down by kind.
type ErrorAnalysis struct {
	TotalErrors           int            `json:"total_errors"`
	Substitutions         []ErrorDetail  `json:"substitutions"`
	Insertions            []ErrorDetail  `json:"insertions"`
	Deletions             []ErrorDetail  `json:"deletions"`
	ErrorPositions        []int          `json:"error_positions,omitempty"`
	ProblematicCharacters map[string]int `json:"problematic_characters"`
	AccuracyByPosition    []int          `json:"accuracy_by_position,omitempty"`
	ErrorRate             float64        `json:"error_rate,omitempty"`
}

// Summary is the scorer's result for a finished session. The client does not
// interpret it; Raw keeps the response body as received.
type Summary struct {
	SessionID          int64          `json:"session_id"`
	DurationSecs       float64        `json:"duration_secs"`
	KeystrokeCount     int            `json:"keystroke_count"`
	WPM                float64        `json:"wpm"`
	AvgDwellMs         float64        `json:"avg_dwell_ms"`
	AvgFlightMs        float64        `json:"avg_flight_ms"`
	AccuracyPercentage *float64       `json:"accuracy_percentage,omitempty"`
	ErrorCount         int            `json:"error_count"`
	CorrectionCount    int            `json:"correction_count"`
	ErrorDetails       *ErrorAnalysis `json:"error_details,omitempty"`
	UserInput          string         `json:"user_input,omitempty"`
	TargetText         string         `json:"target_text,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (s *Summary) UnmarshalJSON(b []byte) error {
	type plain Summary
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Summary(p)
	s.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// JSON returns the body as received, or the re-encoded fields when the
// summary was built locally.
func (s *Summary) JSON() []byte {
	if len(s.Raw) > 0 {
		return s.Raw
	}
	type plain Summary
	b, _ := json.Marshal((*plain)(s))
	return b
}
