// Package script reads, writes and replays recorded keyboard sessions.
//
// A script is JSONL, one record per line:
//
//	{"type":"press","key":"g","at":0.12}
//	{"type":"release","key":"g","at":0.19}
//
// "at" is seconds since the session began and must not decrease.
package script

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineSize = 1024 * 1024

const (
	TypePress   = "press"
	TypeRelease = "release"
)

type Record struct {
	Type string  `json:"type"`
	Key  string  `json:"key"`
	At   float64 `json:"at"`
}

// Parse reads a script file.
func Parse(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Decode reads JSONL records, skipping blank lines.
func Decode(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		recs []Record
		last float64
		line int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Type != TypePress && rec.Type != TypeRelease {
			return nil, fmt.Errorf("line %d: unknown record type %q", line, rec.Type)
		}
		if rec.Key == "" {
			return nil, fmt.Errorf("line %d: missing key", line)
		}
		if rec.At < last {
			return nil, fmt.Errorf("line %d: time goes backwards (%g < %g)", line, rec.At, last)
		}
		last = rec.At
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Encode writes records as JSONL.
func Encode(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Write saves records to path, replacing any existing file.
func Write(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
