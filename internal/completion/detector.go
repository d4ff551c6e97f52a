// Package completion decides when typed input satisfies the target and
// fires that decision at most once.
package completion

import "strings"

// Matches reports whether input completes target, either exactly or after
// trimming surrounding whitespace from both.
func Matches(input, target string) bool {
	return input == target || strings.TrimSpace(input) == strings.TrimSpace(target)
}

// Detector is a single-fire latch around Matches. The zero value is armed.
// It is not safe for concurrent use.
type Detector struct {
	fired     bool
	suspended bool
}

// Evaluate returns true the first time input completes target while the
// detector is armed and not suspended. Every later call returns false.
func (d *Detector) Evaluate(input, target string) bool {
	if d.fired || d.suspended {
		return false
	}
	if !Matches(input, target) {
		return false
	}
	d.fired = true
	return true
}

// Suspend ignores evaluations until Resume. Used while a finish invocation
// is outstanding.
func (d *Detector) Suspend() { d.suspended = true }

// Resume re-enables evaluation. It never re-arms a detector that fired.
func (d *Detector) Resume() { d.suspended = false }

func (d *Detector) Fired() bool     { return d.fired }
func (d *Detector) Suspended() bool { return d.suspended }
