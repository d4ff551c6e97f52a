// Package progress derives the cursor position from the typed input and
// classifies every target character for the live overlay.
package progress

import "unicode/utf8"

// Class is the display state of one target character.
type Class int

const (
	Pending Class = iota
	Current
	Correct
	Incorrect
)

func (c Class) String() string {
	switch c {
	case Current:
		return "current"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "pending"
	}
}

// Settled folds Current into Pending: the character under the cursor has
// not been typed yet.
func (c Class) Settled() Class {
	if c == Current {
		return Pending
	}
	return c
}

// Cursor is the rune length of input.
func Cursor(input string) int {
	return utf8.RuneCountInString(input)
}

// Diff classifies each rune of target against input. It always returns
// exactly one class per target rune.
func Diff(target, input string) []Class {
	t := []rune(target)
	in := []rune(input)
	out := make([]Class, len(t))
	for i := range t {
		switch {
		case i < len(in):
			if in[i] == t[i] {
				out[i] = Correct
			} else {
				out[i] = Incorrect
			}
		case i == len(in):
			out[i] = Current
		default:
			out[i] = Pending
		}
	}
	return out
}

// Settled applies Class.Settled to every element.
func Settled(classes []Class) []Class {
	out := make([]Class, len(classes))
	for i, c := range classes {
		out[i] = c.Settled()
	}
	return out
}

// Overflow returns the runes typed past the end of target.
func Overflow(target, input string) string {
	n := utf8.RuneCountInString(target)
	in := []rune(input)
	if len(in) <= n {
		return ""
	}
	return string(in[n:])
}
