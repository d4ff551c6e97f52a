package progress

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// deleteKeys are the labels Edit treats as removing text.
var deleteKeys = []string{
	"backspace",
	"ctrl+h",
	"ctrl+w",
	"alt+backspace",
	"ctrl+backspace",
	"ctrl+u",
}

// DeleteKeys returns the key labels that remove text from a non-empty input.
func DeleteKeys() []string {
	return slices.Clone(deleteKeys)
}

// DeletesText reports whether Edit removes text for key.
func DeletesText(key string) bool {
	return slices.Contains(deleteKeys, key)
}

// Edit applies one key press to an end-anchored input buffer and reports
// whether the buffer changed. The cursor never moves inside the text, so
// only appends and trailing deletions exist.
func Edit(input, key string) (string, bool) {
	switch key {
	case "space":
		return input + " ", true
	case "backspace", "ctrl+h":
		if input == "" {
			return input, false
		}
		_, size := utf8.DecodeLastRuneInString(input)
		return input[:len(input)-size], true
	case "ctrl+w", "alt+backspace", "ctrl+backspace":
		if input == "" {
			return input, false
		}
		trimmed := strings.TrimRightFunc(input, unicode.IsSpace)
		cut := strings.LastIndexFunc(trimmed, unicode.IsSpace)
		return input[:cut+1], true
	case "ctrl+u":
		return "", input != ""
	}
	if utf8.RuneCountInString(key) != 1 {
		return input, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return input, false
	}
	return input + key, true
}
