package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdit(t *testing.T) {
	tests := []struct {
		input, key string
		want       string
		changed    bool
	}{
		{"", "a", "a", true},
		{"ab", "space", "ab ", true},
		{"ab", " ", "ab ", true},
		{"héé", "backspace", "hé", true},
		{"", "backspace", "", false},
		{"one two  ", "ctrl+w", "one ", true},
		{"one", "alt+backspace", "", true},
		{"abc", "ctrl+u", "", true},
		{"abc", "enter", "abc", false},
		{"abc", "left", "abc", false},
		{"abc", "\t", "abc", false},
		{"ab", "狐", "ab狐", true},
	}
	for _, tt := range tests {
		got, changed := Edit(tt.input, tt.key)
		assert.Equal(t, tt.want, got, "Edit(%q, %q)", tt.input, tt.key)
		assert.Equal(t, tt.changed, changed, "Edit(%q, %q) changed", tt.input, tt.key)
	}
}

func TestDeletesText(t *testing.T) {
	for _, key := range DeleteKeys() {
		assert.True(t, DeletesText(key), key)
		_, changed := Edit("one two", key)
		assert.True(t, changed, key)
	}
	assert.False(t, DeletesText("delete"))
	assert.False(t, DeletesText("a"))
}
