package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineTargetKeepsInnerWhitespace(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"go", "go"},
		{"  go  ", "go"},
		{"a  b", "a  b"},
		{"\tfoo\tbar\n", "foo\tbar"},
	}
	for _, tt := range tests {
		got, err := inlineTarget(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestInlineTargetBlank(t *testing.T) {
	_, err := inlineTarget(" \t ")
	assert.Error(t, err)
}

func TestResolveInlineText(t *testing.T) {
	f := targetFlags{text: " one  two "}
	text, id, err := f.resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "one  two", text)
	assert.Zero(t, id)
}
