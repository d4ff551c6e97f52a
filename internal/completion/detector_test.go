package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		input, target string
		want          bool
	}{
		{"cat", "cat", true},
		{"cat ", "cat", true},
		{"cat", "cat\n", true},
		{"  cat", "cat", true},
		{"ca", "cat", false},
		{"cats", "cat", false},
		{"", "", true},
		{" ", "", true},
		{"Cat", "cat", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.input, tt.target), "Matches(%q, %q)", tt.input, tt.target)
	}
}

func TestEvaluateFiresOnce(t *testing.T) {
	var d Detector
	fires := 0
	for _, in := range []string{"", "c", "ca", "cat", "cat", "cat ", "cat"} {
		if d.Evaluate(in, "cat") {
			fires++
		}
	}
	assert.Equal(t, 1, fires)
	assert.True(t, d.Fired())
}

func TestEvaluateIgnoredWhileSuspended(t *testing.T) {
	var d Detector
	d.Suspend()
	assert.False(t, d.Evaluate("cat", "cat"))
	assert.False(t, d.Fired(), "suspended evaluation must not latch")

	d.Resume()
	assert.True(t, d.Evaluate("cat", "cat"))
	assert.False(t, d.Evaluate("cat", "cat"))
}

func TestResumeDoesNotRearm(t *testing.T) {
	var d Detector
	assert.True(t, d.Evaluate("go", "go"))
	d.Suspend()
	d.Resume()
	assert.False(t, d.Evaluate("go", "go"))
}
