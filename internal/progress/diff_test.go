package progress

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDiffCatProgression(t *testing.T) {
	P, C, X := Pending, Correct, Current
	tests := []struct {
		input   string
		exact   []Class
		settled []Class
	}{
		{"", []Class{X, P, P}, []Class{P, P, P}},
		{"c", []Class{C, X, P}, []Class{C, P, P}},
		{"ca", []Class{C, C, X}, []Class{C, C, P}},
		{"cat", []Class{C, C, C}, []Class{C, C, C}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Diff("cat", tt.input)
			if diff := cmp.Diff(tt.exact, got); diff != "" {
				t.Errorf("Diff mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.settled, Settled(got)); diff != "" {
				t.Errorf("Settled mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffIncorrectAndOverflow(t *testing.T) {
	got := Diff("cat", "cxtss")
	want := []Class{Correct, Incorrect, Correct}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "ss", Overflow("cat", "cxtss"))
	assert.Equal(t, "", Overflow("cat", "ca"))
}

func TestDiffRunes(t *testing.T) {
	got := Diff("naïve", "naï")
	want := []Class{Correct, Correct, Correct, Current, Pending}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, Cursor("naï"))
}

func TestDiffEmptyTarget(t *testing.T) {
	assert.Empty(t, Diff("", "abc"))
	assert.Equal(t, "abc", Overflow("", "abc"))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "current", Current.String())
	assert.Equal(t, "correct", Correct.String())
	assert.Equal(t, "incorrect", Incorrect.String())
}

func TestTrackerApply(t *testing.T) {
	tr := NewTracker("go")
	s := tr.Apply("g")
	assert.Equal(t, 1, s.Cursor)
	assert.Equal(t, 1, tr.Cursor())
	assert.Equal(t, []Class{Correct, Current}, s.Classes)

	s = tr.Apply("gxz")
	assert.Equal(t, 3, s.Cursor)
	assert.Equal(t, "z", s.Overflow)
	assert.Equal(t, 2, s.Errors())
	assert.Equal(t, "gxz", tr.Input())

	s = tr.Apply("")
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, 0, s.Errors())
}
