package report

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

func TestWrapLineSkipsANSI(t *testing.T) {
	line := "ab\033[1;31mcd\033[0mef"
	got := wrapLine(line, 3)
	assert.Equal(t, []string{"ab\033[1;31mc", "d\033[0mef"}, got)
	assert.Equal(t, []string{""}, wrapLine("", 3))
	assert.Equal(t, []string{"abc"}, wrapLine("abc", 0))
}

func TestWrapLineWide(t *testing.T) {
	for _, l := range wrapLine("狐狸跳过了", 4) {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 4)
	}
}

func TestMarkErrors(t *testing.T) {
	p := newPalette(false)
	assert.Equal(t, "a"+colorBoldRed+"x"+colorReset+"c", markErrors("axc", []int{1}, p))
	assert.Equal(t, "axc", markErrors("axc", []int{1}, newPalette(true)))
}

func TestRenderSummary(t *testing.T) {
	acc := 50.0
	sum := &sessionapi.Summary{
		SessionID:          7,
		DurationSecs:       1.5,
		KeystrokeCount:     3,
		WPM:                16,
		AccuracyPercentage: &acc,
		ErrorCount:         1,
		CorrectionCount:    1,
		UserInput:          "gx",
		TargetText:         "go",
		ErrorDetails: &sessionapi.ErrorAnalysis{
			TotalErrors:           1,
			Substitutions:         []sessionapi.ErrorDetail{{Position: 1, Expected: "o", Actual: "x"}},
			ErrorPositions:        []int{1},
			ProblematicCharacters: map[string]int{"o": 1, " ": 1},
		},
	}

	out := RenderSummary(sum, Options{NoColor: true})
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "--- session 7 ---")
	assert.Contains(t, out, "16.0 wpm")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "TYPED  > gx")
	assert.Contains(t, out, "substitutions: 1")
	assert.Contains(t, out, "pos 1    expected o got x")
	assert.Contains(t, out, "trouble keys: ␣×1 o×1")

	colored := RenderSummary(sum, Options{Width: 20})
	assert.Contains(t, colored, colorBoldRed+"x"+colorReset)
	for _, l := range strings.Split(strings.TrimSuffix(colored, "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(stripANSI(l)), 20)
	}
}

func TestRenderSummaryMinimal(t *testing.T) {
	out := RenderSummary(&sessionapi.Summary{SessionID: 1}, Options{NoColor: true})
	assert.NotContains(t, out, "accuracy")
	assert.NotContains(t, out, "TARGET")
	assert.NotContains(t, out, "error breakdown")
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
