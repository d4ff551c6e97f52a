package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

const (
	colorReset   = "\033[0m"
	colorHeader  = "\033[1;34m" // bold blue
	colorGood    = "\033[1;32m" // bold green
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m"
)

// maxListed caps how many entries of each error kind are printed.
const maxListed = 10

type Options struct {
	Width   int  // wrap width (0 = no wrap)
	NoColor bool // strip ANSI sequences
}

type palette struct {
	reset, header, good, dim, bad string
}

func newPalette(noColor bool) palette {
	if noColor {
		return palette{}
	}
	return palette{colorReset, colorHeader, colorGood, colorDim, colorBoldRed}
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// markErrors highlights the runes of text at the given positions.
func markErrors(text string, positions []int, p palette) string {
	if p.bad == "" || len(positions) == 0 {
		return text
	}
	bad := make(map[int]bool, len(positions))
	for _, pos := range positions {
		bad[pos] = true
	}
	var b strings.Builder
	for i, r := range []rune(text) {
		if bad[i] {
			b.WriteString(p.bad)
			b.WriteRune(r)
			b.WriteString(p.reset)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func visible(s string) string {
	switch s {
	case "":
		return "∅"
	case " ":
		return "␣"
	}
	return s
}

// RenderSummary formats a session summary for the terminal.
func RenderSummary(sum *sessionapi.Summary, opts Options) string {
	p := newPalette(opts.NoColor)
	var b strings.Builder
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}
	metric := func(label, value string) {
		writeLine(fmt.Sprintf("  %s%-14s%s %s", p.dim, label, p.reset, value))
	}

	writeLine(fmt.Sprintf("%s--- session %d ---%s", p.header, sum.SessionID, p.reset))
	metric("speed", fmt.Sprintf("%s%.1f wpm%s", p.good, sum.WPM, p.reset))
	if sum.AccuracyPercentage != nil {
		metric("accuracy", fmt.Sprintf("%.1f%%", *sum.AccuracyPercentage))
	}
	metric("duration", fmt.Sprintf("%.2fs", sum.DurationSecs))
	metric("keystrokes", fmt.Sprintf("%d", sum.KeystrokeCount))
	metric("avg dwell", fmt.Sprintf("%.0fms", sum.AvgDwellMs))
	metric("avg flight", fmt.Sprintf("%.0fms", sum.AvgFlightMs))
	metric("errors", fmt.Sprintf("%d", sum.ErrorCount))
	metric("corrections", fmt.Sprintf("%d", sum.CorrectionCount))

	if sum.TargetText != "" || sum.UserInput != "" {
		var positions []int
		if sum.ErrorDetails != nil {
			positions = sum.ErrorDetails.ErrorPositions
		}
		writeLine("")
		writeLine(fmt.Sprintf("%sTARGET >%s %s", p.header, p.reset, sum.TargetText))
		writeLine(fmt.Sprintf("%sTYPED  >%s %s", p.header, p.reset, markErrors(sum.UserInput, positions, p)))
	}

	if d := sum.ErrorDetails; d != nil && d.TotalErrors > 0 {
		writeLine("")
		writeLine(fmt.Sprintf("%serror breakdown%s (%d total)", p.header, p.reset, d.TotalErrors))
		listErrors := func(kind string, errs []sessionapi.ErrorDetail) {
			if len(errs) == 0 {
				return
			}
			writeLine(fmt.Sprintf("  %s: %d", kind, len(errs)))
			for i, e := range errs {
				if i == maxListed {
					writeLine(fmt.Sprintf("    %s... %d more%s", p.dim, len(errs)-maxListed, p.reset))
					break
				}
				writeLine(fmt.Sprintf("    pos %-4d expected %s%s%s got %s%s%s",
					e.Position, p.good, visible(e.Expected), p.reset, p.bad, visible(e.Actual), p.reset))
			}
		}
		listErrors("substitutions", d.Substitutions)
		listErrors("insertions", d.Insertions)
		listErrors("deletions", d.Deletions)

		if len(d.ProblematicCharacters) > 0 {
			chars := make([]string, 0, len(d.ProblematicCharacters))
			for c := range d.ProblematicCharacters {
				chars = append(chars, c)
			}
			sort.Slice(chars, func(i, j int) bool {
				ci, cj := d.ProblematicCharacters[chars[i]], d.ProblematicCharacters[chars[j]]
				if ci != cj {
					return ci > cj
				}
				return chars[i] < chars[j]
			})
			parts := make([]string, 0, len(chars))
			for _, c := range chars {
				parts = append(parts, fmt.Sprintf("%s×%d", visible(c), d.ProblematicCharacters[c]))
			}
			writeLine("  trouble keys: " + strings.Join(parts, " "))
		}
	}

	return b.String()
}
