package tui

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/Zuo-Peng/typetrace/internal/report"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

// copiedMsg is sent when the clipboard write finishes.
type copiedMsg struct {
	err error
}

// copySummaryCmd writes the summary JSON to the system clipboard.
func copySummaryCmd(sum *sessionapi.Summary) tea.Cmd {
	body := string(sum.JSON())
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(body)}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	return viewport.New(viewport.WithWidth(width), viewport.WithHeight(height))
}

func renderSummary(sum *sessionapi.Summary, width int) string {
	if sum == nil {
		return ""
	}
	return report.RenderSummary(sum, report.Options{Width: width})
}
