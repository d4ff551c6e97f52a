package tui

import "charm.land/lipgloss/v2"

var (
	// Colors
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorGood    = lipgloss.Color("10")  // bright green
	colorBad     = lipgloss.Color("9")   // bright red
	colorDim     = lipgloss.Color("240") // gray
	colorWarn    = lipgloss.Color("11")  // bright yellow
	colorBorder  = lipgloss.Color("238") // dark gray

	// Target overlay
	styleCorrect = lipgloss.NewStyle().
			Foreground(colorGood)

	styleIncorrect = lipgloss.NewStyle().
			Foreground(colorBad).
			Underline(true)

	styleCurrent = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	stylePending = lipgloss.NewStyle().
			Foreground(colorDim)

	styleOverflow = lipgloss.NewStyle().
			Foreground(colorBad).
			Reverse(true)

	// Input line
	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleCaret = lipgloss.NewStyle().
			Reverse(true)

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorBad).
			Bold(true).
			Padding(0, 1)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorWarn).
			Padding(0, 1)

	// Panel titles
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)
