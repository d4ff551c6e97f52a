package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/progress"
	"github.com/Zuo-Peng/typetrace/internal/script"
	"github.com/Zuo-Peng/typetrace/internal/session"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

const (
	maxTextWidth    = 80
	noticeNoRelease = "terminal does not report key releases; dwell times will be zero"
)

// message types

type startedMsg struct {
	res session.StartResult
}

type finishedMsg struct {
	res session.FinishResult
}

// Options configures a practice run.
type Options struct {
	Service        session.Service
	Target         string
	PromptID       int64
	Timeout        time.Duration
	CorrectionKeys []string
	Record         bool
	Logger         *zerolog.Logger

	// Input and Output override the terminal, mainly for tests.
	Input  io.Reader
	Output io.Writer
}

// Result is what a practice run leaves behind.
type Result struct {
	Summary *sessionapi.Summary
	State   session.State
	Records []script.Record
}

// model

type model struct {
	ctx     context.Context
	ctrl    *session.Controller
	timeout time.Duration
	now     func() float64
	log     zerolog.Logger

	help    help.Model
	summary viewport.Model
	width   int
	height  int

	held     map[rune]string // key code -> label of the press still down
	releases bool            // terminal reports key releases
	err      error
	notice   string
	record   bool
	records  []script.Record
	quitting bool
}

func newModel(ctx context.Context, opts Options, logger zerolog.Logger, now func() float64) model {
	sopts := []session.Option{session.WithLogger(logger), session.WithClock(now)}
	if len(opts.CorrectionKeys) > 0 {
		sopts = append(sopts, session.WithCorrectionKeys(opts.CorrectionKeys...))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = sessionapi.DefaultTimeout
	}
	return model{
		ctx:     ctx,
		ctrl:    session.New(opts.Service, opts.Target, sopts...),
		timeout: timeout,
		now:     now,
		log:     logger,
		help:    help.New(),
		summary: newViewport(maxTextWidth, 10),
		held:    make(map[rune]string),
		record:  opts.Record,
	}
}

// Run starts the practice TUI and blocks until it exits.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Service == nil {
		return nil, errors.New("tui: no session service")
	}
	if strings.TrimSpace(opts.Target) == "" {
		return nil, errors.New("tui: empty target text")
	}
	logger := log.WithComponent("tui")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.PromptID > 0 {
		logger = logger.With().Int64(log.FieldPromptID, opts.PromptID).Logger()
	}

	start := time.Now()
	now := func() float64 { return time.Since(start).Seconds() }
	m := newModel(ctx, opts, logger, now)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(m, progOpts...)
	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("tui: %w", err)
	}

	fm, ok := finalModel.(model)
	if !ok {
		fm = m
	}
	fm.ctrl.Close()
	fm.log.Debug().Stringer("state", fm.ctrl.State()).Int(log.FieldKeystrokes, fm.ctrl.Recorded()).Msg("practice ended")
	return fm.result(), nil
}

func (m model) result() *Result {
	return &Result{
		Summary: m.ctrl.Summary(),
		State:   m.ctrl.State(),
		Records: m.records,
	}
}

// Init kicks off the session start.
func (m model) Init() tea.Cmd {
	return m.startCmd()
}

func (m model) startCmd() tea.Cmd {
	job := m.ctrl.BeginStart()
	if job == nil {
		return nil
	}
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return startedMsg{res: job.Run(ctx)}
	}
}

func (m *model) finishCmd(job *session.FinishJob) tea.Cmd {
	if job == nil {
		return nil
	}
	m.err = nil
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		// one deadline per finish call, four calls in sequence
		ctx, cancel := context.WithTimeout(ctx, 4*timeout)
		defer cancel()
		return finishedMsg{res: job.Run(ctx)}
	}
}

func (m *model) beginFinish() tea.Cmd {
	job, err := m.ctrl.BeginFinish()
	if err != nil {
		m.err = err
		return nil
	}
	return m.finishCmd(job)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		m.summary.SetWidth(m.textWidth())
		m.summary.SetHeight(m.summaryHeight())
		m.summary.SetContent(renderSummary(m.ctrl.Summary(), m.textWidth()))
		return m, nil

	case tea.KeyboardEnhancementsMsg:
		m.releases = msg.SupportsEventTypes()
		return m, nil

	case startedMsg:
		err := m.ctrl.ApplyStart(msg.res)
		if errors.Is(err, session.ErrStale) {
			return m, nil
		}
		m.err = err
		return m, nil

	case finishedMsg:
		sum, err := m.ctrl.ApplyFinish(msg.res)
		if errors.Is(err, session.ErrStale) {
			return m, nil
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.summary.SetContent(renderSummary(sum, m.textWidth()))
		m.summary.GotoTop()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "summary copied to clipboard"
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handlePress(msg)

	case tea.KeyReleaseMsg:
		m.handleRelease(msg)
		return m, nil
	}

	return m, nil
}

func (m model) handlePress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Finish):
		return m, m.beginFinish()

	case key.Matches(msg, keys.Retry):
		switch {
		case m.ctrl.State() == session.Idle && !m.ctrl.Starting():
			m.err = nil
			return m, m.startCmd()
		case m.ctrl.State() == session.Active && m.err != nil:
			return m, m.beginFinish()
		}
		return m, nil

	case key.Matches(msg, keys.Copy):
		if sum := m.ctrl.Summary(); sum != nil {
			return m, copySummaryCmd(sum)
		}
		return m, nil
	}

	if m.ctrl.State() == session.Completed {
		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)
		return m, cmd
	}

	label := msg.String()
	if m.record {
		m.records = append(m.records, script.Record{Type: script.TypePress, Key: label, At: m.now()})
	}
	if _, ok := m.ctrl.Press(label); !ok {
		return m, nil
	}
	m.held[msg.Code] = label

	input, changed := progress.Edit(m.ctrl.Input(), label)
	if !changed {
		return m, nil
	}
	up := m.ctrl.SetInput(input)
	if up.Finish != nil {
		return m, m.finishCmd(up.Finish)
	}
	return m, nil
}

// handleRelease maps the release back to the label of its press. Terminals
// send releases without text, so "A" comes back as "shift+a".
func (m *model) handleRelease(msg tea.KeyReleaseMsg) {
	m.releases = true
	label, ok := m.held[msg.Code]
	if ok {
		delete(m.held, msg.Code)
	} else {
		label = msg.String()
	}
	if m.record {
		m.records = append(m.records, script.Record{Type: script.TypeRelease, Key: label, At: m.now()})
	}
	m.ctrl.Release(label)
}

// View renders the full TUI.
func (m model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.KeyboardEnhancements.ReportEventTypes = true
	if m.quitting {
		return v
	}

	w := m.textWidth()
	snap := m.ctrl.Snapshot()

	title := styleTitle.Render("typetrace")
	if id := m.ctrl.ID(); id > 0 {
		title += styleStatusBar.Render(fmt.Sprintf("session %d", id))
	}

	targetPanel := styleActiveBorder.Width(w + 4).Render(renderOverlay(m.ctrl.Target(), snap))
	inputRow := styleInputPrompt.Render("> ") + snap.Input + styleCaret.Render(" ")

	rows := []string{title, targetPanel, inputRow, m.statusBar(snap)}
	if m.err != nil {
		rows = append(rows, styleError.Render(errorText(m.err)))
	}
	if notice := m.noticeText(); notice != "" {
		rows = append(rows, styleNotice.Render(notice))
	}
	if m.ctrl.State() == session.Completed {
		rows = append(rows, stylePanelBorder.Width(w+4).Render(m.summary.View()))
	}
	rows = append(rows, m.help.View(keys))

	v.SetContent(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return v
}

// renderOverlay colours every target character by its progress class and
// appends any input typed past the end.
func renderOverlay(target string, snap progress.Snapshot) string {
	var b strings.Builder
	runes := []rune(target)
	for i, c := range snap.Classes {
		ch := string(runes[i])
		switch c {
		case progress.Correct:
			b.WriteString(styleCorrect.Render(ch))
		case progress.Incorrect:
			b.WriteString(styleIncorrect.Render(ch))
		case progress.Current:
			b.WriteString(styleCurrent.Render(ch))
		default:
			b.WriteString(stylePending.Render(ch))
		}
	}
	if snap.Overflow != "" {
		b.WriteString(styleOverflow.Render(snap.Overflow))
	}
	return b.String()
}

func errorText(err error) string {
	var fe *session.FinishError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("finish failed at %s: %v (C-r to retry)", fe.Step, fe.Err)
	case errors.Is(err, session.ErrSessionNotStarted):
		return "session has not started yet"
	case errors.Is(err, session.ErrSessionCompleted):
		return "session already completed"
	}
	return err.Error() + " (C-r to retry)"
}

func (m model) noticeText() string {
	if m.notice != "" {
		return m.notice
	}
	if !m.releases && m.ctrl.State() == session.Active {
		return noticeNoRelease
	}
	return ""
}

// helper methods

func (m model) textWidth() int {
	if m.width <= 0 {
		return maxTextWidth
	}
	w := m.width - 6
	if w > maxTextWidth {
		w = maxTextWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) summaryHeight() int {
	if m.height <= 0 {
		return 10
	}
	// title, target panel, input, status, help, borders
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar(snap progress.Snapshot) string {
	state := m.ctrl.State().String()
	if m.ctrl.Starting() {
		state = "starting"
	}
	var parts []string
	parts = append(parts, state)
	parts = append(parts, fmt.Sprintf("%d/%d", snap.Cursor, len([]rune(m.ctrl.Target()))))
	parts = append(parts, fmt.Sprintf("%d keystrokes", m.ctrl.Recorded()))
	parts = append(parts, fmt.Sprintf("%d errors", snap.Errors()))
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
