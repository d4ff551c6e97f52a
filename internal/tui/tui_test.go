package tui

import (
	"context"
	"net/http"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/typetrace/internal/progress"
	"github.com/Zuo-Peng/typetrace/internal/script"
	"github.com/Zuo-Peng/typetrace/internal/session"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi/sessiontest"
)

func stepClock() func() float64 {
	var t float64
	return func() float64 {
		t += 0.05
		return t
	}
}

func newTestModel(t *testing.T, target string) (model, *sessiontest.Server) {
	t.Helper()
	srv := sessiontest.New()
	t.Cleanup(srv.Close)
	client := sessionapi.New(srv.URL,
		sessionapi.WithHTTPClient(srv.Client()),
		sessionapi.WithLogger(zerolog.Nop()),
	)
	m := newModel(context.Background(), Options{Service: client, Target: target, Record: true}, zerolog.Nop(), stepClock())
	return m, srv
}

func send(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// drain runs cmd and feeds its message back into the model.
func drain(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	return m
}

func started(t *testing.T, m model) model {
	t.Helper()
	m = drain(t, m, m.Init())
	require.Equal(t, session.Active, m.ctrl.State())
	return m
}

func press(code rune, text string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: text}
}

func typeText(t *testing.T, m model, s string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, r := range s {
		m, cmd = send(t, m, press(r, string(r)))
		m, _ = send(t, m, tea.KeyReleaseMsg{Code: r})
	}
	return m, cmd
}

func TestPracticeAutoFinish(t *testing.T) {
	m, srv := newTestModel(t, "go")
	m = started(t, m)

	m, cmd := typeText(t, m, "go")
	require.Equal(t, session.Finishing, m.ctrl.State())
	m = drain(t, m, cmd)

	assert.Equal(t, session.Completed, m.ctrl.State())
	require.NotNil(t, m.ctrl.Summary())
	assert.Equal(t, "go", m.ctrl.Summary().UserInput)
	assert.Equal(t, []string{
		sessiontest.OpStart, sessiontest.OpUploadKeystrokes, sessiontest.OpUploadInput,
		sessiontest.OpEnd, sessiontest.OpSummary,
	}, srv.Calls())

	content := m.View().Content
	assert.Contains(t, content, "completed")
	assert.Contains(t, content, "wpm")

	res := m.result()
	assert.Equal(t, session.Completed, res.State)
	require.Len(t, res.Records, 4)
	assert.Equal(t, script.Record{Type: script.TypeRelease, Key: "o", At: res.Records[3].At}, res.Records[3])
}

func TestPressesBeforeStartIgnored(t *testing.T) {
	m, _ := newTestModel(t, "go")
	cmd := m.Init()

	m, _ = send(t, m, press('g', "g"))
	assert.Equal(t, "", m.ctrl.Input())
	assert.Equal(t, 0, m.ctrl.Recorded())
	assert.Contains(t, m.View().Content, "starting")

	m = drain(t, m, cmd)
	assert.Equal(t, session.Active, m.ctrl.State())
}

func TestReleaseMapsToPressLabel(t *testing.T) {
	m, _ := newTestModel(t, "Go")
	m = started(t, m)

	m, _ = send(t, m, tea.KeyPressMsg{Code: 'g', Text: "G", Mod: tea.ModShift})
	m, _ = send(t, m, tea.KeyReleaseMsg{Code: 'g', Mod: tea.ModShift})

	events := m.ctrl.Keystrokes()
	require.Len(t, events, 1)
	assert.Equal(t, "G", events[0].Key)
	assert.True(t, events[0].Closed())
	assert.Equal(t, "G", m.ctrl.Input())
	assert.Equal(t, "G", m.records[1].Key)
}

func TestBackspaceAndSpace(t *testing.T) {
	m, _ := newTestModel(t, "a b")
	m = started(t, m)

	m, _ = typeText(t, m, "ax")
	m, _ = send(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	m, _ = send(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.Equal(t, "a ", m.ctrl.Input())

	snap := m.ctrl.Snapshot()
	assert.Equal(t, []progress.Class{progress.Correct, progress.Correct, progress.Current}, snap.Classes)
	events := m.ctrl.Keystrokes()
	require.Len(t, events, 4)
	assert.Equal(t, " ", events[3].Key)
}

func TestFinishFailureThenRetry(t *testing.T) {
	m, srv := newTestModel(t, "go")
	m = started(t, m)
	srv.FailNext(sessiontest.OpEnd, 1, http.StatusBadGateway)

	m, cmd := typeText(t, m, "go")
	m = drain(t, m, cmd)
	assert.Equal(t, session.Active, m.ctrl.State())
	require.Error(t, m.err)
	assert.Contains(t, m.View().Content, "finish failed at end")

	// completion fires once; retyping the last rune does not refire it
	m, cmd = send(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.Nil(t, cmd)
	m, cmd = send(t, m, press('o', "o"))
	assert.Nil(t, cmd)
	assert.Equal(t, session.Active, m.ctrl.State())

	m, cmd = send(t, m, tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	m = drain(t, m, cmd)
	assert.Equal(t, session.Completed, m.ctrl.State())
	assert.NoError(t, m.err)
}

func TestManualFinish(t *testing.T) {
	m, _ := newTestModel(t, "hello")
	m = started(t, m)
	m, _ = typeText(t, m, "he")

	m, cmd := send(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.Equal(t, session.Finishing, m.ctrl.State())

	// a second request while in flight is a no-op
	m, second := send(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.Nil(t, second)

	m = drain(t, m, cmd)
	assert.Equal(t, session.Completed, m.ctrl.State())
	assert.Equal(t, "he", m.ctrl.Summary().UserInput)
}

func TestFinishBeforeStartShowsError(t *testing.T) {
	m, _ := newTestModel(t, "go")
	m, cmd := send(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, session.ErrSessionNotStarted)
	assert.Contains(t, m.View().Content, "session has not started yet")
}

func TestStartFailureThenRetry(t *testing.T) {
	m, srv := newTestModel(t, "go")
	srv.FailNext(sessiontest.OpStart, 1, http.StatusServiceUnavailable)

	m = drain(t, m, m.Init())
	assert.Equal(t, session.Idle, m.ctrl.State())
	assert.ErrorIs(t, m.err, sessionapi.ErrUpstreamError)

	m, cmd := send(t, m, tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	m = drain(t, m, cmd)
	assert.Equal(t, session.Active, m.ctrl.State())
	assert.NoError(t, m.err)
}

func TestQuitDropsLateResults(t *testing.T) {
	m, _ := newTestModel(t, "go")
	startCmd := m.Init()

	m, cmd := send(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View().Content)

	m = drain(t, m, startCmd)
	assert.Equal(t, session.Idle, m.ctrl.State())
	assert.NoError(t, m.err)
}

func TestReleaseNotice(t *testing.T) {
	m, _ := newTestModel(t, "go")
	m = started(t, m)
	assert.Contains(t, m.View().Content, noticeNoRelease)

	m, _ = typeText(t, m, "g")
	assert.NotContains(t, m.View().Content, noticeNoRelease)
}

func TestViewRequestsKeyReleases(t *testing.T) {
	m, _ := newTestModel(t, "go")
	v := m.View()
	assert.True(t, v.KeyboardEnhancements.ReportEventTypes)
	assert.True(t, v.AltScreen)
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t, "go")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	assert.Equal(t, 44, m.textWidth())
	assert.Equal(t, 18, m.summaryHeight())

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 10})
	assert.Equal(t, maxTextWidth, m.textWidth())
	assert.Equal(t, 5, m.summaryHeight())
}
