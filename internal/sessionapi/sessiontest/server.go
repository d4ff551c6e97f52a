// Package sessiontest provides an in-process fake of the typing session
// service for tests.
package sessiontest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zuo-Peng/typetrace/internal/keystroke"
	"github.com/Zuo-Peng/typetrace/internal/progress"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
)

// Operation names recorded by the server, matching the client's.
const (
	OpStart            = "start"
	OpUploadKeystrokes = "upload_keystrokes"
	OpUploadInput      = "upload_input"
	OpEnd              = "end"
	OpSummary          = "summary"
	OpPing             = "ping"
)

// Session is the server-side record of one typing session.
type Session struct {
	ID         int64
	Prompt     string
	Keystrokes []keystroke.Event
	Input      string
	InputSet   bool
	Ended      bool
}

type failure struct {
	remaining int
	status    int
}

// Server is a configurable fake session service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	nextID   int64
	sessions map[int64]*Session
	calls    []string
	failures map[string]*failure
	delay    map[string]time.Duration
}

// New starts a fake service. Close it with Server.Close.
func New() *Server {
	s := &Server{
		nextID:   1,
		sessions: make(map[int64]*Session),
		failures: make(map[string]*failure),
		delay:    make(map[string]time.Duration),
	}

	r := chi.NewRouter()
	r.Get("/health", s.handle(OpPing, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	r.Route("/typing/sessions", func(r chi.Router) {
		r.Post("/start", s.handle(OpStart, s.handleStart))
		r.Post("/{id}/keystrokes", s.handle(OpUploadKeystrokes, s.handleKeystrokes))
		r.Post("/{id}/input", s.handle(OpUploadInput, s.handleInput))
		r.Post("/{id}/end", s.handle(OpEnd, s.handleEnd))
		r.Get("/{id}/summary", s.handle(OpSummary, s.handleSummary))
	})

	s.Server = httptest.NewServer(r)
	return s
}

// RequireToken makes every request demand the given bearer token.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// FailNext makes the next n calls of op answer with status.
func (s *Server) FailNext(op string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{remaining: n, status: status}
}

// SetDelay holds every call of op for d before answering.
func (s *Server) SetDelay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay[op] = d
}

// Calls returns the operations received so far, in arrival order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Session returns a copy of the stored session.
func (s *Server) Session(id int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	out := *sess
	out.Keystrokes = append([]keystroke.Event(nil), sess.Keystrokes...)
	return out, true
}

func (s *Server) handle(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, op)
		token := s.token
		delay := s.delay[op]
		var status int
		if f := s.failures[op]; f != nil && f.remaining > 0 {
			f.remaining--
			status = f.status
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": "injected " + op + " failure"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Prompt) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "prompt is required"})
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.sessions[id] = &Session{ID: id, Prompt: body.Prompt}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sessionapi.StartResponse{
		SessionID: id,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Prompt:    body.Prompt,
	})
}

func (s *Server) handleKeystrokes(w http.ResponseWriter, r *http.Request) {
	var events []keystroke.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.withSession(w, r, func(sess *Session) {
		sess.Keystrokes = events
		writeJSON(w, http.StatusOK, map[string]int{"count": len(events)})
	})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserInput *string `json:"user_input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserInput == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "user_input is required"})
		return
	}
	s.withSession(w, r, func(sess *Session) {
		sess.Input = *body.UserInput
		sess.InputSet = true
		writeJSON(w, http.StatusOK, map[string]string{"message": "input stored"})
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *Session) {
		sess.Ended = true
		writeJSON(w, http.StatusOK, map[string]string{"ended_at": time.Now().UTC().Format(time.RFC3339)})
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *Session) {
		if !sess.Ended {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "session has not ended"})
			return
		}
		writeJSON(w, http.StatusOK, Score(sess))
	})
}

func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*Session)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid session id"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found"})
		return
	}
	fn(sess)
}

// Score derives a summary from a stored session. The arithmetic is a rough
// stand-in for the real scorer.
func Score(sess *Session) sessionapi.Summary {
	sum := sessionapi.Summary{
		SessionID:      sess.ID,
		KeystrokeCount: len(sess.Keystrokes),
		UserInput:      sess.Input,
		TargetText:     sess.Prompt,
	}

	var dwell, flight float64
	var closed, gaps int
	for i, ev := range sess.Keystrokes {
		if ev.Classification == keystroke.Correction {
			sum.CorrectionCount++
		}
		if ev.Closed() {
			dwell += ev.Dwell()
			closed++
		}
		if i > 0 {
			flight += ev.DownTS - sess.Keystrokes[i-1].DownTS
			gaps++
		}
	}
	if n := len(sess.Keystrokes); n > 0 {
		last := sess.Keystrokes[n-1]
		end := last.DownTS
		if last.UpTS > end {
			end = last.UpTS
		}
		sum.DurationSecs = end - sess.Keystrokes[0].DownTS
	}
	if closed > 0 {
		sum.AvgDwellMs = dwell / float64(closed) * 1000
	}
	if gaps > 0 {
		sum.AvgFlightMs = flight / float64(gaps) * 1000
	}
	if sum.DurationSecs > 0 {
		sum.WPM = float64(len([]rune(sess.Input))) / 5 / (sum.DurationSecs / 60)
	}

	analysis := &sessionapi.ErrorAnalysis{ProblematicCharacters: map[string]int{}}
	target := []rune(sess.Prompt)
	for i, c := range progress.Settled(progress.Diff(sess.Prompt, sess.Input)) {
		if c != progress.Incorrect {
			continue
		}
		actual := []rune(sess.Input)[i]
		analysis.Substitutions = append(analysis.Substitutions, sessionapi.ErrorDetail{
			Position: i, Expected: string(target[i]), Actual: string(actual),
		})
		analysis.ErrorPositions = append(analysis.ErrorPositions, i)
		analysis.ProblematicCharacters[string(target[i])]++
	}
	input := []rune(sess.Input)
	for i := len(target); i < len(input); i++ {
		analysis.Insertions = append(analysis.Insertions, sessionapi.ErrorDetail{Position: i, Actual: string(input[i])})
	}
	for i := len(input); i < len(target); i++ {
		analysis.Deletions = append(analysis.Deletions, sessionapi.ErrorDetail{Position: i, Expected: string(target[i])})
	}
	analysis.TotalErrors = len(analysis.Substitutions) + len(analysis.Insertions) + len(analysis.Deletions)
	if len(target) > 0 {
		analysis.ErrorRate = float64(analysis.TotalErrors) / float64(len(target))
		acc := 100 * float64(len(target)-min(analysis.TotalErrors, len(target))) / float64(len(target))
		sum.AccuracyPercentage = &acc
	}
	sum.ErrorCount = analysis.TotalErrors
	sum.ErrorDetails = analysis
	return sum
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
