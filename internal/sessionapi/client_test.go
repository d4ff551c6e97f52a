package sessionapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Zuo-Peng/typetrace/internal/keystroke"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi"
	"github.com/Zuo-Peng/typetrace/internal/sessionapi/sessiontest"
)

func newClient(srv *sessiontest.Server, opts ...sessionapi.Option) *sessionapi.Client {
	opts = append([]sessionapi.Option{
		sessionapi.WithHTTPClient(srv.Client()),
		sessionapi.WithLogger(zerolog.Nop()),
	}, opts...)
	return sessionapi.New(srv.URL+"/", opts...)
}

func TestClientFullSequence(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := sessiontest.New()
	defer srv.Close()
	c := newClient(srv)
	ctx := context.Background()

	id, err := c.Start(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	g, o := 'g', 'o'
	events := []keystroke.Event{
		{Key: "g", DownTS: 0.1, UpTS: 0.2, TargetChar: &g, PositionInText: 0},
		{Key: "o", DownTS: 0.3, UpTS: 0.35, TargetChar: &o, PositionInText: 1},
	}
	require.NoError(t, c.UploadKeystrokes(ctx, id, events))
	require.NoError(t, c.UploadInput(ctx, id, "go"))
	require.NoError(t, c.End(ctx, id))

	sum, err := c.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, sum.SessionID)
	assert.Equal(t, 2, sum.KeystrokeCount)
	assert.Equal(t, "go", sum.UserInput)
	assert.NotEmpty(t, sum.Raw)
	require.NotNil(t, sum.AccuracyPercentage)
	assert.InDelta(t, 100.0, *sum.AccuracyPercentage, 0.001)

	stored, ok := srv.Session(id)
	require.True(t, ok)
	assert.Len(t, stored.Keystrokes, 2)
	assert.Equal(t, "go", stored.Input)
	assert.True(t, stored.Ended)

	assert.Equal(t, []string{
		sessiontest.OpStart,
		sessiontest.OpUploadKeystrokes,
		sessiontest.OpUploadInput,
		sessiontest.OpEnd,
		sessiontest.OpSummary,
	}, srv.Calls())
}

func TestClientSendsHeaders(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := sessionapi.New(srv.URL, sessionapi.WithToken("secret"), sessionapi.WithLogger(zerolog.Nop()))
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Len(t, gotReqID, 36)
}

func TestClientUnauthorized(t *testing.T) {
	srv := sessiontest.New()
	defer srv.Close()
	srv.RequireToken("right")

	_, err := newClient(srv, sessionapi.WithToken("wrong")).Start(context.Background(), "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, sessionapi.ErrUnauthorized)

	var apiErr *sessionapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "start", apiErr.Operation)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authenticated", apiErr.Body)
}

func TestClientStatusMapping(t *testing.T) {
	srv := sessiontest.New()
	defer srv.Close()
	c := newClient(srv)
	ctx := context.Background()

	id, err := c.Start(ctx, "go")
	require.NoError(t, err)

	srv.FailNext(sessiontest.OpUploadKeystrokes, 1, http.StatusBadGateway)
	err = c.UploadKeystrokes(ctx, id, nil)
	assert.ErrorIs(t, err, sessionapi.ErrUpstreamError)
	assert.Contains(t, err.Error(), "injected upload_keystrokes failure")

	err = c.End(ctx, 999)
	assert.ErrorIs(t, err, sessionapi.ErrNotFound)

	_, err = c.Summary(ctx, id)
	assert.ErrorIs(t, err, sessionapi.ErrBadRequest)
}

func TestClientBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := sessionapi.New(srv.URL, sessionapi.WithLogger(zerolog.Nop())).Start(context.Background(), "go")
	assert.ErrorIs(t, err, sessionapi.ErrBadResponse)
}

func TestClientMissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"prompt":"go"}`))
	}))
	defer srv.Close()

	_, err := sessionapi.New(srv.URL, sessionapi.WithLogger(zerolog.Nop())).Start(context.Background(), "go")
	assert.ErrorIs(t, err, sessionapi.ErrBadResponse)
}

func TestClientTimeout(t *testing.T) {
	srv := sessiontest.New()
	defer srv.Close()
	srv.SetDelay(sessiontest.OpPing, time.Second)

	c := newClient(srv, sessionapi.WithTimeout(50*time.Millisecond))
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, sessionapi.ErrTimeout)
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := sessionapi.New(url, sessionapi.WithLogger(zerolog.Nop())).Ping(context.Background())
	assert.ErrorIs(t, err, sessionapi.ErrUnavailable)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &sessionapi.APIError{
		Sentinel:  sessionapi.ErrNotFound,
		Operation: "end",
		Status:    404,
		Body:      "Session not found",
	}
	assert.Equal(t, "end: session service: resource not found (HTTP 404): Session not found", err.Error())
}

func TestClientTimeoutKeepsCause(t *testing.T) {
	srv := sessiontest.New()
	defer srv.Close()
	srv.SetDelay(sessiontest.OpPing, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := newClient(srv).Ping(ctx)
	assert.ErrorIs(t, err, sessionapi.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var apiErr *sessionapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ping", apiErr.Operation)
}

func TestAPIErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &sessionapi.APIError{Sentinel: sessionapi.ErrUnavailable, Operation: "end", Err: cause}
	assert.ErrorIs(t, err, sessionapi.ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	bare := &sessionapi.APIError{Sentinel: sessionapi.ErrNotFound, Operation: "end"}
	assert.Equal(t, []error{sessionapi.ErrNotFound}, bare.Unwrap())
}
