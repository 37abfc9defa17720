package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/jarvis/internal/auth"
	"github.com/normanking/jarvis/internal/corpus"
	"github.com/normanking/jarvis/internal/dispatch"
	"github.com/normanking/jarvis/internal/intent"
	"github.com/normanking/jarvis/internal/memory"
)

func newTestServer(t *testing.T) (*Server, *auth.Service) {
	t.Helper()

	log := zerolog.Nop()
	tokens := auth.NewService("test-secret")
	dispatcher := dispatch.New(dispatch.Config{
		Matcher: intent.NewMatcher(corpus.Default()),
		Learner: memory.NewLearner(memory.NewInMemoryStore(), log),
		Logger:  log,
	})
	return New(dispatcher, tokens, log), tokens
}

func postCommand(t *testing.T, srv *Server, token string, body CommandRequest) (*httptest.ResponseRecorder, CommandResponse) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp CommandResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCommandGuestWake(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := postCommand(t, srv, "", CommandRequest{Text: "hey jarvis"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Yes. How can I help you?", resp.Reply)
	assert.Equal(t, "wake", resp.Intent)
	assert.NotEmpty(t, resp.SessionID, "server assigns a session id")
	assert.Empty(t, resp.User)
}

func TestCommandGuestSystemIntentBlocked(t *testing.T) {
	srv, _ := newTestServer(t)

	_, resp := postCommand(t, srv, "", CommandRequest{Text: "open chrome"})

	assert.Equal(t, "Guest access limited. Please sign in.", resp.Reply)
}

func TestCommandAuthenticatedUser(t *testing.T) {
	srv, tokens := newTestServer(t)

	token, err := tokens.Issue("u1", "Asha")
	require.NoError(t, err)

	_, resp := postCommand(t, srv, token, CommandRequest{Text: "my name is Asha"})

	assert.Equal(t, "Nice to meet you, Asha. I will remember that.", resp.Reply)
	assert.Equal(t, "Asha", resp.User)
}

func TestCommandKeepsClientSessionID(t *testing.T) {
	srv, _ := newTestServer(t)

	_, resp := postCommand(t, srv, "", CommandRequest{Text: "hello", SessionID: "abc-123"})
	assert.Equal(t, "abc-123", resp.SessionID)
}

func TestCommandInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandBadTokenRunsAsGuest(t *testing.T) {
	srv, _ := newTestServer(t)

	_, resp := postCommand(t, srv, "garbage.token", CommandRequest{Text: "what is my name"})

	assert.Equal(t, "You are currently using guest access.", resp.Reply)
}
