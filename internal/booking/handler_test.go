package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-scheduler/internal/session"
)

func newTestHandler(t *testing.T) (*Handler, *session.MemoryStore) {
	t.Helper()
	env := newTestEnv(t)
	sessions := session.NewMemoryStore()
	return NewHandler(env.machine, sessions, nil), sessions
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerMessageNewSession(t *testing.T) {
	h, sessions := newTestHandler(t)
	router := h.Routes()

	rr := postJSON(t, router, "/message", MessageRequest{Text: "Hi, I'm John Doe, born 1990-01-01, Dr. Smith"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, string(session.StageScheduling), resp.Stage)
	assert.Contains(t, resp.Reply, "Welcome back")

	stored, err := sessions.Get(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StageScheduling, stored.Stage)
}

func TestHandlerMessageContinuesSession(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Routes()

	rr := postJSON(t, router, "/message", MessageRequest{Text: "Hi, I'm John Doe, born 1990-01-01, Dr. Smith"})
	var first MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))

	rr = postJSON(t, router, "/message", MessageRequest{SessionID: first.SessionID, Text: "2025-06-09"})
	require.Equal(t, http.StatusOK, rr.Code)

	var second MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, string(session.StageSlotSelection), second.Stage)
	assert.Contains(t, second.Reply, "1. ")
}

func TestHandlerMessageValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Routes()

	rr := postJSON(t, router, "/message", MessageRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerReset(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Routes()

	rr := postJSON(t, router, "/message", MessageRequest{Text: "Hi, I'm John Doe, born 1990-01-01, Dr. Smith"})
	var first MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Equal(t, string(session.StageScheduling), first.Stage)

	rr = postJSON(t, router, "/reset", ResetRequest{SessionID: first.SessionID})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(session.StageGreeting), resp.Stage)
	assert.NotEmpty(t, resp.Reply)
}

func TestHandlerResetUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Routes()

	rr := postJSON(t, router, "/reset", ResetRequest{SessionID: "missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
