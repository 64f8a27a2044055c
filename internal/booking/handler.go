package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/clinic-scheduler/internal/session"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Handler provides the HTTP surface for booking conversations. Each
// request loads the session, runs one turn of the machine, and saves the
// session back, so turns for a session are serialized by the caller.
type Handler struct {
	machine  *Machine
	sessions session.Store
	logger   *logging.Logger
}

// NewHandler creates a new conversation HTTP handler.
func NewHandler(machine *Machine, sessions session.Store, logger *logging.Logger) *Handler {
	if machine == nil {
		panic("booking: machine cannot be nil")
	}
	if sessions == nil {
		panic("booking: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		machine:  machine,
		sessions: sessions,
		logger:   logger,
	}
}

// Routes returns a chi router with the conversation routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/message", h.Message)
	r.Post("/reset", h.Reset)
	return r
}

// MessageRequest is one user message. SessionID is optional; when empty a
// new session is started and its id returned.
type MessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// MessageResponse is the assistant's reply for one turn.
type MessageResponse struct {
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
	Reply     string `json:"reply"`
}

// Message processes one conversation turn.
// POST /conversations/message
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error": "text required"}`, http.StatusBadRequest)
		return
	}

	s, err := h.loadOrCreate(r, req.SessionID)
	if err != nil {
		h.logger.Error("failed to load session", "session_id", req.SessionID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	reply := h.machine.Advance(r.Context(), s, req.Text)

	if err := h.sessions.Save(r.Context(), s); err != nil {
		h.logger.Error("failed to save session", "session_id", s.ID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, MessageResponse{
		SessionID: s.ID,
		Stage:     string(s.Stage),
		Reply:     reply,
	})
}

// ResetRequest identifies the session to reset.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset returns a session to the greeting stage, keeping its history.
// POST /conversations/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, `{"error": "session_id required"}`, http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load session", "session_id", req.SessionID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	s.Reset()
	if err := h.sessions.Save(r.Context(), s); err != nil {
		h.logger.Error("failed to save session", "session_id", s.ID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("session reset", "session_id", s.ID)
	writeJSON(w, h.logger, MessageResponse{
		SessionID: s.ID,
		Stage:     string(s.Stage),
		Reply:     promptGreeting(),
	})
}

func (h *Handler) loadOrCreate(r *http.Request, id string) (*session.Session, error) {
	if id == "" {
		return session.New(uuid.NewString()), nil
	}
	s, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		return session.New(id), nil
	}
	return s, err
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
