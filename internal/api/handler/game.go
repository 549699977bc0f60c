package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/minesweeper-go/internal/api/apierr"
	"github.com/mcoot/minesweeper-go/internal/api/request"
	"github.com/mcoot/minesweeper-go/internal/api/response"
	"github.com/mcoot/minesweeper-go/internal/api/sse"
	"github.com/mcoot/minesweeper-go/internal/model"
	"github.com/mcoot/minesweeper-go/internal/services/session"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	sessions   session.ServiceInterface
	hubManager *sse.HubManager
}

// NewGameHandler creates a new game handler. hubManager may be nil, in
// which case the events endpoint reports an internal error.
func NewGameHandler(sessions session.ServiceInterface, hubManager *sse.HubManager) *GameHandler {
	return &GameHandler{
		sessions:   sessions,
		hubManager: hubManager,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), req.Rows, req.Cols, req.Mines)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(r.Context(), sess.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameState{
		Session: response.SessionFromModel(sess),
		Board:   snap,
	})
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.SessionList{Sessions: make([]response.Session, len(sessions))}
	for i, s := range sessions {
		resp.Sessions[i] = response.SessionFromModel(s)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	sess, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameState{
		Session: response.SessionFromModel(sess),
		Board:   snap,
	})
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	if _, err := h.sessions.GetSession(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if h.hubManager != nil {
		h.hubManager.RemoveHub(id)
	}

	response.NoContent(w)
}

// Reveal handles POST /api/v1/games/{id}/reveal
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.cellCommand(w, r, h.sessions.Reveal)
}

// Flag handles POST /api/v1/games/{id}/flag
func (h *GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.cellCommand(w, r, h.sessions.ToggleFlag)
}

// Chord handles POST /api/v1/games/{id}/chord
func (h *GameHandler) Chord(w http.ResponseWriter, r *http.Request) {
	h.cellCommand(w, r, h.sessions.RevealNearby)
}

// Reset handles POST /api/v1/games/{id}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	if err := h.sessions.ResetField(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.writeBoard(w, r, id)
}

// Summaries handles GET /api/v1/games/{id}/summaries
func (h *GameHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	summaries, err := h.sessions.ListSummaries(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.GameSummaryList{Summaries: make([]response.GameSummary, len(summaries))}
	for i, s := range summaries {
		resp.Summaries[i] = response.GameSummaryFromModel(s)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Events handles GET /api/v1/games/{id}/events
// Streams board changes over SSE until the client disconnects.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	if _, err := h.sessions.GetSession(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if h.hubManager == nil {
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	sse.ServeSSE(w, r, hub)
}

// cellCommand decodes a cell request, runs the command, and responds
// with the updated board.
func (h *GameHandler) cellCommand(
	w http.ResponseWriter,
	r *http.Request,
	cmd func(ctx context.Context, id model.SessionID, row, col int) error,
) {
	id := sessionID(r)

	var req request.CellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := cmd(r.Context(), id, req.Row, req.Col); err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.writeBoard(w, r, id)
}

func (h *GameHandler) writeBoard(w http.ResponseWriter, r *http.Request, id model.SessionID) {
	snap, err := h.sessions.Snapshot(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}
