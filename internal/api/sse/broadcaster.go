package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/minesweeper-go/internal/minefield"
	"github.com/mcoot/minesweeper-go/internal/model"
)

// Event names pushed to SSE clients
const (
	EventCell  = "cell"
	EventBoard = "board"
	EventPhase = "phase"
)

// Broadcaster turns minefield notifications into SSE events on the
// session's hub.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse_broadcaster")),
	}
}

type phasePayload struct {
	Phase model.Phase `json:"phase"`
}

// ListenerFor returns a field listener that pushes this session's
// notifications to its SSE hub. Matches session.ListenerFactory.
func (b *Broadcaster) ListenerFor(id model.SessionID, field *minefield.Minefield) minefield.Listener {
	return minefield.ListenerFuncs{
		OnCellChanged: func(cell model.Cell) {
			b.send(id, EventCell, cell)
		},
		OnBoardChanged: func() {
			b.send(id, EventBoard, field.Snapshot())
		},
		OnPhaseChanged: func(phase model.Phase) {
			b.send(id, EventPhase, phasePayload{Phase: phase})
		},
	}
}

func (b *Broadcaster) send(id model.SessionID, eventName string, payload any) {
	hub := b.hubManager.GetHub(id)
	if hub == nil {
		// No clients have ever watched this session
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("failed to marshal sse payload",
			slog.String("session_id", string(id)),
			slog.String("event", eventName),
			slog.String("error", err.Error()),
		)
		return
	}

	hub.BroadcastEvent(eventName, string(data))
}
