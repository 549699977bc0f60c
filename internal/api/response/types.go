package response

import (
	"time"

	"github.com/mcoot/minesweeper-go/internal/model"
)

// Session represents a game session in API responses
type Session struct {
	ID        string    `json:"id"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Mines     int       `json:"mines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:        string(s.ID),
		Rows:      s.Rows,
		Cols:      s.Cols,
		Mines:     s.Mines,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// GameState is a session plus its current board
type GameState struct {
	Session Session             `json:"session"`
	Board   model.FieldSnapshot `json:"board"`
}

// GameSummary represents a completed game in API responses
type GameSummary struct {
	Outcome     string    `json:"outcome"`
	Revealed    int       `json:"revealed"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(g *model.GameSummary) GameSummary {
	return GameSummary{
		Outcome:     string(g.Outcome),
		Revealed:    g.Revealed,
		DurationMS:  g.Duration.Milliseconds(),
		CompletedAt: g.CompletedAt,
	}
}

// GameSummaryList is the response for listing a session's summaries
type GameSummaryList struct {
	Summaries []GameSummary `json:"summaries"`
}
