package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// Session is the host-side record of a live game. The grid itself lives
// in memory with the engine; this is the bookkeeping around it.
type Session struct {
	ID        SessionID `json:"id"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Mines     int       `json:"mines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameSummary is a lightweight record of a completed game within a session
type GameSummary struct {
	SessionID   SessionID     `json:"session_id"`
	Outcome     Phase         `json:"outcome"` // PhaseWon or PhaseLost
	Revealed    int           `json:"revealed"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}
