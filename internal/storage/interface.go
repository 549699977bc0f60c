package storage

import (
	"context"

	"github.com/mcoot/minesweeper-go/internal/model"
)

// Storage defines the interface for host-side persistence: session
// metadata and completed-game summaries. Live grids never leave memory.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Summary operations
	SaveSummary(ctx context.Context, summary *model.GameSummary) error
	ListSummaries(ctx context.Context, sessionID model.SessionID) ([]*model.GameSummary, error)
	DeleteSummaries(ctx context.Context, sessionID model.SessionID) error
}
