package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/minesweeper-go/internal/dependencies/clock"
	"github.com/mcoot/minesweeper-go/internal/dependencies/random"
	"github.com/mcoot/minesweeper-go/internal/minefield"
	"github.com/mcoot/minesweeper-go/internal/model"
	"github.com/mcoot/minesweeper-go/internal/storage"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ListenerFactory builds a field listener for a newly created session.
// Used to attach push transports (e.g. SSE) without the service knowing
// about them.
type ListenerFactory func(id model.SessionID, field *minefield.Minefield) minefield.Listener

// liveGame pairs a session's engine instance with per-game timing
type liveGame struct {
	field     *minefield.Minefield
	startedAt time.Time // zero until the first reveal of the current game
}

// Service manages live minesweeper games keyed by session ID. The engine
// is single-threaded by contract; the service's mutex provides the
// external serialization it requires. Session metadata and completed-game
// summaries go through storage; the grids themselves stay in memory.
type Service struct {
	storage         storage.Storage
	clock           clock.Clock
	random          random.Random
	listenerFactory ListenerFactory
	logger          *slog.Logger

	mu   sync.Mutex
	live map[model.SessionID]*liveGame
}

// New creates a new session service. listenerFactory may be nil.
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	listenerFactory ListenerFactory,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:         storage,
		clock:           clock,
		random:          random,
		listenerFactory: listenerFactory,
		logger:          logger.With(slog.String("component", "session")),
		live:            make(map[model.SessionID]*liveGame),
	}
}

// CreateSession creates a new session with a fresh minefield
func (s *Service) CreateSession(ctx context.Context, rows, cols, mines int) (*model.Session, error) {
	id := model.SessionID(s.random.String(12, idAlphabet))

	field, err := minefield.New(rows, cols, mines, s.random, s.logger)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &model.Session{
		ID:        id,
		Rows:      rows,
		Cols:      cols,
		Mines:     mines,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		s.logger.Error("failed to save session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.mu.Lock()
	game := &liveGame{field: field}
	s.live[id] = game
	s.mu.Unlock()

	field.Subscribe(s.summaryListener(id, game))
	if s.listenerFactory != nil {
		field.Subscribe(s.listenerFactory(id, field))
	}

	s.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.Int("mines", mines),
	)

	return session, nil
}

// summaryListener records a GameSummary whenever a game in this session
// reaches a terminal phase, and tracks when each game started.
func (s *Service) summaryListener(id model.SessionID, game *liveGame) minefield.Listener {
	return minefield.ListenerFuncs{
		OnPhaseChanged: func(phase model.Phase) {
			switch {
			case phase == model.PhaseInProgress:
				game.startedAt = s.clock.Now()
			case phase.Terminal():
				now := s.clock.Now()
				summary := &model.GameSummary{
					SessionID:   id,
					Outcome:     phase,
					Revealed:    revealedCount(game.field.Snapshot()),
					Duration:    now.Sub(game.startedAt),
					CompletedAt: now,
				}
				if err := s.storage.SaveSummary(context.Background(), summary); err != nil {
					s.logger.Error("failed to save game summary",
						slog.String("session_id", string(id)),
						slog.String("error", err.Error()),
					)
				}
				s.logger.Info("game completed",
					slog.String("session_id", string(id)),
					slog.String("outcome", string(phase)),
					slog.Int("revealed", summary.Revealed),
					slog.Duration("duration", summary.Duration),
				)
			}
		},
	}
}

func revealedCount(snap model.FieldSnapshot) int {
	count := 0
	for _, row := range snap.Cells {
		for _, cell := range row {
			if cell.State == model.CellRevealed {
				count++
			}
		}
	}
	return count
}

// GetSession retrieves session metadata by ID
func (s *Service) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return s.storage.GetSession(ctx, id)
}

// ListSessions returns all known sessions
func (s *Service) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.storage.ListSessions(ctx)
}

// DeleteSession removes a session, its live game, and its summaries
func (s *Service) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()

	if err := s.storage.DeleteSummaries(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteSession(ctx, id); err != nil {
		return err
	}

	s.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}

// Snapshot returns a read-only view of a session's board
func (s *Service) Snapshot(ctx context.Context, id model.SessionID) (model.FieldSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.live[id]
	if !ok {
		return model.FieldSnapshot{}, model.ErrSessionNotFound
	}
	return game.field.Snapshot(), nil
}

// Subscribe attaches a listener to a session's field, returning an
// unsubscribe func
func (s *Service) Subscribe(id model.SessionID, listener minefield.Listener) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.live[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return game.field.Subscribe(listener), nil
}

// Reveal reveals a cell in a session's game
func (s *Service) Reveal(ctx context.Context, id model.SessionID, row, col int) error {
	return s.command(ctx, id, func(game *liveGame) error {
		return game.field.Reveal(row, col)
	})
}

// ToggleFlag toggles a flag in a session's game
func (s *Service) ToggleFlag(ctx context.Context, id model.SessionID, row, col int) error {
	return s.command(ctx, id, func(game *liveGame) error {
		return game.field.ToggleFlag(row, col)
	})
}

// RevealNearby chords a revealed cell in a session's game
func (s *Service) RevealNearby(ctx context.Context, id model.SessionID, row, col int) error {
	return s.command(ctx, id, func(game *liveGame) error {
		return game.field.RevealNearby(row, col)
	})
}

// ResetField resets a session's game to an unstarted board
func (s *Service) ResetField(ctx context.Context, id model.SessionID) error {
	return s.command(ctx, id, func(game *liveGame) error {
		game.field.Reset()
		game.startedAt = time.Time{}
		return nil
	})
}

// ListSummaries returns the completed-game records for a session
func (s *Service) ListSummaries(ctx context.Context, id model.SessionID) ([]*model.GameSummary, error) {
	if _, err := s.storage.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ListSummaries(ctx, id)
}

// command runs fn against a session's live game under the service mutex,
// then touches the session's UpdatedAt timestamp.
func (s *Service) command(ctx context.Context, id model.SessionID, fn func(*liveGame) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.live[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if err := fn(game); err != nil {
		return err
	}

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}
	session.UpdatedAt = s.clock.Now()
	return s.storage.SaveSession(ctx, session)
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateSession(ctx context.Context, rows, cols, mines int) (*model.Session, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	Snapshot(ctx context.Context, id model.SessionID) (model.FieldSnapshot, error)
	Subscribe(id model.SessionID, listener minefield.Listener) (func(), error)
	Reveal(ctx context.Context, id model.SessionID, row, col int) error
	ToggleFlag(ctx context.Context, id model.SessionID, row, col int) error
	RevealNearby(ctx context.Context, id model.SessionID, row, col int) error
	ResetField(ctx context.Context, id model.SessionID) error
	ListSummaries(ctx context.Context, id model.SessionID) ([]*model.GameSummary, error)
}

var _ ServiceInterface = (*Service)(nil)
