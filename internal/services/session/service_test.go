package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/minesweeper-go/internal/dependencies/mocks"
	"github.com/mcoot/minesweeper-go/internal/minefield"
	"github.com/mcoot/minesweeper-go/internal/model"
	"github.com/mcoot/minesweeper-go/internal/storage/memory"
	"github.com/mcoot/minesweeper-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, nil, testutil.NopLogger())
	s.ctx = context.Background()
}

// createSession makes a 4x4 session with 3 mines. With the identity
// shuffle, the mines land at (0,0), (0,1) and (0,2) once (3,0) is
// revealed first.
func (s *ServiceSuite) createSession(id string) *model.Session {
	s.random.QueueString(id)
	s.random.IntnFunc = func(n int) int { return n - 1 }

	session, err := s.service.CreateSession(s.ctx, 4, 4, 3)
	s.Require().NoError(err)
	return session
}

// CreateSession tests

func (s *ServiceSuite) TestCreateSessionPersistsMetadata() {
	session := s.createSession("GAME01")

	s.Equal(model.SessionID("GAME01"), session.ID)
	s.Equal(4, session.Rows)
	s.Equal(4, session.Cols)
	s.Equal(3, session.Mines)
	s.True(session.CreatedAt.Equal(s.clock.CurrentTime))

	retrieved, err := s.service.GetSession(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
}

func (s *ServiceSuite) TestCreateSessionRejectsBadConfiguration() {
	s.random.QueueString("GAME01")

	_, err := s.service.CreateSession(s.ctx, 0, 4, 3)
	s.ErrorIs(err, model.ErrInvalidConfiguration)

	_, err = s.service.CreateSession(s.ctx, 4, 4, 16)
	s.ErrorIs(err, model.ErrInvalidConfiguration)
}

func (s *ServiceSuite) TestListSessions() {
	s.createSession("GAME01")
	s.random.QueueString("GAME02")
	_, err := s.service.CreateSession(s.ctx, 9, 9, 10)
	s.Require().NoError(err)

	sessions, err := s.service.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

// Snapshot tests

func (s *ServiceSuite) TestSnapshotReflectsGameState() {
	s.createSession("GAME01")

	snap, err := s.service.Snapshot(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Equal(model.PhaseNotStarted, snap.Phase)
	s.Equal(4, snap.Rows)

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))

	snap, err = s.service.Snapshot(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Equal(model.PhaseInProgress, snap.Phase)
	s.Equal(model.CellRevealed, snap.Cells[3][0].State)
}

func (s *ServiceSuite) TestSnapshotUnknownSession() {
	_, err := s.service.Snapshot(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Command tests

func (s *ServiceSuite) TestCommandsForwardToEngine() {
	s.createSession("GAME01")

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Require().NoError(s.service.ToggleFlag(s.ctx, "GAME01", 0, 2))
	s.Require().NoError(s.service.RevealNearby(s.ctx, "GAME01", 1, 3))

	snap, err := s.service.Snapshot(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Equal(model.PhaseWon, snap.Phase)
}

func (s *ServiceSuite) TestCommandsOnUnknownSession() {
	s.ErrorIs(s.service.Reveal(s.ctx, "missing", 0, 0), model.ErrSessionNotFound)
	s.ErrorIs(s.service.ToggleFlag(s.ctx, "missing", 0, 0), model.ErrSessionNotFound)
	s.ErrorIs(s.service.RevealNearby(s.ctx, "missing", 0, 0), model.ErrSessionNotFound)
	s.ErrorIs(s.service.ResetField(s.ctx, "missing"), model.ErrSessionNotFound)
}

func (s *ServiceSuite) TestCommandsPropagateOutOfRange() {
	s.createSession("GAME01")

	s.ErrorIs(s.service.Reveal(s.ctx, "GAME01", 9, 0), model.ErrIndexOutOfRange)
	s.ErrorIs(s.service.ToggleFlag(s.ctx, "GAME01", 0, -1), model.ErrIndexOutOfRange)
}

func (s *ServiceSuite) TestCommandTouchesUpdatedAt() {
	s.createSession("GAME01")

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))

	session, err := s.service.GetSession(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.True(session.UpdatedAt.Equal(s.clock.CurrentTime))
	s.True(session.UpdatedAt.After(session.CreatedAt))
}

// Summary tests

func (s *ServiceSuite) TestLossRecordsSummary() {
	s.createSession("GAME01")

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.clock.Advance(30 * time.Second)
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 0, 0))

	summaries, err := s.service.ListSummaries(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(model.PhaseLost, summaries[0].Outcome)
	s.Equal(12, summaries[0].Revealed)
	s.Equal(30*time.Second, summaries[0].Duration)
	s.True(summaries[0].CompletedAt.Equal(s.clock.CurrentTime))
}

func (s *ServiceSuite) TestWinRecordsSummary() {
	s.createSession("GAME01")

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.clock.Advance(time.Minute)
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 0, 3))

	summaries, err := s.service.ListSummaries(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(model.PhaseWon, summaries[0].Outcome)
	s.Equal(13, summaries[0].Revealed)
	s.Equal(time.Minute, summaries[0].Duration)
}

func (s *ServiceSuite) TestResetAllowsSecondGameAndSummary() {
	s.createSession("GAME01")

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 0, 0)) // lost
	s.Require().NoError(s.service.ResetField(s.ctx, "GAME01"))

	snap, err := s.service.Snapshot(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Equal(model.PhaseNotStarted, snap.Phase)

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 0, 3)) // won

	summaries, err := s.service.ListSummaries(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(model.PhaseLost, summaries[0].Outcome)
	s.Equal(model.PhaseWon, summaries[1].Outcome)
}

func (s *ServiceSuite) TestListSummariesUnknownSession() {
	_, err := s.service.ListSummaries(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Delete tests

func (s *ServiceSuite) TestDeleteSessionRemovesEverything() {
	s.createSession("GAME01")
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 0, 0))

	s.Require().NoError(s.service.DeleteSession(s.ctx, "GAME01"))

	_, err := s.service.GetSession(s.ctx, "GAME01")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.service.Snapshot(s.ctx, "GAME01")
	s.ErrorIs(err, model.ErrSessionNotFound)

	summaries, err := s.storage.ListSummaries(s.ctx, "GAME01")
	s.Require().NoError(err)
	s.Empty(summaries)
}

// Listener tests

func (s *ServiceSuite) TestListenerFactoryIsAttached() {
	var gotID model.SessionID
	phases := []model.Phase{}

	factory := func(id model.SessionID, field *minefield.Minefield) minefield.Listener {
		gotID = id
		return minefield.ListenerFuncs{
			OnPhaseChanged: func(p model.Phase) {
				phases = append(phases, p)
			},
		}
	}
	s.service = New(s.storage, s.clock, s.random, factory, testutil.NopLogger())

	s.createSession("GAME01")
	s.Equal(model.SessionID("GAME01"), gotID)

	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Equal([]model.Phase{model.PhaseInProgress}, phases)
}

func (s *ServiceSuite) TestSubscribeToSession() {
	s.createSession("GAME01")

	boards := 0
	unsubscribe, err := s.service.Subscribe("GAME01", minefield.ListenerFuncs{
		OnBoardChanged: func() { boards++ },
	})
	s.Require().NoError(err)
	s.Equal(1, boards) // immediate refresh on subscribe

	unsubscribe()
	s.Require().NoError(s.service.Reveal(s.ctx, "GAME01", 3, 0))
	s.Equal(1, boards)
}
