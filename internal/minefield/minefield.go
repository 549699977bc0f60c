package minefield

import (
	"io"
	"log/slog"

	"github.com/mcoot/minesweeper-go/internal/dependencies/random"
	"github.com/mcoot/minesweeper-go/internal/model"
)

// cell is the engine-private state of a single grid cell. All mutation
// goes through the Minefield; callers only ever see model.Cell views.
type cell struct {
	mine     bool
	adjacent int
	state    model.CellState
}

// Minefield is a single-player grid-reveal game. Mines are placed lazily
// on the first reveal so the first click is never a mine.
//
// A Minefield is not safe for concurrent use; callers needing concurrent
// access must serialize externally. Every command completes fully,
// including all observer notifications, before returning.
type Minefield struct {
	rows  int
	cols  int
	mines int

	phase      model.Phase
	unrevealed int // hidden safe cells left to reveal
	grid       [][]cell
	mineSet    []model.Position
	flags      map[model.Position]bool

	observers *registry
	random    random.Random
	logger    *slog.Logger
}

// New creates a Minefield with the given dimensions and mine count.
// Returns model.ErrInvalidConfiguration unless rows, cols and mines are
// positive and at least one safe cell exists.
func New(rows, cols, mines int, rnd random.Random, logger *slog.Logger) (*Minefield, error) {
	if rows <= 0 || cols <= 0 || mines <= 0 || mines >= rows*cols {
		return nil, model.ErrInvalidConfiguration
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	m := &Minefield{
		rows:      rows,
		cols:      cols,
		mines:     mines,
		observers: newRegistry(),
		random:    rnd,
		logger:    logger.With(slog.String("component", "minefield")),
	}
	m.Reset()
	return m, nil
}

// RowCount returns the number of rows in the grid
func (m *Minefield) RowCount() int {
	return m.rows
}

// ColumnCount returns the number of columns in the grid
func (m *Minefield) ColumnCount() int {
	return m.cols
}

// MineCount returns the number of mines placed on first reveal
func (m *Minefield) MineCount() int {
	return m.mines
}

// Phase returns the current game phase
func (m *Minefield) Phase() model.Phase {
	return m.phase
}

// CellAt returns a read-only view of the cell at the given coordinates.
// Returns model.ErrIndexOutOfRange if the coordinates are outside the grid.
func (m *Minefield) CellAt(row, col int) (model.Cell, error) {
	if !m.inBounds(row, col) {
		return model.Cell{}, model.ErrIndexOutOfRange
	}
	return m.cellView(row, col), nil
}

// Snapshot returns a read-only view of the entire grid
func (m *Minefield) Snapshot() model.FieldSnapshot {
	cells := make([][]model.Cell, m.rows)
	for r := 0; r < m.rows; r++ {
		cells[r] = make([]model.Cell, m.cols)
		for c := 0; c < m.cols; c++ {
			cells[r][c] = m.cellView(r, c)
		}
	}
	return model.FieldSnapshot{
		Rows:  m.rows,
		Cols:  m.cols,
		Mines: m.mines,
		Phase: m.phase,
		Cells: cells,
	}
}

// Reset discards all cells and returns the game to its initial state with
// no mines placed. Observers receive a board update, and a phase change if
// the game was underway.
func (m *Minefield) Reset() {
	m.grid = make([][]cell, m.rows)
	for r := range m.grid {
		m.grid[r] = make([]cell, m.cols)
		for c := range m.grid[r] {
			m.grid[r][c] = cell{state: model.CellHidden}
		}
	}
	m.mineSet = nil
	m.flags = make(map[model.Position]bool)
	m.unrevealed = m.rows*m.cols - m.mines

	m.notifyBoard()
	m.setPhase(model.PhaseNotStarted)
}

// Reveal reveals the cell at the given coordinates. On the first reveal of
// a game, mines are placed first, excluding the clicked cell. Revealing a
// mine ends the game. A no-op if the game is over or the cell is not
// hidden. Returns model.ErrIndexOutOfRange for bad coordinates.
func (m *Minefield) Reveal(row, col int) error {
	if !m.inBounds(row, col) {
		return model.ErrIndexOutOfRange
	}
	if m.phase.Terminal() || m.grid[row][col].state != model.CellHidden {
		return nil
	}

	if m.phase == model.PhaseNotStarted {
		m.placeMines(model.Position{Row: row, Col: col})
		m.setPhase(model.PhaseInProgress)
	}

	if m.grid[row][col].mine {
		m.explode(row, col)
		return nil
	}

	m.cascade(row, col)
	return nil
}

// ToggleFlag flips the cell at the given coordinates between hidden and
// flagged. A no-op if the game is over or the cell has been revealed.
// Returns model.ErrIndexOutOfRange for bad coordinates.
func (m *Minefield) ToggleFlag(row, col int) error {
	if !m.inBounds(row, col) {
		return model.ErrIndexOutOfRange
	}
	if m.phase.Terminal() {
		return nil
	}

	pos := model.Position{Row: row, Col: col}
	switch m.grid[row][col].state {
	case model.CellHidden:
		m.grid[row][col].state = model.CellFlagged
		m.flags[pos] = true
	case model.CellFlagged:
		m.grid[row][col].state = model.CellHidden
		delete(m.flags, pos)
	default:
		return nil
	}

	m.notifyCell(row, col)
	return nil
}

// RevealNearby reveals all unrevealed neighbors of a revealed cell at
// once, provided the number of flagged neighbors matches the cell's
// adjacent mine count. Each neighbor obeys the full Reveal contract, so a
// misplaced flag can lose the game. A no-op unless the game is in
// progress and the target cell is revealed. Returns
// model.ErrIndexOutOfRange for bad coordinates.
func (m *Minefield) RevealNearby(row, col int) error {
	if !m.inBounds(row, col) {
		return model.ErrIndexOutOfRange
	}
	if m.phase != model.PhaseInProgress || m.grid[row][col].state != model.CellRevealed {
		return nil
	}

	neighbors := m.neighbors(row, col)
	flagged := 0
	for _, pos := range neighbors {
		if m.grid[pos.Row][pos.Col].state == model.CellFlagged {
			flagged++
		}
	}
	if flagged != m.grid[row][col].adjacent {
		return nil
	}

	for _, pos := range neighbors {
		// Reveal no-ops on flagged and revealed cells, and on everything
		// once a neighbor turns out to be a mine.
		_ = m.Reveal(pos.Row, pos.Col)
	}
	return nil
}

// placeMines performs the deferred mine placement for the first reveal.
// Every cell except the clicked one is eligible; a Fisher-Yates shuffle
// picks the mine locations uniformly at random.
func (m *Minefield) placeMines(exclude model.Position) {
	eligible := make([]model.Position, 0, m.rows*m.cols-1)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			pos := model.Position{Row: r, Col: c}
			if pos != exclude {
				eligible = append(eligible, pos)
			}
		}
	}

	random.Shuffle(m.random, len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	m.mineSet = append(m.mineSet, eligible[:m.mines]...)
	for _, pos := range m.mineSet {
		m.grid[pos.Row][pos.Col].mine = true
		for _, n := range m.neighbors(pos.Row, pos.Col) {
			m.grid[n.Row][n.Col].adjacent++
		}
	}

	m.logger.Debug("mines placed",
		slog.Int("mines", len(m.mineSet)),
		slog.Int("first_row", exclude.Row),
		slog.Int("first_col", exclude.Col),
	)
}

// explode ends the game on a tripped mine. The clicked cell explodes,
// every other mine is revealed, and misplaced flags are marked.
func (m *Minefield) explode(row, col int) {
	for _, pos := range m.mineSet {
		m.grid[pos.Row][pos.Col].state = model.CellMine
	}
	m.grid[row][col].state = model.CellExploded

	for pos := range m.flags {
		if !m.grid[pos.Row][pos.Col].mine {
			m.grid[pos.Row][pos.Col].state = model.CellMisflagged
		}
	}

	m.logger.Info("game lost",
		slog.Int("row", row),
		slog.Int("col", col),
	)
	m.setPhase(model.PhaseLost)
}

// cascade reveals the cell at the given coordinates and flood-fills
// outward through zero-count cells using an explicit worklist, then fires
// the appropriate notification: a single-cell update when one cell was
// revealed, a board update otherwise.
func (m *Minefield) cascade(row, col int) {
	revealed := 0
	work := []model.Position{{Row: row, Col: col}}

	for len(work) > 0 {
		pos := work[len(work)-1]
		work = work[:len(work)-1]

		c := &m.grid[pos.Row][pos.Col]
		if c.state == model.CellRevealed {
			continue
		}
		if c.state == model.CellFlagged {
			// A flagged neighbor of a zero-count cell cannot be a mine
			delete(m.flags, pos)
		}
		c.state = model.CellRevealed
		revealed++

		if c.adjacent == 0 {
			for _, n := range m.neighbors(pos.Row, pos.Col) {
				if m.grid[n.Row][n.Col].state != model.CellRevealed {
					work = append(work, n)
				}
			}
		}
	}

	m.unrevealed -= revealed

	if m.unrevealed == 0 {
		for _, pos := range m.mineSet {
			m.grid[pos.Row][pos.Col].state = model.CellFlagged
			m.flags[pos] = true
		}
		m.logger.Info("game won", slog.Int("revealed", revealed))
		m.setPhase(model.PhaseWon)
	} else if revealed == 1 {
		m.notifyCell(row, col)
	} else {
		m.notifyBoard()
	}
}

// neighbors returns the positions of the up-to-8 cells surrounding the
// given coordinates, clipped at the grid edges.
func (m *Minefield) neighbors(row, col int) []model.Position {
	result := make([]model.Position, 0, 8)
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if (r != row || c != col) && m.inBounds(r, c) {
				result = append(result, model.Position{Row: r, Col: c})
			}
		}
	}
	return result
}

func (m *Minefield) inBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// cellView materializes a read-only view of a cell. The adjacent mine
// count is only exposed once the cell has been revealed.
func (m *Minefield) cellView(row, col int) model.Cell {
	c := m.grid[row][col]
	view := model.Cell{Row: row, Col: col, State: c.state}
	if c.state == model.CellRevealed {
		view.AdjacentMines = c.adjacent
	}
	return view
}

// setPhase transitions the game phase, firing a board update followed by
// a phase change notification when the phase actually changes.
func (m *Minefield) setPhase(phase model.Phase) {
	if m.phase == phase {
		return
	}
	m.phase = phase
	m.notifyBoard()
	m.observers.each(func(l Listener) {
		l.PhaseChanged(phase)
	})
}

func (m *Minefield) notifyCell(row, col int) {
	view := m.cellView(row, col)
	m.observers.each(func(l Listener) {
		l.CellChanged(view)
	})
}

func (m *Minefield) notifyBoard() {
	m.observers.each(func(l Listener) {
		l.BoardChanged()
	})
}
