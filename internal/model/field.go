package model

// Position identifies a cell on the minefield
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// CellState is the visible state of a cell
type CellState string

const (
	CellHidden     CellState = "hidden"
	CellFlagged    CellState = "flagged"
	CellRevealed   CellState = "revealed"
	CellExploded   CellState = "exploded"   // The mine that was tripped
	CellMine       CellState = "mine"       // Other mines, shown after a loss
	CellMisflagged CellState = "misflagged" // Flagged non-mine, shown after a loss
)

// Cell is a read-only view of a single cell. AdjacentMines is only
// populated once the cell has been revealed.
type Cell struct {
	Row           int       `json:"row"`
	Col           int       `json:"col"`
	State         CellState `json:"state"`
	AdjacentMines int       `json:"adjacent_mines"`
}

// Position returns the cell's position
func (c Cell) Position() Position {
	return Position{Row: c.Row, Col: c.Col}
}

// Phase represents the top-level state of a game
type Phase string

const (
	PhaseNotStarted Phase = "not_started" // No mines placed yet
	PhaseInProgress Phase = "in_progress"
	PhaseWon        Phase = "won"
	PhaseLost       Phase = "lost"
)

// Terminal returns true once the game has been won or lost
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// FieldSnapshot is a read-only view of an entire minefield
type FieldSnapshot struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Mines int      `json:"mines"`
	Phase Phase    `json:"phase"`
	Cells [][]Cell `json:"cells"` // Row-major: Cells[row][col]
}
