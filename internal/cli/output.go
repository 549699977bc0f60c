package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case GameState:
		o.printGameState(v)
	case Board:
		o.printBoard(v)
	case SummaryList:
		o.printSummaryList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
type Session struct {
	ID        string    `json:"id"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Mines     int       `json:"mines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionList response type
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Cell response type
type Cell struct {
	Row           int    `json:"row"`
	Col           int    `json:"col"`
	State         string `json:"state"`
	AdjacentMines int    `json:"adjacent_mines"`
}

// Board response type
type Board struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Mines int      `json:"mines"`
	Phase string   `json:"phase"`
	Cells [][]Cell `json:"cells"`
}

// GameState response type
type GameState struct {
	Session Session `json:"session"`
	Board   Board   `json:"board"`
}

// GameSummary response type
type GameSummary struct {
	Outcome     string    `json:"outcome"`
	Revealed    int       `json:"revealed"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// SummaryList response type
type SummaryList struct {
	Summaries []GameSummary `json:"summaries"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Board: %dx%d, %d mines\n", s.Rows, s.Cols, s.Mines)
	fmt.Printf("Created: %s\n", s.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	fmt.Printf("Sessions (%d):\n", len(l.Sessions))
	for _, s := range l.Sessions {
		fmt.Printf("  %s - %dx%d, %d mines (created %s)\n",
			s.ID, s.Rows, s.Cols, s.Mines, s.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printGameState(g GameState) {
	o.printSession(g.Session)
	fmt.Println()
	o.printBoard(g.Board)
}

// cellGlyph maps a cell's visible state to a single display character
func cellGlyph(c Cell) string {
	switch c.State {
	case "hidden":
		return "."
	case "flagged":
		return "F"
	case "revealed":
		if c.AdjacentMines == 0 {
			return " "
		}
		return strconv.Itoa(c.AdjacentMines)
	case "exploded":
		return "@"
	case "mine":
		return "*"
	case "misflagged":
		return "x"
	default:
		return "?"
	}
}

func (o *Output) printBoard(b Board) {
	fmt.Printf("Phase: %s\n", b.Phase)

	// Print column headers
	fmt.Print("    ")
	for col := 0; col < b.Cols; col++ {
		fmt.Printf("%2d ", col)
	}
	fmt.Println()

	// Print top border
	fmt.Print("   +")
	for col := 0; col < b.Cols; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")

	// Print rows
	for row := 0; row < b.Rows; row++ {
		fmt.Printf("%2d |", row)
		for col := 0; col < b.Cols; col++ {
			fmt.Printf(" %s ", cellGlyph(b.Cells[row][col]))
		}
		fmt.Println("|")
	}

	// Print bottom border
	fmt.Print("   +")
	for col := 0; col < b.Cols; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")
}

func (o *Output) printSummaryList(l SummaryList) {
	if len(l.Summaries) == 0 {
		fmt.Println("No completed games")
		return
	}
	fmt.Printf("Completed games (%d):\n", len(l.Summaries))
	for i, s := range l.Summaries {
		duration := time.Duration(s.DurationMS) * time.Millisecond
		fmt.Printf("  %d. %s - %d revealed in %s (%s)\n",
			i+1, s.Outcome, s.Revealed, duration, s.CompletedAt.Format(time.RFC3339))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
