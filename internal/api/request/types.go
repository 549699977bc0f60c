package request

// CreateGameRequest is the request body for creating a game session
type CreateGameRequest struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

// CellRequest is the request body for cell commands (reveal, flag, chord)
type CellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
