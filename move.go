package main

// Move is a board coordinate. Depth is only set on moves produced by
// the engine and records the search depth that chose them.
type Move struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Depth int `json:"depth,omitempty"`
}

func (m Move) IsValid(boardSize int) bool {
	return m.X >= 0 && m.Y >= 0 && m.X < boardSize && m.Y < boardSize
}

// Equals ignores Depth; two moves are the same placement regardless of
// how deep the search that found them went.
func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y
}
