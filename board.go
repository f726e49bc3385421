package main

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Board is a dense row-major grid. It is a value type; Clone before
// mutating a board someone else still reads.
type Board struct {
	size  int
	cells []Cell
}

func NewBoard(size int) Board {
	var b Board
	b.Reset(size)
	return b
}

func (b *Board) Reset(size int) {
	b.size = size
	b.cells = make([]Cell, size*size)
}

func (b Board) Size() int {
	return b.size
}

func (b Board) At(x, y int) Cell {
	return b.cells[y*b.size+x]
}

func (b *Board) Set(x, y int, cell Cell) {
	b.cells[y*b.size+x] = cell
}

func (b *Board) Remove(x, y int) {
	b.cells[y*b.size+x] = CellEmpty
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

func (b Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b Board) CountEmpty() int {
	empty := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			empty++
		}
	}
	return empty
}

func (b Board) Clone() Board {
	return Board{size: b.size, cells: append([]Cell(nil), b.cells...)}
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}
