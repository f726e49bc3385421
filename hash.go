package main

const (
	fnvOffsetBasis uint64 = 1469598103934665603
	fnvPrime       uint64 = 1099511628211
)

// hashBoard folds every cell in row-major order, occupied or not, so
// two boards collide only when they agree on every cell.
func hashBoard(board Board) uint64 {
	h := fnvOffsetBasis
	size := board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h ^= uint64(board.At(x, y) + 1)
			h *= fnvPrime
		}
	}
	return h
}

// StateKey identifies a search position. The board hash alone is not
// enough: capture counts and the side to move change the value of a
// position without touching the stones.
type StateKey struct {
	Hash          uint64
	BoardSize     int
	CapturedBlack int
	CapturedWhite int
	Status        GameStatus
	ToMove        PlayerColor
}

type MoveCacheKey struct {
	State StateKey
	Depth int
	X     int
	Y     int
}

type ImmediateWinKey struct {
	State  StateKey
	X      int
	Y      int
	Player PlayerColor
}

type ImmediateWinStateKey struct {
	State  StateKey
	Player PlayerColor
}

type DepthKey struct {
	State StateKey
	Depth int
}

func stateKeyFor(state GameState, player PlayerColor) StateKey {
	return StateKey{
		Hash:          hashBoard(state.Board),
		BoardSize:     state.Board.Size(),
		CapturedBlack: state.CapturedBlack,
		CapturedWhite: state.CapturedWhite,
		Status:        state.Status,
		ToMove:        player,
	}
}

func moveKeyFor(state StateKey, move Move, depth int) MoveCacheKey {
	return MoveCacheKey{State: state, Depth: depth, X: move.X, Y: move.Y}
}
