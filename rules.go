package main

import "fmt"

// lineDirections are the four axes a run can form on; captureDirections
// are all eight rays a capture pattern can point along.
var (
	lineDirections    = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	captureDirections = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}}
)

// Rules is the rule oracle: pure queries over a position, no state
// beyond the settings it was built with.
type Rules struct {
	settings GameSettings
}

func NewRules(settings GameSettings) Rules {
	return Rules{settings: settings}
}

func (r Rules) IsLegal(state GameState, move Move, player PlayerColor) (bool, string) {
	if !move.IsValid(r.settings.BoardSize) {
		return false, "out of bounds"
	}
	if !state.Board.IsEmpty(move.X, move.Y) {
		return false, "occupied"
	}
	forbid := r.settings.ForbidDoubleThreeWhite
	if player == PlayerBlack {
		forbid = r.settings.ForbidDoubleThreeBlack
	}
	if forbid && r.IsForbiddenDoubleThree(state.Board, move, player) {
		return false, "forbidden double three"
	}
	return true, ""
}

func (r Rules) IsLegalDefault(state GameState, move Move) (bool, string) {
	return r.IsLegal(state, move, state.ToMove)
}

func (r Rules) IsWin(board Board, lastMove Move) bool {
	if !lastMove.IsValid(r.settings.BoardSize) || board.At(lastMove.X, lastMove.Y) == CellEmpty {
		return false
	}
	for _, d := range lineDirections {
		run := 1 + r.countDirection(board, lastMove, d[0], d[1]) + r.countDirection(board, lastMove, -d[0], -d[1])
		if run >= r.settings.WinLength {
			return true
		}
	}
	return false
}

func (r Rules) IsDraw(board Board) bool {
	return board.CountEmpty() == 0
}

// IsForbiddenDoubleThree places the stone transiently on the caller's
// board (set, test, remove), so it needs no clone.
func (r Rules) IsForbiddenDoubleThree(board Board, move Move, player PlayerColor) bool {
	cell := CellFromPlayer(player)
	board.Set(move.X, move.Y, cell)
	defer board.Remove(move.X, move.Y)
	openThrees := 0
	for _, d := range lineDirections {
		if r.isOpenThreeInDirection(board, move, d[0], d[1], cell) {
			openThrees++
			if openThrees >= 2 {
				return true
			}
		}
	}
	return false
}

func (r Rules) FindCaptures(board Board, move Move, playerCell Cell) []Move {
	return r.FindCapturesInto(board, move, playerCell, nil)
}

// FindCapturesInto scans the eight rays from move for the pattern
// opponent, opponent, own stone. Each hit captures exactly the pair.
// The captures slice is reused when it has capacity.
func (r Rules) FindCapturesInto(board Board, move Move, playerCell Cell, captures []Move) []Move {
	captures = captures[:0]
	if cap(captures) < 8 {
		captures = make([]Move, 0, 8)
	}
	opponentCell := CellBlack
	if playerCell == CellBlack {
		opponentCell = CellWhite
	}
	for _, d := range captureDirections {
		x1, y1 := move.X+d[0], move.Y+d[1]
		x2, y2 := move.X+2*d[0], move.Y+2*d[1]
		x3, y3 := move.X+3*d[0], move.Y+3*d[1]
		if !board.InBounds(x3, y3) {
			continue
		}
		if board.At(x1, y1) != opponentCell || board.At(x2, y2) != opponentCell || board.At(x3, y3) != playerCell {
			continue
		}
		captures = appendCapture(captures, Move{X: x1, Y: y1})
		captures = appendCapture(captures, Move{X: x2, Y: y2})
	}
	return captures
}

func appendCapture(captures []Move, captured Move) []Move {
	for _, existing := range captures {
		if existing.Equals(captured) {
			return captures
		}
	}
	return append(captures, captured)
}

// OpponentCanBreakAlignmentByCapture reports whether the opponent has a
// capture that removes a stone out of every winning line, which keeps
// the game alive despite a completed alignment.
func (r Rules) OpponentCanBreakAlignmentByCapture(afterMoveState GameState, opponent PlayerColor) bool {
	probeState := afterMoveState.Clone()
	probeState.ToMove = opponent
	opponentCell := CellFromPlayer(opponent)
	targetCell := CellFromPlayer(otherPlayer(opponent))
	size := afterMoveState.Board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !afterMoveState.Board.IsEmpty(x, y) {
				continue
			}
			move := Move{X: x, Y: y}
			if ok, _ := r.IsLegal(probeState, move, opponent); !ok {
				continue
			}
			probe := afterMoveState.Board.Clone()
			probe.Set(x, y, opponentCell)
			captures := r.FindCaptures(probe, move, opponentCell)
			if len(captures) == 0 {
				continue
			}
			for _, captured := range captures {
				probe.Remove(captured.X, captured.Y)
			}
			if !r.hasAnyAlignment(probe, targetCell) {
				return true
			}
		}
	}
	return false
}

// FindAlignmentLine returns the stones of a winning line through
// lastMove, or ok=false when no direction reaches the win length.
func (r Rules) FindAlignmentLine(board Board, lastMove Move) ([]Move, bool) {
	if !lastMove.IsValid(r.settings.BoardSize) || board.At(lastMove.X, lastMove.Y) == CellEmpty {
		return []Move{}, false
	}
	for _, d := range lineDirections {
		line := r.collectLine(board, lastMove, d[0], d[1])
		if len(line) >= r.settings.WinLength {
			return line, true
		}
	}
	return []Move{}, false
}

func (r Rules) WinLength() int {
	return r.settings.WinLength
}

func (r Rules) CaptureWinStones() int {
	return r.settings.CaptureWinStones
}

func (r Rules) countDirection(board Board, start Move, dx, dy int) int {
	target := board.At(start.X, start.Y)
	count := 0
	for x, y := start.X+dx, start.Y+dy; board.InBounds(x, y) && board.At(x, y) == target; x, y = x+dx, y+dy {
		count++
	}
	return count
}

// collectLine walks to the far end of the run through start, then
// gathers the whole run going forward.
func (r Rules) collectLine(board Board, start Move, dx, dy int) []Move {
	target := board.At(start.X, start.Y)
	x, y := start.X, start.Y
	for board.InBounds(x-dx, y-dy) && board.At(x-dx, y-dy) == target {
		x -= dx
		y -= dy
	}
	line := []Move{}
	for board.InBounds(x, y) && board.At(x, y) == target {
		line = append(line, Move{X: x, Y: y})
		x += dx
		y += dy
	}
	return line
}

// isOpenThreeInDirection renders an 11-cell window around move along
// one axis ('X' own, 'O' opponent or wall, '_' empty) and pattern
// matches the open-three shapes: _XXX_, _XX_X_ and _X_XX_.
func (r Rules) isOpenThreeInDirection(board Board, move Move, dx, dy int, playerCell Cell) bool {
	const rng = 5
	const lineSize = rng*2 + 1
	var window [lineSize]byte
	for i := -rng; i <= rng; i++ {
		x := move.X + i*dx
		y := move.Y + i*dy
		value := byte('O')
		if board.InBounds(x, y) {
			switch board.At(x, y) {
			case CellEmpty:
				value = '_'
			case playerCell:
				value = 'X'
			}
		}
		window[i+rng] = value
	}
	const center = rng
	for start := 0; start+5 <= lineSize; start++ {
		if center < start || center >= start+5 {
			continue
		}
		if window[start] == '_' && window[start+1] == 'X' && window[start+2] == 'X' && window[start+3] == 'X' && window[start+4] == '_' {
			return true
		}
	}
	for start := 0; start+6 <= lineSize; start++ {
		if center < start || center >= start+6 {
			continue
		}
		if window[start] != '_' || window[start+5] != '_' {
			continue
		}
		inner := string(window[start+1 : start+5])
		if inner == "XX_X" || inner == "X_XX" {
			return true
		}
	}
	return false
}

func (r Rules) hasAnyAlignment(board Board, playerCell Cell) bool {
	size := board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if board.At(x, y) != playerCell {
				continue
			}
			move := Move{X: x, Y: y}
			for _, d := range lineDirections {
				run := 1 + r.countDirection(board, move, d[0], d[1]) + r.countDirection(board, move, -d[0], -d[1])
				if run >= r.settings.WinLength {
					return true
				}
			}
		}
	}
	return false
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{win=%d, capture=%d}", r.settings.WinLength, r.settings.CaptureWinStones)
}
