package main

const (
	illegalScore = -1e9
	winScore     = 10000.0
)

// collectCandidateMoves returns every empty cell adjacent to a stone,
// deduped, in board scan order. An empty board yields just the center.
func collectCandidateMoves(board Board) []Move {
	size := board.Size()
	moves := []Move{}
	seen := make([]bool, size*size)
	hasStone := false
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if board.At(x, y) == CellEmpty {
				continue
			}
			hasStone = true
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := x + dx
					ny := y + dy
					if !board.IsEmpty(nx, ny) {
						continue
					}
					idx := ny*size + nx
					if !seen[idx] {
						seen[idx] = true
						moves = append(moves, Move{X: nx, Y: ny})
					}
				}
			}
		}
	}
	if !hasStone {
		center := size / 2
		moves = append(moves, Move{X: center, Y: center})
	}
	return moves
}

func countRun(board Board, x, y, dx, dy int, cell Cell, limit int) int {
	count := 0
	for step := 1; step <= limit; step++ {
		nx := x + step*dx
		ny := y + step*dy
		if !board.InBounds(nx, ny) || board.At(nx, ny) != cell {
			break
		}
		count++
	}
	return count
}

func isBlockedEnd(board Board, x, y, dx, dy, distance int) bool {
	bx := x + (distance+1)*dx
	by := y + (distance+1)*dy
	if !board.InBounds(bx, by) {
		return true
	}
	return board.At(bx, by) != CellEmpty
}

// moveHeuristic is the cheap ordering score for placing at move. It
// rewards extending own runs, touching opponent runs (more when their
// far end is already blocked), and pair captures, and nudges play away
// from the board edge.
func moveHeuristic(state GameState, rules Rules, player PlayerColor, move Move) float64 {
	if ok, _ := rules.IsLegal(state, move, player); !ok {
		return illegalScore
	}
	board := state.Board
	selfCell := CellFromPlayer(player)
	opponentCell := CellFromPlayer(otherPlayer(player))
	score := 0.0
	size := board.Size()

	minEdgeDist := move.X
	if move.Y < minEdgeDist {
		minEdgeDist = move.Y
	}
	if size-1-move.X < minEdgeDist {
		minEdgeDist = size - 1 - move.X
	}
	if size-1-move.Y < minEdgeDist {
		minEdgeDist = size - 1 - move.Y
	}
	const edgeMargin = 2
	if minEdgeDist < edgeMargin {
		score -= float64((edgeMargin - minEdgeDist) * 2)
	}

	addsWin := false
	for _, d := range lineDirections {
		dx := d[0]
		dy := d[1]
		left := countRun(board, move.X, move.Y, -dx, -dy, selfCell, size)
		right := countRun(board, move.X, move.Y, dx, dy, selfCell, size)
		length := 1 + left + right
		if left+right > 0 {
			score += float64(length)
		}
		if length >= rules.WinLength() {
			addsWin = true
		}

		oppLeft := countRun(board, move.X, move.Y, -dx, -dy, opponentCell, size)
		if oppLeft > 0 {
			score += float64(oppLeft)
			if isBlockedEnd(board, move.X, move.Y, -dx, -dy, oppLeft) {
				score += 5.0
			}
		}
		oppRight := countRun(board, move.X, move.Y, dx, dy, opponentCell, size)
		if oppRight > 0 {
			score += float64(oppRight)
			if isBlockedEnd(board, move.X, move.Y, dx, dy, oppRight) {
				score += 5.0
			}
		}
	}
	if addsWin {
		score += 100.0
	}

	captures := rules.FindCaptures(board, move, selfCell)
	if len(captures) > 0 {
		pairs := len(captures) / 2
		score += 10.0 * float64(pairs)
		if state.CapturedBy(player)+len(captures) >= rules.CaptureWinStones() {
			score += 100.0
		}
	}
	return score
}

// evaluateState is the leaf evaluation: terminal positions map to the
// win score, everything else to the gap between the best placement
// available to each side. This is the only full-board scan in the search.
func evaluateState(state GameState, rules Rules, player PlayerColor) float64 {
	switch state.Status {
	case StatusDraw:
		return 0.0
	case StatusBlackWon:
		if player == PlayerBlack {
			return winScore
		}
		return -winScore
	case StatusWhiteWon:
		if player == PlayerWhite {
			return winScore
		}
		return -winScore
	}

	bestSelf := illegalScore
	bestOpp := illegalScore
	opponent := otherPlayer(player)
	size := state.Board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			move := Move{X: x, Y: y}
			if scoreSelf := moveHeuristic(state, rules, player, move); scoreSelf > bestSelf {
				bestSelf = scoreSelf
			}
			if scoreOpp := moveHeuristic(state, rules, opponent, move); scoreOpp > bestOpp {
				bestOpp = scoreOpp
			}
		}
	}
	if bestSelf == illegalScore {
		bestSelf = 0.0
	}
	if bestOpp == illegalScore {
		bestOpp = 0.0
	}
	return bestSelf - bestOpp
}

func hasStone(board Board) bool {
	size := board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if board.At(x, y) != CellEmpty {
				return true
			}
		}
	}
	return false
}
