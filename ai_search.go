package main

import (
	"math"
	"sort"
	"time"
)

// ScoreSettings carries everything one ScoreBoard call needs. Player is
// the side the scores are from the point of view of.
type ScoreSettings struct {
	Player        PlayerColor
	Depth         int
	TimeoutMs     int
	TopCandidates int
	QuickWinExit  bool
	OnGhostUpdate func(GameState)
}

type searchContext struct {
	rules    Rules
	settings ScoreSettings
	cache    *SearchCache
	start    time.Time
}

// The timeout is advisory: it is checked between expansions, never
// mid-expansion, and a timed-out search keeps whatever it found.
func (ctx *searchContext) timedOut() bool {
	if ctx.settings.TimeoutMs <= 0 {
		return false
	}
	return time.Since(ctx.start) >= time.Duration(ctx.settings.TimeoutMs)*time.Millisecond
}

// applySearchMove plays move for player on state in place, captures
// included, and resolves the resulting status the way the search sees
// it (capture win, then alignment, then draw). The alignment-break rule
// is deliberately not probed here; the full resolution only runs on
// committed game moves.
func applySearchMove(state *GameState, rules Rules, move Move, player PlayerColor) bool {
	if ok, _ := rules.IsLegal(*state, move, player); !ok {
		return false
	}
	cell := CellFromPlayer(player)
	state.Board.Set(move.X, move.Y, cell)
	state.LastMove = move
	state.HasLastMove = true
	state.LastMessage = ""

	captures := rules.FindCaptures(state.Board, move, cell)
	for _, captured := range captures {
		state.Board.Remove(captured.X, captured.Y)
	}
	if len(captures) > 0 {
		if player == PlayerBlack {
			state.CapturedBlack += len(captures)
		} else {
			state.CapturedWhite += len(captures)
		}
	}

	switch {
	case state.CapturedBy(player) >= rules.CaptureWinStones():
		if player == PlayerBlack {
			state.Status = StatusBlackWon
		} else {
			state.Status = StatusWhiteWon
		}
	case rules.IsWin(state.Board, move):
		if player == PlayerBlack {
			state.Status = StatusBlackWon
		} else {
			state.Status = StatusWhiteWon
		}
	case rules.IsDraw(state.Board):
		state.Status = StatusDraw
	default:
		state.Status = StatusRunning
	}
	state.ToMove = otherPlayer(player)
	return true
}

func isImmediateWin(state GameState, rules Rules, move Move, player PlayerColor) bool {
	if ok, _ := rules.IsLegal(state, move, player); !ok {
		return false
	}
	board := state.Board.Clone()
	cell := CellFromPlayer(player)
	board.Set(move.X, move.Y, cell)
	captures := rules.FindCaptures(board, move, cell)
	if state.CapturedBy(player)+len(captures) >= rules.CaptureWinStones() {
		return true
	}
	return rules.IsWin(board, move)
}

func (ctx *searchContext) isImmediateWinCached(state GameState, move Move, player PlayerColor) bool {
	key := ImmediateWinKey{State: stateKeyFor(state, player), X: move.X, Y: move.Y, Player: player}
	if win, ok := ctx.cache.ProbeImmediateWin(key); ok {
		return win
	}
	win := isImmediateWin(state, ctx.rules, move, player)
	ctx.cache.StoreImmediateWin(key, win)
	return win
}

func (ctx *searchContext) hasImmediateWinCached(state GameState, player PlayerColor) bool {
	key := ImmediateWinStateKey{State: stateKeyFor(state, player), Player: player}
	if record, ok := ctx.cache.ProbeAnyImmediateWin(key); ok {
		return record.Found
	}
	for _, move := range collectCandidateMoves(state.Board) {
		if isImmediateWin(state, ctx.rules, move, player) {
			ctx.cache.StoreAnyImmediateWin(key, winMove{Found: true, Move: move})
			return true
		}
	}
	ctx.cache.StoreAnyImmediateWin(key, winMove{})
	return false
}

// orderCandidates sorts the candidate moves by the cheap heuristic,
// best first for the maximizing side, promotes the PV hint to the
// front, and truncates to the beam width.
func (ctx *searchContext) orderCandidates(state GameState, player PlayerColor, maximizing bool, pv *Move) []Move {
	moves := collectCandidateMoves(state.Board)
	type scoredMove struct {
		score float64
		move  Move
	}
	scored := make([]scoredMove, 0, len(moves))
	for _, move := range moves {
		scored = append(scored, scoredMove{moveHeuristic(state, ctx.rules, player, move), move})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if maximizing {
			return scored[i].score > scored[j].score
		}
		return scored[i].score < scored[j].score
	})
	if pv != nil {
		for i := range scored {
			if scored[i].move.Equals(*pv) {
				entry := scored[i]
				copy(scored[1:i+1], scored[:i])
				scored[0] = entry
				break
			}
		}
	}
	limit := ctx.settings.TopCandidates
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	ordered := make([]Move, 0, len(scored))
	for _, entry := range scored {
		ordered = append(ordered, entry.move)
	}
	return ordered
}

func (ctx *searchContext) minimax(state GameState, depth int, currentPlayer PlayerColor, alpha, beta float64) float64 {
	if depth <= 0 || ctx.timedOut() || state.Status != StatusRunning {
		return evaluateState(state, ctx.rules, ctx.settings.Player)
	}

	key := stateKeyFor(state, currentPlayer)
	var pv *Move
	if entry, ok := ctx.cache.ProbeTT(key); ok {
		if entry.Depth >= depth {
			return entry.Value
		}
		if entry.HasBestMove {
			pvMove := entry.BestMove
			pv = &pvMove
		}
	}

	maximizing := currentPlayer == ctx.settings.Player
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	candidates := ctx.orderCandidates(state, currentPlayer, maximizing, pv)
	var bestMove Move
	hasBest := false
	mustBlock := ctx.hasImmediateWinCached(state, otherPlayer(currentPlayer))
	for _, move := range candidates {
		if ctx.timedOut() {
			break
		}
		if ctx.settings.QuickWinExit && ctx.isImmediateWinCached(state, move, currentPlayer) {
			value := winScore
			if !maximizing {
				value = -winScore
			}
			ctx.cache.StoreTT(key, TTEntry{Value: value, Depth: depth, BestMove: move, HasBestMove: true})
			return value
		}
		if mustBlock {
			blockState := state.Clone()
			if !applySearchMove(&blockState, ctx.rules, move, currentPlayer) {
				continue
			}
			if ctx.hasImmediateWinCached(blockState, otherPlayer(currentPlayer)) {
				continue
			}
		}
		value, _ := ctx.evaluateMoveWithCache(state, currentPlayer, move, depth, key, alpha, beta)
		if maximizing {
			if value > best {
				best = value
				bestMove = move
				hasBest = true
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if value < best {
				best = value
				bestMove = move
				hasBest = true
			}
			if best < beta {
				beta = best
			}
		}
		if beta <= alpha {
			break
		}
		if ctx.timedOut() {
			break
		}
	}

	if math.IsInf(best, 0) {
		return 0.0
	}
	ctx.cache.StoreTT(key, TTEntry{Value: best, Depth: depth, BestMove: bestMove, HasBestMove: hasBest})
	return best
}

func (ctx *searchContext) evaluateMoveWithCache(state GameState, player PlayerColor, move Move, depthLeft int, parentKey StateKey, alpha, beta float64) (float64, bool) {
	if ctx.timedOut() {
		return evaluateState(state, ctx.rules, ctx.settings.Player), false
	}
	key := moveKeyFor(parentKey, move, depthLeft)
	if value, ok := ctx.cache.ProbeMove(key); ok {
		return value, true
	}

	score := float64(illegalScore)
	if ok, _ := ctx.rules.IsLegal(state, move, player); ok {
		next := state.Clone()
		if applySearchMove(&next, ctx.rules, move, player) {
			ctx.cache.AddEdge(parentKey, stateKeyFor(next, next.ToMove))
			if ctx.settings.OnGhostUpdate != nil {
				ctx.settings.OnGhostUpdate(next)
			}
			if depthLeft <= 1 || ctx.timedOut() {
				score = evaluateState(next, ctx.rules, ctx.settings.Player)
			} else {
				score = ctx.minimax(next, depthLeft-1, otherPlayer(player), alpha, beta)
			}
		}
	}
	ctx.cache.StoreMove(key, score)
	return score, false
}

// scoreBoardAtDepth scores every candidate root move at a fixed depth.
// Skipped cells keep the illegal sentinel.
func (ctx *searchContext) scoreBoardAtDepth(state GameState, depth int) ([]float64, bool) {
	size := state.Board.Size()
	usedCache := false
	scores := make([]float64, size*size)
	for i := range scores {
		scores[i] = illegalScore
	}
	key := stateKeyFor(state, ctx.settings.Player)
	var pv *Move
	if entry, ok := ctx.cache.ProbeTT(key); ok && entry.HasBestMove {
		pvMove := entry.BestMove
		pv = &pvMove
	}
	candidates := ctx.orderCandidates(state, ctx.settings.Player, true, pv)
	mustBlock := ctx.hasImmediateWinCached(state, otherPlayer(ctx.settings.Player))
	for _, move := range candidates {
		if ctx.timedOut() {
			break
		}
		if ctx.settings.QuickWinExit && ctx.isImmediateWinCached(state, move, ctx.settings.Player) {
			scores[move.Y*size+move.X] = winScore
			return scores, usedCache
		}
		if mustBlock {
			blockState := state.Clone()
			if !applySearchMove(&blockState, ctx.rules, move, ctx.settings.Player) {
				continue
			}
			if ctx.hasImmediateWinCached(blockState, otherPlayer(ctx.settings.Player)) {
				continue
			}
		}
		score, cached := ctx.evaluateMoveWithCache(state, ctx.settings.Player, move, depth, key, math.Inf(-1), math.Inf(1))
		if cached {
			usedCache = true
		}
		scores[move.Y*size+move.X] = score
	}
	return scores, usedCache
}

// ScoreBoard runs iterative deepening from 1 to settings.Depth and
// returns one score per cell for the last completed depth. Cells that
// were never candidates hold the illegal sentinel. The caller owns the
// cache locking; ScoreBoard itself never locks.
func ScoreBoard(state GameState, rules Rules, settings ScoreSettings, cache *SearchCache) []float64 {
	size := state.Board.Size()
	if settings.Depth < 1 {
		settings.Depth = 1
	}
	ctx := &searchContext{rules: rules, settings: settings, cache: cache, start: time.Now()}

	centerOnly := func() []float64 {
		scores := make([]float64, size*size)
		for i := range scores {
			scores[i] = illegalScore
		}
		center := size / 2
		scores[center*size+center] = 0.0
		return scores
	}
	if !hasStone(state.Board) {
		return centerOnly()
	}
	initialCandidates := collectCandidateMoves(state.Board)
	if len(initialCandidates) == 0 {
		return centerOnly()
	}

	rootKey := stateKeyFor(state, settings.Player)
	var scores []float64
	for depth := 1; depth <= settings.Depth; depth++ {
		if ctx.timedOut() {
			break
		}
		if settings.QuickWinExit {
			for _, move := range initialCandidates {
				if ctx.isImmediateWinCached(state, move, settings.Player) {
					winScores := make([]float64, size*size)
					for i := range winScores {
						winScores[i] = illegalScore
					}
					winScores[move.Y*size+move.X] = winScore
					return winScores
				}
			}
		}
		depthKey := DepthKey{State: rootKey, Depth: depth}
		if memo, ok := cache.ProbeDepthScores(depthKey); ok {
			scores = memo
			continue
		}
		depthScores, _ := ctx.scoreBoardAtDepth(state, depth)
		cache.StoreDepthScores(depthKey, depthScores)
		scores = depthScores
	}
	if scores == nil {
		scores, _ = ctx.scoreBoardAtDepth(state, 1)
	}
	return scores
}
