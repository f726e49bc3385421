package main

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const ghostUpdateInterval = 50 * time.Millisecond

// AIPlayer owns one search cache and at most one background worker.
// cacheMu is coarse: it is held for the whole of a ScoreBoard call and
// for rerooting, so the tables are never observed mid-search. The move
// and ghost locks are fine-grained and only guard their own fields.
type AIPlayer struct {
	cache   *SearchCache
	cacheMu sync.Mutex
	delayMs int
	logger  *zap.SugaredLogger

	thinking  atomic.Bool
	moveReady atomic.Bool

	moveMu    sync.Mutex
	readyMove Move

	ghostMu     sync.Mutex
	ghostBoard  Board
	ghostAt     time.Time
	ghostActive atomic.Bool

	workerDone chan struct{}
}

func NewAIPlayer(cache *SearchCache, delayMs int, logger *zap.SugaredLogger) *AIPlayer {
	if cache == nil {
		cache = NewSearchCache(0)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AIPlayer{cache: cache, delayMs: delayMs, logger: logger}
}

func searchSettings(config Config, player PlayerColor) ScoreSettings {
	return ScoreSettings{
		Player:        player,
		Depth:         config.AiDepth,
		TimeoutMs:     config.AiTimeoutMs,
		TopCandidates: config.AiTopCandidates,
		QuickWinExit:  config.AiQuickWinExit,
	}
}

// ChooseMove runs the full search synchronously and returns the best
// legal move. The artificial delay keeps instant replies from feeling
// jarring in the UI; it elapses before the search starts.
func (p *AIPlayer) ChooseMove(state GameState, rules Rules, config Config) Move {
	if p.delayMs > 0 {
		time.Sleep(time.Duration(p.delayMs) * time.Millisecond)
	}
	settings := searchSettings(config, state.ToMove)
	start := time.Now()

	p.cacheMu.Lock()
	scores := ScoreBoard(state, rules, settings, p.cache)
	p.cacheMu.Unlock()

	move, score := bestMoveFromScores(state, rules, scores)
	p.logger.Debugw("search finished",
		"player", state.ToMove.String(),
		"move_x", move.X,
		"move_y", move.Y,
		"score", score,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	move.Depth = settings.Depth
	return move
}

// StartThinking launches the background worker. Calling it while a
// worker is running is a no-op; a finished worker is joined before the
// next one starts, so there is never more than one.
func (p *AIPlayer) StartThinking(state GameState, rules Rules, config Config, ghostEnabled bool) {
	if p.thinking.Load() {
		return
	}
	p.joinWorker()
	p.thinking.Store(true)
	p.moveReady.Store(false)

	settings := searchSettings(config, state.ToMove)
	if ghostEnabled {
		settings.OnGhostUpdate = p.publishGhost
	}
	delay := p.delayMs
	done := make(chan struct{})
	p.workerDone = done

	go func() {
		defer close(done)
		defer p.thinking.Store(false)
		if delay > 0 {
			time.Sleep(time.Duration(delay) * time.Millisecond)
		}
		start := time.Now()

		p.cacheMu.Lock()
		scores := ScoreBoard(state, rules, settings, p.cache)
		p.cacheMu.Unlock()

		move, score := bestMoveFromScores(state, rules, scores)
		move.Depth = settings.Depth
		p.logger.Debugw("background search finished",
			"player", state.ToMove.String(),
			"move_x", move.X,
			"move_y", move.Y,
			"score", score,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		p.clearGhost()
		p.moveMu.Lock()
		p.readyMove = move
		p.moveMu.Unlock()
		p.moveReady.Store(true)
	}()
}

func (p *AIPlayer) IsThinking() bool {
	return p.thinking.Load()
}

func (p *AIPlayer) HasMoveReady() bool {
	return p.moveReady.Load()
}

func (p *AIPlayer) TakeMove() Move {
	p.moveMu.Lock()
	move := p.readyMove
	p.moveMu.Unlock()
	p.moveReady.Store(false)
	return move
}

// OnMoveApplied joins any running worker, then prunes the cache down to
// what is still reachable from the committed position.
func (p *AIPlayer) OnMoveApplied(state GameState) {
	p.joinWorker()
	p.moveReady.Store(false)
	p.clearGhost()

	p.cacheMu.Lock()
	p.cache.Reroot(stateKeyFor(state, state.ToMove))
	p.cacheMu.Unlock()
}

func (p *AIPlayer) ResetForConfigChange() {
	p.joinWorker()
	p.moveReady.Store(false)
	p.clearGhost()

	p.cacheMu.Lock()
	p.cache.Flush()
	p.cacheMu.Unlock()
}

func (p *AIPlayer) HasGhostBoard() bool {
	return p.ghostActive.Load()
}

func (p *AIPlayer) GhostBoardCopy() Board {
	p.ghostMu.Lock()
	defer p.ghostMu.Unlock()
	return p.ghostBoard.Clone()
}

func (p *AIPlayer) CacheSizes() CacheSizes {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	return p.cache.Sizes()
}

func (p *AIPlayer) CacheSize() int {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	return p.cache.Size()
}

func (p *AIPlayer) SnapshotCache() cacheSnapshot {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	return p.cache.Snapshot()
}

func (p *AIPlayer) RestoreCache(snapshot cacheSnapshot) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache.Restore(snapshot)
}

func (p *AIPlayer) joinWorker() {
	if p.workerDone != nil {
		<-p.workerDone
		p.workerDone = nil
	}
}

// publishGhost runs on the worker goroutine for every expanded node;
// the interval check keeps it from flooding the ghost feed.
func (p *AIPlayer) publishGhost(state GameState) {
	p.ghostMu.Lock()
	if time.Since(p.ghostAt) < ghostUpdateInterval && p.ghostActive.Load() {
		p.ghostMu.Unlock()
		return
	}
	p.ghostBoard = state.Board.Clone()
	p.ghostAt = time.Now()
	p.ghostMu.Unlock()
	p.ghostActive.Store(true)
}

func (p *AIPlayer) clearGhost() {
	p.ghostActive.Store(false)
}

// bestMoveFromScores picks the highest-scored legal cell in scan order,
// falling back to the first legal cell when every score is the illegal
// sentinel. Ties keep the earlier cell, which makes the choice
// deterministic for equal inputs.
func bestMoveFromScores(state GameState, rules Rules, scores []float64) (Move, float64) {
	size := state.Board.Size()
	best := Move{X: -1, Y: -1}
	bestScore := float64(illegalScore)
	hasBest := false
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			score := scores[y*size+x]
			if score == illegalScore {
				continue
			}
			move := Move{X: x, Y: y}
			if ok, _ := rules.IsLegal(state, move, state.ToMove); !ok {
				continue
			}
			if !hasBest || score > bestScore {
				best = move
				bestScore = score
				hasBest = true
			}
		}
	}
	if hasBest {
		return best, bestScore
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			move := Move{X: x, Y: y}
			if ok, _ := rules.IsLegal(state, move, state.ToMove); ok {
				return move, 0.0
			}
		}
	}
	return Move{X: -1, Y: -1}, 0.0
}
