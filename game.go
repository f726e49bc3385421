package main

import (
	"time"

	"go.uber.org/zap"
)

type Game struct {
	settings    GameSettings
	rules       Rules
	state       GameState
	history     MoveHistory
	blackSeat   *Player
	whiteSeat   *Player
	configStore *ConfigStore
	logger      *zap.SugaredLogger
	turnStart   time.Time
}

func NewGame(settings GameSettings, configStore *ConfigStore, logger *zap.SugaredLogger) Game {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if configStore == nil {
		configStore = NewConfigStore(DefaultConfig())
	}
	g := Game{configStore: configStore, logger: logger}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.joinSeats()
	g.settings = settings
	g.rules = NewRules(settings)
	g.state.Reset(settings)
	g.history.Clear()
	g.createSeats()
	g.turnStart = time.Now()
	g.logger.Infow("game reset",
		"board_size", settings.BoardSize,
		"black", seatLabel(settings.BlackKind),
		"white", seatLabel(settings.WhiteKind),
	)
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
		g.syncAgentsToCurrentState()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// TryApplyMove commits a move for the side to move. Resolution order:
// capture-count win, alignment win, draw, otherwise the turn passes.
// An alignment does not win while the opponent can capture out of the
// line; in that case the game simply continues.
func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	seat := g.currentSeat()
	isAiMove := seat != nil && !seat.IsHuman()
	ok, reason := g.rules.IsLegalDefault(g.state, move)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	g.state.LastMessage = ""
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	mover := g.state.ToMove
	cell := CellFromPlayer(mover)
	g.state.Board.Set(move.X, move.Y, cell)
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.state.WinningLine = nil

	entry := HistoryEntry{Move: move, Player: mover, ElapsedMs: elapsedMs, IsAi: isAiMove, Depth: move.Depth}
	entry.CapturedPositions = g.rules.FindCaptures(g.state.Board, move, cell)
	entry.CapturedCount = len(entry.CapturedPositions)
	for _, captured := range entry.CapturedPositions {
		g.state.Board.Remove(captured.X, captured.Y)
	}
	if entry.CapturedCount > 0 {
		if mover == PlayerBlack {
			g.state.CapturedBlack += entry.CapturedCount
		} else {
			g.state.CapturedWhite += entry.CapturedCount
		}
	}
	g.logger.Debugw("move played",
		"player", mover.String(),
		"x", move.X,
		"y", move.Y,
		"captured", entry.CapturedCount,
		"elapsed_ms", elapsedMs,
		"ai", isAiMove,
	)

	finish := func() {
		entry.Status = g.state.Status
		g.history.Push(entry)
		g.syncAgentsToCurrentState()
	}

	if g.state.CapturedBy(mover) >= g.settings.CaptureWinStones {
		g.setWinner(mover, "capture")
		finish()
		return true, ""
	}

	opponent := otherPlayer(mover)
	if g.rules.IsWin(g.state.Board, move) {
		if !g.rules.OpponentCanBreakAlignmentByCapture(g.state, opponent) {
			if line, ok := g.rules.FindAlignmentLine(g.state.Board, move); ok {
				g.state.WinningLine = line
			}
			g.setWinner(mover, "alignment")
			finish()
			return true, ""
		}
		g.logger.Debugw("alignment can still be broken by capture, game continues",
			"player", mover.String())
	}
	if g.rules.IsDraw(g.state.Board) {
		g.state.Status = StatusDraw
		g.logger.Infow("game drawn")
		finish()
		return true, ""
	}

	g.state.ToMove = opponent
	g.turnStart = time.Now()
	finish()
	return true, ""
}

// Tick advances AI turns: collects a ready move, or starts the worker.
// Returns true when a move was committed.
func (g *Game) Tick(ghostEnabled bool, ghostSink func(ghostPayload)) bool {
	if g.state.Status != StatusRunning {
		return false
	}
	seat := g.currentSeat()
	if seat == nil {
		return false
	}
	if seat.IsHuman() {
		if seat.HasPendingMove() {
			move := seat.TakePendingMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}

	agent := seat.Agent
	if agent.HasMoveReady() {
		move := agent.TakeMove()
		applied, _ := g.TryApplyMove(move)
		return applied
	}
	if agent.IsThinking() {
		if ghostEnabled && ghostSink != nil && agent.HasGhostBoard() {
			ghostSink(ghostPayload{
				Mode:      "preview_board",
				Positions: ghostPositionsFromBoard(agent.GhostBoardCopy()),
				Active:    true,
			})
		}
		return false
	}
	agent.StartThinking(g.state.Clone(), g.rules, g.configStore.Get(), ghostEnabled && ghostSink != nil)
	return false
}

func (g *Game) SubmitHumanMove(move Move) bool {
	seat := g.currentSeat()
	if seat == nil || !seat.IsHuman() {
		return false
	}
	seat.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	seat := g.currentSeat()
	return seat != nil && seat.IsHuman()
}

func (g *Game) AiThinking() bool {
	seat := g.currentSeat()
	return seat != nil && !seat.IsHuman() && seat.Agent.IsThinking()
}

func (g *Game) GhostBoard() (Board, bool) {
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat != nil && !seat.IsHuman() && seat.Agent.HasGhostBoard() {
			return seat.Agent.GhostBoardCopy(), true
		}
	}
	return Board{}, false
}

func (g *Game) ResetForConfigChange() {
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat != nil && !seat.IsHuman() {
			seat.Agent.ResetForConfigChange()
		}
	}
}

func (g *Game) AgentCacheSizes() CacheSizes {
	total := CacheSizes{}
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat == nil || seat.IsHuman() {
			continue
		}
		sizes := seat.Agent.CacheSizes()
		total.TT += sizes.TT
		total.MoveCache += sizes.MoveCache
		total.ImmediateWin += sizes.ImmediateWin
		total.ImmediateAny += sizes.ImmediateAny
		total.DepthMemo += sizes.DepthMemo
		total.Edges += sizes.Edges
	}
	return total
}

func (g *Game) Agents() []*AIPlayer {
	agents := []*AIPlayer{}
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat != nil && !seat.IsHuman() {
			agents = append(agents, seat.Agent)
		}
	}
	return agents
}

func (g *Game) currentSeat() *Player {
	if g.state.ToMove == PlayerBlack {
		return g.blackSeat
	}
	return g.whiteSeat
}

func (g *Game) createSeats() {
	config := g.configStore.Get()
	newSeat := func(kind PlayerKind) *Player {
		if kind == PlayerHuman {
			return NewHumanSeat()
		}
		cache := NewSearchCache(config.AiTtMaxEntries)
		return NewAISeat(NewAIPlayer(cache, g.settings.AiMoveDelayMs, g.logger))
	}
	g.blackSeat = newSeat(g.settings.BlackKind)
	g.whiteSeat = newSeat(g.settings.WhiteKind)
}

func (g *Game) syncAgentsToCurrentState() {
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat != nil && !seat.IsHuman() {
			seat.Agent.OnMoveApplied(g.state)
		}
	}
}

func (g *Game) joinSeats() {
	for _, seat := range []*Player{g.blackSeat, g.whiteSeat} {
		if seat != nil && !seat.IsHuman() {
			seat.Agent.joinWorker()
		}
	}
}

func (g *Game) setWinner(player PlayerColor, way string) {
	if player == PlayerBlack {
		g.state.Status = StatusBlackWon
	} else {
		g.state.Status = StatusWhiteWon
	}
	g.logger.Infow("game won", "player", player.String(), "by", way)
}

func seatLabel(kind PlayerKind) string {
	if kind == PlayerAI {
		return "ai"
	}
	return "human"
}
