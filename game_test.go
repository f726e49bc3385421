package main

import (
	"testing"
	"time"
)

func humanGame(size int) Game {
	settings := testSettings(size)
	settings.BlackKind = PlayerHuman
	settings.WhiteKind = PlayerHuman
	game := NewGame(settings, nil, nil)
	game.Start()
	return game
}

// Plays moves alternating from the current side to move, failing the test
// on the first rejection.
func playMoves(t *testing.T, game *Game, moves []Move) {
	t.Helper()
	for _, move := range moves {
		if ok, reason := game.TryApplyMove(move); !ok {
			t.Fatalf("move (%d,%d) rejected: %s", move.X, move.Y, reason)
		}
	}
}

func TestTryApplyMoveRejectsWhenNotRunning(t *testing.T) {
	settings := testSettings(9)
	settings.BlackKind = PlayerHuman
	settings.WhiteKind = PlayerHuman
	game := NewGame(settings, nil, nil)
	if ok, _ := game.TryApplyMove(Move{X: 4, Y: 4}); ok {
		t.Fatalf("moves must be rejected before Start")
	}
}

func TestTryApplyMoveFlipsTurnAndRecordsHistory(t *testing.T) {
	game := humanGame(9)
	playMoves(t, &game, []Move{{X: 4, Y: 4}, {X: 5, Y: 5}})

	state := game.State()
	if state.ToMove != PlayerBlack {
		t.Fatalf("after two moves black is to move again, got %v", state.ToMove)
	}
	entries := game.History().All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].Player != PlayerBlack || entries[1].Player != PlayerWhite {
		t.Fatalf("history players out of order")
	}
	if entries[0].Index != 0 || entries[1].Index != 1 {
		t.Fatalf("history indices must be sequential")
	}
}

func TestTryApplyMoveResolvesCapture(t *testing.T) {
	game := humanGame(9)
	// Black flanks the white pair on row 0: B W W B.
	playMoves(t, &game, []Move{
		{X: 0, Y: 0}, {X: 1, Y: 0},
		{X: 7, Y: 7}, {X: 2, Y: 0},
		{X: 3, Y: 0},
	})

	state := game.State()
	if state.CapturedBlack != 2 {
		t.Fatalf("expected 2 captured stones for black, got %d", state.CapturedBlack)
	}
	if state.Board.At(1, 0) != CellEmpty || state.Board.At(2, 0) != CellEmpty {
		t.Fatalf("captured stones must be removed from the board")
	}
	entries := game.History().All()
	last := entries[len(entries)-1]
	if last.CapturedCount != 2 || len(last.CapturedPositions) != 2 {
		t.Fatalf("capture must be recorded in history, got count %d", last.CapturedCount)
	}
}

func TestCaptureCountWin(t *testing.T) {
	settings := testSettings(9)
	settings.BlackKind = PlayerHuman
	settings.WhiteKind = PlayerHuman
	settings.CaptureWinStones = 2
	game := NewGame(settings, nil, nil)
	game.Start()
	playMoves(t, &game, []Move{
		{X: 0, Y: 0}, {X: 1, Y: 0},
		{X: 7, Y: 7}, {X: 2, Y: 0},
		{X: 3, Y: 0},
	})

	state := game.State()
	if state.Status != StatusBlackWon {
		t.Fatalf("reaching the capture threshold must win, got %v", state.Status)
	}
	if state.WinningLine != nil {
		t.Fatalf("a capture win carries no winning line")
	}
}

func TestAlignmentWinRecordsLine(t *testing.T) {
	game := humanGame(9)
	playMoves(t, &game, []Move{
		{X: 0, Y: 0}, {X: 0, Y: 8},
		{X: 1, Y: 0}, {X: 1, Y: 8},
		{X: 2, Y: 0}, {X: 2, Y: 8},
		{X: 3, Y: 0}, {X: 3, Y: 8},
		{X: 4, Y: 0},
	})

	state := game.State()
	if state.Status != StatusBlackWon {
		t.Fatalf("five in a row must win, got %v", state.Status)
	}
	if len(state.WinningLine) < 5 {
		t.Fatalf("winning line must hold the alignment, got %d cells", len(state.WinningLine))
	}
}

func TestAlignmentBreakableByCaptureContinues(t *testing.T) {
	game := humanGame(9)
	state := game.State()
	// Black four on row 2, about to complete at (6,2). A black stone at
	// (2,3) next to white (2,4) lets white capture (2,2)(2,3) by playing
	// (2,1), breaking the line.
	state.Board.Set(2, 2, CellBlack)
	state.Board.Set(3, 2, CellBlack)
	state.Board.Set(4, 2, CellBlack)
	state.Board.Set(5, 2, CellBlack)
	state.Board.Set(2, 3, CellBlack)
	state.Board.Set(2, 4, CellWhite)
	game.state = state
	game.state.ToMove = PlayerBlack

	if ok, reason := game.TryApplyMove(Move{X: 6, Y: 2}); !ok {
		t.Fatalf("completing move rejected: %s", reason)
	}
	after := game.State()
	if after.Status != StatusRunning {
		t.Fatalf("a breakable alignment must not end the game, got %v", after.Status)
	}
	if after.ToMove != PlayerWhite {
		t.Fatalf("turn must pass to white")
	}
}

func TestTickAppliesPendingHumanMove(t *testing.T) {
	game := humanGame(9)
	if !game.SubmitHumanMove(Move{X: 4, Y: 4}) {
		t.Fatalf("submit for the side to move must succeed")
	}
	if !game.Tick(false, nil) {
		t.Fatalf("tick must commit the pending move")
	}
	state := game.State()
	if state.Board.At(4, 4) != CellBlack {
		t.Fatalf("pending move was not applied")
	}
	if state.ToMove != PlayerWhite {
		t.Fatalf("turn must pass after the pending move")
	}
}

func TestSubmitHumanMoveRejectedForAISeat(t *testing.T) {
	settings := testSettings(9)
	settings.BlackKind = PlayerAI
	settings.WhiteKind = PlayerHuman
	settings.AiMoveDelayMs = 0
	game := NewGame(settings, nil, nil)
	game.Start()
	if game.SubmitHumanMove(Move{X: 4, Y: 4}) {
		t.Fatalf("human submission must be rejected while the AI is to move")
	}
}

func TestTickDrivesAIMove(t *testing.T) {
	settings := testSettings(9)
	settings.BlackKind = PlayerAI
	settings.WhiteKind = PlayerHuman
	settings.AiMoveDelayMs = 0
	store := NewConfigStore(testConfig())
	game := NewGame(settings, store, nil)
	game.Start()

	deadline := time.Now().Add(10 * time.Second)
	for !game.Tick(false, nil) {
		if time.Now().After(deadline) {
			t.Fatalf("AI did not move in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	state := game.State()
	if state.ToMove != PlayerWhite {
		t.Fatalf("after the AI move white is to move, got %v", state.ToMove)
	}
	entries := game.History().All()
	if len(entries) != 1 || !entries[0].IsAi {
		t.Fatalf("AI move must be recorded as such")
	}
}

func TestResetClearsStateAndHistory(t *testing.T) {
	game := humanGame(9)
	playMoves(t, &game, []Move{{X: 4, Y: 4}, {X: 5, Y: 5}})
	game.Reset(game.Settings())

	state := game.State()
	if state.Status != StatusNotStarted {
		t.Fatalf("reset must return to the not started status, got %v", state.Status)
	}
	if state.Board.CountEmpty() != 81 {
		t.Fatalf("reset must clear the board")
	}
	if game.History().Size() != 0 {
		t.Fatalf("reset must clear the history")
	}
}
