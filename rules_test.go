package main

import "testing"

func testSettings(size int) GameSettings {
	settings := DefaultGameSettings()
	settings.BoardSize = size
	settings.ForbidDoubleThreeBlack = false
	settings.ForbidDoubleThreeWhite = false
	return settings
}

func TestFindCapturesRemovesExactlyTwoStones(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	board.Set(0, 0, CellBlack)
	board.Set(1, 0, CellWhite)
	board.Set(2, 0, CellWhite)
	board.Set(3, 0, CellBlack)

	captures := rules.FindCaptures(board, Move{X: 3, Y: 0}, CellBlack)
	if len(captures) != 2 {
		t.Fatalf("expected 2 captured stones, got %d", len(captures))
	}
	want := map[Move]bool{{X: 1, Y: 0}: true, {X: 2, Y: 0}: true}
	for _, captured := range captures {
		if !want[Move{X: captured.X, Y: captured.Y}] {
			t.Fatalf("unexpected capture at (%d,%d)", captured.X, captured.Y)
		}
	}
}

func TestFindCapturesNeedsExactPair(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	// Three in a row is not capturable.
	board.Set(0, 0, CellBlack)
	board.Set(1, 0, CellWhite)
	board.Set(2, 0, CellWhite)
	board.Set(3, 0, CellWhite)
	board.Set(4, 0, CellBlack)

	if captures := rules.FindCaptures(board, Move{X: 4, Y: 0}, CellBlack); len(captures) != 0 {
		t.Fatalf("expected no captures for a run of three, got %d", len(captures))
	}
}

func TestIsWinDetectsFiveInARow(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	for x := 2; x <= 6; x++ {
		board.Set(x, 4, CellWhite)
	}
	if !rules.IsWin(board, Move{X: 4, Y: 4}) {
		t.Fatalf("expected horizontal five to win")
	}
	if rules.IsWin(board, Move{X: 4, Y: 5}) {
		t.Fatalf("empty cell must not win")
	}
}

func TestIsWinDiagonal(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	for i := 0; i < 5; i++ {
		board.Set(2+i, 2+i, CellBlack)
	}
	if !rules.IsWin(board, Move{X: 4, Y: 4}) {
		t.Fatalf("expected diagonal five to win")
	}
}

func TestIsLegalRejectsOccupiedAndOutOfBounds(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Status = StatusRunning
	state.Board.Set(4, 4, CellBlack)

	if ok, reason := rules.IsLegal(state, Move{X: 4, Y: 4}, PlayerWhite); ok || reason != "occupied" {
		t.Fatalf("expected occupied rejection, got ok=%v reason=%q", ok, reason)
	}
	if ok, reason := rules.IsLegal(state, Move{X: 9, Y: 0}, PlayerWhite); ok || reason != "out of bounds" {
		t.Fatalf("expected bounds rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestDoubleThreeForbidden(t *testing.T) {
	settings := testSettings(13)
	settings.ForbidDoubleThreeBlack = true
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Status = StatusRunning
	// Placing at (6,6) would complete two open threes at once.
	state.Board.Set(4, 6, CellBlack)
	state.Board.Set(5, 6, CellBlack)
	state.Board.Set(6, 4, CellBlack)
	state.Board.Set(6, 5, CellBlack)

	if ok, reason := rules.IsLegal(state, Move{X: 6, Y: 6}, PlayerBlack); ok || reason != "forbidden double three" {
		t.Fatalf("expected double-three rejection, got ok=%v reason=%q", ok, reason)
	}
	// White has no double-three restriction by default.
	if ok, _ := rules.IsLegal(state, Move{X: 6, Y: 6}, PlayerWhite); !ok {
		t.Fatalf("white should be allowed to play the same cell")
	}
}

func TestOpponentCanBreakAlignmentByCapture(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Status = StatusRunning
	for x := 2; x <= 6; x++ {
		state.Board.Set(x, 2, CellBlack)
	}
	// White at (2,4) can play (2,1) to capture the (2,2),(2,3) pair and
	// break the line.
	state.Board.Set(2, 3, CellBlack)
	state.Board.Set(2, 4, CellWhite)

	if !rules.OpponentCanBreakAlignmentByCapture(state, PlayerWhite) {
		t.Fatalf("expected white to have a line-breaking capture")
	}

	// Without the capture setup the line stands.
	state.Board.Remove(2, 3)
	state.Board.Remove(2, 4)
	if rules.OpponentCanBreakAlignmentByCapture(state, PlayerWhite) {
		t.Fatalf("expected no line-breaking capture without the pair")
	}
}

func TestFindAlignmentLine(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	for x := 1; x <= 5; x++ {
		board.Set(x, 3, CellWhite)
	}
	line, ok := rules.FindAlignmentLine(board, Move{X: 3, Y: 3})
	if !ok {
		t.Fatalf("expected alignment line")
	}
	if len(line) != 5 {
		t.Fatalf("expected 5 stones in line, got %d", len(line))
	}
}
