package main

import (
	"testing"
	"time"
)

func testConfig() Config {
	config := DefaultConfig()
	config.AiDepth = 2
	return config
}

func TestChooseMoveDeterministic(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(4, 4, CellWhite)
	state.Board.Set(4, 5, CellBlack)
	state.ToMove = PlayerBlack

	first := NewAIPlayer(NewSearchCache(0), 0, nil)
	second := NewAIPlayer(NewSearchCache(0), 0, nil)
	moveA := first.ChooseMove(state.Clone(), rules, testConfig())
	moveB := second.ChooseMove(state.Clone(), rules, testConfig())
	if !moveA.Equals(moveB) {
		t.Fatalf("identical inputs chose different moves: (%d,%d) vs (%d,%d)", moveA.X, moveA.Y, moveB.X, moveB.Y)
	}
}

func TestChooseMoveEmptyBoardPlaysCenter(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)

	agent := NewAIPlayer(NewSearchCache(0), 0, nil)
	move := agent.ChooseMove(state, rules, testConfig())
	if !move.Equals(Move{X: 4, Y: 4}) {
		t.Fatalf("empty board must play the center, got (%d,%d)", move.X, move.Y)
	}
}

func TestStartThinkingProducesLegalMove(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(4, 4, CellBlack)
	state.ToMove = PlayerWhite

	agent := NewAIPlayer(NewSearchCache(0), 0, nil)
	agent.StartThinking(state.Clone(), rules, testConfig(), false)

	deadline := time.Now().Add(10 * time.Second)
	for !agent.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("worker did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	move := agent.TakeMove()
	if ok, _ := rules.IsLegal(state, move, PlayerWhite); !ok {
		t.Fatalf("worker produced an illegal move (%d,%d)", move.X, move.Y)
	}
	if agent.HasMoveReady() {
		t.Fatalf("TakeMove must clear the ready flag")
	}
}

func TestStartThinkingIsNoOpWhileThinking(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(6, 6, CellBlack)
	state.ToMove = PlayerWhite

	agent := NewAIPlayer(NewSearchCache(0), 50, nil)
	config := testConfig()
	config.AiDepth = 3
	agent.StartThinking(state.Clone(), rules, config, false)
	first := agent.workerDone
	agent.StartThinking(state.Clone(), rules, config, false)
	if agent.workerDone != first {
		t.Fatalf("second StartThinking must not spawn a new worker")
	}
	agent.joinWorker()
}

func TestOnMoveAppliedReroots(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(4, 4, CellBlack)
	state.ToMove = PlayerWhite

	agent := NewAIPlayer(NewSearchCache(0), 0, nil)
	move := agent.ChooseMove(state.Clone(), rules, testConfig())
	if agent.CacheSize() == 0 {
		t.Fatalf("search must populate the cache")
	}

	next := state.Clone()
	if !applySearchMove(&next, rules, move, PlayerWhite) {
		t.Fatalf("chosen move rejected")
	}
	agent.OnMoveApplied(next)

	// Everything still cached must be reachable from the new root, so a
	// rescore from the committed position matches a cold engine.
	warm := agent.ChooseMove(next.Clone(), rules, testConfig())
	cold := NewAIPlayer(NewSearchCache(0), 0, nil).ChooseMove(next.Clone(), rules, testConfig())
	if !warm.Equals(cold) {
		t.Fatalf("rerooted cache diverges from cold search: (%d,%d) vs (%d,%d)", warm.X, warm.Y, cold.X, cold.Y)
	}
}

func TestBestMoveFromScoresFallback(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(0, 0, CellBlack)

	scores := make([]float64, 81)
	for i := range scores {
		scores[i] = illegalScore
	}
	move, _ := bestMoveFromScores(state, rules, scores)
	if !move.Equals(Move{X: 1, Y: 0}) {
		t.Fatalf("fallback must pick the first legal cell in scan order, got (%d,%d)", move.X, move.Y)
	}
}

func TestBestMoveFromScoresSkipsIllegalCells(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(2, 2, CellWhite)

	scores := make([]float64, 81)
	for i := range scores {
		scores[i] = illegalScore
	}
	// The occupied cell carries a stale high score; it must be skipped.
	scores[2*9+2] = 500.0
	scores[3*9+3] = 7.0
	move, score := bestMoveFromScores(state, rules, scores)
	if !move.Equals(Move{X: 3, Y: 3}) || score != 7.0 {
		t.Fatalf("expected (3,3) with 7.0, got (%d,%d) with %v", move.X, move.Y, score)
	}
}

func TestSnapshotRoundTripThroughAgent(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := runningState(settings)
	state.Board.Set(4, 4, CellBlack)
	state.ToMove = PlayerWhite

	agent := NewAIPlayer(NewSearchCache(0), 0, nil)
	agent.ChooseMove(state.Clone(), rules, testConfig())
	snapshot := agent.SnapshotCache()
	if len(snapshot.TT) == 0 && len(snapshot.DepthMemo) == 0 {
		t.Fatalf("snapshot of a searched cache is empty")
	}

	restored := NewAIPlayer(NewSearchCache(0), 0, nil)
	restored.RestoreCache(snapshot)
	if restored.CacheSize() == 0 {
		t.Fatalf("restore left the cache empty")
	}
}
