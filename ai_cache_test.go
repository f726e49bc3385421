package main

import "testing"

func keyWithHash(hash uint64) StateKey {
	return StateKey{Hash: hash, BoardSize: 9, Status: StatusRunning, ToMove: PlayerBlack}
}

func TestStoreTTDepthMonotonic(t *testing.T) {
	cache := NewSearchCache(100)
	key := keyWithHash(1)
	cache.StoreTT(key, TTEntry{Value: 5.0, Depth: 3, BestMove: Move{X: 1, Y: 1}, HasBestMove: true})

	// A shallower result must not clobber the deeper one.
	cache.StoreTT(key, TTEntry{Value: -7.0, Depth: 2})
	entry, ok := cache.ProbeTT(key)
	if !ok {
		t.Fatalf("entry missing")
	}
	if entry.Value != 5.0 || entry.Depth != 3 {
		t.Fatalf("shallow store overwrote deeper entry: %+v", entry)
	}

	// Same depth overwrites, deeper overwrites.
	cache.StoreTT(key, TTEntry{Value: 6.0, Depth: 3})
	if entry, _ := cache.ProbeTT(key); entry.Value != 6.0 {
		t.Fatalf("same-depth store must overwrite, got %+v", entry)
	}
	cache.StoreTT(key, TTEntry{Value: 9.0, Depth: 5})
	if entry, _ := cache.ProbeTT(key); entry.Value != 9.0 || entry.Depth != 5 {
		t.Fatalf("deeper store must overwrite, got %+v", entry)
	}
}

func TestStoreTTCapacityFlush(t *testing.T) {
	cache := NewSearchCache(2)
	cache.StoreTT(keyWithHash(1), TTEntry{Value: 1.0, Depth: 1})
	cache.StoreTT(keyWithHash(2), TTEntry{Value: 2.0, Depth: 1})
	if cache.Sizes().TT != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Sizes().TT)
	}

	// The third insert flushes the whole table rather than evicting one.
	cache.StoreTT(keyWithHash(3), TTEntry{Value: 3.0, Depth: 1})
	if cache.Sizes().TT != 1 {
		t.Fatalf("expected full flush then insert, got %d entries", cache.Sizes().TT)
	}
	if _, ok := cache.ProbeTT(keyWithHash(1)); ok {
		t.Fatalf("old entry survived the flush")
	}
	if _, ok := cache.ProbeTT(keyWithHash(3)); !ok {
		t.Fatalf("new entry missing after flush")
	}
}

func TestRerootPrunesUnreachable(t *testing.T) {
	cache := NewSearchCache(100)
	root := keyWithHash(1)
	child := keyWithHash(2)
	grandchild := keyWithHash(3)
	orphan := keyWithHash(4)

	cache.AddEdge(root, child)
	cache.AddEdge(child, grandchild)
	for _, key := range []StateKey{root, child, grandchild, orphan} {
		cache.StoreTT(key, TTEntry{Value: 1.0, Depth: 1})
		cache.StoreMove(moveKeyFor(key, Move{X: 0, Y: 0}, 1), 1.0)
		cache.StoreImmediateWin(ImmediateWinKey{State: key, Player: PlayerBlack}, false)
		cache.StoreAnyImmediateWin(ImmediateWinStateKey{State: key, Player: PlayerBlack}, winMove{})
		cache.StoreDepthScores(DepthKey{State: key, Depth: 1}, []float64{0})
	}

	cache.Reroot(child)

	for _, key := range []StateKey{child, grandchild} {
		if _, ok := cache.ProbeTT(key); !ok {
			t.Fatalf("reachable entry was pruned")
		}
	}
	for _, key := range []StateKey{root, orphan} {
		if _, ok := cache.ProbeTT(key); ok {
			t.Fatalf("unreachable TT entry survived reroot")
		}
		if _, ok := cache.ProbeMove(moveKeyFor(key, Move{X: 0, Y: 0}, 1)); ok {
			t.Fatalf("unreachable move entry survived reroot")
		}
		if _, ok := cache.ProbeDepthScores(DepthKey{State: key, Depth: 1}); ok {
			t.Fatalf("unreachable depth memo survived reroot")
		}
	}
}

func TestRerootKeepsCycleSafe(t *testing.T) {
	cache := NewSearchCache(100)
	a := keyWithHash(1)
	b := keyWithHash(2)
	cache.AddEdge(a, b)
	cache.AddEdge(b, a)
	cache.StoreTT(a, TTEntry{Depth: 1})
	cache.StoreTT(b, TTEntry{Depth: 1})

	// Must terminate and keep both.
	cache.Reroot(a)
	if cache.Sizes().TT != 2 {
		t.Fatalf("cycle members must survive, got %d entries", cache.Sizes().TT)
	}
}

func TestFlushClearsEverything(t *testing.T) {
	cache := NewSearchCache(100)
	key := keyWithHash(1)
	cache.StoreTT(key, TTEntry{Depth: 1})
	cache.StoreMove(moveKeyFor(key, Move{X: 1, Y: 2}, 3), 4.0)
	cache.AddEdge(key, keyWithHash(2))
	cache.Flush()
	if cache.Size() != 0 {
		t.Fatalf("flush left %d entries", cache.Size())
	}
}

func TestDepthMemoCapacityFlush(t *testing.T) {
	cache := NewSearchCache(2)
	cache.StoreDepthScores(DepthKey{State: keyWithHash(1), Depth: 1}, []float64{1})
	cache.StoreDepthScores(DepthKey{State: keyWithHash(2), Depth: 1}, []float64{2})
	cache.StoreDepthScores(DepthKey{State: keyWithHash(3), Depth: 1}, []float64{3})
	if cache.Sizes().DepthMemo != 1 {
		t.Fatalf("expected memo flush then insert, got %d", cache.Sizes().DepthMemo)
	}
}
