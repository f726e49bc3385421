package main

// TTEntry stores the last completed search result for a position.
// Depth is the depth the value was searched to; a shallower probe can
// reuse the value, a deeper one only reuses BestMove as an ordering hint.
type TTEntry struct {
	Value       float64
	Depth       int
	BestMove    Move
	HasBestMove bool
}

type winMove struct {
	Found bool
	Move  Move
}

// SearchCache holds every table the search cooperates with. It does no
// locking of its own: the owning agent serializes access with its cache
// mutex, including the whole of a ScoreBoard call.
type SearchCache struct {
	tt            map[StateKey]TTEntry
	moveCache     map[MoveCacheKey]float64
	immediateWin  map[ImmediateWinKey]bool
	immediateAny  map[ImmediateWinStateKey]winMove
	depthMemo     map[DepthKey][]float64
	edges         map[StateKey]map[StateKey]struct{}
	ttMaxEntries  int
	memoMaxStates int
}

func NewSearchCache(ttMaxEntries int) *SearchCache {
	if ttMaxEntries <= 0 {
		ttMaxEntries = 200000
	}
	return &SearchCache{
		tt:            make(map[StateKey]TTEntry),
		moveCache:     make(map[MoveCacheKey]float64),
		immediateWin:  make(map[ImmediateWinKey]bool),
		immediateAny:  make(map[ImmediateWinStateKey]winMove),
		depthMemo:     make(map[DepthKey][]float64),
		edges:         make(map[StateKey]map[StateKey]struct{}),
		ttMaxEntries:  ttMaxEntries,
		memoMaxStates: ttMaxEntries,
	}
}

func (c *SearchCache) ProbeTT(key StateKey) (TTEntry, bool) {
	entry, ok := c.tt[key]
	return entry, ok
}

// StoreTT keeps the deepest result seen for a key. A shallower result
// never overwrites a deeper one. When the table is full the whole table
// is flushed rather than evicting piecemeal.
func (c *SearchCache) StoreTT(key StateKey, entry TTEntry) {
	if existing, ok := c.tt[key]; ok {
		if existing.Depth > entry.Depth {
			return
		}
	} else if len(c.tt) >= c.ttMaxEntries {
		c.tt = make(map[StateKey]TTEntry)
	}
	c.tt[key] = entry
}

func (c *SearchCache) ProbeMove(key MoveCacheKey) (float64, bool) {
	value, ok := c.moveCache[key]
	return value, ok
}

func (c *SearchCache) StoreMove(key MoveCacheKey, value float64) {
	c.moveCache[key] = value
}

func (c *SearchCache) ProbeImmediateWin(key ImmediateWinKey) (bool, bool) {
	win, ok := c.immediateWin[key]
	return win, ok
}

func (c *SearchCache) StoreImmediateWin(key ImmediateWinKey, win bool) {
	c.immediateWin[key] = win
}

func (c *SearchCache) ProbeAnyImmediateWin(key ImmediateWinStateKey) (winMove, bool) {
	record, ok := c.immediateAny[key]
	return record, ok
}

func (c *SearchCache) StoreAnyImmediateWin(key ImmediateWinStateKey, record winMove) {
	c.immediateAny[key] = record
}

func (c *SearchCache) ProbeDepthScores(key DepthKey) ([]float64, bool) {
	scores, ok := c.depthMemo[key]
	return scores, ok
}

func (c *SearchCache) StoreDepthScores(key DepthKey, scores []float64) {
	if _, ok := c.depthMemo[key]; !ok && len(c.depthMemo) >= c.memoMaxStates {
		c.depthMemo = make(map[DepthKey][]float64)
	}
	c.depthMemo[key] = scores
}

// AddEdge records that child was reached from parent during search, so
// Reroot can later walk the still-relevant subtree.
func (c *SearchCache) AddEdge(parent, child StateKey) {
	children, ok := c.edges[parent]
	if !ok {
		children = make(map[StateKey]struct{})
		c.edges[parent] = children
	}
	children[child] = struct{}{}
}

// Reroot prunes every table down to positions reachable from the new
// root. Called after a move is committed; everything behind the played
// move can never be searched again.
func (c *SearchCache) Reroot(root StateKey) {
	reachable := map[StateKey]struct{}{root: {}}
	stack := []StateKey{root}
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for child := range c.edges[key] {
			if _, seen := reachable[child]; seen {
				continue
			}
			reachable[child] = struct{}{}
			stack = append(stack, child)
		}
	}

	for key := range c.tt {
		if _, ok := reachable[key]; !ok {
			delete(c.tt, key)
		}
	}
	for key := range c.moveCache {
		if _, ok := reachable[key.State]; !ok {
			delete(c.moveCache, key)
		}
	}
	for key := range c.immediateWin {
		if _, ok := reachable[key.State]; !ok {
			delete(c.immediateWin, key)
		}
	}
	for key := range c.immediateAny {
		if _, ok := reachable[key.State]; !ok {
			delete(c.immediateAny, key)
		}
	}
	for key := range c.depthMemo {
		if _, ok := reachable[key.State]; !ok {
			delete(c.depthMemo, key)
		}
	}
	for parent := range c.edges {
		if _, ok := reachable[parent]; !ok {
			delete(c.edges, parent)
		}
	}
}

func (c *SearchCache) Flush() {
	c.tt = make(map[StateKey]TTEntry)
	c.moveCache = make(map[MoveCacheKey]float64)
	c.immediateWin = make(map[ImmediateWinKey]bool)
	c.immediateAny = make(map[ImmediateWinStateKey]winMove)
	c.depthMemo = make(map[DepthKey][]float64)
	c.edges = make(map[StateKey]map[StateKey]struct{})
}

type CacheSizes struct {
	TT           int `json:"tt"`
	MoveCache    int `json:"move_cache"`
	ImmediateWin int `json:"immediate_win"`
	ImmediateAny int `json:"immediate_any"`
	DepthMemo    int `json:"depth_memo"`
	Edges        int `json:"edges"`
}

func (c *SearchCache) Sizes() CacheSizes {
	return CacheSizes{
		TT:           len(c.tt),
		MoveCache:    len(c.moveCache),
		ImmediateWin: len(c.immediateWin),
		ImmediateAny: len(c.immediateAny),
		DepthMemo:    len(c.depthMemo),
		Edges:        len(c.edges),
	}
}

func (c *SearchCache) Size() int {
	sizes := c.Sizes()
	return sizes.TT + sizes.MoveCache + sizes.ImmediateWin + sizes.ImmediateAny + sizes.DepthMemo
}
