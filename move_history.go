package main

// HistoryEntry records one committed move: who played where, what it
// captured, how long the turn took and the status it left the game in.
type HistoryEntry struct {
	Index             int
	Move              Move
	Player            PlayerColor
	CapturedPositions []Move
	CapturedCount     int
	ElapsedMs         float64
	IsAi              bool
	Depth             int
	Status            GameStatus
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

// Push assigns the entry's index from its position in the log.
func (h *MoveHistory) Push(entry HistoryEntry) {
	entry.Index = len(h.entries)
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// All returns a copy; callers may hold it across later pushes.
func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}
