package scan

import (
	"sync"
	"time"
)

// HistoryLimit caps the in-memory scan history; the oldest entry is evicted
// when a new scan lands on a full buffer.
const HistoryLimit = 50

// Location is a best-effort scan position reported by the host.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HistoryEntry records one successfully decoded scan. Process-lifetime only.
type HistoryEntry struct {
	ID        string     `json:"id"`
	Payload   ScanResult `json:"payload"`
	ScannedAt time.Time  `json:"scanned_at"`
	Location  *Location  `json:"location,omitempty"`
}

// History is an append-only, capped scan log ordered newest first.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []HistoryEntry
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &History{limit: limit}
}

// Append records an entry at the front, evicting the oldest past the cap.
func (h *History) Append(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries returns a copy of the history, newest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the current number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
