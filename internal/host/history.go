package host

import (
	"sync"
	"time"

	"github.com/xtding233/montyhall/internal/monty"
)

// Record is one remembered simulator run.
type Record struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
	monty.SimulationResult
}

// History keeps the most recent simulator runs, newest first.
type History struct {
	mu      sync.Mutex
	size    int
	records []Record
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{size: size}
}

// Add prepends rec and drops the oldest entries beyond capacity.
func (h *History) Add(rec Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]Record{rec}, h.records...)
	if len(h.records) > h.size {
		h.records = h.records[:h.size]
	}
}

// List returns a copy of the records, newest first.
func (h *History) List() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.records...)
}

// Resize changes capacity, keeping the newest entries.
func (h *History) Resize(size int) {
	if size < 1 {
		size = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.size = size
	if len(h.records) > size {
		h.records = h.records[:size]
	}
}
