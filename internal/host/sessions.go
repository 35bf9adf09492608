package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/montyhall/internal/monty"
)

type session struct {
	mu       sync.Mutex
	engine   *monty.Engine
	lastSeen time.Time
}

// NewRound opens a session holding a fresh round.
func (h *Host) NewRound() (string, monty.Round, error) {
	limit := h.Settings().MaxSessions

	h.sessMu.Lock()
	defer h.sessMu.Unlock()
	if len(h.sessions) >= limit {
		return "", monty.Round{}, fmt.Errorf("%w: limit %d", ErrTooManySessions, limit)
	}
	id := uuid.NewString()
	s := &session{engine: monty.NewEngine(h.newRNG()), lastSeen: h.now()}
	h.sessions[id] = s
	h.logger.Debug("session opened", "session", id, "live", len(h.sessions))
	return id, s.engine.Snapshot(), nil
}

// Round returns the current snapshot of a session's round.
func (h *Host) Round(id string) (monty.Round, error) {
	return h.withSession(id, func(e *monty.Engine) (monty.Round, error) {
		return e.Snapshot(), nil
	})
}

func (h *Host) Pick(id string, doorID int) (monty.Round, error) {
	return h.withSession(id, func(e *monty.Engine) (monty.Round, error) { return e.Pick(doorID) })
}

func (h *Host) Keep(id string) (monty.Round, error) {
	return h.withSession(id, (*monty.Engine).Keep)
}

func (h *Host) SwitchTo(id string, doorID int) (monty.Round, error) {
	return h.withSession(id, func(e *monty.Engine) (monty.Round, error) { return e.SwitchTo(doorID) })
}

// Switch moves to the one remaining closed door.
func (h *Host) Switch(id string) (monty.Round, error) {
	return h.withSession(id, (*monty.Engine).Switch)
}

func (h *Host) Reset(id string) (monty.Round, error) {
	return h.withSession(id, func(e *monty.Engine) (monty.Round, error) { return e.Reset(), nil })
}

// withSession serializes fn on one session's engine and tallies the round
// when fn resolves it.
func (h *Host) withSession(id string, fn func(*monty.Engine) (monty.Round, error)) (monty.Round, error) {
	h.sessMu.RLock()
	s, ok := h.sessions[id]
	h.sessMu.RUnlock()
	if !ok {
		return monty.Round{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = h.now()
	before := s.engine.Snapshot().Phase
	r, err := fn(s.engine)
	if err != nil {
		h.logger.Debug("move rejected", "session", id, "phase", before, "err", err)
		return r, err
	}
	if before != monty.PhaseResolved && r.Phase == monty.PhaseResolved {
		h.score.Record(r)
		h.logger.Debug("round resolved", "session", id, "won", r.Won, "switched", r.Switched)
	}
	return r, nil
}

// Sweep closes sessions idle since before now minus the configured TTL and
// reports how many were closed.
func (h *Host) Sweep(now time.Time) int {
	cutoff := now.Add(-h.Settings().SessionIdleTTL)

	h.sessMu.Lock()
	defer h.sessMu.Unlock()
	n := 0
	for id, s := range h.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(h.sessions, id)
			n++
		}
	}
	if n > 0 {
		h.logger.Info("swept idle sessions", "closed", n, "live", len(h.sessions))
	}
	return n
}

// LiveSessions reports how many sessions are open.
func (h *Host) LiveSessions() int {
	h.sessMu.RLock()
	defer h.sessMu.RUnlock()
	return len(h.sessions)
}
