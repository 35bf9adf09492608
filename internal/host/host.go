// Package host owns everything around the game core that a renderer needs:
// live rounds keyed by session, simulator policy and history, and the
// interactive scoreboard.
package host

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/monty"
)

// Host is safe for concurrent use.
type Host struct {
	logger *log.Logger
	now    func() time.Time

	mu       sync.RWMutex
	settings config.Settings

	// stream counter for seeded sources
	seq atomic.Uint64

	sessMu   sync.RWMutex
	sessions map[string]*session

	history *History
	score   Scoreboard
}

// New builds a host. A nil logger discards output.
func New(settings config.Settings, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Host{
		logger:   logger.WithPrefix("host"),
		now:      time.Now,
		settings: settings,
		sessions: make(map[string]*session),
		history:  NewHistory(settings.HistorySize),
	}
}

func (h *Host) Settings() config.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// Apply swaps in reloaded settings. Live rounds keep their sources; the
// history is trimmed to the new size.
func (h *Host) Apply(s config.Settings) {
	h.mu.Lock()
	old := h.settings
	h.settings = s
	h.mu.Unlock()

	h.history.Resize(s.HistorySize)
	h.logger.Info("settings applied",
		"version", s.Version,
		"max_trials", s.MaxTrials,
		"history", s.HistorySize,
		"seeded", s.Seed != 0,
	)
	if old.Seed != s.Seed {
		h.seq.Store(0)
	}
}

// newRNG returns the crypto source, or a distinct deterministic stream per
// call when a seed is configured.
func (h *Host) newRNG() monty.RandomSource {
	seed := h.Settings().Seed
	if seed == 0 {
		return monty.DefaultRNG()
	}
	return monty.NewSeededRNG(seed + h.seq.Add(1) - 1)
}

// Simulate applies the host's trial cap, runs the simulator and remembers
// the result.
func (h *Host) Simulate(ctx context.Context, trials int, strategy monty.Strategy) (Record, error) {
	s := h.Settings()
	if trials > s.MaxTrials {
		return Record{}, fmt.Errorf("%w: %d > %d", ErrTrialsExceedLimit, trials, s.MaxTrials)
	}

	var (
		res monty.SimulationResult
		err error
	)
	if s.Workers > 1 {
		seed := s.Seed
		if seed == 0 {
			seed = rand.Uint64()
		} else {
			seed += h.seq.Add(1) - 1
		}
		res, err = monty.SimulateParallel(ctx, trials, strategy, s.Workers, seed)
	} else {
		res, err = monty.Simulate(trials, strategy, h.newRNG())
	}
	if err != nil {
		return Record{}, err
	}

	rec := Record{ID: uuid.NewString(), At: h.now().UTC(), SimulationResult: res}
	h.history.Add(rec)
	h.logger.Info("simulation",
		"trials", res.Trials,
		"strategy", res.Strategy,
		"win_pct", res.WinPercentage,
	)
	return rec, nil
}

// History returns remembered simulator runs, newest first.
func (h *Host) History() []Record { return h.history.List() }

// Scoreboard returns interactive results split by decision.
func (h *Host) Scoreboard() ScoreboardSnapshot { return h.score.Snapshot() }

// MaxBatches caps RunBatches requests regardless of settings.
const MaxBatches = 1000

// Batches reports the spread of win percentages over repeated runs. The
// per-batch trial count obeys the same cap as Simulate; results are not
// remembered.
func (h *Host) Batches(batches, trials int, strategy monty.Strategy) (monty.Stats, error) {
	s := h.Settings()
	if trials > s.MaxTrials {
		return monty.Stats{}, fmt.Errorf("%w: %d > %d", ErrTrialsExceedLimit, trials, s.MaxTrials)
	}
	if batches > MaxBatches {
		return monty.Stats{}, fmt.Errorf("%w: batch count %d > %d", monty.ErrInvalidInput, batches, MaxBatches)
	}
	return monty.RunBatches(batches, trials, strategy, h.newRNG())
}
