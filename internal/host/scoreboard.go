package host

import (
	"sync"

	"github.com/xtding233/montyhall/internal/monty"
)

// Tally counts resolved interactive rounds for one decision.
type Tally struct {
	Plays         int     `json:"plays"`
	Wins          int     `json:"wins"`
	WinPercentage float64 `json:"win_percentage"`
}

// ScoreboardSnapshot splits interactive results by the player's decision.
type ScoreboardSnapshot struct {
	Switched Tally `json:"switched"`
	Kept     Tally `json:"kept"`
}

// Scoreboard tallies resolved rounds across all sessions.
type Scoreboard struct {
	mu       sync.Mutex
	switched Tally
	kept     Tally
}

// Record adds one resolved round. Rounds in other phases are ignored.
func (s *Scoreboard) Record(r monty.Round) {
	if r.Phase != monty.PhaseResolved {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &s.kept
	if r.Switched {
		t = &s.switched
	}
	t.Plays++
	if r.Won {
		t.Wins++
	}
	t.WinPercentage = monty.WinPercentage(t.Wins, t.Plays)
}

func (s *Scoreboard) Snapshot() ScoreboardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScoreboardSnapshot{Switched: s.switched, Kept: s.kept}
}
