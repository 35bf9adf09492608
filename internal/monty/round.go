package monty

import "fmt"

// Engine drives one round at a time: pick, automatic goat reveal, keep or
// switch, then reset for the next round.
// - Every action either succeeds and returns the new snapshot, or fails and
//   leaves the round exactly as it was.
// - The reveal is drawn once, when the round enters PhasePicked.
// Engine is not safe for concurrent use; hosts serialize access.
type Engine struct {
	rng   RandomSource
	round Round
}

// NewEngine creates an engine with a freshly randomized round.
// If rng is nil the crypto source is used.
func NewEngine(rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultRNG()
	}
	e := &Engine{rng: rng}
	e.Reset()
	return e
}

// Snapshot returns a copy of the current round.
func (e *Engine) Snapshot() Round { return e.round }

// Reset hides the car behind a uniformly random door and returns to
// PhaseInitial with every door closed.
func (e *Engine) Reset() Round {
	car := pickIndex(e.rng, NumDoors)
	var r Round
	for i := range r.Doors {
		r.Doors[i] = Door{ID: i, HasCar: i == car}
	}
	r.SelectedDoorID = NoDoor
	r.RevealedDoorID = NoDoor
	r.Phase = PhaseInitial
	e.round = r
	return e.round
}

// Pick records the player's first choice and opens one goat door among
// the others.
func (e *Engine) Pick(doorID int) (Round, error) {
	if e.round.Phase != PhaseInitial {
		return e.round, fmt.Errorf("%w: pick requires phase %s, round is %s", ErrWrongPhase, PhaseInitial, e.round.Phase)
	}
	if !validDoor(doorID) {
		return e.round, fmt.Errorf("%w: door %d out of range", ErrInvalidMove, doorID)
	}

	next := e.round
	next.SelectedDoorID = doorID
	for i := range next.Doors {
		next.Doors[i].IsSelected = i == doorID
	}

	// goats the host may open: never the car, never the pick
	candidates := make([]int, 0, NumDoors-1)
	for _, d := range next.Doors {
		if !d.HasCar && d.ID != doorID {
			candidates = append(candidates, d.ID)
		}
	}
	revealed := candidates[pickIndex(e.rng, len(candidates))]
	next.RevealedDoorID = revealed
	next.Doors[revealed].IsOpen = true
	next.Phase = PhasePicked

	e.round = next
	return e.round, nil
}

// Keep resolves the round with the original pick.
func (e *Engine) Keep() (Round, error) {
	if e.round.Phase != PhasePicked {
		return e.round, fmt.Errorf("%w: keep requires phase %s, round is %s", ErrWrongPhase, PhasePicked, e.round.Phase)
	}
	e.resolve(e.round.SelectedDoorID, false)
	return e.round, nil
}

// SwitchTo resolves the round with a new pick. The target must be neither
// the current pick nor the revealed door.
func (e *Engine) SwitchTo(doorID int) (Round, error) {
	if e.round.Phase != PhasePicked {
		return e.round, fmt.Errorf("%w: switch requires phase %s, round is %s", ErrWrongPhase, PhasePicked, e.round.Phase)
	}
	switch {
	case !validDoor(doorID):
		return e.round, fmt.Errorf("%w: door %d out of range", ErrInvalidMove, doorID)
	case doorID == e.round.SelectedDoorID:
		return e.round, fmt.Errorf("%w: door %d is already selected", ErrInvalidMove, doorID)
	case e.round.Doors[doorID].IsOpen:
		return e.round, fmt.Errorf("%w: door %d is already open", ErrInvalidMove, doorID)
	}
	e.resolve(doorID, true)
	return e.round, nil
}

// Switch resolves the round by moving to the one remaining closed door.
func (e *Engine) Switch() (Round, error) {
	if e.round.Phase != PhasePicked {
		return e.round, fmt.Errorf("%w: switch requires phase %s, round is %s", ErrWrongPhase, PhasePicked, e.round.Phase)
	}
	return e.SwitchTo(e.round.OtherDoorID())
}

func (e *Engine) resolve(finalDoorID int, switched bool) {
	next := e.round
	next.SelectedDoorID = finalDoorID
	for i := range next.Doors {
		next.Doors[i].IsOpen = true
		next.Doors[i].IsSelected = i == finalDoorID
	}
	next.Won = next.Doors[finalDoorID].HasCar
	next.Switched = switched
	next.Phase = PhaseResolved
	e.round = next
}
