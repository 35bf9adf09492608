// Package monty implements the Monty Hall round state machine and the
// strategy simulator.
package monty

// NumDoors is fixed by the game: one car, two goats.
const NumDoors = 3

// NoDoor marks an unset door reference.
const NoDoor = -1

// Phase is a round's position in its state machine.
type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhasePicked   Phase = "picked"
	PhaseResolved Phase = "resolved"
)

// Door is one of the three positions in a round.
type Door struct {
	ID         int  `json:"id"`
	HasCar     bool `json:"has_car"`
	IsOpen     bool `json:"is_open"`
	IsSelected bool `json:"is_selected"`
}

// Round is a read-only snapshot of one play-through. Doors is an array so
// copying a Round never aliases engine state.
type Round struct {
	Doors          [NumDoors]Door `json:"doors"`
	SelectedDoorID int            `json:"selected_door_id"`
	RevealedDoorID int            `json:"revealed_door_id"`
	Phase          Phase          `json:"phase"`
	Won            bool           `json:"won"`
	Switched       bool           `json:"switched"`
}

// CarDoorID returns the door hiding the car.
func (r Round) CarDoorID() int {
	for _, d := range r.Doors {
		if d.HasCar {
			return d.ID
		}
	}
	return NoDoor
}

// OtherDoorID returns the only door that is neither selected nor revealed,
// or NoDoor before the reveal.
func (r Round) OtherDoorID() int {
	if r.SelectedDoorID == NoDoor || r.RevealedDoorID == NoDoor {
		return NoDoor
	}
	for _, d := range r.Doors {
		if d.ID != r.SelectedDoorID && d.ID != r.RevealedDoorID {
			return d.ID
		}
	}
	return NoDoor
}

func validDoor(id int) bool { return id >= 0 && id < NumDoors }
