package matching

import (
	"strings"

	"github.com/roomieradar/roomieradar/internal/errors"
)

// Direction is a swipe decision.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection accepts "left" or "right" in any case, surrounded by any
// whitespace.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionLeft:
		return DirectionLeft, nil
	case DirectionRight:
		return DirectionRight, nil
	default:
		return "", errors.NewInvalidSwipeDirectionError(s)
	}
}

func (d Direction) String() string { return string(d) }

// PairState is how one user stands towards another.
type PairState string

const (
	StateUnseen      PairState = "unseen"
	StateSwipedLeft  PairState = "swiped_left"
	StateSwipedRight PairState = "swiped_right"
	StateMatched     PairState = "matched"
)

// IsTerminal reports whether no further swipe is allowed from s.
func (s PairState) IsTerminal() bool {
	return s == StateSwipedLeft || s == StateMatched
}

// Transition is the outcome of a swipe: the requester's new state and whether
// the swipe completed a mutual match.
type Transition struct {
	From    PairState
	To      PairState
	Matched bool
}

// NextState computes where a pair ends up after the requester swipes in
// direction, given the requester's current state towards the target and
// whether the target has already swiped right on the requester. Only an
// unseen pair can be swiped.
func NextState(current PairState, direction Direction, reverseRight bool) (Transition, error) {
	if current != StateUnseen {
		return Transition{}, errors.NewConflictError("target has already been swiped")
	}
	switch direction {
	case DirectionLeft:
		return Transition{From: current, To: StateSwipedLeft}, nil
	case DirectionRight:
		if reverseRight {
			return Transition{From: current, To: StateMatched, Matched: true}, nil
		}
		return Transition{From: current, To: StateSwipedRight}, nil
	default:
		return Transition{}, errors.NewInvalidSwipeDirectionError(string(direction))
	}
}
