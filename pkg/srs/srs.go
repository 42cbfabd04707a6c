package srs

import (
	"fmt"
	"time"
)

// State represents the learning stage of a card.
type State int

const (
	StateNew State = iota
	StateLearning
	StateReview
	StateRelearning
)

var stateNames = [...]string{
	StateNew:        "new",
	StateLearning:   "learning",
	StateReview:     "review",
	StateRelearning: "relearning",
}

var stateByName = map[string]State{
	"new":        StateNew,
	"learning":   StateLearning,
	"review":     StateReview,
	"relearning": StateRelearning,
}

func (s State) String() string {
	if s >= StateNew && s <= StateRelearning {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState converts the persisted column value back to a State.
// Unknown values map to StateNew so that dirty data stays studyable.
func ParseState(value string) State {
	if s, ok := stateByName[value]; ok {
		return s
	}
	return StateNew
}

// Rating is the user's recall assessment on the standard 4-point scale.
type Rating int

const (
	RatingAgain Rating = iota + 1 // complete failure to recall
	RatingHard
	RatingGood
	RatingEasy
)

func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Remembered reports whether the rating counts toward retention,
// i.e. the two highest tiers of the scale.
func (r Rating) Remembered() bool {
	return r >= RatingGood
}

// SchedulingState is the full per-card scheduling snapshot the algorithm
// consumes and produces. The authoritative copy lives on the card row.
type SchedulingState struct {
	State      State
	Due        time.Time
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
	LastReview *time.Time
}

// Algorithm computes the next scheduling state from a rating.
// Implementations must be deterministic given identical inputs.
type Algorithm interface {
	ComputeNext(state SchedulingState, rating Rating, now time.Time) SchedulingState
}
