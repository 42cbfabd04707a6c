package srs

import (
	"math"
	"time"
)

// FSRS is a deterministic FSRS-style scheduler. Interval fuzzing is left out
// on purpose: identical inputs must produce identical outputs so that a
// replayed rating request cannot diverge from the committed state.
type FSRS struct {
	desiredRetention float64
	maximumInterval  int // days
	learningSteps    []time.Duration
	relearningSteps  []time.Duration
}

// Option configures an FSRS instance.
type Option func(*FSRS)

func WithDesiredRetention(r float64) Option {
	return func(f *FSRS) {
		if r > 0 && r <= 1 {
			f.desiredRetention = r
		}
	}
}

func WithMaximumInterval(days int) Option {
	return func(f *FSRS) {
		if days > 0 {
			f.maximumInterval = days
		}
	}
}

// NewFSRS creates a scheduler with the conventional defaults:
// 90% desired retention, 100-year interval cap, learning steps of
// 1m/10m and a single 10m relearning step.
func NewFSRS(opts ...Option) *FSRS {
	f := &FSRS{
		desiredRetention: 0.9,
		maximumInterval:  36500,
		learningSteps:    []time.Duration{time.Minute, 10 * time.Minute},
		relearningSteps:  []time.Duration{10 * time.Minute},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

const (
	minDifficulty = 1.0
	maxDifficulty = 10.0
	minStability  = 0.1

	// Retrievability decay exponent and derived interval factor,
	// per the FSRS power forgetting curve.
	decay = -0.5
)

var initialStability = map[Rating]float64{
	RatingAgain: 0.4,
	RatingHard:  0.6,
	RatingGood:  2.4,
	RatingEasy:  5.8,
}

// ComputeNext implements Algorithm.
func (f *FSRS) ComputeNext(state SchedulingState, rating Rating, now time.Time) SchedulingState {
	next := state
	next.Reps = state.Reps + 1
	last := now
	next.LastReview = &last

	elapsedDays := 0.0
	if state.LastReview != nil {
		elapsedDays = now.Sub(*state.LastReview).Hours() / 24.0
		if elapsedDays < 0 {
			elapsedDays = 0
		}
	}

	f.updateMemory(&next, state, rating, elapsedDays)

	switch state.State {
	case StateNew, StateLearning:
		f.stepThrough(&next, rating, now, f.learningSteps, StateLearning)
	case StateRelearning:
		f.stepThrough(&next, rating, now, f.relearningSteps, StateRelearning)
	case StateReview:
		if rating == RatingAgain {
			next.State = StateRelearning
			next.Lapses = state.Lapses + 1
			next.Due = now.Add(f.relearningSteps[0])
		} else {
			next.State = StateReview
			next.Due = now.Add(f.reviewInterval(next.Stability))
		}
	}

	return next
}

// stepThrough advances a card inside its learning/relearning steps. Reps
// double as the step cursor; Good past the last step (or any Easy) graduates
// the card into Review.
func (f *FSRS) stepThrough(next *SchedulingState, rating Rating, now time.Time, steps []time.Duration, stage State) {
	switch rating {
	case RatingAgain:
		next.State = stage
		next.Due = now.Add(steps[0])
	case RatingHard:
		next.State = stage
		next.Due = now.Add(steps[0] + (steps[0] / 2))
	case RatingGood:
		step := stepIndex(next.Reps, len(steps))
		if step >= len(steps) {
			next.State = StateReview
			next.Due = now.Add(f.reviewInterval(next.Stability))
		} else {
			next.State = stage
			next.Due = now.Add(steps[step])
		}
	case RatingEasy:
		next.State = StateReview
		next.Due = now.Add(f.reviewInterval(next.Stability))
	}
}

func stepIndex(reps, total int) int {
	if reps > total {
		return total
	}
	return reps
}

func (f *FSRS) updateMemory(next *SchedulingState, prev SchedulingState, rating Rating, elapsedDays float64) {
	if prev.Stability == 0 {
		// First exposure: seed from the rating.
		next.Stability = initialStability[rating]
		next.Difficulty = initialDifficulty(rating)
		return
	}

	retrievability := math.Pow(1+elapsedDays/(9*prev.Stability), decay*2)

	if rating == RatingAgain {
		// Forgetting collapses stability toward a fraction of its prior value.
		next.Stability = clampStability(prev.Stability * 0.3 * math.Pow(retrievability, 0.2))
	} else {
		gain := 1 + math.Exp(1.2)*(11-prev.Difficulty)*
			math.Pow(prev.Stability, -0.1)*(math.Exp((1-retrievability)*0.8)-1)*ratingFactor(rating)
		next.Stability = clampStability(prev.Stability * gain)
	}

	next.Difficulty = clampDifficulty(prev.Difficulty - 0.6*float64(rating-RatingGood))
}

func initialDifficulty(rating Rating) float64 {
	return clampDifficulty(5.0 - 1.2*float64(rating-RatingGood))
}

func ratingFactor(rating Rating) float64 {
	switch rating {
	case RatingHard:
		return 0.6
	case RatingEasy:
		return 1.3
	default:
		return 1.0
	}
}

func (f *FSRS) reviewInterval(stability float64) time.Duration {
	// Invert the forgetting curve at the desired retention.
	days := stability / decayFactor() * (math.Pow(f.desiredRetention, 1/decay) - 1)
	if days < 1 {
		days = 1
	}
	if days > float64(f.maximumInterval) {
		days = float64(f.maximumInterval)
	}
	return time.Duration(math.Round(days)) * 24 * time.Hour
}

func decayFactor() float64 {
	return 1.0 / 9.0
}

func clampDifficulty(d float64) float64 {
	return math.Min(maxDifficulty, math.Max(minDifficulty, d))
}

func clampStability(s float64) float64 {
	return math.Max(minStability, s)
}
