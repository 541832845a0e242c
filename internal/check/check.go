// Package check provides the weighted multi-criterion grading engine:
// named Checks mapping a raw measurement into a graded score, and ordered
// CheckSuites combining them into a weighted pass/fail grade.
package check

import (
	"fmt"
	"math"
)

// Flag is the informational three-way classification of a graded score.
type Flag int

const (
	// FlagRed marks a score below the boolean midpoint.
	FlagRed Flag = iota
	// FlagYellow marks a score at the exact midpoint.
	FlagYellow
	// FlagGreen marks a score above the midpoint.
	FlagGreen
)

func (f Flag) String() string {
	switch f {
	case FlagRed:
		return "RED"
	case FlagYellow:
		return "YELLOW"
	case FlagGreen:
		return "GREEN"
	default:
		return "?"
	}
}

// booleanMidpoint splits graded scores into RED and GREEN; scores within
// yellowBand of it are flagged YELLOW.
const (
	booleanMidpoint = 0.5
	yellowBand      = 1e-9
)

// Result is a named outcome tag recorded on a candidate: either a specific
// success kind or a specific failure kind.
type Result struct {
	Name    string
	Failure bool
}

func (r *Result) String() string {
	return r.Name
}

// EvaluationError wraps an unexpected error raised inside one check's raw
// value computation. It fails the candidate being graded without affecting
// the rest of the batch.
type EvaluationError struct {
	Check string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("check %q evaluation failed: %v", e.Check, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Check is a named, weighted scalar test over a candidate context C.
// Low and High delimit the graded band; Covariant selects the polarity
// (true: higher raw values are better). A non-nil FailureTag makes a RED
// score abort the candidate with that tag.
//
// Value may mutate the context; suites run checks in declared order
// precisely because later checks read what earlier ones wrote.
type Check[C any] struct {
	Name        string
	Description string
	Low         float64
	High        float64
	Covariant   bool
	FailureTag  *Result

	// Bounds, when set, supplies per-candidate low/high thresholds,
	// overriding the static ones (regime-dependent bands).
	Bounds func(C) (low, high float64)

	// Value computes the raw measurement for the candidate.
	Value func(C) (float64, error)
}

// Graded holds the outcome of running one check on one candidate.
type Graded struct {
	Value float64
	Score float64
	Flag  Flag
}

// Grade evaluates the check on the candidate and maps the raw value into a
// score in [0,1].
func (c *Check[C]) Grade(ctx C) (Graded, error) {
	low, high := c.Low, c.High
	if c.Bounds != nil {
		low, high = c.Bounds(ctx)
	}
	value, err := c.Value(ctx)
	if err != nil {
		return Graded{}, &EvaluationError{Check: c.Name, Err: err}
	}
	score := gradeValue(value, low, high, c.Covariant)
	return Graded{Value: value, Score: score, Flag: flagOf(score)}, nil
}

// gradeValue maps a raw value into [0,1]: for a covariant check the score
// rises linearly from 0 at low to 1 at high; a contravariant check inverts
// the mapping. A degenerate band (low == high) acts as a boolean cutoff.
func gradeValue(value, low, high float64, covariant bool) float64 {
	if high <= low {
		if covariant {
			if value >= high {
				return 1
			}
			return 0
		}
		if value <= low {
			return 1
		}
		return 0
	}
	t := (value - low) / (high - low)
	t = math.Max(0, math.Min(1, t))
	if covariant {
		return t
	}
	return 1 - t
}

func flagOf(score float64) Flag {
	switch {
	case math.Abs(score-booleanMidpoint) <= yellowBand:
		return FlagYellow
	case score < booleanMidpoint:
		return FlagRed
	default:
		return FlagGreen
	}
}
