package check

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Suite is an ordered, weighted list of checks bound to one candidate type.
// Check order is part of the contract: checks may record findings into the
// candidate context that later checks read.
//
// A Suite instance is confined to one region's candidates; it is not safe
// for concurrent Pass calls on overlapping contexts.
type Suite[C any] struct {
	name     string
	minGrade float64
	logger   *slog.Logger

	checks  []*Check[C]
	weights []float64
}

// NewSuite creates a named suite with the given minimum passing grade.
// A nil logger falls back to slog.Default().
func NewSuite[C any](name string, minGrade float64, logger *slog.Logger) *Suite[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite[C]{name: name, minGrade: minGrade, logger: logger}
}

// Name returns the suite name.
func (s *Suite[C]) Name() string {
	return s.name
}

// MinGrade returns the minimum grade a candidate must reach to pass.
func (s *Suite[C]) MinGrade() float64 {
	return s.minGrade
}

// Add appends a check with the given weight. Declaration order is
// execution order.
func (s *Suite[C]) Add(weight float64, c *Check[C]) {
	if weight <= 0 {
		panic(fmt.Sprintf("check: suite %q: non-positive weight %v for %q", s.name, weight, c.Name))
	}
	s.checks = append(s.checks, c)
	s.weights = append(s.weights, weight)
}

// Pass runs every check in order on the candidate context and returns the
// weighted grade.
//
// A RED score on a check carrying a failure tag aborts the candidate: the
// tag is returned and the grade is 0. An error inside one check's value
// computation is returned as an EvaluationError; the candidate is failed
// but the caller's batch goes on. Pass is deterministic for a given
// context state.
func (s *Suite[C]) Pass(ctx C) (float64, *Result, error) {
	if len(s.checks) == 0 {
		panic(fmt.Sprintf("check: suite %q has no checks", s.name))
	}

	scores := make([]float64, 0, len(s.checks))
	for _, c := range s.checks {
		graded, err := c.Grade(ctx)
		if err != nil {
			return 0, nil, err
		}
		s.logger.Debug("check graded",
			"suite", s.name,
			"check", c.Name,
			"value", graded.Value,
			"score", graded.Score,
			"flag", graded.Flag.String())
		if graded.Flag == FlagRed && c.FailureTag != nil {
			return 0, c.FailureTag, nil
		}
		scores = append(scores, graded.Score)
	}

	grade := stat.Mean(scores, s.weights[:len(scores)])
	return grade, nil, nil
}

// Passed reports whether a grade meets the suite minimum.
func (s *Suite[C]) Passed(grade float64) bool {
	return grade >= s.minGrade
}

// Dump returns a human-readable description of the suite configuration,
// in declaration order.
func (s *Suite[C]) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "suite %q minGrade=%.2f\n", s.name, s.minGrade)
	for i, c := range s.checks {
		pol := "contravariant"
		if c.Covariant {
			pol = "covariant"
		}
		hard := ""
		if c.FailureTag != nil {
			hard = " hard=" + c.FailureTag.Name
		}
		fmt.Fprintf(&b, "  %2d. %-12s w=%.1f low=%.2f high=%.2f %s%s  %s\n",
			i+1, c.Name, s.weights[i], c.Low, c.High, pol, hard, c.Description)
	}
	return b.String()
}
