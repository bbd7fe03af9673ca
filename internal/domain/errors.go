package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested song or cluster does not exist.
var ErrNotFound = errors.New("not found")

// OutOfRangeWarning reports a raw descriptor outside its expected range.
// It is informational: the value has already been clamped.
type OutOfRangeWarning struct {
	Feature Feature
	Value   float64
	Min     float64
	Max     float64
}

func (w OutOfRangeWarning) Error() string {
	return fmt.Sprintf("%s value %g outside expected range [%g, %g], clamped", w.Feature, w.Value, w.Min, w.Max)
}

// IncompleteQuizError is returned when answers do not cover every question in the bank.
type IncompleteQuizError struct {
	Missing  []string
	Answered int
	Total    int
}

func (e *IncompleteQuizError) Error() string {
	return fmt.Sprintf("incomplete quiz: answered %d of %d questions, missing %s",
		e.Answered, e.Total, strings.Join(e.Missing, ", "))
}

// InvalidAnswerError is returned when an answer references an unknown question or option.
type InvalidAnswerError struct {
	QuestionID string
	OptionID   string
	Reason     string
}

func (e *InvalidAnswerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("question %q: %s", e.QuestionID, e.Reason)
	}
	if e.OptionID == "" {
		return fmt.Sprintf("unknown question %q", e.QuestionID)
	}
	return fmt.Sprintf("unknown option %q for question %q", e.OptionID, e.QuestionID)
}

// EmptyCatalogError is returned when training is asked for more clusters than the catalog supports.
type EmptyCatalogError struct {
	Songs int
	K     int
}

func (e *EmptyCatalogError) Error() string {
	if e.Songs == 0 {
		return fmt.Sprintf("cannot train %d clusters on an empty catalog", e.K)
	}
	return fmt.Sprintf("cannot train %d clusters on %d songs: k must be below catalog size", e.K, e.Songs)
}

// UntrainedModelError is returned when matching or projection runs before any successful training.
type UntrainedModelError struct {
	Operation string
}

func (e *UntrainedModelError) Error() string {
	return fmt.Sprintf("%s: no trained cluster model available", e.Operation)
}

// IsUntrained reports whether err is, or wraps, an UntrainedModelError.
func IsUntrained(err error) bool {
	var target *UntrainedModelError
	return errors.As(err, &target)
}
