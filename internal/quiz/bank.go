// Package quiz turns quiz answers into a taste FeatureVector.
package quiz

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/timmy/musicmatch/internal/domain"
)

// Bank is a validated, read-only set of quiz questions.
type Bank struct {
	questions []domain.QuizQuestion
	byID      map[string]int
}

// NewBank validates questions and indexes them by ID.
// Question IDs must be unique, each question needs at least one option, option IDs must be
// unique within a question, and every weight must name a known feature.
func NewBank(questions []domain.QuizQuestion) (*Bank, error) {
	if len(questions) == 0 {
		return nil, errors.New("quiz bank has no questions")
	}

	b := &Bank{
		questions: make([]domain.QuizQuestion, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d has no id", i)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %q has no options", q.ID)
		}

		seen := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if _, dup := seen[o.ID]; dup {
				return nil, fmt.Errorf("question %q: duplicate option id %q", q.ID, o.ID)
			}
			seen[o.ID] = struct{}{}
			for name := range o.Weights {
				if _, ok := domain.ParseFeature(name); !ok {
					return nil, fmt.Errorf("question %q option %q: unknown feature %q", q.ID, o.ID, name)
				}
			}
		}

		b.questions[i] = q
		b.byID[q.ID] = i
	}
	return b, nil
}

// DefaultBank returns the built-in question bank.
func DefaultBank() *Bank {
	b, err := NewBank(defaultQuestions)
	if err != nil {
		panic(fmt.Sprintf("quiz: invalid default bank: %v", err))
	}
	return b
}

// LoadBank reads a question bank from a YAML or JSON file with a top-level "questions" list.
// An empty path returns the default bank.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read quiz bank %s: %w", path, err)
	}

	var questions []domain.QuizQuestion
	if err := v.UnmarshalKey("questions", &questions); err != nil {
		return nil, fmt.Errorf("failed to decode quiz bank %s: %w", path, err)
	}
	return NewBank(questions)
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Question returns the question with the given ID.
func (b *Bank) Question(id string) (domain.QuizQuestion, bool) {
	i, ok := b.byID[id]
	if !ok {
		return domain.QuizQuestion{}, false
	}
	return b.questions[i], true
}

// Public returns the questions without option weights, for clients.
func (b *Bank) Public() []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, len(b.questions))
	for i, q := range b.questions {
		options := make([]domain.QuizOption, len(q.Options))
		for j, o := range q.Options {
			options[j] = domain.QuizOption{ID: o.ID, Text: o.Text}
		}
		out[i] = domain.QuizQuestion{ID: q.ID, Question: q.Question, Options: options}
	}
	return out
}
