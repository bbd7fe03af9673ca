package quiz

import (
	"sort"

	"github.com/google/uuid"

	"github.com/timmy/musicmatch/internal/domain"
)

// untouched is the value of a feature no selected option contributes to.
const untouched = 0.5

// Answers collects a list of answers into a QuizAnswers map.
// Answering the same question twice is rejected, even with the same option.
func Answers(list []domain.QuizAnswer) (domain.QuizAnswers, error) {
	out := make(domain.QuizAnswers, len(list))
	for _, a := range list {
		if _, dup := out[a.QuestionID]; dup {
			return nil, &domain.InvalidAnswerError{QuestionID: a.QuestionID, Reason: "answered more than once"}
		}
		out[a.QuestionID] = a.OptionID
	}
	return out, nil
}

// Build converts a completed quiz into a taste vector.
//
// Each feature is the mean of the weights that the selected options assign to it, clamped
// to [0,1]. Features no selected option mentions are set to 0.5.
//
// Every question in the bank must be answered exactly once; otherwise Build returns an
// *domain.IncompleteQuizError listing the missing question IDs in bank order. Answers for
// unknown questions or options return *domain.InvalidAnswerError.
func Build(answers domain.QuizAnswers, bank *Bank) (domain.FeatureVector, error) {
	var missing []string
	for _, q := range bank.questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return domain.FeatureVector{}, &domain.IncompleteQuizError{
			Missing:  missing,
			Answered: bank.Len() - len(missing),
			Total:    bank.Len(),
		}
	}
	// Every question is answered, so any extra key names an unknown question.
	if len(answers) != bank.Len() {
		for _, qid := range sortedKeys(answers) {
			if _, ok := bank.Question(qid); !ok {
				return domain.FeatureVector{}, &domain.InvalidAnswerError{QuestionID: qid}
			}
		}
	}

	var (
		sums   domain.FeatureVector
		counts [domain.NumFeatures]int
	)
	for _, q := range bank.questions {
		oid := answers[q.ID]
		o, ok := findOption(q, oid)
		if !ok {
			return domain.FeatureVector{}, &domain.InvalidAnswerError{QuestionID: q.ID, OptionID: oid}
		}
		for _, f := range domain.Features {
			weight, ok := o.Weights[f.String()]
			if !ok {
				continue
			}
			sums[f] += weight
			counts[f]++
		}
	}

	var out domain.FeatureVector
	for _, f := range domain.Features {
		if counts[f] == 0 {
			out[f] = untouched
			continue
		}
		out[f] = domain.Clamp01(sums[f] / float64(counts[f]))
	}
	return out, nil
}

func sortedKeys(answers domain.QuizAnswers) []string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findOption(q domain.QuizQuestion, id string) (domain.QuizOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return domain.QuizOption{}, false
}

// NewProfile builds a UserProfile with a fresh ID from a completed quiz.
func NewProfile(answers domain.QuizAnswers, bank *Bank) (*domain.UserProfile, error) {
	vec, err := Build(answers, bank)
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		ID:            uuid.NewString(),
		FeatureVector: vec,
		RadarChart:    Radar(vec),
	}, nil
}
