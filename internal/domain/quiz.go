package domain

// QuizOption is one selectable answer; Weights holds its per-feature contribution.
type QuizOption struct {
	ID      string             `json:"id" mapstructure:"id"`
	Text    string             `json:"text" mapstructure:"text"`
	Weights map[string]float64 `json:"weights,omitempty" mapstructure:"weights"`
}

// QuizQuestion is a question with an ordered set of options.
type QuizQuestion struct {
	ID       string       `json:"id" mapstructure:"id"`
	Question string       `json:"question" mapstructure:"question"`
	Options  []QuizOption `json:"options" mapstructure:"options"`
}

// QuizAnswer is a single (question, option) selection.
type QuizAnswer struct {
	QuestionID string `json:"question_id" binding:"required"`
	OptionID   string `json:"option_id" binding:"required"`
}

// QuizAnswers maps question ID to the selected option ID.
type QuizAnswers map[string]string

// RadarPoint is one axis of the profile radar chart.
type RadarPoint struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Max     float64 `json:"max"`
}

// UserProfile is a quiz-derived taste vector with its radar chart projection.
type UserProfile struct {
	ID            string        `json:"id"`
	FeatureVector FeatureVector `json:"feature_vector"`
	RadarChart    []RadarPoint  `json:"radar_chart_data"`
}
