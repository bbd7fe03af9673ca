package quiz

import (
	"math"

	"github.com/timmy/musicmatch/internal/domain"
)

var displayNames = [domain.NumFeatures]string{
	domain.FeatureEnergy:           "Energy",
	domain.FeatureDanceability:     "Danceability",
	domain.FeatureAcousticness:     "Acoustic",
	domain.FeatureValence:          "Positivity",
	domain.FeatureInstrumentalness: "Instrumental",
	domain.FeatureLoudness:         "Loudness",
	domain.FeatureTempo:            "Tempo",
	domain.FeatureSpeechiness:      "Speech",
	domain.FeatureLiveness:         "Live",
}

// Radar projects a vector onto radar chart points scaled to 0-100, one per feature.
func Radar(v domain.FeatureVector) []domain.RadarPoint {
	points := make([]domain.RadarPoint, 0, domain.NumFeatures)
	for _, f := range domain.Features {
		points = append(points, domain.RadarPoint{
			Feature: displayNames[f],
			Value:   math.Round(domain.Clamp01(v[f])*1000) / 10,
			Max:     100,
		})
	}
	return points
}
