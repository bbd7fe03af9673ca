package clustering

import (
	"strings"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

func TestDeviationLabel(t *testing.T) {
	mean := uniform(0.5)

	tests := []struct {
		name     string
		centroid domain.FeatureVector
		want     string
	}{
		{
			name:     "balanced",
			centroid: uniform(0.52),
			want:     "balanced",
		},
		{
			name:     "two strong deviations",
			centroid: mean.With(domain.FeatureEnergy, 0.9).With(domain.FeatureAcousticness, 0.2),
			want:     "high-energy / low-acoustic",
		},
		{
			name:     "single deviation",
			centroid: mean.With(domain.FeatureTempo, 0.8).With(domain.FeatureValence, 0.53),
			want:     "high-tempo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviationLabel(tt.centroid, mean); got != tt.want {
				t.Errorf("DeviationLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoodTagline(t *testing.T) {
	tests := []struct {
		name       string
		centroid   domain.FeatureVector
		wantPrefix string
	}{
		{
			name: "party",
			centroid: uniform(0.5).
				With(domain.FeatureEnergy, 0.85).
				With(domain.FeatureDanceability, 0.8).
				With(domain.FeatureValence, 0.75),
			wantPrefix: "Upbeat party anthems",
		},
		{
			name: "melancholic acoustic",
			centroid: uniform(0.5).
				With(domain.FeatureEnergy, 0.2).
				With(domain.FeatureAcousticness, 0.8).
				With(domain.FeatureValence, 0.2),
			wantPrefix: "Melancholic acoustic",
		},
		{
			name: "groovy wins over speechiness",
			centroid: uniform(0.5).
				With(domain.FeatureEnergy, 0.55).
				With(domain.FeatureDanceability, 0.7).
				With(domain.FeatureSpeechiness, 0.8),
			wantPrefix: "Groovy mid-tempo",
		},
		{
			name:       "speech-heavy",
			centroid:   uniform(0.5).With(domain.FeatureSpeechiness, 0.8),
			wantPrefix: "Spoken and rap-forward",
		},
		{
			name:       "live recordings",
			centroid:   uniform(0.5).With(domain.FeatureLiveness, 0.9),
			wantPrefix: "Live energy",
		},
		{
			name:       "balanced fallback",
			centroid:   uniform(0.5),
			wantPrefix: "Balanced mix",
		},
		{
			name: "assembled from levels",
			centroid: uniform(0.5).
				With(domain.FeatureEnergy, 0.2).
				With(domain.FeatureAcousticness, 0.2).
				With(domain.FeatureTempo, 0.5),
			wantPrefix: "Chill electronic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoodTagline(tt.centroid)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("MoodTagline() = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestMoodEmoji(t *testing.T) {
	party := uniform(0.5).With(domain.FeatureEnergy, 0.9).With(domain.FeatureValence, 0.9)
	if got := MoodEmoji(party); got != "🔥" {
		t.Errorf("MoodEmoji(party) = %q", got)
	}
	if got := MoodEmoji(uniform(0.5)); got != "🎵" {
		t.Errorf("MoodEmoji(neutral) = %q", got)
	}
}
