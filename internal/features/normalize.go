// Package features maps raw audio descriptors onto the shared [0,1] feature space.
package features

import (
	"math"

	"github.com/timmy/musicmatch/internal/domain"
)

// Range is the natural range of a raw descriptor.
type Range struct {
	Min float64
	Max float64
}

// Ranges are fixed rather than fitted to the catalog so that a normalized value keeps its
// meaning when the catalog is re-ingested.
var Ranges = [domain.NumFeatures]Range{
	domain.FeatureEnergy:           {0, 1},
	domain.FeatureDanceability:     {0, 1},
	domain.FeatureAcousticness:     {0, 1},
	domain.FeatureValence:          {0, 1},
	domain.FeatureInstrumentalness: {0, 1},
	domain.FeatureLoudness:         {-60, 0},
	domain.FeatureTempo:            {40, 200},
	domain.FeatureSpeechiness:      {0, 1},
	domain.FeatureLiveness:         {0, 1},
}

// KeyNames maps pitch classes 0-11 to note names.
var KeyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Normalize rescales raw descriptors into a FeatureVector.
// Missing descriptors count as 0. Present values outside their range are clamped and
// reported as warnings; normalization itself never fails.
func Normalize(raw domain.RawDescriptors) (domain.FeatureVector, []domain.OutOfRangeWarning) {
	values := [domain.NumFeatures]*float64{
		domain.FeatureEnergy:           raw.Energy,
		domain.FeatureDanceability:     raw.Danceability,
		domain.FeatureAcousticness:     raw.Acousticness,
		domain.FeatureValence:          raw.Valence,
		domain.FeatureInstrumentalness: raw.Instrumentalness,
		domain.FeatureLoudness:         raw.Loudness,
		domain.FeatureTempo:            raw.Tempo,
		domain.FeatureSpeechiness:      raw.Speechiness,
		domain.FeatureLiveness:         raw.Liveness,
	}

	var (
		out      domain.FeatureVector
		warnings []domain.OutOfRangeWarning
	)
	for _, f := range domain.Features {
		r := Ranges[f]
		if values[f] == nil {
			out[f] = scale(0, r)
			continue
		}
		v := *values[f]
		if v < r.Min || v > r.Max || math.IsNaN(v) {
			warnings = append(warnings, domain.OutOfRangeWarning{Feature: f, Value: v, Min: r.Min, Max: r.Max})
		}
		out[f] = scale(v, r)
	}
	return out, warnings
}

// NormalizeValue rescales a single raw value for feature f.
func NormalizeValue(f domain.Feature, v float64) float64 {
	return scale(v, Ranges[f])
}

func scale(v float64, r Range) float64 {
	if r.Max-r.Min <= 0 {
		return 0.5
	}
	return domain.Clamp01((v - r.Min) / (r.Max - r.Min))
}

// KeyName returns the note name for a pitch class, "C" when missing or invalid.
func KeyName(key *int) string {
	if key == nil || *key < 0 || *key >= len(KeyNames) {
		return KeyNames[0]
	}
	return KeyNames[*key]
}

// ScaleName returns "minor" for mode 0 and "major" otherwise.
func ScaleName(mode *int) string {
	if mode != nil && *mode == 0 {
		return "minor"
	}
	return "major"
}

// ApplyToSong writes normalized features and musical metadata onto song.
func ApplyToSong(song *domain.Song, raw domain.RawDescriptors) []domain.OutOfRangeWarning {
	vec, warnings := Normalize(raw)
	song.SetFeatures(vec)
	if raw.Tempo != nil {
		song.BPM = *raw.Tempo
	}
	song.Key = KeyName(raw.Key)
	song.Scale = ScaleName(raw.Mode)
	return warnings
}
