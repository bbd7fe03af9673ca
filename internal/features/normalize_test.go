package features

import (
	"math"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		raw          domain.RawDescriptors
		feature      domain.Feature
		want         float64
		wantWarnings int
	}{
		{
			name:    "tempo midpoint",
			raw:     domain.RawDescriptors{Tempo: ptr(120.0)},
			feature: domain.FeatureTempo,
			want:    0.5,
		},
		{
			name:    "loudness in dB",
			raw:     domain.RawDescriptors{Loudness: ptr(-15.0)},
			feature: domain.FeatureLoudness,
			want:    0.75,
		},
		{
			name:         "tempo above range clamps",
			raw:          domain.RawDescriptors{Tempo: ptr(260.0)},
			feature:      domain.FeatureTempo,
			want:         1,
			wantWarnings: 1,
		},
		{
			name:         "negative energy clamps",
			raw:          domain.RawDescriptors{Energy: ptr(-0.2)},
			feature:      domain.FeatureEnergy,
			want:         0,
			wantWarnings: 1,
		},
		{
			name:    "missing valence is zero",
			raw:     domain.RawDescriptors{},
			feature: domain.FeatureValence,
			want:    0,
		},
		{
			name:    "missing loudness is raw zero dB",
			raw:     domain.RawDescriptors{},
			feature: domain.FeatureLoudness,
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, warnings := Normalize(tt.raw)
			if got := vec.Get(tt.feature); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s: got %v, want %v", tt.feature, got, tt.want)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings: got %d, want %d (%v)", len(warnings), tt.wantWarnings, warnings)
			}
		})
	}
}

func TestNormalizeAlwaysInUnitRange(t *testing.T) {
	extremes := []float64{math.Inf(-1), -1e9, -60, -1, 0, 0.5, 1, 40, 200, 1e9, math.Inf(1), math.NaN()}
	for _, x := range extremes {
		raw := domain.RawDescriptors{
			Tempo: ptr(x), Loudness: ptr(x), Energy: ptr(x), Danceability: ptr(x),
			Acousticness: ptr(x), Valence: ptr(x), Instrumentalness: ptr(x),
			Speechiness: ptr(x), Liveness: ptr(x),
		}
		vec, _ := Normalize(raw)
		for _, f := range domain.Features {
			if v := vec.Get(f); v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("input %v: %s = %v outside [0,1]", x, f, v)
			}
		}
	}
}

func TestOutOfRangeWarningDetails(t *testing.T) {
	_, warnings := Normalize(domain.RawDescriptors{Loudness: ptr(3.5)})
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.Feature != domain.FeatureLoudness || w.Value != 3.5 || w.Min != -60 || w.Max != 0 {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestApplyToSong(t *testing.T) {
	var song domain.Song
	ApplyToSong(&song, domain.RawDescriptors{
		Tempo:  ptr(128.0),
		Energy: ptr(0.9),
		Key:    ptr(9),
		Mode:   ptr(0),
	})
	if song.BPM != 128 {
		t.Errorf("bpm: got %v", song.BPM)
	}
	if song.Key != "A" || song.Scale != "minor" {
		t.Errorf("key/scale: got %s %s", song.Key, song.Scale)
	}
	if song.Energy != 0.9 {
		t.Errorf("energy: got %v", song.Energy)
	}
	if math.Abs(song.TempoNormalized-0.55) > 1e-9 {
		t.Errorf("tempo: got %v", song.TempoNormalized)
	}
}

func TestKeyNameFallback(t *testing.T) {
	if got := KeyName(nil); got != "C" {
		t.Errorf("nil key: got %s", got)
	}
	if got := KeyName(ptr(12)); got != "C" {
		t.Errorf("invalid key: got %s", got)
	}
	if got := ScaleName(nil); got != "major" {
		t.Errorf("nil mode: got %s", got)
	}
}
