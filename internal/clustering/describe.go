package clustering

import (
	"math"
	"sort"
	"strings"

	"github.com/timmy/musicmatch/internal/domain"
)

// minDeviation is the smallest centroid deviation from the catalog mean worth naming.
const minDeviation = 0.05

var shortNames = [domain.NumFeatures]string{
	domain.FeatureEnergy:           "energy",
	domain.FeatureDanceability:     "dance",
	domain.FeatureAcousticness:     "acoustic",
	domain.FeatureValence:          "valence",
	domain.FeatureInstrumentalness: "instrumental",
	domain.FeatureLoudness:         "loudness",
	domain.FeatureTempo:            "tempo",
	domain.FeatureSpeechiness:      "speech",
	domain.FeatureLiveness:         "live",
}

// Description is the human-readable summary of a centroid.
type Description struct {
	Label string // e.g. "high-energy / low-acoustic"
	Mood  string
	Emoji string
}

// Describe summarizes a centroid relative to the catalog mean.
func Describe(centroid, catalogMean domain.FeatureVector) Description {
	return Description{
		Label: DeviationLabel(centroid, catalogMean),
		Mood:  MoodTagline(centroid),
		Emoji: MoodEmoji(centroid),
	}
}

// DeviationLabel names the (up to two) features where centroid deviates most from the catalog mean.
func DeviationLabel(centroid, catalogMean domain.FeatureVector) string {
	type deviation struct {
		feature domain.Feature
		delta   float64
	}
	devs := make([]deviation, 0, domain.NumFeatures)
	for _, f := range domain.Features {
		devs = append(devs, deviation{feature: f, delta: centroid[f] - catalogMean[f]})
	}
	sort.SliceStable(devs, func(i, j int) bool {
		return math.Abs(devs[i].delta) > math.Abs(devs[j].delta)
	})

	parts := make([]string, 0, 2)
	for _, d := range devs[:2] {
		if math.Abs(d.delta) < minDeviation {
			break
		}
		level := "high"
		if d.delta < 0 {
			level = "low"
		}
		parts = append(parts, level+"-"+shortNames[d.feature])
	}
	if len(parts) == 0 {
		return "balanced"
	}
	return strings.Join(parts, " / ")
}

type moodRule struct {
	match   func(c domain.FeatureVector) bool
	tagline string
}

var moodRules = []moodRule{
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureEnergy] > 0.7 && c[domain.FeatureDanceability] > 0.7 && c[domain.FeatureValence] > 0.6
	}, "Upbeat party anthems - energetic, danceable, and feel-good tracks"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureEnergy] > 0.7 && c[domain.FeatureDanceability] > 0.6 && c[domain.FeatureValence] < 0.4
	}, "Intense electronic - driving beats with darker undertones"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureEnergy] < 0.4 && c[domain.FeatureAcousticness] > 0.6 && c[domain.FeatureValence] < 0.4
	}, "Melancholic acoustic - introspective, stripped-back emotional pieces"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureEnergy] < 0.5 && c[domain.FeatureAcousticness] > 0.6 && c[domain.FeatureValence] > 0.5
	}, "Warm acoustic - cozy, feel-good unplugged vibes"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureInstrumentalness] > 0.7 && c[domain.FeatureEnergy] < 0.4
	}, "Ambient soundscapes - atmospheric instrumental journeys"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureInstrumentalness] > 0.6 && c[domain.FeatureEnergy] > 0.6
	}, "Instrumental energy - dynamic tracks without vocals"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureEnergy] > 0.7 && c[domain.FeatureDanceability] < 0.5 && c[domain.FeatureLoudness] > 0.6
	}, "High-octane rock - powerful, intense guitar-driven sound"},
	{func(c domain.FeatureVector) bool {
		e := c[domain.FeatureEnergy]
		return e > 0.4 && e < 0.7 && c[domain.FeatureDanceability] > 0.6
	}, "Groovy mid-tempo - smooth rhythms perfect for casual listening"},
	{func(c domain.FeatureVector) bool {
		e := c[domain.FeatureEnergy]
		return c[domain.FeatureValence] > 0.7 && e > 0.4 && e < 0.7
	}, "Feel-good favorites - positive vibes without being overwhelming"},
	{func(c domain.FeatureVector) bool {
		e := c[domain.FeatureEnergy]
		return c[domain.FeatureValence] < 0.3 && e > 0.4 && e < 0.7
	}, "Moody and atmospheric - contemplative tracks with depth"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureTempo] > 0.7 && c[domain.FeatureEnergy] > 0.6
	}, "Fast and furious - high-tempo adrenaline rushers"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureTempo] < 0.4 && c[domain.FeatureEnergy] < 0.4
	}, "Slow and steady - relaxed tracks for winding down"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureSpeechiness] > 0.5
	}, "Spoken and rap-forward - vocals front and center"},
	{func(c domain.FeatureVector) bool {
		return c[domain.FeatureLiveness] > 0.7
	}, "Live energy - concert recordings with a crowd in the room"},
}

// MoodTagline returns the first matching mood pattern, or a tagline assembled from
// individual feature levels.
func MoodTagline(c domain.FeatureVector) string {
	for _, r := range moodRules {
		if r.match(c) {
			return r.tagline
		}
	}

	var descriptors []string
	switch e := c[domain.FeatureEnergy]; {
	case e > 0.7:
		descriptors = append(descriptors, "high-energy")
	case e < 0.3:
		descriptors = append(descriptors, "chill")
	}
	if c[domain.FeatureDanceability] > 0.7 {
		descriptors = append(descriptors, "danceable")
	}
	switch a := c[domain.FeatureAcousticness]; {
	case a > 0.7:
		descriptors = append(descriptors, "acoustic")
	case a < 0.3:
		descriptors = append(descriptors, "electronic")
	}
	switch v := c[domain.FeatureValence]; {
	case v > 0.7:
		descriptors = append(descriptors, "uplifting")
	case v < 0.3:
		descriptors = append(descriptors, "melancholic")
	}
	if c[domain.FeatureInstrumentalness] > 0.7 {
		descriptors = append(descriptors, "instrumental")
	}

	if len(descriptors) == 0 {
		return "Balanced mix - versatile tracks spanning multiple styles"
	}
	joined := strings.Join(descriptors, " ")
	return strings.ToUpper(joined[:1]) + joined[1:] + " tracks"
}

// MoodEmoji picks an emoji for the centroid's overall mood.
func MoodEmoji(c domain.FeatureVector) string {
	energy := c[domain.FeatureEnergy]
	valence := c[domain.FeatureValence]
	switch {
	case energy > 0.7 && valence > 0.6:
		return "🔥"
	case energy > 0.7 && valence < 0.4:
		return "⚡"
	case c[domain.FeatureAcousticness] > 0.7:
		return "🎸"
	case c[domain.FeatureInstrumentalness] > 0.7 && energy < 0.4:
		return "🌙"
	case valence > 0.7:
		return "☀️"
	case valence < 0.3:
		return "🌧️"
	case energy < 0.3:
		return "😌"
	default:
		return "🎵"
	}
}
