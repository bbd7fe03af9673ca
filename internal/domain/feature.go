package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Feature identifies one dimension of a FeatureVector.
type Feature int

// Feature order is fixed; every FeatureVector in the system uses it.
const (
	FeatureEnergy Feature = iota
	FeatureDanceability
	FeatureAcousticness
	FeatureValence
	FeatureInstrumentalness
	FeatureLoudness
	FeatureTempo
	FeatureSpeechiness
	FeatureLiveness

	NumFeatures = 9
)

var featureNames = [NumFeatures]string{
	"energy",
	"danceability",
	"acousticness",
	"valence",
	"instrumentalness",
	"loudness",
	"bpm_normalized",
	"speechiness",
	"liveness",
}

// Features lists every feature in vector order.
var Features = [NumFeatures]Feature{
	FeatureEnergy,
	FeatureDanceability,
	FeatureAcousticness,
	FeatureValence,
	FeatureInstrumentalness,
	FeatureLoudness,
	FeatureTempo,
	FeatureSpeechiness,
	FeatureLiveness,
}

// String returns the wire name of the feature.
func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// ParseFeature resolves a wire name such as "energy" to its Feature.
func ParseFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// FeatureVector is a fixed-order set of feature values.
// It is an array, so assignment copies it and a stored vector cannot be mutated through another reference.
type FeatureVector [NumFeatures]float64

// Get returns the value of a single feature.
func (v FeatureVector) Get(f Feature) float64 {
	return v[f]
}

// With returns a copy of v with feature f set to value.
func (v FeatureVector) With(f Feature, value float64) FeatureVector {
	v[f] = value
	return v
}

// Slice returns the values as a new slice in feature order.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// Distance returns the Euclidean distance between two vectors.
func (v FeatureVector) Distance(o FeatureVector) float64 {
	return math.Sqrt(v.SquaredDistance(o))
}

// SquaredDistance returns the squared Euclidean distance between two vectors.
func (v FeatureVector) SquaredDistance(o FeatureVector) float64 {
	var sum float64
	for i := range v {
		d := v[i] - o[i]
		sum += d * d
	}
	return sum
}

// Clamp01 returns a copy of v with every value limited to [0,1].
func (v FeatureVector) Clamp01() FeatureVector {
	for i := range v {
		v[i] = Clamp01(v[i])
	}
	return v
}

// Clamp01 limits x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Similarity converts a distance to a score in [0,1] as 1 - distance, clamped.
// It is a linear approximation, not a calibrated probability.
func Similarity(distance float64) float64 {
	return Clamp01(1 - distance)
}

// Mean returns the element-wise mean of the given vectors, or the zero vector for none.
func Mean(vectors []FeatureVector) FeatureVector {
	var out FeatureVector
	if len(vectors) == 0 {
		return out
	}
	for _, v := range vectors {
		for i := range out {
			out[i] += v[i]
		}
	}
	n := float64(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range featureNames {
		m[name] = v[i]
	}
	return m
}

// FeatureVectorFromMap builds a vector from named values. Missing names default to 0.
// Unknown names are rejected.
func FeatureVectorFromMap(m map[string]float64) (FeatureVector, error) {
	var v FeatureVector
	for name, value := range m {
		f, ok := ParseFeature(name)
		if !ok {
			return v, fmt.Errorf("unknown feature %q", name)
		}
		v[f] = value
	}
	return v, nil
}

// MarshalJSON encodes the vector as an object keyed by feature name.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes an object keyed by feature name.
func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := FeatureVectorFromMap(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Value implements the driver.Valuer interface for database serialization.
func (v FeatureVector) Value() (driver.Value, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (v *FeatureVector) Scan(value interface{}) error {
	if value == nil {
		*v = FeatureVector{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan FeatureVector")
		}
		bytes = []byte(str)
	}
	return v.UnmarshalJSON(bytes)
}
