// Package projection maps feature vectors onto a shared 2D plane for visualization.
package projection

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/timmy/musicmatch/internal/clustering"
	"github.com/timmy/musicmatch/internal/domain"
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projector is a fitted two-component PCA basis. Songs and centroids projected through the
// same Projector share one coordinate frame.
type Projector struct {
	mean domain.FeatureVector
	axes [2]domain.FeatureVector

	// ExplainedVariance is the share of total variance captured by each axis.
	ExplainedVariance [2]float64
}

// Fit computes the principal axes of vectors.
//
// Axis signs are normalized so each axis's largest-magnitude component is positive, which
// keeps orientation stable across refits of the same data. Axes with no variance are zero, so
// degenerate catalogs project onto a line or the origin.
func Fit(vectors []domain.FeatureVector) (*Projector, error) {
	n := len(vectors)
	if n == 0 {
		return nil, errors.New("projection: no vectors to fit")
	}

	data := make([]float64, 0, n*domain.NumFeatures)
	for _, v := range vectors {
		data = append(data, v[:]...)
	}
	x := mat.NewDense(n, domain.NumFeatures, data)

	p := &Projector{}
	for j := 0; j < domain.NumFeatures; j++ {
		p.mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < domain.NumFeatures; j++ {
			x.Set(i, j, x.At(i, j)-p.mean[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil, errors.New("projection: SVD failed to converge")
	}
	values := svd.Values(nil)

	var v mat.Dense
	svd.VTo(&v)
	_, cols := v.Dims()

	var total float64
	for _, s := range values {
		total += s * s
	}

	for k := 0; k < 2 && k < cols; k++ {
		if values[k] <= 1e-12 {
			continue
		}
		var axis domain.FeatureVector
		for j := 0; j < domain.NumFeatures; j++ {
			axis[j] = v.At(j, k)
		}
		p.axes[k] = orient(axis)
		if total > 0 {
			p.ExplainedVariance[k] = values[k] * values[k] / total
		}
	}
	return p, nil
}

// FitModel fits a projector over every song in a trained model.
func FitModel(m *clustering.Model) (*Projector, error) {
	if !m.Trained() {
		return nil, &domain.UntrainedModelError{Operation: "project"}
	}
	songs := m.Songs()
	vectors := make([]domain.FeatureVector, len(songs))
	for i, s := range songs {
		vectors[i] = s.Features()
	}
	return Fit(vectors)
}

func orient(axis domain.FeatureVector) domain.FeatureVector {
	largest := 0
	for j := range axis {
		if math.Abs(axis[j]) > math.Abs(axis[largest]) {
			largest = j
		}
	}
	if axis[largest] < 0 {
		for j := range axis {
			axis[j] = -axis[j]
		}
	}
	return axis
}

// ProjectVector maps a single vector onto the fitted plane.
func (p *Projector) ProjectVector(v domain.FeatureVector) Point {
	var pt Point
	for j := range v {
		c := v[j] - p.mean[j]
		pt.X += c * p.axes[0][j]
		pt.Y += c * p.axes[1][j]
	}
	return pt
}

// Project maps songs to coordinates keyed by song ID.
func (p *Projector) Project(songs []domain.Song) (map[string]Point, error) {
	if p == nil {
		return nil, &domain.UntrainedModelError{Operation: "project"}
	}
	out := make(map[string]Point, len(songs))
	for _, s := range songs {
		out[s.ID] = p.ProjectVector(s.Features())
	}
	return out, nil
}

// ProjectCentroids maps cluster centroids to coordinates keyed by cluster ID, using the
// same basis as Project.
func (p *Projector) ProjectCentroids(clusters []domain.Cluster) (map[int]Point, error) {
	if p == nil {
		return nil, &domain.UntrainedModelError{Operation: "project centroids"}
	}
	out := make(map[int]Point, len(clusters))
	for _, c := range clusters {
		out[c.ID] = p.ProjectVector(c.Centroid)
	}
	return out, nil
}
