// Package suggest fits the price-suggestion model: TF-IDF features of a
// listing description regressed onto its price by ordinary least squares.
//
// A *Model is immutable once Train returns it, so it can be shared between
// goroutines without locking.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinSamples is the smallest corpus a model can be fitted on.
const MinSamples = 2

// ErrInsufficientData is returned by Train for fewer than MinSamples samples.
var ErrInsufficientData = errors.New("suggest: at least 2 samples are required")

// Sample is one labelled training example.
type Sample struct {
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
}

// Model maps a description to a price.
type Model struct {
	vec       *vectorizer
	weights   []float64
	intercept float64
	samples   int
}

// Train fits a model on samples. Features are centred so the intercept
// absorbs the mean price. It returns ctx.Err() if ctx is cancelled
// mid-fit.
func Train(ctx context.Context, samples []Sample) (*Model, error) {
	n := len(samples)
	if n < MinSamples {
		return nil, ErrInsufficientData
	}

	docs := make([]string, n)
	yc := mat.NewVecDense(n, nil)
	var yMean float64
	for i, s := range samples {
		if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
			return nil, fmt.Errorf("suggest: sample %d has invalid price", i)
		}
		docs[i] = s.Description
		yMean += s.Price
	}
	yMean /= float64(n)
	for i, s := range samples {
		yc.SetVec(i, s.Price-yMean)
	}

	vec, rows := fitVectorizer(docs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := &Model{
		vec:       vec,
		weights:   make([]float64, len(vec.idf)),
		intercept: yMean,
		samples:   n,
	}
	// No usable tokens anywhere: predict the mean.
	if len(vec.idf) == 0 {
		return m, nil
	}

	x := newDesign(rows, len(vec.idf))
	w, err := x.solve(ctx, yc)
	if err != nil {
		return nil, err
	}
	copy(m.weights, w.RawVector().Data)

	var meanDotW float64
	for j, mj := range x.mean {
		meanDotW += mj * m.weights[j]
	}
	m.intercept = yMean - meanDotW
	return m, nil
}

// Predict returns the raw regression output for description. It may be
// negative; callers clamp.
func (m *Model) Predict(description string) float64 {
	return m.intercept + m.vec.transform(description).dotDense(m.weights)
}

// Samples is the number of samples the model was fitted on.
func (m *Model) Samples() int { return m.samples }

// VocabularySize is the number of distinct terms the model knows.
func (m *Model) VocabularySize() int { return len(m.vec.idf) }

// PriceBand returns [price×(1-ratio), price×(1+ratio)].
func PriceBand(price, ratio float64) (lo, hi float64) {
	return price * (1 - ratio), price * (1 + ratio)
}

// RoundPrice clamps p at zero and rounds to two decimals.
func RoundPrice(p float64) float64 {
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	return math.Round(p*100) / 100
}
