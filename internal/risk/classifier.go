// Package risk scores individual route segments for accident risk by feeding
// zone and temporal features to a pre-trained binary classifier.
package risk

import (
	"context"
	"errors"
)

// Sentinel errors for risk scoring.
var (
	// ErrModelInference indicates the classifier rejected or failed on a
	// feature vector. Per-segment and non-fatal: callers skip the segment and
	// continue aggregating.
	ErrModelInference = errors.New("model inference failed")
)

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	// Class is the discrete decision: 1 = accident expected, 0 = not.
	Class int

	// Probabilities holds the class-probability pair; index 0 is the safe
	// class, index 1 the accident class.
	Probabilities [2]float64
}

// Classifier is the boundary to the deployed model. The model is trained and
// served elsewhere; the core only calls it. Implementations must be safe for
// concurrent use.
type Classifier interface {
	// Predict classifies a feature vector. The vector layout is owned by the
	// caller (see FeatureVector) and must match the model's training schema.
	Predict(ctx context.Context, features []float64) (Prediction, error)
}
