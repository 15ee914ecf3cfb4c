package risk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/risk"
	"github.com/viasegura/viasegura/internal/zones"
)

// stubClassifier records the feature vectors it receives and returns a fixed
// prediction or error.
type stubClassifier struct {
	prediction risk.Prediction
	err        error
	received   [][]float64
}

func (s *stubClassifier) Predict(_ context.Context, features []float64) (risk.Prediction, error) {
	s.received = append(s.received, features)
	if s.err != nil {
		return risk.Prediction{}, s.err
	}
	return s.prediction, nil
}

func TestNewFeatureVectorOrder(t *testing.T) {
	temporal := risk.TemporalFeatures{Hour: 8, Month: 3, Weekday: 4, Shift: risk.ShiftMorning}
	zone := zones.ZoneAssignment{DistrictCode: zones.DistrictEixample, NeighborhoodCode: 9}

	vector := risk.NewFeatureVector(temporal, zone)

	assert.Equal(t, risk.FeatureVector{1, 4, 9}, vector)
	assert.Equal(t, []float64{1, 4, 9}, vector.Slice())
}

func TestScorerScore(t *testing.T) {
	classifier := &stubClassifier{
		prediction: risk.Prediction{Class: 1, Probabilities: [2]float64{0.35, 0.65}},
	}
	scorer := risk.NewScorer(risk.ScorerConfig{
		Classifier: classifier,
		Logger:     zerolog.Nop(),
	})

	temporal := risk.TemporalFeatures{Hour: 18, Month: 7, Weekday: 5, Shift: risk.ShiftEvening}
	zone := zones.ZoneAssignment{DistrictCode: zones.DistrictGracia, NeighborhoodCode: 30}

	segment, err := scorer.Score(context.Background(), 41.4036, 2.1589, zone, temporal)
	require.NoError(t, err)

	assert.Equal(t, 41.4036, segment.Lat)
	assert.Equal(t, 2.1589, segment.Lon)
	assert.Equal(t, 1, segment.Prediction)
	assert.Equal(t, 0.65, segment.ProbabilityAccident)
	assert.Equal(t, 0.35, segment.ProbabilitySafe)
	assert.Equal(t, risk.FeatureSnapshot{
		Hour:             18,
		Month:            7,
		Shift:            risk.ShiftEvening,
		Weekday:          5,
		DistrictCode:     zones.DistrictGracia,
		NeighborhoodCode: 30,
	}, segment.Features)

	require.Len(t, classifier.received, 1)
	assert.Equal(t, []float64{2, 5, 30}, classifier.received[0])
}

func TestScorerScoreWrapsModelErrors(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("connection refused")}
	scorer := risk.NewScorer(risk.ScorerConfig{
		Classifier: classifier,
		Logger:     zerolog.Nop(),
	})

	_, err := scorer.Score(context.Background(), 41.38, 2.17, zones.ZoneAssignment{NeighborhoodCode: 1}, risk.TemporalFeatures{Shift: risk.ShiftNight, Weekday: 7})

	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrModelInference)
	assert.Contains(t, err.Error(), "connection refused")
}
