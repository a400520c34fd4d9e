package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
)

/*
Prediction represents a prediction made by a decision tree: the majority
class with its probability distribution for classification trees, or the
mean of the training target values for regression trees. It also carries
the number of training samples it was made from and their deviance, the
statistic cost-complexity pruning trades against tree size.
*/
type Prediction struct {
	probabilities map[string]float64
	mean          float64
	numeric       bool
	weight        int
	deviance      float64
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromSample is the error returned by the Predict method of a
tree when the prediction cannot be made because the tree itself cannot make
a prediction for that kind of sample, as opposed to cases where values
for a feature cannot be obtained for example.
*/
const ErrCannotPredictFromSample = PredictionError("no prediction available for this kind of sample")

/*
ErrCannotPredictFromEmptySet is the error returned when trying to build a
prediction based on an empty dataset.
*/
const ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty dataset")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPrediction takes a map[string]float64 with the probabilities
of each value in the prediction, an integer with the number
of samples in the dataset from which those probabilities were computed
and the deviance of those samples, and returns a classification
prediction representing those values.
*/
func NewPrediction(probs map[string]float64, weight int, deviance float64) *Prediction {
	return &Prediction{probabilities: probs, weight: weight, deviance: deviance}
}

/*
NewNumericPrediction takes a float64 mean of the training target values,
an integer with the number of samples it was computed from and their sum
of squared deviations, and returns a regression prediction representing
those values.
*/
func NewNumericPrediction(mean float64, weight int, deviance float64) *Prediction {
	return &Prediction{mean: mean, numeric: true, weight: weight, deviance: deviance}
}

/*
ProbabilityOf takes a string value and returns the float64 probability of
that value according to the prediction.
*/
func (p *Prediction) ProbabilityOf(value string) float64 {
	return p.probabilities[value]
}

/*
Probabilities returns a map of string to float64 containing
the probabilities of each available value. It is nil for
regression predictions.
*/
func (p *Prediction) Probabilities() map[string]float64 {
	return p.probabilities
}

/*
PredictedValue returns a string with the most probable value and a float64
with its prevalence
*/
func (p *Prediction) PredictedValue() (value string, prob float64) {
	for k, v := range p.probabilities {
		if v > prob {
			value = k
			prob = v
		}
	}
	return
}

/*
Mean returns the mean of the training target values the prediction
was made from. It is only meaningful for regression predictions.
*/
func (p *Prediction) Mean() float64 {
	return p.mean
}

/*
Numeric returns whether the prediction is a regression prediction.
*/
func (p *Prediction) Numeric() bool {
	return p.numeric
}

/*
Weight returns the weight of the prediction: an
int equal to the number of samples in the dataset from which
the prediction was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
Deviance returns the training deviance of the samples the prediction was
made from: 2 times the count times the entropy for classification, the sum
of squared deviations from the mean for regression.
*/
func (p *Prediction) Deviance() float64 {
	return p.deviance
}

func (p *Prediction) String() string {
	if p.numeric {
		return fmt.Sprintf("{mean: %f, n: %d}", p.mean, p.weight)
	}
	return strings.Replace(fmt.Sprintf("%v", p.probabilities), "map", "", 1)
}

// NewPredictionFromSet takes a context, a dataset and a label feature and
// returns a prediction for the label based on the (training) data in the
// dataset or an error if there are no samples in the dataset, or the
// dataset cannot be queried. A continuous label yields a regression
// prediction, any other label a classification prediction.
func NewPredictionFromSet(ctx context.Context, s dataset.Dataset, f feature.Feature) (*Prediction, error) {
	if _, ok := f.(*feature.ContinuousFeature); ok {
		return newNumericPredictionFromSet(ctx, s, f)
	}
	weight, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	probs := make(map[string]float64)
	fvc, err := s.CountFeatureValues(ctx, f)
	if err != nil {
		return nil, err
	}
	for v, c := range fvc {
		probs[v] = float64(c) / float64(weight)
	}
	entropy, err := s.Entropy(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Prediction{probabilities: probs, weight: weight, deviance: 2.0 * float64(weight) * entropy}, nil
}

func newNumericPredictionFromSet(ctx context.Context, s dataset.Dataset, f feature.Feature) (*Prediction, error) {
	summary, err := s.NumericSummary(ctx, f)
	if err != nil {
		return nil, err
	}
	if summary.Count == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	return NewNumericPrediction(summary.Mean, summary.Count, summary.SumSquares), nil
}
