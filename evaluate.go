package psephos

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/tree"
)

// EvaluationError represents an error evaluating a tree over a dataset
type EvaluationError string

func (ee EvaluationError) Error() string {
	return string(ee)
}

// ErrEvaluateEmptySet is the error returned when a tree is evaluated
// over a dataset without samples with a defined label value.
const ErrEvaluateEmptySet = EvaluationError("cannot evaluate tree over empty dataset")

/*
ConfusionMatrix cross-tabulates the actual label values of a dataset
against the values a classification tree predicts for its samples.
*/
type ConfusionMatrix struct {
	classes []string
	counts  map[string]map[string]int
	total   int
}

/*
NewConfusionMatrix takes a context, a classification tree and a dataset
and returns the confusion matrix of the tree's predictions over the
dataset's samples, or an error if the samples cannot be retrieved or
predicted. Samples with an undefined label value are skipped.
*/
func NewConfusionMatrix(ctx context.Context, t *tree.Tree, s dataset.Dataset) (*ConfusionMatrix, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluating tree: %v", err)
	}
	cm := &ConfusionMatrix{counts: make(map[string]map[string]int)}
	classSet := make(map[string]bool)
	for _, sample := range samples {
		v, err := sample.ValueFor(ctx, t.Label)
		if err != nil {
			return nil, fmt.Errorf("evaluating tree: %v", err)
		}
		if v == nil {
			continue
		}
		actual := fmt.Sprintf("%v", v)
		p, err := t.Predict(ctx, sample)
		if err != nil {
			return nil, fmt.Errorf("evaluating tree: %v", err)
		}
		predicted, _ := p.PredictedValue()
		if cm.counts[actual] == nil {
			cm.counts[actual] = make(map[string]int)
		}
		cm.counts[actual][predicted]++
		cm.total++
		classSet[actual] = true
		classSet[predicted] = true
	}
	if cm.total == 0 {
		return nil, ErrEvaluateEmptySet
	}
	for c := range classSet {
		cm.classes = append(cm.classes, c)
	}
	sort.Strings(cm.classes)
	return cm, nil
}

// Classes returns the label values appearing in the matrix, as actual
// or predicted values, in lexicographic order.
func (cm *ConfusionMatrix) Classes() []string {
	return cm.classes
}

// Count returns the number of samples with the given actual label
// value that the tree predicted as the given predicted value.
func (cm *ConfusionMatrix) Count(actual, predicted string) int {
	return cm.counts[actual][predicted]
}

// Total returns the number of samples tabulated in the matrix.
func (cm *ConfusionMatrix) Total() int {
	return cm.total
}

// Accuracy returns the fraction of tabulated samples whose predicted
// value matches their actual value.
func (cm *ConfusionMatrix) Accuracy() float64 {
	var hits int
	for _, c := range cm.classes {
		hits += cm.counts[c][c]
	}
	return float64(hits) / float64(cm.total)
}

// MisclassificationRate returns the fraction of tabulated samples
// whose predicted value differs from their actual value.
func (cm *ConfusionMatrix) MisclassificationRate() float64 {
	return 1.0 - cm.Accuracy()
}

func (cm *ConfusionMatrix) String() string {
	var sb strings.Builder
	sb.WriteString("actual \\ predicted")
	for _, c := range cm.classes {
		fmt.Fprintf(&sb, "\t%s", c)
	}
	sb.WriteString("\n")
	for _, actual := range cm.classes {
		sb.WriteString(actual)
		for _, predicted := range cm.classes {
			fmt.Fprintf(&sb, "\t%d", cm.counts[actual][predicted])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

/*
MeanSquaredError takes a context, a regression tree and a dataset and
returns the mean of the squared differences between the dataset's
label values and the tree's predictions for its samples, or an error
if the samples cannot be retrieved or predicted. Samples with an
undefined label value are skipped.
*/
func MeanSquaredError(ctx context.Context, t *tree.Tree, s dataset.Dataset) (float64, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return 0.0, fmt.Errorf("evaluating tree: %v", err)
	}
	var sse float64
	var n int
	for _, sample := range samples {
		v, err := sample.ValueFor(ctx, t.Label)
		if err != nil {
			return 0.0, fmt.Errorf("evaluating tree: %v", err)
		}
		if v == nil {
			continue
		}
		actual, ok := v.(float64)
		if !ok {
			return 0.0, fmt.Errorf("evaluating tree: label %s has non-numeric value %v", t.Label.Name(), v)
		}
		p, err := t.Predict(ctx, sample)
		if err != nil {
			return 0.0, fmt.Errorf("evaluating tree: %v", err)
		}
		diff := p.Mean() - actual
		sse += diff * diff
		n++
	}
	if n == 0 {
		return 0.0, ErrEvaluateEmptySet
	}
	return sse / float64(n), nil
}

/*
ErrorReduction takes a baseline error and the error of a candidate
model and returns the fraction of the baseline error the candidate
removes, (baseline - candidate) / baseline.
*/
func ErrorReduction(baseline, candidate float64) float64 {
	return (baseline - candidate) / baseline
}

/*
FitSummary describes a fitted tree over its training dataset: the
features its internal nodes split on, its number of leaves and its
training error, a misclassification rate for classification trees or
a residual mean deviance for regression trees.
*/
type FitSummary struct {
	// FeaturesUsed holds the names of the features the tree splits
	// on, in lexicographic order.
	FeaturesUsed []string
	// Leaves is the number of terminal nodes of the tree.
	Leaves int
	// TrainingError is the misclassification rate over the training
	// dataset for classification trees, the residual mean deviance
	// for regression trees.
	TrainingError float64
	// Numeric indicates whether the summarized tree is a regression
	// tree.
	Numeric bool
}

/*
Summarize takes a context, a tree and its training dataset and returns
a FitSummary for the tree, or an error if the tree cannot be traversed
or the dataset queried.
*/
func Summarize(ctx context.Context, t *tree.Tree, s dataset.Dataset) (*FitSummary, error) {
	featureSet := make(map[string]bool)
	var leaves int
	var leafDeviance float64
	err := t.Traverse(ctx, false, func(ctx context.Context, n *tree.Node) error {
		if n.IsLeaf() {
			leaves++
			if n.Prediction != nil {
				leafDeviance += n.Prediction.Deviance()
			}
			return nil
		}
		if n.SubtreeFeature != nil {
			featureSet[n.SubtreeFeature.Name()] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("summarizing tree: %v", err)
	}
	summary := &FitSummary{Leaves: leaves}
	for name := range featureSet {
		summary.FeaturesUsed = append(summary.FeaturesUsed, name)
	}
	sort.Strings(summary.FeaturesUsed)
	if _, ok := t.Label.(*feature.ContinuousFeature); ok {
		summary.Numeric = true
		n, err := s.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("summarizing tree: %v", err)
		}
		if n <= leaves {
			return nil, fmt.Errorf("summarizing tree: %d samples cannot support %d leaves", n, leaves)
		}
		summary.TrainingError = leafDeviance / float64(n-leaves)
		return summary, nil
	}
	cm, err := NewConfusionMatrix(ctx, t, s)
	if err != nil {
		return nil, fmt.Errorf("summarizing tree: %v", err)
	}
	summary.TrainingError = cm.MisclassificationRate()
	return summary, nil
}

func (fs *FitSummary) String() string {
	errorName := "misclassification rate"
	if fs.Numeric {
		errorName = "residual mean deviance"
	}
	return fmt.Sprintf("features used: %s\nleaves: %d\n%s: %f\n",
		strings.Join(fs.FeaturesUsed, ", "), fs.Leaves, errorName, fs.TrainingError)
}
