package psephos

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/queue"
	"github.com/psephology/psephos/tree"
)

/*
Partition represents a binary partition of a dataset according to a
feature: two disjoint subtrees whose criteria are complementary, with
the training impurity decrease the partition achieves to predict the
label feature.
*/
type Partition struct {
	Feature          feature.Feature
	Tasks            []*queue.Task
	impurityDecrease float64
}

// ImpurityDecrease returns the decrease in training impurity the
// partition achieves over the dataset it was built from.
func (p *Partition) ImpurityDecrease() float64 {
	return p.impurityDecrease
}

/*
newPartition takes a context, a dataset, a feature, a label feature and
the impurity of the dataset for the label, and returns the best binary
partition of the dataset over the given feature, or nil if the feature
admits no partition with both sides populated.
*/
func newPartition(ctx context.Context, s dataset.Dataset, f feature.Feature, label feature.Feature, sImpurity float64) (*Partition, error) {
	switch f := f.(type) {
	default:
		return nil, fmt.Errorf("unknown feature type %T for feature %v", f, f.Name())
	case *feature.DiscreteFeature:
		return newDiscretePartition(ctx, s, f, label, sImpurity)
	case *feature.OrdinalFeature:
		return newOrdinalPartition(ctx, s, f, label, sImpurity)
	case *feature.ContinuousFeature:
		return newContinuousPartition(ctx, s, f, label, sImpurity)
	}
}

/*
newDiscretePartition evaluates, for every available value of the given
discrete feature, the binary partition into the samples taking that
value and the samples taking any other, and returns the one with the
greatest impurity decrease, or nil if none has both sides populated.
*/
func newDiscretePartition(ctx context.Context, s dataset.Dataset, f *feature.DiscreteFeature, label feature.Feature, sImpurity float64) (*Partition, error) {
	var result *Partition
	for _, value := range f.AvailableValues() {
		pair := []feature.Criterion{
			feature.NewDiscreteCriterion(f, value),
			feature.NewExclusionCriterion(f, value),
		}
		part, err := newCriteriaPartition(ctx, s, f, label, sImpurity, pair)
		if err != nil {
			return nil, err
		}
		if part != nil && (result == nil || part.impurityDecrease > result.impurityDecrease) {
			result = part
		}
	}
	return result, nil
}

/*
newOrdinalPartition evaluates, for every cut between consecutive levels
of the given ordinal feature, the binary partition into the samples
below the cut and the samples at or above it, and returns the one with
the greatest impurity decrease, or nil if none has both sides populated.
*/
func newOrdinalPartition(ctx context.Context, s dataset.Dataset, f *feature.OrdinalFeature, label feature.Feature, sImpurity float64) (*Partition, error) {
	var result *Partition
	levels := len(f.Levels())
	for cut := 1; cut < levels; cut++ {
		pair := []feature.Criterion{
			feature.NewOrdinalCriterion(f, 0, cut),
			feature.NewOrdinalCriterion(f, cut, levels),
		}
		part, err := newCriteriaPartition(ctx, s, f, label, sImpurity, pair)
		if err != nil {
			return nil, err
		}
		if part != nil && (result == nil || part.impurityDecrease > result.impurityDecrease) {
			result = part
		}
	}
	return result, nil
}

/*
newContinuousPartition evaluates, for every threshold halfway between
consecutive distinct values the given continuous feature takes on the
dataset, the binary partition into the samples below the threshold and
the samples at or above it, and returns the one with the greatest
impurity decrease, or nil if the feature takes fewer than 2 values.
*/
func newContinuousPartition(ctx context.Context, s dataset.Dataset, f *feature.ContinuousFeature, label feature.Feature, sImpurity float64) (*Partition, error) {
	var floatValues []float64
	sfvs, err := s.FeatureValues(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, v := range sfvs {
		if vf, ok := v.(float64); ok {
			floatValues = append(floatValues, vf)
		}
	}
	if len(floatValues) < 2 {
		return nil, nil
	}
	sort.Float64s(floatValues)
	var result *Partition
	for i, vf := range floatValues[1:] {
		threshold := (floatValues[i] + vf) / 2.0
		pair := []feature.Criterion{
			feature.NewContinuousCriterion(f, math.Inf(-1), threshold),
			feature.NewContinuousCriterion(f, threshold, math.Inf(1)),
		}
		part, err := newCriteriaPartition(ctx, s, f, label, sImpurity, pair)
		if err != nil {
			return nil, err
		}
		if part != nil && (result == nil || part.impurityDecrease > result.impurityDecrease) {
			result = part
		}
	}
	return result, nil
}

func newCriteriaPartition(ctx context.Context, s dataset.Dataset, f feature.Feature, label feature.Feature, sImpurity float64, criteria []feature.Criterion) (*Partition, error) {
	impurityDecrease := sImpurity
	tasks := make([]*queue.Task, 0, len(criteria))
	for _, fc := range criteria {
		n := &tree.Node{FeatureCriterion: fc}
		ns, err := s.SubsetWith(ctx, fc)
		if err != nil {
			return nil, err
		}
		count, err := ns.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		nImpurity, err := impurity(ctx, ns, label)
		if err != nil {
			return nil, err
		}
		impurityDecrease -= nImpurity
		tasks = append(tasks, &queue.Task{Node: n, Dataset: ns})
	}
	return &Partition{f, tasks, impurityDecrease}, nil
}

/*
impurity returns the training impurity of the dataset for the given
label feature: the deviance (2 times the count times the entropy) for
discrete and ordinal labels, the sum of squared deviations from the
mean for continuous labels. It is additive over disjoint subsets, so
the impurity decrease of a partition is the parent impurity minus the
children impurities.
*/
func impurity(ctx context.Context, s dataset.Dataset, label feature.Feature) (float64, error) {
	if _, ok := label.(*feature.ContinuousFeature); ok {
		summary, err := s.NumericSummary(ctx, label)
		if err != nil {
			return 0.0, err
		}
		return summary.SumSquares, nil
	}
	fvc, err := s.CountFeatureValues(ctx, label)
	if err != nil {
		return 0.0, err
	}
	var n float64
	for _, c := range fvc {
		n += float64(c)
	}
	if n == 0 {
		return 0.0, nil
	}
	var deviance float64
	for _, c := range fvc {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		deviance -= 2.0 * float64(c) * math.Log(p)
	}
	return deviance, nil
}
