package psephos

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/split"
	"github.com/psephology/psephos/tree"
)

// SelectionPolicy decides how a pruned size is chosen from a
// cross-validation result.
type SelectionPolicy int

const (
	// SelectMin picks the smallest size whose mean held-out score is
	// the minimum.
	SelectMin SelectionPolicy = iota
	// SelectOneStdErr picks the smallest size whose mean held-out
	// score is within one standard error of the minimum.
	SelectOneStdErr
)

/*
CVResult maps candidate tree sizes (leaf counts) to their held-out
scores across cross-validation folds: misclassification counts for
classification trees, sums of squared errors for regression trees.
*/
type CVResult struct {
	// Sizes holds the scored candidate sizes in decreasing order.
	Sizes []int
	// foldScores[i][j] is the score of the tree pruned to Sizes[i]
	// on held-out fold j.
	foldScores [][]float64
}

/*
CrossValidate takes a context, a fully-grown tree, the dataset it was
grown from, a number of folds k and a seeded random generator. It
deals the dataset into k folds, grows a tree on every combination of
k-1 folds, prunes it to each candidate size on the given tree's
cost-complexity sequence and scores it on the held-out fold. The
scores for every size and fold are returned as a CVResult.
*/
func (g *Grower) CrossValidate(ctx context.Context, t *tree.Tree, s dataset.Dataset, k int, rng *rand.Rand) (*CVResult, error) {
	sizes, err := PruneSizes(ctx, t)
	if err != nil {
		return nil, err
	}
	folds, err := split.Folds(ctx, s, k, rng)
	if err != nil {
		return nil, err
	}
	result := &CVResult{
		Sizes:      sizes,
		foldScores: make([][]float64, len(sizes)),
	}
	for i := range result.foldScores {
		result.foldScores[i] = make([]float64, 0, k)
	}
	for j := range folds {
		heldOut := folds[j]
		rest := make([]dataset.Dataset, 0, k-1)
		for i, fold := range folds {
			if i != j {
				rest = append(rest, fold)
			}
		}
		trainingSet, err := split.Merge(ctx, rest)
		if err != nil {
			return nil, err
		}
		foldTree, err := Grow(ctx, trainingSet, g.Label, g.Features, g.Policy)
		if err != nil {
			return nil, fmt.Errorf("cross-validating fold %d: %v", j, err)
		}
		for i, size := range sizes {
			pruned, err := Prune(ctx, foldTree, size)
			if err != nil {
				return nil, err
			}
			score, err := heldOutScore(ctx, pruned, heldOut)
			if err != nil {
				return nil, err
			}
			result.foldScores[i] = append(result.foldScores[i], score)
		}
	}
	return result, nil
}

// MeanScore returns the mean held-out score of the candidate size at
// position i of the result's Sizes.
func (r *CVResult) MeanScore(i int) float64 {
	scores := r.foldScores[i]
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// StdErr returns the standard error of the held-out scores of the
// candidate size at position i of the result's Sizes.
func (r *CVResult) StdErr(i int) float64 {
	scores := r.foldScores[i]
	if len(scores) < 2 {
		return 0.0
	}
	mean := r.MeanScore(i)
	var ss float64
	for _, s := range scores {
		ss += (s - mean) * (s - mean)
	}
	return math.Sqrt(ss / float64(len(scores)-1) / float64(len(scores)))
}

/*
SelectSize applies the given selection policy on the result and
returns the chosen pruned size: the smallest size reaching the
minimum mean held-out score for SelectMin, or the smallest size
within one standard error of it for SelectOneStdErr.
*/
func (r *CVResult) SelectSize(p SelectionPolicy) int {
	if len(r.Sizes) == 0 {
		return 0
	}
	minIdx := 0
	for i := range r.Sizes {
		if r.MeanScore(i) < r.MeanScore(minIdx) {
			minIdx = i
		}
	}
	threshold := r.MeanScore(minIdx)
	if p == SelectOneStdErr {
		threshold += r.StdErr(minIdx)
	}
	selected := r.Sizes[minIdx]
	for i, size := range r.Sizes {
		if r.MeanScore(i) <= threshold && size < selected {
			selected = size
		}
	}
	return selected
}

func (r *CVResult) String() string {
	idx := make([]int, len(r.Sizes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return r.Sizes[idx[a]] < r.Sizes[idx[b]] })
	result := "size\tmean score\tstd error\n"
	for _, i := range idx {
		result += fmt.Sprintf("%d\t%f\t%f\n", r.Sizes[i], r.MeanScore(i), r.StdErr(i))
	}
	return result
}

// heldOutScore scores a tree over a held-out dataset: the number of
// misclassified samples for classification trees, the sum of squared
// errors for regression trees. Samples with an undefined label value
// are skipped.
func heldOutScore(ctx context.Context, t *tree.Tree, s dataset.Dataset) (float64, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return 0.0, err
	}
	_, numeric := t.Label.(*feature.ContinuousFeature)
	var score float64
	for _, sample := range samples {
		actual, err := sample.ValueFor(ctx, t.Label)
		if err != nil {
			return 0.0, err
		}
		if actual == nil {
			continue
		}
		p, err := t.Predict(ctx, sample)
		if err != nil {
			return 0.0, err
		}
		if numeric {
			av, ok := actual.(float64)
			if !ok {
				return 0.0, fmt.Errorf("scoring tree: label %s has non-numeric value %v", t.Label.Name(), actual)
			}
			diff := p.Mean() - av
			score += diff * diff
		} else {
			pv, _ := p.PredictedValue()
			if pv != fmt.Sprintf("%v", actual) {
				score += 1.0
			}
		}
	}
	return score, nil
}
