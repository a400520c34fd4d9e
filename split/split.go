/*
Package split partitions datasets into training and test halves and
into cross-validation folds.

All draws go through an explicitly injected *rand.Rand so that the same
seed always produces the same partition.
*/
package split

import (
	"context"
	"math/rand"

	"github.com/psephology/psephos/dataset"
)

// Error represents a failure to partition a dataset
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrEmptySide is returned when the requested training fraction
// would leave the training or the test side without samples.
const ErrEmptySide = Error("split would produce an empty training or test set")

// ErrTooFewSamples is returned when a dataset has fewer samples
// than the requested number of folds.
const ErrTooFewSamples = Error("dataset has fewer samples than requested folds")

/*
Validation takes a context, a dataset, a fraction and a seeded random
generator and partitions the dataset into a drawn set with
floor(N*fraction) samples drawn without replacement and a rest set with
the remaining samples. It returns the rest set first and the drawn set
second. The two sets are disjoint and together cover the dataset, and
the same generator state always yields the same partition.

It returns ErrEmptySide if either side of the partition would be empty.
*/
func Validation(ctx context.Context, ds dataset.Dataset, fraction float64, rng *rand.Rand) (dataset.Dataset, dataset.Dataset, error) {
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, nil, err
	}
	n := len(samples)
	drawnSize := int(float64(n) * fraction)
	if drawnSize <= 0 || drawnSize >= n {
		return nil, nil, ErrEmptySide
	}
	perm := rng.Perm(n)
	rest := make([]dataset.Sample, 0, n-drawnSize)
	drawn := make([]dataset.Sample, 0, drawnSize)
	inDrawn := make(map[int]bool, drawnSize)
	for _, i := range perm[:drawnSize] {
		inDrawn[i] = true
	}
	// keep dataset order within each side so splits are stable views
	for i, s := range samples {
		if inDrawn[i] {
			drawn = append(drawn, s)
		} else {
			rest = append(rest, s)
		}
	}
	return dataset.New(rest), dataset.New(drawn), nil
}

/*
Folds takes a context, a dataset, a number of folds k and a seeded
random generator, shuffles the dataset's samples once and deals them
into k disjoint folds of near-equal size that together cover the
dataset. The same generator state always yields the same folds.

It returns ErrTooFewSamples if the dataset has fewer than k samples.
*/
func Folds(ctx context.Context, ds dataset.Dataset, k int, rng *rand.Rand) ([]dataset.Dataset, error) {
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, err
	}
	n := len(samples)
	if k <= 0 || n < k {
		return nil, ErrTooFewSamples
	}
	perm := rng.Perm(n)
	folds := make([][]dataset.Sample, k)
	for i, pi := range perm {
		folds[i%k] = append(folds[i%k], samples[pi])
	}
	result := make([]dataset.Dataset, 0, k)
	for _, fold := range folds {
		result = append(result, dataset.New(fold))
	}
	return result, nil
}

/*
Merge takes a context and a slice of datasets and returns a dataset
with the samples of all of them. It is used to assemble the training
side of a cross-validation round from the folds not held out.
*/
func Merge(ctx context.Context, dss []dataset.Dataset) (dataset.Dataset, error) {
	var samples []dataset.Sample
	for _, ds := range dss {
		ss, err := ds.Samples(ctx)
		if err != nil {
			return nil, err
		}
		samples = append(samples, ss...)
	}
	return dataset.New(samples), nil
}
