package psephos

// GrowthPolicy holds the stopping rules applied while a tree is
// grown: nodes below the minimum size or at the maximum depth are
// not developed, and splits that decrease the training impurity by
// less than the minimum are not taken. Pure nodes always stay
// leaves.
type GrowthPolicy struct {
	// MinNodeSize is the minimum number of training samples a node
	// must hold to be considered for splitting.
	MinNodeSize int
	// MinImpurityDecrease is the minimum decrease in training
	// impurity (deviance for classification, sum of squared errors
	// for regression) a split must achieve to be taken.
	MinImpurityDecrease float64
	// MaxDepth is the depth at which nodes stop being developed,
	// with the root at depth 0. Zero means no depth limit.
	MaxDepth int
}

// DefaultGrowthPolicy returns the growth policy applied when a
// Grower has none: nodes with fewer than 10 samples stay leaves and
// splits must decrease the impurity by a strictly positive amount.
func DefaultGrowthPolicy() *GrowthPolicy {
	return &GrowthPolicy{
		MinNodeSize:         10,
		MinImpurityDecrease: 1e-9,
	}
}
