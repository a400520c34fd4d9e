package tree

import (
	"github.com/psephology/psephos/feature"
)

/*
Node is a node of a decision tree
*/
type Node struct {
	// An ID to identify the node
	ID string
	// The ID for the parent of the node in the tree
	ParentID string
	// A slice with the IDs of the nodes directly under this node.
	// Grown trees split binarily, so it holds 0 or 2 IDs.
	SubtreeIDs []string
	// The prediction for samples that satisfied node constraints from
	// the root of the tree up to this node, together with the node's
	// training deviance and sample count.
	Prediction *Prediction
	// The constraint this node imposes on samples.
	// For growing trees it is the criterion that applied to the parent
	// node's dataset produces this node's dataset.
	// For fully-grown trees it is the constraint on the evaluated feature
	// that when satisfied by the evaluated sample selects the current node
	// to continue predicting a sample or testing the tree against it.
	FeatureCriterion feature.Criterion
	// The feature on which nodes directly under this node impose a
	// constraint: the splitting attribute of the node. It is nil on
	// leaves.
	SubtreeFeature feature.Feature
}

// IsLeaf returns whether the node has no subtrees.
func (n *Node) IsLeaf() bool {
	return len(n.SubtreeIDs) == 0
}
