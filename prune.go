package psephos

import (
	"context"
	"fmt"

	"github.com/psephology/psephos/tree"
)

// PruneError represents a failure to prune a tree
type PruneError string

func (pe PruneError) Error() string {
	return string(pe)
}

// ErrInvalidPruneSize is returned when a tree is asked to be pruned
// to fewer than one leaf.
const ErrInvalidPruneSize = PruneError("cannot prune a tree to fewer than one leaf")

/*
Prune takes a context, a tree and a number of leaves and returns a new
tree on an in-memory node store obtained by cost-complexity pruning the
given tree until it has at most that number of leaves.

At every step the internal node with the weakest link is collapsed into
a leaf: the node whose collapse increases the training deviance the
least per removed leaf. Pruning only removes nodes, so the returned
tree's leaf count never exceeds the given tree's. Asking for at least
as many leaves as the tree already has returns an unpruned copy;
asking for fewer than one leaf is an error.
*/
func Prune(ctx context.Context, t *tree.Tree, leaves int) (*tree.Tree, error) {
	if leaves < 1 {
		return nil, ErrInvalidPruneSize
	}
	root, err := snapshot(ctx, t)
	if err != nil {
		return nil, err
	}
	for root.leafCount() > leaves {
		weakest := root.weakestLink()
		if weakest == nil {
			break
		}
		weakest.collapse()
	}
	return materialize(ctx, t, root)
}

/*
PruneSizes takes a context and a tree and returns, in decreasing order,
the leaf counts of the subtrees on the tree's cost-complexity pruning
sequence, from the full tree down to the root-only tree. These are the
candidate sizes cross-validation scores.
*/
func PruneSizes(ctx context.Context, t *tree.Tree) ([]int, error) {
	root, err := snapshot(ctx, t)
	if err != nil {
		return nil, err
	}
	sizes := []int{root.leafCount()}
	for {
		weakest := root.weakestLink()
		if weakest == nil {
			break
		}
		weakest.collapse()
		sizes = append(sizes, root.leafCount())
	}
	return sizes, nil
}

// subtree is an in-memory snapshot of a tree used while pruning,
// so that collapses do not touch the tree's node store.
type subtree struct {
	node     *tree.Node
	children []*subtree
}

func snapshot(ctx context.Context, t *tree.Tree) (*subtree, error) {
	return snapshotNode(ctx, t, t.RootID)
}

func snapshotNode(ctx context.Context, t *tree.Tree, id string) (*subtree, error) {
	n, err := t.NodeStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("pruning tree: node %v not found", id)
	}
	st := &subtree{node: n}
	for _, snID := range n.SubtreeIDs {
		child, err := snapshotNode(ctx, t, snID)
		if err != nil {
			return nil, err
		}
		st.children = append(st.children, child)
	}
	return st, nil
}

func (st *subtree) leafCount() int {
	if len(st.children) == 0 {
		return 1
	}
	var leaves int
	for _, child := range st.children {
		leaves += child.leafCount()
	}
	return leaves
}

// leafCost is the training deviance summed over the leaves of the
// subtree, the cost the subtree pays in the cost-complexity measure.
func (st *subtree) leafCost() float64 {
	if len(st.children) == 0 {
		return st.ownCost()
	}
	var cost float64
	for _, child := range st.children {
		cost += child.leafCost()
	}
	return cost
}

// ownCost is the training deviance of the subtree's root node itself,
// the cost it would pay collapsed into a leaf.
func (st *subtree) ownCost() float64 {
	if st.node.Prediction == nil {
		return 0.0
	}
	return st.node.Prediction.Deviance()
}

// weakestLink returns the internal node whose collapse increases the
// training deviance the least per removed leaf, or nil if the subtree
// is a single leaf.
func (st *subtree) weakestLink() *subtree {
	var weakest *subtree
	var weakestCost float64
	st.walk(func(n *subtree) {
		if len(n.children) == 0 {
			return
		}
		cost := (n.ownCost() - n.leafCost()) / float64(n.leafCount()-1)
		if weakest == nil || cost < weakestCost {
			weakest = n
			weakestCost = cost
		}
	})
	return weakest
}

func (st *subtree) collapse() {
	st.children = nil
}

func (st *subtree) walk(f func(*subtree)) {
	f(st)
	for _, child := range st.children {
		child.walk(f)
	}
}

// materialize writes the surviving nodes of a pruned snapshot onto a
// fresh in-memory node store, keeping their IDs, and returns the new
// tree. Collapsed nodes become leaves: no subtrees, no split feature.
func materialize(ctx context.Context, t *tree.Tree, root *subtree) (*tree.Tree, error) {
	ns := tree.NewMemoryNodeStore()
	err := storeSubtree(ctx, ns, root)
	if err != nil {
		return nil, err
	}
	return tree.New(t.RootID, ns, t.Label), nil
}

func storeSubtree(ctx context.Context, ns tree.NodeStore, st *subtree) error {
	n := &tree.Node{
		ID:               st.node.ID,
		ParentID:         st.node.ParentID,
		Prediction:       st.node.Prediction,
		FeatureCriterion: st.node.FeatureCriterion,
	}
	if len(st.children) > 0 {
		n.SubtreeFeature = st.node.SubtreeFeature
		for _, child := range st.children {
			n.SubtreeIDs = append(n.SubtreeIDs, child.node.ID)
		}
	}
	err := ns.Store(ctx, n)
	if err != nil {
		return err
	}
	for _, child := range st.children {
		err = storeSubtree(ctx, ns, child)
		if err != nil {
			return err
		}
	}
	return nil
}
