package queue

import (
	"fmt"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/tree"
)

// Task represents a tree.Node to be developed
// on a tree.Tree.
type Task struct {
	// The node to be developed
	Node *tree.Node
	// The dataset of training data with samples
	// satisfying the constraints on the node
	// and its ancestors.
	Dataset dataset.Dataset
	// The depth of the node in the tree, 0 for
	// the root.
	Depth int
}

// ID returns a string that identifies the
// task, the ID of its Node.
func (t *Task) ID() string {
	return t.Node.ID
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %s}", t.Node.ID)
}
