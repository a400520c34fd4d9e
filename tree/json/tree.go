/*
Package json provides a streaming JSON codec for decision trees and
their nodes.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/psephology/psephos/feature"
	"github.com/psephology/psephos/tree"
)

/*
WriteJSONTree serializes the given tree as a JSON object onto the
io.Writer, with the following fields:
  - "rootID": a string with the ID of the node at the root of the tree
  - "label": a string with the name of the feature the tree predicts
  - "nodes": an array with every node reachable from the root, each
    serialized by the given NodeEncodeDecoder.

Nodes are written as they are traversed, so the tree is never held
in memory as a whole. An error is returned if the tree cannot be
traversed, serialized or written onto the io.Writer.
*/
func WriteJSONTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, w io.Writer) error {
	label, err := json.Marshal(t.Label.Name())
	if err != nil {
		return err
	}
	rootID, err := json.Marshal(t.RootID)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(w, `{"rootID":%s,"label":%s,"nodes":[`, rootID, label); err != nil {
		return err
	}
	first := true
	err = t.Traverse(ctx, false, func(ctx context.Context, n *tree.Node) error {
		if !first {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		first = false
		data, err := ned.Encode(n)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("]}"))
	return err
}

/*
ReadJSONTree parses a JSON object with the fields described on
WriteJSONTree from the io.Reader and loads it onto the given tree:
the label is resolved against the given slice of features and every
node is decoded with the NodeEncodeDecoder and stored on the tree's
NodeStore.
An error is returned if the JSON cannot be parsed, the label is not
among the given features, no root node ID is present or a node cannot
be stored.
*/
func ReadJSONTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, features []feature.Feature, r io.Reader) error {
	var jt struct {
		RootID string             `json:"rootID"`
		Label  string             `json:"label"`
		Nodes  []*json.RawMessage `json:"nodes"`
	}
	if err := json.NewDecoder(r).Decode(&jt); err != nil {
		return err
	}
	if jt.RootID == "" {
		return fmt.Errorf("no root node id available")
	}
	var label feature.Feature
	for _, f := range features {
		if f.Name() == jt.Label {
			label = f
			break
		}
	}
	if label == nil {
		return fmt.Errorf("no label feature defined")
	}
	t.Label = label
	t.RootID = jt.RootID
	for _, raw := range jt.Nodes {
		n, err := ned.Decode(*raw)
		if err != nil {
			return err
		}
		if err = t.NodeStore.Store(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
