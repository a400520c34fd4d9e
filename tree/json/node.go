package json

import (
	"encoding/json"
	"fmt"

	"github.com/psephology/psephos/feature"
	featurejson "github.com/psephology/psephos/feature/json"
	"github.com/psephology/psephos/tree"
)

/*
NodeEncodeDecoder serializes nodes into slices of
bytes and parses them back.
*/
type NodeEncodeDecoder interface {

	//Encode returns the given node serialized as a
	//slice of bytes, or an error if the node cannot
	//be serialized.
	Encode(*tree.Node) ([]byte, error)

	//Decode parses a slice of bytes produced by Encode
	//back into a node, or returns an error if the data
	//cannot be parsed.
	Decode([]byte) (*tree.Node, error)
}

type nodeEncodeDecoder struct {
	featurejson.CriteriaEncodeDecoder
	features []feature.Feature
}

type node struct {
	ID               string           `json:"id"`
	ParentID         string           `json:"pId,omitempty"`
	SubtreeIDs       []string         `json:"stIds,omitempty"`
	FeatureCriterion *json.RawMessage `json:"c,omitempty"`
	SubtreeFeature   string           `json:"f,omitempty"`
	Prediction       *json.RawMessage `json:"pred,omitempty"`
}

type jsonPrediction struct {
	Probabilities map[string]float64 `json:"probs,omitempty"`
	Mean          *float64           `json:"mean,omitempty"`
	Weight        int                `json:"w,omitempty"`
	Deviance      float64            `json:"dev,omitempty"`
}

/*
NewNodeEncodeDecoder takes a CriteriaEncodeDecoder and a slice of features
and returns a NodeEncodeDecoder that uses the CriteriaEncodeDecoder to
encode/decode nodes' feature criteria.
*/
func NewNodeEncodeDecoder(ced featurejson.CriteriaEncodeDecoder, features []feature.Feature) NodeEncodeDecoder {
	return &nodeEncodeDecoder{ced, features}
}

func (ned *nodeEncodeDecoder) Encode(n *tree.Node) ([]byte, error) {
	jn := &node{
		ID:       n.ID,
		ParentID: n.ParentID,
	}
	if len(n.SubtreeIDs) > 0 {
		jn.SubtreeIDs = n.SubtreeIDs
	}
	if n.FeatureCriterion != nil {
		fc, err := ned.CriteriaEncodeDecoder.Encode(n.FeatureCriterion)
		if err != nil {
			return nil, err
		}
		rfc := json.RawMessage(fc)
		jn.FeatureCriterion = &rfc
	}
	if n.Prediction != nil {
		jp := &jsonPrediction{
			Weight:   n.Prediction.Weight(),
			Deviance: n.Prediction.Deviance(),
		}
		if n.Prediction.Numeric() {
			mean := n.Prediction.Mean()
			jp.Mean = &mean
		} else {
			jp.Probabilities = n.Prediction.Probabilities()
		}
		p, err := json.Marshal(jp)
		if err != nil {
			return nil, err
		}
		rp := json.RawMessage(p)
		jn.Prediction = &rp
	}
	if n.SubtreeFeature != nil {
		jn.SubtreeFeature = n.SubtreeFeature.Name()
	}
	return json.Marshal(jn)
}

func (ned *nodeEncodeDecoder) Decode(data []byte) (*tree.Node, error) {
	jn := &node{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{}
	if jn.FeatureCriterion != nil {
		n.FeatureCriterion, err = ned.CriteriaEncodeDecoder.Decode(*jn.FeatureCriterion)
		if err != nil {
			return nil, err
		}
	}
	if jn.Prediction != nil {
		n.Prediction, err = UnmarshalJSONPrediction(*jn.Prediction)
		if err != nil {
			return nil, err
		}
	}
	n.ID = jn.ID
	n.ParentID = jn.ParentID
	if len(jn.SubtreeIDs) > 0 {
		n.SubtreeIDs = jn.SubtreeIDs
	}
	if jn.SubtreeFeature != "" {
		var nf feature.Feature
		for _, f := range ned.features {
			if f.Name() == jn.SubtreeFeature {
				nf = f
				break
			}
		}
		if nf == nil {
			return nil, fmt.Errorf("unmarshalling node %v: unknown feature %v", n.ID, jn.SubtreeFeature)
		}
		n.SubtreeFeature = nf
	}
	return n, nil
}

/*
UnmarshalJSONPrediction takes a slice of bytes and returns
a pointer to a new tree.Prediction with the data from the slice
unmarshalled into it or an error. The slice of bytes is expected
to contain a JSON object with the following fields:
  - "probs": a JSON object with string keys (values) and numeric
    (float64) values (probability of that value), for classification
    predictions
  - "mean": a number with the mean of the training target values,
    for regression predictions
  - "w": a number (integer) corresponding to the number of samples
    in the dataset from which the prediction was made
  - "dev": a number with the training deviance of those samples
*/
func UnmarshalJSONPrediction(b []byte) (*tree.Prediction, error) {
	jp := &jsonPrediction{}
	err := json.Unmarshal(b, jp)
	if err != nil {
		return nil, err
	}
	if jp.Mean != nil {
		return tree.NewNumericPrediction(*jp.Mean, jp.Weight, jp.Deviance), nil
	}
	return tree.NewPrediction(jp.Probabilities, jp.Weight, jp.Deviance), nil
}
