package mlmodel

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// TreeNode is one node of a regression tree stored as a flat array, root at
// index 0. Non-leaf nodes route on feature < threshold.
type TreeNode struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t Tree) predict(v *mat.VecDense) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if v.AtVec(n.Feature) < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// Estimator is one zone's boosted regression ensemble: a base score plus
// the sum of its trees' outputs.
type Estimator struct {
	BaseScore float64 `json:"base_score"`
	Trees     []Tree  `json:"trees"`
}

func (e Estimator) Predict(v *mat.VecDense) float64 {
	y := e.BaseScore
	for _, t := range e.Trees {
		y += t.predict(v)
	}
	return y
}

// Ensemble is the multi-output demand model: one independently trained
// estimator per zone, index-aligned with the persisted zone order.
type Ensemble struct {
	Estimators []Estimator `json:"estimators"`
}

// PredictZones runs every per-zone estimator over the same scaled feature
// vector and returns non-negative integer counts keyed by zone id. The i-th
// estimator maps to the i-th zone; that correspondence was fixed at training
// time and is never re-derived here.
func (m *Ensemble) PredictZones(v *mat.VecDense, zones []int) (map[string]int, error) {
	if len(m.Estimators) == 0 {
		return nil, errors.New("model exposes no per-zone estimators")
	}
	if len(m.Estimators) != len(zones) {
		return nil, fmt.Errorf("model has %d estimators for %d zones", len(m.Estimators), len(zones))
	}

	out := make(map[string]int, len(zones))
	for i, est := range m.Estimators {
		y := est.Predict(v)
		// Regression can dip slightly below zero near zero demand;
		// demand itself cannot.
		n := int(math.Round(y))
		if n < 0 {
			n = 0
		}
		out[strconv.Itoa(zones[i])] = n
	}

	return out, nil
}

// validate walks every tree once so a malformed artifact fails at startup,
// not mid-request: node indices must stay in range and split features must
// fit the scaled vector width.
func (m *Ensemble) validate(dim int) error {
	if len(m.Estimators) == 0 {
		return errors.New("model exposes no per-zone estimators")
	}
	for ei, est := range m.Estimators {
		for ti, tree := range est.Trees {
			if len(tree.Nodes) == 0 {
				return fmt.Errorf("estimator %d tree %d is empty", ei, ti)
			}
			for ni, n := range tree.Nodes {
				if n.Leaf {
					continue
				}
				if n.Feature < 0 || n.Feature >= dim {
					return fmt.Errorf("estimator %d tree %d node %d splits on feature %d of %d", ei, ti, ni, n.Feature, dim)
				}
				if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
					return fmt.Errorf("estimator %d tree %d node %d has child out of range", ei, ti, ni)
				}
			}
		}
	}
	return nil
}
