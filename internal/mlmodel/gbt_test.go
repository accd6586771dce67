package mlmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func splitTree() Tree {
	return Tree{Nodes: []TreeNode{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
		{Leaf: true, Value: 1.2},
		{Leaf: true, Value: 3.7},
	}}
}

func leafTree(v float64) Tree {
	return Tree{Nodes: []TreeNode{{Leaf: true, Value: v}}}
}

func TestEstimator_PredictSumsBaseAndTrees(t *testing.T) {
	est := Estimator{
		BaseScore: 10,
		Trees:     []Tree{splitTree(), leafTree(2.0)},
	}

	low := mat.NewVecDense(1, []float64{0.3})
	high := mat.NewVecDense(1, []float64{0.7})

	assert.InDelta(t, 10+1.2+2.0, est.Predict(low), 1e-12)
	assert.InDelta(t, 10+3.7+2.0, est.Predict(high), 1e-12)
}

func TestTree_BoundaryRoutesRight(t *testing.T) {
	tree := splitTree()
	at := mat.NewVecDense(1, []float64{0.5})

	// Split is feature < threshold, so the boundary value goes right.
	assert.Equal(t, 3.7, tree.predict(at))
}

func TestEnsemble_PredictZones(t *testing.T) {
	m := &Ensemble{Estimators: []Estimator{
		{Trees: []Tree{leafTree(12.3)}},
		{BaseScore: -0.4},
		{Trees: []Tree{leafTree(2.5)}},
	}}

	vec := mat.NewVecDense(1, []float64{0})
	zones := []int{4, 12, 88}

	got, err := m.PredictZones(vec, zones)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 12, got["4"])
	// Small negative regression output clamps to zero.
	assert.Equal(t, 0, got["12"])
	// Half rounds away from zero.
	assert.Equal(t, 3, got["88"])
}

func TestEnsemble_PredictZones_NonNegative(t *testing.T) {
	m := &Ensemble{Estimators: []Estimator{
		{BaseScore: -100},
		{BaseScore: 0.4},
	}}

	got, err := m.PredictZones(mat.NewVecDense(1, []float64{0}), []int{1, 2})
	require.NoError(t, err)

	for zone, count := range got {
		assert.GreaterOrEqual(t, count, 0, "zone %s", zone)
	}
}

func TestEnsemble_StructuralFaults(t *testing.T) {
	vec := mat.NewVecDense(1, []float64{0})

	empty := &Ensemble{}
	_, err := empty.PredictZones(vec, []int{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no per-zone estimators")

	m := &Ensemble{Estimators: []Estimator{{BaseScore: 1}}}
	_, err = m.PredictZones(vec, []int{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 estimators for 2 zones")
}

func TestEnsemble_Validate(t *testing.T) {
	assert.Error(t, (&Ensemble{}).validate(3))

	ok := &Ensemble{Estimators: []Estimator{{Trees: []Tree{splitTree()}}}}
	assert.NoError(t, ok.validate(1))

	// Split feature beyond the scaled vector width.
	assert.Error(t, ok.validate(0))

	emptyTree := &Ensemble{Estimators: []Estimator{{Trees: []Tree{{}}}}}
	assert.Error(t, emptyTree.validate(1))

	badChild := &Ensemble{Estimators: []Estimator{{Trees: []Tree{{Nodes: []TreeNode{
		{Feature: 0, Threshold: 0.5, Left: 5, Right: 1},
		{Leaf: true},
	}}}}}}
	assert.Error(t, badChild.validate(1))
}
