// Package forest implements a bagged ensemble of CART classification trees
// behind the domain Estimator port.
package forest

import (
	"fmt"
	"math"
)

// leaf marks a node without children.
const leaf = -1

// Node is one node of a flattened decision tree. Internal nodes route a
// vector left when x[Feature] <= Threshold. Leaves carry class probabilities.
type Node struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold,omitempty"`
	Left      int        `json:"left,omitempty"`
	Right     int        `json:"right,omitempty"`
	Value     [2]float64 `json:"value"`
}

// IsLeaf reports whether the node is terminal.
func (n Node) IsLeaf() bool {
	return n.Feature == leaf
}

// Tree is a decision tree stored as a node slice rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(x []float64) [2]float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (t Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// Forest is a fitted ensemble. It is read-only after Fit and safe for
// concurrent prediction.
type Forest struct {
	Trees       []Tree    `json:"trees"`
	Features    int       `json:"features"`
	Importances []float64 `json:"importances"`
}

// PredictProba averages the leaf class probabilities of every tree.
func (f *Forest) PredictProba(x []float64) []float64 {
	var sum [2]float64
	for _, t := range f.Trees {
		v := t.predict(x)
		sum[0] += v[0]
		sum[1] += v[1]
	}
	n := float64(len(f.Trees))
	return []float64{sum[0] / n, sum[1] / n}
}

// FeatureImportances returns the mean decrease in impurity per feature.
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, len(f.Importances))
	copy(out, f.Importances)
	return out
}

// NumFeatures returns the vector width the forest was fitted on.
func (f *Forest) NumFeatures() int {
	return f.Features
}

// Validate checks the structure of a forest restored from storage so that
// prediction can never index out of range.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	if f.Features <= 0 {
		return fmt.Errorf("forest has invalid feature count %d", f.Features)
	}
	if len(f.Importances) != f.Features {
		return fmt.Errorf("forest has %d importances for %d features", len(f.Importances), f.Features)
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				if math.Abs(n.Value[0]+n.Value[1]-1) > 1e-9 {
					return fmt.Errorf("tree %d leaf %d probabilities do not sum to 1", ti, ni)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.Features {
				return fmt.Errorf("tree %d node %d splits on feature %d", ti, ni, n.Feature)
			}
			// children are always appended after their parent
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has invalid children", ti, ni)
			}
		}
	}
	return nil
}
