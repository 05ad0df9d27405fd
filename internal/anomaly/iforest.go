package anomaly

import (
	"fmt"
	"math"
	"math/rand"
)

const eulerGamma = 0.5772156649015329

// IsolationForest is an ensemble of randomized isolation trees. Points that
// are isolated in few splits receive lower scores.
type IsolationForest struct {
	Trees         int
	MaxSamples    int
	Contamination float64
	Seed          int64

	roots      []*isolationNode
	sampleSize int
	offset     float64
}

type isolationNode struct {
	feature   int
	threshold float64
	left      *isolationNode
	right     *isolationNode
	size      int
	leaf      bool
}

// NewIsolationForest creates an unfitted forest
func NewIsolationForest(trees, maxSamples int, contamination float64, seed int64) *IsolationForest {
	return &IsolationForest{
		Trees:         trees,
		MaxSamples:    maxSamples,
		Contamination: contamination,
		Seed:          seed,
	}
}

// Fit grows the trees on X and sets the decision offset so that a
// Contamination share of the training points falls below zero.
func (f *IsolationForest) Fit(X [][]float64) error {
	n := len(X)
	if n < 2 {
		return fmt.Errorf("isolation forest needs at least 2 samples, got %d", n)
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.sampleSize = f.MaxSamples
	if f.sampleSize > n {
		f.sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(math.Max(float64(f.sampleSize), 2))))

	f.roots = make([]*isolationNode, f.Trees)
	for t := 0; t < f.Trees; t++ {
		sample := rng.Perm(n)[:f.sampleSize]
		f.roots[t] = growTree(X, sample, 0, maxDepth, rng)
	}

	scores := f.ScoreSamples(X)
	f.offset = quantile(scores, f.Contamination)
	return nil
}

func growTree(X [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *isolationNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &isolationNode{leaf: true, size: len(idx)}
	}

	width := len(X[idx[0]])
	for _, feature := range rng.Perm(width) {
		lo, hi := X[idx[0]][feature], X[idx[0]][feature]
		for _, i := range idx[1:] {
			v := X[i][feature]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi <= lo {
			continue
		}

		threshold := lo + rng.Float64()*(hi-lo)
		var left, right []int
		for _, i := range idx {
			if X[i][feature] <= threshold {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		return &isolationNode{
			feature:   feature,
			threshold: threshold,
			left:      growTree(X, left, depth+1, maxDepth, rng),
			right:     growTree(X, right, depth+1, maxDepth, rng),
			size:      len(idx),
		}
	}

	return &isolationNode{leaf: true, size: len(idx)}
}

// averagePathLength is the expected path length of an unsuccessful search
// in a binary search tree of n points
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

func (node *isolationNode) pathLength(x []float64, depth int) float64 {
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(node.size)
}

// ScoreSamples returns the negated anomaly score of each row. Values lie in
// [-1, 0) and more negative means more anomalous.
func (f *IsolationForest) ScoreSamples(X [][]float64) []float64 {
	norm := averagePathLength(f.sampleSize)
	scores := make([]float64, len(X))
	for i, x := range X {
		var total float64
		for _, root := range f.roots {
			total += root.pathLength(x, 0)
		}
		mean := total / float64(len(f.roots))
		scores[i] = -math.Pow(2, -mean/norm)
	}
	return scores
}

// DecisionFunction returns ScoreSamples shifted by the fitted offset.
// Negative values are outliers.
func (f *IsolationForest) DecisionFunction(X [][]float64) []float64 {
	scores := f.ScoreSamples(X)
	for i := range scores {
		scores[i] -= f.offset
	}
	return scores
}

// Predict labels each row -1 for outlier or 1 for inlier
func (f *IsolationForest) Predict(X [][]float64) []int {
	decision := f.DecisionFunction(X)
	labels := make([]int, len(decision))
	for i, d := range decision {
		if d < 0 {
			labels[i] = -1
		} else {
			labels[i] = 1
		}
	}
	return labels
}
