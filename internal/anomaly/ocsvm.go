package anomaly

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	svmTolerance = 1e-3
	svmTau       = 1e-12

	// DefaultKernelCacheBytes bounds the kernel rows the solver keeps
	DefaultKernelCacheBytes = 200 << 20
)

// OneClassSVM learns a boundary around the bulk of the data with an RBF
// kernel. The dual problem is solved by sequential minimal optimisation
// with second order working set selection.
type OneClassSVM struct {
	Nu float64

	// Gamma is the kernel width. Zero selects 1 / (features * Var(X)).
	Gamma float64

	// MaxIter bounds the solver. Zero selects max(10000000, 100*n).
	MaxIter int

	// CacheRows bounds how many kernel rows are held at once. Zero selects
	// as many as fit in DefaultKernelCacheBytes. Rows are recomputed after
	// eviction, so memory stays at O(CacheRows * n) whatever the input size.
	CacheRows int

	support [][]float64
	alpha   []float64
	rho     float64
	gamma   float64
}

// NewOneClassSVM creates an unfitted model with automatic gamma
func NewOneClassSVM(nu float64) *OneClassSVM {
	return &OneClassSVM{Nu: nu}
}

func (m *OneClassSVM) kernel(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-m.gamma * d * d)
}

// scaleGamma is 1 / (features * variance of all values), or 1 when the
// values do not vary.
func scaleGamma(X [][]float64) float64 {
	width := len(X[0])
	all := make([]float64, 0, len(X)*width)
	for _, row := range X {
		all = append(all, row...)
	}
	_, variance := stat.PopMeanVariance(all, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 1.0
	}
	return 1.0 / (float64(width) * variance)
}

// Fit solves the one-class dual on X
func (m *OneClassSVM) Fit(X [][]float64) error {
	l := len(X)
	if l == 0 {
		return fmt.Errorf("one-class SVM needs at least 1 sample")
	}

	m.gamma = m.Gamma
	if m.gamma <= 0 {
		m.gamma = scaleGamma(X)
	}

	Q, err := newKernelRows(X, m.kernel, m.CacheRows)
	if err != nil {
		return err
	}

	// Feasible start: the first floor(nu*l) multipliers at the upper bound
	// and the remainder of nu*l on the next one.
	alpha := make([]float64, l)
	total := m.Nu * float64(l)
	n := int(total)
	for i := 0; i < n && i < l; i++ {
		alpha[i] = 1
	}
	if n < l {
		alpha[n] = total - float64(n)
	}

	G := make([]float64, l)
	for i := 0; i < l; i++ {
		if alpha[i] == 0 {
			continue
		}
		floats.AddScaled(G, alpha[i], Q.row(i))
	}

	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 10000000
		if 100*l > maxIter {
			maxIter = 100 * l
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		i, j, ok := selectWorkingSet(alpha, G, Q)
		if !ok {
			break
		}

		rowI, rowJ := Q.row(i), Q.row(j)
		quad := 2 - 2*rowI[j]
		if quad <= 0 {
			quad = svmTau
		}
		oldI, oldJ := alpha[i], alpha[j]
		delta := (G[i] - G[j]) / quad
		sum := alpha[i] + alpha[j]
		alpha[i] -= delta
		alpha[j] += delta

		if sum > 1 {
			if alpha[i] > 1 {
				alpha[i] = 1
				alpha[j] = sum - 1
			}
		} else if alpha[j] < 0 {
			alpha[j] = 0
			alpha[i] = sum
		}
		if sum > 1 {
			if alpha[j] > 1 {
				alpha[j] = 1
				alpha[i] = sum - 1
			}
		} else if alpha[i] < 0 {
			alpha[i] = 0
			alpha[j] = sum
		}

		dI, dJ := alpha[i]-oldI, alpha[j]-oldJ
		floats.AddScaled(G, dI, rowI)
		floats.AddScaled(G, dJ, rowJ)
	}

	m.rho = computeRho(alpha, G)

	m.support = m.support[:0]
	m.alpha = m.alpha[:0]
	for i, a := range alpha {
		if a > 0 {
			m.support = append(m.support, X[i])
			m.alpha = append(m.alpha, a)
		}
	}
	return nil
}

// selectWorkingSet picks the maximal violating pair. ok is false once the
// KKT gap is within tolerance.
func selectWorkingSet(alpha, G []float64, Q *kernelRows) (int, int, bool) {
	gMax := math.Inf(-1)
	gMax2 := math.Inf(-1)
	i := -1
	for t, a := range alpha {
		if a < 1 && -G[t] >= gMax {
			gMax = -G[t]
			i = t
		}
	}
	if i < 0 {
		return 0, 0, false
	}

	rowI := Q.row(i)
	j := -1
	objMin := math.Inf(1)
	for t, a := range alpha {
		if a <= 0 {
			continue
		}
		if G[t] >= gMax2 {
			gMax2 = G[t]
		}
		gradDiff := gMax + G[t]
		if gradDiff <= 0 {
			continue
		}
		quad := 2 - 2*rowI[t]
		if quad <= 0 {
			quad = svmTau
		}
		obj := -(gradDiff * gradDiff) / quad
		if obj <= objMin {
			objMin = obj
			j = t
		}
	}

	if gMax+gMax2 < svmTolerance || j < 0 {
		return 0, 0, false
	}
	return i, j, true
}

// kernelRows hands out rows of the RBF Gram matrix, computing them on first
// use and keeping the most recently used ones. The diagonal is always 1.
type kernelRows struct {
	X      [][]float64
	kernel func(a, b []float64) float64
	cache  *lru.Cache[int, []float64]
}

func newKernelRows(X [][]float64, kernel func(a, b []float64) float64, capacity int) (*kernelRows, error) {
	if capacity <= 0 {
		capacity = DefaultKernelCacheBytes / (8 * len(X))
	}
	if capacity < 2 {
		capacity = 2
	}
	if capacity > len(X) {
		capacity = len(X)
	}
	cache, err := lru.New[int, []float64](capacity)
	if err != nil {
		return nil, fmt.Errorf("kernel cache: %w", err)
	}
	return &kernelRows{X: X, kernel: kernel, cache: cache}, nil
}

func (k *kernelRows) row(i int) []float64 {
	if r, ok := k.cache.Get(i); ok {
		return r
	}
	r := make([]float64, len(k.X))
	for j := range k.X {
		if j == i {
			r[j] = 1
			continue
		}
		r[j] = k.kernel(k.X[i], k.X[j])
	}
	k.cache.Add(i, r)
	return r
}

// computeRho averages the gradient over free multipliers, or takes the
// midpoint of the feasible interval when none are free.
func computeRho(alpha, G []float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	var sumFree float64
	free := 0
	for i, a := range alpha {
		switch {
		case a >= 1:
			lb = math.Max(lb, G[i])
		case a <= 0:
			ub = math.Min(ub, G[i])
		default:
			free++
			sumFree += G[i]
		}
	}
	if free > 0 {
		return sumFree / float64(free)
	}
	return (ub + lb) / 2
}

// DecisionFunction returns the signed distance to the boundary. Positive
// values are inside.
func (m *OneClassSVM) DecisionFunction(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for r, x := range X {
		var sum float64
		for i, sv := range m.support {
			sum += m.alpha[i] * m.kernel(sv, x)
		}
		out[r] = sum - m.rho
	}
	return out
}

// Predict labels each row -1 for outlier or 1 for inlier. Points on the
// boundary are outliers.
func (m *OneClassSVM) Predict(X [][]float64) []int {
	decision := m.DecisionFunction(X)
	labels := make([]int, len(decision))
	for i, d := range decision {
		if d > 0 {
			labels[i] = 1
		} else {
			labels[i] = -1
		}
	}
	return labels
}

// Rho returns the fitted offset of the decision function
func (m *OneClassSVM) Rho() float64 {
	return m.rho
}
