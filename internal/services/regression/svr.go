package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultTolerance is the stopping tolerance on the KKT violation.
	DefaultTolerance = 1e-3
	// DefaultMaxIter bounds solver iterations; 0 in SVRParams selects it.
	DefaultMaxIter = 10_000_000

	tau = 1e-12
)

var errEmptyTrainingSet = errors.New("empty training set")

// SVRParams are the epsilon-SVR hyperparameters after gamma resolution.
type SVRParams struct {
	Kernel  Kernel
	C       float64
	Epsilon float64
	Gamma   float64
	Degree  int
	Coef0   float64
	Tol     float64
	MaxIter int
}

// SVR is a fitted epsilon-insensitive support vector regressor on one feature.
type SVR struct {
	params  SVRParams
	kernel  kernelFunc
	support []float64 // support vector inputs
	coef    []float64 // alpha_i - alpha*_i per support vector
	rho     float64
	iters   int
	stopped bool // true when MaxIter was reached before convergence
}

// FitSVR solves the epsilon-SVR dual by sequential minimal optimization with
// second-order working set selection.
func FitSVR(x, y []float64, p SVRParams) (*SVR, error) {
	n := len(x)
	if n == 0 {
		return nil, errEmptyTrainingSet
	}
	if len(y) != n {
		return nil, fmt.Errorf("x/y length mismatch: %d != %d", n, len(y))
	}
	if p.C <= 0 {
		return nil, fmt.Errorf("C must be positive, got %v", p.C)
	}
	if p.Tol <= 0 {
		p.Tol = DefaultTolerance
	}
	if p.MaxIter <= 0 {
		p.MaxIter = DefaultMaxIter
	}
	for i := range y {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) || math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			return nil, fmt.Errorf("non-finite training value at row %d", i)
		}
	}

	k := p.Kernel.bind(p.Gamma, p.Degree, p.Coef0)
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			gram.SetSym(i, j, k(x[i], x[j]))
		}
	}

	s := newSolver(gram, y, p)
	s.solve()

	m := &SVR{params: p, kernel: k, rho: s.rho(), iters: s.iter, stopped: s.iter >= p.MaxIter}
	for i := 0; i < n; i++ {
		c := s.alpha[i] - s.alpha[i+n]
		if c != 0 {
			m.support = append(m.support, x[i])
			m.coef = append(m.coef, c)
		}
	}
	if math.IsNaN(m.rho) || math.IsInf(m.rho, 0) {
		return nil, fmt.Errorf("solver diverged: rho=%v", m.rho)
	}
	return m, nil
}

// Predict evaluates the decision function at an already scaled input.
func (m *SVR) Predict(v float64) float64 {
	sum := -m.rho
	for i, sv := range m.support {
		sum += m.coef[i] * m.kernel(sv, v)
	}
	return sum
}

// SupportVectors returns the number of support vectors.
func (m *SVR) SupportVectors() int { return len(m.support) }

// Intercept returns the bias term of the decision function.
func (m *SVR) Intercept() float64 { return -m.rho }

// Iterations returns the solver iteration count.
func (m *SVR) Iterations() int { return m.iters }

// Converged reports whether the solver met the tolerance before MaxIter.
func (m *SVR) Converged() bool { return !m.stopped }

// solver holds the 2n-variable dual problem. Variables [0, n) are alpha with
// sign +1, variables [n, 2n) are alpha* with sign -1.
type solver struct {
	n     int
	gram  *mat.SymDense
	sign  []float64
	alpha []float64
	grad  []float64
	qd    []float64
	c     float64
	tol   float64
	max   int
	iter  int
}

func newSolver(gram *mat.SymDense, y []float64, p SVRParams) *solver {
	n := len(y)
	l := 2 * n
	s := &solver{
		n:     n,
		gram:  gram,
		sign:  make([]float64, l),
		alpha: make([]float64, l),
		grad:  make([]float64, l),
		qd:    make([]float64, l),
		c:     p.C,
		tol:   p.Tol,
		max:   p.MaxIter,
	}
	for i := 0; i < n; i++ {
		s.sign[i], s.sign[i+n] = 1, -1
		s.grad[i] = p.Epsilon - y[i]
		s.grad[i+n] = p.Epsilon + y[i]
		kii := gram.At(i, i)
		s.qd[i], s.qd[i+n] = kii, kii
	}
	return s
}

// q returns the signed kernel entry Q_ij = s_i s_j K(i mod n, j mod n).
func (s *solver) q(i, j int) float64 {
	return s.sign[i] * s.sign[j] * s.gram.At(i%s.n, j%s.n)
}

func (s *solver) upper(i int) bool { return s.alpha[i] >= s.c }
func (s *solver) lower(i int) bool { return s.alpha[i] <= 0 }

func (s *solver) solve() {
	for s.iter < s.max {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			return
		}
		s.iter++
		s.update(i, j)
	}
}

func (s *solver) selectWorkingSet() (int, int, bool) {
	l := len(s.alpha)
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	i := -1
	for t := 0; t < l; t++ {
		if s.sign[t] > 0 {
			if !s.upper(t) && -s.grad[t] >= gmax {
				gmax, i = -s.grad[t], t
			}
		} else if !s.lower(t) && s.grad[t] >= gmax {
			gmax, i = s.grad[t], t
		}
	}
	if i < 0 {
		return 0, 0, false
	}

	j := -1
	objMin := math.Inf(1)
	for t := 0; t < l; t++ {
		var gradDiff, quad float64
		if s.sign[t] > 0 {
			if s.lower(t) {
				continue
			}
			gradDiff = gmax + s.grad[t]
			gmax2 = math.Max(gmax2, s.grad[t])
			quad = s.qd[i] + s.qd[t] - 2*s.sign[i]*s.q(i, t)
		} else {
			if s.upper(t) {
				continue
			}
			gradDiff = gmax - s.grad[t]
			gmax2 = math.Max(gmax2, -s.grad[t])
			quad = s.qd[i] + s.qd[t] + 2*s.sign[i]*s.q(i, t)
		}
		if gradDiff <= 0 {
			continue
		}
		if quad <= 0 {
			quad = tau
		}
		if obj := -(gradDiff * gradDiff) / quad; obj <= objMin {
			objMin, j = obj, t
		}
	}
	if gmax+gmax2 < s.tol || j < 0 {
		return 0, 0, false
	}
	return i, j, true
}

func (s *solver) update(i, j int) {
	c := s.c
	oldI, oldJ := s.alpha[i], s.alpha[j]
	qij := s.q(i, j)

	if s.sign[i] != s.sign[j] {
		quad := s.qd[i] + s.qd[j] + 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta
		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j], s.alpha[i] = 0, diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i], s.alpha[j] = 0, -diff
		}
		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i], s.alpha[j] = c, c-diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j], s.alpha[i] = c, c+diff
		}
	} else {
		quad := s.qd[i] + s.qd[j] - 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta
		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i], s.alpha[j] = c, sum-c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j], s.alpha[i] = 0, sum
		}
		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j], s.alpha[i] = c, sum-c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i], s.alpha[j] = 0, sum
		}
	}

	di, dj := s.alpha[i]-oldI, s.alpha[j]-oldJ
	for t := range s.grad {
		s.grad[t] += s.q(i, t)*di + s.q(j, t)*dj
	}
}

// rho computes the offset from free variables, or the midpoint of the
// feasible interval when every variable is at a bound.
func (s *solver) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	free, sumFree := 0, 0.0
	for t := range s.alpha {
		yg := s.sign[t] * s.grad[t]
		switch {
		case s.upper(t):
			if s.sign[t] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.lower(t):
			if s.sign[t] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			free++
			sumFree += yg
		}
	}
	if free > 0 {
		return sumFree / float64(free)
	}
	return (ub + lb) / 2
}
