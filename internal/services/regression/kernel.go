package regression

import (
	"fmt"
	"math"
	"strings"
)

// Kernel is the closed set of kernel families a ModelSpec can use.
type Kernel int

const (
	KernelLinear Kernel = iota + 1
	KernelPolynomial
	KernelRBF
)

func (k Kernel) String() string {
	switch k {
	case KernelLinear:
		return "linear"
	case KernelPolynomial:
		return "poly"
	case KernelRBF:
		return "rbf"
	default:
		return fmt.Sprintf("kernel(%d)", int(k))
	}
}

// ParseKernel maps a configuration name onto the closed kernel set.
func ParseKernel(s string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return KernelLinear, nil
	case "poly", "polynomial":
		return KernelPolynomial, nil
	case "rbf", "radial", "radial-basis":
		return KernelRBF, nil
	default:
		return 0, fmt.Errorf("unknown kernel %q", s)
	}
}

// kernelFunc evaluates k(a, b) for single-feature inputs.
type kernelFunc func(a, b float64) float64

// bind resolves the kernel with concrete hyperparameters. gamma must already
// be resolved from the scale heuristic when applicable.
func (k Kernel) bind(gamma float64, degree int, coef0 float64) kernelFunc {
	switch k {
	case KernelPolynomial:
		d := float64(degree)
		return func(a, b float64) float64 { return math.Pow(gamma*a*b+coef0, d) }
	case KernelRBF:
		return func(a, b float64) float64 {
			diff := a - b
			return math.Exp(-gamma * diff * diff)
		}
	default:
		return func(a, b float64) float64 { return a * b }
	}
}
