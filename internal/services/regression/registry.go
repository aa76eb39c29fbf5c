package regression

import (
	"fmt"
	"strconv"
	"strings"
)

// Gamma is the kernel coefficient: a fixed value or the scale heuristic.
type Gamma struct {
	Scale bool
	Value float64
}

// GammaScale selects 1/(n_features * var(X)) computed on the scaled feature.
func GammaScale() Gamma { return Gamma{Scale: true} }

// GammaValue fixes gamma to v.
func GammaValue(v float64) Gamma { return Gamma{Value: v} }

// ParseGamma accepts "scale" (or empty) or a positive number.
func ParseGamma(s string) (Gamma, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "scale" {
		return GammaScale(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Gamma{}, fmt.Errorf("gamma %q: %w", s, err)
	}
	if v <= 0 {
		return Gamma{}, fmt.Errorf("gamma must be positive, got %v", v)
	}
	return GammaValue(v), nil
}

func (g Gamma) String() string {
	if g.Scale {
		return "scale"
	}
	return strconv.FormatFloat(g.Value, 'g', -1, 64)
}

// ModelSpec is an immutable named model configuration.
type ModelSpec struct {
	Name    string
	Kernel  Kernel
	C       float64
	Epsilon float64
	Gamma   Gamma
	Degree  int
	Coef0   float64
	Tol     float64
	MaxIter int
}

// Hyperparameters returns the hyperparameters keyed by name.
func (s ModelSpec) Hyperparameters() map[string]string {
	hp := map[string]string{
		"C":       strconv.FormatFloat(s.C, 'g', -1, 64),
		"epsilon": strconv.FormatFloat(s.Epsilon, 'g', -1, 64),
	}
	switch s.Kernel {
	case KernelPolynomial:
		hp["gamma"] = s.Gamma.String()
		hp["degree"] = strconv.Itoa(s.Degree)
		hp["coef0"] = strconv.FormatFloat(s.Coef0, 'g', -1, 64)
	case KernelRBF:
		hp["gamma"] = s.Gamma.String()
	}
	return hp
}

// Validate checks hyperparameters against the kernel.
func (s ModelSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("model name is required")
	}
	switch s.Kernel {
	case KernelLinear, KernelRBF:
	case KernelPolynomial:
		if s.Degree < 1 {
			return fmt.Errorf("model %q: degree must be >= 1, got %d", s.Name, s.Degree)
		}
	default:
		return fmt.Errorf("model %q: %s is not a supported kernel", s.Name, s.Kernel)
	}
	if s.C <= 0 {
		return fmt.Errorf("model %q: C must be positive, got %v", s.Name, s.C)
	}
	if s.Epsilon < 0 {
		return fmt.Errorf("model %q: epsilon must be >= 0, got %v", s.Name, s.Epsilon)
	}
	if !s.Gamma.Scale && s.Kernel != KernelLinear && s.Gamma.Value <= 0 {
		return fmt.Errorf("model %q: gamma must be positive", s.Name)
	}
	return nil
}

// RBFSpec returns a radial-basis spec.
func RBFSpec(name string, c, epsilon float64, gamma Gamma) ModelSpec {
	return ModelSpec{Name: name, Kernel: KernelRBF, C: c, Epsilon: epsilon, Gamma: gamma}
}

// LinearSpec returns a linear-kernel spec.
func LinearSpec(name string, c, epsilon float64) ModelSpec {
	return ModelSpec{Name: name, Kernel: KernelLinear, C: c, Epsilon: epsilon}
}

// PolySpec returns a polynomial-kernel spec.
func PolySpec(name string, c, epsilon float64, degree int, gamma Gamma, coef0 float64) ModelSpec {
	return ModelSpec{Name: name, Kernel: KernelPolynomial, C: c, Epsilon: epsilon, Degree: degree, Gamma: gamma, Coef0: coef0}
}

// Registry is an explicitly ordered, validated collection of model specs.
type Registry struct {
	specs []ModelSpec
}

// NewRegistry validates specs and rejects empty or duplicate names.
func NewRegistry(specs ...ModelSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("registry: at least one model is required")
	}
	seen := make(map[string]struct{}, len(specs))
	out := make([]ModelSpec, 0, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate model name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		out = append(out, s)
	}
	return &Registry{specs: out}, nil
}

// DefaultRegistry is the baseline set: rbf, linear and degree-2 poly, all with
// C=100 and epsilon=0.1.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		RBFSpec("rbf", 100, 0.1, GammaScale()),
		LinearSpec("linear", 100, 0.1),
		PolySpec("poly", 100, 0.1, 2, GammaScale(), 0),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Specs returns a copy of the model specs in registry order.
func (r *Registry) Specs() []ModelSpec {
	out := make([]ModelSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Names returns model names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.Name
	}
	return out
}

// Len returns the number of specs.
func (r *Registry) Len() int { return len(r.specs) }

// Lookup returns the model spec registered under name.
func (r *Registry) Lookup(name string) (ModelSpec, bool) {
	for _, s := range r.specs {
		if s.Name == name {
			return s, true
		}
	}
	return ModelSpec{}, false
}
