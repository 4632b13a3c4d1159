package polynomial

import (
	"io"

	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ over 𝔽ₚ.
type Polynomial struct {
	coefficients []field.Element
}

// New generates a Polynomial f(X) = constant + a₁⋅X + … + aₜ⋅Xᵗ,
// with uniform coefficients aᵢ read from rand, and degree t.
func New(f *field.Field, degree int, constant field.Element, rand io.Reader) *Polynomial {
	coefficients := make([]field.Element, degree+1)
	coefficients[0] = constant
	for i := 1; i <= degree; i++ {
		coefficients[i] = sample.Element(rand, f)
	}
	return &Polynomial{coefficients: coefficients}
}

// Evaluate evaluates the polynomial at x using Horner's method.
// It panics when x = 0.
func (p *Polynomial) Evaluate(x field.Element) field.Element {
	if x.IsZero() {
		panic("attempt to leak secret")
	}

	result := x.Field().Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Share evaluates the polynomial at the point of party id.
func (p *Polynomial) Share(id party.ID) field.Element {
	return p.Evaluate(Point(p.Constant().Field(), id))
}

// Constant returns the constant coefficient of the polynomial.
func (p *Polynomial) Constant() field.Element {
	return p.coefficients[0]
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Point returns the evaluation point of party id.
func Point(f *field.Field, id party.ID) field.Element {
	return f.FromUint64(uint64(id))
}
