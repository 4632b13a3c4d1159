package polynomial

import (
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

const cacheSize = 128

// coefficientCache maps a field and an interpolation domain to its coefficients.
var coefficientCache *lru.Cache

func init() {
	c, err := lru.New(cacheSize)
	if err != nil {
		panic(err)
	}
	coefficientCache = c
}

func cacheKey(f *field.Field, domain []party.ID) string {
	var b strings.Builder
	b.WriteString(f.String())
	for _, id := range domain {
		b.WriteByte('|')
		b.WriteString(id.String())
	}
	return b.String()
}

// Lagrange returns the Lagrange coefficients at 0 for all parties in the interpolation domain.
// The returned map is owned by the caller.
func Lagrange(f *field.Field, interpolationDomain []party.ID) map[party.ID]field.Element {
	key := cacheKey(f, interpolationDomain)
	if v, ok := coefficientCache.Get(key); ok {
		return copyCoefficients(v.(map[party.ID]field.Element))
	}

	coefficients := make(map[party.ID]field.Element, len(interpolationDomain))
	for _, j := range interpolationDomain {
		coefficients[j] = lagrange(f, interpolationDomain, j)
	}
	coefficientCache.Add(key, coefficients)
	return copyCoefficients(coefficients)
}

func copyCoefficients(in map[party.ID]field.Element) map[party.ID]field.Element {
	out := make(map[party.ID]field.Element, len(in))
	for id, c := range in {
		out[id] = c
	}
	return out
}

// lagrange returns the Lagrange coefficient lⱼ(0), for j in the interpolation domain.
//
// The following formula is taken from
// https://en.wikipedia.org/wiki/Lagrange_polynomial
//
//	                 x₀ ⋅⋅⋅ xₖ
//	lⱼ(0) = --------------------------------------------------
//	        xⱼ⋅(x₀ - xⱼ)⋅⋅⋅(xⱼ₋₁ - xⱼ)⋅(xⱼ₊₁ - xⱼ)⋅⋅⋅(xₖ - xⱼ).
func lagrange(f *field.Field, interpolationDomain []party.ID, j party.ID) field.Element {
	xJ := Point(f, j)
	numerator := f.One()
	denominator := f.One()
	for _, i := range interpolationDomain {
		xI := Point(f, i)
		numerator = numerator.Mul(xI)
		if i == j {
			denominator = denominator.Mul(xJ)
			continue
		}
		denominator = denominator.Mul(xI.Sub(xJ))
	}
	inv, err := denominator.Inv()
	if err != nil {
		// only reachable with duplicate points or points that are multiples of p
		panic("polynomial: degenerate interpolation domain")
	}
	return numerator.Mul(inv)
}

// Interpolate returns f(0) for the unique polynomial of degree len(shares)-1
// passing through the points (id, shares[id]).
func Interpolate(f *field.Field, shares map[party.ID]field.Element) field.Element {
	domain := make([]party.ID, 0, len(shares))
	for id := range shares {
		domain = append(domain, id)
	}
	domain = party.NewIDSlice(domain)

	coefficients := Lagrange(f, domain)
	result := f.Zero()
	for _, id := range domain {
		result = result.Add(coefficients[id].Mul(shares[id]))
	}
	return result
}
