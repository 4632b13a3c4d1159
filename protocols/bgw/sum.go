package bgw

import (
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// Sum returns shares of the sum of xs. The additions form a balanced tree
// placed in a single Par node, so each level runs once its operands are set.
func (s *Suite) Sum(xs []value.Secret) (schedule.Node, value.Secret) {
	switch len(xs) {
	case 0:
		return s.Zero()
	case 1:
		return s.Copy(xs[0])
	}
	par := schedule.Par()
	level := append([]value.Secret(nil), xs...)
	for len(level) > 1 {
		next := make([]value.Secret, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			leaf, sum := s.Add(level[i], level[i+1])
			par.Append(leaf)
			next = append(next, sum)
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return par, level[0]
}
