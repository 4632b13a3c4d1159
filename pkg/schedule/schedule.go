// Package schedule composes protocols into trees evaluated by the engine.
//
// A tree is built from leaves wrapping a protocol, Seq nodes running their
// children one after the other, and Par nodes running them side by side.
// Polling a tree returns the leaves that can progress in the current round.
package schedule

import (
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// Available reports whether all the given values are set.
type Available func(ids []value.ID) bool

// Node is a Leaf, a Seq, a Par or a Lazy.
type Node interface {
	// Done returns true once every protocol in the node has completed.
	Done() bool
	// poll appends the leaves of this node that can be evaluated now.
	// It must return the same leaves until their state changes.
	poll(avail Available, dst []*Leaf) []*Leaf
}

// Leaf wraps a single protocol and tracks its progress.
type Leaf struct {
	p       protocol.Protocol
	round   round.Number
	started bool
	done    bool
	task    uint64
}

// New wraps p in a leaf.
func New(p protocol.Protocol) *Leaf {
	return &Leaf{p: p}
}

// Protocol returns the wrapped protocol.
func (l *Leaf) Protocol() protocol.Protocol { return l.p }

// Round is the round of the protocol to evaluate next.
func (l *Leaf) Round() round.Number { return l.round }

// Started returns true once the engine admitted the leaf.
func (l *Leaf) Started() bool { return l.started }

// Task is the sequence number assigned by Start.
func (l *Leaf) Task() uint64 { return l.task }

// Start records the sequence number the engine assigned to this leaf.
func (l *Leaf) Start(task uint64) {
	l.started = true
	l.task = task
}

// Advance records the outcome of evaluating the current round.
func (l *Leaf) Advance(s protocol.Status) {
	if s == protocol.Done {
		l.done = true
		return
	}
	l.round++
}

func (l *Leaf) Done() bool { return l.done }

func (l *Leaf) poll(avail Available, dst []*Leaf) []*Leaf {
	if l.done {
		return dst
	}
	if !l.started && avail != nil && !avail(l.p.Inputs()) {
		return dst
	}
	return append(dst, l)
}

// Sequential runs its children in order; a child is polled only once the
// previous ones are done.
type Sequential struct {
	children []Node
	pos      int
}

// Seq returns a node evaluating children one after another.
func Seq(children ...Node) *Sequential {
	return &Sequential{children: children}
}

// Append adds children after the existing ones.
func (s *Sequential) Append(children ...Node) *Sequential {
	s.children = append(s.children, children...)
	return s
}

func (s *Sequential) prune() {
	for s.pos < len(s.children) && s.children[s.pos].Done() {
		s.pos++
	}
}

func (s *Sequential) Done() bool {
	s.prune()
	return s.pos == len(s.children)
}

func (s *Sequential) poll(avail Available, dst []*Leaf) []*Leaf {
	s.prune()
	if s.pos == len(s.children) {
		return dst
	}
	return s.children[s.pos].poll(avail, dst)
}

// Parallel runs all of its children at once.
type Parallel struct {
	children []Node
}

// Par returns a node evaluating children side by side.
func Par(children ...Node) *Parallel {
	return &Parallel{children: children}
}

// Append adds children.
func (p *Parallel) Append(children ...Node) *Parallel {
	p.children = append(p.children, children...)
	return p
}

func (p *Parallel) prune() {
	kept := p.children[:0]
	for _, c := range p.children {
		if !c.Done() {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(p.children); i++ {
		p.children[i] = nil
	}
	p.children = kept
}

func (p *Parallel) Done() bool {
	p.prune()
	return len(p.children) == 0
}

func (p *Parallel) poll(avail Available, dst []*Leaf) []*Leaf {
	p.prune()
	for _, c := range p.children {
		dst = c.poll(avail, dst)
	}
	return dst
}

// LazyNode builds its subtree the first time it is polled, which lets a
// later phase depend on the values produced by an earlier one.
type LazyNode struct {
	build func() Node
	node  Node
}

// Lazy returns a node whose subtree is built on first use.
func Lazy(build func() Node) *LazyNode {
	return &LazyNode{build: build}
}

func (l *LazyNode) Done() bool {
	return l.node != nil && l.node.Done()
}

func (l *LazyNode) poll(avail Available, dst []*Leaf) []*Leaf {
	if l.node == nil {
		l.node = l.build()
		if l.node == nil {
			l.node = Seq()
		}
	}
	return l.node.poll(avail, dst)
}

// Poll returns up to max leaves of root that can be evaluated in the current
// round, in a deterministic order. A non positive max means no limit.
func Poll(root Node, avail Available, max int) []*Leaf {
	leaves := root.poll(avail, nil)
	if max > 0 && len(leaves) > max {
		leaves = leaves[:max]
	}
	return leaves
}
