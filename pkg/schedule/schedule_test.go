package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/protocol"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

type fake struct {
	name   string
	inputs []value.ID
}

func (f *fake) Inputs() []value.ID  { return f.inputs }
func (f *fake) Outputs() []value.ID { return nil }
func (f *fake) Evaluate(context.Context, round.Number, *resource.Pool, network.Channel) (protocol.Status, error) {
	return protocol.Done, nil
}

func names(leaves []*Leaf) []string {
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.Protocol().(*fake).name
	}
	return out
}

func finish(leaves []*Leaf) {
	for _, l := range leaves {
		l.Start(0)
		l.Advance(protocol.Done)
	}
}

func TestSeq(t *testing.T) {
	root := Seq(New(&fake{name: "a"}), New(&fake{name: "b"}))
	root.Append(New(&fake{name: "c"}))

	for _, want := range []string{"a", "b", "c"} {
		leaves := Poll(root, nil, 0)
		assert.Equal(t, []string{want}, names(leaves))
		// idempotent within a round
		assert.Equal(t, []string{want}, names(Poll(root, nil, 0)))
		finish(leaves)
	}
	assert.True(t, root.Done())
	assert.Empty(t, Poll(root, nil, 0))
}

func TestPar(t *testing.T) {
	root := Par(New(&fake{name: "a"}), Seq(New(&fake{name: "b"}), New(&fake{name: "c"})), New(&fake{name: "d"}))
	leaves := Poll(root, nil, 0)
	assert.Equal(t, []string{"a", "b", "d"}, names(leaves))
	assert.Equal(t, []string{"a", "b"}, names(Poll(root, nil, 2)))

	finish(leaves)
	assert.False(t, root.Done())
	assert.Equal(t, []string{"c"}, names(Poll(root, nil, 0)))
}

func TestAvailability(t *testing.T) {
	arena := value.NewArena()
	in := arena.NewSBool()
	avail := func(ids []value.ID) bool { return arena.Ready(ids...) }

	waiting := New(&fake{name: "waiting", inputs: []value.ID{in.ID}})
	root := Par(waiting, New(&fake{name: "free"}))
	assert.Equal(t, []string{"free"}, names(Poll(root, avail, 0)))

	require.NoError(t, arena.SetSBool(in, true))
	assert.Equal(t, []string{"waiting", "free"}, names(Poll(root, avail, 0)))

	// once started, a leaf does not wait on its inputs
	waiting.Start(1)
	assert.True(t, waiting.Started())
	assert.EqualValues(t, 1, waiting.Task())
}

func TestLeaf_Advance(t *testing.T) {
	l := New(&fake{})
	l.Start(4)
	l.Advance(protocol.NeedsMoreRounds)
	l.Advance(protocol.NeedsMoreRounds)
	assert.EqualValues(t, 2, l.Round())
	assert.False(t, l.Done())
	l.Advance(protocol.Done)
	assert.True(t, l.Done())
}

func TestLazy(t *testing.T) {
	built := 0
	lazy := Lazy(func() Node {
		built++
		return New(&fake{name: "late"})
	})
	root := Seq(New(&fake{name: "first"}), lazy)

	finish(Poll(root, nil, 0))
	assert.Zero(t, built)
	assert.False(t, root.Done())

	leaves := Poll(root, nil, 0)
	assert.Equal(t, []string{"late"}, names(leaves))
	Poll(root, nil, 0)
	assert.Equal(t, 1, built)
	finish(leaves)
	assert.True(t, root.Done())

	empty := Lazy(func() Node { return nil })
	assert.Empty(t, Poll(empty, nil, 0))
	assert.True(t, empty.Done())
}
