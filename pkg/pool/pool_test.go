package pool

import (
	"crypto/rand"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Parallelize(t *testing.T) {
	for _, p := range []*Pool{nil, NewPool(0), NewPool(2)} {
		out := make([]int, 100)
		require.NoError(t, p.Parallelize(len(out), func(i int) error {
			out[i] = i * i
			return nil
		}))
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
		p.TearDown()
		p.TearDown()
	}
}

func TestPool_FirstError(t *testing.T) {
	p := NewPool(4)
	defer p.TearDown()
	errLow := errors.New("low")
	err := p.Parallelize(50, func(i int) error {
		switch i {
		case 7:
			return errLow
		case 30:
			return errors.New("high")
		}
		return nil
	})
	assert.Equal(t, errLow, err)
}

func TestLockedReader(t *testing.T) {
	r := NewLockedReader(rand.Reader)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 32)
			_, err := r.Read(buf)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
