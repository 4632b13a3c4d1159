package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSlice_Valid(t *testing.T) {
	assert.NoError(t, Range(4).Valid())
	assert.Error(t, IDSlice{0, 1}.Valid())
	assert.Error(t, IDSlice{2, 1}.Valid())
	assert.Error(t, IDSlice{1, 1}.Valid())
}

func TestIDSlice_Remove(t *testing.T) {
	ids := Range(3)
	assert.Equal(t, IDSlice{1, 3}, ids.Remove(2))
	assert.Equal(t, IDSlice{1, 2, 3}, ids)
	assert.Equal(t, "1,2,3", ids.String())
}

func TestNewIDSlice(t *testing.T) {
	assert.Equal(t, IDSlice{1, 2, 5}, NewIDSlice([]ID{5, 1, 2}))
}
