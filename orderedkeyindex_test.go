// FILE: orderedkeyindex_test.go
package mtmrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedKeyIndexEmpty(t *testing.T) {
	idx := NewOrderedKeyIndex(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, []int64{}, idx.KeysAtMost(10))
	assert.Equal(t, []int64{}, idx.KeysAtLeast(10))

	res := idx.SearchClosest(5)
	assert.False(t, res.Found)
}

func TestOrderedKeyIndexDedupAndSort(t *testing.T) {
	idx := NewOrderedKeyIndex([]int64{60, 0, 30, 60, 0})
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int64{0, 30, 60}, idx.KeysAtMost(1000))
}

func TestOrderedKeyIndexKeysAtMost(t *testing.T) {
	idx := NewOrderedKeyIndex([]int64{0, 60, 300, 900})

	assert.Equal(t, []int64{}, idx.KeysAtMost(-1))
	assert.Equal(t, []int64{0}, idx.KeysAtMost(0))
	assert.Equal(t, []int64{0, 60}, idx.KeysAtMost(60))
	assert.Equal(t, []int64{0, 60}, idx.KeysAtMost(299))
	assert.Equal(t, []int64{0, 60, 300, 900}, idx.KeysAtMost(10000))
}

func TestOrderedKeyIndexKeysAtLeast(t *testing.T) {
	idx := NewOrderedKeyIndex([]int64{0, 60, 300, 900})

	assert.Equal(t, []int64{0, 60, 300, 900}, idx.KeysAtLeast(-1))
	assert.Equal(t, []int64{60, 300, 900}, idx.KeysAtLeast(60))
	assert.Equal(t, []int64{300, 900}, idx.KeysAtLeast(61))
	assert.Equal(t, []int64{}, idx.KeysAtLeast(901))
}

func TestOrderedKeyIndexSearchClosest(t *testing.T) {
	idx := NewOrderedKeyIndex([]int64{10, 20, 30})

	exact := idx.SearchClosest(20)
	assert.True(t, exact.Found)
	assert.True(t, exact.Exact)
	assert.Equal(t, int64(20), exact.Key)

	below := idx.SearchClosest(5)
	assert.True(t, below.Found)
	assert.False(t, below.Exact)
	assert.Equal(t, int64(10), below.Key)

	between := idx.SearchClosest(25)
	assert.True(t, between.Found)
	assert.False(t, between.Exact)
	assert.Equal(t, int64(20), between.Key)

	above := idx.SearchClosest(100)
	assert.True(t, above.Found)
	assert.False(t, above.Exact)
	assert.Equal(t, int64(30), above.Key)
}
