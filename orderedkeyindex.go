// FILE: orderedkeyindex.go
package mtmrunner

import "sort"

// OrderedKeyIndex is an immutable, sorted set of int64 keys supporting
// exact/just-greater/just-lesser classification and range queries by binary
// search. It replaces the distilled spec's hand-rolled BTree/BPlusTree: a
// sorted slice plus sort.Search gives the same O(log n) lookups with none of
// the tree-balancing bookkeeping, and the key set here never mutates after
// construction.
type OrderedKeyIndex struct {
	keys []int64
}

// NewOrderedKeyIndex builds an index over keys, sorting and de-duplicating
// them. The input slice is not retained.
func NewOrderedKeyIndex(keys []int64) *OrderedKeyIndex {
	cp := make([]int64, len(keys))
	copy(cp, keys)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })

	deduped := cp[:0]
	var prev int64
	for i, k := range cp {
		if i == 0 || k != prev {
			deduped = append(deduped, k)
		}
		prev = k
	}
	return &OrderedKeyIndex{keys: deduped}
}

// Len returns the number of distinct keys held.
func (idx *OrderedKeyIndex) Len() int { return len(idx.keys) }

// KeysAtMost returns every indexed key <= value, in ascending order. Returns
// an empty (non-nil) slice if value is below the smallest key or the index
// is empty.
func (idx *OrderedKeyIndex) KeysAtMost(value int64) []int64 {
	if len(idx.keys) == 0 {
		return []int64{}
	}
	// first index where keys[i] > value
	i := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] > value })
	out := make([]int64, i)
	copy(out, idx.keys[:i])
	return out
}

// KeysAtLeast returns every indexed key >= value, in ascending order.
// Returns an empty (non-nil) slice if value is above the largest key or the
// index is empty.
func (idx *OrderedKeyIndex) KeysAtLeast(value int64) []int64 {
	if len(idx.keys) == 0 {
		return []int64{}
	}
	i := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= value })
	out := make([]int64, len(idx.keys)-i)
	copy(out, idx.keys[i:])
	return out
}

// SearchClosestResult classifies where value sits relative to the index.
type SearchClosestResult struct {
	// Exact is true when value itself is an indexed key.
	Exact bool
	// Found is false only when the index is empty.
	Found bool
	// Key is the matched key: value itself if Exact, otherwise the
	// greatest indexed key <= value (just-lesser), falling back to the
	// smallest indexed key when value is below every key (just-greater).
	Key int64
}

// SearchClosest classifies value against the index: exact match, or the
// nearest lesser key, or (if value is below every key) the nearest greater
// key. It returns Found=false only when the index holds no keys at all.
func (idx *OrderedKeyIndex) SearchClosest(value int64) SearchClosestResult {
	if len(idx.keys) == 0 {
		return SearchClosestResult{Found: false}
	}
	i := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= value })
	if i < len(idx.keys) && idx.keys[i] == value {
		return SearchClosestResult{Exact: true, Found: true, Key: value}
	}
	if i == 0 {
		// value is below every key: nearest greater key.
		return SearchClosestResult{Found: true, Key: idx.keys[0]}
	}
	// nearest lesser key.
	return SearchClosestResult{Found: true, Key: idx.keys[i-1]}
}
