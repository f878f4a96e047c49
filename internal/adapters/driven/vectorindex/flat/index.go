// Package flat provides an exact inner-product vector index.
//
// Every query scans all vectors, so results are exact and deterministic:
// strictly descending score with ties broken by ascending id. With
// unit-normalised vectors the inner product equals cosine similarity.
package flat

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Errors returned by the index.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrDuplicateID       = errors.New("duplicate vector id")
)

// Index holds vectors in one contiguous slice.
// Add is not safe for concurrent use; Search is, once loading is done.
type Index struct {
	dims    int
	ids     []int64
	vectors []float32
	pos     map[int64]int
}

// New creates an empty index. dims may be zero, in which case the first
// Add fixes it.
func New(dims int) *Index {
	return &Index{
		dims: dims,
		pos:  make(map[int64]int),
	}
}

// Add appends a vector under id.
func (x *Index) Add(id int64, vec []float32) error {
	if x.dims == 0 {
		x.dims = len(vec)
	}
	if len(vec) != x.dims || len(vec) == 0 {
		return fmt.Errorf("%w: id %d has %d, index has %d", ErrDimensionMismatch, id, len(vec), x.dims)
	}
	if _, ok := x.pos[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	x.pos[id] = len(x.ids)
	x.ids = append(x.ids, id)
	x.vectors = append(x.vectors, vec...)
	return nil
}

// Len returns the number of vectors.
func (x *Index) Len() int {
	return len(x.ids)
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dims
}

// IDs returns every id in ascending order.
func (x *Index) IDs() []int64 {
	out := make([]int64, len(x.ids))
	copy(out, x.ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Vector returns a copy of the stored vector for id.
func (x *Index) Vector(id int64) ([]float32, bool) {
	i, ok := x.pos[id]
	if !ok {
		return nil, false
	}
	out := make([]float32, x.dims)
	copy(out, x.vectors[i*x.dims:(i+1)*x.dims])
	return out, true
}

// Search returns the k best hits by inner product. k is clamped to Len;
// k <= 0 returns no hits.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(x.ids) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dims)
	}
	k = min(k, len(x.ids))

	h := make(hitHeap, 0, k)
	for i, id := range x.ids {
		hit := driven.VectorHit{ID: id, Score: dot(query, x.vectors[i*x.dims:(i+1)*x.dims])}
		if len(h) < k {
			heap.Push(&h, hit)
			continue
		}
		if better(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	out := make([]driven.VectorHit, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(driven.VectorHit)
	}
	return out, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// better reports whether a ranks ahead of b.
func better(a, b driven.VectorHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// hitHeap keeps the worst retained hit at the root.
type hitHeap []driven.VectorHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(v any) { *h = append(*h, v.(driven.VectorHit)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
