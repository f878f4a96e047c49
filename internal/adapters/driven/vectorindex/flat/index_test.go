package flat

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(v ...float32) []float32 {
	return v
}

func buildIndex(t *testing.T, vecs map[int64][]float32, order []int64) *Index {
	t.Helper()
	x := New(0)
	for _, id := range order {
		require.NoError(t, x.Add(id, vecs[id]))
	}
	return x
}

// ==================== Add Tests ====================

func TestIndex_Add(t *testing.T) {
	x := New(2)

	require.NoError(t, x.Add(0, unit(1, 0)))
	require.NoError(t, x.Add(1, unit(0, 1)))

	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 2, x.Dimensions())
	assert.Equal(t, []int64{0, 1}, x.IDs())
}

func TestIndex_Add_DimensionMismatch(t *testing.T) {
	x := New(2)

	err := x.Add(0, unit(1, 0, 0))

	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, x.Len())
}

func TestIndex_Add_DuplicateID(t *testing.T) {
	x := New(2)
	require.NoError(t, x.Add(3, unit(1, 0)))

	err := x.Add(3, unit(0, 1))

	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestIndex_Add_FirstAddFixesDimensions(t *testing.T) {
	x := New(0)

	require.NoError(t, x.Add(0, unit(1, 0, 0)))

	assert.Equal(t, 3, x.Dimensions())
	assert.ErrorIs(t, x.Add(1, unit(1, 0)), ErrDimensionMismatch)
}

// ==================== Search Tests ====================

func TestIndex_Search_OrdersByScore(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{
		0: unit(0, 1),
		1: unit(1, 0),
		2: unit(0.6, 0.8),
	}, []int64{0, 1, 2})

	hits, err := x.Search(unit(1, 0), 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, int64(1), hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, int64(2), hits[1].ID)
	assert.InDelta(t, 0.6, hits[1].Score, 1e-6)
	assert.Equal(t, int64(0), hits[2].ID)
}

func TestIndex_Search_TiesBreakByAscendingID(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{
		7: unit(1, 0),
		2: unit(1, 0),
		5: unit(1, 0),
		9: unit(0, 1),
	}, []int64{7, 2, 5, 9})

	hits, err := x.Search(unit(1, 0), 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []int64{2, 5, 7}, []int64{hits[0].ID, hits[1].ID, hits[2].ID})
}

func TestIndex_Search_ClampsK(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{0: unit(1, 0), 1: unit(0, 1)}, []int64{0, 1})

	hits, err := x.Search(unit(1, 0), 100)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_Search_NonPositiveK(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{0: unit(1, 0)}, []int64{0})

	hits, err := x.Search(unit(1, 0), 0)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Search_Empty(t *testing.T) {
	hits, err := New(0).Search(unit(1, 0), 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Search_QueryDimensionMismatch(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{0: unit(1, 0)}, []int64{0})

	_, err := x.Search(unit(1, 0, 0), 1)

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_Search_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x := New(8)
	for id := int64(0); id < 500; id++ {
		v := make([]float32, 8)
		for j := range v {
			// Coarse values force plenty of score ties.
			v[j] = float32(rng.Intn(3))
		}
		require.NoError(t, x.Add(id, v))
	}
	query := []float32{1, 0, 1, 0, 1, 0, 1, 0}

	all, err := x.Search(query, x.Len())
	require.NoError(t, err)
	top, err := x.Search(query, 25)
	require.NoError(t, err)

	require.Len(t, all, 500)
	assert.Equal(t, all[:25], top)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.ID < cur.ID),
			"hit %d out of order", i)
	}
}

func TestIndex_Vector(t *testing.T) {
	x := buildIndex(t, map[int64][]float32{4: unit(0.5, 0.5)}, []int64{4})

	v, ok := x.Vector(4)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, 0.5}, v)

	_, ok = x.Vector(5)
	assert.False(t, ok)
}

// ==================== File Tests ====================

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	x := buildIndex(t, map[int64][]float32{
		0: unit(0.1, 0.2, 0.3),
		1: unit(-1, 0, 1),
	}, []int64{0, 1})

	require.NoError(t, WriteFile(path, x))
	loaded, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Dimensions())
	assert.Equal(t, []int64{0, 1}, loaded.IDs())
	v, ok := loaded.Vector(1)
	require.True(t, ok)
	assert.Equal(t, []float32{-1, 0, 1}, v)
}

func TestFile_EmptyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")

	require.NoError(t, WriteFile(path, New(0)))
	loaded, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestFile_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	require.NoError(t, os.WriteFile(path, []byte("NOPE0000000000000000"), 0600))

	_, err := ReadFile(path)

	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestFile_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	x := buildIndex(t, map[int64][]float32{0: unit(1, 2), 1: unit(3, 4)}, []int64{0, 1})
	require.NoError(t, WriteFile(path, x))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0600))

	_, err = ReadFile(path)

	assert.ErrorIs(t, err, ErrBadFormat)
}
