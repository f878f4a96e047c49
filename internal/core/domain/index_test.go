package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIdentity(t *testing.T) {
	tests := []struct {
		name           string
		vectors        []int64
		metas          []int64
		wantErr        bool
		missingMeta    []int64
		missingVectors []int64
	}{
		{name: "equal sets", vectors: []int64{0, 1, 2}, metas: []int64{2, 1, 0}},
		{name: "both empty", vectors: nil, metas: nil},
		{name: "vector without metadata", vectors: []int64{0, 1, 2}, metas: []int64{0, 1}, wantErr: true, missingMeta: []int64{2}},
		{name: "metadata without vector", vectors: []int64{0}, metas: []int64{0, 5, 4}, wantErr: true, missingVectors: []int64{4, 5}},
		{name: "duplicate vector id", vectors: []int64{0, 0}, metas: []int64{0}, wantErr: true},
		{name: "duplicate metadata id", vectors: []int64{1}, metas: []int64{1, 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIdentity(tt.vectors, tt.metas)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIndexConsistency))

			var ice *IndexConsistencyError
			require.True(t, errors.As(err, &ice))
			if tt.missingMeta != nil {
				assert.Equal(t, tt.missingMeta, ice.MissingMetadata)
			}
			if tt.missingVectors != nil {
				assert.Equal(t, tt.missingVectors, ice.MissingVectors)
			}
		})
	}
}

func TestMetaFromChunk(t *testing.T) {
	c := Chunk{ChunkID: "c-1", Source: SourceScanned, DocPath: "raw/pdf/a.pdf", Loc: Location{Page: 3}, Text: "hello"}

	m := MetaFromChunk(7, c)

	assert.Equal(t, MetaRecord{ID: 7, ChunkID: "c-1", Source: SourceScanned, DocPath: "raw/pdf/a.pdf", Loc: Location{Page: 3}, Text: "hello"}, m)
}

func TestQuery_Validate(t *testing.T) {
	assert.NoError(t, Query{Question: "cats?", TopK: 1}.Validate())

	err := Query{Question: "   ", TopK: 5}.Validate()
	assert.ErrorIs(t, err, ErrValidation)

	err = Query{Question: "cats?", TopK: 0}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "top_k")
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, MediaPDF, CategoryFor("report.PDF"))
	assert.Equal(t, MediaImage, CategoryFor("scan.jpeg"))
	assert.Equal(t, MediaVideo, CategoryFor("clip.mp4"))
	assert.Equal(t, MediaAudio, CategoryFor("memo.wav"))
	assert.Equal(t, MediaOther, CategoryFor("notes.txt"))
	assert.Equal(t, "application/pdf", ContentTypeFor("a.pdf"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.bin"))
}

func TestIsPDFKey(t *testing.T) {
	assert.True(t, IsPDFKey("raw/pdf/a.pdf"))
	assert.True(t, IsPDFKey("raw/pdf/B.Pdf"))
	assert.False(t, IsPDFKey("raw/pdf/readme.txt"))
	assert.False(t, IsPDFKey("raw/pdf/"))
}

func TestSourceKind(t *testing.T) {
	assert.True(t, SourceNative.IsValid())
	assert.True(t, SourceScanned.IsValid())
	assert.False(t, SourceKind("ocr").IsValid())
	assert.Equal(t, "scanned", SourceScanned.String())
}
