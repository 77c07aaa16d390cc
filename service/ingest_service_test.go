package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lawlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkWriter struct {
	existing  int
	countErr  error
	insertErr error

	inserted []models.LawChunk
}

func (f *fakeChunkWriter) InsertBatch(ctx context.Context, chunks []models.LawChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks...)
	return nil
}

func (f *fakeChunkWriter) CountBySource(ctx context.Context, sourceLabel string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.existing, nil
}

func TestIngestStatute(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float64{0.1, 0.2}}

	t.Run("splits by clause and stores", func(t *testing.T) {
		writer := &fakeChunkWriter{}
		svc := NewIngestService(embedder, writer)

		stored, err := svc.IngestStatute(context.Background(), "民法典", "第一条 内容A第二条 内容B")

		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		require.Len(t, writer.inserted, 2)
		assert.Equal(t, "第一条 内容A", writer.inserted[0].Content)
		assert.Equal(t, "民法典", writer.inserted[0].SourceLabel)
		assert.Equal(t, models.CategoryLaw, writer.inserted[0].Category)
		assert.Equal(t, 0, writer.inserted[0].ChunkIndex)
		assert.Equal(t, 1, writer.inserted[1].ChunkIndex)
		assert.NotEmpty(t, writer.inserted[0].Embedding)
	})

	t.Run("skips already ingested source", func(t *testing.T) {
		writer := &fakeChunkWriter{existing: 42}
		svc := NewIngestService(embedder, writer)

		stored, err := svc.IngestStatute(context.Background(), "民法典", "第一条 内容A")

		require.NoError(t, err)
		assert.Zero(t, stored)
		assert.Empty(t, writer.inserted)
	})

	t.Run("embedding failure aborts without storing", func(t *testing.T) {
		writer := &fakeChunkWriter{}
		svc := NewIngestService(&fakeEmbedder{err: errors.New("api down")}, writer)

		stored, err := svc.IngestStatute(context.Background(), "民法典", "第一条 内容A")

		assert.Error(t, err)
		assert.Zero(t, stored)
		assert.Empty(t, writer.inserted)
	})

	t.Run("text without clause labels yields nothing", func(t *testing.T) {
		writer := &fakeChunkWriter{}
		svc := NewIngestService(embedder, writer)

		stored, err := svc.IngestStatute(context.Background(), "民法典", "没有条款的文本")
		require.NoError(t, err)
		assert.Zero(t, stored)
	})
}

func TestIngestGeneral(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float64{0.1}}

	t.Run("uses sliding window", func(t *testing.T) {
		writer := &fakeChunkWriter{}
		svc := NewIngestService(embedder, writer)

		text := strings.Repeat("判", 1200)
		stored, err := svc.IngestGeneral(context.Background(), "指导案例一号", models.CategoryCase, text)

		require.NoError(t, err)
		// stride 450: windows at 0, 450, 900
		assert.Equal(t, 3, stored)
		require.Len(t, writer.inserted, 3)
		assert.Equal(t, models.CategoryCase, writer.inserted[0].Category)
		assert.Len(t, []rune(writer.inserted[0].Content), 500)
	})

	t.Run("insert failure surfaces", func(t *testing.T) {
		writer := &fakeChunkWriter{insertErr: errors.New("db down")}
		svc := NewIngestService(embedder, writer)

		_, err := svc.IngestGeneral(context.Background(), "来源", models.CategoryReference, "短文本")
		assert.Error(t, err)
	})
}
