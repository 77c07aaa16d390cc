package service

import (
	"context"
	"errors"
	"testing"

	"lawlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemorySearcher struct {
	records   []models.MemoryRecord
	searchErr error
	insertErr error

	gotUserID string
	inserted  []*models.MemoryRecord
}

func (f *fakeMemorySearcher) SearchByUser(ctx context.Context, userID string, embedding []float64, threshold float64, topK int) ([]models.MemoryRecord, error) {
	f.gotUserID = userID
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.records, nil
}

func (f *fakeMemorySearcher) Insert(ctx context.Context, record *models.MemoryRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func TestMemoryStoreWrite(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float64{0.1, 0.2}}

	t.Run("embeds and persists", func(t *testing.T) {
		searcher := &fakeMemorySearcher{}
		store := NewMemoryStore(embedder, searcher)

		record, err := store.Write(context.Background(), "user-1", "答辩状结尾不要写联系电话", models.MemoryPreference)

		require.NoError(t, err)
		require.Len(t, searcher.inserted, 1)
		assert.Equal(t, "user-1", record.UserID)
		assert.Equal(t, models.MemoryPreference, record.MemoryType)
		assert.Equal(t, []float64{0.1, 0.2}, record.Embedding)
		assert.NotEqual(t, "", record.ID.String())
	})

	t.Run("rejects empty user", func(t *testing.T) {
		store := NewMemoryStore(embedder, &fakeMemorySearcher{})

		_, err := store.Write(context.Background(), "", "content", models.MemoryFact)
		assert.Error(t, err)
	})

	t.Run("rejects unknown memory type", func(t *testing.T) {
		store := NewMemoryStore(embedder, &fakeMemorySearcher{})

		_, err := store.Write(context.Background(), "user-1", "content", models.MemoryType("mood"))
		assert.Error(t, err)
	})

	t.Run("write failures surface", func(t *testing.T) {
		store := NewMemoryStore(embedder, &fakeMemorySearcher{insertErr: errors.New("db down")})

		_, err := store.Write(context.Background(), "user-1", "content", models.MemoryFact)
		assert.Error(t, err)
	})
}

func TestMemoryStoreRetrieve(t *testing.T) {
	embedder := &fakeEmbedder{embedding: []float64{0.1}}

	t.Run("joins matches as bullets", func(t *testing.T) {
		searcher := &fakeMemorySearcher{records: []models.MemoryRecord{
			{UserID: "user-1", Content: "偏好A", Similarity: 0.9},
			{UserID: "user-1", Content: "偏好B", Similarity: 0.7},
		}}
		store := NewMemoryStore(embedder, searcher)

		got := store.Retrieve(context.Background(), "user-1", "起草合同")

		assert.Equal(t, "- 偏好A\n- 偏好B", got)
		assert.Equal(t, "user-1", searcher.gotUserID)
	})

	t.Run("filters below threshold", func(t *testing.T) {
		searcher := &fakeMemorySearcher{records: []models.MemoryRecord{
			{UserID: "user-1", Content: "偏好A", Similarity: 0.3},
		}}
		store := NewMemoryStore(embedder, searcher)

		assert.Equal(t, "", store.Retrieve(context.Background(), "user-1", "q"))
	})

	t.Run("empty user id short-circuits", func(t *testing.T) {
		e := &fakeEmbedder{embedding: []float64{0.1}}
		store := NewMemoryStore(e, &fakeMemorySearcher{})

		assert.Equal(t, "", store.Retrieve(context.Background(), "", "q"))
		assert.Zero(t, e.calls)
	})

	t.Run("lookup failure degrades to empty", func(t *testing.T) {
		store := NewMemoryStore(embedder, &fakeMemorySearcher{searchErr: errors.New("db down")})

		assert.Equal(t, "", store.Retrieve(context.Background(), "user-1", "q"))
	})

	t.Run("embedding failure degrades to empty", func(t *testing.T) {
		store := NewMemoryStore(&fakeEmbedder{err: errors.New("api down")}, &fakeMemorySearcher{})

		assert.Equal(t, "", store.Retrieve(context.Background(), "user-1", "q"))
	})
}
