package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKimutai/IDSnap/internal/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(imageRef string, at time.Time) Record {
	return Record{
		CreatedAt: at,
		ImageRef:  imageRef,
		Format:    "NATIONAL_ID",
		Fields: map[string]string{
			"idNumber": "12345678",
			"name":     "John Kamau",
		},
		RawText: "ID NO: 12345678",
		Score:   0.85,
		Level:   "excellent",
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, sampleRecord("a.png", time.Time{}))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID, "a zero ID gets a fresh UUID")
	assert.False(t, saved.CreatedAt.IsZero(), "a zero CreatedAt gets the current time")

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "a.png", got.ImageRef)
	assert.Equal(t, "NATIONAL_ID", got.Format)
	assert.Equal(t, saved.Fields, got.Fields)
	assert.Equal(t, "ID NO: 12345678", got.RawText)
	assert.InDelta(t, 0.85, got.Score, 1e-9)
	assert.Equal(t, "excellent", got.Level)
	assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	for i, ref := range []string{"old.png", "mid.png", "new.png"} {
		_, err := s.Save(ctx, sampleRecord(ref, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	recs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "new.png", recs[0].ImageRef)
	assert.Equal(t, "mid.png", recs[1].ImageRef)
	assert.Equal(t, "old.png", recs[2].ImageRef)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "new.png", limited[0].ImageRef)
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)
	recs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
