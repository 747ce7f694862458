package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bosocmputer/ghostwriter/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Needs a running MongoDB, e.g. MONGO_TEST_URI=mongodb://localhost:27017
func newTestStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	dbName := "ghostwriter_test_" + uuid.NewString()[:8]
	store, err := NewMongoStore(context.Background(), uri, dbName)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		store.Close()
	})
	return store
}

func TestRecordAndListGenerations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, outcome := range []string{"success", "no_text", "llm_error"} {
		err := store.RecordGeneration(ctx, GenerationRecord{
			RequestID:     uuid.NewString(),
			ResolvedModel: "solar-pro2",
			Outcome:       outcome,
			Documents: []DocumentStatus{
				{Index: 0, Filename: "a.png", Status: "success", Chars: 12},
			},
			Tokens:    common.TokenUsage{TotalTokens: 10 * (i + 1)},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	records, err := store.RecentGenerations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "llm_error", records[0].Outcome)
	require.Equal(t, "no_text", records[1].Outcome)
	require.Equal(t, "a.png", records[0].Documents[0].Filename)
}

func TestRecordGenerationSetsCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordGeneration(ctx, GenerationRecord{RequestID: "r1", Outcome: "success"}))

	records, err := store.RecentGenerations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.False(t, records[0].CreatedAt.IsZero())
}
