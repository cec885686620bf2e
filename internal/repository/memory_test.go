package repository

import (
	"context"
	"testing"
	"time"

	"occupancy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryViewStateRepository(t *testing.T) {
	repo := NewMemoryViewStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGet", func(t *testing.T) {
		view := &models.ViewState{SessionID: "s1", Month: "2024-03", Room: "Loft", DayWidthPx: 32}
		require.NoError(t, repo.SaveView(ctx, view))

		got, err := repo.GetView(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, *view, *got)

		// the stored copy is not aliased
		got.Room = "Attic"
		again, _ := repo.GetView(ctx, "s1")
		assert.Equal(t, "Loft", again.Room)
	})

	t.Run("Missing", func(t *testing.T) {
		got, err := repo.GetView(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.SaveView(ctx, &models.ViewState{SessionID: "s2"}))
		require.NoError(t, repo.DeleteView(ctx, "s2"))
		got, _ := repo.GetView(ctx, "s2")
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		expiring := NewMemoryViewStateRepository(time.Minute)
		expiring.now = func() time.Time { return now }

		require.NoError(t, expiring.SaveView(ctx, &models.ViewState{SessionID: "s3"}))
		now = now.Add(2 * time.Minute)

		got, err := expiring.GetView(ctx, "s3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
