package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meditrack/internal/model"
)

func newTestRepo(t *testing.T) *DoseRepository {
	t.Helper()
	db, err := NewDB(":memory:", zap.NewNop())
	require.NoError(t, err)
	return NewDoseRepository(db)
}

func TestInsertAndListOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	groupID := uuid.New()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	// Insert out of order; the live query must come back sorted.
	for _, offset := range []int{16, 0, 8} {
		dose := model.DoseInstance{
			GroupID:      groupID,
			Name:         "Dipirona",
			DoseAmount:   "500mg",
			ScheduledAt:  base.Add(time.Duration(offset) * time.Hour),
			DurationDays: 3,
		}
		require.NoError(t, repo.Insert(ctx, &dose))
		assert.NotEqual(t, uuid.Nil, dose.ID)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].ScheduledAt.Before(all[i].ScheduledAt))
	}
}

func TestFetchByGroupID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	groupA := uuid.New()
	groupB := uuid.New()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, &model.DoseInstance{
			GroupID:     groupA,
			Name:        "Dipirona",
			DoseAmount:  "500mg",
			ScheduledAt: base.Add(time.Duration(i*8) * time.Hour),
		}))
	}
	require.NoError(t, repo.Insert(ctx, &model.DoseInstance{
		GroupID:     groupB,
		Name:        "Vitamina D",
		DoseAmount:  "2000UI",
		ScheduledAt: base,
	}))

	family, err := repo.FetchByGroupID(ctx, groupA)
	require.NoError(t, err)
	assert.Len(t, family, 3)
	for _, dose := range family {
		assert.Equal(t, groupA, dose.GroupID)
	}
}

func TestSaveTogglesCompletion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dose := model.DoseInstance{
		GroupID:     uuid.New(),
		Name:        "Dipirona",
		DoseAmount:  "500mg",
		ScheduledAt: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Insert(ctx, &dose))

	dose.IsDone = true
	require.NoError(t, repo.Save(ctx, &dose))

	stored, err := repo.FindByID(ctx, dose.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDone)
}

func TestDeleteByGroupID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	groupID := uuid.New()
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Insert(ctx, &model.DoseInstance{
			GroupID:     groupID,
			Name:        "Buscopan",
			DoseAmount:  "10mg",
			ScheduledAt: base.Add(time.Duration(i*8) * time.Hour),
		}))
	}

	require.NoError(t, repo.DeleteByGroupID(ctx, groupID))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
