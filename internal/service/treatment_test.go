package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meditrack/internal/repository"
)

func newTestService(t *testing.T) (*TreatmentService, *fakeChannel, *repository.DoseRepository) {
	t.Helper()
	db, err := repository.NewDB(":memory:", zap.NewNop())
	require.NoError(t, err)

	repo := repository.NewDoseRepository(db)
	channel := newFakeChannel()
	scheduler := NewReminderScheduler(channel, zap.NewNop())
	knowledge := NewKnowledgeBase(testEntries())
	return NewTreatmentService(repo, scheduler, knowledge, zap.NewNop()), channel, repo
}

func TestCreatePersistsAndArms(t *testing.T) {
	svc, channel, repo := newTestService(t)
	ctx := context.Background()

	doses, err := svc.Create(ctx, TreatmentInput{
		Name:          "Dipirona",
		DoseAmount:    "500mg",
		StartTime:     day1(8),
		IntervalHours: 8,
		DurationDays:  3,
	}, false)
	require.NoError(t, err)
	require.Len(t, doses, 9)

	stored, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 9)
	assert.Len(t, channel.pending, 9)
}

func TestCreateBlocksUnsafeUntilOverride(t *testing.T) {
	svc, channel, repo := newTestService(t)
	ctx := context.Background()

	input := TreatmentInput{
		Name:             "Ibuprofeno",
		DoseAmount:       "400mg",
		StartTime:        day1(8),
		IntervalHours:    4,
		DurationDays:     1,
		MinIntervalHours: 6,
	}

	_, err := svc.Create(ctx, input, false)
	var uerr *UnsafeIntervalError
	require.ErrorAs(t, err, &uerr)

	stored, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing persisted while blocked")
	assert.Empty(t, channel.pending)

	doses, err := svc.Create(ctx, input, true)
	require.NoError(t, err)
	assert.Len(t, doses, 6)
}

func TestToggleDoneLeavesSiblingsAlone(t *testing.T) {
	svc, _, repo := newTestService(t)
	ctx := context.Background()

	doses, err := svc.Create(ctx, TreatmentInput{
		Name:          "Dipirona",
		DoseAmount:    "500mg",
		StartTime:     day1(8),
		IntervalHours: 12,
		DurationDays:  1,
	}, false)
	require.NoError(t, err)
	require.Len(t, doses, 2)

	toggled, err := svc.ToggleDone(ctx, doses[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsDone)

	sibling, err := repo.FindByID(ctx, doses[1].ID)
	require.NoError(t, err)
	assert.False(t, sibling.IsDone)

	// Toggling again flips back.
	toggled, err = svc.ToggleDone(ctx, doses[0].ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsDone)
}

func TestUpdateGroupRegeneratesFamily(t *testing.T) {
	svc, channel, repo := newTestService(t)
	ctx := context.Background()

	doses, err := svc.Create(ctx, TreatmentInput{
		Name:          "Dipirona",
		DoseAmount:    "500mg",
		StartTime:     day1(8),
		IntervalHours: 8,
		DurationDays:  1,
	}, false)
	require.NoError(t, err)
	require.Len(t, doses, 3)
	groupID := doses[0].GroupID

	updated, err := svc.UpdateGroup(ctx, groupID, TreatmentInput{
		Name:          "Dipirona",
		DoseAmount:    "1g",
		StartTime:     day1(9),
		IntervalHours: 12,
		DurationDays:  2,
	}, false)
	require.NoError(t, err)
	require.Len(t, updated, 4)

	stored, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	for _, dose := range stored {
		assert.Equal(t, groupID, dose.GroupID)
		assert.Equal(t, "1g", dose.DoseAmount)
	}

	// Old reminders are gone, only the new set is pending.
	assert.Len(t, channel.pending, 4)
	for _, old := range doses {
		assert.Contains(t, channel.cancelled, old.ID.String())
	}
}

func TestDeleteGroupRemovesFamilyAndReminders(t *testing.T) {
	svc, channel, repo := newTestService(t)
	ctx := context.Background()

	doses, err := svc.Create(ctx, TreatmentInput{
		Name:          "Buscopan",
		DoseAmount:    "10mg",
		StartTime:     day1(8),
		IntervalHours: 8,
		DurationDays:  2,
	}, false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGroup(ctx, &doses[0]))

	stored, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, channel.pending)
}

func TestRearmPending(t *testing.T) {
	svc, channel, _ := newTestService(t)
	ctx := context.Background()
	now := day1(12)

	// Finite course straddling now: past doses stay silent, future ones rearm.
	finite, err := svc.Create(ctx, TreatmentInput{
		Name:          "Dipirona",
		DoseAmount:    "500mg",
		StartTime:     day1(8),
		IntervalHours: 8,
		DurationDays:  1,
	}, false)
	require.NoError(t, err)

	// Continuous course: always rearmed.
	_, err = svc.Create(ctx, TreatmentInput{
		Name:          "Vitamina D",
		DoseAmount:    "2000UI",
		StartTime:     day1(9),
		IntervalHours: 0,
		DurationDays:  0,
	}, false)
	require.NoError(t, err)

	// Simulate a restart: the channel lost its state.
	for id := range channel.pending {
		delete(channel.pending, id)
	}

	require.NoError(t, svc.RearmPending(ctx, now))

	// Doses at 08:00 is past; 16:00 and 00:00 (+24h slot spill) are ahead.
	assert.NotContains(t, channel.pending, finite[0].ID.String())
	assert.Contains(t, channel.pending, finite[1].ID.String())
	assert.Contains(t, channel.pending, finite[2].ID.String())
	assert.Len(t, channel.pending, 3)
}

func TestSuggestPrefillsFromKnowledgeBase(t *testing.T) {
	svc, _, _ := newTestService(t)

	inputs := svc.Suggest("febre")
	require.Len(t, inputs, 2)
	assert.Equal(t, "Dipirona", inputs[0].Name)
	assert.Equal(t, 4, inputs[0].MinIntervalHours)
	assert.Equal(t, "Ibuprofeno", inputs[1].Name)

	assert.Empty(t, svc.Suggest(""))
}
