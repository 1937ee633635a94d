package services

import (
	"testing"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func dateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func TestGoalCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")
	tomorrow := dateString(time.Now().Add(24 * time.Hour))

	cases := []struct {
		name string
		req  dto.CreateGoalRequest
		want error
	}{
		{"missing title", dto.CreateGoalRequest{Unit: "kWh", Deadline: tomorrow}, ErrTitleRequired},
		{"missing unit", dto.CreateGoalRequest{Title: "Cut power use", Deadline: tomorrow}, ErrUnitRequired},
		{"negative target", dto.CreateGoalRequest{Title: "x", Unit: "kWh", TargetValue: -1, Deadline: tomorrow}, ErrNegativeValue},
		{"progress above target", dto.CreateGoalRequest{Title: "x", Unit: "kWh", TargetValue: 10, CurrentValue: 11, Deadline: tomorrow}, ErrProgressExceedsTarget},
		{"bad category", dto.CreateGoalRequest{Title: "x", Unit: "kWh", TargetValue: 10, Category: "plastics", Deadline: tomorrow}, ErrInvalidGoalCategory},
		{"bad priority", dto.CreateGoalRequest{Title: "x", Unit: "kWh", TargetValue: 10, Priority: "asap", Deadline: tomorrow}, ErrInvalidGoalPriority},
		{"bad deadline", dto.CreateGoalRequest{Title: "x", Unit: "kWh", TargetValue: 10, Deadline: "not-a-date"}, ErrInvalidDeadline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(user.ID, &tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGoalCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")

	resp, err := svc.Create(user.ID, &dto.CreateGoalRequest{
		Title:       "Reduce electricity",
		Unit:        "kWh",
		TargetValue: 100,
		Deadline:    dateString(time.Now().Add(30 * 24 * time.Hour)),
	})
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusPending, resp.Status)
	require.Equal(t, models.CategoryEnergy, resp.Category)
	require.Equal(t, models.PriorityMedium, resp.Priority)
	require.Equal(t, 7, resp.ReminderFrequency)
	require.Equal(t, 0.0, resp.ProgressPercentage)
}

func TestGoalOverdueReconciliation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")

	yesterday := time.Now().UTC().Add(-48 * time.Hour)
	goal := models.Goal{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        "Reduce electricity",
		Unit:         "kWh",
		TargetValue:  100,
		CurrentValue: 50,
		Deadline:     yesterday,
		Status:       models.GoalStatusPending,
	}
	require.NoError(t, db.Create(&goal).Error)

	resp, err := svc.Get(user.ID, goal.ID)
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusOverdue, resp.Status)
	require.Equal(t, 50.0, resp.ProgressPercentage)

	// Reconciling again changes nothing.
	resp, err = svc.Get(user.ID, goal.ID)
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusOverdue, resp.Status)
}

func TestGoalOverdueNeverTouchesTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")

	for _, status := range []string{models.GoalStatusCompleted, models.GoalStatusCancelled} {
		goal := models.Goal{
			ID:          uuid.New(),
			UserID:      user.ID,
			Title:       "Old goal",
			Unit:        "kg",
			TargetValue: 10,
			Deadline:    time.Now().UTC().Add(-72 * time.Hour),
			Status:      status,
		}
		require.NoError(t, db.Create(&goal).Error)

		resp, err := svc.Get(user.ID, goal.ID)
		require.NoError(t, err)
		require.Equal(t, status, resp.Status)
	}
}

func TestGoalTransitionStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")

	created, err := svc.Create(user.ID, &dto.CreateGoalRequest{
		Title:       "Bike to work",
		Unit:        "km",
		TargetValue: 200,
		Category:    models.CategoryTransport,
		Deadline:    dateString(time.Now().Add(30 * 24 * time.Hour)),
	})
	require.NoError(t, err)

	// Unknown and non-requestable targets are rejected.
	_, err = svc.TransitionStatus(user.ID, created.ID, "finished")
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusOverdue)
	require.ErrorIs(t, err, ErrInvalidTransition)

	resp, err := svc.TransitionStatus(user.ID, created.ID, models.GoalStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusInProgress, resp.Status)

	resp, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.GoalStatusCompleted, resp.Status)

	// Terminal is forever.
	_, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusInProgress)
	require.ErrorIs(t, err, ErrGoalTerminal)
	_, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusCancelled)
	require.ErrorIs(t, err, ErrGoalTerminal)
}

func TestGoalTransitionOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	owner := createTestUser(t, db, "owner@example.com")
	delegate := createTestUser(t, db, "delegate@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")

	created, err := svc.Create(owner.ID, &dto.CreateGoalRequest{
		Title:       "Cut water use",
		Unit:        "liters",
		TargetValue: 500,
		Category:    models.CategoryWater,
		Deadline:    dateString(time.Now().Add(14 * 24 * time.Hour)),
		AssignedTo:  &delegate.ID,
	})
	require.NoError(t, err)

	// The delegate can report progress but not finalize.
	resp, err := svc.UpdateProgress(delegate.ID, created.ID, 120)
	require.NoError(t, err)
	require.Equal(t, 120.0, resp.CurrentValue)

	_, err = svc.TransitionStatus(delegate.ID, created.ID, models.GoalStatusCompleted)
	require.ErrorIs(t, err, ErrDelegateCannotFinalize)

	// A stranger sees nothing at all.
	_, err = svc.TransitionStatus(stranger.ID, created.ID, models.GoalStatusCompleted)
	require.ErrorIs(t, err, ErrGoalNotFound)
	_, err = svc.Get(stranger.ID, created.ID)
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalUpdateProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")

	created, err := svc.Create(user.ID, &dto.CreateGoalRequest{
		Title:       "Recycle more",
		Unit:        "kg",
		TargetValue: 40,
		Category:    models.CategoryRecycling,
		Deadline:    dateString(time.Now().Add(7 * 24 * time.Hour)),
	})
	require.NoError(t, err)

	_, err = svc.UpdateProgress(user.ID, created.ID, -5)
	require.ErrorIs(t, err, ErrNegativeValue)

	resp, err := svc.UpdateProgress(user.ID, created.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 25.0, resp.ProgressPercentage)

	// Exceeding the target is allowed on progress updates; the percentage
	// clamps.
	resp, err = svc.UpdateProgress(user.ID, created.ID, 60)
	require.NoError(t, err)
	require.Equal(t, 100.0, resp.ProgressPercentage)

	_, err = svc.UpdateProgress(user.ID, uuid.New(), 1)
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalListStatusFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")
	future := dateString(time.Now().Add(30 * 24 * time.Hour))

	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, &dto.CreateGoalRequest{
			Title:       "Goal",
			Unit:        "kg",
			TargetValue: 10,
			Deadline:    future,
		})
		require.NoError(t, err)
	}
	created, err := svc.Create(user.ID, &dto.CreateGoalRequest{
		Title:       "Done goal",
		Unit:        "kg",
		TargetValue: 10,
		Deadline:    future,
	})
	require.NoError(t, err)
	_, err = svc.TransitionStatus(user.ID, created.ID, models.GoalStatusCompleted)
	require.NoError(t, err)

	all, err := svc.List(user.ID, "", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 4, all.Total)

	pending, err := svc.List(user.ID, models.GoalStatusPending, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 3, pending.Total)

	completed, err := svc.List(user.ID, models.GoalStatusCompleted, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, completed.Total)
}

func TestGoalRemindersDue(t *testing.T) {
	db := newTestDB(t)
	svc := NewGoalService(db)
	user := createTestUser(t, db, "goals@example.com")
	now := time.Now().UTC()

	fresh := now.Add(-24 * time.Hour)
	stale := now.Add(-10 * 24 * time.Hour)
	goals := []models.Goal{
		{ID: uuid.New(), UserID: user.ID, Title: "never reminded", Unit: "kg", TargetValue: 10,
			Deadline: now.Add(30 * 24 * time.Hour), Status: models.GoalStatusPending, ReminderFrequency: 7},
		{ID: uuid.New(), UserID: user.ID, Title: "recently reminded", Unit: "kg", TargetValue: 10,
			Deadline: now.Add(30 * 24 * time.Hour), Status: models.GoalStatusPending, ReminderFrequency: 7, LastReminderSent: &fresh},
		{ID: uuid.New(), UserID: user.ID, Title: "long overdue reminder", Unit: "kg", TargetValue: 10,
			Deadline: now.Add(30 * 24 * time.Hour), Status: models.GoalStatusInProgress, ReminderFrequency: 7, LastReminderSent: &stale},
	}
	for i := range goals {
		require.NoError(t, db.Create(&goals[i]).Error)
	}

	due, err := svc.RemindersDue(user.ID, now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	require.NoError(t, svc.MarkReminderSent(goals[0].ID, now))
	due, err = svc.RemindersDue(user.ID, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "long overdue reminder", due[0].Title)
}
