package services

import (
	"testing"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	db := newTestDB(t)
	goalSvc := NewGoalService(db)
	activitySvc := NewActivityService(db)
	svc := NewDashboardService(db, goalSvc)
	user := createTestUser(t, db, "dash@example.com")
	now := time.Now().UTC()

	for i := 0; i < 7; i++ {
		_, err := activitySvc.Create(user.ID, &dto.CreateActivityRequest{
			Category:    models.CategoryEnergy,
			Description: "meter reading",
			Value:       10,
			Unit:        "kWh",
			Date:        dateString(now.AddDate(0, 0, -i)),
		})
		require.NoError(t, err)
	}
	_, err := activitySvc.Create(user.ID, &dto.CreateActivityRequest{
		Category:    models.CategoryWater,
		Description: "rain barrel refill",
		Value:       200,
		Unit:        "liters",
		Date:        dateString(now),
	})
	require.NoError(t, err)

	openGoal := models.Goal{
		ID: uuid.New(), UserID: user.ID, Title: "open", Unit: "kWh", TargetValue: 100,
		Deadline: now.AddDate(0, 0, 14), Status: models.GoalStatusInProgress,
	}
	missedGoal := models.Goal{
		ID: uuid.New(), UserID: user.ID, Title: "missed", Unit: "kWh", TargetValue: 100,
		Deadline: now.AddDate(0, 0, -3), Status: models.GoalStatusPending,
	}
	doneGoal := models.Goal{
		ID: uuid.New(), UserID: user.ID, Title: "done", Unit: "kWh", TargetValue: 100,
		Deadline: now.AddDate(0, 0, 14), Status: models.GoalStatusCompleted,
	}
	for _, g := range []models.Goal{openGoal, missedGoal, doneGoal} {
		g := g
		require.NoError(t, db.Create(&g).Error)
	}

	resp, err := svc.Summary(user.ID)
	require.NoError(t, err)

	require.Len(t, resp.RecentActivities, 5)

	// Only genuinely open goals count; the missed one becomes overdue and
	// drops out, the completed one was never in.
	require.Len(t, resp.ActiveGoals, 1)
	require.Equal(t, "open", resp.ActiveGoals[0].Title)

	var missed models.Goal
	require.NoError(t, db.First(&missed, "id = ?", missedGoal.ID).Error)
	require.Equal(t, models.GoalStatusOverdue, missed.Status)

	require.NotEmpty(t, resp.MonthlyTotals)
	for _, total := range resp.MonthlyTotals {
		require.Positive(t, total.Total)
	}
}
