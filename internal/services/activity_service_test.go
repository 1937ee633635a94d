package services

import (
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestActivityCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "activities@example.com")

	cases := []struct {
		name string
		req  dto.CreateActivityRequest
		want error
	}{
		{"bad category", dto.CreateActivityRequest{Category: "plastics", Description: "x", Value: 1, Unit: "kg"}, ErrInvalidCategory},
		{"negative value", dto.CreateActivityRequest{Category: "energy", Description: "x", Value: -1, Unit: "kWh"}, ErrNegativeValue},
		{"missing unit", dto.CreateActivityRequest{Category: "energy", Description: "x", Value: 1}, ErrUnitRequired},
		{"missing description", dto.CreateActivityRequest{Category: "energy", Description: "  ", Value: 1, Unit: "kWh"}, ErrDescriptionNeeded},
		{"bad impact", dto.CreateActivityRequest{Category: "energy", Description: "x", Value: 1, Unit: "kWh", ImpactLevel: "severe"}, ErrInvalidImpact},
		{"bad date", dto.CreateActivityRequest{Category: "energy", Description: "x", Value: 1, Unit: "kWh", Date: "29-08-2026"}, ErrInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(user.ID, &tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestActivityCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "activities@example.com")

	resp, err := svc.Create(user.ID, &dto.CreateActivityRequest{
		Category:    models.CategoryWater,
		Description: "Shorter showers",
		Value:       40,
		Unit:        "liters",
	})
	require.NoError(t, err)
	require.Equal(t, models.ImpactMedium, resp.ImpactLevel)
	require.False(t, resp.Verified)
	require.NotEmpty(t, resp.Date)
}

func TestActivityVerifiedIsFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "activities@example.com")
	admin := createTestUser(t, db, "admin@example.com")

	created, err := svc.Create(user.ID, &dto.CreateActivityRequest{
		Category:    models.CategoryEnergy,
		Description: "Switched to LED bulbs",
		Value:       12,
		Unit:        "kWh",
	})
	require.NoError(t, err)

	// Owner can edit before verification.
	updated, err := svc.Update(user.ID, created.ID, false, &dto.UpdateActivityRequest{
		Description: strPtr("Switched all bulbs to LED"),
	})
	require.NoError(t, err)
	require.Equal(t, "Switched all bulbs to LED", updated.Description)

	verified, err := svc.Verify(admin.ID, created.ID)
	require.NoError(t, err)
	require.True(t, verified.Verified)
	require.NotNil(t, verified.VerifiedAt)
	require.Equal(t, admin.ID, *verified.VerifiedBy)

	// Frozen for the owner now.
	_, err = svc.Update(user.ID, created.ID, false, &dto.UpdateActivityRequest{
		Description: strPtr("sneaky edit"),
	})
	require.ErrorIs(t, err, ErrActivityVerified)

	// Admins can still edit.
	updated, err = svc.Update(admin.ID, created.ID, true, &dto.UpdateActivityRequest{
		Notes: strPtr("checked against the utility bill"),
	})
	require.NoError(t, err)
	require.Equal(t, "checked against the utility bill", updated.Notes)
}

func TestActivityVerifyIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "activities@example.com")
	firstAdmin := createTestUser(t, db, "admin1@example.com")
	secondAdmin := createTestUser(t, db, "admin2@example.com")

	created, err := svc.Create(user.ID, &dto.CreateActivityRequest{
		Category:    models.CategoryRecycling,
		Description: "Weekly recycling run",
		Value:       5,
		Unit:        "kg",
	})
	require.NoError(t, err)

	first, err := svc.Verify(firstAdmin.ID, created.ID)
	require.NoError(t, err)

	// Re-verifying keeps the original verifier and timestamp.
	second, err := svc.Verify(secondAdmin.ID, created.ID)
	require.NoError(t, err)
	require.Equal(t, firstAdmin.ID, *second.VerifiedBy)
	require.Equal(t, first.VerifiedAt, second.VerifiedAt)

	_, err = svc.Verify(firstAdmin.ID, uuid.New())
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestActivityListFilterAndTenancy(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	for i := 0; i < 2; i++ {
		_, err := svc.Create(alice.ID, &dto.CreateActivityRequest{
			Category: models.CategoryEnergy, Description: "a", Value: 1, Unit: "kWh",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(alice.ID, &dto.CreateActivityRequest{
		Category: models.CategoryWater, Description: "a", Value: 1, Unit: "liters",
	})
	require.NoError(t, err)
	created, err := svc.Create(bob.ID, &dto.CreateActivityRequest{
		Category: models.CategoryEnergy, Description: "b", Value: 1, Unit: "kWh",
	})
	require.NoError(t, err)

	all, err := svc.List(alice.ID, "", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 3, all.Total)

	energy, err := svc.List(alice.ID, models.CategoryEnergy, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, energy.Total)

	// Bob's activities never leak into Alice's view.
	_, err = svc.Get(alice.ID, created.ID)
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestActivityListUnverified(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "activities@example.com")
	admin := createTestUser(t, db, "admin@example.com")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		created, err := svc.Create(user.ID, &dto.CreateActivityRequest{
			Category: models.CategoryWaste, Description: "compost", Value: 2, Unit: "kg",
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	pending, err := svc.ListUnverified(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 3, pending.Total)

	_, err = svc.Verify(admin.ID, ids[0])
	require.NoError(t, err)

	pending, err = svc.ListUnverified(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, pending.Total)
}
