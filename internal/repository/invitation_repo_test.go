package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

func seedInvitation(t *testing.T, db *gorm.DB) models.Invitation {
	t.Helper()
	invitation := models.Invitation{
		ID:        "inv-1",
		CourseID:  42,
		Email:     "student@example.com",
		Role:      models.EnrollmentRoleStudent,
		Status:    models.InvitationStatusPending,
		Token:     "tok-abc",
		MaxUses:   1,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&invitation).Error)
	return invitation
}

func TestInvitationRepositoryGetByToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvitationRepository(db)
	seedInvitation(t, db)

	invitation, err := repo.GetByToken(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "inv-1", invitation.ID)

	_, err = repo.GetByToken(context.Background(), "tok-missing")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestInvitationRepositoryAcceptWritesAtomically(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvitationRepository(db)
	seedInvitation(t, db)

	enrollment := models.Enrollment{UserID: "u-1", CourseID: 42, Role: models.EnrollmentRoleStudent, Status: models.EnrollmentStatusActive}
	progress := models.ProgressRecord{UserID: "u-1", CourseID: 42, ContentItemID: 1, Status: models.ProgressStatusNotStarted}

	require.NoError(t, repo.Accept(context.Background(), "inv-1", &enrollment, &progress))
	require.NotZero(t, enrollment.ID)

	var stored models.Invitation
	require.NoError(t, db.First(&stored, "id = ?", "inv-1").Error)
	require.Equal(t, models.InvitationStatusAccepted, stored.Status)
	require.Equal(t, 1, stored.CurrentUses)
	require.NotNil(t, stored.AcceptedAt)

	var progressCount int64
	require.NoError(t, db.Model(&models.ProgressRecord{}).Where("user_id = ?", "u-1").Count(&progressCount).Error)
	require.Equal(t, int64(1), progressCount)
}

func TestInvitationRepositoryAcceptLosesRaceOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvitationRepository(db)
	seedInvitation(t, db)

	first := models.Enrollment{UserID: "u-1", CourseID: 42, Role: models.EnrollmentRoleStudent, Status: models.EnrollmentStatusActive}
	require.NoError(t, repo.Accept(context.Background(), "inv-1", &first, nil))

	second := models.Enrollment{UserID: "u-2", CourseID: 42, Role: models.EnrollmentRoleStudent, Status: models.EnrollmentStatusActive}
	err := repo.Accept(context.Background(), "inv-1", &second, nil)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var enrollmentCount int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollmentCount).Error)
	require.Equal(t, int64(1), enrollmentCount, "losing acceptance must not leave an enrollment behind")
}
