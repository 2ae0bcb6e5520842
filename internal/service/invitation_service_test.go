package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/models"
)

type fakeInvitationRepo struct {
	invitation models.Invitation
	found      bool
	acceptErr  error
	accepted   *models.Enrollment
	progress   *models.ProgressRecord
}

func (f *fakeInvitationRepo) GetByToken(_ context.Context, token string) (models.Invitation, error) {
	if !f.found || f.invitation.Token != token {
		return models.Invitation{}, gorm.ErrRecordNotFound
	}
	return f.invitation, nil
}

func (f *fakeInvitationRepo) Accept(_ context.Context, _ string, enrollment *models.Enrollment, progress *models.ProgressRecord) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	enrollment.ID = 11
	f.accepted = enrollment
	f.progress = progress
	return nil
}

func pendingInvitation() models.Invitation {
	return models.Invitation{
		ID:        "inv-1",
		CourseID:  42,
		Email:     "student@example.com",
		Role:      models.EnrollmentRoleStudent,
		Status:    models.InvitationStatusPending,
		Token:     "tok-abc",
		MaxUses:   1,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func acceptRequest() dto.AcceptInvitationRequest {
	return dto.AcceptInvitationRequest{
		UserID: "7b1c6dd2-4a44-4de2-9b7e-0c3ce3a0a111",
		Email:  "student@example.com",
	}
}

func newInvitationService(repo *fakeInvitationRepo) InvitationService {
	return NewInvitationService(repo, &fakeCourseRepo{courses: map[uint]models.Course{42: {ID: 42, Title: "Biology"}}}, nil, validator.New(), testLogger())
}

func TestInvitationServiceGetDetails(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true}
	svc := newInvitationService(repo)

	details, err := svc.GetDetails(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "inv-1", details.ID)
	require.Equal(t, "Biology", details.CourseTitle)

	_, err = svc.GetDetails(context.Background(), "tok-missing")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationServiceAcceptSuccess(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true}
	svc := newInvitationService(repo)

	result, err := svc.Accept(context.Background(), "tok-abc", acceptRequest())
	require.NoError(t, err)
	require.Equal(t, uint(11), result.EnrollmentID)
	require.Equal(t, uint(42), result.CourseID)
	require.Equal(t, models.EnrollmentStatusActive, result.Status)

	require.NotNil(t, repo.accepted)
	require.Equal(t, models.EnrollmentRoleStudent, repo.accepted.Role)
	require.NotNil(t, repo.progress, "acceptance seeds an initial progress record")
	require.Equal(t, models.ProgressStatusNotStarted, repo.progress.Status)
}

func TestInvitationServiceAcceptValidation(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true}
	svc := newInvitationService(repo)

	req := acceptRequest()
	req.UserID = "not-a-uuid"
	_, err := svc.Accept(context.Background(), "tok-abc", req)
	require.Error(t, err)
	var fieldErrors validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrors)
}

func TestInvitationServiceAcceptExpired(t *testing.T) {
	invitation := pendingInvitation()
	invitation.ExpiresAt = time.Now().Add(-time.Hour)
	repo := &fakeInvitationRepo{invitation: invitation, found: true}
	svc := newInvitationService(repo)

	_, err := svc.Accept(context.Background(), "tok-abc", acceptRequest())
	require.ErrorIs(t, err, ErrInvitationExpired)
}

func TestInvitationServiceAcceptCancelled(t *testing.T) {
	invitation := pendingInvitation()
	invitation.Status = models.InvitationStatusCancelled
	repo := &fakeInvitationRepo{invitation: invitation, found: true}
	svc := newInvitationService(repo)

	_, err := svc.Accept(context.Background(), "tok-abc", acceptRequest())
	require.ErrorIs(t, err, ErrInvitationCancelled)
}

func TestInvitationServiceAcceptExhausted(t *testing.T) {
	invitation := pendingInvitation()
	invitation.MaxUses = 2
	invitation.CurrentUses = 2
	repo := &fakeInvitationRepo{invitation: invitation, found: true}
	svc := newInvitationService(repo)

	_, err := svc.Accept(context.Background(), "tok-abc", acceptRequest())
	require.ErrorIs(t, err, ErrInvitationExhausted)
}

func TestInvitationServiceAcceptEmailMismatch(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true}
	svc := newInvitationService(repo)

	req := acceptRequest()
	req.Email = "someone-else@example.com"
	_, err := svc.Accept(context.Background(), "tok-abc", req)
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)
}

func TestInvitationServiceAcceptEmailCaseInsensitive(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true}
	svc := newInvitationService(repo)

	req := acceptRequest()
	req.Email = "  Student@Example.COM "
	_, err := svc.Accept(context.Background(), "tok-abc", req)
	require.NoError(t, err)
}

func TestInvitationServiceAcceptLostRace(t *testing.T) {
	repo := &fakeInvitationRepo{invitation: pendingInvitation(), found: true, acceptErr: gorm.ErrRecordNotFound}
	svc := newInvitationService(repo)

	_, err := svc.Accept(context.Background(), "tok-abc", acceptRequest())
	require.ErrorIs(t, err, ErrInvitationAlreadyAccepted)
}
