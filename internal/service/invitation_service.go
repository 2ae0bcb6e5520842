package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/models"
	"github.com/teachme-ai/teachme-api/internal/repository"
)

// Invitation acceptance failure modes, mapped to 4xx responses by the
// handler layer.
var (
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrInvitationExpired         = errors.New("invitation has expired")
	ErrInvitationCancelled       = errors.New("invitation has been cancelled")
	ErrInvitationExhausted       = errors.New("invitation has reached its maximum usage limit")
	ErrInvitationAlreadyAccepted = errors.New("invitation has already been accepted")
	ErrInvitationEmailMismatch   = errors.New("invitation is for a different email address")
)

const enrollmentEventSubject = "teachme.enrollments.created"

// enrollmentEvent is the payload published to the event bus after a
// successful acceptance.
type enrollmentEvent struct {
	EnrollmentID uint      `json:"enrollment_id"`
	UserID       string    `json:"user_id"`
	CourseID     uint      `json:"course_id"`
	Role         string    `json:"role"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

// InvitationService validates and consumes course invitations.
type InvitationService interface {
	GetDetails(ctx context.Context, token string) (dto.InvitationDetails, error)
	Accept(ctx context.Context, token string, req dto.AcceptInvitationRequest) (dto.AcceptInvitationResponse, error)
}

type invitationService struct {
	invitations repository.InvitationRepository
	courses     repository.CourseRepository
	bus         *nats.Conn
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewInvitationService constructs the invitation service. The event bus
// connection may be nil; acceptance then simply publishes nothing.
func NewInvitationService(
	invitations repository.InvitationRepository,
	courses repository.CourseRepository,
	bus *nats.Conn,
	validate *validator.Validate,
	logger zerolog.Logger,
) InvitationService {
	return &invitationService{
		invitations: invitations,
		courses:     courses,
		bus:         bus,
		validator:   validate,
		logger:      logger.With().Str("component", "invitation_service").Logger(),
		now:         time.Now,
	}
}

func (s *invitationService) GetDetails(ctx context.Context, token string) (dto.InvitationDetails, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InvitationDetails{}, ErrInvitationNotFound
		}
		return dto.InvitationDetails{}, fmt.Errorf("get invitation: %w", err)
	}

	course, err := s.courses.GetByID(ctx, invitation.CourseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.InvitationDetails{}, fmt.Errorf("get invitation course: %w", err)
	}

	return dto.NewInvitationDetails(invitation, course), nil
}

// Accept consumes an invitation for the given user. Every validation the
// acceptance screen performed client-side is enforced here, and the
// invitation update, enrollment insert and progress seed land in one
// transaction.
func (s *invitationService) Accept(ctx context.Context, token string, req dto.AcceptInvitationRequest) (dto.AcceptInvitationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AcceptInvitationResponse{}, err
	}

	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AcceptInvitationResponse{}, ErrInvitationNotFound
		}
		return dto.AcceptInvitationResponse{}, fmt.Errorf("get invitation: %w", err)
	}

	if err := s.validateConsumable(invitation, req); err != nil {
		return dto.AcceptInvitationResponse{}, err
	}

	acceptedAt := s.now().UTC()
	enrollment := models.Enrollment{
		UserID:     req.UserID,
		CourseID:   invitation.CourseID,
		Role:       invitation.Role,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: acceptedAt,
	}
	progress := models.ProgressRecord{
		UserID:         req.UserID,
		CourseID:       invitation.CourseID,
		ContentItemID:  1,
		Status:         models.ProgressStatusNotStarted,
		LastAccessedAt: acceptedAt,
	}

	if err := s.invitations.Accept(ctx, invitation.ID, &enrollment, &progress); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race to another acceptance of the same token.
			return dto.AcceptInvitationResponse{}, ErrInvitationAlreadyAccepted
		}
		return dto.AcceptInvitationResponse{}, fmt.Errorf("accept invitation: %w", err)
	}

	s.publishEnrollment(enrollment, acceptedAt)

	s.logger.Info().
		Str("invitation_id", invitation.ID).
		Str("user_id", req.UserID).
		Uint("course_id", invitation.CourseID).
		Msg("invitation accepted")

	return dto.AcceptInvitationResponse{
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		Role:         enrollment.Role,
		Status:       enrollment.Status,
		EnrolledAt:   enrollment.EnrolledAt,
	}, nil
}

func (s *invitationService) validateConsumable(invitation models.Invitation, req dto.AcceptInvitationRequest) error {
	switch invitation.Status {
	case models.InvitationStatusCancelled:
		return ErrInvitationCancelled
	case models.InvitationStatusAccepted:
		return ErrInvitationAlreadyAccepted
	case models.InvitationStatusExpired:
		return ErrInvitationExpired
	}

	if invitation.IsExpired(s.now()) {
		return ErrInvitationExpired
	}
	if invitation.IsExhausted() {
		return ErrInvitationExhausted
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), invitation.Email) {
		return ErrInvitationEmailMismatch
	}

	return nil
}

// publishEnrollment emits the enrollment event fire-and-forget; the
// acceptance already committed and must not be failed retroactively.
func (s *invitationService) publishEnrollment(enrollment models.Enrollment, acceptedAt time.Time) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(enrollmentEvent{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		Role:         enrollment.Role,
		AcceptedAt:   acceptedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode enrollment event")
		return
	}

	if err := s.bus.Publish(enrollmentEventSubject, payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to publish enrollment event")
	}
}
