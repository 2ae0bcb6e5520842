package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/observability"
	"github.com/teachme-ai/teachme-api/internal/repository"
)

// Avatar upload failure modes.
var (
	ErrAvatarTooLarge       = errors.New("avatar exceeds maximum allowed size")
	ErrAvatarTypeNotAllowed = errors.New("avatar file type not allowed")
)

// FileStorage abstracts the avatar storage destination.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ProfileService reads and mutates user profiles.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (dto.AvatarUploadResponse, error)
}

type profileService struct {
	users     repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	maxSize   int64
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, storage FileStorage, validate *validator.Validate, maxSizeMB int, logger zerolog.Logger) ProfileService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}

	return &profileService{
		users:     users,
		storage:   storage,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		logger:    logger.With().Str("component", "profile_service").Logger(),
		tracer:    otel.Tracer("github.com/teachme-ai/teachme-api/internal/service/profile"),
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrStudentNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("get profile %s: %w", userID, err)
	}

	return dto.NewProfileResponse(user), nil
}

// UpdateProfile applies a partial update. Free-text fields pass through
// the strict sanitizer so stored profiles never carry markup.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = s.cleanText(*req.FullName)
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Bio != nil {
		updates["bio"] = s.cleanText(*req.Bio)
	}
	if req.LanguagePreference != nil {
		updates["language_preference"] = strings.ToLower(strings.TrimSpace(*req.LanguagePreference))
	}
	if req.InstituteName != nil {
		updates["institute_name"] = s.cleanText(*req.InstituteName)
	}

	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrStudentNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("update profile %s: %w", userID, err)
	}

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (dto.AvatarUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "profile.upload_avatar", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.AvatarUploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.AvatarUploadResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AvatarUploadResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.AvatarUploadResponse{}, fmt.Errorf("get user %s: %w", userID, err)
	}

	if file.Size > s.maxSize {
		observability.AvatarUploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrAvatarTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AvatarUploadResponse{}, ErrAvatarTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.AvatarUploadResponse{}, fmt.Errorf("open avatar upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.AvatarUploadResponse{}, fmt.Errorf("read avatar upload: %w", err)
	}
	if int64(buf.Len()) > s.maxSize {
		observability.AvatarUploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrAvatarTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AvatarUploadResponse{}, ErrAvatarTooLarge
	}

	// Content sniffing, not the client-declared type, decides whether
	// the payload is an image.
	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("avatar.detected_mime", mime.String()))
	if !strings.HasPrefix(mime.String(), "image/") {
		observability.AvatarUploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrAvatarTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.AvatarUploadResponse{}, ErrAvatarTypeNotAllowed
	}

	objectName := fmt.Sprintf("%s-%s%s", userID, uuid.NewString(), mime.Extension())
	url, err := s.storage.Upload(ctx, objectName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.AvatarUploadResponse{}, fmt.Errorf("store avatar: %w", err)
	}

	if _, err := s.users.UpdateProfile(ctx, userID, map[string]interface{}{"profile_picture_url": url}); err != nil {
		span.RecordError(err)
		return dto.AvatarUploadResponse{}, fmt.Errorf("save avatar url: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("url", url).Msg("avatar updated")

	return dto.AvatarUploadResponse{URL: url}, nil
}

func (s *profileService) cleanText(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}
