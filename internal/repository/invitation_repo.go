package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// InvitationRepository provides access to course invitations. Accept
// performs all acceptance writes inside a single transaction so a failed
// enrollment never leaves a half-consumed invitation behind.
type InvitationRepository interface {
	GetByToken(ctx context.Context, token string) (models.Invitation, error)
	Accept(ctx context.Context, invitationID string, enrollment *models.Enrollment, progress *models.ProgressRecord) error
}

type invitationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewInvitationRepository constructs an invitation repository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db, now: time.Now}
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error
	if err != nil {
		return models.Invitation{}, err
	}

	return invitation, nil
}

func (r *invitationRepository) Accept(ctx context.Context, invitationID string, enrollment *models.Enrollment, progress *models.ProgressRecord) error {
	acceptedAt := r.now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guard against concurrent acceptance: the status/usage update
		// only lands while the invitation is still consumable.
		update := tx.Model(&models.Invitation{}).
			Where("id = ?", invitationID).
			Where("status = ?", models.InvitationStatusPending).
			Where("current_uses < max_uses").
			Updates(map[string]interface{}{
				"status":       models.InvitationStatusAccepted,
				"current_uses": gorm.Expr("current_uses + 1"),
				"accepted_at":  acceptedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}

		if progress != nil {
			if err := tx.Create(progress).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
