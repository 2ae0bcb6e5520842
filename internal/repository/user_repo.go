package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// UserRepository provides access to user identity rows. Soft-deleted
// users are invisible to every read.
type UserRepository interface {
	ListActive(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var users []models.User
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(bio) LIKE ?", like, like, like).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) (models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Updates(updates)
	if tx.Error != nil {
		return models.User{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}
