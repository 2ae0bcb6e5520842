package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

var testDBSeq atomic.Int64

// setupTestDB opens a per-test shared-cache in-memory database. Without
// cache=shared every pooled connection would see its own empty database;
// the unique name keeps tests from bleeding into each other.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.ProgressRecord{},
		&models.Invitation{},
		&models.AuditLog{},
	))
	return db
}

func TestUserRepositoryListActiveExcludesDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	deletedAt := time.Now()
	older := models.User{ID: "u-older", Email: "older@example.com", FullName: "Older Student", CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.User{ID: "u-newer", Email: "newer@example.com", FullName: "Newer Student", CreatedAt: time.Now().Add(-1 * time.Hour)}
	deleted := models.User{ID: "u-deleted", Email: "gone@example.com", FullName: "Gone Student", DeletedAt: &deletedAt}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&deleted).Error)

	users, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "u-newer", users[0].ID, "expected newest record first")
	require.Equal(t, "u-older", users[1].ID)
}

func TestUserRepositoryReadsAcrossPooledConnections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{ID: "u-1", Email: "a@example.com", FullName: "Alice"}).Error)

	// Pin the connection that ran the migration so the next query has to
	// open a second pooled connection against the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	held, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	user, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
}

func TestUserRepositoryGetByIDHidesDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	deletedAt := time.Now()
	user := models.User{ID: "u-1", Email: "a@example.com", FullName: "A", DeletedAt: &deletedAt}
	require.NoError(t, db.Create(&user).Error)

	_, err := repo.GetByID(context.Background(), "u-1")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserRepositorySearchMatchesNameEmailAndBio(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{ID: "u-1", Email: "alice@example.com", FullName: "Alice Johnson"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "u-2", Email: "match-email@example.com", FullName: "Bob Stone"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "u-3", Email: "carol@example.com", FullName: "Carol Reed", Bio: "Studying ALICE detector physics"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "u-4", Email: "dan@example.com", FullName: "Dan Park"}).Error)

	results, err := repo.Search(context.Background(), "  ALICE ")
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = repo.Search(context.Background(), "match-email")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "u-2", results[0].ID)
}

func TestUserRepositoryUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{ID: "u-1", Email: "a@example.com", FullName: "Before"}).Error)

	updated, err := repo.UpdateProfile(context.Background(), "u-1", map[string]interface{}{"full_name": "After", "bio": "hello"})
	require.NoError(t, err)
	require.Equal(t, "After", updated.FullName)
	require.Equal(t, "hello", updated.Bio)

	_, err = repo.UpdateProfile(context.Background(), "missing", map[string]interface{}{"full_name": "X"})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
