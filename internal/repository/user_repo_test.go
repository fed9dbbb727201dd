package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

func TestUserRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{Name: "Dana Admin", Email: "dana@example.com", Password: "x", Role: models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&models.User{Name: "Sam Writer", Email: "sam@example.com", Password: "x", Role: models.RoleEditor}).Error)

	users, total, err := repo.List(context.Background(), UserFilter{Search: "DANA", PerPage: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Dana Admin", users[0].Name)

	users, total, err = repo.List(context.Background(), UserFilter{Role: models.RoleEditor, PerPage: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "sam@example.com", users[0].Email)
}

func TestUserRepositoryGetByEmailIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: models.RoleUser}).Error)

	user, err := repo.GetByEmail(context.Background(), "Dana@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "Dana", user.Name)

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryEmailTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	taken, err := repo.EmailTaken(context.Background(), "DANA@example.com", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.EmailTaken(context.Background(), "dana@example.com", user.ID)
	require.NoError(t, err)
	require.False(t, taken, "the owner keeps their own address")
}

func TestUserRepositorySoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, repo.SoftDelete(context.Background(), user.ID))
	_, err := repo.GetByID(context.Background(), user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.SoftDelete(context.Background(), user.ID), gorm.ErrRecordNotFound)
}
