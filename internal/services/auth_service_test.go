package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewAuthService(repository.NewUserRepository(db))
}

// neverFindsRepo hides existing users from FindByEmail so that a
// registration proceeds to the insert, the way an interleaved concurrent
// registration would.
type neverFindsRepo struct {
	repository.UserRepository
}

func (r neverFindsRepo) FindByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestRegisterAndLogin(t *testing.T) {
	service := setupAuthService(t)

	user, err := service.Register(RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// Emails are stored lowercase, passwords are hashed
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.Equal(t, []string{string(models.RoleMember)}, user.Roles)
	assert.NotEmpty(t, user.ID)

	logged, err := service.Login(LoginInput{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = service.Login(LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidUserName)

	_, err = service.Register(RegisterInput{Name: "Alice", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.Register(RegisterInput{Name: "Alice", Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Register(RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Duplicate check is case-insensitive
	_, err = service.Register(RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterConcurrentDuplicateEmail(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	service := NewAuthService(neverFindsRepo{repository.NewUserRepository(db)})

	_, err = service.Register(RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	// The pre-insert lookup missed the first registration; the unique
	// index still turns the second insert into a conflict.
	_, err = service.Register(RegisterInput{Name: "Other", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	service := setupAuthService(t)

	avatar := "https://example.com/a.png"
	user, err := service.Register(RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Avatar:   &avatar,
	})
	require.NoError(t, err)

	newName := "Alice B"
	updated, err := service.UpdateProfile(user.ID, UpdateProfileInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, avatar, *updated.Avatar)

	updated, err = service.UpdateProfile(user.ID, UpdateProfileInput{ClearAvatar: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Avatar)

	short := "A"
	_, err = service.UpdateProfile(user.ID, UpdateProfileInput{Name: &short})
	assert.ErrorIs(t, err, ErrInvalidUserName)

	_, err = service.UpdateProfile("missing", UpdateProfileInput{Name: &newName})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
