package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	t.Helper()

	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}))

	cfg := config.Auth{
		BcryptCost:       4, // Fast cost for tests
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewService(db, cfg), db, cleanup
}

func TestService_CreateUser(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.CreateUser("Admin", "admin@example.com", "password1")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password1", user.PasswordHash)
}

func TestService_CreateUser_FirstUserIsAdmin(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	first, err := svc.CreateUser("First", "first@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, first.Role)

	second, err := svc.CreateUser("Second", "second@example.com", "password2")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, second.Role)
}

func TestService_CreateUser_Validation(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("", "a@example.com", "password1")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.CreateUser("Name", "", "password1")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.CreateUser("Name", "a@example.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.CreateUser("Name", "not-an-email", "password1")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.CreateUser("Name", "a@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_CreateUser_Duplicate(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("One", "dup@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.CreateUser("Two", "dup@example.com", "password2")
	assert.ErrorIs(t, err, ErrUserExists)

	// Email comparison is case-insensitive
	_, err = svc.CreateUser("Three", "DUP@example.com", "password3")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("User", "user@example.com", "password1")
	require.NoError(t, err)

	user, err := svc.Authenticate("user@example.com", "password1")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)

	_, err = svc.Authenticate("user@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Authenticate("nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Authenticate_Lockout(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("User", "lock@example.com", "password1")
	require.NoError(t, err)

	// Exhaust the attempt budget (MaxLoginAttempts = 3 in test config)
	for i := 0; i < 3; i++ {
		_, err = svc.Authenticate("lock@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	// Even the correct password is rejected while locked
	_, err = svc.Authenticate("lock@example.com", "password1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestService_AuthenticateExternal_CreatesAccount(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.AuthenticateExternal("google", "sub-123", "Ext User", "ext@example.com", "https://example.com/a.png")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "google", user.ExternalProvider)
	assert.Equal(t, "sub-123", user.ExternalID)
	assert.False(t, user.HasPassword())
	// First account, even external, becomes admin
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	// Passwordless accounts cannot use credentials login
	_, err = svc.Authenticate("ext@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrNoPassword)
}

func TestService_AuthenticateExternal_LinksExisting(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	created, err := svc.CreateUser("Local", "linked@example.com", "password1")
	require.NoError(t, err)

	linked, err := svc.AuthenticateExternal("google", "sub-456", "Local", "linked@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, linked.ID)
	assert.Equal(t, "sub-456", linked.ExternalID)

	// Repeat sign-in resolves to the same account
	again, err := svc.AuthenticateExternal("google", "sub-456", "Local", "linked@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// A different provider subject for the same email is rejected
	_, err = svc.AuthenticateExternal("google", "sub-999", "Impostor", "linked@example.com", "")
	assert.ErrorIs(t, err, ErrIdentityMismatch)
}
