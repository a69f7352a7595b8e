package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrNoPassword       = errors.New("account has no password; sign in with the linked provider")
	ErrIdentityMismatch = errors.New("account is linked to a different external identity")
)

// Service handles authentication and account management.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateUser creates an account with password credentials. The first account
// in an empty database becomes an administrator; later ones are regular users.
func (s *Service) CreateUser(name, email, password string) (*entities.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	email = strings.ToLower(strings.TrimSpace(email))

	// RFC 5321 length limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	var existing entities.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := entities.UserRoleUser
	count, err := s.countUsers()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = entities.UserRoleAdmin
	}

	user := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the account.
// Implements account lockout after too many failed attempts.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user entities.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if !user.HasPassword() {
		return nil, ErrNoPassword
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	// Successful login - reset failed attempts and update last login
	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})

	return &user, nil
}

// AuthenticateExternal resolves an identity-provider sign-in into a local
// account: an existing account with the same email gets the provider ID
// linked on first use; an unknown email gets a passwordless account. A
// provider ID that disagrees with an already-linked account is rejected.
func (s *Service) AuthenticateExternal(provider, externalID, name, email, avatarURL string) (*entities.User, error) {
	if provider == "" || externalID == "" {
		return nil, fmt.Errorf("%w: provider identity incomplete", ErrIdentityMismatch)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}

	var user entities.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role := entities.UserRoleUser
		count, err := s.countUsers()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			role = entities.UserRoleAdmin
		}

		user = entities.User{
			Name:             name,
			Email:            email,
			ExternalProvider: provider,
			ExternalID:       externalID,
			AvatarURL:        avatarURL,
			Role:             role,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.ExternalID == "" {
		// Link the provider to the existing credentials account
		updates := map[string]any{
			"external_provider": provider,
			"external_id":       externalID,
		}
		if avatarURL != "" {
			updates["avatar_url"] = avatarURL
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to link external identity: %w", err)
		}
		user.ExternalProvider = provider
		user.ExternalID = externalID
		return &user, nil
	}

	if user.ExternalProvider != provider || user.ExternalID != externalID {
		return nil, ErrIdentityMismatch
	}

	return &user, nil
}

// GetUserByID retrieves an account by ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// HasUsers reports whether any account exists.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.countUsers()
	return count > 0, err
}

func (s *Service) countUsers() (int64, error) {
	var count int64
	if err := s.db.Model(&entities.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// recordFailedLogin increments the failed login counter and locks the
// account once the configured threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := time.Now().Add(lockoutDuration)
		updates["locked_until"] = lockedUntil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		log.Printf("Failed to record failed login for user %d: %v", user.ID, err)
	}
}
