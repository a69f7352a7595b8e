// Package readers provides database operations for reader management.
package readers

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotFound    = errors.New("reader not found")
	ErrEmailExists = errors.New("reader email already registered")
	ErrReferenced  = errors.New("reader is referenced by loans")
)

// Repository handles all reader database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new readers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a reader by ID.
func (r *Repository) GetByID(id uint) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.First(&reader, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reader, nil
}

// GetAll retrieves all readers ordered by registration date, newest first.
func (r *Repository) GetAll() ([]entities.Reader, error) {
	var readers []entities.Reader
	err := r.db.Order("registration_date DESC").Find(&readers).Error
	return readers, err
}

// Create inserts a new reader. The email is normalized to lowercase and the
// registration date defaults to now when unset.
func (r *Repository) Create(reader *entities.Reader) error {
	reader.Email = strings.ToLower(strings.TrimSpace(reader.Email))
	if reader.RegistrationDate.IsZero() {
		reader.RegistrationDate = time.Now()
	}

	var existing entities.Reader
	err := r.db.Where("email = ?", reader.Email).First(&existing).Error
	if err == nil {
		return ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(reader).Error
}

// Update modifies a reader's name and email.
func (r *Repository) Update(id uint, name, email string) (*entities.Reader, error) {
	reader, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != reader.Email {
		var existing entities.Reader
		err := r.db.Where("email = ? AND id <> ?", email, id).First(&existing).Error
		if err == nil {
			return nil, ErrEmailExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := r.db.Model(reader).Updates(map[string]any{"name": name, "email": email}).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a reader. Readers referenced by any loan are rejected so
// loan history stays resolvable. The count and the delete run in one
// transaction, so a checkout that lands in between cannot leave an open loan
// pointing at a deleted reader.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var reader entities.Reader
		if err := tx.First(&reader, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var loanCount int64
		if err := tx.Model(&entities.Loan{}).Where("reader_id = ?", id).Count(&loanCount).Error; err != nil {
			return err
		}
		if loanCount > 0 {
			return ErrReferenced
		}

		return tx.Delete(&reader).Error
	})
}

// Count returns the total number of readers.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reader{}).Count(&count).Error
	return count, err
}
