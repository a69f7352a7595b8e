// Package loans provides read access to loan records.
//
// Loans are created and closed exclusively by the circulation service; this
// repository only lists and resolves them for display and reporting.
package loans

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var ErrNotFound = errors.New("loan not found")

// Repository handles loan read operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a loan with its reader and book resolved.
func (r *Repository) GetByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Preload("Reader").Preload("Book").First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// GetAll retrieves all loans with readers and books resolved, newest first.
func (r *Repository) GetAll() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Reader").Preload("Book").Order("checkout_date DESC").Find(&loans).Error
	return loans, err
}

// GetOpenForBook retrieves the open loans referencing a book. Under the
// availability invariant there is at most one.
func (r *Repository) GetOpenForBook(bookID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Where("book_id = ? AND return_date IS NULL", bookID).Find(&loans).Error
	return loans, err
}

// Count returns the total number of loans.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).Count(&count).Error
	return count, err
}

// CountOpen returns the number of loans that have not been returned.
func (r *Repository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).Where("return_date IS NULL").Count(&count).Error
	return count, err
}
