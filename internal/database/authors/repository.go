// Package authors provides database operations for author management.
package authors

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotFound   = errors.New("author not found")
	ErrReferenced = errors.New("author is referenced by books")
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves an author by ID.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}

// GetAll retrieves all authors ordered by name.
func (r *Repository) GetAll() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Order("name ASC").Find(&authors).Error
	return authors, err
}

// Create inserts a new author.
func (r *Repository) Create(author *entities.Author) error {
	return r.db.Create(author).Error
}

// Update modifies an author's fields.
func (r *Repository) Update(id uint, name, nationality string, birthDate *time.Time) (*entities.Author, error) {
	author, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":        name,
		"nationality": nationality,
	}
	if birthDate != nil {
		updates["birth_date"] = *birthDate
	}
	if err := r.db.Model(author).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes an author. Authors still attached to books are rejected
// rather than leaving orphaned references behind. Count and delete share a
// transaction so a concurrent attach cannot slip between them.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		bookCount := tx.Model(&author).Association("Books").Count()
		if bookCount > 0 {
			return ErrReferenced
		}

		return tx.Delete(&author).Error
	})
}

// Count returns the total number of authors.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}
