// Package books provides database operations for book management.
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotFound   = errors.New("book not found")
	ErrReferenced = errors.New("book is referenced by loans")
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book by its ID with authors resolved.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Authors").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetAll retrieves all books with their authors, newest first.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Order("created_at DESC").Find(&books).Error
	return books, err
}

// Create inserts a book and attaches the given authors.
func (r *Repository) Create(book *entities.Book, authorIDs []uint) error {
	authors, err := r.resolveAuthors(authorIDs)
	if err != nil {
		return err
	}
	book.Authors = authors
	return r.db.Create(book).Error
}

// Update modifies a book's descriptive fields and replaces its author set.
// The availability flag is deliberately not touched here; only the
// circulation service writes it.
func (r *Repository) Update(id uint, title string, publicationDate *time.Time, authorIDs []uint) (*entities.Book, error) {
	book, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"title": title}
	if publicationDate != nil {
		updates["publication_date"] = *publicationDate
	}
	if err := r.db.Model(book).Updates(updates).Error; err != nil {
		return nil, err
	}

	if authorIDs != nil {
		authors, err := r.resolveAuthors(authorIDs)
		if err != nil {
			return nil, err
		}
		if err := r.db.Model(book).Association("Authors").Replace(authors); err != nil {
			return nil, err
		}
	}

	return r.GetByID(id)
}

// Delete removes a book. Books referenced by any loan (open or closed) are
// rejected so loan history stays resolvable. The count and the delete run in
// one transaction, so a checkout that lands in between cannot leave an open
// loan pointing at a deleted book.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var loanCount int64
		if err := tx.Model(&entities.Loan{}).Where("book_id = ?", id).Count(&loanCount).Error; err != nil {
			return err
		}
		if loanCount > 0 {
			return ErrReferenced
		}

		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func (r *Repository) resolveAuthors(authorIDs []uint) ([]entities.Author, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var authors []entities.Author
	if err := r.db.Find(&authors, authorIDs).Error; err != nil {
		return nil, err
	}
	if len(authors) != len(authorIDs) {
		return nil, fmt.Errorf("unknown author reference: %w", gorm.ErrRecordNotFound)
	}
	return authors, nil
}
