// Package circulation implements the loan lifecycle: checking books out to
// readers and taking returns, while keeping every book's availability flag
// consistent with the set of open loans against it.
//
// The invariant: a book is available iff no open loan references it. Both
// Checkout and Return change the flag and the loan table together inside a
// single database transaction, and the flag flip is a conditional write, so
// two concurrent checkouts of the same book resolve to exactly one winner.
// No other package writes book availability.
package circulation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	// ErrValidation signals a missing or malformed reference.
	ErrValidation = errors.New("invalid reference")

	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a well-formed operation that would violate the
	// availability rule given current state.
	ErrConflict = errors.New("conflict")
)

// Service enforces the loan lifecycle rules. It holds no state between
// calls; every operation re-reads current state from the store.
type Service struct {
	db *gorm.DB
}

// NewService creates a circulation service on top of the given store handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Checkout lends a book to a reader. It fails with ErrConflict when the book
// is already lent out, and with ErrNotFound when the reader or the book does
// not exist. On success exactly one new open loan exists for the book and
// the book is marked unavailable; on failure nothing is written.
//
// idempotencyKey is optional. When supplied and a loan with the same key
// already exists, that loan is returned unchanged, making blind retries safe.
func (s *Service) Checkout(readerID, bookID uint, idempotencyKey string) (*entities.Loan, error) {
	if readerID == 0 {
		return nil, fmt.Errorf("%w: reader is required", ErrValidation)
	}
	if bookID == 0 {
		return nil, fmt.Errorf("%w: book is required", ErrValidation)
	}

	if idempotencyKey != "" {
		if loan, err := s.getByIdempotencyKey(idempotencyKey); err == nil {
			return loan, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var reader entities.Reader
	if err := s.db.First(&reader, readerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reader %d", ErrNotFound, readerID)
		}
		return nil, err
	}

	loan := &entities.Loan{
		ReaderID:     readerID,
		BookID:       bookID,
		CheckoutDate: time.Now(),
	}
	if idempotencyKey != "" {
		loan.IdempotencyKey = &idempotencyKey
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Flip the flag only if it is currently true. Of two concurrent
		// checkouts one sees zero affected rows and is rejected; the
		// read-then-write race of a plain precondition check cannot occur.
		res := tx.Model(&entities.Book{}).
			Where("id = ? AND available = ?", bookID, true).
			Update("available", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var book entities.Book
			if err := tx.First(&book, bookID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
				}
				return err
			}
			return fmt.Errorf("%w: book is not available", ErrConflict)
		}

		return tx.Create(loan).Error
	})
	if err != nil {
		// A concurrent retry with the same key can lose the insert to the
		// unique index; the winner's loan is the result the caller wants.
		if idempotencyKey != "" {
			if existing, lookupErr := s.getByIdempotencyKey(idempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	return s.resolve(loan.ID)
}

// Return closes an open loan and makes the book available again. The
// transition happens exactly once: a second return of the same loan fails
// with ErrConflict and leaves the recorded return date untouched.
func (s *Service) Return(loanID uint) (*entities.Loan, error) {
	if loanID == 0 {
		return nil, fmt.Errorf("%w: loan is required", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}
		if loan.ReturnDate != nil {
			return fmt.Errorf("%w: loan already returned", ErrConflict)
		}

		// Conditional close: if another return slipped in between the read
		// above and this write, zero rows match and the call is rejected.
		res := tx.Model(&entities.Loan{}).
			Where("id = ? AND return_date IS NULL", loanID).
			Update("return_date", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: loan already returned", ErrConflict)
		}

		return tx.Model(&entities.Book{}).
			Where("id = ?", loan.BookID).
			Update("available", true).Error
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(loanID)
}

// AuditAvailability recomputes the availability flag of every book from the
// loan table and repairs any drift, returning the number of repaired books.
// Drift cannot originate from Checkout or Return; this catches rows written
// by migrations or external tooling.
func (s *Service) AuditAvailability() (int, error) {
	var books []entities.Book
	if err := s.db.Find(&books).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, book := range books {
		var openLoans int64
		err := s.db.Model(&entities.Loan{}).
			Where("book_id = ? AND return_date IS NULL", book.ID).
			Count(&openLoans).Error
		if err != nil {
			return repaired, err
		}

		expected := openLoans == 0
		if book.Available == expected {
			continue
		}

		log.Printf("Availability drift on book %d (%q): flag=%v, open loans=%d",
			book.ID, book.Title, book.Available, openLoans)
		err = s.db.Model(&entities.Book{}).
			Where("id = ? AND available = ?", book.ID, book.Available).
			Update("available", expected).Error
		if err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// resolve loads a loan with its reader and book summaries for display.
func (s *Service) resolve(loanID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := s.db.Preload("Reader").Preload("Book").First(&loan, loanID).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Service) getByIdempotencyKey(key string) (*entities.Loan, error) {
	var loan entities.Loan
	err := s.db.Preload("Reader").Preload("Book").
		Where("idempotency_key = ?", key).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}
