package entities

import (
	"time"
)

type Author struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:256" json:"name"`
	Nationality string    `gorm:"size:100" json:"nationality"`
	BirthDate   time.Time `json:"birth_date"`
	Books       []Book    `gorm:"many2many:book_authors;" json:"books,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:512" json:"title"`
	PublicationDate time.Time `json:"publication_date"`

	// Available mirrors the loan table: true iff no open loan references
	// this book. Only the circulation service may write it.
	Available bool `gorm:"default:true" json:"available"`

	Authors   []Author  `gorm:"many2many:book_authors;" json:"authors,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reader struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"index;size:256" json:"name"`
	Email            string    `gorm:"uniqueIndex;size:255" json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Loan links one reader to one book for a bounded time window. It is open
// while ReturnDate is nil and closed once set; no other field is ever
// mutated after creation.
type Loan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ReaderID     uint       `gorm:"index;not null" json:"reader_id"`
	BookID       uint       `gorm:"index;not null" json:"book_id"`
	CheckoutDate time.Time  `json:"checkout_date"`
	ReturnDate   *time.Time `gorm:"index" json:"return_date"`

	// IdempotencyKey makes checkout retry-safe: a replay with the same key
	// returns the stored loan instead of creating a second one. Nil when the
	// client supplied no key; NULLs do not collide on the unique index.
	IdempotencyKey *string `gorm:"uniqueIndex;size:64" json:"-"`

	Reader    Reader    `gorm:"foreignKey:ReaderID" json:"reader,omitempty"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the loan has not been returned yet.
func (l *Loan) Open() bool {
	return l.ReturnDate == nil
}
