package loans

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func seedLoan(t *testing.T, db *database.Database, returned bool) *entities.Loan {
	t.Helper()

	reader := &entities.Reader{Name: "Alice", Email: "alice+" + uuid.NewString() + "@example.com", RegistrationDate: time.Now()}
	require.NoError(t, db.DB.Create(reader).Error)

	book := &entities.Book{Title: "Les Misérables", Available: returned}
	require.NoError(t, db.DB.Create(book).Error)

	loan := &entities.Loan{ReaderID: reader.ID, BookID: book.ID, CheckoutDate: time.Now()}
	if returned {
		now := time.Now()
		loan.ReturnDate = &now
	}
	require.NoError(t, db.DB.Create(loan).Error)
	return loan
}

func TestGetByIDResolvesReferences(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	seeded := seedLoan(t, db, false)

	loan, err := repo.GetByID(seeded.ID)
	require.NoError(t, err)

	assert.Equal(t, "Alice", loan.Reader.Name)
	assert.Equal(t, "Les Misérables", loan.Book.Title)
	assert.True(t, loan.Open())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.GetByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOpenForBook(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	open := seedLoan(t, db, false)
	closed := seedLoan(t, db, true)

	loans, err := repo.GetOpenForBook(open.BookID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, open.ID, loans[0].ID)

	loans, err = repo.GetOpenForBook(closed.BookID)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestCounts(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	seedLoan(t, db, false)
	seedLoan(t, db, true)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	open, err := repo.CountOpen()
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)
}
