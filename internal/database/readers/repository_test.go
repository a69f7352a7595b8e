package readers

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_readers_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func TestCreateNormalizesEmail(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	reader := &entities.Reader{Name: "Alice Martin", Email: "  Alice@Example.COM "}
	require.NoError(t, repo.Create(reader))

	assert.Equal(t, "alice@example.com", reader.Email)
	assert.False(t, reader.RegistrationDate.IsZero())
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Reader{Name: "Alice", Email: "alice@example.com"}))

	err := repo.Create(&entities.Reader{Name: "Other Alice", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.GetByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	reader := &entities.Reader{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(reader))

	updated, err := repo.Update(reader.ID, "Alice Martin", "Alice.Martin@Example.com")
	require.NoError(t, err)

	assert.Equal(t, "Alice Martin", updated.Name)
	assert.Equal(t, "alice.martin@example.com", updated.Email)
}

func TestUpdateToTakenEmail(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Reader{Name: "Alice", Email: "alice@example.com"}))
	bob := &entities.Reader{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, repo.Create(bob))

	_, err := repo.Update(bob.ID, "Bob", "alice@example.com")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestDelete(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	reader := &entities.Reader{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(reader))

	require.NoError(t, repo.Delete(reader.ID))

	_, err := repo.GetByID(reader.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWithLoanHistory(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	reader := &entities.Reader{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(reader))

	book := &entities.Book{Title: "Les Misérables", Available: true}
	require.NoError(t, db.DB.Create(book).Error)

	returned := time.Now()
	loan := &entities.Loan{ReaderID: reader.ID, BookID: book.ID, CheckoutDate: time.Now(), ReturnDate: &returned}
	require.NoError(t, db.DB.Create(loan).Error)

	assert.ErrorIs(t, repo.Delete(reader.ID), ErrReferenced)
}
