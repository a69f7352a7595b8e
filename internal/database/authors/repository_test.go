package authors

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

	dbPath := "./test_authors_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func TestCreateAndGet(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	author := &entities.Author{
		Name:        "Victor Hugo",
		Nationality: "French",
		BirthDate:   time.Date(1802, 2, 26, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(author))
	require.NotZero(t, author.ID)

	got, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Victor Hugo", got.Name)
	assert.Equal(t, "French", got.Nationality)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.GetByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllOrderedByName(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Author{Name: "Zola"}))
	require.NoError(t, repo.Create(&entities.Author{Name: "Balzac"}))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Balzac", all[0].Name)
	assert.Equal(t, "Zola", all[1].Name)
}

func TestUpdate(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	author := &entities.Author{Name: "G. Sand"}
	require.NoError(t, repo.Create(author))

	birth := time.Date(1804, 7, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update(author.ID, "George Sand", "French", &birth)
	require.NoError(t, err)

	assert.Equal(t, "George Sand", updated.Name)
	assert.Equal(t, "French", updated.Nationality)
	assert.True(t, birth.Equal(updated.BirthDate))
}

func TestDelete(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	author := &entities.Author{Name: "Forgotten"}
	require.NoError(t, repo.Create(author))

	require.NoError(t, repo.Delete(author.ID))

	_, err := repo.GetByID(author.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWithBooks(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	author := &entities.Author{Name: "Victor Hugo"}
	require.NoError(t, repo.Create(author))

	book := &entities.Book{Title: "Les Misérables", Available: true, Authors: []entities.Author{*author}}
	require.NoError(t, db.DB.Create(book).Error)

	assert.ErrorIs(t, repo.Delete(author.ID), ErrReferenced)
}
