package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
)

func date(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestAuthorService_UpsertByName_CreatesOnMiss(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	author, err := svc.authors.UpsertByName(AuthorInput{
		Name:      "J.R.R. Tolkien",
		BirthDate: date(1892, 1, 3),
		DeathDate: date(1973, 9, 2),
	})

	require.NoError(t, err)
	assert.NotZero(t, author.ID)
	require.NotNil(t, author.Age)
	assert.Equal(t, 81, *author.Age)
}

func TestAuthorService_UpsertByName_OverwritesOnHit(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	first, err := svc.authors.UpsertByName(AuthorInput{
		Name:      "Frank Herbert",
		BirthDate: date(1920, 10, 8),
		Biography: "Original biography",
	})
	require.NoError(t, err)

	// Second upsert with blank optional fields wins, blanks included.
	second, err := svc.authors.UpsertByName(AuthorInput{Name: "Frank Herbert"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.BirthDate)
	assert.Empty(t, second.Biography)
	assert.Nil(t, second.Age)
}

func TestAuthorService_UpsertByName_IsCaseSensitive(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	first, err := svc.authors.UpsertByName(AuthorInput{Name: "Frank Herbert"})
	require.NoError(t, err)

	second, err := svc.authors.UpsertByName(AuthorInput{Name: "frank herbert"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAuthorService_GetOrCreateAll_AllExisting(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	existing, err := svc.authors.UpsertByName(AuthorInput{
		Name:      "Ursula K. Le Guin",
		Biography: "Stored biography",
	})
	require.NoError(t, err)

	result, err := svc.authors.GetOrCreateAll([]AuthorInput{
		{Name: "Ursula K. Le Guin", Biography: "Incoming biography"},
	})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, existing.ID, result[0].ID)
	// Existing rows come back as stored, not merged with the input.
	assert.Equal(t, "Stored biography", result[0].Biography)
}

func TestAuthorService_GetOrCreateAll_NoMatchesCreatesWholeBatch(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	result, err := svc.authors.GetOrCreateAll([]AuthorInput{
		{Name: "A"},
		{Name: "B"},
	})

	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, author := range result {
		assert.NotZero(t, author.ID)
	}

	all, err := svc.authors.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuthorService_GetOrCreateAll_PartialMatchReturnsOnlyExisting(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	existing, err := svc.authors.UpsertByName(AuthorInput{Name: "Known"})
	require.NoError(t, err)

	result, err := svc.authors.GetOrCreateAll([]AuthorInput{
		{Name: "Known"},
		{Name: "Unknown"},
	})

	require.NoError(t, err)
	// Any match short-circuits the batch: the unknown name is not created.
	require.Len(t, result, 1)
	assert.Equal(t, existing.ID, result[0].ID)

	all, err := svc.authors.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuthorService_GetOrCreateAll_EmptyInput(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	result, err := svc.authors.GetOrCreateAll(nil)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestAuthorService_Delete_BlockedWhenLinkedToBooks(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	author, err := svc.authors.Create(AuthorInput{Name: "Linked"})
	require.NoError(t, err)

	book := &entities.Book{Title: "Some Book", Authors: []entities.Author{*author}}
	require.NoError(t, svc.db.Omit("Publisher", "Authors.*").Create(book).Error)

	err = svc.authors.Delete(author.ID)

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestAuthorService_Delete_NotFound(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	err := svc.authors.Delete(404)

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestAuthorService_BiographyTruncated(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	author, err := svc.authors.Create(AuthorInput{Name: "Verbose", Biography: string(long)})

	require.NoError(t, err)
	assert.Len(t, author.Biography, 400)
}
