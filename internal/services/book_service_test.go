package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/catalog/internal/database/books"
	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/metadata"
)

type fakeFetcher struct {
	book    *metadata.Book
	authors []metadata.Author
}

func (f *fakeFetcher) BookByISBN(ctx context.Context, isbn string) (*metadata.Book, error) {
	if f.book == nil {
		return nil, errs.NotFoundf("no record found for ISBN %s", isbn)
	}
	return f.book, nil
}

func (f *fakeFetcher) AuthorsByKeys(ctx context.Context, keys []string) ([]metadata.Author, error) {
	return f.authors, nil
}

func booksWithFetcher(svc *testServices, fetcher MetadataFetcher) *BookService {
	store := books.NewRepository(svc.db)
	return NewBookService(store, svc.authors, svc.publishers, svc.similar, fetcher)
}

func seedPublisher(t *testing.T, svc *testServices, name string) *entities.Publisher {
	t.Helper()
	publisher, err := svc.publishers.Create(PublisherInput{Name: name})
	require.NoError(t, err)
	return publisher
}

func seedAuthor(t *testing.T, svc *testServices, name string) *entities.Author {
	t.Helper()
	author, err := svc.authors.Create(AuthorInput{Name: name})
	require.NoError(t, err)
	return author
}

func TestBookService_Create(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	author := seedAuthor(t, svc, "Frank Herbert")

	book, err := svc.books.Create(BookInput{
		BookFields: BookFields{
			Title:  "Dune",
			ISBN13: "9780441013593",
			Genre:  entities.GenreScienceFiction,
		},
		PublisherID: publisher.ID,
		AuthorIDs:   []uint{author.ID},
	})

	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, publisher.ID, book.PublisherID)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, author.ID, book.Authors[0].ID)
}

func TestBookService_Create_RejectsDuplicateISBN(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")

	_, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
	})
	require.NoError(t, err)

	_, err = svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune Reissue", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
	})

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestBookService_Update_KeepingOwnISBNIsAllowed(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	book, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
	})
	require.NoError(t, err)

	updated, err := svc.books.Update(book.ID, BookInput{
		BookFields:  BookFields{Title: "Dune (revised)", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Dune (revised)", updated.Title)
}

func TestBookService_Update_UnknownPublisher(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	book, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune"},
		PublisherID: publisher.ID,
	})
	require.NoError(t, err)

	_, err = svc.books.Update(book.ID, BookInput{
		BookFields:  BookFields{Title: "Dune"},
		PublisherID: 404,
	})

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestBookService_UpsertFromImport_CreatesOnMiss(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	author := seedAuthor(t, svc, "Frank Herbert")

	book, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN13: "9780441013593"},
		publisher,
		[]entities.Author{*author},
	)

	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	stored, err := svc.books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, publisher.ID, stored.PublisherID)
	require.Len(t, stored.Authors, 1)
}

func TestBookService_UpsertFromImport_UpdatesByISBN13(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	first, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN13: "9780441013593"}, publisher, nil)
	require.NoError(t, err)

	second, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune (corrected)", ISBN13: "9780441013593", Genre: entities.GenreScienceFiction},
		publisher, nil)

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.books.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune (corrected)", stored.Title)
	assert.Equal(t, entities.GenreScienceFiction, stored.Genre)
}

func TestBookService_UpsertFromImport_FallsBackToISBN10(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	first, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN10: "0441013597"}, nil, nil)
	require.NoError(t, err)

	second, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune Again", ISBN10: "0441013597"}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestBookService_UpsertFromImport_RejectsISBN10TakenByAnotherBook(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN10: "0441013597"}, nil, nil)
	require.NoError(t, err)

	// Fresh ISBN-13 misses the lookup, but the ISBN-10 already belongs to
	// the book above.
	_, err = svc.books.UpsertFromImport(
		BookFields{Title: "Intruder", ISBN10: "0441013597", ISBN13: "9780000000002"},
		nil, nil)

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	all, err := svc.books.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookService_UpsertFromImport_UpdateCannotStealISBN10(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN10: "0441013597"}, nil, nil)
	require.NoError(t, err)
	target, err := svc.books.UpsertFromImport(
		BookFields{Title: "Messiah", ISBN13: "9780000000002"}, nil, nil)
	require.NoError(t, err)

	// Matches Messiah by ISBN-13, but the row's ISBN-10 is Dune's.
	_, err = svc.books.UpsertFromImport(
		BookFields{Title: "Messiah", ISBN10: "0441013597", ISBN13: "9780000000002"},
		nil, nil)

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	stored, err := svc.books.Get(target.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ISBN10)
}

func TestBookService_UpsertFromImport_BlankPublisherKeepsStored(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	book, err := svc.books.UpsertFromImport(
		BookFields{Title: "Dune", ISBN13: "9780441013593"}, publisher, nil)
	require.NoError(t, err)

	_, err = svc.books.UpsertFromImport(
		BookFields{Title: "Dune (reprint)", ISBN13: "9780441013593"}, nil, nil)
	require.NoError(t, err)

	stored, err := svc.books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, publisher.ID, stored.PublisherID)
}

func TestBookService_UpsertFromImport_NoISBNAlwaysCreates(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	first, err := svc.books.UpsertFromImport(BookFields{Title: "Untracked"}, nil, nil)
	require.NoError(t, err)

	second, err := svc.books.UpsertFromImport(BookFields{Title: "Untracked"}, nil, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestBookService_Get_NotFound(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svc.books.Get(404)

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestBookService_RegisterByISBN_NoFetcherConfigured(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svc.books.RegisterByISBN(context.Background(), "9780441013593")

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestBookService_RegisterByISBN_CreatesBookWithAuthorsAndPublisher(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	service := booksWithFetcher(svc, &fakeFetcher{
		book: &metadata.Book{
			Title:           "Dune",
			PublicationDate: &published,
			ISBN13:          "9780441013593",
			PublisherNames:  []string{"Chilton Books"},
			AuthorKeys:      []string{"/authors/OL79034A"},
		},
		authors: []metadata.Author{{Name: "Frank Herbert"}},
	})

	book, err := service.RegisterByISBN(context.Background(), "9780441013593")

	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	stored, err := service.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", stored.Title)
	assert.Equal(t, "Chilton Books", stored.Publisher.Name)
	require.Len(t, stored.Authors, 1)
	assert.Equal(t, "Frank Herbert", stored.Authors[0].Name)
}

func TestBookService_RegisterByISBN_AlreadyRegistered(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	_, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
	})
	require.NoError(t, err)

	service := booksWithFetcher(svc, &fakeFetcher{})

	_, err = service.RegisterByISBN(context.Background(), "9780441013593")

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestBookService_EnrichMissingPublicationDates(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	author := seedAuthor(t, svc, "Frank Herbert")
	book, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Dune", ISBN13: "9780441013593"},
		PublisherID: publisher.ID,
		AuthorIDs:   []uint{author.ID},
	})
	require.NoError(t, err)

	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	service := booksWithFetcher(svc, &fakeFetcher{
		book: &metadata.Book{Title: "Dune", PublicationDate: &published, ISBN13: "9780441013593"},
	})

	updated, err := service.EnrichMissingPublicationDates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	stored, err := service.Get(book.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PublicationDate)
	assert.True(t, published.Equal(*stored.PublicationDate))
	// Enrichment must not disturb the author links.
	require.Len(t, stored.Authors, 1)
}

func TestBookService_EnrichMissingPublicationDates_SkipsFailedLookups(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	publisher := seedPublisher(t, svc, "Chilton Books")
	_, err := svc.books.Create(BookInput{
		BookFields:  BookFields{Title: "Obscure", ISBN10: "0000000000"},
		PublisherID: publisher.ID,
	})
	require.NoError(t, err)

	service := booksWithFetcher(svc, &fakeFetcher{})

	updated, err := service.EnrichMissingPublicationDates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}
