package services

import (
	"context"
	"log"
	"time"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/predicate"
)

// BookFields carries the scalar book fields shared by manual edits and
// file imports.
type BookFields struct {
	Title           string
	PublicationDate *time.Time
	ISBN10          string
	ISBN13          string
	Genre           entities.Genre
}

// BookInput carries everything a caller may set on a book. Referenced
// publisher and authors must already exist.
type BookInput struct {
	BookFields
	PublisherID uint
	AuthorIDs   []uint
	SimilarIDs  []uint
}

// BookService handles the business logic around books: CRUD with ISBN
// uniqueness, ISBN-keyed import reconciliation, and registration from the
// external catalog.
type BookService struct {
	store      BookStore
	authors    *AuthorService
	publishers *PublisherService
	similar    *SimilarBooksMaintainer
	fetcher    MetadataFetcher
}

// NewBookService creates a new BookService. fetcher may be nil when no
// external catalog is configured; ISBN registration then fails with a
// validation error.
func NewBookService(
	store BookStore,
	authors *AuthorService,
	publishers *PublisherService,
	similar *SimilarBooksMaintainer,
	fetcher MetadataFetcher,
) *BookService {
	return &BookService{
		store:      store,
		authors:    authors,
		publishers: publishers,
		similar:    similar,
		fetcher:    fetcher,
	}
}

// Create inserts a new book after checking ISBN uniqueness and resolving the
// publisher and authors. The similar set is applied last, with propagation.
func (s *BookService) Create(input BookInput) (*entities.Book, error) {
	if input.Title == "" {
		return nil, errs.Validationf("book title is required")
	}
	if err := s.checkISBNUnique(input.ISBN10, input.ISBN13, 0); err != nil {
		return nil, err
	}

	publisher, err := s.publishers.Get(input.PublisherID)
	if err != nil {
		return nil, err
	}
	bookAuthors, err := s.authors.FindByIDIn(input.AuthorIDs)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:           input.Title,
		PublicationDate: input.PublicationDate,
		ISBN10:          input.ISBN10,
		ISBN13:          input.ISBN13,
		Genre:           input.Genre,
		PublisherID:     publisher.ID,
		Publisher:       *publisher,
		Authors:         bookAuthors,
	}
	if err := s.store.Create(book); err != nil {
		return nil, err
	}

	if len(input.SimilarIDs) > 0 {
		if err := s.similar.SetSimilar(book, input.SimilarIDs); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// Update overwrites an existing book with the input. The similar set is
// always re-applied from the request; entries dropped here stay behind as
// back-references on the far side.
func (s *BookService) Update(id uint, input BookInput) (*entities.Book, error) {
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errs.NotFoundf("book %d not found", id)
	}
	if err := s.checkISBNUnique(input.ISBN10, input.ISBN13, id); err != nil {
		return nil, err
	}

	publisher, err := s.publishers.Get(input.PublisherID)
	if err != nil {
		return nil, err
	}
	bookAuthors, err := s.authors.FindByIDIn(input.AuthorIDs)
	if err != nil {
		return nil, err
	}

	book.Title = input.Title
	book.PublicationDate = input.PublicationDate
	book.ISBN10 = input.ISBN10
	book.ISBN13 = input.ISBN13
	book.Genre = input.Genre
	book.PublisherID = publisher.ID
	book.Publisher = *publisher
	book.Authors = bookAuthors
	if err := s.store.Update(book); err != nil {
		return nil, err
	}

	if err := s.similar.SetSimilar(book, input.SimilarIDs); err != nil {
		return nil, err
	}
	return book, nil
}

// Get retrieves a single book with its associations.
func (s *BookService) Get(id uint) (*entities.Book, error) {
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errs.NotFoundf("book %d not found", id)
	}
	return book, nil
}

// Delete removes a book and its references.
func (s *BookService) Delete(id uint) error {
	book, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if book == nil {
		return errs.NotFoundf("book %d not found", id)
	}
	return s.store.Delete(id)
}

// List returns all books.
func (s *BookService) List() ([]entities.Book, error) {
	return s.store.List()
}

// ListFiltered returns the books matching the given filters.
func (s *BookService) ListFiltered(filter predicate.Book) ([]entities.Book, error) {
	return s.store.ListByPredicate(filter.Build())
}

// UpsertFromImport reconciles one imported row into a book. The ISBN-13 is
// the preferred lookup key, falling back to the ISBN-10; a hit is overwritten
// with the row's fields, a miss becomes a new book. Rows without any ISBN
// always create, since there is nothing to match on.
func (s *BookService) UpsertFromImport(fields BookFields, publisher *entities.Publisher, bookAuthors []entities.Author) (*entities.Book, error) {
	if fields.Title == "" {
		return nil, errs.Validationf("book title is required")
	}

	var book *entities.Book
	if key := importKey(fields); key != "" {
		found, err := s.store.FindByISBN(key)
		if err != nil {
			return nil, err
		}
		book = found
	}

	if book == nil {
		book = &entities.Book{}
	}
	// The lookup key only covers one ISBN; the other may still collide with a
	// different book.
	if err := s.checkISBNUnique(fields.ISBN10, fields.ISBN13, book.ID); err != nil {
		return nil, err
	}
	book.Title = fields.Title
	book.PublicationDate = fields.PublicationDate
	book.ISBN10 = fields.ISBN10
	book.ISBN13 = fields.ISBN13
	book.Genre = fields.Genre
	// A blank publisher column never detaches a stored publisher; books keep
	// resolving to a valid one.
	if publisher != nil {
		book.PublisherID = publisher.ID
		book.Publisher = *publisher
	}
	book.Authors = bookAuthors

	if book.ID == 0 {
		if err := s.store.Create(book); err != nil {
			return nil, err
		}
		return book, nil
	}
	if err := s.store.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// RegisterByISBN fetches book and author details from the external catalog
// and stores a new book. Authors are reconciled as a batch, the publisher by
// name.
func (s *BookService) RegisterByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	if isbn == "" {
		return nil, errs.Validationf("isbn is required")
	}
	if s.fetcher == nil {
		return nil, errs.Validationf("external catalog lookup is not configured")
	}

	exists, err := s.store.ExistsByISBN(isbn, isbn, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Validationf("a book with ISBN %s is already registered", isbn)
	}

	meta, err := s.fetcher.BookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	metaAuthors, err := s.fetcher.AuthorsByKeys(ctx, meta.AuthorKeys)
	if err != nil {
		return nil, err
	}
	inputs := make([]AuthorInput, 0, len(metaAuthors))
	for _, a := range metaAuthors {
		inputs = append(inputs, AuthorInput{
			Name:      a.Name,
			BirthDate: a.BirthDate,
			DeathDate: a.DeathDate,
			Biography: a.Biography,
		})
	}
	bookAuthors, err := s.authors.GetOrCreateAll(inputs)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:           meta.Title,
		PublicationDate: meta.PublicationDate,
		ISBN10:          meta.ISBN10,
		ISBN13:          meta.ISBN13,
		Authors:         bookAuthors,
	}
	if len(meta.PublisherNames) > 0 {
		publisher, err := s.publishers.GetOrCreateByName(meta.PublisherNames[0])
		if err != nil {
			return nil, err
		}
		book.PublisherID = publisher.ID
		book.Publisher = *publisher
	}

	if err := s.store.Create(book); err != nil {
		return nil, err
	}
	return book, nil
}

// EnrichMissingPublicationDates fills in publication dates for books that
// have an ISBN but no date, one external lookup per book. Lookup failures are
// logged and skipped so a single bad ISBN does not stall the sweep. Returns
// the number of books updated.
func (s *BookService) EnrichMissingPublicationDates(ctx context.Context) (int, error) {
	if s.fetcher == nil {
		return 0, errs.Validationf("external catalog lookup is not configured")
	}

	books, err := s.store.ListMissingPublicationDate()
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range books {
		book := &books[i]
		isbn := book.ISBN13
		if isbn == "" {
			isbn = book.ISBN10
		}

		meta, err := s.fetcher.BookByISBN(ctx, isbn)
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			log.Printf("Metadata lookup failed for ISBN %s: %v", isbn, err)
			continue
		}
		if meta.PublicationDate == nil {
			continue
		}

		// Reload with associations so the update keeps the author set intact.
		full, err := s.store.GetByID(book.ID)
		if err != nil {
			return updated, err
		}
		if full == nil {
			continue
		}
		full.PublicationDate = meta.PublicationDate
		if err := s.store.Update(full); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *BookService) checkISBNUnique(isbn10, isbn13 string, excludeID uint) error {
	exists, err := s.store.ExistsByISBN(isbn10, isbn13, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Validationf("a book with this ISBN is already registered")
	}
	return nil
}

// importKey picks the reconciliation key for an imported row, preferring the
// ISBN-13.
func importKey(fields BookFields) string {
	if fields.ISBN13 != "" {
		return fields.ISBN13
	}
	return fields.ISBN10
}
