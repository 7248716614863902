// Package books provides database operations for book records, including the
// similar-books self relation and the author join table.
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book. Associated authors and similar books must
// already exist; only the join references are written for them.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.
		Omit("Publisher", "Authors.*", "SimilarBooks.*").
		Create(book).Error
}

// Update persists the book's scalar fields and replaces its author set. The
// similar set is managed separately through ReplaceSimilar / AppendSimilar.
func (r *Repository) Update(book *entities.Book) error {
	err := r.db.
		Omit("Publisher", "Authors", "SimilarBooks").
		Save(book).Error
	if err != nil {
		return err
	}
	if len(book.Authors) == 0 {
		return r.db.Model(book).Association("Authors").Clear()
	}
	return r.db.Model(book).
		Omit("Authors.*").
		Association("Authors").
		Replace(book.Authors)
}

// ReplaceSimilar swaps the book's own similar set for the given books. Only
// this book's outgoing references change; incoming references from other
// books are untouched.
func (r *Repository) ReplaceSimilar(book *entities.Book, similar []*entities.Book) error {
	if len(similar) == 0 {
		return r.db.Model(book).Association("SimilarBooks").Clear()
	}
	return r.db.Model(book).
		Omit("SimilarBooks.*").
		Association("SimilarBooks").
		Replace(similar)
}

// AppendSimilar adds a single book to the target's similar set, leaving any
// existing references in place.
func (r *Repository) AppendSimilar(book *entities.Book, similar *entities.Book) error {
	return r.db.Model(book).
		Omit("SimilarBooks.*").
		Association("SimilarBooks").
		Append(similar)
}

// GetByID retrieves a book with its publisher, authors and similar set.
// Returns (nil, nil) when no book exists.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Publisher").
		Preload("Authors").
		Preload("SimilarBooks").
		First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByISBN looks up a book whose ISBN-10 or ISBN-13 equals the given value.
func (r *Repository) FindByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Publisher").
		Preload("Authors").
		Preload("SimilarBooks").
		Where("isbn_10 = ? OR isbn_13 = ?", isbn, isbn).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ExistsByISBN reports whether any book other than excludeID carries one of
// the given ISBNs. Blank ISBNs are not compared; pass excludeID 0 when
// checking ahead of a create.
func (r *Repository) ExistsByISBN(isbn10, isbn13 string, excludeID uint) (bool, error) {
	var conditions []string
	var args []any
	if isbn10 != "" {
		conditions = append(conditions, "isbn_10 = ?")
		args = append(args, isbn10)
	}
	if isbn13 != "" {
		conditions = append(conditions, "isbn_13 = ?")
		args = append(args, isbn13)
	}
	if len(conditions) == 0 {
		return false, nil
	}

	query := r.db.Model(&entities.Book{}).
		Where(strings.Join(conditions, " OR "), args...)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// FindByIDIn fetches every book whose id is in the given list. Unknown ids
// are simply absent from the result.
func (r *Repository) FindByIDIn(ids []uint) ([]entities.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var books []entities.Book
	err := r.db.Where("id IN ?", ids).Find(&books).Error
	return books, err
}

// List returns all books with publisher and authors, ordered by id.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Preload("Publisher").
		Preload("Authors").
		Preload("SimilarBooks").
		Order("id").
		Find(&books).Error
	return books, err
}

// ListByPredicate returns books matching the given filter result. Joins cover
// every aliased table the predicate package may reference.
func (r *Repository) ListByPredicate(result predicate.Result) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).
		Distinct("books.*").
		Joins("LEFT JOIN publishers ON publishers.id = books.publisher_id").
		Joins("LEFT JOIN book_authors ON book_authors.book_id = books.id").
		Joins("LEFT JOIN authors ON authors.id = book_authors.author_id").
		Joins("LEFT JOIN similar_books ON similar_books.book_id = books.id").
		Joins("LEFT JOIN books similar ON similar.id = similar_books.similar_book_id").
		Preload("Publisher").
		Preload("Authors").
		Preload("SimilarBooks").
		Order("books.id")
	if result.Where != "" {
		query = query.Where(result.Where, result.Params)
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// ListMissingPublicationDate returns books that carry an ISBN but no
// publication date; the metadata sync fills these in.
func (r *Repository) ListMissingPublicationDate() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("publication_date IS NULL").
		Where("isbn_10 <> '' OR isbn_13 <> ''").
		Order("id").
		Find(&books).Error
	return books, err
}

// Delete removes a book along with its author and similar-book references.
func (r *Repository) Delete(id uint) error {
	if err := r.db.Exec("DELETE FROM similar_books WHERE similar_book_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.
		Select(clause.Associations).
		Delete(&entities.Book{ID: id}).Error
}

// Count returns the number of persisted books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
