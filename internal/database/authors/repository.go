// Package authors provides database operations for author records.
package authors

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new author.
func (r *Repository) Create(author *entities.Author) error {
	return r.db.Create(author).Error
}

// Save persists changes to an existing author.
func (r *Repository) Save(author *entities.Author) error {
	return r.db.Save(author).Error
}

// GetByID retrieves an author by id. Returns (nil, nil) when no author exists.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Books").First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByName looks up an author by exact name. The match is case-sensitive;
// reconciliation keys are compared verbatim, unlike the case-folded search
// filters.
func (r *Repository) FindByName(name string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Where("name = ?", name).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByNames fetches every author whose name exactly matches one of the
// given names, in a single round trip.
func (r *Repository) FindByNames(names []string) ([]entities.Author, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var authors []entities.Author
	err := r.db.Where("name IN ?", names).Find(&authors).Error
	return authors, err
}

// FindByIDIn fetches every author whose id is in the given list. Unknown ids
// are simply absent from the result.
func (r *Repository) FindByIDIn(ids []uint) ([]entities.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var authors []entities.Author
	err := r.db.Where("id IN ?", ids).Find(&authors).Error
	return authors, err
}

// List returns all authors ordered by id.
func (r *Repository) List() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Order("id").Find(&authors).Error
	return authors, err
}

// ListByPredicate returns authors matching the given filter result. An empty
// fragment matches everything.
func (r *Repository) ListByPredicate(result predicate.Result) ([]entities.Author, error) {
	query := r.db.Model(&entities.Author{}).
		Distinct("authors.*").
		Joins("LEFT JOIN book_authors ON book_authors.author_id = authors.id").
		Joins("LEFT JOIN books ON books.id = book_authors.book_id").
		Order("authors.id")
	if result.Where != "" {
		query = query.Where(result.Where, result.Params)
	}

	var authors []entities.Author
	err := query.Find(&authors).Error
	return authors, err
}

// HasBooks reports whether any book references the author.
func (r *Repository) HasBooks(id uint) (bool, error) {
	var count int64
	err := r.db.Table("book_authors").Where("author_id = ?", id).Count(&count).Error
	return count > 0, err
}

// Delete removes an author and its book references.
func (r *Repository) Delete(id uint) error {
	if err := r.db.Exec("DELETE FROM book_authors WHERE author_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&entities.Author{}, id).Error
}

// Count returns the number of persisted authors.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}
