// Package publishers provides database operations for publisher records.
package publishers

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
)

// Repository handles all publisher database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new publishers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new publisher.
func (r *Repository) Create(publisher *entities.Publisher) error {
	return r.db.Create(publisher).Error
}

// Save persists changes to an existing publisher.
func (r *Repository) Save(publisher *entities.Publisher) error {
	return r.db.Save(publisher).Error
}

// GetByID retrieves a publisher by id. Returns (nil, nil) when none exists.
func (r *Repository) GetByID(id uint) (*entities.Publisher, error) {
	var publisher entities.Publisher
	err := r.db.First(&publisher, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// FindByName looks up a publisher by exact, case-sensitive name.
func (r *Repository) FindByName(name string) (*entities.Publisher, error) {
	var publisher entities.Publisher
	err := r.db.Where("name = ?", name).First(&publisher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// List returns all publishers ordered by id.
func (r *Repository) List() ([]entities.Publisher, error) {
	var publishers []entities.Publisher
	err := r.db.Order("id").Find(&publishers).Error
	return publishers, err
}

// ListByPredicate returns publishers matching the given filter result.
func (r *Repository) ListByPredicate(result predicate.Result) ([]entities.Publisher, error) {
	query := r.db.Model(&entities.Publisher{}).
		Distinct("publishers.*").
		Joins("LEFT JOIN books ON books.publisher_id = publishers.id").
		Order("publishers.id")
	if result.Where != "" {
		query = query.Where(result.Where, result.Params)
	}

	var publishers []entities.Publisher
	err := query.Find(&publishers).Error
	return publishers, err
}

// HasBooks reports whether any book references the publisher.
func (r *Repository) HasBooks(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("publisher_id = ?", id).Count(&count).Error
	return count > 0, err
}

// Delete removes a publisher.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Publisher{}, id).Error
}

// Count returns the number of persisted publishers.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Publisher{}).Count(&count).Error
	return count, err
}
