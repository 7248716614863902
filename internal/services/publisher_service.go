package services

import (
	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/predicate"
)

// PublisherInput carries the publisher fields a caller may set.
type PublisherInput struct {
	Name  string
	TaxID string
}

// PublisherService handles the business logic around publishers.
type PublisherService struct {
	store PublisherStore
}

// NewPublisherService creates a new PublisherService.
func NewPublisherService(store PublisherStore) *PublisherService {
	return &PublisherService{store: store}
}

// Create inserts a new publisher from the given input.
func (s *PublisherService) Create(input PublisherInput) (*entities.Publisher, error) {
	if input.Name == "" {
		return nil, errs.Validationf("publisher name is required")
	}
	publisher := &entities.Publisher{Name: input.Name, TaxID: input.TaxID}
	if err := s.store.Create(publisher); err != nil {
		return nil, err
	}
	return publisher, nil
}

// Update overwrites an existing publisher's fields with the input.
func (s *PublisherService) Update(id uint, input PublisherInput) (*entities.Publisher, error) {
	publisher, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		return nil, errs.NotFoundf("publisher %d not found", id)
	}
	publisher.Name = input.Name
	publisher.TaxID = input.TaxID
	if err := s.store.Save(publisher); err != nil {
		return nil, err
	}
	return publisher, nil
}

// Get retrieves a single publisher.
func (s *PublisherService) Get(id uint) (*entities.Publisher, error) {
	publisher, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		return nil, errs.NotFoundf("publisher %d not found", id)
	}
	return publisher, nil
}

// Delete removes a publisher. Publishers still referenced by books are
// protected.
func (s *PublisherService) Delete(id uint) error {
	publisher, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if publisher == nil {
		return errs.NotFoundf("publisher %d not found", id)
	}
	hasBooks, err := s.store.HasBooks(id)
	if err != nil {
		return err
	}
	if hasBooks {
		return errs.Validationf("publisher %q is linked to books and cannot be deleted", publisher.Name)
	}
	return s.store.Delete(id)
}

// List returns all publishers.
func (s *PublisherService) List() ([]entities.Publisher, error) {
	return s.store.List()
}

// ListFiltered returns the publishers matching the given filters.
func (s *PublisherService) ListFiltered(filter predicate.Publisher) ([]entities.Publisher, error) {
	return s.store.ListByPredicate(filter.Build())
}

// UpsertByName reconciles a publisher by exact name, refreshing the tax id on
// a hit and creating the publisher on a miss.
func (s *PublisherService) UpsertByName(name, taxID string) (*entities.Publisher, error) {
	if name == "" {
		return nil, errs.Validationf("publisher name is required")
	}
	publisher, err := s.store.FindByName(name)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		return s.Create(PublisherInput{Name: name, TaxID: taxID})
	}
	publisher.Name = name
	publisher.TaxID = taxID
	if err := s.store.Save(publisher); err != nil {
		return nil, err
	}
	return publisher, nil
}

// GetOrCreateByName returns the publisher with the exact name, creating a
// bare record when none exists. Unlike UpsertByName, a hit is returned as
// stored.
func (s *PublisherService) GetOrCreateByName(name string) (*entities.Publisher, error) {
	if name == "" {
		return nil, errs.Validationf("publisher name is required")
	}
	publisher, err := s.store.FindByName(name)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		return publisher, nil
	}
	return s.Create(PublisherInput{Name: name})
}
