package services

import (
	"time"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/predicate"
)

// biographyLimit matches the column size; external sources can be verbose.
const biographyLimit = 400

// AuthorInput carries the author fields a caller may set. Nil dates mean
// unknown, and on update they overwrite whatever was stored before.
type AuthorInput struct {
	Name      string
	BirthDate *time.Time
	DeathDate *time.Time
	Biography string
}

// AuthorService handles the business logic around authors, including the
// name-keyed reconciliation the import pipeline relies on.
type AuthorService struct {
	store AuthorStore
}

// NewAuthorService creates a new AuthorService.
func NewAuthorService(store AuthorStore) *AuthorService {
	return &AuthorService{store: store}
}

// Create inserts a new author from the given input.
func (s *AuthorService) Create(input AuthorInput) (*entities.Author, error) {
	if input.Name == "" {
		return nil, errs.Validationf("author name is required")
	}
	author := &entities.Author{}
	s.apply(author, input)
	if err := s.store.Create(author); err != nil {
		return nil, err
	}
	return author, nil
}

// Update overwrites an existing author's fields with the input.
func (s *AuthorService) Update(id uint, input AuthorInput) (*entities.Author, error) {
	author, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, errs.NotFoundf("author %d not found", id)
	}
	s.apply(author, input)
	if err := s.store.Save(author); err != nil {
		return nil, err
	}
	return author, nil
}

// Get retrieves a single author.
func (s *AuthorService) Get(id uint) (*entities.Author, error) {
	author, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, errs.NotFoundf("author %d not found", id)
	}
	return author, nil
}

// Delete removes an author. Authors still linked to books are protected.
func (s *AuthorService) Delete(id uint) error {
	author, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if author == nil {
		return errs.NotFoundf("author %d not found", id)
	}
	hasBooks, err := s.store.HasBooks(id)
	if err != nil {
		return err
	}
	if hasBooks {
		return errs.Validationf("author %q is linked to books and cannot be deleted", author.Name)
	}
	return s.store.Delete(id)
}

// List returns all authors.
func (s *AuthorService) List() ([]entities.Author, error) {
	return s.store.List()
}

// ListFiltered returns the authors matching the given filters.
func (s *AuthorService) ListFiltered(filter predicate.Author) ([]entities.Author, error) {
	return s.store.ListByPredicate(filter.Build())
}

// FindByIDIn resolves a list of author ids, dropping unknown ones.
func (s *AuthorService) FindByIDIn(ids []uint) ([]entities.Author, error) {
	return s.store.FindByIDIn(ids)
}

// UpsertByName reconciles a single author by exact name. A hit overwrites
// every payload field, blanks included; a miss creates the author.
func (s *AuthorService) UpsertByName(input AuthorInput) (*entities.Author, error) {
	if input.Name == "" {
		return nil, errs.Validationf("author name is required")
	}
	author, err := s.store.FindByName(input.Name)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return s.Create(input)
	}
	s.apply(author, input)
	if err := s.store.Save(author); err != nil {
		return nil, err
	}
	return author, nil
}

// GetOrCreateAll reconciles a batch of authors by name in two round trips.
// Any non-empty match set short-circuits the whole batch: only the stored
// authors come back, and unknown names are not created. Only a completely
// empty match set falls back to creating every input blind. There is no
// per-name merge; callers wanting that should use UpsertByName per author.
func (s *AuthorService) GetOrCreateAll(inputs []AuthorInput) ([]entities.Author, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input.Name == "" {
			return nil, errs.Validationf("author name is required")
		}
		names = append(names, input.Name)
	}

	existing, err := s.store.FindByNames(names)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	created := make([]entities.Author, 0, len(inputs))
	for _, input := range inputs {
		author := entities.Author{}
		s.apply(&author, input)
		if err := s.store.Create(&author); err != nil {
			return nil, err
		}
		created = append(created, author)
	}
	return created, nil
}

func (s *AuthorService) apply(author *entities.Author, input AuthorInput) {
	author.Name = input.Name
	author.BirthDate = input.BirthDate
	author.DeathDate = input.DeathDate
	author.Biography = truncate(input.Biography, biographyLimit)
	author.Age = entities.ComputeAge(input.BirthDate, input.DeathDate)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
