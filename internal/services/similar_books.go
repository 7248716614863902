package services

import (
	"github.com/shelfwise/catalog/internal/entities"
)

// SimilarBooksMaintainer keeps the similar-books relation roughly symmetric.
// Setting a book's similar set also appends the book to each listed book's
// own set. Propagation is additive only: removing an entry later does not
// remove the back-reference, so asymmetric residue accumulates by design of
// the relation, and re-applying the same set is a no-op.
type SimilarBooksMaintainer struct {
	store BookStore
}

// NewSimilarBooksMaintainer creates a new SimilarBooksMaintainer.
func NewSimilarBooksMaintainer(store BookStore) *SimilarBooksMaintainer {
	return &SimilarBooksMaintainer{store: store}
}

// SetSimilar replaces the book's own similar set with the books named by
// similarIDs and appends the book to each of those books' sets. Ids that
// resolve to nothing are silently dropped; the book's own id is ignored so a
// book never references itself.
func (m *SimilarBooksMaintainer) SetSimilar(book *entities.Book, similarIDs []uint) error {
	ids := make([]uint, 0, len(similarIDs))
	for _, id := range similarIDs {
		if id != book.ID {
			ids = append(ids, id)
		}
	}

	resolved, err := m.store.FindByIDIn(ids)
	if err != nil {
		return err
	}

	similar := make([]*entities.Book, 0, len(resolved))
	for i := range resolved {
		similar = append(similar, &resolved[i])
	}
	book.SimilarBooks = similar
	if err := m.store.ReplaceSimilar(book, similar); err != nil {
		return err
	}

	for i := range resolved {
		if err := m.store.AppendSimilar(&resolved[i], book); err != nil {
			return err
		}
	}
	return nil
}
