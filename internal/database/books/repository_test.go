package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Publisher{},
		&entities.Book{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createBook(t *testing.T, repo *Repository, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title}
	require.NoError(t, repo.Create(book))
	return book
}

func TestRepository_CreateWithAuthors(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author := entities.Author{Name: "Frank Herbert"}
	require.NoError(t, db.Create(&author).Error)

	book := &entities.Book{
		Title:   "Dune",
		ISBN10:  "0441013597",
		ISBN13:  "9780441013593",
		Genre:   entities.GenreScienceFiction,
		Authors: []entities.Author{author},
	}
	require.NoError(t, repo.Create(book))

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Dune", found.Title)
	assert.Equal(t, entities.GenreScienceFiction, found.Genre)
	require.Len(t, found.Authors, 1)
	assert.Equal(t, "Frank Herbert", found.Authors[0].Name)
}

func TestRepository_GetByID_Miss(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	found, err := repo.GetByID(42)

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_FindByISBN_MatchesEitherColumn(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune", ISBN10: "0441013597", ISBN13: "9780441013593"}
	require.NoError(t, repo.Create(book))

	byTen, err := repo.FindByISBN("0441013597")
	require.NoError(t, err)
	require.NotNil(t, byTen)
	assert.Equal(t, book.ID, byTen.ID)

	byThirteen, err := repo.FindByISBN("9780441013593")
	require.NoError(t, err)
	require.NotNil(t, byThirteen)
	assert.Equal(t, book.ID, byThirteen.ID)

	miss, err := repo.FindByISBN("0000000000")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestRepository_ExistsByISBN(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune", ISBN10: "0441013597", ISBN13: "9780441013593"}
	require.NoError(t, repo.Create(book))

	exists, err := repo.ExistsByISBN("0441013597", "", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The book itself is excluded when updating.
	exists, err = repo.ExistsByISBN("0441013597", "9780441013593", book.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Blank ISBNs never collide.
	exists, err = repo.ExistsByISBN("", "", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_Update_ReplacesAuthors(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	first := entities.Author{Name: "First"}
	second := entities.Author{Name: "Second"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	book := &entities.Book{Title: "Original", Authors: []entities.Author{first}}
	require.NoError(t, repo.Create(book))

	book.Title = "Updated"
	book.Authors = []entities.Author{second}
	require.NoError(t, repo.Update(book))

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", found.Title)
	require.Len(t, found.Authors, 1)
	assert.Equal(t, "Second", found.Authors[0].Name)
}

func TestRepository_ReplaceSimilar_OnlyOwnSideChanges(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	a := createBook(t, repo, "A")
	b := createBook(t, repo, "B")

	require.NoError(t, repo.ReplaceSimilar(a, []*entities.Book{b}))

	foundA, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	require.Len(t, foundA.SimilarBooks, 1)
	assert.Equal(t, b.ID, foundA.SimilarBooks[0].ID)

	// Replace only touched A's outgoing references.
	foundB, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Empty(t, foundB.SimilarBooks)
}

func TestRepository_ReplaceSimilar_EmptyClearsOwnSide(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	a := createBook(t, repo, "A")
	b := createBook(t, repo, "B")
	require.NoError(t, repo.ReplaceSimilar(a, []*entities.Book{b}))

	require.NoError(t, repo.ReplaceSimilar(a, nil))

	foundA, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.Empty(t, foundA.SimilarBooks)
}

func TestRepository_AppendSimilar_KeepsExisting(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	a := createBook(t, repo, "A")
	b := createBook(t, repo, "B")
	c := createBook(t, repo, "C")

	require.NoError(t, repo.AppendSimilar(a, b))
	require.NoError(t, repo.AppendSimilar(a, c))

	foundA, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.Len(t, foundA.SimilarBooks, 2)
}

func TestRepository_ListByPredicate_SimilarTitle(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	a := createBook(t, repo, "Dune")
	b := createBook(t, repo, "Dune Messiah")
	createBook(t, repo, "Unrelated")
	require.NoError(t, repo.ReplaceSimilar(a, []*entities.Book{b}))

	books, err := repo.ListByPredicate(predicate.NewBook().WithSimilarTitle("messiah").Build())

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, a.ID, books[0].ID)
}

func TestRepository_ListByPredicate_TitleAndGenre(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	dune := &entities.Book{Title: "Dune", Genre: entities.GenreScienceFiction}
	require.NoError(t, repo.Create(dune))
	require.NoError(t, repo.Create(&entities.Book{Title: "Dune Encyclopedia", Genre: entities.GenreEncyclopedia}))

	books, err := repo.ListByPredicate(predicate.NewBook().
		WithTitle("dune").
		WithGenre(entities.GenreScienceFiction).
		Build())

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, dune.ID, books[0].ID)
}

func TestRepository_Delete_CleansReferences(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	a := createBook(t, repo, "A")
	b := createBook(t, repo, "B")
	require.NoError(t, repo.ReplaceSimilar(a, []*entities.Book{b}))
	require.NoError(t, repo.ReplaceSimilar(b, []*entities.Book{a}))

	require.NoError(t, repo.Delete(b.ID))

	found, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var joinRows int64
	require.NoError(t, db.Table("similar_books").
		Where("book_id = ? OR similar_book_id = ?", b.ID, b.ID).
		Count(&joinRows).Error)
	assert.Zero(t, joinRows)
}
