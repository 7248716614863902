package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfwise/catalog/internal/database/authors"
	"github.com/shelfwise/catalog/internal/database/books"
	"github.com/shelfwise/catalog/internal/database/publishers"
	"github.com/shelfwise/catalog/internal/entities"
)

type testServices struct {
	authors    *AuthorService
	publishers *PublisherService
	books      *BookService
	similar    *SimilarBooksMaintainer
	db         *gorm.DB
}

func setupTestServices(t *testing.T) (*testServices, func()) {
	dbPath := "./test_services_" + t.Name() + ".db"

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

	bookRepo := books.NewRepository(db)
	authorService := NewAuthorService(authors.NewRepository(db))
	publisherService := NewPublisherService(publishers.NewRepository(db))
	similarMaintainer := NewSimilarBooksMaintainer(bookRepo)
	bookService := NewBookService(bookRepo, authorService, publisherService, similarMaintainer, nil)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return &testServices{
		authors:    authorService,
		publishers: publisherService,
		books:      bookService,
		similar:    similarMaintainer,
		db:         db,
	}, cleanup
}
