// Package cli implements the command line subcommands.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/shelfwise/catalog/internal/config"
	"github.com/shelfwise/catalog/internal/database"
	"github.com/shelfwise/catalog/internal/database/authors"
	"github.com/shelfwise/catalog/internal/database/books"
	"github.com/shelfwise/catalog/internal/database/publishers"
	"github.com/shelfwise/catalog/internal/importers"
	"github.com/shelfwise/catalog/internal/services"
)

// CatalogImportCommand imports a semicolon-delimited catalog file.
type CatalogImportCommand struct {
	FilePath     string
	DatabasePath string
}

// NewCatalogImportCommand creates a new CatalogImportCommand.
func NewCatalogImportCommand() *CatalogImportCommand {
	return &CatalogImportCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CatalogImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("catalog-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the semicolon-delimited catalog file")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s catalog-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books, authors and publishers from a semicolon-delimited file.\n")
		fmt.Fprintf(os.Stderr, "The first line must be the header:\n\n  %s\n\n", importers.HeaderLine())
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	return nil
}

// Run executes the import.
func (cmd *CatalogImportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	authorService := services.NewAuthorService(authors.NewRepository(db.DB))
	publisherService := services.NewPublisherService(publishers.NewRepository(db.DB))
	bookRepo := books.NewRepository(db.DB)
	bookService := services.NewBookService(
		bookRepo,
		authorService,
		publisherService,
		services.NewSimilarBooksMaintainer(bookRepo),
		nil,
	)
	pipeline := importers.NewPipeline(authorService, publisherService, bookService)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()

	if err := pipeline.Run(file); err != nil {
		return err
	}

	fmt.Printf("Imported catalog from %s\n", cmd.FilePath)
	return nil
}
