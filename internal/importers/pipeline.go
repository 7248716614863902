// Package importers reads semicolon-delimited catalog files and reconciles
// each row into the database through the services layer.
package importers

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/services"
	"github.com/shelfwise/catalog/internal/utils"
)

const delimiter = ";"

// headerFields fixes the column order of the import format. The first line
// of every file must match these, case-insensitively.
var headerFields = []string{
	"title",
	"publication_date",
	"isbn_10",
	"isbn_13",
	"genre",
	"publisher_name",
	"publisher_tax_id",
	"author_name",
	"author_birth_date",
	"author_death_date",
	"author_biography",
}

// HeaderLine returns the expected first line of an import file.
func HeaderLine() string {
	return strings.Join(headerFields, delimiter)
}

// Record is one parsed import row. Blank columns map to zero values; dates
// and the genre are validated during parsing.
type Record struct {
	Title           string
	PublicationDate *time.Time
	ISBN10          string
	ISBN13          string
	Genre           entities.Genre
	PublisherName   string
	PublisherTaxID  string
	AuthorName      string
	AuthorBirthDate *time.Time
	AuthorDeathDate *time.Time
	AuthorBiography string
}

// AuthorReconciler upserts an author by name.
type AuthorReconciler interface {
	UpsertByName(input services.AuthorInput) (*entities.Author, error)
}

// PublisherReconciler upserts a publisher by name.
type PublisherReconciler interface {
	UpsertByName(name, taxID string) (*entities.Publisher, error)
}

// BookReconciler upserts a book from imported fields.
type BookReconciler interface {
	UpsertFromImport(fields services.BookFields, publisher *entities.Publisher, authors []entities.Author) (*entities.Book, error)
}

// Pipeline runs a whole import file through per-row reconciliation: author
// first, then publisher, then the book referencing both. The first bad row
// aborts the run; rows already processed stay committed.
type Pipeline struct {
	authors    AuthorReconciler
	publishers PublisherReconciler
	books      BookReconciler
}

// NewPipeline creates a new import Pipeline.
func NewPipeline(authors AuthorReconciler, publishers PublisherReconciler, books BookReconciler) *Pipeline {
	return &Pipeline{
		authors:    authors,
		publishers: publishers,
		books:      books,
	}
}

// Run imports every row of the file. Validation and not-found failures pass
// through as-is; anything else is wrapped as a validation failure so callers
// see a single failure kind for a bad file.
func (p *Pipeline) Run(r io.Reader) error {
	err := p.run(r)
	if err == nil || errs.IsValidation(err) || errs.IsNotFound(err) {
		return err
	}
	return errs.Validationf("unexpected error while processing file: %v", err)
}

func (p *Pipeline) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return errs.Validationf("import file is empty")
	}
	header := strings.TrimSpace(scanner.Text())
	if header == "" {
		return errs.Validationf("import file is empty")
	}
	if !strings.EqualFold(header, HeaderLine()) {
		return errs.Validationf("invalid import header, expected: %s", HeaderLine())
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := parseLine(line)
		if err != nil {
			return err
		}
		if err := p.importRecord(record); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (p *Pipeline) importRecord(record Record) error {
	var bookAuthors []entities.Author
	if record.AuthorName != "" {
		author, err := p.authors.UpsertByName(services.AuthorInput{
			Name:      record.AuthorName,
			BirthDate: record.AuthorBirthDate,
			DeathDate: record.AuthorDeathDate,
			Biography: record.AuthorBiography,
		})
		if err != nil {
			return err
		}
		bookAuthors = append(bookAuthors, *author)
	}

	var publisher *entities.Publisher
	if record.PublisherName != "" {
		var err error
		publisher, err = p.publishers.UpsertByName(record.PublisherName, record.PublisherTaxID)
		if err != nil {
			return err
		}
	}

	_, err := p.books.UpsertFromImport(services.BookFields{
		Title:           record.Title,
		PublicationDate: record.PublicationDate,
		ISBN10:          record.ISBN10,
		ISBN13:          record.ISBN13,
		Genre:           record.Genre,
	}, publisher, bookAuthors)
	return err
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, delimiter)
	if len(fields) != len(headerFields) {
		return Record{}, errs.Validationf(
			"line %q has %d columns, expected %d", line, len(fields), len(headerFields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	record := Record{
		Title:           fields[0],
		ISBN10:          fields[2],
		ISBN13:          fields[3],
		PublisherName:   fields[5],
		PublisherTaxID:  fields[6],
		AuthorName:      fields[7],
		AuthorBiography: fields[10],
	}
	if record.Title == "" {
		return Record{}, errs.Validationf("line %q has no title", line)
	}

	var err error
	if record.PublicationDate, err = parseOptionalDate(fields[1]); err != nil {
		return Record{}, err
	}
	if fields[4] != "" {
		if record.Genre, err = entities.ParseGenre(fields[4]); err != nil {
			return Record{}, err
		}
	}
	if record.AuthorBirthDate, err = parseOptionalDate(fields[8]); err != nil {
		return Record{}, err
	}
	if record.AuthorDeathDate, err = parseOptionalDate(fields[9]); err != nil {
		return Record{}, err
	}
	return record, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := utils.ParseFlexibleDate(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
