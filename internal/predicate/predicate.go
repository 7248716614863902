// Package predicate turns sparse optional search filters into a single query
// fragment plus a named-parameter map, consumed by the repositories.
//
// Builders have value semantics: every WithX call returns a new builder, so a
// partially-filled builder can never leak state between queries. Blank or nil
// inputs are ignored rather than rejected; an absent filter simply contributes
// nothing.
package predicate

import (
	"strings"
	"time"

	"github.com/shelfwise/catalog/internal/entities"
)

// Result is an opaque pairing of a condition fragment and its bound
// parameters. An empty Where means "match everything". The fragment uses
// @name placeholders so it can be handed to gorm's Where as-is.
type Result struct {
	Where  string
	Params map[string]any
}

type builder struct {
	conditions []string
	params     map[string]any
}

func (b builder) clone() builder {
	next := builder{
		conditions: make([]string, len(b.conditions), len(b.conditions)+1),
		params:     make(map[string]any, len(b.params)+1),
	}
	copy(next.conditions, b.conditions)
	for k, v := range b.params {
		next.params[k] = v
	}
	return next
}

// text appends a case-insensitive substring condition, skipping blank values.
// The bound value is the trimmed input wrapped in % wildcards.
func (b builder) text(condition, name, value string) builder {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return b
	}
	next := b.clone()
	next.conditions = append(next.conditions, condition)
	next.params[name] = "%" + trimmed + "%"
	return next
}

// exact appends an exact-match condition with the raw value bound.
func (b builder) exact(condition, name string, value any) builder {
	next := b.clone()
	next.conditions = append(next.conditions, condition)
	next.params[name] = value
	return next
}

// build joins the accumulated conditions with AND, in insertion order.
func (b builder) build() Result {
	if len(b.conditions) == 0 {
		return Result{Where: "", Params: map[string]any{}}
	}
	result := Result{
		Where:  strings.Join(b.conditions, " AND "),
		Params: make(map[string]any, len(b.params)),
	}
	for k, v := range b.params {
		result.Params[k] = v
	}
	return result
}

// Author filters the author listing.
type Author struct {
	b builder
}

func NewAuthor() Author {
	return Author{}
}

func (p Author) WithName(name string) Author {
	return Author{b: p.b.text("UPPER(authors.name) LIKE UPPER(@name)", "name", name)}
}

func (p Author) WithAge(age *int) Author {
	if age == nil {
		return p
	}
	return Author{b: p.b.exact("authors.age = @age", "age", *age)}
}

// WithBookTitle matches authors linked to a book whose title contains the value.
func (p Author) WithBookTitle(title string) Author {
	return Author{b: p.b.text("UPPER(books.title) LIKE UPPER(@book_title)", "book_title", title)}
}

func (p Author) Build() Result {
	return p.b.build()
}

// Publisher filters the publisher listing.
type Publisher struct {
	b builder
}

func NewPublisher() Publisher {
	return Publisher{}
}

func (p Publisher) WithID(id *uint) Publisher {
	if id == nil {
		return p
	}
	return Publisher{b: p.b.exact("publishers.id = @id", "id", *id)}
}

func (p Publisher) WithName(name string) Publisher {
	return Publisher{b: p.b.text("UPPER(publishers.name) LIKE UPPER(@name)", "name", name)}
}

// WithTaxID is a substring match without case folding; tax ids are digits and
// punctuation.
func (p Publisher) WithTaxID(taxID string) Publisher {
	return Publisher{b: p.b.text("publishers.tax_id LIKE @tax_id", "tax_id", taxID)}
}

func (p Publisher) WithBookID(id *uint) Publisher {
	if id == nil {
		return p
	}
	return Publisher{b: p.b.exact("books.id = @book_id", "book_id", *id)}
}

func (p Publisher) WithBookTitle(title string) Publisher {
	return Publisher{b: p.b.text("UPPER(books.title) LIKE UPPER(@book_title)", "book_title", title)}
}

func (p Publisher) Build() Result {
	return p.b.build()
}

// Book filters the book listing.
type Book struct {
	b builder
}

func NewBook() Book {
	return Book{}
}

func (p Book) WithID(id *uint) Book {
	if id == nil {
		return p
	}
	return Book{b: p.b.exact("books.id = @id", "id", *id)}
}

func (p Book) WithTitle(title string) Book {
	return Book{b: p.b.text("UPPER(books.title) LIKE UPPER(@title)", "title", title)}
}

func (p Book) WithPublicationDate(date *time.Time) Book {
	if date == nil {
		return p
	}
	return Book{b: p.b.exact("books.publication_date = @publication_date", "publication_date", *date)}
}

// WithISBN matches either ISBN form.
func (p Book) WithISBN(isbn string) Book {
	return Book{b: p.b.text("(UPPER(books.isbn_10) LIKE UPPER(@isbn) OR UPPER(books.isbn_13) LIKE UPPER(@isbn))", "isbn", isbn)}
}

func (p Book) WithGenre(genre entities.Genre) Book {
	if genre == "" {
		return p
	}
	return Book{b: p.b.exact("books.genre = @genre", "genre", string(genre))}
}

func (p Book) WithPublisherID(id *uint) Book {
	if id == nil {
		return p
	}
	return Book{b: p.b.exact("publishers.id = @publisher_id", "publisher_id", *id)}
}

func (p Book) WithAuthorID(id *uint) Book {
	if id == nil {
		return p
	}
	return Book{b: p.b.exact("authors.id = @author_id", "author_id", *id)}
}

func (p Book) WithSimilarID(id *uint) Book {
	if id == nil {
		return p
	}
	return Book{b: p.b.exact("similar.id = @similar_id", "similar_id", *id)}
}

// WithSimilarTitle matches books whose similar set contains a book with a
// matching title.
func (p Book) WithSimilarTitle(title string) Book {
	return Book{b: p.b.text("UPPER(similar.title) LIKE UPPER(@similar_title)", "similar_title", title)}
}

func (p Book) Build() Result {
	return p.b.build()
}
