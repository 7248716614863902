package services

import (
	"context"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/metadata"
	"github.com/shelfwise/catalog/internal/predicate"
)

// AuthorStore provides persistence for authors.
// Lookup methods return (nil, nil) when nothing matches.
type AuthorStore interface {
	Create(author *entities.Author) error
	Save(author *entities.Author) error
	GetByID(id uint) (*entities.Author, error)
	FindByName(name string) (*entities.Author, error)
	FindByNames(names []string) ([]entities.Author, error)
	FindByIDIn(ids []uint) ([]entities.Author, error)
	List() ([]entities.Author, error)
	ListByPredicate(result predicate.Result) ([]entities.Author, error)
	HasBooks(id uint) (bool, error)
	Delete(id uint) error
}

// PublisherStore provides persistence for publishers.
type PublisherStore interface {
	Create(publisher *entities.Publisher) error
	Save(publisher *entities.Publisher) error
	GetByID(id uint) (*entities.Publisher, error)
	FindByName(name string) (*entities.Publisher, error)
	List() ([]entities.Publisher, error)
	ListByPredicate(result predicate.Result) ([]entities.Publisher, error)
	HasBooks(id uint) (bool, error)
	Delete(id uint) error
}

// BookStore provides persistence for books, including the similar-books
// self relation.
type BookStore interface {
	Create(book *entities.Book) error
	Update(book *entities.Book) error
	ReplaceSimilar(book *entities.Book, similar []*entities.Book) error
	AppendSimilar(book *entities.Book, similar *entities.Book) error
	GetByID(id uint) (*entities.Book, error)
	FindByISBN(isbn string) (*entities.Book, error)
	ExistsByISBN(isbn10, isbn13 string, excludeID uint) (bool, error)
	FindByIDIn(ids []uint) ([]entities.Book, error)
	List() ([]entities.Book, error)
	ListByPredicate(result predicate.Result) ([]entities.Book, error)
	ListMissingPublicationDate() ([]entities.Book, error)
	Delete(id uint) error
}

// MetadataFetcher looks up book and author details from an external catalog.
type MetadataFetcher interface {
	BookByISBN(ctx context.Context, isbn string) (*metadata.Book, error)
	AuthorsByKeys(ctx context.Context, keys []string) ([]metadata.Author, error)
}
