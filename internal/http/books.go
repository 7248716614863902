package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
	"github.com/shelfwise/catalog/internal/services"
)

// BookManager is the service surface the books controller needs.
type BookManager interface {
	Create(input services.BookInput) (*entities.Book, error)
	Update(id uint, input services.BookInput) (*entities.Book, error)
	Get(id uint) (*entities.Book, error)
	Delete(id uint) error
	ListFiltered(filter predicate.Book) ([]entities.Book, error)
	RegisterByISBN(ctx context.Context, isbn string) (*entities.Book, error)
}

// BookRequest is the JSON payload for creating or updating a book.
type BookRequest struct {
	Title           string `json:"title" binding:"required"`
	PublicationDate string `json:"publication_date"`
	ISBN10          string `json:"isbn_10"`
	ISBN13          string `json:"isbn_13"`
	Genre           string `json:"genre"`
	PublisherID     uint   `json:"publisher_id" binding:"required"`
	AuthorIDs       []uint `json:"author_ids"`
	SimilarIDs      []uint `json:"similar_ids"`
}

func (r BookRequest) toInput() (services.BookInput, error) {
	publicationDate, err := parseDateField("publication_date", r.PublicationDate)
	if err != nil {
		return services.BookInput{}, err
	}
	var genre entities.Genre
	if r.Genre != "" {
		if genre, err = entities.ParseGenre(r.Genre); err != nil {
			return services.BookInput{}, err
		}
	}
	return services.BookInput{
		BookFields: services.BookFields{
			Title:           r.Title,
			PublicationDate: publicationDate,
			ISBN10:          r.ISBN10,
			ISBN13:          r.ISBN13,
			Genre:           genre,
		},
		PublisherID: r.PublisherID,
		AuthorIDs:   r.AuthorIDs,
		SimilarIDs:  r.SimilarIDs,
	}, nil
}

// RegisterByISBNRequest asks for a book to be fetched from the external
// catalog and stored.
type RegisterByISBNRequest struct {
	ISBN string `json:"isbn" binding:"required"`
}

type BooksController struct {
	manager BookManager
}

func NewBooksController(manager BookManager) *BooksController {
	return &BooksController{manager: manager}
}

// List returns books, optionally filtered by any combination of the query
// parameters.
func (controller *BooksController) List(c *gin.Context) {
	id, ok := parseOptionalUintQuery(c, "id")
	if !ok {
		return
	}
	publisherID, ok := parseOptionalUintQuery(c, "publisher_id")
	if !ok {
		return
	}
	authorID, ok := parseOptionalUintQuery(c, "author_id")
	if !ok {
		return
	}
	similarID, ok := parseOptionalUintQuery(c, "similar_id")
	if !ok {
		return
	}
	publicationDate, ok := parseOptionalDateQuery(c, "publication_date")
	if !ok {
		return
	}

	var genre entities.Genre
	if raw := c.Query("genre"); raw != "" {
		parsed, err := entities.ParseGenre(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		genre = parsed
	}

	filter := predicate.NewBook().
		WithID(id).
		WithTitle(c.Query("title")).
		WithPublicationDate(publicationDate).
		WithISBN(c.Query("isbn")).
		WithGenre(genre).
		WithPublisherID(publisherID).
		WithAuthorID(authorID).
		WithSimilarID(similarID).
		WithSimilarTitle(c.Query("similar_title"))

	books, err := controller.manager.ListFiltered(filter)
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := controller.manager.Get(id)
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) Create(c *gin.Context) {
	var request BookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input, err := request.toInput()
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}
	book, err := controller.manager.Create(input)
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var request BookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input, err := request.toInput()
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	book, err := controller.manager.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.manager.Delete(id); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// RegisterByISBN registers a new book from external catalog data.
func (controller *BooksController) RegisterByISBN(c *gin.Context) {
	var request RegisterByISBNRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	book, err := controller.manager.RegisterByISBN(c.Request.Context(), request.ISBN)
	if err != nil {
		respondServiceError(c, err, "register book by isbn")
		return
	}
	respondCreated(c, book)
}
