package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
	"github.com/shelfwise/catalog/internal/services"
)

// AuthorManager is the service surface the authors controller needs.
type AuthorManager interface {
	Create(input services.AuthorInput) (*entities.Author, error)
	Update(id uint, input services.AuthorInput) (*entities.Author, error)
	Get(id uint) (*entities.Author, error)
	Delete(id uint) error
	ListFiltered(filter predicate.Author) ([]entities.Author, error)
}

// AuthorRequest is the JSON payload for creating or updating an author.
type AuthorRequest struct {
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birth_date"`
	DeathDate string `json:"death_date"`
	Biography string `json:"biography"`
}

func (r AuthorRequest) toInput() (services.AuthorInput, error) {
	birthDate, err := parseDateField("birth_date", r.BirthDate)
	if err != nil {
		return services.AuthorInput{}, err
	}
	deathDate, err := parseDateField("death_date", r.DeathDate)
	if err != nil {
		return services.AuthorInput{}, err
	}
	return services.AuthorInput{
		Name:      r.Name,
		BirthDate: birthDate,
		DeathDate: deathDate,
		Biography: r.Biography,
	}, nil
}

type AuthorsController struct {
	manager AuthorManager
}

func NewAuthorsController(manager AuthorManager) *AuthorsController {
	return &AuthorsController{manager: manager}
}

// List returns authors, optionally filtered by name, age or a linked book
// title.
func (controller *AuthorsController) List(c *gin.Context) {
	age, ok := parseOptionalIntQuery(c, "age")
	if !ok {
		return
	}

	filter := predicate.NewAuthor().
		WithName(c.Query("name")).
		WithAge(age).
		WithBookTitle(c.Query("book_title"))

	authors, err := controller.manager.ListFiltered(filter)
	if err != nil {
		respondServiceError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

func (controller *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := controller.manager.Get(id)
	if err != nil {
		respondServiceError(c, err, "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (controller *AuthorsController) Create(c *gin.Context) {
	var request AuthorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input, err := request.toInput()
	if err != nil {
		respondServiceError(c, err, "create author")
		return
	}
	author, err := controller.manager.Create(input)
	if err != nil {
		respondServiceError(c, err, "create author")
		return
	}
	respondCreated(c, author)
}

func (controller *AuthorsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var request AuthorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input, err := request.toInput()
	if err != nil {
		respondServiceError(c, err, "update author")
		return
	}
	author, err := controller.manager.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "update author")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (controller *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.manager.Delete(id); err != nil {
		respondServiceError(c, err, "delete author")
		return
	}
	respondSuccess(c, "author deleted")
}
