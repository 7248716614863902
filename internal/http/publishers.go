package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/catalog/internal/entities"
	"github.com/shelfwise/catalog/internal/predicate"
	"github.com/shelfwise/catalog/internal/services"
)

// PublisherManager is the service surface the publishers controller needs.
type PublisherManager interface {
	Create(input services.PublisherInput) (*entities.Publisher, error)
	Update(id uint, input services.PublisherInput) (*entities.Publisher, error)
	Get(id uint) (*entities.Publisher, error)
	Delete(id uint) error
	ListFiltered(filter predicate.Publisher) ([]entities.Publisher, error)
}

// PublisherRequest is the JSON payload for creating or updating a publisher.
// The tax id, when present, must be a formatted CNPJ (xx.xxx.xxx/xxxx-xx).
type PublisherRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id" binding:"omitempty,taxid"`
}

type PublishersController struct {
	manager PublisherManager
}

func NewPublishersController(manager PublisherManager) *PublishersController {
	return &PublishersController{manager: manager}
}

// List returns publishers, optionally filtered by id, name, tax id or a
// published book.
func (controller *PublishersController) List(c *gin.Context) {
	id, ok := parseOptionalUintQuery(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseOptionalUintQuery(c, "book_id")
	if !ok {
		return
	}

	filter := predicate.NewPublisher().
		WithID(id).
		WithName(c.Query("name")).
		WithTaxID(c.Query("tax_id")).
		WithBookID(bookID).
		WithBookTitle(c.Query("book_title"))

	publishers, err := controller.manager.ListFiltered(filter)
	if err != nil {
		respondServiceError(c, err, "list publishers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"publishers": publishers, "count": len(publishers)})
}

func (controller *PublishersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	publisher, err := controller.manager.Get(id)
	if err != nil {
		respondServiceError(c, err, "get publisher")
		return
	}
	c.JSON(http.StatusOK, publisher)
}

func (controller *PublishersController) Create(c *gin.Context) {
	var request PublisherRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	publisher, err := controller.manager.Create(services.PublisherInput{
		Name:  request.Name,
		TaxID: request.TaxID,
	})
	if err != nil {
		respondServiceError(c, err, "create publisher")
		return
	}
	respondCreated(c, publisher)
}

func (controller *PublishersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var request PublisherRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	publisher, err := controller.manager.Update(id, services.PublisherInput{
		Name:  request.Name,
		TaxID: request.TaxID,
	})
	if err != nil {
		respondServiceError(c, err, "update publisher")
		return
	}
	c.JSON(http.StatusOK, publisher)
}

func (controller *PublishersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.manager.Delete(id); err != nil {
		respondServiceError(c, err, "delete publisher")
		return
	}
	respondSuccess(c, "publisher deleted")
}
