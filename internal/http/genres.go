package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/catalog/internal/entities"
)

type GenresController struct{}

func NewGenresController() *GenresController {
	return &GenresController{}
}

// List returns every genre as a value/label pair for dropdowns.
func (controller *GenresController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": entities.GenreOptions()})
}
