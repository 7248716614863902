package http

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// BookImporter runs a catalog import file through reconciliation.
type BookImporter interface {
	Run(r io.Reader) error
}

type ImportController struct {
	importer BookImporter
}

func NewImportController(importer BookImporter) *ImportController {
	return &ImportController{importer: importer}
}

// CatalogFile imports a semicolon-delimited catalog file uploaded as
// multipart form data under the "file" field.
func (controller *ImportController) CatalogFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".txt" && ext != ".csv" {
		respondBadRequest(c, "unsupported file type, expected .txt or .csv")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open import file")
		return
	}
	defer file.Close()

	if err := controller.importer.Run(file); err != nil {
		respondServiceError(c, err, "import catalog file")
		return
	}
	respondSuccess(c, "catalog imported")
}
