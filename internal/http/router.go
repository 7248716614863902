package http

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shelfwise/catalog/internal/database"
)

// RouterConfig carries every dependency the router needs, so wiring stays in
// one place and tests can swap in fakes.
type RouterConfig struct {
	Database   *database.Database
	Version    string
	Authors    AuthorManager
	Publishers PublisherManager
	Books      BookManager
	Importer   BookImporter
	Sync       SyncManager
}

// taxIDPattern matches a formatted CNPJ: xx.xxx.xxx/xxxx-xx.
var taxIDPattern = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)

// registerValidations installs the custom binding rules used by request
// structs. Safe to call more than once.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
			return taxIDPattern.MatchString(fl.Field().String())
		})
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	authors := NewAuthorsController(cfg.Authors)
	publishers := NewPublishersController(cfg.Publishers)
	books := NewBooksController(cfg.Books)
	importController := NewImportController(cfg.Importer)
	genres := NewGenresController()
	sync := NewSyncController(cfg.Sync)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/genres", genres.List)

		api.GET("/authors", authors.List)
		api.POST("/authors", authors.Create)
		api.GET("/authors/:id", authors.Get)
		api.PUT("/authors/:id", authors.Update)
		api.DELETE("/authors/:id", authors.Delete)

		api.GET("/publishers", publishers.List)
		api.POST("/publishers", publishers.Create)
		api.GET("/publishers/:id", publishers.Get)
		api.PUT("/publishers/:id", publishers.Update)
		api.DELETE("/publishers/:id", publishers.Delete)

		api.GET("/books", books.List)
		api.POST("/books", books.Create)
		api.POST("/books/isbn", books.RegisterByISBN)
		api.GET("/books/:id", books.Get)
		api.PUT("/books/:id", books.Update)
		api.DELETE("/books/:id", books.Delete)

		api.POST("/import/catalog", importController.CatalogFile)

		api.GET("/metadata-sync", sync.Status)
		api.POST("/metadata-sync/run", sync.Trigger)
	}

	return router
}
