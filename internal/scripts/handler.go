package scripts

import (
	"github.com/gin-gonic/gin"

	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/pkg/response"
)

// Handler serves the public script endpoints.
type Handler struct {
	lib *Library
}

// NewHandler creates a scripts handler.
func NewHandler(lib *Library) *Handler {
	return &Handler{lib: lib}
}

// All handles GET /scripts.
func (h *Handler) All(c *gin.Context) {
	response.OK(c, gin.H{"difficulties": h.lib.Difficulties(), "scripts": h.lib.All()})
}

// Random handles GET /scripts/random?difficulty=&category=.
func (h *Handler) Random(c *gin.Context) {
	difficulty := c.DefaultQuery("difficulty", models.DifficultyBeginner)
	response.OK(c, h.lib.Random(difficulty, c.Query("category")))
}

// Categories handles GET /scripts/categories?difficulty=.
func (h *Handler) Categories(c *gin.Context) {
	difficulty := c.DefaultQuery("difficulty", models.DifficultyBeginner)
	response.OK(c, gin.H{"difficulty": difficulty, "categories": h.lib.Categories(difficulty)})
}

// RegisterRoutes mounts the script routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/scripts", h.All)
	r.GET("/scripts/random", h.Random)
	r.GET("/scripts/categories", h.Categories)
}
