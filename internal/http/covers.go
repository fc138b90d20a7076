package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/entities"
)

// CoversController serves embedded book covers.
type CoversController struct{}

func NewCoversController() *CoversController {
	return &CoversController{}
}

// GetCover writes the stored cover with its MIME type. The book is loaded
// and access-checked by auth.RequireAccessLevel.
// GET /books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	book, ok := auth.GetEntity[*entities.Book](c)
	if !ok || !book.HasCover() || len(book.CoverImage) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, book.CoverImageType, book.CoverImage)
}
