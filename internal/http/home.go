package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// recentBooksLimit is the number of books on the home page.
const recentBooksLimit = 10

type HomeController struct {
	books catalog.Repository[*entities.Book]
	pages *Pages
}

func NewHomeController(books catalog.Repository[*entities.Book], pages *Pages) *HomeController {
	return &HomeController{books: books, pages: pages}
}

// Index renders the most recently added books visible to the user.
// GET /
func (h *HomeController) Index(c *gin.Context) {
	q := catalog.VisibleTo(auth.GetAccessLevel(c))
	q.Newest = true
	q.Limit = recentBooksLimit

	books, err := h.books.List(c.Request.Context(), q)
	if err != nil {
		slog.Error("Failed to load recent books", "error", err)
		books = nil
	}

	h.pages.Render(c, http.StatusOK, "home", gin.H{
		"Title": "Catalog",
		"Books": books,
	})
}
