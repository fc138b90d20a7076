package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// bindNamed reads the name and accessLevel fields shared by authors, series
// and tags.
func bindNamed(c *gin.Context, name *string, level *int) error {
	*name = strings.TrimSpace(c.PostForm("name"))
	lvl, levelErr := formAccessLevel(c)
	if levelErr == nil {
		*level = lvl
	}

	if *name == "" {
		return catalog.Invalid("name", "is required")
	}
	return levelErr
}

// visibleBooks lists the books the current user may see, narrowed by filter.
func visibleBooks(c *gin.Context, books catalog.Repository[*entities.Book], filter func(q *catalog.Query)) ([]*entities.Book, error) {
	q := catalog.VisibleTo(auth.GetAccessLevel(c))
	filter(&q)
	return books.List(c.Request.Context(), q)
}

func NewAuthorResource(stores catalog.Stores, pages *Pages, auditService *audit.Service) *Resource[*entities.Author] {
	return NewResource(ResourceConfig[*entities.Author]{
		Name:     "authors",
		BasePath: "/authors",
		Label:    "Author",
		Plural:   "Authors",
		Repo:     stores.Authors,
		New: func() *entities.Author {
			return &entities.Author{AccessLevel: entities.DefaultAccessLevel}
		},
		Bind: func(c *gin.Context, a *entities.Author) error {
			return bindNamed(c, &a.Name, &a.AccessLevel)
		},
		ShowData: func(c *gin.Context, a *entities.Author, data gin.H) error {
			books, err := visibleBooks(c, stores.Books, func(q *catalog.Query) { q.AuthorID = a.ID })
			data["Books"] = books
			return err
		},
	}, pages, auditService)
}

func NewSeriesResource(stores catalog.Stores, pages *Pages, auditService *audit.Service) *Resource[*entities.Series] {
	return NewResource(ResourceConfig[*entities.Series]{
		Name:     "series",
		BasePath: "/series",
		Label:    "Series",
		Plural:   "Series",
		Repo:     stores.Series,
		New: func() *entities.Series {
			return &entities.Series{AccessLevel: entities.DefaultAccessLevel}
		},
		Bind: func(c *gin.Context, s *entities.Series) error {
			return bindNamed(c, &s.Name, &s.AccessLevel)
		},
		// Books come back ordered by their index within the series.
		ShowData: func(c *gin.Context, s *entities.Series, data gin.H) error {
			books, err := visibleBooks(c, stores.Books, func(q *catalog.Query) { q.SeriesID = s.ID })
			data["Books"] = books
			return err
		},
	}, pages, auditService)
}

func NewTagResource(stores catalog.Stores, pages *Pages, auditService *audit.Service) *Resource[*entities.Tag] {
	return NewResource(ResourceConfig[*entities.Tag]{
		Name:     "tags",
		BasePath: "/tags",
		Label:    "Tag",
		Plural:   "Tags",
		Repo:     stores.Tags,
		New: func() *entities.Tag {
			return &entities.Tag{AccessLevel: entities.DefaultAccessLevel}
		},
		Bind: func(c *gin.Context, t *entities.Tag) error {
			return bindNamed(c, &t.Name, &t.AccessLevel)
		},
		ShowData: func(c *gin.Context, t *entities.Tag, data gin.H) error {
			books, err := visibleBooks(c, stores.Books, func(q *catalog.Query) { q.TagID = t.ID })
			data["Books"] = books
			return err
		},
	}, pages, auditService)
}
