package http

import (
	"errors"
	"html/template"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// bookForm binds and decorates the book pages.
type bookForm struct {
	stores       catalog.Stores
	descriptions *catalog.DescriptionRenderer
}

func NewBookResource(stores catalog.Stores, descriptions *catalog.DescriptionRenderer, pages *Pages, auditService *audit.Service) *Resource[*entities.Book] {
	f := &bookForm{stores: stores, descriptions: descriptions}
	return NewResource(ResourceConfig[*entities.Book]{
		Name:     "books",
		BasePath: "/books",
		Label:    "Book",
		Plural:   "Books",
		Repo:     stores.Books,
		New: func() *entities.Book {
			return &entities.Book{AccessLevel: entities.DefaultAccessLevel}
		},
		Bind:      f.bind,
		ListQuery: f.listQuery,
		FormData:  f.formData,
		ShowData:  f.showData,
	}, pages, auditService)
}

// bind copies the book form onto b. The cover is replaced only when a new
// payload with an accepted image type arrives.
func (f *bookForm) bind(c *gin.Context, b *entities.Book) error {
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	b.Title = strings.TrimSpace(c.PostForm("title"))
	if b.Title == "" {
		fail(catalog.Invalid("title", "is required"))
	}

	b.AuthorID = strings.TrimSpace(c.PostForm("author"))
	if b.AuthorID == "" {
		fail(catalog.Invalid("author", "is required"))
	}

	b.Description = c.PostForm("description")

	if raw := strings.TrimSpace(c.PostForm("publishDate")); raw == "" {
		b.PublishDate = time.Time{}
	} else if date, err := time.Parse(dateLayout, raw); err == nil {
		b.PublishDate = date
	} else {
		fail(catalog.Invalid("publish date", "must be a date (YYYY-MM-DD)"))
	}

	if raw := strings.TrimSpace(c.PostForm("wordCount")); raw == "" {
		b.WordCount = 0
	} else if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		b.WordCount = n
	} else {
		fail(catalog.Invalid("word count", "must be a non-negative number"))
	}

	if level, err := formAccessLevel(c); err == nil {
		b.AccessLevel = level
	} else {
		fail(err)
	}

	b.SeriesID = nil
	b.SeriesIndex = 0
	if seriesID := strings.TrimSpace(c.PostForm("series")); seriesID != "" {
		b.SeriesID = &seriesID
		if raw := strings.TrimSpace(c.PostForm("seriesIndex")); raw != "" {
			if idx, err := strconv.ParseFloat(raw, 64); err == nil {
				b.SeriesIndex = idx
			} else {
				fail(catalog.Invalid("series index", "must be a number"))
			}
		}
	}

	b.TagIDs = b.TagIDs[:0]
	for _, id := range c.PostFormArray("tags") {
		if id = strings.TrimSpace(id); id != "" {
			b.TagIDs = append(b.TagIDs, id)
		}
	}

	cover, err := catalog.DecodeCover(c.PostForm("cover"))
	switch {
	case errors.Is(err, catalog.ErrUnsupportedCoverType):
		slog.Info("Dropping cover with unsupported type", "book", b.Title)
	case err != nil:
		fail(err)
	case cover != nil:
		b.CoverImage = cover.Data
		b.CoverImageType = cover.Type
	}

	if firstErr != nil {
		return firstErr
	}
	return f.checkReferences(c, b)
}

// checkReferences rejects author and series IDs that do not exist.
func (f *bookForm) checkReferences(c *gin.Context, b *entities.Book) error {
	ctx := c.Request.Context()

	author, err := f.stores.Authors.GetByID(ctx, b.AuthorID)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Invalid("author", "does not exist")
	} else if err != nil {
		return err
	}
	b.Author = author

	b.Series = nil
	if b.SeriesID != nil {
		series, err := f.stores.Series.GetByID(ctx, *b.SeriesID)
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Invalid("series", "does not exist")
		} else if err != nil {
			return err
		}
		b.Series = series
	}
	return nil
}

// listQuery reads the book search filters. The title filter takes the place
// of the generic name filter.
func (f *bookForm) listQuery(c *gin.Context, q *catalog.Query) {
	if title := strings.TrimSpace(c.Query("title")); title != "" {
		q.Name = title
	}
	q.AuthorID = strings.TrimSpace(c.Query("author"))
	q.SeriesID = strings.TrimSpace(c.Query("series"))
	q.TagID = strings.TrimSpace(c.Query("tag"))
	q.MinWordCount = queryInt(c, "minWordCount")
	q.MaxWordCount = queryInt(c, "maxWordCount")
	q.PublishedAfter = queryDate(c, "publishedAfter")
	q.PublishedBefore = queryDate(c, "publishedBefore")
}

// formData lists every author, series and tag as choices.
func (f *bookForm) formData(c *gin.Context, data gin.H) error {
	ctx := c.Request.Context()

	authors, err := f.stores.Authors.List(ctx, catalog.Query{})
	if err != nil {
		return err
	}
	series, err := f.stores.Series.List(ctx, catalog.Query{})
	if err != nil {
		return err
	}
	tags, err := f.stores.Tags.List(ctx, catalog.Query{})
	if err != nil {
		return err
	}

	data["Authors"] = authors
	data["SeriesList"] = series
	data["Tags"] = tags
	return nil
}

// showData exposes the related records the user may see and the rendered
// description.
func (f *bookForm) showData(c *gin.Context, b *entities.Book, data gin.H) error {
	level := auth.GetAccessLevel(c)

	if b.Author != nil && catalog.CanView(b.Author, level) {
		data["Author"] = b.Author
	}
	if b.Series != nil && catalog.CanView(b.Series, level) {
		data["Series"] = b.Series
	}

	tags := make([]*entities.Tag, 0, len(b.Tags))
	for i := range b.Tags {
		if catalog.CanView(&b.Tags[i], level) {
			tags = append(tags, &b.Tags[i])
		}
	}
	data["Tags"] = tags

	var description template.HTML
	if f.descriptions != nil {
		description = f.descriptions.Render(b.Description)
	} else {
		description = template.HTML(template.HTMLEscapeString(b.Description))
	}
	data["Description"] = description
	return nil
}
