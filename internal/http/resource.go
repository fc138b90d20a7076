package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// ResourceConfig describes one entity type served by Resource.
type ResourceConfig[E catalog.Entity] struct {
	// Name prefixes the page templates: "authors" renders "authors-index",
	// "authors-new", "authors-edit" and "authors-show".
	Name string
	// BasePath is the URL prefix, e.g. "/authors".
	BasePath string
	// Label is the singular display name, e.g. "Author".
	Label string
	// Plural titles the index page.
	Plural string

	Repo catalog.Repository[E]
	New  func() E
	// Bind copies the submitted form onto e and validates it. All fields are
	// copied before a validation error is returned so a rejected form can be
	// shown again with what the user typed.
	Bind func(c *gin.Context, e E) error

	// ListQuery adds entity-specific filters to the index query.
	ListQuery func(c *gin.Context, q *catalog.Query)
	// FormData adds choices (authors, series, ...) to the new and edit pages.
	FormData func(c *gin.Context, data gin.H) error
	// ShowData adds related records to the show page.
	ShowData func(c *gin.Context, e E, data gin.H) error
	// CanDelete vetoes a delete before the repository is called.
	CanDelete func(c *gin.Context, e E) error

	// AdminOnly restricts every route to administrators and turns off
	// access-level filtering.
	AdminOnly bool
	// IndexAfterSave redirects to the index rather than the show page after
	// a successful create or update.
	IndexAfterSave bool
}

// Resource serves the index, new, create, show, edit, update and delete
// routes of one entity type.
type Resource[E catalog.Entity] struct {
	cfg   ResourceConfig[E]
	pages *Pages
	audit *audit.Service
}

func NewResource[E catalog.Entity](cfg ResourceConfig[E], pages *Pages, auditService *audit.Service) *Resource[E] {
	return &Resource[E]{cfg: cfg, pages: pages, audit: auditService}
}

// RegisterRoutes mounts the resource under its base path. Every route needs
// a session; writes need an administrator; routes naming a record load it
// first, checking its access level unless the resource is AdminOnly.
func (r *Resource[E]) RegisterRoutes(router gin.IRouter, m *auth.Middleware) {
	group := router.Group(r.cfg.BasePath, m.RequireAuthenticated())
	if r.cfg.AdminOnly {
		group.Use(m.RequireAdmin())
	}

	admin := m.RequireAdmin()
	load := r.loader()

	group.GET("", r.List)
	group.GET("/new", admin, r.New)
	group.POST("", admin, r.Create)
	group.GET("/:id", load, r.Show)
	group.GET("/:id/edit", admin, load, r.Edit)
	group.PUT("/:id", admin, load, r.Update)
	group.DELETE("/:id", admin, load, r.Delete)
}

func (r *Resource[E]) loader() gin.HandlerFunc {
	if !r.cfg.AdminOnly {
		return auth.RequireAccessLevel(r.cfg.Repo.GetByID, r.cfg.BasePath)
	}
	return func(c *gin.Context) {
		entity, err := r.cfg.Repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Debug("Could not load "+r.entityType(), "id", c.Param("id"), "error", err)
			c.Redirect(http.StatusFound, r.cfg.BasePath)
			c.Abort()
			return
		}
		c.Set(auth.ContextKeyEntity, entity)
		c.Next()
	}
}

// List renders the index page.
// GET /<base>
func (r *Resource[E]) List(c *gin.Context) {
	var q catalog.Query
	if !r.cfg.AdminOnly {
		q = catalog.VisibleTo(auth.GetAccessLevel(c))
	}
	q.Name = strings.TrimSpace(c.Query("name"))
	if r.cfg.ListQuery != nil {
		r.cfg.ListQuery(c, &q)
	}

	items, err := r.cfg.Repo.List(c.Request.Context(), q)
	if err != nil {
		slog.Error("Failed to list "+r.cfg.Name, "error", err)
		r.pages.RedirectWithFlash(c, "/", auth.FlashError, "Could not load "+strings.ToLower(r.cfg.Plural)+".")
		return
	}

	r.pages.Render(c, http.StatusOK, r.cfg.Name+"-index", gin.H{
		"Title":    r.cfg.Plural,
		"Items":    items,
		"Filter":   c.Request.URL.Query(),
		"BasePath": r.cfg.BasePath,
	})
}

// New renders an empty form.
// GET /<base>/new
func (r *Resource[E]) New(c *gin.Context) {
	r.renderForm(c, http.StatusOK, "new", r.cfg.New(), "")
}

// Create stores a new record.
// POST /<base>
func (r *Resource[E]) Create(c *gin.Context) {
	entity := r.cfg.New()
	err := r.cfg.Bind(c, entity)
	if err == nil {
		err = r.cfg.Repo.Save(c.Request.Context(), entity)
	}
	if err != nil {
		r.renderForm(c, http.StatusBadRequest, "new", entity, formErrorMessage(err, "create", r.cfg.Label))
		return
	}

	r.logChange(c, entities.AuditEventCreate, entity, nil)
	r.pages.RedirectWithFlash(c, r.afterSave(entity), auth.FlashInfo, r.cfg.Label+" "+entity.DisplayName()+" created.")
}

// Show renders one record with its related data.
// GET /<base>/:id
func (r *Resource[E]) Show(c *gin.Context) {
	entity, ok := r.entity(c)
	if !ok {
		return
	}

	data := gin.H{
		"Title":    entity.DisplayName(),
		"Entity":   entity,
		"BasePath": r.cfg.BasePath,
	}
	if r.cfg.ShowData != nil {
		if err := r.cfg.ShowData(c, entity, data); err != nil {
			slog.Error("Failed to load related data", "entity", r.entityType(), "id", entity.GetID(), "error", err)
			r.pages.RedirectWithFlash(c, r.cfg.BasePath, auth.FlashError, "Could not load "+strings.ToLower(r.cfg.Label)+".")
			return
		}
	}

	r.pages.Render(c, http.StatusOK, r.cfg.Name+"-show", data)
}

// Edit renders the form populated with the stored record.
// GET /<base>/:id/edit
func (r *Resource[E]) Edit(c *gin.Context) {
	entity, ok := r.entity(c)
	if !ok {
		return
	}
	r.renderForm(c, http.StatusOK, "edit", entity, "")
}

// Update overwrites the record with the submitted form.
// PUT /<base>/:id
func (r *Resource[E]) Update(c *gin.Context) {
	entity, ok := r.entity(c)
	if !ok {
		return
	}

	err := r.cfg.Bind(c, entity)
	if err == nil {
		err = r.cfg.Repo.Save(c.Request.Context(), entity)
	}
	if err != nil {
		r.renderForm(c, http.StatusBadRequest, "edit", entity, formErrorMessage(err, "update", r.cfg.Label))
		return
	}

	r.logChange(c, entities.AuditEventUpdate, entity, nil)
	r.pages.RedirectWithFlash(c, r.afterSave(entity), auth.FlashInfo, r.cfg.Label+" "+entity.DisplayName()+" updated.")
}

// Delete removes the record. Failures, including records still referenced
// by books, send the user back to the show page.
// DELETE /<base>/:id
func (r *Resource[E]) Delete(c *gin.Context) {
	entity, ok := r.entity(c)
	if !ok {
		return
	}

	var err error
	if r.cfg.CanDelete != nil {
		err = r.cfg.CanDelete(c, entity)
	}
	if err == nil {
		err = r.cfg.Repo.Delete(c.Request.Context(), entity.GetID())
	}
	if err != nil {
		slog.Warn("Delete failed", "entity", r.entityType(), "id", entity.GetID(), "error", err)
		r.logChange(c, entities.AuditEventDelete, entity, err)
		r.pages.RedirectWithFlash(c, r.showPath(entity), auth.FlashError,
			"Could not remove "+strings.ToLower(r.cfg.Label)+" "+entity.DisplayName()+".")
		return
	}

	r.logChange(c, entities.AuditEventDelete, entity, nil)
	r.pages.RedirectWithFlash(c, r.cfg.BasePath, auth.FlashInfo, r.cfg.Label+" "+entity.DisplayName()+" removed.")
}

func (r *Resource[E]) renderForm(c *gin.Context, status int, action string, entity E, message string) {
	title := "Edit " + entity.DisplayName()
	if action == "new" {
		title = "New " + strings.ToLower(r.cfg.Label)
	}
	data := gin.H{
		"Title":    title,
		"Entity":   entity,
		"Error":    message,
		"IsNew":    action == "new",
		"BasePath": r.cfg.BasePath,
	}
	if r.cfg.FormData != nil {
		if err := r.cfg.FormData(c, data); err != nil {
			slog.Error("Failed to load form choices", "entity", r.entityType(), "error", err)
			r.pages.RedirectWithFlash(c, r.cfg.BasePath, auth.FlashError, "Could not load the form.")
			return
		}
	}
	r.pages.Render(c, status, r.cfg.Name+"-"+action, data)
}

func (r *Resource[E]) entity(c *gin.Context) (E, bool) {
	entity, ok := auth.GetEntity[E](c)
	if !ok {
		c.Redirect(http.StatusFound, r.cfg.BasePath)
	}
	return entity, ok
}

func (r *Resource[E]) showPath(entity E) string {
	return r.cfg.BasePath + "/" + entity.GetID()
}

func (r *Resource[E]) afterSave(entity E) string {
	if r.cfg.IndexAfterSave {
		return r.cfg.BasePath
	}
	return r.showPath(entity)
}

func (r *Resource[E]) entityType() string {
	return strings.ToLower(r.cfg.Label)
}

func (r *Resource[E]) logChange(c *gin.Context, kind entities.AuditEventType, entity E, err error) {
	r.audit.LogChange(audit.Change{
		UserID:     auth.GetUserID(c),
		Type:       kind,
		EntityType: r.entityType(),
		EntityID:   entity.GetID(),
		EntityName: entity.DisplayName(),
		IPAddress:  c.ClientIP(),
		Err:        err,
	})
}
