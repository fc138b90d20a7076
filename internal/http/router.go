package http

import (
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/web"
)

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	},
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"hasTag": func(b *entities.Book, id string) bool {
		return b != nil && b.HasTag(id)
	},
	"lower": strings.ToLower,
}

// loadTemplates parses the embedded page templates.
func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(web.Templates, "templates/*.html")
}

// NewRouter creates and configures the HTTP router with all endpoints.
// The returned stop function releases the login rate limiter.
func NewRouter(cfg RouterConfig) (*gin.Engine, func()) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware())

	router.SetHTMLTemplate(template.Must(loadTemplates()))

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	pages := NewPages(cfg.SessionManager)
	m := cfg.AuthMiddleware

	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, pages, cfg.Audit, cfg.AuthConfig)
	authController.RegisterRoutes(router, m)

	// Health endpoints
	health := NewHealthController(cfg.Stores.Health, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	home := NewHomeController(cfg.Stores.Books, pages)
	router.GET("/", m.RequireAuthenticated(), home.Index)

	NewAuthorResource(cfg.Stores, pages, cfg.Audit).RegisterRoutes(router, m)
	NewSeriesResource(cfg.Stores, pages, cfg.Audit).RegisterRoutes(router, m)
	NewTagResource(cfg.Stores, pages, cfg.Audit).RegisterRoutes(router, m)
	NewBookResource(cfg.Stores, cfg.Descriptions, pages, cfg.Audit).RegisterRoutes(router, m)
	NewUserResource(cfg.Stores.Users, cfg.AuthService, pages, cfg.Audit).RegisterRoutes(router, m)

	covers := NewCoversController()
	router.GET("/books/:id/cover",
		m.RequireAuthenticated(),
		auth.RequireAccessLevel(cfg.Stores.Books.GetByID, "/books"),
		covers.GetCover)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, cfg.AuditCleaner, pages)
		admin := router.Group("/admin", m.RequireAuthenticated(), m.RequireAdmin())
		admin.GET("/audit", auditController.AuditLogPage)
		admin.POST("/audit/cleanup", auditController.Cleanup)
	}

	router.NoRoute(pages.NotFound)

	return router, authController.Stop
}

// NewHandler wraps the router with the request plumbing that has to run
// before gin matches a route: the body limit and the _method override.
func NewHandler(router http.Handler, maxBodyBytes int64) http.Handler {
	return LimitBody(MethodOverride(router), maxBodyBytes)
}
