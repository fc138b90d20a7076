package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// AuditCleaner triggers the audit retention cleanup.
type AuditCleaner interface {
	RunNow(ctx context.Context) error
}

type AuditController struct {
	auditService *audit.Service
	cleaner      AuditCleaner
	pages        *Pages
}

func NewAuditController(auditService *audit.Service, cleaner AuditCleaner, pages *Pages) *AuditController {
	return &AuditController{
		auditService: auditService,
		cleaner:      cleaner,
		pages:        pages,
	}
}

// AuditLogPage renders the latest audit events.
// GET /admin/audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit < 1 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}

	events, err := ac.auditService.ListEvents(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to load audit events", "error", err)
		ac.pages.RedirectWithFlash(c, "/admin", auth.FlashError, "Failed to load audit events.")
		return
	}

	ac.pages.Render(c, http.StatusOK, "audit", gin.H{
		"Title":      "Audit log",
		"Events":     events,
		"CanCleanup": ac.cleaner != nil,
	})
}

// Cleanup triggers the retention cleanup outside its schedule.
// POST /admin/audit/cleanup
func (ac *AuditController) Cleanup(c *gin.Context) {
	if ac.cleaner == nil {
		ac.pages.RedirectWithFlash(c, "/admin/audit", auth.FlashError, "Audit cleanup is not configured.")
		return
	}

	if err := ac.cleaner.RunNow(c.Request.Context()); err != nil {
		slog.Error("Failed to trigger audit cleanup", "error", err)
		ac.pages.RedirectWithFlash(c, "/admin/audit", auth.FlashError, "Could not start the audit cleanup.")
		return
	}

	ac.pages.RedirectWithFlash(c, "/admin/audit", auth.FlashInfo, "Audit cleanup started.")
}
