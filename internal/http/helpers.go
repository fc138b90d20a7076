package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// dateLayout is the format of date inputs and query filters.
const dateLayout = "2006-01-02"

// Pages renders named templates with the data every page needs: the
// authentication block under .Auth and the pending flash under .Flash.
type Pages struct {
	sessions *auth.SessionManager
}

func NewPages(sessions *auth.SessionManager) *Pages {
	return &Pages{sessions: sessions}
}

// Render implements auth.Renderer.
func (p *Pages) Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = GetAuthTemplateData(c)
	if p.sessions != nil {
		if flash := p.sessions.PopFlash(c.Request); flash != nil {
			data["Flash"] = flash
		}
	}
	c.HTML(status, name, data)
}

// RedirectWithFlash stores a flash message and redirects with 302 Found.
func (p *Pages) RedirectWithFlash(c *gin.Context, location, kind, message string) {
	if p.sessions != nil {
		p.sessions.SetFlash(c.Request, kind, message)
	}
	c.Redirect(http.StatusFound, location)
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(c *gin.Context) {
	p.Render(c, http.StatusNotFound, "404", gin.H{"Title": "Not found"})
}

// --- Form parsing ---

// formAccessLevel reads the accessLevel field, defaulting to
// entities.DefaultAccessLevel when empty.
func formAccessLevel(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.PostForm("accessLevel"))
	if raw == "" {
		return entities.DefaultAccessLevel, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 {
		return 0, catalog.Invalid("access level", "must be a non-negative number")
	}
	return level, nil
}

// queryInt parses an optional integer query parameter. Malformed values are
// ignored.
func queryInt(c *gin.Context, key string) *int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Debug("Ignoring malformed query parameter", "key", key, "value", raw)
		return nil
	}
	return &v
}

// queryDate parses an optional YYYY-MM-DD query parameter. Malformed values
// are ignored.
func queryDate(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := time.Parse(dateLayout, raw)
	if err != nil {
		slog.Debug("Ignoring malformed query parameter", "key", key, "value", raw)
		return nil
	}
	return &v
}

// formErrorMessage turns a bind or save error into the text shown above a
// form. Internal failures are logged and replaced by a generic message.
func formErrorMessage(err error, action, label string) string {
	if msg := catalog.UserMessage(err); msg != "" {
		return "Could not " + action + " " + strings.ToLower(label) + ": " + msg
	}
	slog.Error("Failed to "+action+" "+strings.ToLower(label), "error", err)
	return "Could not " + action + " " + strings.ToLower(label) + "."
}
