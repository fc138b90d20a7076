package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
)

const contextKeyAuthTemplateData = "auth_template_data"

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	LoggedIn    bool   // Whether user is logged in
	Username    string // Current user's username (empty if not logged in)
	IsAdmin     bool
	AccessLevel int
	CSRFToken   string // CSRF token for forms (empty when CSRF is off)
	CSRFField   string
	UserID      string
}

// AuthContextMiddleware injects authentication data into Gin context for templates.
// Templates can access auth data via .Auth in the template data.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authData := AuthTemplateData{
			CSRFToken: auth.GetCSRFToken(c),
			CSRFField: auth.CSRFFieldName,
		}

		if auth.IsAuthenticated(c) {
			authData.LoggedIn = true
			authData.UserID = auth.GetUserID(c)
			authData.Username = auth.GetUsername(c)
			authData.IsAdmin = auth.IsAdmin(c)
			authData.AccessLevel = auth.GetAccessLevel(c)
		}

		c.Set(contextKeyAuthTemplateData, authData)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get(contextKeyAuthTemplateData); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
