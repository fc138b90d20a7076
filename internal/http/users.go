package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

var errDeleteSelf = errors.New("administrators cannot delete their own account")

// NewUserResource serves account management under /admin.
func NewUserResource(users catalog.UserRepository, authService *auth.Service, pages *Pages, auditService *audit.Service) *Resource[*entities.User] {
	return NewResource(ResourceConfig[*entities.User]{
		Name:     "users",
		BasePath: "/admin",
		Label:    "User",
		Plural:   "Users",
		Repo:     users,
		New: func() *entities.User {
			return &entities.User{Role: entities.UserRoleMember, AccessLevel: entities.DefaultAccessLevel}
		},
		Bind: func(c *gin.Context, u *entities.User) error {
			form, parseErr := auth.ParseUserForm(c)
			if err := authService.Apply(u, form); err != nil {
				return err
			}
			return parseErr
		},
		FormData: func(c *gin.Context, data gin.H) error {
			data["Roles"] = []entities.UserRole{entities.UserRoleMember, entities.UserRoleAdmin}
			return nil
		},
		CanDelete: func(c *gin.Context, u *entities.User) error {
			if u.ID == auth.GetUserID(c) {
				return errDeleteSelf
			}
			return nil
		},
		AdminOnly:      true,
		IndexAfterSave: true,
	}, pages, auditService)
}
