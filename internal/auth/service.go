package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/entities"
)

// Validation patterns
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserExists       = &catalog.ValidationError{Field: "username", Message: "is already taken"}
	ErrNameRequired     = &catalog.ValidationError{Field: "name", Message: "is required"}
	ErrUsernameRequired = &catalog.ValidationError{Field: "username", Message: "is required"}
	ErrUsernameInvalid  = &catalog.ValidationError{Field: "username", Message: "must be 3-64 characters, alphanumeric and underscore/hyphen only"}
	ErrInvalidRole      = &catalog.ValidationError{Field: "role", Message: "must be member or admin"}
	ErrInvalidLevel     = &catalog.ValidationError{Field: "access level", Message: "must be a non-negative number"}
)

// UserForm carries the editable user fields. An empty Password leaves the
// stored hash untouched on update.
type UserForm struct {
	Name        string
	Username    string
	Password    string
	Role        entities.UserRole
	AccessLevel int
}

// ParseUserForm reads a user form from the request body. A malformed access
// level is reported after the remaining fields have been read.
func ParseUserForm(c *gin.Context) (UserForm, error) {
	form := UserForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Username:    strings.TrimSpace(c.PostForm("username")),
		Password:    c.PostForm("password"),
		Role:        entities.UserRole(c.DefaultPostForm("role", string(entities.UserRoleMember))),
		AccessLevel: entities.DefaultAccessLevel,
	}

	raw := strings.TrimSpace(c.PostForm("accessLevel"))
	if raw == "" {
		return form, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 {
		return form, ErrInvalidLevel
	}
	form.AccessLevel = level
	return form, nil
}

// Service handles authentication and user management.
type Service struct {
	users  catalog.UserRepository
	config config.Auth

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(users catalog.UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
	}
}

// Apply copies the form onto u, validates it and hashes a supplied password.
// New users (empty ID) must provide a password. Fields are copied before
// validation so a failed form can be re-rendered with the attempted values.
func (s *Service) Apply(u *entities.User, form UserForm) error {
	u.Name = form.Name
	u.Username = form.Username
	u.Role = form.Role
	u.AccessLevel = form.AccessLevel

	switch {
	case u.Name == "":
		return ErrNameRequired
	case u.Username == "":
		return ErrUsernameRequired
	case !usernamePattern.MatchString(u.Username):
		return ErrUsernameInvalid
	case u.Role != entities.UserRoleMember && u.Role != entities.UserRoleAdmin:
		return ErrInvalidRole
	case u.AccessLevel < 0:
		return ErrInvalidLevel
	}

	if form.Password == "" && u.ID != "" {
		return nil
	}
	hash, err := HashPassword(form.Password, s.config.BcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CreateUser validates the form and stores a new user.
func (s *Service) CreateUser(ctx context.Context, form UserForm) (*entities.User, error) {
	user := &entities.User{}
	if err := s.Apply(user, form); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown usernames
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = CheckPassword(password, s.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = HashPassword("dummy-password-for-timing", s.config.BcryptCost)
	})
	return s.dummyHash
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// HasUsers reports whether at least one user exists.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
