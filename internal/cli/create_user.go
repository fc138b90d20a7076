package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/entrypoint"
)

// CreateUserCommand adds an account without going through the web UI.
type CreateUserCommand struct {
	Database config.Database
	Auth     config.Auth

	Name        string
	Username    string
	Password    string
	Admin       bool
	AccessLevel int
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	cmd.Database = cfg.Database
	cmd.Auth = cfg.Auth

	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Login name, 3-64 letters, digits, '_' or '-' (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name (defaults to the username)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Grant the administrator role")
	fs.IntVar(&cmd.AccessLevel, "level", entities.DefaultAccessLevel, "Access level of the new user")
	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.StringVar(&cmd.Database.Driver, "driver", cmd.Database.Driver, "Catalog storage driver: sqlite or mongo")
	fs.StringVar(&cmd.Database.URL, "mongo-url", cmd.Database.URL, "MongoDB connection string (mongo driver only)")
	fs.StringVar(&cmd.Database.Name, "mongo-db", cmd.Database.Name, "MongoDB database name (mongo driver only)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a catalog user. Database settings default to the DATABASE_* environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # First administrator with full access:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username admin -password 's3cret-pass' -admin -level 10\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	if cmd.Name == "" {
		cmd.Name = cmd.Username
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	ctx := context.Background()

	db, err := database.NewDatabase(cmd.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	stores, closeStores, err := entrypoint.OpenStores(cmd.Database, db)
	if err != nil {
		return err
	}
	defer closeStores(ctx)

	role := entities.UserRoleMember
	if cmd.Admin {
		role = entities.UserRoleAdmin
	}

	service := auth.NewService(stores.Users, cmd.Auth)
	user, err := service.CreateUser(ctx, auth.UserForm{
		Name:        cmd.Name,
		Username:    cmd.Username,
		Password:    cmd.Password,
		Role:        role,
		AccessLevel: cmd.AccessLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s %q with access level %d\n", user.Role, user.Username, user.AccessLevel)
	return nil
}
