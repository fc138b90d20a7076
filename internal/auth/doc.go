// Package auth provides authentication and authorization for the catalog.
//
// Users log in with a username and password; the session (scs, stored in the
// local SQLite database) carries only the user ID. Every request passes
// through Middleware.Handler, which loads the current user into the Gin
// context. Routes then opt into guards:
//
//	RequireAuthenticated()          // anonymous -> /login?next=...
//	RequireUnauthenticated()        // logged in -> /
//	RequireRole(...) / RequireAdmin() // role mismatch -> /
//	RequireAccessLevel(load, index) // record above the user's level -> index
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex>   # CSRF signing key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=168h  # Session duration
//	AUTH_BCRYPT_COST=12         # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true    # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(stores.Users, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(sessionManager.SessionLoadSave(), authMiddleware.Handler())
//
// Extract the user in handlers:
//
//	level := auth.GetAccessLevel(c)
package auth
