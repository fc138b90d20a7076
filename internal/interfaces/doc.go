// Package interfaces documents the core abstractions of the catalog and holds
// compile-time checks that the concrete types satisfy them.
//
// # Storage
//
//   - catalog.Repository[E]: GetByID, List, Save and Delete for one entity
//     type. Save inserts when the ID is empty and updates otherwise.
//   - catalog.UserRepository: adds GetByUsername and Count for the auth
//     service.
//   - catalog.AuditRecorder: append, list and prune audit events.
//   - catalog.Stores: the bundle a backend hands to the web layer. Built by
//     database.Database (gorm over SQLite) and docstore.DB (MongoDB).
//
// # Web
//
//   - catalog.Entity: what the generic resource handlers need from a record
//     (ID, access level, display name).
//   - auth.Renderer: renders a named page; implemented by http.Pages.
//   - http.AuditCleaner: triggers the audit retention cleanup; implemented
//     by scheduler.AuditCleanupScheduler.
//
// # Adding an entity type
//
//  1. Define the struct in internal/entities with GetID, GetAccessLevel and
//     DisplayName.
//  2. Add a repository in internal/database and internal/docstore and list it
//     in both Stores methods.
//  3. Describe it with an http.ResourceConfig and add its templates under
//     web/templates.
package interfaces
