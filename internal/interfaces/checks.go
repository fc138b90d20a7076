package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/docstore"
	"github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/tasks"
)

// =============================================================================
// Storage Backends
// =============================================================================

// Both backends hand out a complete store bundle
var _ interface{ Stores() catalog.Stores } = (*database.Database)(nil)
var _ interface{ Stores() catalog.Stores } = (*docstore.DB)(nil)

// Health checks
var _ catalog.Pinger = (*database.Database)(nil)
var _ catalog.Pinger = (*docstore.DB)(nil)

// Document store repositories (the gorm repositories check themselves)
var _ catalog.UserRepository = (*docstore.UserRepository)(nil)
var _ catalog.AuditRecorder = (*docstore.AuditRepository)(nil)

// =============================================================================
// Web Layer
// =============================================================================

// Page rendering for the auth controller
var _ auth.Renderer = (*http.Pages)(nil)

// Access-level checks on loaded records
var _ auth.Leveled = (catalog.Entity)(nil)

// =============================================================================
// Background Work
// =============================================================================

// Audit retention cleanup
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ http.AuditCleaner = (*scheduler.AuditCleanupScheduler)(nil)
