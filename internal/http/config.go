package http

import (
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	"github.com/openshelf/openshelf/internal/database/authors"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/readers"
	"github.com/openshelf/openshelf/internal/reports"
	"github.com/openshelf/openshelf/internal/scheduler"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Repositories
	Books   *books.Repository
	Authors *authors.Repository
	Readers *readers.Repository
	Loans   *loans.Repository

	// Loan lifecycle
	Circulation *circulation.Service

	// Reports
	ReportGenerator *reports.Generator

	// Authentication (all nil-able for tests)
	AuthService      *auth.Service
	AuthMiddleware   *auth.Middleware
	SessionManager   *auth.SessionManager
	LoginRateLimiter *auth.RateLimiter
	CSRFSecret       []byte
	SecureCookies    bool

	// Availability audit trigger (optional)
	AuditScheduler *scheduler.AvailabilityAuditScheduler

	// Application info
	Version string
}
