package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// AdminAPIPath prefixes every session protected route.
	AdminAPIPath = "/api/admin"

	// PublicAPIPath prefixes the storefront routes.
	PublicAPIPath = "/api/public"

	// ErrNilACDFatalLogMsg is used if app or cfg or site var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or site is nil"
)
