package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFMiddleware creates a Gin middleware for CSRF protection. Safe methods
// (GET, HEAD, OPTIONS, TRACE) pass through; mutating requests must carry the
// token issued alongside the session cookie.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Expose the token so handlers can echo it to clients.
			// Session middleware runs after this and layers its context on top.
			c.Set("csrf_token", csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"success":false,"error":"CSRF token invalid or missing"}`))
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get("csrf_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
