package auth

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak URLs to external sites
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// The API serves JSON and inline PDFs; nothing may frame or script it
		c.Header("Content-Security-Policy",
			"default-src 'none'; "+
				"img-src 'self'; "+
				"object-src 'self'; "+
				"frame-ancestors 'none'")

		c.Next()
	}
}

// StrictTransportSecurityMiddleware adds HSTS header for HTTPS-only access.
// Only enable this when serving over HTTPS, as it will break HTTP access.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security",
				"max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
