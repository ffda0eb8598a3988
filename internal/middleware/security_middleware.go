package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the response hardening headers. Rendered
// sections carry inline styles and load media from mediaBaseURL, so the
// content policy admits both.
func SecurityHeadersMiddleware(mediaBaseURL string) gin.HandlerFunc {
	policy := contentSecurityPolicy(mediaOrigin(mediaBaseURL))

	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Header("Content-Security-Policy", policy)
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

func mediaOrigin(base string) string {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

func contentSecurityPolicy(origin string) string {
	media := "'self' data:"
	if origin != "" {
		media += " " + origin
	}
	directives := []string{
		"default-src 'self'",
		"img-src " + media,
		"media-src " + media,
		"style-src 'self' 'unsafe-inline'",
		"object-src 'none'",
		"base-uri 'self'",
		"frame-ancestors 'self'",
	}
	return strings.Join(directives, "; ")
}
