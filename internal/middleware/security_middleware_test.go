package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeadersMiddleware("https://cdn.example.com/uploads"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "SAMEORIGIN",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("expected %s=%q, got %q", header, want, got)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must only be sent over TLS")
	}

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "img-src 'self' data: https://cdn.example.com;") {
		t.Fatalf("media origin missing from policy: %q", csp)
	}
}

func TestContentSecurityPolicyWithoutMediaOrigin(t *testing.T) {
	if origin := mediaOrigin("/uploads"); origin != "" {
		t.Fatalf("relative base must not yield an origin, got %q", origin)
	}
	csp := contentSecurityPolicy("")
	if !strings.Contains(csp, "media-src 'self' data:;") {
		t.Fatalf("unexpected policy: %q", csp)
	}
}
