// Package media turns stored media references into public URLs.
package media

import (
	"net/url"
	"strings"
)

// Resolver prefixes site-relative media references with a public base URL such as a CDN
// origin. Absolute URLs pass through unchanged.
type Resolver struct {
	base *url.URL
}

// NewResolver parses baseURL. An empty baseURL leaves references site-relative.
func NewResolver(baseURL string) (*Resolver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return &Resolver{}, nil
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, err
	}
	return &Resolver{base: base}, nil
}

// Resolve returns the public URL of ref. Unsupported schemes resolve to "".
func (r *Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return ref
	case strings.HasPrefix(lower, "//"):
		return "https:" + ref
	case strings.HasPrefix(lower, "data:image/"):
		return ref
	}
	if parsed, err := url.Parse(ref); err != nil || parsed.Scheme != "" {
		return ""
	}

	// Theme assets are always served by the application itself.
	if r == nil || r.base == nil || strings.HasPrefix(ref, "/static/") {
		if !strings.HasPrefix(ref, "/") {
			return "/" + ref
		}
		return ref
	}

	rel, err := url.Parse(strings.TrimLeft(ref, "/"))
	if err != nil {
		return ""
	}
	return r.base.ResolveReference(rel).String()
}
