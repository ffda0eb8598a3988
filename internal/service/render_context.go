package service

import (
	"github.com/Owhab/nexacms-sub003/pkg/media"
	"github.com/Owhab/nexacms-sub003/pkg/validator"
)

// SiteRenderContext supplies the site-wide services section implementations render with:
// rich-text sanitizing and media URL resolution.
type SiteRenderContext struct {
	resolver *media.Resolver
}

func NewSiteRenderContext(resolver *media.Resolver) *SiteRenderContext {
	return &SiteRenderContext{resolver: resolver}
}

func (c *SiteRenderContext) SanitizeHTML(html string) string {
	return validator.SanitizeHTML(html)
}

func (c *SiteRenderContext) ResolveMediaURL(ref string) string {
	var resolver *media.Resolver
	if c != nil {
		resolver = c.resolver
	}
	return resolver.Resolve(ref)
}
