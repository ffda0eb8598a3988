package sections

import "github.com/Owhab/nexacms-sub003/internal/models"

// RenderContext exposes the minimal capabilities required by section components.
type RenderContext interface {
	// SanitizeHTML should clean potentially unsafe markup before rendering.
	SanitizeHTML(input string) string
	// ResolveMediaURL turns a stored media reference into a public URL.
	ResolveMediaURL(ref string) string
}

// RenderInput is what a component receives for one section instance.
type RenderInput struct {
	InstanceID  string
	TypeID      string
	DisplayName string
	Prefix      string
	Properties  models.Properties
	Schema      *EditorSchema
}

// Component renders one section into HTML output and optional scripts.
type Component interface {
	Render(ctx RenderContext, in RenderInput) (string, []string)
}

// ComponentFunc adapts a plain function to Component.
type ComponentFunc func(ctx RenderContext, in RenderInput) (string, []string)

func (f ComponentFunc) Render(ctx RenderContext, in RenderInput) (string, []string) {
	return f(ctx, in)
}
