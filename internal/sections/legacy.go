package sections

import (
	"strings"
	"sync"
)

// Legacy type ids. These predate the variant families and keep flat property bags.
const (
	TypeHero      = "hero"
	TypeParagraph = "paragraph"
	TypeImage     = "image"
	TypeList      = "list"
	TypeFeatures  = "features"
)

// legacyComponents are compiled in and always available synchronously.
var legacyComponents = map[string]ComponentFunc{
	TypeHero:      renderLegacyHero,
	TypeParagraph: renderParagraph,
	TypeImage:     renderImage,
	TypeList:      renderList,
	TypeFeatures:  renderFeatures,
}

// IsLegacyType reports whether id is one of the static, non-variant types.
func IsLegacyType(id string) bool {
	_, ok := legacyComponents[normaliseTypeID(id)]
	return ok
}

var (
	legacySchemasOnce sync.Once
	legacySchemas     map[string]*EditorSchema
)

// LegacySchema returns the editor schema of a static type, or nil.
func LegacySchema(id string) *EditorSchema {
	legacySchemasOnce.Do(func() {
		legacySchemas = map[string]*EditorSchema{
			TypeHero: MustEditorSchema(TypeHero, []EditorSection{{
				ID: "content", Title: "Content", Collapsible: true, DefaultExpanded: true,
				Fields: []Field{
					{ID: "title", Label: "Title", Type: FieldText, Required: true, DefaultValue: "Welcome to Our Platform"},
					{ID: "subtitle", Label: "Subtitle", Type: FieldText, DefaultValue: "Discover amazing features and possibilities"},
					{ID: "text", Label: "Text", Type: FieldTextarea},
					{ID: "image_url", Label: "Image", Type: FieldImage, Required: true, DefaultValue: "/static/placeholders/hero-media.jpg"},
					{ID: "image_alt", Label: "Image alt", Type: FieldText, DefaultValue: "Hero image"},
					{ID: "button_text", Label: "Button text", Type: FieldText, DefaultValue: "Get started"},
					{ID: "button_url", Label: "Button link", Type: FieldURL, Required: true, DefaultValue: "/"},
				},
			}}, nil),
			TypeParagraph: MustEditorSchema(TypeParagraph, []EditorSection{{
				ID: "content", Title: "Content", DefaultExpanded: true,
				Fields: []Field{
					{ID: "text", Label: "Text", Type: FieldTextarea, Required: true, DefaultValue: "Write something here."},
				},
			}}, nil),
			TypeImage: MustEditorSchema(TypeImage, []EditorSection{{
				ID: "content", Title: "Image", DefaultExpanded: true,
				Fields: []Field{
					{ID: "url", Label: "Image", Type: FieldImage, Required: true, DefaultValue: "/static/placeholders/image.jpg"},
					{ID: "alt", Label: "Alternative text", Type: FieldText},
					{ID: "caption", Label: "Caption", Type: FieldText},
				},
			}}, nil),
			TypeList: MustEditorSchema(TypeList, []EditorSection{{
				ID: "content", Title: "List", DefaultExpanded: true,
				Fields: []Field{
					{ID: "items.0", Label: "First item", Type: FieldText, Required: true, DefaultValue: "First item"},
					{ID: "items.1", Label: "Second item", Type: FieldText},
					{ID: "items.2", Label: "Third item", Type: FieldText},
					{ID: "ordered", Label: "Numbered", Type: FieldBoolean, DefaultValue: false},
				},
			}}, nil),
			TypeFeatures: MustEditorSchema(TypeFeatures, []EditorSection{{
				ID: "content", Title: "Features", DefaultExpanded: true,
				Fields: []Field{
					{ID: "items.0.title", Label: "Feature title", Type: FieldText, DefaultValue: "Fast"},
					{ID: "items.0.text", Label: "Feature text", Type: FieldTextarea, Required: true, DefaultValue: "Pages load in milliseconds."},
					{ID: "items.0.image_url", Label: "Feature image", Type: FieldImage},
					{ID: "items.1.title", Label: "Feature title", Type: FieldText},
					{ID: "items.1.text", Label: "Feature text", Type: FieldTextarea},
					{ID: "items.1.image_url", Label: "Feature image", Type: FieldImage},
				},
			}}, nil),
		}
	})
	return legacySchemas[normaliseTypeID(id)]
}

func renderLegacyHero(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	title := propString(props, "title")
	imageURL := propString(props, "image_url")
	if title == "" || imageURL == "" {
		return "", nil
	}

	subtitle := propString(props, "subtitle")
	text := propString(props, "text")
	imageAlt := propString(props, "image_alt")
	if imageAlt == "" {
		imageAlt = "Hero image"
	}
	buttonText := propString(props, "button_text")
	if buttonText == "" {
		buttonText = "Get started"
	}
	buttonURL := propString(props, "button_url")
	if buttonURL == "" {
		buttonURL = "/"
	}

	prefix := in.Prefix
	var sb strings.Builder
	sb.WriteString(`<div class="` + className(prefix, "hero") + `">`)
	sb.WriteString(`<div class="` + className(prefix, "hero-container") + `">`)
	sb.WriteString(`<div class="` + className(prefix, "hero-content") + `">`)
	sb.WriteString(`<h1 class="` + className(prefix, "hero-title") + `">` + ctx.SanitizeHTML(title) + `</h1>`)
	if subtitle != "" {
		sb.WriteString(`<h2 class="` + className(prefix, "hero-subtitle") + `">` + ctx.SanitizeHTML(subtitle) + `</h2>`)
	}
	if text != "" {
		sb.WriteString(`<p class="` + className(prefix, "hero-text") + `">` + ctx.SanitizeHTML(text) + `</p>`)
	}
	sb.WriteString(`<a href="` + escape(buttonURL) + `" class="` + className(prefix, "hero-button") + `">` + escape(buttonText) + `</a>`)
	sb.WriteString(`</div>`)
	sb.WriteString(`<div class="` + className(prefix, "hero-image") + `">`)
	sb.WriteString(`<img class="` + className(prefix, "hero-image-img") + `" src="` + escape(ctx.ResolveMediaURL(imageURL)) + `" alt="` + escape(imageAlt) + `" />`)
	sb.WriteString(`</div></div></div>`)
	return sb.String(), nil
}

func renderParagraph(ctx RenderContext, in RenderInput) (string, []string) {
	text := propString(in.Properties, "text")
	if text == "" {
		return "", nil
	}
	return `<p class="` + className(in.Prefix, "paragraph") + `">` + ctx.SanitizeHTML(text) + `</p>`, nil
}

func renderImage(ctx RenderContext, in RenderInput) (string, []string) {
	url := propString(in.Properties, "url")
	if url == "" {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(`<figure class="` + className(in.Prefix, "image") + `">`)
	sb.WriteString(`<img class="` + className(in.Prefix, "image-img") + `" src="` + escape(ctx.ResolveMediaURL(url)) +
		`" alt="` + escape(propString(in.Properties, "alt")) + `" />`)
	if caption := propString(in.Properties, "caption"); caption != "" {
		sb.WriteString(`<figcaption class="` + className(in.Prefix, "image-caption") + `">` + ctx.SanitizeHTML(caption) + `</figcaption>`)
	}
	sb.WriteString(`</figure>`)
	return sb.String(), nil
}

func renderList(ctx RenderContext, in RenderInput) (string, []string) {
	items := make([]string, 0)
	for _, raw := range propList(in.Properties, "items") {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(str); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return "", nil
	}

	listTag := "ul"
	listClass := className(in.Prefix, "list")
	if propBool(in.Properties, "ordered", false) {
		listTag = "ol"
		listClass += " " + listClass + "--ordered"
	}

	itemClass := className(in.Prefix, "list-item")
	var sb strings.Builder
	sb.WriteString(`<` + listTag + ` class="` + listClass + `">`)
	for _, item := range items {
		sb.WriteString(`<li class="` + itemClass + `">` + ctx.SanitizeHTML(item) + `</li>`)
	}
	sb.WriteString(`</` + listTag + `>`)
	return sb.String(), nil
}

func renderFeatures(ctx RenderContext, in RenderInput) (string, []string) {
	var items []string
	for _, raw := range propList(in.Properties, "items") {
		content, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if html := renderFeatureItem(ctx, in.Prefix, content); html != "" {
			items = append(items, html)
		}
	}
	if len(items) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(`<div class="` + className(in.Prefix, "features") + `">`)
	sb.WriteString(`<div class="` + className(in.Prefix, "features-list") + `">`)
	for _, item := range items {
		sb.WriteString(item)
	}
	sb.WriteString(`</div></div>`)
	return sb.String(), nil
}

func renderFeatureItem(ctx RenderContext, prefix string, content map[string]interface{}) string {
	title := strings.TrimSpace(getString(content, "title"))
	text := strings.TrimSpace(getString(content, "text"))
	imageURL := strings.TrimSpace(getString(content, "image_url"))
	imageAlt := strings.TrimSpace(getString(content, "image_alt"))
	if text == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<article class="` + className(prefix, "feature-item") + `">`)
	if imageURL != "" {
		alt := imageAlt
		if alt == "" {
			alt = text
		}
		sb.WriteString(`<div class="` + className(prefix, "feature-media") + `">`)
		sb.WriteString(`<img class="` + className(prefix, "feature-image") + `" src="` + escape(ctx.ResolveMediaURL(imageURL)) + `" alt="` + escape(alt) + `" />`)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`<div class="` + className(prefix, "feature-body") + `">`)
	if title != "" {
		sb.WriteString(`<h3 class="` + className(prefix, "feature-title") + `">` + escape(title) + `</h3>`)
	}
	sb.WriteString(`<p class="` + className(prefix, "feature-text") + `">` + ctx.SanitizeHTML(text) + `</p>`)
	sb.WriteString(`</div></article>`)
	return sb.String()
}
