package sections

import (
	"fmt"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

// heroComponents holds the storefront implementation of every hero variant.
var heroComponents = map[Variant]ComponentFunc{
	VariantCentered:    renderHeroCentered,
	VariantSplitScreen: renderHeroSplitScreen,
	VariantVideo:       renderHeroVideo,
	VariantMinimal:     renderHeroMinimal,
	VariantCTA:         renderHeroCTA,
	VariantGallery:     renderHeroGallery,
	VariantGradient:    renderHeroGradient,
	VariantProduct:     renderHeroProduct,
	VariantTestimonial: renderHeroTestimonial,
	VariantFeature:     renderHeroFeature,
}

func openHero(sb *strings.Builder, prefix string, variant Variant, align, style string) {
	classes := className(prefix, "hero") + " " + className(prefix, "hero--"+string(variant))
	if align != "" {
		classes += " " + className(prefix, "hero--align-"+align)
	}
	sb.WriteString(`<section class="` + classes + `" data-variant="` + string(variant) + `"`)
	if style != "" {
		sb.WriteString(` style="` + escape(style) + `"`)
	}
	sb.WriteString(`>`)
}

func backgroundStyle(ctx RenderContext, props models.Properties, base string) string {
	var parts []string
	switch propString(props, base+"type") {
	case "color":
		if color := propString(props, base+"color"); color != "" {
			parts = append(parts, "background-color:"+color)
		}
	case "image":
		if image := propString(props, base+"image"); image != "" {
			parts = append(parts, fmt.Sprintf("background-image:url('%s')", ctx.ResolveMediaURL(image)))
		}
	case "gradient":
		from := propString(props, base+"gradient.from")
		to := propString(props, base+"gradient.to")
		if from != "" && to != "" {
			direction := strings.ReplaceAll(propString(props, base+"gradient.direction"), "-", " ")
			if direction == "" {
				direction = "to right"
			}
			parts = append(parts, fmt.Sprintf("background-image:linear-gradient(%s,%s,%s)", direction, from, to))
		}
	}
	if color := propString(props, "colors.text"); color != "" {
		parts = append(parts, "color:"+color)
	}
	return strings.Join(parts, ";")
}

func writeOverlay(sb *strings.Builder, prefix, color string, opacity float64) {
	if color == "" {
		color = "#000000"
	}
	sb.WriteString(`<div class="` + className(prefix, "hero-overlay") + `" style="background-color:` + escape(color) +
		`;opacity:` + formatOpacity(opacity) + `"></div>`)
}

func renderHeroCentered(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "title.text") == "" {
		return "", nil
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantCentered, normalizeAlign(propString(props, "textAlign"), "center"), backgroundStyle(ctx, props, "background."))
	if propString(props, "background.type") == "image" && propString(props, "background.image") != "" {
		writeOverlay(&sb, in.Prefix, "", propFloat(props, "background.overlayOpacity", 0.5))
	}
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroSplitScreen(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "content.title.text") == "" {
		return "", nil
	}

	position := propString(props, "layout.mediaPosition")
	if position != "left" {
		position = "right"
	}
	style := ""
	if color := propString(props, "background.color"); color != "" {
		style = "background-color:" + color
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantSplitScreen, normalizeAlign(propString(props, "layout.textAlign"), "left"), style)
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-split") + " " + className(in.Prefix, "hero-split--media-"+position) + `">`)

	content := func() {
		sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
		writeHeadline(&sb, ctx, in.Prefix, props, "content.")
		writeButtons(&sb, in.Prefix, props, "content.")
		sb.WriteString(`</div>`)
	}
	media := func() {
		url := propString(props, "media.url")
		if url == "" {
			return
		}
		sb.WriteString(`<div class="` + className(in.Prefix, "hero-media") + `">`)
		if propString(props, "media.type") == "video" {
			sb.WriteString(`<video class="` + className(in.Prefix, "hero-media-video") + `" src="` + escape(ctx.ResolveMediaURL(url)) + `" muted playsinline loop autoplay></video>`)
		} else {
			sb.WriteString(`<img class="` + className(in.Prefix, "hero-media-img") + `" src="` + escape(ctx.ResolveMediaURL(url)) +
				`" alt="` + escape(propString(props, "media.alt")) + `" loading="lazy" />`)
		}
		sb.WriteString(`</div>`)
	}

	if position == "left" {
		media()
		content()
	} else {
		content()
		media()
	}
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroVideo(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "content.title.text") == "" {
		return "", nil
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantVideo, normalizeAlign(propString(props, "textAlign"), "center"), "")

	if url := propString(props, "video.url"); url != "" {
		sb.WriteString(`<video class="` + className(in.Prefix, "hero-video") + `" src="` + escape(ctx.ResolveMediaURL(url)) + `"`)
		if poster := propString(props, "video.poster"); poster != "" {
			sb.WriteString(` poster="` + escape(ctx.ResolveMediaURL(poster)) + `"`)
		}
		for _, flag := range []struct {
			path     string
			attr     string
			fallback bool
		}{
			{"video.autoplay", "autoplay", true},
			{"video.muted", "muted", true},
			{"video.loop", "loop", true},
			{"video.controls", "controls", false},
		} {
			if propBool(props, flag.path, flag.fallback) {
				sb.WriteString(" " + flag.attr)
			}
		}
		sb.WriteString(` playsinline></video>`)
	}
	if propBool(props, "overlay.enabled", true) {
		writeOverlay(&sb, in.Prefix, propString(props, "overlay.color"), propFloat(props, "overlay.opacity", 0.4))
	}

	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "content.")
	writeButtons(&sb, in.Prefix, props, "content.")
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroMinimal(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "title.text") == "" {
		return "", nil
	}

	style := ""
	if color := propString(props, "colors.text"); color != "" {
		style = "color:" + color
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantMinimal, normalizeAlign(propString(props, "textAlign"), "center"), style)
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</section>`)
	return sb.String(), nil
}

func renderHeroCTA(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "title.text") == "" || propString(props, "primaryButton.text") == "" {
		return "", nil
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantCTA, normalizeAlign(propString(props, "textAlign"), "center"), backgroundStyle(ctx, props, "background."))
	if propBool(props, "urgency.enabled", false) {
		if text := propString(props, "urgency.text"); text != "" {
			sb.WriteString(`<p class="` + className(in.Prefix, "hero-urgency") + `">` + escape(text) + `</p>`)
		}
	}
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroGallery(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "content.title.text") == "" {
		return "", nil
	}

	style := propString(props, "layout.style")
	switch style {
	case "grid", "carousel", "masonry":
	default:
		style = "grid"
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantGallery, "", "")
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "content.")
	writeButtons(&sb, in.Prefix, props, "content.")
	sb.WriteString(`</div>`)

	galleryClass := className(in.Prefix, "hero-gallery") + " " + className(in.Prefix, "hero-gallery--"+style)
	sb.WriteString(`<div class="` + galleryClass + `">`)
	for _, raw := range propList(props, "images") {
		image, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		url := strings.TrimSpace(getString(image, "url"))
		if url == "" {
			continue
		}
		sb.WriteString(`<img class="` + className(in.Prefix, "hero-gallery-img") + `" src="` + escape(ctx.ResolveMediaURL(url)) +
			`" alt="` + escape(getString(image, "alt")) + `" loading="lazy" />`)
	}
	sb.WriteString(`</div></section>`)

	var scripts []string
	if style == "carousel" && propBool(props, "layout.autoplay", false) {
		scripts = append(scripts, "/static/js/hero-carousel.js")
	}
	return sb.String(), scripts
}

func renderHeroGradient(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "title.text") == "" {
		return "", nil
	}

	bg := props.Clone()
	if propString(bg, "background.type") == "" {
		bg["background"] = mergeMap(bg["background"], map[string]interface{}{"type": "gradient"})
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantGradient, normalizeAlign(propString(props, "textAlign"), "center"), backgroundStyle(ctx, bg, "background."))
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroProduct(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	image := propString(props, "product.image")
	if propString(props, "content.title.text") == "" || image == "" {
		return "", nil
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantProduct, "left", "")
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	if badge := propString(props, "product.badge"); badge != "" {
		sb.WriteString(`<span class="` + className(in.Prefix, "hero-badge") + `">` + escape(badge) + `</span>`)
	}
	writeHeadline(&sb, ctx, in.Prefix, props, "content.")
	if price := propString(props, "product.price"); price != "" {
		sb.WriteString(`<p class="` + className(in.Prefix, "hero-price") + `">` + escape(price) + `</p>`)
	}
	writeButtons(&sb, in.Prefix, props, "content.")
	sb.WriteString(`</div>`)

	alt := propString(props, "product.name")
	if alt == "" {
		alt = propString(props, "content.title.text")
	}
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-product") + `">`)
	sb.WriteString(`<img class="` + className(in.Prefix, "hero-product-img") + `" src="` + escape(ctx.ResolveMediaURL(image)) + `" alt="` + escape(alt) + `" />`)
	sb.WriteString(`</div></section>`)
	return sb.String(), nil
}

func renderHeroTestimonial(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	quote := propString(props, "testimonial.quote")
	if propString(props, "title.text") == "" || quote == "" {
		return "", nil
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantTestimonial, "center", backgroundStyle(ctx, props, "background."))
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	sb.WriteString(`<figure class="` + className(in.Prefix, "hero-testimonial") + `">`)
	sb.WriteString(`<blockquote class="` + className(in.Prefix, "hero-quote") + `">` + ctx.SanitizeHTML(quote) + `</blockquote>`)
	author := propString(props, "testimonial.author")
	if author != "" {
		sb.WriteString(`<figcaption class="` + className(in.Prefix, "hero-author") + `">`)
		if avatar := propString(props, "testimonial.avatar"); avatar != "" {
			sb.WriteString(`<img class="` + className(in.Prefix, "hero-avatar") + `" src="` + escape(ctx.ResolveMediaURL(avatar)) + `" alt="` + escape(author) + `" />`)
		}
		sb.WriteString(escape(author))
		if role := propString(props, "testimonial.role"); role != "" {
			sb.WriteString(`, <span class="` + className(in.Prefix, "hero-author-role") + `">` + escape(role) + `</span>`)
		}
		sb.WriteString(`</figcaption>`)
	}
	sb.WriteString(`</figure>`)
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</section>`)
	return sb.String(), nil
}

func renderHeroFeature(ctx RenderContext, in RenderInput) (string, []string) {
	props := in.Properties
	if propString(props, "title.text") == "" {
		return "", nil
	}

	columns := propString(props, "layout.columns")
	switch columns {
	case "2", "3", "4":
	default:
		columns = "3"
	}

	var sb strings.Builder
	openHero(&sb, in.Prefix, VariantFeature, "center", "")
	sb.WriteString(`<div class="` + className(in.Prefix, "hero-content") + `">`)
	writeHeadline(&sb, ctx, in.Prefix, props, "")
	writeButtons(&sb, in.Prefix, props, "")
	sb.WriteString(`</div>`)

	var items strings.Builder
	for _, raw := range propList(props, "features") {
		feature, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		title := strings.TrimSpace(getString(feature, "title"))
		if title == "" {
			continue
		}
		items.WriteString(`<li class="` + className(in.Prefix, "hero-feature") + `">`)
		if icon := strings.TrimSpace(getString(feature, "icon")); icon != "" {
			items.WriteString(`<span class="` + className(in.Prefix, "hero-feature-icon") + `" data-icon="` + escape(icon) + `"></span>`)
		}
		items.WriteString(`<h3 class="` + className(in.Prefix, "hero-feature-title") + `">` + escape(title) + `</h3>`)
		if description := strings.TrimSpace(getString(feature, "description")); description != "" {
			items.WriteString(`<p class="` + className(in.Prefix, "hero-feature-text") + `">` + ctx.SanitizeHTML(description) + `</p>`)
		}
		items.WriteString(`</li>`)
	}
	if items.Len() > 0 {
		sb.WriteString(`<ul class="` + className(in.Prefix, "hero-features") + " " + className(in.Prefix, "hero-features--cols-"+columns) + `">`)
		sb.WriteString(items.String())
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</section>`)
	return sb.String(), nil
}

func mergeMap(existing interface{}, extra map[string]interface{}) map[string]interface{} {
	merged := map[string]interface{}{}
	if current, ok := existing.(map[string]interface{}); ok {
		for key, value := range current {
			merged[key] = value
		}
	}
	for key, value := range extra {
		merged[key] = value
	}
	return merged
}

func getString(content map[string]interface{}, key string) string {
	if content == nil {
		return ""
	}
	if value, ok := content[key]; ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}
