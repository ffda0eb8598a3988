package migration

import (
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
)

type object = map[string]interface{}

type adapter func(l *legacyHero) models.Properties

// defaultAdapters maps every hero variant to the function that builds its shape.
func defaultAdapters() map[sections.Variant]adapter {
	return map[sections.Variant]adapter{
		sections.VariantCentered:    baseline,
		sections.VariantSplitScreen: adaptSplitScreen,
		sections.VariantVideo:       adaptVideo,
		sections.VariantMinimal:     adaptMinimal,
		sections.VariantCTA:         adaptCTA,
		sections.VariantGallery:     adaptGallery,
		sections.VariantGradient:    adaptGradient,
		sections.VariantProduct:     adaptProduct,
		sections.VariantTestimonial: adaptTestimonial,
		sections.VariantFeature:     adaptFeature,
	}
}

// baseline produces the centered shape every other adapter starts from.
func baseline(l *legacyHero) models.Properties {
	props := models.Properties{"title": l.title()}
	put(props, "subtitle", l.subtitle())
	put(props, "primaryButton", l.primaryButton(""))
	put(props, "secondaryButton", l.secondaryButton())
	props["background"] = l.background()
	props["textAlign"] = l.textAlign("center")
	put(props, "layout", l.layout())
	put(props, "colors", l.colors())
	return props
}

func adaptSplitScreen(l *legacyHero) models.Properties {
	media := object{"type": "image", "url": l.str(attrBackgroundImage)}
	if media["url"] == "" {
		if video := l.str(attrVideoURL); video != "" {
			media = object{"type": "video", "url": video}
		}
	}
	if alt := l.str(attrImageAlt); alt != "" {
		media["alt"] = alt
	}

	props := models.Properties{
		"content": l.content(true),
		"media":   media,
		"layout":  object{"mediaPosition": "right", "textAlign": l.textAlign("left")},
	}
	if color := l.str(attrBackgroundColor); color != "" {
		props["background"] = object{"color": color}
	}
	return props
}

func adaptVideo(l *legacyHero) models.Properties {
	video := object{
		"url":      l.str(attrVideoURL),
		"autoplay": true,
		"muted":    true,
		"loop":     true,
		"controls": false,
	}
	if poster := l.str(attrBackgroundImage); poster != "" {
		video["poster"] = poster
	}

	opacity, ok := l.num(attrOverlayOpacity)
	if !ok {
		opacity = 0.4
	}
	overlay := object{"enabled": true, "color": "#000000", "opacity": opacity}
	if color := l.str(attrBackgroundColor); color != "" {
		overlay["color"] = color
	}

	return models.Properties{
		"content":   l.content(false),
		"video":     video,
		"overlay":   overlay,
		"textAlign": l.textAlign("center"),
	}
}

func adaptMinimal(l *legacyHero) models.Properties {
	props := models.Properties{"title": l.title()}
	put(props, "subtitle", l.subtitle())
	put(props, "primaryButton", l.primaryButton(""))
	props["textAlign"] = l.textAlign("center")
	put(props, "layout", l.layout())
	put(props, "colors", l.colors())
	return props
}

func adaptCTA(l *legacyHero) models.Properties {
	props := baseline(l)
	props["primaryButton"] = l.primaryButton("Get Started")
	props["urgency"] = object{"enabled": false}
	return props
}

func adaptGallery(l *legacyHero) models.Properties {
	var images []interface{}
	if url := l.str(attrBackgroundImage); url != "" {
		image := object{"url": url}
		if alt := l.str(attrImageAlt); alt != "" {
			image["alt"] = alt
		}
		images = append(images, image)
	}

	props := models.Properties{
		"content": l.content(false),
		"layout":  object{"style": "grid", "autoplay": false},
	}
	if images != nil {
		props["images"] = images
	}
	return props
}

func adaptGradient(l *legacyHero) models.Properties {
	from := l.str(attrBackgroundColor)
	if from == "" {
		from = "#6366f1"
	}

	props := models.Properties{
		"title":      l.title(),
		"background": object{"gradient": object{"from": from, "to": "#ec4899", "direction": "to-right"}},
		"textAlign":  l.textAlign("center"),
	}
	put(props, "subtitle", l.subtitle())
	put(props, "primaryButton", l.primaryButton(""))
	put(props, "secondaryButton", l.secondaryButton())
	put(props, "layout", l.layout())
	put(props, "colors", l.colors())
	return props
}

func adaptProduct(l *legacyHero) models.Properties {
	product := object{"image": l.str(attrBackgroundImage)}
	if title := l.str(attrTitle); title != "" {
		product["name"] = title
	}
	return models.Properties{
		"content": l.content(true),
		"product": product,
		"layout":  object{"imagePosition": "right"},
	}
}

func adaptTestimonial(l *legacyHero) models.Properties {
	testimonial := object{"quote": l.str(attrQuote)}
	if author := l.str(attrAuthor); author != "" {
		testimonial["author"] = author
	}

	props := models.Properties{
		"title":       l.title(),
		"testimonial": testimonial,
		"background":  l.background(),
	}
	put(props, "subtitle", l.subtitle())
	put(props, "primaryButton", l.primaryButton(""))
	return props
}

func adaptFeature(l *legacyHero) models.Properties {
	props := models.Properties{
		"title":  l.title(),
		"layout": object{"columns": "3"},
	}
	put(props, "subtitle", l.subtitle())
	put(props, "primaryButton", l.primaryButton(""))

	var features []interface{}
	for i, item := range l.list(attrFeatures) {
		feature := featureItem(item)
		if feature == nil {
			l.warn("Feature item %d (%v) has no title, description or icon and was dropped", i+1, item)
			continue
		}
		features = append(features, feature)
	}
	if features != nil {
		props["features"] = features
	}
	return props
}

func featureItem(item interface{}) object {
	switch v := item.(type) {
	case string:
		if text := strings.TrimSpace(v); text != "" {
			return object{"title": text}
		}
	case map[string]interface{}:
		feature := object{}
		for _, key := range []string{"title", "description", "icon"} {
			if text, ok := v[key].(string); ok && strings.TrimSpace(text) != "" {
				feature[key] = strings.TrimSpace(text)
			}
		}
		if text, ok := v["text"].(string); ok && feature["description"] == nil && strings.TrimSpace(text) != "" {
			feature["description"] = strings.TrimSpace(text)
		}
		if len(feature) > 0 {
			return feature
		}
	}
	return nil
}

func (l *legacyHero) title() object {
	return object{"text": l.str(attrTitle), "tag": "h1"}
}

// subtitle joins subtitle and description so neither is lost.
func (l *legacyHero) subtitle() object {
	parts := make([]string, 0, 2)
	for _, name := range []string{attrSubtitle, attrDescription} {
		if text := l.str(name); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return object{"text": strings.Join(parts, "\n\n")}
}

func (l *legacyHero) primaryButton(fallback string) object {
	text := l.str(attrButtonText)
	if text == "" {
		text = fallback
	}
	if text == "" {
		return nil
	}
	url := l.str(attrButtonLink)
	if url == "" {
		url = "#"
	}
	return object{"text": text, "url": url}
}

func (l *legacyHero) secondaryButton() object {
	text := l.str(attrSecondaryText)
	if text == "" {
		return nil
	}
	url := l.str(attrSecondaryLink)
	if url == "" {
		url = "#"
	}
	return object{"text": text, "url": url}
}

func (l *legacyHero) background() object {
	bg := object{"type": "none"}
	if color := l.str(attrBackgroundColor); color != "" {
		bg["type"] = "color"
		bg["color"] = color
	}
	if image := l.str(attrBackgroundImage); image != "" {
		bg["type"] = "image"
		bg["image"] = image
		if opacity, ok := l.num(attrOverlayOpacity); ok {
			bg["overlayOpacity"] = opacity
		}
	}
	return bg
}

// content nests the headline and buttons the way split layouts expect them.
func (l *legacyHero) content(secondary bool) object {
	content := object{"title": l.title()}
	if sub := l.subtitle(); sub != nil {
		content["subtitle"] = sub
	}
	if btn := l.primaryButton(""); btn != nil {
		content["primaryButton"] = btn
	}
	if secondary {
		if btn := l.secondaryButton(); btn != nil {
			content["secondaryButton"] = btn
		}
	}
	return content
}

// textAlign returns the legacy alignment. readLegacy only keeps left, center or right.
func (l *legacyHero) textAlign(fallback string) string {
	if align := l.str(attrTextAlign); align != "" {
		return align
	}
	return fallback
}

func (l *legacyHero) layout() object {
	if height := l.str(attrHeight); height != "" {
		return object{"height": height}
	}
	return nil
}

func (l *legacyHero) colors() object {
	if color := l.str(attrTextColor); color != "" {
		return object{"text": color}
	}
	return nil
}

func put(props models.Properties, key string, value object) {
	if value != nil {
		props[key] = value
	}
}
