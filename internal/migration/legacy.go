package migration

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

type attrKind int

const (
	kindText attrKind = iota
	kindNumber
	kindList
	kindAlign
)

const (
	attrTitle           = "title"
	attrSubtitle        = "subtitle"
	attrDescription     = "description"
	attrButtonText      = "buttonText"
	attrButtonLink      = "buttonLink"
	attrSecondaryText   = "secondaryButtonText"
	attrSecondaryLink   = "secondaryButtonLink"
	attrBackgroundImage = "backgroundImage"
	attrImageAlt        = "imageAlt"
	attrBackgroundColor = "backgroundColor"
	attrTextColor       = "textColor"
	attrTextAlign       = "textAlign"
	attrHeight          = "height"
	attrOverlayOpacity  = "overlayOpacity"
	attrVideoURL        = "videoUrl"
	attrQuote           = "quote"
	attrAuthor          = "author"
	attrFeatures        = "features"
)

var attributes = []attribute{
	{attrTitle, "Title", kindText, []string{"title"}},
	{attrSubtitle, "Subtitle", kindText, []string{"subtitle"}},
	{attrDescription, "Description", kindText, []string{"description", "text"}},
	{attrButtonText, "Button text", kindText, []string{"buttonText", "button_text"}},
	{attrButtonLink, "Button link", kindText, []string{"buttonLink", "button_url", "buttonUrl"}},
	{attrSecondaryText, "Secondary button text", kindText, []string{"secondaryButtonText", "secondary_button_text"}},
	{attrSecondaryLink, "Secondary button link", kindText, []string{"secondaryButtonLink", "secondary_button_url"}},
	{attrBackgroundImage, "Background image", kindText, []string{"backgroundImage", "image_url", "background_image"}},
	{attrImageAlt, "Image alternative text", kindText, []string{"imageAlt", "image_alt"}},
	{attrBackgroundColor, "Background color", kindText, []string{"backgroundColor", "background_color"}},
	{attrTextColor, "Text color", kindText, []string{"textColor", "text_color"}},
	{attrTextAlign, "Text alignment", kindAlign, []string{"textAlign", "text_align"}},
	{attrHeight, "Height", kindText, []string{"height"}},
	{attrOverlayOpacity, "Overlay opacity", kindNumber, []string{"overlayOpacity", "overlay_opacity"}},
	{attrVideoURL, "Video URL", kindText, []string{"videoUrl", "video_url", "videoURL"}},
	{attrQuote, "Quote", kindText, []string{"quote", "testimonial"}},
	{attrAuthor, "Author", kindText, []string{"author"}},
	{attrFeatures, "Features", kindList, []string{"features", "items"}},
}

// droppedKeys never have a destination in any hero variant.
var droppedKeys = map[string]string{
	"customCss":         "Custom CSS",
	"customCSS":         "Custom CSS",
	"animation":         "Animation",
	"animationDuration": "Animation duration",
}

// legacyHero is a normalised read of a flat legacy property bag. Every getter marks the
// attribute as placed so values with no destination in the target can be reported.
type legacyHero struct {
	values map[string]interface{}
	used   map[string]bool
	notes  []string
}

// readLegacy normalises props and returns a warning for every present key whose value cannot
// be carried over. The first alias with a readable value wins.
func readLegacy(props models.Properties) (*legacyHero, []string) {
	l := &legacyHero{values: make(map[string]interface{}), used: make(map[string]bool)}
	known := make(map[string]bool)
	var warnings []string

	for _, attr := range attributes {
		winner := ""
		for _, key := range attr.keys {
			raw, ok := props[key]
			if !ok {
				continue
			}
			known[key] = true
			value, ok := normalise(attr.kind, raw)
			if !ok {
				if !blank(raw) {
					warnings = append(warnings, fmt.Sprintf("%s (%s) has an unsupported value %v and was dropped", attr.label, key, raw))
				}
				continue
			}
			if winner != "" {
				if !reflect.DeepEqual(l.values[attr.name], value) {
					warnings = append(warnings, fmt.Sprintf("%s (%s) conflicts with %s and was dropped", attr.label, key, winner))
				}
				continue
			}
			winner = key
			l.values[attr.name] = value
		}
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		if !known[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if label, ok := droppedKeys[key]; ok {
			warnings = append(warnings, fmt.Sprintf("%s (%s) is not supported by hero variants and was dropped", label, key))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Unknown property %q was dropped", key))
	}
	return l, warnings
}

func normalise(kind attrKind, raw interface{}) (interface{}, bool) {
	switch kind {
	case kindNumber:
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			return f, err == nil
		}
	case kindList:
		list, ok := raw.([]interface{})
		return list, ok && len(list) > 0
	case kindAlign:
		text, _ := raw.(string)
		switch align := strings.ToLower(strings.TrimSpace(text)); align {
		case "left", "center", "right":
			return align, true
		}
	default:
		var text string
		switch v := raw.(type) {
		case string:
			text = v
		case float64:
			text = strconv.FormatFloat(v, 'f', -1, 64)
		case map[string]interface{}:
			// Partially migrated bags store {"text": "..."}.
			text, _ = v["text"].(string)
		}
		text = strings.TrimSpace(text)
		return text, text != ""
	}
	return nil, false
}

// blank reports values that carry no content, so dropping them needs no warning.
func blank(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// warn records a value an adapter could not place.
func (l *legacyHero) warn(format string, args ...interface{}) {
	l.notes = append(l.notes, fmt.Sprintf(format, args...))
}

func (l *legacyHero) has(name string) bool {
	_, ok := l.values[name]
	return ok
}

// peek reads a text attribute without marking it placed.
func (l *legacyHero) peek(name string) string {
	value, _ := l.values[name].(string)
	return value
}

func (l *legacyHero) str(name string) string {
	value, ok := l.values[name].(string)
	if ok {
		l.used[name] = true
	}
	return value
}

func (l *legacyHero) num(name string) (float64, bool) {
	value, ok := l.values[name].(float64)
	if ok {
		l.used[name] = true
	}
	return value, ok
}

func (l *legacyHero) list(name string) []interface{} {
	value, ok := l.values[name].([]interface{})
	if ok {
		l.used[name] = true
	}
	return value
}

// lost reports attributes that were present but not placed into typeID's shape.
func (l *legacyHero) lost(typeID string) []string {
	var warnings []string
	for _, attr := range attributes {
		if l.has(attr.name) && !l.used[attr.name] {
			warnings = append(warnings, fmt.Sprintf("%s has no equivalent in %s and was dropped", attr.label, typeID))
		}
	}
	return warnings
}
