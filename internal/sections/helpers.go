package sections

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/pkg/proppath"
)

func propString(props models.Properties, path string) string {
	return strings.TrimSpace(proppath.GetString(map[string]interface{}(props), path))
}

func propValue(props models.Properties, path string) interface{} {
	value, _ := proppath.Get(map[string]interface{}(props), path)
	return value
}

func propBool(props models.Properties, path string, fallback bool) bool {
	return parseBool(propValue(props, path), fallback)
}

func propFloat(props models.Properties, path string, fallback float64) float64 {
	if number, ok := toFloat(propValue(props, path)); ok {
		return number
	}
	return fallback
}

func propList(props models.Properties, path string) []interface{} {
	list, _ := propValue(props, path).([]interface{})
	return list
}

func parseBool(value interface{}, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(strings.ToLower(v))
		if trimmed == "" {
			return fallback
		}
		switch trimmed {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		default:
			return fallback
		}
	default:
		return fallback
	}
}

func normalizeHeading(value, fallback string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	switch trimmed {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return trimmed
	default:
		return fallback
	}
}

func normalizeAlign(value, fallback string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	switch trimmed {
	case "left", "center", "right":
		return trimmed
	default:
		return fallback
	}
}

func className(prefix, element string) string {
	return fmt.Sprintf("%s__%s", prefix, element)
}

func escape(value string) string {
	return template.HTMLEscapeString(value)
}

func formatOpacity(value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// writeButton renders a call-to-action link when text is present.
func writeButton(sb *strings.Builder, class string, props models.Properties, path string) {
	text := propString(props, path+".text")
	if text == "" {
		return
	}
	url := propString(props, path+".url")
	if url == "" {
		url = "#"
	}
	sb.WriteString(`<a href="` + escape(url) + `" class="` + class + `">`)
	sb.WriteString(escape(text))
	sb.WriteString(`</a>`)
}

// writeHeadline renders the title and optional subtitle found under base.
func writeHeadline(sb *strings.Builder, ctx RenderContext, prefix string, props models.Properties, base string) {
	title := propString(props, base+"title.text")
	if title != "" {
		tag := normalizeHeading(propString(props, base+"title.tag"), "h1")
		sb.WriteString(`<` + tag + ` class="` + className(prefix, "hero-title") + `">` + ctx.SanitizeHTML(title) + `</` + tag + `>`)
	}
	if subtitle := propString(props, base+"subtitle.text"); subtitle != "" {
		sb.WriteString(`<p class="` + className(prefix, "hero-subtitle") + `">` + ctx.SanitizeHTML(subtitle) + `</p>`)
	}
}

func writeButtons(sb *strings.Builder, prefix string, props models.Properties, base string) {
	primary := propString(props, base+"primaryButton.text")
	secondary := propString(props, base+"secondaryButton.text")
	if primary == "" && secondary == "" {
		return
	}
	sb.WriteString(`<div class="` + className(prefix, "hero-actions") + `">`)
	writeButton(sb, className(prefix, "hero-button"), props, base+"primaryButton")
	writeButton(sb, className(prefix, "hero-button")+" "+className(prefix, "hero-button--secondary"), props, base+"secondaryButton")
	sb.WriteString(`</div>`)
}
