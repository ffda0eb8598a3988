package sections

import (
	"fmt"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

const editorScript = "/static/js/section-editor.js"

// editorComponent renders the authoring form generated from an editor schema.
func editorComponent(schema *EditorSchema) Component {
	return ComponentFunc(func(ctx RenderContext, in RenderInput) (string, []string) {
		active := in.Schema
		if active == nil {
			active = schema
		}
		if active == nil {
			return "", nil
		}
		return renderEditorForm(ctx, active, in), []string{editorScript}
	})
}

// previewComponent wraps a storefront component in read-only admin chrome.
func previewComponent(inner Component) Component {
	return ComponentFunc(func(ctx RenderContext, in RenderInput) (string, []string) {
		html, scripts := inner.Render(ctx, in)
		label := in.DisplayName
		if label == "" {
			label = in.TypeID
		}

		var sb strings.Builder
		sb.WriteString(`<div class="` + className(in.Prefix, "preview") + `" data-section-type="` + escape(in.TypeID) + `">`)
		sb.WriteString(`<div class="` + className(in.Prefix, "preview-label") + `">` + escape(label) + `</div>`)
		if html == "" {
			sb.WriteString(`<p class="` + className(in.Prefix, "preview-empty") + `">Nothing to display yet. Fill in the required fields to see a preview.</p>`)
		} else {
			sb.WriteString(html)
		}
		sb.WriteString(`</div>`)
		return sb.String(), scripts
	})
}

func renderEditorForm(ctx RenderContext, schema *EditorSchema, in RenderInput) string {
	props := in.Properties
	if props == nil {
		props = models.Properties{}
	}
	visible := schema.VisibleFields(props)
	errorsByField := make(map[string]string)
	for _, fe := range schema.Validate(props) {
		errorsByField[fe.Field] = fe.Message
	}

	var sb strings.Builder
	sb.WriteString(`<form class="` + className(in.Prefix, "editor") + `" data-section-id="` + escape(in.InstanceID) +
		`" data-section-type="` + escape(schema.TypeID) + `" novalidate>`)

	for _, section := range schema.Sections {
		open := ""
		if section.DefaultExpanded || !section.Collapsible {
			open = " open"
		}
		sb.WriteString(`<details class="` + className(in.Prefix, "editor-section") + `" data-section="` + escape(section.ID) + `"` + open + `>`)
		sb.WriteString(`<summary class="` + className(in.Prefix, "editor-section-title") + `"`)
		if section.Icon != "" {
			sb.WriteString(` data-icon="` + escape(section.Icon) + `"`)
		}
		sb.WriteString(`>` + escape(section.Title) + `</summary>`)

		for _, declared := range section.Fields {
			field, ok := schema.Field(declared.ID)
			if !ok {
				continue
			}
			writeEditorField(&sb, ctx, in.Prefix, field, propValue(props, field.ID), visible[field.ID], errorsByField[field.ID])
		}
		sb.WriteString(`</details>`)
	}

	sb.WriteString(`<div class="` + className(in.Prefix, "editor-actions") + `">`)
	sb.WriteString(`<button type="button" class="` + className(in.Prefix, "editor-cancel") + `" data-action="cancel">Cancel</button>`)
	sb.WriteString(`<button type="submit" class="` + className(in.Prefix, "editor-save") + `" data-action="save">Save</button>`)
	sb.WriteString(`</div></form>`)
	return sb.String()
}

func writeEditorField(sb *strings.Builder, ctx RenderContext, prefix string, field Field, value interface{}, visible bool, fieldErr string) {
	inputID := "field-" + strings.NewReplacer(".", "-", "[", "-", "]", "").Replace(field.ID)
	classes := className(prefix, "editor-field") + " " + className(prefix, "editor-field--"+string(field.Type))
	if fieldErr != "" {
		classes += " " + className(prefix, "editor-field--invalid")
	}

	sb.WriteString(`<div class="` + classes + `" data-field="` + escape(field.ID) + `"`)
	if len(field.Dependencies) > 0 {
		sb.WriteString(` data-depends-on="` + escape(strings.Join(field.Dependencies, " ")) + `"`)
	}
	if !visible {
		sb.WriteString(` hidden`)
	}
	sb.WriteString(`>`)

	label := escape(fieldLabel(field))
	if field.Required {
		label += ` <span class="` + className(prefix, "editor-required") + `">*</span>`
	}
	if field.Type != FieldBoolean {
		sb.WriteString(`<label for="` + inputID + `">` + label + `</label>`)
	}

	name := escape(field.ID)
	str := editorValue(value)
	required := ""
	if field.Required {
		required = " required"
	}

	switch field.Type {
	case FieldTextarea:
		sb.WriteString(`<textarea id="` + inputID + `" name="` + name + `"` + required + placeholderAttr(field) + `>` + escape(str) + `</textarea>`)
	case FieldBoolean:
		checked := ""
		if parseBool(value, false) {
			checked = " checked"
		}
		sb.WriteString(`<label for="` + inputID + `"><input type="checkbox" id="` + inputID + `" name="` + name + `"` + checked + ` /> ` + label + `</label>`)
	case FieldSelect:
		sb.WriteString(`<select id="` + inputID + `" name="` + name + `"` + required + `>`)
		for _, option := range field.Options {
			selected := ""
			if option.Value == str {
				selected = " selected"
			}
			sb.WriteString(`<option value="` + escape(option.Value) + `"` + selected + `>` + escape(option.Label) + `</option>`)
		}
		sb.WriteString(`</select>`)
	case FieldSlider:
		sb.WriteString(fmt.Sprintf(`<input type="range" id="%s" name="%s" min="%s" max="%s" step="%s" value="%s" />`,
			inputID, name, formatNumber(field.Min), formatNumber(field.Max), formatNumber(field.Step), escape(str)))
	case FieldColor:
		sb.WriteString(`<input type="color" id="` + inputID + `" name="` + name + `" value="` + escape(str) + `" />`)
	case FieldURL:
		sb.WriteString(`<input type="url" id="` + inputID + `" name="` + name + `" value="` + escape(str) + `"` + required + placeholderAttr(field) + ` />`)
	case FieldImage, FieldVideo:
		kind := string(field.Type)
		sb.WriteString(`<input type="text" id="` + inputID + `" name="` + name + `" value="` + escape(str) + `" data-media="` + kind + `"` + required + ` />`)
		if str != "" && field.Type == FieldImage {
			sb.WriteString(`<img class="` + className(prefix, "editor-media-preview") + `" src="` + escape(ctx.ResolveMediaURL(str)) + `" alt="" />`)
		}
	default:
		sb.WriteString(`<input type="text" id="` + inputID + `" name="` + name + `" value="` + escape(str) + `"` + required + placeholderAttr(field) + ` />`)
	}

	if field.HelpText != "" {
		sb.WriteString(`<small class="` + className(prefix, "editor-help") + `">` + escape(field.HelpText) + `</small>`)
	}
	if fieldErr != "" {
		sb.WriteString(`<p class="` + className(prefix, "editor-error") + `" role="alert">` + escape(fieldErr) + `</p>`)
	}
	sb.WriteString(`</div>`)
}

func placeholderAttr(field Field) string {
	if field.Placeholder == "" {
		return ""
	}
	return ` placeholder="` + escape(field.Placeholder) + `"`
}

func editorValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
