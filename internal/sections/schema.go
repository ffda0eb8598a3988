package sections

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/pkg/proppath"
)

// FieldType is the closed set of editor controls.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldURL      FieldType = "url"
	FieldBoolean  FieldType = "boolean"
	FieldSelect   FieldType = "select"
	FieldColor    FieldType = "color"
	FieldSlider   FieldType = "slider"
	FieldImage    FieldType = "image"
	FieldVideo    FieldType = "video"
)

func (t FieldType) isValid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldURL, FieldBoolean, FieldSelect, FieldColor, FieldSlider, FieldImage, FieldVideo:
		return true
	default:
		return false
	}
}

// RuleKind names a validation rule.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMaxLength RuleKind = "maxLength"
	RulePattern   RuleKind = "pattern"
)

// ValidationRule is one constraint on a field value.
type ValidationRule struct {
	Kind    RuleKind `json:"kind"`
	Value   int      `json:"value,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
	Message string   `json:"message"`

	re *regexp.Regexp
}

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is an editable property addressed by a dot path into the property bag.
type Field struct {
	ID              string           `json:"id"`
	Label           string           `json:"label"`
	Type            FieldType        `json:"type"`
	Required        bool             `json:"required"`
	Placeholder     string           `json:"placeholder,omitempty"`
	HelpText        string           `json:"help_text,omitempty"`
	Options         []Option         `json:"options,omitempty"`
	Min             float64          `json:"min,omitempty"`
	Max             float64          `json:"max,omitempty"`
	Step            float64          `json:"step,omitempty"`
	ValidationRules []ValidationRule `json:"validation_rules,omitempty"`
	DefaultValue    interface{}      `json:"default_value,omitempty"`
	Dependencies    []string         `json:"dependencies,omitempty"`
}

// EditorSection groups fields under a collapsible heading.
type EditorSection struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Icon            string  `json:"icon,omitempty"`
	Collapsible     bool    `json:"collapsible"`
	DefaultExpanded bool    `json:"default_expanded"`
	Fields          []Field `json:"fields"`
}

// Condition compares a dependency value.
type Condition string

const (
	ConditionEquals    Condition = "equals"
	ConditionNotEquals Condition = "not-equals"
)

// Action is what happens to the target field when a condition holds.
type Action string

const (
	ActionShow Action = "show"
	ActionHide Action = "hide"
)

// DependencyRule toggles the visibility of Field based on the value of DependsOn.
type DependencyRule struct {
	Field     string      `json:"field"`
	DependsOn string      `json:"depends_on"`
	Condition Condition   `json:"condition"`
	Value     interface{} `json:"value"`
	Action    Action      `json:"action"`
}

// EditorSchema is the immutable form description of a section type.
type EditorSchema struct {
	TypeID   string           `json:"type_id"`
	Sections []EditorSection  `json:"sections"`
	Rules    []DependencyRule `json:"rules,omitempty"`

	index      map[string]Field
	rulesFor   map[string][]DependencyRule
	evalOrder  []string
	fieldOrder []string
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// NewEditorSchema validates the declaration and builds the dependency graph. Duplicate
// ids, malformed controls, unknown dependencies and dependency cycles are construction errors.
func NewEditorSchema(typeID string, sectionsDef []EditorSection, rules []DependencyRule) (*EditorSchema, error) {
	schema := &EditorSchema{
		TypeID:   normaliseTypeID(typeID),
		index:    make(map[string]Field),
		rulesFor: make(map[string][]DependencyRule),
	}
	var problems []string
	graph := newDependencyGraph()

	for si, section := range sectionsDef {
		if strings.TrimSpace(section.ID) == "" {
			problems = append(problems, fmt.Sprintf("section %d: id is required", si))
		}
		for fi := range section.Fields {
			field := &section.Fields[fi]
			if err := compileField(field); err != nil {
				problems = append(problems, err.Error())
				continue
			}
			if _, exists := schema.index[field.ID]; exists {
				problems = append(problems, fmt.Sprintf("field %q is declared twice", field.ID))
				continue
			}
			schema.index[field.ID] = *field
			schema.fieldOrder = append(schema.fieldOrder, field.ID)
			graph.addNode(field.ID)
		}
		schema.Sections = append(schema.Sections, section)
	}

	for _, rule := range rules {
		if rule.Condition != ConditionEquals && rule.Condition != ConditionNotEquals {
			problems = append(problems, fmt.Sprintf("rule for %q: unknown condition %q", rule.Field, rule.Condition))
			continue
		}
		if rule.Action != ActionShow && rule.Action != ActionHide {
			problems = append(problems, fmt.Sprintf("rule for %q: unknown action %q", rule.Field, rule.Action))
			continue
		}
		if err := graph.addEdge(rule.DependsOn, rule.Field); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		schema.rulesFor[rule.Field] = append(schema.rulesFor[rule.Field], rule)
		schema.Rules = append(schema.Rules, rule)
	}

	for _, id := range schema.fieldOrder {
		field := schema.index[id]
		for _, dep := range field.Dependencies {
			if err := graph.addEdge(dep, id); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}

	order, err := graph.topologicalOrder()
	if err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}
	schema.evalOrder = order

	// Rule sources are surfaced as field dependencies for editor clients.
	for si := range schema.Sections {
		for fi := range schema.Sections[si].Fields {
			field := &schema.Sections[si].Fields[fi]
			for _, parent := range graph.parents[field.ID] {
				if !containsString(field.Dependencies, parent) {
					field.Dependencies = append(field.Dependencies, parent)
				}
			}
			schema.index[field.ID] = *field
		}
	}
	return schema, nil
}

// MustEditorSchema is NewEditorSchema for static declarations; it panics on error.
func MustEditorSchema(typeID string, sectionsDef []EditorSection, rules []DependencyRule) *EditorSchema {
	schema, err := NewEditorSchema(typeID, sectionsDef, rules)
	if err != nil {
		panic(fmt.Sprintf("invalid editor schema for %s: %v", typeID, err))
	}
	return schema
}

func compileField(field *Field) error {
	if strings.TrimSpace(field.ID) == "" {
		return fmt.Errorf("field id is required")
	}
	if _, err := proppath.Parse(field.ID); err != nil {
		return fmt.Errorf("field %q: %v", field.ID, err)
	}
	if !field.Type.isValid() {
		return fmt.Errorf("field %q: unknown type %q", field.ID, field.Type)
	}
	if field.Type == FieldSelect && len(field.Options) == 0 {
		return fmt.Errorf("field %q: select requires options", field.ID)
	}
	if field.Type == FieldSlider {
		if field.Min >= field.Max {
			return fmt.Errorf("field %q: slider min must be lower than max", field.ID)
		}
		if field.Step <= 0 {
			field.Step = 1
		}
	}
	for i := range field.ValidationRules {
		rule := &field.ValidationRules[i]
		switch rule.Kind {
		case RuleRequired:
			field.Required = true
		case RuleMaxLength:
			if rule.Value <= 0 {
				return fmt.Errorf("field %q: maxLength must be positive", field.ID)
			}
		case RulePattern:
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fmt.Errorf("field %q: invalid pattern: %v", field.ID, err)
			}
			rule.re = re
		default:
			return fmt.Errorf("field %q: unknown rule %q", field.ID, rule.Kind)
		}
	}
	return nil
}

// Fields returns every field in declaration order.
func (s *EditorSchema) Fields() []Field {
	fields := make([]Field, 0, len(s.fieldOrder))
	for _, id := range s.fieldOrder {
		fields = append(fields, s.index[id])
	}
	return fields
}

// Field looks up one field by id.
func (s *EditorSchema) Field(id string) (Field, bool) {
	field, ok := s.index[id]
	return field, ok
}

// Defaults builds a property bag from the declared default values.
func (s *EditorSchema) Defaults() models.Properties {
	props := models.Properties{}
	for _, id := range s.fieldOrder {
		field := s.index[id]
		if field.DefaultValue == nil {
			continue
		}
		_ = proppath.Set(props, id, proppath.Clone(field.DefaultValue))
	}
	return props
}

// VisibleFields evaluates the dependency rules against props. A field whose dependency is
// hidden is hidden too.
func (s *EditorSchema) VisibleFields(props models.Properties) map[string]bool {
	visible := make(map[string]bool, len(s.evalOrder))
	root := map[string]interface{}(props)

	for _, id := range s.evalOrder {
		field := s.index[id]
		shown := true

		for _, dep := range field.Dependencies {
			if !visible[dep] {
				shown = false
				break
			}
		}

		if shown {
			if rules := s.rulesFor[id]; len(rules) > 0 {
				for _, rule := range rules {
					value, _ := proppath.Get(root, rule.DependsOn)
					matched := valuesEqual(value, rule.Value)
					if rule.Condition == ConditionNotEquals {
						matched = !matched
					}
					if (rule.Action == ActionShow && !matched) || (rule.Action == ActionHide && matched) {
						shown = false
						break
					}
				}
			} else {
				for _, dep := range field.Dependencies {
					value, _ := proppath.Get(root, dep)
					if !isTruthy(value) {
						shown = false
						break
					}
				}
			}
		}
		visible[id] = shown
	}
	return visible
}

// Validate checks props against the visible fields and returns itemized errors.
func (s *EditorSchema) Validate(props models.Properties) []FieldError {
	visible := s.VisibleFields(props)
	root := map[string]interface{}(props)
	var errs []FieldError

	for _, id := range s.fieldOrder {
		if !visible[id] {
			continue
		}
		field := s.index[id]
		value, present := proppath.Get(root, id)

		if proppath.IsEmpty(value) {
			if field.Required {
				errs = append(errs, FieldError{Field: id, Message: requiredMessage(field)})
			}
			continue
		}
		if !present {
			continue
		}
		if msg := checkFieldValue(field, value); msg != "" {
			errs = append(errs, FieldError{Field: id, Message: msg})
		}
	}
	return errs
}

func requiredMessage(field Field) string {
	for _, rule := range field.ValidationRules {
		if rule.Kind == RuleRequired && rule.Message != "" {
			return rule.Message
		}
	}
	return fieldLabel(field) + " is required"
}

func checkFieldValue(field Field, value interface{}) string {
	switch field.Type {
	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return fieldLabel(field) + " must be true or false"
		}
		return ""
	case FieldSlider:
		number, ok := toFloat(value)
		if !ok {
			return fieldLabel(field) + " must be a number"
		}
		if number < field.Min || number > field.Max {
			return fmt.Sprintf("%s must be between %s and %s", fieldLabel(field), formatNumber(field.Min), formatNumber(field.Max))
		}
		return ""
	case FieldSelect:
		str := fmt.Sprint(value)
		for _, option := range field.Options {
			if option.Value == str {
				return ""
			}
		}
		return fieldLabel(field) + " has an unsupported value"
	}

	str, ok := value.(string)
	if !ok {
		return fieldLabel(field) + " must be text"
	}

	switch field.Type {
	case FieldColor:
		if !colorPattern.MatchString(str) {
			return fieldLabel(field) + " must be a hex color"
		}
	case FieldURL:
		if !isAcceptableURL(str) {
			return fieldLabel(field) + " must be a valid URL"
		}
	}

	for _, rule := range field.ValidationRules {
		switch rule.Kind {
		case RuleMaxLength:
			if utf8.RuneCountInString(str) > rule.Value {
				return ruleMessage(rule, fmt.Sprintf("%s must be at most %d characters", fieldLabel(field), rule.Value))
			}
		case RulePattern:
			if rule.re != nil && !rule.re.MatchString(str) {
				return ruleMessage(rule, fieldLabel(field)+" has an invalid format")
			}
		}
	}
	return ""
}

func ruleMessage(rule ValidationRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

func fieldLabel(field Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func isAcceptableURL(value string) bool {
	if strings.HasPrefix(value, "/") || strings.HasPrefix(value, "#") {
		return true
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto", "tel":
		return parsed.Opaque != ""
	default:
		return false
	}
}

func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return proppath.IsEmpty(actual) && proppath.IsEmpty(expected)
	}
	if a, ok := toFloat(actual); ok {
		if b, ok := toFloat(expected); ok {
			return a == b
		}
	}
	return fmt.Sprint(actual) == fmt.Sprint(expected)
}

func isTruthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		return !proppath.IsEmpty(v)
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
