// Package migration converts flat legacy hero properties into the nested shapes of the hero
// variants and ranks which variant fits a legacy section best.
package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
	"github.com/Owhab/nexacms-sub003/pkg/proppath"
)

// Baseline is the variant every migration starts from and the default target.
const Baseline = sections.VariantCentered

// ErrBaselineMissing is returned by NewEngine when the registry lacks the baseline variant.
var ErrBaselineMissing = errors.New("baseline hero variant is not registered")

// ValidationError reports a migrated bag that misses required fields of its target.
type ValidationError struct {
	TypeID string
	Errors []sections.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Message)
	}
	return fmt.Sprintf("migration to %s failed: %s", e.TypeID, strings.Join(parts, "; "))
}

// Result is the outcome of one migration. NewProperties is nil unless Success is true.
type Result struct {
	Success       bool                  `json:"success"`
	NewTypeID     string                `json:"newTypeId"`
	NewProperties models.Properties     `json:"newProperties,omitempty"`
	Warnings      []string              `json:"warnings"`
	Errors        []string              `json:"errors"`
	FieldErrors   []sections.FieldError `json:"fieldErrors,omitempty"`
}

// Err returns nil for a successful result.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if len(r.FieldErrors) > 0 {
		return &ValidationError{TypeID: r.NewTypeID, Errors: r.FieldErrors}
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

type options struct {
	validate bool
}

// Option adjusts a single Migrate call.
type Option func(*options)

// WithValidation toggles the required-field check. It is on by default.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// Engine migrates legacy properties. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry *sections.Registry
	adapters map[sections.Variant]adapter
}

func NewEngine(registry *sections.Registry) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("migration: registry is required")
	}
	if _, ok := registry.Get(Baseline.TypeID()); !ok {
		return nil, ErrBaselineMissing
	}
	return &Engine{registry: registry, adapters: defaultAdapters()}, nil
}

// Migrate transforms old into target's shape. An empty target selects the baseline. The input
// is never modified.
func (e *Engine) Migrate(old models.Properties, target sections.Variant, opts ...Option) (result Result) {
	cfg := options{validate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if target == "" {
		target = Baseline
	}
	result = Result{NewTypeID: target.TypeID(), Warnings: []string{}, Errors: []string{}}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.NewProperties = nil
			result.Errors = append(result.Errors, fmt.Sprintf("migration failed: %v", r))
			logger.Error(fmt.Errorf("%v", r), "Section migration panicked", map[string]interface{}{"variant": string(target)})
		}
	}()

	adapt, ok := e.adapters[target]
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown hero variant %q", target))
		return result
	}
	desc, ok := e.registry.Get(target.TypeID())
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("Section type %q is not registered", target.TypeID()))
		return result
	}
	if !desc.IsActive {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s is inactive and will not render until it is enabled", desc.ID))
	}

	legacy, warnings := readLegacy(old)
	props := adapt(legacy)
	result.Warnings = append(result.Warnings, warnings...)
	result.Warnings = append(result.Warnings, legacy.notes...)
	result.Warnings = append(result.Warnings, legacy.lost(desc.ID)...)

	if cfg.validate {
		root := map[string]interface{}(props)
		for _, path := range sections.RequiredFields(target) {
			value, _ := proppath.Get(root, path)
			if proppath.IsEmpty(value) {
				msg := path + " is required"
				result.FieldErrors = append(result.FieldErrors, sections.FieldError{Field: path, Message: msg})
				result.Errors = append(result.Errors, msg)
			}
		}
		if len(result.FieldErrors) > 0 {
			return result
		}
	}

	result.Success = true
	result.NewProperties = props
	if len(result.Warnings) > 0 {
		logger.Warn("Section migration dropped properties", map[string]interface{}{
			"section_type": desc.ID,
			"variant":      string(target),
			"warnings":     result.Warnings,
		})
	}
	return result
}

// Preview is a migration computed without validation, plus ranked alternatives.
type Preview struct {
	Result          Result           `json:"result"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PreviewMigration never fails validation, so callers can inspect the would-be shape.
func (e *Engine) PreviewMigration(old models.Properties, target sections.Variant) Preview {
	return Preview{
		Result:          e.Migrate(old, target, WithValidation(false)),
		Recommendations: RecommendVariants(old),
	}
}

// BatchItem is one section of a batch migration.
type BatchItem struct {
	ID         string            `json:"id"`
	Properties models.Properties `json:"properties"`
	Target     sections.Variant  `json:"target_variant,omitempty"`
}

// BatchResult pairs a section id with its migration result.
type BatchResult struct {
	ID     string `json:"id"`
	Result Result `json:"result"`
}

// BatchMigrate migrates each item independently and preserves input order.
func (e *Engine) BatchMigrate(items []BatchItem, opts ...Option) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		results = append(results, BatchResult{ID: item.ID, Result: e.Migrate(item.Properties, item.Target, opts...)})
	}
	return results
}
