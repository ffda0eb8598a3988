package sections

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

var descriptorMessages = map[string]string{
	"ID":                "Section ID is required",
	"DisplayName":       "Section name is required",
	"ComponentName":     "Component name is required",
	"Category":          "Category is required",
	"Description":       "Description is required",
	"DefaultProperties": "Default props are required",
	"Tags":              "Tags must be an array",
}

var (
	descriptorValidatorOnce sync.Once
	descriptorValidator     *validator.Validate
)

func validateDescriptor(desc Descriptor) error {
	descriptorValidatorOnce.Do(func() {
		descriptorValidator = validator.New()
	})

	err := descriptorValidator.Struct(desc)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &ValidationError{Errors: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if msg, ok := descriptorMessages[fe.StructField()]; ok {
			messages = append(messages, msg)
			continue
		}
		messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
	}
	return &ValidationError{Errors: messages}
}

// RegisterResult describes the outcome of a successful registration.
type RegisterResult struct {
	Replaced bool     `json:"replaced"`
	Warnings []string `json:"warnings,omitempty"`
}

// Registry is the catalog of section types keyed by normalised type id.
// Reads are concurrent; every mutation holds the write lock for its whole duration.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Descriptor
}

// NewRegistry creates an empty section type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Descriptor)}
}

// Register validates desc and stores it. Overwriting an existing id succeeds but is reported
// through RegisterResult.Warnings and the log.
func (r *Registry) Register(desc Descriptor) (RegisterResult, error) {
	if r == nil {
		return RegisterResult{}, fmt.Errorf("registry is nil")
	}

	desc.ID = normaliseTypeID(desc.ID)
	if err := validateDescriptor(desc); err != nil {
		return RegisterResult{}, err
	}
	if desc.Variant != "" {
		if !desc.Variant.IsValid() {
			return RegisterResult{}, &ValidationError{Errors: []string{fmt.Sprintf("Unknown variant %q", desc.Variant)}}
		}
		if desc.ID != desc.Variant.TypeID() {
			return RegisterResult{}, &ValidationError{Errors: []string{fmt.Sprintf("Variant %q must use section ID %q", desc.Variant, desc.Variant.TypeID())}}
		}
	}

	stored := desc.clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.types == nil {
		r.types = make(map[string]Descriptor)
	}

	result := RegisterResult{}
	if _, exists := r.types[stored.ID]; exists {
		result.Replaced = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("section type %q was already registered and has been overwritten", stored.ID))
		logger.Warn("Overwriting registered section type", map[string]interface{}{
			"section_type": stored.ID,
		})
	}
	r.types[stored.ID] = stored
	return result, nil
}

// MustRegister registers the descriptor and panics if registration fails.
func (r *Registry) MustRegister(desc Descriptor) {
	if _, err := r.Register(desc); err != nil {
		panic(err)
	}
}

// Unregister removes a type. It returns false when the id is not registered.
func (r *Registry) Unregister(id string) bool {
	if r == nil {
		return false
	}

	id = normaliseTypeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return false
	}
	delete(r.types, id)
	return true
}

// Patch applies a partial update. It returns false without error when the id is absent and
// leaves the stored descriptor untouched when the patched result is invalid.
func (r *Registry) Patch(id string, patch DescriptorPatch) (bool, error) {
	if r == nil {
		return false, nil
	}

	id = normaliseTypeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.types[id]
	if !ok {
		return false, nil
	}

	updated := patch.apply(current.clone())
	if err := validateDescriptor(updated); err != nil {
		return true, err
	}
	r.types[id] = updated
	return true, nil
}

// Get returns a copy of the descriptor registered under id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}

	id = normaliseTypeID(id)
	if id == "" {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.types[id]
	if !ok {
		return Descriptor{}, false
	}
	return desc.clone(), true
}

// ListAll returns every registered descriptor ordered by display name.
func (r *Registry) ListAll() []Descriptor {
	return r.filter(func(Descriptor) bool { return true })
}

// ListActive returns the active descriptors ordered by display name.
func (r *Registry) ListActive() []Descriptor {
	return r.filter(func(d Descriptor) bool { return d.IsActive })
}

// ListByCategory returns the active descriptors of one category.
func (r *Registry) ListByCategory(category string) []Descriptor {
	category = strings.TrimSpace(strings.ToLower(category))
	return r.filter(func(d Descriptor) bool {
		return d.IsActive && strings.ToLower(d.Category) == category
	})
}

// Search matches query case- and accent-insensitively against name, description and tags.
// Only active entries are returned; an empty query lists every active entry.
func (r *Registry) Search(query string) []Descriptor {
	needle := foldText(strings.TrimSpace(query))
	if needle == "" {
		return r.ListActive()
	}

	return r.filter(func(d Descriptor) bool {
		if !d.IsActive {
			return false
		}
		if strings.Contains(foldText(d.DisplayName), needle) || strings.Contains(foldText(d.Description), needle) {
			return true
		}
		for _, tag := range d.Tags {
			if strings.Contains(foldText(tag), needle) {
				return true
			}
		}
		return false
	})
}

// Categories returns the distinct categories of active types in alphabetical order.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	for _, desc := range r.ListActive() {
		seen[desc.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Clone creates an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	cloned := NewRegistry()
	if r == nil {
		return cloned
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, desc := range r.types {
		cloned.types[key] = desc.clone()
	}
	return cloned
}

func (r *Registry) filter(keep func(Descriptor) bool) []Descriptor {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	result := make([]Descriptor, 0, len(r.types))
	for _, desc := range r.types {
		if keep(desc) {
			result = append(result, desc.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].DisplayName), strings.ToLower(result[j].DisplayName)
		if a != b {
			return a < b
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func foldText(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}
