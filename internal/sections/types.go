package sections

import (
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

// Mode selects which implementation of a section is rendered.
type Mode string

const (
	// ModeEditor renders the authoring form.
	ModeEditor Mode = "editor"
	// ModePreview renders the read-only admin preview.
	ModePreview Mode = "preview"
	// ModeStorefront renders the public output.
	ModeStorefront Mode = "storefront"
)

var modes = []Mode{ModeEditor, ModePreview, ModeStorefront}

// ParseMode normalises a mode string. "component" is accepted as an alias for storefront.
func ParseMode(value string) (Mode, bool) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "editor":
		return ModeEditor, true
	case "preview":
		return ModePreview, true
	case "storefront", "component", "public":
		return ModeStorefront, true
	default:
		return "", false
	}
}

// Variant distinguishes interchangeable implementations that share the hero family prefix.
type Variant string

const (
	VariantCentered    Variant = "centered"
	VariantSplitScreen Variant = "split-screen"
	VariantVideo       Variant = "video"
	VariantMinimal     Variant = "minimal"
	VariantCTA         Variant = "cta"
	VariantGallery     Variant = "gallery"
	VariantGradient    Variant = "gradient"
	VariantProduct     Variant = "product"
	VariantTestimonial Variant = "testimonial"
	VariantFeature     Variant = "feature"
)

// HeroFamily is the type id prefix shared by every hero variant. The bare "hero" id is the
// legacy, non-variant hero section.
const HeroFamily = "hero"

// BaselineVariant is the canonical adapter variant that legacy hero data migrates through.
const BaselineVariant = VariantCentered

var heroVariants = []Variant{
	VariantCentered,
	VariantSplitScreen,
	VariantVideo,
	VariantMinimal,
	VariantCTA,
	VariantGallery,
	VariantGradient,
	VariantProduct,
	VariantTestimonial,
	VariantFeature,
}

// HeroVariants returns every hero variant in declaration order.
func HeroVariants() []Variant {
	variants := make([]Variant, len(heroVariants))
	copy(variants, heroVariants)
	return variants
}

// IsValid reports whether v is a member of the variant enum.
func (v Variant) IsValid() bool {
	for _, known := range heroVariants {
		if known == v {
			return true
		}
	}
	return false
}

// TypeID returns the section type id of the variant, e.g. "hero-split-screen".
func (v Variant) TypeID() string {
	return HeroFamily + "-" + string(v)
}

func (v Variant) String() string {
	return string(v)
}

// ParseVariant accepts either a bare variant ("video") or its type id ("hero-video").
func ParseVariant(value string) (Variant, bool) {
	trimmed := normaliseTypeID(value)
	trimmed = strings.TrimPrefix(trimmed, HeroFamily+"-")
	variant := Variant(trimmed)
	return variant, variant.IsValid()
}

// ParseVariantID splits a type id that belongs to the hero family. isFamily is true for any
// id with the family prefix; valid is true only when the suffix is a known variant.
func ParseVariantID(typeID string) (variant Variant, isFamily bool, valid bool) {
	normalised := normaliseTypeID(typeID)
	prefix := HeroFamily + "-"
	if !strings.HasPrefix(normalised, prefix) {
		return "", false, false
	}
	variant = Variant(strings.TrimPrefix(normalised, prefix))
	return variant, true, variant.IsValid()
}

// Descriptor is the identity and metadata of a registered section type.
type Descriptor struct {
	ID                string            `json:"id" yaml:"id" validate:"required"`
	DisplayName       string            `json:"display_name" yaml:"display_name" validate:"required"`
	ComponentName     string            `json:"component_name" yaml:"component_name" validate:"required"`
	Description       string            `json:"description" yaml:"description" validate:"required"`
	Icon              string            `json:"icon,omitempty" yaml:"icon"`
	Category          string            `json:"category" yaml:"category" validate:"required"`
	DefaultProperties models.Properties `json:"default_properties" yaml:"default_properties" validate:"required"`
	Tags              []string          `json:"tags" yaml:"tags" validate:"required"`
	IsActive          bool              `json:"is_active" yaml:"is_active"`
	Version           string            `json:"version,omitempty" yaml:"version"`
	Variant           Variant           `json:"variant,omitempty" yaml:"variant"`
}

// IsVariant reports whether the descriptor belongs to a multi-implementation family.
func (d Descriptor) IsVariant() bool {
	return d.Variant != ""
}

func (d Descriptor) clone() Descriptor {
	cloned := d
	cloned.DefaultProperties = d.DefaultProperties.Clone()
	if d.DefaultProperties == nil {
		cloned.DefaultProperties = nil
	}
	if d.Tags != nil {
		cloned.Tags = append([]string(nil), d.Tags...)
	}
	return cloned
}

// DescriptorPatch carries a partial update. Nil fields are left untouched.
type DescriptorPatch struct {
	DisplayName       *string           `json:"display_name,omitempty" yaml:"display_name"`
	ComponentName     *string           `json:"component_name,omitempty" yaml:"component_name"`
	Description       *string           `json:"description,omitempty" yaml:"description"`
	Icon              *string           `json:"icon,omitempty" yaml:"icon"`
	Category          *string           `json:"category,omitempty" yaml:"category"`
	DefaultProperties models.Properties `json:"default_properties,omitempty" yaml:"default_properties"`
	Tags              *[]string         `json:"tags,omitempty" yaml:"tags"`
	IsActive          *bool             `json:"is_active,omitempty" yaml:"is_active"`
	Version           *string           `json:"version,omitempty" yaml:"version"`
}

func (p DescriptorPatch) apply(desc Descriptor) Descriptor {
	if p.DisplayName != nil {
		desc.DisplayName = *p.DisplayName
	}
	if p.ComponentName != nil {
		desc.ComponentName = *p.ComponentName
	}
	if p.Description != nil {
		desc.Description = *p.Description
	}
	if p.Icon != nil {
		desc.Icon = *p.Icon
	}
	if p.Category != nil {
		desc.Category = *p.Category
	}
	if p.DefaultProperties != nil {
		desc.DefaultProperties = p.DefaultProperties.Clone()
	}
	if p.Tags != nil {
		desc.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsActive != nil {
		desc.IsActive = *p.IsActive
	}
	if p.Version != nil {
		desc.Version = *p.Version
	}
	return desc
}

func normaliseTypeID(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
