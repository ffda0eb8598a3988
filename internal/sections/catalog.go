package sections

import "github.com/Owhab/nexacms-sub003/internal/models"

const catalogVersion = "1.0.0"

type heroMeta struct {
	name        string
	description string
	icon        string
	tags        []string
}

var heroCatalog = map[Variant]heroMeta{
	VariantCentered:    {"Hero: Centered", "Centered headline with optional background and call-to-action buttons", "align-center", []string{"hero", "banner", "centered"}},
	VariantSplitScreen: {"Hero: Split Screen", "Text on one side with an image or video on the other", "columns", []string{"hero", "split", "media"}},
	VariantVideo:       {"Hero: Video Background", "Full-width background video with overlay and headline", "video", []string{"hero", "video", "background"}},
	VariantMinimal:     {"Hero: Minimal", "A clean headline and a single action", "minus", []string{"hero", "minimal", "simple"}},
	VariantCTA:         {"Hero: Call to Action", "Conversion-focused hero with prominent buttons", "mouse-pointer", []string{"hero", "cta", "conversion"}},
	VariantGallery:     {"Hero: Gallery", "Headline with an image grid or carousel", "images", []string{"hero", "gallery", "images"}},
	VariantGradient:    {"Hero: Gradient", "Headline over a colorful gradient background", "palette", []string{"hero", "gradient", "colorful"}},
	VariantProduct:     {"Hero: Product Showcase", "Product image with name, price and purchase action", "shopping-bag", []string{"hero", "product", "ecommerce"}},
	VariantTestimonial: {"Hero: Testimonial", "Headline with a featured customer quote", "quote", []string{"hero", "testimonial", "social proof"}},
	VariantFeature:     {"Hero: Features", "Headline with a short list of key features", "sparkles", []string{"hero", "features", "benefits"}},
}

// DefaultDescriptors returns the built-in catalog: every hero variant followed by the legacy
// static types.
func DefaultDescriptors() []Descriptor {
	descriptors := make([]Descriptor, 0, len(heroVariants)+len(legacyComponents))
	for _, variant := range heroVariants {
		meta := heroCatalog[variant]
		descriptors = append(descriptors, Descriptor{
			ID:                variant.TypeID(),
			DisplayName:       meta.name,
			ComponentName:     "Hero" + componentSuffix(variant),
			Description:       meta.description,
			Icon:              meta.icon,
			Category:          "hero",
			DefaultProperties: HeroSchema(variant).Defaults(),
			Tags:              append([]string(nil), meta.tags...),
			IsActive:          true,
			Version:           catalogVersion,
			Variant:           variant,
		})
	}

	legacy := []struct {
		id, name, component, description, icon, category string
		tags                                           []string
	}{
		{TypeHero, "Hero Section", "HeroSection", "Displays a hero banner with title, subtitle, image and call-to-action button", "star", "marketing", []string{"hero", "banner", "legacy"}},
		{TypeParagraph, "Paragraph", "ParagraphSection", "A block of rich text", "align-left", "content", []string{"text", "paragraph"}},
		{TypeImage, "Image", "ImageSection", "A single image with optional caption", "image", "media", []string{"image", "photo"}},
		{TypeList, "List", "ListSection", "A bulleted or numbered list", "list", "content", []string{"list", "bullets"}},
		{TypeFeatures, "Features", "FeaturesSection", "Showcase key features with supporting images", "sparkles", "marketing", []string{"features", "benefits"}},
	}
	for _, entry := range legacy {
		defaults := models.Properties{}
		if schema := LegacySchema(entry.id); schema != nil {
			defaults = schema.Defaults()
		}
		descriptors = append(descriptors, Descriptor{
			ID:                entry.id,
			DisplayName:       entry.name,
			ComponentName:     entry.component,
			Description:       entry.description,
			Icon:              entry.icon,
			Category:          entry.category,
			DefaultProperties: defaults,
			Tags:              entry.tags,
			IsActive:          true,
			Version:           catalogVersion,
		})
	}
	return descriptors
}

// NewDefaultRegistry returns a registry holding the built-in catalog.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, desc := range DefaultDescriptors() {
		registry.MustRegister(desc)
	}
	return registry
}

func componentSuffix(variant Variant) string {
	switch variant {
	case VariantSplitScreen:
		return "SplitScreen"
	case VariantCTA:
		return "CTA"
	default:
		name := string(variant)
		return string(name[0]-'a'+'A') + name[1:]
	}
}
