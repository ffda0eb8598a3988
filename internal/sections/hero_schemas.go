package sections

import "sync"

var (
	heroSchemasOnce sync.Once
	heroSchemas     map[Variant]*EditorSchema
)

// heroRequired is the minimal field contract each variant must satisfy after migration.
var heroRequired = map[Variant][]string{
	VariantCentered:    {"title.text"},
	VariantSplitScreen: {"content.title.text", "media.url"},
	VariantVideo:       {"content.title.text", "video.url"},
	VariantMinimal:     {"title.text"},
	VariantCTA:         {"title.text", "primaryButton.text"},
	VariantGallery:     {"content.title.text", "images.0.url"},
	VariantGradient:    {"title.text"},
	VariantProduct:     {"content.title.text", "product.image"},
	VariantTestimonial: {"title.text", "testimonial.quote"},
	VariantFeature:     {"title.text"},
}

// RequiredFields returns the minimal required-field contract of a variant.
func RequiredFields(v Variant) []string {
	fields := heroRequired[v]
	return append([]string(nil), fields...)
}

// HeroSchema returns the editor schema of a hero variant, or nil for an unknown variant.
func HeroSchema(v Variant) *EditorSchema {
	heroSchemasOnce.Do(func() {
		heroSchemas = map[Variant]*EditorSchema{
			VariantCentered:    centeredSchema(),
			VariantSplitScreen: splitScreenSchema(),
			VariantVideo:       videoSchema(),
			VariantMinimal:     minimalSchema(),
			VariantCTA:         ctaSchema(),
			VariantGallery:     gallerySchema(),
			VariantGradient:    gradientSchema(),
			VariantProduct:     productSchema(),
			VariantTestimonial: testimonialSchema(),
			VariantFeature:     featureSchema(),
		}
	})
	return heroSchemas[v]
}

func centeredSchema() *EditorSchema {
	return MustEditorSchema(VariantCentered.TypeID(), []EditorSection{
		textSection("title.", "Welcome to Our Platform", "Discover what we can do for you"),
		buttonsSection("", true),
		backgroundSection("background."),
		layoutSection(),
	}, backgroundRules("background."))
}

func splitScreenSchema() *EditorSchema {
	return MustEditorSchema(VariantSplitScreen.TypeID(), []EditorSection{
		textSection("content.title.", "Build something great", "Everything you need in one place"),
		buttonsSection("content.", true),
		{
			ID: "media", Title: "Media", Icon: "image", Collapsible: true, DefaultExpanded: true,
			Fields: []Field{
				selectField("media.type", "Media type", "image", options("image", "Image", "video", "Video")),
				{ID: "media.url", Label: "Media", Type: FieldImage, Required: true, DefaultValue: "/static/placeholders/hero-media.jpg"},
				textField("media.alt", "Alternative text", "", 160),
			},
		},
		{
			ID: "layout", Title: "Layout", Icon: "layout", Collapsible: true,
			Fields: []Field{
				selectField("layout.mediaPosition", "Media position", "right", options("left", "Left", "right", "Right")),
				selectField("layout.textAlign", "Text alignment", "left", alignOptions()),
				{ID: "background.color", Label: "Background color", Type: FieldColor},
			},
		},
	}, nil)
}

func videoSchema() *EditorSchema {
	return MustEditorSchema(VariantVideo.TypeID(), []EditorSection{
		textSection("content.title.", "See it in action", ""),
		buttonsSection("content.", false),
		{
			ID: "video", Title: "Video", Icon: "video", Collapsible: true, DefaultExpanded: true,
			Fields: []Field{
				{ID: "video.url", Label: "Video", Type: FieldVideo, Required: true, DefaultValue: ""},
				{ID: "video.poster", Label: "Poster image", Type: FieldImage},
				{ID: "video.autoplay", Label: "Autoplay", Type: FieldBoolean, DefaultValue: true},
				{ID: "video.muted", Label: "Muted", Type: FieldBoolean, DefaultValue: true},
				{ID: "video.loop", Label: "Loop", Type: FieldBoolean, DefaultValue: true},
				{ID: "video.controls", Label: "Show controls", Type: FieldBoolean, DefaultValue: false},
			},
		},
		{
			ID: "overlay", Title: "Overlay", Icon: "layers", Collapsible: true,
			Fields: []Field{
				{ID: "overlay.enabled", Label: "Darken video", Type: FieldBoolean, DefaultValue: true},
				{ID: "overlay.color", Label: "Overlay color", Type: FieldColor, DefaultValue: "#000000"},
				sliderField("overlay.opacity", "Overlay opacity", 0, 1, 0.05, 0.4),
				selectField("textAlign", "Text alignment", "center", alignOptions()),
			},
		},
	}, []DependencyRule{
		{Field: "overlay.color", DependsOn: "overlay.enabled", Condition: ConditionEquals, Value: true, Action: ActionShow},
		{Field: "overlay.opacity", DependsOn: "overlay.enabled", Condition: ConditionEquals, Value: true, Action: ActionShow},
	})
}

func minimalSchema() *EditorSchema {
	return MustEditorSchema(VariantMinimal.TypeID(), []EditorSection{
		textSection("title.", "Simple. Focused.", ""),
		buttonsSection("", false),
		layoutSection(),
	}, nil)
}

func ctaSchema() *EditorSchema {
	buttons := buttonsSection("", true)
	buttons.Fields[0].Required = true
	buttons.Fields[0].DefaultValue = "Get Started"
	buttons.Fields[1].DefaultValue = "#"

	return MustEditorSchema(VariantCTA.TypeID(), []EditorSection{
		textSection("title.", "Ready to get started?", "Join thousands of happy customers"),
		buttons,
		{
			ID: "urgency", Title: "Urgency", Icon: "clock", Collapsible: true,
			Fields: []Field{
				{ID: "urgency.enabled", Label: "Show urgency banner", Type: FieldBoolean, DefaultValue: false},
				textField("urgency.text", "Urgency text", "Limited time offer", 80),
			},
		},
		backgroundSection("background."),
		layoutSection(),
	}, append(backgroundRules("background."), DependencyRule{
		Field: "urgency.text", DependsOn: "urgency.enabled", Condition: ConditionEquals, Value: true, Action: ActionShow,
	}))
}

func gallerySchema() *EditorSchema {
	images := EditorSection{ID: "images", Title: "Images", Icon: "images", Collapsible: true, DefaultExpanded: true}
	for i, id := range []string{"images.0", "images.1", "images.2"} {
		img := Field{ID: id + ".url", Label: "Image " + string(rune('1'+i)), Type: FieldImage}
		if i == 0 {
			img.Required = true
			img.DefaultValue = "/static/placeholders/gallery-1.jpg"
		}
		images.Fields = append(images.Fields, img, textField(id+".alt", "Alternative text", "", 160))
	}

	return MustEditorSchema(VariantGallery.TypeID(), []EditorSection{
		textSection("content.title.", "Our work", ""),
		buttonsSection("content.", false),
		images,
		{
			ID: "layout", Title: "Layout", Icon: "layout", Collapsible: true,
			Fields: []Field{
				selectField("layout.style", "Gallery style", "grid", options("grid", "Grid", "carousel", "Carousel", "masonry", "Masonry")),
				{ID: "layout.autoplay", Label: "Autoplay carousel", Type: FieldBoolean, DefaultValue: false},
			},
		},
	}, []DependencyRule{
		{Field: "layout.autoplay", DependsOn: "layout.style", Condition: ConditionEquals, Value: "carousel", Action: ActionShow},
	})
}

func gradientSchema() *EditorSchema {
	return MustEditorSchema(VariantGradient.TypeID(), []EditorSection{
		textSection("title.", "Make it vibrant", ""),
		buttonsSection("", true),
		{
			ID: "gradient", Title: "Gradient", Icon: "palette", Collapsible: true, DefaultExpanded: true,
			Fields: []Field{
				{ID: "background.gradient.from", Label: "From", Type: FieldColor, DefaultValue: "#6366f1"},
				{ID: "background.gradient.to", Label: "To", Type: FieldColor, DefaultValue: "#ec4899"},
				selectField("background.gradient.direction", "Direction", "to-right",
					options("to-right", "Left to right", "to-bottom", "Top to bottom", "to-bottom-right", "Diagonal")),
			},
		},
		layoutSection(),
	}, nil)
}

func productSchema() *EditorSchema {
	return MustEditorSchema(VariantProduct.TypeID(), []EditorSection{
		textSection("content.title.", "Meet our newest product", ""),
		buttonsSection("content.", true),
		{
			ID: "product", Title: "Product", Icon: "shopping-bag", Collapsible: true, DefaultExpanded: true,
			Fields: []Field{
				{ID: "product.image", Label: "Product image", Type: FieldImage, Required: true, DefaultValue: "/static/placeholders/product.jpg"},
				textField("product.name", "Product name", "", 120),
				textField("product.price", "Price", "", 32),
				textField("product.badge", "Badge", "", 32),
				selectField("layout.imagePosition", "Image position", "right", options("left", "Left", "right", "Right")),
			},
		},
	}, nil)
}

func testimonialSchema() *EditorSchema {
	return MustEditorSchema(VariantTestimonial.TypeID(), []EditorSection{
		textSection("title.", "Loved by our customers", ""),
		{
			ID: "testimonial", Title: "Testimonial", Icon: "quote", Collapsible: true, DefaultExpanded: true,
			Fields: []Field{
				{
					ID: "testimonial.quote", Label: "Quote", Type: FieldTextarea, Required: true,
					DefaultValue:    "This product changed the way we work.",
					ValidationRules: []ValidationRule{{Kind: RuleMaxLength, Value: 500, Message: "Quote must be at most 500 characters"}},
				},
				textField("testimonial.author", "Author", "", 80),
				textField("testimonial.role", "Role", "", 80),
				{ID: "testimonial.avatar", Label: "Avatar", Type: FieldImage},
			},
		},
		buttonsSection("", false),
		backgroundSection("background."),
	}, backgroundRules("background."))
}

func featureSchema() *EditorSchema {
	features := EditorSection{ID: "features", Title: "Features", Icon: "sparkles", Collapsible: true, DefaultExpanded: true}
	for _, id := range []string{"features.0", "features.1", "features.2"} {
		features.Fields = append(features.Fields,
			textField(id+".title", "Feature title", "", 80),
			Field{ID: id + ".description", Label: "Feature description", Type: FieldTextarea},
			textField(id+".icon", "Icon", "", 40),
		)
	}
	features.Fields = append(features.Fields,
		selectField("layout.columns", "Columns", "3", options("2", "Two", "3", "Three", "4", "Four")))

	return MustEditorSchema(VariantFeature.TypeID(), []EditorSection{
		textSection("title.", "Why teams choose us", ""),
		buttonsSection("", false),
		features,
	}, nil)
}

func textSection(titlePrefix, title, subtitle string) EditorSection {
	base := titlePrefix[:len(titlePrefix)-len("title.")]
	titleField := Field{
		ID: titlePrefix + "text", Label: "Title", Type: FieldText, Required: true, DefaultValue: title,
		ValidationRules: []ValidationRule{
			{Kind: RuleRequired, Message: "Title is required"},
			{Kind: RuleMaxLength, Value: 120, Message: "Title must be at most 120 characters"},
		},
	}
	subtitleField := Field{ID: base + "subtitle.text", Label: "Subtitle", Type: FieldTextarea}
	if subtitle != "" {
		subtitleField.DefaultValue = subtitle
	}
	return EditorSection{
		ID: "content", Title: "Content", Icon: "type", Collapsible: true, DefaultExpanded: true,
		Fields: []Field{
			titleField,
			selectField(titlePrefix+"tag", "Heading level", "h1", options("h1", "H1", "h2", "H2", "h3", "H3")),
			subtitleField,
		},
	}
}

func buttonsSection(prefix string, secondary bool) EditorSection {
	section := EditorSection{
		ID: "buttons", Title: "Buttons", Icon: "mouse-pointer", Collapsible: true,
		Fields: []Field{
			textField(prefix+"primaryButton.text", "Primary button text", "", 40),
			{ID: prefix + "primaryButton.url", Label: "Primary button link", Type: FieldURL, Placeholder: "/signup"},
		},
	}
	if secondary {
		section.Fields = append(section.Fields,
			textField(prefix+"secondaryButton.text", "Secondary button text", "", 40),
			Field{ID: prefix + "secondaryButton.url", Label: "Secondary button link", Type: FieldURL},
		)
	}
	return section
}

func backgroundSection(prefix string) EditorSection {
	return EditorSection{
		ID: "background", Title: "Background", Icon: "image", Collapsible: true,
		Fields: []Field{
			selectField(prefix+"type", "Background type", "none",
				options("none", "None", "color", "Color", "image", "Image")),
			{ID: prefix + "color", Label: "Background color", Type: FieldColor},
			{ID: prefix + "image", Label: "Background image", Type: FieldImage},
			sliderField(prefix+"overlayOpacity", "Overlay opacity", 0, 1, 0.05, 0.5),
		},
	}
}

func backgroundRules(prefix string) []DependencyRule {
	return []DependencyRule{
		{Field: prefix + "color", DependsOn: prefix + "type", Condition: ConditionEquals, Value: "color", Action: ActionShow},
		{Field: prefix + "image", DependsOn: prefix + "type", Condition: ConditionEquals, Value: "image", Action: ActionShow},
		{Field: prefix + "overlayOpacity", DependsOn: prefix + "type", Condition: ConditionEquals, Value: "image", Action: ActionShow},
	}
}

func layoutSection() EditorSection {
	return EditorSection{
		ID: "layout", Title: "Layout", Icon: "layout", Collapsible: true,
		Fields: []Field{
			selectField("textAlign", "Text alignment", "center", alignOptions()),
			selectField("layout.height", "Height", "large",
				options("auto", "Auto", "medium", "Medium", "large", "Large", "full", "Full screen")),
			{ID: "colors.text", Label: "Text color", Type: FieldColor},
		},
	}
}

func textField(id, label, def string, maxLength int) Field {
	field := Field{ID: id, Label: label, Type: FieldText}
	if def != "" {
		field.DefaultValue = def
	}
	if maxLength > 0 {
		field.ValidationRules = []ValidationRule{{Kind: RuleMaxLength, Value: maxLength}}
	}
	return field
}

func selectField(id, label, def string, opts []Option) Field {
	return Field{ID: id, Label: label, Type: FieldSelect, Options: opts, DefaultValue: def}
}

func sliderField(id, label string, min, max, step, def float64) Field {
	return Field{ID: id, Label: label, Type: FieldSlider, Min: min, Max: max, Step: step, DefaultValue: def}
}

func alignOptions() []Option {
	return options("left", "Left", "center", "Center", "right", "Right")
}

func options(pairs ...string) []Option {
	opts := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		opts = append(opts, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return opts
}
