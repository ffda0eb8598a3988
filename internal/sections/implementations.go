package sections

import "context"

// DefaultImplementations returns the loader table for every hero variant in every mode.
func DefaultImplementations() ImplementationTable {
	table := make(ImplementationTable, len(heroVariants))
	for _, variant := range heroVariants {
		storefront := heroComponents[variant]
		schema := HeroSchema(variant)
		table[variant] = map[Mode]Loader{
			ModeStorefront: staticLoader(storefront),
			ModePreview:    staticLoader(previewComponent(storefront)),
			ModeEditor:     staticLoader(editorComponent(schema)),
		}
	}
	return table
}

func staticLoader(component Component) Loader {
	return func(ctx context.Context) (Component, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return component, nil
	}
}

// SchemaFor returns the editor schema of a hero variant or legacy type, or nil when the
// type has no schema.
func SchemaFor(typeID string) *EditorSchema {
	if variant, isFamily, valid := ParseVariantID(typeID); isFamily {
		if !valid {
			return nil
		}
		return HeroSchema(variant)
	}
	return LegacySchema(typeID)
}

// legacyImplementation returns the compiled-in implementation of a static type for mode.
func legacyImplementation(typeID string, mode Mode) (Component, bool) {
	storefront, ok := legacyComponents[normaliseTypeID(typeID)]
	if !ok {
		return nil, false
	}
	switch mode {
	case ModeStorefront:
		return storefront, true
	case ModePreview:
		return previewComponent(storefront), true
	case ModeEditor:
		schema := LegacySchema(typeID)
		if schema == nil {
			return nil, false
		}
		return editorComponent(schema), true
	default:
		return nil, false
	}
}
