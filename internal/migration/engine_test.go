package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/proppath"
)

func newTestEngine(t *testing.T) (*Engine, *sections.Registry) {
	t.Helper()
	reg := sections.NewDefaultRegistry()
	engine, err := NewEngine(reg)
	require.NoError(t, err)
	return engine, reg
}

func welcomeProps() models.Properties {
	return models.Properties{
		"title":           "Welcome",
		"buttonText":      "Get Started",
		"buttonLink":      "/signup",
		"backgroundImage": "/hero-bg.jpg",
	}
}

func TestMigrateDefaultsToBaseline(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(welcomeProps(), "")
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, "hero-centered", result.NewTypeID)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.NoError(t, result.Err())

	root := map[string]interface{}(result.NewProperties)
	assert.Equal(t, "Get Started", proppath.GetString(root, "primaryButton.text"))
	assert.Equal(t, "/signup", proppath.GetString(root, "primaryButton.url"))
	assert.Equal(t, "Welcome", proppath.GetString(root, "title.text"))
	assert.Equal(t, "image", proppath.GetString(root, "background.type"))
	assert.Equal(t, "/hero-bg.jpg", proppath.GetString(root, "background.image"))
	assert.Equal(t, "center", proppath.GetString(root, "textAlign"))
}

func TestMigratedBaselineSatisfiesSchema(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(welcomeProps(), sections.VariantCentered)
	require.True(t, result.Success)
	assert.Empty(t, sections.HeroSchema(sections.VariantCentered).Validate(result.NewProperties))
}

func TestMigrateIsIdempotentAndLeavesInputUntouched(t *testing.T) {
	engine, _ := newTestEngine(t)
	input := welcomeProps()
	input["subtitle"] = "Hello there"
	input["customCss"] = ".hero { color: red }"
	input["legacyFlag"] = true
	before := input.Clone()

	first := engine.Migrate(input, "")
	second := engine.Migrate(input, "")

	assert.Equal(t, first, second)
	assert.Equal(t, before, input)
}

func TestMigrateSnakeCaseAliases(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":       "Legacy hero",
		"text":        "Flat description",
		"button_text": "Read more",
		"button_url":  "/about",
		"image_url":   "/legacy.jpg",
	}, sections.VariantSplitScreen)

	require.True(t, result.Success, result.Errors)
	root := map[string]interface{}(result.NewProperties)
	assert.Equal(t, "Legacy hero", proppath.GetString(root, "content.title.text"))
	assert.Equal(t, "Flat description", proppath.GetString(root, "content.subtitle.text"))
	assert.Equal(t, "Read more", proppath.GetString(root, "content.primaryButton.text"))
	assert.Equal(t, "/about", proppath.GetString(root, "content.primaryButton.url"))
	assert.Equal(t, "image", proppath.GetString(root, "media.type"))
	assert.Equal(t, "/legacy.jpg", proppath.GetString(root, "media.url"))
	assert.Equal(t, "left", proppath.GetString(root, "layout.textAlign"))
}

func TestMigrateVideoReportsEveryMissingField(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{"subtitle": "No title here"}, sections.VariantVideo)
	assert.False(t, result.Success)
	assert.Nil(t, result.NewProperties)
	assert.Equal(t, []string{"content.title.text is required", "video.url is required"}, result.Errors)

	var vErr *ValidationError
	require.True(t, errors.As(result.Err(), &vErr))
	assert.Equal(t, "hero-video", vErr.TypeID)
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, "content.title.text", vErr.Errors[0].Field)
	assert.Equal(t, "video.url", vErr.Errors[1].Field)
}

func TestMigrateVideoAdapter(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":          "Watch",
		"videoUrl":       "https://cdn.example.com/intro.mp4",
		"overlayOpacity": "0.6",
	}, sections.VariantVideo)

	require.True(t, result.Success, result.Errors)
	root := map[string]interface{}(result.NewProperties)
	assert.Equal(t, "https://cdn.example.com/intro.mp4", proppath.GetString(root, "video.url"))
	autoplay, _ := proppath.Get(root, "video.autoplay")
	assert.Equal(t, true, autoplay)
	opacity, _ := proppath.Get(root, "overlay.opacity")
	assert.Equal(t, 0.6, opacity)
	assert.Empty(t, sections.HeroSchema(sections.VariantVideo).Validate(result.NewProperties))
}

func TestMigrateWithoutValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{}, sections.VariantVideo, WithValidation(false))
	assert.True(t, result.Success)
	assert.NotNil(t, result.NewProperties)
	assert.Empty(t, result.Errors)
}

func TestMigrateCTASuppliesButtonText(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{"title": "Ready?"}, sections.VariantCTA)
	require.True(t, result.Success, result.Errors)
	root := map[string]interface{}(result.NewProperties)
	assert.Equal(t, "Get Started", proppath.GetString(root, "primaryButton.text"))
	assert.Equal(t, "#", proppath.GetString(root, "primaryButton.url"))
}

func TestMigrateWarnsAboutDroppedProperties(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":               "Sale",
		"secondaryButtonText": "Learn more",
		"backgroundImage":     "/sale.jpg",
		"animation":           "fade",
		"customCSS":           "x",
		"zIndex":              3.0,
	}, sections.VariantMinimal)

	require.True(t, result.Success)
	assert.Equal(t, []string{
		"Animation (animation) is not supported by hero variants and was dropped",
		"Custom CSS (customCSS) is not supported by hero variants and was dropped",
		`Unknown property "zIndex" was dropped`,
		"Secondary button text has no equivalent in hero-minimal and was dropped",
		"Background image has no equivalent in hero-minimal and was dropped",
	}, result.Warnings)
}

func TestMigrateFeatureItems(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title": "Why us",
		"features": []interface{}{
			"Fast",
			map[string]interface{}{"title": "Secure", "text": "Encrypted at rest"},
			42.0,
		},
	}, sections.VariantFeature)

	require.True(t, result.Success)
	root := map[string]interface{}(result.NewProperties)
	assert.Equal(t, "Fast", proppath.GetString(root, "features.0.title"))
	assert.Equal(t, "Encrypted at rest", proppath.GetString(root, "features.1.description"))
	assert.False(t, proppath.Has(root, "features.2"))
	assert.Equal(t, []string{"Feature item 3 (42) has no title, description or icon and was dropped"}, result.Warnings)
}

func TestMigrateWarnsAboutUnplaceableFeatureItems(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":    "Why us",
		"features": []interface{}{42.0, ""},
	}, sections.VariantFeature)

	require.True(t, result.Success)
	assert.False(t, proppath.Has(map[string]interface{}(result.NewProperties), "features"))
	assert.Equal(t, []string{
		"Feature item 1 (42) has no title, description or icon and was dropped",
		"Feature item 2 () has no title, description or icon and was dropped",
	}, result.Warnings)
}

func TestMigrateWarnsAboutUnreadableValues(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":           "Hi",
		"backgroundImage": "/a.jpg",
		"overlayOpacity":  "abc",
	}, "")

	require.True(t, result.Success, result.Errors)
	assert.False(t, proppath.Has(map[string]interface{}(result.NewProperties), "background.overlayOpacity"))
	assert.Equal(t, []string{"Overlay opacity (overlayOpacity) has an unsupported value abc and was dropped"}, result.Warnings)
}

func TestMigrateWarnsAboutUnsupportedAlignment(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{"title": "Hi", "textAlign": "justify"}, "")
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, "center", proppath.GetString(map[string]interface{}(result.NewProperties), "textAlign"))
	assert.Equal(t, []string{"Text alignment (textAlign) has an unsupported value justify and was dropped"}, result.Warnings)

	result = engine.Migrate(models.Properties{"title": "Hi", "text_align": " Right "}, "")
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, "right", proppath.GetString(map[string]interface{}(result.NewProperties), "textAlign"))
	assert.Empty(t, result.Warnings)
}

func TestMigrateWarnsAboutConflictingAliases(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.Migrate(models.Properties{
		"title":       "Hi",
		"buttonText":  "Go",
		"button_text": "Other",
	}, "")
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, "Go", proppath.GetString(map[string]interface{}(result.NewProperties), "primaryButton.text"))
	assert.Equal(t, []string{"Button text (button_text) conflicts with buttonText and was dropped"}, result.Warnings)

	result = engine.Migrate(models.Properties{
		"title":       "Hi",
		"buttonText":  "Go",
		"button_text": " Go ",
		"text_align":  "",
	}, "")
	require.True(t, result.Success, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestMigrateEveryVariantFromRichInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	input := models.Properties{
		"title":           "Everything",
		"subtitle":        "All fields set",
		"buttonText":      "Go",
		"buttonLink":      "/go",
		"backgroundImage": "/bg.jpg",
		"videoUrl":        "https://cdn.example.com/v.mp4",
		"quote":           "Great product",
		"author":          "Sam",
	}

	for _, variant := range sections.HeroVariants() {
		t.Run(string(variant), func(t *testing.T) {
			result := engine.Migrate(input, variant)
			require.True(t, result.Success, result.Errors)
			assert.Equal(t, variant.TypeID(), result.NewTypeID)
			for _, path := range sections.RequiredFields(variant) {
				assert.True(t, proppath.Has(map[string]interface{}(result.NewProperties), path), path)
			}
		})
	}
}

func TestMigrateUnknownAndInactiveTargets(t *testing.T) {
	engine, reg := newTestEngine(t)

	result := engine.Migrate(welcomeProps(), sections.Variant("parallax"))
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "parallax")

	inactive := false
	_, err := reg.Patch("hero-gradient", sections.DescriptorPatch{IsActive: &inactive})
	require.NoError(t, err)
	result = engine.Migrate(welcomeProps(), sections.VariantGradient)
	assert.True(t, result.Success)
	assert.Contains(t, result.Warnings[0], "inactive")

	reg.Unregister("hero-product")
	result = engine.Migrate(welcomeProps(), sections.VariantProduct)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "not registered")
}

func TestMigrateRecoversFromAdapterPanic(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.adapters = defaultAdapters()
	engine.adapters[sections.VariantGradient] = func(*legacyHero) models.Properties { panic("boom") }

	result := engine.Migrate(welcomeProps(), sections.VariantGradient)
	assert.False(t, result.Success)
	assert.Nil(t, result.NewProperties)
	assert.Equal(t, []string{"migration failed: boom"}, result.Errors)
}

func TestNewEngineRequiresBaseline(t *testing.T) {
	reg := sections.NewDefaultRegistry()
	reg.Unregister(Baseline.TypeID())

	_, err := NewEngine(reg)
	assert.ErrorIs(t, err, ErrBaselineMissing)

	_, err = NewEngine(nil)
	assert.Error(t, err)
}

func TestPreviewMigration(t *testing.T) {
	engine, _ := newTestEngine(t)

	preview := engine.PreviewMigration(models.Properties{}, sections.VariantSplitScreen)
	assert.True(t, preview.Result.Success)
	assert.Equal(t, "hero-split-screen", preview.Result.NewTypeID)
	assert.Empty(t, preview.Recommendations)
}

func TestBatchMigrateIsolatesFailures(t *testing.T) {
	engine, _ := newTestEngine(t)

	results := engine.BatchMigrate([]BatchItem{
		{ID: "a", Properties: welcomeProps()},
		{ID: "b", Properties: models.Properties{}, Target: sections.VariantVideo},
		{ID: "c", Properties: welcomeProps(), Target: sections.VariantSplitScreen},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.True(t, results[2].Result.Success)
}
