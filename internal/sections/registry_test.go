package sections

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

func testDescriptor(id, name string) Descriptor {
	return Descriptor{
		ID:                id,
		DisplayName:       name,
		ComponentName:     "Test" + name,
		Description:       "A " + name + " section",
		Category:          "content",
		DefaultProperties: models.Properties{"text": "hello"},
		Tags:              []string{"test"},
		IsActive:          true,
	}
}

func TestRegistryRegisterRejectsMissingDefaultProperties(t *testing.T) {
	reg := NewRegistry()
	desc := testDescriptor("banner", "Banner")
	desc.DefaultProperties = nil

	_, err := reg.Register(desc)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Errors, "Default props are required")

	_, ok := reg.Get("banner")
	assert.False(t, ok, "failed registration must not insert")
	assert.Empty(t, reg.ListAll())
}

func TestRegistryRegisterReportsEveryMissingField(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(Descriptor{})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.ElementsMatch(t, []string{
		"Section ID is required",
		"Section name is required",
		"Component name is required",
		"Category is required",
		"Description is required",
		"Default props are required",
		"Tags must be an array",
	}, vErr.Errors)
}

func TestRegistryOverwriteWarns(t *testing.T) {
	reg := NewRegistry()
	first, err := reg.Register(testDescriptor("Banner", "Banner"))
	require.NoError(t, err)
	assert.False(t, first.Replaced)

	updated := testDescriptor("banner", "Banner v2")
	second, err := reg.Register(updated)
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	require.Len(t, second.Warnings, 1)
	assert.Contains(t, second.Warnings[0], "overwritten")

	got, ok := reg.Get("BANNER")
	require.True(t, ok)
	assert.Equal(t, "Banner v2", got.DisplayName)
}

func TestRegistryRejectsMismatchedVariantID(t *testing.T) {
	reg := NewRegistry()
	desc := testDescriptor("hero-other", "Other")
	desc.Variant = VariantVideo

	_, err := reg.Register(desc)
	require.Error(t, err)
	assert.Empty(t, reg.ListAll())
}

func TestRegistryUnregisterAndPatchMissing(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Unregister("nope"))

	name := "New"
	found, err := reg.Patch("nope", DescriptorPatch{DisplayName: &name})
	assert.False(t, found)
	assert.NoError(t, err)
}

func TestRegistryPatch(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(testDescriptor("banner", "Banner"))

	inactive := false
	found, err := reg.Patch("banner", DescriptorPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.True(t, found)

	got, _ := reg.Get("banner")
	assert.False(t, got.IsActive)
	assert.Equal(t, "Banner", got.DisplayName)

	empty := ""
	found, err = reg.Patch("banner", DescriptorPatch{DisplayName: &empty})
	assert.True(t, found)
	require.Error(t, err)

	got, _ = reg.Get("banner")
	assert.Equal(t, "Banner", got.DisplayName, "invalid patch must leave the entry untouched")
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(testDescriptor("banner", "Banner"))

	got, _ := reg.Get("banner")
	got.DefaultProperties["text"] = "mutated"
	got.Tags[0] = "mutated"

	again, _ := reg.Get("banner")
	assert.Equal(t, "hello", again.DefaultProperties["text"])
	assert.Equal(t, "test", again.Tags[0])
}

func TestRegistryListing(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(testDescriptor("zeta", "zeta"))
	reg.MustRegister(testDescriptor("alpha", "Alpha"))
	hidden := testDescriptor("hidden", "Hidden")
	hidden.IsActive = false
	reg.MustRegister(hidden)
	media := testDescriptor("gallery", "Gallery")
	media.Category = "Media"
	reg.MustRegister(media)

	ids := func(list []Descriptor) []string {
		out := make([]string, 0, len(list))
		for _, d := range list {
			out = append(out, d.ID)
		}
		return out
	}

	assert.Equal(t, []string{"alpha", "gallery", "zeta"}, ids(reg.ListActive()))
	assert.Equal(t, []string{"alpha", "gallery", "hidden", "zeta"}, ids(reg.ListAll()))
	assert.Equal(t, []string{"gallery"}, ids(reg.ListByCategory("media")))
	assert.Equal(t, []string{"Media", "content"}, reg.Categories())
}

func TestRegistrySearch(t *testing.T) {
	reg := NewRegistry()
	cafe := testDescriptor("cafe", "Café Menu")
	cafe.Tags = []string{"Food"}
	reg.MustRegister(cafe)
	hidden := testDescriptor("cafe-hidden", "Café Hidden")
	hidden.IsActive = false
	reg.MustRegister(hidden)
	reg.MustRegister(testDescriptor("other", "Other"))

	results := reg.Search("CAFE")
	require.Len(t, results, 1)
	assert.Equal(t, "cafe", results[0].ID)

	results = reg.Search("food")
	require.Len(t, results, 1)

	assert.Len(t, reg.Search("   "), 2)
	assert.Empty(t, reg.Search("missing"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewDefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.MustRegister(testDescriptor("banner", "Banner"))
		}()
		go func() {
			defer wg.Done()
			_ = reg.Search("hero")
			_, _ = reg.Get("hero-centered")
		}()
	}
	wg.Wait()

	_, ok := reg.Get("banner")
	assert.True(t, ok)
}

func TestDefaultRegistryCatalog(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, variant := range HeroVariants() {
		desc, ok := reg.Get(variant.TypeID())
		require.True(t, ok, variant)
		assert.Equal(t, variant, desc.Variant)
		assert.True(t, desc.IsActive)
		assert.NotEmpty(t, desc.DefaultProperties)
		assert.True(t, strings.HasPrefix(desc.ComponentName, "Hero"))
	}
	for _, id := range []string{TypeHero, TypeParagraph, TypeImage, TypeList, TypeFeatures} {
		desc, ok := reg.Get(id)
		require.True(t, ok, id)
		assert.False(t, desc.IsVariant())
	}

	split, _ := reg.Get("hero-split-screen")
	assert.Equal(t, "HeroSplitScreen", split.ComponentName)
	assert.Len(t, reg.ListByCategory("hero"), len(HeroVariants()))
}

func TestDefaultPropertiesSatisfySchemas(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, desc := range reg.ListAll() {
		schema := SchemaFor(desc.ID)
		require.NotNil(t, schema, desc.ID)
		if desc.Variant == VariantVideo {
			// A video URL cannot be defaulted.
			errs := schema.Validate(desc.DefaultProperties)
			require.Len(t, errs, 1)
			assert.Equal(t, "video.url", errs[0].Field)
			continue
		}
		assert.Empty(t, schema.Validate(desc.DefaultProperties), desc.ID)
	}
}

func TestApplyCatalog(t *testing.T) {
	reg := NewDefaultRegistry()
	doc := `
register:
  - id: promo-banner
    display_name: Promo Banner
    component_name: PromoBanner
    description: Seasonal promotion strip
    category: marketing
    default_properties:
      text: Sale now on
      dismissible: true
    tags: [promo, banner]
    is_active: true
  - id: broken
    display_name: Broken
patch:
  - id: hero-video
    is_active: false
  - id: not-there
    display_name: Missing
unregister:
  - features
  - ghost
`
	report, err := reg.ApplyCatalog(strings.NewReader(doc))
	require.Error(t, err, "the broken entry must be reported")
	assert.Contains(t, err.Error(), `register "broken"`)

	assert.Equal(t, []string{"promo-banner"}, report.Registered)
	assert.Equal(t, []string{"hero-video"}, report.Patched)
	assert.Equal(t, []string{"features"}, report.Unregistered)
	assert.Len(t, report.Warnings, 2)

	promo, ok := reg.Get("promo-banner")
	require.True(t, ok)
	assert.Equal(t, true, promo.DefaultProperties["dismissible"])

	video, _ := reg.Get("hero-video")
	assert.False(t, video.IsActive)

	_, ok = reg.Get("features")
	assert.False(t, ok)
}

func TestApplyCatalogRejectsUnknownKeys(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ApplyCatalog(strings.NewReader("registr:\n  - id: x\n"))
	require.Error(t, err)
	assert.Empty(t, reg.ListAll())
}
