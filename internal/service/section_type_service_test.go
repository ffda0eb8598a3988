package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
)

func newTestTypeService(t *testing.T, runtime bool) (*SectionTypeService, *sections.Factory) {
	t.Helper()
	registry := sections.NewDefaultRegistry()
	factory, err := sections.NewFactory(registry, sections.DefaultImplementations(), sections.FactoryOptions{})
	require.NoError(t, err)
	return NewSectionTypeService(registry, factory, nil, runtime), factory
}

func pricingDescriptor() sections.Descriptor {
	return sections.Descriptor{
		ID:                "pricing-table",
		DisplayName:       "Pricing Table",
		ComponentName:     "PricingTable",
		Description:       "Compare plans side by side",
		Category:          "marketing",
		DefaultProperties: models.Properties{"plans": []interface{}{}},
		Tags:              []string{"pricing"},
		IsActive:          true,
	}
}

func TestSectionTypeServiceList(t *testing.T) {
	svc, _ := newTestTypeService(t, false)

	heroes := svc.List(TypeFilter{Category: "hero"})
	assert.Len(t, heroes, len(sections.HeroVariants()))

	var ids []string
	for _, desc := range svc.List(TypeFilter{Query: "video"}) {
		ids = append(ids, desc.ID)
	}
	assert.Contains(t, ids, "hero-video")
	assert.NotContains(t, ids, "paragraph")

	assert.Empty(t, svc.List(TypeFilter{Query: "video", Category: "content"}))
}

func TestSectionTypeServiceSchema(t *testing.T) {
	svc, _ := newTestTypeService(t, false)

	schema, err := svc.Schema("hero-cta")
	require.NoError(t, err)
	assert.Equal(t, "hero-cta", schema.TypeID)

	_, err = svc.Schema("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSectionTypeServiceRuntimeRegistrationDisabled(t *testing.T) {
	svc, _ := newTestTypeService(t, false)

	_, err := svc.Register(pricingDescriptor())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Unregister("paragraph"), ErrForbidden)

	active := false
	_, err = svc.Patch("paragraph", sections.DescriptorPatch{IsActive: &active})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSectionTypeServiceRuntimeRegistration(t *testing.T) {
	svc, factory := newTestTypeService(t, true)

	result, err := svc.Register(pricingDescriptor())
	require.NoError(t, err)
	assert.False(t, result.Replaced)

	desc, err := svc.Get("pricing-table")
	require.NoError(t, err)
	assert.Equal(t, "Pricing Table", desc.DisplayName)

	report, err := svc.Preload(context.Background(), []string{"gradient"}, []string{"storefront"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gradient/storefront"}, report.Loaded)
	require.True(t, factory.IsCached(sections.VariantGradient, sections.ModeStorefront))

	active := false
	patched, err := svc.Patch("hero-gradient", sections.DescriptorPatch{IsActive: &active})
	require.NoError(t, err)
	assert.False(t, patched.IsActive)
	assert.False(t, factory.IsCached(sections.VariantGradient, sections.ModeStorefront), "patching a variant evicts it")

	_, err = svc.Patch("missing", sections.DescriptorPatch{IsActive: &active})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Unregister("pricing-table"))
	assert.ErrorIs(t, svc.Unregister("pricing-table"), ErrNotFound)
}

func TestSectionTypeServicePreloadDefaultsAndStats(t *testing.T) {
	svc, _ := newTestTypeService(t, false)

	report, err := svc.Preload(context.Background(), nil, []string{"editor"})
	require.NoError(t, err)
	assert.Len(t, report.Loaded, len(sections.HeroVariants()))
	assert.Empty(t, report.Failed)

	stats := svc.Stats()
	assert.Equal(t, len(sections.HeroVariants()), stats.Cache.Editors)
	assert.Equal(t, 0, stats.Cache.Components)
	assert.Equal(t, stats.RegisteredTypes, stats.ActiveTypes)
	assert.Contains(t, stats.Categories, "hero")

	_, err = svc.Preload(context.Background(), []string{"carousel"}, nil)
	assert.ErrorIs(t, err, sections.ErrUnknownVariant)
	_, err = svc.Preload(context.Background(), nil, []string{"print"})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestSectionTypeServiceClearCaches(t *testing.T) {
	svc, factory := newTestTypeService(t, false)

	_, err := svc.Preload(context.Background(), []string{"video"}, nil)
	require.NoError(t, err)
	require.True(t, factory.IsCached(sections.VariantVideo, sections.ModeStorefront))

	require.NoError(t, svc.ClearCaches())
	assert.False(t, factory.IsCached(sections.VariantVideo, sections.ModeStorefront))
	assert.Equal(t, sections.CacheStats{}, svc.Stats().Cache)
}

func TestSectionTypeServiceWithoutFactory(t *testing.T) {
	svc := NewSectionTypeService(sections.NewDefaultRegistry(), nil, nil, false)

	_, err := svc.Preload(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrFactoryUnavailable)
	assert.ErrorIs(t, svc.ClearCaches(), ErrFactoryUnavailable)
	assert.Equal(t, sections.CacheStats{}, svc.Stats().Cache)
}
