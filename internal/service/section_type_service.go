package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
	"github.com/Owhab/nexacms-sub003/pkg/validator"
)

// TypeFilter narrows a section type listing.
type TypeFilter struct {
	Category        string
	Query           string
	IncludeInactive bool
}

// FactoryStats summarises the registry and the implementation caches.
type FactoryStats struct {
	RegisteredTypes int                 `json:"registered_types"`
	ActiveTypes     int                 `json:"active_types"`
	Categories      []string            `json:"categories"`
	Cache           sections.CacheStats `json:"cache"`
}

// SectionTypeService exposes the section type catalog and its runtime administration.
type SectionTypeService struct {
	registry            *sections.Registry
	factory             *sections.Factory
	cache               *cache.Cache
	runtimeRegistration bool
}

func NewSectionTypeService(registry *sections.Registry, factory *sections.Factory, cacheService *cache.Cache, runtimeRegistration bool) *SectionTypeService {
	return &SectionTypeService{
		registry:            registry,
		factory:             factory,
		cache:               cacheService,
		runtimeRegistration: runtimeRegistration,
	}
}

func (s *SectionTypeService) List(filter TypeFilter) []sections.Descriptor {
	query := validator.NormalizeSpaces(strings.TrimSpace(filter.Query))

	var list []sections.Descriptor
	switch {
	case query != "":
		list = s.registry.Search(query)
	case strings.TrimSpace(filter.Category) != "":
		list = s.registry.ListByCategory(filter.Category)
	default:
		list = s.registry.ListAll()
	}

	category := strings.TrimSpace(filter.Category)
	result := make([]sections.Descriptor, 0, len(list))
	for _, desc := range list {
		if !filter.IncludeInactive && !desc.IsActive {
			continue
		}
		if category != "" && !strings.EqualFold(desc.Category, category) {
			continue
		}
		result = append(result, desc)
	}
	return result
}

func (s *SectionTypeService) Categories() []string {
	return s.registry.Categories()
}

func (s *SectionTypeService) Get(id string) (sections.Descriptor, error) {
	desc, ok := s.registry.Get(id)
	if !ok {
		return sections.Descriptor{}, ErrNotFound
	}
	return desc, nil
}

// Schema returns the editor form of a registered type.
func (s *SectionTypeService) Schema(id string) (*sections.EditorSchema, error) {
	desc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	schema := sections.SchemaFor(desc.ID)
	if schema == nil {
		return nil, ErrNotFound
	}
	return schema, nil
}

func (s *SectionTypeService) Register(desc sections.Descriptor) (sections.RegisterResult, error) {
	if !s.runtimeRegistration {
		return sections.RegisterResult{}, ErrForbidden
	}
	result, err := s.registry.Register(desc)
	if err != nil {
		return result, err
	}
	s.typeChanged(desc.ID)
	logger.Info("Section type registered", map[string]interface{}{
		"section_type": desc.ID,
		"replaced":     result.Replaced,
	})
	return result, nil
}

func (s *SectionTypeService) Patch(id string, patch sections.DescriptorPatch) (sections.Descriptor, error) {
	if !s.runtimeRegistration {
		return sections.Descriptor{}, ErrForbidden
	}
	found, err := s.registry.Patch(id, patch)
	if err != nil {
		return sections.Descriptor{}, err
	}
	if !found {
		return sections.Descriptor{}, ErrNotFound
	}
	s.typeChanged(id)
	return s.Get(id)
}

func (s *SectionTypeService) Unregister(id string) error {
	if !s.runtimeRegistration {
		return ErrForbidden
	}
	if !s.registry.Unregister(id) {
		return ErrNotFound
	}
	s.typeChanged(id)
	logger.Info("Section type unregistered", map[string]interface{}{"section_type": id})
	return nil
}

// typeChanged drops cached implementations and rendered pages that may depend on id.
func (s *SectionTypeService) typeChanged(id string) {
	if variant, isFamily, valid := sections.ParseVariantID(id); isFamily && valid && s.factory != nil {
		s.factory.Evict(variant)
	}
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.InvalidateAllRenders(); err != nil {
		logger.Warn("Failed to invalidate page render cache", map[string]interface{}{
			"section_type": id,
			"error":        err.Error(),
		})
	}
}

func (s *SectionTypeService) Stats() FactoryStats {
	stats := FactoryStats{
		RegisteredTypes: len(s.registry.ListAll()),
		ActiveTypes:     len(s.registry.ListActive()),
		Categories:      s.registry.Categories(),
	}
	if s.factory != nil {
		stats.Cache = s.factory.CacheStats()
	}
	return stats
}

// Preload warms the factory for the named variants and modes. Empty lists select every active
// variant and every mode.
func (s *SectionTypeService) Preload(ctx context.Context, variantNames []string, modeNames []string) (sections.PreloadReport, error) {
	if s.factory == nil {
		return sections.PreloadReport{}, ErrFactoryUnavailable
	}
	var variants []sections.Variant
	for _, name := range variantNames {
		variant, ok := sections.ParseVariant(name)
		if !ok {
			return sections.PreloadReport{}, fmt.Errorf("%w: %q", sections.ErrUnknownVariant, name)
		}
		variants = append(variants, variant)
	}
	if len(variants) == 0 {
		for _, variant := range sections.HeroVariants() {
			if desc, ok := s.registry.Get(variant.TypeID()); ok && desc.IsActive {
				variants = append(variants, variant)
			}
		}
	}

	var modes []sections.Mode
	for _, name := range modeNames {
		mode, ok := sections.ParseMode(name)
		if !ok {
			return sections.PreloadReport{}, fmt.Errorf("%w: %q", ErrInvalidMode, name)
		}
		modes = append(modes, mode)
	}

	report := s.factory.Preload(ctx, variants, modes...)
	sort.Strings(report.Loaded)
	return report, nil
}

// ClearCaches drops every cached implementation and every cached page render.
func (s *SectionTypeService) ClearCaches() error {
	if s.factory == nil {
		return ErrFactoryUnavailable
	}
	s.factory.ClearCache()
	if s.cache.Enabled() {
		if err := s.cache.InvalidateAllRenders(); err != nil {
			return err
		}
	}
	logger.Info("Section caches cleared", nil)
	return nil
}
