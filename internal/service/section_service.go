package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Owhab/nexacms-sub003/internal/migration"
	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/repository"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

// SectionServiceOptions tunes page rendering.
type SectionServiceOptions struct {
	RenderCacheTTL    time.Duration
	RenderConcurrency int
}

// SectionService manages the section instances placed on pages and renders them.
type SectionService struct {
	repo     repository.SectionRepository
	registry *sections.Registry
	renderer *sections.Renderer
	engine   *migration.Engine
	cache    *cache.Cache
	opts     SectionServiceOptions
}

func NewSectionService(
	repo repository.SectionRepository,
	registry *sections.Registry,
	renderer *sections.Renderer,
	engine *migration.Engine,
	cacheService *cache.Cache,
	opts SectionServiceOptions,
) *SectionService {
	if opts.RenderCacheTTL <= 0 {
		opts.RenderCacheTTL = 5 * time.Minute
	}
	return &SectionService{
		repo:     repo,
		registry: registry,
		renderer: renderer,
		engine:   engine,
		cache:    cacheService,
		opts:     opts,
	}
}

func (s *SectionService) ListPageSections(pageID uint) ([]models.SectionInstance, error) {
	list, err := s.repo.ListByPage(pageID)
	if err != nil {
		return nil, err
	}
	models.SortSectionInstances(list)
	return list, nil
}

func (s *SectionService) GetSection(id string) (*models.SectionInstance, error) {
	section, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return section, nil
}

// CreateSection appends a section of the requested type to a page. Its properties start from
// the type's defaults with req.Properties merged on top. Required fields are checked on save,
// not here, so a freshly added section may still be incomplete.
func (s *SectionService) CreateSection(pageID uint, req models.CreateSectionRequest) (*models.SectionInstance, error) {
	desc, ok := s.registry.Get(req.TypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", sections.ErrUnknownType, req.TypeID)
	}

	order, err := s.repo.NextOrder(pageID)
	if err != nil {
		return nil, err
	}

	section := &models.SectionInstance{
		ID:         uuid.NewString(),
		PageID:     pageID,
		Order:      order,
		TypeID:     desc.ID,
		Properties: mergeProperties(desc.DefaultProperties, req.Properties),
	}
	if err := s.repo.Create(section); err != nil {
		return nil, err
	}

	s.invalidatePage(pageID)
	logger.Info("Section created", map[string]interface{}{
		"section_id":   section.ID,
		"section_type": section.TypeID,
		"page_id":      pageID,
		"order":        order,
	})
	return section, nil
}

// SaveProperties validates props against the section's editor schema and replaces the stored
// properties. The section keeps its position.
func (s *SectionService) SaveProperties(id string, props models.Properties) (*models.SectionInstance, error) {
	section, err := s.GetSection(id)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = models.Properties{}
	}

	if schema := sections.SchemaFor(section.TypeID); schema != nil {
		if errs := schema.Validate(props); len(errs) > 0 {
			return nil, &sections.SchemaError{TypeID: section.TypeID, Errors: errs}
		}
	}

	section.Properties = props.Clone()
	section.UpdatedAt = time.Now()
	if err := s.repo.Update(section); err != nil {
		return nil, err
	}

	s.invalidatePage(section.PageID)
	return section, nil
}

func (s *SectionService) DeleteSection(id string) error {
	section, err := s.GetSection(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidatePage(section.PageID)
	return nil
}

// ReorderSections renumbers the page's sections 0..n-1 in the order of ids. ids must name
// every section of the page exactly once.
func (s *SectionService) ReorderSections(pageID uint, ids []string) ([]models.SectionInstance, error) {
	current, err := s.repo.ListByPage(pageID)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(current) {
		return nil, ErrInvalidOrder
	}

	known := make(map[string]struct{}, len(current))
	for _, section := range current {
		known[section.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, ErrInvalidOrder
		}
		if _, dup := seen[id]; dup {
			return nil, ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.UpdateOrders(pageID, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.invalidatePage(pageID)
	return s.ListPageSections(pageID)
}

// RenderPage renders every section of a page in mode. Storefront output is cached until the
// page or a section type changes.
func (s *SectionService) RenderPage(ctx context.Context, pageID uint, mode sections.Mode) (*sections.PageResult, error) {
	cacheable := mode == sections.ModeStorefront && s.cache.Enabled()
	if cacheable {
		var cached sections.PageResult
		if err := s.cache.GetCachedPageRender(pageID, string(mode), &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("Failed to read cached page render", map[string]interface{}{
				"page_id": pageID,
				"error":   err.Error(),
			})
		}
	}

	list, err := s.repo.ListByPage(pageID)
	if err != nil {
		return nil, err
	}

	page, err := s.renderer.RenderPage(ctx, list, mode, s.opts.RenderConcurrency)
	if err != nil {
		return nil, err
	}

	if cacheable && !hasFallback(page) {
		if err := s.cache.CachePageRender(pageID, string(mode), page, s.opts.RenderCacheTTL); err != nil {
			logger.Warn("Failed to cache page render", map[string]interface{}{
				"page_id": pageID,
				"error":   err.Error(),
			})
		}
	}
	return page, nil
}

// hasFallback keeps transient failures out of the render cache.
func hasFallback(page *sections.PageResult) bool {
	for _, result := range page.Sections {
		if result.State == sections.StateFallback &&
			result.Reason != sections.ReasonUnknownType &&
			result.Reason != sections.ReasonInactiveType {
			return true
		}
	}
	return false
}

// RenderSection renders one stored section. In editor mode the returned result saves through
// SaveProperties.
func (s *SectionService) RenderSection(ctx context.Context, id string, mode sections.Mode) (*sections.RenderResult, error) {
	section, err := s.GetSection(id)
	if err != nil {
		return nil, err
	}

	req := sections.RenderRequest{
		InstanceID: section.ID,
		TypeID:     section.TypeID,
		Properties: section.Properties,
		Mode:       mode,
	}
	if mode == sections.ModeEditor {
		req.OnSave = func(props models.Properties) error {
			_, err := s.SaveProperties(section.ID, props)
			return err
		}
	}
	return s.renderer.Render(ctx, req), nil
}

func (s *SectionService) PreviewMigration(props models.Properties, target string) migration.Preview {
	return s.engine.PreviewMigration(props, ParseTargetVariant(target))
}

func (s *SectionService) MigrateProperties(props models.Properties, target string, validate bool) migration.Result {
	return s.engine.Migrate(props, ParseTargetVariant(target), migration.WithValidation(validate))
}

func (s *SectionService) Recommend(props models.Properties) []migration.Recommendation {
	return migration.RecommendVariants(props)
}

func (s *SectionService) BatchMigrate(items []models.BatchMigrationItem, validate bool) []migration.BatchResult {
	batch := make([]migration.BatchItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, migration.BatchItem{
			ID:         item.ID,
			Properties: item.Properties,
			Target:     ParseTargetVariant(item.TargetVariant),
		})
	}
	return s.engine.BatchMigrate(batch, migration.WithValidation(validate))
}

// ApplyMigration migrates a stored legacy hero section to a hero variant. The section is only
// rewritten when the migration succeeds; a failed result is returned with a nil error.
func (s *SectionService) ApplyMigration(id string, target string, validate bool) (migration.Result, *models.SectionInstance, error) {
	section, err := s.GetSection(id)
	if err != nil {
		return migration.Result{}, nil, err
	}
	if _, isFamily, _ := sections.ParseVariantID(section.TypeID); isFamily {
		return migration.Result{}, nil, ErrAlreadyMigrated
	}
	if !strings.EqualFold(strings.TrimSpace(section.TypeID), sections.TypeHero) {
		return migration.Result{}, nil, ErrNotLegacyHero
	}

	result := s.engine.Migrate(section.Properties, ParseTargetVariant(target), migration.WithValidation(validate))
	if !result.Success {
		return result, nil, nil
	}

	previousType := section.TypeID
	section.TypeID = result.NewTypeID
	section.Properties = result.NewProperties
	section.UpdatedAt = time.Now()
	if err := s.repo.Update(section); err != nil {
		return result, nil, err
	}

	s.invalidatePage(section.PageID)
	logger.Info("Section migrated", map[string]interface{}{
		"section_id": section.ID,
		"from_type":  previousType,
		"to_type":    section.TypeID,
		"warnings":   len(result.Warnings),
	})
	return result, section, nil
}

func (s *SectionService) invalidatePage(pageID uint) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.InvalidatePageRender(pageID); err != nil {
		logger.Warn("Failed to invalidate page render cache", map[string]interface{}{
			"page_id": pageID,
			"error":   err.Error(),
		})
	}
}

// ParseTargetVariant accepts a bare variant or a hero type id. Unknown values are passed
// through so the migration result can report them; an empty value selects the baseline.
func ParseTargetVariant(value string) sections.Variant {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if variant, ok := sections.ParseVariant(value); ok {
		return variant
	}
	return sections.Variant(value)
}

// mergeProperties returns a deep copy of base with overlay merged in. Nested maps merge key
// by key; any other overlay value replaces the base value.
func mergeProperties(base, overlay models.Properties) models.Properties {
	merged := base.Clone()
	if merged == nil {
		merged = models.Properties{}
	}
	mergeInto(merged, overlay.Clone())
	return merged
}

func mergeInto(dst, src map[string]interface{}) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]interface{})
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}
