package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Owhab/nexacms-sub003/internal/migration"
	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
)

type memorySectionRepo struct {
	mu        sync.Mutex
	sections  map[string]models.SectionInstance
	clock     time.Time
	updateErr error
	updates   int
}

func newMemorySectionRepo() *memorySectionRepo {
	return &memorySectionRepo{
		sections: make(map[string]models.SectionInstance),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memorySectionRepo) Create(section *models.SectionInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	section.CreatedAt = r.clock
	section.UpdatedAt = r.clock
	stored := *section
	stored.Properties = section.Properties.Clone()
	r.sections[section.ID] = stored
	return nil
}

func (r *memorySectionRepo) Update(section *models.SectionInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.sections[section.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.updates++
	stored := *section
	stored.Properties = section.Properties.Clone()
	r.sections[section.ID] = stored
	return nil
}

func (r *memorySectionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sections, id)
	return nil
}

func (r *memorySectionRepo) GetByID(id string) (*models.SectionInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	section, ok := r.sections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	section.Properties = section.Properties.Clone()
	return &section, nil
}

func (r *memorySectionRepo) ListByPage(pageID uint) ([]models.SectionInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []models.SectionInstance
	for _, section := range r.sections {
		if section.PageID == pageID {
			section.Properties = section.Properties.Clone()
			list = append(list, section)
		}
	}
	models.SortSectionInstances(list)
	return list, nil
}

func (r *memorySectionRepo) NextOrder(pageID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 0
	for _, section := range r.sections {
		if section.PageID == pageID && section.Order >= next {
			next = section.Order + 1
		}
	}
	return next, nil
}

func (r *memorySectionRepo) UpdateOrders(pageID uint, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range ids {
		section, ok := r.sections[id]
		if !ok || section.PageID != pageID {
			return gorm.ErrRecordNotFound
		}
		section.Order = i
		r.sections[id] = section
	}
	return nil
}

func (r *memorySectionRepo) insert(section models.SectionInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections[section.ID] = section
}

func newTestSectionService(t *testing.T) (*SectionService, *memorySectionRepo) {
	t.Helper()
	registry := sections.NewDefaultRegistry()
	factory, err := sections.NewFactory(registry, sections.DefaultImplementations(), sections.FactoryOptions{})
	require.NoError(t, err)
	renderer := sections.NewRenderer(registry, factory, NewSiteRenderContext(nil))
	engine, err := migration.NewEngine(registry)
	require.NoError(t, err)
	disabled, err := cache.NewCache("", false)
	require.NoError(t, err)

	repo := newMemorySectionRepo()
	svc := NewSectionService(repo, registry, renderer, engine, disabled, SectionServiceOptions{RenderConcurrency: 4})
	return svc, repo
}

func TestCreateSectionMergesDefaults(t *testing.T) {
	svc, _ := newTestSectionService(t)

	first, err := svc.CreateSection(7, models.CreateSectionRequest{
		TypeID: "HERO-Centered",
		Properties: models.Properties{
			"title": map[string]interface{}{"text": "Spring sale"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "hero-centered", first.TypeID)
	assert.Equal(t, 0, first.Order)

	title := first.Properties["title"].(map[string]interface{})
	assert.Equal(t, "Spring sale", title["text"])
	assert.Equal(t, "h1", title["tag"], "nested defaults survive the merge")

	second, err := svc.CreateSection(7, models.CreateSectionRequest{TypeID: sections.TypeParagraph})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)
	assert.Equal(t, "Write something here.", second.Properties["text"])
}

func TestCreateSectionUnknownType(t *testing.T) {
	svc, _ := newTestSectionService(t)

	_, err := svc.CreateSection(1, models.CreateSectionRequest{TypeID: "carousel"})
	assert.ErrorIs(t, err, sections.ErrUnknownType)
}

func TestSaveProperties(t *testing.T) {
	svc, repo := newTestSectionService(t)
	created, err := svc.CreateSection(3, models.CreateSectionRequest{TypeID: "hero-minimal"})
	require.NoError(t, err)

	_, err = svc.SaveProperties(created.ID, models.Properties{"title": map[string]interface{}{"text": ""}})
	var schemaErr *sections.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "title.text", schemaErr.Errors[0].Field)
	assert.Equal(t, 0, repo.updates, "invalid properties are never persisted")

	saved, err := svc.SaveProperties(created.ID, models.Properties{"title": map[string]interface{}{"text": "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, created.Order, saved.Order)

	stored, err := svc.GetSection(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Properties["title"].(map[string]interface{})["text"])

	_, err = svc.SaveProperties("missing", models.Properties{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSection(t *testing.T) {
	svc, _ := newTestSectionService(t)
	created, err := svc.CreateSection(3, models.CreateSectionRequest{TypeID: sections.TypeParagraph})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSection(created.ID))
	assert.ErrorIs(t, svc.DeleteSection(created.ID), ErrNotFound)
}

func TestReorderSections(t *testing.T) {
	svc, _ := newTestSectionService(t)
	var ids []string
	for i := 0; i < 3; i++ {
		created, err := svc.CreateSection(9, models.CreateSectionRequest{TypeID: sections.TypeParagraph})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	reordered, err := svc.ReorderSections(9, []string{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	for i, want := range []string{ids[2], ids[0], ids[1]} {
		assert.Equal(t, want, reordered[i].ID)
		assert.Equal(t, i, reordered[i].Order)
	}

	for _, bad := range [][]string{
		{ids[0], ids[1]},
		{ids[0], ids[0], ids[1]},
		{ids[0], ids[1], "other"},
	} {
		_, err := svc.ReorderSections(9, bad)
		assert.ErrorIs(t, err, ErrInvalidOrder, "ids %v", bad)
	}
}

func TestListPageSectionsBreaksOrderTiesByInsertion(t *testing.T) {
	svc, repo := newTestSectionService(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.insert(models.SectionInstance{ID: "b", PageID: 1, Order: 0, TypeID: "paragraph", CreatedAt: base.Add(time.Minute)})
	repo.insert(models.SectionInstance{ID: "a", PageID: 1, Order: 0, TypeID: "paragraph", CreatedAt: base})
	repo.insert(models.SectionInstance{ID: "c", PageID: 1, Order: -1, TypeID: "paragraph", CreatedAt: base.Add(time.Hour)})

	list, err := svc.ListPageSections(1)
	require.NoError(t, err)
	got := []string{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestRenderPageIsolatesFailures(t *testing.T) {
	svc, repo := newTestSectionService(t)
	repo.insert(models.SectionInstance{ID: "1", PageID: 2, Order: 0, TypeID: "paragraph", Properties: models.Properties{"text": "First"}})
	repo.insert(models.SectionInstance{ID: "2", PageID: 2, Order: 1, TypeID: "hero-unknown"})
	repo.insert(models.SectionInstance{ID: "3", PageID: 2, Order: 2, TypeID: "paragraph", Properties: models.Properties{"text": "Last"}})

	page, err := svc.RenderPage(context.Background(), 2, sections.ModeStorefront)
	require.NoError(t, err)
	require.Len(t, page.Sections, 3)
	assert.Equal(t, sections.StateRendered, page.Sections[0].State)
	assert.Equal(t, sections.StateFallback, page.Sections[1].State)
	assert.Equal(t, sections.StateRendered, page.Sections[2].State)
	assert.Less(t, indexOf(page.HTML, "First"), indexOf(page.HTML, "Last"))
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestRenderSectionEditorSavesThroughService(t *testing.T) {
	svc, _ := newTestSectionService(t)
	created, err := svc.CreateSection(4, models.CreateSectionRequest{TypeID: "hero-centered"})
	require.NoError(t, err)

	result, err := svc.RenderSection(context.Background(), created.ID, sections.ModeEditor)
	require.NoError(t, err)
	require.Equal(t, sections.StateRendered, result.State)

	require.NoError(t, result.Save(models.Properties{"title": map[string]interface{}{"text": "Edited"}}))
	stored, err := svc.GetSection(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", stored.Properties["title"].(map[string]interface{})["text"])

	_, err = svc.RenderSection(context.Background(), "missing", sections.ModePreview)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyMigration(t *testing.T) {
	svc, repo := newTestSectionService(t)
	repo.insert(models.SectionInstance{
		ID: "legacy", PageID: 5, TypeID: sections.TypeHero,
		Properties: models.Properties{"title": "Welcome", "button_text": "Join", "button_url": "/join"},
	})

	result, section, err := svc.ApplyMigration("legacy", "", true)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "hero-centered", section.TypeID)

	stored, err := svc.GetSection("legacy")
	require.NoError(t, err)
	assert.Equal(t, "hero-centered", stored.TypeID)
	assert.Equal(t, "Join", stored.Properties["primaryButton"].(map[string]interface{})["text"])

	_, _, err = svc.ApplyMigration("legacy", "video", true)
	assert.ErrorIs(t, err, ErrAlreadyMigrated)
}

func TestApplyMigrationRejectsNonHeroSections(t *testing.T) {
	svc, repo := newTestSectionService(t)
	for _, typeID := range []string{sections.TypeParagraph, sections.TypeImage, sections.TypeList, sections.TypeFeatures} {
		repo.insert(models.SectionInstance{
			ID: typeID, PageID: 5, TypeID: typeID,
			Properties: models.Properties{"text": "About our company, long copy."},
		})

		result, section, err := svc.ApplyMigration(typeID, "", false)
		assert.ErrorIs(t, err, ErrNotLegacyHero, typeID)
		assert.False(t, result.Success, typeID)
		assert.Nil(t, section, typeID)

		stored, err := svc.GetSection(typeID)
		require.NoError(t, err)
		assert.Equal(t, typeID, stored.TypeID)
	}
	assert.Equal(t, 0, repo.updates)
}

func TestApplyMigrationFailureLeavesSectionUntouched(t *testing.T) {
	svc, repo := newTestSectionService(t)
	repo.insert(models.SectionInstance{
		ID: "legacy", PageID: 5, TypeID: sections.TypeHero,
		Properties: models.Properties{"title": "Welcome"},
	})

	result, section, err := svc.ApplyMigration("legacy", "hero-video", true)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, section)
	assert.Contains(t, result.Errors, "video.url is required")
	assert.Equal(t, 0, repo.updates)

	stored, err := svc.GetSection("legacy")
	require.NoError(t, err)
	assert.Equal(t, sections.TypeHero, stored.TypeID)
}

func TestApplyMigrationPersistError(t *testing.T) {
	svc, repo := newTestSectionService(t)
	repo.insert(models.SectionInstance{ID: "legacy", PageID: 5, TypeID: sections.TypeHero, Properties: models.Properties{"title": "Hi"}})
	repo.updateErr = errors.New("connection reset")

	_, _, err := svc.ApplyMigration("legacy", "minimal", true)
	assert.EqualError(t, err, "connection reset")
}

func TestBatchMigrate(t *testing.T) {
	svc, _ := newTestSectionService(t)

	results := svc.BatchMigrate([]models.BatchMigrationItem{
		{ID: "ok", Properties: models.Properties{"title": "One"}},
		{ID: "bad", Properties: models.Properties{"title": "Two"}, TargetVariant: "hero-video"},
		{ID: "unknown", Properties: models.Properties{"title": "Three"}, TargetVariant: "carousel"},
	}, true)

	require.Len(t, results, 3)
	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.Equal(t, []string{`Unknown hero variant "carousel"`}, results[2].Result.Errors)
}

func TestParseTargetVariant(t *testing.T) {
	cases := map[string]sections.Variant{
		"":                  "",
		" video ":           sections.VariantVideo,
		"hero-split-screen": sections.VariantSplitScreen,
		"carousel":          sections.Variant("carousel"),
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseTargetVariant(input), fmt.Sprintf("input %q", input))
	}
}

func TestMergeProperties(t *testing.T) {
	base := models.Properties{"a": map[string]interface{}{"x": 1, "y": 2}, "b": "keep"}
	merged := mergeProperties(base, models.Properties{"a": map[string]interface{}{"y": 3}, "c": []interface{}{"z"}})

	assert.Equal(t, map[string]interface{}{"x": 1, "y": 3}, merged["a"])
	assert.Equal(t, "keep", merged["b"])
	assert.Equal(t, []interface{}{"z"}, merged["c"])
	assert.Equal(t, 2, base["a"].(map[string]interface{})["y"], "base is not modified")
}
