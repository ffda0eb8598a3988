package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/internal/service"
)

type SectionHandler struct {
	sectionService *service.SectionService
}

func NewSectionHandler(sectionService *service.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// RenderPage renders a page for the storefront. ?format=html returns the markup alone.
// GET /api/v1/pages/:pageId/render
func (h *SectionHandler) RenderPage(c *gin.Context) {
	pageID, ok := parsePageID(c)
	if !ok {
		return
	}

	page, err := h.sectionService.RenderPage(c.Request.Context(), pageID, sections.ModeStorefront)
	if err != nil {
		respondError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "html") {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page.HTML))
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// GET /api/v1/admin/pages/:pageId/sections
func (h *SectionHandler) ListPageSections(c *gin.Context) {
	pageID, ok := parsePageID(c)
	if !ok {
		return
	}

	list, err := h.sectionService.ListPageSections(pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.SectionInstance{}
	}
	c.JSON(http.StatusOK, gin.H{"sections": list})
}

// POST /api/v1/admin/pages/:pageId/sections
func (h *SectionHandler) CreateSection(c *gin.Context) {
	pageID, ok := parsePageID(c)
	if !ok {
		return
	}

	var req models.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	section, err := h.sectionService.CreateSection(pageID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"section": section})
}

// PUT /api/v1/admin/sections/:sectionId/properties
func (h *SectionHandler) SaveProperties(c *gin.Context) {
	var req models.SaveSectionPropertiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	section, err := h.sectionService.SaveProperties(c.Param("sectionId"), req.Properties)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": section})
}

// DELETE /api/v1/admin/sections/:sectionId
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	if err := h.sectionService.DeleteSection(c.Param("sectionId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section deleted successfully"})
}

// POST /api/v1/admin/pages/:pageId/sections/reorder
func (h *SectionHandler) ReorderSections(c *gin.Context) {
	pageID, ok := parsePageID(c)
	if !ok {
		return
	}

	var req models.ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.sectionService.ReorderSections(pageID, req.SectionIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": list})
}

// RenderSection renders one section for the admin, in preview mode unless ?mode= says otherwise.
// GET /api/v1/admin/sections/:sectionId/render
func (h *SectionHandler) RenderSection(c *gin.Context) {
	mode, ok := parseMode(c, sections.ModePreview)
	if !ok {
		return
	}

	result, err := h.sectionService.RenderSection(c.Request.Context(), c.Param("sectionId"), mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// POST /api/v1/admin/migrations/preview
func (h *SectionHandler) PreviewMigration(c *gin.Context) {
	var req models.MigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": h.sectionService.PreviewMigration(req.Properties, req.TargetVariant)})
}

// POST /api/v1/admin/migrations/recommend
func (h *SectionHandler) Recommend(c *gin.Context) {
	var req models.MigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": h.sectionService.Recommend(req.Properties)})
}

// BatchMigrate migrates each entry independently; ?validate=false skips required-field checks.
// POST /api/v1/admin/migrations/batch
func (h *SectionHandler) BatchMigrate(c *gin.Context) {
	var req models.BatchMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validate := true
	if raw := c.Query("validate"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid validate flag"})
			return
		}
		validate = parsed
	}

	results := h.sectionService.BatchMigrate(req.Sections, validate)
	succeeded := 0
	for _, result := range results {
		if result.Result.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// MigrateSection rewrites a stored legacy section as a hero variant.
// POST /api/v1/admin/sections/:sectionId/migrate
func (h *SectionHandler) MigrateSection(c *gin.Context) {
	var req struct {
		TargetVariant string `json:"target_variant"`
		ValidateProps *bool  `json:"validate_props"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	validate := req.ValidateProps == nil || *req.ValidateProps

	result, section, err := h.sectionService.ApplyMigration(c.Param("sectionId"), req.TargetVariant, validate)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "section": section})
}
