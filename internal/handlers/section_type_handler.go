package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/internal/service"
)

type SectionTypeHandler struct {
	typeService *service.SectionTypeService
}

func NewSectionTypeHandler(typeService *service.SectionTypeService) *SectionTypeHandler {
	return &SectionTypeHandler{typeService: typeService}
}

// GET /api/v1/section-types?category=&q=
func (h *SectionTypeHandler) List(c *gin.Context) {
	list := h.typeService.List(service.TypeFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	c.JSON(http.StatusOK, gin.H{
		"section_types": list,
		"categories":    h.typeService.Categories(),
	})
}

// ListAll includes inactive types.
// GET /api/v1/admin/section-types
func (h *SectionTypeHandler) ListAll(c *gin.Context) {
	includeInactive := true
	if raw := c.Query("include_inactive"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			includeInactive = parsed
		}
	}
	c.JSON(http.StatusOK, gin.H{"section_types": h.typeService.List(service.TypeFilter{
		Category:        c.Query("category"),
		Query:           c.Query("q"),
		IncludeInactive: includeInactive,
	})})
}

// GET /api/v1/section-types/:id
func (h *SectionTypeHandler) Get(c *gin.Context) {
	desc, err := h.typeService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section_type": desc})
}

// GET /api/v1/section-types/:id/schema
func (h *SectionTypeHandler) Schema(c *gin.Context) {
	schema, err := h.typeService.Schema(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": schema})
}

// POST /api/v1/admin/section-types
func (h *SectionTypeHandler) Register(c *gin.Context) {
	var desc sections.Descriptor
	if err := c.ShouldBindJSON(&desc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.typeService.Register(desc)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"result": result})
}

// PATCH /api/v1/admin/section-types/:id
func (h *SectionTypeHandler) Patch(c *gin.Context) {
	var patch sections.DescriptorPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	desc, err := h.typeService.Patch(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section_type": desc})
}

// DELETE /api/v1/admin/section-types/:id
func (h *SectionTypeHandler) Unregister(c *gin.Context) {
	if err := h.typeService.Unregister(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section type removed"})
}

// GET /api/v1/admin/section-factory/stats
func (h *SectionTypeHandler) FactoryStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.typeService.Stats()})
}

// ClearCaches empties the implementation caches and the page render cache.
// DELETE /api/v1/admin/section-factory/cache
func (h *SectionTypeHandler) ClearCaches(c *gin.Context) {
	if err := h.typeService.ClearCaches(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section caches cleared", "stats": h.typeService.Stats()})
}

// Preload warms the factory. An empty body preloads every active variant in every mode.
// POST /api/v1/admin/section-factory/preload
func (h *SectionTypeHandler) Preload(c *gin.Context) {
	var req struct {
		Variants []string `json:"variants"`
		Modes    []string `json:"modes"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.typeService.Preload(c.Request.Context(), req.Variants, req.Modes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
