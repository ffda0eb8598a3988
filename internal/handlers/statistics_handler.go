package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

type typeUsage struct {
	TypeID string `json:"type_id"`
	Count  int64  `json:"count"`
}

// GetSectionStatistics reports how section types are used across pages, including how many
// legacy sections still await migration to a hero variant.
func GetSectionStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()

		var stats struct {
			TotalSections        int64       `json:"total_sections"`
			PagesWithSections    int64       `json:"pages_with_sections"`
			LegacyHeroSections   int64       `json:"legacy_hero_sections"`
			SectionsLast24Hours  int64       `json:"sections_last_24_hours"`
			SectionsLast7Days    int64       `json:"sections_last_7_days"`
			SectionsUpdated7Days int64       `json:"sections_updated_last_7_days"`
			ByType               []typeUsage `json:"by_type"`
		}

		base := db.WithContext(c.Request.Context()).Model(&models.SectionInstance{})

		if err := base.Session(&gorm.Session{}).Count(&stats.TotalSections).Error; err != nil {
			logger.Error(err, "Failed to count sections", nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		base.Session(&gorm.Session{}).Distinct("page_id").Count(&stats.PagesWithSections)
		base.Session(&gorm.Session{}).Where("type_id = ?", sections.TypeHero).Count(&stats.LegacyHeroSections)

		twentyFourHoursAgo := now.Add(-24 * time.Hour)
		sevenDaysAgo := now.AddDate(0, 0, -7)

		base.Session(&gorm.Session{}).
			Where("created_at >= ?", twentyFourHoursAgo).
			Count(&stats.SectionsLast24Hours)
		base.Session(&gorm.Session{}).
			Where("created_at >= ?", sevenDaysAgo).
			Count(&stats.SectionsLast7Days)
		base.Session(&gorm.Session{}).
			Where("updated_at >= ?", sevenDaysAgo).
			Count(&stats.SectionsUpdated7Days)

		base.Session(&gorm.Session{}).
			Select("type_id, COUNT(*) AS count").
			Group("type_id").
			Order("count DESC, type_id ASC").
			Scan(&stats.ByType)
		if stats.ByType == nil {
			stats.ByType = []typeUsage{}
		}

		c.JSON(http.StatusOK, stats)
	}
}

// ClearRenderCache drops every cached page render.
func ClearRenderCache(cacheService *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cacheService.Enabled() {
			c.JSON(http.StatusOK, gin.H{"message": "render cache is disabled"})
			return
		}
		if err := cacheService.InvalidateAllRenders(); err != nil {
			logger.Error(err, "Failed to clear render cache", nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear render cache"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "render cache cleared"})
	}
}
