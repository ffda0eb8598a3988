package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

type SectionRepository interface {
	Create(section *models.SectionInstance) error
	Update(section *models.SectionInstance) error
	Delete(id string) error
	GetByID(id string) (*models.SectionInstance, error)
	ListByPage(pageID uint) ([]models.SectionInstance, error)
	NextOrder(pageID uint) (int, error)
	UpdateOrders(pageID uint, ids []string) error
}

type sectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) Create(section *models.SectionInstance) error {
	return r.db.Create(section).Error
}

func (r *sectionRepository) Update(section *models.SectionInstance) error {
	return r.db.Model(section).
		Select("type_id", "properties", "order", "updated_at").
		Updates(section).Error
}

func (r *sectionRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.SectionInstance{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sectionRepository) GetByID(id string) (*models.SectionInstance, error) {
	var section models.SectionInstance
	if err := r.db.Where("id = ?", id).First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByPage returns the sections of a page in render order.
func (r *sectionRepository) ListByPage(pageID uint) ([]models.SectionInstance, error) {
	var sections []models.SectionInstance
	if err := r.db.Where("page_id = ?", pageID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("created_at").
		Order("id").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// NextOrder returns the order value that appends a section to the end of a page.
func (r *sectionRepository) NextOrder(pageID uint) (int, error) {
	var next int
	err := r.db.Model(&models.SectionInstance{}).
		Where("page_id = ?", pageID).
		Select(`COALESCE(MAX("order") + 1, 0)`).
		Scan(&next).Error
	return next, err
}

// UpdateOrders renumbers the sections of a page to 0..n-1 following ids.
func (r *sectionRepository) UpdateOrders(pageID uint, ids []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(&models.SectionInstance{}).
				Where("id = ? AND page_id = ?", id, pageID).
				Update("order", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("section %s does not belong to page %d: %w", id, pageID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}
