package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/Owhab/nexacms-sub003/pkg/proppath"
)

// Properties is the opaque, JSON-shaped property bag stored with every section instance.
type Properties map[string]interface{}

func (p Properties) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Properties) Scan(value interface{}) error {
	if value == nil {
		*p = Properties{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan Properties")
	}

	decoded := map[string]interface{}{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// Clone returns a deep copy that can be mutated without touching the receiver.
func (p Properties) Clone() Properties {
	return Properties(proppath.CloneMap(p))
}

// SectionInstance is a placed occurrence of a section type within a page.
type SectionInstance struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PageID     uint       `gorm:"not null;index:idx_section_instances_page_order,priority:1" json:"page_id"`
	Order      int        `gorm:"not null;default:0;index:idx_section_instances_page_order,priority:2" json:"order"`
	TypeID     string     `gorm:"type:varchar(64);not null" json:"type_id"`
	Properties Properties `gorm:"type:jsonb" json:"properties"`
}

// SortSectionInstances orders instances for rendering. Duplicate order values keep their
// insertion order (created_at, then id).
func SortSectionInstances(instances []SectionInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// CreateSectionRequest adds a section of the given type to a page.
type CreateSectionRequest struct {
	TypeID     string     `json:"type_id" binding:"required,section_type"`
	Properties Properties `json:"properties,omitempty"`
}

// SaveSectionPropertiesRequest replaces the stored properties of a section.
type SaveSectionPropertiesRequest struct {
	Properties Properties `json:"properties" binding:"required"`
}

// ReorderSectionsRequest lists section ids in their new render order.
type ReorderSectionsRequest struct {
	SectionIDs []string `json:"section_ids" binding:"required"`
}

// MigrationRequest asks for a legacy property bag to be migrated.
type MigrationRequest struct {
	Properties    Properties `json:"properties" binding:"required"`
	TargetVariant string     `json:"target_variant,omitempty" binding:"omitempty,section_type"`
	ValidateProps *bool      `json:"validate_props,omitempty"`
}

// BatchMigrationItem is one entry of a batch migration request.
type BatchMigrationItem struct {
	ID            string     `json:"id" binding:"omitempty,max=128,no_html"`
	Properties    Properties `json:"properties"`
	TargetVariant string     `json:"target_variant,omitempty" binding:"omitempty,section_type"`
}

// BatchMigrationRequest migrates several property bags independently.
type BatchMigrationRequest struct {
	Sections []BatchMigrationItem `json:"sections" binding:"required,max=500,dive"`
}
