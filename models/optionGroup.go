package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptionGroup is a named set of related options on a template, with a
// single/multiple selection cardinality. Groups with SourceType "category"
// have their options resolved from a product category by admin tooling before
// the engine ever sees them; to the evaluator and pricer both kinds look the
// same.
type OptionGroup struct {
	ID            string          `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId      string          `gorm:"type:char(36);index;not null" json:"tenant_id"`
	TemplateId    string          `gorm:"type:char(36);index;not null" json:"template_id"`
	Name          string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Description   string          `gorm:"type:text" json:"description"`
	SelectionType SelectionType   `gorm:"type:enum('single','multiple');default:'single'" json:"selection_type"`
	IsRequired    *bool           `gorm:"not null;default:false" json:"is_required"`
	MinSelections int             `gorm:"not null;default:0" json:"min_selections"`
	MaxSelections *int            `json:"max_selections"`
	DisplayOrder  int             `gorm:"not null;default:0" json:"display_order"`
	SourceType    GroupSourceType `gorm:"type:enum('static','category');default:'static'" json:"source_type"`
	CategoryId    *string         `gorm:"type:char(36)" json:"category_id"`
	Options       []*Option       `gorm:"foreignKey:GroupId" json:"options"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *OptionGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (g *OptionGroup) Required() bool {
	return g.IsRequired != nil && *g.IsRequired
}
