package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TemplatePreset is read-only seed data that initializes a Selection in one
// step ("Recommended", "Best Value", ...). CachedTotalPrice is display-only;
// the engine always reprices after a preset is applied.
type TemplatePreset struct {
	ID               string          `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId         string          `gorm:"type:char(36);index;not null" json:"tenant_id"`
	TemplateId       string          `gorm:"type:char(36);index;not null" json:"template_id"`
	Name             string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Description      string          `gorm:"type:text" json:"description"`
	BadgeText        string          `gorm:"size:100" json:"badge_text"`
	ImageUrl         string          `gorm:"size:500" json:"image_url"`
	SelectedOptions  Selection       `gorm:"serializer:json;type:json" json:"selected_options"`
	CachedTotalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cached_total_price"`
	IsActive         *bool           `gorm:"not null;default:true" json:"is_active"`
	DisplayOrder     int             `gorm:"not null;default:0" json:"display_order"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *TemplatePreset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
