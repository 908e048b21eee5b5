package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductTemplate struct {
	ID          string          `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId    string          `gorm:"type:char(36);index;not null" json:"tenant_id"`
	Name        string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_price"`
	DisplayMode DisplayMode     `gorm:"type:enum('single_page','wizard');default:'single_page'" json:"display_mode"`
	ImageUrl    string          `gorm:"size:500" json:"image_url"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *ProductTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type NewProductTemplate struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	DisplayMode DisplayMode     `json:"display_mode"`
	ImageUrl    string          `json:"image_url"`
}
