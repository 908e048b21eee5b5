package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Option struct {
	ID                  string            `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId            string            `gorm:"type:char(36);index;not null" json:"tenant_id"`
	GroupId             string            `gorm:"type:char(36);index;not null" json:"group_id"`
	Name                string            `gorm:"size:200;not null" json:"name" binding:"required"`
	Description         string            `gorm:"type:text" json:"description"`
	PriceModifierType   PriceModifierType `gorm:"type:enum('add','multiply','replace');default:'add'" json:"price_modifier_type"`
	PriceModifierAmount decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"price_modifier_amount"`
	IsDefault           *bool             `gorm:"not null;default:false" json:"is_default"`
	IsAvailable         *bool             `gorm:"not null;default:true" json:"is_available"`
	AvailabilityNote    string            `gorm:"size:500" json:"availability_note"`
	ImageUrl            string            `gorm:"size:500" json:"image_url"`
	DisplayOrder        int               `gorm:"not null;default:0" json:"display_order"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
