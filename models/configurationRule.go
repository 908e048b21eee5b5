package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConfigurationRule drives the rule evaluator. The condition is "this is
// selected" over any of IfOptionId / IfGroupId / IfProductId (OR semantics;
// IfProductId covers category-driven groups where a product id plays the role
// of an option id). The meaning of the consequence depends on RuleType.
//
// price_tier rules ignore condition/consequence entirely and use
// QuantityMin / DiscountType / DiscountValue; they are applied by the pricing
// engine, never the validator.
type ConfigurationRule struct {
	ID           string   `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId     string   `gorm:"type:char(36);index;not null" json:"tenant_id"`
	TemplateId   string   `gorm:"type:char(36);index;not null" json:"template_id"`
	RuleType     RuleType `gorm:"type:enum('requires','conflicts','hides','auto_select','price_tier');not null" json:"rule_type"`
	Name         string   `gorm:"size:200;not null" json:"name" binding:"required"`
	Description  string   `gorm:"type:text" json:"description"`
	ErrorMessage string   `gorm:"size:500" json:"error_message"`
	Priority     int      `gorm:"not null;default:0" json:"priority"`
	IsActive     *bool    `gorm:"not null;default:true" json:"is_active"`

	IfOptionId  *string `gorm:"type:char(36)" json:"if_option_id"`
	IfGroupId   *string `gorm:"type:char(36)" json:"if_group_id"`
	IfProductId *string `gorm:"type:char(36)" json:"if_product_id"`

	ThenOptionId *string `gorm:"type:char(36)" json:"then_option_id"`
	ThenGroupId  *string `gorm:"type:char(36)" json:"then_group_id"`

	// AllowedOptions narrows a requires-group rule: when set, the group's
	// selection must be one of these option ids.
	AllowedOptions []string `gorm:"serializer:json" json:"allowed_options"`

	QuantityMin   int             `gorm:"not null;default:0" json:"quantity_min"`
	DiscountType  DiscountType    `gorm:"type:enum('percentage','fixed_amount');default:null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ConfigurationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *ConfigurationRule) Active() bool {
	return r.IsActive != nil && *r.IsActive
}
