package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Configuration is a persisted selection snapshot. TotalPrice is always the
// last authoritative recomputation, never hand-edited. A configuration with
// IsTemplate=true and a TemplateName is a reusable starting point listed next
// to presets.
type Configuration struct {
	ID              string              `gorm:"type:char(36);primaryKey" json:"id"`
	TenantId        string              `gorm:"type:char(36);index;not null" json:"tenant_id"`
	TemplateId      string              `gorm:"type:char(36);index;not null" json:"template_id"`
	Name            string              `gorm:"size:200" json:"name"`
	SelectedOptions Selection           `gorm:"serializer:json;type:json" json:"selected_options"`
	Quantity        int                 `gorm:"not null;default:1" json:"quantity"`
	TotalPrice      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	Notes           string              `gorm:"type:text" json:"notes"`
	Status          ConfigurationStatus `gorm:"type:enum('in_progress','completed');default:'in_progress'" json:"status"`
	TemplateName    string              `gorm:"size:200" json:"template_name"`
	IsTemplate      *bool               `gorm:"not null;default:false" json:"is_template"`
	ShareToken      *string             `gorm:"size:100;uniqueIndex" json:"share_token"`
	CreatedBy       string              `gorm:"type:char(36)" json:"created_by"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Configuration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type NewConfiguration struct {
	TemplateId         string    `json:"template_id" binding:"required" validate:"required"`
	Name               string    `json:"name"`
	SelectedOptions    Selection `json:"selected_options"`
	Quantity           int       `json:"quantity" binding:"omitempty,min=1" validate:"omitempty,min=1"`
	Notes              string    `json:"notes"`
	GenerateShareToken bool      `json:"generate_share_token"`
}

type UpdateConfiguration struct {
	Name            *string   `json:"name"`
	SelectedOptions Selection `json:"selected_options"`
	Quantity        int       `json:"quantity" binding:"omitempty,min=1" validate:"omitempty,min=1"`
	Notes           *string   `json:"notes"`
}

func tenantScoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	q := db.WithContext(ctx)
	if tenantId, ok := utils.GetTenantIdFromContext(ctx); ok && tenantId != "" {
		q = q.Where("tenant_id = ?", tenantId)
	}
	return q
}

// CreateConfiguration persists a new configuration. TotalPrice must be the
// authoritative recomputed price (the caller prices before persisting).
func CreateConfiguration(ctx context.Context, input *NewConfiguration, totalPrice decimal.Decimal) (*Configuration, error) {
	db := config.GetDB()
	tenantId, _ := utils.GetTenantIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	selections := input.SelectedOptions
	if selections == nil {
		selections = Selection{}
	}

	record := Configuration{
		TenantId:        tenantId,
		TemplateId:      input.TemplateId,
		Name:            input.Name,
		SelectedOptions: selections,
		Quantity:        quantity,
		TotalPrice:      totalPrice,
		Notes:           input.Notes,
		Status:          ConfigurationStatusInProgress,
		CreatedBy:       userId,
	}
	if input.GenerateShareToken {
		token := utils.GenerateShareToken()
		record.ShareToken = &token
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create configuration: %w", err)
	}
	return &record, nil
}

// SaveConfigurationChanges updates selections/quantity/notes and the
// recomputed authoritative price. Last write wins; there is no optimistic
// locking on configuration rows.
func SaveConfigurationChanges(ctx context.Context, id string, input *UpdateConfiguration, totalPrice decimal.Decimal) (*Configuration, error) {
	db := config.GetDB()

	record, err := GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"total_price": totalPrice,
	}
	if input.SelectedOptions != nil {
		record.SelectedOptions = input.SelectedOptions
		updates["selected_options"] = input.SelectedOptions
	}
	if input.Quantity >= 1 {
		record.Quantity = input.Quantity
		updates["quantity"] = input.Quantity
	}
	if input.Name != nil {
		record.Name = *input.Name
		updates["name"] = *input.Name
	}
	if input.Notes != nil {
		record.Notes = *input.Notes
		updates["notes"] = *input.Notes
	}
	record.TotalPrice = totalPrice

	if err := db.WithContext(ctx).Model(&Configuration{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update configuration %s: %w", id, err)
	}
	return record, nil
}

func GetConfiguration(ctx context.Context, id string) (*Configuration, error) {
	db := config.GetDB()
	var record Configuration
	err := tenantScoped(ctx, db).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("configuration %s: %w", id, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &record, nil
}

// GetConfigurationByShareToken resolves a public share link. Not tenant
// scoped: possession of the token is the authorization.
func GetConfigurationByShareToken(ctx context.Context, token string) (*Configuration, error) {
	db := config.GetDB()
	var record Configuration
	err := db.WithContext(ctx).Where("share_token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("share token: %w", utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	return &record, nil
}

func ListConfigurations(ctx context.Context, templateId string, status ConfigurationStatus, limit int) ([]*Configuration, error) {
	db := config.GetDB()
	if limit < 1 {
		limit = config.SearchLimit
	}
	q := tenantScoped(ctx, db).Where("is_template = 0")
	if templateId != "" {
		q = q.Where("template_id = ?", templateId)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var records []*Configuration
	if err := q.Order("updated_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SaveConfigurationAsTemplate marks a saved configuration as a reusable
// template under the given name.
func SaveConfigurationAsTemplate(ctx context.Context, configurationId string, templateName string) (*Configuration, error) {
	db := config.GetDB()
	record, err := GetConfiguration(ctx, configurationId)
	if err != nil {
		return nil, err
	}
	isTemplate := true
	record.IsTemplate = &isTemplate
	record.TemplateName = templateName
	if err := db.WithContext(ctx).Model(&Configuration{}).Where("id = ?", record.ID).Updates(map[string]interface{}{
		"is_template":   true,
		"template_name": templateName,
	}).Error; err != nil {
		return nil, fmt.Errorf("save configuration %s as template: %w", configurationId, err)
	}
	return record, nil
}

func GetConfigurationTemplates(ctx context.Context, templateId string, limit int) ([]*Configuration, error) {
	db := config.GetDB()
	if limit < 1 {
		limit = config.SearchLimit
	}
	q := tenantScoped(ctx, db).Where("is_template = 1")
	if templateId != "" {
		q = q.Where("template_id = ?", templateId)
	}
	var records []*Configuration
	if err := q.Order("template_name ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkConfigurationCompleted transitions a configuration to completed. The
// caller is responsible for validating the selections first.
func MarkConfigurationCompleted(ctx context.Context, id string) (*Configuration, error) {
	db := config.GetDB()
	record, err := GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Status = ConfigurationStatusCompleted
	if err := db.WithContext(ctx).Model(&Configuration{}).Where("id = ?", record.ID).Update("status", ConfigurationStatusCompleted).Error; err != nil {
		return nil, fmt.Errorf("complete configuration %s: %w", id, err)
	}
	return record, nil
}
