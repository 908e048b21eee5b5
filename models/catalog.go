package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/utils"
	"gorm.io/gorm"
)

// Catalog is the full read-only input to the configuration engine: the
// template plus its option groups (options preloaded), rules, and presets.
// Catalogs are cached read-through in redis; admin tooling that edits a
// catalog must call InvalidateCatalogCache.
type Catalog struct {
	Template     *ProductTemplate     `json:"template"`
	OptionGroups []*OptionGroup       `json:"option_groups"`
	Rules        []*ConfigurationRule `json:"rules"`
	Presets      []*TemplatePreset    `json:"presets"`
}

const catalogCacheTTL = 10 * time.Minute

func catalogCacheKey(templateId string) string {
	return "cpqCatalog:" + templateId
}

// LoadCatalog resolves a template id to its full catalog. Fails with
// utils.ErrorRecordNotFound when the template does not exist or is inactive.
func LoadCatalog(ctx context.Context, templateId string) (*Catalog, error) {
	useCache := !config.CatalogCacheDisabled()
	if useCache {
		var cached Catalog
		exists, err := config.GetRedisObject(catalogCacheKey(templateId), &cached)
		if err == nil && exists {
			return &cached, nil
		}
		// Cache errors fall through to the database.
	}

	catalog, err := loadCatalogFromDB(ctx, templateId)
	if err != nil {
		return nil, err
	}

	if useCache {
		_ = config.SetRedisObject(catalogCacheKey(templateId), catalog, catalogCacheTTL)
	}
	return catalog, nil
}

func loadCatalogFromDB(ctx context.Context, templateId string) (*Catalog, error) {
	db := config.GetDB()

	var template ProductTemplate
	err := tenantScoped(ctx, db).Where("id = ?", templateId).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %s: %w", templateId, utils.ErrorRecordNotFound)
		}
		return nil, err
	}
	if template.IsActive == nil || !*template.IsActive {
		return nil, fmt.Errorf("template %s is inactive: %w", templateId, utils.ErrorRecordNotFound)
	}

	var groups []*OptionGroup
	err = db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Where("template_id = ?", templateId).
		Order("display_order ASC, created_at ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	// Catalog order is the tiebreak for equal-priority rules, so the load
	// order must be deterministic.
	var rules []*ConfigurationRule
	err = db.WithContext(ctx).
		Where("template_id = ?", templateId).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	var presets []*TemplatePreset
	err = db.WithContext(ctx).
		Where("template_id = ? AND is_active = 1", templateId).
		Order("display_order ASC, created_at ASC").
		Find(&presets).Error
	if err != nil {
		return nil, err
	}

	return &Catalog{
		Template:     &template,
		OptionGroups: groups,
		Rules:        rules,
		Presets:      presets,
	}, nil
}

// GetPresets returns the active presets for a template, cheapest path (no
// full catalog load).
func GetPresets(ctx context.Context, templateId string) ([]*TemplatePreset, error) {
	db := config.GetDB()
	var presets []*TemplatePreset
	err := db.WithContext(ctx).
		Where("template_id = ? AND is_active = 1", templateId).
		Order("display_order ASC, created_at ASC").
		Find(&presets).Error
	if err != nil {
		return nil, err
	}
	return presets, nil
}

func InvalidateCatalogCache(templateId string) error {
	return config.RemoveRedisKey(catalogCacheKey(templateId))
}

// FindPreset resolves a preset id within an already-loaded catalog.
func (c *Catalog) FindPreset(presetId string) (*TemplatePreset, error) {
	for _, p := range c.Presets {
		if p.ID == presetId {
			return p, nil
		}
	}
	return nil, fmt.Errorf("preset %s: %w", presetId, utils.ErrorRecordNotFound)
}
