// seed-demo loads the three demo catalogs (laptop, light aircraft, ERP
// license) used by development and the regression examples.
//
// Usage (from the repo root):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	CPQ_SEED_TENANT_ID=<uuid> go run ./cmd/seed-demo
//
// Re-running against an already-seeded tenant is a no-op.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/quotelane/cpq_backend/config"
	"github.com/quotelane/cpq_backend/models"
	"github.com/quotelane/cpq_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	tenantId := os.Getenv("CPQ_SEED_TENANT_ID")
	if tenantId == "" {
		tenantId = uuid.NewString()
		fmt.Printf("CPQ_SEED_TENANT_ID not set; seeding new tenant %s\n", tenantId)
	}
	ctx = utils.SetTenantIdInContext(ctx, tenantId)

	var existing int64
	if err := db.WithContext(ctx).Model(&models.ProductTemplate{}).
		Where("tenant_id = ?", tenantId).Count(&existing).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to check existing templates: %v\n", err)
		os.Exit(1)
	}
	if existing > 0 {
		fmt.Printf("tenant %s already has %d template(s); nothing to do\n", tenantId, existing)
		return
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedMacbook(tx, tenantId); err != nil {
			return err
		}
		if err := seedAircraft(tx, tenantId); err != nil {
			return err
		}
		if err := seedErpLicense(tx, tenantId); err != nil {
			return err
		}
		return nil
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded demo catalogs for tenant %s\n", tenantId)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	utils.ErrorPanic(err)
	return d
}

func boolPtr(b bool) *bool { return &b }

type seededGroup struct {
	group   *models.OptionGroup
	options map[string]*models.Option // by option name
}

func createGroup(tx *gorm.DB, tenantId, templateId, name string, selectionType models.SelectionType, required bool, order int, options []*models.Option) (*seededGroup, error) {
	group := &models.OptionGroup{
		TenantId:      tenantId,
		TemplateId:    templateId,
		Name:          name,
		SelectionType: selectionType,
		IsRequired:    boolPtr(required),
		DisplayOrder:  order,
	}
	if err := tx.Create(group).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]*models.Option, len(options))
	for i, opt := range options {
		opt.TenantId = tenantId
		opt.GroupId = group.ID
		opt.DisplayOrder = i + 1
		if err := tx.Create(opt).Error; err != nil {
			return nil, err
		}
		byName[opt.Name] = opt
	}
	return &seededGroup{group: group, options: byName}, nil
}

func seedMacbook(tx *gorm.DB, tenantId string) error {
	template := &models.ProductTemplate{
		TenantId:    tenantId,
		Name:        "MacBook Pro 16-inch",
		Description: "Supercharged for pros.",
		BasePrice:   dec("3499.00"),
		DisplayMode: models.DisplayModeSinglePage,
		IsActive:    boolPtr(true),
	}
	if err := tx.Create(template).Error; err != nil {
		return err
	}

	processor, err := createGroup(tx, tenantId, template.ID, "Processor", models.SelectionTypeSingle, true, 1, []*models.Option{
		{Name: "M3 Max with 14-core CPU, 30-core GPU", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "M3 Max with 16-core CPU, 40-core GPU", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("300")},
	})
	if err != nil {
		return err
	}
	memory, err := createGroup(tx, tenantId, template.ID, "Memory", models.SelectionTypeSingle, true, 2, []*models.Option{
		{Name: "36GB Unified Memory", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "48GB Unified Memory", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("200")},
		{Name: "64GB Unified Memory", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("400")},
		{Name: "128GB Unified Memory", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("1000")},
	})
	if err != nil {
		return err
	}
	storage, err := createGroup(tx, tenantId, template.ID, "Storage", models.SelectionTypeSingle, true, 3, []*models.Option{
		{Name: "1TB SSD Storage", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "2TB SSD Storage", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("400")},
		{Name: "4TB SSD Storage", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("1000")},
		{Name: "8TB SSD Storage", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("2200")},
	})
	if err != nil {
		return err
	}
	color, err := createGroup(tx, tenantId, template.ID, "Color", models.SelectionTypeSingle, true, 4, []*models.Option{
		{Name: "Space Black", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Silver", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0")},
	})
	if err != nil {
		return err
	}
	software, err := createGroup(tx, tenantId, template.ID, "Software", models.SelectionTypeMultiple, false, 5, []*models.Option{
		{Name: "Final Cut Pro", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("299.99")},
		{Name: "Logic Pro", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("199.99")},
	})
	if err != nil {
		return err
	}

	bigCPU := processor.options["M3 Max with 16-core CPU, 40-core GPU"]
	memoryRules := []struct {
		memOption string
		name      string
	}{
		{"48GB Unified Memory", "48GB Requires 16-Core CPU"},
		{"64GB Unified Memory", "64GB Requires 16-Core CPU"},
		{"128GB Unified Memory", "128GB Requires 16-Core CPU"},
	}
	for i, mr := range memoryRules {
		mem := memory.options[mr.memOption]
		rule := &models.ConfigurationRule{
			TenantId:     tenantId,
			TemplateId:   template.ID,
			RuleType:     models.RuleTypeRequires,
			Name:         mr.name,
			ErrorMessage: "Please upgrade to the 16-core M3 Max chip to select this memory.",
			Priority:     i + 1,
			IsActive:     boolPtr(true),
			IfOptionId:   &mem.ID,
			ThenOptionId: &bigCPU.ID,
			ThenGroupId:  &processor.group.ID,
		}
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
	}

	fleetTier := &models.ConfigurationRule{
		TenantId:      tenantId,
		TemplateId:    template.ID,
		RuleType:      models.RuleTypePriceTier,
		Name:          "Bulk Fleet Discount",
		Description:   "10% discount for 10+ units.",
		Priority:      10,
		IsActive:      boolPtr(true),
		QuantityMin:   10,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: dec("10"),
	}
	if err := tx.Create(fleetTier).Error; err != nil {
		return err
	}

	preset := &models.TemplatePreset{
		TenantId:    tenantId,
		TemplateId:  template.ID,
		Name:        "Creator Pro",
		Description: "Maxed-out CPU and memory for video work.",
		BadgeText:   "Recommended",
		SelectedOptions: models.Selection{
			processor.group.ID: models.SingleSelection(bigCPU.ID),
			memory.group.ID:    models.SingleSelection(memory.options["64GB Unified Memory"].ID),
			storage.group.ID:   models.SingleSelection(storage.options["2TB SSD Storage"].ID),
			color.group.ID:     models.SingleSelection(color.options["Space Black"].ID),
			software.group.ID:  models.MultiSelection(software.options["Final Cut Pro"].ID),
		},
		CachedTotalPrice: dec("4898.99"),
		IsActive:         boolPtr(true),
		DisplayOrder:     1,
	}
	return tx.Create(preset).Error
}

func seedAircraft(tx *gorm.DB, tenantId string) error {
	template := &models.ProductTemplate{
		TenantId:    tenantId,
		Name:        "SkyHawk Light Aircraft",
		Description: "Single-engine four-seat light aircraft.",
		BasePrice:   dec("430000.00"),
		DisplayMode: models.DisplayModeWizard,
		IsActive:    boolPtr(true),
	}
	if err := tx.Create(template).Error; err != nil {
		return err
	}

	engine, err := createGroup(tx, tenantId, template.ID, "Engine Type", models.SelectionTypeSingle, true, 1, []*models.Option{
		{Name: "Lycoming IO-360-L2A (160 HP)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Lycoming IO-390 (210 HP)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("45000")},
	})
	if err != nil {
		return err
	}
	if _, err = createGroup(tx, tenantId, template.ID, "Avionics Suite", models.SelectionTypeSingle, true, 2, []*models.Option{
		{Name: "Garmin G1000 NXi Base", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Garmin G1000 NXi Advanced + Autopilot", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("32000")},
	}); err != nil {
		return err
	}
	if _, err = createGroup(tx, tenantId, template.ID, "Interior Trim", models.SelectionTypeSingle, true, 3, []*models.Option{
		{Name: "Standard Fabric", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Premium Leather Luxe", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("15000")},
	}); err != nil {
		return err
	}
	if _, err = createGroup(tx, tenantId, template.ID, "Paint Scheme", models.SelectionTypeSingle, true, 4, []*models.Option{
		{Name: "Matterhorn White Base", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Custom Tri-Color Metallic", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("18000")},
	}); err != nil {
		return err
	}
	upgrades, err := createGroup(tx, tenantId, template.ID, "Optional Upgrades", models.SelectionTypeMultiple, false, 5, []*models.Option{
		{Name: "Air Conditioning System", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("28000")},
		{Name: "Oversized Tires (Backcountry Kit)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("8500")},
		{Name: "Extended Range Fuel Tanks", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("12000")},
	})
	if err != nil {
		return err
	}

	ac := upgrades.options["Air Conditioning System"]
	tires := upgrades.options["Oversized Tires (Backcountry Kit)"]
	tanks := upgrades.options["Extended Range Fuel Tanks"]
	baseEngine := engine.options["Lycoming IO-360-L2A (160 HP)"]

	rules := []*models.ConfigurationRule{
		{
			TenantId:     tenantId,
			TemplateId:   template.ID,
			RuleType:     models.RuleTypeConflicts,
			Name:         "AC incompatible with Backcountry Kit",
			ErrorMessage: "Air conditioning cannot be installed together with the backcountry kit.",
			Priority:     1,
			IsActive:     boolPtr(true),
			IfOptionId:   &ac.ID,
			ThenOptionId: &tires.ID,
		},
		{
			TenantId:     tenantId,
			TemplateId:   template.ID,
			RuleType:     models.RuleTypeConflicts,
			Name:         "Base Engine Cannot Carry Extended Tanks",
			ErrorMessage: "Extended range fuel tanks require the 210 HP engine.",
			Priority:     2,
			IsActive:     boolPtr(true),
			IfOptionId:   &baseEngine.ID,
			ThenOptionId: &tanks.ID,
		},
	}
	for _, rule := range rules {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedErpLicense(tx *gorm.DB, tenantId string) error {
	template := &models.ProductTemplate{
		TenantId:    tenantId,
		Name:        "NOW ERP Enterprise License",
		Description: "Per-seat enterprise license.",
		BasePrice:   dec("499.00"),
		DisplayMode: models.DisplayModeSinglePage,
		IsActive:    boolPtr(true),
	}
	if err := tx.Create(template).Error; err != nil {
		return err
	}

	if _, err := createGroup(tx, tenantId, template.ID, "Support Tier", models.SelectionTypeSingle, true, 1, []*models.Option{
		{Name: "Standard (Business Hours)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "Premium (24/7 + SLA)", PriceModifierType: models.PriceModifierTypeMultiply, PriceModifierAmount: dec("1.5")},
	}); err != nil {
		return err
	}
	if _, err := createGroup(tx, tenantId, template.ID, "Data Residency", models.SelectionTypeSingle, true, 2, []*models.Option{
		{Name: "Global Cloud (US/EU Blend)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("0"), IsDefault: boolPtr(true)},
		{Name: "IL Dedicated (Israel Only)", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("250")},
	}); err != nil {
		return err
	}
	if _, err := createGroup(tx, tenantId, template.ID, "Add-on Modules", models.SelectionTypeMultiple, false, 3, []*models.Option{
		{Name: "Advanced CRM", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("100")},
		{Name: "AI Forecasting Module", PriceModifierType: models.PriceModifierTypeAdd, PriceModifierAmount: dec("200")},
	}); err != nil {
		return err
	}

	volumeTier := &models.ConfigurationRule{
		TenantId:      tenantId,
		TemplateId:    template.ID,
		RuleType:      models.RuleTypePriceTier,
		Name:          "Volume License Discount",
		Description:   "20% discount applied for 50+ seats.",
		Priority:      1,
		IsActive:      boolPtr(true),
		QuantityMin:   50,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: dec("20"),
	}
	return tx.Create(volumeTier).Error
}
