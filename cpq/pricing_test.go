package cpq

import (
	"testing"

	"github.com/quotelane/cpq_backend/models"
	"github.com/shopspring/decimal"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return v
}

func bp(b bool) *bool { return &b }

func testOption(id, groupId, name string, modType models.PriceModifierType, amount string) *models.Option {
	amt, _ := decimal.NewFromString(amount)
	return &models.Option{
		ID:                  id,
		GroupId:             groupId,
		Name:                name,
		PriceModifierType:   modType,
		PriceModifierAmount: amt,
		IsAvailable:         bp(true),
	}
}

func testGroup(id, name string, selectionType models.SelectionType, required bool, options ...*models.Option) *models.OptionGroup {
	return &models.OptionGroup{
		ID:            id,
		Name:          name,
		SelectionType: selectionType,
		IsRequired:    bp(required),
		Options:       options,
	}
}

func priceTier(id, name string, quantityMin int, discountType models.DiscountType, value string) *models.ConfigurationRule {
	v, _ := decimal.NewFromString(value)
	return &models.ConfigurationRule{
		ID:            id,
		RuleType:      models.RuleTypePriceTier,
		Name:          name,
		IsActive:      bp(true),
		QuantityMin:   quantityMin,
		DiscountType:  discountType,
		DiscountValue: v,
	}
}

// laptopCatalog is the fleet-order fixture the regression numbers below are
// pinned to: base 3499, CPU upgrade +300, memory upgrade +400, storage
// upgrade +400 and a 10% tier at 10 units.
func laptopCatalog() ([]*models.OptionGroup, []*models.ConfigurationRule) {
	groups := []*models.OptionGroup{
		testGroup("g-cpu", "Processor", models.SelectionTypeSingle, true,
			testOption("opt-cpu-14", "g-cpu", "14-core CPU", models.PriceModifierTypeAdd, "0"),
			testOption("opt-cpu-16", "g-cpu", "16-core CPU", models.PriceModifierTypeAdd, "300"),
		),
		testGroup("g-mem", "Memory", models.SelectionTypeSingle, true,
			testOption("opt-mem-36", "g-mem", "36GB", models.PriceModifierTypeAdd, "0"),
			testOption("opt-mem-64", "g-mem", "64GB", models.PriceModifierTypeAdd, "400"),
		),
		testGroup("g-sto", "Storage", models.SelectionTypeSingle, true,
			testOption("opt-sto-1", "g-sto", "1TB", models.PriceModifierTypeAdd, "0"),
			testOption("opt-sto-2", "g-sto", "2TB", models.PriceModifierTypeAdd, "400"),
		),
	}
	rules := []*models.ConfigurationRule{
		priceTier("tier-fleet", "Bulk Fleet Discount", 10, models.DiscountTypePercentage, "10"),
	}
	return groups, rules
}

func TestPriceFleetOrderRegression(t *testing.T) {
	groups, rules := laptopCatalog()
	selections := models.Selection{
		"g-cpu": models.SingleSelection("opt-cpu-16"),
		"g-mem": models.SingleSelection("opt-mem-64"),
		"g-sto": models.SingleSelection("opt-sto-2"),
	}

	calc, err := Price(d(t, "3499.00"), selections, groups, 10, rules)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	if !calc.Subtotal.Equal(d(t, "4599.00")) {
		t.Fatalf("subtotal = %s, want 4599.00", calc.Subtotal)
	}
	if !calc.DiscountAmount.Equal(d(t, "459.90")) {
		t.Fatalf("discount = %s, want 459.90", calc.DiscountAmount)
	}
	if !calc.PerUnitPrice.Equal(d(t, "4139.10")) {
		t.Fatalf("per-unit = %s, want 4139.10", calc.PerUnitPrice)
	}
	if !calc.Total.Equal(d(t, "41391.00")) {
		t.Fatalf("total = %s, want 41391.00", calc.Total)
	}
	if len(calc.Discounts) != 1 || calc.Discounts[0].Name != "Bulk Fleet Discount" {
		t.Fatalf("discounts = %+v, want single Bulk Fleet Discount", calc.Discounts)
	}
	if len(calc.Breakdown) != 3 {
		t.Fatalf("breakdown length = %d, want 3", len(calc.Breakdown))
	}
}

func TestPriceTierBoundaries(t *testing.T) {
	groups, _ := laptopCatalog()
	rules := []*models.ConfigurationRule{
		priceTier("tier-10", "10+ units", 10, models.DiscountTypePercentage, "10"),
		priceTier("tier-50", "50+ units", 50, models.DiscountTypePercentage, "20"),
	}
	selections := models.Selection{"g-cpu": models.SingleSelection("opt-cpu-14")}

	cases := []struct {
		quantity     int
		wantDiscount string
		wantTier     string
	}{
		{1, "0", ""},
		{9, "0", ""},
		{10, "349.90", "10+ units"},
		{49, "349.90", "10+ units"},
		{50, "699.80", "50+ units"},
	}
	for _, tc := range cases {
		calc, err := Price(d(t, "3499.00"), selections, groups, tc.quantity, rules)
		if err != nil {
			t.Fatalf("qty %d: %v", tc.quantity, err)
		}
		if !calc.DiscountAmount.Equal(d(t, tc.wantDiscount)) {
			t.Fatalf("qty %d: discount = %s, want %s", tc.quantity, calc.DiscountAmount, tc.wantDiscount)
		}
		if tc.wantTier == "" {
			if len(calc.Discounts) != 0 {
				t.Fatalf("qty %d: unexpected discounts %+v", tc.quantity, calc.Discounts)
			}
		} else if len(calc.Discounts) != 1 || calc.Discounts[0].Name != tc.wantTier {
			t.Fatalf("qty %d: tier = %+v, want %s", tc.quantity, calc.Discounts, tc.wantTier)
		}
	}
}

func TestPriceFixedDiscountNotScaledBySubtotal(t *testing.T) {
	groups := []*models.OptionGroup{
		testGroup("g1", "Base", models.SelectionTypeSingle, true,
			testOption("o1", "g1", "Plain", models.PriceModifierTypeAdd, "0")),
	}
	rules := []*models.ConfigurationRule{
		priceTier("tier-fixed", "Flat rebate", 5, models.DiscountTypeFixedAmount, "25"),
	}
	selections := models.Selection{"g1": models.SingleSelection("o1")}

	calc, err := Price(d(t, "100.00"), selections, groups, 5, rules)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	// Fixed tiers subtract per unit before multiplying by quantity.
	if !calc.PerUnitPrice.Equal(d(t, "75.00")) {
		t.Fatalf("per-unit = %s, want 75.00", calc.PerUnitPrice)
	}
	if !calc.Total.Equal(d(t, "375.00")) {
		t.Fatalf("total = %s, want 375.00", calc.Total)
	}
}

func TestPriceMultiplyAppliesAfterAdds(t *testing.T) {
	groups := []*models.OptionGroup{
		testGroup("g-support", "Support Tier", models.SelectionTypeSingle, true,
			testOption("o-premium", "g-support", "Premium", models.PriceModifierTypeMultiply, "1.5")),
		testGroup("g-addons", "Add-ons", models.SelectionTypeMultiple, false,
			testOption("o-crm", "g-addons", "CRM", models.PriceModifierTypeAdd, "100")),
	}
	selections := models.Selection{
		"g-support": models.SingleSelection("o-premium"),
		"g-addons":  models.MultiSelection("o-crm"),
	}

	calc, err := Price(d(t, "499.00"), selections, groups, 1, nil)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	// (499 + 100) * 1.5, never 499*1.5 + 100.
	if !calc.Total.Equal(d(t, "898.50")) {
		t.Fatalf("total = %s, want 898.50", calc.Total)
	}
}

func TestPriceReplaceLastWins(t *testing.T) {
	groups := []*models.OptionGroup{
		testGroup("g1", "Chassis", models.SelectionTypeSingle, true,
			testOption("o-rep-1", "g1", "Alt base A", models.PriceModifierTypeReplace, "200")),
		testGroup("g2", "Bundle", models.SelectionTypeSingle, false,
			testOption("o-rep-2", "g2", "Alt base B", models.PriceModifierTypeReplace, "350")),
	}
	selections := models.Selection{
		"g1": models.SingleSelection("o-rep-1"),
		"g2": models.SingleSelection("o-rep-2"),
	}

	calc, err := Price(d(t, "1000.00"), selections, groups, 1, nil)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !calc.BasePrice.Equal(d(t, "350")) {
		t.Fatalf("effective base = %s, want 350 (last replace wins)", calc.BasePrice)
	}
	if !calc.Total.Equal(d(t, "350")) {
		t.Fatalf("total = %s, want 350", calc.Total)
	}
}

func TestPriceSkipsStaleSelectionEntries(t *testing.T) {
	groups, _ := laptopCatalog()
	selections := models.Selection{
		"g-cpu":     models.SingleSelection("opt-cpu-16"),
		"g-removed": models.SingleSelection("opt-gone"),
		"g-mem":     models.SingleSelection("opt-also-gone"),
	}

	calc, err := Price(d(t, "3499.00"), selections, groups, 1, nil)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !calc.Total.Equal(d(t, "3799.00")) {
		t.Fatalf("total = %s, want 3799.00 (stale entries ignored)", calc.Total)
	}
	if len(calc.Breakdown) != 1 {
		t.Fatalf("breakdown length = %d, want 1", len(calc.Breakdown))
	}
}

func TestPriceClampsQuantityToOne(t *testing.T) {
	groups, _ := laptopCatalog()
	selections := models.Selection{"g-cpu": models.SingleSelection("opt-cpu-14")}

	for _, quantity := range []int{0, -3} {
		calc, err := Price(d(t, "3499.00"), selections, groups, quantity, nil)
		if err != nil {
			t.Fatalf("qty %d: %v", quantity, err)
		}
		if calc.Quantity != 1 {
			t.Fatalf("qty %d: clamped quantity = %d, want 1", quantity, calc.Quantity)
		}
		if !calc.Total.Equal(d(t, "3499.00")) {
			t.Fatalf("qty %d: total = %s, want 3499.00", quantity, calc.Total)
		}
	}
}

func TestPriceDeterministicAcrossRuns(t *testing.T) {
	groups, rules := laptopCatalog()
	selections := models.Selection{
		"g-cpu": models.SingleSelection("opt-cpu-16"),
		"g-mem": models.SingleSelection("opt-mem-64"),
		"g-sto": models.SingleSelection("opt-sto-2"),
		"zz-x":  models.SingleSelection("stale-1"),
		"aa-x":  models.SingleSelection("stale-2"),
	}

	first, err := Price(d(t, "3499.00"), selections, groups, 10, rules)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Price(d(t, "3499.00"), selections, groups, 10, rules)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !again.Total.Equal(first.Total) {
			t.Fatalf("run %d: total = %s, want %s", i, again.Total, first.Total)
		}
		if len(again.Breakdown) != len(first.Breakdown) {
			t.Fatalf("run %d: breakdown length changed", i)
		}
		for j := range again.Breakdown {
			if again.Breakdown[j].OptionId != first.Breakdown[j].OptionId {
				t.Fatalf("run %d: breakdown order changed at %d", i, j)
			}
		}
	}
}

func TestPriceInactiveTierIgnored(t *testing.T) {
	groups, _ := laptopCatalog()
	tier := priceTier("tier-off", "Disabled tier", 1, models.DiscountTypePercentage, "50")
	tier.IsActive = bp(false)
	selections := models.Selection{"g-cpu": models.SingleSelection("opt-cpu-14")}

	calc, err := Price(d(t, "3499.00"), selections, groups, 100, []*models.ConfigurationRule{tier})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !calc.DiscountAmount.IsZero() {
		t.Fatalf("discount = %s, want 0 for inactive tier", calc.DiscountAmount)
	}
}
