package cpq

import (
	"sort"

	"github.com/quotelane/cpq_backend/models"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Price computes the deterministic total for a selection set.
//
// The operation order is fixed and must not change:
//
//	T = (B + ΣO_add) × ΠM_mult − D, then × quantity
//
// All arithmetic is decimal, never binary floating point: the same inputs
// must price to the cent identically on every path that runs this code.
func Price(basePrice decimal.Decimal, selections models.Selection, optionGroups []*models.OptionGroup, quantity int, rules []*models.ConfigurationRule) (*PriceCalculation, error) {
	if quantity < 1 {
		quantity = 1
	}

	effectiveBase := basePrice
	additiveTotal := decimal.Zero
	multiplicativeFactor := decimal.NewFromInt(1)
	breakdown := []PriceBreakdownItem{}

	optionIndex, _ := indexCatalog(optionGroups)

	// Collect modifiers by type without applying them; ordering across
	// selected options cannot affect the result because add, multiply and
	// replace are each accumulated separately. Iteration still has to visit
	// every selected option exactly once and produce a stable breakdown, so
	// groups go in catalog order and any selection keys that do not match a
	// catalog group follow in sorted order.
	apply := func(groupId, groupName, optionId string) {
		opt, ok := optionIndex[optionId]
		if !ok {
			// Stale selection entry (option removed from catalog since the
			// selection was made). Data, not an error.
			return
		}
		amount := opt.PriceModifierAmount
		lineTotal := decimal.Zero
		switch opt.PriceModifierType {
		case models.PriceModifierTypeAdd:
			additiveTotal = additiveTotal.Add(amount)
			lineTotal = amount
		case models.PriceModifierTypeMultiply:
			multiplicativeFactor = multiplicativeFactor.Mul(amount)
		case models.PriceModifierTypeReplace:
			// Last replace wins when several selected options replace base.
			effectiveBase = amount
		}
		breakdown = append(breakdown, PriceBreakdownItem{
			GroupId:        groupId,
			GroupName:      groupName,
			OptionId:       optionId,
			OptionName:     opt.Name,
			ModifierType:   opt.PriceModifierType,
			ModifierAmount: amount,
			LineTotal:      lineTotal,
		})
	}

	visitedGroups := make(map[string]struct{}, len(optionGroups))
	for _, group := range optionGroups {
		visitedGroups[group.ID] = struct{}{}
		value, ok := selections[group.ID]
		if !ok {
			continue
		}
		for _, optionId := range value.OptionIds() {
			apply(group.ID, group.Name, optionId)
		}
	}
	var leftoverKeys []string
	for groupId := range selections {
		if _, ok := visitedGroups[groupId]; !ok {
			leftoverKeys = append(leftoverKeys, groupId)
		}
	}
	sort.Strings(leftoverKeys)
	for _, groupId := range leftoverKeys {
		for _, optionId := range selections[groupId].OptionIds() {
			apply(groupId, "", optionId)
		}
	}

	// Step 1: base + all additive modifiers.
	subtotalBeforeMultiply := effectiveBase.Add(additiveTotal)
	// Step 2: multiplicative modifiers.
	subtotalAfterMultiply := subtotalBeforeMultiply.Mul(multiplicativeFactor)

	// Step 3: best-matching quantity tier. Only one tier ever applies: the
	// active price_tier rule with the highest quantity_min that the quantity
	// reaches. Ties keep catalog order.
	var tier *models.ConfigurationRule
	for _, rule := range rules {
		if !rule.Active() || rule.RuleType != models.RuleTypePriceTier {
			continue
		}
		if rule.QuantityMin > quantity {
			continue
		}
		if tier == nil || rule.QuantityMin > tier.QuantityMin {
			tier = rule
		}
	}

	discounts := []DiscountDetail{}
	discountAmount := decimal.Zero
	if tier != nil {
		switch tier.DiscountType {
		case models.DiscountTypePercentage:
			discountAmount = subtotalAfterMultiply.Mul(tier.DiscountValue.Div(oneHundred))
			discounts = append(discounts, DiscountDetail{
				Name:   tier.Name,
				Type:   models.DiscountTypePercentage,
				Value:  tier.DiscountValue,
				Amount: discountAmount,
			})
		case models.DiscountTypeFixedAmount:
			// Fixed discounts are per unit, not scaled by subtotal.
			discountAmount = tier.DiscountValue
			discounts = append(discounts, DiscountDetail{
				Name:   tier.Name,
				Type:   models.DiscountTypeFixedAmount,
				Value:  tier.DiscountValue,
				Amount: discountAmount,
			})
		}
	}

	perUnitPrice := subtotalAfterMultiply.Sub(discountAmount)
	total := perUnitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	return &PriceCalculation{
		BasePrice:      effectiveBase,
		OptionsTotal:   additiveTotal,
		Subtotal:       subtotalAfterMultiply,
		Discounts:      discounts,
		DiscountAmount: discountAmount,
		Total:          total,
		PerUnitPrice:   perUnitPrice,
		Quantity:       quantity,
		Breakdown:      breakdown,
	}, nil
}
