package cpq

import (
	"github.com/quotelane/cpq_backend/models"
	"github.com/shopspring/decimal"
)

// JSON field names in this file are the wire contract reused by existing API
// consumers; they stay camelCase even though persisted models use snake_case.

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type ValidationMessage struct {
	RuleId   string   `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Message  string   `json:"message"`
	GroupId  *string  `json:"groupId"`
	OptionId *string  `json:"optionId"`
	Severity Severity `json:"severity"`
}

type ValidationResult struct {
	IsValid         bool                `json:"isValid"`
	Errors          []ValidationMessage `json:"errors"`
	Warnings        []ValidationMessage `json:"warnings"`
	AutoSelections  map[string]string   `json:"autoSelections"`
	HiddenOptions   []string            `json:"hiddenOptions"`
	HiddenGroups    []string            `json:"hiddenGroups"`
	DisabledOptions []string            `json:"disabledOptions"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{
		Errors:          []ValidationMessage{},
		Warnings:        []ValidationMessage{},
		AutoSelections:  map[string]string{},
		HiddenOptions:   []string{},
		HiddenGroups:    []string{},
		DisabledOptions: []string{},
	}
}

type PriceBreakdownItem struct {
	GroupId        string                   `json:"groupId"`
	GroupName      string                   `json:"groupName"`
	OptionId       string                   `json:"optionId"`
	OptionName     string                   `json:"optionName"`
	ModifierType   models.PriceModifierType `json:"modifierType"`
	ModifierAmount decimal.Decimal          `json:"modifierAmount"`
	LineTotal      decimal.Decimal          `json:"lineTotal"`
}

type DiscountDetail struct {
	Name   string              `json:"name"`
	Type   models.DiscountType `json:"type"`
	Value  decimal.Decimal     `json:"value"`
	Amount decimal.Decimal     `json:"amount"`
}

type PriceCalculation struct {
	BasePrice      decimal.Decimal      `json:"basePrice"`
	OptionsTotal   decimal.Decimal      `json:"optionsTotal"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Discounts      []DiscountDetail     `json:"discounts"`
	DiscountAmount decimal.Decimal      `json:"discountAmount"`
	Total          decimal.Decimal      `json:"total"`
	PerUnitPrice   decimal.Decimal      `json:"perUnitPrice"`
	Quantity       int                  `json:"quantity"`
	Breakdown      []PriceBreakdownItem `json:"breakdown"`
}
