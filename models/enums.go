package models

type SelectionType string

const (
	SelectionTypeSingle   SelectionType = "single"
	SelectionTypeMultiple SelectionType = "multiple"
)

type GroupSourceType string

const (
	GroupSourceTypeStatic   GroupSourceType = "static"
	GroupSourceTypeCategory GroupSourceType = "category"
)

type PriceModifierType string

const (
	PriceModifierTypeAdd      PriceModifierType = "add"
	PriceModifierTypeMultiply PriceModifierType = "multiply"
	PriceModifierTypeReplace  PriceModifierType = "replace"
)

type RuleType string

const (
	RuleTypeRequires   RuleType = "requires"
	RuleTypeConflicts  RuleType = "conflicts"
	RuleTypeHides      RuleType = "hides"
	RuleTypeAutoSelect RuleType = "auto_select"
	RuleTypePriceTier  RuleType = "price_tier"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

type DisplayMode string

const (
	DisplayModeSinglePage DisplayMode = "single_page"
	DisplayModeWizard     DisplayMode = "wizard"
)

type ConfigurationStatus string

const (
	ConfigurationStatusInProgress ConfigurationStatus = "in_progress"
	ConfigurationStatusCompleted  ConfigurationStatus = "completed"
)
