package cpq

import (
	"fmt"
	"sort"

	"github.com/quotelane/cpq_backend/models"
)

// Evaluate computes the validation outcome for a selection set: errors,
// warnings, auto-selections, hidden and disabled items. It never fails for an
// invalid selection (invalid selections are data, not errors); it fails only
// on corrupt catalog input, with a ConfigurationDataError naming the rule.
//
// The same function serves both the instant local path and the authoritative
// remote path, so it must be deterministic: evaluating the same inputs always
// produces identical results, message order included.
func Evaluate(optionGroups []*models.OptionGroup, selections models.Selection, rules []*models.ConfigurationRule) (*ValidationResult, error) {
	result := newValidationResult()

	optionIndex, groupIndex := indexCatalog(optionGroups)

	activeRules := make([]*models.ConfigurationRule, 0, len(rules))
	for _, r := range rules {
		if r.Active() {
			activeRules = append(activeRules, r)
		}
	}
	// Stable: equal priorities keep catalog order.
	sort.SliceStable(activeRules, func(i, j int) bool {
		return activeRules[i].Priority < activeRules[j].Priority
	})

	if err := checkRuleReferences(activeRules, optionIndex, groupIndex); err != nil {
		return nil, err
	}

	// 1. Required groups.
	for _, group := range optionGroups {
		if group.Required() && !selections.IsGroupSelected(group.ID) {
			result.Errors = append(result.Errors, ValidationMessage{
				RuleId:   "system",
				RuleName: "Required group",
				Message:  fmt.Sprintf("%s is required", group.Name),
				GroupId:  strPtr(group.ID),
				Severity: SeverityError,
			})
		}
	}

	// 2. Cardinality for multi-selection groups.
	for _, group := range optionGroups {
		if group.SelectionType != models.SelectionTypeMultiple {
			continue
		}
		value, ok := selections[group.ID]
		if !ok || value.IsEmpty() {
			continue
		}
		count := value.Count()
		if count < group.MinSelections {
			result.Errors = append(result.Errors, ValidationMessage{
				RuleId:   "system",
				RuleName: "Min selections",
				Message:  fmt.Sprintf("%s requires at least %d selection(s)", group.Name, group.MinSelections),
				GroupId:  strPtr(group.ID),
				Severity: SeverityError,
			})
		}
		if group.MaxSelections != nil && count > *group.MaxSelections {
			result.Errors = append(result.Errors, ValidationMessage{
				RuleId:   "system",
				RuleName: "Max selections",
				Message:  fmt.Sprintf("%s allows at most %d selection(s)", group.Name, *group.MaxSelections),
				GroupId:  strPtr(group.ID),
				Severity: SeverityError,
			})
		}
	}

	// 3. Rule pass.
	seenHiddenOptions := map[string]struct{}{}
	seenHiddenGroups := map[string]struct{}{}
	seenDisabled := map[string]struct{}{}

	for _, rule := range activeRules {
		if rule.RuleType == models.RuleTypePriceTier {
			// Pricing-only rule type; the pricing engine applies it.
			continue
		}

		conditionMet := selections.IsOptionSelected(deref(rule.IfOptionId)) ||
			selections.IsGroupSelected(deref(rule.IfGroupId)) ||
			selections.IsOptionSelected(deref(rule.IfProductId))
		if !conditionMet {
			continue
		}

		switch rule.RuleType {
		case models.RuleTypeRequires:
			if rule.ThenOptionId != nil && !selections.IsOptionSelected(*rule.ThenOptionId) {
				result.Errors = append(result.Errors, ValidationMessage{
					RuleId:   rule.ID,
					RuleName: rule.Name,
					Message:  ruleMessage(rule),
					GroupId:  rule.ThenGroupId,
					OptionId: rule.ThenOptionId,
					Severity: SeverityError,
				})
			}
			if rule.ThenGroupId != nil {
				value, ok := selections[*rule.ThenGroupId]
				selected := ""
				if ok {
					if ids := value.OptionIds(); len(ids) > 0 {
						selected = ids[0]
					}
				}
				if selected == "" {
					result.Errors = append(result.Errors, ValidationMessage{
						RuleId:   rule.ID,
						RuleName: rule.Name,
						Message:  ruleMessage(rule),
						GroupId:  rule.ThenGroupId,
						Severity: SeverityError,
					})
				} else if len(rule.AllowedOptions) > 0 && !containsString(rule.AllowedOptions, selected) {
					result.Errors = append(result.Errors, ValidationMessage{
						RuleId:   rule.ID,
						RuleName: rule.Name,
						Message:  ruleMessage(rule),
						GroupId:  rule.ThenGroupId,
						OptionId: strPtr(selected),
						Severity: SeverityError,
					})
				}
			}

		case models.RuleTypeConflicts:
			if rule.ThenOptionId != nil && selections.IsOptionSelected(*rule.ThenOptionId) {
				// Both reported and disabled: the conflicting option stays
				// selected (never auto-removed) but the UI can block it.
				var ownerGroupId *string
				if opt, ok := optionIndex[*rule.ThenOptionId]; ok {
					ownerGroupId = strPtr(opt.GroupId)
				}
				result.Errors = append(result.Errors, ValidationMessage{
					RuleId:   rule.ID,
					RuleName: rule.Name,
					Message:  ruleMessage(rule),
					GroupId:  ownerGroupId,
					OptionId: rule.ThenOptionId,
					Severity: SeverityError,
				})
				if _, dup := seenDisabled[*rule.ThenOptionId]; !dup {
					seenDisabled[*rule.ThenOptionId] = struct{}{}
					result.DisabledOptions = append(result.DisabledOptions, *rule.ThenOptionId)
				}
			}

		case models.RuleTypeHides:
			if rule.ThenOptionId != nil {
				if _, dup := seenHiddenOptions[*rule.ThenOptionId]; !dup {
					seenHiddenOptions[*rule.ThenOptionId] = struct{}{}
					result.HiddenOptions = append(result.HiddenOptions, *rule.ThenOptionId)
				}
			}
			if rule.ThenGroupId != nil {
				if _, dup := seenHiddenGroups[*rule.ThenGroupId]; !dup {
					seenHiddenGroups[*rule.ThenGroupId] = struct{}{}
					result.HiddenGroups = append(result.HiddenGroups, *rule.ThenGroupId)
				}
			}

		case models.RuleTypeAutoSelect:
			// Recorded only; the coordinator merges and re-evaluates.
			if rule.ThenOptionId != nil && rule.ThenGroupId != nil {
				result.AutoSelections[*rule.ThenGroupId] = *rule.ThenOptionId
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func indexCatalog(optionGroups []*models.OptionGroup) (map[string]*models.Option, map[string]*models.OptionGroup) {
	optionIndex := make(map[string]*models.Option)
	groupIndex := make(map[string]*models.OptionGroup, len(optionGroups))
	for _, g := range optionGroups {
		groupIndex[g.ID] = g
		for _, o := range g.Options {
			optionIndex[o.ID] = o
		}
	}
	return optionIndex, groupIndex
}

// checkRuleReferences fails fast on corrupt catalog data. Consequence ids
// must resolve against the catalog; condition ids are not checked because
// IfProductId legitimately references products outside the option set (an
// unknown condition id simply never matches).
func checkRuleReferences(rules []*models.ConfigurationRule, optionIndex map[string]*models.Option, groupIndex map[string]*models.OptionGroup) error {
	for _, rule := range rules {
		if rule.RuleType == models.RuleTypePriceTier {
			continue
		}
		if deref(rule.IfOptionId) == "" && deref(rule.IfGroupId) == "" && deref(rule.IfProductId) == "" {
			return &ConfigurationDataError{RuleId: rule.ID, Reason: "rule has no condition reference"}
		}
		if id := deref(rule.ThenOptionId); id != "" {
			if _, ok := optionIndex[id]; !ok {
				return &ConfigurationDataError{RuleId: rule.ID, Reason: fmt.Sprintf("then_option_id %s does not exist", id)}
			}
		}
		if id := deref(rule.ThenGroupId); id != "" {
			if _, ok := groupIndex[id]; !ok {
				return &ConfigurationDataError{RuleId: rule.ID, Reason: fmt.Sprintf("then_group_id %s does not exist", id)}
			}
		}
	}
	return nil
}

func ruleMessage(rule *models.ConfigurationRule) string {
	if rule.ErrorMessage != "" {
		return rule.ErrorMessage
	}
	return rule.Name
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strPtr(s string) *string {
	return &s
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
