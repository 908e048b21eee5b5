package cpq

import (
	"errors"
	"testing"

	"github.com/quotelane/cpq_backend/models"
)

func intPtr(n int) *int { return &n }

func activeRule(id string, ruleType models.RuleType, priority int) *models.ConfigurationRule {
	return &models.ConfigurationRule{
		ID:       id,
		RuleType: ruleType,
		Name:     id,
		Priority: priority,
		IsActive: bp(true),
	}
}

// aircraftCatalog mirrors the demo light-aircraft template: a required engine
// group, an optional multi-select upgrades group with conflicting add-ons.
func aircraftCatalog() []*models.OptionGroup {
	return []*models.OptionGroup{
		testGroup("g-engine", "Engine Type", models.SelectionTypeSingle, true,
			testOption("opt-engine-base", "g-engine", "160 HP", models.PriceModifierTypeAdd, "0"),
			testOption("opt-engine-big", "g-engine", "210 HP", models.PriceModifierTypeAdd, "45000"),
		),
		testGroup("g-upgrades", "Optional Upgrades", models.SelectionTypeMultiple, false,
			testOption("opt-ac", "g-upgrades", "Air Conditioning", models.PriceModifierTypeAdd, "28000"),
			testOption("opt-tires", "g-upgrades", "Backcountry Kit", models.PriceModifierTypeAdd, "8500"),
			testOption("opt-tanks", "g-upgrades", "Extended Tanks", models.PriceModifierTypeAdd, "12000"),
		),
	}
}

func TestEvaluateRequiredGroupMissing(t *testing.T) {
	groups := aircraftCatalog()

	result, err := Evaluate(groups, models.Selection{}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected invalid result for missing required group")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly 1", result.Errors)
	}
	msg := result.Errors[0]
	if msg.RuleId != "system" || msg.GroupId == nil || *msg.GroupId != "g-engine" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Message != "Engine Type is required" {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestEvaluateRequiredGroupEmptyValueCountsAsMissing(t *testing.T) {
	groups := aircraftCatalog()
	selections := models.Selection{
		"g-engine": models.MultiSelection(), // present key, empty value
	}

	result, err := Evaluate(groups, selections, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.IsValid {
		t.Fatal("empty selection value must not satisfy a required group")
	}
}

func TestEvaluateCardinality(t *testing.T) {
	groups := aircraftCatalog()
	groups[1].MinSelections = 2
	groups[1].MaxSelections = intPtr(2)

	cases := []struct {
		name       string
		value      models.SelectionValue
		wantErrors int
		wantRule   string
	}{
		{"below min", models.MultiSelection("opt-ac"), 1, "Min selections"},
		{"at bounds", models.MultiSelection("opt-ac", "opt-tires"), 0, ""},
		{"above max", models.MultiSelection("opt-ac", "opt-tires", "opt-tanks"), 1, "Max selections"},
	}
	for _, tc := range cases {
		selections := models.Selection{
			"g-engine":   models.SingleSelection("opt-engine-base"),
			"g-upgrades": tc.value,
		}
		result, err := Evaluate(groups, selections, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(result.Errors) != tc.wantErrors {
			t.Fatalf("%s: errors = %+v, want %d", tc.name, result.Errors, tc.wantErrors)
		}
		if tc.wantRule != "" && result.Errors[0].RuleName != tc.wantRule {
			t.Fatalf("%s: rule = %q, want %q", tc.name, result.Errors[0].RuleName, tc.wantRule)
		}
	}
}

func TestEvaluateCardinalitySkippedWhenGroupUntouched(t *testing.T) {
	groups := aircraftCatalog()
	groups[1].MinSelections = 2

	selections := models.Selection{"g-engine": models.SingleSelection("opt-engine-base")}
	result, err := Evaluate(groups, selections, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Optional group with nothing selected: min_selections does not fire.
	if !result.IsValid {
		t.Fatalf("expected valid, got %+v", result.Errors)
	}
}

func TestEvaluateRequiresOptionForm(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-req", models.RuleTypeRequires, 1)
	rule.ErrorMessage = "Extended tanks require the 210 HP engine"
	rule.IfOptionId = strPtr("opt-tanks")
	rule.ThenOptionId = strPtr("opt-engine-big")
	rule.ThenGroupId = strPtr("g-engine")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-tanks"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected requires violation")
	}
	if result.Errors[0].Message != "Extended tanks require the 210 HP engine" {
		t.Fatalf("message = %q", result.Errors[0].Message)
	}

	// Satisfying the consequence clears the error.
	selections["g-engine"] = models.SingleSelection("opt-engine-big")
	result, err = Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid after satisfying requirement, got %+v", result.Errors)
	}
}

func TestEvaluateRequiresGroupFormWithAllowedOptions(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-req-group", models.RuleTypeRequires, 1)
	rule.IfOptionId = strPtr("opt-tanks")
	rule.ThenGroupId = strPtr("g-engine")
	rule.AllowedOptions = []string{"opt-engine-big"}

	// Group satisfied but with a disallowed option.
	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-tanks"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected violation: selected engine not in allowed_options")
	}
	if result.Errors[0].OptionId == nil || *result.Errors[0].OptionId != "opt-engine-base" {
		t.Fatalf("expected offending option id, got %+v", result.Errors[0])
	}

	// Group not selected at all.
	delete(selections, "g-engine")
	result, err = Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// One system "required group" error plus the rule error.
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %+v, want 2", result.Errors)
	}

	// Allowed option satisfies the rule.
	selections["g-engine"] = models.SingleSelection("opt-engine-big")
	result, err = Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid, got %+v", result.Errors)
	}
}

func TestEvaluateConflictsReportsAndDisables(t *testing.T) {
	groups := aircraftCatalog()
	ruleA := activeRule("r-conf-a", models.RuleTypeConflicts, 1)
	ruleA.ErrorMessage = "AC cannot be combined with the backcountry kit"
	ruleA.IfOptionId = strPtr("opt-ac")
	ruleA.ThenOptionId = strPtr("opt-tires")
	// Second rule targeting the same option checks disabled dedup.
	ruleB := activeRule("r-conf-b", models.RuleTypeConflicts, 2)
	ruleB.IfOptionId = strPtr("opt-tanks")
	ruleB.ThenOptionId = strPtr("opt-tires")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-big"),
		"g-upgrades": models.MultiSelection("opt-ac", "opt-tires", "opt-tanks"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{ruleA, ruleB})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected conflict errors")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %+v, want 2", result.Errors)
	}
	if result.Errors[0].GroupId == nil || *result.Errors[0].GroupId != "g-upgrades" {
		t.Fatalf("conflict message should carry the owning group, got %+v", result.Errors[0])
	}
	if len(result.DisabledOptions) != 1 || result.DisabledOptions[0] != "opt-tires" {
		t.Fatalf("disabled = %v, want [opt-tires] once", result.DisabledOptions)
	}
	// The conflicting option stays in the selection; evaluation never mutates it.
	if !selections.IsOptionSelected("opt-tires") {
		t.Fatal("conflict must not remove the selection")
	}
}

func TestEvaluateConflictInactiveWhenTargetUnselected(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-conf", models.RuleTypeConflicts, 1)
	rule.IfOptionId = strPtr("opt-ac")
	rule.ThenOptionId = strPtr("opt-tires")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-ac"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("no conflict when target not selected, got %+v", result.Errors)
	}
	// Disabling only happens when the conflict is live, i.e. when the target
	// is actually selected alongside the trigger.
	if len(result.DisabledOptions) != 0 {
		t.Fatalf("disabled = %v, want none while the target is unselected", result.DisabledOptions)
	}
}

func TestEvaluateHides(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-hide", models.RuleTypeHides, 1)
	rule.IfOptionId = strPtr("opt-engine-base")
	rule.ThenOptionId = strPtr("opt-tanks")
	rule.ThenGroupId = strPtr("g-upgrades")

	selections := models.Selection{"g-engine": models.SingleSelection("opt-engine-base")}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule, rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("hides is not an error, got %+v", result.Errors)
	}
	if len(result.HiddenOptions) != 1 || result.HiddenOptions[0] != "opt-tanks" {
		t.Fatalf("hidden options = %v", result.HiddenOptions)
	}
	if len(result.HiddenGroups) != 1 || result.HiddenGroups[0] != "g-upgrades" {
		t.Fatalf("hidden groups = %v", result.HiddenGroups)
	}
}

func TestEvaluateAutoSelectRecordedNotApplied(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-auto", models.RuleTypeAutoSelect, 1)
	rule.IfOptionId = strPtr("opt-engine-big")
	rule.ThenGroupId = strPtr("g-upgrades")
	rule.ThenOptionId = strPtr("opt-tanks")

	selections := models.Selection{"g-engine": models.SingleSelection("opt-engine-big")}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.AutoSelections["g-upgrades"] != "opt-tanks" {
		t.Fatalf("autoSelections = %v", result.AutoSelections)
	}
	if selections.IsOptionSelected("opt-tanks") {
		t.Fatal("Evaluate must record, not apply, auto-selections")
	}
}

func TestEvaluateAutoSelectMissingTargetSkipped(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-auto", models.RuleTypeAutoSelect, 1)
	rule.IfOptionId = strPtr("opt-engine-big")
	rule.ThenOptionId = strPtr("opt-tanks")
	// ThenGroupId deliberately nil.

	selections := models.Selection{"g-engine": models.SingleSelection("opt-engine-big")}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(result.AutoSelections) != 0 {
		t.Fatalf("autoSelections = %v, want empty", result.AutoSelections)
	}
}

func TestEvaluatePriorityOrderingStable(t *testing.T) {
	groups := aircraftCatalog()
	// Same trigger, deliberately shuffled priorities; messages must come out
	// priority-sorted with ties in input order.
	r3 := activeRule("r-late", models.RuleTypeConflicts, 5)
	r3.IfOptionId = strPtr("opt-ac")
	r3.ThenOptionId = strPtr("opt-tires")
	r1 := activeRule("r-first", models.RuleTypeConflicts, 1)
	r1.IfOptionId = strPtr("opt-ac")
	r1.ThenOptionId = strPtr("opt-tires")
	r2 := activeRule("r-tie", models.RuleTypeConflicts, 1)
	r2.IfOptionId = strPtr("opt-ac")
	r2.ThenOptionId = strPtr("opt-tires")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-ac", "opt-tires"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{r3, r1, r2})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	var got []string
	for _, e := range result.Errors {
		got = append(got, e.RuleId)
	}
	want := []string{"r-first", "r-tie", "r-late"}
	if len(got) != len(want) {
		t.Fatalf("rule order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rule order = %v, want %v", got, want)
		}
	}
}

func TestEvaluateInactiveRuleSkipped(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-off", models.RuleTypeConflicts, 1)
	rule.IsActive = bp(false)
	rule.IfOptionId = strPtr("opt-ac")
	rule.ThenOptionId = strPtr("opt-tires")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-ac", "opt-tires"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("inactive rule must not fire, got %+v", result.Errors)
	}
}

func TestEvaluateCorruptRuleData(t *testing.T) {
	groups := aircraftCatalog()

	noCondition := activeRule("r-nocond", models.RuleTypeRequires, 1)
	noCondition.ThenOptionId = strPtr("opt-engine-big")

	badTarget := activeRule("r-badtarget", models.RuleTypeConflicts, 1)
	badTarget.IfOptionId = strPtr("opt-ac")
	badTarget.ThenOptionId = strPtr("opt-missing")

	for _, rule := range []*models.ConfigurationRule{noCondition, badTarget} {
		_, err := Evaluate(groups, models.Selection{}, []*models.ConfigurationRule{rule})
		var dataErr *ConfigurationDataError
		if !errors.As(err, &dataErr) {
			t.Fatalf("rule %s: err = %v, want ConfigurationDataError", rule.ID, err)
		}
		if dataErr.RuleId != rule.ID {
			t.Fatalf("error names rule %q, want %q", dataErr.RuleId, rule.ID)
		}
	}
}

func TestEvaluateUnknownConditionIdNeverMatches(t *testing.T) {
	groups := aircraftCatalog()
	// Condition ids may reference products outside the option set; an unknown
	// id is legal and simply never fires.
	rule := activeRule("r-ext", models.RuleTypeConflicts, 1)
	rule.IfProductId = strPtr("external-product-id")
	rule.ThenOptionId = strPtr("opt-tires")

	selections := models.Selection{
		"g-engine":   models.SingleSelection("opt-engine-base"),
		"g-upgrades": models.MultiSelection("opt-tires"),
	}
	result, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("unmatched condition must not fire, got %+v", result.Errors)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	groups := aircraftCatalog()
	rule := activeRule("r-req", models.RuleTypeRequires, 1)
	rule.IfOptionId = strPtr("opt-tanks")
	rule.ThenOptionId = strPtr("opt-engine-big")

	selections := models.Selection{
		"g-upgrades": models.MultiSelection("opt-tanks"),
	}
	first, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Evaluate(groups, selections, []*models.ConfigurationRule{rule})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(again.Errors) != len(first.Errors) {
			t.Fatalf("run %d: error count changed", i)
		}
		for j := range again.Errors {
			if again.Errors[j] != first.Errors[j] {
				// Messages hold pointers; compare the stable fields.
				if again.Errors[j].RuleId != first.Errors[j].RuleId ||
					again.Errors[j].Message != first.Errors[j].Message {
					t.Fatalf("run %d: message %d changed", i, j)
				}
			}
		}
	}
}
