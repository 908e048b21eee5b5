package models

import (
	"encoding/json"
	"fmt"
)

// SelectionValue is the value a configurator session holds for one option
// group: a single option id for single-selection groups, or a list of option
// ids for multi-selection groups. The wire shape is the historical
// `string | string[]` JSON, so marshalling is custom.
type SelectionValue struct {
	Single  string
	Multi   []string
	IsMulti bool
}

func SingleSelection(optionId string) SelectionValue {
	return SelectionValue{Single: optionId}
}

func MultiSelection(optionIds ...string) SelectionValue {
	ids := make([]string, 0, len(optionIds))
	seen := make(map[string]struct{}, len(optionIds))
	for _, id := range optionIds {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return SelectionValue{Multi: ids, IsMulti: true}
}

func (v SelectionValue) IsEmpty() bool {
	if v.IsMulti {
		return len(v.Multi) == 0
	}
	return v.Single == ""
}

func (v SelectionValue) Count() int {
	if v.IsMulti {
		return len(v.Multi)
	}
	if v.Single == "" {
		return 0
	}
	return 1
}

func (v SelectionValue) Contains(optionId string) bool {
	if optionId == "" {
		return false
	}
	if v.IsMulti {
		for _, id := range v.Multi {
			if id == optionId {
				return true
			}
		}
		return false
	}
	return v.Single == optionId
}

// OptionIds returns the selected option ids in selection order.
func (v SelectionValue) OptionIds() []string {
	if v.IsMulti {
		out := make([]string, len(v.Multi))
		copy(out, v.Multi)
		return out
	}
	if v.Single == "" {
		return nil
	}
	return []string{v.Single}
}

func (v SelectionValue) MarshalJSON() ([]byte, error) {
	if v.IsMulti {
		if v.Multi == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.Multi)
	}
	return json.Marshal(v.Single)
}

func (v *SelectionValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = SingleSelection(single)
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err == nil {
		*v = MultiSelection(multi...)
		return nil
	}
	return fmt.Errorf("selection value must be a string or a string array")
}

// Selection maps option group id -> selected value. This is the mutable state
// the rule evaluator and pricing engine operate on.
type Selection map[string]SelectionValue

// IsOptionSelected reports whether optionId is selected in any group.
func (s Selection) IsOptionSelected(optionId string) bool {
	if optionId == "" {
		return false
	}
	for _, v := range s {
		if v.Contains(optionId) {
			return true
		}
	}
	return false
}

// IsGroupSelected reports whether groupId has a non-empty selection.
func (s Selection) IsGroupSelected(groupId string) bool {
	if groupId == "" {
		return false
	}
	v, ok := s[groupId]
	return ok && !v.IsEmpty()
}

func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		if v.IsMulti {
			out[k] = MultiSelection(v.Multi...)
		} else {
			out[k] = v
		}
	}
	return out
}
