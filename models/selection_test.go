package models

import (
	"encoding/json"
	"testing"
)

func TestSelectionValueWireShape(t *testing.T) {
	// Single selections serialize as a bare string, multi selections as an
	// array. Stored configurations depend on this shape staying stable.
	selection := Selection{
		"g-cpu":  SingleSelection("opt-1"),
		"g-soft": MultiSelection("opt-2", "opt-3"),
	}
	data, err := json.Marshal(selection)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if string(raw["g-cpu"]) != `"opt-1"` {
		t.Fatalf("single selection = %s, want bare string", raw["g-cpu"])
	}
	if string(raw["g-soft"]) != `["opt-2","opt-3"]` {
		t.Fatalf("multi selection = %s, want array", raw["g-soft"])
	}

	var back Selection
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if v := back["g-cpu"]; v.IsMulti || v.Single != "opt-1" {
		t.Fatalf("round-tripped single = %+v", v)
	}
	if v := back["g-soft"]; !v.IsMulti || len(v.Multi) != 2 {
		t.Fatalf("round-tripped multi = %+v", v)
	}
}

func TestSelectionValueUnmarshalRejectsOtherShapes(t *testing.T) {
	var v SelectionValue
	if err := json.Unmarshal([]byte(`{"nested":true}`), &v); err == nil {
		t.Fatal("object shape must be rejected")
	}
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Fatal("number shape must be rejected")
	}
}

func TestMultiSelectionDeduplicates(t *testing.T) {
	v := MultiSelection("a", "b", "a", "b", "c")
	if v.Count() != 3 {
		t.Fatalf("count = %d, want 3", v.Count())
	}
	ids := v.OptionIds()
	want := []string{"a", "b", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v (order preserved)", ids, want)
		}
	}
}

func TestSelectionMembership(t *testing.T) {
	s := Selection{
		"g1": SingleSelection("opt-a"),
		"g2": MultiSelection("opt-b", "opt-c"),
		"g3": MultiSelection(),
	}

	if !s.IsOptionSelected("opt-a") || !s.IsOptionSelected("opt-c") {
		t.Fatal("membership lookup missed a selected option")
	}
	if s.IsOptionSelected("opt-z") || s.IsOptionSelected("") {
		t.Fatal("membership lookup matched an unselected option")
	}

	if !s.IsGroupSelected("g1") || !s.IsGroupSelected("g2") {
		t.Fatal("group with selections reported unselected")
	}
	// Present key with an empty value does not count as selected.
	if s.IsGroupSelected("g3") {
		t.Fatal("empty multi value must not count as selected")
	}
	if s.IsGroupSelected("missing") || s.IsGroupSelected("") {
		t.Fatal("unknown group reported selected")
	}
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	original := Selection{
		"g1": SingleSelection("opt-a"),
		"g2": MultiSelection("opt-b"),
	}
	clone := original.Clone()

	clone["g1"] = SingleSelection("changed")
	clone["g2"].Multi[0] = "changed"

	if original["g1"].Single != "opt-a" {
		t.Fatal("clone shares the map with the original")
	}
	if original["g2"].Multi[0] != "opt-b" {
		t.Fatal("clone shares a multi slice with the original")
	}
}
