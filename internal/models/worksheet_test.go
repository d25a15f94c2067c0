package models

import (
	"encoding/json"
	"testing"
)

func TestKindForAppendix(t *testing.T) {
	tests := []struct {
		name     string
		letter   string
		expected WorksheetKind
	}{
		{"B uses flat object", "B", WorksheetKindObject},
		{"lowercase b", "b", WorksheetKindObject},
		{"C uses schema array", "C", WorksheetKindSchemaArray},
		{"D uses schema array", "D", WorksheetKindSchemaArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindForAppendix(tt.letter); got != tt.expected {
				t.Errorf("KindForAppendix(%q) = %v, want %v", tt.letter, got, tt.expected)
			}
		})
	}
}

func TestFieldPrefix(t *testing.T) {
	tests := []struct {
		letter   string
		expected string
	}{
		{"C", "app_c_"},
		{"D", "app_d_"},
	}

	for _, tt := range tests {
		if got := FieldPrefix(tt.letter); got != tt.expected {
			t.Errorf("FieldPrefix(%q) = %v, want %v", tt.letter, got, tt.expected)
		}
	}
}

func TestParseWorksheet_ObjectForm(t *testing.T) {
	ws := ParseWorksheet("B", `{"b_1":"constraint text","b_2":"objective text"}`)
	if ws.Kind != WorksheetKindObject {
		t.Fatalf("Kind = %v, want object", ws.Kind)
	}
	if ws.Get("b_1") != "constraint text" {
		t.Errorf("Get(b_1) = %v", ws.Get("b_1"))
	}
	if !ws.HasValue("b_2") {
		t.Error("HasValue(b_2) should be true")
	}
	if ws.HasValue("b_3") {
		t.Error("HasValue(b_3) should be false")
	}
}

func TestParseWorksheet_SchemaArrayForm(t *testing.T) {
	ws := ParseWorksheet("C", `[{"app_c_requirement":"2.1","app_c_reason":"no cardholder data stored"}]`)
	if ws.Kind != WorksheetKindSchemaArray {
		t.Fatalf("Kind = %v, want schema_array", ws.Kind)
	}
	if ws.Get("app_c_reason") != "no cardholder data stored" {
		t.Errorf("Get(app_c_reason) = %v", ws.Get("app_c_reason"))
	}
}

func TestParseWorksheet_TolerantRead(t *testing.T) {
	tests := []struct {
		name   string
		letter string
		notes  string
	}{
		{"Empty notes B", "B", ""},
		{"Whitespace notes C", "C", "   "},
		{"Malformed JSON B", "B", `{"unclosed`},
		{"Wrong shape for B", "B", `[1,2,3]`},
		{"Wrong shape for C", "C", `{"not":"an array"}`},
		{"Empty array for C", "C", `[]`},
		{"Null JSON", "D", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := ParseWorksheet(tt.letter, tt.notes)
			if ws.Kind != KindForAppendix(tt.letter) {
				t.Errorf("Kind = %v, want %v", ws.Kind, KindForAppendix(tt.letter))
			}
			// The empty default is always writable
			ws.Set("field", "value")
			if ws.Get("field") != "value" {
				t.Error("default worksheet should accept writes")
			}
		})
	}
}

func TestWorksheetData_SerializeRoundTrip(t *testing.T) {
	b := NewWorksheet("B")
	b.Set("b_1", "constraint")
	serialized, err := b.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if got := ParseWorksheet("B", serialized); got.Get("b_1") != "constraint" {
		t.Errorf("round trip lost b_1: %v", got)
	}

	d := NewWorksheet("D")
	d.Set("app_d_requirement", "12.10")
	serialized, err = d.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	// Schema form stays a single-entry array on the wire
	var entries []map[string]string
	if err := json.Unmarshal([]byte(serialized), &entries); err != nil {
		t.Fatalf("serialized form is not an array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0]["app_d_requirement"] != "12.10" {
		t.Errorf("round trip lost app_d_requirement: %v", entries[0])
	}
}

func TestWorksheetData_SerializeEmptyDefaults(t *testing.T) {
	objectForm := WorksheetData{Kind: WorksheetKindObject}
	got, err := objectForm.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if got != "{}" {
		t.Errorf("Serialize() = %v, want {}", got)
	}

	schemaForm := WorksheetData{Kind: WorksheetKindSchemaArray}
	got, err = schemaForm.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if got != "[{}]" {
		t.Errorf("Serialize() = %v, want [{}]", got)
	}

	if _, err := (WorksheetData{Kind: "bogus"}).Serialize(); err != ErrInvalidWorksheetKind {
		t.Errorf("Serialize() = %v, want ErrInvalidWorksheetKind", err)
	}
}

func TestWorksheetData_SetOnZeroValue(t *testing.T) {
	var object WorksheetData
	object.Kind = WorksheetKindObject
	object.Set("key", "value")
	if object.Get("key") != "value" {
		t.Error("Set should initialize the object map")
	}

	var schema WorksheetData
	schema.Kind = WorksheetKindSchemaArray
	schema.Set("key", "value")
	if schema.Get("key") != "value" {
		t.Error("Set should initialize entry 0")
	}
}
