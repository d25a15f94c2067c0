package models

import (
	"encoding/json"
	"strings"
)

// WorksheetKind selects the JSON shape a worksheet serializes to
// #IMPLEMENTATION_DECISION: Explicit tagged union instead of runtime shape
// sniffing of the notes blob
type WorksheetKind string

const (
	// WorksheetKindObject is the Appendix B compensating-control worksheet:
	// a single flat object keyed by raw appendix question IDs.
	WorksheetKindObject WorksheetKind = "object"
	// WorksheetKindSchemaArray is the Appendix C/D form: a single-entry array
	// of one object whose fields follow the parent question's schema and are
	// stored with an "app_<letter>_" prefix to avoid collisions.
	WorksheetKindSchemaArray WorksheetKind = "schema_array"
)

// KindForAppendix returns the worksheet kind used by an appendix letter
func KindForAppendix(letter string) WorksheetKind {
	if strings.EqualFold(letter, "B") {
		return WorksheetKindObject
	}
	return WorksheetKindSchemaArray
}

// FieldPrefix returns the storage prefix for schema-form fields of a letter
// ("C" -> "app_c_"). The object form uses raw question IDs, no prefix.
func FieldPrefix(letter string) string {
	return "app_" + strings.ToLower(letter) + "_"
}

// WorksheetData is the structured sub-answer stored inside a response's
// notes field for answers that require a supplemental worksheet.
type WorksheetData struct {
	Kind    WorksheetKind
	Object  map[string]string
	Entries []map[string]string
}

// NewWorksheet returns the empty default shape for an appendix letter
func NewWorksheet(letter string) WorksheetData {
	if KindForAppendix(letter) == WorksheetKindObject {
		return WorksheetData{Kind: WorksheetKindObject, Object: map[string]string{}}
	}
	return WorksheetData{Kind: WorksheetKindSchemaArray, Entries: []map[string]string{{}}}
}

// ParseWorksheet decodes worksheet data from a notes blob.
// Tolerant-read policy: malformed or absent JSON yields the empty default
// shape for the letter rather than an error.
func ParseWorksheet(letter, notes string) WorksheetData {
	ws := NewWorksheet(letter)
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return ws
	}

	switch ws.Kind {
	case WorksheetKindObject:
		var obj map[string]string
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil || obj == nil {
			return NewWorksheet(letter)
		}
		ws.Object = obj
	case WorksheetKindSchemaArray:
		var entries []map[string]string
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil || len(entries) == 0 {
			return NewWorksheet(letter)
		}
		if entries[0] == nil {
			entries[0] = map[string]string{}
		}
		ws.Entries = entries
	}
	return ws
}

// Serialize encodes the worksheet back into its notes representation
func (w WorksheetData) Serialize() (string, error) {
	var (
		data []byte
		err  error
	)
	switch w.Kind {
	case WorksheetKindObject:
		obj := w.Object
		if obj == nil {
			obj = map[string]string{}
		}
		data, err = json.Marshal(obj)
	case WorksheetKindSchemaArray:
		entries := w.Entries
		if len(entries) == 0 {
			entries = []map[string]string{{}}
		}
		data, err = json.Marshal(entries)
	default:
		return "", ErrInvalidWorksheetKind
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Get returns a field value. The object form reads directly; the schema form
// reads entry 0.
func (w WorksheetData) Get(key string) string {
	switch w.Kind {
	case WorksheetKindObject:
		return w.Object[key]
	case WorksheetKindSchemaArray:
		if len(w.Entries) == 0 {
			return ""
		}
		return w.Entries[0][key]
	}
	return ""
}

// Set writes a field value in place
func (w *WorksheetData) Set(key, value string) {
	switch w.Kind {
	case WorksheetKindObject:
		if w.Object == nil {
			w.Object = map[string]string{}
		}
		w.Object[key] = value
	case WorksheetKindSchemaArray:
		if len(w.Entries) == 0 {
			w.Entries = []map[string]string{{}}
		}
		if w.Entries[0] == nil {
			w.Entries[0] = map[string]string{}
		}
		w.Entries[0][key] = value
	}
}

// HasValue reports whether a field is present and non-blank
func (w WorksheetData) HasValue(key string) bool {
	return strings.TrimSpace(w.Get(key)) != ""
}
