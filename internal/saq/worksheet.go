package saq

import (
	"strings"
	"sync"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// worksheetDraftKey identifies a per-question, per-worksheet-kind draft
type worksheetDraftKey struct {
	qType      models.QuestionnaireType
	questionID string
	letter     string
}

// WorksheetManager manages the structured Appendix B/C/D sub-answers that
// live inside a response's notes field.
//
// Switching the parent answer value swaps which worksheet is active, so the
// manager keeps draft state per question and worksheet kind: edits made to a
// worksheet that is currently deselected are restored when the parent value
// switches back.
type WorksheetManager struct {
	mu     sync.Mutex
	drafts map[worksheetDraftKey]models.WorksheetData
}

// NewWorksheetManager creates an empty worksheet manager
func NewWorksheetManager() *WorksheetManager {
	return &WorksheetManager{drafts: map[worksheetDraftKey]models.WorksheetData{}}
}

// Get returns the worksheet for a question: the local draft when one exists,
// otherwise the worksheet parsed from the response notes. Parsing is
// tolerant; malformed notes yield the empty default shape.
func (m *WorksheetManager) Get(letter string, qType models.QuestionnaireType, questionID string, resp *models.Response) models.WorksheetData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(letter, qType, questionID, resp)
}

// getLocked is Get without locking. Caller holds m.mu.
func (m *WorksheetManager) getLocked(letter string, qType models.QuestionnaireType, questionID string, resp *models.Response) models.WorksheetData {
	key := worksheetDraftKey{qType: qType, questionID: questionID, letter: letter}
	if draft, ok := m.drafts[key]; ok {
		return draft
	}
	notes := ""
	if resp != nil {
		notes = resp.Notes
	}
	return models.ParseWorksheet(letter, notes)
}

// UpdateField writes one worksheet field and returns the serialized notes
// blob to store on the response. Schema-form fields are stored with the
// "app_<letter>_" prefix; object-form fields use the raw key.
func (m *WorksheetManager) UpdateField(letter string, qType models.QuestionnaireType, questionID string, resp *models.Response, fieldKey, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := m.getLocked(letter, qType, questionID, resp)
	ws.Set(m.storageKey(letter, fieldKey), value)

	key := worksheetDraftKey{qType: qType, questionID: questionID, letter: letter}
	m.drafts[key] = ws

	return ws.Serialize()
}

// storageKey applies the collision-avoidance prefix for schema-form fields
func (m *WorksheetManager) storageKey(letter, fieldKey string) string {
	if models.KindForAppendix(letter) == models.WorksheetKindObject {
		return fieldKey
	}
	prefix := models.FieldPrefix(letter)
	if strings.HasPrefix(fieldKey, prefix) {
		return fieldKey
	}
	return prefix + fieldKey
}

// ClearDraft drops the local draft for a question and worksheet kind,
// typically after the notes have been persisted.
func (m *WorksheetManager) ClearDraft(letter string, qType models.QuestionnaireType, questionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, worksheetDraftKey{qType: qType, questionID: questionID, letter: letter})
}

// Reset drops every draft. Used on session teardown.
func (m *WorksheetManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = map[worksheetDraftKey]models.WorksheetData{}
}

// IsComplete checks worksheet completeness for the given appendix letter.
//
// Object form (Appendix B): every appendix question of that letter except the
// "<letter>.0" header must have a non-blank value keyed by its question ID.
//
// Schema form (Appendix C/D): every schema key of the parent question except
// the auto-populated "requirement" key must be present, prefixed, and
// non-blank in entry 0.
func (m *WorksheetManager) IsComplete(letter string, parent models.Question, qType models.QuestionnaireType, resp *models.Response, appendixQuestions []models.Question) bool {
	ws := m.Get(letter, qType, parent.QuestionID, resp)

	switch ws.Kind {
	case models.WorksheetKindObject:
		for _, aq := range appendixQuestions {
			if aq.AppendixLetter() != letter || aq.IsAppendixHeader() {
				continue
			}
			if !ws.HasValue(aq.QuestionID) {
				return false
			}
		}
		return true

	case models.WorksheetKindSchemaArray:
		for _, field := range parent.Schema {
			if field.Key == "requirement" {
				continue
			}
			if !ws.HasValue(models.FieldPrefix(letter) + field.Key) {
				return false
			}
		}
		return true
	}
	return false
}
