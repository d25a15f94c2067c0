package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnswerType represents the value shape a question accepts
// #IMPLEMENTATION_DECISION: Mirrors the SAQ template format used by the advisor frontend
type AnswerType string

const (
	AnswerTypeText        AnswerType = "TEXT"
	AnswerTypeDate        AnswerType = "DATE"
	AnswerTypeBoolean     AnswerType = "BOOLEAN"
	AnswerTypeMultiselect AnswerType = "MULTISELECT"
	AnswerTypeEnum        AnswerType = "ENUM"
	AnswerTypeArray       AnswerType = "ARRAY"
	AnswerTypeArrayObject AnswerType = "ARRAY_OBJECT"
)

// MarshalJSON converts AnswerType to lowercase for JSON serialization
func (at AnswerType) MarshalJSON() ([]byte, error) {
	if at == AnswerTypeArrayObject {
		return json.Marshal("array<object>")
	}
	return json.Marshal(strings.ToLower(string(at)))
}

// UnmarshalJSON converts lowercase JSON (including "array<object>") to AnswerType
func (at *AnswerType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "array<object>" {
		*at = AnswerTypeArrayObject
		return nil
	}
	*at = AnswerType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the AnswerType is a valid value
func (at AnswerType) IsValid() bool {
	switch at {
	case AnswerTypeText, AnswerTypeDate, AnswerTypeBoolean, AnswerTypeMultiselect,
		AnswerTypeEnum, AnswerTypeArray, AnswerTypeArrayObject:
		return true
	}
	return false
}

// RequiresOptions returns true if this answer type requires answer options
func (at AnswerType) RequiresOptions() bool {
	return at == AnswerTypeEnum || at == AnswerTypeMultiselect
}

// IsArrayType returns true for answer types whose values are lists
func (at AnswerType) IsArrayType() bool {
	return at == AnswerTypeMultiselect || at == AnswerTypeArray || at == AnswerTypeArrayObject
}

// QuestionnaireType identifies one of the PCI DSS self-assessment questionnaires
type QuestionnaireType string

const (
	QuestionnaireTypeSAQA    QuestionnaireType = "saq_a"
	QuestionnaireTypeSAQAEP  QuestionnaireType = "saq_a_ep"
	QuestionnaireTypeSAQB    QuestionnaireType = "saq_b"
	QuestionnaireTypeSAQBIP  QuestionnaireType = "saq_b_ip"
	QuestionnaireTypeSAQC    QuestionnaireType = "saq_c"
	QuestionnaireTypeSAQCVT  QuestionnaireType = "saq_c_vt"
	QuestionnaireTypeSAQD    QuestionnaireType = "saq_d"
	QuestionnaireTypeSAQP2PE QuestionnaireType = "saq_p2pe"
)

// IsValid checks if the QuestionnaireType is a known SAQ type
func (qt QuestionnaireType) IsValid() bool {
	switch qt {
	case QuestionnaireTypeSAQA, QuestionnaireTypeSAQAEP, QuestionnaireTypeSAQB,
		QuestionnaireTypeSAQBIP, QuestionnaireTypeSAQC, QuestionnaireTypeSAQCVT,
		QuestionnaireTypeSAQD, QuestionnaireTypeSAQP2PE:
		return true
	}
	return false
}

// AllQuestionnaireTypes returns every supported SAQ type
func AllQuestionnaireTypes() []QuestionnaireType {
	return []QuestionnaireType{
		QuestionnaireTypeSAQA, QuestionnaireTypeSAQAEP, QuestionnaireTypeSAQB,
		QuestionnaireTypeSAQBIP, QuestionnaireTypeSAQC, QuestionnaireTypeSAQCVT,
		QuestionnaireTypeSAQD, QuestionnaireTypeSAQP2PE,
	}
}

// Question kind constants for the raw template "type" property
const (
	QuestionKindRequirement = "Requirement"
	QuestionKindAppendix    = "Appendix"
	QuestionKindSummary     = "Summary"
)

// AnswerOption represents one selectable value for enum/multiselect questions
// #NORMALIZATION_DECISION: Options embedded, never queried independently
type AnswerOption struct {
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
	Order int    `bson:"order" json:"order"`
}

// SchemaField describes one field of an array<object> answer or a worksheet schema
type SchemaField struct {
	Key      string `bson:"key" json:"key"`
	Label    string `bson:"label" json:"label"`
	Required bool   `bson:"required" json:"required"`
}

// DependsOn declares the visibility condition of a question.
// The target may be addressed by its stable question ID or by the
// backend-assigned question UUID; UUID references are resolved once at bank
// load time, not per evaluation.
type DependsOn struct {
	QuestionID   string   `bson:"question_id,omitempty" json:"question_id,omitempty"`
	QuestionUUID string   `bson:"question_uuid,omitempty" json:"question_uuid,omitempty"`
	Equals       string   `bson:"equals,omitempty" json:"equals,omitempty"`
	AnyOf        []string `bson:"any_of,omitempty" json:"any_of,omitempty"`
}

// ExpectedValues returns the set of answer values that satisfy the condition
func (d *DependsOn) ExpectedValues() []string {
	if len(d.AnyOf) > 0 {
		return d.AnyOf
	}
	if d.Equals != "" {
		return []string{d.Equals}
	}
	return nil
}

// Question represents one item of a SAQ question bank.
// Questions are immutable once loaded; only seeding changes them.
// #CARDINALITY_ASSUMPTION: QuestionnaireType 1:N Questions
type Question struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireType QuestionnaireType  `bson:"questionnaire_type" json:"questionnaire_type"`

	// Stable identifier referenced by depends_on expressions and responses
	QuestionID string `bson:"question_id" json:"question_id"`
	// Backend-assigned UUID; depends_on may reference it instead of QuestionID
	QuestionUUID string `bson:"question_uuid" json:"question_uuid"`

	// Content
	Text   string `bson:"text" json:"text"`
	Number string `bson:"number" json:"number"`
	Kind   string `bson:"kind" json:"type"`

	// Answer contract
	AnswerType       AnswerType     `bson:"answer_type" json:"answer_type"`
	AnswerOptions    []AnswerOption `bson:"answer_options,omitempty" json:"answer_options,omitempty"`
	Schema           []SchemaField  `bson:"schema,omitempty" json:"schema,omitempty"`
	DependsOn        *DependsOn     `bson:"depends_on,omitempty" json:"depends_on,omitempty"`
	NotesRequiredFor []string       `bson:"notes_required_for,omitempty" json:"notes_required_for,omitempty"`

	// Structural metadata
	Section int `bson:"section" json:"section"`
	Order   int `bson:"order" json:"order"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questions
func (Question) CollectionName() string {
	return "saq_questions"
}

// BeforeCreate sets default values before inserting a new question
func (q *Question) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now

	if q.Kind == "" {
		q.Kind = QuestionKindRequirement
	}
	if q.Section == 0 {
		q.Section = 1
	}
	if q.AnswerOptions == nil && q.AnswerType.RequiresOptions() {
		q.AnswerOptions = []AnswerOption{}
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (q *Question) BeforeUpdate() {
	q.UpdatedAt = time.Now().UTC()
}

// IsAppendix returns true if the raw template kind is Appendix
func (q *Question) IsAppendix() bool {
	return q.Kind == QuestionKindAppendix
}

// IsSummary returns true for auto-generated summary questions
func (q *Question) IsSummary() bool {
	return q.Kind == QuestionKindSummary
}

// AppendixLetter returns the letter prefix of an appendix question number
// ("B.1" -> "B"). Empty for non-appendix questions or unprefixed numbers.
func (q *Question) AppendixLetter() string {
	if !q.IsAppendix() {
		return ""
	}
	idx := strings.Index(q.Number, ".")
	if idx <= 0 {
		return ""
	}
	letter := q.Number[:idx]
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return ""
	}
	return letter
}

// IsAppendixHeader returns true for the "<letter>.0" lead-in card of a
// worksheet, which is excluded from completeness checks.
func (q *Question) IsAppendixHeader() bool {
	letter := q.AppendixLetter()
	if letter == "" {
		return false
	}
	return q.Number == letter+".0"
}

// GetOptionByValue returns an answer option by its value
func (q *Question) GetOptionByValue(value string) *AnswerOption {
	for i := range q.AnswerOptions {
		if q.AnswerOptions[i].Value == value {
			return &q.AnswerOptions[i]
		}
	}
	return nil
}

// NotesRequired returns true if the given answer value mandates supplemental notes
func (q *Question) NotesRequired(value string) bool {
	for _, v := range q.NotesRequiredFor {
		if v == value {
			return true
		}
	}
	return false
}

// Answer values with special handling in the advisor
const (
	AnswerValueInPlaceWithCCW = "in_place_with_ccw"
	AnswerValueNotApplicable  = "not_applicable"
	AnswerValueNotTested      = "not_tested"
	AnswerValueInPlace        = "in_place"
	AnswerValueNotInPlace     = "not_in_place"
)

// WorksheetLetterForValue maps a control answer value to the appendix
// worksheet it requires. Empty string means no worksheet.
func WorksheetLetterForValue(value string) string {
	switch value {
	case AnswerValueInPlaceWithCCW:
		return "B"
	case AnswerValueNotApplicable:
		return "C"
	case AnswerValueNotTested:
		return "D"
	}
	return ""
}

// ValidateAnswer validates that a raw answer value fits this question's contract
func (q *Question) ValidateAnswer(value interface{}) error {
	if value == nil {
		return nil
	}
	switch q.AnswerType {
	case AnswerTypeEnum:
		s, ok := value.(string)
		if !ok {
			return ErrInvalidAnswerFormat
		}
		if s != "" && q.GetOptionByValue(s) == nil {
			return ErrInvalidOptionValue
		}
	case AnswerTypeMultiselect:
		values, ok := ToStringSlice(value)
		if !ok {
			return ErrInvalidAnswerFormat
		}
		for _, v := range values {
			if q.GetOptionByValue(v) == nil {
				return ErrInvalidOptionValue
			}
		}
	case AnswerTypeBoolean:
		if _, ok := value.(bool); !ok {
			return ErrInvalidAnswerFormat
		}
	}
	return nil
}

// ToStringSlice coerces []string or []interface{} of strings
func ToStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
