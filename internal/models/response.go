package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnswerStatus represents the review status assigned to a persisted answer
type AnswerStatus string

const (
	AnswerStatusPending                AnswerStatus = "pending"
	AnswerStatusValid                  AnswerStatus = "valid"
	AnswerStatusRequiresReview         AnswerStatus = "requires_review"
	AnswerStatusRequiresFurtherDetails AnswerStatus = "requires_further_details"
)

// IsValid checks if the AnswerStatus is a valid value
func (as AnswerStatus) IsValid() bool {
	switch as {
	case AnswerStatusPending, AnswerStatusValid, AnswerStatusRequiresReview,
		AnswerStatusRequiresFurtherDetails:
		return true
	}
	return false
}

// NeedsAttention returns true if the answer still needs user or reviewer action
func (as AnswerStatus) NeedsAttention() bool {
	return as != AnswerStatusValid
}

// Response holds the answer state for one question of one questionnaire type.
//
// Invariant: AnswerUUID is set if and only if the current Value/Notes pair
// exactly equals the last payload successfully persisted for this question.
// Every mutating helper below maintains that invariant.
// #DATA_ASSUMPTION: Responses are never deleted, only superseded
type Response struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireType QuestionnaireType  `bson:"questionnaire_type" json:"questionnaire_type"`
	QuestionID        string             `bson:"question_id" json:"question_id"`

	// Current answer state
	Value interface{} `bson:"value,omitempty" json:"value,omitempty"`
	Notes string      `bson:"notes,omitempty" json:"notes,omitempty"`

	// AnswerUUID is empty while the current Value/Notes pair is unpersisted
	AnswerUUID string `bson:"answer_uuid,omitempty" json:"answer_uuid,omitempty"`

	// Last known persisted snapshot, kept to detect edits that merely revert
	// to what the backend already has
	SavedAnswerUUID string      `bson:"saved_answer_uuid,omitempty" json:"saved_answer_uuid,omitempty"`
	SavedValue      interface{} `bson:"saved_value,omitempty" json:"saved_value,omitempty"`
	SavedNotes      string      `bson:"saved_notes,omitempty" json:"saved_notes,omitempty"`

	// Review metadata
	AnswerStatus  AnswerStatus `bson:"answer_status" json:"answer_status"`
	OriginalValue interface{}  `bson:"original_value,omitempty" json:"original_value,omitempty"`
	ReviewerNotes string       `bson:"reviewer_notes,omitempty" json:"reviewer_notes,omitempty"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for responses
func (Response) CollectionName() string {
	return "saq_responses"
}

// BeforeCreate sets default values before inserting a new response
func (r *Response) BeforeCreate() {
	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.AnswerStatus == "" {
		r.AnswerStatus = AnswerStatusPending
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (r *Response) BeforeUpdate() {
	r.UpdatedAt = time.Now().UTC()
}

// IsDirty returns true while the current value/notes pair is unpersisted
func (r *Response) IsDirty() bool {
	return r.AnswerUUID == ""
}

// IsAnswered returns true if the response carries a non-empty value
func (r *Response) IsAnswered() bool {
	return !IsEmptyValue(r.Value)
}

// ApplyValue merges a new value into the response, preserving review
// metadata. If the value actually changes while a persisted AnswerUUID is
// held, the current state is moved into the saved snapshot and the response
// becomes dirty. Returns true if the value changed.
func (r *Response) ApplyValue(value interface{}) bool {
	if ValuesEqual(r.Value, value) {
		return false
	}
	if r.AnswerUUID != "" {
		r.SavedAnswerUUID = r.AnswerUUID
		r.SavedValue = r.Value
		r.SavedNotes = r.Notes
		r.AnswerUUID = ""
	}
	r.Value = value
	r.UpdatedAt = time.Now().UTC()
	return true
}

// ApplyNotes merges new notes into the response with the same dirtying rule
// as ApplyValue, scoped to the notes field. Returns true if notes changed.
func (r *Response) ApplyNotes(notes string) bool {
	if r.Notes == notes {
		return false
	}
	if r.AnswerUUID != "" {
		r.SavedAnswerUUID = r.AnswerUUID
		r.SavedValue = r.Value
		r.SavedNotes = r.Notes
		r.AnswerUUID = ""
	}
	r.Notes = notes
	r.UpdatedAt = time.Now().UTC()
	return true
}

// MatchesSaved returns true if the current value/notes pair deep-equals the
// saved snapshot, meaning a dirty edit merely reverted a persisted answer.
func (r *Response) MatchesSaved() bool {
	if r.SavedAnswerUUID == "" {
		return false
	}
	return ValuesEqual(r.Value, r.SavedValue) && r.Notes == r.SavedNotes
}

// RestoreSaved re-attaches the saved AnswerUUID without a network round trip
func (r *Response) RestoreSaved() {
	r.AnswerUUID = r.SavedAnswerUUID
	r.UpdatedAt = time.Now().UTC()
}

// MarkPersisted records a successful persistence of the current value/notes
func (r *Response) MarkPersisted(answerUUID string, status AnswerStatus) {
	r.AnswerUUID = answerUUID
	r.SavedAnswerUUID = answerUUID
	r.SavedValue = r.Value
	r.SavedNotes = r.Notes
	if status != "" {
		r.AnswerStatus = status
	}
	r.UpdatedAt = time.Now().UTC()
}

// Normalize trims string values and notes ahead of persistence.
// Returns true if anything changed.
func (r *Response) Normalize() bool {
	changed := false
	if s, ok := r.Value.(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != s {
			r.Value = trimmed
			changed = true
		}
	}
	if trimmed := strings.TrimSpace(r.Notes); trimmed != r.Notes {
		r.Notes = trimmed
		changed = true
	}
	return changed
}

// FlagForDetails marks the answer as needing clarification from the merchant.
// The value captured at the moment the reviewer first flags it is preserved
// across further edits for audit display.
func (r *Response) FlagForDetails(reviewerNotes string) {
	if r.OriginalValue == nil {
		r.OriginalValue = r.Value
	}
	r.AnswerStatus = AnswerStatusRequiresFurtherDetails
	r.ReviewerNotes = reviewerNotes
	r.UpdatedAt = time.Now().UTC()
}

// IsEmptyValue reports whether an answer value counts as unanswered
func IsEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case bool:
		return false
	}
	return false
}

// ValuesEqual compares two answer values. Arrays are compared as
// order-insensitive multisets via sorted serialization; everything else is
// compared by canonical serialization.
func ValuesEqual(a, b interface{}) bool {
	return canonicalValue(a) == canonicalValue(b)
}

// canonicalValue produces a stable string form of an answer value
func canonicalValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return "s:" + v
	case bool:
		return fmt.Sprintf("b:%t", v)
	case []string:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, canonicalValue(item))
		}
		sort.Strings(parts)
		return "a:" + strings.Join(parts, "\x1f")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, canonicalValue(item))
		}
		sort.Strings(parts)
		return "a:" + strings.Join(parts, "\x1f")
	default:
		// Maps and numbers fall back to deterministic JSON
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%#v", v)
		}
		return "j:" + string(data)
	}
}
