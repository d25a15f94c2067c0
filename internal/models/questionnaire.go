package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireStatus represents the lifecycle state of a questionnaire instance
// #IMPLEMENTATION_DECISION: Transitions are strictly forward except for the
// info_requested -> providing_info edge triggered by a merchant editing a
// flagged answer.
type QuestionnaireStatus string

const (
	QuestionnaireStatusDraft         QuestionnaireStatus = "draft"
	QuestionnaireStatusInProgress    QuestionnaireStatus = "in_progress"
	QuestionnaireStatusInfoRequested QuestionnaireStatus = "info_requested"
	QuestionnaireStatusProvidingInfo QuestionnaireStatus = "providing_info"
	QuestionnaireStatusSubmitted     QuestionnaireStatus = "submitted"
	QuestionnaireStatusReviewed      QuestionnaireStatus = "reviewed"
	QuestionnaireStatusRemoved       QuestionnaireStatus = "removed"
)

// IsValid checks if the QuestionnaireStatus is a valid value
func (qs QuestionnaireStatus) IsValid() bool {
	switch qs {
	case QuestionnaireStatusDraft, QuestionnaireStatusInProgress,
		QuestionnaireStatusInfoRequested, QuestionnaireStatusProvidingInfo,
		QuestionnaireStatusSubmitted, QuestionnaireStatusReviewed,
		QuestionnaireStatusRemoved:
		return true
	}
	return false
}

// IsFinalized returns true for statuses past merchant editing
func (qs QuestionnaireStatus) IsFinalized() bool {
	return qs == QuestionnaireStatusSubmitted || qs == QuestionnaireStatusReviewed
}

// rank orders statuses for the forward-only transition rule
func (qs QuestionnaireStatus) rank() int {
	switch qs {
	case QuestionnaireStatusDraft:
		return 0
	case QuestionnaireStatusInProgress:
		return 1
	case QuestionnaireStatusInfoRequested, QuestionnaireStatusProvidingInfo:
		return 2
	case QuestionnaireStatusSubmitted:
		return 3
	case QuestionnaireStatusReviewed:
		return 4
	case QuestionnaireStatusRemoved:
		return 5
	}
	return -1
}

// CanTransitionTo reports whether moving to the target status is allowed
func (qs QuestionnaireStatus) CanTransitionTo(target QuestionnaireStatus) bool {
	if qs == target {
		return false
	}
	// Sanctioned backward edges: a reviewer requests clarification on a
	// submitted questionnaire, and the merchant/reviewer pair cycles between
	// providing info and requesting more.
	if qs == QuestionnaireStatusSubmitted && target == QuestionnaireStatusInfoRequested {
		return true
	}
	if qs == QuestionnaireStatusInfoRequested && target == QuestionnaireStatusProvidingInfo {
		return true
	}
	if qs == QuestionnaireStatusProvidingInfo && target == QuestionnaireStatusInfoRequested {
		return true
	}
	return target.rank() > qs.rank()
}

// RoleAssignment maps a single collaborator email to a role string.
// Serialized as an array of single-key objects for compatibility with the
// advisor frontend.
type RoleAssignment map[string]string

// Email returns the single email key of the assignment
func (ra RoleAssignment) Email() string {
	for email := range ra {
		return email
	}
	return ""
}

// Role returns the role of the single entry
func (ra RoleAssignment) Role() string {
	for _, role := range ra {
		return role
	}
	return ""
}

// QuestionnaireAnswer holds per-merchant metadata for one selected SAQ type
// #CARDINALITY_ASSUMPTION: Merchant 1:N QuestionnaireAnswers, one per SAQ type
type QuestionnaireAnswer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MerchantID primitive.ObjectID `bson:"merchant_id" json:"merchant_id"`

	// Backend identifier used by the persistence and render collaborators
	QuestionnaireAnswerUUID string `bson:"questionnaire_answer_uuid" json:"questionnaire_answer_uuid"`

	QuestionnaireType QuestionnaireType   `bson:"questionnaire_type" json:"questionnaire_type"`
	Status            QuestionnaireStatus `bson:"status" json:"status"`

	// Collaborator role assignments
	Roles         []RoleAssignment `bson:"roles,omitempty" json:"roles,omitempty"`
	RequiredRoles []string         `bson:"required_roles,omitempty" json:"required_roles,omitempty"`

	// Document render metadata
	DocumentUUID string     `bson:"document_uuid,omitempty" json:"document_uuid,omitempty"`
	RenderedAt   *time.Time `bson:"rendered_at,omitempty" json:"rendered_at,omitempty"`

	// Audit fields
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for questionnaire answers
func (QuestionnaireAnswer) CollectionName() string {
	return "saq_questionnaire_answers"
}

// BeforeCreate sets default values before inserting a new questionnaire answer
func (q *QuestionnaireAnswer) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = QuestionnaireStatusDraft
	}
	if q.Roles == nil {
		q.Roles = []RoleAssignment{}
	}
	if q.RequiredRoles == nil {
		q.RequiredRoles = []string{}
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (q *QuestionnaireAnswer) BeforeUpdate() {
	q.UpdatedAt = time.Now().UTC()
}

// Transition moves the questionnaire to the target status if allowed
func (q *QuestionnaireAnswer) Transition(target QuestionnaireStatus) error {
	if !target.IsValid() {
		return ErrInvalidStatusTransition
	}
	if !q.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	q.Status = target
	q.UpdatedAt = now
	switch target {
	case QuestionnaireStatusSubmitted:
		q.SubmittedAt = &now
	case QuestionnaireStatusReviewed:
		q.ReviewedAt = &now
	}
	return nil
}

// MarkInProgress transitions a draft questionnaire to in_progress.
// Calling it on a later status is a no-op.
func (q *QuestionnaireAnswer) MarkInProgress() {
	if q.Status == QuestionnaireStatusDraft {
		q.Status = QuestionnaireStatusInProgress
		q.UpdatedAt = time.Now().UTC()
	}
}

// BeginProvidingInfo handles the merchant editing a flagged answer.
// One-way: a questionnaire never reverts to info_requested automatically.
func (q *QuestionnaireAnswer) BeginProvidingInfo() bool {
	if q.Status != QuestionnaireStatusInfoRequested {
		return false
	}
	q.Status = QuestionnaireStatusProvidingInfo
	q.UpdatedAt = time.Now().UTC()
	return true
}

// IsSubmitted returns true once the questionnaire has been submitted
func (q *QuestionnaireAnswer) IsSubmitted() bool {
	return q.Status == QuestionnaireStatusSubmitted || q.Status == QuestionnaireStatusReviewed
}

// IsEditable returns true while the merchant may still change answers
func (q *QuestionnaireAnswer) IsEditable() bool {
	switch q.Status {
	case QuestionnaireStatusDraft, QuestionnaireStatusInProgress,
		QuestionnaireStatusInfoRequested, QuestionnaireStatusProvidingInfo:
		return true
	}
	return false
}

// AddCollaborator merges an email/role assignment into the roles list and the
// deduplicated required-role list without touching unrelated metadata fields.
func (q *QuestionnaireAnswer) AddCollaborator(email, role string) {
	replaced := false
	for i, ra := range q.Roles {
		if ra.Email() == email {
			q.Roles[i] = RoleAssignment{email: role}
			replaced = true
			break
		}
	}
	if !replaced {
		q.Roles = append(q.Roles, RoleAssignment{email: role})
	}

	if role != "" {
		found := false
		for _, r := range q.RequiredRoles {
			if r == role {
				found = true
				break
			}
		}
		if !found {
			q.RequiredRoles = append(q.RequiredRoles, role)
		}
	}
	q.UpdatedAt = time.Now().UTC()
}

// RemoveCollaborator drops the role assignment for an email.
// Returns true if an assignment was removed.
func (q *QuestionnaireAnswer) RemoveCollaborator(email string) bool {
	for i, ra := range q.Roles {
		if ra.Email() == email {
			q.Roles = append(q.Roles[:i], q.Roles[i+1:]...)
			q.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// RoleFor returns the assigned role for an email, if any
func (q *QuestionnaireAnswer) RoleFor(email string) (string, bool) {
	for _, ra := range q.Roles {
		if ra.Email() == email {
			return ra.Role(), true
		}
	}
	return "", false
}

// SetDocument merges new render metadata into the questionnaire
func (q *QuestionnaireAnswer) SetDocument(documentUUID string) {
	now := time.Now().UTC()
	q.DocumentUUID = documentUUID
	q.RenderedAt = &now
	q.UpdatedAt = now
}
