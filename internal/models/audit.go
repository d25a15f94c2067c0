package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction represents the type of action in an audit log
// #IMPLEMENTATION_DECISION: PCI evidence trail needs every answer persist and
// status transition recorded
type AuditAction string

const (
	AuditActionCreate      AuditAction = "CREATE"
	AuditActionUpdate      AuditAction = "UPDATE"
	AuditActionPersist     AuditAction = "PERSIST"
	AuditActionSubmit      AuditAction = "SUBMIT"
	AuditActionReview      AuditAction = "REVIEW"
	AuditActionRequestInfo AuditAction = "REQUEST_INFO"
	AuditActionShare       AuditAction = "SHARE"
	AuditActionUnshare     AuditAction = "UNSHARE"
	AuditActionRender      AuditAction = "RENDER"
	AuditActionRemove      AuditAction = "REMOVE"
)

// MarshalJSON converts AuditAction to lowercase for JSON serialization
func (a AuditAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(a)))
}

// UnmarshalJSON converts lowercase JSON to AuditAction
func (a *AuditAction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = AuditAction(strings.ToUpper(s))
	return nil
}

// IsValid checks if the AuditAction is a valid value
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionPersist, AuditActionSubmit,
		AuditActionReview, AuditActionRequestInfo, AuditActionShare,
		AuditActionUnshare, AuditActionRender, AuditActionRemove:
		return true
	}
	return false
}

// ResourceType constants for audit logging
const (
	ResourceTypeQuestionnaire = "questionnaire"
	ResourceTypeQuestion      = "question"
	ResourceTypeResponse      = "response"
	ResourceTypeDocument      = "document"
	ResourceTypeCollaborator  = "collaborator"
)

// AuditLog represents one entry of the compliance activity trail
// #DATA_ASSUMPTION: Audit logs are append-only, never modified or deleted
type AuditLog struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Actor (who performed the action)
	ActorEmail      string              `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	ActorMerchantID *primitive.ObjectID `bson:"actor_merchant_id,omitempty" json:"actor_merchant_id,omitempty"`

	// Action
	Action       AuditAction `bson:"action" json:"action"`
	ResourceType string      `bson:"resource_type" json:"resource_type"`
	ResourceID   string      `bson:"resource_id" json:"resource_id"`

	// Context
	Description string                 `bson:"description" json:"description"`
	Changes     map[string]interface{} `bson:"changes,omitempty" json:"changes,omitempty"`

	// Request metadata
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`

	// Timestamp
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection name for audit logs
func (AuditLog) CollectionName() string {
	return "saq_audit_logs"
}

// BeforeCreate sets default values before inserting a new audit log
func (a *AuditLog) BeforeCreate() {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = time.Now().UTC()

	if a.Changes == nil {
		a.Changes = map[string]interface{}{}
	}
}

// NewAuditLog creates a new audit log entry
func NewAuditLog(action AuditAction, resourceType, resourceID, description string) *AuditLog {
	entry := &AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		Changes:      map[string]interface{}{},
	}
	entry.BeforeCreate()
	return entry
}

// SetActor sets the actor information
func (a *AuditLog) SetActor(email string, merchantID *primitive.ObjectID) *AuditLog {
	a.ActorEmail = email
	a.ActorMerchantID = merchantID
	return a
}

// AddChange adds a before/after change record
func (a *AuditLog) AddChange(field string, before, after interface{}) *AuditLog {
	if a.Changes == nil {
		a.Changes = map[string]interface{}{}
	}
	a.Changes[field] = map[string]interface{}{
		"before": before,
		"after":  after,
	}
	return a
}
