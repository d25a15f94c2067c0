package models

import "errors"

// Model validation and operation errors
var (
	// General errors
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// Configuration errors - fatal to the attempted operation
	ErrMissingQuestionnaireUUID = errors.New("questionnaire answer UUID is required")
	ErrMissingQuestionID        = errors.New("question ID is required")
	ErrUnknownQuestionnaireType = errors.New("unknown questionnaire type")

	// Question errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidAnswerType   = errors.New("invalid answer type")
	ErrMissingOptions      = errors.New("choice questions require answer options")
	ErrInvalidOptionValue  = errors.New("invalid answer option value")
	ErrInvalidAnswerFormat = errors.New("invalid answer format")

	// Questionnaire errors
	ErrQuestionnaireNotFound     = errors.New("questionnaire not found")
	ErrQuestionnaireNotEditable  = errors.New("questionnaire can no longer be edited")
	ErrQuestionnaireNotComplete  = errors.New("questionnaire sections are not complete")
	ErrQuestionnaireNotSubmitted = errors.New("questionnaire has not been submitted")
	ErrQuestionnaireRemoved      = errors.New("questionnaire has been removed")

	// Response errors
	ErrResponseNotFound  = errors.New("response not found")
	ErrAnswerPersistence = errors.New("failed to persist answer")
	ErrNotesRequired     = errors.New("supplemental notes are required for this answer")

	// Worksheet errors
	ErrInvalidWorksheetKind = errors.New("invalid worksheet kind")
	ErrWorksheetIncomplete  = errors.New("worksheet is incomplete")

	// Session errors
	ErrSessionNotFound = errors.New("advisor session not found")
	ErrStepLocked      = errors.New("wizard step requirements are not met")

	// Collaborator errors
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrInvalidEmail         = errors.New("invalid email address")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrRenderInFlight   = errors.New("document render already in progress")

	// Audit log errors
	ErrAuditLogNotFound = errors.New("audit log not found")
)

// IsNotFoundError returns true if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuestionnaireNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrCollaboratorNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrAuditLogNotFound)
}

// IsValidationError returns true for local field format violations.
// These surface as inline warnings and only block forward navigation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrInvalidAnswerType) ||
		errors.Is(err, ErrMissingOptions) ||
		errors.Is(err, ErrInvalidOptionValue) ||
		errors.Is(err, ErrInvalidAnswerFormat) ||
		errors.Is(err, ErrNotesRequired) ||
		errors.Is(err, ErrInvalidWorksheetKind) ||
		errors.Is(err, ErrWorksheetIncomplete) ||
		errors.Is(err, ErrInvalidEmail)
}

// IsConfigurationError returns true for missing required identifiers.
// Fatal to the attempted operation, surfaced to the caller.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingQuestionnaireUUID) ||
		errors.Is(err, ErrMissingQuestionID) ||
		errors.Is(err, ErrUnknownQuestionnaireType)
}

// IsPersistenceError returns true for backend persistence failures.
// Local response state stays dirty and the action can be retried.
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrAnswerPersistence)
}

// IsConflictError returns true if the error is a conflict/duplicate error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrRenderInFlight)
}
