package models

import (
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrNotFound", ErrNotFound, true},
		{"ErrQuestionNotFound", ErrQuestionNotFound, true},
		{"ErrQuestionnaireNotFound", ErrQuestionnaireNotFound, true},
		{"ErrResponseNotFound", ErrResponseNotFound, true},
		{"ErrSessionNotFound", ErrSessionNotFound, true},
		{"ErrCollaboratorNotFound", ErrCollaboratorNotFound, true},
		{"ErrDocumentNotFound", ErrDocumentNotFound, true},
		{"ErrAuditLogNotFound", ErrAuditLogNotFound, true},
		{"Wrapped not found", fmt.Errorf("loading: %w", ErrQuestionNotFound), true},
		{"Non-NotFound error", ErrInvalidStatusTransition, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrInvalidInput", ErrInvalidInput, true},
		{"ErrInvalidStatusTransition", ErrInvalidStatusTransition, true},
		{"ErrInvalidAnswerType", ErrInvalidAnswerType, true},
		{"ErrMissingOptions", ErrMissingOptions, true},
		{"ErrInvalidOptionValue", ErrInvalidOptionValue, true},
		{"ErrInvalidAnswerFormat", ErrInvalidAnswerFormat, true},
		{"ErrNotesRequired", ErrNotesRequired, true},
		{"ErrInvalidWorksheetKind", ErrInvalidWorksheetKind, true},
		{"ErrWorksheetIncomplete", ErrWorksheetIncomplete, true},
		{"ErrInvalidEmail", ErrInvalidEmail, true},
		{"Non-validation error", ErrQuestionNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.expected {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrMissingQuestionnaireUUID", ErrMissingQuestionnaireUUID, true},
		{"ErrMissingQuestionID", ErrMissingQuestionID, true},
		{"ErrUnknownQuestionnaireType", ErrUnknownQuestionnaireType, true},
		{"Validation error is not configuration", ErrInvalidInput, false},
		{"Persistence error is not configuration", ErrAnswerPersistence, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigurationError(tt.err); got != tt.expected {
				t.Errorf("IsConfigurationError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsPersistenceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrAnswerPersistence", ErrAnswerPersistence, true},
		{"Wrapped persistence error", fmt.Errorf("%w: connection reset", ErrAnswerPersistence), true},
		{"Configuration error is not persistence", ErrMissingQuestionID, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPersistenceError(tt.err); got != tt.expected {
				t.Errorf("IsPersistenceError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsConflictError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrAlreadyExists", ErrAlreadyExists, true},
		{"ErrRenderInFlight", ErrRenderInFlight, true},
		{"Non-conflict error", ErrQuestionnaireNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConflictError(tt.err); got != tt.expected {
				t.Errorf("IsConflictError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"ErrQuestionNotFound", ErrQuestionNotFound, "question not found"},
		{"ErrQuestionnaireNotEditable", ErrQuestionnaireNotEditable, "questionnaire can no longer be edited"},
		{"ErrNotesRequired", ErrNotesRequired, "supplemental notes are required for this answer"},
		{"ErrAnswerPersistence", ErrAnswerPersistence, "failed to persist answer"},
		{"ErrRenderInFlight", ErrRenderInFlight, "document render already in progress"},
		{"ErrStepLocked", ErrStepLocked, "wizard step requirements are not met"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.contains {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.contains)
			}
		})
	}
}
