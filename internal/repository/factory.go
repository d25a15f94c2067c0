// Package repository provides data access layer factories
// #IMPLEMENTATION_DECISION: Factory functions wrap raw MongoDB constructors for our database.Client
package repository

import (
	"github.com/paysec-tools/saqadvisor_backend/internal/database"
)

// NewQuestionRepository creates a new question repository using our database client
func NewQuestionRepository(client *database.Client) QuestionRepository {
	return NewMongoQuestionRepository(client.Database())
}

// NewResponseRepository creates a new response repository using our database client
func NewResponseRepository(client *database.Client) ResponseRepository {
	return NewMongoResponseRepository(client.Database())
}

// NewQuestionnaireAnswerRepository creates a new questionnaire answer repository
func NewQuestionnaireAnswerRepository(client *database.Client) QuestionnaireAnswerRepository {
	return NewMongoQuestionnaireAnswerRepository(client.Database())
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(client *database.Client) AuditRepository {
	return NewMongoAuditRepository(client.Database())
}
