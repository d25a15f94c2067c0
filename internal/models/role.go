package models

import "strings"

// UserRole represents the portal-level role carried in access tokens
type UserRole string

const (
	UserRoleMerchant UserRole = "MERCHANT"
	UserRoleReviewer UserRole = "REVIEWER"
	UserRoleAdmin    UserRole = "ADMIN"
)

// IsValid checks if the UserRole is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleMerchant, UserRoleReviewer, UserRoleAdmin:
		return true
	}
	return false
}

// ParseUserRole normalizes a raw role string from token claims
func ParseUserRole(s string) UserRole {
	return UserRole(strings.ToUpper(s))
}

// Collaborator roles assignable on a shared questionnaire
// #BUSINESS_RULE: The responsible collaborator signs the attestation
const (
	CollaboratorRoleResponsible = "responsible"
	CollaboratorRoleContributor = "contributor"
	CollaboratorRoleViewer      = "viewer"
)

// IsValidCollaboratorRole checks a collaborator role string
func IsValidCollaboratorRole(role string) bool {
	switch role {
	case CollaboratorRoleResponsible, CollaboratorRoleContributor, CollaboratorRoleViewer:
		return true
	}
	return false
}
