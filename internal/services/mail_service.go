// Package services provides business logic implementations.
// mail_service.go implements email delivery via the shared mail API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// MailService sends transactional email
// #INTEGRATION_POINT: Notification service composes messages on top of this
type MailService interface {
	// SendTemplate sends a template-based email
	SendTemplate(ctx context.Context, recipient, template, subject string, variables map[string]interface{}) error
}

// TemplateEmailRequest represents a template-based email request to the mail API.
// #INTEGRATION_POINT: Maps to POST /email/template endpoint
type TemplateEmailRequest struct {
	Recipient  string                 `json:"recipient"`
	Subject    string                 `json:"subject"`
	Template   string                 `json:"template"`
	Variables  map[string]interface{} `json:"variables"`
	Project    string                 `json:"project,omitempty"`
	SenderName string                 `json:"sender_name,omitempty"`
}

// EmailResponse represents the API response after sending an email.
type EmailResponse struct {
	Message     string `json:"message"`
	ReceptionID string `json:"reception_id"`
}

// MailErrorResponse represents an error response from the mail API.
type MailErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPMailService implements MailService using HTTP calls to the mail API.
// #INTEGRATION_POINT: Real mail service for production
type HTTPMailService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPMailService creates a new HTTP mail service.
func NewHTTPMailService(baseURL, apiKey string) *HTTPMailService {
	return &HTTPMailService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendTemplate sends a template-based email to the mail API.
func (m *HTTPMailService) SendTemplate(ctx context.Context, recipient, template, subject string, variables map[string]interface{}) error {
	req := TemplateEmailRequest{
		Recipient:  recipient,
		Subject:    subject,
		Template:   template,
		Variables:  variables,
		Project:    "saq-advisor",
		SenderName: "SAQ Advisor",
	}

	url := m.baseURL + "/email/template"

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", m.apiKey)

	log.Printf("[MAIL] Sending template email: recipient=%s, template=%s, subject=%s", recipient, template, subject)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		log.Printf("[MAIL] HTTP request failed: %v", err)
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	// The mail API returns 202 Accepted on success
	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)

		var errorResp MailErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil {
			log.Printf("[MAIL] API error (status %d): %s - %s", resp.StatusCode, errorResp.Error, errorResp.Message)
			return fmt.Errorf("mail API error: %s - %s", errorResp.Error, errorResp.Message)
		}

		log.Printf("[MAIL] API error (status %d): %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResp EmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&emailResp); err != nil {
		log.Printf("[MAIL] Failed to decode success response: %v", err)
		return fmt.Errorf("failed to decode mail API response: %w", err)
	}

	log.Printf("[MAIL] Email sent successfully: recipient=%s, reception_id=%s", recipient, emailResp.ReceptionID)
	return nil
}

// Ensure HTTPMailService implements MailService
var _ MailService = (*HTTPMailService)(nil)
