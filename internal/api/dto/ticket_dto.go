package dto

import (
	"time"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type        domain.TicketType      `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ClientID    *string                `json:"client_id"`
	Metadata    *TicketMetadataRequest `json:"metadata"`
}

// TicketMetadataRequest is the union of type-specific detail fields; only the
// block matching the ticket type is read.
type TicketMetadataRequest struct {
	ExpectedApplications *int   `json:"expected_applications"`
	ActualApplications   *int   `json:"actual_applications"`
	TimePeriod           string `json:"time_period"`
	Field                string `json:"field"`
	ExpectedValue        string `json:"expected_value"`
	ActualValue          string `json:"actual_value"`
	Notes                string `json:"notes"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// ResolveRequest payload.
type ResolveRequest struct {
	Comment string `json:"comment"`
}

// CommentRequest payload.
type CommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// AssignRequest payload.
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	Type            domain.TicketType     `json:"type"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	SLAHours        int                   `json:"sla_hours"`
	ClientID        *string               `json:"client_id"`
	EscalationLevel int                   `json:"escalation_level"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	DueDate         time.Time             `json:"due_date"`
}

// SLAStatus is the derived due-date verdict at read time.
type SLAStatus struct {
	State domain.SLAState `json:"state"`
	Hours int             `json:"hours"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string               `json:"description"`
	Metadata    any                  `json:"metadata,omitempty"`
	SLA         SLAStatus            `json:"sla"`
	Timeline    []TimelineStep       `json:"timeline"`
	Comments    []CommentResponse    `json:"comments"`
	Files       []FileResponse       `json:"files"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// TimelineStep is one entry in the ticket progress view.
type TimelineStep struct {
	Status  domain.TicketStatus `json:"status"`
	At      *time.Time          `json:"at,omitempty"`
	Reached bool                `json:"reached"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileResponse metadata.
type FileResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url,omitempty"`
}

// AssignmentResponse entry.
type AssignmentResponse struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTicketResponse carries the ticket plus any attachment warning.
type CreateTicketResponse struct {
	Ticket            TicketSummary `json:"ticket"`
	AttachmentWarning string        `json:"attachment_warning,omitempty"`
}
