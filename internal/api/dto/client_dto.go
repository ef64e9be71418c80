package dto

import (
	"time"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

// SubmitPendingClientRequest payload.
type SubmitPendingClientRequest struct {
	FullName            string   `json:"full_name"`
	PersonalEmail       string   `json:"personal_email"`
	WhatsappNumber      string   `json:"whatsapp_number"`
	CallablePhone       string   `json:"callable_phone"`
	CompanyEmail        string   `json:"company_email"`
	JobRolePreferences  []string `json:"job_role_preferences"`
	SalaryRange         string   `json:"salary_range"`
	LocationPreferences []string `json:"location_preferences"`
	WorkAuthDetails     string   `json:"work_auth_details"`
}

// ApproveClientRequest payload.
type ApproveClientRequest struct {
	InitialPassword string `json:"initial_password"`
}

// ApproveClientResponse carries the approved client. AccountWarning reports a
// login-account provisioning failure that did not undo the approval.
type ApproveClientResponse struct {
	Client         ClientResponse `json:"client"`
	AccountWarning string         `json:"account_warning,omitempty"`
}

// ClientResponse is the public client shape.
type ClientResponse struct {
	ID                 string    `json:"id"`
	FullName           string    `json:"full_name"`
	PersonalEmail      string    `json:"personal_email"`
	CompanyEmail       string    `json:"company_email,omitempty"`
	JobRolePreferences []string  `json:"job_role_preferences,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PendingClientResponse is the review shape for submissions.
type PendingClientResponse struct {
	ID                  string     `json:"id"`
	FullName            string     `json:"full_name"`
	PersonalEmail       string     `json:"personal_email"`
	WhatsappNumber      string     `json:"whatsapp_number,omitempty"`
	CallablePhone       string     `json:"callable_phone,omitempty"`
	CompanyEmail        string     `json:"company_email,omitempty"`
	JobRolePreferences  []string   `json:"job_role_preferences,omitempty"`
	SalaryRange         string     `json:"salary_range,omitempty"`
	LocationPreferences []string   `json:"location_preferences,omitempty"`
	WorkAuthDetails     string     `json:"work_auth_details,omitempty"`
	SubmittedBy         string     `json:"submitted_by"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ClientFromDomain maps the domain record.
func ClientFromDomain(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:                 client.ID,
		FullName:           client.FullName,
		PersonalEmail:      client.PersonalEmail,
		CompanyEmail:       client.CompanyEmail,
		JobRolePreferences: client.JobRolePreferences,
		CreatedAt:          client.CreatedAt,
	}
}

// PendingClientFromDomain maps the domain record.
func PendingClientFromDomain(pending *domain.PendingClient) PendingClientResponse {
	return PendingClientResponse{
		ID:                  pending.ID,
		FullName:            pending.FullName,
		PersonalEmail:       pending.PersonalEmail,
		WhatsappNumber:      pending.WhatsappNumber,
		CallablePhone:       pending.CallablePhone,
		CompanyEmail:        pending.CompanyEmail,
		JobRolePreferences:  pending.JobRolePreferences,
		SalaryRange:         pending.SalaryRange,
		LocationPreferences: pending.LocationPreferences,
		WorkAuthDetails:     pending.WorkAuthDetails,
		SubmittedBy:         pending.SubmittedBy,
		ApprovedAt:          pending.ApprovedAt,
		CreatedAt:           pending.CreatedAt,
	}
}
