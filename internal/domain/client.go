package domain

import "time"

// Client is an onboarded client record that tickets reference.
type Client struct {
	ID                 string
	FullName           string
	PersonalEmail      string
	CompanyEmail       string
	JobRolePreferences []string
	CreatedAt          time.Time
}

// PendingClient is an onboarding submission awaiting approval.
type PendingClient struct {
	ID                  string
	FullName            string
	PersonalEmail       string
	WhatsappNumber      string
	CallablePhone       string
	CompanyEmail        string
	JobRolePreferences  []string
	SalaryRange         string
	LocationPreferences []string
	WorkAuthDetails     string
	SubmittedBy         string
	ApprovedAt          *time.Time
	CreatedAt           time.Time
}
