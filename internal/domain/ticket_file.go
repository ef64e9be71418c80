package domain

import "time"

// TicketFile links a stored attachment object to a ticket. Uploads are
// best-effort: a missing file row never blocks the ticket itself.
type TicketFile struct {
	ID         string
	TicketID   string
	UploadedBy string
	FilePath   string
	FileName   string
	SizeBytes  int64
	CreatedAt  time.Time
}
