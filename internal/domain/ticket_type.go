package domain

// TicketType is the closed set of request categories. The type fixes which
// SLA row applies and which metadata variant the ticket carries.
type TicketType string

const (
	TicketTypeVolumeShortfall TicketType = "volume_shortfall"
	TicketTypeDataMismatch    TicketType = "data_mismatch"
)

// TicketTypes lists all known ticket types.
func TicketTypes() []TicketType {
	return []TicketType{TicketTypeVolumeShortfall, TicketTypeDataMismatch}
}

// Valid reports whether t is a known ticket type.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeVolumeShortfall, TicketTypeDataMismatch:
		return true
	}
	return false
}

// DefaultTitle returns the pre-filled title for a ticket type.
func (t TicketType) DefaultTitle() string {
	switch t {
	case TicketTypeVolumeShortfall:
		return "Volume Shortfall - Applications below expectation"
	case TicketTypeDataMismatch:
		return "Data Mismatch - Mistake in application process"
	}
	return ""
}

// TicketMetadata is the type-specific payload attached to a ticket. Each
// variant belongs to exactly one ticket type; lifecycle and SLA logic treat
// it as opaque.
type TicketMetadata interface {
	MetadataType() TicketType
}

// VolumeShortfallDetails captures expected vs. actual application counts.
type VolumeShortfallDetails struct {
	ExpectedApplications int
	ActualApplications   int
	TimePeriod           string
	Notes                string
	ForwardedToScraping  bool
}

// MetadataType implements TicketMetadata.
func (VolumeShortfallDetails) MetadataType() TicketType { return TicketTypeVolumeShortfall }

// DataMismatchDetails describes a field whose recorded value diverges from
// the value the client reported.
type DataMismatchDetails struct {
	Field         string
	ExpectedValue string
	ActualValue   string
	Notes         string
}

// MetadataType implements TicketMetadata.
func (DataMismatchDetails) MetadataType() TicketType { return TicketTypeDataMismatch }
