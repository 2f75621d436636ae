package domain

import "time"

// NotSpecified is the fallback label substituted for every absent optional
// field in rendered output. A raw "null"/"undefined" token must never reach
// a document or message.
const NotSpecified = "No especificado"

// OrderView is a read-only, denormalized projection of one service order
// joined with its client, vehicle, service type and current state.
// Every field except OrderID may be absent: the joins tolerate missing rows.
type OrderView struct {
	OrderID    int64
	ReceivedAt time.Time

	ClientName    *string
	ClientSurname *string
	ClientTaxID   *string
	ClientPhone   *string
	ClientEmail   *string

	VehiclePlate *string
	VehicleMake  *string
	VehicleModel *string
	VehicleYear  *int
	VehicleColor *string

	ServiceName        *string
	ServiceDescription *string
	StateName          *string

	ClientComment *string
	Observations  *string
}

// OrDefault resolves an optional field to a concrete value, substituting
// the NotSpecified label when the field is absent or blank.
func OrDefault(s *string) string {
	if s == nil || *s == "" {
		return NotSpecified
	}
	return *s
}

// OrEmpty resolves an optional field to a plain string without a fallback
// label. Used for fields that are omitted entirely when absent (free-text
// comment sections, recipient addresses).
func OrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CompanyProfile holds the static workshop identity facts stamped on every
// document and message. Read-only after process start.
type CompanyProfile struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// TemplateContext is the fully-resolved input to both the artifact renderer
// and the content templates. Every field holds a concrete string: absent
// source fields have already been substituted with NotSpecified or "".
// Building it in one place keeps the PDF and the messages consistent.
type TemplateContext struct {
	OrderID    int64
	ReceivedAt string

	ClientFullName string
	ClientTaxID    string
	ClientPhone    string
	ClientEmail    string

	VehiclePlate string
	VehicleMake  string
	VehicleModel string
	VehicleYear  string
	VehicleColor string

	ServiceName        string
	ServiceDescription string
	StateName          string

	// Empty rather than NotSpecified: sections are dropped when blank.
	ClientComment string
	Observations  string

	CompanyName    string
	CompanyPhone   string
	CompanyEmail   string
	CompanyAddress string

	// Set only for state-change notifications.
	PreviousState string
	NewState      string
}
