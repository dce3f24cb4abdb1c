// Package mail defines the contract between the notifier and the
// channels that actually deliver email.
//
// A Transport receives a fully rendered Message. It does not know about
// bookings or applications; it only knows how to hand a message to its
// provider and report what happened.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which notification a message carries. REST providers
// use it to pick a template; the delivery log stores it.
type Kind string

const (
	KindApplication    Kind = "application-confirmation"
	KindTutorBooking   Kind = "tutor-booking-notification"
	KindStudentBooking Kind = "student-booking-confirmation"
)

// Address is a display name plus mailbox.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Attachment is an inline MIME part, used for calendar invites.
type Attachment struct {
	Filename    string
	ContentType string
	Content     string
}

// Message is a rendered email ready for delivery.
//
// Params holds the flat request fields. The REST transport forwards them
// as template variables; SMTP ignores them.
type Message struct {
	Kind    Kind
	From    Address
	To      Address
	Subject string
	Text    string
	HTML    string
	Invite  *Attachment
	Link    string
	Params  map[string]string
}

// Receipt describes an accepted message.
type Receipt struct {
	// ID is whatever the provider returned to identify the message, or
	// empty when it returned nothing useful.
	ID     string
	SentAt time.Time
}

// Transport delivers messages. Implementations must be safe for
// concurrent use: the notifier sends both booking emails at once.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) (Receipt, error)
	// Verify checks that the transport can reach its provider without
	// sending anything.
	Verify(ctx context.Context) error
}

// ProviderError is a rejection reported by the mail provider itself.
type ProviderError struct {
	Provider string `json:"provider"`
	Status   int    `json:"status"`
	Body     string `json:"body"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider rejected message: status %d: %s", e.Provider, e.Status, e.Body)
}

// Transport kinds accepted in configuration.
const (
	TransportREST = "rest"
	TransportSMTP = "smtp"
)

// ParseTransportKind validates a configured transport name.
func ParseTransportKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case TransportREST, TransportSMTP:
		return k, nil
	default:
		return "", fmt.Errorf("mail: unknown transport %q (want %q or %q)", s, TransportREST, TransportSMTP)
	}
}
