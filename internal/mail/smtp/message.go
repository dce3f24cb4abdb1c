package smtp

import (
	"fmt"

	"github.com/DAN6256/EmailServer/internal/mail"
	gomail "github.com/wneessen/go-mail"
)

// buildMessage turns msg into a multipart/alternative MIME message:
// plain text first, then HTML, then the calendar request when present.
// Calendar clients only offer Accept/Decline when the invite is an
// alternative part rather than a plain attachment.
func buildMessage(msg mail.Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	if err := m.FromFormat(msg.From.Name, msg.From.Email); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.AddToFormat(msg.To.Name, msg.To.Email); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetGenHeader(gomail.HeaderXMailer, "tutoring-mailer")

	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	if msg.Invite != nil {
		m.AddAlternativeString(gomail.ContentType(msg.Invite.ContentType), msg.Invite.Content)
	}

	return m, nil
}
