// Package templates renders the notification emails sent by the service.
//
// Every email is produced in two variants, plain text and HTML, and both
// carry every field of the request. Several mail clients flag HTML-only
// bodies as spam, so the plain-text part is not optional.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// ErrRender is wrapped by every error returned from this package.
var ErrRender = errors.New("templates: render failed")

// RenderedEmail is the output of a template: a subject line and the two
// body variants.
type RenderedEmail struct {
	Subject   string
	PlainText string
	HTML      string
}

// ApplicationData feeds the application-confirmation email.
type ApplicationData struct {
	ToName         string
	ToEmail        string
	Courses        string
	SubmissionDate string
}

// BookingData feeds both booking emails. FormattedTime is the output of
// FormatSessionTime; CalendarLink is set only in link mode.
type BookingData struct {
	StudentName   string
	StudentEmail  string
	TutorName     string
	TutorEmail    string
	TutorNumber   string
	Subject       string
	Topic         string
	FormattedTime string
	Duration      string
	CalendarLink  string
}

type pair struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func mustPair(name, text, html string) pair {
	return pair{
		text: texttemplate.Must(texttemplate.New(name).Parse(strings.TrimLeft(text, "\n"))),
		html: htmltemplate.Must(htmltemplate.New(name).Parse(strings.TrimLeft(html, "\n"))),
	}
}

func (p pair) render(subject string, data any) (RenderedEmail, error) {
	var text, html bytes.Buffer
	if err := p.text.Execute(&text, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("%w: %s text: %v", ErrRender, p.text.Name(), err)
	}
	if err := p.html.Execute(&html, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("%w: %s html: %v", ErrRender, p.html.Name(), err)
	}
	return RenderedEmail{
		Subject:   headerSafe(subject),
		PlainText: text.String(),
		HTML:      html.String(),
	}, nil
}

// headerSafe keeps user input from breaking out of the Subject header.
func headerSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var (
	applicationTemplate    = mustPair("application-confirmation", applicationText, applicationHTML)
	tutorBookingTemplate   = mustPair("tutor-booking-notification", tutorBookingText, tutorBookingHTML)
	studentBookingTemplate = mustPair("student-booking-confirmation", studentBookingText, studentBookingHTML)
)

// ApplicationConfirmation renders the email sent to a peer-tutor applicant.
func ApplicationConfirmation(d ApplicationData) (RenderedEmail, error) {
	return applicationTemplate.render("Peer Tutor Application Confirmation - Ashesi University", d)
}

// TutorBookingNotification renders the email telling a tutor that a
// student booked a session with them.
func TutorBookingNotification(d BookingData) (RenderedEmail, error) {
	return tutorBookingTemplate.render("New Tutoring Session Booked: "+d.Subject, d)
}

// StudentBookingConfirmation renders the email confirming a session to the
// student, including the tutor's contact details.
func StudentBookingConfirmation(d BookingData) (RenderedEmail, error) {
	return studentBookingTemplate.render("Booking Confirmed: "+d.Subject+" Session", d)
}
