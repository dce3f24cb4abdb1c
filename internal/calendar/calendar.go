// Package calendar turns a booked tutoring session into something a
// recipient can put in their calendar: either an iCalendar (RFC 5545)
// invite or a Google Calendar "quick add" link.
//
// Which representation is used is a deployment-wide Mode, never a
// per-request choice.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects how sessions are offered to recipients.
type Mode string

const (
	// ModeICS sends a personalized text/calendar invite per recipient.
	ModeICS Mode = "ics"
	// ModeLink embeds a Google Calendar link in the email bodies.
	ModeLink Mode = "link"
)

// DefaultDuration is used when Details.Duration is zero.
const DefaultDuration = 60 * time.Minute

// ErrInvalidStart is returned when a session start time cannot be parsed.
var ErrInvalidStart = errors.New("calendar: invalid session start time")

// ErrMissingParticipant is returned when an invite lacks a required mailbox.
var ErrMissingParticipant = errors.New("calendar: missing participant email")

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeICS:
		return ModeICS, nil
	case ModeLink:
		return ModeLink, nil
	default:
		return "", fmt.Errorf("calendar: unknown invite mode %q (want %q or %q)", s, ModeICS, ModeLink)
	}
}

// Participant is a named mailbox.
type Participant struct {
	Name  string
	Email string
}

// Details describes one tutoring session from the point of view of the
// recipient: Attendee is who the invite is for, Counterpart is the other
// side of the session.
type Details struct {
	Subject     string
	Topic       string
	Organizer   Participant
	Attendee    Participant
	Counterpart Participant
	Start       time.Time
	Duration    time.Duration
}

// End returns Start plus the session duration.
func (d Details) End() time.Time {
	return d.Start.Add(d.duration())
}

func (d Details) duration() time.Duration {
	if d.Duration <= 0 {
		return DefaultDuration
	}
	return d.Duration
}

// Invite is the output of BuildICS or BuildLink. Exactly one of ICS and
// Link is set.
type Invite struct {
	Mode Mode
	UID  string
	ICS  string
	Link string
}

// Filename is the attachment name used for ICS invites.
func (i Invite) Filename() string {
	return "tutoring-session.ics"
}

// ContentType is the MIME type calendar clients expect for a request.
func (i Invite) ContentType() string {
	return "text/calendar; method=REQUEST"
}

// startLayouts are tried in order after RFC 3339.
var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseStart parses a session start time. Offsets in the input are kept;
// inputs without an offset are interpreted in loc.
func ParseStart(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidStart)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStart, s)
}

// compactUTC formats t as YYYYMMDDTHHMMSSZ.
func compactUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
