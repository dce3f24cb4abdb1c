package calendar

import (
	"fmt"
	"net/url"
	"strings"
)

const googleCalendarRender = "https://calendar.google.com/calendar/render"

// BuildLink returns a Google Calendar "quick add" URL for the session.
// The link carries no UID or attendees: recipients add the event by hand.
func BuildLink(d Details) (Invite, error) {
	if d.Start.IsZero() {
		return Invite{}, fmt.Errorf("%w: zero time", ErrInvalidStart)
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", fmt.Sprintf("Tutoring: %s", d.Subject))
	q.Set("dates", compactUTC(d.Start)+"/"+compactUTC(d.End()))
	q.Set("details", linkDetails(d))

	return Invite{Mode: ModeLink, Link: googleCalendarRender + "?" + q.Encode()}, nil
}

func linkDetails(d Details) string {
	lines := []string{"Topic: " + d.Topic}
	for _, p := range []Participant{d.Attendee, d.Counterpart} {
		switch {
		case p.Name != "" && p.Email != "":
			lines = append(lines, fmt.Sprintf("%s (%s)", p.Name, p.Email))
		case p.Name != "" || p.Email != "":
			lines = append(lines, nameOrEmail(p))
		}
	}
	return strings.Join(lines, "\n")
}
