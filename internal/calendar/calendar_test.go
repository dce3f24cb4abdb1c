package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unfold reverses RFC 5545 line folding so assertions can match whole
// content lines.
func unfold(s string) string {
	return strings.ReplaceAll(s, "\r\n ", "")
}

// contentLines indexes the unfolded VEVENT lines by property name. Alarm
// lines are skipped.
func contentLines(ics string) map[string]string {
	lines := make(map[string]string)
	inAlarm := false
	for _, line := range strings.Split(unfold(ics), "\r\n") {
		switch line {
		case "BEGIN:VALARM":
			inAlarm = true
			continue
		case "END:VALARM":
			inAlarm = false
			continue
		}
		if inAlarm {
			continue
		}
		name, _, _ := strings.Cut(line, ":")
		name, _, _ = strings.Cut(name, ";")
		lines[name] = line
	}
	return lines
}

func sessionDetails(t *testing.T) Details {
	t.Helper()
	start, err := ParseStart("2025-07-15T14:00:00Z", time.UTC)
	require.NoError(t, err)
	return Details{
		Subject:     "Mathematics",
		Topic:       "Calculus - Derivatives",
		Organizer:   Participant{Name: "Peer Tutoring Program", Email: "tutoring@example.edu"},
		Attendee:    Participant{Name: "John Smith", Email: "tutor@example.edu"},
		Counterpart: Participant{Name: "Jane Doe", Email: "student@example.edu"},
		Start:       start,
	}
}

func TestParseStart(t *testing.T) {
	accra, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-07-15T14:00:00Z", time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)},
		{"2025-07-15T14:00:00.000Z", time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)},
		{"2025-07-15T16:00:00+02:00", time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)},
		{"2025-07-15T14:00", time.Date(2025, 7, 15, 14, 0, 0, 0, accra)},
		{"2025-07-15 14:00:00", time.Date(2025, 7, 15, 14, 0, 0, 0, accra)},
		{" 2025-07-15 ", time.Date(2025, 7, 15, 0, 0, 0, 0, accra)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStart(tc.in, accra)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "next tuesday", "2025-13-45"} {
			_, err := ParseStart(in, accra)
			assert.ErrorIs(t, err, ErrInvalidStart, in)
		}
	})
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" ICS ")
	require.NoError(t, err)
	assert.Equal(t, ModeICS, m)

	m, err = ParseMode("link")
	require.NoError(t, err)
	assert.Equal(t, ModeLink, m)

	_, err = ParseMode("both")
	assert.Error(t, err)
}

func TestICSBuilder(t *testing.T) {
	now := time.Date(2025, 7, 12, 10, 30, 0, 0, time.UTC)
	b := ICSBuilder{Domain: "example.edu"}

	t.Run("session times and fixed fields", func(t *testing.T) {
		inv, err := b.Build(sessionDetails(t), now)
		require.NoError(t, err)
		out := unfold(inv.ICS)

		assert.Equal(t, ModeICS, inv.Mode)
		assert.Empty(t, inv.Link)
		assert.Contains(t, out, "BEGIN:VCALENDAR")
		assert.Contains(t, out, "METHOD:REQUEST")
		assert.Contains(t, out, "DTSTART:20250715T140000Z")
		assert.Contains(t, out, "DTEND:20250715T150000Z")
		assert.Contains(t, out, "DTSTAMP:20250712T103000Z")
		assert.Contains(t, out, "STATUS:TENTATIVE")
		assert.Contains(t, out, "TRIGGER:-PT15M")
		assert.Contains(t, out, "TRIGGER:-PT1H")
		assert.Equal(t, 2, strings.Count(out, "BEGIN:VALARM"))
		assert.Contains(t, out, "UID:"+inv.UID)
		assert.True(t, strings.HasSuffix(inv.UID, "@example.edu"))
	})

	t.Run("attendees are recipient then counterpart", func(t *testing.T) {
		inv, err := b.Build(sessionDetails(t), now)
		require.NoError(t, err)
		out := unfold(inv.ICS)

		var attendees []string
		for _, line := range strings.Split(out, "\r\n") {
			if strings.HasPrefix(line, "ATTENDEE") {
				attendees = append(attendees, line)
			}
		}
		require.Len(t, attendees, 2)
		assert.True(t, strings.HasSuffix(attendees[0], "mailto:tutor@example.edu"))
		assert.True(t, strings.HasSuffix(attendees[1], "mailto:student@example.edu"))
		for _, a := range attendees {
			assert.Contains(t, a, "RSVP=TRUE")
			assert.Contains(t, a, "ROLE=REQ-PARTICIPANT")
		}
		assert.Contains(t, out, "mailto:tutoring@example.edu")
	})

	t.Run("custom duration", func(t *testing.T) {
		d := sessionDetails(t)
		d.Duration = 90 * time.Minute
		inv, err := b.Build(d, now)
		require.NoError(t, err)
		assert.Contains(t, unfold(inv.ICS), "DTEND:20250715T153000Z")
	})

	t.Run("text values are escaped once", func(t *testing.T) {
		d := sessionDetails(t)
		d.Subject = "Math, CS; Intro"
		d.Topic = "Limits"
		d.Counterpart.Name = "Doe, Jane"
		inv, err := b.Build(d, now)
		require.NoError(t, err)
		lines := contentLines(inv.ICS)

		assert.Equal(t, `SUMMARY:Math\, CS\; Intro - Tutoring Session`, lines["SUMMARY"])
		assert.Equal(t,
			`DESCRIPTION:Tutoring session on Limits (Math\, CS\; Intro).\n`+
				`Participants: John Smith and Doe\, Jane.\n\n`+
				`Please coordinate the venue details with Doe\, Jane.`,
			lines["DESCRIPTION"])
		assert.Equal(t, `LOCATION:TBD - Contact tutor for venue details`, lines["LOCATION"])
		assert.NotContains(t, inv.ICS, `\\`)
	})

	t.Run("line breaks in text are normalised", func(t *testing.T) {
		d := sessionDetails(t)
		d.Topic = "Limits\r\nand continuity"
		inv, err := b.Build(d, now)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(contentLines(inv.ICS)["DESCRIPTION"],
			`DESCRIPTION:Tutoring session on Limits\nand continuity (Mathematics).\n`))
	})

	t.Run("common names with separators are quoted", func(t *testing.T) {
		d := sessionDetails(t)
		d.Organizer.Name = "Tutoring: Ashesi"
		d.Counterpart.Name = `Doe, "JJ" Jane`
		inv, err := b.Build(d, now)
		require.NoError(t, err)
		out := unfold(inv.ICS)

		assert.Contains(t, out, `ORGANIZER;CN="Tutoring: Ashesi":mailto:tutoring@example.edu`)
		assert.Contains(t, out, `ATTENDEE;CN="Doe, JJ Jane";CUTYPE=INDIVIDUAL`)
		assert.Contains(t, out, `ATTENDEE;CN=John Smith;CUTYPE=INDIVIDUAL`)
		assert.NotContains(t, out, `CN=Doe\,`)
		for _, line := range strings.Split(inv.ICS, "\r\n") {
			assert.LessOrEqual(t, len(line), 75, line)
		}
	})

	t.Run("every invite has its own uid", func(t *testing.T) {
		first, err := b.Build(sessionDetails(t), now)
		require.NoError(t, err)
		second, err := b.Build(sessionDetails(t), now)
		require.NoError(t, err)
		assert.NotEqual(t, first.UID, second.UID)
	})

	t.Run("missing participants", func(t *testing.T) {
		d := sessionDetails(t)
		d.Organizer.Email = ""
		_, err := b.Build(d, now)
		assert.ErrorIs(t, err, ErrMissingParticipant)

		d = sessionDetails(t)
		d.Counterpart.Email = ""
		_, err = b.Build(d, now)
		assert.ErrorIs(t, err, ErrMissingParticipant)
	})

	t.Run("zero start", func(t *testing.T) {
		d := sessionDetails(t)
		d.Start = time.Time{}
		_, err := b.Build(d, now)
		assert.ErrorIs(t, err, ErrInvalidStart)
	})
}

func TestDurationInvariant(t *testing.T) {
	starts := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 30, 23, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 15, 0, 0, time.FixedZone("GMT+3", 3*3600)),
	}
	for _, s := range starts {
		d := Details{Start: s}
		assert.Equal(t, DefaultDuration, d.End().Sub(d.Start))

		d.Duration = 45 * time.Minute
		assert.Equal(t, 45*time.Minute, d.End().Sub(d.Start))
	}
}

func TestBuildLink(t *testing.T) {
	inv, err := BuildLink(sessionDetails(t))
	require.NoError(t, err)
	assert.Equal(t, ModeLink, inv.Mode)
	assert.Empty(t, inv.ICS)

	u, err := url.Parse(inv.Link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	assert.Equal(t, "/calendar/render", u.Path)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Tutoring: Mathematics", q.Get("text"))
	assert.Equal(t, "20250715T140000Z/20250715T150000Z", q.Get("dates"))
	assert.Contains(t, q.Get("details"), "Topic: Calculus - Derivatives")
	assert.Contains(t, q.Get("details"), "Jane Doe (student@example.edu)")
	assert.NotContains(t, inv.Link, " ")

	_, err = BuildLink(Details{})
	assert.ErrorIs(t, err, ErrInvalidStart)
}
