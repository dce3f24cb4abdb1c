package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const productID = "-//Ashesi University//Peer Tutoring//EN"

// ICSBuilder generates personalized iCalendar invites.
type ICSBuilder struct {
	// Domain is the right-hand side of every generated UID.
	Domain string
}

// Build renders d as a VCALENDAR with a single tentative VEVENT.
//
// Each call produces a new UID, so two invites built for the same session
// (one per recipient) never collide and calling Build twice for the same
// request yields two independent events.
func (b ICSBuilder) Build(d Details, now time.Time) (Invite, error) {
	if d.Start.IsZero() {
		return Invite{}, fmt.Errorf("%w: zero time", ErrInvalidStart)
	}
	if d.Organizer.Email == "" {
		return Invite{}, fmt.Errorf("%w: organizer", ErrMissingParticipant)
	}
	if d.Attendee.Email == "" || d.Counterpart.Email == "" {
		return Invite{}, fmt.Errorf("%w: attendee", ErrMissingParticipant)
	}

	domain := b.Domain
	if domain == "" {
		domain = "localhost"
	}
	uid := fmt.Sprintf("%d-%s@%s", now.UnixMilli(), uuid.NewString(), domain)

	cn := newParamQuoter()

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodRequest)
	cal.SetCalscale("GREGORIAN")

	event := cal.AddEvent(uid)
	event.SetDtStampTime(now)
	event.SetStartAt(d.Start)
	event.SetEndAt(d.End())
	event.SetSummary(plainText(d.Subject + " - Tutoring Session"))
	event.SetDescription(plainText(description(d)))
	event.SetLocation("TBD - Contact tutor for venue details")
	event.SetStatus(ics.ObjectStatusTentative)
	event.SetSequence(0)

	event.SetProperty(ics.ComponentPropertyOrganizer, mailto(d.Organizer.Email), cn.param(d.Organizer.Name))
	for _, p := range []Participant{d.Attendee, d.Counterpart} {
		event.AddProperty(ics.ComponentPropertyAttendee, mailto(p.Email),
			ics.CalendarUserTypeIndividual,
			ics.ParticipationRoleReqParticipant,
			ics.ParticipationStatusNeedsAction,
			ics.WithRSVP(true),
			cn.param(p.Name),
		)
	}

	for _, r := range []struct{ trigger, label string }{
		{"-PT15M", "15 minutes"},
		{"-PT1H", "1 hour"},
	} {
		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(r.trigger)
		alarm.SetDescription("Tutoring session reminder - " + r.label)
	}

	return Invite{Mode: ModeICS, UID: uid, ICS: cn.apply(cal.Serialize())}, nil
}

func description(d Details) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tutoring session on %s (%s).\n", d.Topic, d.Subject)
	fmt.Fprintf(&sb, "Participants: %s and %s.\n\n", nameOrEmail(d.Attendee), nameOrEmail(d.Counterpart))
	fmt.Fprintf(&sb, "Please coordinate the venue details with %s.", nameOrEmail(d.Counterpart))
	return sb.String()
}

func nameOrEmail(p Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

func mailto(email string) string {
	return "mailto:" + email
}

// plainText normalises line breaks to LF. golang-ical escapes TEXT values
// on serialization but only knows about "\n".
func plainText(s string) string {
	return lineBreaks.Replace(s)
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// paramQuoter writes CN values containing ',', ';' or ':' as DQUOTE
// quoted strings (RFC 5545 §3.2). golang-ical backslash-escapes parameter
// values instead, so such values go through the library as placeholders
// and are substituted after serialization.
type paramQuoter struct {
	prefix string
	values map[string]string
}

func newParamQuoter() *paramQuoter {
	return &paramQuoter{
		prefix: "cn" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		values: make(map[string]string),
	}
}

func (q *paramQuoter) param(name string) ics.PropertyParameter {
	v := paramValue(name)
	if !strings.ContainsAny(v, ",;:") {
		return ics.WithCN(v)
	}
	key := fmt.Sprintf("%s%02d", q.prefix, len(q.values))
	q.values[key] = `"` + v + `"`
	return ics.WithCN(key)
}

func (q *paramQuoter) apply(serialized string) string {
	if len(q.values) == 0 {
		return serialized
	}
	out := strings.ReplaceAll(serialized, "\r\n ", "")
	for key, quoted := range q.values {
		out = strings.ReplaceAll(out, "CN="+key, "CN="+quoted)
	}
	return fold(out)
}

// fold splits content lines longer than 75 octets (RFC 5545 §3.1)
// without breaking a UTF-8 sequence.
func fold(s string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(s, "\r\n") {
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, "\r\n")
		limit := 75
		for len(line) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			b.WriteString(line[:cut])
			b.WriteString("\r\n ")
			line = line[cut:]
			limit = 74
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.String()
}

// paramValue strips characters that cannot appear in a property
// parameter value (RFC 5545 §3.1: DQUOTE and control characters).
func paramValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
