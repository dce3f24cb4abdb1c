package smtp

import (
	"bytes"
	"context"
	"testing"

	"github.com/DAN6256/EmailServer/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := mail.Message{
		Kind:    mail.KindStudentBooking,
		From:    mail.Address{Name: "Peer Tutoring Program", Email: "tutoring@example.edu"},
		To:      mail.Address{Name: "Jane Doe", Email: "student@example.edu"},
		Subject: "Booking Confirmed: Mathematics Session",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	}

	t.Run("text and html alternatives", func(t *testing.T) {
		m, err := buildMessage(msg)
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = m.WriteTo(&buf)
		require.NoError(t, err)
		out := buf.String()

		assert.Contains(t, out, "Subject: Booking Confirmed: Mathematics Session")
		assert.Contains(t, out, "student@example.edu")
		assert.Contains(t, out, "tutoring@example.edu")
		assert.Contains(t, out, "multipart/alternative")
		assert.Contains(t, out, "plain body")
		assert.Contains(t, out, "<p>html body</p>")
		assert.NotContains(t, out, "text/calendar")
	})

	t.Run("calendar request part", func(t *testing.T) {
		withInvite := msg
		withInvite.Invite = &mail.Attachment{
			Filename:    "tutoring-session.ics",
			ContentType: "text/calendar; method=REQUEST",
			Content:     "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		}
		m, err := buildMessage(withInvite)
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = m.WriteTo(&buf)
		require.NoError(t, err)
		out := buf.String()

		assert.Contains(t, out, "text/calendar; method=REQUEST")
		assert.Contains(t, out, "BEGIN:VCALENDAR")
	})

	t.Run("invalid recipient", func(t *testing.T) {
		bad := msg
		bad.To.Email = "not an address"
		_, err := buildMessage(bad)
		assert.Error(t, err)
	})
}

func TestNewRejectsUnknownTLSPolicy(t *testing.T) {
	_, err := New(Options{Host: "smtp.example.edu", TLS: "sometimes"})
	assert.Error(t, err)

	c, err := New(Options{Host: "smtp.example.edu", TLS: "opportunistic"})
	require.NoError(t, err)
	assert.Equal(t, 587, c.opts.Port)
	assert.Equal(t, "smtp", c.Name())
}

func TestVerifyWithoutHost(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.Error(t, c.Verify(context.Background()))
}
