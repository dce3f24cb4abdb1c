package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:3000"
mail:
  from_address: "tutoring@example.edu"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "rest", cfg.Mail.Transport)
		assert.Equal(t, "link", cfg.Mail.Invite)
		assert.Equal(t, 60, cfg.Mail.SessionMinutes)
		assert.Equal(t, 10*time.Second, cfg.Mail.SendTimeout)
		assert.Equal(t, 587, cfg.Mail.SMTP.Port)
		assert.Equal(t, "https://api.emailjs.com/api/v1.0/email/send", cfg.Mail.EmailJS.Endpoint)
	})

	t.Run("selectors are normalised", func(t *testing.T) {
		t.Setenv("MAIL_TRANSPORT", "SMTP")
		t.Setenv("MAIL_INVITE", " Ics ")
		path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:3000"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "smtp", cfg.Mail.Transport)
		assert.Equal(t, "ics", cfg.Mail.Invite)
	})

	t.Run("legacy origins are appended", func(t *testing.T) {
		t.Setenv("ORIGIN_1", "https://tutoring.example.edu")
		t.Setenv("ORIGIN_3", "https://admin.example.edu")
		path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:3000"
  allowed_origins: ["http://localhost:5173"]
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"http://localhost:5173",
			"https://tutoring.example.edu",
			"https://admin.example.edu",
		}, cfg.AllowedOrigins)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestMailMissing(t *testing.T) {
	t.Run("rest transport lists every emailjs key", func(t *testing.T) {
		m := Mail{Transport: "rest", Invite: "link"}
		assert.Equal(t, []string{
			"MAIL_FROM_ADDRESS",
			"SERVICE_ID",
			"EMAILJS_PUBLIC_KEY",
			"EMAILJS_PRIVATE_KEY",
			"APPLICATION_TEMPLATE_ID",
			"TUTOR_TEMPLATE_ID",
			"STUDENT_TEMPLATE_ID",
		}, m.Missing())
	})

	t.Run("smtp with ics needs the organizer", func(t *testing.T) {
		m := Mail{
			Transport:   "smtp",
			Invite:      "ics",
			FromAddress: "tutoring@example.edu",
			SMTP:        SMTP{Host: "smtp.example.edu", Username: "bot"},
		}
		assert.Equal(t, []string{"SMTP_PASSWORD", "MAIL_ORGANIZER_EMAIL"}, m.Missing())
	})

	t.Run("selectors are case insensitive", func(t *testing.T) {
		m := Mail{
			Transport:   " SMTP",
			Invite:      "ICS ",
			FromAddress: "tutoring@example.edu",
			SMTP:        SMTP{Host: "smtp.example.edu", Username: "bot", Password: "secret"},
		}
		assert.Equal(t, []string{"MAIL_ORGANIZER_EMAIL"}, m.Missing())

		m.OrganizerEmail = "tutoring@example.edu"
		assert.Nil(t, m.Missing())
	})

	t.Run("complete config", func(t *testing.T) {
		m := Mail{
			Transport:   "smtp",
			Invite:      "link",
			FromAddress: "tutoring@example.edu",
			SMTP:        SMTP{Host: "smtp.example.edu", Username: "bot", Password: "secret"},
		}
		assert.Nil(t, m.Missing())
	})
}

func TestMailLocation(t *testing.T) {
	loc, err := Mail{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Mail{Timezone: "Not/AZone"}.Location()
	assert.Error(t, err)
}
