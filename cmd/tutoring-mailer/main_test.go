package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DAN6256/EmailServer/internal/config"
	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDispatcher(t *testing.T) {
	base := config.Mail{
		Transport:      "smtp",
		Invite:         "ics",
		FromName:       "Peer Tutoring Program",
		FromAddress:    "tutoring@example.edu",
		OrganizerEmail: "tutoring@example.edu",
		Timezone:       "Africa/Accra",
		SessionMinutes: 60,
		SendTimeout:    time.Second,
		SMTP:           config.SMTP{Host: "smtp.example.edu", Port: 587, Username: "u", Password: "p", TLS: "mandatory"},
	}

	t.Run("smtp with ics", func(t *testing.T) {
		d, err := newDispatcher(base, quietLogger(), storage.Nop{})
		require.NoError(t, err)
		require.NotNil(t, d)
	})

	t.Run("rest reports missing keys", func(t *testing.T) {
		m := base
		m.Transport = "rest"
		d, err := newDispatcher(m, quietLogger(), storage.Nop{})
		require.NoError(t, err)

		res := d.CheckConfiguration(context.Background())
		assert.False(t, res.Success)
		assert.Equal(t, "Missing environment variables", res.Error)
	})

	t.Run("invalid settings", func(t *testing.T) {
		for name, mutate := range map[string]func(*config.Mail){
			"transport": func(m *config.Mail) { m.Transport = "fax" },
			"invite":    func(m *config.Mail) { m.Invite = "both" },
			"timezone":  func(m *config.Mail) { m.Timezone = "Mars/Olympus" },
			"tls":       func(m *config.Mail) { m.SMTP.TLS = "sometimes" },
		} {
			m := base
			mutate(&m)
			_, err := newDispatcher(m, quietLogger(), storage.Nop{})
			assert.Error(t, err, name)
		}
	})
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()
	assert.True(t, setupLogger("dev").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("staging").Enabled(ctx, slog.LevelDebug))
	assert.False(t, setupLogger("prod").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("prod").Enabled(ctx, slog.LevelInfo))
}
