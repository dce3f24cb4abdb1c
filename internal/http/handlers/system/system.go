// Package system contains the operational endpoints: health, the mail
// configuration self-check and the public configuration view.
package system

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DAN6256/EmailServer/internal/config"
	"github.com/DAN6256/EmailServer/internal/types"
	"github.com/DAN6256/EmailServer/internal/utils/response"
)

// Checker verifies the mail transport without sending anything.
type Checker interface {
	CheckConfiguration(ctx context.Context) types.DispatchResult
}

// Health handles GET /health.
//
//	{ "status": "OK", "timestamp": "2025-07-12T10:30:00.000Z" }
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
}

// TestEmail handles GET /api/test-email: 200 when the transport is
// configured and reachable, 500 with the reason otherwise.
func TestEmail(c Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("checking mail configuration")

		result := c.CheckConfiguration(r.Context())
		status := http.StatusOK
		if !result.Success {
			status = http.StatusInternalServerError
		}
		response.WriteJSON(w, status, result)
	}
}

// PublicConfig is what a browser front-end may learn about the mail
// setup. Secrets are never included.
type PublicConfig struct {
	Transport  string         `json:"transport"`
	InviteMode string         `json:"invite_mode"`
	From       string         `json:"from"`
	Timezone   string         `json:"timezone"`
	EmailJS    *PublicEmailJS `json:"emailjs,omitempty"`
}

// PublicEmailJS holds the EmailJS identifiers a browser needs to use the
// EmailJS SDK directly.
type PublicEmailJS struct {
	ServiceID string            `json:"service_id"`
	PublicKey string            `json:"public_key"`
	Templates map[string]string `json:"templates"`
}

// Config handles GET /api/config. Missing settings produce a 500 that
// lists them under details.missing.
func Config(m config.Mail) http.HandlerFunc {
	m.Normalize()

	return func(w http.ResponseWriter, r *http.Request) {
		if missing := m.Missing(); len(missing) > 0 {
			response.WriteJSON(w, http.StatusInternalServerError, types.DispatchResult{
				Success: false,
				Error:   "Missing environment variables",
				Details: map[string][]string{"missing": missing},
			})
			return
		}

		pc := PublicConfig{
			Transport:  m.Transport,
			InviteMode: m.Invite,
			From:       m.FromAddress,
			Timezone:   m.Timezone,
		}
		if m.Transport != "smtp" {
			pc.EmailJS = &PublicEmailJS{
				ServiceID: m.EmailJS.ServiceID,
				PublicKey: m.EmailJS.PublicKey,
				Templates: map[string]string{
					"application": m.EmailJS.ApplicationTemplateID,
					"tutor":       m.EmailJS.TutorTemplateID,
					"student":     m.EmailJS.StudentTemplateID,
				},
			}
		}

		response.WriteJSON(w, http.StatusOK, pc)
	}
}

// Root handles GET / by sending clients to the health check.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusFound)
	}
}
