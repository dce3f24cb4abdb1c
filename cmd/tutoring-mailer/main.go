// main is the entry point of the peer-tutoring mail service.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, then YAML, then environment overrides)
//  2. Initialise the logger
//  3. Open the delivery log (optional)
//  4. Build the mail transport selected by mail.transport
//  5. Build the dispatcher and register the HTTP routes
//  6. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/tutoring-mailer --config=config/local.yaml
//
// or
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/tutoring-mailer
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/DAN6256/EmailServer/internal/calendar"
	"github.com/DAN6256/EmailServer/internal/config"
	"github.com/DAN6256/EmailServer/internal/http/router"
	"github.com/DAN6256/EmailServer/internal/mail"
	"github.com/DAN6256/EmailServer/internal/mail/emailjs"
	"github.com/DAN6256/EmailServer/internal/mail/smtp"
	"github.com/DAN6256/EmailServer/internal/notifier"
	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/DAN6256/EmailServer/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting tutoring-mailer",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Delivery Log ───────────────────────────────────────────────────
	var deliveries storage.DeliveryLog = storage.Nop{}
	if cfg.StoragePath != "" {
		db, err := sqlite.New(cfg.StoragePath)
		if err != nil {
			log.Error("failed to initialise storage",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		deliveries = db

		log.Info("storage initialised", slog.String("path", cfg.StoragePath))
	} else {
		log.Info("delivery log disabled")
	}

	// ── 4. Mail Transport + Dispatcher ────────────────────────────────────
	dispatcher, err := newDispatcher(cfg.Mail, log, deliveries)
	if err != nil {
		log.Error("failed to initialise mail", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Missing credentials do not stop the server: /api/test-email reports
	// them and sends fail with a configuration error.
	if missing := cfg.Mail.Missing(); len(missing) > 0 {
		log.Warn("mail configuration incomplete", slog.Any("missing", missing))
	}

	// ── 5. Routes ─────────────────────────────────────────────────────────
	handler := router.New(router.Deps{
		Dispatcher: dispatcher,
		Deliveries: deliveries,
		Mail:       cfg.Mail,
		Server:     cfg.HTTPServer,
		Log:        log,
	})

	// WriteTimeout must outlive a booking: two concurrent sends, each
	// bounded by the send timeout.
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Mail.SendTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Serve + Graceful Shutdown ──────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mail.SendTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// newDispatcher resolves the {transport, invite} strategy once and wires
// the dispatcher around it.
func newDispatcher(m config.Mail, log *slog.Logger, deliveries storage.DeliveryLog) (*notifier.Dispatcher, error) {
	kind, err := mail.ParseTransportKind(m.Transport)
	if err != nil {
		return nil, err
	}
	mode, err := calendar.ParseMode(m.Invite)
	if err != nil {
		return nil, err
	}
	loc, err := m.Location()
	if err != nil {
		return nil, err
	}

	var transport mail.Transport
	switch kind {
	case mail.TransportSMTP:
		transport, err = smtp.New(smtp.Options{
			Host:     m.SMTP.Host,
			Port:     m.SMTP.Port,
			Username: m.SMTP.Username,
			Password: m.SMTP.Password,
			TLS:      m.SMTP.TLS,
			Timeout:  m.SendTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("smtp transport: %w", err)
		}
	default:
		transport = emailjs.New(emailjs.Options{
			Endpoint:   m.EmailJS.Endpoint,
			ServiceID:  m.EmailJS.ServiceID,
			PublicKey:  m.EmailJS.PublicKey,
			PrivateKey: m.EmailJS.PrivateKey,
			Templates: map[mail.Kind]string{
				mail.KindApplication:    m.EmailJS.ApplicationTemplateID,
				mail.KindTutorBooking:   m.EmailJS.TutorTemplateID,
				mail.KindStudentBooking: m.EmailJS.StudentTemplateID,
			},
			RatePerSecond: m.EmailJS.RatePerSecond,
			Burst:         m.EmailJS.Burst,
		})
	}

	log.Info("mail configured",
		slog.String("transport", transport.Name()),
		slog.String("invite_mode", string(mode)),
		slog.String("timezone", loc.String()),
	)

	return notifier.New(transport, notifier.Options{
		From:            mail.Address{Name: m.FromName, Email: m.FromAddress},
		Organizer:       calendar.Participant{Name: m.OrganizerName, Email: m.OrganizerEmail},
		InviteMode:      mode,
		InviteDomain:    m.InviteDomain,
		SessionDuration: time.Duration(m.SessionMinutes) * time.Minute,
		Location:        loc,
		SendTimeout:     m.SendTimeout,
		Missing:         m.Missing,
	}, log, deliveries), nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev (default): human-readable text at DEBUG.
// staging:       JSON at DEBUG.
// prod:          JSON at INFO.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
