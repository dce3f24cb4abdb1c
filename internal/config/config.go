// Package config handles loading and parsing application configuration.
// It supports two sources for the YAML file (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// A .env file in the working directory, when present, is loaded into the
// process environment first, so secrets such as EMAILJS_PRIVATE_KEY can
// live outside the YAML file.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
//
// Only Env and the listen address are env-required. Mail credentials are
// checked at runtime by Mail.Missing so that /api/test-email can report
// exactly which keys are absent instead of the process refusing to boot.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the SQLite file used for the delivery log.
	// Empty disables the log.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	HTTPServer `yaml:"http_server"`

	Mail Mail `yaml:"mail"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	// AllowedOrigins feeds the CORS middleware. The legacy ORIGIN_1..3
	// variables are appended by Load.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`

	// RequestsPerMinute is the per-IP request budget. Zero disables it.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE" env-default:"60"`
}

// Mail groups everything the notifier needs to build and send messages.
type Mail struct {
	// Transport selects the delivery channel: "rest" (EmailJS) or "smtp".
	Transport string `yaml:"transport" env:"MAIL_TRANSPORT" env-default:"rest"`

	// Invite selects the calendar strategy: "ics" or "link".
	Invite string `yaml:"invite" env:"MAIL_INVITE" env-default:"link"`

	FromName    string `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"Peer Tutoring Program"`
	FromAddress string `yaml:"from_address" env:"MAIL_FROM_ADDRESS"`

	// OrganizerName and OrganizerEmail identify the program mailbox that
	// organizes every generated ICS invite.
	OrganizerName  string `yaml:"organizer_name" env:"MAIL_ORGANIZER_NAME" env-default:"Peer Tutoring Program"`
	OrganizerEmail string `yaml:"organizer_email" env:"MAIL_ORGANIZER_EMAIL"`

	// InviteDomain is the right-hand side of generated ICS UIDs.
	InviteDomain string `yaml:"invite_domain" env:"MAIL_INVITE_DOMAIN" env-default:"ashesi.edu.gh"`

	SessionMinutes int           `yaml:"session_minutes" env:"MAIL_SESSION_MINUTES" env-default:"60"`
	Timezone       string        `yaml:"timezone" env:"MAIL_TIMEZONE" env-default:"Africa/Accra"`
	SendTimeout    time.Duration `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT" env-default:"10s"`

	EmailJS EmailJS `yaml:"emailjs"`
	SMTP    SMTP    `yaml:"smtp"`
}

// EmailJS holds the REST transport credentials and template ids.
type EmailJS struct {
	Endpoint              string  `yaml:"endpoint" env:"EMAILJS_ENDPOINT" env-default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID             string  `yaml:"service_id" env:"SERVICE_ID"`
	PublicKey             string  `yaml:"public_key" env:"EMAILJS_PUBLIC_KEY"`
	PrivateKey            string  `yaml:"private_key" env:"EMAILJS_PRIVATE_KEY"`
	ApplicationTemplateID string  `yaml:"application_template_id" env:"APPLICATION_TEMPLATE_ID"`
	TutorTemplateID       string  `yaml:"tutor_template_id" env:"TUTOR_TEMPLATE_ID"`
	StudentTemplateID     string  `yaml:"student_template_id" env:"STUDENT_TEMPLATE_ID"`
	RatePerSecond         float64 `yaml:"rate_per_second" env:"EMAILJS_RATE_PER_SECOND" env-default:"1"`
	Burst                 int     `yaml:"burst" env:"EMAILJS_BURST" env-default:"2"`
}

// SMTP holds the relay settings for the SMTP transport.
type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`

	// TLS is "mandatory", "opportunistic" or "none".
	TLS string `yaml:"tls" env:"SMTP_TLS" env-default:"mandatory"`
}

// Missing returns the environment variable names of every required mail
// setting that is empty for the selected transport and invite mode.
// The order is stable; the result is nil when nothing is missing.
func (m Mail) Missing() []string {
	var missing []string
	check := func(value, key string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	check(m.FromAddress, "MAIL_FROM_ADDRESS")

	switch normalize(m.Transport) {
	case "smtp":
		check(m.SMTP.Host, "SMTP_HOST")
		check(m.SMTP.Username, "SMTP_USERNAME")
		check(m.SMTP.Password, "SMTP_PASSWORD")
	default:
		check(m.EmailJS.ServiceID, "SERVICE_ID")
		check(m.EmailJS.PublicKey, "EMAILJS_PUBLIC_KEY")
		check(m.EmailJS.PrivateKey, "EMAILJS_PRIVATE_KEY")
		check(m.EmailJS.ApplicationTemplateID, "APPLICATION_TEMPLATE_ID")
		check(m.EmailJS.TutorTemplateID, "TUTOR_TEMPLATE_ID")
		check(m.EmailJS.StudentTemplateID, "STUDENT_TEMPLATE_ID")
	}

	if normalize(m.Invite) == "ics" {
		check(m.OrganizerEmail, "MAIL_ORGANIZER_EMAIL")
	}

	return missing
}

// Normalize lowercases and trims the transport and invite selectors so
// they compare the same way the startup parsers read them.
func (m *Mail) Normalize() {
	m.Transport = normalize(m.Transport)
	m.Invite = normalize(m.Invite)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (m Mail) Location() (*time.Location, error) {
	if m.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: load timezone %q: %w", m.Timezone, err)
	}
	return loc, nil
}

// Load reads the YAML file at path, applies environment overrides and
// returns the parsed config. It is the testable core of MustLoad.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	for _, key := range []string{"ORIGIN_1", "ORIGIN_2", "ORIGIN_3"} {
		if origin := os.Getenv(key); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	cfg.Mail.Normalize()

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config was read successfully.
func MustLoad() *Config {
	// A missing .env is normal in containers where the platform injects
	// variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
