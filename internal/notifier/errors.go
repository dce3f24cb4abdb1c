package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DAN6256/EmailServer/internal/mail"
)

// Error classes. Every failure reported by the Dispatcher wraps exactly
// one of them. ErrFormat is a kind of configuration failure: a value the
// deployment or caller supplied could not be turned into an email.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrFormat        = fmt.Errorf("%w: format", ErrConfiguration)
	ErrTransport     = errors.New("transport error")
)

// ConfigError lists the configuration keys that must be set before mail
// can be sent.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Classify names the class of err for logs and delivery records.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}

// transportError wraps a send failure in ErrTransport, turning a missed
// deadline into a readable "timed out" message.
func transportError(err error, timeout string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out after %s", ErrTransport, timeout)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// providerDetails extracts the provider's own rejection, if any, so it
// can be returned verbatim to the caller.
func providerDetails(err error) *mail.ProviderError {
	var perr *mail.ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return nil
}
