// Package notification contains the HTTP handlers that trigger emails.
//
// Handlers are factories: they receive the Dispatcher once at startup
// and return the http.HandlerFunc the router calls on every request.
//
//	router.HandleFunc("POST /api/send-booking-confirmation", notification.Booking(dispatcher))
package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/DAN6256/EmailServer/internal/types"
	"github.com/DAN6256/EmailServer/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies; real requests are a few hundred bytes.
const maxBodyBytes = 64 << 10

// Dispatcher is the part of notifier.Dispatcher these handlers need.
type Dispatcher interface {
	SendApplicationConfirmation(ctx context.Context, req types.ApplicationConfirmationRequest) types.DispatchResult
	SendBookingConfirmation(ctx context.Context, req types.BookingRequest) types.DispatchResult
}

// validate reports fields by their JSON key ("tutor_number") rather than
// the Go field name, so error messages match what the client sent.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Application handles POST /api/send-application-confirmation.
//
// Request body (JSON):
//
//	{ "to_email": "a@x.edu", "to_name": "A", "courses": "Math, CS", "submission_date": "2025-07-12" }
//
// Responses:
//
//	200 OK: DispatchResult, success=true
//	400 Bad Request: empty body, malformed JSON, or a missing field
//	500 Internal: DispatchResult, success=false
func Application(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("sending application confirmation")

		var req types.ApplicationConfirmationRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		writeResult(w, d.SendApplicationConfirmation(r.Context(), req))
	}
}

// Booking handles POST /api/send-booking-confirmation.
//
// Request body (JSON): every field of types.BookingRequest, e.g.
//
//	{ "student_email": "...", "student_name": "...", "tutor_email": "...", "tutor_name": "...",
//	  "tutor_number": "...", "subject": "...", "topic": "...", "selected_time": "2025-07-15T14:00:00Z" }
//
// Responses follow Application.
func Booking(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("sending booking confirmation")

		var req types.BookingRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		writeResult(w, d.SendBookingConfirmation(r.Context(), req))
	}
}

// decodeAndValidate reads the JSON body into v and checks its validate
// tags, writing a 400 and returning false on any problem.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(fmt.Errorf("cannot read request body: %w", err)))
		return false
	}

	if len(bytes.TrimSpace(body)) == 0 {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(fmt.Errorf("invalid JSON body: %w", err)))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			slog.Info("request rejected", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

func writeResult(w http.ResponseWriter, result types.DispatchResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	response.WriteJSON(w, status, result)
}
