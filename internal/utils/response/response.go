// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every body this service writes carries a "success" flag, the same
// shape as types.DispatchResult, so API consumers can branch on one
// field whatever endpoint they called.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Response is the envelope returned for error cases:
//
//	{ "success": false, "error": "field tutor_number is required" }
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON writes data as JSON with the given status code.
// Header() → WriteHeader() → body: headers are locked after WriteHeader.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
	}
}

// ValidationError converts validator field errors into a single
// human-readable Response. Field names are whatever the validator was
// told to report; the handlers register the JSON tag name so clients see
// the key they sent.
//
//	{ "success": false, "error": "field tutor_number is required, field topic is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Success: false,
		Error:   strings.Join(errMessages, ", "),
	}
}
