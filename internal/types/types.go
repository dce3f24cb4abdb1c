// Package types holds the shared data structures used across the
// application: handlers, the notifier and storage all import it.
package types

import "time"

// BookingRequest is the body of POST /api/send-booking-confirmation.
//
// Struct tags serve two purposes:
//
//  1. json:"...": the snake_case keys the booking front-end sends.
//
//  2. validate:"...": rules checked by the go-playground/validator
//     package. "required" means the field must be present and non-empty.
//
// SelectedTime is an ISO-8601 timestamp such as "2025-07-15T14:00:00Z".
type BookingRequest struct {
	StudentEmail string `json:"student_email" validate:"required"`
	StudentName  string `json:"student_name"  validate:"required"`
	TutorEmail   string `json:"tutor_email"   validate:"required"`
	TutorName    string `json:"tutor_name"    validate:"required"`
	TutorNumber  string `json:"tutor_number"  validate:"required"`
	Subject      string `json:"subject"       validate:"required"`
	Topic        string `json:"topic"         validate:"required"`
	SelectedTime string `json:"selected_time" validate:"required"`
}

// ApplicationConfirmationRequest is the body of
// POST /api/send-application-confirmation.
//
// Courses is free text ("Mathematics, Physics") and SubmissionDate is
// rendered exactly as the applicant portal sent it.
type ApplicationConfirmationRequest struct {
	ToEmail        string `json:"to_email"        validate:"required"`
	ToName         string `json:"to_name"         validate:"required"`
	Courses        string `json:"courses"         validate:"required"`
	SubmissionDate string `json:"submission_date" validate:"required"`
}

// DispatchResult is the uniform outcome of every notification operation.
// A failed dispatch is reported through Success=false, never by a panic
// or an error escaping the notifier.
type DispatchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Delivery is one outbound email attempt as recorded in the delivery log.
type Delivery struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Transport  string    `json:"transport"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ProviderID string    `json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Delivery statuses.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)
