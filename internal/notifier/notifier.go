// Package notifier turns application and booking requests into emails
// and hands them to a mail.Transport.
//
// Every public method returns a types.DispatchResult. Failures of any
// kind, including panics in rendering, are converted to a result with
// Success=false; nothing escapes to the HTTP layer as an error.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/DAN6256/EmailServer/internal/calendar"
	"github.com/DAN6256/EmailServer/internal/mail"
	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/DAN6256/EmailServer/internal/templates"
	"github.com/DAN6256/EmailServer/internal/types"
	"golang.org/x/sync/errgroup"
)

// Result messages shared with API clients.
const (
	msgApplicationSent = "Application confirmation email sent successfully"
	msgBookingSent     = "Booking confirmation emails sent successfully"
	msgSendFailed      = "Email sending failed"
	msgNotConfigured   = "Email service is not configured"
	msgInvalidRequest  = "Invalid request"
	msgInvalidTime     = "Invalid session time"
	msgInternal        = "Internal Server Error"
	msgMissingEnv      = "Missing environment variables"
	msgCheckFailed     = "Email configuration check failed"
)

// DefaultSendTimeout bounds a single send when Options.SendTimeout is zero.
const DefaultSendTimeout = 10 * time.Second

// Options is the deployment-wide behaviour of a Dispatcher, resolved once
// at startup.
type Options struct {
	From      mail.Address
	Organizer calendar.Participant

	InviteMode   calendar.Mode
	InviteDomain string

	SessionDuration time.Duration
	// Location renders session times and interprets start times that
	// carry no offset. Nil means UTC.
	Location *time.Location

	SendTimeout time.Duration

	// Missing reports required configuration keys that are unset. Nil
	// means nothing is ever missing.
	Missing func() []string

	// Now is the clock used for ICS timestamps. Nil means time.Now.
	Now func() time.Time
}

// Dispatcher renders and sends notifications.
type Dispatcher struct {
	transport  mail.Transport
	opts       Options
	log        *slog.Logger
	deliveries storage.DeliveryLog
	ics        calendar.ICSBuilder
}

// New wires a Dispatcher. A nil logger discards output and a nil log
// records nothing.
func New(transport mail.Transport, opts Options, log *slog.Logger, deliveries storage.DeliveryLog) *Dispatcher {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = calendar.DefaultDuration
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InviteMode == "" {
		opts.InviteMode = calendar.ModeLink
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deliveries == nil {
		deliveries = storage.Nop{}
	}

	return &Dispatcher{
		transport:  transport,
		opts:       opts,
		log:        log.With(slog.String("transport", transport.Name())),
		deliveries: deliveries,
		ics:        calendar.ICSBuilder{Domain: opts.InviteDomain},
	}
}

// SideResult is the outcome of one message inside a booking.
type SideResult struct {
	Success   bool                `json:"success"`
	Recipient string              `json:"recipient"`
	MessageID string              `json:"message_id,omitempty"`
	Error     string              `json:"error,omitempty"`
	Provider  *mail.ProviderError `json:"provider,omitempty"`
}

// SendApplicationConfirmation emails an applicant that their peer-tutor
// application was received.
func (d *Dispatcher) SendApplicationConfirmation(ctx context.Context, req types.ApplicationConfirmationRequest) (result types.DispatchResult) {
	defer d.recoverInto(&result, "application")

	if res, ok := d.requireConfig(); !ok {
		return res
	}

	to := strings.TrimSpace(req.ToEmail)
	if to == "" {
		return d.fail(msgInvalidRequest, fmt.Errorf("%w: to_email is empty", ErrValidation))
	}

	email, err := templates.ApplicationConfirmation(templates.ApplicationData{
		ToName:         req.ToName,
		ToEmail:        to,
		Courses:        req.Courses,
		SubmissionDate: req.SubmissionDate,
	})
	if err != nil {
		return d.fail(msgInternal, fmt.Errorf("%w: %w", ErrFormat, err))
	}

	msg := d.message(mail.KindApplication, mail.Address{Name: req.ToName, Email: to}, email)
	msg.Params = map[string]string{
		"to_email":        to,
		"to_name":         req.ToName,
		"courses":         req.Courses,
		"submission_date": req.SubmissionDate,
	}

	side := d.send(ctx, msg)
	if !side.Success {
		return types.DispatchResult{Success: false, Error: msgSendFailed, Details: side}
	}

	d.log.Info("application confirmation sent", slog.String("to", to))
	return types.DispatchResult{Success: true, Message: msgApplicationSent}
}

// SendBookingConfirmation notifies the tutor and confirms to the student.
// Both messages are sent concurrently and the call succeeds only when
// both are accepted. On failure Details holds a SideResult per side under
// the keys "tutor" and "student".
func (d *Dispatcher) SendBookingConfirmation(ctx context.Context, req types.BookingRequest) (result types.DispatchResult) {
	defer d.recoverInto(&result, "booking")

	if res, ok := d.requireConfig(); !ok {
		return res
	}

	studentEmail := strings.TrimSpace(req.StudentEmail)
	tutorEmail := strings.TrimSpace(req.TutorEmail)
	if studentEmail == "" || tutorEmail == "" {
		return d.fail(msgInvalidRequest, fmt.Errorf("%w: student_email and tutor_email must not be blank", ErrValidation))
	}

	start, err := calendar.ParseStart(req.SelectedTime, d.opts.Location)
	if err != nil {
		return d.fail(msgInvalidTime, fmt.Errorf("%w: %w", ErrFormat, err))
	}

	student := calendar.Participant{Name: req.StudentName, Email: studentEmail}
	tutor := calendar.Participant{Name: req.TutorName, Email: tutorEmail}
	session := calendar.Details{
		Subject:   req.Subject,
		Topic:     req.Topic,
		Organizer: d.opts.Organizer,
		Start:     start,
		Duration:  d.opts.SessionDuration,
	}

	data := templates.BookingData{
		StudentName:   req.StudentName,
		StudentEmail:  studentEmail,
		TutorName:     req.TutorName,
		TutorEmail:    tutorEmail,
		TutorNumber:   req.TutorNumber,
		Subject:       req.Subject,
		Topic:         req.Topic,
		FormattedTime: templates.FormatSessionTime(start, d.opts.Location),
		Duration:      templates.FormatDuration(d.opts.SessionDuration),
	}

	var tutorInvite, studentInvite *mail.Attachment
	switch d.opts.InviteMode {
	case calendar.ModeICS:
		now := d.opts.Now()
		tutorInvite, err = d.buildICS(session, tutor, student, now)
		if err != nil {
			return d.inviteFailure(err)
		}
		studentInvite, err = d.buildICS(session, student, tutor, now)
		if err != nil {
			return d.inviteFailure(err)
		}
	default:
		session.Attendee, session.Counterpart = tutor, student
		link, err := calendar.BuildLink(session)
		if err != nil {
			return d.inviteFailure(err)
		}
		data.CalendarLink = link.Link
	}

	tutorEmailBody, err := templates.TutorBookingNotification(data)
	if err != nil {
		return d.fail(msgInternal, fmt.Errorf("%w: %w", ErrFormat, err))
	}
	studentEmailBody, err := templates.StudentBookingConfirmation(data)
	if err != nil {
		return d.fail(msgInternal, fmt.Errorf("%w: %w", ErrFormat, err))
	}

	params := bookingParams(req, studentEmail, tutorEmail, data)

	tutorMsg := d.message(mail.KindTutorBooking, mail.Address{Name: req.TutorName, Email: tutorEmail}, tutorEmailBody)
	tutorMsg.Invite = tutorInvite
	tutorMsg.Link = data.CalendarLink
	tutorMsg.Params = withRecipient(params, tutorEmail)

	studentMsg := d.message(mail.KindStudentBooking, mail.Address{Name: req.StudentName, Email: studentEmail}, studentEmailBody)
	studentMsg.Invite = studentInvite
	studentMsg.Link = data.CalendarLink
	studentMsg.Params = withRecipient(params, studentEmail)

	// Each goroutine owns its result slot. Neither returns an error, so
	// the group never cancels the other send.
	var tutorRes, studentRes SideResult
	var g errgroup.Group
	g.Go(func() error {
		tutorRes = d.send(ctx, tutorMsg)
		return nil
	})
	g.Go(func() error {
		studentRes = d.send(ctx, studentMsg)
		return nil
	})
	_ = g.Wait()

	if !tutorRes.Success || !studentRes.Success {
		d.log.Warn("booking confirmation failed",
			slog.Bool("tutor_sent", tutorRes.Success),
			slog.Bool("student_sent", studentRes.Success),
		)
		return types.DispatchResult{
			Success: false,
			Error:   msgSendFailed,
			Details: map[string]SideResult{"tutor": tutorRes, "student": studentRes},
		}
	}

	d.log.Info("booking confirmation sent",
		slog.String("tutor", tutorEmail),
		slog.String("student", studentEmail),
		slog.String("invite_mode", string(d.opts.InviteMode)),
	)
	return types.DispatchResult{Success: true, Message: msgBookingSent}
}

// CheckConfiguration reports missing configuration keys, then asks the
// transport to verify itself without sending mail.
func (d *Dispatcher) CheckConfiguration(ctx context.Context) (result types.DispatchResult) {
	defer d.recoverInto(&result, "config-check")

	if missing := d.missing(); len(missing) > 0 {
		d.log.Warn("mail configuration incomplete", slog.Any("missing", missing))
		return types.DispatchResult{
			Success: false,
			Error:   msgMissingEnv,
			Details: map[string][]string{"missing": missing},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	if err := d.transport.Verify(ctx); err != nil {
		err = transportError(err, d.opts.SendTimeout.String())
		d.log.Error("mail configuration check failed", slog.String("error", err.Error()))
		return types.DispatchResult{Success: false, Error: msgCheckFailed, Details: err.Error()}
	}

	return types.DispatchResult{
		Success: true,
		Message: fmt.Sprintf("%s configuration is ready", d.transport.Name()),
	}
}

func (d *Dispatcher) buildICS(session calendar.Details, attendee, counterpart calendar.Participant, now time.Time) (*mail.Attachment, error) {
	session.Attendee, session.Counterpart = attendee, counterpart
	inv, err := d.ics.Build(session, now)
	if err != nil {
		return nil, fmt.Errorf("invite for %s: %w", attendee.Email, err)
	}
	return &mail.Attachment{
		Filename:    inv.Filename(),
		ContentType: inv.ContentType(),
		Content:     inv.ICS,
	}, nil
}

func (d *Dispatcher) message(kind mail.Kind, to mail.Address, email templates.RenderedEmail) mail.Message {
	return mail.Message{
		Kind:    kind,
		From:    d.opts.From,
		To:      to,
		Subject: email.Subject,
		Text:    email.PlainText,
		HTML:    email.HTML,
	}
}

// send performs one delivery attempt under the per-send timeout and
// records it in the delivery log.
func (d *Dispatcher) send(ctx context.Context, msg mail.Message) (res SideResult) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	res = SideResult{Recipient: msg.To.Email}

	// Booking sends run on their own goroutines, out of reach of the
	// caller's recoverInto.
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("transport panic", slog.String("to", msg.To.Email), slog.Any("panic", r))
			res = SideResult{Recipient: msg.To.Email, Error: fmt.Sprintf("internal error: %v", r)}
			d.record(msg, res)
		}
	}()

	receipt, err := d.transport.Send(ctx, msg)
	if err != nil {
		err = transportError(err, d.opts.SendTimeout.String())
		res.Error = err.Error()
		res.Provider = providerDetails(err)
		d.log.Error("email send failed",
			slog.String("kind", string(msg.Kind)),
			slog.String("to", msg.To.Email),
			slog.String("class", Classify(err)),
			slog.String("error", err.Error()),
		)
	} else {
		res.Success = true
		res.MessageID = receipt.ID
	}

	d.record(msg, res)
	return res
}

func (d *Dispatcher) record(msg mail.Message, res SideResult) {
	status := types.DeliverySent
	if !res.Success {
		status = types.DeliveryFailed
	}
	// Detached from the request context so a cancelled request is still
	// logged.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.deliveries.RecordDelivery(ctx, types.Delivery{
		Kind:       string(msg.Kind),
		Recipient:  msg.To.Email,
		Subject:    msg.Subject,
		Transport:  d.transport.Name(),
		Status:     status,
		Error:      res.Error,
		ProviderID: res.MessageID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		d.log.Warn("cannot record delivery", slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) missing() []string {
	if d.opts.Missing == nil {
		return nil
	}
	return d.opts.Missing()
}

func (d *Dispatcher) requireConfig() (types.DispatchResult, bool) {
	missing := d.missing()
	if len(missing) == 0 {
		return types.DispatchResult{}, true
	}
	return d.fail(msgNotConfigured, &ConfigError{Missing: missing}), false
}

// fail logs err and converts it to a failed result. Missing
// configuration keeps the generic message only; the keys are listed by
// CheckConfiguration.
func (d *Dispatcher) fail(message string, err error) types.DispatchResult {
	d.log.Error(message,
		slog.String("class", Classify(err)),
		slog.String("error", err.Error()),
	)
	result := types.DispatchResult{Success: false, Error: message}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		result.Details = err.Error()
	}
	return result
}

// inviteFailure reports a calendar build error. A missing organizer
// mailbox is missing configuration; anything else is a bad session time.
func (d *Dispatcher) inviteFailure(err error) types.DispatchResult {
	if errors.Is(err, calendar.ErrMissingParticipant) {
		return d.fail(msgNotConfigured, fmt.Errorf("%w: %w", &ConfigError{Missing: []string{"MAIL_ORGANIZER_EMAIL"}}, err))
	}
	return d.fail(msgInvalidTime, fmt.Errorf("%w: %w", ErrFormat, err))
}

func (d *Dispatcher) recoverInto(result *types.DispatchResult, op string) {
	if r := recover(); r != nil {
		d.log.Error("notifier panic", slog.String("op", op), slog.Any("panic", r))
		*result = types.DispatchResult{Success: false, Error: msgInternal, Details: fmt.Sprint(r)}
	}
}

func bookingParams(req types.BookingRequest, studentEmail, tutorEmail string, data templates.BookingData) map[string]string {
	return map[string]string{
		"student_email":  studentEmail,
		"student_name":   req.StudentName,
		"tutor_email":    tutorEmail,
		"tutor_name":     req.TutorName,
		"tutor_number":   req.TutorNumber,
		"subject":        req.Subject,
		"topic":          req.Topic,
		"selected_time":  req.SelectedTime,
		"formatted_time": data.FormattedTime,
		"duration":       data.Duration,
	}
}

// withRecipient copies params so the two concurrent messages never share
// a map.
func withRecipient(params map[string]string, to string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["to_email"] = to
	return out
}
