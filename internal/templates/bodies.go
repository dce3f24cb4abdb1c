package templates

const applicationText = `
Dear {{.ToName}},

Thank you for applying to be a Peer Tutor at Ashesi University. We have received your application with the following details:

Applicant Email: {{.ToEmail}}
Courses Selected: {{.Courses}}
Submission Date: {{.SubmissionDate}}

Your application is currently under review by the academic advisor's office. We will contact you shortly with further instructions or to confirm your tutor status.

Key Next Steps:
- Await review confirmation
- Prepare for potential tutor training

Best regards,
Peer Tutoring Program
Ashesi University
`

const applicationHTML = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Peer Tutor Application Confirmation</h2>
  <p>Dear <strong>{{.ToName}}</strong>,</p>
  <p>Thank you for applying to be a Peer Tutor at Ashesi University. We have received your application with the following details:</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Applicant Email:</strong> {{.ToEmail}}</p>
    <p><strong>Courses Selected:</strong> {{.Courses}}</p>
    <p><strong>Submission Date:</strong> {{.SubmissionDate}}</p>
  </div>
  <p>Your application is currently under review by the academic advisor's office. We will contact you shortly with further instructions or to confirm your tutor status.</p>
  <div style="background-color: #e8f4f8; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <h4 style="color: #2c3e50; margin-top: 0;">Key Next Steps:</h4>
    <ul>
      <li>Await review confirmation</li>
      <li>Prepare for potential tutor training</li>
    </ul>
  </div>
  <p>Best regards,<br><strong>Peer Tutoring Program</strong><br>Ashesi University</p>
</div>
`

const tutorBookingText = `
Hello {{.TutorName}},

{{.StudentName}} ({{.StudentEmail}}) has booked a tutoring session with you.

Session Details:
- Subject: {{.Subject}}
- Topic: {{.Topic}}
- Date & Time: {{.FormattedTime}}
- Duration: {{.Duration}}
- Student: {{.StudentName}} ({{.StudentEmail}})
{{- if .CalendarLink}}

Add this session to your calendar:
{{.CalendarLink}}
{{- end}}

The student has received your contact details ({{.TutorEmail}}, {{.TutorNumber}}).

Next Steps:
- Stay in touch with the student to arrange the meeting venue
- Prepare any necessary materials for the topic

Best regards,
Peer Tutoring System
Ashesi University
`

const tutorBookingHTML = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">New Tutoring Session Booked</h2>
  <p>Hello <strong>{{.TutorName}}</strong>,</p>
  <p><strong>{{.StudentName}}</strong> (<strong>{{.StudentEmail}}</strong>) has booked a tutoring session with you.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <h4 style="color: #2c3e50; margin-top: 0;">Session Details:</h4>
    <p><strong>Subject:</strong> {{.Subject}}</p>
    <p><strong>Topic:</strong> {{.Topic}}</p>
    <p><strong>Date &amp; Time:</strong> {{.FormattedTime}}</p>
    <p><strong>Duration:</strong> {{.Duration}}</p>
    <p><strong>Student:</strong> {{.StudentName}} ({{.StudentEmail}})</p>
  </div>
  {{- if .CalendarLink}}
  <p><a href="{{.CalendarLink}}" style="color: #1a73e8;">Add this session to your calendar</a></p>
  {{- end}}
  <p>The student has received your contact details ({{.TutorEmail}}, {{.TutorNumber}}).</p>
  <div style="background-color: #d1ecf1; padding: 15px; border-radius: 5px; margin: 20px 0; border-left: 4px solid #bee5eb;">
    <h4 style="color: #2c3e50; margin-top: 0;">Next Steps:</h4>
    <ul>
      <li>Stay in touch with the student to arrange the meeting venue</li>
      <li>Prepare any necessary materials for the topic</li>
    </ul>
  </div>
  <p>Best regards,<br><strong>Peer Tutoring System</strong><br>Ashesi University</p>
</div>
`

const studentBookingText = `
Hello {{.StudentName}},

Great news! Your tutoring session has been successfully booked.

Your Session Details:
- Subject: {{.Subject}}
- Topic: {{.Topic}}
- Date & Time: {{.FormattedTime}}
- Tutor: {{.TutorName}}
- Duration: {{.Duration}}
{{- if .CalendarLink}}

Add this session to your calendar:
{{.CalendarLink}}
{{- end}}

Important Next Steps:
- Contact your tutor at {{.TutorNumber}} to confirm the venue
- Prepare specific questions about the topic
- Bring any relevant materials or assignments

Tutor Contact Information:
- Email: {{.TutorEmail}}
- Phone: {{.TutorNumber}}

This confirmation was sent to {{.StudentEmail}}. Your tutor has also been notified of this booking.

Best regards,
Peer Tutoring System
Ashesi University
`

const studentBookingHTML = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Tutoring Session Confirmed!</h2>
  <p>Hello <strong>{{.StudentName}}</strong>,</p>
  <p>Great news! Your tutoring session has been successfully booked.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <h4 style="color: #2c3e50; margin-top: 0;">Your Session Details:</h4>
    <p><strong>Subject:</strong> {{.Subject}}</p>
    <p><strong>Topic:</strong> {{.Topic}}</p>
    <p><strong>Date &amp; Time:</strong> {{.FormattedTime}}</p>
    <p><strong>Tutor:</strong> {{.TutorName}}</p>
    <p><strong>Duration:</strong> {{.Duration}}</p>
  </div>
  {{- if .CalendarLink}}
  <p><a href="{{.CalendarLink}}" style="color: #1a73e8;">Add this session to your calendar</a></p>
  {{- end}}
  <div style="background-color: #fff3cd; padding: 15px; border-radius: 5px; margin: 20px 0; border-left: 4px solid #ffc107;">
    <h4 style="color: #2c3e50; margin-top: 0;">Important Next Steps:</h4>
    <ul>
      <li>Contact your tutor at <strong>{{.TutorNumber}}</strong> to confirm the venue</li>
      <li>Prepare specific questions about the topic</li>
      <li>Bring any relevant materials or assignments</li>
    </ul>
  </div>
  <div style="background-color: #d4edda; padding: 15px; border-radius: 5px; margin: 20px 0; border-left: 4px solid #c3e6cb;">
    <h4 style="color: #2c3e50; margin-top: 0;">Tutor Contact Information:</h4>
    <p><strong>Email:</strong> {{.TutorEmail}}</p>
    <p><strong>Phone:</strong> {{.TutorNumber}}</p>
  </div>
  <p>This confirmation was sent to {{.StudentEmail}}. Your tutor has also been notified of this booking.</p>
  <p>Best regards,<br><strong>Peer Tutoring System</strong><br>Ashesi University</p>
</div>
`
