// Package email sends booking notices via SMTP.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"fms/api/internal/store"
)

// ErrNotConfigured is returned when SMTP settings are incomplete.
var ErrNotConfigured = errors.New("email not configured")

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   sendFunc
}

// NewService creates a new email service
func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

func (s *Service) fromHeader() string {
	if s.config.FromName == "" {
		return s.config.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", s.config.FromName), s.config.From)
}

// SendHTMLEmail sends an HTML email with a plain text alternative
func (s *Service) SendHTMLEmail(to []string, subject, textBody, htmlBody string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if len(to) == 0 {
		return fmt.Errorf("send email: no recipients")
	}

	boundary := "boundary-fms"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", s.fromHeader())
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", textBody)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	if err := s.send(s.server, s.auth, s.config.From, to, msg.Bytes()); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// PreAlertData holds data for the pre-alert template
type PreAlertData struct {
	AppName string
	Booking store.SeaBooking
	ETD     string
	ETA     string
	Note    string
}

// SendPreAlert notifies the consignee side that a booking is about to sail.
func (s *Service) SendPreAlert(to []string, booking store.SeaBooking, note string) error {
	data := PreAlertData{
		AppName: "FMS",
		Booking: booking,
		ETD:     formatDate(booking.ETD),
		ETA:     formatDate(booking.ETA),
		Note:    note,
	}

	html, err := renderTemplate(preAlertTemplate, data)
	if err != nil {
		return fmt.Errorf("render pre-alert template: %w", err)
	}
	subject := fmt.Sprintf("[Pre-Alert] %s %s %s", booking.BookingNo, booking.VesselName, booking.VoyageNo)
	text := fmt.Sprintf("Booking %s\r\nVessel: %s %s\r\n%s -> %s\r\nETD %s / ETA %s\r\n",
		booking.BookingNo, booking.VesselName, booking.VoyageNo,
		booking.POLPortCode, booking.PODPortCode, data.ETD, data.ETA)
	return s.SendHTMLEmail(to, strings.TrimSpace(subject), text, html)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "미정"
	}
	return t.Format("2006-01-02")
}

var templates = map[string]*template.Template{}

func renderTemplate(name string, data interface{}) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const preAlertTemplate = "pre_alert"

func init() {
	templates[preAlertTemplate] = template.Must(template.New(preAlertTemplate).Parse(preAlertHTML))
}

const preAlertHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Pre-Alert {{.Booking.BookingNo}}</title>
    <style>
        body { font-family: 'Malgun Gothic', -apple-system, 'Segoe UI', sans-serif; line-height: 1.6; color: #333; max-width: 640px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1f3a5f; padding-bottom: 10px; margin-bottom: 20px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
        th { background: #f3f6fa; width: 30%; }
        .note { background: #fff3cd; padding: 12px; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}} Pre-Alert</h1>
    </div>

    <table>
        <tr><th>Booking No</th><td>{{.Booking.BookingNo}}</td></tr>
        <tr><th>Shipper</th><td>{{.Booking.ShipperName}}</td></tr>
        <tr><th>Consignee</th><td>{{.Booking.ConsigneeName}}</td></tr>
        <tr><th>Vessel / Voyage</th><td>{{.Booking.VesselName}} {{.Booking.VoyageNo}}</td></tr>
        <tr><th>POL / POD</th><td>{{.Booking.POLPortCode}} / {{.Booking.PODPortCode}}</td></tr>
        <tr><th>ETD / ETA</th><td>{{.ETD}} / {{.ETA}}</td></tr>
        <tr><th>Containers</th><td>{{.Booking.TotalCntrQty}}</td></tr>
    </table>

    {{if .Note}}<div class="note">{{.Note}}</div>{{end}}

    <div class="footer">
        <p>This notice was sent automatically by {{.AppName}}.</p>
    </div>
</body>
</html>`
