package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type notifierImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

// NewNotifier creates the SMTP-backed HR notifier.
func NewNotifier(cfg config.SMTPConfig) (laterequest.Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &notifierImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

type punchRow struct {
	Label string
	Value string
}

type lateRequestEmailData struct {
	RequestID      int64
	EmployeeName   string
	AttendanceDate string
	Punches        []punchRow
	Reason         string
	PreviewCredit  string
}

func punchRows(requested map[string]string) []punchRow {
	labels := []struct{ key, label string }{
		{"time_in_morning", "Morning in"},
		{"time_out_morning", "Morning out"},
		{"time_in_afternoon", "Afternoon in"},
		{"time_out_afternoon", "Afternoon out"},
	}
	rows := make([]punchRow, 0, len(labels))
	for _, l := range labels {
		value := requested[l.key]
		if value == "" {
			value = "-"
		}
		rows = append(rows, punchRow{Label: l.label, Value: value})
	}
	return rows
}

func newLateRequestEmailData(s laterequest.Submission) lateRequestEmailData {
	data := lateRequestEmailData{
		RequestID:      s.RequestID,
		EmployeeName:   s.EmployeeName,
		AttendanceDate: s.AttendanceDate,
		Punches:        punchRows(s.Requested),
		Reason:         s.Reason,
		PreviewCredit:  "-",
	}
	if s.PreviewCredit != nil {
		data.PreviewCredit = fmt.Sprintf("%.2f", *s.PreviewCredit)
	}
	return data
}

// NotifyLateRequest implements laterequest.Notifier.
func (n *notifierImpl) NotifyLateRequest(ctx context.Context, recipients []string, s laterequest.Submission) error {
	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, "late_request.html", newLateRequestEmailData(s)); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Late Attendance Request: %s (%s)", s.EmployeeName, s.AttendanceDate)
	return n.sendHTML(ctx, recipients, subject, body.String())
}

type pendingDigestEmailData struct {
	Count    int
	Requests []lateRequestEmailData
}

// NotifyPendingDigest implements laterequest.Notifier.
func (n *notifierImpl) NotifyPendingDigest(ctx context.Context, recipients []string, pending []laterequest.Submission) error {
	data := pendingDigestEmailData{Count: len(pending)}
	for _, s := range pending {
		data.Requests = append(data.Requests, newLateRequestEmailData(s))
	}

	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, "pending_digest.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("%d late attendance request(s) awaiting review", len(pending))
	return n.sendHTML(ctx, recipients, subject, body.String())
}

func (n *notifierImpl) sendHTML(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		slog.Warn("No HR recipients configured, skipping email send", "subject", subject)
		return nil
	}

	// Skip sending if SMTP is not configured
	if n.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := n.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", n.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(to, ", "))
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.NewString(), n.cfg.Host)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := n.send(addr, auth, from, to, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * n.backoff):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
