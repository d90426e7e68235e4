package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/envutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/sendgrid"
)

// RecipientResult reports one email's outcome.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Role      string `json:"role"` // submitter | admin
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// NotifyService sends the submission emails: a confirmation to the
// submitter and an alert to the fixed admin address.
type NotifyService interface {
	NotifySubmission(ctx context.Context, sub *domain.FormSubmission) []RecipientResult
}

type notifyService struct {
	mailer     sendgrid.Client
	adminEmail string
	log        *logger.Logger
}

func NewNotifyService(mailer sendgrid.Client, log *logger.Logger) NotifyService {
	return &notifyService{
		mailer:     mailer,
		adminEmail: envutil.String("ADMIN_NOTIFY_EMAIL", ""),
		log:        log.With("service", "Notify"),
	}
}

func (ns *notifyService) NotifySubmission(ctx context.Context, sub *domain.FormSubmission) []RecipientResult {
	var results []RecipientResult

	results = append(results, ns.send(ctx, RecipientResult{
		Recipient: sub.Email,
		Role:      "submitter",
	}, "We received your book request", submitterHTML(sub), submitterText(sub)))

	if ns.adminEmail == "" {
		ns.log.Warn("ADMIN_NOTIFY_EMAIL not set, skipping admin notification")
		return results
	}
	results = append(results, ns.send(ctx, RecipientResult{
		Recipient: ns.adminEmail,
		Role:      "admin",
	}, fmt.Sprintf("New book request from %s", sub.Name), adminHTML(sub), adminText(sub)))

	return results
}

func (ns *notifyService) send(ctx context.Context, res RecipientResult, subject, htmlBody, textBody string) RecipientResult {
	_, err := ns.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: res.Recipient}},
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		ns.log.Warn("Notification email failed", "role", res.Role, "error", err)
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

func submitterHTML(sub *domain.FormSubmission) string {
	var b strings.Builder
	b.WriteString("<h2>Thanks for your book request</h2>")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(sub.Name))
	fmt.Fprintf(&b, "<p>We received your request for a book about <strong>%s</strong>. Our team will start on it shortly and keep you posted.</p>", html.EscapeString(sub.Topic))
	if sub.Description != "" {
		fmt.Fprintf(&b, "<p>Your description:</p><blockquote>%s</blockquote>", html.EscapeString(sub.Description))
	}
	b.WriteString("<p>The BookForge team</p>")
	return b.String()
}

func submitterText(sub *domain.FormSubmission) string {
	return fmt.Sprintf("Hi %s,\n\nWe received your request for a book about %s. Our team will start on it shortly and keep you posted.\n\nThe BookForge team\n", sub.Name, sub.Topic)
}

func adminHTML(sub *domain.FormSubmission) string {
	var b strings.Builder
	b.WriteString("<h2>New book request</h2><table>")
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", label, html.EscapeString(value))
		}
	}
	row("Name", sub.Name)
	row("Email", sub.Email)
	row("Topic", sub.Topic)
	row("Style", sub.Style)
	row("Description", sub.Description)
	row("Notes", sub.Notes)
	row("Submission ID", sub.ID.String())
	b.WriteString("</table>")
	return b.String()
}

func adminText(sub *domain.FormSubmission) string {
	return fmt.Sprintf("New book request\n\nName: %s\nEmail: %s\nTopic: %s\nSubmission ID: %s\n", sub.Name, sub.Email, sub.Topic, sub.ID)
}
