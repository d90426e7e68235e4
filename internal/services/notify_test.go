package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/sendgrid"
)

type stubMailer struct {
	sent    []sendgrid.SendEmailRequest
	failFor string
}

func (s *stubMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	s.sent = append(s.sent, req)
	if len(req.To) > 0 && req.To[0].Email == s.failFor {
		return nil, fmt.Errorf("mailbox unavailable")
	}
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func sampleSubmission() *domain.FormSubmission {
	return &domain.FormSubmission{
		ID:    uuid.New(),
		Name:  "Sam Reader",
		Email: "sam@example.com",
		Topic: "A book about tides",
	}
}

func TestNotifySubmissionSendsBothEmails(t *testing.T) {
	t.Setenv("ADMIN_NOTIFY_EMAIL", "admin@bookforge.dev")

	mailer := &stubMailer{}
	svc := NewNotifyService(mailer, testLogger(t))

	results := svc.NotifySubmission(context.Background(), sampleSubmission())
	if len(results) != 2 {
		t.Fatalf("expected 2 recipient results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Fatalf("recipient %s (%s) failed: %s", r.Recipient, r.Role, r.Error)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, sent %d", len(mailer.sent))
	}
	if mailer.sent[0].To[0].Email != "sam@example.com" {
		t.Fatalf("first email to %q, want submitter", mailer.sent[0].To[0].Email)
	}
	if mailer.sent[1].To[0].Email != "admin@bookforge.dev" {
		t.Fatalf("second email to %q, want admin", mailer.sent[1].To[0].Email)
	}
}

func TestNotifySubmissionReportsPerRecipientFailure(t *testing.T) {
	t.Setenv("ADMIN_NOTIFY_EMAIL", "admin@bookforge.dev")

	mailer := &stubMailer{failFor: "admin@bookforge.dev"}
	svc := NewNotifyService(mailer, testLogger(t))

	results := svc.NotifySubmission(context.Background(), sampleSubmission())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Success {
		t.Fatalf("submitter email should succeed: %s", results[0].Error)
	}
	if results[1].Success {
		t.Fatal("admin email should fail")
	}
	if results[1].Error == "" {
		t.Fatal("failed result missing error message")
	}
}

func TestNotifySubmissionWithoutAdminAddress(t *testing.T) {
	t.Setenv("ADMIN_NOTIFY_EMAIL", "")

	mailer := &stubMailer{}
	svc := NewNotifyService(mailer, testLogger(t))

	results := svc.NotifySubmission(context.Background(), sampleSubmission())
	if len(results) != 1 {
		t.Fatalf("expected only the submitter result, got %d", len(results))
	}
	if results[0].Role != "submitter" {
		t.Fatalf("unexpected role %q", results[0].Role)
	}
}
