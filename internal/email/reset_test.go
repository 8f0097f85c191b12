package email_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/email"
)

func TestResetLink(t *testing.T) {
	got := email.ResetLink("https://app.example.com", "aaa.bbb.ccc")
	want := "https://app.example.com/users/reset-password?token=aaa.bbb.ccc"
	if got != want {
		t.Errorf("ResetLink = %q, want %q", got, want)
	}
}

func TestPasswordReset_ContainsLinkAndValidity(t *testing.T) {
	msg, err := email.PasswordReset("a@x.com", "http://localhost:8080", "h.p.s", 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.To != "a@x.com" || msg.Subject == "" || msg.Tag != "password_reset" {
		t.Errorf("envelope = %+v", msg)
	}
	if !strings.Contains(msg.HTML, `href="http://localhost:8080/users/reset-password?token=h.p.s"`) {
		t.Errorf("html does not contain reset link: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "http://localhost:8080/users/reset-password?token=h.p.s\n") {
		t.Errorf("text does not contain reset link: %s", msg.Text)
	}
	if !strings.Contains(msg.HTML, "15 minutes") || !strings.Contains(msg.Text, "15 minutes") {
		t.Errorf("validity missing: %+v", msg)
	}
}

func TestPasswordReset_Validity(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Hour, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		msg, err := email.PasswordReset("a@x.com", "http://x", "t", tt.d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(msg.HTML, "valid for "+tt.want+" ") {
			t.Errorf("%v: html = %s", tt.d, msg.HTML)
		}
	}
}

func TestNewSender_LocalUsesLogSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := email.NewSender("local", "", "", logger)
	if _, ok := s.(*email.LogSender); !ok {
		t.Fatalf("local sender = %T, want *email.LogSender", s)
	}
	if err := s.Send(context.Background(), email.Message{To: "a@x.com", Subject: "subj", Text: "body"}); err != nil {
		t.Fatalf("LogSender.Send: %v", err)
	}

	if _, ok := email.NewSender("production", "re_key", "noreply@example.com", logger).(*email.ResendSender); !ok {
		t.Fatal("production sender should be *email.ResendSender")
	}
}
