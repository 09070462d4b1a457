package mail

import (
	"context"
	"strings"
	"testing"
)

func TestRenderPasswordResetEscapesLink(t *testing.T) {
	body, err := RenderPasswordReset(PasswordResetData{
		Name:     "Ana",
		Link:     "https://app.recaudopro.test/reset?token=abc&x=<script>",
		ValidFor: "1 hora",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Hola Ana") || !strings.Contains(body, "1 hora") {
		t.Fatalf("missing content: %s", body)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("link must be escaped")
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), "a@x.com", "s", "b"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "no-reply@x.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, "a@x.com", "s", "b"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
