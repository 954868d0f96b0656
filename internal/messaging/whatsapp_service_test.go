package messaging

import (
	"context"
	"testing"

	"github.com/CampusLoop/CoursePilot/internal/models"
	"github.com/CampusLoop/CoursePilot/internal/whatsapp"
)

func TestValidateAndCanonicalizeRecipient(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare digits", in: "15550001111", want: "+15550001111"},
		{name: "already canonical", in: "+15550001111", want: "+15550001111"},
		{name: "spaces and dashes", in: "+1 555-000-1111", want: "+15550001111"},
		{name: "too short", in: "123", wantErr: true},
		{name: "letters", in: "not-a-number", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateAndCanonicalizeRecipient(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("canonicalized %q = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWhatsAppServiceSendMessageEmitsReceipt(t *testing.T) {
	mock := whatsapp.NewMockClient()
	svc := NewWhatsAppService(mock)

	if err := svc.SendMessage(context.Background(), "+15550001111", "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(mock.Sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(mock.Sent))
	}
	// The whatsmeow JID takes the number without the plus.
	if mock.Sent[0].To != "15550001111" {
		t.Errorf("expected plus stripped for transport, got %q", mock.Sent[0].To)
	}

	select {
	case r := <-svc.Receipts():
		if r.Status != models.StatusTypeSent || r.To != "+15550001111" {
			t.Errorf("unexpected receipt: %+v", r)
		}
	default:
		t.Error("expected a sent receipt on the channel")
	}
}

func TestWhatsAppServiceStartWithMockSkipsEvents(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
