package delivery

import (
	"context"
	"testing"

	"github.com/hoststack/concierge/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "whatsapp", "guest-1", 1, OutcomeRetry, "status 503"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "whatsapp", "guest-1", 2, OutcomeSent, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	attempts, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}
	for _, a := range attempts {
		if a.ID == "" {
			t.Error("attempt missing id")
		}
		if a.Channel != "whatsapp" || a.Recipient != "guest-1" {
			t.Errorf("unexpected attempt: %+v", a)
		}
	}
}

func TestCountByOutcome(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, "sms", "a", 1, OutcomeSent, "")
	s.Record(ctx, "sms", "b", 1, OutcomeFailed, "status 400")
	s.Record(ctx, "whatsapp", "c", 1, OutcomeSent, "")

	smsSent, err := s.CountByOutcome(ctx, "sms", OutcomeSent)
	if err != nil {
		t.Fatalf("CountByOutcome: %v", err)
	}
	if smsSent != 1 {
		t.Errorf("sms sent = %d, want 1", smsSent)
	}

	allSent, err := s.CountByOutcome(ctx, "", OutcomeSent)
	if err != nil {
		t.Fatalf("CountByOutcome all: %v", err)
	}
	if allSent != 2 {
		t.Errorf("all sent = %d, want 2", allSent)
	}
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Record(ctx, "sms", "guest", i+1, OutcomeSent, "")
	}
	attempts, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(attempts) != 3 {
		t.Errorf("got %d, want 3", len(attempts))
	}
}
