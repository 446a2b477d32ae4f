package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"dispatch-project/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeMessenger records sent payloads and fails selected calls.
type fakeMessenger struct {
	mu     sync.Mutex
	sent   []domain.OutboundPayload
	failOn map[int]error // 1-based call number -> error
	calls  int
}

func (f *fakeMessenger) Send(_ context.Context, payload domain.OutboundPayload, _ domain.RetryPolicy) (*domain.PlatformResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return nil, err
	}

	f.sent = append(f.sent, payload)

	resp := &domain.PlatformResponse{MessagingProduct: domain.MessagingProduct}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: "wamid.test"})
	return resp, nil
}

func (f *fakeMessenger) sentBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var bodies []string
	for _, p := range f.sent {
		if p.Text != nil {
			bodies = append(bodies, p.Text.Body)
		}
	}
	return bodies
}

func TestPresenceScheduler_EmptyMessageList(t *testing.T) {
	scheduler := NewPresenceScheduler(&fakeMessenger{}, &TaskGroup{}, newTestLogger())

	_, err := scheduler.Start(context.Background(), PresenceConfig{
		Recipient: "+573001234567",
		Settings:  domain.PresenceSettings{MaxMessages: 2},
	})

	var valErr *domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPresenceScheduler_FirstSendSynchronousRestDetached(t *testing.T) {
	messenger := &fakeMessenger{}
	tasks := &TaskGroup{}
	scheduler := NewPresenceScheduler(messenger, tasks, newTestLogger())

	var onSent []string
	var mu sync.Mutex

	record, err := scheduler.Start(context.Background(), PresenceConfig{
		Recipient: "+573001234567",
		Settings: domain.PresenceSettings{
			InitialWait: 10 * time.Millisecond,
			Interval:    20 * time.Millisecond,
			MaxMessages: 3,
			Messages:    []string{"A", "B"},
		},
		OnSent: func(r domain.SentMessageRecord) {
			mu.Lock()
			onSent = append(onSent, r.Text)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first rotation entry is sent before Start returns.
	if record.Text != "A" {
		t.Errorf("expected first record A, got %q", record.Text)
	}
	if record.Kind != domain.KindPresenceCheck {
		t.Errorf("expected presence_check kind, got %q", record.Kind)
	}
	if len(messenger.sentBodies()) != 1 {
		t.Errorf("expected exactly one synchronous send, got %d", len(messenger.sentBodies()))
	}

	tasks.Wait()

	bodies := messenger.sentBodies()
	want := []string{"A", "B", "A"} // rotation wraps cyclically
	if len(bodies) != len(want) {
		t.Fatalf("expected %d sends, got %d (%v)", len(want), len(bodies), bodies)
	}
	for i := range want {
		if bodies[i] != want[i] {
			t.Errorf("send %d: expected %q, got %q", i, want[i], bodies[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(onSent) != 3 {
		t.Errorf("expected OnSent for all 3 sends, got %d", len(onSent))
	}
}

func TestPresenceScheduler_SingleMessageNoDetachedTask(t *testing.T) {
	messenger := &fakeMessenger{}
	tasks := &TaskGroup{}
	scheduler := NewPresenceScheduler(messenger, tasks, newTestLogger())

	_, err := scheduler.Start(context.Background(), PresenceConfig{
		Recipient: "+573001234567",
		Settings: domain.PresenceSettings{
			Interval:    10 * time.Millisecond,
			MaxMessages: 1,
			Messages:    []string{"A"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks.Wait()

	if got := len(messenger.sentBodies()); got != 1 {
		t.Errorf("expected exactly 1 send, got %d", got)
	}
}

func TestPresenceScheduler_FirstSendFailurePropagates(t *testing.T) {
	messenger := &fakeMessenger{failOn: map[int]error{1: errors.New("boom")}}
	scheduler := NewPresenceScheduler(messenger, &TaskGroup{}, newTestLogger())

	_, err := scheduler.Start(context.Background(), PresenceConfig{
		Recipient: "+573001234567",
		Settings: domain.PresenceSettings{
			MaxMessages: 2,
			Messages:    []string{"A"},
		},
	})
	if err == nil {
		t.Fatal("expected first-send failure to propagate")
	}
}

func TestPresenceScheduler_DetachedFailuresSwallowed(t *testing.T) {
	messenger := &fakeMessenger{failOn: map[int]error{2: errors.New("boom")}}
	tasks := &TaskGroup{}
	scheduler := NewPresenceScheduler(messenger, tasks, newTestLogger())

	_, err := scheduler.Start(context.Background(), PresenceConfig{
		Recipient: "+573001234567",
		Settings: domain.PresenceSettings{
			Interval:    10 * time.Millisecond,
			MaxMessages: 3,
			Messages:    []string{"A", "B", "C"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Must terminate despite the failed second send.
	tasks.Wait()

	bodies := messenger.sentBodies()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 successful sends, got %d (%v)", len(bodies), bodies)
	}
	// The failed attempt still consumed its rotation slot.
	if bodies[1] != "C" {
		t.Errorf("expected third rotation entry C after swallowed failure, got %q", bodies[1])
	}
}
