package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (r *recordingRepo) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *recordingRepo) byClient() map[string][]domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]domain.AuthEvent)
	for _, e := range r.events {
		out[e.ClientID] = append(out[e.ClientID], e)
	}
	return out
}

func TestDispatcher_PreservesPerClientOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.AuthEventType{domain.EventRestore, domain.EventLogin, domain.EventLogout}
	for c := 0; c < 5; c++ {
		for _, typ := range types {
			d.Enqueue(domain.AuthEvent{ClientID: fmt.Sprintf("client-%d", c), Type: typ})
		}
	}

	cancel()
	d.Wait()

	got := repo.byClient()
	if len(got) != 5 {
		t.Fatalf("expected events of 5 clients, got %d", len(got))
	}
	for client, events := range got {
		if len(events) != len(types) {
			t.Fatalf("%s: expected %d events, got %d", client, len(types), len(events))
		}
		for i, e := range events {
			if e.Type != types[i] {
				t.Fatalf("%s: event %d is %s, want %s", client, i, e.Type, types[i])
			}
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	first := d.shardIndex("client-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("client-42") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Not started: the single queue fills up and further events are dropped
	// without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(domain.AuthEvent{ClientID: "c", Type: domain.EventLogin})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Enqueue blocked on a full queue")
	}
	if n := len(d.workers[0]); n != channelBuffer {
		t.Fatalf("expected a full queue of %d, got %d", channelBuffer, n)
	}
}

func TestDispatcher_RepositoryErrorsDoNotStopWorkers(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.AuthEvent{ClientID: "c", Type: domain.EventLogin})
	d.Enqueue(domain.AuthEvent{ClientID: "c", Type: domain.EventLogout})

	cancel()
	d.Wait()

	if len(d.workers[0]) != 0 {
		t.Fatalf("expected the queue drained despite insert failures")
	}
}

func TestLogRepository(t *testing.T) {
	r := NewLogRepository(zerolog.Nop())
	if err := r.InsertEvent(context.Background(), &domain.AuthEvent{ClientID: "c", Type: domain.EventLogin}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
