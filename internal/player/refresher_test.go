package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRefresher_SendsLocation(t *testing.T) {
	r := NewRefresher(func() string { return "/wsg/thread/1#2" }, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, requests)
	}()

	for i := 0; i < 2; i++ {
		select {
		case got := <-requests:
			if got != "/wsg/thread/1#2" {
				t.Errorf("request = %q", got)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("no refresh request")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestRefresher_SkipsEmptyLocation(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	r := NewRefresher(func() string {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return ""
	}, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	requests := make(chan string, 10)
	if err := r.Run(ctx, requests); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}

	if len(requests) != 0 {
		t.Errorf("got %d requests for empty location", len(requests))
	}
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Error("location never consulted")
	}
}

func TestRefresher_StopsWhileBlockedOnSend(t *testing.T) {
	r := NewRefresher(func() string { return "/g/thread/1" }, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		// Nobody reads requests
		done <- r.Run(ctx, make(chan string))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
