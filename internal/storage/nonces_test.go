package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRegisterNonce(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	now := time.Now().Unix()
	if err := s.RegisterNonce(ctx, client.ID, "nonce-1", now); err != nil {
		t.Fatalf("RegisterNonce failed: %v", err)
	}

	err = s.RegisterNonce(ctx, client.ID, "nonce-1", now)
	if !errors.Is(err, ErrNonceReplayed) {
		t.Errorf("replay error = %v, want ErrNonceReplayed", err)
	}
}

// TestRegisterNonceScopedPerClient verifies that two clients can use the
// same nonce value independently.
func TestRegisterNonceScopedPerClient(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a, err := s.CreateClient(ctx, "a", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	b, err := s.CreateClient(ctx, "b", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	now := time.Now().Unix()
	if err := s.RegisterNonce(ctx, a.ID, "shared", now); err != nil {
		t.Fatalf("RegisterNonce for a failed: %v", err)
	}
	if err := s.RegisterNonce(ctx, b.ID, "shared", now); err != nil {
		t.Errorf("RegisterNonce for b failed: %v", err)
	}
}

// TestRegisterNonceConcurrent verifies that of N concurrent registrations of
// the same (client, nonce) pair exactly one succeeds.
func TestRegisterNonceConcurrent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	const workers = 10
	now := time.Now().Unix()
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RegisterNonce(ctx, client.ID, "contested", now)
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNonceReplayed):
		default:
			t.Errorf("worker %d: unexpected error: %v", i, err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
}

// TestRegisterNonceEviction verifies that entries older than the retention
// window are removed when a new nonce is registered.
func TestRegisterNonceEviction(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	base := time.Now().Unix()
	if err := s.RegisterNonce(ctx, client.ID, "old", base); err != nil {
		t.Fatalf("RegisterNonce failed: %v", err)
	}

	// Advance past the retention window; registering a fresh nonce evicts
	// the old record, and the old nonce becomes usable again.
	later := base + NonceRetentionSeconds + 1
	if err := s.RegisterNonce(ctx, client.ID, "fresh", later); err != nil {
		t.Fatalf("RegisterNonce failed: %v", err)
	}

	count, err := s.CountNonces(ctx, client.ID)
	if err != nil {
		t.Fatalf("CountNonces failed: %v", err)
	}
	if count != 1 {
		t.Errorf("nonce count = %d, want 1 after eviction", count)
	}

	if err := s.RegisterNonce(ctx, client.ID, "old", later); err != nil {
		t.Errorf("evicted nonce should be registrable again: %v", err)
	}
}

// TestRegisterNonceWithinRetention verifies that a nonce still inside the
// window keeps rejecting replays as time moves forward.
func TestRegisterNonceWithinRetention(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	base := time.Now().Unix()
	if err := s.RegisterNonce(ctx, client.ID, "sticky", base); err != nil {
		t.Fatalf("RegisterNonce failed: %v", err)
	}

	err = s.RegisterNonce(ctx, client.ID, "sticky", base+NonceRetentionSeconds-1)
	if !errors.Is(err, ErrNonceReplayed) {
		t.Errorf("error = %v, want ErrNonceReplayed inside the window", err)
	}
}

// TestRegisterNonceTrimsWhitespace verifies that a padded nonce collides
// with its trimmed form instead of occupying a distinct ledger entry.
func TestRegisterNonceTrimsWhitespace(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	now := time.Now().Unix()
	if err := s.RegisterNonce(ctx, client.ID, "padded", now); err != nil {
		t.Fatalf("RegisterNonce failed: %v", err)
	}

	err = s.RegisterNonce(ctx, client.ID, "  padded\t", now)
	if !errors.Is(err, ErrNonceReplayed) {
		t.Errorf("padded replay error = %v, want ErrNonceReplayed", err)
	}
}

// TestRegisterNonceMissingClient verifies that a foreign key failure for a
// vanished client surfaces as a storage error, never as ErrNonceReplayed:
// the caller maps the replay sentinel to 401 and everything else to 500.
func TestRegisterNonceMissingClient(t *testing.T) {
	s := newTestStorage(t)

	err := s.RegisterNonce(context.Background(), uuid.New(), "n", time.Now().Unix())
	if err == nil {
		t.Fatal("expected error for unknown client")
	}
	if errors.Is(err, ErrNonceReplayed) {
		t.Errorf("foreign key failure reported as replay: %v", err)
	}
}

func TestCountNonces(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	now := time.Now().Unix()
	for i := 0; i < 5; i++ {
		if err := s.RegisterNonce(ctx, client.ID, fmt.Sprintf("n-%d", i), now); err != nil {
			t.Fatalf("RegisterNonce failed: %v", err)
		}
	}

	count, err := s.CountNonces(ctx, client.ID)
	if err != nil {
		t.Fatalf("CountNonces failed: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}
