package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NonceRetentionSeconds is how long a used nonce remains in the ledger.
// Records older than this are outside the replay-detection horizon and are
// evicted opportunistically. Must never be shorter than the configured
// clock-drift tolerance; config validation enforces the coupling.
const NonceRetentionSeconds = 3600

// RegisterNonce records a (client, nonce) pair in the replay ledger.
// The now argument is server time in seconds and is used both as the
// record's timestamp and as the eviction anchor.
//
// The insert relies on the table's composite primary key: two concurrent
// registrations of the same pair resolve to exactly one success and one
// ErrNonceReplayed, with no in-process locking.
func (s *SQLiteStorage) RegisterNonce(ctx context.Context, clientID uuid.UUID, nonce string, now int64) error {
	// A nonce that differs only in surrounding whitespace is the same nonce.
	nonce = strings.TrimSpace(nonce)

	// Evict entries past the retention window. Best effort ordering: eviction
	// only removes records already outside the replay-detection horizon, so
	// it cannot race the insert into incorrectness.
	cutoff := now - NonceRetentionSeconds
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM used_nonces WHERE created_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to evict expired nonces: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO used_nonces (client_id, nonce, created_at) VALUES (?, ?, ?)",
		clientID.String(), nonce, now)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrNonceReplayed
		}
		return fmt.Errorf("failed to register nonce: %w", err)
	}

	return nil
}

// CountNonces returns the number of ledger entries for a client.
// Used by tests to observe eviction and cascade behavior.
func (s *SQLiteStorage) CountNonces(ctx context.Context, clientID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM used_nonces WHERE client_id = ?",
		clientID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count nonces: %w", err)
	}
	return count, nil
}
