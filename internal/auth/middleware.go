package auth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/metrics"
	"github.com/cloudconfig/cloudconfig/internal/signing"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// Request headers carrying the signature material.
const (
	HeaderClientID  = "X-Client-Id"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

// maxNonceLength bounds client-supplied nonces before they reach the ledger.
const maxNonceLength = 128

// Gate authenticates inbound requests: it parses the signature headers,
// validates clock drift, binds the body into the canonical string, verifies
// the Ed25519 signature against the client's stored public key, and
// registers the nonce. Any step's failure rejects the request; there are no
// retries and no partial side effects.
type Gate struct {
	clients      storage.ClientStore
	nonces       storage.NonceStore
	maxDrift     int64
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewGate creates the authentication gate middleware.
func NewGate(clients storage.ClientStore, nonces storage.NonceStore, maxDriftSeconds, maxBodyBytes int64, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		clients:      clients,
		nonces:       nonces,
		maxDrift:     maxDriftSeconds,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// RequireSignature is chi-compatible middleware enforcing the signed-request
// protocol. On success the authenticated identity is attached to the request
// context and the consumed body is re-materialized for the next handler.
func (g *Gate) RequireSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, identity, err := g.authenticate(w, r)
		if err != nil {
			httperr.Write(w, g.logger, err)
			return
		}

		// The body was consumed for canonicalization; hand the handler the
		// exact bytes that were signed rather than re-reading the stream.
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
	})
}

func (g *Gate) authenticate(w http.ResponseWriter, r *http.Request) ([]byte, *Identity, error) {
	clientID, err := parseClientID(r)
	if err != nil {
		metrics.RecordAuthFailure("bad_header")
		return nil, nil, err
	}

	signature, err := headerValue(r, HeaderSignature)
	if err != nil {
		metrics.RecordAuthFailure("bad_header")
		return nil, nil, err
	}

	timestamp, err := parseTimestamp(r)
	if err != nil {
		metrics.RecordAuthFailure("bad_header")
		return nil, nil, err
	}

	nonce, err := parseNonce(r)
	if err != nil {
		metrics.RecordAuthFailure("bad_nonce")
		return nil, nil, err
	}

	// Drift check before any store lookup: cheap early reject, and it
	// anchors nonce bookkeeping to server time rather than the untrusted
	// client-supplied timestamp.
	now, err := validateTimestamp(timestamp, g.maxDrift)
	if err != nil {
		metrics.RecordAuthFailure("clock_drift")
		return nil, nil, err
	}

	body, err := g.readBody(w, r)
	if err != nil {
		metrics.RecordAuthFailure("oversized_body")
		return nil, nil, err
	}

	canonical := signing.CanonicalString(timestamp, r.Method, r.URL.RequestURI(), nonce, body)

	client, err := g.clients.GetClientByID(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordAuthFailure("unknown_client")
			return nil, nil, httperr.Unauthorized("invalid client credentials")
		}
		return nil, nil, httperr.Internal(err)
	}

	// Signature before nonce registration: forged requests must never be
	// able to populate the ledger.
	if err := signing.Verify(client.PublicKey, canonical, signature); err != nil {
		metrics.RecordAuthFailure("invalid_signature")
		return nil, nil, httperr.Unauthorized("signature verification failed")
	}

	if err := g.nonces.RegisterNonce(r.Context(), clientID, nonce, now); err != nil {
		if errors.Is(err, storage.ErrNonceReplayed) {
			metrics.RecordAuthFailure("replayed_nonce")
			g.logger.Warn("replayed request rejected", "client_id", clientID, "remote_addr", r.RemoteAddr)
			return nil, nil, httperr.Unauthorized("replayed request")
		}
		return nil, nil, httperr.Internal(err)
	}

	return body, &Identity{ID: client.ID, IsAdmin: client.IsAdmin}, nil
}

// readBody reads the full request body up to the configured maximum.
// Exceeding the limit is a BadRequest: a resource-exhaustion guard that
// fires before any signing material is trusted.
func (g *Gate) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	limited := http.MaxBytesReader(w, r.Body, g.maxBodyBytes)
	body, err := io.ReadAll(limited)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, httperr.BadRequest("request body exceeds allowed size")
		}
		return nil, httperr.BadRequest("failed to read request body")
	}
	return body, nil
}

func parseClientID(r *http.Request) (uuid.UUID, error) {
	raw, err := headerValue(r, HeaderClientID)
	if err != nil {
		return uuid.Nil, err
	}

	id, parseErr := uuid.Parse(raw)
	if parseErr != nil {
		return uuid.Nil, httperr.Unauthorized("invalid client id")
	}
	return id, nil
}

func parseTimestamp(r *http.Request) (int64, error) {
	raw, err := headerValue(r, HeaderTimestamp)
	if err != nil {
		return 0, err
	}

	ts, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return 0, httperr.Unauthorized("invalid timestamp")
	}
	return ts, nil
}

func parseNonce(r *http.Request) (string, error) {
	nonce, err := headerValue(r, HeaderNonce)
	if err != nil {
		return "", err
	}

	if nonce == "" || len(nonce) > maxNonceLength {
		return "", httperr.Unauthorized("invalid nonce length (must be 1..=128)")
	}
	return nonce, nil
}

func headerValue(r *http.Request, name string) (string, error) {
	if len(r.Header.Values(name)) == 0 {
		return "", httperr.Unauthorized(fmt.Sprintf("missing header: %s", name))
	}
	return r.Header.Get(name), nil
}

// validateTimestamp rejects timestamps outside the drift tolerance and
// returns the server's current time in whole seconds for nonce bookkeeping.
func validateTimestamp(timestamp, maxDriftSeconds int64) (int64, error) {
	now := time.Now().Unix()
	drift := now - timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > maxDriftSeconds {
		return 0, httperr.Unauthorized("timestamp is outside allowed clock drift")
	}
	return now, nil
}
