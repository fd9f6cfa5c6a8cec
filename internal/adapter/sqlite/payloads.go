package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// PayloadStore implements domain.PayloadStore on the transient_payloads table.
// Expired rows read as absent until the purge job deletes them.
type PayloadStore struct {
	db    *sql.DB
	clock clock.Clock
}

// NewPayloadStore wraps a migrated database.
func NewPayloadStore(db *sql.DB, clk clock.Clock) *PayloadStore {
	return &PayloadStore{db: db, clock: clk}
}

func (s *PayloadStore) Put(ctx context.Context, p domain.TransientPayload) error {
	body, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transient_payloads (session_key, payload, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (session_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		p.SessionKey, string(body), p.ExpiresAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("storing payload: %w", err)
	}
	return nil
}

func (s *PayloadStore) Get(ctx context.Context, sessionKey string) (domain.TransientPayload, error) {
	var body, expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM transient_payloads WHERE session_key = ?`, sessionKey,
	).Scan(&body, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TransientPayload{}, domain.ErrPayloadNotFound
		}
		return domain.TransientPayload{}, fmt.Errorf("reading payload: %w", err)
	}

	p := domain.TransientPayload{SessionKey: sessionKey}
	if p.ExpiresAt, err = time.Parse(timeFormat, expiresAt); err != nil {
		return domain.TransientPayload{}, fmt.Errorf("parsing payload expiry: %w", err)
	}
	if p.Expired(s.clock.Now()) {
		return domain.TransientPayload{}, domain.ErrPayloadNotFound
	}
	if err := json.Unmarshal([]byte(body), &p.Payload); err != nil {
		return domain.TransientPayload{}, fmt.Errorf("decoding payload: %w", err)
	}
	return p, nil
}

func (s *PayloadStore) Delete(ctx context.Context, sessionKey string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transient_payloads WHERE session_key = ?`, sessionKey); err != nil {
		return fmt.Errorf("deleting payload: %w", err)
	}
	return nil
}

// PurgeExpired deletes every payload whose expiry is at or before now.
func (s *PayloadStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM transient_payloads WHERE expires_at <= ?`, now.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("purging payloads: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(n), nil
}
