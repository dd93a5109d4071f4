package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quantiz/internal/api"
)

// CredentialRepo persists the single session credential. It implements
// api.CredentialStore.
type CredentialRepo struct {
	db *sql.DB
}

var _ api.CredentialStore = (*CredentialRepo)(nil)

// Load returns the stored credential, or nil when none is stored.
func (r *CredentialRepo) Load(ctx context.Context) (*api.Credential, error) {
	var c api.Credential
	var expiry, createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT username, access_token, token_type, expiry, created_at FROM credentials WHERE id = 1`,
	).Scan(&c.Username, &c.AccessToken, &c.TokenType, &expiry, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if c.Expiry, err = parseTime(expiry); err != nil {
		return nil, fmt.Errorf("load credential: expiry: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("load credential: created_at: %w", err)
	}
	return &c, nil
}

// Save replaces the stored credential.
func (r *CredentialRepo) Save(ctx context.Context, c *api.Credential) error {
	if c == nil || c.AccessToken == "" {
		return errors.New("save credential: empty access token")
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (id, username, access_token, token_type, expiry, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			created_at = excluded.created_at`,
		c.Username, c.AccessToken, c.TokenType, formatTime(c.Expiry), formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (r *CredentialRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Zero times are stored as the empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
