package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// EmailRepository is the log of automated emails already sent.
type EmailRepository struct {
	db *DB
}

func NewEmailRepository(db *DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// HasSent reports whether the email ident was already sent for fkID.
func (r *EmailRepository) HasSent(ctx context.Context, ident, fkID string) (bool, error) {
	var sent bool
	err := r.db.queryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sent_emails WHERE ident = $1 AND fk_id = $2)`,
		ident, fkID,
	).Scan(&sent)
	if err != nil {
		return false, fmt.Errorf("check sent email: %w", err)
	}
	return sent, nil
}

// RecordSent logs a delivered email. Recording the same email twice is a
// no-op.
func (r *EmailRepository) RecordSent(ctx context.Context, sent model.SentEmail) error {
	if sent.SentAt.IsZero() {
		sent.SentAt = time.Now()
	}
	_, err := r.db.exec(ctx, `
INSERT INTO sent_emails (ident, model, fk_id, to_address, subject, sent_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (ident, model, fk_id) DO NOTHING`,
		sent.Ident, sent.Model, sent.FKID, sent.To, sent.Subject, sent.SentAt,
	)
	if err != nil {
		return fmt.Errorf("record sent email: %w", err)
	}
	return nil
}

// ListSent returns the log entries for ident, newest first.
func (r *EmailRepository) ListSent(ctx context.Context, ident string) ([]model.SentEmail, error) {
	rows, err := r.db.query(ctx, `
SELECT ident, model, fk_id, to_address, subject, sent_at
FROM sent_emails
WHERE ident = $1
ORDER BY sent_at DESC, id DESC`, ident)
	if err != nil {
		return nil, fmt.Errorf("list sent emails: %w", err)
	}
	defer rows.Close()

	var out []model.SentEmail
	for rows.Next() {
		var s model.SentEmail
		if err := rows.Scan(&s.Ident, &s.Model, &s.FKID, &s.To, &s.Subject, &s.SentAt); err != nil {
			return nil, fmt.Errorf("scan sent email: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sent emails: %w", err)
	}
	return out, nil
}
