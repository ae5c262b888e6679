package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/vetdesk-api/internal/model"
)

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingWithLock claims a batch of due events. SKIP LOCKED lets
// concurrent workers drain the table without contending on rows.
func (r *outboxRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error, retry_at,
			created_at, processed_at
		FROM outbox_events
		WHERE status IN ($1, $2)
			AND (retry_at IS NULL OR retry_at <= $3)
		ORDER BY created_at ASC
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	`
	var events []*model.OutboxEvent
	err := r.db.SelectContext(ctx, &events, query,
		model.OutboxStatusPending,
		model.OutboxStatusRetry,
		time.Now().UTC(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error = $2, retry_at = $3,
			processed_at = CASE WHEN $1 = 'processed' THEN $4 ELSE processed_at END
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, errMsg, retryAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}
	return nil
}

func (r *outboxRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}
