package dbgen

import "context"

const insertProcessedPaymentEvent = `-- name: InsertProcessedPaymentEvent :exec
INSERT INTO processed_payment_events (event_id, event_type) VALUES (?, ?)`

type InsertProcessedPaymentEventParams struct {
	EventID   string
	EventType string
}

func (q *Queries) InsertProcessedPaymentEvent(ctx context.Context, arg InsertProcessedPaymentEventParams) error {
	_, err := q.db.ExecContext(ctx, insertProcessedPaymentEvent, arg.EventID, arg.EventType)
	return err
}

const countProcessedPaymentEvents = `-- name: CountProcessedPaymentEvents :one
SELECT COUNT(*) FROM processed_payment_events`

func (q *Queries) CountProcessedPaymentEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProcessedPaymentEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}
