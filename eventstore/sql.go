package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack/components/esource"
)

// Schema is the PostgreSQL schema the SQL store expects.
// The unique index on (aggregate_id, aggregate_version) is what makes the
// optimistic concurrency check race free.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	event_id          TEXT        NOT NULL PRIMARY KEY,
	event_name        TEXT        NOT NULL,
	event_payload     JSONB       NOT NULL,
	event_occurred_on TIMESTAMPTZ NOT NULL,
	aggregate_id      TEXT        NOT NULL,
	aggregate_version INT         NOT NULL,
	UNIQUE (aggregate_id, aggregate_version)
);
`

// uniqueViolation is the pq error code raised when the aggregate version
// unique index rejects a concurrent append.
const uniqueViolation = "23505"

// SQL is a PostgreSQL-backed EventStore.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	if db == nil {
		panic("missing db")
	}

	return &SQL{db: db}
}

// InitializeSchema creates the events table if it does not exist yet.
func (s *SQL) InitializeSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return errors.Wrap(err, "cannot initialize events schema")
}

func (s *SQL) Load(ctx context.Context, aggregateID string) ([]esource.RawEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT event_id, event_name, event_payload, event_occurred_on, aggregate_version
		FROM events
		WHERE aggregate_id = $1
		ORDER BY aggregate_version ASC`,
		aggregateID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load events for aggregate %s", aggregateID)
	}
	defer rows.Close()

	var history []esource.RawEvent

	for rows.Next() {
		event := esource.RawEvent{AggregateID: aggregateID}
		var payload []byte

		err := rows.Scan(&event.ID, &event.Name, &payload, &event.OccurredOn, &event.Version)
		if err != nil {
			return nil, errors.Wrap(err, "cannot scan event row")
		}

		if err := json.Unmarshal(payload, &event.Payload); err != nil {
			return nil, errors.Wrapf(err, "cannot unmarshal payload of event %s", event.ID)
		}

		history = append(history, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read event rows")
	}

	return history, nil
}

func (s *SQL) Append(ctx context.Context, aggregateID string, expectedVersion int, events []esource.RawEvent) error {
	if err := validateAppend(aggregateID, expectedVersion, events); err != nil {
		return errors.Wrap(err, "invalid append")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var streamVersion int
	err = tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(aggregate_version), 0) FROM events WHERE aggregate_id = $1`,
		aggregateID,
	).Scan(&streamVersion)
	if err != nil {
		return errors.Wrapf(err, "cannot read version of aggregate %s", aggregateID)
	}

	if streamVersion != expectedVersion {
		return errors.Wrapf(
			ErrVersionConflict,
			"expected version %d, stream is at %d", expectedVersion, streamVersion,
		)
	}

	for i, event := range events {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			return errors.Wrapf(err, "cannot marshal payload of event %s", event.ID)
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO events
			(event_id, event_name, event_payload, event_occurred_on, aggregate_id, aggregate_version)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			event.ID, event.Name, payload, event.OccurredOn, aggregateID, streamVersion+i+1,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
				return errors.Wrap(ErrVersionConflict, "concurrent append won")
			}
			return errors.Wrapf(err, "cannot insert event %s", event.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "cannot commit appended events")
	}

	return nil
}
