// Package postgres persists collected audit events in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"audittrail/pkg/audit"
)

// Schema expected by this store:
//
//	CREATE TABLE IF NOT EXISTS audit_events (
//	    id             UUID PRIMARY KEY,
//	    timestamp      TIMESTAMPTZ NOT NULL,
//	    event_type     TEXT NOT NULL,
//	    actor_id       TEXT NOT NULL DEFAULT '',
//	    session_id     TEXT NOT NULL DEFAULT '',
//	    application    TEXT NOT NULL DEFAULT '',
//	    component      TEXT NOT NULL DEFAULT '',
//	    action         TEXT NOT NULL,
//	    resource       TEXT NOT NULL,
//	    result         TEXT NOT NULL,
//	    message        TEXT NOT NULL DEFAULT '',
//	    details        JSONB,
//	    correlation_id TEXT NOT NULL DEFAULT '',
//	    source_ip      TEXT NOT NULL DEFAULT '',
//	    user_agent     TEXT NOT NULL DEFAULT '',
//	    received_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);

// Store implements audit.Store on top of a *sql.DB opened with the pq driver.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle. The caller owns the handle's lifecycle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one event. Details, when present, are stored as JSONB.
func (s *Store) Append(ctx context.Context, ev audit.Event) error {
	var details []byte
	if ev.Details != nil {
		var err error
		details, err = json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, event_type, actor_id, session_id, application,
			component, action, resource, result, message, details,
			correlation_id, source_ip, user_agent, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		ev.Timestamp,
		ev.EventType,
		ev.ActorID,
		ev.SessionID,
		ev.Application,
		ev.Component,
		ev.Action,
		ev.Resource,
		string(ev.Result),
		ev.Message,
		details,
		ev.CorrelationID,
		ev.SourceIP,
		ev.UserAgent,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT timestamp, event_type, actor_id, session_id, application,
			   component, action, resource, result, message, details,
			   correlation_id, source_ip, user_agent
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			ev      audit.Event
			result  string
			details []byte
		)
		err := rows.Scan(
			&ev.Timestamp,
			&ev.EventType,
			&ev.ActorID,
			&ev.SessionID,
			&ev.Application,
			&ev.Component,
			&ev.Action,
			&ev.Resource,
			&result,
			&ev.Message,
			&details,
			&ev.CorrelationID,
			&ev.SourceIP,
			&ev.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		ev.Result, err = audit.ParseResult(result)
		if err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
