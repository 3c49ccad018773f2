package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Event struct {
	ID        int64           `json:"id"`
	EventType string          `json:"event_type"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload"`
}

func (q *Queries) LogEvent(ctx context.Context, userID int64, eventType string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_journal (user_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, event_type, event_time, payload
	`
	var event Event
	err = q.db.QueryRow(ctx, query, userID, eventType, payloadBytes).Scan(
		&event.ID,
		&event.EventType,
		&event.EventTime,
		&event.Payload,
	)
	if err != nil {
		return err
	}

	if q.publisher != nil {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		q.publisher.Publish(eventBytes)
	}

	return nil
}

func (q *Queries) GetEventsSince(ctx context.Context, sinceID int64) ([]Event, error) {
	query := `
		SELECT id, event_type, event_time, payload
		FROM event_journal
		WHERE id > $1
		ORDER BY id ASC
		LIMIT 100
	`
	rows, err := q.db.Query(ctx, query, sinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.EventTime,
			&event.Payload,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []Event{}, nil
	}

	return events, nil
}
