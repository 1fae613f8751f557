package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var eventColumns = []string{
	"id", "created_at", "provider", "model", "purpose", "user_id",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

// EventStore implements EventRepo and the read side used by the CLI.
type EventStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ EventRepo = (*EventStore)(nil)

func (r *EventStore) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	success := 0
	if data.Success {
		success = 1
	}

	query, args, err := r.sb.Insert("llm_events").
		Columns(eventColumns[1:]...).
		Values(
			toMillis(time.Now()), data.Provider, data.Model, data.Purpose, data.UserID,
			data.InputTokens, data.OutputTokens, data.LatencyMs, success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert LLM event: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns recorded events, newest first.
func (r *EventStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	b := r.sb.Select(eventColumns...).From("llm_events").OrderBy("id DESC")
	if !opts.From.IsZero() {
		b = b.Where(sq.GtOrEq{"created_at": toMillis(opts.From)})
	}
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query LLM events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetLLMEvent returns one event by ID, or nil if it does not exist.
func (r *EventStore) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	query, args, err := r.sb.Select(eventColumns...).
		From("llm_events").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get LLM event: %w", err)
	}

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return e, nil
}

// LLMUsageByPurpose aggregates calls and tokens per purpose label.
func (r *EventStore) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	query, args, err := r.sb.Select(
		"purpose",
		"COUNT(*)",
		"CAST(COALESCE(SUM(input_tokens), 0) AS BIGINT)",
		"CAST(COALESCE(SUM(output_tokens), 0) AS BIGINT)",
		"CAST(COALESCE(AVG(latency_ms), 0) AS BIGINT)",
	).
		From("llm_events").
		GroupBy("purpose").
		OrderBy("purpose").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage by purpose: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage by purpose: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// LLMUsageByModel aggregates calls and tokens per model.
func (r *EventStore) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args, err := r.sb.Select(
		"model",
		"COUNT(*)",
		"CAST(COALESCE(SUM(input_tokens), 0) AS BIGINT)",
		"CAST(COALESCE(SUM(output_tokens), 0) AS BIGINT)",
	).
		From("llm_events").
		GroupBy("model").
		OrderBy("model").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage by model: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage by model: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*LLMEvent, error) {
	var e LLMEvent
	var createdAt int64
	var success int
	if err := row.Scan(
		&e.ID, &createdAt, &e.Provider, &e.Model, &e.Purpose, &e.UserID,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	); err != nil {
		return nil, err
	}
	e.Timestamp = fromMillis(createdAt)
	e.Success = success != 0
	return &e, nil
}
