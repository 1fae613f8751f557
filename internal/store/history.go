package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var historyColumns = []string{
	"id", "user_id", "created_at", "word_list", "article",
	"options", "options_detail", "annotations", "answer_key", "answers",
}

// historyRepo implements HistoryRepo on database/sql.
type historyRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func (r *historyRepo) Insert(ctx context.Context, rec *HistoryRecord) error {
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("insert history: id and user id are required")
	}

	query, args, err := r.sb.Insert("history").
		Columns(historyColumns...).
		Values(
			rec.ID, rec.UserID, toMillis(rec.CreatedAt), rec.WordList, rec.Article,
			string(rec.Options), nullableJSON(rec.OptionsDetail), nullableJSON(rec.Annotations),
			nullableJSON(rec.AnswerKey), nullableJSON(rec.Answers),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert history: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *historyRepo) Get(ctx context.Context, userID, id string) (*HistoryRecord, error) {
	query, args, err := r.sb.Select(historyColumns...).
		From("history").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get history: %w", err)
	}

	rec, err := scanHistory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return rec, nil
}

func (r *historyRepo) List(ctx context.Context, userID string, opts QueryOpts) ([]HistoryRecord, error) {
	b := r.sb.Select(historyColumns...).
		From("history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if !opts.From.IsZero() {
		b = b.Where(sq.GtOrEq{"created_at": toMillis(opts.From)})
	}
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list history: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *historyRepo) UpdateAnswers(ctx context.Context, userID, id string, answers json.RawMessage) error {
	query, args, err := r.sb.Update("history").
		Set("answers", nullableJSON(answers)).
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update answers: %w", err)
	}
	return r.execAffecting(ctx, "update answers", query, args)
}

func (r *historyRepo) Delete(ctx context.Context, userID, id string) error {
	query, args, err := r.sb.Delete("history").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete history: %w", err)
	}
	return r.execAffecting(ctx, "delete history", query, args)
}

func (r *historyRepo) Clear(ctx context.Context, userID string) (int64, error) {
	query, args, err := r.sb.Delete("history").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build clear history: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func (r *historyRepo) Prune(ctx context.Context, userID string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	keepQuery := r.sb.Select("id").
		From("history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(keep))

	query, args, err := r.sb.Delete("history").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("id NOT IN (?)", keepQuery)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build prune history: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func (r *historyRepo) execAffecting(ctx context.Context, op, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*HistoryRecord, error) {
	var rec HistoryRecord
	var createdAt int64
	var options string
	var optionsDetail, annotations, answerKey, answers sql.NullString
	if err := row.Scan(
		&rec.ID, &rec.UserID, &createdAt, &rec.WordList, &rec.Article,
		&options, &optionsDetail, &annotations, &answerKey, &answers,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.Options = json.RawMessage(options)
	rec.OptionsDetail = rawOrNil(optionsDetail)
	rec.Annotations = rawOrNil(annotations)
	rec.AnswerKey = rawOrNil(answerKey)
	rec.Answers = rawOrNil(answers)
	return &rec, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawOrNil(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}
