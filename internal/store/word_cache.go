package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// wordCacheRepo implements WordCacheRepo on database/sql.
type wordCacheRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func (r *wordCacheRepo) Get(ctx context.Context, userID, word string) (*CachedWord, error) {
	query, args, err := r.sb.Select("user_id", "word", "meaning", "phonetic", "part_of_speech", "updated_at").
		From("word_cache").
		Where(sq.Eq{"user_id": userID, "word": word}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get word: %w", err)
	}

	var w CachedWord
	var updatedAt int64
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&w.UserID, &w.Word, &w.Meaning, &w.Phonetic, &w.PartOfSpeech, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	w.UpdatedAt = fromMillis(updatedAt)
	return &w, nil
}

func (r *wordCacheRepo) Upsert(ctx context.Context, w *CachedWord) error {
	updatedAt := w.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query, args, err := r.sb.Insert("word_cache").
		Columns("user_id", "word", "meaning", "phonetic", "part_of_speech", "updated_at").
		Values(w.UserID, w.Word, w.Meaning, w.Phonetic, w.PartOfSpeech, toMillis(updatedAt)).
		Suffix(`ON CONFLICT (user_id, word) DO UPDATE SET
			meaning = excluded.meaning,
			phonetic = excluded.phonetic,
			part_of_speech = excluded.part_of_speech,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert word: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert word: %w", err)
	}
	return nil
}
