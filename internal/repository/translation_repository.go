package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/snowflake"
)

// TranslationListFilter narrows a history listing.
type TranslationListFilter struct {
	SourceLang string
	TargetLang string
	Limit      int
	Offset     int
}

type TranslationRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Translation, error)
	GetByCacheKey(ctx context.Context, cacheKey string) (*model.Translation, error)
	// Save inserts the run, replacing any earlier run with the same cache key.
	Save(ctx context.Context, t model.Translation) (int64, error)
	List(ctx context.Context, filter TranslationListFilter) ([]model.Translation, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type translationRepository struct {
	db dbtx
}

func NewTranslationRepository(db dbtx) TranslationRepository {
	return &translationRepository{db: db}
}

const translationColumns = `id, cache_key, provider, model, source_lang, target_lang, country,
	source_text, initial_translation, reflection, improved_translation, duration_ms, created_at`

func scanTranslation(scanner interface{ Scan(dest ...any) error }) (model.Translation, error) {
	var t model.Translation
	var createdAt string
	err := scanner.Scan(
		&t.ID, &t.CacheKey, &t.Provider, &t.Model, &t.SourceLang, &t.TargetLang, &t.Country,
		&t.SourceText, &t.InitialTranslation, &t.Reflection, &t.ImprovedTranslation, &t.DurationMs, &createdAt,
	)
	if err != nil {
		return t, err
	}
	t.CreatedAt, _ = parseTime(createdAt)
	return t, nil
}

func (r *translationRepository) GetByID(ctx context.Context, id int64) (*model.Translation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+translationColumns+` FROM translations WHERE id = ?`, id)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *translationRepository) GetByCacheKey(ctx context.Context, cacheKey string) (*model.Translation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+translationColumns+` FROM translations WHERE cache_key = ?`, cacheKey)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *translationRepository) Save(ctx context.Context, t model.Translation) (int64, error) {
	id := snowflake.NextID()
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO translations (id, cache_key, provider, model, source_lang, target_lang, country,
		   source_text, initial_translation, reflection, improved_translation, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   id = excluded.id,
		   initial_translation = excluded.initial_translation,
		   reflection = excluded.reflection,
		   improved_translation = excluded.improved_translation,
		   duration_ms = excluded.duration_ms,
		   created_at = excluded.created_at`,
		id, t.CacheKey, t.Provider, t.Model, t.SourceLang, t.TargetLang, t.Country,
		t.SourceText, t.InitialTranslation, t.Reflection, t.ImprovedTranslation, t.DurationMs, formatTime(createdAt),
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *translationRepository) List(ctx context.Context, filter TranslationListFilter) ([]model.Translation, error) {
	query := `SELECT ` + translationColumns + ` FROM translations WHERE 1=1`
	var args []any
	if filter.SourceLang != "" {
		query += ` AND source_lang = ?`
		args = append(args, filter.SourceLang)
	}
	if filter.TargetLang != "" {
		query += ` AND target_lang = ?`
		args = append(args, filter.TargetLang)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *translationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *translationRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM translations`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *translationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM translations WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
