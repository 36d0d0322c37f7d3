package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type textRepo struct {
	db *sql.DB
}

func (r *textRepo) Upsert(ctx context.Context, rec *TextRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existingID string
	var createdMs int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM texts WHERE name = ? AND language = ?`,
		rec.Name, rec.Language,
	).Scan(&existingID, &createdMs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO texts (id, name, language, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Language, now.UnixMilli(), now.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert text: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lookup text: %w", err)
	default:
		rec.ID = existingID
		rec.CreatedAt = time.UnixMilli(createdMs).UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE texts SET updated_at = ? WHERE id = ?`, now.UnixMilli(), rec.ID); err != nil {
			return fmt.Errorf("update text: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM text_parts WHERE text_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clear parts: %w", err)
		}
	}
	rec.UpdatedAt = now

	for i := range rec.Parts {
		p := &rec.Parts[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Position = i
		_, err := tx.ExecContext(ctx,
			`INSERT INTO text_parts (id, text_id, position, name, body) VALUES (?, ?, ?, ?, ?)`,
			p.ID, rec.ID, p.Position, p.Name, p.Body)
		if err != nil {
			return fmt.Errorf("insert part %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *textRepo) List(ctx context.Context, language string) ([]TextRecord, error) {
	q := `SELECT id, name, language, created_at, updated_at FROM texts`
	var args []any
	if language != "" {
		q += ` WHERE language = ?`
		args = append(args, language)
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	var out []TextRecord
	for rows.Next() {
		var t TextRecord
		var created, updated int64
		if err := rows.Scan(&t.ID, &t.Name, &t.Language, &created, &updated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan text: %w", err)
		}
		t.CreatedAt = time.UnixMilli(created).UTC()
		t.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, t)
	}
	// Close before loading parts: the store runs on a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		parts, err := r.parts(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Parts = parts
	}
	return out, nil
}

func (r *textRepo) Get(ctx context.Context, name, language string) (*TextRecord, error) {
	var t TextRecord
	var created, updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, language, created_at, updated_at FROM texts WHERE name = ? AND language = ?`,
		name, language,
	).Scan(&t.ID, &t.Name, &t.Language, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("text %q (%s): %w", name, language, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get text: %w", err)
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()

	t.Parts, err = r.parts(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *textRepo) Delete(ctx context.Context, name, language string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM texts WHERE name = ? AND language = ?`, name, language).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("text %q (%s): %w", name, language, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup text: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM text_parts WHERE text_id = ?`, id); err != nil {
		return fmt.Errorf("delete parts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM texts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete text: %w", err)
	}
	return tx.Commit()
}

func (r *textRepo) parts(ctx context.Context, textID string) ([]PartRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, position, name, body FROM text_parts WHERE text_id = ? ORDER BY position`, textID)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	var out []PartRecord
	for rows.Next() {
		var p PartRecord
		if err := rows.Scan(&p.ID, &p.Position, &p.Name, &p.Body); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
