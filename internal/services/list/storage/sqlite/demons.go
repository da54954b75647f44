package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

const demonColumns = `demons.name, demons.position, demons.requirement, demons.video,
       verifier.id, verifier.name, verifier.banned,
       publisher.id, publisher.name, publisher.banned`

const demonJoins = ` FROM demons
  JOIN players AS verifier ON verifier.id = demons.verifier
  JOIN players AS publisher ON publisher.id = demons.publisher`

// DemonByName returns one demon with its verifier and publisher
// resolved. Names compare case-insensitively.
func (v view) DemonByName(ctx context.Context, name string) (demon.Demon, error) {
	if err := ctx.Err(); err != nil {
		return demon.Demon{}, err
	}
	if v.db == nil {
		return demon.Demon{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return demon.Demon{}, fmt.Errorf("demon name is required")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT `+demonColumns+demonJoins+` WHERE demons.name = ?`,
		name,
	)

	d, err := scanDemon(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return demon.Demon{}, storage.ErrNotFound
		}
		return demon.Demon{}, fmt.Errorf("get demon: %w", err)
	}
	return d, nil
}

// MaxDemonPosition returns the position of the lowest ranked demon, zero
// when the list is empty.
func (v view) MaxDemonPosition(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if v.db == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var position int
	row := v.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM demons`)
	if err := row.Scan(&position); err != nil {
		return 0, fmt.Errorf("max demon position: %w", err)
	}
	return position, nil
}

// InsertDemon adds a demon at d.Position, shifting every demon at or
// below that slot down one. Shift and insert commit together.
func (v view) InsertDemon(ctx context.Context, d demon.Demon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin demon insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE demons SET position = position + 1 WHERE position >= ?`,
		d.Position,
	); err != nil {
		return fmt.Errorf("shift demon positions: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO demons (name, position, requirement, video, verifier, publisher)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name,
		d.Position,
		d.Requirement,
		nullIfEmpty(d.Video),
		d.Verifier.ID,
		d.Publisher.ID,
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert demon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit demon insert: %w", err)
	}
	return nil
}

// UpdateDemon rewrites the row identified by prior.Name. A position
// change reshuffles the demons between the old and new slot in the same
// transaction, keeping the list dense.
func (v view) UpdateDemon(ctx context.Context, prior, updated demon.Demon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin demon update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	switch {
	case updated.Position > prior.Position:
		// Moving down the list: everything it passes moves up one slot.
		_, err = tx.ExecContext(
			ctx,
			`UPDATE demons SET position = position - 1 WHERE position > ? AND position <= ?`,
			prior.Position,
			updated.Position,
		)
	case updated.Position < prior.Position:
		// Moving up the list: everything it passes moves down one slot.
		_, err = tx.ExecContext(
			ctx,
			`UPDATE demons SET position = position + 1 WHERE position >= ? AND position < ?`,
			updated.Position,
			prior.Position,
		)
	}
	if err != nil {
		return fmt.Errorf("reshuffle demon positions: %w", err)
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE demons
		    SET name = ?, position = ?, requirement = ?, video = ?, verifier = ?, publisher = ?
		  WHERE name = ?`,
		updated.Name,
		updated.Position,
		updated.Requirement,
		nullIfEmpty(updated.Video),
		updated.Verifier.ID,
		updated.Publisher.ID,
		prior.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update demon: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update demon result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit demon update: %w", err)
	}
	return nil
}

// ListDemons returns one window of demons in ascending position order.
func (v view) ListDemons(ctx context.Context, w storage.Window) ([]demon.Demon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if err := checkWindow(w); err != nil {
		return nil, err
	}

	query, args, descending := buildWindow(`SELECT `+demonColumns+demonJoins, "demons.position", w)
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list demons: %w", err)
	}
	defer rows.Close()

	demons := make([]demon.Demon, 0, w.Limit)
	for rows.Next() {
		d, err := scanDemon(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan demon: %w", err)
		}
		demons = append(demons, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list demons: %w", err)
	}
	if descending {
		reverse(demons)
	}
	return demons, nil
}

// FirstDemonPosition returns the best position matching the filter.
func (v view) FirstDemonPosition(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "demons", "demons.position", filter, false)
}

// LastDemonPosition returns the worst position matching the filter.
func (v view) LastDemonPosition(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "demons", "demons.position", filter, true)
}

// DemonAfter reports whether a filtered demon ranks below position.
func (v view) DemonAfter(ctx context.Context, filter storage.Condition, position int64) (bool, error) {
	return v.keyExists(ctx, "demons", "demons.position", filter, ">", position)
}

// DemonBefore reports whether a filtered demon ranks above position.
func (v view) DemonBefore(ctx context.Context, filter storage.Condition, position int64) (bool, error) {
	return v.keyExists(ctx, "demons", "demons.position", filter, "<", position)
}

func scanDemon(scan func(dest ...any) error) (demon.Demon, error) {
	var d demon.Demon
	var video sql.NullString
	err := scan(
		&d.Name,
		&d.Position,
		&d.Requirement,
		&video,
		&d.Verifier.ID,
		&d.Verifier.Name,
		&d.Verifier.Banned,
		&d.Publisher.ID,
		&d.Publisher.Name,
		&d.Publisher.Banned,
	)
	if err != nil {
		return demon.Demon{}, err
	}
	d.Video = video.String
	return d, nil
}
