package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

const recordColumns = `records.id, records.progress, records.video, records.status,
       players.id, players.name, players.banned,
       records.submitter, records.demon`

const recordJoins = ` FROM records
  JOIN players ON players.id = records.player`

// RecordByID returns one record with its player resolved.
func (v view) RecordByID(ctx context.Context, id int64) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if v.db == nil {
		return record.Record{}, fmt.Errorf("storage is not configured")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+recordJoins+` WHERE records.id = ?`,
		id,
	)

	r, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Record{}, storage.ErrNotFound
		}
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// InsertRecord writes a new record and returns it with the generated ID.
func (v view) InsertRecord(ctx context.Context, r record.Record) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if v.db == nil {
		return record.Record{}, fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(
		ctx,
		`INSERT INTO records (progress, video, status, player, submitter, demon)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Progress,
		nullIfEmpty(r.Video),
		string(r.Status),
		r.Player.ID,
		r.Submitter,
		r.Demon,
	)
	if err != nil {
		return record.Record{}, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return record.Record{}, fmt.Errorf("insert record id: %w", err)
	}
	r.ID = id
	return r, nil
}

// UpdateRecord rewrites one record row.
func (v view) UpdateRecord(ctx context.Context, r record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(
		ctx,
		`UPDATE records
		    SET progress = ?, video = ?, status = ?, player = ?, demon = ?
		  WHERE id = ?`,
		r.Progress,
		nullIfEmpty(r.Video),
		string(r.Status),
		r.Player.ID,
		r.Demon,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteRecord removes one record by ID.
func (v view) DeleteRecord(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DuplicateRecord returns an existing record claiming the same progress
// slot. With a video it also matches the same video on any other demon,
// which catches resubmitted footage.
func (v view) DuplicateRecord(ctx context.Context, playerID int64, demonName, video string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if v.db == nil {
		return record.Record{}, fmt.Errorf("storage is not configured")
	}

	query := `SELECT ` + recordColumns + recordJoins +
		` WHERE records.player = ? AND records.demon = ?`
	args := []any{playerID, demonName}
	if video != "" {
		query = `SELECT ` + recordColumns + recordJoins +
			` WHERE (records.player = ? AND records.demon = ?) OR records.video = ?`
		args = append(args, video)
	}
	query += ` ORDER BY records.id ASC LIMIT 1`

	r, err := scanRecord(v.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Record{}, storage.ErrNotFound
		}
		return record.Record{}, fmt.Errorf("probe duplicate record: %w", err)
	}
	return r, nil
}

// ListRecords returns one window of records in ascending ID order.
func (v view) ListRecords(ctx context.Context, w storage.Window) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if err := checkWindow(w); err != nil {
		return nil, err
	}

	query, args, descending := buildWindow(`SELECT `+recordColumns+recordJoins, "records.id", w)
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]record.Record, 0, w.Limit)
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if descending {
		reverse(records)
	}
	return records, nil
}

// FirstRecordID returns the smallest record ID matching the filter.
func (v view) FirstRecordID(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "records", "records.id", filter, false)
}

// LastRecordID returns the largest record ID matching the filter.
func (v view) LastRecordID(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "records", "records.id", filter, true)
}

// RecordAfter reports whether a filtered record exists beyond id.
func (v view) RecordAfter(ctx context.Context, filter storage.Condition, id int64) (bool, error) {
	return v.keyExists(ctx, "records", "records.id", filter, ">", id)
}

// RecordBefore reports whether a filtered record exists before id.
func (v view) RecordBefore(ctx context.Context, filter storage.Condition, id int64) (bool, error) {
	return v.keyExists(ctx, "records", "records.id", filter, "<", id)
}

func scanRecord(scan func(dest ...any) error) (record.Record, error) {
	var r record.Record
	var video sql.NullString
	var status string
	err := scan(
		&r.ID,
		&r.Progress,
		&video,
		&status,
		&r.Player.ID,
		&r.Player.Name,
		&r.Player.Banned,
		&r.Submitter,
		&r.Demon,
	)
	if err != nil {
		return record.Record{}, err
	}
	r.Video = video.String
	r.Status = record.Status(status)
	return r, nil
}
