package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/submitter"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// SubmitterByIP returns the submitter registered for the given address.
func (v view) SubmitterByIP(ctx context.Context, ip string) (submitter.Submitter, error) {
	if err := ctx.Err(); err != nil {
		return submitter.Submitter{}, err
	}
	if v.db == nil {
		return submitter.Submitter{}, fmt.Errorf("storage is not configured")
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return submitter.Submitter{}, fmt.Errorf("submitter ip is required")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT id, ip, banned FROM submitters WHERE ip = ?`,
		ip,
	)

	var s submitter.Submitter
	if err := row.Scan(&s.ID, &s.IP, &s.Banned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return submitter.Submitter{}, storage.ErrNotFound
		}
		return submitter.Submitter{}, fmt.Errorf("get submitter: %w", err)
	}
	return s, nil
}

// InsertSubmitter registers a new submitter for the given address.
func (v view) InsertSubmitter(ctx context.Context, ip string) (submitter.Submitter, error) {
	if err := ctx.Err(); err != nil {
		return submitter.Submitter{}, err
	}
	if v.db == nil {
		return submitter.Submitter{}, fmt.Errorf("storage is not configured")
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return submitter.Submitter{}, fmt.Errorf("submitter ip is required")
	}

	res, err := v.db.ExecContext(
		ctx,
		`INSERT INTO submitters (ip, banned) VALUES (?, 0)`,
		ip,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return submitter.Submitter{}, storage.ErrAlreadyExists
		}
		return submitter.Submitter{}, fmt.Errorf("insert submitter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return submitter.Submitter{}, fmt.Errorf("insert submitter id: %w", err)
	}
	return submitter.Submitter{ID: id, IP: ip}, nil
}
