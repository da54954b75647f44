package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

const userColumns = `id, name, display_name, youtube_channel, permissions, password_hash`

// UserByID returns one account by generated ID.
func (v view) UserByID(ctx context.Context, id int64) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if v.db == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// UserByName returns one account by name. Account names compare
// case-sensitively, unlike player names.
func (v view) UserByName(ctx context.Context, name string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if v.db == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, fmt.Errorf("user name is required")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ?`,
		name,
	)
	return scanUser(row)
}

// InsertUser creates an account with no permissions.
func (v view) InsertUser(ctx context.Context, name string, passwordHash []byte) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if v.db == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, fmt.Errorf("user name is required")
	}
	if len(passwordHash) == 0 {
		return user.User{}, fmt.Errorf("password hash is required")
	}

	res, err := v.db.ExecContext(
		ctx,
		`INSERT INTO users (name, display_name, youtube_channel, permissions, password_hash)
		 VALUES (?, NULL, NULL, 0, ?)`,
		name,
		passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, storage.ErrAlreadyExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("insert user id: %w", err)
	}
	return user.User{ID: id, Name: name, PasswordHash: passwordHash}, nil
}

// UpdateUser rewrites one account row. The name never changes.
func (v view) UpdateUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(
		ctx,
		`UPDATE users
		    SET display_name = ?, youtube_channel = ?, permissions = ?, password_hash = ?
		  WHERE id = ?`,
		nullIfEmpty(u.DisplayName),
		nullIfEmpty(u.YoutubeChannel),
		uint16(u.Permissions),
		u.PasswordHash,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes one account by ID.
func (v view) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	var displayName sql.NullString
	var youtubeChannel sql.NullString
	var permissions uint16
	err := row.Scan(
		&u.ID,
		&u.Name,
		&displayName,
		&youtubeChannel,
		&permissions,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	u.DisplayName = displayName.String
	u.YoutubeChannel = youtubeChannel.String
	u.Permissions = role.Permissions(permissions)
	return u, nil
}
