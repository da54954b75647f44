package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// PlayerByID returns one player by generated ID.
func (v view) PlayerByID(ctx context.Context, id int64) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	if v.db == nil {
		return player.Player{}, fmt.Errorf("storage is not configured")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT id, name, banned FROM players WHERE id = ?`,
		id,
	)
	return scanPlayer(row)
}

// PlayerByName returns one player by name. Names compare
// case-insensitively.
func (v view) PlayerByName(ctx context.Context, name string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	if v.db == nil {
		return player.Player{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("player name is required")
	}

	row := v.db.QueryRowContext(
		ctx,
		`SELECT id, name, banned FROM players WHERE name = ?`,
		name,
	)
	return scanPlayer(row)
}

// InsertPlayer creates an unbanned player with the given name.
func (v view) InsertPlayer(ctx context.Context, name string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	if v.db == nil {
		return player.Player{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("player name is required")
	}

	res, err := v.db.ExecContext(
		ctx,
		`INSERT INTO players (name, banned) VALUES (?, 0)`,
		name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return player.Player{}, storage.ErrAlreadyExists
		}
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return player.Player{}, fmt.Errorf("insert player id: %w", err)
	}
	return player.Player{ID: id, Name: name}, nil
}

// UpdatePlayer rewrites one player row.
func (v view) UpdatePlayer(ctx context.Context, p player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := v.db.ExecContext(
		ctx,
		`UPDATE players SET name = ?, banned = ? WHERE id = ?`,
		p.Name,
		p.Banned,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPlayers returns one window of players in ascending ID order.
func (v view) ListPlayers(ctx context.Context, w storage.Window) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if err := checkWindow(w); err != nil {
		return nil, err
	}

	query, args, descending := buildWindow(
		`SELECT players.id, players.name, players.banned FROM players`,
		"players.id",
		w,
	)
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := make([]player.Player, 0, w.Limit)
	for rows.Next() {
		var p player.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Banned); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if descending {
		reverse(players)
	}
	return players, nil
}

// FirstPlayerID returns the smallest player ID matching the filter.
func (v view) FirstPlayerID(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "players", "players.id", filter, false)
}

// LastPlayerID returns the largest player ID matching the filter.
func (v view) LastPlayerID(ctx context.Context, filter storage.Condition) (int64, error) {
	return v.boundaryKey(ctx, "players", "players.id", filter, true)
}

// PlayerAfter reports whether a filtered player exists beyond id.
func (v view) PlayerAfter(ctx context.Context, filter storage.Condition, id int64) (bool, error) {
	return v.keyExists(ctx, "players", "players.id", filter, ">", id)
}

// PlayerBefore reports whether a filtered player exists before id.
func (v view) PlayerBefore(ctx context.Context, filter storage.Condition, id int64) (bool, error) {
	return v.keyExists(ctx, "players", "players.id", filter, "<", id)
}

func scanPlayer(row *sql.Row) (player.Player, error) {
	var p player.Player
	if err := row.Scan(&p.ID, &p.Name, &p.Banned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, storage.ErrNotFound
		}
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// reverse flips a window scanned backwards into ascending order.
func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
