// Package storage defines persistence contracts for list service state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/submitter"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
)

var (
	// ErrNotFound indicates a requested row is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained row already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Condition is one SQL predicate with its bind arguments, built by the
// filter package and appended to listing queries verbatim.
type Condition struct {
	SQL  string
	Args []any
}

// Window selects one keyset page of a filtered listing. After and Before
// bound the ordering key exclusively; nil means unbounded on that side.
type Window struct {
	After  *int64
	Before *int64
	Limit  int
	Filter Condition
}

// SubmitterStore persists record submitters keyed by source address.
type SubmitterStore interface {
	SubmitterByIP(ctx context.Context, ip string) (submitter.Submitter, error)
	InsertSubmitter(ctx context.Context, ip string) (submitter.Submitter, error)
}

// PlayerStore persists players keyed by generated ID with unique names.
type PlayerStore interface {
	PlayerByID(ctx context.Context, id int64) (player.Player, error)
	PlayerByName(ctx context.Context, name string) (player.Player, error)
	InsertPlayer(ctx context.Context, name string) (player.Player, error)
	UpdatePlayer(ctx context.Context, p player.Player) error
	ListPlayers(ctx context.Context, w Window) ([]player.Player, error)
	FirstPlayerID(ctx context.Context, filter Condition) (int64, error)
	LastPlayerID(ctx context.Context, filter Condition) (int64, error)
	PlayerAfter(ctx context.Context, filter Condition, id int64) (bool, error)
	PlayerBefore(ctx context.Context, filter Condition, id int64) (bool, error)
}

// DemonStore persists list demons keyed by name and ordered by position.
type DemonStore interface {
	DemonByName(ctx context.Context, name string) (demon.Demon, error)
	MaxDemonPosition(ctx context.Context) (int, error)
	// InsertDemon shifts every demon at or below d.Position down one slot
	// and writes the new row, all in one transaction.
	InsertDemon(ctx context.Context, d demon.Demon) error
	// UpdateDemon rewrites the row identified by prior.Name. When the
	// position changed it reshuffles the affected range in the same
	// transaction so the list stays dense.
	UpdateDemon(ctx context.Context, prior, updated demon.Demon) error
	ListDemons(ctx context.Context, w Window) ([]demon.Demon, error)
	FirstDemonPosition(ctx context.Context, filter Condition) (int64, error)
	LastDemonPosition(ctx context.Context, filter Condition) (int64, error)
	DemonAfter(ctx context.Context, filter Condition, position int64) (bool, error)
	DemonBefore(ctx context.Context, filter Condition, position int64) (bool, error)
}

// RecordStore persists demon completion records keyed by generated ID.
type RecordStore interface {
	RecordByID(ctx context.Context, id int64) (record.Record, error)
	InsertRecord(ctx context.Context, r record.Record) (record.Record, error)
	UpdateRecord(ctx context.Context, r record.Record) error
	DeleteRecord(ctx context.Context, id int64) error
	// DuplicateRecord reports an existing record for the same player and
	// demon, or for the same video when one is given. ErrNotFound means
	// the submission is novel.
	DuplicateRecord(ctx context.Context, playerID int64, demonName, video string) (record.Record, error)
	ListRecords(ctx context.Context, w Window) ([]record.Record, error)
	FirstRecordID(ctx context.Context, filter Condition) (int64, error)
	LastRecordID(ctx context.Context, filter Condition) (int64, error)
	RecordAfter(ctx context.Context, filter Condition, id int64) (bool, error)
	RecordBefore(ctx context.Context, filter Condition, id int64) (bool, error)
}

// UserStore persists authenticated accounts keyed by generated ID with
// unique names.
type UserStore interface {
	UserByID(ctx context.Context, id int64) (user.User, error)
	UserByName(ctx context.Context, name string) (user.User, error)
	InsertUser(ctx context.Context, name string, passwordHash []byte) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// Store is the full persistence surface one worker operates on. Every
// command executes against a single Store bound to one connection.
type Store interface {
	SubmitterStore
	PlayerStore
	DemonStore
	RecordStore
	UserStore
}
