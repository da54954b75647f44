package commands

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/filter"
	"github.com/louisbranch/demonlist.space/internal/services/list/pagination"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// PatchPlayer applies a partial update to one player.
type PatchPlayer struct {
	ID    int64
	Patch player.Patch
}

// Name implements dispatch.Command.
func (c PatchPlayer) Name() string {
	return "patch_player"
}

// Execute implements dispatch.Command.
func (c PatchPlayer) Execute(ctx context.Context, rc reqctx.Context) (player.Player, error) {
	current, err := rc.Store().PlayerByID(ctx, c.ID)
	if err != nil {
		return player.Player{}, notFound("player", itoa(c.ID), err)
	}
	return patch.Run(ctx, rc, rc.Store(), current, playerUpdate{patch: c.Patch})
}

// playerUpdate adapts a player patch onto the update pipeline.
type playerUpdate struct {
	patch player.Patch
}

func (u playerUpdate) RequiredPermissions() role.Permissions {
	return u.patch.RequiredPermissions()
}

func (u playerUpdate) Apply(ctx context.Context, store storage.Store, current player.Player) (player.Player, error) {
	updated := current

	if u.patch.Name.Present() {
		name := u.patch.Name.Value()
		if err := player.ValidateName(name); err != nil {
			return current, err
		}
		if !strings.EqualFold(name, current.Name) {
			_, err := store.PlayerByName(ctx, name)
			switch {
			case err == nil:
				return current, apperrors.WithMetadata(apperrors.CodeNameTaken, "a player already carries this name",
					map[string]string{"Name": name})
			case errors.Is(err, storage.ErrNotFound):
			default:
				return current, dbError(err)
			}
		}
		updated.Name = name
	}

	if u.patch.Banned.Present() {
		updated.Banned = u.patch.Banned.Value()
	}

	return updated, nil
}

func (u playerUpdate) Persist(ctx context.Context, store storage.Store, prior, updated player.Player) error {
	if err := store.UpdatePlayer(ctx, updated); err != nil {
		return dbError(err)
	}
	return nil
}

// ListPlayers pages through players in id order.
type ListPlayers struct {
	Query pagination.Query
}

// Name implements dispatch.Command.
func (c ListPlayers) Name() string {
	return "list_players"
}

// Execute implements dispatch.Command.
func (c ListPlayers) Execute(ctx context.Context, rc reqctx.Context) (Page[player.Player], error) {
	cond, err := filter.Players(c.Query.Filter)
	if err != nil {
		return Page[player.Player]{}, err
	}

	items, nav, err := pagination.Paginate(ctx, c.Query, playerSource{store: rc.Store(), filter: cond})
	if err != nil {
		return Page[player.Player]{}, dbError(err)
	}
	return Page[player.Player]{Items: items, Links: nav}, nil
}

// playerSource binds the player store to one filtered listing.
type playerSource struct {
	store  storage.PlayerStore
	filter storage.Condition
}

func (s playerSource) Window(ctx context.Context, after, before *int64, limit int) ([]player.Player, error) {
	return s.store.ListPlayers(ctx, storage.Window{After: after, Before: before, Limit: limit, Filter: s.filter})
}

func (s playerSource) First(ctx context.Context) (int64, error) {
	return s.store.FirstPlayerID(ctx, s.filter)
}

func (s playerSource) Last(ctx context.Context) (int64, error) {
	return s.store.LastPlayerID(ctx, s.filter)
}

func (s playerSource) ExistsAfter(ctx context.Context, key int64) (bool, error) {
	return s.store.PlayerAfter(ctx, s.filter, key)
}

func (s playerSource) ExistsBefore(ctx context.Context, key int64) (bool, error) {
	return s.store.PlayerBefore(ctx, s.filter, key)
}

func (s playerSource) Key(item player.Player) int64 {
	return item.ID
}

var (
	_ dispatch.Command[player.Player]            = PatchPlayer{}
	_ dispatch.Command[Page[player.Player]]      = ListPlayers{}
	_ patch.Update[player.Player, storage.Store] = playerUpdate{}
	_ pagination.Source[player.Player]           = playerSource{}
)
