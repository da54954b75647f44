package commands

import (
	"context"
	"errors"
	"log"
	"strings"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/filter"
	"github.com/louisbranch/demonlist.space/internal/services/list/pagination"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"github.com/louisbranch/demonlist.space/internal/services/list/video"
)

// AddDemon places a new demon onto the list, shifting every demon at or
// below the chosen position down one slot. Verifier and publisher are
// player names, created when unknown.
type AddDemon struct {
	DemonName   string
	Position    int
	Requirement int
	Video       string
	Verifier    string
	Publisher   string
	// Videos validates video references. Nil means the stock allowlist.
	Videos video.Validator
}

// Name implements dispatch.Command.
func (c AddDemon) Name() string {
	return "add_demon"
}

// Execute implements dispatch.Command.
func (c AddDemon) Execute(ctx context.Context, rc reqctx.Context) (demon.Demon, error) {
	if err := rc.CheckPermissions(role.ListModerator | role.ListAdministrator); err != nil {
		return demon.Demon{}, err
	}

	store := rc.Store()

	if err := demon.ValidateName(c.DemonName); err != nil {
		return demon.Demon{}, err
	}
	if err := demonNameFree(ctx, store, c.DemonName); err != nil {
		return demon.Demon{}, err
	}

	// A new demon may slot in anywhere, including right past the end.
	max, err := store.MaxDemonPosition(ctx)
	if err != nil {
		return demon.Demon{}, dbError(err)
	}
	if err := demon.ValidatePosition(c.Position, max+1); err != nil {
		return demon.Demon{}, err
	}
	if err := demon.ValidateRequirement(c.Requirement); err != nil {
		return demon.Demon{}, err
	}

	videoRef := c.Video
	if videoRef != "" {
		videos := c.Videos
		if videos == nil {
			videos = video.Default()
		}
		videoRef, err = videos.Validate(videoRef)
		if err != nil {
			return demon.Demon{}, err
		}
	}

	verifier, err := vivifyPlayer(ctx, store, c.Verifier)
	if err != nil {
		return demon.Demon{}, err
	}
	publisher, err := vivifyPlayer(ctx, store, c.Publisher)
	if err != nil {
		return demon.Demon{}, err
	}

	d := demon.Demon{
		Name:        c.DemonName,
		Position:    c.Position,
		Requirement: c.Requirement,
		Video:       videoRef,
		Verifier:    verifier,
		Publisher:   publisher,
	}
	if err := store.InsertDemon(ctx, d); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return demon.Demon{}, apperrors.WithMetadata(apperrors.CodeNameTaken, "a demon already carries this name",
				map[string]string{"Name": c.DemonName})
		}
		return demon.Demon{}, dbError(err)
	}

	log.Printf("added demon %q at position %d", d.Name, d.Position)
	return d, nil
}

// PatchDemon applies a partial update to the demon with the given name.
type PatchDemon struct {
	DemonName string
	Patch     demon.Patch
	// Videos validates video references. Nil means the stock allowlist.
	Videos video.Validator
}

// Name implements dispatch.Command.
func (c PatchDemon) Name() string {
	return "patch_demon"
}

// Execute implements dispatch.Command.
func (c PatchDemon) Execute(ctx context.Context, rc reqctx.Context) (demon.Demon, error) {
	current, err := rc.Store().DemonByName(ctx, c.DemonName)
	if err != nil {
		return demon.Demon{}, notFound("demon", c.DemonName, err)
	}
	return patch.Run(ctx, rc, rc.Store(), current, demonUpdate{patch: c.Patch, videos: c.Videos})
}

// demonUpdate adapts a demon patch onto the update pipeline.
type demonUpdate struct {
	patch  demon.Patch
	videos video.Validator
}

func (u demonUpdate) RequiredPermissions() role.Permissions {
	return u.patch.RequiredPermissions()
}

func (u demonUpdate) Apply(ctx context.Context, store storage.Store, current demon.Demon) (demon.Demon, error) {
	updated := current

	if u.patch.Name.Present() {
		name := u.patch.Name.Value()
		if err := demon.ValidateName(name); err != nil {
			return current, err
		}
		if !strings.EqualFold(name, current.Name) {
			if err := demonNameFree(ctx, store, name); err != nil {
				return current, err
			}
		}
		updated.Name = name
	}

	if u.patch.Position.Present() {
		// A move stays within the list, it cannot extend it.
		max, err := store.MaxDemonPosition(ctx)
		if err != nil {
			return current, dbError(err)
		}
		if err := demon.ValidatePosition(u.patch.Position.Value(), max); err != nil {
			return current, err
		}
		updated.Position = u.patch.Position.Value()
	}

	if u.patch.Video.Present() {
		if u.patch.Video.IsNull() {
			updated.Video = ""
		} else {
			videos := u.videos
			if videos == nil {
				videos = video.Default()
			}
			canonical, err := videos.Validate(u.patch.Video.Value())
			if err != nil {
				return current, err
			}
			updated.Video = canonical
		}
	}

	if u.patch.Requirement.Present() {
		if err := demon.ValidateRequirement(u.patch.Requirement.Value()); err != nil {
			return current, err
		}
		updated.Requirement = u.patch.Requirement.Value()
	}

	if u.patch.Verifier.Present() {
		verifier, err := vivifyPlayer(ctx, store, u.patch.Verifier.Value())
		if err != nil {
			return current, err
		}
		updated.Verifier = verifier
	}

	if u.patch.Publisher.Present() {
		publisher, err := vivifyPlayer(ctx, store, u.patch.Publisher.Value())
		if err != nil {
			return current, err
		}
		updated.Publisher = publisher
	}

	return updated, nil
}

func (u demonUpdate) Persist(ctx context.Context, store storage.Store, prior, updated demon.Demon) error {
	if err := store.UpdateDemon(ctx, prior, updated); err != nil {
		return dbError(err)
	}
	return nil
}

// demonNameFree reports NAME_TAKEN when a demon already holds the name.
func demonNameFree(ctx context.Context, store storage.Store, name string) error {
	_, err := store.DemonByName(ctx, name)
	switch {
	case err == nil:
		return apperrors.WithMetadata(apperrors.CodeNameTaken, "a demon already carries this name",
			map[string]string{"Name": name})
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		return dbError(err)
	}
}

// ListDemons pages through the list in position order.
type ListDemons struct {
	Query pagination.Query
}

// Name implements dispatch.Command.
func (c ListDemons) Name() string {
	return "list_demons"
}

// Execute implements dispatch.Command.
func (c ListDemons) Execute(ctx context.Context, rc reqctx.Context) (Page[demon.Demon], error) {
	cond, err := filter.Demons(c.Query.Filter)
	if err != nil {
		return Page[demon.Demon]{}, err
	}

	items, nav, err := pagination.Paginate(ctx, c.Query, demonSource{store: rc.Store(), filter: cond})
	if err != nil {
		return Page[demon.Demon]{}, dbError(err)
	}
	return Page[demon.Demon]{Items: items, Links: nav}, nil
}

// demonSource binds the demon store to one filtered listing keyed by
// position.
type demonSource struct {
	store  storage.DemonStore
	filter storage.Condition
}

func (s demonSource) Window(ctx context.Context, after, before *int64, limit int) ([]demon.Demon, error) {
	return s.store.ListDemons(ctx, storage.Window{After: after, Before: before, Limit: limit, Filter: s.filter})
}

func (s demonSource) First(ctx context.Context) (int64, error) {
	return s.store.FirstDemonPosition(ctx, s.filter)
}

func (s demonSource) Last(ctx context.Context) (int64, error) {
	return s.store.LastDemonPosition(ctx, s.filter)
}

func (s demonSource) ExistsAfter(ctx context.Context, key int64) (bool, error) {
	return s.store.DemonAfter(ctx, s.filter, key)
}

func (s demonSource) ExistsBefore(ctx context.Context, key int64) (bool, error) {
	return s.store.DemonBefore(ctx, s.filter, key)
}

func (s demonSource) Key(item demon.Demon) int64 {
	return int64(item.Position)
}

var (
	_ dispatch.Command[demon.Demon]            = AddDemon{}
	_ dispatch.Command[demon.Demon]            = PatchDemon{}
	_ dispatch.Command[Page[demon.Demon]]      = ListDemons{}
	_ patch.Update[demon.Demon, storage.Store] = demonUpdate{}
	_ pagination.Source[demon.Demon]           = demonSource{}
)
