package commands

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/auth"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// Register creates an account. New accounts hold no permissions until
// an administrator grants them.
type Register struct {
	Registration user.Registration
}

// Name implements dispatch.Command.
func (c Register) Name() string {
	return "register"
}

// Execute implements dispatch.Command.
func (c Register) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	if err := c.Registration.Validate(); err != nil {
		return user.User{}, err
	}

	store := rc.Store()

	_, err := store.UserByName(ctx, c.Registration.Name)
	switch {
	case err == nil:
		return user.User{}, apperrors.New(apperrors.CodeNameTaken, "an account already carries this name")
	case errors.Is(err, storage.ErrNotFound):
	default:
		return user.User{}, dbError(err)
	}

	hash, err := auth.HashPassword(c.Registration.Password)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		return user.User{}, apperrors.Wrap(apperrors.CodeInvalidPassword, "password rejected by the hasher", err)
	}

	u, err := store.InsertUser(ctx, c.Registration.Name, hash)
	if err != nil {
		// The pre-check raced another registration for the same name.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return user.User{}, apperrors.New(apperrors.CodeNameTaken, "an account already carries this name")
		}
		return user.User{}, dbError(err)
	}
	return u, nil
}

// UserByID retrieves one account, staff only.
type UserByID struct {
	ID int64
}

// Name implements dispatch.Command.
func (c UserByID) Name() string {
	return "user_by_id"
}

// Execute implements dispatch.Command.
func (c UserByID) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	if err := rc.CheckPermissions(role.Moderator | role.Administrator); err != nil {
		return user.User{}, err
	}
	u, err := rc.Store().UserByID(ctx, c.ID)
	if err != nil {
		return user.User{}, notFound("user", itoa(c.ID), err)
	}
	return u, nil
}

// UserByName retrieves one account by name, staff only.
type UserByName struct {
	UserName string
}

// Name implements dispatch.Command.
func (c UserByName) Name() string {
	return "user_by_name"
}

// Execute implements dispatch.Command.
func (c UserByName) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	if err := rc.CheckPermissions(role.Moderator | role.Administrator); err != nil {
		return user.User{}, err
	}
	u, err := rc.Store().UserByName(ctx, c.UserName)
	if err != nil {
		return user.User{}, notFound("user", c.UserName, err)
	}
	return u, nil
}

// DeleteUserByID removes an account outright.
type DeleteUserByID struct {
	ID int64
}

// Name implements dispatch.Command.
func (c DeleteUserByID) Name() string {
	return "delete_user"
}

// Execute implements dispatch.Command.
func (c DeleteUserByID) Execute(ctx context.Context, rc reqctx.Context) (struct{}, error) {
	if err := rc.CheckPermissions(role.Administrator); err != nil {
		return struct{}{}, err
	}

	u, err := rc.Store().UserByID(ctx, c.ID)
	if err != nil {
		return struct{}{}, notFound("user", itoa(c.ID), err)
	}
	if rc.Conditional() {
		if err := rc.CheckPrecondition(u); err != nil {
			return struct{}{}, err
		}
	}

	log.Printf("deleting user %d", c.ID)
	if err := rc.Store().DeleteUser(ctx, c.ID); err != nil {
		return struct{}{}, notFound("user", itoa(c.ID), err)
	}
	return struct{}{}, nil
}

// PatchUser applies a partial update to another account.
type PatchUser struct {
	ID    int64
	Patch user.Patch
}

// Name implements dispatch.Command.
func (c PatchUser) Name() string {
	return "patch_user"
}

// Execute implements dispatch.Command.
func (c PatchUser) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	current, err := rc.Store().UserByID(ctx, c.ID)
	if err != nil {
		return user.User{}, notFound("user", itoa(c.ID), err)
	}
	return patch.Run(ctx, rc, rc.Store(), current, userUpdate{patch: c.Patch})
}

// userUpdate adapts an administrative user patch onto the update
// pipeline.
type userUpdate struct {
	patch user.Patch
}

func (u userUpdate) RequiredPermissions() role.Permissions {
	return u.patch.RequiredPermissions()
}

func (u userUpdate) Apply(ctx context.Context, store storage.Store, current user.User) (user.User, error) {
	updated := current

	if u.patch.DisplayName.Present() {
		if u.patch.DisplayName.IsNull() {
			updated.DisplayName = ""
		} else {
			updated.DisplayName = u.patch.DisplayName.Value()
		}
	}
	if u.patch.YoutubeChannel.Present() {
		if u.patch.YoutubeChannel.IsNull() {
			updated.YoutubeChannel = ""
		} else {
			updated.YoutubeChannel = u.patch.YoutubeChannel.Value()
		}
	}
	if u.patch.Permissions.Present() {
		updated.Permissions = u.patch.Permissions.Value()
	}

	return updated, nil
}

func (u userUpdate) Persist(ctx context.Context, store storage.Store, prior, updated user.User) error {
	if err := store.UpdateUser(ctx, updated); err != nil {
		return dbError(err)
	}
	return nil
}

// PatchCurrentUser applies a self-service update to the calling account.
// A password change re-hashes with a fresh salt, which invalidates all
// previously issued access tokens.
type PatchCurrentUser struct {
	Patch user.PatchMe
}

// Name implements dispatch.Command.
func (c PatchCurrentUser) Name() string {
	return "patch_current_user"
}

// Execute implements dispatch.Command.
func (c PatchCurrentUser) Execute(ctx context.Context, rc reqctx.Context) (user.User, error) {
	current, ok := rc.User()
	if !ok {
		return user.User{}, apperrors.New(apperrors.CodeUnauthorized, "request carries no authenticated identity")
	}
	return patch.Run(ctx, rc, rc.Store(), current, userSelfUpdate{patch: c.Patch})
}

// userSelfUpdate adapts a self patch onto the update pipeline.
type userSelfUpdate struct {
	patch user.PatchMe
}

func (u userSelfUpdate) RequiredPermissions() role.Permissions {
	return u.patch.RequiredPermissions()
}

func (u userSelfUpdate) Apply(ctx context.Context, store storage.Store, current user.User) (user.User, error) {
	if err := u.patch.Validate(); err != nil {
		return current, err
	}

	updated := current

	if u.patch.Password.Present() {
		hash, err := auth.HashPassword(u.patch.Password.Value())
		if err != nil {
			return current, apperrors.Wrap(apperrors.CodeInvalidPassword, "password rejected by the hasher", err)
		}
		updated.PasswordHash = hash
	}
	if u.patch.DisplayName.Present() {
		if u.patch.DisplayName.IsNull() {
			updated.DisplayName = ""
		} else {
			updated.DisplayName = u.patch.DisplayName.Value()
		}
	}
	if u.patch.YoutubeChannel.Present() {
		if u.patch.YoutubeChannel.IsNull() {
			updated.YoutubeChannel = ""
		} else {
			updated.YoutubeChannel = u.patch.YoutubeChannel.Value()
		}
	}

	return updated, nil
}

func (u userSelfUpdate) Persist(ctx context.Context, store storage.Store, prior, updated user.User) error {
	if err := store.UpdateUser(ctx, updated); err != nil {
		return dbError(err)
	}
	return nil
}

var (
	_ dispatch.Command[user.User]            = Register{}
	_ dispatch.Command[user.User]            = UserByID{}
	_ dispatch.Command[user.User]            = UserByName{}
	_ dispatch.Command[struct{}]             = DeleteUserByID{}
	_ dispatch.Command[user.User]            = PatchUser{}
	_ dispatch.Command[user.User]            = PatchCurrentUser{}
	_ patch.Update[user.User, storage.Store] = userUpdate{}
	_ patch.Update[user.User, storage.Store] = userSelfUpdate{}
)
