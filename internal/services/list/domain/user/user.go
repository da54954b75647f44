// Package user defines the accounts that authenticate against the service.
package user

import (
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
)

// User is an account able to authenticate and hold permissions. The
// password hash doubles as token-signing material, so re-hashing the
// password invalidates every previously issued access token.
type User struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	DisplayName    string           `json:"display_name,omitempty"`
	YoutubeChannel string           `json:"youtube_channel,omitempty"`
	Permissions    role.Permissions `json:"permissions"`
	PasswordHash   []byte           `json:"-"`
}

// ListTeamMember reports whether the user holds a list-moderation role.
func (u User) ListTeamMember() bool {
	return u.Permissions.HasAny(role.ListModerator | role.ListAdministrator)
}

// Registration is the input for creating an account.
type Registration struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate enforces the account rules: names at least 3 characters and not
// padded with spaces, passwords at least 10 characters.
func (r Registration) Validate() error {
	if len(r.Name) < 3 || r.Name != strings.TrimSpace(r.Name) {
		return errors.New(errors.CodeInvalidUsername, "username shorter than 3 characters or padded with spaces")
	}
	if len(r.Password) < 10 {
		return errors.New(errors.CodeInvalidPassword, "password shorter than 10 characters")
	}
	return nil
}

// Patch is a partial update of another user's account.
type Patch struct {
	DisplayName    patch.Field[string]           `json:"display_name"`
	YoutubeChannel patch.Field[string]           `json:"youtube_channel"`
	Permissions    patch.Field[role.Permissions] `json:"permissions"`
}

// RequiredPermissions returns the flags needed for the present fields.
// Granting permissions outranks profile edits, so a payload touching the
// permission mask requires Administrator regardless of the other fields.
func (p Patch) RequiredPermissions() role.Permissions {
	if p.Permissions.Present() {
		return role.Administrator
	}
	if p.DisplayName.Present() || p.YoutubeChannel.Present() {
		return role.Moderator | role.Administrator
	}
	return 0
}

// PatchMe is a partial update of the caller's own account. It carries no
// permission requirement; identity alone authorizes it.
type PatchMe struct {
	Password       patch.Field[string] `json:"password"`
	DisplayName    patch.Field[string] `json:"display_name"`
	YoutubeChannel patch.Field[string] `json:"youtube_channel"`
}

// RequiredPermissions always returns the empty set for self-patches.
func (p PatchMe) RequiredPermissions() role.Permissions {
	return 0
}

// Validate checks the self-patch fields that carry format rules.
func (p PatchMe) Validate() error {
	if p.Password.Present() && len(p.Password.Value()) < 10 {
		return errors.New(errors.CodeInvalidPassword, "password shorter than 10 characters")
	}
	return nil
}
