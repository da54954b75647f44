// Package player defines the people records are tracked for.
package player

import (
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
)

// Player is a person holding records on the list. Players are created
// implicitly the first time a submission or demon references their name.
type Player struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Banned bool   `json:"banned"`
}

// Patch is a partial update of a player.
type Patch struct {
	Name   patch.Field[string] `json:"name"`
	Banned patch.Field[bool]   `json:"banned"`
}

// RequiredPermissions returns the flags needed for the present fields.
func (p Patch) RequiredPermissions() role.Permissions {
	if p.Name.Present() || p.Banned.Present() {
		return role.ListModerator | role.ListAdministrator
	}
	return 0
}

// ValidateName checks a player name for format problems. Uniqueness is
// checked against the store by the caller.
func ValidateName(name string) error {
	if name == "" || name != strings.TrimSpace(name) {
		return errors.New(errors.CodeInvalidName, "player name is empty or padded with spaces")
	}
	return nil
}
