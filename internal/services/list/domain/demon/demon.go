// Package demon defines the ranked demon entity and the list boundaries.
package demon

import (
	"strconv"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
)

// Demon is a level on the ranked list. The name is the natural key;
// positions run from 1 (hardest) and stay dense, every move reshuffles
// the neighbors it displaces.
type Demon struct {
	Name        string        `json:"name"`
	Position    int           `json:"position"`
	Requirement int           `json:"requirement"`
	Video       string        `json:"video,omitempty"`
	Verifier    player.Player `json:"verifier"`
	Publisher   player.Player `json:"publisher"`
}

// Bounds carries the main and extended list sizes. Demons ranked past
// Extended form the legacy list, which no longer accepts submissions.
type Bounds struct {
	Main     int
	Extended int
}

// DefaultBounds returns the stock list sizes.
func DefaultBounds() Bounds {
	return Bounds{Main: 50, Extended: 100}
}

// OnMainList reports whether the position ranks within the main list.
func (b Bounds) OnMainList(position int) bool {
	return position <= b.Main
}

// OnExtendedList reports whether the position ranks within the extended
// list, main list included.
func (b Bounds) OnExtendedList(position int) bool {
	return position <= b.Extended
}

// Legacy reports whether the position ranks past the extended list.
func (b Bounds) Legacy(position int) bool {
	return position > b.Extended
}

// Patch is a partial update of a demon. Verifier and publisher carry
// player names that resolve (and vivify) during validation.
type Patch struct {
	Name        patch.Field[string] `json:"name"`
	Position    patch.Field[int]    `json:"position"`
	Video       patch.Field[string] `json:"video"`
	Requirement patch.Field[int]    `json:"requirement"`
	Verifier    patch.Field[string] `json:"verifier"`
	Publisher   patch.Field[string] `json:"publisher"`
}

// RequiredPermissions returns the flags needed for the present fields.
func (p Patch) RequiredPermissions() role.Permissions {
	if p.Name.Present() || p.Position.Present() || p.Video.Present() ||
		p.Requirement.Present() || p.Verifier.Present() || p.Publisher.Present() {
		return role.ListModerator | role.ListAdministrator
	}
	return 0
}

// ValidateName checks a demon name for format problems. Uniqueness is
// checked against the store by the caller.
func ValidateName(name string) error {
	if name == "" || name != strings.TrimSpace(name) {
		return errors.New(errors.CodeInvalidName, "demon name is empty or padded with spaces")
	}
	return nil
}

// ValidatePosition checks that a position lies between 1 and maximal.
func ValidatePosition(position, maximal int) error {
	if position < 1 || position > maximal {
		return errors.WithMetadata(errors.CodeInvalidPosition, "demon position out of range",
			map[string]string{"Maximal": strconv.Itoa(maximal)})
	}
	return nil
}

// ValidateRequirement checks that a record requirement is a percentage.
func ValidateRequirement(requirement int) error {
	if requirement < 0 || requirement > 100 {
		return errors.New(errors.CodeInvalidRequirement, "record requirement outside 0-100")
	}
	return nil
}
