// Package role defines the capability flags gating list operations.
package role

import "strings"

// Permissions is a bitmask of capability flags granted to a user.
// An operation's required set passes when the grant intersects it.
type Permissions uint16

const (
	// ListHelper may review submitted records.
	ListHelper Permissions = 0x0002
	// ListModerator may additionally modify demons and ban players.
	ListModerator Permissions = 0x0004
	// ListAdministrator holds every list capability.
	ListAdministrator Permissions = 0x0008
	// Moderator may edit other users' profiles.
	Moderator Permissions = 0x2000
	// Administrator may additionally grant and revoke permissions.
	Administrator Permissions = 0x4000
)

var flagNames = []struct {
	flag Permissions
	name string
}{
	{ListHelper, "ListHelper"},
	{ListModerator, "ListModerator"},
	{ListAdministrator, "ListAdministrator"},
	{Moderator, "Moderator"},
	{Administrator, "Administrator"},
}

// HasAny reports whether the grant intersects the required set.
func (p Permissions) HasAny(required Permissions) bool {
	return p&required != 0
}

// String renders the mask as a comma separated flag list.
func (p Permissions) String() string {
	var parts []string
	for _, entry := range flagNames {
		if p&entry.flag != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, ", ")
}
