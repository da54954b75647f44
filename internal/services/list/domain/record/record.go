// Package record defines demon completion records and their review states.
package record

import (
	"strconv"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/patch"
)

// Status is the review state of a record.
type Status string

const (
	// StatusSubmitted marks a record awaiting review.
	StatusSubmitted Status = "submitted"
	// StatusApproved marks a record accepted onto the list.
	StatusApproved Status = "approved"
	// StatusRejected marks a record turned down by the list team.
	StatusRejected Status = "rejected"
)

// ParseStatus maps a raw string onto a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(raw)) {
	case StatusSubmitted:
		return StatusSubmitted, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", errors.WithMetadata(errors.CodeInvalidStatus, "unknown record status",
			map[string]string{"Status": raw})
	}
}

// Record is a persisted claim of progress on a demon.
type Record struct {
	ID        int64         `json:"id"`
	Progress  int           `json:"progress"`
	Video     string        `json:"video,omitempty"`
	Status    Status        `json:"status"`
	Player    player.Player `json:"player"`
	Submitter int64         `json:"submitter,omitempty"`
	Demon     string        `json:"demon"`
}

// Submission is an unpersisted claim of progress on a demon, reconciled
// into a Record or rejected. VerifyOnly submissions report the outcome
// without writing anything.
type Submission struct {
	Progress   int    `json:"progress"`
	Player     string `json:"player"`
	Demon      string `json:"demon"`
	Video      string `json:"video,omitempty"`
	VerifyOnly bool   `json:"verify_only,omitempty"`
}

// Patch is a partial update of a record.
type Patch struct {
	Progress patch.Field[int]    `json:"progress"`
	Video    patch.Field[string] `json:"video"`
	Status   patch.Field[string] `json:"status"`
}

// RequiredPermissions returns the flags needed for the present fields.
func (p Patch) RequiredPermissions() role.Permissions {
	if p.Progress.Present() || p.Video.Present() || p.Status.Present() {
		return role.ListHelper | role.ListModerator | role.ListAdministrator
	}
	return 0
}

// ValidateProgress checks a progress value against a demon's requirement.
func ValidateProgress(progress, requirement int) error {
	if progress > 100 || progress < requirement {
		return errors.WithMetadata(errors.CodeInvalidProgress, "progress outside the demon's accepted range",
			map[string]string{"Requirement": strconv.Itoa(requirement)})
	}
	return nil
}
