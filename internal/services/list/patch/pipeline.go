package patch

import (
	"context"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
)

// Guard is the request-scoped authority consulted before an update touches
// an entity. Satisfied by reqctx.Context.
type Guard interface {
	CheckPermissions(required role.Permissions) error
	CheckPrecondition(entity any) error
	Conditional() bool
}

// Update describes a partial update of one entity kind. S is the store
// view the update validates against and persists through.
type Update[E, S any] interface {
	// RequiredPermissions computes the permission set needed for the
	// fields actually present in the payload.
	RequiredPermissions() role.Permissions
	// Apply validates every present field against live store state and
	// returns the patched copy of current. Any failure leaves the entity
	// untouched.
	Apply(ctx context.Context, store S, current E) (E, error)
	// Persist writes the updated entity in a single transaction. prior is
	// the pre-update snapshot, needed when the update moves the row's
	// natural key or ordering position.
	Persist(ctx context.Context, store S, prior, updated E) error
}

// Run executes the pipeline for one entity: authorize, check the
// precondition when the caller declared one, validate and apply in memory,
// persist. No store write happens before the persist step, so failures
// never leave partial mutations behind.
func Run[E, S any](ctx context.Context, guard Guard, store S, current E, update Update[E, S]) (E, error) {
	if err := guard.CheckPermissions(update.RequiredPermissions()); err != nil {
		return current, err
	}

	if guard.Conditional() {
		if err := guard.CheckPrecondition(current); err != nil {
			return current, err
		}
	}

	updated, err := update.Apply(ctx, store, current)
	if err != nil {
		return current, err
	}

	if err := update.Persist(ctx, store, current, updated); err != nil {
		return current, err
	}
	return updated, nil
}
