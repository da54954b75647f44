// Package commands implements the operations the service runs on its
// worker pool. Each command is a small struct naming its inputs; Execute
// performs the work against the request's bound store. Commands invoke
// each other's Execute directly when they compose, never through the
// queue.
package commands

import (
	"errors"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/pagination"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// Page is one window of a listing plus its navigation links.
type Page[T any] struct {
	Items []T                   `json:"items"`
	Links pagination.Navigation `json:"links"`
}

// notFound maps a missing row onto NOT_FOUND naming the entity kind and
// the key that failed to resolve. Other storage failures wrap as usual.
func notFound(model, key string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, "no "+model+" matched the key",
			map[string]string{"Model": model, "Key": key}, err)
	}
	return dbError(err)
}

// dbError wraps raw storage failures so drivers never leak to callers.
// Errors that already carry a code pass through unchanged.
func dbError(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeDatabaseError, "storage operation failed", err)
}
