package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/submitter"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/user"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage/sqlite"
)

// openStore opens a fresh on-disk store with migrations applied.
func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "list.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// internalCtx binds a request context that skips authorization checks.
func internalCtx(store storage.Store) reqctx.Context {
	return reqctx.Internal().Bind(store)
}

// userCtx binds an external request context authenticated as u.
func userCtx(store storage.Store, u user.User) reqctx.Context {
	return reqctx.External("203.0.113.7").WithUser(u).Bind(store)
}

// anonCtx binds an external request context carrying no identity.
func anonCtx(store storage.Store) reqctx.Context {
	return reqctx.External("203.0.113.7").Bind(store)
}

// seedDemon places a demon through the add command, vivifying its
// verifier and publisher along the way.
func seedDemon(t *testing.T, store storage.Store, name string, position, requirement int) demon.Demon {
	t.Helper()
	d, err := AddDemon{
		DemonName:   name,
		Position:    position,
		Requirement: requirement,
		Verifier:    name + " verifier",
		Publisher:   name + " publisher",
	}.Execute(context.Background(), internalCtx(store))
	if err != nil {
		t.Fatalf("seed demon %q: %v", name, err)
	}
	return d
}

// seedSubmitter vivifies a submitter row for ip.
func seedSubmitter(t *testing.T, store storage.Store, ip string) submitter.Submitter {
	t.Helper()
	s, err := SubmitterByIP{}.Execute(context.Background(), reqctx.External(ip).Bind(store))
	if err != nil {
		t.Fatalf("seed submitter %q: %v", ip, err)
	}
	return s
}

// mustSubmit runs a submission that is expected to produce a record.
func mustSubmit(t *testing.T, store storage.Store, from submitter.Submitter, sub record.Submission) record.Record {
	t.Helper()
	created, err := ProcessSubmission{Submission: sub, Submitter: from}.Execute(context.Background(), internalCtx(store))
	if err != nil {
		t.Fatalf("submit %d%% by %q on %q: %v", sub.Progress, sub.Player, sub.Demon, err)
	}
	if created == nil {
		t.Fatalf("submit %d%% by %q on %q: no record came back", sub.Progress, sub.Player, sub.Demon)
	}
	return *created
}

// countRecords reports how many records the store holds.
func countRecords(t *testing.T, store storage.Store) int {
	t.Helper()
	items, err := store.ListRecords(context.Background(), storage.Window{Limit: 1000})
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	return len(items)
}

// countPlayers reports how many players the store holds.
func countPlayers(t *testing.T, store storage.Store) int {
	t.Helper()
	items, err := store.ListPlayers(context.Background(), storage.Window{Limit: 1000})
	if err != nil {
		t.Fatalf("count players: %v", err)
	}
	return len(items)
}

// wantCode fails the test unless err carries the given code.
func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected code %s, got no error", code)
	}
	if got := apperrors.GetCode(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

// metadataValue digs one metadata entry out of err.
func metadataValue(t *testing.T, err error, key string) string {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected a coded error, got %T (%v)", err, err)
	}
	return appErr.Metadata[key]
}

// countingValidator accepts every reference unchanged and records how
// often it ran.
type countingValidator struct {
	calls int
}

func (v *countingValidator) Validate(raw string) (string, error) {
	v.calls++
	return raw, nil
}
