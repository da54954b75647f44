package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/player"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/record"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/role"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSubmitterRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.SubmitterByIP(ctx, "203.0.113.7"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("SubmitterByIP() error = %v, want ErrNotFound", err)
	}

	created, err := store.InsertSubmitter(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("insert submitter: %v", err)
	}
	if created.ID == 0 || created.Banned {
		t.Fatalf("unexpected submitter: %+v", created)
	}

	got, err := store.SubmitterByIP(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("get submitter: %v", err)
	}
	if got != created {
		t.Errorf("SubmitterByIP() = %+v, want %+v", got, created)
	}

	if _, err := store.InsertSubmitter(ctx, "203.0.113.7"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("duplicate insert error = %v, want ErrAlreadyExists", err)
	}
}

func TestPlayerNamesCompareCaseInsensitively(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.InsertPlayer(ctx, "Riot")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}

	got, err := store.PlayerByName(ctx, "rIoT")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("PlayerByName() = %+v, want id %d", got, created.ID)
	}

	if _, err := store.InsertPlayer(ctx, "RIOT"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("duplicate insert error = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdatePlayer(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	p, err := store.InsertPlayer(ctx, "Riot")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}

	p.Name = "Combined"
	p.Banned = true
	if err := store.UpdatePlayer(ctx, p); err != nil {
		t.Fatalf("update player: %v", err)
	}

	got, err := store.PlayerByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != "Combined" || !got.Banned {
		t.Errorf("player after update = %+v", got)
	}

	if err := store.UpdatePlayer(ctx, player.Player{ID: 999, Name: "ghost"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update missing player error = %v, want ErrNotFound", err)
	}
}

func TestInsertDemonShiftsOccupiedSlots(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Cataclysm", 1)
	seedDemon(t, store, "Bloodbath", 1)

	cataclysm, err := store.DemonByName(ctx, "Cataclysm")
	if err != nil {
		t.Fatalf("get demon: %v", err)
	}
	if cataclysm.Position != 2 {
		t.Errorf("Cataclysm position = %d, want 2", cataclysm.Position)
	}

	bloodbath, err := store.DemonByName(ctx, "Bloodbath")
	if err != nil {
		t.Fatalf("get demon: %v", err)
	}
	if bloodbath.Position != 1 {
		t.Errorf("Bloodbath position = %d, want 1", bloodbath.Position)
	}
}

func TestUpdateDemonReshufflesDownwardMove(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Third", 1)
	seedDemon(t, store, "Second", 1)
	seedDemon(t, store, "First", 1)
	// List is now First=1, Second=2, Third=3.

	prior, err := store.DemonByName(ctx, "First")
	if err != nil {
		t.Fatalf("get demon: %v", err)
	}
	updated := prior
	updated.Position = 3
	if err := store.UpdateDemon(ctx, prior, updated); err != nil {
		t.Fatalf("update demon: %v", err)
	}

	assertPosition(t, store, "Second", 1)
	assertPosition(t, store, "Third", 2)
	assertPosition(t, store, "First", 3)
}

func TestUpdateDemonReshufflesUpwardMove(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Third", 1)
	seedDemon(t, store, "Second", 1)
	seedDemon(t, store, "First", 1)

	prior, err := store.DemonByName(ctx, "Third")
	if err != nil {
		t.Fatalf("get demon: %v", err)
	}
	updated := prior
	updated.Position = 1
	if err := store.UpdateDemon(ctx, prior, updated); err != nil {
		t.Fatalf("update demon: %v", err)
	}

	assertPosition(t, store, "Third", 1)
	assertPosition(t, store, "First", 2)
	assertPosition(t, store, "Second", 3)
}

func TestUpdateDemonRenameFollowsRecords(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Bloodbath", 1)
	p, err := store.PlayerByName(ctx, "verifier")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	sub, err := store.InsertSubmitter(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("insert submitter: %v", err)
	}
	inserted, err := store.InsertRecord(ctx, record.Record{
		Progress:  100,
		Status:    record.StatusApproved,
		Player:    p,
		Submitter: sub.ID,
		Demon:     "Bloodbath",
	})
	if err != nil {
		t.Fatalf("insert record: %v", err)
	}

	prior, err := store.DemonByName(ctx, "Bloodbath")
	if err != nil {
		t.Fatalf("get demon: %v", err)
	}
	updated := prior
	updated.Name = "Bloodlust"
	if err := store.UpdateDemon(ctx, prior, updated); err != nil {
		t.Fatalf("update demon: %v", err)
	}

	got, err := store.RecordByID(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Demon != "Bloodlust" {
		t.Errorf("record demon after rename = %q, want %q", got.Demon, "Bloodlust")
	}
	if _, err := store.DemonByName(ctx, "Bloodbath"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("old name lookup error = %v, want ErrNotFound", err)
	}
}

func TestMaxDemonPosition(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	max, err := store.MaxDemonPosition(ctx)
	if err != nil {
		t.Fatalf("max position: %v", err)
	}
	if max != 0 {
		t.Errorf("MaxDemonPosition() = %d, want 0 for empty list", max)
	}

	seedDemon(t, store, "Bloodbath", 1)
	seedDemon(t, store, "Cataclysm", 2)

	max, err = store.MaxDemonPosition(ctx)
	if err != nil {
		t.Fatalf("max position: %v", err)
	}
	if max != 2 {
		t.Errorf("MaxDemonPosition() = %d, want 2", max)
	}
}

func TestDuplicateRecordProbe(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Bloodbath", 1)
	seedDemon(t, store, "Cataclysm", 2)
	p, err := store.InsertPlayer(ctx, "Riot")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
	sub, err := store.InsertSubmitter(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("insert submitter: %v", err)
	}
	existing, err := store.InsertRecord(ctx, record.Record{
		Progress:  91,
		Video:     "https://www.youtube.com/watch?v=4SGDBRhoo50",
		Status:    record.StatusSubmitted,
		Player:    p,
		Submitter: sub.ID,
		Demon:     "Bloodbath",
	})
	if err != nil {
		t.Fatalf("insert record: %v", err)
	}

	got, err := store.DuplicateRecord(ctx, p.ID, "Bloodbath", "")
	if err != nil {
		t.Fatalf("probe by pair: %v", err)
	}
	if got.ID != existing.ID {
		t.Errorf("pair probe = record %d, want %d", got.ID, existing.ID)
	}

	// Same footage submitted against another demon still counts.
	got, err = store.DuplicateRecord(ctx, p.ID, "Cataclysm", "https://www.youtube.com/watch?v=4SGDBRhoo50")
	if err != nil {
		t.Fatalf("probe by video: %v", err)
	}
	if got.ID != existing.ID {
		t.Errorf("video probe = record %d, want %d", got.ID, existing.ID)
	}

	if _, err := store.DuplicateRecord(ctx, p.ID, "Cataclysm", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("novel probe error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	seedDemon(t, store, "Bloodbath", 1)
	p, err := store.InsertPlayer(ctx, "Riot")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
	sub, err := store.InsertSubmitter(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("insert submitter: %v", err)
	}
	inserted, err := store.InsertRecord(ctx, record.Record{
		Progress:  100,
		Status:    record.StatusSubmitted,
		Player:    p,
		Submitter: sub.ID,
		Demon:     "Bloodbath",
	})
	if err != nil {
		t.Fatalf("insert record: %v", err)
	}

	if err := store.DeleteRecord(ctx, inserted.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if _, err := store.RecordByID(ctx, inserted.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get deleted record error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteRecord(ctx, inserted.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.InsertUser(ctx, "stadust", []byte("$2y$10$fake-hash"))
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	created.DisplayName = "stardust1971"
	created.YoutubeChannel = "https://www.youtube.com/channel/stardust1971"
	created.Permissions = role.ListModerator | role.Moderator
	if err := store.UpdateUser(ctx, created); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := store.UserByName(ctx, "stadust")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.DisplayName != created.DisplayName || got.Permissions != created.Permissions {
		t.Errorf("user after update = %+v", got)
	}
	if string(got.PasswordHash) != "$2y$10$fake-hash" {
		t.Errorf("password hash = %q", got.PasswordHash)
	}

	if err := store.DeleteUser(ctx, got.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := store.UserByID(ctx, got.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get deleted user error = %v, want ErrNotFound", err)
	}
}

func TestListPlayersWindows(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		p, err := store.InsertPlayer(ctx, name)
		if err != nil {
			t.Fatalf("insert player %q: %v", name, err)
		}
		ids = append(ids, p.ID)
	}

	firstPage, err := store.ListPlayers(ctx, storage.Window{Limit: 2})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(firstPage) != 2 || firstPage[0].ID != ids[0] || firstPage[1].ID != ids[1] {
		t.Fatalf("first page = %+v", firstPage)
	}

	after := ids[1]
	nextPage, err := store.ListPlayers(ctx, storage.Window{After: &after, Limit: 2})
	if err != nil {
		t.Fatalf("list players after: %v", err)
	}
	if len(nextPage) != 2 || nextPage[0].ID != ids[2] || nextPage[1].ID != ids[3] {
		t.Fatalf("next page = %+v", nextPage)
	}

	// Anchoring on Before returns the page that ends just before the
	// key, already flipped back into ascending order.
	before := ids[4]
	prevPage, err := store.ListPlayers(ctx, storage.Window{Before: &before, Limit: 2})
	if err != nil {
		t.Fatalf("list players before: %v", err)
	}
	if len(prevPage) != 2 || prevPage[0].ID != ids[2] || prevPage[1].ID != ids[3] {
		t.Fatalf("previous page = %+v", prevPage)
	}
}

func TestListPlayersFilter(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	clean, err := store.InsertPlayer(ctx, "clean")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
	banned, err := store.InsertPlayer(ctx, "banned")
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
	banned.Banned = true
	if err := store.UpdatePlayer(ctx, banned); err != nil {
		t.Fatalf("update player: %v", err)
	}

	got, err := store.ListPlayers(ctx, storage.Window{
		Limit:  10,
		Filter: storage.Condition{SQL: "players.banned = ?", Args: []any{true}},
	})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(got) != 1 || got[0].ID != banned.ID {
		t.Fatalf("filtered page = %+v", got)
	}
	_ = clean
}

func TestBoundaryProbes(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	none := storage.Condition{}

	if _, err := store.FirstPlayerID(ctx, none); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("first on empty table error = %v, want ErrNotFound", err)
	}

	var ids []int64
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		p, err := store.InsertPlayer(ctx, name)
		if err != nil {
			t.Fatalf("insert player: %v", err)
		}
		ids = append(ids, p.ID)
	}

	first, err := store.FirstPlayerID(ctx, none)
	if err != nil {
		t.Fatalf("first player id: %v", err)
	}
	last, err := store.LastPlayerID(ctx, none)
	if err != nil {
		t.Fatalf("last player id: %v", err)
	}
	if first != ids[0] || last != ids[2] {
		t.Errorf("bounds = (%d, %d), want (%d, %d)", first, last, ids[0], ids[2])
	}

	if ok, err := store.PlayerAfter(ctx, none, ids[2]); err != nil || ok {
		t.Errorf("PlayerAfter(last) = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := store.PlayerAfter(ctx, none, ids[1]); err != nil || !ok {
		t.Errorf("PlayerAfter(middle) = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := store.PlayerBefore(ctx, none, ids[0]); err != nil || ok {
		t.Errorf("PlayerBefore(first) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestAcquireBindsOneConnection(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	bound, release, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	if _, err := bound.InsertPlayer(ctx, "Riot"); err != nil {
		t.Fatalf("insert through bound store: %v", err)
	}
	got, err := store.PlayerByName(ctx, "Riot")
	if err != nil {
		t.Fatalf("get player through pool: %v", err)
	}
	if got.Name != "Riot" {
		t.Errorf("player = %+v", got)
	}
}

func TestLimitConnectionsBoundsAcquire(t *testing.T) {
	store := openTempStore(t)
	store.LimitConnections(1)
	ctx := context.Background()

	_, release, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, _, err := store.Acquire(waitCtx); err == nil {
		t.Fatal("expected acquire to block while the only connection is held")
	}

	release()
	bound, release, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	defer release()
	if _, err := bound.InsertPlayer(ctx, "Riot"); err != nil {
		t.Fatalf("insert through bound store: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

// seedDemon inserts a demon at the given position, vivifying shared
// verifier and publisher players on first use.
func seedDemon(t *testing.T, store *Store, name string, position int) {
	t.Helper()
	ctx := context.Background()

	verifier, err := store.PlayerByName(ctx, "verifier")
	if errors.Is(err, storage.ErrNotFound) {
		verifier, err = store.InsertPlayer(ctx, "verifier")
	}
	if err != nil {
		t.Fatalf("seed verifier: %v", err)
	}
	publisher, err := store.PlayerByName(ctx, "publisher")
	if errors.Is(err, storage.ErrNotFound) {
		publisher, err = store.InsertPlayer(ctx, "publisher")
	}
	if err != nil {
		t.Fatalf("seed publisher: %v", err)
	}

	err = store.InsertDemon(ctx, demon.Demon{
		Name:        name,
		Position:    position,
		Requirement: 100,
		Verifier:    verifier,
		Publisher:   publisher,
	})
	if err != nil {
		t.Fatalf("seed demon %q: %v", name, err)
	}
}

func assertPosition(t *testing.T, store *Store, name string, want int) {
	t.Helper()
	d, err := store.DemonByName(context.Background(), name)
	if err != nil {
		t.Fatalf("get demon %q: %v", name, err)
	}
	if d.Position != want {
		t.Errorf("%s position = %d, want %d", name, d.Position, want)
	}
}
