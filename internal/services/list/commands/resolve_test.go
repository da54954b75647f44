package commands

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
)

func TestSubmitterByIPVivifiesOnce(t *testing.T) {
	store := openStore(t)
	rc := reqctx.External("198.51.100.4").Bind(store)

	first, err := SubmitterByIP{}.Execute(context.Background(), rc)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("submitter was not assigned an id")
	}
	if first.Banned {
		t.Fatal("fresh submitters start unbanned")
	}

	second, err := SubmitterByIP{}.Execute(context.Background(), rc)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same address vivified twice: %d then %d", first.ID, second.ID)
	}

	other, err := SubmitterByIP{}.Execute(context.Background(), reqctx.External("198.51.100.5").Bind(store))
	if err != nil {
		t.Fatalf("other address: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("distinct addresses share a submitter row")
	}
}

func TestPlayerByNameVivifies(t *testing.T) {
	store := openStore(t)
	rc := internalCtx(store)

	first, err := PlayerByName{PlayerName: "Riot"}.Execute(context.Background(), rc)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("player was not assigned an id")
	}

	// Player names compare case-insensitively and keep their stored
	// spelling.
	second, err := PlayerByName{PlayerName: "riot"}.Execute(context.Background(), rc)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same name vivified twice: %d then %d", first.ID, second.ID)
	}
	if second.Name != "Riot" {
		t.Fatalf("expected the stored spelling Riot, got %q", second.Name)
	}
}

func TestPlayerByNameRejectsPaddedName(t *testing.T) {
	store := openStore(t)

	for _, name := range []string{"", "   ", " Riot "} {
		_, err := PlayerByName{PlayerName: name}.Execute(context.Background(), internalCtx(store))
		wantCode(t, err, apperrors.CodeInvalidName)
	}
	if n := countPlayers(t, store); n != 0 {
		t.Fatalf("rejected names vivified %d players", n)
	}
}

func TestDemonByNameNeverVivifies(t *testing.T) {
	store := openStore(t)

	_, err := DemonByName{DemonName: "Nonexistent"}.Execute(context.Background(), internalCtx(store))
	wantCode(t, err, apperrors.CodeNotFound)
	if got := metadataValue(t, err, "Model"); got != "demon" {
		t.Fatalf("expected model demon, got %q", got)
	}
	if got := metadataValue(t, err, "Key"); got != "Nonexistent" {
		t.Fatalf("expected the missing key, got %q", got)
	}
}

func TestResolveSubmissionData(t *testing.T) {
	store := openStore(t)
	seedDemon(t, store, "Bloodbath", 1, 78)

	data, err := ResolveSubmissionData{PlayerName: "Riot", DemonName: "bloodbath"}.Execute(context.Background(), internalCtx(store))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if data.Player.ID == 0 {
		t.Fatal("player was not vivified")
	}
	if data.Demon.Name != "Bloodbath" {
		t.Fatalf("expected the stored demon spelling, got %q", data.Demon.Name)
	}
	if data.Demon.Requirement != 78 {
		t.Fatalf("expected requirement 78, got %d", data.Demon.Requirement)
	}
}
