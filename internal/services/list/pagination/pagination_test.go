package pagination

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

// fakeSource pages over a fixed ascending key set.
type fakeSource struct {
	keys     []int64
	sawLimit int
}

func (s *fakeSource) Window(ctx context.Context, after, before *int64, limit int) ([]int64, error) {
	s.sawLimit = limit

	var matched []int64
	for _, key := range s.keys {
		if after != nil && key <= *after {
			continue
		}
		if before != nil && key >= *before {
			continue
		}
		matched = append(matched, key)
	}
	if before != nil && after == nil && len(matched) > limit {
		return matched[len(matched)-limit:], nil
	}
	if len(matched) > limit {
		return matched[:limit], nil
	}
	return matched, nil
}

func (s *fakeSource) First(ctx context.Context) (int64, error) {
	if len(s.keys) == 0 {
		return 0, storage.ErrNotFound
	}
	return s.keys[0], nil
}

func (s *fakeSource) Last(ctx context.Context) (int64, error) {
	if len(s.keys) == 0 {
		return 0, storage.ErrNotFound
	}
	return s.keys[len(s.keys)-1], nil
}

func (s *fakeSource) ExistsAfter(ctx context.Context, key int64) (bool, error) {
	return len(s.keys) > 0 && s.keys[len(s.keys)-1] > key, nil
}

func (s *fakeSource) ExistsBefore(ctx context.Context, key int64) (bool, error) {
	return len(s.keys) > 0 && s.keys[0] < key, nil
}

func (s *fakeSource) Key(item int64) int64 {
	return item
}

func keys(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestPaginateMiddlePage(t *testing.T) {
	after := int64(2)
	source := &fakeSource{keys: keys(10)}

	items, nav, err := Paginate(context.Background(), Query{After: &after, Limit: 2}, source)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(items) != 2 || items[0] != 3 || items[1] != 4 {
		t.Fatalf("items = %v, want [3 4]", items)
	}

	want := Navigation{
		First: "after=0&limit=2",
		Prev:  "before=3&limit=2",
		Next:  "after=4&limit=2",
		Last:  "before=11&limit=2",
	}
	if nav != want {
		t.Errorf("navigation = %+v, want %+v", nav, want)
	}
}

func TestPaginateFirstPageHasNoPrev(t *testing.T) {
	source := &fakeSource{keys: keys(10)}

	_, nav, err := Paginate(context.Background(), Query{Limit: 3}, source)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if nav.Prev != "" {
		t.Errorf("prev = %q, want absent on the first page", nav.Prev)
	}
	if nav.Next == "" || nav.First == "" || nav.Last == "" {
		t.Errorf("navigation = %+v, want first/next/last present", nav)
	}
}

func TestPaginateLastPageHasNoNext(t *testing.T) {
	after := int64(8)
	source := &fakeSource{keys: keys(10)}

	items, nav, err := Paginate(context.Background(), Query{After: &after, Limit: 5}, source)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %v, want the final two keys", items)
	}
	if nav.Next != "" {
		t.Errorf("next = %q, want absent on the last page", nav.Next)
	}
	if nav.Prev == "" {
		t.Error("prev missing on the last page")
	}
}

func TestPaginateEmptySet(t *testing.T) {
	source := &fakeSource{}

	items, nav, err := Paginate(context.Background(), Query{}, source)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want none", items)
	}
	if nav != (Navigation{}) {
		t.Errorf("navigation = %+v, want no links for an empty set", nav)
	}
}

func TestPaginateDefaultsLimit(t *testing.T) {
	source := &fakeSource{keys: keys(3)}

	if _, _, err := Paginate(context.Background(), Query{}, source); err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if source.sawLimit != DefaultLimit {
		t.Errorf("window limit = %d, want %d", source.sawLimit, DefaultLimit)
	}
}

func TestPaginateRejectsLimitOutOfRange(t *testing.T) {
	source := &fakeSource{keys: keys(3)}

	for _, limit := range []int{-1, MaxLimit + 1} {
		_, _, err := Paginate(context.Background(), Query{Limit: limit}, source)
		if got := apperrors.GetCode(err); got != apperrors.CodeInvalidLimit {
			t.Errorf("limit %d: error code = %v, want %v", limit, got, apperrors.CodeInvalidLimit)
		}
	}
}

func TestPaginateCarriesFilterThroughLinks(t *testing.T) {
	source := &fakeSource{keys: keys(5)}

	_, nav, err := Paginate(context.Background(), Query{Filter: `banned = true`, Limit: 2}, source)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if nav.First != "after=0&filter=banned+%3D+true&limit=2" {
		t.Errorf("first link = %q", nav.First)
	}
}

func TestLinkHeader(t *testing.T) {
	nav := Navigation{
		First: "after=0&limit=2",
		Next:  "after=4&limit=2",
	}

	got := nav.LinkHeader("/api/v1/demons/")
	want := "</api/v1/demons/?after=0&limit=2>; rel=first,</api/v1/demons/?after=4&limit=2>; rel=next"
	if got != want {
		t.Errorf("LinkHeader() = %q, want %q", got, want)
	}
}
