// Package pagination assembles keyset pages and navigation links for the
// filtered list entities.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

const (
	// DefaultLimit is the page size used when the caller names none.
	DefaultLimit = 50
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// Query is one paging request: an opaque filter expression plus the
// keyset window. After and Before bound the ordering key exclusively.
type Query struct {
	Filter string
	After  *int64
	Before *int64
	Limit  int
}

// Source is one pageable listing already bound to its filter. Window
// returns rows in ascending key order; First and Last report the
// boundary keys of the whole filtered set, storage.ErrNotFound when the
// set is empty.
type Source[R any] interface {
	Window(ctx context.Context, after, before *int64, limit int) ([]R, error)
	First(ctx context.Context) (int64, error)
	Last(ctx context.Context) (int64, error)
	ExistsAfter(ctx context.Context, key int64) (bool, error)
	ExistsBefore(ctx context.Context, key int64) (bool, error)
	Key(item R) int64
}

// Navigation holds the four page links as encoded query strings. Links
// that make no sense for the current page are empty: everything on an
// empty set, prev on the first page, next on the last.
type Navigation struct {
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// LinkHeader renders the navigation as one RFC 5988 Link header value,
// appending each link's query string to path. Absent links are skipped.
func (n Navigation) LinkHeader(path string) string {
	var parts []string
	for _, entry := range []struct {
		rel   string
		query string
	}{
		{"first", n.First},
		{"prev", n.Prev},
		{"next", n.Next},
		{"last", n.Last},
	} {
		if entry.query == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("<%s?%s>; rel=%s", path, entry.query, entry.rel))
	}
	return strings.Join(parts, ",")
}

// Paginate returns one page of the source plus its navigation. The four
// boundary probes run against the same filtered predicate as the window.
func Paginate[R any](ctx context.Context, q Query, source Source[R]) ([]R, Navigation, error) {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, Navigation{}, apperrors.WithMetadata(
			apperrors.CodeInvalidLimit,
			"page limit out of range",
			map[string]string{"Maximal": strconv.Itoa(MaxLimit)},
		)
	}

	items, err := source.Window(ctx, q.After, q.Before, limit)
	if err != nil {
		return nil, Navigation{}, err
	}

	first, err := source.First(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return items, Navigation{}, nil
		}
		return nil, Navigation{}, err
	}
	last, err := source.Last(ctx)
	if err != nil {
		return nil, Navigation{}, err
	}

	var nav Navigation
	nav.First = q.link(limit, ref(first-1), nil)
	nav.Last = q.link(limit, nil, ref(last+1))

	if len(items) > 0 {
		head := source.Key(items[0])
		tail := source.Key(items[len(items)-1])

		hasPrev, err := source.ExistsBefore(ctx, head)
		if err != nil {
			return nil, Navigation{}, err
		}
		if hasPrev {
			nav.Prev = q.link(limit, nil, ref(head))
		}

		hasNext, err := source.ExistsAfter(ctx, tail)
		if err != nil {
			return nil, Navigation{}, err
		}
		if hasNext {
			nav.Next = q.link(limit, ref(tail), nil)
		}
	}

	return items, nav, nil
}

// link encodes one navigation target as a query string, carrying the
// filter expression through unchanged.
func (q Query) link(limit int, after, before *int64) string {
	values := url.Values{}
	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}
	values.Set("limit", strconv.Itoa(limit))
	if after != nil {
		values.Set("after", strconv.FormatInt(*after, 10))
	}
	if before != nil {
		values.Set("before", strconv.FormatInt(*before, 10))
	}
	return values.Encode()
}

func ref(key int64) *int64 {
	return &key
}
