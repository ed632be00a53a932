// Package pagelist keeps a client-side list view consistent across
// incremental page loads. Pages fetched from a remote collection endpoint are
// merged into an accumulated slice deduplicated by key, and a request
// sequence number makes sure responses from superseded fetches are dropped
// instead of merged out of order.
package pagelist

import (
	"sort"
	"sync"
)

// Merge appends every entity of page whose key is not already present in
// accumulated. Existing order is preserved; new entities keep page order.
// Merging the same page twice is a no-op.
func Merge[T any, K comparable](accumulated, page []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(accumulated))
	for _, item := range accumulated {
		seen[key(item)] = struct{}{}
	}

	merged := accumulated
	for _, item := range page {
		if _, ok := seen[key(item)]; ok {
			continue
		}
		seen[key(item)] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

// HasMore reports whether another page may exist. An exactly full page
// optimistically assumes more; a short page signals the end.
func HasMore[T any](page []T, pageSize int) bool {
	return len(page) == pageSize
}

// Filter returns the items for which keep is true, in order.
func Filter[T any](items []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SortedCopy returns a stably sorted copy, leaving the accumulated state
// untouched.
func SortedCopy[T any](items []T, less func(a, b T) bool) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// List is the accumulated state of one paged view. It hands out a token per
// fetch; only the fetch holding the current token may merge its result, so a
// stale response arriving after a reset is discarded rather than merged.
type List[T any, K comparable] struct {
	mu       sync.Mutex
	key      func(T) K
	pageSize int
	items    []T
	nextPage int
	hasMore  bool
	seq      uint64
}

func NewList[T any, K comparable](pageSize int, key func(T) K) *List[T, K] {
	return &List[T, K]{
		key:      key,
		pageSize: pageSize,
		nextPage: 1,
		hasMore:  true,
	}
}

// Reset discards the accumulated items and rewinds to page 1, invalidating
// every in-flight fetch token.
func (l *List[T, K]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.nextPage = 1
	l.hasMore = true
	l.seq++
}

// Begin returns the page number to fetch next and the token to pass to Apply.
func (l *List[T, K]) Begin() (page int, token uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextPage, l.seq
}

// Apply merges a fetched page into the accumulated state. It reports false
// and merges nothing when the token is stale, i.e. the list was reset after
// the fetch began.
func (l *List[T, K]) Apply(token uint64, page []T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.seq {
		return false
	}
	l.items = Merge(l.items, page, l.key)
	l.hasMore = HasMore(page, l.pageSize)
	l.nextPage++
	return true
}

// Snapshot returns a copy of the accumulated items plus paging state.
func (l *List[T, K]) Snapshot() (items []T, nextPage int, hasMore bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items = make([]T, len(l.items))
	copy(items, l.items)
	return items, l.nextPage, l.hasMore
}

// PageSize returns the fixed page size the list was created with.
func (l *List[T, K]) PageSize() int {
	return l.pageSize
}
