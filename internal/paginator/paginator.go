// Package paginator splits an ordered result set into fixed-size numbered pages.
package paginator

import (
	"errors"
	"strconv"
)

// Page is one page of results together with its position among all pages.
type Page[T any] struct {
	Items      []T
	Number     int
	NumPages   int
	PerPage    int
	TotalCount int64
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// PreviousNumber is the number of the preceding page.
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// NextNumber is the number of the following page.
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// HasOtherPages reports whether pagination controls are needed at all.
func (p Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

// PageRange lists every page number, for rendering pagination links.
func (p Page[T]) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// NumPages returns how many pages total items fill at perPage per page.
// An empty result still has one page.
func NumPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ParsePage reads a raw page parameter. Missing or non-integer input means page 1.
// An integer too large for int saturates, so it still counts as past the end.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		return n
	}
	if err != nil {
		return 1
	}
	return n
}

// Clamp resolves a requested page number against the page count.
// Numbers below 1 or beyond the last page resolve to the last page.
func Clamp(number, numPages int) int {
	if number < 1 || number > numPages {
		return numPages
	}
	return number
}

// Window resolves raw against total and returns the page number with the
// limit and offset to fetch it.
func Window(raw string, total int64, perPage int) (number, limit, offset int) {
	number = Clamp(ParsePage(raw), NumPages(total, perPage))
	return number, perPage, (number - 1) * perPage
}

// New assembles a Page from fetched items.
func New[T any](items []T, number, perPage int, total int64) Page[T] {
	return Page[T]{
		Items:      items,
		Number:     number,
		NumPages:   NumPages(total, perPage),
		PerPage:    perPage,
		TotalCount: total,
	}
}
