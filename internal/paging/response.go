package paging

import (
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// PagedReadResponse is one page of a read. NextPageToken is set iff
// RemainingCount > 0.
//
// RemainingCount counts matches after this page at fetch time. Concurrent
// writes can make it stale by the time the next page is read.
type PagedReadResponse[T any] struct {
	Items          []T    `json:"items"`
	NextPageToken  string `json:"next_page_token,omitempty"`
	RemainingCount int64  `json:"remaining_count"`
}

// NewPagedReadResponse enforces the token/remaining-count invariant.
func NewPagedReadResponse[T any](items []T, nextPageToken string, remainingCount int64) (PagedReadResponse[T], error) {
	if remainingCount < 0 {
		return PagedReadResponse[T]{}, apperr.Validationf("remaining_count", "must be >= 0, got %d", remainingCount)
	}
	if remainingCount > 0 && nextPageToken == "" {
		return PagedReadResponse[T]{}, apperr.Validationf("next_page_token", "required when %d rows remain", remainingCount)
	}
	if remainingCount == 0 && nextPageToken != "" {
		return PagedReadResponse[T]{}, apperr.Validationf("next_page_token", "must be empty when no rows remain")
	}
	if items == nil {
		items = []T{}
	}
	return PagedReadResponse[T]{Items: items, NextPageToken: nextPageToken, RemainingCount: remainingCount}, nil
}

// BuildPagedResponse assembles a page. A token positioned after lastRowID is
// issued only when rows remain, so a page that exactly exhausts the matches
// carries no token even if it is full.
func BuildPagedResponse[T any](items []T, lastRowID int64, remainingCount int64, filter *ReadFilter) (PagedReadResponse[T], error) {
	if remainingCount <= 0 {
		return NewPagedReadResponse(items, "", remainingCount)
	}
	tok, err := NewPageToken(lastRowID, filter)
	if err != nil {
		return PagedReadResponse[T]{}, err
	}
	encoded, err := tok.Encode()
	if err != nil {
		return PagedReadResponse[T]{}, err
	}
	return NewPagedReadResponse(items, encoded, remainingCount)
}
