// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package validation

import (
	"fmt"
	"math"
)

// ValidatePaging checks 1-based page parameters shared by every paginated
// endpoint. page*pageSize must fit in an int so the row offset
// (page-1)*pageSize and the end of the page never wrap.
func ValidatePaging(page, pageSize, maxPageSize int) error {
	if page < 1 {
		return NewFieldError("page", "gte", page, "page must be greater than or equal to 1")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return NewFieldError("page_size", "range", pageSize,
			fmt.Sprintf("page_size must be between 1 and %d", maxPageSize))
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		return NewFieldError("page", "lte", page,
			fmt.Sprintf("page must be at most %d for page_size %d", maxPage, pageSize))
	}
	return nil
}

// PageOffset returns the row offset of a page accepted by ValidatePaging.
func PageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}
