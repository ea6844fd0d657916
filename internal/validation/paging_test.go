// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package validation

import (
	"errors"
	"math"
	"testing"
)

func TestValidatePaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantField string
	}{
		{"first page", 1, 50, ""},
		{"last representable page", math.MaxInt / 100, 100, ""},
		{"zero page", 0, 50, "page"},
		{"negative page", -3, 50, "page"},
		{"zero page size", 1, 0, "page_size"},
		{"page size above max", 1, 101, "page_size"},
		{"offset would overflow", math.MaxInt/100 + 1, 100, "page"},
		{"max int page", math.MaxInt, 1, ""},
		{"max int page with size 2", math.MaxInt, 2, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePaging(tt.page, tt.pageSize, 100)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidatePaging(%d, %d) = %v, want nil", tt.page, tt.pageSize, err)
				}
				if off := PageOffset(tt.page, tt.pageSize); off < 0 {
					t.Errorf("PageOffset(%d, %d) = %d, want non-negative", tt.page, tt.pageSize, off)
				}
				return
			}

			var verr *RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidatePaging(%d, %d) = %v, want *RequestValidationError", tt.page, tt.pageSize, err)
			}
			if got := verr.ToAPIError().Details["field"]; got != tt.wantField {
				t.Errorf("field = %v, want %s", got, tt.wantField)
			}
		})
	}
}
