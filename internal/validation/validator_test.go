// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package validation

import (
	"strings"
	"testing"
)

type testKeywordRequest struct {
	Word string `json:"word" validate:"required,keyword,max=20"`
}

type testFeedRequest struct {
	Page     int `json:"page" validate:"min=1"`
	PageSize int `json:"page_size" validate:"min=1,max=100"`
}

func TestValidateStructKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		word    string
		wantTag string
	}{
		{"valid", "dinosaur", ""},
		{"valid with spaces", "scary clowns", ""},
		{"empty", "", "required"},
		{"whitespace only", "   ", "keyword"},
		{"control char", "dino\x00saur", "keyword"},
		{"too long", strings.Repeat("a", 21), "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(&testKeywordRequest{Word: tt.word})
			if tt.wantTag == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("ValidateStruct() = nil, want %s failure", tt.wantTag)
			}
			if got := verr.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("tag = %q, want %q", got, tt.wantTag)
			}
			if got := verr.Errors()[0].Field(); got != "word" {
				t.Errorf("field = %q, want word", got)
			}
		})
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&testFeedRequest{Page: 0, PageSize: 500})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "page must be at least 1") {
		t.Errorf("Message = %q, want page failure", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "page_size must be at most 100") {
		t.Errorf("Message = %q, want page_size failure", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
}

func TestNewFieldError(t *testing.T) {
	t.Parallel()

	verr := NewFieldError("page", "numeric", "abc", "page must be an integer")
	if verr.Error() != "page must be an integer" {
		t.Errorf("Error() = %q", verr.Error())
	}
	if verr.ToAPIError().Details["field"] != "page" {
		t.Errorf("Details[field] = %v, want page", verr.ToAPIError().Details["field"])
	}
}
