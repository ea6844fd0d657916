// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"math"
	"net/http"
	"strconv"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sieve/internal/audit"
	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/visibility"
)

func newAuditHarness(t *testing.T) (*harness, *audit.Logger) {
	t.Helper()

	store := newFakeStore()
	submitter := &fakeSubmitter{}
	resolver := visibility.NewResolver(store, visibility.Config{DefaultPageSize: 2, MaxPageSize: 100})
	trail := audit.NewLogger(audit.NewMemoryStore(100), audit.DefaultConfig())
	t.Cleanup(func() { _ = trail.Close() })

	router := NewRouter(RouterConfig{
		Handler:    NewHandler(store, submitter, resolver).WithAuditTrail(trail),
		Auth:       auth.NewMiddleware(auth.AuthModeNone, nil, Unauthorized),
		Middleware: NewChiMiddleware(ChiMiddlewareConfig{}),
	})
	return &harness{store: store, submitter: submitter, router: router}, trail
}

func TestAuditHistoryRecordsModerationActions(t *testing.T) {
	t.Parallel()
	h, trail := newAuditHarness(t)

	h.do(t, http.MethodPost, "/api/v1/keywords", "user-1", `{"word":"crypto"}`)
	h.do(t, http.MethodPost, "/api/v1/channels/block/ch-1", "user-1", "")
	h.do(t, http.MethodPost, "/api/v1/channels/unblock/ch-1", "user-1", "")
	h.do(t, http.MethodPost, "/api/v1/channels/block/ch-1", "user-2", "")
	// rejected requests leave no trace
	h.do(t, http.MethodPost, "/api/v1/keywords", "user-1", `{}`)

	// flush the async writer
	_ = trail.Close()

	rec, env := h.do(t, http.MethodGet, "/api/v1/audit?page_size=2", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var events []audit.Event
	if err := json.Unmarshal(env.Data, &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Action != audit.ActionChannelUnblocked || events[1].Action != audit.ActionChannelBlocked {
		t.Errorf("actions = [%s %s], want newest first", events[0].Action, events[1].Action)
	}
	for _, e := range events {
		if e.UserID != "user-1" {
			t.Errorf("leaked event of %s", e.UserID)
		}
		if e.RequestID == "" {
			t.Error("request ID not carried into audit event")
		}
	}

	p := env.Meta.Pagination
	if p == nil || p.Total != 3 || !p.HasMore || p.Count != 2 {
		t.Errorf("pagination = %+v, want total 3 with more", p)
	}
}

func TestAuditHistoryRejectsBadPaging(t *testing.T) {
	t.Parallel()
	h, _ := newAuditHarness(t)

	huge := "?page_size=100&page=" + strconv.Itoa(math.MaxInt/2)
	for _, q := range []string{"?page=0", "?page_size=0", "?page_size=101", "?page=x", huge} {
		rec, env := h.do(t, http.MethodGet, "/api/v1/audit"+q, "user-1", "")
		if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
			t.Errorf("%s: status = %d error = %+v, want 400 %s", q, rec.Code, env.Error, ErrCodeValidationFailed)
		}
	}
}

func TestAuditHistoryDisabled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	rec, _ := h.do(t, http.MethodGet, "/api/v1/audit", "user-1", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
