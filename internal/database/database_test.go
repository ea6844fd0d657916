// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/models"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO databases in one
// test binary exhaust memory on small CI runners.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}
	done := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		done <- result{db, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Failed to create test database: %v", r.err)
		}
		t.Cleanup(func() {
			if err := r.db.Close(); err != nil {
				t.Logf("close: %v", err)
			}
		})
		return r.db
	case <-time.After(120 * time.Second):
		t.Fatal("Timed out creating test database")
		return nil
	}
}

// fixture creates a channel and returns its ID.
func fixtureChannel(t *testing.T, db *DB, name string) string {
	t.Helper()
	id, err := db.UpsertChannel(context.Background(), models.Channel{ExternalID: "ext-" + name, Name: name})
	if err != nil {
		t.Fatalf("UpsertChannel(%s): %v", name, err)
	}
	return id
}

func fixtureItem(t *testing.T, db *DB, id, channelID string, created time.Time, vec []float32) {
	t.Helper()
	_, err := db.InsertContentItem(context.Background(), models.ContentItem{
		ID:         id,
		ChannelID:  channelID,
		ExternalID: "ext-" + id,
		Title:      "title " + id,
		CreatedAt:  created,
	}, vec)
	if err != nil {
		t.Fatalf("InsertContentItem(%s): %v", id, err)
	}
}

func feedIDs(items []models.FeedItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.VideoID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	for _, table := range []string{"channels", "content_items", "keywords", "blocked_keywords", "keyword_content_matches", "blocked_channels"} {
		var n int
		err := db.Conn().QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("information_schema lookup: %v", err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestGetOrCreateKeyword_ReusesExactWord(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.GetOrCreateKeyword(ctx, "dinosaur")
	if err != nil {
		t.Fatalf("GetOrCreateKeyword: %v", err)
	}
	second, err := db.GetOrCreateKeyword(ctx, "dinosaur")
	if err != nil {
		t.Fatalf("GetOrCreateKeyword: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same word produced two ids: %s, %s", first.ID, second.ID)
	}

	other, err := db.GetOrCreateKeyword(ctx, "Dinosaur")
	if err != nil {
		t.Fatalf("GetOrCreateKeyword: %v", err)
	}
	if other.ID == first.ID {
		t.Error("words differing in case must be distinct keywords")
	}
}

func TestLinkBlockedKeyword_DuplicateIsNoop(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	kw, err := db.GetOrCreateKeyword(ctx, "spiders")
	if err != nil {
		t.Fatalf("GetOrCreateKeyword: %v", err)
	}

	created, err := db.LinkBlockedKeyword(ctx, "user-1", kw.ID)
	if err != nil || !created {
		t.Fatalf("first link: created=%v err=%v", created, err)
	}
	created, err = db.LinkBlockedKeyword(ctx, "user-1", kw.ID)
	if err != nil {
		t.Fatalf("duplicate link returned error: %v", err)
	}
	if created {
		t.Error("duplicate link reported as created")
	}

	list, err := db.ListBlockedKeywords(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBlockedKeywords: %v", err)
	}
	if len(list) != 1 || list[0].Word != "spiders" || list[0].UserID != "user-1" || list[0].ID != kw.ID {
		t.Errorf("ListBlockedKeywords = %+v", list)
	}
}

func TestDeleteBlockedKeyword(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	kw, _ := db.GetOrCreateKeyword(ctx, "snakes")
	if _, err := db.LinkBlockedKeyword(ctx, "user-1", kw.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := db.LinkBlockedKeyword(ctx, "user-2", kw.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	word, deleted, err := db.DeleteBlockedKeyword(ctx, "user-1", kw.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteBlockedKeyword: deleted=%v err=%v", deleted, err)
	}
	if word != "snakes" {
		t.Errorf("word = %q, want snakes", word)
	}
	word, deleted, err = db.DeleteBlockedKeyword(ctx, "user-1", kw.ID)
	if err != nil || deleted || word != "" {
		t.Fatalf("second delete: word=%q deleted=%v err=%v", word, deleted, err)
	}

	// The keyword row and the other user's link survive.
	if _, err := db.KeywordByWord(ctx, "snakes"); err != nil {
		t.Errorf("keyword row removed: %v", err)
	}
	list, _ := db.ListBlockedKeywords(ctx, "user-2")
	if len(list) != 1 {
		t.Errorf("user-2 links = %d, want 1", len(list))
	}
}

func TestKeywordByWord_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.KeywordByWord(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertKeywordMatches_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	kw, _ := db.GetOrCreateKeyword(ctx, "dinosaur")
	matches := []models.ContentScore{{ContentID: "a", Score: 0.91}, {ContentID: "b", Score: 0.80}}

	if err := db.InsertKeywordMatches(ctx, kw.ID, matches); err != nil {
		t.Fatalf("InsertKeywordMatches: %v", err)
	}
	if err := db.InsertKeywordMatches(ctx, kw.ID, matches); err != nil {
		t.Fatalf("InsertKeywordMatches (repeat): %v", err)
	}
	if err := db.InsertKeywordMatches(ctx, kw.ID, nil); err != nil {
		t.Fatalf("InsertKeywordMatches (empty): %v", err)
	}

	stored, err := db.KeywordMatches(ctx, kw.ID)
	if err != nil {
		t.Fatalf("KeywordMatches: %v", err)
	}
	if len(stored) != 2 || stored[0].ContentID != "a" || stored[1].ContentID != "b" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestQueryNearest_RanksByCosineSimilarity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ch := fixtureChannel(t, db, "fossils")
	now := time.Now().UTC()

	fixtureItem(t, db, "exact", ch, now, []float32{1, 0, 0})
	fixtureItem(t, db, "close", ch, now, []float32{0.9, 0.1, 0})
	fixtureItem(t, db, "orthogonal", ch, now, []float32{0, 1, 0})
	fixtureItem(t, db, "no-vector", ch, now, nil)
	fixtureItem(t, db, "other-dims", ch, now, []float32{1, 0})

	got, err := db.QueryNearest(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("QueryNearest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%+v)", len(got), got)
	}
	if got[0].ContentID != "exact" || got[1].ContentID != "close" {
		t.Errorf("order = %+v", got)
	}
	if got[0].Score < 0.999 {
		t.Errorf("exact score = %f, want ~1", got[0].Score)
	}
	if got[1].Score >= got[0].Score {
		t.Errorf("scores not descending: %+v", got)
	}

	all, err := db.QueryNearest(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("QueryNearest: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len = %d, want 3 items with matching dimensions", len(all))
	}
}

func TestQueryNearest_InvalidVector(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.QueryNearest(context.Background(), nil, 5); err == nil {
		t.Error("expected error for empty query vector")
	}
}

func TestAllowedContent_ExcludesBlockedChannelsAndMatches(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	chA := fixtureChannel(t, db, "alpha")
	chB := fixtureChannel(t, db, "beta")
	fixtureItem(t, db, "A", chA, now.Add(-3*time.Hour), nil)
	fixtureItem(t, db, "B", chB, now.Add(-2*time.Hour), nil)
	fixtureItem(t, db, "C", chA, now.Add(-1*time.Hour), nil)

	items, err := db.AllowedContent(ctx, "user-1", 50, 0)
	if err != nil {
		t.Fatalf("AllowedContent: %v", err)
	}
	if got := feedIDs(items); !equalIDs(got, []string{"C", "B", "A"}) {
		t.Fatalf("unfiltered feed = %v, want [C B A]", got)
	}
	if items[0].ChannelName != "alpha" {
		t.Errorf("channel name = %q, want alpha", items[0].ChannelName)
	}

	if _, err := db.BlockChannel(ctx, "user-1", chB); err != nil {
		t.Fatalf("BlockChannel: %v", err)
	}
	kw, _ := db.GetOrCreateKeyword(ctx, "alpha things")
	if _, err := db.LinkBlockedKeyword(ctx, "user-1", kw.ID); err != nil {
		t.Fatalf("LinkBlockedKeyword: %v", err)
	}
	if err := db.InsertKeywordMatches(ctx, kw.ID, []models.ContentScore{{ContentID: "C", Score: 0.9}}); err != nil {
		t.Fatalf("InsertKeywordMatches: %v", err)
	}

	items, err = db.AllowedContent(ctx, "user-1", 50, 0)
	if err != nil {
		t.Fatalf("AllowedContent: %v", err)
	}
	if got := feedIDs(items); !equalIDs(got, []string{"A"}) {
		t.Errorf("filtered feed = %v, want [A]", got)
	}
	total, err := db.CountAllowedContent(ctx, "user-1")
	if err != nil || total != 1 {
		t.Errorf("CountAllowedContent = %d, %v; want 1", total, err)
	}

	// Another user's blocks do not leak.
	items, _ = db.AllowedContent(ctx, "user-2", 50, 0)
	if len(items) != 3 {
		t.Errorf("user-2 feed len = %d, want 3", len(items))
	}
}

func TestAllowedContent_Pagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ch := fixtureChannel(t, db, "paged")
	now := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"i1", "i2", "i3", "i4", "i5"} {
		fixtureItem(t, db, id, ch, now.Add(time.Duration(i)*time.Minute), nil)
	}

	var sizes []int
	var seen []string
	for page := 1; page <= 3; page++ {
		items, err := db.AllowedContent(ctx, "user-1", 2, (page-1)*2)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		sizes = append(sizes, len(items))
		seen = append(seen, feedIDs(items)...)
	}
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Errorf("page sizes = %v, want [2 2 1]", sizes)
	}
	if !equalIDs(seen, []string{"i5", "i4", "i3", "i2", "i1"}) {
		t.Errorf("order = %v", seen)
	}
}

func TestAllowedContent_TiesBrokenByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ch := fixtureChannel(t, db, "ties")
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	fixtureItem(t, db, "b", ch, at, nil)
	fixtureItem(t, db, "a", ch, at, nil)

	items, err := db.AllowedContent(ctx, "u", 10, 0)
	if err != nil {
		t.Fatalf("AllowedContent: %v", err)
	}
	if got := feedIDs(items); !equalIDs(got, []string{"a", "b"}) {
		t.Errorf("order = %v, want [a b]", got)
	}
}

func TestChannels_BlockUnblock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ch := fixtureChannel(t, db, "gamma")

	created, err := db.BlockChannel(ctx, "u", ch)
	if err != nil || !created {
		t.Fatalf("BlockChannel: %v %v, want a new block", created, err)
	}
	created, err = db.BlockChannel(ctx, "u", ch)
	if err != nil || created {
		t.Fatalf("BlockChannel (repeat): %v %v, want no change", created, err)
	}
	if _, err := db.BlockChannel(ctx, "u", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("BlockChannel(missing) = %v, want ErrNotFound", err)
	}

	list, err := db.ListChannelsForUser(ctx, "u")
	if err != nil {
		t.Fatalf("ListChannelsForUser: %v", err)
	}
	if len(list) != 1 || !list[0].IsBlocked {
		t.Errorf("list = %+v", list)
	}

	removed, err := db.UnblockChannel(ctx, "u", ch)
	if err != nil || !removed {
		t.Fatalf("UnblockChannel: %v %v", removed, err)
	}
	removed, err = db.UnblockChannel(ctx, "u", ch)
	if err != nil || removed {
		t.Errorf("UnblockChannel (repeat): %v %v", removed, err)
	}
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	calls := 0
	embed := func(_ context.Context, _ string) ([]float32, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("provider down")
		}
		return []float32{float32(calls), 1, 0}, nil
	}

	n, err := db.SeedDemoData(ctx, embed)
	if err != nil {
		t.Fatalf("SeedDemoData: %v", err)
	}
	if n == 0 {
		t.Fatal("nothing seeded")
	}
	again, err := db.SeedDemoData(ctx, embed)
	if err != nil || again != 0 {
		t.Errorf("second seed = %d, %v; want 0", again, err)
	}

	nearest, err := db.QueryNearest(ctx, []float32{1, 1, 0}, 100)
	if err != nil {
		t.Fatalf("QueryNearest: %v", err)
	}
	if len(nearest) != n-1 {
		t.Errorf("vectors stored = %d, want %d", len(nearest), n-1)
	}
}

func TestVectorLiteral(t *testing.T) {
	got, err := vectorLiteral([]float32{0.5, -1, 2})
	if err != nil {
		t.Fatalf("vectorLiteral: %v", err)
	}
	if got != "[0.5,-1,2]" {
		t.Errorf("vectorLiteral = %q", got)
	}
	if _, err := vectorLiteral(nil); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestPersistenceError(t *testing.T) {
	base := errors.New("disk full")
	err := persistErr("insert", base)
	if !IsPersistenceError(err) {
		t.Error("IsPersistenceError = false")
	}
	if !errors.Is(err, base) {
		t.Error("PersistenceError does not unwrap")
	}
	if persistErr("noop", nil) != nil {
		t.Error("persistErr(nil) must be nil")
	}
}
