// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package matcher

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/sieve/internal/embedding"
	"github.com/tomtom215/sieve/internal/models"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

type fakeIndex struct {
	results   []models.ContentScore
	err       error
	lastLimit int
	calls     int
}

func (f *fakeIndex) QueryNearest(_ context.Context, _ []float32, limit int) ([]models.ContentScore, error) {
	f.calls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func TestMatch_FiltersByThresholdAndSorts(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{results: []models.ContentScore{
		{ContentID: "A", Score: 0.82},
		{ContentID: "B", Score: 0.91},
		{ContentID: "C", Score: 0.40},
	}}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{})

	got, err := m.Match(context.Background(), "dinosaur", MatchOptions{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 2 || got[0].ContentID != "B" || got[1].ContentID != "A" {
		t.Errorf("got %+v, want [B A]", got)
	}
	if idx.lastLimit != DefaultLimit {
		t.Errorf("limit = %d, want %d", idx.lastLimit, DefaultLimit)
	}
}

func TestMatch_NothingAboveThreshold(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{results: []models.ContentScore{{ContentID: "A", Score: 0.3}}}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{})

	got, err := m.Match(context.Background(), "quantum", MatchOptions{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestMatch_StableOnTies(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{results: []models.ContentScore{
		{ContentID: "first", Score: 0.8},
		{ContentID: "second", Score: 0.8},
		{ContentID: "best", Score: 0.95},
	}}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{})

	got, err := m.Match(context.Background(), "w", MatchOptions{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	want := []string{"best", "first", "second"}
	for i, id := range want {
		if got[i].ContentID != id {
			t.Fatalf("got %+v, want order %v", got, want)
		}
	}
}

func TestMatch_Overrides(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{results: []models.ContentScore{
		{ContentID: "A", Score: 0.7},
		{ContentID: "B", Score: 0.6},
		{ContentID: "C", Score: 0.5},
	}}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{Limit: 10, Threshold: 0.9})

	got, err := m.Match(context.Background(), "w", MatchOptions{Limit: 2, Threshold: 0.55})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if idx.lastLimit != 2 {
		t.Errorf("limit = %d, want 2", idx.lastLimit)
	}
	if len(got) != 2 {
		t.Errorf("got %+v, want 2 matches", got)
	}
	if d := m.Defaults(); d.Limit != 10 || d.Threshold != 0.9 {
		t.Errorf("Defaults = %+v", d)
	}
}

func TestMatch_DropsNaN(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{results: []models.ContentScore{
		{ContentID: "nan", Score: math.NaN()},
		{ContentID: "ok", Score: 0.9},
	}}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{})

	got, err := m.Match(context.Background(), "w", MatchOptions{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 1 || got[0].ContentID != "ok" {
		t.Errorf("got %+v", got)
	}
}

func TestMatch_EmbeddingFailure(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{}
	provider := &embedding.ProviderError{Op: "response", StatusCode: 503, Err: errors.New("unavailable")}
	m := New(&fakeEmbedder{err: provider}, idx, MatchOptions{})

	_, err := m.Match(context.Background(), "w", MatchOptions{})
	if !errors.Is(err, provider) {
		t.Errorf("err = %v, want provider error passthrough", err)
	}
	if idx.calls != 0 {
		t.Error("index queried after embedding failure")
	}

	m = New(&fakeEmbedder{err: errors.New("plain")}, idx, MatchOptions{})
	if _, err := m.Match(context.Background(), "w", MatchOptions{}); !embedding.IsProviderError(err) {
		t.Errorf("err = %v, want wrapped ProviderError", err)
	}
}

func TestMatch_IndexFailure(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{err: errors.New("index offline")}
	m := New(&fakeEmbedder{vec: []float32{1}}, idx, MatchOptions{})

	_, err := m.Match(context.Background(), "w", MatchOptions{})
	if !embedding.IsProviderError(err) {
		t.Errorf("err = %v, want ProviderError", err)
	}
}
