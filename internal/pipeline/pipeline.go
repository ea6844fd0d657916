// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

/*
Package pipeline runs keyword moderation.

A submitted keyword moves through

	MATCHING -> NO_MATCH (only when nothing matched) -> PERSIST_KEYWORD -> PERSIST_MATCHES -> DONE

MATCHING embeds the word and finds similar content. A matcher failure ends
the run with nothing persisted. PERSIST_KEYWORD reuses or creates the keyword
row and links it to the user; an existing link is not an error.
PERSIST_MATCHES stores each matched content item for the keyword. Keywords
with zero matches are still persisted so later catalog additions can be
rematched.

Submissions are detached from the HTTP request: the Dispatcher publishes a
KeywordSubmitted message and the Consumer runs Process in the background.
Outcomes are only logged and counted; failed runs are not retried.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/embedding"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/matcher"
	"github.com/tomtom215/sieve/internal/metrics"
	"github.com/tomtom215/sieve/internal/models"
)

// State is a keyword pipeline stage.
type State string

const (
	StateMatching       State = "MATCHING"
	StateNoMatch        State = "NO_MATCH"
	StatePersistKeyword State = "PERSIST_KEYWORD"
	StatePersistMatches State = "PERSIST_MATCHES"
	StateDone           State = "DONE"
)

// Matcher finds content similar to a word.
type Matcher interface {
	Match(ctx context.Context, word string, opts matcher.MatchOptions) ([]matcher.Match, error)
}

// Store persists keywords, user links and matches.
type Store interface {
	GetOrCreateKeyword(ctx context.Context, word string) (models.Keyword, error)
	LinkBlockedKeyword(ctx context.Context, userID, keywordID string) (bool, error)
	InsertKeywordMatches(ctx context.Context, keywordID string, matches []models.ContentScore) error
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Success       bool
	KeywordID     string
	AffectedCount int
	Message       string
	// State is the last state entered.
	State State
	Err   error
}

// Pipeline processes keyword submissions.
type Pipeline struct {
	matcher Matcher
	store   Store
	opts    matcher.MatchOptions
}

// New creates a Pipeline. opts are passed to every Match call; zero values
// use the matcher defaults.
func New(m Matcher, store Store, opts matcher.MatchOptions) *Pipeline {
	return &Pipeline{matcher: m, store: store, opts: opts}
}

// Process runs the full state machine for one submission.
func (p *Pipeline) Process(ctx context.Context, word, userID string) Outcome {
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("word", word).Str("user_id", userID).Logger()

	out := p.run(ctx, word, userID)

	switch {
	case out.Err != nil && embedding.IsProviderError(out.Err):
		metrics.RecordPipelineOutcome("provider_error", time.Since(start))
		log.Error().Err(out.Err).Str("state", string(out.State)).Msg("Keyword pipeline failed while matching")
	case out.Err != nil:
		metrics.RecordPipelineOutcome("persistence_error", time.Since(start))
		log.Error().Err(out.Err).Str("state", string(out.State)).Msg("Keyword pipeline failed while persisting")
	case out.AffectedCount == 0:
		metrics.RecordPipelineOutcome("no_match", time.Since(start))
		log.Info().Str("keyword_id", out.KeywordID).Msg("Keyword stored without matching content")
	default:
		metrics.RecordPipelineOutcome("matched", time.Since(start))
		log.Info().Str("keyword_id", out.KeywordID).Int("matches", out.AffectedCount).Msg("Keyword processed")
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, word, userID string) Outcome {
	matches, err := p.matcher.Match(ctx, word, p.opts)
	if err != nil {
		return Outcome{State: StateMatching, Message: "matching failed", Err: asProviderError(err)}
	}

	if len(matches) == 0 {
		logging.Ctx(ctx).Debug().Str("word", word).Msg("No content above similarity threshold")
	}

	// Stop before the first write if the run was abandoned while matching.
	if err := ctx.Err(); err != nil {
		state := StateMatching
		if len(matches) == 0 {
			state = StateNoMatch
		}
		return Outcome{State: state, Message: "processing canceled", Err: &embedding.ProviderError{Op: "canceled", Err: err}}
	}

	kw, err := p.store.GetOrCreateKeyword(ctx, word)
	if err != nil {
		return Outcome{State: StatePersistKeyword, Message: "storing keyword failed", Err: asPersistenceError("create keyword", err)}
	}
	if _, err := p.store.LinkBlockedKeyword(ctx, userID, kw.ID); err != nil {
		return Outcome{State: StatePersistKeyword, KeywordID: kw.ID, Message: "linking keyword failed", Err: asPersistenceError("link keyword", err)}
	}

	if len(matches) > 0 {
		scores := make([]models.ContentScore, len(matches))
		for i, m := range matches {
			scores[i] = models.ContentScore{ContentID: m.ContentID, Score: m.Score}
		}
		if err := p.store.InsertKeywordMatches(ctx, kw.ID, scores); err != nil {
			return Outcome{State: StatePersistMatches, KeywordID: kw.ID, Message: "storing matches failed", Err: asPersistenceError("insert matches", err)}
		}
	}

	return Outcome{
		Success:       true,
		KeywordID:     kw.ID,
		AffectedCount: len(matches),
		Message:       fmt.Sprintf("keyword %q blocked, %d matching items", word, len(matches)),
		State:         StateDone,
	}
}

func asProviderError(err error) error {
	if embedding.IsProviderError(err) {
		return err
	}
	return &embedding.ProviderError{Op: "match", Err: err}
}

func asPersistenceError(op string, err error) error {
	if database.IsPersistenceError(err) {
		return err
	}
	return &database.PersistenceError{Op: op, Err: err}
}
