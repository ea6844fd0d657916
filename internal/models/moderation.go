// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package models holds the catalog and moderation records shared by the
// store, the engine and the API.
package models

import "time"

// Channel is a content publisher.
type Channel struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChannelWithBlock is a channel annotated with the caller's block state.
type ChannelWithBlock struct {
	Channel
	IsBlocked bool `json:"is_blocked"`
}

// ContentItem is one catalog entry (a video in the original catalog).
type ContentItem struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	ExternalID   string    `json:"external_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedItem is a ContentItem as served by the feed, joined to its channel.
type FeedItem struct {
	VideoID      string    `json:"video_id"`
	ExternalID   string    `json:"external_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ChannelID    string    `json:"channel_id"`
	ChannelName  string    `json:"channel_name"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Keyword is a blocked word. Rows are immutable and shared by every user
// that blocks the exact same word.
type Keyword struct {
	ID        string    `json:"id"`
	Word      string    `json:"word"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockedKeyword links a user to a Keyword, joined to the word for listing.
type BlockedKeyword struct {
	ID     string `json:"id"` // keyword ID
	Word   string `json:"word"`
	UserID string `json:"user_id"`
}

// KeywordMatch is one content item judged similar to a keyword.
type KeywordMatch struct {
	KeywordID       string  `json:"keyword_id"`
	ContentID       string  `json:"content_id"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ContentScore is a content item's cosine similarity to a query vector.
type ContentScore struct {
	ContentID string  `json:"content_id"`
	Score     float64 `json:"score"`
}
