// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

// KeywordRequest is the body of POST /api/v1/keywords.
type KeywordRequest struct {
	Word string `json:"word" validate:"required,max=100,keyword"`
}

// KeywordAccepted is the 202 payload of a keyword submission.
type KeywordAccepted struct {
	Status string `json:"status"`
	Word   string `json:"word"`
}

// ChannelBlockResult is the payload of the channel block endpoints.
type ChannelBlockResult struct {
	ChannelID string `json:"channel_id"`
	Blocked   bool   `json:"blocked"`
	Changed   bool   `json:"changed"`
}
