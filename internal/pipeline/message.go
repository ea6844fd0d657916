// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Message metadata keys.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataUserID        = "user_id"
)

// KeywordSubmitted is published when a user submits a keyword to block.
type KeywordSubmitted struct {
	Word        string    `json:"word"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate checks the fields the consumer relies on.
func (k *KeywordSubmitted) Validate() error {
	if strings.TrimSpace(k.Word) == "" {
		return errors.New("word is required")
	}
	if k.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// newMessage serializes evt into a Watermill message.
func newMessage(evt KeywordSubmitted, correlationID string) (*message.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("serialize keyword submission: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataUserID, evt.UserID)
	if correlationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, correlationID)
	}
	return msg, nil
}

// decodeMessage parses and validates a KeywordSubmitted payload.
func decodeMessage(msg *message.Message) (KeywordSubmitted, error) {
	var evt KeywordSubmitted
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return evt, fmt.Errorf("deserialize keyword submission: %w", err)
	}
	if err := evt.Validate(); err != nil {
		return evt, fmt.Errorf("invalid keyword submission: %w", err)
	}
	return evt, nil
}
