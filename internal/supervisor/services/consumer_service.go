// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package services

import (
	"context"
	"errors"
)

// ConsumerRunner is satisfied by *pipeline.Consumer.
type ConsumerRunner interface {
	Run(ctx context.Context) error
}

// KeywordConsumerService runs the keyword moderation consumer. A consumer
// error makes suture restart it with backoff.
type KeywordConsumerService struct {
	consumer ConsumerRunner
	name     string
}

// NewKeywordConsumerService creates the service.
func NewKeywordConsumerService(consumer ConsumerRunner) *KeywordConsumerService {
	return &KeywordConsumerService{consumer: consumer, name: "keyword-consumer"}
}

// Serve implements suture.Service.
func (s *KeywordConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		// the router stopped on its own; let suture start a new one
		return errors.New("keyword consumer stopped unexpectedly")
	}
	return err
}

// String implements fmt.Stringer.
func (s *KeywordConsumerService) String() string {
	return s.name
}
