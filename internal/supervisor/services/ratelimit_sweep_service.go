// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/metrics"
)

// Sweeper is satisfied by *ratelimit.Limiter.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// RateLimitSweepService drops identities whose windows emptied, bounding
// the limiter's memory to recently active callers.
type RateLimitSweepService struct {
	limiter  Sweeper
	interval time.Duration
	now      func() time.Time
	name     string
}

// NewRateLimitSweepService creates the service. A non-positive interval
// becomes one minute.
func NewRateLimitSweepService(limiter Sweeper, interval time.Duration) *RateLimitSweepService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RateLimitSweepService{
		limiter:  limiter,
		interval: interval,
		now:      time.Now,
		name:     "ratelimit-sweeper",
	}
}

// Serve implements suture.Service.
func (s *RateLimitSweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *RateLimitSweepService) sweepOnce() {
	removed := s.limiter.Sweep(s.now())
	tracked := s.limiter.Len()
	metrics.RateLimitTrackedIdentities.Set(float64(tracked))
	if removed > 0 {
		logging.Debug().Int("removed", removed).Int("tracked", tracked).Msg("Swept idle rate limit windows")
	}
}

// String implements fmt.Stringer.
func (s *RateLimitSweepService) String() string {
	return s.name
}
