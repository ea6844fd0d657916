// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

/*
Package services adapts Sieve components to suture's Serve(ctx) error model.

HTTP Server (HTTPServerService):
  - Wraps *http.Server; ListenAndServe runs in a goroutine and Shutdown is
    called with a bounded context when the supervisor stops it
  - Can hold back listening until another service reports ready

Keyword Consumer (KeywordConsumerService):
  - Runs the keyword moderation consumer until its context ends

Rate Limit Sweeper (RateLimitSweepService):
  - Periodically drops idle identities from the sliding-window limiter and
    publishes the tracked identity count

Audit Retention (AuditRetentionService):
  - Prunes moderation audit events past retention at startup and on a timer

Every wrapper implements fmt.Stringer so suture logs a readable name.
*/
package services
