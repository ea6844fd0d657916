// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

/*
Package main is the entry point for the Sieve server.

Sieve filters a video catalog per user. Users block channels outright or
submit keywords; a keyword is embedded, matched by cosine similarity against
the catalog's stored embeddings, and every matched item disappears from that
user's feed.

# Application Architecture

	RootSupervisor ("sieve")
	├── DataSupervisor ("data-layer")
	│   └── Rate limit sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   └── Keyword moderation consumer (Watermill router)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, with an slog bridge for suture and Watermill
 3. Database: DuckDB catalog, moderation tables and content embeddings
 4. Embedding client and similarity matcher
 5. Keyword pipeline: transport (in-process or NATS), dispatcher, consumer
 6. Visibility resolver, rate limiter, authentication
 7. HTTP server, started once the consumer is subscribed

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server first by draining it, the consumer finishes its in-flight message,
then the transport and the database are closed.

# Example

	export AUTH_MODE=none
	export EMBEDDING_URL=http://localhost:11434/v1
	export EMBEDDING_MODEL=nomic-embed-text
	export SEED_DEMO_DATA=true
	./sieve
*/
package main
