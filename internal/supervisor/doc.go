// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

/*
Package supervisor runs Sieve's long-lived services under a suture v4 tree.

	RootSupervisor ("sieve")
	├── DataSupervisor ("data-layer")
	│   ├── RateLimitSweepService
	│   └── AuditRetentionService
	├── MessagingSupervisor ("messaging-layer")
	│   └── KeywordConsumerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a crashing keyword consumer backs
off without taking the HTTP server with it. Supervisor events are logged
through sutureslog into the process-wide zerolog logger.
*/
package supervisor
