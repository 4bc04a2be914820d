// Package internal documents the Eventura server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response rendering, and routing
// - domain: business logic for accounts, events, and recommendations
// - storage: Postgres repositories and migrations
// - auth, audit, config, email, images, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
