// Package repository defines the storage interfaces used by the sync engine.
//
// # Content Repository
//
// ContentRepository is the remote, revisioned text store that holds intended
// device configuration. Reads return the file content together with a
// revision token; writes without a token create the file and writes with a
// token update exactly that revision. The gitea subpackage implements it
// against the Gitea contents API.
//
// # Journal
//
// Journal records every sync attempt, successful or not. The sqlite
// subpackage implements it with an embedded SQLite database.
package repository
