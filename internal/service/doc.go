// Package service implements the netintent workflows.
//
// # Services
//
// SyncEngine keeps the intended-configuration repository in step with
// rendered templates. Each attempt renders, fetches the stored file, decides
// between no-op, create and update, and writes only when content changed.
// Updates carry the revision token read just before, so a concurrent change
// fails the write instead of being overwritten.
//
// CheckService runs a test catalog: it polls each host once per test class
// through an Executor, normalizes the output with the class's extractor and
// evaluates the catalog's checks against the records.
//
// # Event System
//
// Both services publish their results on an EventBus. Publishing never
// blocks; slow subscribers miss events.
package service
