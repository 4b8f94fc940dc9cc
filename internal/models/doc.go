// Package models defines domain entities and persistence interfaces for the
// chartsync run history.
//
// The package contains the database-backed entities written after every sync
// run:
//   - [SyncRun] : One pipeline execution with its outcome counts
//   - [TrackRecord] : One per-file outcome belonging to a run
//
// All persistent entities implement the Model interface providing identity,
// creation timestamps, and validation. The Repository[T] interface defines
// the data access operations for the entity types.
package models
