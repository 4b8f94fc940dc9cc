// Package repositories implements SQLite persistence for the run history.
//
// Each repository handles insert and read operations for one entity type.
// History rows are immutable once written; there are no updates or deletes.
//
// Key Implementations:
//   - [RunRepository] : Sync run persistence ordered by start time
//   - [RecordRepository] : Per-file track records grouped by run
//   - [HistoryRecorder] : Persists a finished run and its records in one transaction
//
// The history is purely observational. Nothing in the sync pipeline reads it
// back; playlist membership always comes from the live catalog.
package repositories
