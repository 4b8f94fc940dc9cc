// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for chart syncing:
//  1. [ConfirmView] : Review the scan root and target playlist before starting
//  2. [SyncView] : Monitor real-time progress updates with a spinner
//  3. [ResultView] : Display the added, duplicate, and skipped outcome lists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during the run.
package ui
