// Package daemon coordinates the long-running sheetwatch process.
//
// It wires configuration, the analysis store, and the watch-folder controller
// into a single lifecycle with flock-based locking to prevent multiple
// instances. Orchestration logic lives here; the individual pipeline stages
// live in their own packages.
package daemon
