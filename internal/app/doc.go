// Package app holds the conversation panel coordinator and the shared
// runtime pieces behind it.
//
// Responsibilities:
// - Orchestrate the domain services behind one panel-wide lock.
// - Fan notification events out to subscribers with replayable history.
// - Track operation metrics for the snapshot endpoint and Prometheus.
//
// Non-responsibilities:
// - JSON-RPC/HTTP protocol handling and endpoint-level mapping.
package app
