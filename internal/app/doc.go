// Package app wires the ridership dashboard together: configuration, logging,
// telemetry, the dataset, services, HTTP routes and the websocket hub.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Load the ridership CSV into an immutable dataset
//	4. Create the dashboard, health and websocket services
//	5. Build the router and the HTTP server
//
// A dataset that cannot be loaded aborts initialization; the error satisfies
// dataprocessing.IsLoadError so the caller can report it and exit.
//
// # Routes
//
//	GET  /                      dashboard page
//	GET  /static/*              page assets
//	GET  /ws                    live dashboard updates
//	GET  /metrics               Prometheus metrics
//	GET  /api/health[/ready|/live|/detailed], /api/version
//	GET  /api/dataset, /api/dashboard, /api/charts/{chart}[/png], /api/export
//	POST /api/client-log
//	GET  /api/debug/*           development only
//
// # Graceful Shutdown
//
// Serve returns after its context is cancelled. Connected pages receive a
// system:status frame, sockets are closed, in-flight requests drain and
// metrics are flushed.
package app
