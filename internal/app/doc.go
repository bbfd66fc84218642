// Package app provides application initialization and lifecycle management.
// It wires configuration, logging, observability, the dataset pipeline, and
// the HTTP surface together at startup and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Create the table fetcher and dataset service
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Warm the dataset cache in the background
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM so that active requests are
// completed, telemetry providers are flushed, and the log file is closed.
//
// All initialization errors are returned to the caller for proper
// handling. The app does not call os.Exit() directly, allowing
// the main function to control the exit process.
package app
