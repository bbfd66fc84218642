// Package http provides the HTTP transport layer of the dashboard service.
// It exposes the pipeline's in-process data contract as JSON endpoints:
// the full normalized dataset for table display, range-filtered subsets
// for charts, summary metrics for KPI widgets, and an upload endpoint for
// user-supplied tables.
//
// Handlers follow the chi sub-router pattern: each handler owns a Routes()
// method mounted by the application, validates its inputs, delegates to a
// service interface, and renders errors through the RFC 7807 error
// handler.
package http
