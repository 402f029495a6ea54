// Package server implements the MCP (Model Context Protocol) server for the
// science analysis pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes the pipeline to
// MCP-compatible clients: analyze a single image, launch batch jobs, inspect
// job progress, and query the stored attributes, feature registry, and cost
// ledger.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Analysis:
//   - science_analyze: Run the full pipeline on one image
//   - science_analyze_batch: Launch a background job over a directory
//   - science_job_status: Job counters and per-item errors
//
// Introspection:
//   - science_health: Analyzer contracts plus engine/depth availability
//   - science_index_catalog: Composite index definitions
//   - science_features: Canonical feature registry with filters
//
// Storage:
//   - science_budget: Cost ledger total and recent entries
//   - science_attributes: Stored rows for an analyzed image
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// stdout carries protocol frames only; all logging goes to stderr through
// the injected slog handler.
package server
