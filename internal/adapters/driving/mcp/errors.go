// Package mcp provides an MCP (Model Context Protocol) server adapter for docask.
// It lets AI assistants ask questions of a user's documents and list the
// registered users.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
