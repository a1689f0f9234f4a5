// Package driving holds the ports the command line, HTTP API and MCP
// server call into. The services package implements them.
package driving
