package mcp

import (
	"github.com/custodia-labs/docask/internal/core/ports/driving"
)

// Ports are the services the MCP server calls.
type Ports struct {
	// Answers runs the question answering pipeline.
	Answers driving.AnswerService

	// Version is reported to clients. Optional.
	Version string
}

// Validate checks the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
