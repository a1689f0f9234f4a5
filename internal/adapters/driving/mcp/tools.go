package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docask/internal/connectors/google/drive"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the user's documents"`
	User  string `json:"user" jsonschema:"the registered user asking; decides which folders are searched"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	User    string         `json:"user"`
	Mode    string         `json:"mode"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is a document the answer was built from.
type SourceOutput struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Link     string `json:"link,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question from the documents a registered user may see: " +
			"their own Drive folder, the shared team folder and the local document directory",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation. Errors reach the assistant
// as tool errors; an unknown user error lists the valid names.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answers.Ask(ctx, input.Query, input.User)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		User:    answer.User,
		Mode:    string(answer.Mode),
		Sources: make([]SourceOutput, len(answer.Documents)),
	}
	for i := range answer.Documents {
		doc := answer.Documents[i]
		output.Sources[i] = SourceOutput{
			Filename: doc.Filename,
			Source:   doc.SourceLabel,
			Link:     drive.DocumentLink(doc),
		}
	}

	return nil, output, nil
}
