package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for docask resources.
	uriScheme = "docask://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "users",
		Name:        "users",
		Description: "Registered users who may ask questions",
		MIMEType:    "application/json",
	}, s.handleUsersResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Drive connectivity, local directory and language model status",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleUsersResource returns the sorted user names.
func (s *Server) handleUsersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	users := s.ports.Answers.Users()
	if users == nil {
		users = []string{}
	}
	return jsonResource(req.Params.URI, users)
}

// handleStatusResource returns the current readiness report.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status := s.ports.Answers.Status(ctx)

	info := struct {
		GoogleDrive string `json:"google_drive"`
		LocalDir    string `json:"local_dir"`
		AIEnabled   bool   `json:"ai_enabled"`
		AIModel     string `json:"ai_model,omitempty"`
		Users       int    `json:"users"`
	}{
		GoogleDrive: string(status.Remote),
		LocalDir:    status.LocalDir,
		AIEnabled:   status.AIEnabled,
		AIModel:     status.Model,
		Users:       status.Users,
	}
	return jsonResource(req.Params.URI, info)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
