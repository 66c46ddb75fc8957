// file: internal/mcp/handlers_core.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/clevermcp/internal/mcp/router"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
)

// SupportedProtocolVersions lists the protocol revisions this server speaks, newest first.
var SupportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

// negotiateProtocolVersion echoes the client's version when supported and
// otherwise offers the newest one.
func negotiateProtocolVersion(requested string) string {
	for _, v := range SupportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return SupportedProtocolVersions[0]
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.InitializeRequest
	if err := decodeParams(MethodInitialize, params, &req); err != nil {
		return nil, err
	}

	version := negotiateProtocolVersion(req.ProtocolVersion)
	s.logger.WithContext(ctx).Info("Client initializing.",
		"client_name", req.ClientInfo.Name,
		"client_version", req.ClientInfo.Version,
		"requested_protocol", req.ProtocolVersion,
		"negotiated_protocol", version)

	return router.Result(mcptypes.InitializeResult{
		ProtocolVersion: version,
		ServerInfo: mcptypes.Implementation{
			Name:    s.config.Server.Name,
			Version: s.config.Server.Version,
		},
		Capabilities: mcptypes.ServerCapabilities{
			Tools:     &mcptypes.ToolsCapability{},
			Resources: &mcptypes.ResourcesCapability{},
			Prompts:   &mcptypes.PromptsCapability{},
		},
		Instructions: s.config.Server.Instructions,
	})
}

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return router.Result(mcptypes.EmptyResult{})
}

func (s *Server) handleNotificationsInitialized(ctx context.Context, _ json.RawMessage) error {
	s.logger.WithContext(ctx).Info("Client reported initialization complete.")
	return nil
}

// handleNotificationsCancelled only logs: in-flight fetches run to completion.
func (s *Server) handleNotificationsCancelled(ctx context.Context, params json.RawMessage) error {
	var p struct {
		RequestID json.RawMessage `json:"requestId"`
		Reason    string          `json:"reason,omitempty"`
	}
	_ = json.Unmarshal(params, &p)
	s.logger.WithContext(ctx).Debug("Client cancelled a request.", "request_id", string(p.RequestID), "reason", p.Reason)
	return nil
}
