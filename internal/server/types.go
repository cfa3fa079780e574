package server

import "wallet-mcp/internal/tool"

type requestEnvelope struct {
	Type       string         `json:"type"`
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
}

type capabilities struct {
	Tools []tool.Descriptor `json:"tools"`
}

type capabilitiesResponse struct {
	ProtocolVersion string       `json:"protocol_version"`
	Capabilities    capabilities `json:"capabilities"`
}

type resultResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}
