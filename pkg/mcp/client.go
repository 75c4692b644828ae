// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/kaidrach/agentrun/pkg/errs"
)

const clientName = "agentrun"

// clientVersion is reported to servers during the initialize
// handshake; it has no bearing on this package's own versioning.
const clientVersion = "0.1.0"

// Client owns one connection to a single MCP server. It caches the
// server's tool and resource listings at connect time; Manager is
// responsible for refreshing that cache by reconnecting.
type Client struct {
	name   string
	config ServerConfig

	mu        sync.RWMutex
	status    ConnectionStatus
	conn      *mcpclient.Client
	tools     []ToolDefinition
	resources []ResourceDefinition
}

// NewClient builds an unconnected client for one server entry.
func NewClient(name string, config ServerConfig) *Client {
	return &Client{name: name, config: config, status: StatusDisconnected}
}

// Connect spawns the server (stdio only), performs the MCP
// initialize handshake, and refreshes the tool and resource caches.
// Listing tools is mandatory: a server that can't report its tools is
// not usable. Listing resources is best-effort: servers without a
// resources capability are expected to fail here, so that failure is
// swallowed rather than surfaced as a connection failure.
func (c *Client) Connect(ctx context.Context) error {
	if c.config.Transport != TransportStdio {
		return &errs.MCPConnectionFailedError{Message: "SSE transport is not implemented; use stdio"}
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	env := make([]string, 0, len(c.config.Env))
	for k, v := range c.config.Env {
		env = append(env, k+"="+v)
	}

	conn, err := mcpclient.NewStdioMCPClient(c.config.Command, env, c.config.Args...)
	if err != nil {
		return &errs.MCPConnectionFailedError{Message: fmt.Sprintf("spawn %s: %v", c.config.Command, err)}
	}

	if err := conn.Start(ctx); err != nil {
		_ = conn.Close()
		return &errs.MCPConnectionFailedError{Message: fmt.Sprintf("start %s: %v", c.config.Command, err)}
	}

	initReq := mcpsdk.InitializeRequest{}
	initReq.Params.ClientInfo = mcpsdk.Implementation{Name: clientName, Version: clientVersion}
	initReq.Params.ProtocolVersion = mcpsdk.LATEST_PROTOCOL_VERSION
	if _, err := conn.Initialize(ctx, initReq); err != nil {
		_ = conn.Close()
		return &errs.MCPConnectionFailedError{Message: fmt.Sprintf("initialize %s: %v", c.name, err)}
	}

	toolsResp, err := conn.ListTools(ctx, mcpsdk.ListToolsRequest{})
	if err != nil {
		_ = conn.Close()
		return &errs.MCPConnectionFailedError{Message: fmt.Sprintf("list tools on %s: %v", c.name, err)}
	}
	tools := make([]ToolDefinition, 0, len(toolsResp.Tools))
	for _, t := range toolsResp.Tools {
		tools = append(tools, ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: convertSchema(t.InputSchema),
		})
	}

	var resources []ResourceDefinition
	if resResp, err := conn.ListResources(ctx, mcpsdk.ListResourcesRequest{}); err == nil {
		resources = make([]ResourceDefinition, 0, len(resResp.Resources))
		for _, r := range resResp.Resources {
			resources = append(resources, ResourceDefinition{
				URI:         r.URI,
				Name:        r.Name,
				Description: r.Description,
				MimeType:    r.MIMEType,
			})
		}
	}

	c.mu.Lock()
	c.conn = conn
	c.tools = tools
	c.resources = resources
	c.status = StatusConnected
	c.mu.Unlock()

	return nil
}

// Connected reports whether the last Connect call succeeded and
// Close hasn't been called since.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status == StatusConnected
}

// Tools returns the tool listing cached at connect time.
func (c *Client) Tools() []ToolDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ToolDefinition(nil), c.tools...)
}

// Resources returns the resource listing cached at connect time.
func (c *Client) Resources() []ResourceDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ResourceDefinition(nil), c.resources...)
}

// State snapshots this client's current connection status.
func (c *Client) State() ServerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ServerState{Name: c.name, Config: c.config, Status: c.status}
}

// CallTool invokes a tool this server exposes, under its unqualified
// (server-local) name.
func (c *Client) CallTool(ctx context.Context, tool string, arguments map[string]any) (string, bool, error) {
	c.mu.RLock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.RUnlock()
	if !connected || conn == nil {
		return "", false, &errs.MCPConnectionFailedError{Message: fmt.Sprintf("%s is not connected", c.name)}
	}

	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	req := mcpsdk.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = arguments

	resp, err := conn.CallTool(ctx, req)
	if err != nil {
		return "", false, &errs.MCPToolError{Message: fmt.Sprintf("%s: %v", tool, err)}
	}

	var texts []string
	for _, content := range resp.Content {
		texts = append(texts, renderContent(content))
	}
	out, err := joinContent(texts, resp)
	if err != nil {
		return "", false, err
	}
	return out, resp.IsError, nil
}

// renderContent flattens one result block to text. Text passes
// through; everything else becomes a placeholder describing what the
// server returned, since tool results travel back to the model as
// plain tool_result strings.
func renderContent(content mcpsdk.Content) string {
	switch c := content.(type) {
	case mcpsdk.TextContent:
		return c.Text
	case mcpsdk.ImageContent:
		return fmt.Sprintf("[image %s, %d bytes base64]", c.MIMEType, len(c.Data))
	case mcpsdk.AudioContent:
		return fmt.Sprintf("[audio %s, %d bytes base64]", c.MIMEType, len(c.Data))
	case mcpsdk.EmbeddedResource:
		switch r := c.Resource.(type) {
		case mcpsdk.TextResourceContents:
			return r.Text
		case mcpsdk.BlobResourceContents:
			return fmt.Sprintf("[resource %s (%s), %d bytes base64]", r.URI, r.MIMEType, len(r.Blob))
		}
		return "[resource]"
	case mcpsdk.ResourceLink:
		if c.Description != "" {
			return fmt.Sprintf("[resource link %s: %s]", c.URI, c.Description)
		}
		return fmt.Sprintf("[resource link %s]", c.URI)
	default:
		raw, err := json.Marshal(content)
		if err != nil {
			return "[unrenderable content]"
		}
		return string(raw)
	}
}

// joinContent joins the rendered blocks, falling back to a JSON dump
// of the raw content when a server returns an empty content list.
func joinContent(texts []string, resp *mcpsdk.CallToolResult) (string, error) {
	if len(texts) > 0 {
		out := texts[0]
		for _, t := range texts[1:] {
			out += "\n" + t
		}
		return out, nil
	}
	raw, err := json.Marshal(resp.Content)
	if err != nil {
		return "", &errs.MCPProtocolError{Message: fmt.Sprintf("encode result: %v", err)}
	}
	return string(raw), nil
}

// ReadResource fetches one resource's contents by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (string, string, error) {
	c.mu.RLock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.RUnlock()
	if !connected || conn == nil {
		return "", "", &errs.MCPConnectionFailedError{Message: fmt.Sprintf("%s is not connected", c.name)}
	}

	ctx, cancel := context.WithTimeout(ctx, ResourceTimeout)
	defer cancel()

	req := mcpsdk.ReadResourceRequest{}
	req.Params.URI = uri
	resp, err := conn.ReadResource(ctx, req)
	if err != nil {
		return "", "", &errs.MCPResourceNotFoundError{URI: uri}
	}

	for _, content := range resp.Contents {
		switch tc := content.(type) {
		case mcpsdk.TextResourceContents:
			return tc.Text, tc.MIMEType, nil
		case mcpsdk.BlobResourceContents:
			return fmt.Sprintf("[binary resource %s, %d bytes base64]", uri, len(tc.Blob)), tc.MIMEType, nil
		}
	}
	return "", "", &errs.MCPProtocolError{Message: fmt.Sprintf("resource %s has no content", uri)}
}

// Close releases the underlying connection. It is safe to call on an
// already-closed or never-connected client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		c.status = StatusDisconnected
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.tools = nil
	c.resources = nil
	c.status = StatusDisconnected
	return err
}

// convertSchema normalizes the SDK's schema type into the plain
// map[string]any the rest of this runtime's tool definitions use.
func convertSchema(schema mcpsdk.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
