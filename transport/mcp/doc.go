// Package mcp exposes room administration as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request against
// the REST API, so the MCP server can run in-process (POST /mcp) or as a
// separate stdio process pointed at a running server.
//
// MCP Tools:
//   - create_room: Create a room from bounds or a preset
//   - get_room: Room state with players ranked by progress
//   - list_rooms: Live rooms, optional state filter
//   - list_presets: Named room configurations
//   - server_health: Room and connection counts
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
