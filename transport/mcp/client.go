package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Wordle Rooms",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Wordle Rooms - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Rooms hold a small group of players who race through the same number of
Wordle rounds. Players connect over WebSocket; these tools manage rooms
from the operator side.

AVAILABLE TOOLS:
- create_room: Create a room from explicit bounds or a preset
- get_room: Get a room's state and players
- list_rooms: List live rooms, optionally filtered by state
- list_presets: List named room configurations
- server_health: Room and connection counts

create_room returns the WebSocket URL players use to join.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new room. Pass max_rounds and max_players together, or a preset name, or nothing for the default preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"max_rounds": map[string]interface{}{
					"type":        "integer",
					"description": "Rounds each player must complete (4-100)",
				},
				"max_players": map[string]interface{}{
					"type":        "integer",
					"description": "Seats in the room (2-50)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset id, see list_presets (optional)",
				},
			},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get the state, players and scores of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Six character room id",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List live rooms, oldest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"state": map[string]interface{}{
					"type":        "string",
					"description": "Only rooms in this state",
					"enum":        []string{string(engine.WaitingForPlayers), string(engine.InProgress), string(engine.Completed)},
				},
			},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List the named room configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_health",
		Description: "Report live room and connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHealth)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if kind := errResp["errorType"]; kind != "" {
				return fmt.Errorf("%s (%s)", msg, kind)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// joinURL is the WebSocket URL a player opens to join roomID.
func (c *Client) joinURL(roomID string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/wordle?roomId=" + url.QueryEscape(roomID) + "&playerName=<name>"
}

// Tool handlers

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	rounds, hasRounds := intArg(args, "max_rounds")
	players, hasPlayers := intArg(args, "max_players")
	if hasRounds != hasPlayers {
		return mcp.NewToolResultError("max_rounds and max_players must be given together"), nil
	}
	if hasRounds {
		body["maxRounds"] = rounds
		body["maxPlayers"] = players
	} else if preset, _ := args["preset"].(string); preset != "" {
		body["preset"] = preset
	}

	var created struct {
		RoomID string            `json:"roomID"`
		Room   *service.RoomInfo `json:"room"`
	}
	if err := c.apiCall(ctx, "POST", "/api/v1/room", body, &created); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Created room: %s\n", created.RoomID)
	if created.Room != nil {
		fmt.Fprintf(&result, "Rounds: %d, Seats: %d\n", created.Room.MaxRounds, created.Room.MaxPlayers)
	}
	fmt.Fprintf(&result, "Join: %s\n", c.joinURL(created.RoomID))
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	roomID, _ := args["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var room service.RoomInfo
	err := c.apiCall(ctx, "GET", "/api/v1/rooms/"+url.PathEscape(roomID), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/v1/rooms"
	if state, _ := request.GetArguments()["state"].(string); state != "" {
		path += "?state=" + url.QueryEscape(state)
	}

	var response struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		result += fmt.Sprintf("- %s %s, %d/%d players, %d rounds (Created: %s)\n",
			r.ID, r.State, r.PlayerCount, r.MaxPlayers, r.MaxRounds, r.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Presets []*service.PresetInfo `json:"presets"`
	}
	if err := c.apiCall(ctx, "GET", "/api/v1/presets", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Presets:\n\n"
	for _, p := range response.Presets {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Rounds: %d, Seats: %d\n\n",
			p.ID, p.Name, p.Description, p.MaxRounds, p.MaxPlayers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var health struct {
		Status      string `json:"status"`
		Rooms       int    `json:"rooms"`
		Connections int    `json:"connections"`
	}
	if err := c.apiCall(ctx, "GET", "/healthz", nil, &health); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nRooms: %d\nConnections: %d\n",
		health.Status, health.Rooms, health.Connections)), nil
}

// intArg reads a numeric tool argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Formatting helpers

func formatRoom(room *service.RoomInfo) string {
	var result strings.Builder

	fmt.Fprintf(&result, "Room: %s\n", room.ID)
	fmt.Fprintf(&result, "State: %s\n", room.State)
	fmt.Fprintf(&result, "Rounds: %d, Seats: %d/%d\n", room.MaxRounds, room.PlayerCount, room.MaxPlayers)
	fmt.Fprintf(&result, "Created: %s\n", room.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(room.Players) == 0 {
		result.WriteString("\nNo players yet\n")
		return result.String()
	}

	players := make([]engine.Player, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].CurrentRound != players[j].CurrentRound {
			return players[i].CurrentRound > players[j].CurrentRound
		}
		return players[i].Score > players[j].Score
	})

	result.WriteString("\nPlayers:\n")
	for _, p := range players {
		fmt.Fprintf(&result, "- %s: round %d/%d, score %d\n", p.Name, p.CurrentRound, room.MaxRounds, p.Score)
	}

	if len(room.CompletedPlayers) > 0 {
		names := make([]string, 0, len(room.CompletedPlayers))
		for _, p := range room.CompletedPlayers {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&result, "\nFinished: %s\n", strings.Join(names, ", "))
	}

	return result.String()
}
