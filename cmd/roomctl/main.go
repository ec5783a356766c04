// Command roomctl is a small operator and player client for a Wordle Rooms
// server. It can create and list rooms over the REST API and join a room
// over WebSocket, printing every envelope the server sends.
//
// Examples:
//
//	roomctl create --rounds 6 --players 3
//	roomctl create --preset party
//	roomctl rooms
//	roomctl join --room K3Q9ZD --name Alice
//
// Inside join, type "start" to start the game, "score N" to finish a round
// with N points, and "quit" to leave.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/wordle-rooms/api"
	"github.com/wricardo/wordle-rooms/game/messages"
	"github.com/wricardo/wordle-rooms/game/service"
)

func main() {
	if err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "roomctl",
		Usage:  "Create, list, and join Wordle rooms",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "Server base URL", Sources: cli.EnvVars("ROOMCTL_SERVER")},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a room from bounds or a preset",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "rounds", Usage: "Rounds per player"},
					&cli.IntFlag{Name: "players", Usage: "Seats in the room"},
					&cli.StringFlag{Name: "preset", Usage: "Preset id"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					req := api.CreateRoomRequest{Preset: cmd.String("preset")}
					if cmd.IsSet("rounds") || cmd.IsSet("players") {
						rounds, players := cmd.Int("rounds"), cmd.Int("players")
						req.MaxRounds, req.MaxPlayers = &rounds, &players
					}
					return createRoom(ctx, cmd.String("server"), req, out)
				},
			},
			{
				Name:  "rooms",
				Usage: "List live rooms",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return listRooms(ctx, cmd.String("server"), out)
				},
			},
			{
				Name:  "join",
				Usage: "Join a room and play from the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "room", Required: true, Usage: "Room id"},
					&cli.StringFlag{Name: "name", Required: true, Usage: "Player name"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return joinRoom(ctx, cmd.String("server"), cmd.String("room"), cmd.String("name"), in, out)
				},
			},
		},
	}
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// lockedWriter serializes writes from the reader and input goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func doJSON(ctx context.Context, method, target string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.ErrorType, errResp.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func createRoom(ctx context.Context, server string, req api.CreateRoomRequest, out io.Writer) error {
	var resp api.CreateRoomResponse
	if err := doJSON(ctx, http.MethodPost, strings.TrimRight(server, "/")+"/api/v1/room", req, &resp); err != nil {
		return err
	}

	fmt.Fprintf(out, "Room: %s\n", resp.RoomID)
	if resp.Room != nil {
		fmt.Fprintf(out, "Rounds: %d, Seats: %d\n", resp.Room.MaxRounds, resp.Room.MaxPlayers)
	}
	return nil
}

func listRooms(ctx context.Context, server string, out io.Writer) error {
	var resp struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	if err := doJSON(ctx, http.MethodGet, strings.TrimRight(server, "/")+"/api/v1/rooms", nil, &resp); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d room(s)\n", resp.Count)
	for _, r := range resp.Rooms {
		fmt.Fprintf(out, "%s  %-19s  %d/%d players  %d rounds\n", r.ID, r.State, r.PlayerCount, r.MaxPlayers, r.MaxRounds)
	}
	return nil
}

// wsURL turns the server base URL into the /wordle join URL.
func wsURL(server, roomID, name string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/wordle"
	u.RawQuery = url.Values{"roomId": {roomID}, "playerName": {name}}.Encode()
	return u.String(), nil
}

func joinRoom(ctx context.Context, server, roomID, name string, in io.Reader, out io.Writer) error {
	target, err := wsURL(server, roomID, name)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	out = &lockedWriter{w: out}

	readDone := make(chan error, 1)
	go func() {
		readDone <- printEnvelopes(conn, out)
	}()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case err := <-readDone:
			return err
		case <-ctx.Done():
			return leave(conn, readDone)
		case line, ok := <-lines:
			if !ok {
				return leave(conn, readDone)
			}
			payload, quit, err := parseCommand(line, roomID, name)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if quit {
				return leave(conn, readDone)
			}
			if payload == nil {
				continue
			}
			if err := conn.WriteJSON(payload); err != nil {
				return err
			}
		}
	}
}

// leave sends a normal close and waits briefly for the server to answer.
func leave(conn *websocket.Conn, readDone <-chan error) error {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
	}
	return nil
}

// parseCommand maps a terminal line to an inbound payload.
func parseCommand(line, roomID, name string) (payload map[string]interface{}, quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "start":
		return map[string]interface{}{"type": messages.KindStartGame, "roomId": roomID}, false, nil
	case "score":
		if len(fields) != 2 {
			return nil, false, errors.New("usage: score N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return nil, false, errors.New("score must be a non-negative integer")
		}
		return map[string]interface{}{
			"type":       messages.KindIncrementScore,
			"roomId":     roomID,
			"playerName": name,
			"score":      n,
		}, false, nil
	case "quit", "exit":
		return nil, true, nil
	}
	return nil, false, fmt.Errorf("unknown command %q (start, score N, quit)", fields[0])
}

// printEnvelopes writes one line per server envelope until the connection
// closes. A normal close is not an error.
func printEnvelopes(conn *websocket.Conn, out io.Writer) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				if ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway {
					return nil
				}
				return fmt.Errorf("closed by server: %d %s", ce.Code, ce.Text)
			}
			return err
		}

		var env messages.Outbound
		if err := json.Unmarshal(data, &env); err != nil {
			fmt.Fprintf(out, "? %s\n", data)
			continue
		}
		fmt.Fprintln(out, describe(env))
	}
}

func describe(env messages.Outbound) string {
	switch env.Type {
	case messages.TypePlayerSet:
		return fmt.Sprintf("[%s] you are %s", env.Type, env.PlayerID)
	case messages.TypeError:
		return fmt.Sprintf("[%s] %s: %s", env.Type, env.ErrorType, env.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", env.Type)
	if env.Name != "" {
		fmt.Fprintf(&b, " %s", env.Name)
	}
	if env.Game != nil {
		fmt.Fprintf(&b, " room %s %s", env.Game.ID, env.Game.State)
		for _, p := range env.Game.Players {
			fmt.Fprintf(&b, " | %s r%d s%d", p.Name, p.CurrentRound, p.Score)
		}
	}
	if env.Message != "" {
		fmt.Fprintf(&b, " %s", env.Message)
	}
	return b.String()
}
