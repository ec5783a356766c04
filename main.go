// Command wordle-rooms starts the Wordle Rooms coordination server.
//
// It supports two modes:
//  1. "serve" (default): runs the HTTP server exposing the REST API, the /wordle WebSocket endpoint, and an /mcp HTTP endpoint
//  2. "mcp": runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, preset directory, logging, room expiry, and
// optional ngrok tunneling for easy external access during development.
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/wordle-rooms/api"
	"github.com/wricardo/wordle-rooms/game/config"
	"github.com/wricardo/wordle-rooms/game/registry"
	"github.com/wricardo/wordle-rooms/game/router"
	"github.com/wricardo/wordle-rooms/game/service"
	"github.com/wricardo/wordle-rooms/transport/mcp"
	wsTransport "github.com/wricardo/wordle-rooms/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Wordle Rooms Server"
)

const shutdownTimeout = 10 * time.Second

// Settings is the resolved server configuration.
type Settings struct {
	Host           string
	Port           int
	PresetsDir     string
	AllowedOrigins []string
	ReadLimit      int64
	RoomTTL        time.Duration
	PruneInterval  time.Duration
	Debug          bool
	LogJSON        bool
	Ngrok          bool
	NgrokAuth      string
	NgrokDomain    string
	APIURL         string
}

// main loads .env, parses flags, and runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand()
	cmd.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		setupLogging(cmd.Bool("debug"), cmd.Bool("log-json"))
		if envErr == nil {
			log.Debug().Str("module", "main").Msg("loaded environment variables from .env file")
		} else if !os.IsNotExist(envErr) {
			log.Warn().Str("module", "main").Err(envErr).Msg("error loading .env file")
		}
		return ctx, nil
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal().Str("module", "main").Err(err).Msg("server exited")
	}
}

// newCommand builds the CLI. Flags live on the root so they are accepted
// before or after the subcommand name.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:           "wordle-rooms",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "presets-dir", Usage: "Directory of room preset files; built-in presets only when empty", Sources: cli.EnvVars("PRESETS_DIR")},
			&cli.StringSliceFlag{Name: "allowed-origin", Usage: "Origin allowed to open WebSockets (repeatable); any origin when unset", Sources: cli.EnvVars("ALLOWED_ORIGINS")},
			&cli.Int64Flag{Name: "read-limit", Value: 8192, Usage: "Maximum inbound WebSocket frame size in bytes", Sources: cli.EnvVars("WS_READ_LIMIT")},
			&cli.DurationFlag{Name: "room-ttl", Value: 24 * time.Hour, Usage: "Delete rooms nobody joined within this long", Sources: cli.EnvVars("ROOM_TTL")},
			&cli.DurationFlag{Name: "prune-interval", Value: time.Hour, Usage: "How often idle rooms are pruned", Sources: cli.EnvVars("PRUNE_INTERVAL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "log-json", Usage: "Log JSON lines instead of console output", Sources: cli.EnvVars("LOG_JSON")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHTTPServer(ctx, settingsFrom(cmd))
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP API if none is reachable",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "External API to proxy when reachable", Sources: cli.EnvVars("API_URL")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, settingsFrom(cmd))
				},
			},
		},
	}
}

// settingsFrom reads every flag into Settings.
func settingsFrom(cmd *cli.Command) Settings {
	return Settings{
		Host:           cmd.String("host"),
		Port:           cmd.Int("port"),
		PresetsDir:     cmd.String("presets-dir"),
		AllowedOrigins: cmd.StringSlice("allowed-origin"),
		ReadLimit:      cmd.Int64("read-limit"),
		RoomTTL:        cmd.Duration("room-ttl"),
		PruneInterval:  cmd.Duration("prune-interval"),
		Debug:          cmd.Bool("debug"),
		LogJSON:        cmd.Bool("log-json"),
		Ngrok:          cmd.Bool("ngrok"),
		NgrokAuth:      cmd.String("ngrok-auth"),
		NgrokDomain:    cmd.String("ngrok-domain"),
		APIURL:         cmd.String("api-url"),
	}
}

// setupLogging configures the global zerolog logger. Output goes to
// stderr so stdio MCP traffic on stdout stays clean.
func setupLogging(debug, jsonOutput bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if jsonOutput {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// Services holds the wired room components shared by every surface.
type Services struct {
	Rooms     *registry.Registry
	Presets   *config.Manager
	Directory *wsTransport.Directory
	Router    *router.Router
	Service   service.RoomService
}

// initializeServices wires the registry, presets, connection directory,
// and message router.
func initializeServices(presetsDir string) (*Services, error) {
	presets, err := config.NewManager(presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	rooms := registry.New()
	dir := wsTransport.NewDirectory()

	return &Services{
		Rooms:     rooms,
		Presets:   presets,
		Directory: dir,
		Router:    router.New(rooms, wsTransport.NewBroadcaster(dir)),
		Service:   service.NewRoomService(rooms, presets, dir),
	}, nil
}

// Handler mounts the REST API, the WebSocket endpoint, and /mcp.
func (s *Services) Handler(cfg Settings, mcpClient *mcp.Client) http.Handler {
	ws := wsTransport.NewHandler(s.Directory, s.Router, wsTransport.Options{
		ReadLimit:      cfg.ReadLimit,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	apiServer := api.NewServer(s.Service, ws)
	if mcpClient != nil {
		apiServer.Handle("/mcp", mcpHandler(mcpClient))
	}
	return apiServer
}

// mcpHandler serves single JSON-RPC messages over HTTP POST.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
// The ngrok tunnel and the idle-room janitor run in the same group.
func runHTTPServer(ctx context.Context, cfg Settings) error {
	svcs, err := initializeServices(cfg.PresetsDir)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	addr = listener.Addr().String()

	handler := svcs.Handler(cfg, mcp.NewClient("http://"+addr))
	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	presets, _ := svcs.Presets.ListPresets()
	log.Info().Str("module", "main").Str("version", Version).Str("addr", addr).Int("presets", len(presets)).Msg("starting " + AppName)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("module", "main").Msgf("REST API: http://%s/api/v1", addr)
		log.Info().Str("module", "main").Msgf("WebSocket: ws://%s/wordle?roomId=<room>&playerName=<name>", addr)
		log.Info().Str("module", "main").Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cfg.Ngrok {
		g.Go(func() error {
			return serveNgrok(gctx, cfg, handler)
		})
	}

	g.Go(func() error {
		runJanitor(gctx, svcs.Service, cfg.PruneInterval, cfg.RoomTTL)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("module", "main").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Str("module", "main").Err(err).Msg("HTTP server shutdown error")
		}
		// Hijacked WebSocket connections are not closed by Shutdown.
		if n := svcs.Directory.CloseAll(websocket.CloseGoingAway, "server shutting down"); n > 0 {
			log.Info().Str("module", "main").Int("connections", n).Msg("closed live connections")
		}
		return nil
	})

	err = g.Wait()
	log.Info().Str("module", "main").Msg("server stopped")
	return err
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done.
// A missing token or a failed tunnel is logged without stopping the server.
func serveNgrok(ctx context.Context, cfg Settings, handler http.Handler) error {
	if cfg.NgrokAuth == "" {
		log.Warn().Str("module", "main").Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return nil
	}

	log.Info().Str("module", "main").Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("module", "main").Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Error().Str("module", "main").Err(err).Msg("failed to start ngrok tunnel")
		return nil
	}

	ngrokURL := tun.URL()
	log.Info().Str("module", "main").Str("url", ngrokURL).Msg("ngrok tunnel established")
	log.Info().Str("module", "main").Msgf("  REST API (ngrok): %s/api/v1", ngrokURL)
	log.Info().Str("module", "main").Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Str("module", "main").Err(err).Msg("ngrok server error")
	}
	log.Info().Str("module", "main").Msg("ngrok tunnel closed")
	return nil
}

// runJanitor prunes rooms nobody joined within ttl, every interval.
func runJanitor(ctx context.Context, rooms service.RoomService, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rooms.PruneIdleRooms(ctx, ttl); removed > 0 {
				log.Info().Str("module", "main").Int("removed", removed).Msg("pruned idle rooms")
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server. It reuses the API at cfg.APIURL
// when reachable; otherwise it starts an internal HTTP API bound to a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cfg Settings) error {
	baseURL := cfg.APIURL
	log.Info().Str("module", "main").Str("url", baseURL).Msg("checking for external API server")

	if !apiReachable(baseURL) {
		log.Info().Str("module", "main").Msg("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(cfg.PresetsDir)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: svcs.Handler(cfg, nil)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Str("module", "main").Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("module", "main").Str("url", baseURL).Msg("internal HTTP server started")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("module", "main").Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether a Wordle Rooms API answers at baseURL.
func apiReachable(baseURL string) bool {
	if baseURL == "" {
		return false
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
