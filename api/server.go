package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/service"
)

// Server represents the REST API server
type Server struct {
	service  service.RoomService
	router   *mux.Router
	validate *validator.Validate
}

// NewServer creates a new API server. ws, when non-nil, is mounted at
// /wordle.
func NewServer(roomService service.RoomService, ws http.Handler) *Server {
	s := &Server{
		service:  roomService,
		router:   mux.NewRouter(),
		validate: validator.New(),
	}

	s.setupRoutes(ws)
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes(ws http.Handler) {
	s.router.Use(requestLogger)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Rooms
	api.HandleFunc("/room", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// WebSocket
	if ws != nil {
		s.router.Handle("/wordle", ws)
	}
}

// Handle mounts an extra handler, such as the MCP endpoint.
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string           `json:"error"`
	ErrorType engine.ErrorKind `json:"errorType"`
}

func respondError(w http.ResponseWriter, err error) {
	kind := engine.KindOf(err)
	respondJSON(w, statusFor(kind), ErrorResponse{
		Error:     engine.PublicMessage(err),
		ErrorType: kind,
	})
}

func statusFor(kind engine.ErrorKind) int {
	switch kind {
	case engine.KindRoomNotFound, engine.KindPlayerNotFound:
		return http.StatusNotFound
	case engine.KindInvalidConfiguration, engine.KindMalformedMessage:
		return http.StatusBadRequest
	case engine.KindRoomFull, engine.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Room Handlers

// CreateRoomRequest is accepted as query parameters or as a JSON body.
// Explicit bounds win over a preset.
type CreateRoomRequest struct {
	MaxRounds  *int   `json:"maxRounds,omitempty" validate:"required_with=MaxPlayers,omitempty,min=1"`
	MaxPlayers *int   `json:"maxPlayers,omitempty" validate:"required_with=MaxRounds,omitempty,min=1"`
	Preset     string `json:"preset,omitempty" validate:"omitempty,max=64"`
}

// CreateRoomResponse is returned by POST /api/v1/room.
type CreateRoomResponse struct {
	RoomID string            `json:"roomID"`
	Room   *service.RoomInfo `json:"room"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	req, err := parseCreateRoom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", engine.ErrInvalidConfiguration, describeValidation(err)))
		return
	}

	var room *service.RoomInfo
	if req.MaxRounds != nil {
		room, err = s.service.CreateRoom(r.Context(), *req.MaxRounds, *req.MaxPlayers)
	} else {
		room, err = s.service.CreateRoomFromPreset(r.Context(), req.Preset)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CreateRoomResponse{RoomID: room.ID, Room: room})
}

func parseCreateRoom(r *http.Request) (CreateRoomRequest, error) {
	var req CreateRoomRequest
	q := r.URL.Query()

	if q.Has("maxRounds") || q.Has("maxPlayers") || q.Has("preset") {
		for _, p := range []struct {
			name string
			dst  **int
		}{{"maxRounds", &req.MaxRounds}, {"maxPlayers", &req.MaxPlayers}} {
			raw := q.Get(p.name)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return req, fmt.Errorf("%w: %s must be an integer", engine.ErrInvalidConfiguration, p.name)
			}
			*p.dst = &n
		}
		req.Preset = q.Get("preset")
		return req, nil
	}

	if r.Body == nil {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("%w: invalid JSON body", engine.ErrInvalidConfiguration)
	}
	return req, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", lowerFirst(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	state := query.Get("state")    // WAITING_FOR_PLAYERS, IN_PROGRESS, COMPLETED
	limitStr := query.Get("limit") // number of rooms to return

	total := len(rooms)
	if state != "" {
		filtered := rooms[:0]
		for _, room := range rooms {
			if strings.EqualFold(string(room.State), state) {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	// Apply limit if specified
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(rooms) {
			rooms = rooms[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"total": total,
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	room, err := s.service.GetRoom(r.Context(), roomID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(presets),
		"presets": presets,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"rooms":       stats.Rooms,
		"connections": stats.Connections,
	})
}

// statusRecorder captures the response status for logging. It forwards
// Hijack so WebSocket upgrades still work behind the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Debug().Str("module", "api").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
