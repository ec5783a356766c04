// Package api provides the HTTP REST surface of the Wordle Rooms server.
//
// Endpoints:
//
// Rooms:
//   - POST /api/v1/room - Create a room (query or JSON body)
//   - GET /api/v1/rooms - List live rooms, optional ?state= and ?limit=
//   - GET /api/v1/rooms/{id} - Get a single room
//
// Presets:
//   - GET /api/v1/presets - List named room configurations
//
// Operations:
//   - GET /healthz - Liveness with room and connection counts
//   - /wordle - WebSocket endpoint, when a handler is mounted
//
// Room creation accepts either explicit bounds or a preset:
//
//	POST /api/v1/room?maxRounds=5&maxPlayers=2
//	POST /api/v1/room {"preset": "party"}
//
// An empty request uses the default preset. The response is:
//
//	{"roomID": "K3Q9ZD", "room": {...}}
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the error kind:
//
//	{
//	  "error": "room not found",
//	  "errorType": "ROOM_NOT_FOUND"
//	}
package api
