// Package service provides the operator-facing room operations for Wordle
// Rooms.
//
// The service package implements:
//   - Room creation from explicit bounds or from a named preset
//   - Room inspection and listing
//   - Pruning of rooms that were created but never joined
//   - Live room and connection counts
//
// Core Interfaces:
//
// RoomService is the facade used by the REST API and the MCP tools.
// RoomStore is satisfied by *registry.Registry and PresetStore by
// *config.Manager, so the service can be tested with in-memory fakes.
//
// Gameplay itself never goes through this package. Joins, scores and
// departures arrive over WebSocket and are handled by the router.
//
// Usage:
//
//	rooms := registry.New()
//	presets, err := config.NewManager("presets")
//	svc := service.NewRoomService(rooms, presets, directory)
//
//	room, err := svc.CreateRoomFromPreset(ctx, "classic")
package service
