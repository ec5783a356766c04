// Package engine provides the room model for Wordle Rooms.
//
// The engine package implements:
//   - Player, the per-connection participant with score and round counter
//   - Game, a room with a bounded player set and a forward-only lifecycle
//   - Snapshot, a detached copy of a room used for every outbound payload
//   - The error taxonomy shared by the registry, router and HTTP layer
//
// Lifecycle:
//
//	WAITING_FOR_PLAYERS -> IN_PROGRESS -> COMPLETED
//
// Players may only join while waiting. A player finishes after maxRounds
// scored rounds; the room completes once every seated player has finished.
//
// Concurrency:
//
// Each Game carries its own mutex. Compound operations such as RecordScore
// and Leave run entirely under that lock so the completion transition is
// observed exactly once. Snapshots are taken under the lock and can be
// serialized or fanned out after it is released.
//
// Usage:
//
//	g, err := engine.NewGame("K3Z9QA", 5, 2)
//	if err != nil {
//		return err
//	}
//	_, _, err = g.Join(engine.Player{ID: connID, Name: "Alice"})
//	_ = g.StartGame()
//	res, err := g.RecordScore(connID, 10)
package engine
