// Package websocket provides the WebSocket transport for Wordle Rooms.
//
// The websocket package implements:
//   - Directory, the connectionId -> live connection map
//   - Broadcaster, the router's Sender: serialize once, enqueue per target
//   - Client, one connection with a read pump and a write pump
//   - Handler, the /wordle endpoint driving the connection lifecycle
//
// Connection Lifecycle:
//
// 1. Client connects with ?roomId=ABC123&playerName=Alice
// 2. Missing parameters close the socket with 1008 (policy violation)
// 3. Connection registered in the Directory under a fresh uuid
// 4. PLAYER_SET sent, then the implicit JOIN_ROOM is dispatched
// 5. Each text frame is decoded and routed; a payload that cannot be
// decoded gets an ERROR envelope followed by a 1008 close
// 6. Disconnection purges the connection and dispatches PLAYER_LEFT
//
// Backpressure:
//
// Every connection has a bounded send queue. Enqueue never blocks; a peer
// whose queue is full is closed with 1013 instead of stalling the room.
//
// Usage:
//
//	dir := websocket.NewDirectory()
//	r := router.New(rooms, websocket.NewBroadcaster(dir))
//	mux.Handle("/wordle", websocket.NewHandler(dir, r, websocket.Options{}))
package websocket
