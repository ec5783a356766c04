// Package registry keeps the set of live Wordle rooms.
//
// Rooms are identified by six-character ids over A-Z and 0-9 generated
// with crypto/rand. Lookups are case-insensitive. A colliding id is
// retried a bounded number of times before CreateRoom gives up with an
// internal error.
//
// Locking:
//
// The registry map is guarded by a RWMutex. Lookups and mutations local
// to one room take the read lock and then the room's own lock, so rooms
// progress independently. Creating and deleting rooms takes the write
// lock, which is what makes "delete the room when the last player leaves"
// atomic with respect to concurrent joins.
//
// Usage:
//
//	reg := registry.New()
//	id, err := reg.CreateRoom(5, 2)
//	snap, added, err := reg.AddPlayer(id, connID, "Alice")
//	res, err := reg.RemovePlayer(id, connID)
//	if res.RoomDeleted {
//		// id is gone
//	}
package registry
