package service

import (
	"log/slog"
	"sync"

	"github.com/totegamma/liveboard"
)

const sendBufferSize = 64

// RoomConn is one subscriber connection. Events are delivered through a
// buffered channel drained by a single writer; the channel is closed when
// the connection is dropped from the registry.
type RoomConn struct {
	send   chan liveboard.Event
	closed bool // guarded by the owning registry's mutex
}

func NewRoomConn() *RoomConn {
	return &RoomConn{
		send: make(chan liveboard.Event, sendBufferSize),
	}
}

// Events yields room events in broadcast order. The channel closes when
// the connection leaves the registry.
func (c *RoomConn) Events() <-chan liveboard.Event {
	return c.send
}

// RoomRegistry maps post IDs to the set of currently subscribed
// connections. Membership is ephemeral and rebuilt as connections come and
// go; nothing here ever touches document content.
type RoomRegistry struct {
	mu         sync.Mutex
	rooms      map[string]map[*RoomConn]struct{}
	membership map[*RoomConn]map[string]struct{}
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:      make(map[string]map[*RoomConn]struct{}),
		membership: make(map[*RoomConn]map[string]struct{}),
	}
}

// Join subscribes conn to postID's room. Joining twice has no additional
// effect.
func (r *RoomRegistry) Join(postID string, conn *RoomConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn.closed {
		return
	}
	if r.rooms[postID] == nil {
		r.rooms[postID] = make(map[*RoomConn]struct{})
	}
	r.rooms[postID][conn] = struct{}{}
	if r.membership[conn] == nil {
		r.membership[conn] = make(map[string]struct{})
	}
	r.membership[conn][postID] = struct{}{}
}

func (r *RoomRegistry) Leave(postID string, conn *RoomConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(postID, conn)
}

// Drop removes conn from every room it belongs to and closes its event
// channel. Called on disconnect.
func (r *RoomRegistry) Drop(conn *RoomConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(conn)
}

func (r *RoomRegistry) removeLocked(postID string, conn *RoomConn) {
	if members, ok := r.rooms[postID]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.rooms, postID)
		}
	}
	if joined, ok := r.membership[conn]; ok {
		delete(joined, postID)
		if len(joined) == 0 {
			delete(r.membership, conn)
		}
	}
}

func (r *RoomRegistry) dropLocked(conn *RoomConn) {
	if conn.closed {
		return
	}
	for postID := range r.membership[conn] {
		if members, ok := r.rooms[postID]; ok {
			delete(members, conn)
			if len(members) == 0 {
				delete(r.rooms, postID)
			}
		}
	}
	delete(r.membership, conn)
	conn.closed = true
	close(conn.send)
}

// Broadcast delivers event to every current member of postID's room.
// Delivery is best-effort and fire-and-forget; enqueueing under the
// registry lock preserves per-room event order across all members. A
// member whose buffer is full is dropped rather than blocking the room.
func (r *RoomRegistry) Broadcast(postID string, event liveboard.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []*RoomConn
	for conn := range r.rooms[postID] {
		select {
		case conn.send <- event:
		default:
			stale = append(stale, conn)
		}
	}
	for _, conn := range stale {
		slog.Warn(
			"Dropping slow room subscriber",
			slog.String("postId", postID),
			slog.String("module", "room"),
		)
		r.dropLocked(conn)
	}
}

// MemberCount reports the current size of a room.
func (r *RoomRegistry) MemberCount(postID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[postID])
}
