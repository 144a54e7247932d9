package main

import (
	"crypto/rand"
	"sync"
	"time"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const codeLength = 6

// RoomRegistry owns the live rooms, keyed by join code. It is
// constructed per server (no package-level state) so tests get a fresh
// registry each.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	ttl           time.Duration
	sweepInterval time.Duration
	done          chan struct{}
}

func newRoomRegistry(ttl, sweepInterval time.Duration) *RoomRegistry {
	return &RoomRegistry{
		rooms:         make(map[string]*Room),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
	}
}

// newCodeLocked generates a crypto-random join code and re-rolls until
// it doesn't collide with a live room.
func (rr *RoomRegistry) newCodeLocked() string {
	for {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)

		if _, exists := rr.rooms[code]; !exists {
			return code
		}
	}
}

// create allocates an empty room under a fresh join code.
func (rr *RoomRegistry) create() *Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room := newRoom(rr.newCodeLocked())
	rr.rooms[room.code] = room

	return room
}

// get looks up a room; absence means RoomNotFound upstream.
func (rr *RoomRegistry) get(code string) (*Room, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[code]
	return room, ok
}

func (rr *RoomRegistry) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return len(rr.rooms)
}

// start launches the background sweep. stop ends it; rooms reclaimed by
// a sweep already in flight still complete.
func (rr *RoomRegistry) start() {
	go func() {
		ticker := time.NewTicker(rr.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rr.sweep(time.Now())
			case <-rr.done:
				return
			}
		}
	}()
}

func (rr *RoomRegistry) stop() {
	close(rr.done)
}

// sweep evicts every room whose sessions are all disconnected and whose
// last activity predates now-ttl. Returns the reclaimed codes.
func (rr *RoomRegistry) sweep(now time.Time) []string {
	cutoff := now.Add(-rr.ttl)

	rr.mu.Lock()
	defer rr.mu.Unlock()

	var reclaimed []string
	for code, room := range rr.rooms {
		if room.reapable(cutoff) {
			delete(rr.rooms, code)
			reclaimed = append(reclaimed, code)
			gameLog.Infow("room reclaimed", "room", code)
		}
	}

	return reclaimed
}
