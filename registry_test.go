package main

import (
	"strings"
	"testing"
	"time"
)

func TestCreateRoomCodes(t *testing.T) {
	registry := newRoomRegistry(30*time.Minute, 5*time.Minute)

	seen := make(map[string]bool)
	for range 100 {
		room := registry.create()

		if len(room.code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", room.code, len(room.code), codeLength)
		}
		for _, c := range room.code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside the join-code alphabet", room.code, c)
			}
		}
		if seen[room.code] {
			t.Fatalf("code %q issued twice", room.code)
		}
		seen[room.code] = true
	}

	if registry.count() != 100 {
		t.Fatalf("registry holds %d rooms, want 100", registry.count())
	}
}

func TestGet(t *testing.T) {
	registry := newRoomRegistry(30*time.Minute, 5*time.Minute)
	room := registry.create()

	got, ok := registry.get(room.code)
	if !ok || got != room {
		t.Fatalf("get(%q) = %v, %v; want the created room", room.code, got, ok)
	}

	if _, ok := registry.get("zzzzzz"); ok {
		t.Fatal("get of an unknown code should fail")
	}
}

func TestSweepKeepsRoomsWithConnectedPlayers(t *testing.T) {
	registry := newRoomRegistry(30*time.Minute, 5*time.Minute)
	room := registry.create()
	room.join(newTestClient("c1"), PlayerInput{Name: "Ada"})

	// Far beyond the TTL, but one player is still connected.
	room.mu.Lock()
	room.lastActivity = time.Now().Add(-24 * time.Hour)
	room.mu.Unlock()

	if reclaimed := registry.sweep(time.Now()); len(reclaimed) != 0 {
		t.Fatalf("sweep reclaimed %v despite a connected player", reclaimed)
	}
	if _, ok := registry.get(room.code); !ok {
		t.Fatal("room with a connected player was evicted")
	}
}

func TestSweepEvictsFullyDisconnectedIdleRooms(t *testing.T) {
	registry := newRoomRegistry(30*time.Minute, 5*time.Minute)
	room := registry.create()
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})
	room.disconnect(client)

	// Disconnected but not yet idle past the TTL.
	if reclaimed := registry.sweep(time.Now()); len(reclaimed) != 0 {
		t.Fatalf("sweep reclaimed %v before the TTL elapsed", reclaimed)
	}

	room.mu.Lock()
	room.lastActivity = time.Now().Add(-31 * time.Minute)
	room.mu.Unlock()

	reclaimed := registry.sweep(time.Now())
	if len(reclaimed) != 1 || reclaimed[0] != room.code {
		t.Fatalf("sweep reclaimed %v, want [%s]", reclaimed, room.code)
	}
	if _, ok := registry.get(room.code); ok {
		t.Fatal("reclaimed room still resolvable")
	}
}

func TestSweepEvictsVacuousRooms(t *testing.T) {
	registry := newRoomRegistry(30*time.Minute, 5*time.Minute)
	room := registry.create()

	room.mu.Lock()
	room.lastActivity = time.Now().Add(-31 * time.Minute)
	room.mu.Unlock()

	if reclaimed := registry.sweep(time.Now()); len(reclaimed) != 1 {
		t.Fatalf("sweep reclaimed %v, want the empty room", reclaimed)
	}
}
