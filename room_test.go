package main

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestClient(id string) *Client {
	return &Client{
		id:    id,
		send:  make(chan any, 64),
		rooms: make(map[string]*Room),
	}
}

// drain empties a client's send queue so tests can assert on pushes.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestJoinDefaults(t *testing.T) {
	room := newRoom("abc123")
	client := newTestClient("f00dcafe")

	result := room.join(client, PlayerInput{})

	if result.YourID != client.id {
		t.Fatalf("yourId = %q, want %q", result.YourID, client.id)
	}
	if len(result.Players) != 1 {
		t.Fatalf("roster has %d players, want 1", len(result.Players))
	}

	player := result.Players[0]
	if !strings.HasPrefix(player.Name, "Player ") {
		t.Errorf("blank name defaulted to %q", player.Name)
	}
	if player.SpriteID != "default" {
		t.Errorf("spriteId = %q, want default", player.SpriteID)
	}
	if player.Row != 0 || player.Col != 0 {
		t.Errorf("start position (%d,%d), want (0,0)", player.Row, player.Col)
	}
	if player.XP != 0 || player.Level != 1 || player.CasesSolved != 0 {
		t.Errorf("fresh session carries stats xp=%d level=%d solved=%d", player.XP, player.Level, player.CasesSolved)
	}
	if !player.Connected {
		t.Error("fresh session not connected")
	}
	if player.MovementPointsRemaining != 0 {
		t.Errorf("fresh session has %d movement points", player.MovementPointsRemaining)
	}
	if player.Inventory == nil || len(player.Inventory) != 0 {
		t.Errorf("fresh inventory = %v, want empty non-nil", player.Inventory)
	}
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	room := newRoom("abc123")
	ada := newTestClient("ada-conn")
	brw := newTestClient("brw-conn")

	room.join(ada, PlayerInput{Name: "Ada", SpriteID: "detective"})
	drain(ada)

	result := room.join(brw, PlayerInput{Name: "Browning"})
	if len(result.Players) != 2 {
		t.Fatalf("second joiner sees %d players, want 2", len(result.Players))
	}
	if result.Players[0].Name != "Ada" || result.Players[1].Name != "Browning" {
		t.Fatalf("roster out of join order: %q, %q", result.Players[0].Name, result.Players[1].Name)
	}

	adaMsgs := drain(ada)
	if len(adaMsgs) != 1 {
		t.Fatalf("existing member received %d pushes, want 1", len(adaMsgs))
	}
	joined, ok := adaMsgs[0].(PlayerJoinedMessage)
	if !ok {
		t.Fatalf("existing member received %T, want PlayerJoinedMessage", adaMsgs[0])
	}
	if joined.Player.Name != "Browning" {
		t.Errorf("playerJoined carries %q, want Browning", joined.Player.Name)
	}

	// The joiner itself only gets the roster, never a duplicate push.
	if msgs := drain(brw); len(msgs) != 0 {
		t.Fatalf("joiner received %d pushes of itself", len(msgs))
	}
}

func TestMoveAdjacency(t *testing.T) {
	cases := []struct {
		name string
		from GridPos
		to   GridPos
		ok   bool
	}{
		{"right one", GridPos{2, 2}, GridPos{2, 3}, true},
		{"down one", GridPos{2, 2}, GridPos{3, 2}, true},
		{"diagonal", GridPos{2, 2}, GridPos{3, 3}, false},
		{"in place", GridPos{2, 2}, GridPos{2, 2}, false},
		{"two tiles", GridPos{2, 2}, GridPos{2, 4}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := newRoom("abc123")
			client := newTestClient("c1")
			room.join(client, PlayerInput{Name: "Ada", Row: tc.from.Row, Col: tc.from.Col})

			err := room.move(client, tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("move failed: %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, errNotAdjacent) {
					t.Fatalf("move error = %v, want errNotAdjacent", err)
				}
				return
			}

			room.mu.RLock()
			player := room.players[client.id]
			row, col := player.Row, player.Col
			room.mu.RUnlock()
			if row != tc.to.Row || col != tc.to.Col {
				t.Fatalf("position (%d,%d) after move, want (%d,%d)", row, col, tc.to.Row, tc.to.Col)
			}
		})
	}
}

func TestMoveStepRequiresMovementPoints(t *testing.T) {
	room := newRoom("abc123")
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})

	// Adjacent target, but no roll yet.
	if _, err := room.moveStep(client, GridPos{0, 0}, GridPos{0, 1}); !errors.Is(err, errNoMovementPoints) {
		t.Fatalf("moveStep error = %v, want errNoMovementPoints", err)
	}
}

func TestMoveStepConsumesOnePointPerTile(t *testing.T) {
	room := newRoom("abc123")
	room.rollDie = func() int { return 3 }
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})

	roll, err := room.rollDice(client)
	if err != nil || roll != 3 {
		t.Fatalf("rollDice = %d, %v; want 3, nil", roll, err)
	}

	steps := []GridPos{{0, 1}, {0, 2}, {1, 2}}
	from := GridPos{0, 0}
	for i, to := range steps {
		remaining, err := room.moveStep(client, from, to)
		if err != nil {
			t.Fatalf("step %d failed: %v", i+1, err)
		}
		if want := 3 - (i + 1); remaining != want {
			t.Fatalf("step %d left %d points, want %d", i+1, remaining, want)
		}
		from = to
	}

	if _, err := room.moveStep(client, from, GridPos{from.Row, from.Col + 1}); !errors.Is(err, errNoMovementPoints) {
		t.Fatalf("exhausted budget error = %v, want errNoMovementPoints", err)
	}
}

func TestMoveStepRejectsDiagonalEvenWithPoints(t *testing.T) {
	room := newRoom("abc123")
	room.rollDie = func() int { return 6 }
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})
	_, _ = room.rollDice(client)

	if _, err := room.moveStep(client, GridPos{2, 2}, GridPos{3, 3}); !errors.Is(err, errNotAdjacent) {
		t.Fatalf("diagonal error = %v, want errNotAdjacent", err)
	}

	// Failed validation must not consume the budget.
	room.mu.RLock()
	remaining := room.players[client.id].MovementPointsRemaining
	room.mu.RUnlock()
	if remaining != 6 {
		t.Fatalf("budget %d after rejected step, want 6", remaining)
	}
}

func TestRollDiceOverwritesBudget(t *testing.T) {
	rolls := []int{6, 2}
	room := newRoom("abc123")
	room.rollDie = func() int {
		roll := rolls[0]
		rolls = rolls[1:]
		return roll
	}
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})

	if roll, _ := room.rollDice(client); roll != 6 {
		t.Fatalf("first roll = %d, want 6", roll)
	}
	if roll, _ := room.rollDice(client); roll != 2 {
		t.Fatalf("second roll = %d, want 2", roll)
	}

	room.mu.RLock()
	remaining := room.players[client.id].MovementPointsRemaining
	room.mu.RUnlock()
	if remaining != 2 {
		t.Fatalf("budget %d after re-roll, want 2 (overwrite, not add)", remaining)
	}
}

func TestSearchAwardsEachClueOnce(t *testing.T) {
	room := newRoom("abc123")
	room.chance = alwaysHit
	room.pick = pickFirst
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})

	pool := len(roomClueConfigs["CONSERVATORY"].ClueIDs)
	wantXP := 0
	for i := range pool {
		result, err := room.search(client, "CONSERVATORY")
		if err != nil {
			t.Fatalf("search %d failed: %v", i+1, err)
		}
		if !result.Found || result.Clue == nil {
			t.Fatalf("search %d found nothing with a full pool", i+1)
		}
		if result.Clue.RoomID != "CONSERVATORY" {
			t.Errorf("clue tagged with %q, want the searched room", result.Clue.RoomID)
		}
		wantXP += result.Clue.XPAward
		if result.XP != wantXP {
			t.Errorf("xp = %d after search %d, want %d", result.XP, i+1, wantXP)
		}
		if result.Level != levelForXP(wantXP) {
			t.Errorf("level = %d, want %d", result.Level, levelForXP(wantXP))
		}
	}

	result, err := room.search(client, "CONSERVATORY")
	if err != nil {
		t.Fatalf("search of exhausted room errored: %v", err)
	}
	if result.Found {
		t.Fatal("exhausted room yielded another clue")
	}

	room.mu.RLock()
	inventory := room.players[client.id].Inventory
	room.mu.RUnlock()
	seen := make(map[string]bool)
	for _, clue := range inventory {
		if seen[clue.ID] {
			t.Fatalf("inventory holds %s twice", clue.ID)
		}
		seen[clue.ID] = true
	}
}

func TestSearchValidation(t *testing.T) {
	room := newRoom("abc123")
	client := newTestClient("c1")

	if _, err := room.search(client, "LIBRARY"); !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("search before join error = %v, want errPlayerNotFound", err)
	}

	room.join(client, PlayerInput{Name: "Ada"})
	if _, err := room.search(client, ""); !errors.Is(err, errInvalidRoom) {
		t.Fatalf("search without a room error = %v, want errInvalidRoom", err)
	}
}

func TestSolveCaseComposes(t *testing.T) {
	room := newRoom("abc123")
	client := newTestClient("c1")
	room.join(client, PlayerInput{Name: "Ada"})

	var last PlayerSession
	for i := 1; i <= 9; i++ {
		player, err := room.solve(client)
		if err != nil {
			t.Fatalf("solve %d failed: %v", i, err)
		}
		if player.CasesSolved != i {
			t.Fatalf("casesSolved = %d after %d solves", player.CasesSolved, i)
		}
		if player.XP != xpPerCase*i {
			t.Fatalf("xp = %d after %d solves, want %d", player.XP, i, xpPerCase*i)
		}
		if player.Level != levelForXP(player.XP) {
			t.Fatalf("level = %d, want %d", player.Level, levelForXP(player.XP))
		}
		last = player
	}

	// 9 solves cross the 400 xp boundary.
	if last.Level != 3 {
		t.Fatalf("level = %d after 450 xp, want 3", last.Level)
	}
}

func TestDisconnectRetainsSession(t *testing.T) {
	room := newRoom("abc123")
	ada := newTestClient("ada-conn")
	brw := newTestClient("brw-conn")
	room.join(ada, PlayerInput{Name: "Ada"})
	room.join(brw, PlayerInput{Name: "Browning"})
	_, _ = room.solve(ada)
	drain(ada)
	drain(brw)

	room.mu.RLock()
	before := room.lastActivity
	room.mu.RUnlock()

	time.Sleep(time.Millisecond)
	room.disconnect(ada)

	room.mu.RLock()
	player, ok := room.players[ada.id]
	after := room.lastActivity
	room.mu.RUnlock()

	if !ok {
		t.Fatal("session deleted on disconnect")
	}
	if player.Connected {
		t.Fatal("session still flagged connected")
	}
	if player.CasesSolved != 1 || player.XP != xpPerCase {
		t.Fatal("stats lost on disconnect")
	}
	if !after.After(before) {
		t.Fatal("disconnect did not bump lastActivity")
	}

	msgs := drain(brw)
	if len(msgs) != 1 {
		t.Fatalf("remaining member received %d pushes, want 1", len(msgs))
	}
	gone, ok := msgs[0].(PlayerDisconnectedMessage)
	if !ok || gone.PlayerID != ada.id {
		t.Fatalf("remaining member received %v, want playerDisconnected for %s", msgs[0], ada.id)
	}
	if msgs := drain(ada); len(msgs) != 0 {
		t.Fatalf("departing client received %d pushes", len(msgs))
	}
}
