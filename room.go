package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// Error texts double as the wire-facing messages, so they keep the
// phrasing clients already display.
var (
	errRoomNotFound     = errors.New("Room not found")
	errPlayerNotFound   = errors.New("Player not found")
	errNotAdjacent      = errors.New("Can only move to adjacent tiles")
	errNoMovementPoints = errors.New("No movement points remaining. Roll dice first!")
	errInvalidRoom      = errors.New("Not in a valid room")
)

const xpPerCase = 50

// PlayerSession is the per-connection player record, owned by exactly
// one Room. Sessions are never deleted; disconnects only clear the
// connected flag so stats and position survive a drop.
type PlayerSession struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	SpriteID                string `json:"spriteId"`
	Row                     int    `json:"row"`
	Col                     int    `json:"col"`
	XP                      int    `json:"xp"`
	Level                   int    `json:"level"`
	CasesSolved             int    `json:"casesSolved"`
	Connected               bool   `json:"connected"`
	MovementPointsRemaining int    `json:"movementPointsRemaining"`
	Inventory               []Clue `json:"inventory"`
}

// snapshot returns a copy safe to hand to the write pumps, which
// marshal concurrently with later mutations.
func (p *PlayerSession) snapshot() PlayerSession {
	cp := *p
	cp.Inventory = slices.Clone(p.Inventory)
	return cp
}

// Room holds the authoritative state for one join code. All mutation
// goes through methods that hold mu, so every action is atomic with
// respect to other actions and the registry sweep.
type Room struct {
	code string

	mu        sync.RWMutex
	players   map[string]*PlayerSession
	joinOrder []string
	clients   map[*Client]bool

	createdAt    time.Time
	lastActivity time.Time

	// randomness, injectable for tests
	rollDie func() int
	chance  func() float64
	pick    func(n int) int
}

func newRoom(code string) *Room {
	now := time.Now()
	return &Room{
		code:         code,
		players:      make(map[string]*PlayerSession),
		clients:      make(map[*Client]bool),
		createdAt:    now,
		lastActivity: now,
		rollDie:      func() int { return rand.IntN(6) + 1 },
		chance:       rand.Float64,
		pick:         rand.IntN,
	}
}

func (r *Room) touchLocked() {
	r.lastActivity = time.Now()
}

// broadcastLocked fans msg out to every connected client in the room,
// except the one passed (nil means everyone). Slow clients are skipped
// rather than blocking the action.
func (r *Room) broadcastLocked(msg any, except *Client) {
	for client := range r.clients {
		if client == except {
			continue
		}
		select {
		case client.send <- msg:
		default:
		}
	}
}

func (r *Room) sessionLocked(c *Client) (*PlayerSession, error) {
	player, ok := r.players[c.id]
	if !ok {
		return nil, errPlayerNotFound
	}
	return player, nil
}

// join registers a fresh session for the connection and returns the full
// roster (including the joiner) in join order. Existing members are
// notified with a playerJoined push.
func (r *Room) join(c *Client, in PlayerInput) JoinRoomResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := in.Name
	if name == "" {
		name = fmt.Sprintf("Player %.4s", c.id)
	}
	spriteID := in.SpriteID
	if spriteID == "" {
		spriteID = "default"
	}

	player := &PlayerSession{
		ID:        c.id,
		Name:      name,
		SpriteID:  spriteID,
		Row:       in.Row,
		Col:       in.Col,
		Level:     levelForXP(0),
		Connected: true,
		Inventory: []Clue{},
	}

	if _, rejoining := r.players[c.id]; !rejoining {
		r.joinOrder = append(r.joinOrder, c.id)
	}
	r.players[c.id] = player
	r.clients[c] = true
	r.touchLocked()

	roster := make([]PlayerSession, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		roster = append(roster, r.players[id].snapshot())
	}

	r.broadcastLocked(PlayerJoinedMessage{
		Type:   "playerJoined",
		Player: player.snapshot(),
	}, c)

	return JoinRoomResult{Players: roster, YourID: c.id}
}

// disconnect flags the connection's session inactive without removing
// it, and tells the rest of the room. Safe to call for connections that
// never joined.
func (r *Room) disconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, c)

	player, ok := r.players[c.id]
	if !ok {
		return
	}

	player.Connected = false
	r.touchLocked()

	r.broadcastLocked(PlayerDisconnectedMessage{
		Type:     "playerDisconnected",
		PlayerID: c.id,
	}, c)
}

func isAdjacent(from, to GridPos) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	return (rowDiff == 1 && colDiff == 0) || (rowDiff == 0 && colDiff == 1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// move is the no-dice movement used by the solo mode: the same
// adjacency rule as moveStep, minus the movement-point gate.
func (r *Room) move(c *Client, from, to GridPos) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.sessionLocked(c); err != nil {
		return err
	}

	if !isAdjacent(from, to) {
		return errNotAdjacent
	}

	player := r.players[c.id]
	player.Row = to.Row
	player.Col = to.Col
	r.touchLocked()

	r.broadcastLocked(PlayerMovedMessage{
		Type:     "playerMoved",
		PlayerID: c.id,
		From:     from,
		To:       to,
	}, nil)

	return nil
}

// moveStep consumes one movement point per tile. Validation happens
// fully before any state write.
func (r *Room) moveStep(c *Client, from, to GridPos) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, err := r.sessionLocked(c)
	if err != nil {
		return 0, err
	}

	if player.MovementPointsRemaining <= 0 {
		return 0, errNoMovementPoints
	}

	if !isAdjacent(from, to) {
		return 0, errNotAdjacent
	}

	player.Row = to.Row
	player.Col = to.Col
	player.MovementPointsRemaining--
	r.touchLocked()

	remaining := player.MovementPointsRemaining
	r.broadcastLocked(PlayerMovedMessage{
		Type:                    "playerMoved",
		PlayerID:                c.id,
		From:                    from,
		To:                      to,
		MovementPointsRemaining: &remaining,
	}, nil)

	return remaining, nil
}

// rollDice draws 1-6 and overwrites (not adds to) the session's
// movement budget.
func (r *Room) rollDice(c *Client) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, err := r.sessionLocked(c)
	if err != nil {
		return 0, err
	}

	roll := r.rollDie()
	player.MovementPointsRemaining = roll
	r.touchLocked()

	r.broadcastLocked(DiceRolledMessage{
		Type:       "diceRolled",
		PlayerID:   c.id,
		PlayerName: player.Name,
		Roll:       roll,
	}, nil)

	return roll, nil
}

// search runs one independent trial against the clue catalog for the
// given board room. A found clue is tagged with the searched room,
// appended to the inventory, and the xp award applied.
func (r *Room) search(c *Client, boardRoomID string) (SearchRoomResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, err := r.sessionLocked(c)
	if err != nil {
		return SearchRoomResult{}, err
	}

	if boardRoomID == "" {
		return SearchRoomResult{}, errInvalidRoom
	}

	foundIDs := make([]string, 0, len(player.Inventory))
	for _, held := range player.Inventory {
		foundIDs = append(foundIDs, held.ID)
	}

	def, found := searchRoomForClue(boardRoomID, foundIDs, r.chance, r.pick)
	if !found {
		return SearchRoomResult{Found: false}, nil
	}

	clue := Clue{ClueDefinition: def, RoomID: boardRoomID}
	player.Inventory = append(player.Inventory, clue)
	player.XP += def.XPAward
	player.Level = levelForXP(player.XP)
	r.touchLocked()

	gameLog.Infow("clue found",
		"room", r.code,
		"player", player.Name,
		"clue", def.ID,
		"in", boardRoomID,
	)

	r.broadcastLocked(ClueFoundMessage{
		Type:       "clueFound",
		PlayerID:   c.id,
		PlayerName: player.Name,
		Clue:       clue,
		RoomID:     boardRoomID,
	}, nil)
	r.broadcastLocked(PlayerStatsUpdatedMessage{
		Type:        "playerStatsUpdated",
		PlayerID:    c.id,
		CasesSolved: player.CasesSolved,
		XP:          player.XP,
		Level:       player.Level,
	}, nil)

	return SearchRoomResult{
		Found: true,
		Clue:  &clue,
		XP:    player.XP,
		Level: player.Level,
	}, nil
}

// solve credits a solved case. There is no puzzle check here; the
// multiplayer path trusts the client's solve flow and only tracks stats.
func (r *Room) solve(c *Client) (PlayerSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, err := r.sessionLocked(c)
	if err != nil {
		return PlayerSession{}, err
	}

	player.CasesSolved++
	player.XP += xpPerCase
	player.Level = levelForXP(player.XP)
	r.touchLocked()

	gameLog.Infow("case solved",
		"room", r.code,
		"player", player.Name,
		"casesSolved", player.CasesSolved,
		"xp", player.XP,
		"level", player.Level,
	)

	r.broadcastLocked(PlayerStatsUpdatedMessage{
		Type:        "playerStatsUpdated",
		PlayerID:    c.id,
		CasesSolved: player.CasesSolved,
		XP:          player.XP,
		Level:       player.Level,
	}, nil)

	return player.snapshot(), nil
}

// reapable reports whether every session has dropped and the room has
// been idle since cutoff. A room nobody ever joined is trivially
// eligible once idle.
func (r *Room) reapable(cutoff time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, player := range r.players {
		if player.Connected {
			return false
		}
	}

	return r.lastActivity.Before(cutoff)
}
