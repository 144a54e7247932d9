// Get-a-clue multiplayer gateway
//
// Players explore a mansion board, roll dice for movement points, search
// rooms for clues, and solve the case. Rooms are addressed by 6-character
// join codes and coordinate over a single WebSocket per player.
//
// Features:
// - One WebSocket endpoint at /ws; requests carry the join code
// - Request/response correlation via a client-chosen id, plus push events
// - Join codes via crypto/rand, with server-side collision re-roll
// - Dice rolls (1-6) overwrite the movement budget; steps consume one point
// - Movement restricted to orthogonally adjacent tiles
// - Room searches roll against the clue catalog; duplicates are never awarded
// - XP and level broadcast to the whole room on every stats change
// - Disconnected players are kept (greyed out client-side), never deleted
// - Idle rooms reaped once every player has dropped
// - In-browser QR button to share a room URL, backed by go-qrcode

package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Client is one WebSocket connection. Its id is the session identity:
// a reconnect gets a fresh id and therefore a fresh session.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any

	// rooms this connection has joined; touched only by the read pump
	rooms map[string]*Room
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:    uuid.NewString(),
		conn:  conn,
		send:  make(chan any, 64),
		rooms: make(map[string]*Room),
	}
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.clientOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == cfg.clientOrigin
		},
	}
}

func serveClueHuntWS(cfg *Config, registry *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		upgrader := newUpgrader(cfg)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn)
		logf(cfg, "GAMES: Client %s connected from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(cfg, registry)
	}
}

func (c *Client) readPump(cfg *Config, registry *RoomRegistry) {
	defer func() {
		for _, room := range c.rooms {
			room.disconnect(c)
		}
		_ = c.conn.Close()
		close(c.send)
		logf(cfg, "GAMES: Client %s disconnected", c.id)
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		c.handle(cfg, registry, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			// keep draining so the read pump never blocks on send
			for range c.send {
			}
			return
		}
	}
}

func (c *Client) reply(msg ClientMessage, result any) {
	c.send <- ResponseMessage{
		Type:    "response",
		ID:      msg.ID,
		Request: msg.Type,
		Success: true,
		Result:  result,
	}
}

func (c *Client) replyError(msg ClientMessage, text string) {
	c.send <- ResponseMessage{
		Type:    "response",
		ID:      msg.ID,
		Request: msg.Type,
		Success: false,
		Error:   text,
	}
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// room resolves the join code of a room-scoped request.
func (c *Client) room(registry *RoomRegistry, msg ClientMessage) (*Room, bool) {
	room, ok := registry.get(normalizeCode(msg.Code))
	if !ok {
		c.replyError(msg, errRoomNotFound.Error())
		return nil, false
	}
	return room, true
}

// handle validates one request against current room and player state,
// applies it, and answers the requester. Push events for the rest of
// the room are fanned out by the room methods themselves.
func (c *Client) handle(cfg *Config, registry *RoomRegistry, msg ClientMessage) {
	switch msg.Type {
	case "createRoom":
		room := registry.create()
		logf(cfg, "GAMES: Created room %s", room.code)
		gameLog.Infow("room created", "room", room.code)
		c.reply(msg, CreateRoomResult{Code: room.code})

	case "joinRoom":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		var in PlayerInput
		if msg.Player != nil {
			in = *msg.Player
		}
		result := room.join(c, in)
		c.rooms[room.code] = room
		logf(cfg, "GAMES: Player %q joined room %s", in.Name, room.code)
		c.reply(msg, result)

	case "move":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		if msg.From == nil || msg.To == nil {
			c.replyError(msg, "Invalid move payload")
			return
		}
		if err := room.move(c, *msg.From, *msg.To); err != nil {
			c.replyError(msg, err.Error())
			return
		}
		c.reply(msg, nil)

	case "moveStep":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		if msg.From == nil || msg.To == nil {
			c.replyError(msg, "Invalid moveStep payload")
			return
		}
		remaining, err := room.moveStep(c, *msg.From, *msg.To)
		if err != nil {
			c.replyError(msg, err.Error())
			return
		}
		c.reply(msg, MoveStepResult{MovementPointsRemaining: remaining})

	case "rollDice":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		roll, err := room.rollDice(c)
		if err != nil {
			c.replyError(msg, err.Error())
			return
		}
		c.reply(msg, RollDiceResult{Roll: roll, MovementPoints: roll})

	case "searchRoom":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		result, err := room.search(c, msg.RoomID)
		if err != nil {
			c.replyError(msg, err.Error())
			return
		}
		c.reply(msg, result)

	case "solveCase":
		room, ok := c.room(registry, msg)
		if !ok {
			return
		}
		player, err := room.solve(c)
		if err != nil {
			c.replyError(msg, err.Error())
			return
		}
		c.reply(msg, SolveCaseResult{Player: player})

	default:
		c.replyError(msg, "Unknown request type")
	}
}

func serveGameIndex(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/clue/index.html")
		if err != nil {
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write(data)
	}
}

// qrHandler generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:code/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerClueHunt sets up routes so that:
//   - $path             → HTML client (create or enter a code in-page)
//   - $path/:code       → HTML client, pre-filled with the join code
//   - $path/:code/qr    → PNG QR code for that room URL
//   - /ws               → WebSocket shared by all rooms
func registerClueHunt(cfg *Config, path string, registry *RoomRegistry, mux *httprouter.Router) {
	mux.GET(cfg.prefix+path, serveGameIndex(cfg))

	mux.GET(cfg.prefix+path+"/:code", serveGameIndex(cfg))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)

	mux.GET(cfg.prefix+"/ws", serveClueHuntWS(cfg, registry))
}
