package main

// GridPos is a board tile position.
type GridPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PlayerInput is the caller-supplied portion of a joinRoom request.
// Every field is optional; blanks are defaulted server-side.
type PlayerInput struct {
	Name     string `json:"name,omitempty"`
	SpriteID string `json:"spriteId,omitempty"`
	Row      int    `json:"row,omitempty"`
	Col      int    `json:"col,omitempty"`
}

// ClientMessage is the envelope for requests coming from clients.
type ClientMessage struct {
	Type   string       `json:"type"` // "createRoom", "joinRoom", "move", "moveStep", "rollDice", "searchRoom", "solveCase"
	ID     int64        `json:"id,omitempty"`
	Code   string       `json:"code,omitempty"`   // join code, all but createRoom
	Player *PlayerInput `json:"player,omitempty"` // joinRoom
	From   *GridPos     `json:"from,omitempty"`   // move / moveStep
	To     *GridPos     `json:"to,omitempty"`     // move / moveStep
	RoomID string       `json:"roomId,omitempty"` // searchRoom
}

// ResponseMessage answers exactly one request, correlated by ID.
type ResponseMessage struct {
	Type    string `json:"type"` // "response"
	ID      int64  `json:"id,omitempty"`
	Request string `json:"request"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

type CreateRoomResult struct {
	Code string `json:"code"`
}

type JoinRoomResult struct {
	Players []PlayerSession `json:"players"`
	YourID  string          `json:"yourId"`
}

type MoveStepResult struct {
	MovementPointsRemaining int `json:"movementPointsRemaining"`
}

type RollDiceResult struct {
	Roll           int `json:"roll"`
	MovementPoints int `json:"movementPoints"`
}

type SearchRoomResult struct {
	Found bool  `json:"found"`
	Clue  *Clue `json:"clue,omitempty"`
	XP    int   `json:"xp,omitempty"`
	Level int   `json:"level,omitempty"`
}

type SolveCaseResult struct {
	Player PlayerSession `json:"player"`
}

// PlayerJoinedMessage is pushed to existing room members when a new
// session joins; the joiner itself gets the full roster in its response.
type PlayerJoinedMessage struct {
	Type   string        `json:"type"` // "playerJoined"
	Player PlayerSession `json:"player"`
}

type PlayerMovedMessage struct {
	Type                    string  `json:"type"` // "playerMoved"
	PlayerID                string  `json:"playerId"`
	From                    GridPos `json:"from"`
	To                      GridPos `json:"to"`
	MovementPointsRemaining *int    `json:"movementPointsRemaining,omitempty"`
}

type DiceRolledMessage struct {
	Type       string `json:"type"` // "diceRolled"
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Roll       int    `json:"roll"`
}

type ClueFoundMessage struct {
	Type       string `json:"type"` // "clueFound"
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Clue       Clue   `json:"clue"`
	RoomID     string `json:"roomId"`
}

type PlayerStatsUpdatedMessage struct {
	Type        string `json:"type"` // "playerStatsUpdated"
	PlayerID    string `json:"playerId"`
	CasesSolved int    `json:"casesSolved"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
}

type PlayerDisconnectedMessage struct {
	Type     string `json:"type"` // "playerDisconnected"
	PlayerID string `json:"playerId"`
}
