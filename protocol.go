package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin      = "join"
	MsgCreate    = "create" // create a room
	MsgList      = "list"   // list rooms
	MsgLeave     = "leave"
	MsgCharacter = "character" // create-character
	MsgMove      = "move"
	MsgCast      = "cast"
	MsgReady     = "ready" // client finished loading, wants a full dump
)

// Server -> Client message types
const (
	MsgSnapshot         = "snapshot" // binary, documented for schemas only
	MsgJoined           = "joined"
	MsgRooms            = "rooms"
	MsgError            = "error"
	MsgCharacterCreated = "character_created"
	MsgCharacterKilled  = "character_killed"
	MsgCooldown         = "cooldown"
	MsgEffect           = "effect"
	MsgAttach           = "attach"
	MsgEntityFalling    = "falling"
	MsgMapSwitch        = "map_switch"
	MsgScores           = "scores"
)

// Rejection codes carried by ErrorMsg
const (
	ErrCodeCorrupted = "corrupted"
	ErrCodeNotElite  = "not_elite"
	ErrCodeRoomFull  = "room_full"
	ErrCodePassword  = "password"
	ErrCodeNoRoom    = "no_room"
	ErrCodeBadMap    = "bad_map"
	ErrCodeToken     = "token"
	ErrCodeExists    = "exists"
	ErrCodeInternal  = "internal"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; the payload is decoded once the
// type is known.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg asks to enter a room. A token, when present, supplies the
// nickname and account.
type JoinMsg struct {
	Room     string `json:"room"`
	Password string `json:"pw,omitempty"`
	Nickname string `json:"name"`
	Token    string `json:"token,omitempty"`
}

// CreateMsg asks the lobby to build a room
type CreateMsg struct {
	Room       string `json:"room"`
	Password   string `json:"pw,omitempty"`
	Map        string `json:"map"`
	Mode       string `json:"mode"` // "ffa" or "teams"
	MaxPlayers int    `json:"max,omitempty"`
	Nickname   string `json:"name"`
	Token      string `json:"token,omitempty"`
}

// CharacterMsg is the create-character command
type CharacterMsg struct {
	Class     int    `json:"class"`
	Elite     bool   `json:"elite"`
	Abilities [4]int `json:"abilities"`
}

// MoveMsg sets the movement destination
type MoveMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CastMsg casts the equipped ability of an element at a point
type CastMsg struct {
	Element int     `json:"e"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// JoinedMsg confirms room entry
type JoinedMsg struct {
	Room      string `json:"room"`
	RoomIndex int32  `json:"ri"`
	Map       string `json:"map"`
	Mode      string `json:"mode"`
	Team      int    `json:"team"`
}

// RoomInfo is used in the room list
type RoomInfo struct {
	Name       string `json:"name"`
	Map        string `json:"map"`
	Mode       string `json:"mode"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max"`
	Locked     bool   `json:"locked"`
}

// ErrorMsg rejects a command
type ErrorMsg struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// CharacterCreatedMsg announces a new player or summon
type CharacterCreatedMsg struct {
	Index  int32   `json:"i"`
	Team   int     `json:"team"`
	Name   string  `json:"name"`
	Class  int     `json:"class"`
	Elite  bool    `json:"elite"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Caster int32   `json:"caster,omitempty"` // summons only
	Own    bool    `json:"own,omitempty"`    // set for the receiving player's character
}

// CharacterKilledMsg announces a death
type CharacterKilledMsg struct {
	Index      int32  `json:"i"`
	Killer     int32  `json:"k,omitempty"`
	KillerName string `json:"kn,omitempty"`
}

// CooldownMsg is sent to the caster when an ability goes on cooldown
type CooldownMsg struct {
	Element uint8   `json:"e"`
	Seconds float64 `json:"s"`
}

// EffectMsg displays an effect at a fixed position
type EffectMsg struct {
	Effect   string  `json:"fx"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Duration float64 `json:"dur"`
}

// AttachMsg displays an effect following an entity
type AttachMsg struct {
	Effect   string  `json:"fx"`
	Index    int32   `json:"i"`
	Duration float64 `json:"dur"`
}

// EntityFallingMsg plays the void-death animation
type EntityFallingMsg struct {
	Index int32   `json:"i"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// MapSwitchMsg moves the connection into a freshly built room
type MapSwitchMsg struct {
	Map       string `json:"map"`
	RoomIndex int32  `json:"ri"`
}

// ScoreEntry is one row of the client-ready dump
type ScoreEntry struct {
	Index  int32  `json:"i"`
	Name   string `json:"name"`
	Kills  int    `json:"k"`
	Deaths int    `json:"d"`
}

// ScoresMsg is the score part of the client-ready dump
type ScoresMsg struct {
	Scores []ScoreEntry `json:"scores"`
}
