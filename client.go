package main

import (
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	maxRoomNameLen = 30
)

// Client is a websocket connection. It implements Session: rooms push
// packets through SendJSON/SendBinary and move it with Migrate.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	log        *zap.Logger

	room       atomic.Pointer[Room]
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		log:        hub.log.With(zap.String("remote", remoteAddr)),
	}
}

// ReadPump reads messages from the websocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Release(c.remoteAddr)
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limit := c.hub.cfg.Server.MaxMessagesPerSec
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("ws read error", zap.Error(err))
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if limit > 0 && c.msgCount > limit {
			c.log.Warn("rate limit exceeded, disconnecting")
			break
		}
		c.handleMessage(message)
	}
}

// WritePump writes messages to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF marks a binary frame queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON text message
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal error", zap.Error(err))
		return
	}
	c.enqueue(data)
}

// SendBinary sends pre-encoded bytes as a binary message
func (c *Client) SendBinary(data []byte) {
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	c.enqueue(msg)
}

func (c *Client) enqueue(data []byte) {
	// send is closed by the hub on unregister
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// too slow, drop
	}
}

// Migrate points the connection at the room that replaced its old one
func (c *Client) Migrate(r *Room) {
	c.room.Store(r)
}

// Room returns the room the connection is seated in, or nil
func (c *Client) Room() *Room {
	return c.room.Load()
}

func (c *Client) sendError(err error) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Code: errCode(err), Msg: err.Error()}})
}

func errCode(err error) string {
	switch {
	case errors.Is(err, ErrCorruptedData):
		return ErrCodeCorrupted
	case errors.Is(err, ErrNotElite):
		return ErrCodeNotElite
	case errors.Is(err, ErrRoomFull):
		return ErrCodeRoomFull
	case errors.Is(err, ErrBadPassword):
		return ErrCodePassword
	case errors.Is(err, ErrNoRoom), errors.Is(err, ErrRoomClosed):
		return ErrCodeNoRoom
	case errors.Is(err, ErrUnknownMap):
		return ErrCodeBadMap
	case errors.Is(err, ErrInvalidToken):
		return ErrCodeToken
	case errors.Is(err, ErrRoomExists):
		return ErrCodeExists
	}
	return ErrCodeInternal
}

// handleMessage routes incoming messages
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("unmarshal error", zap.Error(err))
		return
	}

	switch env.T {
	case MsgList:
		c.SendJSON(Envelope{T: MsgRooms, Data: c.hub.rooms.List()})
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.leave()
	case MsgCharacter:
		c.handleCharacter(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgCast:
		c.handleCast(env.D)
	case MsgReady:
		c.submit(func(r *Room) { r.Ready(c) })
	}
}

// identify resolves the connection's identity from a token or a bare
// nickname. Only tokens can grant elite characters.
func (c *Client) identify(token, nickname string) (PlayerInfo, error) {
	if token != "" {
		claims, err := c.hub.auth.ValidateToken(token)
		if err != nil {
			return PlayerInfo{}, err
		}
		return PlayerInfo{Nickname: claims.Nickname, Account: claims.Account, EliteAllowed: claims.Elite}, nil
	}
	if nickname == "" {
		return PlayerInfo{Nickname: GuestName()}, nil
	}
	nick, err := CleanNickname(nickname)
	if err != nil {
		return PlayerInfo{}, err
	}
	return PlayerInfo{Nickname: nick}, nil
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	info, err := c.identify(msg.Token, msg.Nickname)
	if err != nil {
		c.sendError(err)
		return
	}
	name := strings.TrimSpace(msg.Room)
	if name == "" {
		name = info.Nickname + "'s room"
	}
	if len(name) > maxRoomNameLen {
		name = name[:maxRoomNameLen]
	}
	mode := ModeFreeForAll
	if msg.Mode != "" {
		if mode, err = ParseMode(msg.Mode); err != nil {
			c.sendError(ErrCorruptedData)
			return
		}
	}
	if _, err := c.hub.rooms.Create(CreateRoomParams{
		Name:       name,
		MapID:      msg.Map,
		Mode:       mode,
		Password:   msg.Password,
		MaxPlayers: msg.MaxPlayers,
	}); err != nil {
		c.sendError(err)
		return
	}
	c.log.Info("room created", zap.String("room", name), zap.String("nickname", info.Nickname))
	c.enter(name, msg.Password, info)
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	info, err := c.identify(msg.Token, msg.Nickname)
	if err != nil {
		c.sendError(err)
		return
	}
	c.enter(msg.Room, msg.Password, info)
}

func (c *Client) enter(name, password string, info PlayerInfo) {
	c.leave()
	r, err := c.hub.rooms.Join(name, password, c, info)
	if err != nil {
		c.sendError(err)
		return
	}
	c.room.Store(r)
}

// leave removes the connection from its room, if any
func (c *Client) leave() {
	r := c.room.Swap(nil)
	if r == nil {
		return
	}
	r.Submit(func(r *Room) { r.RemoveSession(c) })
}

func (c *Client) submit(fn func(*Room)) {
	r := c.Room()
	if r == nil {
		return
	}
	if err := r.Submit(fn); err != nil {
		if errors.Is(err, ErrRoomClosed) && c.room.CompareAndSwap(r, nil) {
			c.sendError(err)
			return
		}
		c.log.Warn("room command dropped", zap.String("room", r.Name), zap.Error(err))
	}
}

func (c *Client) handleCharacter(data json.RawMessage) {
	var msg CharacterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCorruptedData)
		return
	}
	req := CharacterRequest{Class: ClassID(msg.Class), Elite: msg.Elite, Abilities: msg.Abilities}
	c.submit(func(r *Room) { r.CreateCharacter(c, req) })
}

func (c *Client) handleMove(data json.RawMessage) {
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.submit(func(r *Room) { r.MoveTo(c, msg.X, msg.Y) })
}

func (c *Client) handleCast(data json.RawMessage) {
	var msg CastMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.submit(func(r *Room) { r.CastAbility(c, msg.Element, msg.X, msg.Y) })
}
