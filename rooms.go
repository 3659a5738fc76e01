package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// CreateRoomParams are the lobby parameters for a new room
type CreateRoomParams struct {
	Name       string
	MapID      string
	Mode       GameMode
	Password   string
	MaxPlayers int
}

// RoomManager handles creation, lookup and rotation of rooms. It never
// touches room state directly; rooms call back into it from their own
// goroutine.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	ctx     context.Context
	cfg     *Config
	maps    *MapCatalog
	tables  *Tables
	scores  ScoreStore
	log     *zap.Logger
	nextIdx atomic.Int32
	wg      sync.WaitGroup
}

// NewRoomManager creates a manager whose rooms run until ctx is cancelled
func NewRoomManager(ctx context.Context, cfg *Config, maps *MapCatalog, tables *Tables, scores ScoreStore, log *zap.Logger) *RoomManager {
	if scores == nil {
		scores = nopScores{}
	}
	return &RoomManager{
		rooms:  make(map[string]*Room),
		ctx:    ctx,
		cfg:    cfg,
		maps:   maps,
		tables: tables,
		scores: scores,
		log:    log,
	}
}

// Create builds and starts a room. Returns ErrRoomExists, ErrRoomFull when
// the room limit is reached, or a map error.
func (m *RoomManager) Create(p CreateRoomParams) (*Room, error) {
	mapDef := m.maps.Default()
	if p.MapID != "" {
		var err error
		if mapDef, err = m.maps.Get(p.MapID); err != nil {
			return nil, err
		}
	}
	var hash []byte
	if p.Password != "" {
		var err error
		if hash, err = HashPassword(p.Password, m.cfg.Auth.BcryptCost); err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
	}
	if p.MaxPlayers <= 0 {
		p.MaxPlayers = m.cfg.Rooms.DefaultMaxPlayers
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[p.Name]; ok {
		return nil, ErrRoomExists
	}
	if len(m.rooms) >= m.cfg.Rooms.MaxRooms {
		return nil, ErrRoomFull
	}
	r, err := m.build(p.Name, mapDef, p.Mode, p.MaxPlayers, hash)
	if err != nil {
		return nil, err
	}
	m.rooms[p.Name] = r
	m.start(r)
	return r, nil
}

func (m *RoomManager) build(name string, mapDef *MapDef, mode GameMode, maxPlayers int, hash []byte) (*Room, error) {
	return NewRoom(RoomOptions{
		Name:         name,
		Index:        m.nextIdx.Add(1),
		Map:          mapDef,
		Mode:         mode,
		MaxPlayers:   maxPlayers,
		PasswordHash: hash,
		Tables:       m.tables,
		Sim:          m.cfg.Simulation,
		Scores:       m.scores,
		Log:          m.log,
		OnRotate:     m.rotate,
		OnEmpty:      m.remove,
	})
}

func (m *RoomManager) start(r *Room) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		r.Run(m.ctx)
	}()
}

// Join checks the password and capacity, then seats s in the room
func (m *RoomManager) Join(name, password string, s Session, info PlayerInfo) (*Room, error) {
	r := m.Get(name)
	if r == nil {
		return nil, ErrNoRoom
	}
	if r.Locked() && !CheckPassword(r.passwordHash, password) {
		return nil, ErrBadPassword
	}
	if r.PlayerCount() >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	if err := r.SubmitJoin(s, info); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a room by name
func (m *RoomManager) Get(name string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[name]
}

// List returns info about all active rooms
func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		list = append(list, RoomInfo{
			Name:       r.Name,
			Map:        r.Map.ID,
			Mode:       r.Mode.String(),
			Players:    r.PlayerCount(),
			MaxPlayers: r.MaxPlayers,
			Locked:     r.Locked(),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Count returns the number of active rooms
func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// remove drops an empty room; called from the room goroutine
func (m *RoomManager) remove(r *Room) {
	m.mu.Lock()
	if m.rooms[r.Name] == r {
		delete(m.rooms, r.Name)
	}
	m.mu.Unlock()
	r.Close()
}

// rotate replaces r with a fresh room of the same name on the next map and
// migrates every connection into it. Called from r's goroutine.
func (m *RoomManager) rotate(r *Room) {
	next := m.maps.Next(r.Map.ID)
	fresh, err := m.build(r.Name, next, r.Mode, r.MaxPlayers, r.passwordHash)
	if err != nil {
		m.log.Error("map rotation failed", zap.String("room", r.Name), zap.String("map", next.ID), zap.Error(err))
		return
	}

	m.mu.Lock()
	if m.rooms[r.Name] != r {
		m.mu.Unlock()
		return
	}
	m.rooms[r.Name] = fresh
	m.mu.Unlock()
	m.start(fresh)

	for _, s := range r.Sessions() {
		info, _ := r.PlayerInfoOf(s)
		s.SendJSON(Envelope{T: MsgMapSwitch, Data: MapSwitchMsg{Map: next.ID, RoomIndex: fresh.Index}})
		s.Migrate(fresh)
		fresh.Submit(func(fr *Room) { fr.AddSession(s, info) })
	}
	m.log.Info("map rotated", zap.String("room", r.Name), zap.String("from", r.Map.ID), zap.String("to", next.ID))
	r.Close()
}

// Shutdown closes every room and waits for their loops to exit
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
	m.wg.Wait()
}
