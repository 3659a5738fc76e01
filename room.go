package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// GameMode selects free-for-all or two-team play
type GameMode uint8

const (
	ModeFreeForAll GameMode = iota
	ModeTeams
)

func (m GameMode) String() string {
	if m == ModeTeams {
		return "teams"
	}
	return "ffa"
}

// ParseMode accepts "ffa" (or empty) and "teams"
func ParseMode(s string) (GameMode, error) {
	switch s {
	case "", "ffa":
		return ModeFreeForAll, nil
	case "teams":
		return ModeTeams, nil
	}
	return 0, fmt.Errorf("unknown game mode %q", s)
}

// Session is the room's view of a connection
type Session interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
	Migrate(r *Room)
}

// ScoreStore receives kill/death tallies
type ScoreStore interface {
	AddKill(nickname string)
	AddDeath(nickname string)
}

type nopScores struct{}

func (nopScores) AddKill(string)  {}
func (nopScores) AddDeath(string) {}

// RoomOptions are the construction parameters supplied by the lobby
type RoomOptions struct {
	Name         string
	Index        int32
	Map          *MapDef
	Mode         GameMode
	MaxPlayers   int
	PasswordHash []byte
	Tables       *Tables
	Sim          SimulationConfig
	Scores       ScoreStore
	Log          *zap.Logger
	Seed         int64

	// OnRotate runs on the room goroutine when the rotation timer fires
	OnRotate func(*Room)
	// OnEmpty runs on the room goroutine when the last player leaves
	OnEmpty func(*Room)
}

// Room is one isolated match. All simulation state is owned by the
// goroutine running Run; other goroutines talk to it through Submit.
type Room struct {
	Name       string
	Index      int32
	Map        *MapDef
	Mode       GameMode
	MaxPlayers int

	passwordHash []byte
	tables       *Tables
	cfg          SimulationConfig
	log          *zap.Logger
	rng          *rand.Rand
	scores       ScoreStore

	world   *PhysicsWorld
	reg     *Registry
	events  EventQueue
	grid    *SpatialGrid
	gridBuf []*Character

	players     map[Session]*Player
	order       []Session
	spawnCursor int

	updateIndex uint32
	lastSeen    map[int32]struct{}
	outbox      []outbound
	tick        uint64

	rotationDue bool
	onRotate    func(*Room)
	onEmpty     func(*Room)

	inbox       chan func(*Room)
	stop        chan struct{}
	done        chan struct{}
	closed      atomic.Bool
	closeOnce   sync.Once
	playerCount atomic.Int32

	// joins submitted but not yet seated; answered with no_room on dispose
	joinMu      sync.Mutex
	joining     map[Session]struct{}
	joinsClosed bool
}

// NewRoom builds the room and its static geometry. A map that cannot be
// built fails the whole construction.
func NewRoom(opts RoomOptions) (*Room, error) {
	if opts.Map == nil {
		return nil, ErrUnknownMap
	}
	if opts.Tables == nil {
		opts.Tables = NewTables()
	}
	if opts.Scores == nil {
		opts.Scores = nopScores{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Sim.TickPeriod <= 0 {
		opts.Sim.TickPeriod = defaultConfig().Simulation.TickPeriod
	}
	if opts.Sim.InboxSize <= 0 {
		opts.Sim.InboxSize = defaultConfig().Simulation.InboxSize
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = defaultConfig().Rooms.DefaultMaxPlayers
	}

	r := &Room{
		Name:         opts.Name,
		Index:        opts.Index,
		Map:          opts.Map,
		Mode:         opts.Mode,
		MaxPlayers:   opts.MaxPlayers,
		passwordHash: opts.PasswordHash,
		tables:       opts.Tables,
		cfg:          opts.Sim,
		log:          opts.Log.With(zap.String("room", opts.Name), zap.Int32("room_index", opts.Index)),
		rng:          rand.New(rand.NewSource(opts.Seed)),
		scores:       opts.Scores,
		world:        NewPhysicsWorld(opts.Sim.Substeps),
		reg:          NewRegistry(),
		grid:         NewSpatialGrid(0, 0, opts.Map.Width, opts.Map.Height),
		players:      make(map[Session]*Player),
		lastSeen:     make(map[int32]struct{}),
		onRotate:     opts.OnRotate,
		onEmpty:      opts.OnEmpty,
		inbox:        make(chan func(*Room), opts.Sim.InboxSize),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		joining:      make(map[Session]struct{}),
	}
	if err := opts.Map.build(r); err != nil {
		return nil, fmt.Errorf("build map %s: %w", opts.Map.ID, err)
	}
	if opts.Sim.RotationInterval > 0 && opts.OnRotate != nil {
		r.events.Schedule(opts.Sim.RotationInterval.Seconds(), func() {
			r.rotationDue = true
		})
	}
	r.log.Info("room built", zap.String("map", opts.Map.ID), zap.Stringer("mode", opts.Mode))
	return r, nil
}

// Run drives the tick loop until ctx is cancelled or the room is closed,
// then frees every physics body.
func (r *Room) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.TickPeriod)
	defer r.dispose(ticker)

	dt := r.cfg.TickPeriod.Seconds()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.step(dt)
		}
	}
}

// Close stops the tick loop. Safe to call more than once and from any
// goroutine, including the room's own.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.stop)
	})
}

// Closed reports whether the room stopped accepting commands
func (r *Room) Closed() bool {
	return r.closed.Load()
}

// Done is closed once the room has been disposed
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Submit queues fn to run on the room goroutine at the next tick boundary
func (r *Room) Submit(fn func(*Room)) error {
	if r.closed.Load() {
		return ErrRoomClosed
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.stop:
		return ErrRoomClosed
	}
}

// SubmitJoin queues AddSession for s. If the room closes before the
// command runs, s gets a no_room error instead.
func (r *Room) SubmitJoin(s Session, info PlayerInfo) error {
	r.joinMu.Lock()
	if r.joinsClosed {
		r.joinMu.Unlock()
		return ErrRoomClosed
	}
	r.joining[s] = struct{}{}
	r.joinMu.Unlock()

	if err := r.Submit(func(r *Room) { r.AddSession(s, info) }); err != nil {
		r.joinMu.Lock()
		delete(r.joining, s)
		r.joinMu.Unlock()
		return err
	}
	return nil
}

// rejectJoins answers every join that never got seated
func (r *Room) rejectJoins() {
	r.joinMu.Lock()
	pending := r.joining
	r.joining = nil
	r.joinsClosed = true
	r.joinMu.Unlock()
	for s := range pending {
		s.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Code: ErrCodeNoRoom, Msg: ErrRoomClosed.Error()}})
	}
}

// PlayerCount is safe to read from any goroutine
func (r *Room) PlayerCount() int {
	return int(r.playerCount.Load())
}

// Locked reports whether joining needs a password
func (r *Room) Locked() bool {
	return len(r.passwordHash) > 0
}

// dispose stops the ticker before any body is freed
func (r *Room) dispose(ticker *time.Ticker) {
	if ticker != nil {
		ticker.Stop()
	}
	r.reg.Clear(r)
	r.events.Clear()
	for {
		select {
		case <-r.inbox:
		default:
			r.rejectJoins()
			close(r.done)
			r.log.Info("room disposed", zap.Uint64("ticks", r.tick))
			return
		}
	}
}

// step runs one tick
func (r *Room) step(dt float64) {
	r.tick++
	r.drainInbox()
	r.safely("physics", func() {
		r.world.Step(dt)
		r.grid.Invalidate()
	})
	r.safely("contacts", func() { r.resolveContacts(r.world.Drain()) })
	r.safely("events", func() { r.events.Advance(dt) })
	r.safely("characters", func() {
		for _, c := range r.reg.Characters() {
			c.update(r, dt)
		}
	})
	r.safely("projectiles", func() {
		for _, p := range r.reg.Projectiles() {
			p.update(r, dt)
		}
	})
	r.safely("clusters", func() {
		for _, c := range r.reg.clusters {
			c.update(r, dt)
		}
	})
	r.safely("removal", func() { r.reg.Flush(r) })
	r.safely("snapshot", r.broadcastSnapshot)
	r.safely("events-flush", r.flushEvents)
	for _, c := range r.reg.Characters() {
		c.refreshDisplay()
	}

	if r.rotationDue {
		r.rotationDue = false
		r.safely("rotation", func() { r.onRotate(r) })
	}
}

// drainInbox runs the commands queued before this tick started. Once a
// command closes the room the rest stay queued for dispose.
func (r *Room) drainInbox() {
	for n := len(r.inbox); n > 0 && !r.closed.Load(); n-- {
		fn := <-r.inbox
		r.safely("command", func() { fn(r) })
	}
}

// safely runs one tick phase; a panic drops that phase's effect and is
// logged, the room keeps running.
func (r *Room) safely(phase string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("tick phase panicked",
				zap.String("phase", phase),
				zap.Uint64("tick", r.tick),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()
	fn()
}

func (r *Room) overBudget(n int) bool {
	return r.cfg.MaxBodies > 0 && r.world.BodyCount()+n > r.cfg.MaxBodies
}

// --- commands, run on the room goroutine ---

// AddSession seats a connection. In team mode the smaller team gets it.
func (r *Room) AddSession(s Session, info PlayerInfo) {
	r.joinMu.Lock()
	delete(r.joining, s)
	r.joinMu.Unlock()
	if _, ok := r.players[s]; ok {
		return
	}
	if len(r.players) >= r.MaxPlayers {
		s.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Code: ErrCodeRoomFull, Msg: ErrRoomFull.Error()}})
		return
	}
	p := &Player{
		Session:      s,
		Nickname:     info.Nickname,
		Account:      info.Account,
		EliteAllowed: info.EliteAllowed,
		Team:         r.assignTeam(),
	}
	r.players[s] = p
	r.order = append(r.order, s)
	r.playerCount.Store(int32(len(r.players)))
	s.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{
		Room:      r.Name,
		RoomIndex: r.Index,
		Map:       r.Map.ID,
		Mode:      r.Mode.String(),
		Team:      p.Team,
	}})
	r.log.Info("player joined", zap.String("nickname", p.Nickname), zap.Int("team", p.Team))
}

func (r *Room) assignTeam() int {
	if r.Mode != ModeTeams {
		return NoTeam
	}
	var sizes [2]int
	for _, p := range r.players {
		if p.Team == 0 || p.Team == 1 {
			sizes[p.Team]++
		}
	}
	if sizes[1] < sizes[0] {
		return 1
	}
	return 0
}

// RemoveSession removes the connection's character and seat, then checks
// whether the room is still needed.
func (r *Room) RemoveSession(s Session) {
	p, ok := r.players[s]
	if !ok {
		return
	}
	if p.Character != nil {
		r.reg.RequestRemoval(p.Character)
	}
	delete(r.players, s)
	for i, o := range r.order {
		if o == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.playerCount.Store(int32(len(r.players)))
	r.log.Info("player left", zap.String("nickname", p.Nickname))
	if len(r.players) == 0 && r.onEmpty != nil {
		r.onEmpty(r)
	}
}

// CreateCharacter validates the request and spawns the connection's
// character. Rejections are reported to the sender only.
func (r *Room) CreateCharacter(s Session, req CharacterRequest) error {
	p, ok := r.players[s]
	if !ok {
		return ErrNoRoom
	}
	def, abilities, err := req.Validate(r.tables)
	if err != nil {
		s.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Code: ErrCodeCorrupted, Msg: err.Error()}})
		return err
	}
	if req.Elite && !p.EliteAllowed {
		s.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Code: ErrCodeNotElite, Msg: ErrNotElite.Error()}})
		return ErrNotElite
	}
	if old := p.Character; old != nil {
		r.reg.RequestRemoval(old)
		r.reg.Flush(r)
	}
	pos := r.Map.SpawnPoint(r.spawnCursor)
	r.spawnCursor++
	c := r.spawnCharacter(req.Class, def, req.Elite, p.Team, pos)
	c.Abilities = abilities
	c.Player = p
	p.Character = c
	r.announceCharacter(c, nil)
	r.log.Debug("character created",
		zap.Int32("index", c.Index()),
		zap.String("nickname", p.Nickname),
		zap.String("class", def.Name),
		zap.Bool("elite", req.Elite))
	return nil
}

// MoveTo sets the connection's character destination
func (r *Room) MoveTo(s Session, x, y float64) {
	if c := r.characterOf(s); c != nil {
		c.SetDestination(cp.Vector{X: x, Y: y})
	}
}

// CastAbility casts the connection's ability of an element at a point
func (r *Room) CastAbility(s Session, element int, x, y float64) bool {
	c := r.characterOf(s)
	if c == nil || element < 0 || element >= ElementCount {
		return false
	}
	return r.Cast(c, Element(element), cp.Vector{X: x, Y: y})
}

// Ready sends the full state dump to a freshly synced connection
func (r *Room) Ready(s Session) {
	if _, ok := r.players[s]; !ok {
		return
	}
	for _, c := range r.reg.Characters() {
		if c.Alive() {
			r.queueTo(s, MsgCharacterCreated, r.createdMsg(c, s))
		}
	}
	r.queueTo(s, MsgScores, ScoresMsg{Scores: r.Scores()})
}

// Scores lists every seated player's tally in join order
func (r *Room) Scores() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(r.order))
	for _, s := range r.order {
		p := r.players[s]
		e := ScoreEntry{Name: p.Nickname, Kills: p.Kills, Deaths: p.Deaths}
		if p.Character != nil {
			e.Index = p.Character.Index()
		}
		out = append(out, e)
	}
	return out
}

func (r *Room) characterOf(s Session) *Character {
	p, ok := r.players[s]
	if !ok || p.Character == nil || !p.Character.Alive() {
		return nil
	}
	return p.Character
}

// Sessions returns the seated connections in join order
func (r *Room) Sessions() []Session {
	return append([]Session(nil), r.order...)
}

// PlayerInfoOf returns what is needed to re-seat a connection elsewhere
func (r *Room) PlayerInfoOf(s Session) (PlayerInfo, bool) {
	p, ok := r.players[s]
	if !ok {
		return PlayerInfo{}, false
	}
	return PlayerInfo{Nickname: p.Nickname, Account: p.Account, EliteAllowed: p.EliteAllowed}, true
}

// spawnCharacter creates a character body at pos
func (r *Room) spawnCharacter(class ClassID, def *ClassDef, elite bool, team int, pos cp.Vector) *Character {
	c := newCharacter(r.reg.NextIndex(), class, def, elite, team)
	tag := TagPlayer
	if def.Creature != nil {
		tag = TagSummon
	}
	c.body = r.world.NewDynamicCircle(c, tag, pos, BodySpec{Radius: def.Radius, Density: def.Density, Friction: 0.4})
	r.reg.AddCharacter(c)
	r.grid.Invalidate()
	return c
}

// relocate moves a body outside the physics step
func (r *Room) relocate(body *cp.Body, pos cp.Vector) {
	Relocate(body, pos)
	r.grid.Invalidate()
}

// announceCharacter broadcasts a creation; only sends to one connection when
// to is set.
func (r *Room) announceCharacter(c *Character, to Session) {
	if to != nil {
		r.queueTo(to, MsgCharacterCreated, r.createdMsg(c, to))
		return
	}
	for _, s := range r.order {
		r.queueTo(s, MsgCharacterCreated, r.createdMsg(c, s))
	}
}

func (r *Room) createdMsg(c *Character, to Session) CharacterCreatedMsg {
	pos := c.Position()
	msg := CharacterCreatedMsg{
		Index: c.Index(),
		Team:  c.Team,
		Name:  c.Name(),
		Class: int(c.Class),
		Elite: c.Elite,
		X:     pos.X,
		Y:     pos.Y,
	}
	if c.AI != nil && c.AI.Caster != nil {
		msg.Caster = c.AI.Caster.Index()
	}
	if c.Player != nil && c.Player.Session == to {
		msg.Own = true
	}
	return msg
}

// forget drops every reference other entities hold to a destroyed character
func (r *Room) forget(c *Character) {
	for _, o := range r.reg.Characters() {
		if o.LastDamageDealer == c {
			o.LastDamageDealer = nil
		}
		if o.AI != nil && o.AI.Target == c {
			o.AI.DropTarget()
		}
	}
	for _, p := range r.reg.Projectiles() {
		if p.Caster == c {
			p.Caster = nil
		}
		if p.Target == c {
			p.Target = nil
		}
	}
	for _, cl := range r.reg.clusters {
		if cl.Caster == c {
			cl.Caster = nil
		}
	}
}

// detachCharacter clears the player's reference to a destroyed character
func (r *Room) detachCharacter(c *Character) {
	if c.Player != nil && c.Player.Character == c {
		c.Player.Character = nil
	}
}
