package main

import (
	"github.com/jakecoffman/cp"
)

const (
	NoTeam            = -1
	EliteHealthBonus  = 1.2
	SteerFactor       = 0.35 // fraction of the velocity error corrected per tick
	IdleDamping       = 0.8  // velocity multiplier per tick without a destination
	ArriveRadius      = 0.15
	LavaDamageRate    = -15.0 // per second while in a hazard zone
	VoidDamage        = -1000.0
	OutOfBoundsDamage = -1000.0
)

// Character is the single record behind players and summons. Player and AI
// are optional components; exactly one of them is set on a live character.
type Character struct {
	entityBase

	Class     ClassID
	def       *ClassDef
	Elite     bool
	Team      int
	Health    float64
	MaxHealth float64
	Speed     float64

	Abilities [ElementCount]*AbilityDef
	cooldowns [ElementCount]float64
	statuses  [statusCount]uint8

	destination    cp.Vector
	hasDestination bool
	Facing         uint8
	Anim           Anim

	LastDamageDealer *Character
	Events           EventQueue

	Player *Player
	AI     *AIState
	Summon *Character

	lastTeleporter int32
	dead           bool
}

// newCharacter builds the record; the room attaches the body
func newCharacter(index int32, class ClassID, def *ClassDef, elite bool, team int) *Character {
	maxHealth := def.MaxHealth
	if elite {
		maxHealth *= EliteHealthBonus
	}
	return &Character{
		entityBase: entityBase{index: index},
		Class:      class,
		def:        def,
		Elite:      elite,
		Team:       team,
		Health:     maxHealth,
		MaxHealth:  maxHealth,
		Speed:      def.Speed,
	}
}

// Alive reports whether the character can still act and be targeted
func (c *Character) Alive() bool {
	return !c.dead && !c.removed && !c.queued
}

// Name returns the player's nickname, or the class name for summons
func (c *Character) Name() string {
	if c.Player != nil {
		return c.Player.Nickname
	}
	return c.def.Name
}

// Owner returns the player character responsible for c: a summon's caster,
// or c itself.
func (c *Character) Owner() *Character {
	if c.AI != nil && c.AI.Caster != nil {
		return c.AI.Caster
	}
	return c
}

// sameSide reports whether a and b belong to the same player
func sameSide(a, b *Character) bool {
	return a != nil && b != nil && a.Owner() == b.Owner()
}

// Has reports whether at least one source of the status is active
func (c *Character) Has(s Status) bool {
	return c.statuses[s] > 0
}

// StatusCount returns the number of active sources of s
func (c *Character) StatusCount(s Status) uint8 {
	return c.statuses[s]
}

// AddStatus increments the counter, saturating at 255
func (c *Character) AddStatus(s Status) {
	if s == StatusNone || c.statuses[s] == 255 {
		return
	}
	c.statuses[s]++
	if c.statuses[s] == 1 && controlStatus(s) {
		c.loseControl()
	}
}

// RemoveStatus decrements the counter, saturating at 0
func (c *Character) RemoveStatus(s Status) {
	if s == StatusNone || c.statuses[s] == 0 {
		return
	}
	c.statuses[s]--
	if c.statuses[s] == 0 && s == StatusConfused {
		c.loseControl()
	}
}

func controlStatus(s Status) bool {
	return s == StatusConfused || s == StatusImmobilized || s == StatusParalyzed
}

// loseControl drops the pursuit target so the AI has to re-acquire
func (c *Character) loseControl() {
	if c.AI != nil {
		c.AI.DropTarget()
	}
}

// CanMove reports whether movement forces apply this tick
func (c *Character) CanMove() bool {
	return !c.Has(StatusImmobilized) && !c.Has(StatusParalyzed)
}

// Destination returns the current movement target
func (c *Character) Destination() (cp.Vector, bool) {
	return c.destination, c.hasDestination
}

// SetDestination overwrites the movement target, mirrored around the
// character while confused.
func (c *Character) SetDestination(p cp.Vector) {
	if c.Has(StatusConfused) && c.body != nil {
		p = Mirror(p, c.body.Position())
	}
	c.destination = p
	c.hasDestination = true
}

// ClearDestination stops walking
func (c *Character) ClearDestination() {
	c.hasDestination = false
}

// Cooldown returns the remaining cooldown of an element slot
func (c *Character) Cooldown(e Element) float64 {
	return c.cooldowns[e]
}

// HealthPercent is the health byte sent to the owning connection
func (c *Character) HealthPercent() uint8 {
	if c == nil || !c.Alive() {
		return 0
	}
	return Percent(c.Health, c.MaxHealth)
}

// update runs cooldowns, character events, AI and movement
func (c *Character) update(r *Room, dt float64) {
	if !c.Alive() {
		return
	}
	for i := range c.cooldowns {
		if c.cooldowns[i] > 0 {
			c.cooldowns[i] -= dt
		}
	}
	c.Events.Advance(dt)
	if c.Has(StatusHazard) {
		r.ApplyDamage(c, LavaDamageRate*dt, nil, false)
	}
	if !c.Alive() {
		return
	}
	if c.AI != nil {
		c.AI.update(r, c, dt)
	}
	c.steer()
}

func (c *Character) steer() {
	body := c.body
	if body == nil {
		return
	}
	vel := body.Velocity()
	if !c.hasDestination || !c.CanMove() {
		body.SetVelocityVector(vel.Mult(IdleDamping))
		return
	}
	to := c.destination.Sub(body.Position())
	if to.Length() <= ArriveRadius {
		c.hasDestination = false
		body.SetVelocityVector(vel.Mult(IdleDamping))
		return
	}
	desired := to.Normalize().Mult(c.Speed)
	ApplyImpulse(body, desired.Sub(vel).Mult(body.Mass()*SteerFactor))
	c.Facing = Facing(to, c.Facing)
}

// refreshDisplay resets the animation for the next tick
func (c *Character) refreshDisplay() {
	if c.hasDestination && c.CanMove() {
		c.Anim = AnimWalk
	} else {
		c.Anim = AnimIdle
	}
}

// State packs facing and animation into the snapshot byte
func (c *Character) State() uint8 {
	return c.Facing<<4 | uint8(c.Anim)&0x0f
}

// destroy clears character events, unlinks summon and caster, and frees the body
func (c *Character) destroy(r *Room) {
	c.dead = true
	c.Events.Clear()
	if summon := unlinkSummon(c); summon != nil {
		r.reg.RequestRemoval(summon)
	}
	if c.AI != nil {
		if caster := c.AI.Caster; caster != nil && caster.Summon == c {
			unlinkSummon(caster)
		}
		c.AI.Caster = nil
		c.AI.DropTarget()
	}
	r.forget(c)
	r.detachCharacter(c)
	c.release(r.world)
}

// linkSummon sets both directions of the caster/summon relation
func linkSummon(caster, summon *Character) {
	caster.Summon = summon
	if summon.AI != nil {
		summon.AI.Caster = caster
	}
}

// unlinkSummon clears both directions and returns the former summon
func unlinkSummon(caster *Character) *Character {
	summon := caster.Summon
	if summon == nil {
		return nil
	}
	caster.Summon = nil
	if summon.AI != nil && summon.AI.Caster == caster {
		summon.AI.Caster = nil
	}
	return summon
}
