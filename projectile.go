package main

import (
	"github.com/jakecoffman/cp"
)

const (
	ProjectileSpawnGap = 0.05 // clearance between caster and new projectile
	CrackPenalty       = 1.5  // seconds a cracking projectile loses per hit
	ExplodeReach       = 0.3  // distance at which an exploding projectile detonates
)

// Projectile is a cast missile; Tag decides its contact behavior
type Projectile struct {
	entityBase

	Tag         Tag
	Def         *AbilityDef
	Caster      *Character
	Target      *Character // seeking projectiles only
	Destination cp.Vector  // exploding projectiles only
	Speed       float64
	TTL         float64
	Touched     bool

	lastTeleporter int32
	hits           map[*Character]bool
}

// Alive reports whether the projectile is still in play
func (p *Projectile) Alive() bool {
	return !p.removed && !p.queued
}

// Behavior returns the contact semantics of the projectile's tag
func (p *Projectile) Behavior() Behavior {
	return p.Tag.Behavior()
}

// Velocity returns the body velocity
func (p *Projectile) Velocity() cp.Vector {
	if p.body == nil {
		return cp.Vector{}
	}
	return p.body.Velocity()
}

// Aim points the projectile at a position, keeping its speed
func (p *Projectile) Aim(at cp.Vector) {
	if p.body == nil {
		return
	}
	dir := Direction(p.body.Position(), at)
	if dir.LengthSq() == 0 {
		return
	}
	p.body.SetVelocityVector(dir.Mult(p.Speed))
}

func (p *Projectile) update(r *Room, dt float64) {
	if !p.Alive() {
		return
	}
	p.TTL -= dt
	switch p.Behavior() {
	case BehaviorSeeking:
		if p.Target != nil && p.Target.Alive() {
			p.Aim(p.Target.Position())
		} else {
			p.Target = nil
		}
	case BehaviorExploding:
		pos := p.body.Position()
		if pos.Distance(p.Destination) <= ExplodeReach || p.passed(dt) {
			p.Touched = true
		}
		if p.TTL <= 0 {
			p.Touched = true
		}
	}
	if p.Touched || p.TTL <= 0 {
		r.reg.RequestRemoval(p)
	}
}

// passed reports whether the next step would carry the projectile beyond
// its destination.
func (p *Projectile) passed(dt float64) bool {
	pos := p.body.Position()
	vel := p.body.Velocity()
	ahead := p.Destination.Sub(pos)
	return ahead.Dot(vel) <= 0 || ahead.LengthSq() <= vel.Mult(dt).LengthSq()
}

// Crack shortens a cracking projectile's remaining life
func (p *Projectile) Crack(r *Room) {
	p.TTL -= CrackPenalty
	if p.TTL <= 0 {
		r.reg.RequestRemoval(p)
	}
}

// firstHit records a character hit and reports whether it is new
func (p *Projectile) firstHit(c *Character) bool {
	if p.hits == nil {
		p.hits = make(map[*Character]bool)
	}
	if p.hits[c] {
		return false
	}
	p.hits[c] = true
	return true
}

func (p *Projectile) destroy(r *Room) {
	pos := p.Position()
	if p.Behavior() == BehaviorExploding && p.Touched {
		r.spawnCluster(p.Caster, p.Def, pos)
	}
	p.release(r.world)
}

// spawnProjectile launches def's projectile from caster toward aim. Returns
// nil when the room's body budget is exhausted.
func (r *Room) spawnProjectile(caster *Character, def *AbilityDef, aim cp.Vector) *Projectile {
	spec, ok := projectileSpecs[def.Projectile]
	if !ok || r.overBudget(1) {
		return nil
	}
	origin := caster.Position()
	dir := Direction(origin, aim)
	if dir.LengthSq() == 0 {
		dir = facingVector(caster.Facing)
	}
	start := origin.Add(dir.Mult(caster.def.Radius + spec.Radius + ProjectileSpawnGap))

	p := &Projectile{
		entityBase:  entityBase{index: r.reg.NextIndex()},
		Tag:         def.Projectile,
		Def:         def,
		Caster:      caster,
		Destination: aim,
		Speed:       def.Speed,
		TTL:         def.TTL,
	}
	p.body = r.world.NewDynamicCircle(p, p.Tag, start, spec)
	p.body.SetVelocityVector(dir.Mult(def.Speed))
	if p.Behavior() == BehaviorSeeking {
		p.Target = r.nearestCharacter(aim, SeekRadius, func(o *Character) bool {
			return r.Hostile(caster, o)
		})
	}
	r.reg.AddProjectile(p)
	return p
}
