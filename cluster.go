package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Cluster is an area-effect burst: a ring of short-lived sensor particles
// radiating from a point. Each character takes the burst's damage once;
// every particle it touches pushes it.
type Cluster struct {
	entityBase

	Def    *AbilityDef
	Caster *Character
	Center cp.Vector
	Life   float64

	particles []*Particle
	hit       map[*Character]bool
}

// Particle is one sub-body of a cluster
type Particle struct {
	entityBase
	Cluster *Cluster
}

func (p *Particle) update(r *Room, dt float64) {}

func (p *Particle) destroy(r *Room) {
	p.release(r.world)
}

// spawnCluster bursts def at center. Particles beyond the body budget are
// skipped.
func (r *Room) spawnCluster(caster *Character, def *AbilityDef, center cp.Vector) *Cluster {
	burst := def.Burst
	if burst.Particles <= 0 {
		return nil
	}
	c := &Cluster{
		entityBase: entityBase{index: clusterIndex},
		Def:        def,
		Caster:     caster,
		Center:     center,
		Life:       burst.Life,
		hit:        make(map[*Character]bool),
	}
	spec := projectileSpecs[TagParticle]
	step := 2 * math.Pi / float64(burst.Particles)
	for i := 0; i < burst.Particles; i++ {
		if r.overBudget(1) {
			break
		}
		dir := cp.ForAngle(float64(i) * step)
		p := &Particle{entityBase: entityBase{index: clusterIndex}, Cluster: c}
		p.body = r.world.NewDynamicCircle(p, TagParticle, center.Add(dir.Mult(spec.Radius)), spec)
		p.body.SetVelocityVector(dir.Mult(burst.Speed))
		c.particles = append(c.particles, p)
	}
	r.reg.AddCluster(c)
	r.effectDisplay(def.Name, center, burst.Life)
	return c
}

func (c *Cluster) update(r *Room, dt float64) {
	c.Life -= dt
	if c.Life <= 0 {
		r.reg.RequestRemoval(c)
	}
}

// Hit applies the cluster to a character touched by one of its particles
func (c *Cluster) Hit(r *Room, p *Particle, victim *Character) {
	if sameSide(victim, c.Caster) || !victim.Alive() {
		return
	}
	if !c.hit[victim] {
		c.hit[victim] = true
		if c.Def.Efficiency != 0 {
			r.ApplyDamage(victim, c.Def.Efficiency, c.Caster, c.Def.ShieldAffected())
		}
		if c.Def.Status != StatusNone && victim.Alive() {
			r.applyStatus(victim, c.Caster, c.Def)
		}
	}
	if push := c.Def.Burst.Push; push > 0 && victim.Alive() && victim.body != nil {
		dir := Direction(p.Position(), victim.Position())
		if dir.LengthSq() == 0 {
			dir = Direction(c.Center, victim.Position())
		}
		ApplyImpulse(victim.body, dir.Mult(push*victim.body.Mass()))
	}
}

// Particles returns the live particle count
func (c *Cluster) Particles() int {
	return len(c.particles)
}

func (c *Cluster) destroy(r *Room) {
	for _, p := range c.particles {
		p.destroy(r)
	}
	c.particles = nil
	c.removed = true
}
