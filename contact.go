package main

// ContactEffect is the gameplay outcome of a contact, applied to Self
type ContactEffect uint8

const (
	EffectNone ContactEffect = iota
	EffectProjectileHit
	EffectParticleHit
	EffectSummonStrike
	EffectFall
	EffectEnterHazard
	EffectLeaveHazard
	EffectTeleport
	EffectTeleportRelease
	EffectCrack
	EffectAvoidObstacle
	EffectAvoidVoid
	EffectExplode
	EffectShatter
	EffectOutOfBounds
)

var effectNames = [...]string{
	"none", "projectile_hit", "particle_hit", "summon_strike", "fall",
	"enter_hazard", "leave_hazard", "teleport", "teleport_release", "crack",
	"avoid_obstacle", "avoid_void", "explode", "shatter", "out_of_bounds",
}

func (e ContactEffect) String() string {
	if int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// routeContact maps an ordered tag pair to the effect on self. Both
// permutations of every contact are routed, so each rule is written from
// the side it changes.
func routeContact(self, other Tag, begin bool) ContactEffect {
	if !begin {
		switch {
		case self.IsCharacter() && other == TagLava:
			return EffectLeaveHazard
		case (self.IsCharacter() || self.IsProjectile()) && other == TagTeleporter:
			return EffectTeleportRelease
		}
		return EffectNone
	}

	switch {
	case other == TagOuterBounds && (self.IsCharacter() || self.IsProjectile()):
		return EffectOutOfBounds
	case other == TagTeleporter && (self.IsCharacter() || self.IsProjectile()):
		return EffectTeleport
	}

	if self.IsCharacter() {
		switch {
		case other == TagVoid:
			return EffectFall
		case other == TagLava:
			return EffectEnterHazard
		case other == TagParticle:
			return EffectParticleHit
		case other.IsProjectile() && other.Behavior() != BehaviorExploding:
			if self == TagSummon && other.Behavior() == BehaviorCracking {
				return EffectAvoidObstacle
			}
			return EffectProjectileHit
		case self == TagSummon && other.IsCharacter():
			return EffectSummonStrike
		case self == TagSummon && other == TagWarning:
			return EffectAvoidVoid
		}
		return EffectNone
	}

	switch self.Behavior() {
	case BehaviorExploding:
		if other.IsZone() || other == TagParticle || other == TagOuterBounds || other == TagNone {
			return EffectNone
		}
		return EffectExplode
	case BehaviorCracking:
		switch other.Behavior() {
		case BehaviorBouncing, BehaviorSeeking:
			return EffectCrack
		}
		if other == TagParticle {
			return EffectCrack
		}
	case BehaviorSingleHit, BehaviorSeeking:
		if other == TagObstacle || other.Behavior() == BehaviorCracking || other.Behavior() == BehaviorBouncing {
			return EffectShatter
		}
	}
	return EffectNone
}

// resolveContacts applies the drained contact stream
func (r *Room) resolveContacts(contacts []Contact) {
	for _, ct := range contacts {
		self := ct.Self.Owner
		if self == nil || self.Removed() {
			continue
		}
		other := ct.Other.Owner
		if other != nil && other.Removed() && ct.Begin {
			continue
		}
		effect := routeContact(ct.Self.Tag, ct.Other.Tag, ct.Begin)
		if effect == EffectNone {
			continue
		}
		r.applyContact(effect, self, other)
	}
}

func (r *Room) applyContact(effect ContactEffect, self, other Entity) {
	switch effect {
	case EffectProjectileHit:
		c, p := self.(*Character), asProjectile(other)
		if c != nil && p != nil {
			r.projectileHit(p, c)
		}
	case EffectParticleHit:
		c, ok := self.(*Character)
		part, ok2 := other.(*Particle)
		if ok && ok2 && part.Cluster != nil {
			part.Cluster.Hit(r, part, c)
		}
	case EffectSummonStrike:
		c, ok := self.(*Character)
		victim, ok2 := other.(*Character)
		if ok && ok2 && c.AI != nil {
			c.AI.strike(r, c, victim)
		}
	case EffectFall:
		if c, ok := self.(*Character); ok && c.Alive() {
			r.queueAll(MsgEntityFalling, EntityFallingMsg{Index: c.Index(), X: c.Position().X, Y: c.Position().Y})
			r.ApplyDamage(c, VoidDamage, nil, false)
		}
	case EffectEnterHazard:
		if c, ok := self.(*Character); ok {
			c.AddStatus(StatusHazard)
		}
	case EffectLeaveHazard:
		if c, ok := self.(*Character); ok {
			c.RemoveStatus(StatusHazard)
		}
	case EffectTeleport:
		if t, ok := other.(*Teleporter); ok {
			r.teleport(self, t)
		}
	case EffectTeleportRelease:
		if t, ok := other.(*Teleporter); ok {
			releaseTeleporter(self, t)
		}
	case EffectCrack:
		if p := asProjectile(self); p != nil {
			p.Crack(r)
		}
	case EffectAvoidObstacle:
		c, ok := self.(*Character)
		if ok && c.AI != nil && other != nil && other.Body() != nil {
			c.AI.evade(r, c, other.Body().Position())
		}
	case EffectAvoidVoid:
		if c, ok := self.(*Character); ok && c.AI != nil {
			c.AI.evade(r, c, c.Position().Add(c.body.Velocity()))
		}
	case EffectExplode:
		if p := asProjectile(self); p != nil {
			if c, ok := other.(*Character); ok && c == p.Caster {
				return
			}
			p.Touched = true
			r.reg.RequestRemoval(p)
		}
	case EffectShatter:
		if p := asProjectile(self); p != nil {
			r.reg.RequestRemoval(p)
		}
	case EffectOutOfBounds:
		switch v := self.(type) {
		case *Projectile:
			r.reg.RequestRemoval(v)
		case *Character:
			if v.AI != nil {
				r.kill(v)
			} else {
				r.ApplyDamage(v, OutOfBoundsDamage, nil, false)
			}
		}
	}
}

func asProjectile(e Entity) *Projectile {
	p, _ := e.(*Projectile)
	if p == nil || !p.Alive() {
		return nil
	}
	return p
}

// projectileHit applies a projectile's effect to a character it touched
func (r *Room) projectileHit(p *Projectile, c *Character) {
	if sameSide(c, p.Caster) || !c.Alive() {
		return
	}
	switch {
	case p.Tag.IsDamaging():
		if p.Touched {
			return
		}
		p.Touched = true
		r.reg.RequestRemoval(p)
	case p.Behavior() == BehaviorCracking:
		if !p.firstHit(c) {
			return
		}
	}
	if p.Def.Efficiency != 0 {
		r.ApplyDamage(c, p.Def.Efficiency, p.Caster, p.Def.ShieldAffected())
	}
	if p.Def.Status != StatusNone && c.Alive() {
		r.applyStatus(c, p.Caster, p.Def)
	}
}
