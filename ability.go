package main

import (
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

const (
	ShieldFactor  = 0.25 // shield-affected damage against a shielded victim
	AllyFactor    = 0.4  // team damage between allies
	CurseFactor   = 1.5  // incoming damage while cursed
	AcquireRadius = 3.0  // target search radius around the aim point
	SeekRadius    = 6.0  // seeking projectiles pick a target within this
	WarningSFX    = "warning"
)

// CanCast reports whether c may cast its ability of element e right now
func (r *Room) CanCast(c *Character, e Element) bool {
	if int(e) >= ElementCount || !c.Alive() || c.Has(StatusParalyzed) {
		return false
	}
	return c.Abilities[e] != nil && c.cooldowns[e] <= 0
}

// Cast runs c's ability of element e toward aim. Invalid casts are silent
// no-ops and return false without touching any state.
func (r *Room) Cast(c *Character, e Element, aim cp.Vector) bool {
	if !r.CanCast(c, e) {
		return false
	}
	def := c.Abilities[e]

	var target *Character
	if def.Target != TargetNone {
		target = r.acquireTarget(c, aim, def.Friendly)
		if target == nil && def.Target == TargetRequired {
			return false
		}
	}

	r.startCooldown(c, e, def)
	c.Anim = def.Animation
	if def.Kind != KindSelfStatus && def.Kind != KindSummon {
		c.Facing = Facing(aim.Sub(c.Position()), c.Facing)
	}
	if def.Target != TargetNone && target == nil {
		return true
	}

	switch def.Kind {
	case KindProjectile:
		r.spawnProjectile(c, def, aim)
	case KindStatus:
		r.applyStatus(target, c, def)
	case KindHeal:
		r.ApplyDamage(target, def.Efficiency, c, false)
		r.effectAttach(def.Name, target.Index(), EffectFlash)
	case KindSelfStatus:
		r.applyStatus(c, c, def)
	case KindBurst:
		r.castBurst(c, def, aim, target)
	case KindLeap:
		r.leap(c, def, aim)
	case KindSwap:
		r.swap(c, target)
	case KindTaunt:
		r.taunt(c, def, aim)
	case KindSummon:
		r.summon(c, def.Creature)
	}
	return true
}

// startCooldown applies the class-scaled cooldown and tells the caster
func (r *Room) startCooldown(c *Character, e Element, def *AbilityDef) {
	cd := def.Cooldown * c.def.CooldownModifier
	c.cooldowns[e] = cd
	if c.Player != nil {
		r.queueTo(c.Player.Session, MsgCooldown, CooldownMsg{Element: uint8(e), Seconds: cd})
	}
}

// acquireTarget returns the character nearest to aim within AcquireRadius.
// Friendly abilities consider the caster's own side and allies, hostile
// ones only characters the caster may attack.
func (r *Room) acquireTarget(c *Character, aim cp.Vector, friendly bool) *Character {
	return r.nearestCharacter(aim, AcquireRadius, func(o *Character) bool {
		if friendly {
			return !r.Hostile(c, o)
		}
		return r.Hostile(c, o)
	})
}

// nearestCharacter finds the live character closest to p within maxDist
// that passes accept.
func (r *Room) nearestCharacter(p cp.Vector, maxDist float64, accept func(*Character) bool) *Character {
	var best *Character
	candidates := r.reg.Characters()
	bestD := math.Inf(1)
	if !math.IsInf(maxDist, 1) {
		bestD = maxDist * maxDist
		if r.grid.stale {
			r.grid.Rebuild(candidates)
		}
		r.gridBuf = r.grid.QueryBuf(p, maxDist, r.gridBuf[:0])
		candidates = r.gridBuf
	}
	for _, o := range candidates {
		if !o.Alive() || (accept != nil && !accept(o)) {
			continue
		}
		if d := o.Position().DistanceSq(p); d <= bestD {
			best, bestD = o, d
		}
	}
	return best
}

// Hostile reports whether a may attack b
func (r *Room) Hostile(a, b *Character) bool {
	if a == nil || b == nil || a == b || sameSide(a, b) {
		return false
	}
	return !r.allies(a, b)
}

func (r *Room) allies(a, b *Character) bool {
	return r.Mode == ModeTeams && a.Team >= 0 && a.Team == b.Team
}

// resolveAmount applies the damage resolution rule to a raw amount
func (r *Room) resolveAmount(victim, caster *Character, amount float64, shieldAffected bool) float64 {
	if amount >= 0 {
		return amount
	}
	if shieldAffected && victim.Has(StatusShielded) {
		amount *= ShieldFactor
	}
	if caster != nil {
		amount *= caster.def.DamageModifier
		if caster != victim && r.allies(caster, victim) {
			amount *= AllyFactor
		}
	}
	if victim.Has(StatusCursed) {
		amount *= CurseFactor
	}
	return amount
}

// ApplyDamage changes victim's health by the resolved amount (negative is
// damage) and returns the applied change. Health is clamped to
// [0, MaxHealth]; reaching zero kills the character in the same tick.
func (r *Room) ApplyDamage(victim *Character, amount float64, caster *Character, shieldAffected bool) float64 {
	if victim == nil || !victim.Alive() {
		return 0
	}
	amount = r.resolveAmount(victim, caster, amount, shieldAffected)
	before := victim.Health
	victim.Health = Clamp(victim.Health+amount, 0, victim.MaxHealth)
	if amount < 0 {
		if caster != nil && caster != victim {
			victim.LastDamageDealer = caster
		}
		victim.Anim = AnimBlock
	}
	if victim.Health <= 0 {
		r.kill(victim)
	}
	return victim.Health - before
}

// kill marks the character dead, credits the kill and queues its removal
func (r *Room) kill(victim *Character) {
	if victim.dead || victim.removed {
		return
	}
	victim.dead = true
	victim.Health = 0

	var killer *Character
	if d := victim.LastDamageDealer; d != nil {
		killer = d.Owner()
	}
	if victim.Player != nil {
		victim.Player.Deaths++
		r.scores.AddDeath(victim.Player.Nickname)
		if killer != nil && killer != victim && killer.Player != nil {
			killer.Player.Kills++
			r.scores.AddKill(killer.Player.Nickname)
		}
	}
	msg := CharacterKilledMsg{Index: victim.Index()}
	if killer != nil {
		msg.Killer = killer.Index()
		msg.KillerName = killer.Name()
	}
	r.queueAll(MsgCharacterKilled, msg)
	r.log.Debug("character killed",
		zap.Int32("index", victim.Index()),
		zap.String("name", victim.Name()),
		zap.String("killer", msg.KillerName))
	r.reg.RequestRemoval(victim)
}

// applyStatus adds def's status to victim for def.StatusDuration seconds.
// Ablaze also burns for def.Efficiency per second while it lasts.
func (r *Room) applyStatus(victim, caster *Character, def *AbilityDef) {
	s, d := def.Status, def.StatusDuration
	if s == StatusNone || d <= 0 || !victim.Alive() {
		return
	}
	victim.AddStatus(s)
	if s == StatusAblaze && def.Efficiency != 0 {
		rate := def.Efficiency
		victim.Events.ScheduleRecurring(d, func(dt float64) {
			r.ApplyDamage(victim, rate*dt, caster, false)
		}, func() {
			victim.RemoveStatus(s)
		})
	} else {
		victim.Events.Schedule(d, func() {
			victim.RemoveStatus(s)
		})
	}
	r.effectAttach(def.Name, victim.Index(), d)
}

func (r *Room) castBurst(c *Character, def *AbilityDef, aim cp.Vector, target *Character) {
	var at cp.Vector
	switch def.Burst.Origin {
	case BurstAtCaster:
		at = c.Position()
	case BurstAtAim:
		at = aim
	case BurstAtTarget:
		if target == nil {
			return
		}
		at = target.Position()
	}
	if def.Burst.Delay <= 0 {
		r.spawnCluster(c, def, at)
		return
	}
	r.effectDisplay(WarningSFX, at, def.Burst.Delay)
	r.events.Schedule(def.Burst.Delay, func() {
		caster := c
		if caster.Removed() {
			caster = nil
		}
		r.spawnCluster(caster, def, at)
	})
}

// leap launches the caster toward aim at Efficiency units per second
func (r *Room) leap(c *Character, def *AbilityDef, aim cp.Vector) {
	if c.body == nil || !c.CanMove() {
		return
	}
	dir := Direction(c.Position(), aim)
	if dir.LengthSq() == 0 {
		dir = facingVector(c.Facing)
	}
	c.ClearDestination()
	c.body.SetVelocityVector(dir.Mult(def.Efficiency))
}

// swap exchanges positions; a shielded party cancels the effect
func (r *Room) swap(c, target *Character) {
	if target == nil || target == c || c.body == nil || target.body == nil {
		return
	}
	if c.Has(StatusShielded) || target.Has(StatusShielded) {
		return
	}
	a, b := c.Position(), target.Position()
	r.relocate(c.body, b)
	r.relocate(target.body, a)
	c.ClearDestination()
	target.ClearDestination()
	target.loseControl()
	r.effectDisplay("swap", a, EffectFlash)
	r.effectDisplay("swap", b, EffectFlash)
}

// taunt takes over every foreign projectile within def.Radius of the caster
// and sends it at the character nearest to aim, or at aim itself.
func (r *Room) taunt(c *Character, def *AbilityDef, aim cp.Vector) {
	target := r.nearestCharacter(aim, AcquireRadius, func(o *Character) bool {
		return r.Hostile(c, o)
	})
	to := aim
	if target != nil {
		to = target.Position()
	}
	origin := c.Position()
	for _, p := range r.reg.Projectiles() {
		if !p.Alive() || p.Caster == c || p.Position().Distance(origin) > def.Radius {
			continue
		}
		p.Caster = c
		p.hits = nil
		p.Aim(to)
		switch p.Behavior() {
		case BehaviorSeeking:
			p.Target = target
		case BehaviorExploding:
			p.Destination = to
		}
	}
}
