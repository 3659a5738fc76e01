package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	AISearchBackoff = 0.5 // seconds between target searches when nobody is around
	AIEvadeSpeed    = 3.0
	AIEvadePenalty  = 0.4
	SummonSpawnGap  = 0.2
)

// AIMode is the pursuit state of a summon
type AIMode uint8

const (
	AINone AIMode = iota
	AISeeking
	AIChasing
	AIAttacking
)

func (m AIMode) String() string {
	switch m {
	case AISeeking:
		return "seeking"
	case AIChasing:
		return "chasing"
	case AIAttacking:
		return "attacking"
	}
	return "none"
}

// AIState is the component attached to creature-controlled characters
type AIState struct {
	Mode     AIMode
	Caster   *Character
	Target   *Character
	Cooldown float64

	creature *CreatureDef
}

func newAIState(creature *CreatureDef) *AIState {
	return &AIState{creature: creature}
}

// DropTarget forces a re-acquisition on the next free tick
func (ai *AIState) DropTarget() {
	ai.Target = nil
	if ai.Mode != AINone {
		ai.Mode = AISeeking
	}
}

func (ai *AIState) update(r *Room, c *Character, dt float64) {
	if ai.Cooldown > 0 {
		ai.Cooldown -= dt
	}
	if !c.CanMove() {
		ai.DropTarget()
		return
	}
	if ai.Target != nil && (!ai.Target.Alive() || !r.Hostile(c, ai.Target)) {
		ai.DropTarget()
	}

	if ai.Target == nil {
		if ai.Cooldown > 0 {
			return
		}
		ai.Target = r.nearestCharacter(c.Position(), math.Inf(1), func(o *Character) bool {
			return r.Hostile(c, o)
		})
		if ai.Target == nil {
			ai.Mode = AISeeking
			ai.Cooldown = AISearchBackoff
			c.ClearDestination()
			return
		}
		ai.Mode = AIChasing
	}

	target := ai.Target
	c.SetDestination(target.Position())
	if ai.Cooldown > 0 {
		ai.Mode = AIChasing
		return
	}

	if ai.inRange(c, target) {
		ai.attack(r, c, target)
		return
	}
	// Out of reach when the action timer ran out: look for someone closer.
	ai.Mode = AIChasing
	if closer := r.nearestCharacter(c.Position(), math.Inf(1), func(o *Character) bool {
		return r.Hostile(c, o)
	}); closer != nil {
		ai.Target = closer
	}
	ai.Cooldown = AISearchBackoff
}

func (ai *AIState) inRange(c, target *Character) bool {
	reach := ai.creature.AttackRange + c.def.Radius + target.def.Radius
	return c.Position().Distance(target.Position()) <= reach
}

// attack runs the creature's scripted attack and starts the action cooldown
func (ai *AIState) attack(r *Room, c, target *Character) {
	ai.Mode = AIAttacking
	ai.Cooldown = ai.creature.ActionDelay
	aim := target.Position()
	c.Facing = Facing(aim.Sub(c.Position()), c.Facing)
	switch ai.creature.Style {
	case AttackMelee:
		c.Anim = AnimAttack
		if c.body != nil && ai.creature.LungeForce > 0 {
			dir := Direction(c.Position(), aim)
			ApplyImpulse(c.body, dir.Mult(ai.creature.LungeForce*c.body.Mass()))
		}
		r.ApplyDamage(target, ai.creature.Damage, c, false)
	case AttackRanged:
		c.Anim = ai.creature.Bolt.Animation
		r.spawnProjectile(c, &ai.creature.Bolt, aim)
	}
}

// strike fires the melee attack on contact when the action timer allows
func (ai *AIState) strike(r *Room, c, victim *Character) {
	if ai.Cooldown > 0 || ai.creature.Style != AttackMelee || !c.CanMove() {
		return
	}
	if !victim.Alive() || !r.Hostile(c, victim) {
		return
	}
	ai.Target = victim
	ai.attack(r, c, victim)
}

// evade sidesteps away from a hazard point and delays the next action
func (ai *AIState) evade(r *Room, c *Character, from cp.Vector) {
	if c.body == nil {
		return
	}
	away := Direction(from, c.Position())
	if away.LengthSq() == 0 {
		away = facingVector(c.Facing).Neg()
	}
	c.body.SetVelocityVector(away.Mult(AIEvadeSpeed))
	c.ClearDestination()
	if ai.Cooldown < 0 {
		ai.Cooldown = 0
	}
	ai.Cooldown += AIEvadePenalty
}

// summon replaces caster's current summon with a fresh creature
func (r *Room) summon(caster *Character, class ClassID) *Character {
	if old := unlinkSummon(caster); old != nil {
		r.reg.RequestRemoval(old)
	}
	def, ok := r.tables.Classes.Get(class)
	if !ok || def.Creature == nil || r.overBudget(1) {
		return nil
	}
	dir := facingVector(caster.Facing)
	pos := caster.Position().Add(dir.Mult(caster.def.Radius + def.Radius + SummonSpawnGap))
	s := r.spawnCharacter(class, def, false, caster.Team, pos)
	s.AI = newAIState(def.Creature)
	s.AI.Mode = AISeeking
	linkSummon(caster, s)
	r.announceCharacter(s, nil)
	return s
}
