package main

// Tag is the behavior label stored on every physics fixture. The contact
// resolver routes collisions purely on pairs of tags.
type Tag uint8

const (
	TagNone Tag = iota
	TagPlayer
	TagSummon
	TagFireball
	TagIceShard
	TagSpark
	TagLightning
	TagTidalOrb
	TagMeteor
	TagBoulder
	TagParticle
	TagTeleporter
	TagLava
	TagVoid
	TagWarning
	TagOuterBounds
	TagObstacle
	tagCount
)

var tagNames = [tagCount]string{
	"none", "player", "summon", "fireball", "ice_shard", "spark", "lightning",
	"tidal_orb", "meteor", "boulder", "particle", "teleporter", "lava", "void",
	"warning", "outer_bounds", "obstacle",
}

func (t Tag) String() string {
	if t >= tagCount {
		return "unknown"
	}
	return tagNames[t]
}

// Behavior is the contact semantics of a projectile tag
type Behavior uint8

const (
	BehaviorNone      Behavior = iota
	BehaviorSingleHit          // destroyed on first character contact
	BehaviorSeeking            // steers toward a target every tick, single hit
	BehaviorBouncing           // solid, bounces and expires by duration
	BehaviorExploding          // sensor, explodes at its destination
	BehaviorCracking           // solid obstacle, loses duration when hit
)

func (t Tag) Behavior() Behavior {
	switch t {
	case TagFireball, TagIceShard, TagSpark:
		return BehaviorSingleHit
	case TagLightning:
		return BehaviorSeeking
	case TagTidalOrb:
		return BehaviorBouncing
	case TagMeteor:
		return BehaviorExploding
	case TagBoulder:
		return BehaviorCracking
	}
	return BehaviorNone
}

func (t Tag) IsCharacter() bool { return t == TagPlayer || t == TagSummon }

func (t Tag) IsProjectile() bool { return t.Behavior() != BehaviorNone }

// IsDamaging reports whether the projectile is consumed by its first hit
func (t Tag) IsDamaging() bool {
	b := t.Behavior()
	return b == BehaviorSingleHit || b == BehaviorSeeking
}

// IsZone reports static sensors that never stop an exploding projectile
func (t Tag) IsZone() bool {
	return t == TagVoid || t == TagWarning || t == TagLava || t == TagTeleporter
}

// BodySpec describes the collider the body factory builds for a tag
type BodySpec struct {
	Radius     float64
	Density    float64
	Elasticity float64
	Friction   float64
	Sensor     bool
}

var projectileSpecs = map[Tag]BodySpec{
	TagFireball:  {Radius: 0.25, Density: 0.5, Sensor: true},
	TagIceShard:  {Radius: 0.2, Density: 0.5, Sensor: true},
	TagSpark:     {Radius: 0.15, Density: 0.3, Sensor: true},
	TagLightning: {Radius: 0.2, Density: 0.3, Sensor: true},
	TagTidalOrb:  {Radius: 0.35, Density: 0.6, Elasticity: 1, Friction: 0},
	TagMeteor:    {Radius: 0.4, Density: 1, Sensor: true},
	TagBoulder:   {Radius: 0.6, Density: 4, Elasticity: 0.3, Friction: 0.6},
	TagParticle:  {Radius: 0.3, Density: 0.1, Sensor: true},
}
