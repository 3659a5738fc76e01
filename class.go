package main

// ClassID identifies a character class
type ClassID int

const (
	ClassWizard  ClassID = 0
	ClassWarlock ClassID = 1
	ClassDruid   ClassID = 2
	ClassRogue   ClassID = 3
	// Summon-only creature classes
	ClassImp   ClassID = 4
	ClassGolem ClassID = 5
)

// AttackStyle is how a creature class attacks once its action cooldown is up
type AttackStyle int

const (
	AttackMelee  AttackStyle = 0 // lunge toward the target and strike on reach
	AttackRanged AttackStyle = 1 // fire a bolt at the target
)

// CreatureDef holds the AI parameters of a summon-only class
type CreatureDef struct {
	Style       AttackStyle
	ActionDelay float64 // seconds between attacks / target re-evaluations
	AttackRange float64
	Damage      float64 // melee strike amount (negative)
	LungeForce  float64
	Bolt        AbilityDef // ranged attack projectile
}

// ClassDef holds the stats for a character class
type ClassDef struct {
	Name             string
	Selectable       bool
	MaxHealth        float64
	Speed            float64
	Radius           float64
	Density          float64
	DamageModifier   float64
	CooldownModifier float64
	Creature         *CreatureDef
}

// ClassTable is built once per process and shared by every room
type ClassTable struct {
	defs []ClassDef
}

// NewClassTable returns the built-in class definitions
func NewClassTable() *ClassTable {
	return &ClassTable{defs: []ClassDef{
		// Wizard: balanced
		{Name: "wizard", Selectable: true, MaxHealth: 100, Speed: 4, Radius: 0.5, Density: 1,
			DamageModifier: 1, CooldownModifier: 1},
		// Warlock: hits harder, recovers slower
		{Name: "warlock", Selectable: true, MaxHealth: 90, Speed: 4.2, Radius: 0.5, Density: 1,
			DamageModifier: 1.2, CooldownModifier: 1.1},
		// Druid: sturdy and slow
		{Name: "druid", Selectable: true, MaxHealth: 120, Speed: 3.6, Radius: 0.55, Density: 1.2,
			DamageModifier: 0.9, CooldownModifier: 0.9},
		// Rogue: fast, fragile, short cooldowns
		{Name: "rogue", Selectable: true, MaxHealth: 80, Speed: 5, Radius: 0.45, Density: 0.9,
			DamageModifier: 1, CooldownModifier: 0.8},
		{Name: "imp", MaxHealth: 40, Speed: 4.5, Radius: 0.35, Density: 0.8,
			DamageModifier: 1, CooldownModifier: 1,
			Creature: &CreatureDef{
				Style: AttackRanged, ActionDelay: 1.5, AttackRange: 6,
				Bolt: AbilityDef{Name: "imp_bolt", Element: ElementFire, Kind: KindProjectile,
					Projectile: TagFireball, Animation: AnimCastForward, Efficiency: -8, Speed: 8, TTL: 1.5},
			}},
		{Name: "golem", MaxHealth: 120, Speed: 3, Radius: 0.6, Density: 2,
			DamageModifier: 1, CooldownModifier: 1,
			Creature: &CreatureDef{
				Style: AttackMelee, ActionDelay: 1.2, AttackRange: 1.6, Damage: -12, LungeForce: 6,
			}},
	}}
}

// Get returns the class definition, or false when id is out of range
func (t *ClassTable) Get(id ClassID) (*ClassDef, bool) {
	if id < 0 || int(id) >= len(t.defs) {
		return nil, false
	}
	return &t.defs[id], true
}

// Len returns the number of defined classes
func (t *ClassTable) Len() int {
	return len(t.defs)
}
