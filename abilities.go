package main

// Element is one of the four ability categories; a character equips exactly
// one ability per element.
type Element uint8

const (
	ElementFire  Element = 0
	ElementWater Element = 1
	ElementEarth Element = 2
	ElementAir   Element = 3

	ElementCount        = 4
	AbilitiesPerElement = 7
)

// AbilityKind is the closed set of cast behaviors
type AbilityKind uint8

const (
	KindProjectile AbilityKind = iota
	KindStatus                 // apply a status to the character nearest the aim point
	KindHeal                   // heal the character nearest the aim point
	KindSelfStatus             // apply a status to the caster
	KindBurst                  // spawn an area-effect cluster
	KindLeap                   // impulse the caster toward the aim point
	KindSwap                   // swap positions with the character nearest the aim point
	KindTaunt                  // take over nearby projectiles and send them at a target
	KindSummon                 // replace the caster's summon
)

// TargetPolicy decides what happens when a targeted ability finds nobody
type TargetPolicy uint8

const (
	TargetNone           TargetPolicy = iota // ability does not look for a target
	TargetCooldownAlways                     // cast goes through, cooldown consumed, no effect
	TargetRequired                           // silent no-op, no cooldown consumed
)

// BurstOrigin is where an area burst is centered
type BurstOrigin uint8

const (
	BurstAtCaster BurstOrigin = iota
	BurstAtAim
	BurstAtTarget
)

// Status is a stackable status effect counter
type Status uint8

const (
	StatusNone Status = iota
	StatusConfused
	StatusImmobilized
	StatusParalyzed
	StatusCursed
	StatusShielded
	StatusAblaze
	StatusHazard
	statusCount
)

// Anim is the animation code sent in snapshots
type Anim uint8

const (
	AnimIdle        Anim = 0
	AnimWalk        Anim = 1
	AnimBlock       Anim = 2
	AnimCastForward Anim = 3
	AnimCastSelf    Anim = 4
	AnimCastSummon  Anim = 5
	AnimLeap        Anim = 6
	AnimAttack      Anim = 7
)

// BurstSpec parameterizes an area-effect cluster
type BurstSpec struct {
	Origin    BurstOrigin
	Particles int
	Speed     float64 // particle outward speed
	Life      float64
	Push      float64
	Delay     float64 // warning lead time; 0 bursts immediately
}

// AbilityDef is one declarative ability table row. Efficiency is the
// ability's magnitude: damage (negative), heal (positive), status
// duration or impulse, depending on Kind.
type AbilityDef struct {
	Name       string
	Element    Element
	Slot       int
	Kind       AbilityKind
	Projectile Tag
	Animation  Anim
	Efficiency float64
	Cooldown   float64
	Target     TargetPolicy
	Friendly   bool // targets allies (and self) instead of enemies

	Status         Status
	StatusDuration float64
	Speed          float64 // projectile launch speed
	TTL            float64 // projectile time-to-live
	Burst          BurstSpec
	Creature       ClassID
	Radius         float64 // taunt pickup radius
}

// ShieldAffected reports whether a shielded victim only takes a quarter
func (d *AbilityDef) ShieldAffected() bool {
	return d.Kind == KindProjectile || d.Kind == KindBurst
}

// AbilityTable is built once per process and shared by every room
type AbilityTable struct {
	defs [ElementCount][AbilitiesPerElement]AbilityDef
}

// Get returns the ability in the given element slot
func (t *AbilityTable) Get(e Element, slot int) (*AbilityDef, bool) {
	if int(e) >= ElementCount || slot < 0 || slot >= AbilitiesPerElement {
		return nil, false
	}
	return &t.defs[e][slot], true
}

const warningDelay = 1.85

// NewAbilityTable returns the built-in ability definitions
func NewAbilityTable() *AbilityTable {
	t := &AbilityTable{}
	rows := []AbilityDef{
		// Fire
		{Name: "fireball", Element: ElementFire, Slot: 0, Kind: KindProjectile, Projectile: TagFireball,
			Animation: AnimCastForward, Efficiency: -20, Cooldown: 1.2, Speed: 9, TTL: 2.5},
		{Name: "ignite", Element: ElementFire, Slot: 1, Kind: KindStatus, Animation: AnimCastForward,
			Efficiency: -4, Cooldown: 6, Target: TargetCooldownAlways, Status: StatusAblaze, StatusDuration: 4},
		{Name: "meteor", Element: ElementFire, Slot: 2, Kind: KindProjectile, Projectile: TagMeteor,
			Animation: AnimCastForward, Efficiency: -18, Cooldown: 7, Speed: 7, TTL: 3,
			Burst: BurstSpec{Particles: 10, Speed: 6, Life: 0.35, Push: 5}},
		{Name: "inferno", Element: ElementFire, Slot: 3, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -25, Cooldown: 12,
			Burst: BurstSpec{Origin: BurstAtAim, Particles: 12, Speed: 7, Life: 0.4, Push: 6, Delay: warningDelay}},
		{Name: "flame_leap", Element: ElementFire, Slot: 4, Kind: KindLeap, Animation: AnimLeap,
			Efficiency: 14, Cooldown: 5},
		{Name: "summon_imp", Element: ElementFire, Slot: 5, Kind: KindSummon, Animation: AnimCastSummon,
			Cooldown: 20, Creature: ClassImp},
		{Name: "combustion", Element: ElementFire, Slot: 6, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -12, Cooldown: 8,
			Burst: BurstSpec{Origin: BurstAtCaster, Particles: 10, Speed: 8, Life: 0.3, Push: 9}},

		// Water
		{Name: "ice_shard", Element: ElementWater, Slot: 0, Kind: KindProjectile, Projectile: TagIceShard,
			Animation: AnimCastForward, Efficiency: -10, Cooldown: 1.5, Speed: 10, TTL: 2,
			Status: StatusImmobilized, StatusDuration: 1.5},
		{Name: "heal", Element: ElementWater, Slot: 1, Kind: KindHeal, Animation: AnimCastSelf,
			Efficiency: 20, Cooldown: 8, Target: TargetCooldownAlways, Friendly: true},
		{Name: "frost_nova", Element: ElementWater, Slot: 2, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -8, Cooldown: 7, Status: StatusImmobilized, StatusDuration: 1,
			Burst: BurstSpec{Origin: BurstAtCaster, Particles: 12, Speed: 6, Life: 0.35, Push: 5}},
		{Name: "bubble", Element: ElementWater, Slot: 3, Kind: KindStatus, Animation: AnimCastSelf,
			Cooldown: 10, Target: TargetRequired, Friendly: true, Status: StatusShielded, StatusDuration: 4},
		{Name: "tidal_orb", Element: ElementWater, Slot: 4, Kind: KindProjectile, Projectile: TagTidalOrb,
			Animation: AnimCastForward, Efficiency: -8, Cooldown: 4, Speed: 7, TTL: 4},
		{Name: "confusion", Element: ElementWater, Slot: 5, Kind: KindStatus, Animation: AnimCastForward,
			Cooldown: 9, Target: TargetRequired, Status: StatusConfused, StatusDuration: 3},
		{Name: "swap", Element: ElementWater, Slot: 6, Kind: KindSwap, Animation: AnimCastForward,
			Cooldown: 10, Target: TargetRequired},

		// Earth
		{Name: "boulder", Element: ElementEarth, Slot: 0, Kind: KindProjectile, Projectile: TagBoulder,
			Animation: AnimCastForward, Efficiency: -15, Cooldown: 5, Speed: 5, TTL: 6},
		{Name: "stone_skin", Element: ElementEarth, Slot: 1, Kind: KindSelfStatus, Animation: AnimCastSelf,
			Cooldown: 14, Status: StatusShielded, StatusDuration: 5},
		{Name: "earthquake", Element: ElementEarth, Slot: 2, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -20, Cooldown: 12,
			Burst: BurstSpec{Origin: BurstAtAim, Particles: 16, Speed: 6, Life: 0.45, Push: 4, Delay: warningDelay}},
		{Name: "petrify", Element: ElementEarth, Slot: 3, Kind: KindStatus, Animation: AnimCastForward,
			Cooldown: 12, Target: TargetRequired, Status: StatusParalyzed, StatusDuration: 2},
		{Name: "summon_golem", Element: ElementEarth, Slot: 4, Kind: KindSummon, Animation: AnimCastSummon,
			Cooldown: 25, Creature: ClassGolem},
		{Name: "entangle", Element: ElementEarth, Slot: 5, Kind: KindStatus, Animation: AnimCastForward,
			Cooldown: 8, Target: TargetCooldownAlways, Status: StatusImmobilized, StatusDuration: 3},
		{Name: "quake_stomp", Element: ElementEarth, Slot: 6, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -12, Cooldown: 9,
			Burst: BurstSpec{Origin: BurstAtCaster, Particles: 8, Speed: 5, Life: 0.3, Push: 12}},

		// Air
		{Name: "lightning", Element: ElementAir, Slot: 0, Kind: KindProjectile, Projectile: TagLightning,
			Animation: AnimCastForward, Efficiency: -12, Cooldown: 2, Speed: 8, TTL: 3},
		{Name: "gust", Element: ElementAir, Slot: 1, Kind: KindLeap, Animation: AnimLeap,
			Efficiency: 18, Cooldown: 4},
		{Name: "taunt", Element: ElementAir, Slot: 2, Kind: KindTaunt, Animation: AnimCastSelf,
			Cooldown: 10, Radius: 4},
		{Name: "hex", Element: ElementAir, Slot: 3, Kind: KindStatus, Animation: AnimCastForward,
			Cooldown: 10, Target: TargetCooldownAlways, Status: StatusCursed, StatusDuration: 5},
		{Name: "spark", Element: ElementAir, Slot: 4, Kind: KindProjectile, Projectile: TagSpark,
			Animation: AnimCastForward, Efficiency: -6, Cooldown: 3, Speed: 12, TTL: 1.5,
			Status: StatusParalyzed, StatusDuration: 1},
		{Name: "whirlwind", Element: ElementAir, Slot: 5, Kind: KindBurst, Animation: AnimCastForward,
			Efficiency: -4, Cooldown: 7, Target: TargetRequired,
			Burst: BurstSpec{Origin: BurstAtTarget, Particles: 10, Speed: 5, Life: 0.4, Push: 10}},
		{Name: "static_field", Element: ElementAir, Slot: 6, Kind: KindBurst, Animation: AnimCastSelf,
			Efficiency: -15, Cooldown: 11,
			Burst: BurstSpec{Origin: BurstAtCaster, Particles: 12, Speed: 6, Life: 0.4, Push: 3, Delay: 1}},
	}
	for _, row := range rows {
		t.defs[row.Element][row.Slot] = row
	}
	return t
}

// Tables bundles the process-wide definition tables handed to every room
type Tables struct {
	Abilities *AbilityTable
	Classes   *ClassTable
}

// NewTables builds the default tables
func NewTables() *Tables {
	return &Tables{Abilities: NewAbilityTable(), Classes: NewClassTable()}
}
