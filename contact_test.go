package main

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestRouteContact(t *testing.T) {
	tests := []struct {
		self, other Tag
		begin       bool
		want        ContactEffect
	}{
		{TagPlayer, TagFireball, true, EffectProjectileHit},
		{TagPlayer, TagBoulder, true, EffectProjectileHit},
		{TagSummon, TagBoulder, true, EffectAvoidObstacle},
		{TagPlayer, TagMeteor, true, EffectNone},
		{TagPlayer, TagParticle, true, EffectParticleHit},
		{TagSummon, TagPlayer, true, EffectSummonStrike},
		{TagPlayer, TagSummon, true, EffectNone},
		{TagSummon, TagWarning, true, EffectAvoidVoid},
		{TagPlayer, TagWarning, true, EffectNone},
		{TagPlayer, TagVoid, true, EffectFall},
		{TagPlayer, TagLava, true, EffectEnterHazard},
		{TagPlayer, TagLava, false, EffectLeaveHazard},
		{TagPlayer, TagTeleporter, true, EffectTeleport},
		{TagFireball, TagTeleporter, false, EffectTeleportRelease},
		{TagPlayer, TagOuterBounds, true, EffectOutOfBounds},
		{TagIceShard, TagOuterBounds, true, EffectOutOfBounds},
		{TagMeteor, TagPlayer, true, EffectExplode},
		{TagMeteor, TagObstacle, true, EffectExplode},
		{TagMeteor, TagLava, true, EffectNone},
		{TagMeteor, TagParticle, true, EffectNone},
		{TagBoulder, TagTidalOrb, true, EffectCrack},
		{TagBoulder, TagLightning, true, EffectCrack},
		{TagBoulder, TagParticle, true, EffectCrack},
		{TagBoulder, TagFireball, true, EffectNone},
		{TagFireball, TagObstacle, true, EffectShatter},
		{TagLightning, TagBoulder, true, EffectShatter},
		{TagSpark, TagTidalOrb, true, EffectShatter},
		{TagFireball, TagFireball, true, EffectNone},
		{TagObstacle, TagPlayer, true, EffectNone},
		{TagPlayer, TagFireball, false, EffectNone},
	}
	for _, tt := range tests {
		if got := routeContact(tt.self, tt.other, tt.begin); got != tt.want {
			t.Errorf("%s/%s begin=%v: expected %s, got %s", tt.self, tt.other, tt.begin, tt.want, got)
		}
	}
}

func abilityDef(t *testing.T, r *Room, e Element, slot int) *AbilityDef {
	t.Helper()
	def, ok := r.tables.Abilities.Get(e, slot)
	if !ok {
		t.Fatalf("no ability %d/%d", e, slot)
	}
	return def
}

func TestProjectileSingleHit(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 12, Y: 10})
	_, c := spawnPlayer(t, r, "carol", cp.Vector{X: 12, Y: 12})
	p := r.spawnProjectile(a, abilityDef(t, r, ElementFire, 0), b.Position())

	r.applyContact(EffectProjectileHit, a, p)
	if a.Health != a.MaxHealth {
		t.Error("caster hit by its own projectile")
	}
	r.applyContact(EffectProjectileHit, b, p)
	if b.Health != 80 {
		t.Errorf("expected 80 health, got %v", b.Health)
	}
	r.applyContact(EffectProjectileHit, c, p)
	if c.Health != c.MaxHealth {
		t.Error("consumed projectile hit a second character")
	}
	if n := r.reg.Flush(r); n != 1 || !p.Removed() {
		t.Error("projectile should be removed after its hit")
	}
}

func TestProjectileSparesSummonOfCaster(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	golem := r.summon(a, ClassGolem)
	p := r.spawnProjectile(a, abilityDef(t, r, ElementFire, 0), cp.Vector{X: 15, Y: 10})

	r.projectileHit(p, golem)
	if golem.Health != golem.MaxHealth || !p.Alive() {
		t.Error("projectile hit its caster's summon")
	}
}

func TestProjectileAppliesStatus(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 12, Y: 10})
	p := r.spawnProjectile(a, abilityDef(t, r, ElementWater, 0), b.Position())

	r.projectileHit(p, b)
	if b.Health != 90 {
		t.Errorf("expected 90 health, got %v", b.Health)
	}
	if !b.Has(StatusImmobilized) || b.CanMove() {
		t.Error("expected ice shard to immobilize")
	}
}

func TestCrackingProjectile(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 12, Y: 10})
	p := r.spawnProjectile(a, abilityDef(t, r, ElementEarth, 0), b.Position())

	r.projectileHit(p, b)
	r.projectileHit(p, b)
	if b.Health != 85 {
		t.Errorf("expected a single boulder hit, got health %v", b.Health)
	}
	if !p.Alive() {
		t.Fatal("boulder should survive character hits")
	}

	for i := 0; i < 3; i++ {
		r.applyContact(EffectCrack, p, nil)
	}
	if r.reg.Pending() != 0 {
		t.Fatal("boulder removed too early")
	}
	r.applyContact(EffectCrack, p, nil)
	if r.reg.Pending() != 1 {
		t.Error("expected boulder to crumble")
	}
}

func TestExplodingProjectile(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 12, Y: 10})
	p := r.spawnProjectile(a, abilityDef(t, r, ElementFire, 2), b.Position())

	r.applyContact(EffectExplode, p, a)
	if !p.Alive() {
		t.Fatal("meteor exploded on its caster")
	}
	r.applyContact(EffectExplode, p, b)
	r.reg.Flush(r)
	if !p.Removed() {
		t.Error("meteor should be gone")
	}
	if len(r.reg.clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(r.reg.clusters))
	}
	if r.reg.clusters[0].Particles() != p.Def.Burst.Particles {
		t.Errorf("expected %d particles, got %d", p.Def.Burst.Particles, r.reg.clusters[0].Particles())
	}
}

func TestClusterHitsOnce(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 12, Y: 10})
	def := abilityDef(t, r, ElementFire, 6)
	cl := r.spawnCluster(a, def, b.Position())
	part := cl.particles[0]

	r.applyContact(EffectParticleHit, b, part)
	r.applyContact(EffectParticleHit, b, cl.particles[1])
	if b.Health != 88 {
		t.Errorf("expected one burst hit, got health %v", b.Health)
	}
	r.applyContact(EffectParticleHit, a, part)
	if a.Health != a.MaxHealth {
		t.Error("caster hit by its own burst")
	}

	cl.update(r, def.Burst.Life)
	r.reg.Flush(r)
	if part.Body() != nil {
		t.Error("particle bodies should be released with the cluster")
	}
	if r.world.BodyCount() != 2 {
		t.Errorf("expected only characters left, got %d bodies", r.world.BodyCount())
	}
}

func TestHazardAndFall(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	s, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})

	r.applyContact(EffectEnterHazard, a, nil)
	a.update(r, 1)
	if a.Health != 85 {
		t.Errorf("expected lava damage, got health %v", a.Health)
	}
	r.applyContact(EffectLeaveHazard, a, nil)
	a.update(r, 1)
	if a.Health != 85 {
		t.Error("hazard damage after leaving")
	}

	r.applyContact(EffectFall, a, nil)
	if a.Alive() {
		t.Error("falling into the void should kill")
	}
	r.flushEvents()
	if s.count(MsgEntityFalling) != 1 {
		t.Errorf("expected 1 falling packet, got %d", s.count(MsgEntityFalling))
	}
}

func TestOutOfBounds(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	golem := r.summon(a, ClassGolem)
	p := r.spawnProjectile(a, abilityDef(t, r, ElementFire, 0), cp.Vector{X: 15, Y: 10})

	r.applyContact(EffectOutOfBounds, p, nil)
	r.applyContact(EffectOutOfBounds, golem, nil)
	if golem.Alive() || !a.Alive() {
		t.Error("only the summon should die")
	}
	r.applyContact(EffectOutOfBounds, a, nil)
	if a.Alive() {
		t.Error("player out of bounds should die")
	}
	if n := r.reg.Flush(r); n != 3 {
		t.Errorf("expected 3 removals, got %d", n)
	}
}

func TestTeleportDebounce(t *testing.T) {
	maps, err := DefaultMaps()
	if err != nil {
		t.Fatalf("DefaultMaps: %v", err)
	}
	m, err := maps.Get("crossroads")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r := newTestRoomWith(t, m, ModeFreeForAll)
	if len(r.reg.Teleporters()) != 2 {
		t.Fatalf("expected 2 teleporters, got %d", len(r.reg.Teleporters()))
	}
	var west, east *Teleporter
	for _, tp := range r.reg.Teleporters() {
		if tp.Pos.X < 16 {
			west = tp
		} else {
			east = tp
		}
	}
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 2.25, Y: 12})
	a.SetDestination(cp.Vector{X: 10, Y: 12})

	r.applyContact(EffectTeleport, a, west)
	if got := a.Position(); got != (cp.Vector{X: 30.25, Y: 12}) {
		t.Fatalf("expected arrival at 30.25,12, got %v", got)
	}
	if _, ok := a.Destination(); ok {
		t.Error("teleport should cancel the destination")
	}

	// arrival contact with the destination is ignored
	r.applyContact(EffectTeleport, a, east)
	if a.Position().X != 30.25 {
		t.Error("teleported straight back")
	}
	r.applyContact(EffectTeleportRelease, a, east)
	r.applyContact(EffectTeleport, a, east)
	if a.Position().X != 2.25 {
		t.Errorf("expected return trip, got %v", a.Position())
	}
}
