package main

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestStatusCountersSaturate(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, c := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})

	c.RemoveStatus(StatusCursed)
	if c.StatusCount(StatusCursed) != 0 {
		t.Error("counter went below zero")
	}
	for i := 0; i < 300; i++ {
		c.AddStatus(StatusCursed)
	}
	if c.StatusCount(StatusCursed) != 255 {
		t.Errorf("expected 255, got %d", c.StatusCount(StatusCursed))
	}

	c.AddStatus(StatusShielded)
	c.AddStatus(StatusShielded)
	c.RemoveStatus(StatusShielded)
	if !c.Has(StatusShielded) {
		t.Error("one shield source should remain")
	}
	c.RemoveStatus(StatusShielded)
	if c.Has(StatusShielded) {
		t.Error("shield should be gone")
	}
}

func TestConfusedMirrorsDestination(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, c := spawnPlayer(t, r, "alice", cp.Vector{X: 10, Y: 10})

	c.SetDestination(cp.Vector{X: 12, Y: 11})
	if dst, _ := c.Destination(); dst != (cp.Vector{X: 12, Y: 11}) {
		t.Errorf("expected 12,11, got %v", dst)
	}
	c.AddStatus(StatusConfused)
	c.SetDestination(cp.Vector{X: 12, Y: 11})
	if dst, _ := c.Destination(); dst != (cp.Vector{X: 8, Y: 9}) {
		t.Errorf("expected mirrored 8,9, got %v", dst)
	}
}

func TestImmobilizedDoesNotSteer(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, c := spawnPlayer(t, r, "alice", cp.Vector{X: 10, Y: 10})
	c.SetDestination(cp.Vector{X: 15, Y: 10})
	c.AddStatus(StatusImmobilized)

	c.update(r, testDT)
	if v := c.body.Velocity(); v.LengthSq() != 0 {
		t.Errorf("immobilized character moving at %v", v)
	}
	c.refreshDisplay()
	if c.Anim != AnimIdle {
		t.Errorf("expected idle animation, got %d", c.Anim)
	}

	c.RemoveStatus(StatusImmobilized)
	c.update(r, testDT)
	if v := c.body.Velocity(); v.X <= 0 {
		t.Errorf("expected steering east, got %v", v)
	}
	c.refreshDisplay()
	if c.Anim != AnimWalk || c.Facing != 0 {
		t.Errorf("expected walking east, got anim %d facing %d", c.Anim, c.Facing)
	}
}

func TestCharacterRequestValidate(t *testing.T) {
	tables := NewTables()
	tests := []struct {
		name string
		req  CharacterRequest
		ok   bool
	}{
		{"wizard", CharacterRequest{Class: ClassWizard}, true},
		{"rogue with last slots", CharacterRequest{Class: ClassRogue, Abilities: [ElementCount]int{6, 6, 6, 6}}, true},
		{"negative class", CharacterRequest{Class: -1}, false},
		{"summon class", CharacterRequest{Class: ClassImp}, false},
		{"unknown class", CharacterRequest{Class: ClassID(tables.Classes.Len())}, false},
		{"slot out of range", CharacterRequest{Abilities: [ElementCount]int{0, 0, AbilitiesPerElement, 0}}, false},
		{"negative slot", CharacterRequest{Abilities: [ElementCount]int{-1, 0, 0, 0}}, false},
	}
	for _, tt := range tests {
		def, abilities, err := tt.req.Validate(tables)
		if tt.ok {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
				continue
			}
			if def == nil || abilities[ElementAir] == nil {
				t.Errorf("%s: incomplete resolution", tt.name)
			}
			continue
		}
		if !errors.Is(err, ErrCorruptedData) {
			t.Errorf("%s: expected ErrCorruptedData, got %v", tt.name, err)
		}
	}
}

func TestTablesComplete(t *testing.T) {
	tables := NewTables()
	for e := Element(0); e < ElementCount; e++ {
		for slot := 0; slot < AbilitiesPerElement; slot++ {
			def, ok := tables.Abilities.Get(e, slot)
			if !ok || def.Name == "" {
				t.Errorf("missing ability %d/%d", e, slot)
				continue
			}
			if def.Element != e || def.Slot != slot {
				t.Errorf("%s filed under %d/%d", def.Name, e, slot)
			}
			if def.Kind == KindProjectile {
				if _, ok := projectileSpecs[def.Projectile]; !ok {
					t.Errorf("%s: no body spec for %s", def.Name, def.Projectile)
				}
			}
			if def.Kind == KindSummon {
				if c, ok := tables.Classes.Get(def.Creature); !ok || c.Creature == nil {
					t.Errorf("%s: summons a non-creature", def.Name)
				}
			}
		}
	}
	for id := ClassID(0); int(id) < tables.Classes.Len(); id++ {
		c, _ := tables.Classes.Get(id)
		if c.Selectable == (c.Creature != nil) {
			t.Errorf("%s: selectable classes must not be creatures", c.Name)
		}
	}
}
