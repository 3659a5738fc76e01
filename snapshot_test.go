package main

import (
	"slices"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/vmihailenco/msgpack/v5"
)

func TestBuildSnapshot(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 15, Y: 10})
	p := r.spawnProjectile(a, abilityDef(t, r, ElementFire, 0), b.Position())

	snap := r.buildSnapshot()
	if snap.Update != 1 || snap.Room != r.Index {
		t.Errorf("unexpected header %d/%d", snap.Room, snap.Update)
	}
	if !slices.Equal(snap.CharIdx, []int32{a.Index(), b.Index()}) {
		t.Errorf("unexpected character indices %v", snap.CharIdx)
	}
	if len(snap.CharPos) != 4 || snap.CharPos[0] != 5 || snap.CharPos[3] != 10 {
		t.Errorf("unexpected positions %v", snap.CharPos)
	}
	if len(snap.ProjIdx) != 1 || snap.ProjKind[0] != uint8(TagFireball) || len(snap.ProjMotion) != 4 {
		t.Errorf("unexpected projectile arrays %v %v %v", snap.ProjIdx, snap.ProjKind, snap.ProjMotion)
	}
	if snap.ProjMotion[2] <= 0 {
		t.Errorf("expected fireball moving east, got vx %v", snap.ProjMotion[2])
	}
	if len(snap.Gone) != 0 {
		t.Errorf("expected nothing gone, got %v", snap.Gone)
	}

	r.reg.RequestRemoval(b)
	r.reg.RequestRemoval(p)
	r.reg.Flush(r)
	snap = r.buildSnapshot()
	if snap.Update != 2 {
		t.Errorf("expected update 2, got %d", snap.Update)
	}
	want := []int32{b.Index(), p.Index()}
	slices.Sort(want)
	if !slices.Equal(snap.Gone, want) {
		t.Errorf("expected gone %v, got %v", want, snap.Gone)
	}

	snap = r.buildSnapshot()
	if len(snap.Gone) != 0 {
		t.Errorf("gone indices repeated: %v", snap.Gone)
	}
}

func TestBroadcastSnapshotHealthTrailer(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	sa, a := spawnPlayer(t, r, "alice", cp.Vector{X: 5, Y: 10})
	sb, b := spawnPlayer(t, r, "bob", cp.Vector{X: 15, Y: 10})
	watcher := seat(t, r, "watcher", false)
	r.summon(a, ClassGolem)
	r.ApplyDamage(b, -50, a, false)

	r.step(testDT)

	decode := func(s *recordingSession) WorldSnapshot {
		t.Helper()
		data := s.lastBinary()
		if data == nil {
			t.Fatalf("%s got no snapshot", s.name)
		}
		var snap WorldSnapshot
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return snap
	}
	if snap := decode(sa); snap.Health != 100 || snap.SummonHealth != 100 {
		t.Errorf("alice: expected 100/100, got %d/%d", snap.Health, snap.SummonHealth)
	}
	if snap := decode(sb); snap.Health != 50 || snap.SummonHealth != 0 {
		t.Errorf("bob: expected 50/0, got %d/%d", snap.Health, snap.SummonHealth)
	}
	snap := decode(watcher)
	if snap.Health != 0 {
		t.Errorf("watcher: expected 0 health, got %d", snap.Health)
	}
	if len(snap.CharIdx) != 3 {
		t.Errorf("expected 3 characters, got %d", len(snap.CharIdx))
	}
}

func TestFlushEventsOrder(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	a := seat(t, r, "alice", false)
	b := seat(t, r, "bob", false)
	gone := &recordingSession{}

	r.queueAll(MsgEffect, EffectMsg{Effect: "first"})
	r.queueTo(a, MsgCooldown, CooldownMsg{})
	r.queueTo(gone, MsgCooldown, CooldownMsg{})
	r.queueAll(MsgEffect, EffectMsg{Effect: "last"})
	r.flushEvents()

	types := func(s *recordingSession) []string {
		var out []string
		for _, e := range s.envs {
			if e.T != MsgJoined {
				out = append(out, e.T)
			}
		}
		return out
	}
	if got := types(a); !slices.Equal(got, []string{MsgEffect, MsgCooldown, MsgEffect}) {
		t.Errorf("alice: unexpected order %v", got)
	}
	if got := types(b); !slices.Equal(got, []string{MsgEffect, MsgEffect}) {
		t.Errorf("bob: unexpected order %v", got)
	}
	if len(gone.envs) != 0 {
		t.Error("event delivered to an unseated connection")
	}
	if len(r.outbox) != 0 {
		t.Error("outbox not cleared")
	}
}
