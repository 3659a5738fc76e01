package main

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestDefaultMaps(t *testing.T) {
	maps, err := DefaultMaps()
	if err != nil {
		t.Fatalf("DefaultMaps: %v", err)
	}
	ids := maps.IDs()
	if len(ids) != 2 || ids[0] != "abyss" || ids[1] != "crossroads" {
		t.Fatalf("unexpected map ids %v", ids)
	}
	if maps.Default().ID != "abyss" {
		t.Errorf("expected abyss as default, got %s", maps.Default().ID)
	}
	if next := maps.Next("abyss"); next.ID != "crossroads" {
		t.Errorf("expected crossroads after abyss, got %s", next.ID)
	}
	if next := maps.Next("crossroads"); next.ID != "abyss" {
		t.Errorf("expected rotation to wrap, got %s", next.ID)
	}
	if _, err := maps.Get("nowhere"); !errors.Is(err, ErrUnknownMap) {
		t.Errorf("expected ErrUnknownMap, got %v", err)
	}

	for _, id := range ids {
		m, _ := maps.Get(id)
		r := newTestRoomWith(t, m, ModeFreeForAll)
		want := 0
		for _, g := range m.Teleporters {
			want += len(g)
		}
		if got := len(r.reg.Teleporters()); got != want {
			t.Errorf("%s: expected %d teleporters, got %d", id, want, got)
		}
	}
}

func TestSpawnPointWraps(t *testing.T) {
	m := testMap()
	if p := m.SpawnPoint(2); p.X != 5 || p.Y != 10 {
		t.Errorf("expected spawn 2 to wrap to 5,10, got %v", p)
	}
}

func TestParseMapRejects(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"missing id", "width: 10\nheight: 10\nspawns: [[1, 1]]", "missing id"},
		{"bad size", "id: x\nwidth: 0\nheight: 10\nspawns: [[1, 1]]", "invalid size"},
		{"no spawns", "id: x\nwidth: 10\nheight: 10", "no spawn points"},
		{"spawn outside", "id: x\nwidth: 10\nheight: 10\nspawns: [[11, 1]]", "outside"},
		{"two shapes", "id: x\nwidth: 10\nheight: 10\nspawns: [[1, 1]]\nobstacles:\n  - rect: [1, 1, 2, 2]\n    circle: [5, 5, 1]", "exactly one"},
		{"bad rect", "id: x\nwidth: 10\nheight: 10\nspawns: [[1, 1]]\nlava:\n  - rect: [1, 1, 0, 2]", "rect"},
		{"lonely teleporter", "id: x\nwidth: 10\nheight: 10\nspawns: [[1, 1]]\nteleporters:\n  - [[2, 2]]", "at least 2"},
		{"not yaml", "id: [", "parse"},
	}
	for _, tt := range tests {
		_, err := ParseMap([]byte(tt.yaml))
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected %q in %q", tt.name, tt.want, err.Error())
		}
	}
}

func TestLoadMapCatalogDuplicate(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("id: same\nwidth: 10\nheight: 10\nspawns: [[1, 1]]")},
		"b.yaml": {Data: []byte("id: same\nwidth: 10\nheight: 10\nspawns: [[2, 2]]")},
	}
	if _, err := LoadMapCatalog(fsys); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
	if _, err := LoadMapCatalog(fstest.MapFS{}); err == nil {
		t.Error("expected an error for an empty catalog")
	}
}

func TestNewRoomRejectsMaps(t *testing.T) {
	if _, err := NewRoom(RoomOptions{Name: "x"}); !errors.Is(err, ErrUnknownMap) {
		t.Errorf("expected ErrUnknownMap for a nil map, got %v", err)
	}
	bad := testMap()
	bad.Spawns = nil
	if _, err := NewRoom(RoomOptions{Name: "x", Map: bad}); err == nil {
		t.Error("expected an invalid map to fail the room")
	}
}
