package main

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func gridCharacter(x, y float64) *Character {
	w := NewPhysicsWorld(1)
	def := NewClassTable().defs[ClassWizard]
	c := newCharacter(1, ClassWizard, &def, false, NoTeam)
	c.body = w.NewDynamicCircle(c, TagPlayer, cp.Vector{X: x, Y: y}, BodySpec{Radius: def.Radius, Density: def.Density})
	return c
}

func contains(list []*Character, c *Character) bool {
	for _, o := range list {
		if o == c {
			return true
		}
	}
	return false
}

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialGrid(0, 0, 32, 24)
	c := gridCharacter(10, 10)
	grid.Insert(c)

	// Query around (10,10) should find it
	if !contains(grid.QueryBuf(cp.Vector{X: 11, Y: 10}, 2, nil), c) {
		t.Error("expected to find character at (10,10)")
	}
	// Query far away should not find it
	if contains(grid.QueryBuf(cp.Vector{X: 28, Y: 20}, 2, nil), c) {
		t.Error("should not find character from (28,20)")
	}
}

func TestSpatialGridRebuildSkipsDead(t *testing.T) {
	grid := NewSpatialGrid(0, 0, 32, 24)
	live, dead := gridCharacter(5, 5), gridCharacter(6, 5)
	dead.dead = true

	grid.Rebuild([]*Character{live, dead})
	if grid.stale {
		t.Error("rebuild should leave the grid fresh")
	}
	results := grid.QueryBuf(cp.Vector{X: 5, Y: 5}, 3, nil)
	if !contains(results, live) || contains(results, dead) {
		t.Errorf("expected only the live character, got %d results", len(results))
	}

	grid.Invalidate()
	grid.Clear()
	if n := len(grid.QueryBuf(cp.Vector{X: 5, Y: 5}, 3, nil)); n != 0 {
		t.Errorf("expected 0 results after clear, got %d", n)
	}
	if !grid.stale {
		t.Error("expected stale grid after invalidate")
	}
}

func TestSpatialGridBoundaryClamp(t *testing.T) {
	grid := NewSpatialGrid(0, 0, 32, 24)

	// Negative coords land in the first cell
	low := gridCharacter(-3, -3)
	grid.Insert(low)
	if !contains(grid.QueryBuf(cp.Vector{}, 1, nil), low) {
		t.Error("expected to find character inserted at negative coords")
	}

	// Beyond the arena edge lands in the last cell
	high := gridCharacter(50, 50)
	grid.Insert(high)
	if !contains(grid.QueryBuf(cp.Vector{X: 32, Y: 24}, 1, nil), high) {
		t.Error("expected to find character inserted beyond the arena")
	}
}

func TestNearestCharacterUsesFreshGrid(t *testing.T) {
	r := newTestRoom(t, ModeFreeForAll)
	_, a := spawnPlayer(t, r, "alice", cp.Vector{X: 3, Y: 3})
	_, b := spawnPlayer(t, r, "bob", cp.Vector{X: 17, Y: 17})

	if got := r.nearestCharacter(cp.Vector{X: 4, Y: 4}, 3, nil); got != a {
		t.Errorf("expected alice, got %v", got)
	}
	// a relocation must be visible to the next bounded query
	r.relocate(b.body, cp.Vector{X: 4.5, Y: 4.5})
	if got := r.nearestCharacter(cp.Vector{X: 5, Y: 5}, 3, nil); got != b {
		t.Error("expected bob after relocation")
	}
	if got := r.nearestCharacter(cp.Vector{X: 17, Y: 17}, 3, nil); got != nil {
		t.Error("expected nobody at bob's old spot")
	}
	if got := r.nearestCharacter(cp.Vector{X: 17, Y: 17}, 1e9, func(o *Character) bool { return o != b }); got != a {
		t.Error("accept filter ignored")
	}
}
