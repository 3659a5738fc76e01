package main

import (
	"sync/atomic"

	"github.com/jakecoffman/cp"
)

// clusterIndex is shared by every area-effect cluster and its particles;
// clusters are never networked individually.
const clusterIndex int32 = 0

// Entity is anything in a room that owns a physics body
type Entity interface {
	Index() int32
	Body() *cp.Body
	Removed() bool
	update(r *Room, dt float64)
	destroy(r *Room)
	base() *entityBase
}

// entityBase carries the bookkeeping every entity shares
type entityBase struct {
	index   int32
	body    *cp.Body
	removed bool
	queued  bool
}

func (e *entityBase) Index() int32 { return e.index }
func (e *entityBase) Body() *cp.Body { return e.body }
func (e *entityBase) Removed() bool { return e.removed }
func (e *entityBase) base() *entityBase { return e }

// Position returns the body position, or zero once the body is gone
func (e *entityBase) Position() cp.Vector {
	if e.body == nil {
		return cp.Vector{}
	}
	return e.body.Position()
}

// release frees the body exactly once
func (e *entityBase) release(w *PhysicsWorld) {
	if e.body != nil {
		w.Destroy(e.body)
		e.body = nil
	}
	e.removed = true
}

// Registry holds the typed live-entity collections of one room and its
// pending-removal queue.
type Registry struct {
	next atomic.Int32

	characters  []*Character
	projectiles []*Projectile
	clusters    []*Cluster
	teleporters []*Teleporter
	byIndex     map[int32]Entity

	pending []Entity
}

// NewRegistry creates an empty registry; the first issued index is 1
func NewRegistry() *Registry {
	return &Registry{byIndex: make(map[int32]Entity)}
}

// NextIndex issues a fresh entity index. Safe to call from any goroutine.
func (g *Registry) NextIndex() int32 {
	return g.next.Add(1)
}

func (g *Registry) AddCharacter(c *Character) {
	g.characters = append(g.characters, c)
	g.byIndex[c.index] = c
}

func (g *Registry) AddProjectile(p *Projectile) {
	g.projectiles = append(g.projectiles, p)
	g.byIndex[p.index] = p
}

func (g *Registry) AddCluster(c *Cluster) {
	g.clusters = append(g.clusters, c)
}

func (g *Registry) AddTeleporter(t *Teleporter) {
	g.teleporters = append(g.teleporters, t)
	g.byIndex[t.index] = t
}

// Lookup returns a live indexed entity
func (g *Registry) Lookup(index int32) Entity {
	e, ok := g.byIndex[index]
	if !ok || e.Removed() {
		return nil
	}
	return e
}

// Character returns a live character by index
func (g *Registry) Character(index int32) *Character {
	c, _ := g.Lookup(index).(*Character)
	return c
}

// Characters returns the live characters in creation order. The slice must
// not be retained across a removal pass.
func (g *Registry) Characters() []*Character {
	return g.characters
}

func (g *Registry) Projectiles() []*Projectile {
	return g.projectiles
}

func (g *Registry) Teleporters() []*Teleporter {
	return g.teleporters
}

// RequestRemoval queues e for the next removal pass. Repeated requests for
// the same entity are absorbed.
func (g *Registry) RequestRemoval(e Entity) {
	b := e.base()
	if b.removed || b.queued {
		return
	}
	b.queued = true
	g.pending = append(g.pending, e)
}

// Pending returns the number of queued removals
func (g *Registry) Pending() int {
	return len(g.pending)
}

// Flush invokes each queued entity's destroy hook exactly once and drops
// it from its collection. Removals requested by a destroy hook are handled
// in the same pass. Returns the number of destroyed entities.
func (g *Registry) Flush(r *Room) int {
	n := 0
	for len(g.pending) > 0 {
		e := g.pending[0]
		g.pending[0] = nil
		g.pending = g.pending[1:]
		if e.Removed() {
			continue
		}
		e.destroy(r)
		e.base().removed = true
		if e.Index() != clusterIndex {
			delete(g.byIndex, e.Index())
		}
		n++
	}
	g.pending = nil
	if n > 0 {
		g.compact()
	}
	return n
}

func (g *Registry) compact() {
	g.characters = compactLive(g.characters)
	g.projectiles = compactLive(g.projectiles)
	g.clusters = compactLive(g.clusters)
	g.teleporters = compactLive(g.teleporters)
}

func compactLive[T Entity](list []T) []T {
	kept := list[:0]
	for _, e := range list {
		if !e.Removed() {
			kept = append(kept, e)
		}
	}
	var zero T
	for i := len(kept); i < len(list); i++ {
		list[i] = zero
	}
	return kept
}

// Clear destroys everything, used when the room is disposed
func (g *Registry) Clear(r *Room) {
	for _, c := range g.characters {
		g.RequestRemoval(c)
	}
	for _, p := range g.projectiles {
		g.RequestRemoval(p)
	}
	for _, c := range g.clusters {
		g.RequestRemoval(c)
	}
	for _, t := range g.teleporters {
		g.RequestRemoval(t)
	}
	g.Flush(r)
}
