package main

import (
	"github.com/jakecoffman/cp"
)

const TeleporterRadius = 0.6

// Teleporter is a static sensor linked to the other members of its group
type Teleporter struct {
	entityBase
	Group int
	Pos   cp.Vector
}

func (t *Teleporter) update(r *Room, dt float64) {}

func (t *Teleporter) destroy(r *Room) {
	t.release(r.world)
}

func (r *Room) addTeleporter(group int, pos cp.Vector) *Teleporter {
	t := &Teleporter{entityBase: entityBase{index: r.reg.NextIndex()}, Group: group, Pos: pos}
	t.body = r.world.NewStaticSensor(t, TagTeleporter, pos, TeleporterRadius)
	r.reg.AddTeleporter(t)
	return t
}

// sibling picks a random other teleporter of the same group
func (r *Room) sibling(t *Teleporter) *Teleporter {
	var candidates []*Teleporter
	for _, o := range r.reg.Teleporters() {
		if o != t && o.Group == t.Group && !o.Removed() {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[r.rng.Intn(len(candidates))]
}

// teleport moves e from src to a random sibling. The debounce marker is set
// to the destination so the arrival contact does not bounce e back; it is
// cleared once e leaves that teleporter.
func (r *Room) teleport(e Entity, src *Teleporter) {
	if src == nil || e.Removed() || e.Body() == nil {
		return
	}
	marker := teleportMarker(e)
	if marker == nil || *marker == src.Index() {
		return
	}
	dst := r.sibling(src)
	if dst == nil {
		return
	}
	from := e.Body().Position()
	offset := from.Sub(src.Pos)
	to := dst.Pos.Add(offset)
	*marker = dst.Index()

	r.relocate(e.Body(), to)
	r.effectDisplay("teleport_exit", from, EffectFlash)
	r.effectDisplay("teleport_enter", to, EffectFlash)

	switch v := e.(type) {
	case *Character:
		v.ClearDestination()
		v.loseControl()
	case *Projectile:
		if v.Behavior() == BehaviorExploding {
			v.Destination = v.Destination.Add(to.Sub(from))
		}
	}
}

// releaseTeleporter clears the debounce once contact with t ends
func releaseTeleporter(e Entity, t *Teleporter) {
	if t == nil {
		return
	}
	if marker := teleportMarker(e); marker != nil && *marker == t.Index() {
		*marker = 0
	}
}

func teleportMarker(e Entity) *int32 {
	switch v := e.(type) {
	case *Character:
		return &v.lastTeleporter
	case *Projectile:
		return &v.lastTeleporter
	}
	return nil
}
