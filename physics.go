package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Fixture is attached to every shape as user data; Owner is nil for
// static map zones that have no entity behind them.
type Fixture struct {
	Tag   Tag
	Owner Entity
}

// Contact is one entry of the contact stream, seen from Self's side
type Contact struct {
	Begin bool
	Self  *Fixture
	Other *Fixture
}

// PhysicsWorld owns the rigid-body space of a single room
type PhysicsWorld struct {
	space    *cp.Space
	substeps int
	contacts []Contact
	bodies   int
}

// NewPhysicsWorld creates a gravity-free space with a collision handler for
// every tag pair. Each handler records both permutations of a contact.
func NewPhysicsWorld(substeps int) *PhysicsWorld {
	if substeps < 1 {
		substeps = 1
	}
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	w := &PhysicsWorld{space: space, substeps: substeps}
	for a := TagNone + 1; a < tagCount; a++ {
		for b := a; b < tagCount; b++ {
			h := space.NewCollisionHandler(cp.CollisionType(a), cp.CollisionType(b))
			h.BeginFunc = w.begin
			h.SeparateFunc = w.separate
		}
	}
	return w
}

func (w *PhysicsWorld) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Shapes()
	w.record(true, a, b)
	return true
}

func (w *PhysicsWorld) separate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	a, b := arb.Shapes()
	w.record(false, a, b)
}

func (w *PhysicsWorld) record(begin bool, a, b *cp.Shape) {
	fa, okA := a.UserData.(*Fixture)
	fb, okB := b.UserData.(*Fixture)
	if !okA || !okB {
		return
	}
	w.contacts = append(w.contacts,
		Contact{Begin: begin, Self: fa, Other: fb},
		Contact{Begin: begin, Self: fb, Other: fa},
	)
}

// Step advances the simulation by dt split into fixed sub-steps
func (w *PhysicsWorld) Step(dt float64) {
	h := dt / float64(w.substeps)
	for i := 0; i < w.substeps; i++ {
		w.space.Step(h)
	}
}

// Drain hands over the contacts collected since the last call
func (w *PhysicsWorld) Drain() []Contact {
	out := w.contacts
	w.contacts = nil
	return out
}

// BodyCount returns the number of dynamic and entity-owned static bodies
func (w *PhysicsWorld) BodyCount() int {
	return w.bodies
}

// NewDynamicCircle builds a non-rotating circle body for a character,
// projectile or particle.
func (w *PhysicsWorld) NewDynamicCircle(owner Entity, tag Tag, pos cp.Vector, spec BodySpec) *cp.Body {
	mass := spec.Density * math.Pi * spec.Radius * spec.Radius
	if mass <= 0 {
		mass = 0.01
	}
	body := w.space.AddBody(cp.NewBody(mass, math.Inf(1)))
	body.SetPosition(pos)
	body.UserData = owner

	shape := w.space.AddShape(cp.NewCircle(body, spec.Radius, cp.Vector{}))
	shape.SetElasticity(spec.Elasticity)
	shape.SetFriction(spec.Friction)
	shape.SetSensor(spec.Sensor)
	shape.SetCollisionType(cp.CollisionType(tag))
	shape.UserData = &Fixture{Tag: tag, Owner: owner}

	w.bodies++
	return body
}

// NewStaticSensor builds a standalone static circle sensor owned by an entity
func (w *PhysicsWorld) NewStaticSensor(owner Entity, tag Tag, pos cp.Vector, radius float64) *cp.Body {
	body := cp.NewStaticBody()
	body.SetPosition(pos)
	body.UserData = owner
	w.space.AddBody(body)

	shape := w.space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
	shape.SetSensor(true)
	shape.SetCollisionType(cp.CollisionType(tag))
	shape.UserData = &Fixture{Tag: tag, Owner: owner}

	w.bodies++
	return body
}

// AddStaticRect attaches an axis-aligned box to the space's static body
func (w *PhysicsWorld) AddStaticRect(tag Tag, x, y, width, height float64, sensor bool) {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: x, B: y, R: x + width, T: y + height}, 0)
	w.addStatic(shape, tag, sensor)
}

// AddStaticCircle attaches a circle to the space's static body
func (w *PhysicsWorld) AddStaticCircle(tag Tag, center cp.Vector, radius float64, sensor bool) {
	shape := cp.NewCircle(w.space.StaticBody, radius, center)
	w.addStatic(shape, tag, sensor)
}

// AddStaticChain attaches consecutive segments through points, closing the
// loop when requested.
func (w *PhysicsWorld) AddStaticChain(tag Tag, points []cp.Vector, loop bool, sensor bool) {
	for i := 0; i+1 < len(points); i++ {
		w.addStatic(cp.NewSegment(w.space.StaticBody, points[i], points[i+1], chainRadius), tag, sensor)
	}
	if loop && len(points) > 2 {
		w.addStatic(cp.NewSegment(w.space.StaticBody, points[len(points)-1], points[0], chainRadius), tag, sensor)
	}
}

const chainRadius = 0.05

func (w *PhysicsWorld) addStatic(shape *cp.Shape, tag Tag, sensor bool) {
	shape.SetSensor(sensor)
	shape.SetFriction(0.4)
	shape.SetCollisionType(cp.CollisionType(tag))
	shape.UserData = &Fixture{Tag: tag}
	w.space.AddShape(shape)
}

// Destroy removes a body and all of its shapes from the space
func (w *PhysicsWorld) Destroy(body *cp.Body) {
	if body == nil {
		return
	}
	var shapes []*cp.Shape
	body.EachShape(func(s *cp.Shape) {
		shapes = append(shapes, s)
	})
	for _, s := range shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(body)
	w.bodies--
}

// ApplyImpulse pushes a body through its center of mass
func ApplyImpulse(body *cp.Body, impulse cp.Vector) {
	body.ApplyImpulseAtWorldPoint(impulse, body.Position())
}

// Relocate moves a dynamic body, keeping its velocity
func Relocate(body *cp.Body, pos cp.Vector) {
	body.SetPosition(pos)
}
