package main

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// WorldSnapshot is the per-tick binary state packet. Arrays are parallel:
// CharPos holds x,y pairs and ProjMotion holds x,y,vx,vy quadruples.
type WorldSnapshot struct {
	Room         int32     `msgpack:"r" json:"r"`
	Update       uint32    `msgpack:"u" json:"u"`
	CharIdx      []int32   `msgpack:"ci" json:"ci"`
	CharPos      []float32 `msgpack:"cp" json:"cp"`
	CharState    []uint8   `msgpack:"cs" json:"cs"` // facing<<4 | animation
	ProjIdx      []int32   `msgpack:"pi" json:"pi"`
	ProjKind     []uint8   `msgpack:"pk" json:"pk"`
	ProjMotion   []float32 `msgpack:"pm" json:"pm"`
	Gone         []int32   `msgpack:"g,omitempty" json:"g,omitempty"`
	Health       uint8     `msgpack:"h" json:"h"`
	SummonHealth uint8     `msgpack:"sh" json:"sh"`
}

// outbound is one queued reliable event; a nil target means every
// connection in the room.
type outbound struct {
	to  Session
	env Envelope
}

// buildSnapshot collects the networked world state and the indices that
// disappeared since the previous snapshot.
func (r *Room) buildSnapshot() WorldSnapshot {
	r.updateIndex++
	chars := r.reg.Characters()
	projs := r.reg.Projectiles()
	s := WorldSnapshot{
		Room:       r.Index,
		Update:     r.updateIndex,
		CharIdx:    make([]int32, 0, len(chars)),
		CharPos:    make([]float32, 0, 2*len(chars)),
		CharState:  make([]uint8, 0, len(chars)),
		ProjIdx:    make([]int32, 0, len(projs)),
		ProjKind:   make([]uint8, 0, len(projs)),
		ProjMotion: make([]float32, 0, 4*len(projs)),
	}
	seen := make(map[int32]struct{}, len(chars)+len(projs))
	for _, c := range chars {
		if c.Removed() || c.body == nil {
			continue
		}
		pos := c.body.Position()
		s.CharIdx = append(s.CharIdx, c.Index())
		s.CharPos = append(s.CharPos, float32(pos.X), float32(pos.Y))
		s.CharState = append(s.CharState, c.State())
		seen[c.Index()] = struct{}{}
	}
	for _, p := range projs {
		if p.Removed() || p.body == nil {
			continue
		}
		pos, vel := p.body.Position(), p.body.Velocity()
		s.ProjIdx = append(s.ProjIdx, p.Index())
		s.ProjKind = append(s.ProjKind, uint8(p.Tag))
		s.ProjMotion = append(s.ProjMotion, float32(pos.X), float32(pos.Y), float32(vel.X), float32(vel.Y))
		seen[p.Index()] = struct{}{}
	}
	for idx := range r.lastSeen {
		if _, ok := seen[idx]; !ok {
			s.Gone = append(s.Gone, idx)
		}
	}
	slices.Sort(s.Gone)
	r.lastSeen = seen
	return s
}

// broadcastSnapshot sends the snapshot to every connection with its own
// health trailer. Sends are loss-tolerant.
func (r *Room) broadcastSnapshot() {
	snap := r.buildSnapshot()
	for _, sess := range r.order {
		snap.Health, snap.SummonHealth = 0, 0
		if c := r.characterOf(sess); c != nil {
			snap.Health = c.HealthPercent()
			snap.SummonHealth = c.Summon.HealthPercent()
		}
		data, err := msgpack.Marshal(&snap)
		if err != nil {
			r.log.Error("snapshot encode failed", zap.Error(err))
			return
		}
		sess.SendBinary(data)
	}
}

// queueAll queues a reliable event for every connection
func (r *Room) queueAll(t string, data interface{}) {
	r.outbox = append(r.outbox, outbound{env: Envelope{T: t, Data: data}})
}

// queueTo queues a reliable event for one connection
func (r *Room) queueTo(s Session, t string, data interface{}) {
	if s == nil {
		return
	}
	r.outbox = append(r.outbox, outbound{to: s, env: Envelope{T: t, Data: data}})
}

// flushEvents delivers the queued events in order and clears the queue
func (r *Room) flushEvents() {
	for _, o := range r.outbox {
		if o.to != nil {
			if _, ok := r.players[o.to]; ok {
				o.to.SendJSON(o.env)
			}
			continue
		}
		for _, sess := range r.order {
			sess.SendJSON(o.env)
		}
	}
	clear(r.outbox)
	r.outbox = r.outbox[:0]
}

// EffectFlash is the display time of short one-off effects
const EffectFlash = 0.5

func (r *Room) effectDisplay(effect string, at cp.Vector, duration float64) {
	r.queueAll(MsgEffect, EffectMsg{Effect: effect, X: at.X, Y: at.Y, Duration: duration})
}

func (r *Room) effectAttach(effect string, index int32, duration float64) {
	r.queueAll(MsgAttach, AttachMsg{Effect: effect, Index: index, Duration: duration})
}
