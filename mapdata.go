package main

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

//go:embed maps/*.yaml
var embeddedMaps embed.FS

const (
	WallThickness   = 1.0
	OuterBoundsSize = 4.0
)

// Zone is one static collider; exactly one of Rect, Circle or Chain is set
type Zone struct {
	Rect   []float64   `yaml:"rect,omitempty"`   // x, y, width, height
	Circle []float64   `yaml:"circle,omitempty"` // x, y, radius
	Chain  [][]float64 `yaml:"chain,omitempty"`
	Loop   bool        `yaml:"loop,omitempty"`
}

// MapDef is an arena: size, spawn points, zones and teleporter groups
type MapDef struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	Walled      bool          `yaml:"walled"`
	Spawns      [][]float64   `yaml:"spawns"`
	Obstacles   []Zone        `yaml:"obstacles"`
	Lava        []Zone        `yaml:"lava"`
	Void        []Zone        `yaml:"void"`
	Warning     []Zone        `yaml:"warning"`
	Teleporters [][][]float64 `yaml:"teleporters"`
}

// MapCatalog holds validated maps in rotation order
type MapCatalog struct {
	byID  map[string]*MapDef
	order []string
}

// DefaultMaps loads the maps bundled with the server
func DefaultMaps() (*MapCatalog, error) {
	sub, err := fs.Sub(embeddedMaps, "maps")
	if err != nil {
		return nil, err
	}
	return LoadMapCatalog(sub)
}

// LoadMapCatalog parses and validates every *.yaml file in fsys
func LoadMapCatalog(fsys fs.FS) (*MapCatalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no maps found")
	}
	sort.Strings(names)
	cat := &MapCatalog{byID: make(map[string]*MapDef)}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read map %s: %w", name, err)
		}
		m, err := ParseMap(data)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", path.Base(name), err)
		}
		if _, dup := cat.byID[m.ID]; dup {
			return nil, fmt.Errorf("map %s: duplicate id %q", name, m.ID)
		}
		cat.byID[m.ID] = m
		cat.order = append(cat.order, m.ID)
	}
	return cat, nil
}

// ParseMap decodes and validates a single map
func ParseMap(data []byte) (*MapDef, error) {
	var m MapDef
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get returns a map by id
func (c *MapCatalog) Get(id string) (*MapDef, error) {
	m, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, id)
	}
	return m, nil
}

// Default returns the first map in rotation order
func (c *MapCatalog) Default() *MapDef {
	return c.byID[c.order[0]]
}

// Next returns the map after id in rotation order
func (c *MapCatalog) Next(id string) *MapDef {
	for i, o := range c.order {
		if o == id {
			return c.byID[c.order[(i+1)%len(c.order)]]
		}
	}
	return c.Default()
}

// IDs lists the map ids in rotation order
func (c *MapCatalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Validate checks everything the room needs to build the map's geometry
func (m *MapDef) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("missing id")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid size %gx%g", m.Width, m.Height)
	}
	if len(m.Spawns) == 0 {
		return fmt.Errorf("no spawn points")
	}
	for i, s := range m.Spawns {
		if len(s) != 2 {
			return fmt.Errorf("spawn %d: want [x, y]", i)
		}
		if s[0] < 0 || s[1] < 0 || s[0] > m.Width || s[1] > m.Height {
			return fmt.Errorf("spawn %d outside the arena", i)
		}
	}
	layers := []struct {
		name  string
		zones []Zone
	}{
		{"obstacles", m.Obstacles}, {"lava", m.Lava}, {"void", m.Void}, {"warning", m.Warning},
	}
	for _, l := range layers {
		for i, z := range l.zones {
			if err := z.validate(); err != nil {
				return fmt.Errorf("%s %d: %w", l.name, i, err)
			}
		}
	}
	for i, g := range m.Teleporters {
		if len(g) < 2 {
			return fmt.Errorf("teleporter group %d: needs at least 2 teleporters", i)
		}
		for j, p := range g {
			if len(p) != 2 {
				return fmt.Errorf("teleporter group %d entry %d: want [x, y]", i, j)
			}
		}
	}
	return nil
}

func (z Zone) validate() error {
	set := 0
	if z.Rect != nil {
		set++
		if len(z.Rect) != 4 || z.Rect[2] <= 0 || z.Rect[3] <= 0 {
			return fmt.Errorf("rect wants [x, y, w, h] with positive size")
		}
	}
	if z.Circle != nil {
		set++
		if len(z.Circle) != 3 || z.Circle[2] <= 0 {
			return fmt.Errorf("circle wants [x, y, r] with positive radius")
		}
	}
	if z.Chain != nil {
		set++
		if len(z.Chain) < 2 {
			return fmt.Errorf("chain needs at least 2 points")
		}
		for _, p := range z.Chain {
			if len(p) != 2 {
				return fmt.Errorf("chain point wants [x, y]")
			}
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of rect, circle or chain required")
	}
	return nil
}

// SpawnPoint returns spawn i, wrapping around
func (m *MapDef) SpawnPoint(i int) cp.Vector {
	s := m.Spawns[i%len(m.Spawns)]
	return cp.Vector{X: s[0], Y: s[1]}
}

// build turns the map into static colliders and teleporters
func (m *MapDef) build(r *Room) error {
	if err := m.Validate(); err != nil {
		return err
	}
	w := r.world
	addZones := func(tag Tag, zones []Zone, sensor bool) {
		for _, z := range zones {
			switch {
			case z.Rect != nil:
				w.AddStaticRect(tag, z.Rect[0], z.Rect[1], z.Rect[2], z.Rect[3], sensor)
			case z.Circle != nil:
				w.AddStaticCircle(tag, cp.Vector{X: z.Circle[0], Y: z.Circle[1]}, z.Circle[2], sensor)
			case z.Chain != nil:
				pts := make([]cp.Vector, len(z.Chain))
				for i, p := range z.Chain {
					pts[i] = cp.Vector{X: p[0], Y: p[1]}
				}
				w.AddStaticChain(tag, pts, z.Loop, sensor)
			}
		}
	}
	addZones(TagObstacle, m.Obstacles, false)
	addZones(TagLava, m.Lava, true)
	addZones(TagVoid, m.Void, true)
	addZones(TagWarning, m.Warning, true)

	if m.Walled {
		t := WallThickness
		w.AddStaticRect(TagObstacle, -t, -t, m.Width+2*t, t, false)
		w.AddStaticRect(TagObstacle, -t, m.Height, m.Width+2*t, t, false)
		w.AddStaticRect(TagObstacle, -t, 0, t, m.Height, false)
		w.AddStaticRect(TagObstacle, m.Width, 0, t, m.Height, false)
	}
	// Out-of-bounds sensors frame the arena beyond any wall.
	gap, s := WallThickness, OuterBoundsSize
	w.AddStaticRect(TagOuterBounds, -gap-s, -gap-s, m.Width+2*(gap+s), s, true)
	w.AddStaticRect(TagOuterBounds, -gap-s, m.Height+gap, m.Width+2*(gap+s), s, true)
	w.AddStaticRect(TagOuterBounds, -gap-s, -gap, s, m.Height+2*gap, true)
	w.AddStaticRect(TagOuterBounds, m.Width+gap, -gap, s, m.Height+2*gap, true)

	for group, g := range m.Teleporters {
		for _, p := range g {
			r.addTeleporter(group, cp.Vector{X: p[0], Y: p[1]})
		}
	}
	return nil
}
