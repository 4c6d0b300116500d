package data

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/wograld/server/internal/world"
)

// MapDef is one map file.
type MapDef struct {
	Path     string `yaml:"path"` // defaults to the file name without extension
	Name     string `yaml:"name"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Track    int    `yaml:"track"`
	Darkness int    `yaml:"darkness"`
	Safe     bool   `yaml:"safe"`

	Tiles TileDef `yaml:"tiles"`
	Upper string  `yaml:"upper"`
	Lower string  `yaml:"lower"`

	// Legend maps single layout characters to archetype names. Each row of
	// Layout is one line of the map, west to east; spaces leave a cell empty.
	Legend map[string]string `yaml:"legend"`
	Layout string            `yaml:"layout"`

	Objects []PlacementDef `yaml:"objects"`
}

// TileDef names the neighbouring maps a map scrolls into.
type TileDef struct {
	North     string `yaml:"north"`
	NorthEast string `yaml:"north_east"`
	East      string `yaml:"east"`
	SouthEast string `yaml:"south_east"`
	South     string `yaml:"south"`
	SouthWest string `yaml:"south_west"`
	West      string `yaml:"west"`
	NorthWest string `yaml:"north_west"`
}

// paths orders the neighbours by direction, north first, clockwise.
func (t TileDef) paths() [8]string {
	return [8]string{t.North, t.NorthEast, t.East, t.SouthEast, t.South, t.SouthWest, t.West, t.NorthWest}
}

// PlacementDef puts objects of one archetype on the map. With W and H set
// the object is repeated over that rectangle.
type PlacementDef struct {
	Arch      string            `yaml:"arch"`
	X         int               `yaml:"x"`
	Y         int               `yaml:"y"`
	W         int               `yaml:"w"`
	H         int               `yaml:"h"`
	Nrof      uint32            `yaml:"nrof"`
	Set       map[string]any    `yaml:"set"` // property name to value
	KeyValues map[string]string `yaml:"key_values"`
	Inventory []PlacementDef    `yaml:"inventory"`
}

// ReadMap parses one map file.
func ReadMap(path string) (*MapDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	var def MapDef
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	if def.Path == "" {
		def.Path = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if def.Name == "" {
		def.Name = def.Path
	}
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("map %s: bad size %dx%d", path, def.Width, def.Height)
	}
	return &def, nil
}

// ReadMapDir parses every .yaml file in dir concurrently. The result is
// sorted by map path.
func ReadMapDir(ctx context.Context, dir string) ([]*MapDef, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list maps in %s: %w", dir, err)
	}
	defs := make([]*MapDef, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f // per-iteration copies (Go 1.22 loopvar semantics on a 1.21 toolchain)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			def, err := ReadMap(f)
			if err != nil {
				return err
			}
			defs[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

// BuildMaps registers every map, links their neighbours and then fills
// them. Maps come up resident.
func BuildMaps(w *world.World, defs []*MapDef, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	built := make([]*world.Map, len(defs))
	for i, def := range defs {
		m := world.NewMap(def.Path, def.Width, def.Height)
		m.Name = def.Name
		m.Track = def.Track
		m.Darkness = def.Darkness
		m.Safe = def.Safe
		m.TilePaths = def.Tiles.paths()
		m.UpperPath = def.Upper
		m.LowerPath = def.Lower
		if err := w.AddMap(m); err != nil {
			return fmt.Errorf("map %s: %w", def.Path, err)
		}
		built[i] = m
	}
	w.LinkMaps()

	for i, def := range defs {
		m := built[i]
		w.SetMapState(m, world.MapLoading)
		n, err := fillMap(w, m, def)
		if err != nil {
			return fmt.Errorf("map %s: %w", def.Path, err)
		}
		w.SetMapState(m, world.MapInMemory)
		log.Debug("map loaded", zap.String("map", m.Path), zap.Int("objects", n))
	}
	return nil
}

// LoadMapDir reads and builds every map in dir.
func LoadMapDir(ctx context.Context, w *world.World, dir string, log *zap.Logger) (int, error) {
	defs, err := ReadMapDir(ctx, dir)
	if err != nil {
		return 0, err
	}
	if err := BuildMaps(w, defs, log); err != nil {
		return 0, err
	}
	return len(defs), nil
}

const loadFlags = world.InsMapLoad | world.InsNoWalkOn

func fillMap(w *world.World, m *world.Map, def *MapDef) (int, error) {
	n, err := fillLayout(w, m, def)
	if err != nil {
		return n, err
	}
	for i := range def.Objects {
		p := &def.Objects[i]
		cols, rows := max(p.W, 1), max(p.H, 1)
		if p.X < 0 || p.Y < 0 || p.X+cols > m.Width || p.Y+rows > m.Height {
			return n, fmt.Errorf("place %s at (%d, %d) size %dx%d: %w", p.Arch, p.X, p.Y, cols, rows, world.ErrOutOfMap)
		}
		for dy := 0; dy < rows; dy++ {
			for dx := 0; dx < cols; dx++ {
				o, err := instantiate(w, p)
				if err != nil {
					return n, err
				}
				if _, err := w.InsertInMapAt(o, m, nil, loadFlags, p.X+dx, p.Y+dy); err != nil {
					return n, fmt.Errorf("place %s at (%d, %d): %w", p.Arch, p.X+dx, p.Y+dy, err)
				}
				n++
			}
		}
	}
	return n, nil
}

// fillLayout reads the layout line by line, one archetype per character.
func fillLayout(w *world.World, m *world.Map, def *MapDef) (int, error) {
	if def.Layout == "" {
		return 0, nil
	}
	n := 0
	scanner := bufio.NewScanner(strings.NewReader(def.Layout))
	y := 0
	for scanner.Scan() && y < m.Height {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		for x, ch := range []rune(line) {
			if x >= m.Width {
				break
			}
			if ch == ' ' {
				continue
			}
			arch, ok := def.Legend[string(ch)]
			if !ok {
				return n, fmt.Errorf("layout (%d, %d): %q not in legend", x, y, ch)
			}
			o, err := w.NewObject(arch)
			if err != nil {
				return n, fmt.Errorf("layout (%d, %d): %w", x, y, err)
			}
			if _, err := w.InsertInMapAt(o, m, nil, loadFlags, x, y); err != nil {
				return n, fmt.Errorf("layout (%d, %d): %w", x, y, err)
			}
			n++
		}
		y++
	}
	return n, scanner.Err()
}

// instantiate builds one removed object from p, inventory included.
func instantiate(w *world.World, p *PlacementDef) (*world.Object, error) {
	o, err := w.NewObject(p.Arch)
	if err != nil {
		return nil, err
	}
	if p.Nrof > 0 {
		if err := w.SetProperty(o, world.PropNrof, world.IntValue(int64(p.Nrof))); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Arch, err)
		}
	}
	names := make([]string, 0, len(p.Set))
	for k := range p.Set {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := setProperty(w, o, name, p.Set[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Arch, err)
		}
	}
	for k, v := range p.KeyValues {
		w.WriteKey(o, k, v, true)
	}
	for i := range p.Inventory {
		item, err := instantiate(w, &p.Inventory[i])
		if err != nil {
			return nil, err
		}
		if _, err := w.InsertInto(item, o); err != nil {
			return nil, fmt.Errorf("%s into %s: %w", p.Inventory[i].Arch, p.Arch, err)
		}
	}
	return o, nil
}

func setProperty(w *world.World, o *world.Object, name string, raw any) error {
	prop, ok := world.PropertyByName(name)
	if !ok {
		return fmt.Errorf("set %s: %w", name, world.ErrUnknownProperty)
	}
	var v world.Value
	switch x := raw.(type) {
	case int:
		v = world.IntValue(int64(x))
	case float64:
		v = world.FloatValue(x)
	case string:
		v = world.StringValue(x)
	case bool:
		if x {
			v = world.IntValue(1)
		} else {
			v = world.IntValue(0)
		}
	default:
		return fmt.Errorf("set %s: unsupported value %v: %w", name, raw, world.ErrPropertyKind)
	}
	return w.SetProperty(o, prop, v)
}
