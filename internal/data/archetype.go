package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/shstr"
	"github.com/wograld/server/internal/world"
)

// ArchetypeDef is one archetype as written in archetypes.yaml. Field names
// follow the object attribute names used by scripts.
type ArchetypeDef struct {
	Name        string `yaml:"name"`
	ObjectName  string `yaml:"object_name"` // defaults to Name
	NamePl      string `yaml:"name_pl"`
	Type        string `yaml:"type"`
	Subtype     uint8  `yaml:"subtype"`
	Title       string `yaml:"title"`
	Race        string `yaml:"race"`
	Slaying     string `yaml:"slaying"`
	Skill       string `yaml:"skill"`
	Msg         string `yaml:"msg"`
	Material    string `yaml:"material"`
	Nrof        uint32 `yaml:"nrof"`
	Weight      int32  `yaml:"weight"`
	WeightLimit int32  `yaml:"weight_limit"`
	Value       int32  `yaml:"value"`
	Level       int16  `yaml:"level"`
	Magic       int8   `yaml:"magic"`
	Face        uint16 `yaml:"face"`
	Invisible   int16  `yaml:"invisible"`
	GlowRadius  int8   `yaml:"glow_radius"`
	MapLayer    uint8  `yaml:"map_layer"`
	AttackType  uint32 `yaml:"attacktype"`

	Speed float32 `yaml:"speed"`

	Flags []string `yaml:"flags"`

	MoveType        string  `yaml:"move_type"`
	MoveBlock       string  `yaml:"move_block"`
	MoveAllow       string  `yaml:"move_allow"`
	MoveOn          string  `yaml:"move_on"`
	MoveOff         string  `yaml:"move_off"`
	MoveSlow        string  `yaml:"move_slow"`
	MoveSlowPenalty float32 `yaml:"move_slow_penalty"`

	Stats     StatsDef          `yaml:"stats"`
	KeyValues map[string]string `yaml:"key_values"`

	// Parts lists the offsets of the extra body parts; the head is (0, 0).
	Parts []PartDef `yaml:"parts"`
}

// PartDef is the offset of one extra body part from the head.
type PartDef struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// StatsDef mirrors object.Stats for YAML.
type StatsDef struct {
	Str      int8  `yaml:"str"`
	Dex      int8  `yaml:"dex"`
	Con      int8  `yaml:"con"`
	Wis      int8  `yaml:"wis"`
	Cha      int8  `yaml:"cha"`
	Int      int8  `yaml:"int"`
	Pow      int8  `yaml:"pow"`
	Wc       int8  `yaml:"wc"`
	Ac       int8  `yaml:"ac"`
	Luck     int8  `yaml:"luck"`
	Hp       int16 `yaml:"hp"`
	MaxHp    int16 `yaml:"maxhp"`
	Sp       int16 `yaml:"sp"`
	MaxSp    int16 `yaml:"maxsp"`
	Grace    int16 `yaml:"grace"`
	MaxGrace int16 `yaml:"maxgrace"`
	Food     int16 `yaml:"food"`
	Dam      int16 `yaml:"dam"`
	Exp      int64 `yaml:"exp"`
}

func (s StatsDef) stats() object.Stats {
	return object.Stats{
		Str: s.Str, Dex: s.Dex, Con: s.Con, Wis: s.Wis, Cha: s.Cha, Int: s.Int, Pow: s.Pow,
		Wc: s.Wc, Ac: s.Ac, Luck: s.Luck,
		Hp: s.Hp, MaxHp: s.MaxHp, Sp: s.Sp, MaxSp: s.MaxSp,
		Grace: s.Grace, MaxGrace: s.MaxGrace, Food: s.Food, Dam: s.Dam, Exp: s.Exp,
	}
}

type archetypeFile struct {
	Archetypes []ArchetypeDef `yaml:"archetypes"`
}

// ReadArchetypes parses an archetype file without touching a world.
func ReadArchetypes(path string) ([]ArchetypeDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archetypes: read %s: %w", path, err)
	}
	var f archetypeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("archetypes: parse %s: %w", path, err)
	}
	return f.Archetypes, nil
}

// LoadArchetypes reads path and registers every archetype in w. It
// returns the number registered.
func LoadArchetypes(w *world.World, path string) (int, error) {
	defs, err := ReadArchetypes(path)
	if err != nil {
		return 0, err
	}
	for i := range defs {
		at, err := BuildArchetype(w, &defs[i])
		if err != nil {
			return i, fmt.Errorf("archetypes: %s: %w", path, err)
		}
		if err := w.AddArchetype(at); err != nil {
			return i, fmt.Errorf("archetypes: %s: %w", path, err)
		}
	}
	return len(defs), nil
}

// BuildArchetype turns a definition into an archetype chain, one link per
// body part.
func BuildArchetype(w *world.World, d *ArchetypeDef) (*world.Archetype, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("archetype without a name")
	}
	attrs, err := buildAttrs(w, d)
	if err != nil {
		return nil, fmt.Errorf("archetype %s: %w", d.Name, err)
	}
	head := &world.Archetype{Name: w.Intern(d.Name), Clone: attrs}
	prev := head
	for _, p := range d.Parts {
		if p.X == 0 && p.Y == 0 {
			return nil, fmt.Errorf("archetype %s: extra part at the head's offset", d.Name)
		}
		part := &world.Archetype{Name: w.Intern(d.Name)}
		// each part gets its own attribute block so string refs stay balanced
		if part.Clone, err = buildAttrs(w, d); err != nil {
			return nil, err
		}
		part.Clone.X, part.Clone.Y = p.X, p.Y
		prev.More = part
		prev = part
	}
	return head, nil
}

func buildAttrs(w *world.World, d *ArchetypeDef) (world.Attrs, error) {
	var a world.Attrs
	typ := object.TypeMiscObject
	if d.Type != "" {
		t, ok := object.TypeByName(d.Type)
		if !ok {
			return a, fmt.Errorf("unknown type %q", d.Type)
		}
		typ = t
	}
	a.Type = typ
	a.Subtype = d.Subtype

	name := d.ObjectName
	if name == "" {
		name = d.Name
	}
	a.Name = w.Intern(name)
	a.NamePl = internOpt(w, d.NamePl)
	a.Title = internOpt(w, d.Title)
	a.Race = internOpt(w, d.Race)
	a.Slaying = internOpt(w, d.Slaying)
	a.Skill = internOpt(w, d.Skill)
	a.Msg = internOpt(w, d.Msg)
	a.Material = internOpt(w, d.Material)

	a.Nrof = d.Nrof
	a.Weight = d.Weight
	a.WeightLimit = d.WeightLimit
	a.Value = d.Value
	a.Level = d.Level
	a.Magic = d.Magic
	a.Face = d.Face
	a.Invisible = d.Invisible
	a.GlowRadius = d.GlowRadius
	a.MapLayer = d.MapLayer
	a.AttackType = d.AttackType
	a.Speed = d.Speed
	a.Stats = d.Stats.stats()

	for _, fname := range d.Flags {
		fl, ok := object.FlagByName(fname)
		if !ok {
			return a, fmt.Errorf("unknown flag %q", fname)
		}
		a.Flags.Set(fl)
	}

	moves := []struct {
		field string
		src   string
		dst   *object.MoveType
	}{
		{"move_type", d.MoveType, &a.MoveType},
		{"move_block", d.MoveBlock, &a.MoveBlock},
		{"move_allow", d.MoveAllow, &a.MoveAllow},
		{"move_on", d.MoveOn, &a.MoveOn},
		{"move_off", d.MoveOff, &a.MoveOff},
		{"move_slow", d.MoveSlow, &a.MoveSlow},
	}
	for _, mv := range moves {
		mt, unknown := object.ParseMoveType(mv.src)
		if len(unknown) > 0 {
			return a, fmt.Errorf("%s: unknown move types %s", mv.field, strings.Join(unknown, ", "))
		}
		*mv.dst = mt
	}
	a.MoveSlowPenalty = d.MoveSlowPenalty

	if len(d.KeyValues) > 0 {
		keys := make([]string, 0, len(d.KeyValues))
		for k := range d.KeyValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a.KeyValues = make(object.KeyValues, 0, len(keys))
		for _, k := range keys {
			a.KeyValues = append(a.KeyValues, object.KeyValue{Key: w.Intern(k), Value: w.Intern(d.KeyValues[k])})
		}
	}
	return a, nil
}

func internOpt(w *world.World, s string) (h shstr.Handle) {
	if s == "" {
		return h
	}
	return w.Intern(s)
}
