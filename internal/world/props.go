package world

import (
	"fmt"
	"sort"

	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/shstr"
)

// Kind is the type of a property value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a property value as seen by scripts.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Obj   *Object
}

func IntValue(v int64) Value      { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value  { return Value{Kind: KindFloat, Float: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, Str: v} }
func ObjectValue(o *Object) Value { return Value{Kind: KindObject, Obj: o} }

// AsFloat reads a numeric value as a float.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// Property names an object attribute reachable through GetProperty and
// SetProperty.
type Property uint8

const (
	PropAbove Property = iota
	PropAC
	PropArch
	PropArchName
	PropAttackType
	PropBelow
	PropCha
	PropCon
	PropCustomName
	PropDam
	PropDex
	PropDirection
	PropEnv
	PropExp
	PropFace
	PropFacing
	PropFood
	PropGlowRadius
	PropGrace
	PropHp
	PropInt
	PropInventory
	PropInvisible
	PropLastGrace
	PropLastSp
	PropLevel
	PropLuck
	PropMagic
	PropMap
	PropMaterial
	PropMaxGrace
	PropMaxHp
	PropMaxSp
	PropMessage
	PropMoveType
	PropName
	PropNamePl
	PropNrof
	PropOwner
	PropPow
	PropRace
	PropSkill
	PropSlaying
	PropSp
	PropSpeed
	PropSpeedLeft
	PropStr
	PropTag
	PropTitle
	PropType
	PropValue
	PropWc
	PropWeight
	PropWeightLimit
	PropWis
	PropX
	PropY

	numProps
)

type propDef struct {
	name string
	kind Kind
	get  func(w *World, o *Object) Value
	set  func(w *World, o *Object, v Value) error // nil when read-only
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

func intProp[T integer](name string, field func(*Object) *T) propDef {
	return propDef{
		name: name,
		kind: KindInt,
		get:  func(_ *World, o *Object) Value { return IntValue(int64(*field(o))) },
		set: func(_ *World, o *Object, v Value) error {
			*field(o) = T(v.Int)
			return nil
		},
	}
}

func stringProp(name string, field func(*Object) *shstr.Handle) propDef {
	return propDef{
		name: name,
		kind: KindString,
		get:  func(_ *World, o *Object) Value { return StringValue(field(o).String()) },
		set: func(w *World, o *Object, v Value) error {
			h := field(o)
			w.strs.Release(*h)
			*h = w.strs.Intern(v.Str)
			return nil
		},
	}
}

func linkProp(name string, link func(w *World, o *Object) *Object) propDef {
	return propDef{
		name: name,
		kind: KindObject,
		get:  func(w *World, o *Object) Value { return ObjectValue(link(w, o)) },
	}
}

var propDefs = func() [numProps]propDef {
	d := [numProps]propDef{
		PropAbove:      linkProp("above", (*World).Above),
		PropAC:         intProp("ac", func(o *Object) *int8 { return &o.Stats.Ac }),
		PropAttackType: intProp("attacktype", func(o *Object) *uint32 { return &o.AttackType }),
		PropBelow:      linkProp("below", (*World).Below),
		PropCha:        intProp("cha", func(o *Object) *int8 { return &o.Stats.Cha }),
		PropCon:        intProp("con", func(o *Object) *int8 { return &o.Stats.Con }),
		PropCustomName: stringProp("custom_name", func(o *Object) *shstr.Handle { return &o.CustomName }),
		PropDam:        intProp("dam", func(o *Object) *int16 { return &o.Stats.Dam }),
		PropDex:        intProp("dex", func(o *Object) *int8 { return &o.Stats.Dex }),
		PropDirection:  intProp("direction", func(o *Object) *int8 { return &o.Direction }),
		PropEnv:        linkProp("env", (*World).Env),
		PropExp:        intProp("exp", func(o *Object) *int64 { return &o.Stats.Exp }),
		PropFace:       intProp("face", func(o *Object) *uint16 { return &o.Face }),
		PropFacing:     intProp("facing", func(o *Object) *int8 { return &o.Facing }),
		PropFood:       intProp("food", func(o *Object) *int16 { return &o.Stats.Food }),
		PropGlowRadius: intProp("glow_radius", func(o *Object) *int8 { return &o.GlowRadius }),
		PropGrace:      intProp("grace", func(o *Object) *int16 { return &o.Stats.Grace }),
		PropHp:         intProp("hp", func(o *Object) *int16 { return &o.Stats.Hp }),
		PropInt:        intProp("int", func(o *Object) *int8 { return &o.Stats.Int }),
		PropInventory:  linkProp("inventory", (*World).Inv),
		PropInvisible:  intProp("invisible", func(o *Object) *int16 { return &o.Invisible }),
		PropLastGrace:  intProp("last_grace", func(o *Object) *int16 { return &o.LastGrace }),
		PropLastSp:     intProp("last_sp", func(o *Object) *int16 { return &o.LastSp }),
		PropLevel:      intProp("level", func(o *Object) *int16 { return &o.Level }),
		PropLuck:       intProp("luck", func(o *Object) *int8 { return &o.Stats.Luck }),
		PropMagic:      intProp("magic", func(o *Object) *int8 { return &o.Magic }),
		PropMaterial:   stringProp("material", func(o *Object) *shstr.Handle { return &o.Material }),
		PropMaxGrace:   intProp("maxgrace", func(o *Object) *int16 { return &o.Stats.MaxGrace }),
		PropMaxHp:      intProp("maxhp", func(o *Object) *int16 { return &o.Stats.MaxHp }),
		PropMaxSp:      intProp("maxsp", func(o *Object) *int16 { return &o.Stats.MaxSp }),
		PropMessage:    stringProp("message", func(o *Object) *shstr.Handle { return &o.Msg }),
		PropMoveType:   intProp("move_type", func(o *Object) *object.MoveType { return &o.MoveType }),
		PropName:       stringProp("name", func(o *Object) *shstr.Handle { return &o.Name }),
		PropNamePl:     stringProp("name_pl", func(o *Object) *shstr.Handle { return &o.NamePl }),
		PropOwner:      linkProp("owner", (*World).Owner),
		PropPow:        intProp("pow", func(o *Object) *int8 { return &o.Stats.Pow }),
		PropRace:       stringProp("race", func(o *Object) *shstr.Handle { return &o.Race }),
		PropSkill:      stringProp("skill", func(o *Object) *shstr.Handle { return &o.Skill }),
		PropSlaying:    stringProp("slaying", func(o *Object) *shstr.Handle { return &o.Slaying }),
		PropSp:         intProp("sp", func(o *Object) *int16 { return &o.Stats.Sp }),
		PropStr:        intProp("str", func(o *Object) *int8 { return &o.Stats.Str }),
		PropTitle:      stringProp("title", func(o *Object) *shstr.Handle { return &o.Title }),
		PropValue:      intProp("value", func(o *Object) *int32 { return &o.Value }),
		PropWc:         intProp("wc", func(o *Object) *int8 { return &o.Stats.Wc }),
		PropWis:        intProp("wis", func(o *Object) *int8 { return &o.Stats.Wis }),
	}
	d[PropWeightLimit] = intProp("weight_limit", func(o *Object) *int32 { return &o.WeightLimit })
	specialProps(&d)
	return d
}()

var propsByName = func() map[string]Property {
	m := make(map[string]Property, numProps)
	for p := Property(0); p < numProps; p++ {
		m[p.def().name] = p
	}
	return m
}()

// specialProps fills in the properties whose reads or writes touch more
// than a single field.
func specialProps(d *[numProps]propDef) {
	d[PropArch] = propDef{name: "archetype", kind: KindString, get: func(_ *World, o *Object) Value {
		if o.Arch == nil {
			return StringValue("")
		}
		return StringValue(o.Arch.Name.String())
	}}
	d[PropArchName] = propDef{name: "arch_name", kind: KindString, get: func(_ *World, o *Object) Value {
		if o.Arch == nil {
			return StringValue("")
		}
		return StringValue(o.Arch.Clone.Name.String())
	}}
	d[PropMap] = propDef{name: "map", kind: KindString, get: func(w *World, o *Object) Value {
		m := w.Outermost(o).m
		if m == nil {
			return StringValue("")
		}
		return StringValue(m.Path)
	}}
	d[PropTag] = propDef{name: "tag", kind: KindInt, get: func(_ *World, o *Object) Value {
		return IntValue(int64(o.Tag))
	}}
	d[PropType] = propDef{name: "type", kind: KindInt,
		get: func(_ *World, o *Object) Value { return IntValue(int64(o.Type)) },
		set: func(w *World, o *Object, v Value) error {
			if o.Type == object.TypePlayer || object.Type(v.Int) == object.TypePlayer {
				return ErrReadOnlyProperty
			}
			o.Type = object.Type(v.Int)
			return nil
		}}
	d[PropNrof] = propDef{name: "nrof", kind: KindInt,
		get: func(_ *World, o *Object) Value { return IntValue(int64(o.Nrof)) },
		set: func(w *World, o *Object, v Value) error {
			if v.Int < 0 || v.Int >= 1<<31 {
				return fmt.Errorf("nrof %d: %w", v.Int, ErrPropertyKind)
			}
			w.reweigh(o, func() { o.Nrof = uint32(v.Int) })
			return nil
		}}
	d[PropWeight] = propDef{name: "weight", kind: KindInt,
		get: func(_ *World, o *Object) Value { return IntValue(int64(o.Weight)) },
		set: func(w *World, o *Object, v Value) error {
			w.reweigh(o, func() { o.Weight = int32(v.Int) })
			return nil
		}}
	d[PropSpeed] = propDef{name: "speed", kind: KindFloat,
		get: func(_ *World, o *Object) Value { return FloatValue(float64(o.Speed)) },
		set: func(w *World, o *Object, v Value) error {
			o.Speed = float32(v.AsFloat())
			w.UpdateSpeed(o)
			return nil
		}}
	d[PropSpeedLeft] = propDef{name: "speed_left", kind: KindFloat,
		get: func(_ *World, o *Object) Value { return FloatValue(float64(o.SpeedLeft)) },
		set: func(_ *World, o *Object, v Value) error {
			o.SpeedLeft = float32(v.AsFloat())
			return nil
		}}
	d[PropX] = coordProp("x", func(o *Object) *int { return &o.X })
	d[PropY] = coordProp("y", func(o *Object) *int { return &o.Y })
}

// coordinates can only be written while the object is out of play; moving
// an object goes through the movement calls
func coordProp(name string, field func(*Object) *int) propDef {
	return propDef{name: name, kind: KindInt,
		get: func(_ *World, o *Object) Value { return IntValue(int64(*field(o))) },
		set: func(_ *World, o *Object, v Value) error {
			if !o.Removed() {
				return ErrReadOnlyProperty
			}
			*field(o) = int(v.Int)
			return nil
		}}
}

// reweigh applies change to o while keeping its containers' loads right.
func (w *World) reweigh(o *Object, change func()) {
	env := w.Obj(o.env)
	if env == nil || o.Removed() {
		change()
		return
	}
	w.SubWeight(env, o.Total())
	change()
	w.AddWeight(env, o.Total())
	w.notifyItem(env, o, false)
}

func (p Property) def() *propDef {
	if p >= numProps {
		return nil
	}
	return &propDefs[p]
}

func (p Property) String() string {
	if d := p.def(); d != nil {
		return d.name
	}
	return fmt.Sprintf("property(%d)", uint8(p))
}

// PropertyByName looks a property up by its script name.
func PropertyByName(name string) (Property, bool) {
	p, ok := propsByName[name]
	return p, ok
}

// PropertyNames lists every property name, sorted.
func PropertyNames() []string {
	names := make([]string, 0, len(propsByName))
	for n := range propsByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadOnly reports whether p can only be read.
func (p Property) ReadOnly() bool {
	d := p.def()
	return d == nil || d.set == nil
}

// GetProperty reads property p of o.
func (w *World) GetProperty(o *Object, p Property) (Value, error) {
	d := p.def()
	if d == nil || d.get == nil {
		return Value{}, ErrUnknownProperty
	}
	return d.get(w, o), nil
}

// SetProperty writes property p of o. Integer values are accepted for
// float properties.
func (w *World) SetProperty(o *Object, p Property, v Value) error {
	if w.fault != nil {
		return w.fault
	}
	d := p.def()
	if d == nil {
		return ErrUnknownProperty
	}
	if d.set == nil {
		return fmt.Errorf("set %s: %w", d.name, ErrReadOnlyProperty)
	}
	if v.Kind != d.kind && !(d.kind == KindFloat && v.Kind == KindInt) {
		return fmt.Errorf("set %s: got %s, want %s: %w", d.name, v.Kind, d.kind, ErrPropertyKind)
	}
	if err := d.set(w, o, v); err != nil {
		return fmt.Errorf("set %s: %w", d.name, err)
	}
	if o.m != nil && o.env.IsZero() && !o.Removed() {
		w.touch(o.m, o.X, o.Y)
	}
	return nil
}

// GetFlag and SetFlag expose the flag set the same way.
func (w *World) GetFlag(o *Object, fl object.Flag) bool { return o.Has(fl) }

func (w *World) SetFlag(o *Object, fl object.Flag, on bool) {
	o.Flags.Put(fl, on)
	if o.m != nil && o.env.IsZero() && !o.Removed() {
		w.touch(o.m, o.X, o.Y)
	}
}
