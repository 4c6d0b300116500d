// Package object holds the value types shared by every game object: the type
// enum, flag set, movement bitmask, statistics and the key/value list.
package object

// Type classifies an object. Values follow the archetype files.
type Type uint16

const (
	TypeNone        Type = 0
	TypePlayer      Type = 1
	TypeTransport   Type = 2
	TypeRod         Type = 3
	TypeTreasure    Type = 4
	TypePotion      Type = 5
	TypeFood        Type = 6
	TypePoison      Type = 7
	TypeBook        Type = 8
	TypeClock       Type = 9
	TypeArrow       Type = 13
	TypeBow         Type = 14
	TypeWeapon      Type = 15
	TypeArmour      Type = 16
	TypePedestal    Type = 17
	TypeAltar       Type = 18
	TypeLockedDoor  Type = 20
	TypeSpecialKey  Type = 21
	TypeMap         Type = 22
	TypeDoor        Type = 23
	TypeKey         Type = 24
	TypeTimedGate   Type = 26
	TypeTrigger     Type = 27
	TypeMagicEar    Type = 29
	TypeShield      Type = 33
	TypeHelmet      Type = 34
	TypeMoney       Type = 36
	TypeAmulet      Type = 39
	TypePlayerMover Type = 40
	TypeTeleporter  Type = 41
	TypeCreator     Type = 42
	TypeSkill       Type = 43
	TypeGolem       Type = 46
	TypeThrownObj   Type = 48
	TypeGod         Type = 50
	TypeMarker      Type = 55
	TypeGem         Type = 60
	TypeFirewall    Type = 62
	TypeCheckInv    Type = 64
	TypeExit        Type = 66
	TypeShopFloor   Type = 68
	TypeShopMat     Type = 69
	TypeRing        Type = 70
	TypeFloor       Type = 71
	TypeMiscObject  Type = 79
	TypeLamp        Type = 82
	TypeSpellbook   Type = 85
	TypeCloak       Type = 87
	TypeSpinner     Type = 90
	TypeGate        Type = 91
	TypeButton      Type = 92
	TypeHole        Type = 94
	TypeTrapdoor    Type = 95
	TypeSign        Type = 98
	TypeBoots       Type = 99
	TypeGloves      Type = 100
	TypeSpell       Type = 101
	TypeSpellEffect Type = 102
	TypeConverter   Type = 103
	TypeWand        Type = 109
	TypeScroll      Type = 111
	TypeDirector    Type = 112
	TypeForce       Type = 114
	TypeCloseCon    Type = 121
	TypeContainer   Type = 122
	TypeDeepSwamp   Type = 138
	TypeRune        Type = 154
	TypeTrap        Type = 155
	TypeCorpse      Type = 157
)

var typeNames = map[Type]string{
	TypePlayer:      "player",
	TypeTransport:   "transport",
	TypeRod:         "rod",
	TypeTreasure:    "treasure",
	TypePotion:      "potion",
	TypeFood:        "food",
	TypePoison:      "poison",
	TypeBook:        "book",
	TypeClock:       "clock",
	TypeArrow:       "arrow",
	TypeBow:         "bow",
	TypeWeapon:      "weapon",
	TypeArmour:      "armour",
	TypePedestal:    "pedestal",
	TypeAltar:       "altar",
	TypeLockedDoor:  "locked_door",
	TypeSpecialKey:  "special_key",
	TypeMap:         "map",
	TypeDoor:        "door",
	TypeKey:         "key",
	TypeTimedGate:   "timed_gate",
	TypeTrigger:     "trigger",
	TypeMagicEar:    "magic_ear",
	TypeShield:      "shield",
	TypeHelmet:      "helmet",
	TypeMoney:       "money",
	TypeAmulet:      "amulet",
	TypePlayerMover: "player_mover",
	TypeTeleporter:  "teleporter",
	TypeCreator:     "creator",
	TypeSkill:       "skill",
	TypeGolem:       "golem",
	TypeThrownObj:   "thrown_obj",
	TypeGod:         "god",
	TypeMarker:      "marker",
	TypeGem:         "gem",
	TypeFirewall:    "firewall",
	TypeCheckInv:    "check_inv",
	TypeExit:        "exit",
	TypeShopFloor:   "shop_floor",
	TypeShopMat:     "shop_mat",
	TypeRing:        "ring",
	TypeFloor:       "floor",
	TypeMiscObject:  "misc_object",
	TypeLamp:        "lamp",
	TypeSpellbook:   "spellbook",
	TypeCloak:       "cloak",
	TypeSpinner:     "spinner",
	TypeGate:        "gate",
	TypeButton:      "button",
	TypeHole:        "hole",
	TypeTrapdoor:    "trapdoor",
	TypeSign:        "sign",
	TypeBoots:       "boots",
	TypeGloves:      "gloves",
	TypeSpell:       "spell",
	TypeSpellEffect: "spell_effect",
	TypeConverter:   "converter",
	TypeWand:        "wand",
	TypeScroll:      "scroll",
	TypeDirector:    "director",
	TypeForce:       "force",
	TypeCloseCon:    "close_con",
	TypeContainer:   "container",
	TypeDeepSwamp:   "deep_swamp",
	TypeRune:        "rune",
	TypeTrap:        "trap",
	TypeCorpse:      "corpse",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// TypeByName resolves a type name as written in data files.
func TypeByName(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}
