package object

import "math/bits"

// Flag names one independent boolean attribute. Flags never exclude each
// other at this level; rules such as "applied objects never stack" live in
// the engine.
type Flag uint8

const (
	FlagAlive        Flag = iota // a living creature, sets the cell's alive bit
	FlagWiz                      // wizard mode; passes every block
	FlagRemoved                  // not linked into any map or container
	FlagFreed                    // returned to the pool
	FlagWasWiz                   // has been a wizard at some point
	FlagApplied                  // worn, wielded or otherwise active
	FlagUnpaid                   // shop goods not yet bought
	FlagUseShield                // may wear a shield
	FlagNoPick                   // cannot be picked up
	FlagIsAnimated               // face cycles through an animation
	FlagMonster                  // controlled by the monster logic
	FlagFriendly                 // on the players' side
	FlagGenerator                // spawns other objects
	FlagIsThrown                 // currently in flight
	FlagAutoApply                // applied the moment it is created
	FlagTreasure                 // generated as treasure
	FlagPlayerSold               // sold to a shop by a player
	FlagSeeInvisible             // sees invisible objects
	FlagCanRoll                  // may be rolled by pushing
	FlagOverlayFloor             // floor drawn over another floor
	FlagIsTurnable               // face depends on direction
	FlagIsUsedUp                 // decays with time
	FlagIdentified               // player knows the real name
	FlagReflecting               // reflects missiles
	FlagChanging                 // changes into another object
	FlagSplitting                // splits on hit
	FlagHitback                  // damages attackers
	FlagStartEquip               // starting equipment, vanishes on drop
	FlagBlocksView               // stops line of sight
	FlagUndead                   // undead creature
	FlagScared                   // fleeing
	FlagUnaggressive             // never starts a fight
	FlagReflMissile              // reflects thrown missiles
	FlagReflSpell                // reflects spells
	FlagNoMagic                  // magic fails on this cell
	FlagNoFixPlayer              // skip player recomputation
	FlagIsLightable              // can be lit
	FlagTearDown                 // destroyed when attacked
	FlagRunAway                  // runs at low hit points
	FlagStandStill               // never moves
	FlagRandomMove               // wanders
	FlagOnlyAttack               // pushes turn into attacks
	FlagConfused                 // moves randomly
	FlagStealth                  // moves quietly
	FlagWizPass                  // walks through walls
	FlagIsLinked                 // connected to a trigger
	FlagCursed                   // cursed item
	FlagDamned                   // damned item
	FlagSeeAnywhere              // visible regardless of light
	FlagKnownMagical             // player knows it is magical
	FlagKnownCursed              // player knows it is cursed
	FlagCanUseSkill              // may use skills
	FlagBeenApplied              // applied at least once
	FlagReadyScroll              // scroll readied for use
	FlagNoDrop                   // vanishes instead of dropping
	FlagIsFloor                  // terrain floor
	FlagInvLocked                // locked in the inventory by the player
	FlagClientSent               // the client has seen this object
	FlagUnique                   // unique item
	FlagNoSteal                  // cannot be stolen
	FlagNoCleric                 // prayers fail on this cell
	FlagXrays                    // sees through walls
	FlagBlind                    // cannot see
	FlagIsBuildable              // building allowed here
	FlagIsWaterBreathing         // survives under water
	FlagIsCauldron               // alchemy container
	FlagDustProof                // resists dust
	FlagCheat                    // obtained by cheating
	FlagObscuresView             // partly obscures view
	FlagSplitFall                // breaks apart when falling
	FlagNoApply                  // suppresses move-on and move-off triggers
	FlagSleep                    // asleep until disturbed
	FlagNeutral                  // neither friend nor foe
	FlagIsTemplate               // template object, never dropped
	flagCount
)

// NumFlags is the number of defined flags.
const NumFlags = int(flagCount)

const flagWords = 4

// Flags is a fixed-size flag set.
type Flags [flagWords]uint32

func (f *Flags) Set(fl Flag)       { f[fl/32] |= 1 << (fl % 32) }
func (f *Flags) Clear(fl Flag)     { f[fl/32] &^= 1 << (fl % 32) }
func (f Flags) Has(fl Flag) bool   { return f[fl/32]&(1<<(fl%32)) != 0 }
func (f *Flags) Put(fl Flag, on bool) {
	if on {
		f.Set(fl)
	} else {
		f.Clear(fl)
	}
}

// Masked returns f with every flag in mask cleared.
func (f Flags) Masked(mask Flags) Flags {
	for i := range f {
		f[i] &^= mask[i]
	}
	return f
}

// Count is the number of flags set.
func (f Flags) Count() int {
	n := 0
	for _, w := range f {
		n += bits.OnesCount32(w)
	}
	return n
}

// FlagsOf builds a set from individual flags.
func FlagsOf(fls ...Flag) Flags {
	var f Flags
	for _, fl := range fls {
		f.Set(fl)
	}
	return f
}

// MergeIgnored are the flags that never prevent two stacks from merging.
var MergeIgnored = FlagsOf(FlagInvLocked, FlagClientSent)

var flagNames = [...]string{
	FlagAlive:            "alive",
	FlagWiz:              "wiz",
	FlagRemoved:          "removed",
	FlagFreed:            "freed",
	FlagWasWiz:           "was_wiz",
	FlagApplied:          "applied",
	FlagUnpaid:           "unpaid",
	FlagUseShield:        "can_use_shield",
	FlagNoPick:           "no_pick",
	FlagIsAnimated:       "is_animated",
	FlagMonster:          "monster",
	FlagFriendly:         "friendly",
	FlagGenerator:        "generator",
	FlagIsThrown:         "is_thrown",
	FlagAutoApply:        "auto_apply",
	FlagTreasure:         "treasure",
	FlagPlayerSold:       "player_sold",
	FlagSeeInvisible:     "see_invisible",
	FlagCanRoll:          "can_roll",
	FlagOverlayFloor:     "overlay_floor",
	FlagIsTurnable:       "is_turnable",
	FlagIsUsedUp:         "is_used_up",
	FlagIdentified:       "identified",
	FlagReflecting:       "reflecting",
	FlagChanging:         "changing",
	FlagSplitting:        "splitting",
	FlagHitback:          "hitback",
	FlagStartEquip:       "startequip",
	FlagBlocksView:       "blocksview",
	FlagUndead:           "undead",
	FlagScared:           "scared",
	FlagUnaggressive:     "unaggressive",
	FlagReflMissile:      "reflect_missile",
	FlagReflSpell:        "reflect_spell",
	FlagNoMagic:          "no_magic",
	FlagNoFixPlayer:      "no_fix_player",
	FlagIsLightable:      "is_lightable",
	FlagTearDown:         "tear_down",
	FlagRunAway:          "run_away",
	FlagStandStill:       "stand_still",
	FlagRandomMove:       "random_move",
	FlagOnlyAttack:       "only_attack",
	FlagConfused:         "confused",
	FlagStealth:          "stealth",
	FlagWizPass:          "wizpass",
	FlagIsLinked:         "is_linked",
	FlagCursed:           "cursed",
	FlagDamned:           "damned",
	FlagSeeAnywhere:      "see_anywhere",
	FlagKnownMagical:     "known_magical",
	FlagKnownCursed:      "known_cursed",
	FlagCanUseSkill:      "can_use_skill",
	FlagBeenApplied:      "been_applied",
	FlagReadyScroll:      "has_ready_scroll",
	FlagNoDrop:           "nodrop",
	FlagIsFloor:          "is_floor",
	FlagInvLocked:        "inv_locked",
	FlagClientSent:       "client_sent",
	FlagUnique:           "unique",
	FlagNoSteal:          "no_steal",
	FlagNoCleric:         "no_cleric",
	FlagXrays:            "xrays",
	FlagBlind:            "blind",
	FlagIsBuildable:      "is_buildable",
	FlagIsWaterBreathing: "is_water_breathing",
	FlagIsCauldron:       "is_cauldron",
	FlagDustProof:        "dust_proof",
	FlagCheat:            "cheat",
	FlagObscuresView:     "obscures_view",
	FlagSplitFall:        "split_fall",
	FlagNoApply:          "no_apply",
	FlagSleep:            "sleep",
	FlagNeutral:          "neutral",
	FlagIsTemplate:       "is_template",
}

var flagsByName = func() map[string]Flag {
	m := make(map[string]Flag, len(flagNames))
	for i, n := range flagNames {
		m[n] = Flag(i)
	}
	return m
}()

func (fl Flag) String() string {
	if int(fl) < len(flagNames) {
		return flagNames[fl]
	}
	return "unknown"
}

// FlagByName resolves a flag as written in archetype and map files.
func FlagByName(name string) (Flag, bool) {
	fl, ok := flagsByName[name]
	return fl, ok
}
