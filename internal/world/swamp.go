package world

import "github.com/wograld/server/internal/object"

// skillWoodsman is the skill subtype that keeps a player afloat in a swamp.
const skillWoodsman = 21

// Swamp depth is kept in the swamp's Food stat: 1 knees, 2 waist, 3 neck.

func (w *World) walkOnDeepSwamp(swamp, victim *Object) {
	if victim.Type != object.TypePlayer || victim.Stats.Hp < 0 || victim.MoveType.Flying() {
		return
	}
	w.Tell(victim, "You are down to your knees in the %s.", swamp.Name.String())
	swamp.Stats.Food = 1
	victim.SpeedLeft -= swamp.MoveSlowPenalty
}

func (w *World) moveDeepSwamp(swamp *Object) {
	name := swamp.Name.String()
	for above := w.Obj(swamp.above); above != nil; {
		next := above.above
		switch {
		case above.Type == object.TypePlayer && !above.MoveType.Flying() && above.Stats.Hp >= 0 && !above.Has(object.FlagWiz):
			w.sinkPlayer(swamp, above, name)
		case !above.Has(object.FlagAlive) && !above.MoveType.Flying() && !above.Has(object.FlagIsFloor) &&
			!above.Has(object.FlagOverlayFloor) && !above.Has(object.FlagNoPick):
			if w.rng.Intn(3) == 0 {
				if _, err := w.DecreaseNrof(above, 1); err != nil {
					return
				}
			}
		}
		above = w.Obj(next)
	}
}

func (w *World) sinkPlayer(swamp, pl *Object, name string) {
	if swamp.Stats.Food < 1 {
		w.debugObj("player in swamp with no depth", pl)
		swamp.Stats.Food = 1
	}
	switch swamp.Stats.Food {
	case 1:
		if w.rng.Intn(3) == 0 {
			w.Tell(pl, "You are down to your waist in the wet %s.", name)
			swamp.Stats.Food = 2
			pl.SpeedLeft -= swamp.MoveSlowPenalty
		}
	case 2:
		if w.rng.Intn(3) == 0 {
			w.Tell(pl, "You are down to your NECK in the dangerous %s.", name)
			swamp.Stats.Food = 3
			if p := w.Player(pl); p != nil {
				p.Killer = "drowning in a " + name
			}
			pl.Stats.Hp--
			pl.SpeedLeft -= swamp.MoveSlowPenalty
		}
	case 3:
		if w.rng.Intn(5) != 0 {
			return
		}
		if w.FindByTypeSubtype(pl, object.TypeSkill, skillWoodsman) != nil {
			swamp.Stats.Food = 2
			w.Tell(pl, "You almost drowned in the %s! You survived due to your woodsman skill.", name)
			return
		}
		swamp.Stats.Food = 0
		w.TellAll("%s disappeared into a %s.", pl.Name.String(), name)
		if p := w.Player(pl); p != nil {
			p.Killer = "drowning in a " + name
		}
		pl.Stats.Hp = -1
	}
}
