package object

import "strings"

// MoveType is a bitmask of movement modes. The same type carries what an
// object moves by and what a terrain blocks, allows, slows or triggers on.
type MoveType uint8

const (
	MoveWalk    MoveType = 1 << iota
	MoveFlyLow
	MoveFlyHigh
	MoveSwim
	MoveBoat

	MoveFlying MoveType = MoveFlyLow | MoveFlyHigh
	MoveAll    MoveType = MoveWalk | MoveFlying | MoveSwim | MoveBoat
)

// Effective is the mode used for blocking checks. Objects that declare no
// movement at all are treated as walkers.
func (m MoveType) Effective() MoveType {
	if m == 0 {
		return MoveWalk
	}
	return m
}

// BlockedBy reports whether a terrain blocking mask stops a mover of type m:
// every mode the mover has must be blocked.
func (m MoveType) BlockedBy(block MoveType) bool {
	e := m.Effective()
	return e&block == e
}

// Flying reports whether any flying bit is set.
func (m MoveType) Flying() bool { return m&MoveFlying != 0 }

var moveNames = []struct {
	name string
	bit  MoveType
}{
	{"all", MoveAll},
	{"flying", MoveFlying},
	{"walk", MoveWalk},
	{"fly_low", MoveFlyLow},
	{"fly_high", MoveFlyHigh},
	{"swim", MoveSwim},
	{"boat", MoveBoat},
}

// ParseMoveType reads a space separated list such as "walk fly_low" or
// "all -swim". Unknown words are reported back.
func ParseMoveType(s string) (MoveType, []string) {
	var m MoveType
	var unknown []string
	for _, word := range strings.Fields(s) {
		neg := strings.HasPrefix(word, "-")
		word = strings.TrimPrefix(word, "-")
		found := false
		for _, n := range moveNames {
			if n.name == word {
				if neg {
					m &^= n.bit
				} else {
					m |= n.bit
				}
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, word)
		}
	}
	return m, unknown
}

func (m MoveType) String() string {
	if m == MoveAll {
		return "all"
	}
	var parts []string
	rest := m
	for _, n := range moveNames[1:] {
		if n.bit&rest == n.bit && n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	return strings.Join(parts, " ")
}
