package object

// Stats are the living statistics shared by creatures and by item bonuses.
type Stats struct {
	Str, Dex, Con, Wis, Cha, Int, Pow int8
	Wc, Ac                            int8
	Luck                              int8
	Hp, MaxHp                         int16
	Sp, MaxSp                         int16
	Grace, MaxGrace                   int16
	Food                              int16
	Dam                               int16
	Exp                               int64
}

// NumResist is the number of attack types an object can resist.
const NumResist = 26

// Resist holds per-attack-type resistances in percent.
type Resist [NumResist]int16
