package model

import "strings"

// Compound is the tyre compound encoded as a small int so it survives
// numeric resampling. Values follow the provider's naming.
type Compound int8

const (
	CompoundUnknown      Compound = -1
	CompoundSoft         Compound = 0
	CompoundMedium       Compound = 1
	CompoundHard         Compound = 2
	CompoundIntermediate Compound = 3
	CompoundWet          Compound = 4
	CompoundHyperSoft    Compound = 5
	CompoundUltraSoft    Compound = 6
	CompoundSuperSoft    Compound = 7
	// 2018 used a different slick naming scheme
	CompoundSoft2018   Compound = 8
	CompoundMedium2018 Compound = 9
	CompoundHard2018   Compound = 10
)

func compounds(year int) map[string]Compound {
	soft, medium, hard := CompoundSoft, CompoundMedium, CompoundHard
	if year == 2018 {
		soft, medium, hard = CompoundSoft2018, CompoundMedium2018, CompoundHard2018
	}
	return map[string]Compound{
		"SOFT":         soft,
		"MEDIUM":       medium,
		"HARD":         hard,
		"INTERMEDIATE": CompoundIntermediate,
		"WET":          CompoundWet,
		"HYPERSOFT":    CompoundHyperSoft,
		"ULTRASOFT":    CompoundUltraSoft,
		"SUPERSOFT":    CompoundSuperSoft,
	}
}

// CompoundFromName maps a provider compound string to its id.
// Unknown names map to CompoundUnknown.
func CompoundFromName(name string, year int) Compound {
	if c, ok := compounds(year)[strings.ToUpper(name)]; ok {
		return c
	}
	return CompoundUnknown
}

// CompoundName is the inverse of CompoundFromName.
func CompoundName(c Compound, year int) string {
	for k, v := range compounds(year) {
		if v == c {
			return k
		}
	}
	return "UNKNOWN"
}
