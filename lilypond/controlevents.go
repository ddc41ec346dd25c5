package lilypond

import (
	"math/bits"

	"github.com/scoreflow-xyz/go-scoreflow/score"
)

// tremoloSlashCount derives the slash count drawn on a tremolo note from
// its subdivision: 8 gets one slash, 16 two, 32 three.
func tremoloSlashCount(subdivision int) int {
	if subdivision < 8 {
		return 0
	}
	return bits.TrailingZeros(uint(subdivision)) - 2
}

// scriptAbbrArtic maps a script abbreviation to its native articulation
// value.
var scriptAbbrArtic = map[byte]string{
	'.': "stacc",
	'-': "ten",
	'>': "acc",
	'^': "marc",
	'+': "stop",
	'!': "stacciss",
	'_': "port",
}

// namedArtic maps articulation command words that have a native value.
var namedArtic = map[string]string{
	"staccato":      "stacc",
	"tenuto":        "ten",
	"accent":        "acc",
	"marcato":       "marc",
	"stopped":       "stop",
	"staccatissimo": "stacciss",
	"portato":       "port",
}

// articName is the inverse of namedArtic, for export.
var articName = map[string]string{
	"stacc":    "staccato",
	"ten":      "tenuto",
	"acc":      "accent",
	"marc":     "marcato",
	"stop":     "stopped",
	"stacciss": "staccatissimo",
	"port":     "portato",
}

// ornamentClass says how a named ornament lowers into the tree.
type ornamentClass int

const (
	ornamentNone ornamentClass = iota
	ornamentTrill
	ornamentMordentLower
	ornamentMordentUpper
	ornamentTurnUpper
	ornamentTurnLower
	ornamentFermataCurved
	ornamentFermataAngular
	ornamentFermataSquare
	ornamentGeneric
)

// classifyOrnament resolves an ornament command word against the fixed
// lookup table. Words absent from the table are not ornaments.
func classifyOrnament(name string) ornamentClass {
	switch name {
	case "trill":
		return ornamentTrill
	case "mordent":
		return ornamentMordentLower
	case "prall":
		return ornamentMordentUpper
	case "turn":
		return ornamentTurnUpper
	case "reverseturn":
		return ornamentTurnLower
	case "fermata":
		return ornamentFermataCurved
	case "shortfermata":
		return ornamentFermataAngular
	case "longfermata", "verylongfermata":
		return ornamentFermataSquare
	case "prallprall", "prallmordent", "upprall", "downprall",
		"upmordent", "downmordent", "pralldown", "prallup", "lineprall":
		return ornamentGeneric
	}
	return ornamentNone
}

// ornamentNameFor recovers the source spelling of a dedicated ornament
// element on export. Ambiguous shapes consult the stored ornament name.
func ornamentNameFor(span score.ControlSpan, store *score.ExtensionStore) string {
	switch s := span.(type) {
	case *score.Trill:
		return "trill"
	case *score.Mordent:
		if s.Form == score.MordentUpper {
			return "prall"
		}
		return "mordent"
	case *score.Turn:
		if s.Form == score.TurnLower {
			return "reverseturn"
		}
		return "turn"
	case *score.Fermata:
		switch s.Shape {
		case score.FermataAngular:
			return "shortfermata"
		case score.FermataSquare:
			if info, ok := store.Ornament(s.XMLID); ok {
				return info.Name
			}
			return "longfermata"
		}
		return "fermata"
	}
	return ""
}
