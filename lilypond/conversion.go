package lilypond

import (
	"fmt"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

// makeID allocates a tree identity of the form "ly-<kind>-<n>".
func makeID(ctx *convert.Context, kind string) string {
	return fmt.Sprintf("ly-%s-%d", kind, ctx.NextSerial())
}

// treeOctave converts LilyPond octave marks to the tree's absolute octave.
// Unmarked c sits in octave 3.
func treeOctave(marks int) int {
	return 3 + marks
}

// sourceOctaveMarks is the inverse of treeOctave.
func sourceOctaveMarks(oct int) int {
	return oct - 3
}

// alterToAccid maps an alteration in semitones to a written accidental.
func alterToAccid(alter float64) string {
	switch alter {
	case 0:
		return ""
	case 1:
		return "s"
	case -1:
		return "f"
	case 2:
		return "ss"
	case -2:
		return "ff"
	case 0.5:
		return "su"
	case -0.5:
		return "fd"
	}
	return ""
}

// accidToAlter is the inverse of alterToAccid.
func accidToAlter(accid string) float64 {
	switch accid {
	case "s":
		return 1
	case "f":
		return -1
	case "ss":
		return 2
	case "ff":
		return -2
	case "su":
		return 0.5
	case "fd":
		return -0.5
	}
	return 0
}

// applyDuration writes a duration suffix onto dur/dots fields. A nil
// duration inherits, which the tree expresses as zero.
func applyDuration(d *dsl.Duration) (dur, dots int) {
	if d == nil {
		return 0, 0
	}
	return d.Base, d.Dots
}

// convertNote builds a tree note from a parsed note, without post-events.
func convertNote(ctx *convert.Context, n *dsl.Note) *score.Note {
	dur, dots := applyDuration(n.Duration)
	accid := alterToAccid(n.Alter)
	if n.Accidental == dsl.AccidentalForced && accid == "" {
		accid = "n"
	}
	return &score.Note{
		XMLID: makeID(ctx, "note"),
		Pname: n.Name,
		Oct:   treeOctave(n.Octave),
		Accid: accid,
		Dur:   dur,
		Dots:  dots,
	}
}

// convertChordNote builds a chord member note. Members carry no duration
// of their own.
func convertChordNote(ctx *convert.Context, n *dsl.Note) *score.Note {
	return &score.Note{
		XMLID: makeID(ctx, "note"),
		Pname: n.Name,
		Oct:   treeOctave(n.Octave),
		Accid: alterToAccid(n.Alter),
	}
}

// convertRest builds a tree rest.
func convertRest(ctx *convert.Context, r *dsl.Rest) *score.Rest {
	dur, dots := applyDuration(r.Duration)
	return &score.Rest{XMLID: makeID(ctx, "rest"), Dur: dur, Dots: dots}
}

// convertSkip builds an invisible rest.
func convertSkip(ctx *convert.Context, s *dsl.Skip) *score.Space {
	dur, dots := applyDuration(s.Duration)
	return &score.Space{XMLID: makeID(ctx, "space"), Dur: dur, Dots: dots}
}
