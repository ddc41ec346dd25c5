package dsl

// Node is implemented by every syntax tree node. Each block node owns its
// nested sequence exclusively: the tree is a tree, never a graph.
type Node interface {
	node()
}

// Duration is a note-value suffix: base duration denominator plus dots.
type Duration struct {
	Base int // 1, 2, 4, 8, 16, 32, 64, 128
	Dots int
}

// Fraction is an N/M rational, used by \tuplet and \afterGrace.
type Fraction struct {
	Num int
	Den int
}

// Direction qualifies a post-event placement.
type Direction int

const (
	DirNeutral Direction = iota
	DirUp
	DirDown
)

// ScriptAbbreviation is a one-character articulation shorthand following a
// direction prefix: -. -- -> -^ -+ -! -_
type ScriptAbbreviation byte

const (
	ScriptStaccato      ScriptAbbreviation = '.'
	ScriptTenuto        ScriptAbbreviation = '-'
	ScriptAccent        ScriptAbbreviation = '>'
	ScriptMarcato       ScriptAbbreviation = '^'
	ScriptStopped       ScriptAbbreviation = '+'
	ScriptStaccatissimo ScriptAbbreviation = '!'
	ScriptPortato       ScriptAbbreviation = '_'
)

// PostEvent is an attachment following a note, chord, or chord repetition.
type PostEvent interface {
	postEvent()
}

// Tremolo is a `:N` subdivision suffix. Subdivision 0 means a bare colon.
type Tremolo struct {
	Subdivision int
}

// Articulation is a direction-prefixed script abbreviation.
type Articulation struct {
	Direction Direction
	Script    ScriptAbbreviation
}

// NamedArticulation is a `\name` post-event: ornaments, scripts, bowing
// marks. Direction is neutral when no prefix was written.
type NamedArticulation struct {
	Direction Direction
	Name      string
}

// Fingering is a direction-prefixed digit.
type Fingering struct {
	Direction Direction
	Digit     int
}

// StringNumber is a `\N` string indication.
type StringNumber struct {
	Direction Direction
	Number    int
}

// Dynamic is a dynamic mark such as \p or \sfz.
type Dynamic struct {
	Name string
}

type Tie struct{}
type SlurStart struct{}
type SlurEnd struct{}
type PhrasingSlurStart struct{}
type PhrasingSlurEnd struct{}
type BeamStart struct{}
type BeamEnd struct{}
type Crescendo struct{}
type Decrescendo struct{}
type HairpinEnd struct{}

func (Tremolo) postEvent()           {}
func (Articulation) postEvent()      {}
func (NamedArticulation) postEvent() {}
func (Fingering) postEvent()         {}
func (StringNumber) postEvent()      {}
func (Dynamic) postEvent()           {}
func (Tie) postEvent()               {}
func (SlurStart) postEvent()         {}
func (SlurEnd) postEvent()           {}
func (PhrasingSlurStart) postEvent() {}
func (PhrasingSlurEnd) postEvent()   {}
func (BeamStart) postEvent()         {}
func (BeamEnd) postEvent()           {}
func (Crescendo) postEvent()         {}
func (Decrescendo) postEvent()       {}
func (HairpinEnd) postEvent()        {}

// AccidentalDisplay records forced (!) or cautionary (?) accidental marks.
type AccidentalDisplay int

const (
	AccidentalDefault AccidentalDisplay = iota
	AccidentalForced
	AccidentalCautionary
)

// Note is a single pitched event.
type Note struct {
	Name       string  // pitch letter a-g
	Alter      float64 // semitones, negative for flats
	Octave     int     // count of ' marks minus count of , marks
	Accidental AccidentalDisplay
	Duration   *Duration // nil inherits the running duration
	PostEvents []PostEvent
}

// Chord is `< ... >` with a shared duration.
type Chord struct {
	Notes      []*Note
	Duration   *Duration
	PostEvents []PostEvent
}

// ChordRepetition is the `q` shorthand repeating the previous chord.
type ChordRepetition struct {
	Duration   *Duration
	PostEvents []PostEvent
}

// Rest is `r` with an optional duration.
type Rest struct {
	Duration *Duration
}

// Skip is `s`, an invisible rest.
type Skip struct {
	Duration *Duration
}

// Sequence is a `{ ... }` music expression.
type Sequence struct {
	Items []Node
}

// Tuplet is `\tuplet N/M [SPAN] { ... }`. Span, when present, is the
// explicit duration the bracket covers; it is carried for lossless
// re-emission and is not inferable from the ratio.
type Tuplet struct {
	Num  int
	Den  int
	Span *Duration
	Body *Sequence
}

// GraceRole classifies a grace block.
type GraceRole int

const (
	GraceRolePlain GraceRole = iota
	GraceRoleAcciaccatura
	GraceRoleAppoggiatura
	GraceRoleAfterGrace
)

func (r GraceRole) String() string {
	switch r {
	case GraceRolePlain:
		return "grace"
	case GraceRoleAcciaccatura:
		return "acciaccatura"
	case GraceRoleAppoggiatura:
		return "appoggiatura"
	case GraceRoleAfterGrace:
		return "afterGrace"
	}
	return "unknown"
}

// Grace is a grace-note block. Main is set only for \afterGrace, where the
// grace sequence follows a main note; Fraction is its optional subdivision
// of the main note's duration.
type Grace struct {
	Role     GraceRole
	Fraction *Fraction
	Main     Node
	Body     *Sequence
}

// RepeatKind is the first argument of \repeat.
type RepeatKind int

const (
	RepeatVolta RepeatKind = iota
	RepeatUnfold
	RepeatPercent
)

func (k RepeatKind) String() string {
	switch k {
	case RepeatVolta:
		return "volta"
	case RepeatUnfold:
		return "unfold"
	case RepeatPercent:
		return "percent"
	}
	return "unknown"
}

// RepeatKindFromName resolves a \repeat kind word.
func RepeatKindFromName(name string) (RepeatKind, bool) {
	switch name {
	case "volta":
		return RepeatVolta, true
	case "unfold":
		return RepeatUnfold, true
	case "percent":
		return RepeatPercent, true
	}
	return RepeatVolta, false
}

// Repeat is `\repeat KIND COUNT { BODY }` with zero or more \alternative
// bodies, each one ending.
type Repeat struct {
	Kind         RepeatKind
	Count        int
	Body         *Sequence
	Alternatives []*Sequence
}

// BarCheck is the zero-width `|` marker.
type BarCheck struct{}

// BarLine is `\bar "STYLE"`, a zero-width explicit bar line.
type BarLine struct {
	Style string
}

// Markup is `\markup { ... }` with the block body kept as raw source.
type Markup struct {
	Source string
}

// MarkupList is `\markuplist { ... }` with the body kept as raw source.
type MarkupList struct {
	Source string
}

func (*Note) node()            {}
func (*Chord) node()           {}
func (*ChordRepetition) node() {}
func (*Rest) node()            {}
func (*Skip) node()            {}
func (*Sequence) node()        {}
func (*Tuplet) node()          {}
func (*Grace) node()           {}
func (*Repeat) node()          {}
func (*BarCheck) node()        {}
func (*BarLine) node()         {}
func (*Markup) node()          {}
func (*MarkupList) node()      {}
