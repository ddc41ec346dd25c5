// Package score holds the common markup tree both conversion directions
// target, plus the extension store for data the tree cannot represent
// natively. The types here are a thin hand-written subset of the full
// schema-generated element layer; only fields the conversion pipeline
// reads or writes appear.
package score

// Document is the root of a converted score.
type Document struct {
	ScoreDef *ScoreDef
	Section  *Section
}

// ScoreDef declares the staff-group structure of the score.
type ScoreDef struct {
	StaffGrp *StaffGrp
}

// GroupSymbol is the visual symbol drawn across a staff group.
type GroupSymbol string

const (
	SymbolNone    GroupSymbol = ""
	SymbolBrace   GroupSymbol = "brace"
	SymbolBracket GroupSymbol = "bracket"
	SymbolLine    GroupSymbol = "line"
)

// StaffGrpChild is either a nested *StaffGrp or a *StaffDef. Other schema
// children are unsupported and reported as conversion warnings.
type StaffGrpChild interface {
	staffGrpChild()
}

// StaffGrp groups staves, possibly nested.
type StaffGrp struct {
	XMLID     string
	Symbol    GroupSymbol
	BarThru   bool // bar lines drawn through the whole group
	Label     string
	LabelAbbr string
	Children  []StaffGrpChild
}

// StaffDef declares one staff.
type StaffDef struct {
	XMLID     string
	N         int // 1-based global staff number
	Lines     int
	Label     string
	LabelAbbr string
}

func (*StaffGrp) staffGrpChild() {}
func (*StaffDef) staffGrpChild() {}

// Section is the music body: staves in score order.
type Section struct {
	Staves []*Staff
	// Control events spanning notes by reference, in emission order.
	ControlEvents []ControlSpan
}

// Staff carries the layers of one staff.
type Staff struct {
	N      int
	Layers []*Layer
}

// LayerChild is a note-bearing child of a layer.
type LayerChild interface {
	layerChild()
}

// Layer is one voice within a staff.
type Layer struct {
	N        int
	Children []LayerChild
}

// GraceAttr is the grace attribute value on a note or chord.
type GraceAttr string

const (
	GraceNone       GraceAttr = ""
	GraceUnaccented GraceAttr = "unacc"
	GraceAccented   GraceAttr = "acc"
	GraceUnknown    GraceAttr = "unknown"
)

// Note is a single pitched event.
type Note struct {
	XMLID  string
	Pname  string // pitch letter a-g
	Oct    int
	Accid  string // s, f, ss, ff, n, su, fd ...
	Dur    int
	Dots   int
	Grace  GraceAttr
	Tie    string   // i, m, t
	Artics []string // native articulation values: stacc, ten, acc ...
}

// Chord holds simultaneous notes sharing one duration.
type Chord struct {
	XMLID  string
	Notes  []*Note
	Dur    int
	Dots   int
	Grace  GraceAttr
	Artics []string
}

// Rest is a silent event.
type Rest struct {
	XMLID string
	Dur   int
	Dots  int
}

// Space is an invisible rest occupying time.
type Space struct {
	XMLID string
	Dur   int
	Dots  int
}

// BTrem wraps a note or chord in a bowed-tremolo rendering.
type BTrem struct {
	XMLID string
	Child LayerChild // *Note or *Chord
	Slash int
}

func (*Note) layerChild()  {}
func (*Chord) layerChild() {}
func (*Rest) layerChild()  {}
func (*Space) layerChild() {}
func (*BTrem) layerChild() {}

// ControlSpan is a reference-based annotation over a range of notes.
// StartID and EndID use the "#id" reference form; EndID is empty for
// one-note annotations.
type ControlSpan interface {
	SpanIDs() (startID, endID string)
	spanElem()
}

// spanRef is the shared reference pair embedded by every control span.
type spanRef struct {
	StartID string
	EndID   string
}

func (s spanRef) SpanIDs() (string, string) { return s.StartID, s.EndID }

// TupletSpan expresses one tuplet bracket over its first and last event.
type TupletSpan struct {
	XMLID   string
	Num     int
	NumBase int
	Ref     spanRef
}

// Dir is a generic directive span: repeats, endings, plain articulations
// and ornaments with no dedicated element.
type Dir struct {
	XMLID string
	Label string
	Ref   spanRef
}

// Trill is a dedicated trill annotation.
type Trill struct {
	XMLID string
	Ref   spanRef
}

// MordentForm distinguishes upper from lower mordents.
type MordentForm string

const (
	MordentUpper MordentForm = "upper"
	MordentLower MordentForm = "lower"
)

// Mordent is a dedicated mordent annotation.
type Mordent struct {
	XMLID string
	Form  MordentForm
	Ref   spanRef
}

// TurnForm distinguishes upper from lower turns.
type TurnForm string

const (
	TurnUpper TurnForm = "upper"
	TurnLower TurnForm = "lower"
)

// Turn is a dedicated turn annotation.
type Turn struct {
	XMLID string
	Form  TurnForm
	Ref   spanRef
}

// FermataShape is the fermata glyph family.
type FermataShape string

const (
	FermataCurved  FermataShape = ""
	FermataAngular FermataShape = "angular"
	FermataSquare  FermataShape = "square"
)

// Fermata is a dedicated fermata annotation.
type Fermata struct {
	XMLID string
	Shape FermataShape
	Ref   spanRef
}

// Slur spans from its start note to its end note. Phrasing marks the
// phrasing-slur variant.
type Slur struct {
	XMLID    string
	Phrasing bool
	Ref      spanRef
}

// HairpinForm is cres or dim.
type HairpinForm string

const (
	HairpinCres HairpinForm = "cres"
	HairpinDim  HairpinForm = "dim"
)

// Hairpin is a crescendo or decrescendo wedge.
type Hairpin struct {
	XMLID string
	Form  HairpinForm
	Ref   spanRef
}

// Dynam is a dynamic mark attached to one note.
type Dynam struct {
	XMLID string
	Value string
	Ref   spanRef
}

func (*TupletSpan) spanElem() {}
func (*Dir) spanElem()        {}
func (*Trill) spanElem()      {}
func (*Mordent) spanElem()    {}
func (*Turn) spanElem()       {}
func (*Fermata) spanElem()    {}
func (*Slur) spanElem()       {}
func (*Hairpin) spanElem()    {}
func (*Dynam) spanElem()      {}

func (t *TupletSpan) SpanIDs() (string, string) { return t.Ref.SpanIDs() }
func (d *Dir) SpanIDs() (string, string)        { return d.Ref.SpanIDs() }
func (t *Trill) SpanIDs() (string, string)      { return t.Ref.SpanIDs() }
func (m *Mordent) SpanIDs() (string, string)    { return m.Ref.SpanIDs() }
func (t *Turn) SpanIDs() (string, string)       { return t.Ref.SpanIDs() }
func (f *Fermata) SpanIDs() (string, string)    { return f.Ref.SpanIDs() }
func (s *Slur) SpanIDs() (string, string)       { return s.Ref.SpanIDs() }
func (h *Hairpin) SpanIDs() (string, string)    { return h.Ref.SpanIDs() }
func (d *Dynam) SpanIDs() (string, string)      { return d.Ref.SpanIDs() }

// SpanRef builds the reference pair used by control spans.
func SpanRef(startID, endID string) spanRef {
	return spanRef{StartID: startID, EndID: endID}
}
