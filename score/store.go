package score

import "sort"

// Direction places an attachment above, below, or at the default side.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// ArticulationKind classifies an ArticulationInfo entry.
type ArticulationKind string

const (
	KindArticulation ArticulationKind = "articulation"
	KindFingering    ArticulationKind = "fingering"
	KindStringNumber ArticulationKind = "string-number"
)

// ArticulationInfo records an articulation, fingering, or string number
// that has no dedicated element in the tree.
type ArticulationInfo struct {
	Kind      ArticulationKind
	Value     string
	Direction *Direction
}

// OrnamentInfo records an ornament name that maps only to a generic
// directive, so the exact source spelling survives.
type OrnamentInfo struct {
	Name      string
	Direction *Direction
}

// TremoloInfo records the `:N` subdivision of a tremolo.
type TremoloInfo struct {
	Subdivision int
}

// DurationInfo is a duration captured outside a note context.
type DurationInfo struct {
	Base int
	Dots int
}

// TupletInfo records the ratio of a tuplet bracket and, when the source
// spelled one, its explicit span duration.
type TupletInfo struct {
	Num          int
	Den          int
	SpanDuration *DurationInfo
}

// GraceRole classifies grace notes for export.
type GraceRole string

const (
	GraceRoleGrace        GraceRole = "grace"
	GraceRoleAcciaccatura GraceRole = "acciaccatura"
	GraceRoleAppoggiatura GraceRole = "appoggiatura"
	GraceRoleAfterGrace   GraceRole = "after-grace"
)

// Fraction is an N/M rational.
type Fraction struct {
	Num int
	Den int
}

// GraceInfo records the grace role of a note, with the optional
// after-grace fraction of the main note's duration.
type GraceInfo struct {
	Role     GraceRole
	Fraction *Fraction
}

// RepeatInfo annotates a repeat span. AlternativeCount is set only when
// the repeat carried an alternative list.
type RepeatInfo struct {
	RepeatType       string // volta, unfold, percent
	Count            int
	AlternativeCount *int
}

// EndingInfo annotates one alternative body with its zero-based index.
type EndingInfo struct {
	Index int
}

// ChordRepetitionMarker flags a chord expanded from the `q` shorthand.
// The first, literally spelled chord never carries one.
type ChordRepetitionMarker struct{}

// ControlEventKind tags an EventSequence entry.
type ControlEventKind string

const (
	EventBarCheck   ControlEventKind = "bar-check"
	EventBarLine    ControlEventKind = "bar-line"
	EventMarkup     ControlEventKind = "markup"
	EventMarkupList ControlEventKind = "markup-list"
)

// ControlEvent is one zero-width event: a bar check, an explicit bar line
// with its style, or markup kept as raw source.
type ControlEvent struct {
	Kind   ControlEventKind
	Style  string // bar line style
	Source string // markup source
}

// PositionedEvent pairs a control event with its position: the count of
// notes and chords already emitted in the owning staff when it occurred.
type PositionedEvent struct {
	Position int
	Event    ControlEvent
}

// EventSequence replays a staff's zero-width events in encounter order.
type EventSequence struct {
	Events []PositionedEvent
}

// PartSymbolInfo preserves group-symbol detail for part reconstruction.
type PartSymbolInfo struct {
	Symbol string
	Top    *int
	Bottom *int
}

// ExtensionStore is the identity-keyed side table for data the tree has
// no native field for. One typed map per concern; an absent key means the
// element is fully described by its native fields. Entries are written
// during import, read during export, and never mutated in between.
type ExtensionStore struct {
	articulations    map[string]ArticulationInfo
	ornaments        map[string]OrnamentInfo
	tremolos         map[string]TremoloInfo
	tuplets          map[string]TupletInfo
	graces           map[string]GraceInfo
	repeats          map[string]RepeatInfo
	endings          map[string]EndingInfo
	chordRepetitions map[string]ChordRepetitionMarker
	eventSequences   map[string]EventSequence
	partSymbols      map[string]PartSymbolInfo
}

// NewExtensionStore creates an empty store.
func NewExtensionStore() *ExtensionStore {
	return &ExtensionStore{
		articulations:    make(map[string]ArticulationInfo),
		ornaments:        make(map[string]OrnamentInfo),
		tremolos:         make(map[string]TremoloInfo),
		tuplets:          make(map[string]TupletInfo),
		graces:           make(map[string]GraceInfo),
		repeats:          make(map[string]RepeatInfo),
		endings:          make(map[string]EndingInfo),
		chordRepetitions: make(map[string]ChordRepetitionMarker),
		eventSequences:   make(map[string]EventSequence),
		partSymbols:      make(map[string]PartSymbolInfo),
	}
}

// SetArticulation records articulation detail for an element.
func (s *ExtensionStore) SetArticulation(id string, info ArticulationInfo) {
	s.articulations[id] = info
}

// Articulation returns articulation detail for an element.
func (s *ExtensionStore) Articulation(id string) (ArticulationInfo, bool) {
	info, ok := s.articulations[id]
	return info, ok
}

// SetOrnament records ornament detail for an element.
func (s *ExtensionStore) SetOrnament(id string, info OrnamentInfo) {
	s.ornaments[id] = info
}

// Ornament returns ornament detail for an element.
func (s *ExtensionStore) Ornament(id string) (OrnamentInfo, bool) {
	info, ok := s.ornaments[id]
	return info, ok
}

// SetTremolo records the tremolo subdivision of a wrapped element.
func (s *ExtensionStore) SetTremolo(id string, info TremoloInfo) {
	s.tremolos[id] = info
}

// Tremolo returns the tremolo subdivision of a wrapped element.
func (s *ExtensionStore) Tremolo(id string) (TremoloInfo, bool) {
	info, ok := s.tremolos[id]
	return info, ok
}

// SetTuplet records ratio and span detail for a tuplet span element.
func (s *ExtensionStore) SetTuplet(id string, info TupletInfo) {
	s.tuplets[id] = info
}

// Tuplet returns ratio and span detail for a tuplet span element.
func (s *ExtensionStore) Tuplet(id string) (TupletInfo, bool) {
	info, ok := s.tuplets[id]
	return info, ok
}

// SetGrace records the grace role of a note or chord.
func (s *ExtensionStore) SetGrace(id string, info GraceInfo) {
	s.graces[id] = info
}

// Grace returns the grace role of a note or chord.
func (s *ExtensionStore) Grace(id string) (GraceInfo, bool) {
	info, ok := s.graces[id]
	return info, ok
}

// SetRepeat records repeat detail for a repeat span element.
func (s *ExtensionStore) SetRepeat(id string, info RepeatInfo) {
	s.repeats[id] = info
}

// Repeat returns repeat detail for a repeat span element.
func (s *ExtensionStore) Repeat(id string) (RepeatInfo, bool) {
	info, ok := s.repeats[id]
	return info, ok
}

// SetEnding records the alternative index of an ending span element.
func (s *ExtensionStore) SetEnding(id string, info EndingInfo) {
	s.endings[id] = info
}

// Ending returns the alternative index of an ending span element.
func (s *ExtensionStore) Ending(id string) (EndingInfo, bool) {
	info, ok := s.endings[id]
	return info, ok
}

// MarkChordRepetition flags a chord as expanded from `q`.
func (s *ExtensionStore) MarkChordRepetition(id string) {
	s.chordRepetitions[id] = ChordRepetitionMarker{}
}

// IsChordRepetition reports whether a chord was expanded from `q`.
func (s *ExtensionStore) IsChordRepetition(id string) bool {
	_, ok := s.chordRepetitions[id]
	return ok
}

// SetEventSequence records the positioned zero-width events of a staff.
func (s *ExtensionStore) SetEventSequence(id string, seq EventSequence) {
	s.eventSequences[id] = seq
}

// EventSequenceFor returns the positioned zero-width events of a staff.
func (s *ExtensionStore) EventSequenceFor(id string) (EventSequence, bool) {
	seq, ok := s.eventSequences[id]
	return seq, ok
}

// SetPartSymbol records group-symbol detail for a staff group.
func (s *ExtensionStore) SetPartSymbol(id string, info PartSymbolInfo) {
	s.partSymbols[id] = info
}

// PartSymbol returns group-symbol detail for a staff group.
func (s *ExtensionStore) PartSymbol(id string) (PartSymbolInfo, bool) {
	info, ok := s.partSymbols[id]
	return info, ok
}

// IDs returns every identity with at least one entry, sorted for
// deterministic iteration.
func (s *ExtensionStore) IDs() []string {
	seen := make(map[string]bool)
	for id := range s.articulations {
		seen[id] = true
	}
	for id := range s.ornaments {
		seen[id] = true
	}
	for id := range s.tremolos {
		seen[id] = true
	}
	for id := range s.tuplets {
		seen[id] = true
	}
	for id := range s.graces {
		seen[id] = true
	}
	for id := range s.repeats {
		seen[id] = true
	}
	for id := range s.endings {
		seen[id] = true
	}
	for id := range s.chordRepetitions {
		seen[id] = true
	}
	for id := range s.eventSequences {
		seen[id] = true
	}
	for id := range s.partSymbols {
		seen[id] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether any concern holds an entry for the identity.
func (s *ExtensionStore) Has(id string) bool {
	if _, ok := s.articulations[id]; ok {
		return true
	}
	if _, ok := s.ornaments[id]; ok {
		return true
	}
	if _, ok := s.tremolos[id]; ok {
		return true
	}
	if _, ok := s.tuplets[id]; ok {
		return true
	}
	if _, ok := s.graces[id]; ok {
		return true
	}
	if _, ok := s.repeats[id]; ok {
		return true
	}
	if _, ok := s.endings[id]; ok {
		return true
	}
	if _, ok := s.chordRepetitions[id]; ok {
		return true
	}
	if _, ok := s.eventSequences[id]; ok {
		return true
	}
	if _, ok := s.partSymbols[id]; ok {
		return true
	}
	return false
}
