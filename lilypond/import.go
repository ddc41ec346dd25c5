package lilypond

import (
	"fmt"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

// Import converts a parsed music sequence into a one-staff document plus
// the extension store holding everything the tree cannot express natively.
func Import(seq *dsl.Sequence) (*score.Document, *score.ExtensionStore, error) {
	return ImportStaves([]*dsl.Sequence{seq}, convert.NewContext("ly"))
}

// ImportStaves converts one sequence per staff. The context supplies
// identity allocation and collects warnings; callers own both it and the
// returned store for the rest of the conversion.
func ImportStaves(staves []*dsl.Sequence, ctx *convert.Context) (*score.Document, *score.ExtensionStore, error) {
	store := score.NewExtensionStore()
	grp := &score.StaffGrp{XMLID: makeID(ctx, "staffgrp")}
	section := &score.Section{}

	for i, seq := range staves {
		c := &collector{}
		if err := c.collectSequence(seq); err != nil {
			return nil, nil, err
		}

		staffDef := &score.StaffDef{
			XMLID: makeID(ctx, "staffdef"),
			N:     i + 1,
			Lines: 5,
		}
		grp.Children = append(grp.Children, staffDef)

		b := &staffBuilder{ctx: ctx, store: store}
		if err := b.run(c.events); err != nil {
			return nil, nil, fmt.Errorf("staff %d: %w", i+1, err)
		}

		section.Staves = append(section.Staves, &score.Staff{
			N:      i + 1,
			Layers: []*score.Layer{{N: 1, Children: b.children}},
		})
		section.ControlEvents = append(section.ControlEvents, b.spans...)
		if len(b.sequence) > 0 {
			store.SetEventSequence(staffDef.XMLID, score.EventSequence{Events: b.sequence})
		}
	}

	doc := &score.Document{
		ScoreDef: &score.ScoreDef{StaffGrp: grp},
		Section:  section,
	}
	return doc, store, nil
}

// pendingSpan is a span whose start reference is filled by the next
// emitted duration event and whose end reference is the last one emitted
// when the scope closes. Rests and skips carry identities too, so a
// span may start or end on one.
type pendingSpan struct {
	startID string
}

type pendingTuplet struct {
	pendingSpan
	num  int
	den  int
	span *dsl.Duration
}

type pendingRepeat struct {
	pendingSpan
	kind     dsl.RepeatKind
	count    int
	altCount int
}

type pendingAlternative struct {
	pendingSpan
	index int
}

type graceScope struct {
	role     dsl.GraceRole
	fraction *dsl.Fraction
}

type pendingSlur struct {
	startID  string
	phrasing bool
}

type pendingHairpin struct {
	startID string
	form    score.HairpinForm
}

// staffBuilder walks one staff's event stream and emits layer children,
// control spans, store entries, and the positioned event sequence.
type staffBuilder struct {
	ctx   *convert.Context
	store *score.ExtensionStore

	children []score.LayerChild
	spans    []score.ControlSpan
	sequence []score.PositionedEvent

	tuplets      []*pendingTuplet
	repeats      []*pendingRepeat
	alternatives []*pendingAlternative
	graces       []graceScope
	slurs        []*pendingSlur
	hairpin      *pendingHairpin

	lastNoteID   string
	notesEmitted int
}

func (b *staffBuilder) run(events []event) error {
	for _, ev := range events {
		if err := b.handle(ev); err != nil {
			return err
		}
	}
	if len(b.slurs) > 0 {
		b.ctx.AddWarning(b.lastNoteID, "slur never closed")
	}
	if b.hairpin != nil {
		b.ctx.AddWarning(b.lastNoteID, "hairpin never closed")
	}
	return nil
}

func (b *staffBuilder) handle(ev event) error {
	switch e := ev.(type) {
	case noteEvent:
		note := convertNote(b.ctx, e.Note)
		b.applyGrace(note.XMLID, func(g score.GraceAttr) { note.Grace = g })
		child := b.applyPostEvents(note.XMLID, e.Note.PostEvents, note, func(artic string) {
			note.Artics = append(note.Artics, artic)
		}, func(tie string) { note.Tie = tie })
		b.emit(note.XMLID, child)

	case chordEvent:
		chord := &score.Chord{XMLID: makeID(b.ctx, "chord")}
		chord.Dur, chord.Dots = applyDuration(e.Duration)
		for _, n := range e.Notes {
			chord.Notes = append(chord.Notes, convertChordNote(b.ctx, n))
		}
		b.applyGrace(chord.XMLID, func(g score.GraceAttr) { chord.Grace = g })
		if e.FromRepetition {
			b.store.MarkChordRepetition(chord.XMLID)
		}
		child := b.applyPostEvents(chord.XMLID, e.PostEvents, chord, func(artic string) {
			chord.Artics = append(chord.Artics, artic)
		}, func(tie string) {
			for _, n := range chord.Notes {
				n.Tie = tie
			}
		})
		b.emit(chord.XMLID, child)

	case restEvent:
		rest := convertRest(b.ctx, e.Rest)
		b.emit(rest.XMLID, rest)

	case skipEvent:
		space := convertSkip(b.ctx, e.Skip)
		b.emit(space.XMLID, space)

	case tupletStartEvent:
		b.tuplets = append(b.tuplets, &pendingTuplet{num: e.Num, den: e.Den, span: e.Span})

	case tupletEndEvent:
		if len(b.tuplets) == 0 {
			return fmt.Errorf("tuplet: %w", ErrUnbalancedScope)
		}
		t := b.tuplets[len(b.tuplets)-1]
		b.tuplets = b.tuplets[:len(b.tuplets)-1]
		if t.startID == "" {
			return fmt.Errorf("tuplet %d/%d: %w", t.num, t.den, ErrEmptySpan)
		}
		span := &score.TupletSpan{
			XMLID:   makeID(b.ctx, "tupletspan"),
			Num:     t.num,
			NumBase: t.den,
			Ref:     score.SpanRef("#"+t.startID, "#"+b.lastNoteID),
		}
		b.spans = append(b.spans, span)
		if t.span != nil {
			b.store.SetTuplet(span.XMLID, score.TupletInfo{
				Num: t.num,
				Den: t.den,
				SpanDuration: &score.DurationInfo{
					Base: t.span.Base,
					Dots: t.span.Dots,
				},
			})
		}

	case graceStartEvent:
		b.graces = append(b.graces, graceScope{role: e.Role, fraction: e.Fraction})

	case graceEndEvent:
		if len(b.graces) == 0 {
			return fmt.Errorf("grace: %w", ErrUnbalancedScope)
		}
		b.graces = b.graces[:len(b.graces)-1]

	case repeatStartEvent:
		b.repeats = append(b.repeats, &pendingRepeat{
			kind:     e.Kind,
			count:    e.Count,
			altCount: e.AlternativeCount,
		})

	case repeatEndEvent:
		if len(b.repeats) == 0 {
			return fmt.Errorf("repeat: %w", ErrUnbalancedScope)
		}
		r := b.repeats[len(b.repeats)-1]
		b.repeats = b.repeats[:len(b.repeats)-1]
		if r.startID == "" {
			return fmt.Errorf("repeat %s: %w", r.kind, ErrEmptySpan)
		}
		dir := &score.Dir{
			XMLID: makeID(b.ctx, "dir"),
			Label: "repeat",
			Ref:   score.SpanRef("#"+r.startID, "#"+b.lastNoteID),
		}
		b.spans = append(b.spans, dir)
		info := score.RepeatInfo{RepeatType: r.kind.String(), Count: r.count}
		if r.altCount > 0 {
			n := r.altCount
			info.AlternativeCount = &n
		}
		b.store.SetRepeat(dir.XMLID, info)

	case alternativeStartEvent:
		b.alternatives = append(b.alternatives, &pendingAlternative{index: e.Index})

	case alternativeEndEvent:
		if len(b.alternatives) == 0 {
			return fmt.Errorf("alternative: %w", ErrUnbalancedScope)
		}
		a := b.alternatives[len(b.alternatives)-1]
		b.alternatives = b.alternatives[:len(b.alternatives)-1]
		if a.startID == "" {
			return fmt.Errorf("alternative %d: %w", a.index, ErrEmptySpan)
		}
		dir := &score.Dir{
			XMLID: makeID(b.ctx, "dir"),
			Label: "ending",
			Ref:   score.SpanRef("#"+a.startID, "#"+b.lastNoteID),
		}
		b.spans = append(b.spans, dir)
		b.store.SetEnding(dir.XMLID, score.EndingInfo{Index: a.index})

	case barCheckEvent:
		b.appendEvent(score.ControlEvent{Kind: score.EventBarCheck})

	case barLineEvent:
		b.appendEvent(score.ControlEvent{Kind: score.EventBarLine, Style: e.Style})

	case markupEvent:
		kind := score.EventMarkup
		if e.List {
			kind = score.EventMarkupList
		}
		b.appendEvent(score.ControlEvent{Kind: kind, Source: e.Source})
	}
	return nil
}

// emit finalizes an id-bearing duration event (note, chord, rest, or
// skip): pending span starts are filled, the child enters the layer, and
// the position counter advances.
func (b *staffBuilder) emit(id string, child score.LayerChild) {
	for _, t := range b.tuplets {
		if t.startID == "" {
			t.startID = id
		}
	}
	for _, r := range b.repeats {
		if r.startID == "" {
			r.startID = id
		}
	}
	for _, a := range b.alternatives {
		if a.startID == "" {
			a.startID = id
		}
	}
	b.children = append(b.children, child)
	b.lastNoteID = id
	b.notesEmitted++
}

func (b *staffBuilder) appendEvent(ev score.ControlEvent) {
	b.sequence = append(b.sequence, score.PositionedEvent{
		Position: b.notesEmitted,
		Event:    ev,
	})
}

// applyGrace marks a note or chord with the innermost grace role. Plain
// grace and appoggiatura are fully expressed by the native attribute;
// acciaccatura and after-grace need a store entry, the latter with its
// fraction.
func (b *staffBuilder) applyGrace(id string, set func(score.GraceAttr)) {
	if len(b.graces) == 0 {
		return
	}
	g := b.graces[len(b.graces)-1]
	switch g.role {
	case dsl.GraceRolePlain:
		set(score.GraceUnaccented)
	case dsl.GraceRoleAppoggiatura:
		set(score.GraceAccented)
	case dsl.GraceRoleAcciaccatura:
		set(score.GraceUnaccented)
		b.store.SetGrace(id, score.GraceInfo{Role: score.GraceRoleAcciaccatura})
	case dsl.GraceRoleAfterGrace:
		set(score.GraceUnaccented)
		info := score.GraceInfo{Role: score.GraceRoleAfterGrace}
		if g.fraction != nil {
			info.Fraction = &score.Fraction{Num: g.fraction.Num, Den: g.fraction.Den}
		}
		b.store.SetGrace(id, info)
	}
}

func toStoreDirection(d dsl.Direction) *score.Direction {
	var dir score.Direction
	switch d {
	case dsl.DirUp:
		dir = score.DirectionUp
	case dsl.DirDown:
		dir = score.DirectionDown
	default:
		return nil
	}
	return &dir
}

// applyPostEvents lowers the attachments of a note or chord. It returns
// the layer child to emit, which is the element itself or its tremolo
// wrapper.
func (b *staffBuilder) applyPostEvents(id string, events []dsl.PostEvent, elem score.LayerChild,
	addArtic func(string), setTie func(string)) score.LayerChild {

	child := elem
	for _, pe := range events {
		switch e := pe.(type) {
		case dsl.Tremolo:
			btrem := &score.BTrem{
				XMLID: makeID(b.ctx, "btrem"),
				Child: elem,
				Slash: tremoloSlashCount(e.Subdivision),
			}
			b.store.SetTremolo(btrem.XMLID, score.TremoloInfo{Subdivision: e.Subdivision})
			child = btrem

		case dsl.Articulation:
			if e.Direction == dsl.DirNeutral {
				addArtic(scriptAbbrArtic[byte(e.Script)])
			} else {
				b.addArticDir(id, score.KindArticulation, scriptAbbrArtic[byte(e.Script)], e.Direction)
			}

		case dsl.NamedArticulation:
			b.lowerNamedArticulation(id, e, addArtic)

		case dsl.Fingering:
			b.addArticDir(id, score.KindFingering, fmt.Sprintf("%d", e.Digit), e.Direction)

		case dsl.StringNumber:
			b.addArticDir(id, score.KindStringNumber, fmt.Sprintf("%d", e.Number), e.Direction)

		case dsl.Dynamic:
			b.spans = append(b.spans, &score.Dynam{
				XMLID: makeID(b.ctx, "dynam"),
				Value: e.Name,
				Ref:   score.SpanRef("#"+id, ""),
			})
			b.closeHairpin(id)

		case dsl.Tie:
			setTie("i")

		case dsl.SlurStart:
			b.slurs = append(b.slurs, &pendingSlur{startID: id})

		case dsl.SlurEnd:
			b.closeSlur(id, false)

		case dsl.PhrasingSlurStart:
			b.slurs = append(b.slurs, &pendingSlur{startID: id, phrasing: true})

		case dsl.PhrasingSlurEnd:
			b.closeSlur(id, true)

		case dsl.Crescendo:
			b.startHairpin(id, score.HairpinCres)

		case dsl.Decrescendo:
			b.startHairpin(id, score.HairpinDim)

		case dsl.HairpinEnd:
			b.closeHairpin(id)

		case dsl.BeamStart, dsl.BeamEnd:
			// Beaming is a layout concern the tree derives itself.
		}
	}
	return child
}

// lowerNamedArticulation routes a \name post-event: dedicated ornament
// element, generic ornament directive, native articulation, or generic
// articulation directive, in that order of preference.
func (b *staffBuilder) lowerNamedArticulation(id string, e dsl.NamedArticulation, addArtic func(string)) {
	ref := score.SpanRef("#"+id, "")
	dir := toStoreDirection(e.Direction)

	switch classifyOrnament(e.Name) {
	case ornamentTrill:
		elem := &score.Trill{XMLID: makeID(b.ctx, "trill"), Ref: ref}
		b.spans = append(b.spans, elem)
		b.storeOrnamentDirection(elem.XMLID, e.Name, dir)
		return
	case ornamentMordentLower:
		b.addMordent(id, score.MordentLower, e.Name, dir)
		return
	case ornamentMordentUpper:
		b.addMordent(id, score.MordentUpper, e.Name, dir)
		return
	case ornamentTurnUpper:
		b.addTurn(id, score.TurnUpper, e.Name, dir)
		return
	case ornamentTurnLower:
		b.addTurn(id, score.TurnLower, e.Name, dir)
		return
	case ornamentFermataCurved:
		b.addFermata(id, score.FermataCurved, e.Name, dir, false)
		return
	case ornamentFermataAngular:
		b.addFermata(id, score.FermataAngular, e.Name, dir, false)
		return
	case ornamentFermataSquare:
		// Two source spellings share the square shape, so the name is
		// stored to disambiguate on export.
		b.addFermata(id, score.FermataSquare, e.Name, dir, true)
		return
	case ornamentGeneric:
		elem := &score.Dir{XMLID: makeID(b.ctx, "dir"), Label: "ornam", Ref: ref}
		b.spans = append(b.spans, elem)
		b.store.SetOrnament(elem.XMLID, score.OrnamentInfo{Name: e.Name, Direction: dir})
		return
	}

	if artic, ok := namedArtic[e.Name]; ok {
		if e.Direction == dsl.DirNeutral {
			addArtic(artic)
		} else {
			b.addArticDir(id, score.KindArticulation, artic, e.Direction)
		}
		return
	}

	// No native equivalent: e.g. \upbow stays a generic articulation.
	b.addArticDir(id, score.KindArticulation, e.Name, e.Direction)
}

func (b *staffBuilder) addMordent(noteID string, form score.MordentForm, name string, dir *score.Direction) {
	elem := &score.Mordent{XMLID: makeID(b.ctx, "mordent"), Form: form, Ref: score.SpanRef("#"+noteID, "")}
	b.spans = append(b.spans, elem)
	b.storeOrnamentDirection(elem.XMLID, name, dir)
}

func (b *staffBuilder) addTurn(noteID string, form score.TurnForm, name string, dir *score.Direction) {
	elem := &score.Turn{XMLID: makeID(b.ctx, "turn"), Form: form, Ref: score.SpanRef("#"+noteID, "")}
	b.spans = append(b.spans, elem)
	b.storeOrnamentDirection(elem.XMLID, name, dir)
}

func (b *staffBuilder) addFermata(noteID string, shape score.FermataShape, name string, dir *score.Direction, storeName bool) {
	elem := &score.Fermata{XMLID: makeID(b.ctx, "fermata"), Shape: shape, Ref: score.SpanRef("#"+noteID, "")}
	b.spans = append(b.spans, elem)
	if storeName {
		b.store.SetOrnament(elem.XMLID, score.OrnamentInfo{Name: name, Direction: dir})
	} else {
		b.storeOrnamentDirection(elem.XMLID, name, dir)
	}
}

// storeOrnamentDirection keeps the placement of a dedicated ornament when
// the source forced one; an unforced placement needs no entry.
func (b *staffBuilder) storeOrnamentDirection(id, name string, dir *score.Direction) {
	if dir == nil {
		return
	}
	b.store.SetOrnament(id, score.OrnamentInfo{Name: name, Direction: dir})
}

func (b *staffBuilder) addArticDir(id string, kind score.ArticulationKind, value string, d dsl.Direction) {
	label := "artic"
	switch kind {
	case score.KindFingering:
		label = "fingering"
	case score.KindStringNumber:
		label = "string-number"
	}
	elem := &score.Dir{
		XMLID: makeID(b.ctx, "dir"),
		Label: label,
		Ref:   score.SpanRef("#"+id, ""),
	}
	b.spans = append(b.spans, elem)
	b.store.SetArticulation(elem.XMLID, score.ArticulationInfo{
		Kind:      kind,
		Value:     value,
		Direction: toStoreDirection(d),
	})
}

func (b *staffBuilder) closeSlur(endID string, phrasing bool) {
	for i := len(b.slurs) - 1; i >= 0; i-- {
		if b.slurs[i].phrasing != phrasing {
			continue
		}
		s := b.slurs[i]
		b.slurs = append(b.slurs[:i], b.slurs[i+1:]...)
		b.spans = append(b.spans, &score.Slur{
			XMLID:    makeID(b.ctx, "slur"),
			Phrasing: phrasing,
			Ref:      score.SpanRef("#"+s.startID, "#"+endID),
		})
		return
	}
	b.ctx.AddWarning(endID, "slur end without open slur")
}

// startHairpin opens a pending hairpin. A hairpin still open at this
// point can never be closed, so it is dropped with a warning.
func (b *staffBuilder) startHairpin(id string, form score.HairpinForm) {
	if b.hairpin != nil {
		b.ctx.AddWarning(b.hairpin.startID, "hairpin restarted before close")
	}
	b.hairpin = &pendingHairpin{startID: id, form: form}
}

func (b *staffBuilder) closeHairpin(endID string) {
	if b.hairpin == nil {
		return
	}
	h := b.hairpin
	b.hairpin = nil
	b.spans = append(b.spans, &score.Hairpin{
		XMLID: makeID(b.ctx, "hairpin"),
		Form:  h.form,
		Ref:   score.SpanRef("#"+h.startID, "#"+endID),
	})
}
