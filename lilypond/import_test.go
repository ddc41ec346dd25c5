package lilypond

import (
	"errors"
	"testing"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

func mustImport(t *testing.T, input string) (*score.Document, *score.ExtensionStore) {
	t.Helper()
	seq, err := dsl.Parse(input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	doc, store, err := Import(seq)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	return doc, store
}

func layerChildren(t *testing.T, doc *score.Document) []score.LayerChild {
	t.Helper()
	if len(doc.Section.Staves) != 1 {
		t.Fatalf("expected 1 staff, got %d", len(doc.Section.Staves))
	}
	return doc.Section.Staves[0].Layers[0].Children
}

func TestImport_NotePitchAndOctave(t *testing.T) {
	doc, _ := mustImport(t, `{ c4 fis' bes, }`)
	children := layerChildren(t, doc)
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}

	c := children[0].(*score.Note)
	if c.Pname != "c" || c.Oct != 3 || c.Accid != "" || c.Dur != 4 {
		t.Errorf("unexpected first note: %+v", c)
	}
	fis := children[1].(*score.Note)
	if fis.Pname != "f" || fis.Oct != 4 || fis.Accid != "s" {
		t.Errorf("unexpected second note: %+v", fis)
	}
	bes := children[2].(*score.Note)
	if bes.Pname != "b" || bes.Oct != 2 || bes.Accid != "f" {
		t.Errorf("unexpected third note: %+v", bes)
	}
}

func TestImport_ForcedNatural(t *testing.T) {
	doc, _ := mustImport(t, `{ c!4 }`)
	note := layerChildren(t, doc)[0].(*score.Note)
	if note.Accid != "n" {
		t.Errorf("expected explicit natural, got %q", note.Accid)
	}
}

func TestImport_DurationInheritanceStaysUnset(t *testing.T) {
	doc, _ := mustImport(t, `{ c4. d }`)
	children := layerChildren(t, doc)
	c := children[0].(*score.Note)
	if c.Dur != 4 || c.Dots != 1 {
		t.Errorf("expected dotted quarter, got dur %d dots %d", c.Dur, c.Dots)
	}
	d := children[1].(*score.Note)
	if d.Dur != 0 || d.Dots != 0 {
		t.Errorf("inheriting note should carry no duration, got dur %d dots %d", d.Dur, d.Dots)
	}
}

func TestImport_UniqueIdentities(t *testing.T) {
	doc, _ := mustImport(t, `{ <c e g>4 d r4 s4 }`)
	result := score.Validate(doc)
	if !result.Valid {
		t.Fatalf("expected valid document, got %+v", result.Errors)
	}
}

func TestImport_Tremolo(t *testing.T) {
	doc, store := mustImport(t, `{ e4:32 }`)
	children := layerChildren(t, doc)

	btrem, ok := children[0].(*score.BTrem)
	if !ok {
		t.Fatalf("expected *BTrem, got %T", children[0])
	}
	if btrem.Slash != 3 {
		t.Errorf("expected 3 slashes for subdivision 32, got %d", btrem.Slash)
	}
	info, ok := store.Tremolo(btrem.XMLID)
	if !ok {
		t.Fatal("expected tremolo detail in store")
	}
	if info.Subdivision != 32 {
		t.Errorf("expected subdivision 32, got %d", info.Subdivision)
	}
	if _, ok := btrem.Child.(*score.Note); !ok {
		t.Errorf("expected wrapped note, got %T", btrem.Child)
	}
}

func TestImport_TremoloSlashCounts(t *testing.T) {
	cases := []struct {
		sub   int
		slash int
	}{
		{8, 1}, {16, 2}, {32, 3}, {64, 4}, {0, 0}, {4, 0},
	}
	for _, c := range cases {
		if got := tremoloSlashCount(c.sub); got != c.slash {
			t.Errorf("subdivision %d: expected %d slashes, got %d", c.sub, c.slash, got)
		}
	}
}

func TestImport_TupletSpan(t *testing.T) {
	doc, store := mustImport(t, `{ \tuplet 3/2 4 { c8 d e f g a } }`)
	children := layerChildren(t, doc)
	if len(children) != 6 {
		t.Fatalf("expected 6 notes, got %d", len(children))
	}

	var tuplet *score.TupletSpan
	for _, span := range doc.Section.ControlEvents {
		if ts, ok := span.(*score.TupletSpan); ok {
			tuplet = ts
		}
	}
	if tuplet == nil {
		t.Fatal("expected a tuplet span")
	}
	if tuplet.Num != 3 || tuplet.NumBase != 2 {
		t.Errorf("expected ratio 3/2, got %d/%d", tuplet.Num, tuplet.NumBase)
	}

	first := children[0].(*score.Note)
	last := children[5].(*score.Note)
	startRef, endRef := tuplet.SpanIDs()
	if startRef != "#"+first.XMLID {
		t.Errorf("expected start %q, got %q", "#"+first.XMLID, startRef)
	}
	if endRef != "#"+last.XMLID {
		t.Errorf("expected end %q, got %q", "#"+last.XMLID, endRef)
	}

	info, ok := store.Tuplet(tuplet.XMLID)
	if !ok {
		t.Fatal("expected tuplet detail for explicit span duration")
	}
	if info.SpanDuration == nil || info.SpanDuration.Base != 4 {
		t.Errorf("expected span duration 4, got %+v", info.SpanDuration)
	}
}

func TestImport_TupletWithoutSpanDurationNeedsNoDetail(t *testing.T) {
	doc, store := mustImport(t, `{ \tuplet 3/2 { c8 d e } }`)
	for _, span := range doc.Section.ControlEvents {
		if ts, ok := span.(*score.TupletSpan); ok {
			if _, found := store.Tuplet(ts.XMLID); found {
				t.Error("ratio alone should need no store entry")
			}
			return
		}
	}
	t.Fatal("expected a tuplet span")
}

func TestImport_GraceRoles(t *testing.T) {
	doc, store := mustImport(t, `{ \grace { c16 } \appoggiatura d8 \acciaccatura e8 f4 }`)
	children := layerChildren(t, doc)

	plain := children[0].(*score.Note)
	if plain.Grace != score.GraceUnaccented {
		t.Errorf("plain grace: expected unaccented, got %q", plain.Grace)
	}
	if store.Has(plain.XMLID) {
		t.Error("plain grace is native and should need no store entry")
	}

	app := children[1].(*score.Note)
	if app.Grace != score.GraceAccented {
		t.Errorf("appoggiatura: expected accented, got %q", app.Grace)
	}
	if store.Has(app.XMLID) {
		t.Error("appoggiatura is native and should need no store entry")
	}

	acc := children[2].(*score.Note)
	if acc.Grace != score.GraceUnaccented {
		t.Errorf("acciaccatura: expected unaccented attribute, got %q", acc.Grace)
	}
	info, ok := store.Grace(acc.XMLID)
	if !ok || info.Role != score.GraceRoleAcciaccatura {
		t.Errorf("acciaccatura needs a role entry, got %+v found %v", info, ok)
	}

	main := children[3].(*score.Note)
	if main.Grace != score.GraceNone {
		t.Errorf("main note should not be graced, got %q", main.Grace)
	}
}

func TestImport_AfterGrace(t *testing.T) {
	doc, store := mustImport(t, `{ \afterGrace 3/4 c2 { d16 } }`)
	children := layerChildren(t, doc)
	if len(children) != 2 {
		t.Fatalf("expected main note plus grace note, got %d children", len(children))
	}

	main := children[0].(*score.Note)
	if main.Pname != "c" || main.Dur != 2 || main.Grace != score.GraceNone {
		t.Errorf("unexpected main note: %+v", main)
	}

	grace := children[1].(*score.Note)
	if grace.Grace != score.GraceUnaccented {
		t.Errorf("expected unaccented grace attribute, got %q", grace.Grace)
	}
	info, ok := store.Grace(grace.XMLID)
	if !ok || info.Role != score.GraceRoleAfterGrace {
		t.Fatalf("expected after-grace role, got %+v found %v", info, ok)
	}
	if info.Fraction == nil || info.Fraction.Num != 3 || info.Fraction.Den != 4 {
		t.Errorf("expected fraction 3/4, got %+v", info.Fraction)
	}
}

func TestImport_RepeatWithAlternatives(t *testing.T) {
	doc, store := mustImport(t, `{ \repeat volta 2 { c4 d } \alternative { { e4 } { f4 } } }`)
	children := layerChildren(t, doc)
	if len(children) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(children))
	}

	var repeat *score.Dir
	var endings []*score.Dir
	for _, span := range doc.Section.ControlEvents {
		dir, ok := span.(*score.Dir)
		if !ok {
			continue
		}
		switch dir.Label {
		case "repeat":
			repeat = dir
		case "ending":
			endings = append(endings, dir)
		}
	}
	if repeat == nil {
		t.Fatal("expected a repeat span")
	}
	if len(endings) != 2 {
		t.Fatalf("expected 2 ending spans, got %d", len(endings))
	}

	info, ok := store.Repeat(repeat.XMLID)
	if !ok {
		t.Fatal("expected repeat detail")
	}
	if info.RepeatType != "volta" || info.Count != 2 {
		t.Errorf("expected volta 2, got %+v", info)
	}
	if info.AlternativeCount == nil || *info.AlternativeCount != 2 {
		t.Errorf("expected alternative count 2, got %v", info.AlternativeCount)
	}

	start, end := repeat.SpanIDs()
	c := children[0].(*score.Note)
	d := children[1].(*score.Note)
	if start != "#"+c.XMLID || end != "#"+d.XMLID {
		t.Errorf("repeat span should cover body notes, got %s..%s", start, end)
	}

	for i, ending := range endings {
		einfo, ok := store.Ending(ending.XMLID)
		if !ok {
			t.Fatalf("ending %d: expected index entry", i)
		}
		if einfo.Index != i {
			t.Errorf("ending %d: expected index %d, got %d", i, i, einfo.Index)
		}
	}
}

func TestImport_RepeatWithoutAlternatives(t *testing.T) {
	_, store := mustImport(t, `{ \repeat unfold 4 { c8 } }`)
	for _, id := range store.IDs() {
		if info, ok := store.Repeat(id); ok {
			if info.AlternativeCount != nil {
				t.Errorf("expected nil alternative count, got %d", *info.AlternativeCount)
			}
			return
		}
	}
	t.Fatal("expected repeat detail")
}

func TestImport_ChordRepetition(t *testing.T) {
	doc, store := mustImport(t, `{ <c e g>4 q q }`)
	children := layerChildren(t, doc)
	if len(children) != 3 {
		t.Fatalf("expected 3 chords, got %d", len(children))
	}

	first := children[0].(*score.Chord)
	if store.IsChordRepetition(first.XMLID) {
		t.Error("literal chord must not carry a repetition marker")
	}
	if len(first.Notes) != 3 {
		t.Fatalf("expected 3 chord notes, got %d", len(first.Notes))
	}

	for i := 1; i <= 2; i++ {
		rep := children[i].(*score.Chord)
		if !store.IsChordRepetition(rep.XMLID) {
			t.Errorf("chord %d: expected repetition marker", i)
		}
		if len(rep.Notes) != 3 {
			t.Errorf("chord %d: expected expanded pitches, got %d", i, len(rep.Notes))
		}
		if rep.Notes[0].XMLID == first.Notes[0].XMLID {
			t.Errorf("chord %d: expanded notes must get fresh identities", i)
		}
	}
}

func TestImport_ChordRepetitionWithoutChord(t *testing.T) {
	seq, err := dsl.Parse(`{ c4 q }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, _, err = Import(seq)
	if !errors.Is(err, ErrNoPreviousChord) {
		t.Fatalf("expected ErrNoPreviousChord, got %v", err)
	}
}

func TestImport_EmptyTupletSpan(t *testing.T) {
	seq, err := dsl.Parse(`{ \tuplet 3/2 { } }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, _, err = Import(seq)
	if !errors.Is(err, ErrEmptySpan) {
		t.Fatalf("expected ErrEmptySpan for an empty tuplet, got %v", err)
	}
}

func TestImport_RestAnchoredTuplet(t *testing.T) {
	doc, _ := mustImport(t, `{ \tuplet 3/2 { r8 c8 r8 } }`)
	children := layerChildren(t, doc)
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}

	var tuplet *score.TupletSpan
	for _, span := range doc.Section.ControlEvents {
		if ts, ok := span.(*score.TupletSpan); ok {
			tuplet = ts
		}
	}
	if tuplet == nil {
		t.Fatal("expected a tuplet span")
	}

	first := children[0].(*score.Rest)
	last := children[2].(*score.Rest)
	startRef, endRef := tuplet.SpanIDs()
	if startRef != "#"+first.XMLID {
		t.Errorf("expected span to start on the leading rest %q, got %q", "#"+first.XMLID, startRef)
	}
	if endRef != "#"+last.XMLID {
		t.Errorf("expected span to end on the trailing rest %q, got %q", "#"+last.XMLID, endRef)
	}
}

func TestImport_RestOnlyAlternative(t *testing.T) {
	doc, _ := mustImport(t, `{ \repeat volta 2 { c4 d } \alternative { { r2 } { f2 } } }`)
	children := layerChildren(t, doc)
	if len(children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(children))
	}

	var endings []*score.Dir
	for _, span := range doc.Section.ControlEvents {
		if dir, ok := span.(*score.Dir); ok && dir.Label == "ending" {
			endings = append(endings, dir)
		}
	}
	if len(endings) != 2 {
		t.Fatalf("expected 2 ending spans, got %d", len(endings))
	}

	rest := children[2].(*score.Rest)
	start, end := endings[0].SpanIDs()
	if start != "#"+rest.XMLID || end != "#"+rest.XMLID {
		t.Errorf("expected first ending to anchor on the rest, got %s..%s", start, end)
	}
}

func TestImport_SlursAndTies(t *testing.T) {
	doc, _ := mustImport(t, `{ c4( d e) f~ f }`)
	children := layerChildren(t, doc)

	var slur *score.Slur
	for _, span := range doc.Section.ControlEvents {
		if s, ok := span.(*score.Slur); ok {
			slur = s
		}
	}
	if slur == nil {
		t.Fatal("expected a slur span")
	}
	if slur.Phrasing {
		t.Error("expected plain slur")
	}
	start, end := slur.SpanIDs()
	c := children[0].(*score.Note)
	e := children[2].(*score.Note)
	if start != "#"+c.XMLID || end != "#"+e.XMLID {
		t.Errorf("slur should span c..e, got %s..%s", start, end)
	}

	f := children[3].(*score.Note)
	if f.Tie != "i" {
		t.Errorf("expected tie initiation, got %q", f.Tie)
	}
}

func TestImport_NestedSlurKinds(t *testing.T) {
	doc, _ := mustImport(t, `{ c4\( d( e) f\) }`)
	var plain, phrasing *score.Slur
	for _, span := range doc.Section.ControlEvents {
		if s, ok := span.(*score.Slur); ok {
			if s.Phrasing {
				phrasing = s
			} else {
				plain = s
			}
		}
	}
	if plain == nil || phrasing == nil {
		t.Fatal("expected one plain and one phrasing slur")
	}
	children := layerChildren(t, doc)
	pStart, pEnd := phrasing.SpanIDs()
	if pStart != "#"+children[0].(*score.Note).XMLID || pEnd != "#"+children[3].(*score.Note).XMLID {
		t.Errorf("phrasing slur should span the outer notes, got %s..%s", pStart, pEnd)
	}
}

func TestImport_UnclosedSlurWarns(t *testing.T) {
	seq, err := dsl.Parse(`{ c4( d }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ctx := convert.NewContext("ly")
	_, _, err = ImportStaves([]*dsl.Sequence{seq}, ctx)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if len(ctx.Warnings()) == 0 {
		t.Error("expected a warning for the unclosed slur")
	}
}

func TestImport_HairpinClosedByDynamic(t *testing.T) {
	doc, _ := mustImport(t, `{ c4\< d\f }`)
	var hairpin *score.Hairpin
	var dynam *score.Dynam
	for _, span := range doc.Section.ControlEvents {
		switch s := span.(type) {
		case *score.Hairpin:
			hairpin = s
		case *score.Dynam:
			dynam = s
		}
	}
	if hairpin == nil || dynam == nil {
		t.Fatal("expected hairpin and dynamic spans")
	}
	if hairpin.Form != score.HairpinCres {
		t.Errorf("expected crescendo, got %q", hairpin.Form)
	}
	if dynam.Value != "f" {
		t.Errorf("expected dynamic f, got %q", dynam.Value)
	}
	_, hEnd := hairpin.SpanIDs()
	dStart, _ := dynam.SpanIDs()
	if hEnd != dStart {
		t.Errorf("hairpin should end at the dynamic's note: %s vs %s", hEnd, dStart)
	}
}

func TestImport_HairpinRestartWarns(t *testing.T) {
	seq, err := dsl.Parse(`{ c4\< d\> e\! }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ctx := convert.NewContext("ly")
	doc, _, err := ImportStaves([]*dsl.Sequence{seq}, ctx)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if len(ctx.Warnings()) != 1 {
		t.Fatalf("expected 1 warning for the dropped hairpin, got %d", len(ctx.Warnings()))
	}

	var hairpin *score.Hairpin
	for _, span := range doc.Section.ControlEvents {
		if h, ok := span.(*score.Hairpin); ok {
			hairpin = h
		}
	}
	if hairpin == nil {
		t.Fatal("expected the second hairpin to survive")
	}
	if hairpin.Form != score.HairpinDim {
		t.Errorf("expected decrescendo, got %q", hairpin.Form)
	}
}

func TestImport_NativeArticulations(t *testing.T) {
	doc, store := mustImport(t, `{ c4-. d\tenuto }`)
	children := layerChildren(t, doc)

	c := children[0].(*score.Note)
	if len(c.Artics) != 1 || c.Artics[0] != "stacc" {
		t.Errorf("expected native staccato, got %v", c.Artics)
	}
	if store.Has(c.XMLID) {
		t.Error("neutral basic articulation should need no store entry")
	}

	d := children[1].(*score.Note)
	if len(d.Artics) != 1 || d.Artics[0] != "ten" {
		t.Errorf("expected native tenuto, got %v", d.Artics)
	}
}

func TestImport_DirectedArticulationGoesToStore(t *testing.T) {
	doc, store := mustImport(t, `{ c4^> }`)
	c := layerChildren(t, doc)[0].(*score.Note)
	if len(c.Artics) != 0 {
		t.Errorf("directed articulation must not use the native field, got %v", c.Artics)
	}

	var dir *score.Dir
	for _, span := range doc.Section.ControlEvents {
		if d, ok := span.(*score.Dir); ok {
			dir = d
		}
	}
	if dir == nil {
		t.Fatal("expected an articulation directive")
	}
	info, ok := store.Articulation(dir.XMLID)
	if !ok {
		t.Fatal("expected articulation detail")
	}
	if info.Value != "acc" || info.Direction == nil || *info.Direction != score.DirectionUp {
		t.Errorf("expected forced-up accent, got %+v", info)
	}
}

func TestImport_Ornaments(t *testing.T) {
	doc, store := mustImport(t, `{ c4\trill d\prall e\reverseturn f\verylongfermata }`)
	var trill *score.Trill
	var mordent *score.Mordent
	var turn *score.Turn
	var fermata *score.Fermata
	for _, span := range doc.Section.ControlEvents {
		switch s := span.(type) {
		case *score.Trill:
			trill = s
		case *score.Mordent:
			mordent = s
		case *score.Turn:
			turn = s
		case *score.Fermata:
			fermata = s
		}
	}
	if trill == nil {
		t.Fatal("expected a trill element")
	}
	if mordent == nil || mordent.Form != score.MordentUpper {
		t.Fatalf("expected upper mordent for prall, got %+v", mordent)
	}
	if turn == nil || turn.Form != score.TurnLower {
		t.Fatalf("expected lower turn for reverseturn, got %+v", turn)
	}
	if fermata == nil || fermata.Shape != score.FermataSquare {
		t.Fatalf("expected square fermata, got %+v", fermata)
	}
	info, ok := store.Ornament(fermata.XMLID)
	if !ok || info.Name != "verylongfermata" {
		t.Errorf("square fermata needs its source name stored, got %+v found %v", info, ok)
	}
}

func TestImport_FingeringAndStringNumber(t *testing.T) {
	doc, store := mustImport(t, `{ c4-2 d\3 }`)
	var dirs []*score.Dir
	for _, span := range doc.Section.ControlEvents {
		if d, ok := span.(*score.Dir); ok {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(dirs))
	}
	fing, _ := store.Articulation(dirs[0].XMLID)
	if fing.Kind != score.KindFingering || fing.Value != "2" {
		t.Errorf("expected fingering 2, got %+v", fing)
	}
	str, _ := store.Articulation(dirs[1].XMLID)
	if str.Kind != score.KindStringNumber || str.Value != "3" {
		t.Errorf("expected string number 3, got %+v", str)
	}
}

func TestImport_EventSequence(t *testing.T) {
	doc, store := mustImport(t, `{ c4 | d \bar "|." }`)
	grp := doc.ScoreDef.StaffGrp
	staffDef := grp.Children[0].(*score.StaffDef)

	seq, ok := store.EventSequenceFor(staffDef.XMLID)
	if !ok {
		t.Fatal("expected an event sequence for the staff")
	}
	if len(seq.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(seq.Events))
	}
	check := seq.Events[0]
	if check.Event.Kind != score.EventBarCheck || check.Position != 1 {
		t.Errorf("expected bar check after first note, got %+v", check)
	}
	bar := seq.Events[1]
	if bar.Event.Kind != score.EventBarLine || bar.Event.Style != "|." || bar.Position != 2 {
		t.Errorf("expected final bar line, got %+v", bar)
	}
}

func TestImport_MultipleStaves(t *testing.T) {
	upper, err := dsl.Parse(`{ c'4 d' }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lower, err := dsl.Parse(`{ c4 b, }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ctx := convert.NewContext("ly")
	doc, _, err := ImportStaves([]*dsl.Sequence{upper, lower}, ctx)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}

	grp := doc.ScoreDef.StaffGrp
	if len(grp.Children) != 2 {
		t.Fatalf("expected 2 staff definitions, got %d", len(grp.Children))
	}
	for i, child := range grp.Children {
		sd := child.(*score.StaffDef)
		if sd.N != i+1 {
			t.Errorf("staff %d: expected number %d, got %d", i, i+1, sd.N)
		}
		if sd.Lines != 5 {
			t.Errorf("staff %d: expected 5 lines, got %d", i, sd.Lines)
		}
	}
	if len(doc.Section.Staves) != 2 {
		t.Fatalf("expected 2 staves, got %d", len(doc.Section.Staves))
	}
}
