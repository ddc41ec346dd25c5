package lilypond

import (
	"fmt"
	"strings"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

// Export renders a document back to LilyPond source, replaying the
// extension store entries the importer wrote. Staves are emitted as one
// braced sequence each.
func Export(doc *score.Document, store *score.ExtensionStore) (string, error) {
	return ExportWithContext(doc, store, convert.NewContext("ly"))
}

// ExportWithContext is Export with a caller-owned context receiving
// warnings.
func ExportWithContext(doc *score.Document, store *score.ExtensionStore, ctx *convert.Context) (string, error) {
	var staffDefs []*score.StaffDef
	if doc.ScoreDef != nil && doc.ScoreDef.StaffGrp != nil {
		staffDefs = collectStaffDefs(doc.ScoreDef.StaffGrp)
	}

	var parts []string
	for i, staff := range doc.Section.Staves {
		w := &staffWriter{store: store, ctx: ctx}
		if i < len(staffDefs) {
			if seq, ok := store.EventSequenceFor(staffDefs[i].XMLID); ok {
				w.events = seq.Events
			}
		}
		text, err := w.render(staff, doc.Section.ControlEvents)
		if err != nil {
			return "", fmt.Errorf("staff %d: %w", staff.N, err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func collectStaffDefs(grp *score.StaffGrp) []*score.StaffDef {
	var defs []*score.StaffDef
	for _, child := range grp.Children {
		switch c := child.(type) {
		case *score.StaffDef:
			defs = append(defs, c)
		case *score.StaffGrp:
			defs = append(defs, collectStaffDefs(c)...)
		}
	}
	return defs
}

// staffWriter rebuilds one staff's source text from the layer children,
// the control spans referencing them, and the positioned event sequence.
type staffWriter struct {
	store  *score.ExtensionStore
	ctx    *convert.Context
	events []score.PositionedEvent

	opens      map[string][]string // element id -> opener tokens, outermost first
	closes     map[string][]string // element id -> closer tokens, innermost first
	post       map[string]string   // element id -> post-event suffix
	hairpinEnd map[string]bool
	dynamAt    map[string]bool

	tokens       []string
	notesWritten int
	nextEvent    int
}

func (w *staffWriter) render(staff *score.Staff, spans []score.ControlSpan) (string, error) {
	ids := make(map[string]bool)
	var children []score.LayerChild
	for _, layer := range staff.Layers {
		for _, child := range layer.Children {
			children = append(children, child)
			collectChildIDs(child, ids)
		}
	}

	if err := w.indexSpans(spans, ids); err != nil {
		return "", err
	}

	for i := 0; i < len(children); i++ {
		i = w.writeChild(children, i)
	}
	w.flushEvents(true)

	return "{ " + strings.Join(w.tokens, " ") + " }", nil
}

func collectChildIDs(child score.LayerChild, ids map[string]bool) {
	switch c := child.(type) {
	case *score.Note:
		ids[c.XMLID] = true
	case *score.Chord:
		ids[c.XMLID] = true
		for _, n := range c.Notes {
			ids[n.XMLID] = true
		}
	case *score.Rest:
		ids[c.XMLID] = true
	case *score.Space:
		ids[c.XMLID] = true
	case *score.BTrem:
		ids[c.XMLID] = true
		collectChildIDs(c.Child, ids)
	}
}

// indexSpans distributes control spans onto opener, closer, and
// post-event maps keyed by the referenced element ids. Spans referencing
// ids outside this staff belong to other staves and are skipped.
func (w *staffWriter) indexSpans(spans []score.ControlSpan, ids map[string]bool) error {
	w.opens = make(map[string][]string)
	w.closes = make(map[string][]string)
	w.post = make(map[string]string)
	w.hairpinEnd = make(map[string]bool)
	w.dynamAt = make(map[string]bool)

	altRemaining := 0
	altTotal := 0

	for _, span := range spans {
		startRef, endRef := span.SpanIDs()
		start := strings.TrimPrefix(startRef, "#")
		end := strings.TrimPrefix(endRef, "#")
		if start == "" || !ids[start] {
			if start != "" && end != "" && ids[end] {
				return fmt.Errorf("span %q start: %w", startRef, ErrDanglingSpan)
			}
			continue
		}
		if end != "" && !ids[end] {
			return fmt.Errorf("span %q end: %w", endRef, ErrDanglingSpan)
		}

		switch s := span.(type) {
		case *score.TupletSpan:
			w.openScope(start, tupletOpener(s, w.store))
			w.closeScope(end, "}")

		case *score.Dir:
			switch s.Label {
			case "repeat":
				info, ok := w.store.Repeat(s.XMLID)
				if !ok {
					w.ctx.AddWarning(s.XMLID, "repeat span without repeat detail, skipped")
					continue
				}
				w.openScope(start, fmt.Sprintf("\\repeat %s %d {", info.RepeatType, info.Count))
				w.closeScope(end, "}")
				if info.AlternativeCount != nil {
					altRemaining = *info.AlternativeCount
					altTotal = altRemaining
				}
			case "ending":
				opener := "{"
				if altRemaining == altTotal && altRemaining > 0 {
					opener = "\\alternative { {"
				}
				closer := "}"
				if altRemaining == 1 {
					closer = "} }"
				}
				if altRemaining > 0 {
					altRemaining--
				}
				w.openScope(start, opener)
				w.closeScope(end, closer)
			case "ornam":
				if info, ok := w.store.Ornament(s.XMLID); ok {
					w.addPost(start, directionPrefix(info.Direction)+"\\"+info.Name)
				}
			default:
				if info, ok := w.store.Articulation(s.XMLID); ok {
					w.addPost(start, articulationToken(info))
				}
			}

		case *score.Trill, *score.Mordent, *score.Turn, *score.Fermata:
			name := ornamentNameFor(span, w.store)
			prefix := ""
			if info, ok := w.store.Ornament(spanXMLID(span)); ok {
				prefix = directionPrefix(info.Direction)
			}
			w.addPost(start, prefix+"\\"+name)

		case *score.Slur:
			if s.Phrasing {
				w.addPost(start, `\(`)
				w.addPost(end, `\)`)
			} else {
				w.addPost(start, "(")
				w.addPost(end, ")")
			}

		case *score.Hairpin:
			if s.Form == score.HairpinCres {
				w.addPost(start, `\<`)
			} else {
				w.addPost(start, `\>`)
			}
			if end != "" {
				w.hairpinEnd[end] = true
			}

		case *score.Dynam:
			w.addPost(start, "\\"+s.Value)
			w.dynamAt[start] = true
		}
	}

	// A hairpin ends either at a dynamic or with an explicit \! mark.
	for id := range w.hairpinEnd {
		if !w.dynamAt[id] {
			w.addPost(id, `\!`)
		}
	}
	return nil
}

func spanXMLID(span score.ControlSpan) string {
	switch s := span.(type) {
	case *score.Trill:
		return s.XMLID
	case *score.Mordent:
		return s.XMLID
	case *score.Turn:
		return s.XMLID
	case *score.Fermata:
		return s.XMLID
	}
	return ""
}

// openScope prepends so that later spans, which the importer appended
// after their nested content, open first.
func (w *staffWriter) openScope(id, opener string) {
	w.opens[id] = append([]string{opener}, w.opens[id]...)
}

func (w *staffWriter) closeScope(id, closer string) {
	w.closes[id] = append(w.closes[id], closer)
}

func (w *staffWriter) addPost(id, token string) {
	w.post[id] += token
}

func tupletOpener(s *score.TupletSpan, store *score.ExtensionStore) string {
	if info, ok := store.Tuplet(s.XMLID); ok && info.SpanDuration != nil {
		return fmt.Sprintf("\\tuplet %d/%d %s {", s.Num, s.NumBase,
			durationText(info.SpanDuration.Base, info.SpanDuration.Dots))
	}
	return fmt.Sprintf("\\tuplet %d/%d {", s.Num, s.NumBase)
}

func articulationToken(info score.ArticulationInfo) string {
	prefix := directionPrefix(info.Direction)
	switch info.Kind {
	case score.KindFingering:
		if prefix == "" {
			prefix = "-"
		}
		return prefix + info.Value
	case score.KindStringNumber:
		return prefix + "\\" + info.Value
	}
	if name, ok := articName[info.Value]; ok {
		return prefix + "\\" + name
	}
	return prefix + "\\" + info.Value
}

func directionPrefix(d *score.Direction) string {
	if d == nil {
		return ""
	}
	switch *d {
	case score.DirectionUp:
		return "^"
	case score.DirectionDown:
		return "_"
	}
	return "-"
}

// writeChild emits one layer child with its scope openers and closers,
// folding a following after-grace run into an \afterGrace construct.
// It returns the index of the last child consumed.
func (w *staffWriter) writeChild(children []score.LayerChild, i int) int {
	child := children[i]
	id := childXMLID(child)

	if isGraced(child, w.store) {
		return w.writeGraceRun(children, i)
	}

	w.flushEvents(false)
	w.tokens = append(w.tokens, w.opens[id]...)

	// A following after-grace run attaches to this child as its main note.
	if i+1 < len(children) && w.graceRole(children[i+1]) == score.GraceRoleAfterGrace {
		return w.writeAfterGrace(children, i)
	}

	w.tokens = append(w.tokens, w.childToken(child))
	w.countChild(child)
	w.tokens = append(w.tokens, w.closes[id]...)
	return i
}

// writeGraceRun groups consecutive grace children sharing one role into a
// single grace block.
func (w *staffWriter) writeGraceRun(children []score.LayerChild, i int) int {
	role := w.graceRole(children[i])
	command := map[score.GraceRole]string{
		score.GraceRoleGrace:        `\grace`,
		score.GraceRoleAcciaccatura: `\acciaccatura`,
		score.GraceRoleAppoggiatura: `\appoggiatura`,
	}[role]

	w.flushEvents(false)
	w.tokens = append(w.tokens, command, "{")
	j := i
	for ; j < len(children) && w.graceRole(children[j]) == role; j++ {
		id := childXMLID(children[j])
		w.tokens = append(w.tokens, w.opens[id]...)
		w.tokens = append(w.tokens, w.childToken(children[j]))
		w.countChild(children[j])
		w.tokens = append(w.tokens, w.closes[id]...)
	}
	w.tokens = append(w.tokens, "}")
	return j - 1
}

// writeAfterGrace emits `\afterGrace [N/M] MAIN { GRACES }`. The main
// child is children[i]; the grace run follows it.
func (w *staffWriter) writeAfterGrace(children []score.LayerChild, i int) int {
	mainID := childXMLID(children[i])
	graceID := childXMLID(children[i+1])

	head := `\afterGrace`
	if info, ok := w.store.Grace(graceID); ok && info.Fraction != nil {
		head = fmt.Sprintf(`\afterGrace %d/%d`, info.Fraction.Num, info.Fraction.Den)
	}
	w.tokens = append(w.tokens, head, w.childToken(children[i]))
	w.countChild(children[i])

	w.tokens = append(w.tokens, "{")
	j := i + 1
	for ; j < len(children) && w.graceRole(children[j]) == score.GraceRoleAfterGrace; j++ {
		id := childXMLID(children[j])
		w.tokens = append(w.tokens, w.opens[id]...)
		w.tokens = append(w.tokens, w.childToken(children[j]))
		w.countChild(children[j])
		w.tokens = append(w.tokens, w.closes[id]...)
	}
	w.tokens = append(w.tokens, "}")
	w.tokens = append(w.tokens, w.closes[mainID]...)
	return j - 1
}

// graceRole resolves how a child was graced, store detail first, native
// attribute second. GraceRole("") means not a grace note.
func (w *staffWriter) graceRole(child score.LayerChild) score.GraceRole {
	id := childXMLID(child)
	if info, ok := w.store.Grace(id); ok {
		return info.Role
	}
	switch graceAttr(child) {
	case score.GraceUnaccented, score.GraceUnknown:
		return score.GraceRoleGrace
	case score.GraceAccented:
		return score.GraceRoleAppoggiatura
	}
	return score.GraceRole("")
}

func isGraced(child score.LayerChild, store *score.ExtensionStore) bool {
	if graceAttr(child) != score.GraceNone {
		if info, ok := store.Grace(childXMLID(child)); ok {
			return info.Role != score.GraceRoleAfterGrace
		}
		return true
	}
	return false
}

func graceAttr(child score.LayerChild) score.GraceAttr {
	switch c := child.(type) {
	case *score.Note:
		return c.Grace
	case *score.Chord:
		return c.Grace
	case *score.BTrem:
		return graceAttr(c.Child)
	}
	return score.GraceNone
}

func childXMLID(child score.LayerChild) string {
	switch c := child.(type) {
	case *score.Note:
		return c.XMLID
	case *score.Chord:
		return c.XMLID
	case *score.Rest:
		return c.XMLID
	case *score.Space:
		return c.XMLID
	case *score.BTrem:
		// Spans reference the wrapped element, not the wrapper.
		return childXMLID(c.Child)
	}
	return ""
}

func (w *staffWriter) countChild(child score.LayerChild) {
	switch child.(type) {
	case *score.Note, *score.Chord, *score.Rest, *score.Space, *score.BTrem:
		w.notesWritten++
	}
}

// flushEvents emits the positioned zero-width events due at the current
// note count, or all remaining ones at the end of the staff.
func (w *staffWriter) flushEvents(all bool) {
	for w.nextEvent < len(w.events) {
		ev := w.events[w.nextEvent]
		if !all && ev.Position > w.notesWritten {
			return
		}
		w.nextEvent++
		switch ev.Event.Kind {
		case score.EventBarCheck:
			w.tokens = append(w.tokens, "|")
		case score.EventBarLine:
			w.tokens = append(w.tokens, fmt.Sprintf("\\bar %q", ev.Event.Style))
		case score.EventMarkup:
			w.tokens = append(w.tokens, markupToken(`\markup`, ev.Event.Source))
		case score.EventMarkupList:
			w.tokens = append(w.tokens, markupToken(`\markuplist`, ev.Event.Source))
		}
	}
}

// markupToken re-emits captured markup source. String markup was captured
// quoted and needs no braces.
func markupToken(command, source string) string {
	if strings.HasPrefix(source, `"`) {
		return command + " " + source
	}
	return command + " { " + source + " }"
}

// childToken renders a note, chord, rest, space, or tremolo wrapper as a
// single source token, post-event suffix included.
func (w *staffWriter) childToken(child score.LayerChild) string {
	switch c := child.(type) {
	case *score.Note:
		return noteToken(c) + w.post[c.XMLID]
	case *score.Chord:
		return w.chordToken(c) + w.post[c.XMLID]
	case *score.Rest:
		return "r" + durationText(c.Dur, c.Dots)
	case *score.Space:
		return "s" + durationText(c.Dur, c.Dots)
	case *score.BTrem:
		sub := 8 << c.Slash
		if info, ok := w.store.Tremolo(c.XMLID); ok {
			sub = info.Subdivision
		}
		return w.tremoloToken(c.Child, sub)
	}
	return ""
}

// tremoloToken splices the `:N` suffix between the duration and the
// post-events of the wrapped element.
func (w *staffWriter) tremoloToken(inner score.LayerChild, sub int) string {
	suffix := ":"
	if sub > 0 {
		suffix = fmt.Sprintf(":%d", sub)
	}
	switch c := inner.(type) {
	case *score.Note:
		return noteToken(c) + suffix + w.post[c.XMLID]
	case *score.Chord:
		return w.chordToken(c) + suffix + w.post[c.XMLID]
	}
	return ""
}

func noteToken(n *score.Note) string {
	tok := pitchText(n) + durationText(n.Dur, n.Dots)
	for _, artic := range n.Artics {
		tok += "\\" + articName[artic]
	}
	if n.Tie == "i" {
		tok += "~"
	}
	return tok
}

func (w *staffWriter) chordToken(c *score.Chord) string {
	if w.store.IsChordRepetition(c.XMLID) {
		return "q" + durationText(c.Dur, c.Dots) + chordSuffix(c)
	}
	var pitches []string
	for _, n := range c.Notes {
		pitches = append(pitches, pitchText(n))
	}
	return "<" + strings.Join(pitches, " ") + ">" + durationText(c.Dur, c.Dots) + chordSuffix(c)
}

func chordSuffix(c *score.Chord) string {
	tok := ""
	for _, artic := range c.Artics {
		tok += "\\" + articName[artic]
	}
	for _, n := range c.Notes {
		if n.Tie == "i" {
			tok += "~"
			break
		}
	}
	return tok
}

func pitchText(n *score.Note) string {
	name := n.Pname + alterSuffix(accidToAlter(n.Accid))
	marks := sourceOctaveMarks(n.Oct)
	for ; marks > 0; marks-- {
		name += "'"
	}
	for ; marks < 0; marks++ {
		name += ","
	}
	if n.Accid == "n" {
		name += "!"
	}
	return name
}

func alterSuffix(alter float64) string {
	switch alter {
	case 1:
		return "is"
	case -1:
		return "es"
	case 2:
		return "isis"
	case -2:
		return "eses"
	case 0.5:
		return "ih"
	case -0.5:
		return "eh"
	}
	return ""
}

func durationText(dur, dots int) string {
	if dur == 0 {
		return ""
	}
	return fmt.Sprintf("%d", dur) + strings.Repeat(".", dots)
}
