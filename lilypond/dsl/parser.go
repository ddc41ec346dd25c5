package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is a structural parse failure. The parser does not recover:
// the first error aborts the parse with no partial tree.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got %s at position %d", e.Expected, e.Found, e.Pos)
}

// Parser parses LilyPond source into a syntax tree.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(expected string) error {
	found := p.cur.Type.String()
	if p.cur.Literal != "" {
		found = fmt.Sprintf("%v %q", p.cur.Type, p.cur.Literal)
	}
	return &ParseError{Pos: p.cur.Pos, Expected: expected, Found: found}
}

func (p *Parser) expect(t TokenType) error {
	if p.cur.Type != t {
		return p.errorf(t.String())
	}
	return nil
}

func (p *Parser) expectUnsigned() (int, error) {
	if p.cur.Type != TokenUnsigned {
		return 0, p.errorf("unsigned integer")
	}
	n, err := strconv.Atoi(p.cur.Literal)
	if err != nil {
		return 0, p.errorf("unsigned integer")
	}
	p.nextToken()
	return n, nil
}

// Parse parses LilyPond source text into a music sequence. A top-level
// `{ ... }` wrapper is optional.
func Parse(input string) (*Sequence, error) {
	p := NewParser(input)
	seq := &Sequence{}
	for p.cur.Type != TokenEOF {
		item, err := p.parseMusic()
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
	}
	// A lone braced sequence is the music itself, not a nesting level.
	if len(seq.Items) == 1 {
		if inner, ok := seq.Items[0].(*Sequence); ok {
			return inner, nil
		}
	}
	return seq, nil
}

func (p *Parser) parseMusic() (Node, error) {
	switch p.cur.Type {
	case TokenBraceOpen:
		return p.parseBracedSequence()
	case TokenNote:
		return p.parseNoteEvent()
	case TokenAngleOpen:
		return p.parseChord()
	case TokenChordRepeat:
		return p.parseChordRepetition()
	case TokenRest:
		p.nextToken()
		dur, err := p.parseOptionalDuration()
		if err != nil {
			return nil, err
		}
		return &Rest{Duration: dur}, nil
	case TokenSkip:
		p.nextToken()
		dur, err := p.parseOptionalDuration()
		if err != nil {
			return nil, err
		}
		return &Skip{Duration: dur}, nil
	case TokenPipe:
		p.nextToken()
		return &BarCheck{}, nil
	case TokenCommand:
		return p.parseCommand()
	}
	return nil, p.errorf("music expression")
}

func (p *Parser) parseCommand() (Node, error) {
	switch p.cur.Literal {
	case "tuplet":
		return p.parseTuplet()
	case "grace":
		return p.parseGrace(GraceRolePlain)
	case "acciaccatura":
		return p.parseGrace(GraceRoleAcciaccatura)
	case "appoggiatura":
		return p.parseGrace(GraceRoleAppoggiatura)
	case "afterGrace":
		return p.parseAfterGrace()
	case "repeat":
		return p.parseRepeat()
	case "bar":
		p.nextToken()
		if err := p.expect(TokenString); err != nil {
			return nil, err
		}
		style := p.cur.Literal
		p.nextToken()
		return &BarLine{Style: style}, nil
	case "markup":
		return p.parseMarkup()
	case "markuplist":
		return p.parseMarkupList()
	}
	return nil, p.errorf("music command")
}

func (p *Parser) parseBracedSequence() (*Sequence, error) {
	if err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}
	p.nextToken()

	seq := &Sequence{}
	for p.cur.Type != TokenBraceClose {
		if p.cur.Type == TokenEOF {
			return nil, p.errorf("} closing sequence")
		}
		item, err := p.parseMusic()
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
	}
	p.nextToken() // consume }
	return seq, nil
}

// parsePitch reads the pitch part of a note event: name, octave marks,
// accidental display, optional octave check. Shared by notes and chord
// members.
func (p *Parser) parsePitch() (*Note, error) {
	letter, alter, ok := LookupNoteName(p.cur.Literal)
	if !ok {
		return nil, p.errorf("note name")
	}
	note := &Note{Name: letter, Alter: alter}
	p.nextToken()

	for p.cur.Type == TokenQuote || p.cur.Type == TokenComma {
		if p.cur.Type == TokenQuote {
			note.Octave++
		} else {
			note.Octave--
		}
		p.nextToken()
	}

	switch p.cur.Type {
	case TokenExclamation:
		note.Accidental = AccidentalForced
		p.nextToken()
	case TokenQuestion:
		note.Accidental = AccidentalCautionary
		p.nextToken()
	}

	// Octave check c'=' is accepted and dropped.
	if p.cur.Type == TokenEquals {
		p.nextToken()
		for p.cur.Type == TokenQuote || p.cur.Type == TokenComma {
			p.nextToken()
		}
	}

	return note, nil
}

func (p *Parser) parseNoteEvent() (Node, error) {
	note, err := p.parsePitch()
	if err != nil {
		return nil, err
	}
	note.Duration, err = p.parseOptionalDuration()
	if err != nil {
		return nil, err
	}
	note.PostEvents = p.parsePostEvents(p.parseOptionalTremolo())
	return note, nil
}

func (p *Parser) parseChord() (Node, error) {
	if err := p.expect(TokenAngleOpen); err != nil {
		return nil, err
	}
	p.nextToken()

	chord := &Chord{}
	for p.cur.Type == TokenNote {
		note, err := p.parsePitch()
		if err != nil {
			return nil, err
		}
		chord.Notes = append(chord.Notes, note)
	}
	if err := p.expect(TokenAngleClose); err != nil {
		return nil, p.errorf("> closing chord")
	}
	p.nextToken()

	var err error
	chord.Duration, err = p.parseOptionalDuration()
	if err != nil {
		return nil, err
	}
	chord.PostEvents = p.parsePostEvents(p.parseOptionalTremolo())
	return chord, nil
}

func (p *Parser) parseChordRepetition() (Node, error) {
	p.nextToken() // consume q
	dur, err := p.parseOptionalDuration()
	if err != nil {
		return nil, err
	}
	return &ChordRepetition{
		Duration:   dur,
		PostEvents: p.parsePostEvents(p.parseOptionalTremolo()),
	}, nil
}

var validDurationBase = map[int]bool{
	1: true, 2: true, 4: true, 8: true, 16: true, 32: true, 64: true, 128: true,
}

func (p *Parser) parseOptionalDuration() (*Duration, error) {
	if p.cur.Type != TokenUnsigned {
		return nil, nil
	}
	base, err := strconv.Atoi(p.cur.Literal)
	if err != nil || !validDurationBase[base] {
		return nil, p.errorf("duration 1|2|4|8|16|32|64|128")
	}
	p.nextToken()

	dur := &Duration{Base: base}
	for p.cur.Type == TokenDot {
		dur.Dots++
		p.nextToken()
	}
	return dur, nil
}

// parseOptionalTremolo reads a `:N` suffix. A bare colon yields
// subdivision 0, matching an unmeasured tremolo.
func (p *Parser) parseOptionalTremolo() []PostEvent {
	if p.cur.Type != TokenColon {
		return nil
	}
	p.nextToken()
	sub := 0
	if p.cur.Type == TokenUnsigned {
		sub, _ = strconv.Atoi(p.cur.Literal)
		p.nextToken()
	}
	return []PostEvent{Tremolo{Subdivision: sub}}
}

func (p *Parser) parsePostEvents(events []PostEvent) []PostEvent {
	for {
		switch p.cur.Type {
		case TokenTilde:
			p.nextToken()
			events = append(events, Tie{})
		case TokenParenOpen:
			p.nextToken()
			events = append(events, SlurStart{})
		case TokenParenClose:
			p.nextToken()
			events = append(events, SlurEnd{})
		case TokenEscapedParenOpen:
			p.nextToken()
			events = append(events, PhrasingSlurStart{})
		case TokenEscapedParenClose:
			p.nextToken()
			events = append(events, PhrasingSlurEnd{})
		case TokenBracketOpen:
			p.nextToken()
			events = append(events, BeamStart{})
		case TokenBracketClose:
			p.nextToken()
			events = append(events, BeamEnd{})
		case TokenEscapedAngleOpen:
			p.nextToken()
			events = append(events, Crescendo{})
		case TokenEscapedAngleClose:
			p.nextToken()
			events = append(events, Decrescendo{})
		case TokenEscapedExclamation:
			p.nextToken()
			events = append(events, HairpinEnd{})
		case TokenEscapedUnsigned:
			n, _ := strconv.Atoi(p.cur.Literal)
			p.nextToken()
			events = append(events, StringNumber{Direction: DirNeutral, Number: n})
		case TokenCommand:
			name := p.cur.Literal
			if IsDynamicName(name) {
				p.nextToken()
				events = append(events, Dynamic{Name: name})
			} else if IsOrnamentOrScriptName(name) {
				p.nextToken()
				events = append(events, NamedArticulation{Direction: DirNeutral, Name: name})
			} else {
				return events
			}
		case TokenDash, TokenCaret, TokenUnderscore:
			ev, ok := p.parseDirectedPostEvent()
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// parseDirectedPostEvent handles `-X`, `^X`, `_X`. The direction prefix is
// only consumed when the following token forms a valid post-event.
func (p *Parser) parseDirectedPostEvent() (PostEvent, bool) {
	var dir Direction
	switch p.cur.Type {
	case TokenDash:
		dir = DirNeutral
	case TokenCaret:
		dir = DirUp
	case TokenUnderscore:
		dir = DirDown
	}

	switch p.peek.Type {
	case TokenDot, TokenDash, TokenAngleClose, TokenCaret, TokenPlus,
		TokenExclamation, TokenUnderscore:
		script := ScriptAbbreviation(p.peek.Literal[0])
		p.nextToken()
		p.nextToken()
		return Articulation{Direction: dir, Script: script}, true
	case TokenUnsigned:
		n, err := strconv.Atoi(p.peek.Literal)
		if err != nil || n > 9 {
			return nil, false
		}
		p.nextToken()
		p.nextToken()
		return Fingering{Direction: dir, Digit: n}, true
	case TokenEscapedUnsigned:
		n, err := strconv.Atoi(p.peek.Literal)
		if err != nil || n > 9 {
			return nil, false
		}
		p.nextToken()
		p.nextToken()
		return StringNumber{Direction: dir, Number: n}, true
	case TokenCommand:
		name := p.peek.Literal
		p.nextToken()
		p.nextToken()
		return NamedArticulation{Direction: dir, Name: name}, true
	}
	return nil, false
}

func (p *Parser) parseTuplet() (Node, error) {
	p.nextToken() // consume \tuplet

	num, err := p.expectUnsigned()
	if err != nil {
		return nil, fmt.Errorf("tuplet ratio: %w", err)
	}
	if err := p.expect(TokenSlash); err != nil {
		return nil, fmt.Errorf("tuplet ratio: %w", err)
	}
	p.nextToken()
	den, err := p.expectUnsigned()
	if err != nil {
		return nil, fmt.Errorf("tuplet ratio: %w", err)
	}

	tuplet := &Tuplet{Num: num, Den: den}
	// An unsigned here is the optional explicit span duration.
	tuplet.Span, err = p.parseOptionalDuration()
	if err != nil {
		return nil, err
	}

	tuplet.Body, err = p.parseBracedSequence()
	if err != nil {
		return nil, err
	}
	return tuplet, nil
}

func (p *Parser) parseGrace(role GraceRole) (Node, error) {
	p.nextToken() // consume command

	grace := &Grace{Role: role}
	if p.cur.Type == TokenBraceOpen {
		body, err := p.parseBracedSequence()
		if err != nil {
			return nil, err
		}
		grace.Body = body
		return grace, nil
	}

	// Single note or chord argument.
	item, err := p.parseMusic()
	if err != nil {
		return nil, err
	}
	grace.Body = &Sequence{Items: []Node{item}}
	return grace, nil
}

func (p *Parser) parseAfterGrace() (Node, error) {
	p.nextToken() // consume \afterGrace

	grace := &Grace{Role: GraceRoleAfterGrace}
	if p.cur.Type == TokenUnsigned && p.peek.Type == TokenSlash {
		num, err := p.expectUnsigned()
		if err != nil {
			return nil, err
		}
		p.nextToken() // consume /
		den, err := p.expectUnsigned()
		if err != nil {
			return nil, fmt.Errorf("afterGrace fraction: %w", err)
		}
		grace.Fraction = &Fraction{Num: num, Den: den}
	}

	main, err := p.parseMusic()
	if err != nil {
		return nil, fmt.Errorf("afterGrace main note: %w", err)
	}
	grace.Main = main

	if p.cur.Type != TokenBraceOpen {
		return nil, p.errorf("{ opening afterGrace sequence")
	}
	grace.Body, err = p.parseBracedSequence()
	if err != nil {
		return nil, err
	}
	return grace, nil
}

func (p *Parser) parseRepeat() (Node, error) {
	p.nextToken() // consume \repeat

	if p.cur.Type != TokenWord {
		return nil, p.errorf("repeat kind volta|unfold|percent")
	}
	kind, ok := RepeatKindFromName(p.cur.Literal)
	if !ok {
		return nil, p.errorf("repeat kind volta|unfold|percent")
	}
	p.nextToken()

	count, err := p.expectUnsigned()
	if err != nil {
		return nil, fmt.Errorf("repeat count: %w", err)
	}

	repeat := &Repeat{Kind: kind, Count: count}
	repeat.Body, err = p.parseBracedSequence()
	if err != nil {
		return nil, err
	}

	if p.cur.Type == TokenCommand && p.cur.Literal == "alternative" {
		p.nextToken()
		if err := p.expect(TokenBraceOpen); err != nil {
			return nil, err
		}
		p.nextToken()
		for p.cur.Type == TokenBraceOpen {
			alt, err := p.parseBracedSequence()
			if err != nil {
				return nil, err
			}
			repeat.Alternatives = append(repeat.Alternatives, alt)
		}
		if err := p.expect(TokenBraceClose); err != nil {
			return nil, p.errorf("} closing alternative list")
		}
		p.nextToken()
	}

	return repeat, nil
}

// parseMarkup captures the markup body as raw source. Nested command words
// and braces inside the block are kept verbatim.
func (p *Parser) parseMarkup() (Node, error) {
	if p.peek.Type == TokenString {
		src := strconv.Quote(p.peek.Literal)
		p.nextToken()
		p.nextToken()
		return &Markup{Source: src}, nil
	}
	src, err := p.captureBracedSource("markup")
	if err != nil {
		return nil, err
	}
	return &Markup{Source: src}, nil
}

func (p *Parser) parseMarkupList() (Node, error) {
	src, err := p.captureBracedSource("markuplist")
	if err != nil {
		return nil, err
	}
	return &MarkupList{Source: src}, nil
}

// captureBracedSource grabs the raw text of the `{ ... }` block that must
// follow the current command token. The lexer has already consumed the
// opening brace as the lookahead token, so the raw read starts right after
// it.
func (p *Parser) captureBracedSource(command string) (string, error) {
	if p.peek.Type != TokenBraceOpen {
		return "", &ParseError{
			Pos:      p.peek.Pos,
			Expected: fmt.Sprintf("{ opening \\%s block", command),
			Found:    p.peek.Type.String(),
		}
	}
	raw := p.lexer.ReadBalanced()
	p.nextToken()
	p.nextToken()
	return strings.TrimSpace(raw), nil
}

var dynamicNames = map[string]bool{
	"ppppp": true, "pppp": true, "ppp": true, "pp": true, "p": true,
	"mp": true, "mf": true,
	"f": true, "ff": true, "fff": true, "ffff": true, "fffff": true,
	"fp": true, "sf": true, "sff": true, "sp": true, "spp": true,
	"sfz": true, "rfz": true, "n": true,
}

// IsDynamicName reports whether a command word is a dynamic mark.
func IsDynamicName(name string) bool {
	return dynamicNames[name]
}

var ornamentOrScriptNames = map[string]bool{
	"trill": true, "prall": true, "mordent": true, "turn": true,
	"reverseturn": true, "fermata": true, "shortfermata": true,
	"longfermata": true, "verylongfermata": true,
	"prallprall": true, "prallmordent": true, "upprall": true,
	"downprall": true, "upmordent": true, "downmordent": true,
	"pralldown": true, "prallup": true, "lineprall": true,
	"staccato": true, "tenuto": true, "accent": true, "marcato": true,
	"staccatissimo": true, "portato": true, "stopped": true,
	"upbow": true, "downbow": true, "open": true, "halfopen": true,
	"flageolet": true, "thumb": true, "snappizzicato": true,
	"espressivo": true, "segno": true, "coda": true, "varcoda": true,
}

// IsOrnamentOrScriptName reports whether a command word attaches to the
// preceding note as an ornament or script.
func IsOrnamentOrScriptName(name string) bool {
	return ornamentOrScriptNames[name]
}
