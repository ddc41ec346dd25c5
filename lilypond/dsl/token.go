// Package dsl implements a lexer and recursive-descent parser for a subset
// of the LilyPond music engraving language.
package dsl

import "fmt"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenNote               // c, dis, aes, ...
	TokenRest               // r
	TokenSkip               // s
	TokenChordRepeat        // q
	TokenWord               // volta, unfold, other bare words
	TokenUnsigned           // 4, 16, 128
	TokenString             // "..."
	TokenCommand            // \tuplet, \grace, \trill, ... (literal without backslash)
	TokenEscapedUnsigned    // \1 .. \9 string numbers
	TokenBraceOpen          // {
	TokenBraceClose         // }
	TokenAngleOpen          // <
	TokenAngleClose         // >
	TokenQuote              // '
	TokenComma              // ,
	TokenDot                // .
	TokenColon              // :
	TokenSlash              // /
	TokenPipe               // |
	TokenTilde              // ~
	TokenParenOpen          // (
	TokenParenClose         // )
	TokenBracketOpen        // [
	TokenBracketClose       // ]
	TokenDash               // -
	TokenCaret              // ^
	TokenUnderscore         // _
	TokenExclamation        // !
	TokenQuestion           // ?
	TokenEquals             // =
	TokenPlus               // +
	TokenEscapedParenOpen   // \(
	TokenEscapedParenClose  // \)
	TokenEscapedAngleOpen   // \<
	TokenEscapedAngleClose  // \>
	TokenEscapedExclamation // \!
)

var tokenNames = map[TokenType]string{
	TokenEOF:                "EOF",
	TokenIllegal:            "ILLEGAL",
	TokenNote:               "NOTE",
	TokenRest:               "REST",
	TokenSkip:               "SKIP",
	TokenChordRepeat:        "CHORD-REPEAT",
	TokenWord:               "WORD",
	TokenUnsigned:           "UNSIGNED",
	TokenString:             "STRING",
	TokenCommand:            "COMMAND",
	TokenEscapedUnsigned:    "ESCAPED-UNSIGNED",
	TokenBraceOpen:          "{",
	TokenBraceClose:         "}",
	TokenAngleOpen:          "<",
	TokenAngleClose:         ">",
	TokenQuote:              "'",
	TokenComma:              ",",
	TokenDot:                ".",
	TokenColon:              ":",
	TokenSlash:              "/",
	TokenPipe:               "|",
	TokenTilde:              "~",
	TokenParenOpen:          "(",
	TokenParenClose:         ")",
	TokenBracketOpen:        "[",
	TokenBracketClose:       "]",
	TokenDash:               "-",
	TokenCaret:              "^",
	TokenUnderscore:         "_",
	TokenExclamation:        "!",
	TokenQuestion:           "?",
	TokenEquals:             "=",
	TokenPlus:               "+",
	TokenEscapedParenOpen:   `\(`,
	TokenEscapedParenClose:  `\)`,
	TokenEscapedAngleOpen:   `\<`,
	TokenEscapedAngleClose:  `\>`,
	TokenEscapedExclamation: `\!`,
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single token from the lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d}", t.Type, t.Literal, t.Pos)
}

// noteNames maps Dutch note names to (pitch letter, alteration in
// semitones). Covers sharps (is), flats (es), double alterations, the
// contracted flat forms for a and e, and quarter-tone suffixes ih/eh.
var noteNames = map[string]struct {
	Letter string
	Alter  float64
}{
	"c": {"c", 0}, "d": {"d", 0}, "e": {"e", 0}, "f": {"f", 0},
	"g": {"g", 0}, "a": {"a", 0}, "b": {"b", 0},
	"cis": {"c", 1}, "dis": {"d", 1}, "eis": {"e", 1}, "fis": {"f", 1},
	"gis": {"g", 1}, "ais": {"a", 1}, "bis": {"b", 1},
	"ces": {"c", -1}, "des": {"d", -1}, "ees": {"e", -1}, "fes": {"f", -1},
	"ges": {"g", -1}, "aes": {"a", -1}, "bes": {"b", -1},
	"es": {"e", -1}, "as": {"a", -1},
	"cisis": {"c", 2}, "disis": {"d", 2}, "eisis": {"e", 2}, "fisis": {"f", 2},
	"gisis": {"g", 2}, "aisis": {"a", 2}, "bisis": {"b", 2},
	"ceses": {"c", -2}, "deses": {"d", -2}, "eeses": {"e", -2}, "feses": {"f", -2},
	"geses": {"g", -2}, "aeses": {"a", -2}, "beses": {"b", -2},
	"eses": {"e", -2}, "ases": {"a", -2},
	"cih": {"c", 0.5}, "dih": {"d", 0.5}, "eih": {"e", 0.5}, "fih": {"f", 0.5},
	"gih": {"g", 0.5}, "aih": {"a", 0.5}, "bih": {"b", 0.5},
	"ceh": {"c", -0.5}, "deh": {"d", -0.5}, "eeh": {"e", -0.5}, "feh": {"f", -0.5},
	"geh": {"g", -0.5}, "aeh": {"a", -0.5}, "beh": {"b", -0.5},
}

// IsNoteName reports whether word is a Dutch note name.
func IsNoteName(word string) bool {
	_, ok := noteNames[word]
	return ok
}

// LookupNoteName resolves a Dutch note name to its pitch letter and
// alteration in semitones.
func LookupNoteName(word string) (letter string, alter float64, ok bool) {
	n, ok := noteNames[word]
	return n.Letter, n.Alter, ok
}
