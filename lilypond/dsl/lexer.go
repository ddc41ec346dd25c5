package dsl

// Lexer tokenizes LilyPond source text.
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	// Skip from % to end of line
	for l.ch != 0 && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	// Skip %{ ... %}
	for l.ch != 0 {
		if l.ch == '%' && l.peekChar() == '}' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		if l.ch == '%' {
			if l.peekChar() == '{' {
				l.readChar()
				l.readChar()
				l.skipBlockComment()
			} else {
				l.skipLineComment()
			}
			continue
		}
		break
	}

	pos := l.pos
	var tok Token

	switch l.ch {
	case 0:
		tok = Token{Type: TokenEOF, Literal: "", Pos: pos}
	case '{':
		tok = Token{Type: TokenBraceOpen, Literal: "{", Pos: pos}
		l.readChar()
	case '}':
		tok = Token{Type: TokenBraceClose, Literal: "}", Pos: pos}
		l.readChar()
	case '<':
		tok = Token{Type: TokenAngleOpen, Literal: "<", Pos: pos}
		l.readChar()
	case '>':
		tok = Token{Type: TokenAngleClose, Literal: ">", Pos: pos}
		l.readChar()
	case '\'':
		tok = Token{Type: TokenQuote, Literal: "'", Pos: pos}
		l.readChar()
	case ',':
		tok = Token{Type: TokenComma, Literal: ",", Pos: pos}
		l.readChar()
	case '.':
		tok = Token{Type: TokenDot, Literal: ".", Pos: pos}
		l.readChar()
	case ':':
		tok = Token{Type: TokenColon, Literal: ":", Pos: pos}
		l.readChar()
	case '/':
		tok = Token{Type: TokenSlash, Literal: "/", Pos: pos}
		l.readChar()
	case '|':
		tok = Token{Type: TokenPipe, Literal: "|", Pos: pos}
		l.readChar()
	case '~':
		tok = Token{Type: TokenTilde, Literal: "~", Pos: pos}
		l.readChar()
	case '(':
		tok = Token{Type: TokenParenOpen, Literal: "(", Pos: pos}
		l.readChar()
	case ')':
		tok = Token{Type: TokenParenClose, Literal: ")", Pos: pos}
		l.readChar()
	case '[':
		tok = Token{Type: TokenBracketOpen, Literal: "[", Pos: pos}
		l.readChar()
	case ']':
		tok = Token{Type: TokenBracketClose, Literal: "]", Pos: pos}
		l.readChar()
	case '-':
		tok = Token{Type: TokenDash, Literal: "-", Pos: pos}
		l.readChar()
	case '^':
		tok = Token{Type: TokenCaret, Literal: "^", Pos: pos}
		l.readChar()
	case '_':
		tok = Token{Type: TokenUnderscore, Literal: "_", Pos: pos}
		l.readChar()
	case '!':
		tok = Token{Type: TokenExclamation, Literal: "!", Pos: pos}
		l.readChar()
	case '?':
		tok = Token{Type: TokenQuestion, Literal: "?", Pos: pos}
		l.readChar()
	case '=':
		tok = Token{Type: TokenEquals, Literal: "=", Pos: pos}
		l.readChar()
	case '+':
		tok = Token{Type: TokenPlus, Literal: "+", Pos: pos}
		l.readChar()
	case '"':
		l.readChar() // consume opening quote
		literal := l.readString('"')
		tok = Token{Type: TokenString, Literal: literal, Pos: pos}
	case '\\':
		return l.readEscaped(pos)
	default:
		if isDigit(l.ch) {
			num := l.readNumber()
			return Token{Type: TokenUnsigned, Literal: num, Pos: pos}
		} else if isWordStart(l.ch) {
			return l.classifyWord(l.readWord(), pos)
		}
		tok = Token{Type: TokenIllegal, Literal: string(l.ch), Pos: pos}
		l.readChar()
	}

	return tok
}

// readEscaped reads a backslash-introduced token: a command word, a string
// number \1..\9, or one of the escaped punctuation forms.
func (l *Lexer) readEscaped(pos int) Token {
	l.readChar() // consume backslash
	switch {
	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenEscapedParenOpen, Literal: `\(`, Pos: pos}
	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenEscapedParenClose, Literal: `\)`, Pos: pos}
	case l.ch == '<':
		l.readChar()
		return Token{Type: TokenEscapedAngleOpen, Literal: `\<`, Pos: pos}
	case l.ch == '>':
		l.readChar()
		return Token{Type: TokenEscapedAngleClose, Literal: `\>`, Pos: pos}
	case l.ch == '!':
		l.readChar()
		return Token{Type: TokenEscapedExclamation, Literal: `\!`, Pos: pos}
	case isDigit(l.ch):
		num := l.readNumber()
		return Token{Type: TokenEscapedUnsigned, Literal: num, Pos: pos}
	case isWordStart(l.ch):
		return Token{Type: TokenCommand, Literal: l.readWord(), Pos: pos}
	}
	tok := Token{Type: TokenIllegal, Literal: "\\" + string(l.ch), Pos: pos}
	l.readChar()
	return tok
}

func (l *Lexer) classifyWord(word string, pos int) Token {
	switch {
	case word == "r":
		return Token{Type: TokenRest, Literal: word, Pos: pos}
	case word == "s":
		return Token{Type: TokenSkip, Literal: word, Pos: pos}
	case word == "q":
		return Token{Type: TokenChordRepeat, Literal: word, Pos: pos}
	case IsNoteName(word):
		return Token{Type: TokenNote, Literal: word, Pos: pos}
	}
	return Token{Type: TokenWord, Literal: word, Pos: pos}
}

func (l *Lexer) readWord() string {
	start := l.pos
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readString(quote byte) string {
	var result []byte
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				result = append(result, l.ch)
			}
		} else {
			result = append(result, l.ch)
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar() // consume closing quote
	}
	return string(result)
}

// ReadBalanced captures raw input up to the brace matching an already
// consumed opening brace. Nested braces are kept verbatim; the closing
// brace is consumed but not included.
func (l *Lexer) ReadBalanced() string {
	start := l.pos
	depth := 1
	for l.ch != 0 && depth > 0 {
		if l.ch == '{' {
			depth++
		} else if l.ch == '}' {
			depth--
			if depth == 0 {
				end := l.pos
				l.readChar() // consume closing brace
				return l.input[start:end]
			}
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isWordStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens
}
