// Package sexpr implements a small s-expression reader: lists, quoted
// strings, and bare atoms, with semicolon line comments. It is a strict
// structural reader, not an evaluator; config content is never executed.
package sexpr

import "fmt"

// Kind discriminates the node variants.
type Kind int

const (
	KindAtom Kind = iota
	KindString
	KindList
)

// Node is one parsed expression.
type Node struct {
	Kind Kind
	Text string // atom name or decoded string value
	List []Node // children, for KindList
}

// IsAtom reports whether the node is the named atom.
func (n Node) IsAtom(name string) bool {
	return n.Kind == KindAtom && n.Text == name
}

// SyntaxError describes a parse failure with its byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// lexer walks the input byte by byte
type lexer struct {
	input string
	pos   int
}

// skipBlank advances past whitespace and ; line comments.
func (l *lexer) skipBlank() {
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == ';':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// readString decodes a double-quoted string. Recognized escapes are
// \n, \t, \r, \" and \\; any other escaped character stands for itself,
// so "\\." decodes to a backslash followed by a dot.
func (l *lexer) readString() (string, error) {
	start := l.pos
	l.pos++ // opening quote
	var out []byte
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return string(out), nil
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return "", &SyntaxError{Pos: start, Msg: "unterminated string"}
			}
			switch l.input[l.pos] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, l.input[l.pos])
			}
			l.pos++
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return "", &SyntaxError{Pos: start, Msg: "unterminated string"}
}

// readAtom reads a run of non-delimiter characters.
func (l *lexer) readAtom() string {
	start := l.pos
	for l.pos < len(l.input) && !isDelim(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '"', ';':
		return true
	}
	return false
}

// Parse reads exactly one expression from input. Trailing whitespace and
// comments are permitted; any other trailing content is an error.
func Parse(input string) (Node, error) {
	l := &lexer{input: input}
	node, err := parseExpr(l)
	if err != nil {
		return Node{}, err
	}
	l.skipBlank()
	if l.pos < len(l.input) {
		return Node{}, &SyntaxError{Pos: l.pos, Msg: "unexpected content after expression"}
	}
	return node, nil
}

func parseExpr(l *lexer) (Node, error) {
	l.skipBlank()
	switch c := l.peek(); {
	case c == 0:
		return Node{}, &SyntaxError{Pos: l.pos, Msg: "unexpected end of input"}
	case c == '(':
		return parseList(l)
	case c == ')':
		return Node{}, &SyntaxError{Pos: l.pos, Msg: "unexpected ')'"}
	case c == '"':
		s, err := l.readString()
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindString, Text: s}, nil
	default:
		return Node{Kind: KindAtom, Text: l.readAtom()}, nil
	}
}

func parseList(l *lexer) (Node, error) {
	open := l.pos
	l.pos++ // opening paren
	list := Node{Kind: KindList}
	for {
		l.skipBlank()
		switch l.peek() {
		case 0:
			return Node{}, &SyntaxError{Pos: open, Msg: "unterminated list"}
		case ')':
			l.pos++
			return list, nil
		default:
			child, err := parseExpr(l)
			if err != nil {
				return Node{}, err
			}
			list.List = append(list.List, child)
		}
	}
}
