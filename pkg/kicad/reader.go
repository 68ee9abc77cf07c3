package kicad

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// Node is one parsed s-expression: either an atom or a list. Board documents
// are a single top-level list.
type Node struct {
	Atom string
	List []Node
	leaf bool
}

// IsLeaf reports whether the node is a bare atom.
func (n Node) IsLeaf() bool { return n.leaf }

// Name returns the head atom of a list node, or the atom itself.
func (n Node) Name() string {
	if n.leaf {
		return n.Atom
	}
	if len(n.List) == 0 {
		return ""
	}
	return n.List[0].Atom
}

// Children returns every child list whose head atom matches name.
func (n Node) Children(name string) []Node {
	var out []Node
	for _, c := range n.List {
		if !c.leaf && c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first child list with the given head atom.
func (n Node) Child(name string) (Node, bool) {
	for _, c := range n.List {
		if !c.leaf && c.Name() == name {
			return c, true
		}
	}
	return Node{}, false
}

// Float parses the i-th element (0 is the head atom) as a number.
func (n Node) Float(i int) (float64, error) {
	if i >= len(n.List) || !n.List[i].leaf {
		return 0, fmt.Errorf("kicad: %s: no numeric field %d", n.Name(), i)
	}
	v, err := strconv.ParseFloat(n.List[i].Atom, 64)
	if err != nil {
		return 0, fmt.Errorf("kicad: %s: field %d: %w", n.Name(), i, err)
	}
	return v, nil
}

// Str returns the i-th element as its atom text (quotes already stripped).
func (n Node) Str(i int) string {
	if i >= len(n.List) || !n.List[i].leaf {
		return ""
	}
	return n.List[i].Atom
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLeft
	tokRight
	tokAtom
)

type token struct {
	kind tokenKind
	text string
}

// lexer tokenizes s-expressions from a stream without reading ahead of the
// current token.
type lexer struct {
	r      *bufio.Reader
	peeked *rune
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r)}
}

func (l *lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked = &ch
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	if l.peeked != nil {
		ch := *l.peeked
		l.peeked = nil
		return ch, nil
	}
	ch, _, err := l.r.ReadRune()
	return ch, err
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.peek()
		if err == io.EOF {
			return token{kind: tokEOF}, nil
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) {
			l.read()
			continue
		}
		break
	}

	ch, err := l.peek()
	if err != nil {
		return token{}, err
	}
	switch ch {
	case '(':
		l.read()
		return token{kind: tokLeft}, nil
	case ')':
		l.read()
		return token{kind: tokRight}, nil
	case '"':
		return l.readString()
	default:
		return l.readSymbol()
	}
}

func (l *lexer) readString() (token, error) {
	l.read() // opening quote
	var out []rune
	for {
		ch, err := l.read()
		if err != nil {
			return token{}, fmt.Errorf("kicad: unterminated string")
		}
		if ch == '\\' {
			esc, err := l.read()
			if err != nil {
				return token{}, fmt.Errorf("kicad: unterminated escape")
			}
			out = append(out, esc)
			continue
		}
		if ch == '"' {
			return token{kind: tokAtom, text: string(out)}, nil
		}
		out = append(out, ch)
	}
}

func (l *lexer) readSymbol() (token, error) {
	var out []rune
	for {
		ch, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		out = append(out, ch)
	}
	return token{kind: tokAtom, text: string(out)}, nil
}

// Parse reads the single top-level s-expression of a board document.
func Parse(r io.Reader) (Node, error) {
	lx := newLexer(r)
	tok, err := lx.next()
	if err != nil {
		return Node{}, err
	}
	if tok.kind == tokEOF {
		return Node{}, fmt.Errorf("kicad: empty document")
	}
	return parseNode(lx, tok)
}

func parseNode(lx *lexer, tok token) (Node, error) {
	switch tok.kind {
	case tokAtom:
		return Node{Atom: tok.text, leaf: true}, nil
	case tokLeft:
		var children []Node
		for {
			next, err := lx.next()
			if err != nil {
				return Node{}, err
			}
			switch next.kind {
			case tokRight:
				return Node{List: children}, nil
			case tokEOF:
				return Node{}, fmt.Errorf("kicad: unexpected EOF inside list")
			default:
				child, err := parseNode(lx, next)
				if err != nil {
					return Node{}, err
				}
				children = append(children, child)
			}
		}
	case tokRight:
		return Node{}, fmt.Errorf("kicad: unexpected ')'")
	default:
		return Node{}, fmt.Errorf("kicad: unexpected EOF")
	}
}
