package tree

import (
	"fmt"

	"github.com/npillmayer/relex"
)

// A Node is either a Token or a Context.
type Node interface {
	Pos() int
	End() int
	Parent() *Context
	Span() relex.Span
	setParent(*Context)
}

// A Token represents a lexed piece of text. Tokens are lightweight and
// owned by exactly one context.
type Token struct {
	parent  *Context
	pos     int
	text    string
	action  relex.Action
	grouped bool
	group   int
}

// NewToken creates an unattached token.
func NewToken(pos int, text string, action relex.Action) *Token {
	return &Token{pos: pos, text: text, action: action}
}

// NewGroupedToken creates an unattached token belonging to a group. The
// index is the token's position in the group; the last member carries a
// negative index (members of a three-group have indices 0, 1, -2).
func NewGroupedToken(index int, pos int, text string, action relex.Action) *Token {
	return &Token{pos: pos, text: text, action: action, grouped: true, group: index}
}

// Pos returns the token's position in the text.
func (t *Token) Pos() int { return t.pos }

// End returns the position just behind the token.
func (t *Token) End() int { return t.pos + len(t.text) }

// Span returns the token's extent.
func (t *Token) Span() relex.Span { return relex.Span{t.pos, t.End()} }

// Text returns the token's text.
func (t *Token) Text() string { return t.text }

// Action returns the action the producing rule attached to this token.
func (t *Token) Action() relex.Action { return t.action }

// Parent returns the context owning this token.
func (t *Token) Parent() *Context { return t.parent }

func (t *Token) setParent(c *Context) { t.parent = c }

// Shift moves the token by offset positions. Used by the builder when
// reusing tokens right of an edit.
func (t *Token) Shift(offset int) { t.pos += offset }

// IsGrouped reports whether the token originated from a match that
// produced several tokens.
func (t *Token) IsGrouped() bool { return t.grouped }

// GroupIndex returns the token's index within its group; the last member
// carries a negative index. Zero for ungrouped tokens.
func (t *Token) GroupIndex() int { return t.group }

// GroupStart returns the first token of the group this token belongs to
// (the token itself if ungrouped).
func (t *Token) GroupStart() *Token {
	if !t.grouped {
		return t
	}
	i := t.parent.IndexOf(t)
	if t.group < 0 {
		return t.parent.children[i+t.group].(*Token)
	}
	return t.parent.children[i-t.group].(*Token)
}

// GroupEnd returns the last token of the group this token belongs to.
func (t *Token) GroupEnd() *Token {
	if !t.grouped || t.group < 0 {
		return t
	}
	i := t.parent.IndexOf(t)
	for j := i + 1; j < len(t.parent.children); j++ {
		tok := t.parent.children[j].(*Token)
		if tok.group < 0 {
			return tok
		}
	}
	return t
}

// Equals reports whether the other token has the same text and action and
// the same context ancestry. Positions are not compared.
func (t *Token) Equals(other *Token) bool {
	return t.text == other.text &&
		t.action == other.action &&
		t.StateMatches(other)
}

// StateMatches reports whether the other token has the same lexicons in
// its ancestors.
func (t *Token) StateMatches(other *Token) bool {
	if t == other {
		return true
	}
	c1, c2 := t.parent, other.parent
	for c1 != nil && c2 != nil {
		if c1 == c2 {
			return true
		}
		if c1.lexicon != c2.lexicon {
			return false
		}
		c1, c2 = c1.parent, c2.parent
	}
	return c1 == nil && c2 == nil
}

// Next returns the token following this one in document order, or nil.
func (t *Token) Next() *Token {
	var n Node = t
	for {
		p := n.Parent()
		if p == nil {
			return nil
		}
		i := p.IndexOf(n)
		for j := i + 1; j < len(p.children); j++ {
			if tok := firstTokenIn(p.children[j]); tok != nil {
				return tok
			}
		}
		n = p
	}
}

// Prev returns the token preceding this one in document order, or nil.
func (t *Token) Prev() *Token {
	var n Node = t
	for {
		p := n.Parent()
		if p == nil {
			return nil
		}
		i := p.IndexOf(n)
		for j := i - 1; j >= 0; j-- {
			if tok := lastTokenIn(p.children[j]); tok != nil {
				return tok
			}
		}
		n = p
	}
}

// Ancestors returns the chain of enclosing contexts, nearest first.
func (t *Token) Ancestors() []*Context {
	var out []*Context
	for c := t.parent; c != nil; c = c.parent {
		out = append(out, c)
	}
	return out
}

func (t *Token) String() string {
	return fmt.Sprintf("<Token %q at %d:%d (%v)>", t.text, t.pos, t.End(), t.action)
}

func firstTokenIn(n Node) *Token {
	for {
		switch x := n.(type) {
		case *Token:
			return x
		case *Context:
			if len(x.children) == 0 {
				return nil
			}
			n = x.children[0]
		}
	}
}

func lastTokenIn(n Node) *Token {
	for {
		switch x := n.(type) {
		case *Token:
			return x
		case *Context:
			if len(x.children) == 0 {
				return nil
			}
			n = x.children[len(x.children)-1]
		}
	}
}
