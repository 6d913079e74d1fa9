package tree

import (
	"fmt"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
)

// A Context is an ordered sequence of children, each a Token or a
// Context, belonging to one lexicon. The root context has a nil parent.
type Context struct {
	parent   *Context
	lexicon  *grammar.Lexicon
	children []Node
}

// NewContext creates an unattached context for the given lexicon.
func NewContext(lexicon *grammar.Lexicon, parent *Context) *Context {
	return &Context{lexicon: lexicon, parent: parent}
}

// Lexicon returns the lexicon that produced this context's tokens.
func (c *Context) Lexicon() *grammar.Lexicon { return c.lexicon }

// SetLexicon changes the root lexicon. Only meaningful on a root context,
// before a full rebuild.
func (c *Context) SetLexicon(lexicon *grammar.Lexicon) { c.lexicon = lexicon }

// Parent returns the enclosing context, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

func (c *Context) setParent(p *Context) { c.parent = p }

// IsRoot reports whether this context is the root of its tree.
func (c *Context) IsRoot() bool { return c.parent == nil }

// Root returns the root context of the tree this context belongs to.
func (c *Context) Root() *Context {
	for !c.IsRoot() {
		c = c.parent
	}
	return c
}

// Len returns the number of children.
func (c *Context) Len() int { return len(c.children) }

// IsEmpty reports whether the context has no children.
func (c *Context) IsEmpty() bool { return len(c.children) == 0 }

// Child returns the i-th child.
func (c *Context) Child(i int) Node { return c.children[i] }

// Children returns the children slice. Callers must not modify it.
func (c *Context) Children() []Node { return c.children }

// Pos returns the position of the first descendant token, or 0 for an
// empty context.
func (c *Context) Pos() int {
	if t := c.FirstToken(); t != nil {
		return t.Pos()
	}
	return 0
}

// End returns the end of the last descendant token, or Pos() for an
// empty context.
func (c *Context) End() int {
	if t := c.LastToken(); t != nil {
		return t.End()
	}
	return c.Pos()
}

// Span returns the context's extent.
func (c *Context) Span() relex.Span { return relex.Span{c.Pos(), c.End()} }

// FirstToken returns the first descendant token, or nil.
func (c *Context) FirstToken() *Token { return firstTokenIn(c) }

// LastToken returns the last descendant token, or nil.
func (c *Context) LastToken() *Token { return lastTokenIn(c) }

// Ancestors returns the chain of enclosing contexts, nearest first.
func (c *Context) Ancestors() []*Context {
	var out []*Context
	for p := c.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// Depth returns the number of ancestors.
func (c *Context) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// --- Mutation ---------------------------------------------------------------

// Append adds a node at the end, adopting it.
func (c *Context) Append(n Node) {
	n.setParent(c)
	c.children = append(c.children, n)
}

// Truncate drops all children from index i on. The removed nodes keep
// their parent link until re-attached elsewhere.
func (c *Context) Truncate(i int) {
	for j := i; j < len(c.children); j++ {
		c.children[j] = nil
	}
	c.children = c.children[:i]
}

// RemoveLast removes the last child.
func (c *Context) RemoveLast() {
	if n := len(c.children); n > 0 {
		c.children[n-1] = nil
		c.children = c.children[:n-1]
	}
}

// RemoveChild removes the given child node, keeping sibling order. A
// linear scan, since the child may be an empty context without a usable
// position.
func (c *Context) RemoveChild(n Node) {
	for i, child := range c.children {
		if child == n {
			copy(c.children[i:], c.children[i+1:])
			c.children[len(c.children)-1] = nil
			c.children = c.children[:len(c.children)-1]
			return
		}
	}
}

// Clear removes all children.
func (c *Context) Clear() { c.Truncate(0) }

// --- Positional lookup ------------------------------------------------------

// IndexOf returns the index of the given child, or -1. Children are
// ordered by position, so the child is located by binary search first and
// verified by identity.
func (c *Context) IndexOf(n Node) int {
	lo, hi := 0, len(c.children)
	pos := n.Pos()
	for lo < hi {
		mid := (lo + hi) / 2
		if c.children[mid].End() <= pos {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// identity scan around the insertion point covers boundary cases
	for i := lo; i < len(c.children); i++ {
		if c.children[i] == n {
			return i
		}
		if c.children[i].Pos() > pos {
			break
		}
	}
	for i := lo - 1; i >= 0; i-- {
		if c.children[i] == n {
			return i
		}
	}
	return -1
}

// Find returns the index of the child at (or to the right of) pos, or -1.
func (c *Context) Find(pos int) int {
	lo, hi := 0, len(c.children)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.children[mid].End() <= pos {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(c.children) {
		return -1
	}
	return lo
}

// FindToken returns the token at or to the right of pos, or nil.
func (c *Context) FindToken(pos int) *Token {
	node := c
	for {
		i := node.Find(pos)
		if i == -1 {
			return nil
		}
		switch x := node.children[i].(type) {
		case *Token:
			return x
		case *Context:
			node = x
		}
	}
}

// FindContext returns the innermost context containing pos (or c itself).
func (c *Context) FindContext(pos int) *Context {
	node := c
	for {
		i := node.Find(pos)
		if i == -1 {
			return node
		}
		sub, ok := node.children[i].(*Context)
		if !ok || sub.Pos() > pos {
			return node
		}
		node = sub
	}
}

// FindTokenAfter returns the first token lying completely right of pos,
// or nil.
func (c *Context) FindTokenAfter(pos int) *Token {
	node := c
	for {
		lo, hi := 0, len(node.children)
		for lo < hi {
			mid := (lo + hi) / 2
			n := node.children[mid]
			start := n.Pos()
			if sub, ok := n.(*Context); ok {
				if t := sub.LastToken(); t != nil {
					start = t.Pos()
				}
			}
			if start <= pos {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo >= len(node.children) {
			return nil
		}
		switch x := node.children[lo].(type) {
		case *Token:
			return x
		case *Context:
			node = x
		}
	}
}

// FindTokenBefore returns the last token lying completely left of pos,
// or nil.
func (c *Context) FindTokenBefore(pos int) *Token {
	node := c
	for {
		lo, hi := 0, len(node.children)
		for lo < hi {
			mid := (lo + hi) / 2
			n := node.children[mid]
			end := n.End()
			if sub, ok := n.(*Context); ok {
				if t := sub.FirstToken(); t != nil {
					end = t.End()
				}
			}
			if pos < end {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		if lo == 0 {
			return nil
		}
		switch x := node.children[lo-1].(type) {
		case *Token:
			return x
		case *Context:
			node = x
		}
	}
}

// Tokens returns all descendant tokens in document order.
func (c *Context) Tokens() []*Token {
	var out []*Token
	var walk func(*Context)
	walk = func(ctx *Context) {
		for _, n := range ctx.children {
			switch x := n.(type) {
			case *Token:
				out = append(out, x)
			case *Context:
				walk(x)
			}
		}
	}
	walk(c)
	return out
}

// Equal compares two trees structurally: lexicons, and for every token
// text, position and action.
func (c *Context) Equal(other *Context) bool {
	if c.lexicon != other.lexicon || len(c.children) != len(other.children) {
		return false
	}
	for i, n := range c.children {
		switch x := n.(type) {
		case *Token:
			o, ok := other.children[i].(*Token)
			if !ok || x.pos != o.pos || x.text != o.text || x.action != o.action ||
				x.grouped != o.grouped || x.group != o.group {
				return false
			}
		case *Context:
			o, ok := other.children[i].(*Context)
			if !ok || !x.Equal(o) {
				return false
			}
		}
	}
	return true
}

func (c *Context) String() string {
	name := "<nil>"
	if c.lexicon != nil {
		name = c.lexicon.FullName()
	}
	return fmt.Sprintf("<Context %s at %d-%d (%d children)>", name, c.Pos(), c.End(), len(c.children))
}
