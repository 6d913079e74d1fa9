package tree

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Dump writes an indented representation of the tree to w, for debugging.
func Dump(w io.Writer, root *Context) {
	var walk func(n Node, level int)
	walk = func(n Node, level int) {
		for i := 0; i < level; i++ {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprintln(w, n)
		if c, ok := n.(*Context); ok {
			for _, child := range c.children {
				walk(child, level+1)
			}
		}
	}
	walk(root, 0)
	tracer().Debugf("dumped tree at %v", root.Span())
}

// LeveledList converts a tree to a pterm leveled list, for rendering with
// pterm.DefaultTree:
//
//    ll := tree.LeveledList(root)
//    pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
//
func LeveledList(root *Context) pterm.LeveledList {
	var ll pterm.LeveledList
	var walk func(n Node, level int)
	walk = func(n Node, level int) {
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: fmt.Sprint(n)})
		if c, ok := n.(*Context); ok {
			for _, child := range c.children {
				walk(child, level+1)
			}
		}
	}
	walk(root, 0)
	return ll
}
