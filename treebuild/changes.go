package treebuild

import (
	"fmt"

	"github.com/npillmayer/relex/grammar"
)

// Changes stores pending changes to a document, merging consecutive
// edits into one range so that a single rebuild covers them all. Used by
// the work package to coalesce submissions.
type Changes struct {
	Text        string
	RootLexicon *grammar.Lexicon // non-nil requests a root lexicon change
	Position    int              // -1 means no text is altered
	Removed     int
	Added       int
}

// NewChanges returns an empty change set.
func NewChanges() *Changes {
	return &Changes{Position: -1}
}

// HasChanges reports whether there is anything to do.
func (c *Changes) HasChanges() bool {
	return c.Position != -1 || c.RootLexicon != nil
}

// ChangeRootLexicon records a root lexicon change.
func (c *Changes) ChangeRootLexicon(text string, root *grammar.Lexicon) {
	c.Text = text
	c.RootLexicon = root
}

// ChangeContents merges a new text change with the already recorded
// ones. Position is where characters were removed and added; the merged
// range uses the earliest position and widens the removed/added counts
// by the parts that do not overlap the already recorded change.
func (c *Changes) ChangeContents(text string, position, removed, added int) {
	c.Text = text
	if c.Position == -1 {
		c.Position = position
		c.Removed = removed
		c.Added = added
		return
	}
	var offset int
	if position+removed < c.Position {
		offset = c.Position - position - removed
	} else if position > c.Position+c.Added {
		offset = position - c.Position - c.Added
	}
	start := position
	if c.Position > start {
		start = c.Position
	}
	end := position + removed
	if c.Position+c.Added < end {
		end = c.Position + c.Added
	}
	if end > start {
		offset -= end - start
	}
	if position < c.Position {
		c.Position = position
	}
	c.Removed += removed + offset
	c.Added += added + offset
}

// NewPosition returns how the recorded changes shift an older position.
func (c *Changes) NewPosition(pos int) int {
	if c.Position == -1 || pos < c.Position {
		return pos
	}
	if pos < c.Position+c.Removed {
		return c.Position + c.Added
	}
	return pos - c.Removed + c.Added
}

func (c *Changes) String() string {
	if !c.HasChanges() {
		return "<Changes (none)>"
	}
	s := "<Changes"
	if c.RootLexicon != nil {
		s += " root:" + c.RootLexicon.FullName()
	}
	if c.Position != -1 {
		s += fmt.Sprintf(" text:%d -%d +%d", c.Position, c.Removed, c.Added)
	}
	return s + ">"
}
