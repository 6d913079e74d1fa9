package treebuild

import (
	"errors"
	"strings"

	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/lexer"
	"github.com/npillmayer/relex/tree"
)

// ErrInterrupted is returned by Rebuild when the interrupt hook fired.
// The tree is left unchanged; the caller coalesces the pending edits and
// restarts.
var ErrInterrupted = errors.New("treebuild: rebuild interrupted")

// backupTokens is the number of tokens the builder conservatively walks
// left of an edit before restarting the lexer, in case a longer match
// could reach over the restart point. Going back to just before a
// newline, when there is one, serves the same purpose for line-oriented
// rules.
const backupTokens = 10

// A Builder builds and incrementally rebuilds a token tree. The root
// context object stays the same for the lifetime of the builder; Rebuild
// splices changed parts into it in place, in one step after the replay.
//
// After Build or Rebuild return, Start, End and OpenLexicons describe the
// re-tokenized region and the lexicons left open at the end of the text.
// When a rebuild reused the old tail, the open lexicons of the previous
// build remain valid and are retained.
type Builder struct {
	Emitter
	root     *tree.Context
	start    int
	end      int
	lexicons []*grammar.Lexicon
	intr     func() bool
}

// New creates a Builder with the given root lexicon.
func New(rootLexicon *grammar.Lexicon) *Builder {
	return &Builder{root: tree.NewContext(rootLexicon, nil)}
}

// Root returns the root context. The object is stable for the builder's
// lifetime.
func (b *Builder) Root() *tree.Context { return b.root }

// Start returns the start of the region touched by the last (re)build.
func (b *Builder) Start() int { return b.start }

// End returns the end of the region touched by the last (re)build.
func (b *Builder) End() int { return b.end }

// OpenLexicons returns the lexicons left open at the end of the text,
// outermost first, excluding the root lexicon. Unterminated constructs
// (an unclosed string, say) show up here.
func (b *Builder) OpenLexicons() []*grammar.Lexicon { return b.lexicons }

// SetInterrupt installs a hook the builder polls between events. When it
// returns true, the rebuild stops at the next event boundary and returns
// ErrInterrupted without touching the tree.
func (b *Builder) SetInterrupt(fn func() bool) { b.intr = fn }

// Tree is a convenience method building the full text and returning the
// root context.
func (b *Builder) Tree(text string) (*tree.Context, error) {
	if err := b.Build(text); err != nil {
		return nil, err
	}
	return b.root, nil
}

// Build tokenizes the full text.
func (b *Builder) Build(text string) error {
	return b.Rebuild(text, 0, 0, len(text))
}

// Rebuild re-tokenizes the modified part of the text and updates the
// tree. The text is the new text; at position start, removed characters
// were replaced by added characters. The touched region reported in
// Start/End can be larger than (start, start+added).
func (b *Builder) Rebuild(text string, start, removed, added int) error {
	r := &rebuild{b: b, text: text, editStart: start, offset: added - removed}
	r.findTail(start + removed)
	r.findRestart(start)
	if err := r.replay(); err != nil {
		return err
	}
	b.Emit(BuildEvent{Name: EventReplace})
	r.splice()
	b.start, b.end = r.reportStart, r.reportEnd
	if !r.attached {
		b.lexicons = r.open
	}
	invalid := b.root
	if r.head {
		invalid = r.realSpine[len(r.realSpine)-1]
	}
	b.Emit(BuildEvent{Name: EventInvalidate, Node: invalid})
	b.Emit(BuildEvent{Name: EventUpdated, Start: b.start, End: b.end})
	tracer().Debugf("rebuilt [%d,%d), open lexicons: %d", b.start, b.end, len(b.lexicons))
	return nil
}

// rebuild holds the state of one Rebuild run. New nodes go into a
// staging spine mirroring the restart ancestry; the real tree is only
// mutated in splice, after the replay completed.
type rebuild struct {
	b         *Builder
	text      string
	editStart int
	offset    int

	head      bool
	restart   *tree.Token
	realSpine []*tree.Context // restart ancestry, root first
	headToks  []lexer.Lexeme  // old tokens at/after the restart point
	headIdx   int
	headLive  bool

	tail      bool
	tailToken *tree.Token
	tailPos   int // shifted position of tailToken

	spine      []*tree.Context // staging spine, root mirror first
	cur        *tree.Context
	restartPos int

	attached    bool
	reportStart int
	reportEnd   int
	open        []*grammar.Lexicon
}

func isGroupStart(t *tree.Token) bool {
	return !t.IsGrouped() || t.GroupIndex() == 0
}

// findTail locates the first reusable token right of the removed range.
func (r *rebuild) findTail(end int) {
	if end+r.offset >= len(r.text) {
		return // no text after the modified part
	}
	t := r.b.root.FindTokenAfter(end)
	for t != nil && !isGroupStart(t) {
		t = t.Next()
	}
	if t == nil {
		return
	}
	r.tail = true
	r.tailToken = t
	r.tailPos = t.Pos() + r.offset
}

// findRestart locates the token before the edit from which the lexer can
// safely replay, preferring the token before the last newline.
func (r *rebuild) findRestart(start int) {
	r.restartPos = 0
	r.reportStart = 0
	if start <= 0 {
		return
	}
	var t *tree.Token
	if i := strings.LastIndexByte(r.text[:start], '\n'); i > -1 {
		t = r.b.root.FindTokenBefore(i)
	}
	if t == nil {
		t = r.b.root.FindTokenBefore(start)
		if t != nil {
			for n := 0; n < backupTokens; n++ {
				p := t.Prev()
				if p == nil {
					break
				}
				t = p
			}
		}
	}
	if t == nil {
		return
	}
	t = t.GroupStart()
	r.head = true
	r.headLive = true
	r.restart = t
	r.restartPos = t.Pos()
	r.reportStart = t.Pos()
	for ; t != nil; t = t.Next() {
		r.headToks = append(r.headToks,
			lexer.Lexeme{Pos: t.Pos(), Text: t.Text(), Action: t.Action()})
		if t.End() > start {
			break
		}
	}
}

// replay runs the lexer from the restart point over the new text,
// producing nodes into the staging spine, until the old tail can be
// reused or the end of the text is reached.
func (r *rebuild) replay() error {
	var stack []*grammar.Lexicon
	if r.head {
		anc := r.restart.Ancestors() // nearest first
		for i := len(anc) - 1; i >= 0; i-- {
			r.realSpine = append(r.realSpine, anc[i])
			stack = append(stack, anc[i].Lexicon())
		}
	} else {
		stack = []*grammar.Lexicon{r.b.root.Lexicon()}
	}
	r.spine = make([]*tree.Context, len(stack))
	for i, lx := range stack {
		var parent *tree.Context
		if i > 0 {
			parent = r.spine[i-1]
		}
		// spine contexts are chained by parent links only; merging into
		// the real tree happens in splice
		r.spine[i] = tree.NewContext(lx, parent)
	}
	r.cur = r.spine[len(r.spine)-1]

	lx := lexer.NewAt(stack, r.text, r.restartPos)
	for {
		if r.b.intr != nil && r.b.intr() {
			return ErrInterrupted
		}
		ev, ok := lx.Next()
		if !ok {
			if err := lx.Err(); err != nil {
				return err
			}
			break
		}
		if len(ev.Lexemes) > 0 {
			r.trackHead(ev.Lexemes)
			if r.tryAttach(ev.Lexemes[0].Pos) {
				return nil
			}
		}
		consume := !ev.Target.IsNull() && len(ev.Target.Push) > 0 &&
			ev.Target.Push[0].Consume()
		if consume {
			r.applyTarget(ev.Target)
			r.addLexemes(ev.Lexemes)
		} else {
			r.addLexemes(ev.Lexemes)
			r.applyTarget(ev.Target)
		}
	}
	r.reportEnd = len(r.text)
	r.unwind()
	return nil
}

// trackHead narrows the reported start while replayed tokens equal the
// old tokens at the restart point.
func (r *rebuild) trackHead(lexemes []lexer.Lexeme) {
	if !r.headLive {
		return
	}
	n := len(lexemes)
	if r.headIdx+n <= len(r.headToks) {
		same := true
		for i, l := range lexemes {
			o := r.headToks[r.headIdx+i]
			if o.Pos != l.Pos || o.Text != l.Text || o.Action != l.Action {
				same = false
				break
			}
		}
		if same {
			r.headIdx += n
			r.reportStart = lexemes[n-1].End()
			return
		}
	}
	r.reportStart = lexemes[0].Pos
	r.headLive = false
}

// tryAttach checks whether the old tail can be attached at the position
// of the next produced token.
func (r *rebuild) tryAttach(pos int) bool {
	if !r.tail {
		return false
	}
	if pos > r.tailPos {
		r.advanceTail(pos)
		if !r.tail {
			return false
		}
	}
	if pos == r.tailPos && r.stateMatchesTail() {
		r.attached = true
		r.reportEnd = r.tailPos
		return true
	}
	return false
}

// advanceTail moves the tail candidate to the first group-start token
// whose shifted position is at or after minPos.
func (r *rebuild) advanceTail(minPos int) {
	t := r.tailToken
	for t != nil {
		if isGroupStart(t) && t.Pos()+r.offset >= minPos {
			r.tailToken = t
			r.tailPos = t.Pos() + r.offset
			return
		}
		t = t.Next()
	}
	r.tail = false
}

// stateMatchesTail compares the staging context's lexicon ancestry with
// the tail token's.
func (r *rebuild) stateMatchesTail() bool {
	c1, c2 := r.cur, r.tailToken.Parent()
	for c1 != nil && c2 != nil {
		if c1.Lexicon() != c2.Lexicon() {
			return false
		}
		c1, c2 = c1.Parent(), c2.Parent()
	}
	return c1 == nil && c2 == nil
}

func (r *rebuild) addLexemes(lexemes []lexer.Lexeme) {
	if len(lexemes) == 1 {
		l := lexemes[0]
		r.cur.Append(tree.NewToken(l.Pos, l.Text, l.Action))
		return
	}
	for i, l := range lexemes {
		idx := i
		if i == len(lexemes)-1 {
			idx = -(len(lexemes) - 1)
		}
		r.cur.Append(tree.NewGroupedToken(idx, l.Pos, l.Text, l.Action))
	}
}

// applyTarget mirrors the lexer's stack change on the staging tree.
// Popped contexts that stayed empty are discarded.
func (r *rebuild) applyTarget(t *lexer.Target) {
	if t.IsNull() {
		return
	}
	for n := t.Pop; n < 0; n++ {
		popped := r.cur
		parent := popped.Parent()
		if parent == nil {
			break
		}
		r.cur = parent
		if popped.IsEmpty() && r.isAttachedChild(parent, popped) {
			parent.RemoveLast()
		}
	}
	for _, lx := range t.Push {
		ctx := tree.NewContext(lx, nil)
		r.cur.Append(ctx)
		r.cur = ctx
	}
}

// isAttachedChild reports whether popped is parent's last child. Staging
// spine contexts are chained by parent links without being attached.
func (r *rebuild) isAttachedChild(parent, popped *tree.Context) bool {
	return parent.Len() > 0 && parent.Child(parent.Len()-1) == popped
}

// unwind discards empty contexts left open at the end of the text and
// collects the open lexicons, outermost first.
func (r *rebuild) unwind() {
	r.open = nil
	c := r.cur
	for c.Parent() != nil {
		r.open = append(r.open, c.Lexicon())
		p := c.Parent()
		if c.IsEmpty() && r.isAttachedChild(p, c) {
			p.RemoveLast()
		}
		c = p
	}
	// reverse to outermost-first
	for i, j := 0, len(r.open)-1; i < j; i, j = i+1, j-1 {
		r.open[i], r.open[j] = r.open[j], r.open[i]
	}
}

// splice swaps the replaced range of the real tree for the staged nodes.
// Order matters: tail segments are captured and re-attached into the
// staging tree first, then the real spine is truncated, then staged
// children merge into the real spine contexts.
func (r *rebuild) splice() {
	if r.attached {
		r.captureTail()
	}
	if r.head {
		deepest := r.realSpine[len(r.realSpine)-1]
		deepest.Truncate(deepest.IndexOf(r.restart))
		for j := len(r.realSpine) - 2; j >= 0; j-- {
			i := r.realSpine[j].IndexOf(r.realSpine[j+1])
			r.realSpine[j].Truncate(i + 1)
		}
	} else {
		r.b.root.Clear()
		r.realSpine = []*tree.Context{r.b.root}
	}
	// merge staging into the real spine
	for j, staged := range r.spine {
		real := r.realSpine[j]
		for _, child := range staged.Children() {
			real.Append(child)
		}
	}
	// discard spine contexts that ended up empty
	for j := len(r.realSpine) - 1; j >= 1; j-- {
		if r.realSpine[j].IsEmpty() {
			r.realSpine[j-1].RemoveChild(r.realSpine[j])
		}
	}
}

// captureTail moves the old tokens right of the attach point into the
// staging tree, shifted to their new positions. At the deepest level the
// tail token and its right siblings move; at every level above, the
// right siblings of the path move.
func (r *rebuild) captureTail() {
	// ancestry of the attach context, root first
	var curSpine []*tree.Context
	for c := r.cur; c != nil; c = c.Parent() {
		curSpine = append(curSpine, c)
	}
	for i, j := 0, len(curSpine)-1; i < j; i, j = i+1, j-1 {
		curSpine[i], curSpine[j] = curSpine[j], curSpine[i]
	}
	// path to the tail token in the real tree, root first
	var path []tree.Node
	var n tree.Node = r.tailToken
	for n != nil {
		path = append(path, n)
		if p := n.Parent(); p != nil {
			n = p
		} else {
			n = nil
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	// path[0] is the real root, path[len-1] the tail token; the
	// ancestry depths match by stateMatchesTail
	for level := 0; level < len(path)-1; level++ {
		parent := path[level].(*tree.Context)
		i := parent.IndexOf(path[level+1])
		from := i + 1
		if level == len(path)-2 {
			from = i // the tail token itself moves too
		}
		nodes := append([]tree.Node(nil), parent.Children()[from:]...)
		dst := curSpine[level]
		for _, node := range nodes {
			shiftNode(node, r.offset)
			dst.Append(node)
		}
	}
}

func shiftNode(n tree.Node, offset int) {
	if offset == 0 {
		return
	}
	switch x := n.(type) {
	case *tree.Token:
		x.Shift(offset)
	case *tree.Context:
		for _, t := range x.Tokens() {
			t.Shift(offset)
		}
	}
}
