package lexer

import (
	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
)

// circState identifies a lexer state for circular default-target
// detection: position, stack depth and push size.
type circState [3]int

// A Lexer steps through a text, producing one Event per call to Next.
// It is a pull-based state machine; the treebuild package drives it one
// event at a time so that rebuilds can be interrupted between events.
type Lexer struct {
	text  string
	pos   int
	stack *arraylist.List // of *grammar.Lexicon, bottom (root) first

	saved     *grammar.Match // a match found while emitting a gap token
	savedProg *grammar.Program

	circular map[circState]bool
	err      error
}

// New creates a Lexer over text with the given root lexicon.
func New(root *grammar.Lexicon, text string) *Lexer {
	return NewAt([]*grammar.Lexicon{root}, text, 0)
}

// NewAt creates a Lexer restarting at pos with a pre-built lexicon stack,
// bottom (root) first. The stack must not be empty.
func NewAt(stack []*grammar.Lexicon, text string, pos int) *Lexer {
	l := &Lexer{
		text:     text,
		pos:      pos,
		stack:    arraylist.New(),
		circular: make(map[circState]bool),
	}
	for _, lx := range stack {
		l.stack.Add(lx)
	}
	return l
}

// Pos returns the current text position.
func (lx *Lexer) Pos() int { return lx.pos }

// Err returns the grammar error that aborted lexing, if any.
func (lx *Lexer) Err() error { return lx.err }

// Depth returns the current stack depth.
func (lx *Lexer) Depth() int { return lx.stack.Size() }

// Lexicons returns a snapshot of the lexicon stack, bottom first.
func (lx *Lexer) Lexicons() []*grammar.Lexicon {
	out := make([]*grammar.Lexicon, lx.stack.Size())
	for i := range out {
		v, _ := lx.stack.Get(i)
		out[i] = v.(*grammar.Lexicon)
	}
	return out
}

func (lx *Lexer) top() *grammar.Lexicon {
	v, _ := lx.stack.Get(lx.stack.Size() - 1)
	return v.(*grammar.Lexicon)
}

// Next performs one lexer step and returns the resulting event. It
// returns false when the end of the input is reached or a grammar error
// occurred (see Err).
func (lx *Lexer) Next() (Event, bool) {
	for {
		if lx.saved != nil {
			m, prog := lx.saved, lx.savedProg
			lx.saved, lx.savedProg = nil, nil
			if ev, ok := lx.handleMatch(prog, m); ok {
				return ev, true
			}
			continue
		}
		if lx.pos >= len(lx.text) {
			return Event{}, false
		}
		prog, err := lx.top().Program()
		if err != nil {
			lx.err = err
			return Event{}, false
		}
		if prog.HasDefaultTarget() {
			if m := prog.MatchAt(lx.text, lx.pos); m != nil {
				if ev, ok := lx.handleMatch(prog, m); ok {
					return ev, true
				}
				continue
			}
			if ev, ok := lx.handleDefaultTarget(prog); ok {
				return ev, true
			}
			continue
		}
		m := prog.Search(lx.text, lx.pos)
		if m == nil {
			if prog.HasDefaultAction() && lx.pos < len(lx.text) {
				// trailing text gets the default action
				ev, ok := lx.gapEvent(prog, lx.pos, len(lx.text))
				lx.pos = len(lx.text)
				if ok {
					return ev, true
				}
				continue
			}
			if lx.stack.Size() > 1 {
				// fall through to the enclosing lexicon
				lx.stack.Remove(lx.stack.Size() - 1)
				return Event{Target: &Target{Pop: -1}}, true
			}
			// no rule of the root lexicon matches anywhere ahead
			lx.pos = len(lx.text)
			return Event{}, false
		}
		if m.Pos() > lx.pos && prog.HasDefaultAction() {
			ev, ok := lx.gapEvent(prog, lx.pos, m.Pos())
			lx.pos = m.Pos()
			lx.saved, lx.savedProg = m, prog
			if ok {
				return ev, true
			}
			continue
		}
		if ev, ok := lx.handleMatch(prog, m); ok {
			return ev, true
		}
	}
}

// gapEvent builds the default-action event for the text between matches.
// Returns ok=false if the action evaluates to Skip or fails.
func (lx *Lexer) gapEvent(prog *grammar.Program, pos, end int) (Event, bool) {
	gap := lx.text[pos:end]
	action, err := prog.EvalDefaultAction(gap)
	if err != nil {
		tracer().Errorf("%s: default action: %v", prog.Lexicon().FullName(), err)
		return Event{}, false
	}
	if action == relex.Skip {
		return Event{}, false
	}
	return Event{Lexemes: []Lexeme{{Pos: pos, Text: gap, Action: action}}}, true
}

// handleDefaultTarget applies the lexicon's default target without
// consuming text, detecting circular chains.
func (lx *Lexer) handleDefaultTarget(prog *grammar.Program) (Event, bool) {
	targets, err := prog.EvalDefaultTarget()
	if err != nil {
		tracer().Errorf("%s: default target: %v", prog.Lexicon().FullName(), err)
		// treat like a no-match without default target
		if lx.stack.Size() > 1 {
			lx.stack.Remove(lx.stack.Size() - 1)
			return Event{Target: &Target{Pop: -1}}, true
		}
		lx.pos++
		return Event{}, false
	}
	tgt := lx.applyTargets(targets, true)
	if tgt.IsNull() {
		// a default target that changes nothing cannot make progress
		lx.pos++
		return Event{}, false
	}
	return Event{Target: tgt}, true
}

// handleMatch evaluates the matched rule's action and targets, applies
// the targets to the stack and advances the position. Returns ok=false
// when no event needs to be emitted (skip rules without targets, or
// evaluation failures).
func (lx *Lexer) handleMatch(prog *grammar.Program, m *grammar.Match) (Event, bool) {
	lexemes, err := lx.evalLexemes(prog, m)
	if err != nil {
		tracer().Errorf("%s: %v", prog.Lexicon().FullName(), err)
		lx.skipPast(m)
		return Event{}, false
	}
	targets, err := prog.EvalRuleTargets(m)
	if err != nil {
		tracer().Errorf("%s: %v", prog.Lexicon().FullName(), err)
		lx.skipPast(m)
		return Event{}, false
	}
	empty := m.End() == m.Pos()
	var tgt *Target
	if len(targets) > 0 {
		tgt = lx.applyTargets(targets, empty)
	}
	if !empty {
		// a consuming match resets cycle detection
		for k := range lx.circular {
			delete(lx.circular, k)
		}
		lx.pos = m.End()
	} else if tgt.IsNull() {
		// zero-width match without state change cannot make progress
		lx.pos++
	}
	if len(lexemes) == 0 && tgt.IsNull() {
		return Event{}, false
	}
	return Event{Target: tgt, Lexemes: lexemes}, true
}

// skipPast advances past a match whose rule failed to evaluate, at least
// one character.
func (lx *Lexer) skipPast(m *grammar.Match) {
	if m.End() > lx.pos {
		lx.pos = m.End()
	} else {
		lx.pos++
	}
}

// evalLexemes produces the lexemes of a match: none for Skip, one per
// non-empty numbered group for a GroupAction, one for the whole match
// otherwise. Empty texts never materialize as lexemes.
func (lx *Lexer) evalLexemes(prog *grammar.Program, m *grammar.Match) ([]Lexeme, error) {
	switch action := prog.RuleAction(m.Rule()).(type) {
	case grammar.GroupAction:
		var lexemes []Lexeme
		for n := 1; n <= m.NumGroups() && n <= len(action.Actions); n++ {
			txt := m.Group(n)
			if txt == "" {
				continue
			}
			a, err := prog.EvalWith(m, action.Actions[n-1])
			if err != nil {
				return nil, err
			}
			if a == relex.Skip {
				continue
			}
			lexemes = append(lexemes, Lexeme{Pos: m.GroupSpan(n).From(), Text: txt, Action: a})
		}
		return lexemes, nil
	default:
		if m.Text() == "" {
			return nil, nil
		}
		a, err := prog.EvalWith(m, action)
		if err != nil {
			return nil, err
		}
		if a == relex.Skip {
			return nil, nil
		}
		return []Lexeme{{Pos: m.Pos(), Text: m.Text(), Action: a}}, nil
	}
}

// applyTargets applies the evaluated target values to the stack and
// returns the net change. Positive integers push the then-current lexicon,
// negative integers pop (never the root), lexicon values push. With
// checkCycle set (no text consumed), a revisited state forces the position
// one character ahead.
func (lx *Lexer) applyTargets(targets []interface{}, checkCycle bool) *Target {
	d0 := lx.stack.Size()
	minDepth := d0
	for _, t := range targets {
		switch x := t.(type) {
		case int:
			if x < 0 {
				for ; x < 0 && lx.stack.Size() > 1; x++ {
					lx.stack.Remove(lx.stack.Size() - 1)
					if lx.stack.Size() < minDepth {
						minDepth = lx.stack.Size()
					}
				}
			} else {
				for i := 0; i < x; i++ {
					lx.stack.Add(lx.top())
				}
			}
		case *grammar.Lexicon:
			lx.stack.Add(x)
		}
	}
	pushed := make([]*grammar.Lexicon, 0, lx.stack.Size()-minDepth)
	for i := minDepth; i < lx.stack.Size(); i++ {
		v, _ := lx.stack.Get(i)
		pushed = append(pushed, v.(*grammar.Lexicon))
	}
	tgt := &Target{Pop: minDepth - d0, Push: pushed}
	if checkCycle && len(tgt.Push) > 0 {
		state := circState{lx.pos, minDepth, len(tgt.Push)}
		if lx.circular[state] {
			if lx.pos < len(lx.text) {
				lx.pos++
			}
			for k := range lx.circular {
				delete(lx.circular, k)
			}
		} else {
			lx.circular[state] = true
		}
	}
	return tgt
}
