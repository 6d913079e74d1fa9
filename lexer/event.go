package lexer

import (
	"fmt"
	"strings"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
)

// A Lexeme is one produced token: a position, the non-empty matched text,
// and the evaluated action.
type Lexeme struct {
	Pos    int
	Text   string
	Action relex.Action
}

// End returns the position just behind the lexeme.
func (l Lexeme) End() int { return l.Pos + len(l.Text) }

// Span returns the lexeme's extent.
func (l Lexeme) Span() relex.Span { return relex.Span{l.Pos, l.End()} }

func (l Lexeme) String() string {
	return fmt.Sprintf("(%d, %q, %v)", l.Pos, l.Text, l.Action)
}

// A Target is the net stack change of one lexer step: pop |Pop| levels,
// then push the listed lexicons in order. Pop is zero or negative.
type Target struct {
	Pop  int
	Push []*grammar.Lexicon
}

// IsNull reports whether the target changes nothing.
func (t *Target) IsNull() bool {
	return t == nil || (t.Pop == 0 && len(t.Push) == 0)
}

func (t *Target) String() string {
	if t == nil {
		return "<nil>"
	}
	push := make([]string, len(t.Push))
	for i, lx := range t.Push {
		push[i] = lx.FullName()
	}
	return fmt.Sprintf("<Target %d [%s]>", t.Pop, strings.Join(push, " "))
}

// An Event is one step of the lex: zero or more lexemes, and the stack
// change caused by the matched rule (nil when the rule had no targets).
type Event struct {
	Target  *Target
	Lexemes []Lexeme
}

func (e Event) String() string {
	lexemes := make([]string, len(e.Lexemes))
	for i, l := range e.Lexemes {
		lexemes[i] = l.String()
	}
	return fmt.Sprintf("Event(target=%s, lexemes=[%s])", e.Target, strings.Join(lexemes, ", "))
}
