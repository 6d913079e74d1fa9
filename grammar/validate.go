package grammar

import (
	"github.com/emirpasic/gods/sets/hashset"
)

// Validate compiles every lexicon statically reachable from root and
// checks structural soundness: regular expressions must compile, default
// rules must not conflict, and a chain of default targets must not form a
// cycle (a cycle that never advances the position would loop forever; the
// lexer breaks such cycles at run time, but a statically detectable one is
// a grammar bug).
//
// Dynamic targets cannot be enumerated statically and are exercised only
// at lex time.
func Validate(root *Lexicon) error {
	seen := hashset.New()
	queue := []*Lexicon{root}
	for len(queue) > 0 {
		lex := queue[0]
		queue = queue[1:]
		if seen.Contains(lex) {
			continue
		}
		seen.Add(lex)
		prog, err := lex.Program()
		if err != nil {
			return err
		}
		if err := checkDefaultTargetCycle(lex, prog); err != nil {
			return err
		}
		queue = append(queue, prog.StaticTargets()...)
	}
	tracer().Debugf("validated %d lexicons from %s", seen.Size(), root.FullName())
	return nil
}

// checkDefaultTargetCycle follows the chain of default targets beginning
// at lex. A default target applies without consuming text, so a chain that
// returns to an already visited lexicon can never advance.
func checkDefaultTargetCycle(lex *Lexicon, prog *Program) error {
	visited := hashset.New()
	visited.Add(lex)
	for prog.HasDefaultTarget() {
		refs := prog.DefaultTargetRefs()
		if len(refs) == 0 {
			return nil // pops only; popping always terminates
		}
		next := refs[len(refs)-1]
		if visited.Contains(next) {
			return &Error{Lexicon: lex.FullName(),
				Msg: "circular default target via " + next.FullName()}
		}
		visited.Add(next)
		var err error
		if prog, err = next.Program(); err != nil {
			return err
		}
	}
	return nil
}
