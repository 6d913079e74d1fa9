package grammar

import "fmt"

// An Item is a node in the small evaluation language for dynamic rule
// parts. Items are evaluated against the regular expression match at the
// time a rule fires; pattern items are evaluated once at lexicon
// compilation, when only the lexicon argument is available.
//
// The placeholders are Text (the matched text), TheMatch (the Match
// object), MatchGroup(n) (the text of group n of the rule's own pattern)
// and Arg (the enclosing lexicon's argument). Call applies a predicate to
// evaluated arguments, Select indexes into a list of alternatives. Items
// nest; evaluation substitutes placeholders bottom-up and flattens list
// results.
type Item interface {
	eval(ns *namespace) (interface{}, error)
}

// namespace is the evaluation environment for items.
type namespace struct {
	text     string
	match    *Match
	arg      interface{}
	hasMatch bool
	hasText  bool // set without hasMatch when evaluating a default action
}

// evalError marks a dynamic evaluation failure (LexError semantics): the
// lexer logs it, skips the offending rule and proceeds.
type evalError struct {
	what string
	err  error
}

func (e *evalError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("evaluating %s: %v", e.what, e.err)
	}
	return "evaluating " + e.what
}

func (e *evalError) Unwrap() error { return e.err }

// --- Placeholders -----------------------------------------------------------

type textItem struct{}
type matchItem struct{}
type argItem struct{}
type matchGroupItem struct{ n int }

// Text is the placeholder for the matched text.
var Text Item = textItem{}

// TheMatch is the placeholder for the Match object itself, for use as a
// Call argument.
var TheMatch Item = matchItem{}

// Arg is the placeholder for the enclosing lexicon's argument. In a
// non-derived lexicon it evaluates to nil.
var Arg Item = argItem{}

// MatchGroup is the placeholder for the text of the rule pattern's
// numbered group n (1-based; 0 is the whole rule match). It evaluates to
// nil if the group did not participate in the match.
func MatchGroup(n int) Item { return matchGroupItem{n: n} }

func (textItem) eval(ns *namespace) (interface{}, error) {
	if !ns.hasMatch && !ns.hasText {
		return nil, &evalError{what: "TEXT outside a match"}
	}
	return ns.text, nil
}

func (matchItem) eval(ns *namespace) (interface{}, error) {
	if !ns.hasMatch {
		return nil, &evalError{what: "MATCH outside a match"}
	}
	return ns.match, nil
}

func (argItem) eval(ns *namespace) (interface{}, error) {
	return ns.arg, nil
}

func (it matchGroupItem) eval(ns *namespace) (interface{}, error) {
	if !ns.hasMatch {
		return nil, &evalError{what: "MATCH[n] outside a match"}
	}
	if !ns.match.HasGroup(it.n) {
		return nil, nil
	}
	return ns.match.Group(it.n), nil
}

// --- Combinators ------------------------------------------------------------

// A Predicate is a user function called by the Call combinator with the
// evaluated arguments. Returning an error (or panicking) skips the
// offending rule for this match.
type Predicate func(args ...interface{}) (interface{}, error)

type callItem struct {
	fn   Predicate
	args []interface{}
}

// Call builds an item applying fn to the evaluated arguments.
func Call(fn Predicate, args ...interface{}) Item {
	return callItem{fn: fn, args: args}
}

func (it callItem) eval(ns *namespace) (res interface{}, err error) {
	args := make([]interface{}, len(it.args))
	for i, a := range it.args {
		if args[i], err = evalValue(a, ns); err != nil {
			return nil, err
		}
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &evalError{what: fmt.Sprintf("call predicate panicked: %v", r)}
		}
	}()
	res, err = it.fn(args...)
	if err != nil {
		err = &evalError{what: "call predicate", err: err}
	}
	return
}

type selectItem struct {
	index interface{}
	items []interface{}
}

// Select builds an item evaluating to items[index]. The index may itself
// be an item (commonly a Call) evaluating to an int or a bool (false=0,
// true=1).
func Select(index interface{}, items ...interface{}) Item {
	return selectItem{index: index, items: items}
}

func (it selectItem) eval(ns *namespace) (interface{}, error) {
	v, err := evalValue(it.index, ns)
	if err != nil {
		return nil, err
	}
	var i int
	switch x := v.(type) {
	case int:
		i = x
	case bool:
		if x {
			i = 1
		}
	default:
		return nil, &evalError{what: fmt.Sprintf("select index of type %T", v)}
	}
	if i < 0 || i >= len(it.items) {
		return nil, &evalError{what: fmt.Sprintf("select index %d out of range", i)}
	}
	return evalValue(it.items[i], ns)
}

// --- Target items -----------------------------------------------------------

type derivedItem struct {
	lex *Lexicon
	arg interface{}
}

// Derived builds a target item pushing the lexicon derived with the
// evaluated argument. The classic use is a here-doc style construct:
//
//    grammar.Derived(lang.Lexicon("heredoc"), grammar.MatchGroup(1))
//
func Derived(lex *Lexicon, arg interface{}) Item {
	return derivedItem{lex: lex, arg: arg}
}

func (it derivedItem) eval(ns *namespace) (interface{}, error) {
	arg, err := evalValue(it.arg, ns)
	if err != nil {
		return nil, err
	}
	d, err := it.lex.Derive(arg)
	if err != nil {
		return nil, &evalError{what: "derived lexicon", err: err}
	}
	return d, nil
}

// --- Dynamic actions --------------------------------------------------------

// A GroupAction emits one token per non-empty numbered group of the rule's
// pattern, instead of a single token for the whole match. The resulting
// adjacent tokens form a group. Each action may itself be a dynamic item.
type GroupAction struct {
	Actions []interface{}
}

// ByGroup builds a GroupAction: action a1 applies to group 1, a2 to group
// 2, and so on.
func ByGroup(actions ...interface{}) GroupAction {
	return GroupAction{Actions: actions}
}

// --- Evaluation -------------------------------------------------------------

// evalValue evaluates v, which may be an Item, a list, or a plain value.
// Lists are evaluated element-wise and returned as []interface{}.
func evalValue(v interface{}, ns *namespace) (interface{}, error) {
	switch x := v.(type) {
	case Item:
		return x.eval(ns)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			r, err := evalValue(e, ns)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// evalTargets evaluates and flattens a rule's target list. The result
// contains only ints and *Lexicon values.
func evalTargets(targets []interface{}, ns *namespace) ([]interface{}, error) {
	var out []interface{}
	var flatten func(v interface{}) error
	flatten = func(v interface{}) error {
		r, err := evalValue(v, ns)
		if err != nil {
			return err
		}
		switch x := r.(type) {
		case nil:
			// an omitted target
		case int:
			out = append(out, x)
		case *Lexicon:
			out = append(out, x)
		case []interface{}:
			for _, e := range x {
				if err := flatten(e); err != nil {
					return err
				}
			}
		default:
			return &evalError{what: fmt.Sprintf("target of type %T", r)}
		}
		return nil
	}
	for _, t := range targets {
		if err := flatten(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}
