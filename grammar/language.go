package grammar

import (
	"fmt"
	"sync"

	"github.com/cnf/structhash"
)

// Error is returned for structural problems in a grammar: invalid regular
// expressions, conflicting default rules, bad target types, or circular
// default targets. It is detected at lexicon compilation or by Validate and
// is sticky: a lexicon that failed to compile fails on every subsequent use.
type Error struct {
	Lexicon string // full name of the offending lexicon
	Msg     string
	Err     error // underlying error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grammar: %s: %s: %v", e.Lexicon, e.Msg, e.Err)
	}
	return fmt.Sprintf("grammar: %s: %s", e.Lexicon, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// RulesFunc creates the rules of a lexicon. It receives the language the
// lexicon is bound to, so that target references like lang.Lexicon("string")
// resolve against the most derived language when languages inherit from
// each other. The function is called once per lexicon instance, at first
// use; its result is cached.
type RulesFunc func(lang *Language) []Rule

// A Language is a namespace that groups lexicons. It is purely a scope and
// carries no state of its own beyond the lexicon registry. A language can
// inherit all lexicons of another language and override individual ones.
type Language struct {
	name     string
	mu       sync.Mutex
	lexicons map[string]*Lexicon
}

// NewLanguage creates an empty language.
func NewLanguage(name string) *Language {
	return &Language{
		name:     name,
		lexicons: make(map[string]*Lexicon),
	}
}

// Name returns the language's name.
func (lang *Language) Name() string { return lang.name }

// Define registers a lexicon under the given name, replacing a lexicon
// inherited or previously defined under that name.
func (lang *Language) Define(name string, rules RulesFunc, opts ...LexiconOption) *Lexicon {
	lex := &Lexicon{
		lang:  lang,
		name:  name,
		rules: rules,
	}
	for _, opt := range opts {
		opt(lex)
	}
	lang.mu.Lock()
	lang.lexicons[name] = lex
	lang.mu.Unlock()
	return lex
}

// Lexicon returns the lexicon registered under name, or nil.
func (lang *Language) Lexicon(name string) *Lexicon {
	lang.mu.Lock()
	defer lang.mu.Unlock()
	return lang.lexicons[name]
}

// Inherit creates a new language containing all of this language's
// lexicons, re-bound to the new language. Rules functions are shared; since
// a RulesFunc resolves lexicon references through the language it receives,
// overriding a lexicon in the new language affects every rule that targets
// it by name.
func (lang *Language) Inherit(name string) *Language {
	sub := NewLanguage(name)
	lang.mu.Lock()
	defer lang.mu.Unlock()
	for n, lex := range lang.lexicons {
		sub.lexicons[n] = &Lexicon{
			lang:    sub,
			name:    n,
			rules:   lex.rules,
			consume: lex.consume,
			reFlags: lex.reFlags,
		}
	}
	return sub
}

// LexiconOption configures a lexicon at definition time.
type LexiconOption func(*Lexicon)

// Consume marks the lexicon as consuming: tokens produced by the rule that
// pushes this lexicon are attributed to the new child context instead of
// the pushing context.
func Consume() LexiconOption {
	return func(lex *Lexicon) { lex.consume = true }
}

// ReFlags sets regex flags (e.g. "i", "s", "m") that are applied to the
// lexicon's compiled alternation.
func ReFlags(flags string) LexiconOption {
	return func(lex *Lexicon) { lex.reFlags = flags }
}

// A Lexicon is a named, lazily-compiled, ordered set of rules belonging to
// one language. The rule order defines match priority. A lexicon is
// identified by (language, name, argument); Derive caches derived lexicons,
// so equal identities yield the same object and lexicons can be compared
// by pointer.
type Lexicon struct {
	lang    *Language
	name    string
	rules   RulesFunc
	consume bool
	reFlags string

	arg  interface{} // nil for the base lexicon
	base *Lexicon    // non-nil for derived lexicons

	dmu     sync.Mutex
	derived map[string]*Lexicon

	cmu      sync.Mutex
	compiled *Program
	cerr     error
}

// Language returns the language this lexicon belongs to.
func (lex *Lexicon) Language() *Language { return lex.lang }

// Name returns the lexicon's name within its language.
func (lex *Lexicon) Name() string { return lex.name }

// FullName returns the 'Language.lexicon' name of this lexicon. Derived
// lexicons carry a '*' suffix.
func (lex *Lexicon) FullName() string {
	n := lex.lang.name + "." + lex.name
	if lex.arg != nil {
		n += "*"
	}
	return n
}

// Arg returns the argument of a derived lexicon, or nil.
func (lex *Lexicon) Arg() interface{} { return lex.arg }

// Consume reports whether tokens of the pushing rule belong to the child
// context.
func (lex *Lexicon) Consume() bool { return lex.consume }

func (lex *Lexicon) String() string { return lex.FullName() }

// Derive returns the lexicon parameterized with arg. The argument must be
// hashable; derived lexicons are cached by the argument's hash, so deriving
// with an equal argument returns the same lexicon object. Deriving with a
// nil argument returns the base lexicon. Calling Derive on a derived
// lexicon derives from its base.
func (lex *Lexicon) Derive(arg interface{}) (*Lexicon, error) {
	if lex.base != nil {
		return lex.base.Derive(arg)
	}
	if arg == nil {
		return lex, nil
	}
	key, err := structhash.Hash(struct{ A interface{} }{arg}, 1)
	if err != nil {
		return nil, &Error{Lexicon: lex.FullName(), Msg: "lexicon argument is not hashable", Err: err}
	}
	lex.dmu.Lock()
	defer lex.dmu.Unlock()
	if d, ok := lex.derived[key]; ok {
		return d, nil
	}
	if lex.derived == nil {
		lex.derived = make(map[string]*Lexicon)
	}
	d := &Lexicon{
		lang:    lex.lang,
		name:    lex.name,
		rules:   lex.rules,
		consume: lex.consume,
		reFlags: lex.reFlags,
		arg:     arg,
		base:    lex,
	}
	lex.derived[key] = d
	tracer().Debugf("derived lexicon %s with arg %v", d.FullName(), arg)
	return d, nil
}

// MustDerive is Derive, panicking on error. Intended for grammar authoring
// with arguments known to be hashable.
func (lex *Lexicon) MustDerive(arg interface{}) *Lexicon {
	d, err := lex.Derive(arg)
	if err != nil {
		panic(err)
	}
	return d
}

// Program returns the lexicon's compiled matching program, compiling it on
// first use. Compilation failure is sticky and reported on every call.
func (lex *Lexicon) Program() (*Program, error) {
	lex.cmu.Lock()
	defer lex.cmu.Unlock()
	if lex.compiled == nil && lex.cerr == nil {
		lex.compiled, lex.cerr = compile(lex)
		if lex.cerr != nil {
			tracer().Errorf("compiling %s: %v", lex.FullName(), lex.cerr)
		} else {
			tracer().Debugf("compiled lexicon %s (%d rules)", lex.FullName(),
				len(lex.compiled.rules))
		}
	}
	return lex.compiled, lex.cerr
}
