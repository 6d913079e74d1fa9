package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/npillmayer/relex"
)

// A Program is a lexicon's compiled matching machinery: one alternation
// regular expression in which every alternative is one rule's pattern,
// captured in a named group so the matching rule can be identified from
// the match. Programs are immutable after compilation and shared.
type Program struct {
	lex    *Lexicon
	scan   *regexp.Regexp // used to walk forward to the next match
	anchor *regexp.Regexp // used to match at an exact position

	rules     []progRule
	ruleGroup []int // subexp index of rule i's named group in the alternation

	hasDefaultAction bool
	defaultAction    interface{}
	hasDefaultTarget bool
	defaultTarget    []interface{}
}

type progRule struct {
	pattern string
	ngroups int
	action  interface{}
	targets []interface{}
}

// compile aggregates the lexicon's rules into a Program. Rules whose
// pattern evaluates to nil are omitted. Patterns are validated
// individually first, so errors point at the offending rule.
func compile(lex *Lexicon) (*Program, error) {
	var rules []Rule
	if lex.rules != nil {
		rules = lex.rules(lex.lang)
	}
	prog := &Program{lex: lex}
	ns := &namespace{arg: lex.arg}
	var alternatives []string
	for i, rule := range rules {
		switch rule.special {
		case specialDefaultAction:
			if prog.hasDefaultAction {
				return nil, &Error{Lexicon: lex.FullName(), Msg: "multiple default actions"}
			}
			if prog.hasDefaultTarget {
				return nil, &Error{Lexicon: lex.FullName(), Msg: "both default action and default target"}
			}
			prog.hasDefaultAction = true
			prog.defaultAction = rule.Action
			continue
		case specialDefaultTarget:
			if prog.hasDefaultTarget {
				return nil, &Error{Lexicon: lex.FullName(), Msg: "multiple default targets"}
			}
			if prog.hasDefaultAction {
				return nil, &Error{Lexicon: lex.FullName(), Msg: "both default action and default target"}
			}
			if err := checkTargetTypes(rule.Targets); err != nil {
				return nil, &Error{Lexicon: lex.FullName(), Msg: "default target", Err: err}
			}
			prog.hasDefaultTarget = true
			prog.defaultTarget = rule.Targets
			continue
		}
		pat, err := evalValue(rule.Pattern, ns)
		if err != nil {
			return nil, &Error{Lexicon: lex.FullName(),
				Msg: fmt.Sprintf("pattern of rule #%d", i), Err: err}
		}
		if pat == nil {
			continue // rule is ignored
		}
		pstr, ok := pat.(string)
		if !ok {
			return nil, &Error{Lexicon: lex.FullName(),
				Msg: fmt.Sprintf("pattern of rule #%d is %T, not a string", i, pat)}
		}
		single, err := regexp.Compile(flagged(lex.reFlags, "(?:"+pstr+")"))
		if err != nil {
			return nil, &Error{Lexicon: lex.FullName(),
				Msg: fmt.Sprintf("pattern of rule #%d", i), Err: err}
		}
		if err := checkTargetTypes(rule.Targets); err != nil {
			return nil, &Error{Lexicon: lex.FullName(),
				Msg: fmt.Sprintf("targets of rule #%d", i), Err: err}
		}
		prog.rules = append(prog.rules, progRule{
			pattern: pstr,
			ngroups: single.NumSubexp(),
			action:  rule.Action,
			targets: rule.Targets,
		})
		alternatives = append(alternatives,
			fmt.Sprintf("(?P<g%d>%s)", len(prog.rules)-1, pstr))
	}
	if len(prog.rules) > 0 {
		alt := strings.Join(alternatives, "|")
		var err error
		prog.scan, err = regexp.Compile(flagged(lex.reFlags, alt))
		if err != nil {
			return nil, &Error{Lexicon: lex.FullName(), Msg: "aggregated pattern", Err: err}
		}
		prog.anchor, err = regexp.Compile(flagged(lex.reFlags, `\A(?:`+alt+`)`))
		if err != nil {
			return nil, &Error{Lexicon: lex.FullName(), Msg: "aggregated pattern", Err: err}
		}
		prog.ruleGroup = make([]int, len(prog.rules))
		for g, name := range prog.scan.SubexpNames() {
			var r int
			if n, err := fmt.Sscanf(name, "g%d", &r); n == 1 && err == nil &&
				r >= 0 && r < len(prog.ruleGroup) {
				prog.ruleGroup[r] = g
			}
		}
	}
	return prog, nil
}

// checkTargetTypes rejects statically malformed targets. Dynamic items
// are checked again at evaluation time.
func checkTargetTypes(targets []interface{}) error {
	for _, t := range targets {
		switch x := t.(type) {
		case int, *Lexicon, Item:
			// ok
		case []interface{}:
			if err := checkTargetTypes(x); err != nil {
				return err
			}
		default:
			return fmt.Errorf("target of type %T is not an int, lexicon or item", t)
		}
	}
	return nil
}

// flagged prepends inline regex flags to a pattern.
func flagged(flags, pattern string) string {
	if flags == "" {
		return pattern
	}
	return "(?" + flags + ")" + pattern
}

// Lexicon returns the lexicon this program was compiled from.
func (p *Program) Lexicon() *Lexicon { return p.lex }

// NumRules returns the number of compiled (non-default) rules.
func (p *Program) NumRules() int { return len(p.rules) }

// HasDefaultAction reports whether the lexicon declares a default action.
func (p *Program) HasDefaultAction() bool { return p.hasDefaultAction }

// HasDefaultTarget reports whether the lexicon declares a default target.
func (p *Program) HasDefaultTarget() bool { return p.hasDefaultTarget }

// Search finds the next rule match at or after pos. Returns nil if no rule
// matches anywhere in the rest of the text.
func (p *Program) Search(text string, pos int) *Match {
	if p.scan == nil {
		return nil
	}
	return p.wrap(text, pos, p.scan.FindStringSubmatchIndex(text[pos:]))
}

// MatchAt matches anchored at exactly pos. Returns nil on no match.
func (p *Program) MatchAt(text string, pos int) *Match {
	if p.anchor == nil {
		return nil
	}
	return p.wrap(text, pos, p.anchor.FindStringSubmatchIndex(text[pos:]))
}

func (p *Program) wrap(text string, pos int, indices []int) *Match {
	if indices == nil {
		return nil
	}
	abs := make([]int, len(indices))
	for i, x := range indices {
		if x < 0 {
			abs[i] = -1
		} else {
			abs[i] = x + pos
		}
	}
	rule := -1
	for r, g := range p.ruleGroup {
		if abs[2*g] >= 0 {
			rule = r
			break
		}
	}
	if rule < 0 {
		// a match that belongs to no rule would be a bug in compilation
		return nil
	}
	return &Match{prog: p, rule: rule, text: text, indices: abs}
}

// --- Matches ----------------------------------------------------------------

// A Match identifies the rule that matched at a position, and gives access
// to the rule-relative capture groups.
type Match struct {
	prog    *Program
	rule    int
	text    string
	indices []int
}

// Rule returns the index of the matched rule within the lexicon.
func (m *Match) Rule() int { return m.rule }

// Pos returns the start of the match.
func (m *Match) Pos() int { return m.indices[2*m.prog.ruleGroup[m.rule]] }

// End returns the position just behind the match.
func (m *Match) End() int { return m.indices[2*m.prog.ruleGroup[m.rule]+1] }

// Text returns the matched text.
func (m *Match) Text() string { return m.text[m.Pos():m.End()] }

// NumGroups returns the number of capture groups of the rule's own pattern.
func (m *Match) NumGroups() int { return m.prog.rules[m.rule].ngroups }

// HasGroup reports whether group n (1-based, 0 is the whole match)
// participated in the match.
func (m *Match) HasGroup(n int) bool {
	g := m.prog.ruleGroup[m.rule] + n
	return n >= 0 && n <= m.NumGroups() && m.indices[2*g] >= 0
}

// Group returns the text of group n of the rule's pattern; group 0 is the
// whole match. Returns "" for a group that did not participate.
func (m *Match) Group(n int) string {
	if !m.HasGroup(n) {
		return ""
	}
	g := m.prog.ruleGroup[m.rule] + n
	return m.text[m.indices[2*g]:m.indices[2*g+1]]
}

// GroupSpan returns the span of group n in the input text.
func (m *Match) GroupSpan(n int) relex.Span {
	if !m.HasGroup(n) {
		return relex.Span{}
	}
	g := m.prog.ruleGroup[m.rule] + n
	return relex.Span{m.indices[2*g], m.indices[2*g+1]}
}

// --- Rule evaluation --------------------------------------------------------

// RuleAction returns the (unevaluated) action of rule i.
func (p *Program) RuleAction(i int) interface{} { return p.rules[i].action }

// EvalWith evaluates v (an item or a plain value) against match m.
func (p *Program) EvalWith(m *Match, v interface{}) (interface{}, error) {
	ns := &namespace{text: m.Text(), match: m, arg: p.lex.arg, hasMatch: true}
	return evalValue(v, ns)
}

// EvalRuleTargets evaluates and flattens the target list of the matched
// rule. The result contains only ints and *Lexicon values.
func (p *Program) EvalRuleTargets(m *Match) ([]interface{}, error) {
	ns := &namespace{text: m.Text(), match: m, arg: p.lex.arg, hasMatch: true}
	return evalTargets(p.rules[m.rule].targets, ns)
}

// EvalDefaultAction evaluates the lexicon's default action for the text
// between matches. Dynamic default actions see the gap text as TEXT.
func (p *Program) EvalDefaultAction(gap string) (interface{}, error) {
	ns := &namespace{text: gap, arg: p.lex.arg, hasMatch: false, hasText: true}
	return evalValue(p.defaultAction, ns)
}

// EvalDefaultTarget evaluates the lexicon's default target list. No match
// is available at that point.
func (p *Program) EvalDefaultTarget() ([]interface{}, error) {
	ns := &namespace{arg: p.lex.arg}
	return evalTargets(p.defaultTarget, ns)
}

// StaticTargets returns the statically known lexicon references of all
// rules, including the default target. Dynamic target items are not
// expanded. Used by the validator.
func (p *Program) StaticTargets() []*Lexicon {
	var out []*Lexicon
	collect := func(targets []interface{}) {
		for _, t := range targets {
			if lx, ok := t.(*Lexicon); ok {
				out = append(out, lx)
			}
		}
	}
	for _, r := range p.rules {
		collect(r.targets)
	}
	collect(p.defaultTarget)
	return out
}

// DefaultTargetRefs returns the statically known lexicon references of the
// default target only.
func (p *Program) DefaultTargetRefs() []*Lexicon {
	var out []*Lexicon
	for _, t := range p.defaultTarget {
		if lx, ok := t.(*Lexicon); ok {
			out = append(out, lx)
		}
	}
	return out
}
