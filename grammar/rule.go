package grammar

import (
	"regexp"
	"sort"
	"strings"
)

// A Rule is a triple (pattern, action, targets).
//
// The pattern is a regex string or a dynamic Item evaluating to a string;
// an item evaluating to nil causes the rule to be omitted from the compiled
// alternation. The action is any opaque value, relex.Skip, or a dynamic
// item; ByGroup yields one token per non-empty numbered group. Targets are
// integers (push/pop counts), *Lexicon references, or dynamic items
// evaluating to those.
type Rule struct {
	Pattern interface{}
	Action  interface{}
	Targets []interface{}

	special int // one of the sentinels below, 0 for ordinary rules
}

const (
	specialDefaultAction = 1
	specialDefaultTarget = 2
)

// NewRule builds an ordinary pattern rule.
func NewRule(pattern, action interface{}, targets ...interface{}) Rule {
	return Rule{Pattern: pattern, Action: action, Targets: targets}
}

// DefaultAction builds the special rule assigning an action (possibly
// dynamic) to text between matches within the lexicon. A lexicon may
// declare at most one, and not together with DefaultTarget.
func DefaultAction(action interface{}) Rule {
	return Rule{Action: action, special: specialDefaultAction}
}

// DefaultTarget builds the special rule whose target list applies when no
// rule matches at the current position. A lexicon may declare at most one,
// and not together with DefaultAction.
func DefaultTarget(targets ...interface{}) Rule {
	return Rule{Targets: targets, special: specialDefaultTarget}
}

// --- Pattern helpers --------------------------------------------------------

// Words builds a pattern matching any of the given words, optionally
// surrounded by prefix and suffix patterns (e.g. word boundaries). Longer
// words are tried first so that alternation order cannot shadow a longer
// match.
func Words(words []string, prefix, suffix string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return prefix + "(?:" + strings.Join(quoted, "|") + ")" + suffix
}

// Chars builds a character class matching one of the given characters.
// If positive is false, the class is negated.
func Chars(chars string, positive bool) string {
	var b strings.Builder
	b.WriteByte('[')
	if !positive {
		b.WriteByte('^')
	}
	for _, r := range chars {
		switch r {
		case '\\', ']', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(']')
	return b.String()
}
